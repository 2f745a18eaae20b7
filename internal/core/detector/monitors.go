package detector

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MonitorStrategy detects external displays through the native monitor
// enumeration callback. Each enumerated monitor yields one record whose
// handle is kept as an opaque identifier only; actual DDC/CI control of
// these displays is not implemented.
type MonitorStrategy struct {
	enum   MonitorEnumerator
	logger *logrus.Logger
}

// NewMonitorStrategy creates a new MonitorStrategy.
func NewMonitorStrategy(enum MonitorEnumerator, logger *logrus.Logger) *MonitorStrategy {
	return &MonitorStrategy{
		enum:   enum,
		logger: logger,
	}
}

func (s *MonitorStrategy) Name() string { return "monitor-enum" }

// Detect enumerates connected monitors, one record per callback invocation.
func (s *MonitorStrategy) Detect(ctx context.Context) ([]Display, error) {
	handles, err := s.enum.Enumerate(ctx)
	if err != nil {
		return nil, fmt.Errorf("monitor enumeration failed: %w", err)
	}

	displays := make([]Display, 0, len(handles))
	for i, h := range handles {
		displays = append(displays, Display{
			ID:     uuid.New().String(),
			Name:   fmt.Sprintf("External Monitor %d", i+1),
			Type:   DisplayExternal,
			Method: MethodDDC,
			Handle: h.Handle,
		})
	}

	s.logger.WithField("count", len(displays)).Debug("Monitor enumeration complete")
	return displays, nil
}
