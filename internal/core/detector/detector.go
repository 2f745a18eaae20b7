package detector

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Service coordinates the detection strategies and owns the current display
// list. Detection never fails: strategy errors are logged and swallowed, and
// if every strategy comes back empty a single synthetic fallback record is
// substituted so the panel always has something to select.
type Service struct {
	strategies []Strategy
	logger     *logrus.Logger

	mu       sync.RWMutex
	displays []Display
}

// NewService creates a detection service over the given strategies, in
// priority order: on a name conflict the earlier strategy's record wins.
func NewService(logger *logrus.Logger, strategies ...Strategy) *Service {
	return &Service{
		strategies: strategies,
		logger:     logger,
	}
}

// Detect runs every strategy, merges results by name and stores the list
// wholesale. The returned slice always has at least one element.
func (s *Service) Detect(ctx context.Context) []Display {
	var merged []Display

	for _, strategy := range s.strategies {
		found, err := strategy.Detect(ctx)
		if err != nil {
			s.logger.WithError(err).WithField("strategy", strategy.Name()).Warn("Detection strategy failed")
			continue
		}
		for _, d := range found {
			if containsName(merged, d.Name) {
				continue
			}
			merged = append(merged, d)
		}
		s.logger.WithFields(logrus.Fields{
			"strategy": strategy.Name(),
			"found":    len(found),
		}).Info("Detection strategy complete")
	}

	if len(merged) == 0 {
		s.logger.Warn("No displays detected, substituting fallback record")
		merged = append(merged, Display{
			ID:       uuid.New().String(),
			Name:     "Primary Display",
			Type:     DisplayUnknown,
			Method:   MethodWMI,
			Fallback: true,
		})
	}

	s.mu.Lock()
	s.displays = merged
	s.mu.Unlock()

	s.logger.WithField("total", len(merged)).Info("Display detection complete")
	return s.Displays()
}

// Refresh re-runs detection, replacing the stored list wholesale.
func (s *Service) Refresh(ctx context.Context) []Display {
	return s.Detect(ctx)
}

// Displays returns a copy of the current display list.
func (s *Service) Displays() []Display {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Display, len(s.displays))
	copy(out, s.displays)
	return out
}

// DisplayByIndex returns the display at index, if any.
func (s *Service) DisplayByIndex(index int) (Display, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.displays) {
		return Display{}, false
	}
	return s.displays[index], true
}

// Count returns the number of known displays.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.displays)
}
