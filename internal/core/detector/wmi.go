package detector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/brightpanel/brightpanel-go/internal/core/security"
)

// WMIStrategy detects internal displays through PowerShell WMI queries. Two
// classes are queried: WmiMonitorBrightnessMethods (displays accepting
// writes) and WmiMonitorBrightness (displays reporting a current value);
// results are merged by name.
type WMIStrategy struct {
	runner    CommandRunner
	validator *security.Validator
	logger    *logrus.Logger
	timeout   time.Duration
}

// NewWMIStrategy creates a new WMIStrategy.
func NewWMIStrategy(runner CommandRunner, validator *security.Validator, logger *logrus.Logger, timeout time.Duration) *WMIStrategy {
	return &WMIStrategy{
		runner:    runner,
		validator: validator,
		logger:    logger,
		timeout:   timeout,
	}
}

func (s *WMIStrategy) Name() string { return "wmi" }

// Detect queries both brightness classes and merges their results by name.
func (s *WMIStrategy) Detect(ctx context.Context) ([]Display, error) {
	displays, err := s.queryClass(ctx, "WmiMonitorBrightnessMethods", "InstanceName", func(d *Display) {
		d.SupportsBrightnessMethods = true
	})
	if err != nil {
		s.logger.WithError(err).Warn("WMI brightness methods query failed")
	}

	current, err := s.queryClass(ctx, "WmiMonitorBrightness", "InstanceName, CurrentBrightness", func(d *Display) {
		d.SupportsCurrentBrightness = true
	})
	if err != nil {
		s.logger.WithError(err).Warn("WMI current brightness query failed")
	}

	for _, c := range current {
		if i := indexOfName(displays, c.Name); i >= 0 {
			displays[i].SupportsCurrentBrightness = true
			continue
		}
		displays = append(displays, c)
	}

	s.logger.WithField("count", len(displays)).Debug("WMI detection complete")
	return displays, nil
}

func (s *WMIStrategy) queryClass(ctx context.Context, class, selects string, mark func(*Display)) ([]Display, error) {
	cmd, err := s.validator.BuildQuery("root/WMI", class, "", "")
	if err != nil {
		return nil, err
	}
	cmd[len(cmd)-1] += " | Select-Object " + selects

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.runner.Run(ctx, "detect_"+strings.ToLower(class), cmd)
	if err != nil {
		return nil, err
	}

	var displays []Display
	for i, line := range parseTableLines(out) {
		d := Display{
			ID:       uuid.New().String(),
			Name:     fmt.Sprintf("Laptop Display %d", i+1),
			Type:     DisplayInternal,
			Method:   MethodWMI,
			Instance: line,
		}
		mark(&d)
		displays = append(displays, d)
	}
	return displays, nil
}

// parseTableLines extracts data rows from PowerShell's tabular output,
// skipping the column header, the dash separator, and blank lines.
func parseTableLines(out string) []string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) <= 2 {
		return nil
	}

	var rows []string
	for _, line := range lines[2:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "-") {
			continue
		}
		rows = append(rows, trimmed)
	}
	return rows
}

func containsName(displays []Display, name string) bool {
	return indexOfName(displays, name) >= 0
}

func indexOfName(displays []Display, name string) int {
	for i, d := range displays {
		if d.Name == name {
			return i
		}
	}
	return -1
}
