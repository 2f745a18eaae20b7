package brightness

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brightpanel/brightpanel-go/internal/core/detector"
	"github.com/brightpanel/brightpanel-go/internal/core/security"
)

// WMIController controls internal displays through PowerShell WMI calls.
// Reads query WmiMonitorBrightness; writes invoke WmiSetBrightness with a
// one-second transition timeout. Every command goes through the validator,
// which owns the allow-lists and sanitization.
type WMIController struct {
	runner    detector.CommandRunner
	validator *security.Validator
	logger    *logrus.Logger
	timeout   time.Duration
}

// NewWMIController creates a new WMIController.
func NewWMIController(runner detector.CommandRunner, validator *security.Validator, logger *logrus.Logger, timeout time.Duration) *WMIController {
	return &WMIController{
		runner:    runner,
		validator: validator,
		logger:    logger,
		timeout:   timeout,
	}
}

// Get reads the current brightness level of an internal display.
func (c *WMIController) Get(ctx context.Context, display detector.Display) (int, error) {
	cmd, err := c.validator.BuildQuery("root/WMI", "WmiMonitorBrightness", "", "")
	if err != nil {
		return 0, err
	}
	cmd[len(cmd)-1] += " | Select-Object CurrentBrightness"

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.runner.Run(ctx, "get_brightness", cmd)
	if err != nil {
		return 0, fmt.Errorf("brightness query failed: %w", err)
	}

	level, err := parseBrightness(out)
	if err != nil {
		return 0, err
	}

	c.logger.WithFields(logrus.Fields{
		"display": display.Name,
		"level":   level,
	}).Debug("Read brightness")
	return level, nil
}

// Set writes a new brightness level to an internal display. Success is the
// command exiting zero; WmiSetBrightness itself produces no output.
func (c *WMIController) Set(ctx context.Context, display detector.Display, level int) error {
	params := fmt.Sprintf("1,%d", level)
	cmd, err := c.validator.BuildQuery("root/WMI", "WmiMonitorBrightnessMethods", "WmiSetBrightness", params)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.runner.Run(ctx, "set_brightness", cmd); err != nil {
		return fmt.Errorf("brightness set failed: %w", err)
	}
	return nil
}

// parseBrightness extracts an integer level from PowerShell output. Two
// shapes occur: a bare integer on its own line, and "CurrentBrightness : 72"
// in list format. Header and separator rows from table format fall through
// both cases and are skipped.
func parseBrightness(out string) (int, error) {
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if level, err := strconv.Atoi(trimmed); err == nil {
			return level, nil
		}

		if _, value, found := strings.Cut(trimmed, ":"); found {
			if level, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
				return level, nil
			}
		}
	}
	return 0, ErrNoValue
}
