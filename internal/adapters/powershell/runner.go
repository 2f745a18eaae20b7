package powershell

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brightpanel/brightpanel-go/internal/core/metrics"
)

// Runner executes shell commands with a bounded context. It is the single
// process boundary of the service; every component that shells out does so
// through a CommandRunner interface satisfied by this type, which keeps the
// boundary fakeable in tests.
type Runner struct {
	logger  *logrus.Logger
	metrics *metrics.Collector
}

// NewRunner creates a new Runner. metrics may be nil.
func NewRunner(logger *logrus.Logger, collector *metrics.Collector) *Runner {
	return &Runner{
		logger:  logger,
		metrics: collector,
	}
}

// Run executes command and returns its standard output. The caller bounds
// execution through ctx; a deadline hit is reported as a timeout error.
// operation names the call site for logging and metrics only.
func (r *Runner) Run(ctx context.Context, operation string, command []string) (string, error) {
	if len(command) == 0 {
		return "", fmt.Errorf("empty command for operation %q", operation)
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	elapsed := time.Since(start)
	r.metrics.ObserveCommand(operation, elapsed, err)

	if ctx.Err() == context.DeadlineExceeded {
		r.logger.WithFields(logrus.Fields{
			"operation": operation,
			"elapsed":   elapsed,
		}).Error("External command timed out")
		return "", fmt.Errorf("%s: command timed out after %s", operation, elapsed.Round(time.Millisecond))
	}

	if err != nil {
		r.logger.WithFields(logrus.Fields{
			"operation": operation,
			"stderr":    truncate(stderr.String(), 500),
		}).WithError(err).Error("External command failed")
		return "", fmt.Errorf("%s: %w (stderr: %s)", operation, err, truncate(stderr.String(), 200))
	}

	r.logger.WithFields(logrus.Fields{
		"operation": operation,
		"elapsed":   elapsed,
	}).Debug("External command completed")

	return stdout.String(), nil
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max]
}
