package brightness

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/brightpanel/brightpanel-go/internal/core/detector"
)

// DDCController is the placeholder for DDC/CI control of external monitors.
// The monitors are detected and listed, but I2C-level control is not
// implemented, so every operation reports ErrNotSupported rather than
// pretending to succeed.
type DDCController struct {
	logger *logrus.Logger
}

// NewDDCController creates a new DDCController.
func NewDDCController(logger *logrus.Logger) *DDCController {
	return &DDCController{logger: logger}
}

// Get always reports that DDC/CI reads are unsupported.
func (c *DDCController) Get(ctx context.Context, display detector.Display) (int, error) {
	c.logger.WithField("display", display.Name).Debug("DDC/CI read requested")
	return 0, fmt.Errorf("%w: ddc/ci not implemented", ErrNotSupported)
}

// Set always reports that DDC/CI writes are unsupported.
func (c *DDCController) Set(ctx context.Context, display detector.Display, level int) error {
	c.logger.WithFields(logrus.Fields{
		"display": display.Name,
		"level":   level,
	}).Debug("DDC/CI write requested")
	return fmt.Errorf("%w: ddc/ci not implemented", ErrNotSupported)
}
