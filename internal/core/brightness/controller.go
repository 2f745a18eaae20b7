package brightness

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/brightpanel/brightpanel-go/internal/core/detector"
	"github.com/brightpanel/brightpanel-go/internal/core/metrics"
	"github.com/brightpanel/brightpanel-go/internal/core/security"
)

var (
	// ErrNoController is returned when a display's control method has no
	// registered implementation.
	ErrNoController = errors.New("no controller for display control method")

	// ErrNotSupported is returned by control methods that are recognized but
	// not implemented for the display.
	ErrNotSupported = errors.New("brightness control not supported for this display")

	// ErrNoValue is returned when a get produced output with no parseable
	// brightness level.
	ErrNoValue = errors.New("no brightness value in command output")

	// ErrInvalidLevel is returned before any external call when a requested
	// level falls outside 0..100.
	ErrInvalidLevel = errors.New("brightness level out of range")
)

// MethodController reads and writes brightness through one control mechanism.
type MethodController interface {
	Get(ctx context.Context, display detector.Display) (int, error)
	Set(ctx context.Context, display detector.Display, level int) error
}

// SupportResult reports what a live probe of one display found. Only the
// operations actually exercised are marked; a support test reads the current
// level and, when the read succeeds, writes that same value back.
type SupportResult struct {
	DisplayID       string `json:"display_id"`
	Method          string `json:"method"`
	MethodAvailable bool   `json:"method_available"`
	CanGet          bool   `json:"can_get"`
	CanSet          bool   `json:"can_set"`
	Level           int    `json:"level,omitempty"`
	Detail          string `json:"detail,omitempty"`
}

// Controller dispatches brightness operations to the registered method
// controller for each display. Level validation happens here, before any
// method controller runs, so an out-of-range request never reaches the
// shell.
type Controller struct {
	methods   map[detector.ControlMethod]MethodController
	validator *security.Validator
	logger    *logrus.Logger
	metrics   *metrics.Collector
}

// NewController creates a dispatching controller over the given method
// implementations.
func NewController(validator *security.Validator, logger *logrus.Logger, methods map[detector.ControlMethod]MethodController) *Controller {
	return &Controller{
		methods:   methods,
		validator: validator,
		logger:    logger,
	}
}

// WithMetrics attaches a collector; the last written level per display is
// exported as a gauge.
func (c *Controller) WithMetrics(collector *metrics.Collector) *Controller {
	c.metrics = collector
	return c
}

// ValidateLevel reports whether level is an acceptable brightness value.
func (c *Controller) ValidateLevel(level int) bool {
	return c.validator.ValidateLevel(level)
}

// Get reads the display's current brightness level.
func (c *Controller) Get(ctx context.Context, display detector.Display) (int, error) {
	method, ok := c.methods[display.Method]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoController, display.Method)
	}
	return method.Get(ctx, display)
}

// Set writes a new brightness level to the display. The level is validated
// first; an invalid level fails without any external call.
func (c *Controller) Set(ctx context.Context, display detector.Display, level int) error {
	if !c.validator.ValidateLevel(level) {
		c.logger.WithFields(logrus.Fields{
			"display": display.Name,
			"level":   level,
		}).Warn("Rejected out-of-range brightness level")
		return fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}

	method, ok := c.methods[display.Method]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoController, display.Method)
	}

	if err := method.Set(ctx, display, level); err != nil {
		return err
	}

	if c.metrics != nil {
		c.metrics.BrightnessLevel.WithLabelValues(display.Name).Set(float64(level))
	}

	c.logger.WithFields(logrus.Fields{
		"display": display.Name,
		"method":  display.Method,
		"level":   level,
	}).Info("Brightness set")
	return nil
}

// TestSupport probes a display with live calls: a get, then a set of the
// value the get just returned. The write therefore never changes what the
// user sees. A display whose method has no controller reports everything
// false.
func (c *Controller) TestSupport(ctx context.Context, display detector.Display) SupportResult {
	result := SupportResult{
		DisplayID: display.ID,
		Method:    string(display.Method),
	}

	method, ok := c.methods[display.Method]
	if !ok {
		result.Detail = "no controller registered for method"
		return result
	}
	result.MethodAvailable = true

	level, err := method.Get(ctx, display)
	if err != nil {
		result.Detail = err.Error()
		return result
	}
	result.CanGet = true
	result.Level = level

	if err := method.Set(ctx, display, level); err != nil {
		result.Detail = err.Error()
		return result
	}
	result.CanSet = true

	c.logger.WithFields(logrus.Fields{
		"display": display.Name,
		"level":   level,
	}).Debug("Support test passed")
	return result
}
