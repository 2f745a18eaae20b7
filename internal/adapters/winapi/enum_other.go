//go:build !windows

package winapi

import (
	"context"
	"errors"

	"github.com/brightpanel/brightpanel-go/internal/core/detector"
)

// ErrUnsupportedPlatform is returned on platforms without a Win32 display API.
var ErrUnsupportedPlatform = errors.New("monitor enumeration requires windows")

// Enumerator is a stub on non-windows platforms.
type Enumerator struct{}

// NewEnumerator creates a new Enumerator.
func NewEnumerator() *Enumerator {
	return &Enumerator{}
}

// Enumerate always fails on non-windows platforms.
func (e *Enumerator) Enumerate(ctx context.Context) ([]detector.MonitorHandle, error) {
	return nil, ErrUnsupportedPlatform
}
