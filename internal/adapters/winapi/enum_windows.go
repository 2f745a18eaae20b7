//go:build windows

package winapi

import (
	"context"
	"fmt"
	"syscall"

	"golang.org/x/sys/windows"

	"github.com/brightpanel/brightpanel-go/internal/core/detector"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procEnumDisplayMonitors = user32.NewProc("EnumDisplayMonitors")
)

// Enumerator lists connected monitors through EnumDisplayMonitors. Handles
// are reported as opaque identifiers; nothing here touches the hardware.
type Enumerator struct{}

// NewEnumerator creates a new Enumerator.
func NewEnumerator() *Enumerator {
	return &Enumerator{}
}

// Enumerate invokes EnumDisplayMonitors, collecting one handle per callback
// invocation. The enumeration itself is synchronous and fast; ctx is part of
// the interface contract but not consulted mid-enumeration.
func (e *Enumerator) Enumerate(ctx context.Context) ([]detector.MonitorHandle, error) {
	var handles []detector.MonitorHandle

	callback := syscall.NewCallback(func(hMonitor, hdc, rect, lparam uintptr) uintptr {
		handles = append(handles, detector.MonitorHandle{Handle: hMonitor})
		return 1 // continue enumeration
	})

	ret, _, callErr := procEnumDisplayMonitors.Call(0, 0, callback, 0)
	if ret == 0 {
		return nil, fmt.Errorf("EnumDisplayMonitors failed: %w", callErr)
	}

	return handles, nil
}
