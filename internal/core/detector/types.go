package detector

import "context"

// DisplayType categorizes a detected display.
type DisplayType string

const (
	DisplayInternal DisplayType = "internal"
	DisplayExternal DisplayType = "external"
	DisplayUnknown  DisplayType = "unknown"
)

// ControlMethod names the mechanism used to control a display's brightness.
type ControlMethod string

const (
	MethodWMI ControlMethod = "wmi"
	MethodDDC ControlMethod = "ddc"
)

// Display is one detected display. Records are immutable once created and
// replaced wholesale on refresh; identity is the name/type/method triple, the
// ID exists only for API addressing.
type Display struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Type     DisplayType   `json:"type"`
	Method   ControlMethod `json:"method"`
	Instance string        `json:"instance,omitempty"`
	Handle   uintptr       `json:"handle,omitempty"`
	Fallback bool          `json:"fallback,omitempty"`

	SupportsBrightnessMethods bool `json:"supports_brightness_methods,omitempty"`
	SupportsCurrentBrightness bool `json:"supports_current_brightness,omitempty"`
}

// Strategy is one display detection mechanism. Detect returns whatever it
// found; an error means the strategy as a whole failed. The Service swallows
// strategy errors, so a broken strategy degrades to an empty contribution.
type Strategy interface {
	Name() string
	Detect(ctx context.Context) ([]Display, error)
}

// CommandRunner is the shell boundary used by the WMI strategy.
type CommandRunner interface {
	Run(ctx context.Context, operation string, command []string) (string, error)
}

// MonitorHandle is one connected monitor reported by the native enumeration.
// The handle is an opaque identifier and is never dereferenced for hardware
// I/O.
type MonitorHandle struct {
	Handle  uintptr
	Primary bool
}

// MonitorEnumerator abstracts the native monitor enumeration callback.
type MonitorEnumerator interface {
	Enumerate(ctx context.Context) ([]MonitorHandle, error)
}
