package detector

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightpanel/brightpanel-go/internal/core/security"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeRunner returns canned output keyed by operation name and records every
// call for inspection.
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeRunner) Run(ctx context.Context, operation string, command []string) (string, error) {
	f.calls = append(f.calls, operation)
	if err, ok := f.errs[operation]; ok {
		return "", err
	}
	return f.outputs[operation], nil
}

type fakeEnumerator struct {
	handles []MonitorHandle
	err     error
}

func (f *fakeEnumerator) Enumerate(ctx context.Context) ([]MonitorHandle, error) {
	return f.handles, f.err
}

const methodsTable = `InstanceName
------------
DISPLAY\LGD0446\4&2d78e3f&0&UID8388688_0
`

const brightnessTable = `InstanceName                             CurrentBrightness
------------                             -----------------
DISPLAY\LGD0446\4&2d78e3f&0&UID8388688_0                72
`

func newWMIStrategy(runner CommandRunner) *WMIStrategy {
	log := testLogger()
	return NewWMIStrategy(runner, security.NewValidator(log), log, 5*time.Second)
}

func TestParseTableLines(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want []string
	}{
		{
			name: "header and separator skipped",
			out:  methodsTable,
			want: []string{`DISPLAY\LGD0446\4&2d78e3f&0&UID8388688_0`},
		},
		{
			name: "empty output",
			out:  "",
			want: nil,
		},
		{
			name: "header only",
			out:  "InstanceName\n------------\n",
			want: nil,
		},
		{
			name: "blank rows and stray separators ignored",
			out:  "InstanceName\n------------\n\n----\nrow-one\n\nrow-two\n",
			want: []string{"row-one", "row-two"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseTableLines(tt.out))
		})
	}
}

func TestWMIStrategyDetect(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"detect_wmimonitorbrightnessmethods": methodsTable,
		"detect_wmimonitorbrightness":        brightnessTable,
	}}

	displays, err := newWMIStrategy(runner).Detect(context.Background())
	require.NoError(t, err)
	require.Len(t, displays, 1)

	d := displays[0]
	assert.Equal(t, "Laptop Display 1", d.Name)
	assert.Equal(t, DisplayInternal, d.Type)
	assert.Equal(t, MethodWMI, d.Method)
	assert.True(t, d.SupportsBrightnessMethods)
	assert.True(t, d.SupportsCurrentBrightness)
	assert.NotEmpty(t, d.ID)
	assert.Len(t, runner.calls, 2)
}

func TestWMIStrategyDetectMethodsQueryFails(t *testing.T) {
	runner := &fakeRunner{
		outputs: map[string]string{"detect_wmimonitorbrightness": brightnessTable},
		errs:    map[string]error{"detect_wmimonitorbrightnessmethods": errors.New("exit status 1")},
	}

	displays, err := newWMIStrategy(runner).Detect(context.Background())
	require.NoError(t, err)
	require.Len(t, displays, 1)
	assert.False(t, displays[0].SupportsBrightnessMethods)
	assert.True(t, displays[0].SupportsCurrentBrightness)
}

func TestWMIStrategyDetectNothingFound(t *testing.T) {
	runner := &fakeRunner{
		errs: map[string]error{
			"detect_wmimonitorbrightnessmethods": errors.New("exit status 1"),
			"detect_wmimonitorbrightness":        errors.New("exit status 1"),
		},
	}

	displays, err := newWMIStrategy(runner).Detect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, displays)
}

func TestMonitorStrategyDetect(t *testing.T) {
	enum := &fakeEnumerator{handles: []MonitorHandle{
		{Handle: 0x1001, Primary: true},
		{Handle: 0x1002},
	}}

	displays, err := NewMonitorStrategy(enum, testLogger()).Detect(context.Background())
	require.NoError(t, err)
	require.Len(t, displays, 2)

	assert.Equal(t, "External Monitor 1", displays[0].Name)
	assert.Equal(t, DisplayExternal, displays[0].Type)
	assert.Equal(t, MethodDDC, displays[0].Method)
	assert.Equal(t, uintptr(0x1001), displays[0].Handle)
	assert.Equal(t, "External Monitor 2", displays[1].Name)
}

func TestMonitorStrategyDetectError(t *testing.T) {
	enum := &fakeEnumerator{err: errors.New("api unavailable")}

	_, err := NewMonitorStrategy(enum, testLogger()).Detect(context.Background())
	assert.Error(t, err)
}

// stubStrategy lets service tests control exactly what each strategy
// contributes.
type stubStrategy struct {
	name     string
	displays []Display
	err      error
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Detect(ctx context.Context) ([]Display, error) {
	return s.displays, s.err
}

func TestServiceDetectMergesByPriority(t *testing.T) {
	first := &stubStrategy{name: "wmi", displays: []Display{
		{ID: "a", Name: "Laptop Display 1", Type: DisplayInternal, Method: MethodWMI},
	}}
	second := &stubStrategy{name: "monitor-enum", displays: []Display{
		{ID: "b", Name: "Laptop Display 1", Type: DisplayExternal, Method: MethodDDC},
		{ID: "c", Name: "External Monitor 1", Type: DisplayExternal, Method: MethodDDC},
	}}

	svc := NewService(testLogger(), first, second)
	displays := svc.Detect(context.Background())

	require.Len(t, displays, 2)
	// Name conflict resolves in favor of the earlier strategy.
	assert.Equal(t, "a", displays[0].ID)
	assert.Equal(t, MethodWMI, displays[0].Method)
	assert.Equal(t, "External Monitor 1", displays[1].Name)
}

func TestServiceDetectFallbackWhenAllStrategiesFail(t *testing.T) {
	svc := NewService(testLogger(),
		&stubStrategy{name: "wmi", err: errors.New("powershell missing")},
		&stubStrategy{name: "monitor-enum", err: errors.New("api unavailable")},
	)

	displays := svc.Detect(context.Background())

	require.Len(t, displays, 1)
	d := displays[0]
	assert.Equal(t, "Primary Display", d.Name)
	assert.Equal(t, DisplayUnknown, d.Type)
	assert.Equal(t, MethodWMI, d.Method)
	assert.True(t, d.Fallback)
}

func TestServiceRefreshReplacesWholesale(t *testing.T) {
	strat := &stubStrategy{name: "wmi", displays: []Display{
		{ID: "a", Name: "Laptop Display 1"},
		{ID: "b", Name: "Laptop Display 2"},
	}}
	svc := NewService(testLogger(), strat)
	svc.Detect(context.Background())
	require.Equal(t, 2, svc.Count())

	strat.displays = []Display{{ID: "c", Name: "Laptop Display 1"}}
	displays := svc.Refresh(context.Background())

	require.Len(t, displays, 1)
	assert.Equal(t, "c", displays[0].ID)
	assert.Equal(t, 1, svc.Count())
}

func TestServiceDisplayByIndex(t *testing.T) {
	svc := NewService(testLogger(), &stubStrategy{name: "wmi", displays: []Display{
		{ID: "a", Name: "Laptop Display 1"},
	}})
	svc.Detect(context.Background())

	d, ok := svc.DisplayByIndex(0)
	require.True(t, ok)
	assert.Equal(t, "a", d.ID)

	_, ok = svc.DisplayByIndex(1)
	assert.False(t, ok)
	_, ok = svc.DisplayByIndex(-1)
	assert.False(t, ok)
}

func TestServiceDisplaysReturnsCopy(t *testing.T) {
	svc := NewService(testLogger(), &stubStrategy{name: "wmi", displays: []Display{
		{ID: "a", Name: "Laptop Display 1"},
	}})
	svc.Detect(context.Background())

	displays := svc.Displays()
	displays[0].ID = "mutated"

	fresh := svc.Displays()
	assert.Equal(t, "a", fresh[0].ID)
}
