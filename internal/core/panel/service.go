package panel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brightpanel/brightpanel-go/internal/core/brightness"
	"github.com/brightpanel/brightpanel-go/internal/core/detector"
	"github.com/brightpanel/brightpanel-go/internal/core/settings"
)

// ErrNoSuchDisplay is returned when a selection index has no display.
var ErrNoSuchDisplay = errors.New("no display at index")

// Notifier receives panel state changes for delivery to connected clients.
type Notifier interface {
	Notify(event string, payload interface{})
}

// HistoryRecorder persists applied brightness changes.
type HistoryRecorder interface {
	Record(ctx context.Context, displayID, displayName string, level int, source string) error
}

// Status is a snapshot of the panel state.
type Status struct {
	Displays      []detector.Display `json:"displays"`
	SelectedIndex int                `json:"selected_index"`
	Brightness    int                `json:"brightness"`
	Message       string             `json:"message,omitempty"`
}

// Service owns the panel state: which display is selected, the last applied
// brightness, and the slider stream. Slider moves arrive faster than the
// shell can absorb, so writes are coalesced through a single trailing-edge
// timer; only the final position of a burst reaches the display.
//
// The updating flag guards against echo loops: while the service itself is
// pushing a level out to clients, incoming slide events for that push are
// ignored.
type Service struct {
	detector   *detector.Service
	controller *brightness.Controller
	store      *settings.Store
	notifier   Notifier
	history    HistoryRecorder
	logger     *logrus.Logger

	debounce  time.Duration
	opTimeout time.Duration

	updating atomic.Bool

	mu         sync.Mutex
	selected   int
	lastLevel  int
	geometry   string
	timer      *time.Timer
	pending    int
	pendingSet bool
}

// New creates the panel service. history may be nil to disable recording.
func New(
	det *detector.Service,
	ctrl *brightness.Controller,
	store *settings.Store,
	notifier Notifier,
	history HistoryRecorder,
	logger *logrus.Logger,
	debounce, opTimeout time.Duration,
) *Service {
	return &Service{
		detector:   det,
		controller: ctrl,
		store:      store,
		notifier:   notifier,
		history:    history,
		logger:     logger,
		debounce:   debounce,
		opTimeout:  opTimeout,
	}
}

// Start restores persisted state and syncs the current brightness from the
// selected display. Restore problems degrade to defaults, never to a failed
// start.
func (s *Service) Start(ctx context.Context) {
	saved := s.store.Load()

	s.mu.Lock()
	s.selected = saved.LastDisplayIndex
	s.lastLevel = saved.LastBrightness
	s.geometry = saved.WindowGeometry
	if s.selected >= s.detector.Count() {
		s.selected = 0
	}
	s.mu.Unlock()

	s.syncCurrent(ctx)
	s.notifyStatus("")
}

// Slide handles one slider position event. Events are coalesced: each call
// resets the trailing-edge timer, and only the latest level is applied when
// the stream pauses for the debounce window. Out-of-range levels and echoes
// of the service's own pushes are dropped without any external call.
func (s *Service) Slide(level int) {
	if s.updating.Load() {
		return
	}
	if !s.controller.ValidateLevel(level) {
		s.logger.WithField("level", level).Warn("Ignoring out-of-range slider level")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = level
	s.pendingSet = true
	if s.timer != nil {
		s.timer.Reset(s.debounce)
		return
	}
	s.timer = time.AfterFunc(s.debounce, s.flushPending)
}

func (s *Service) flushPending() {
	s.mu.Lock()
	if !s.pendingSet {
		s.mu.Unlock()
		return
	}
	level := s.pending
	s.pendingSet = false
	s.mu.Unlock()

	s.apply(level, "slider")
}

// SetBrightness applies a level immediately, bypassing the debounce. It is
// the path for single deliberate requests rather than slider streams.
func (s *Service) SetBrightness(level int) error {
	return s.apply(level, "api")
}

func (s *Service) apply(level int, source string) error {
	display, ok := s.selectedDisplay()
	if !ok {
		return ErrNoSuchDisplay
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.opTimeout)
	defer cancel()

	if err := s.controller.Set(ctx, display, level); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"display": display.Name,
			"level":   level,
		}).Error("Brightness change failed")
		s.notifyStatus("brightness change failed: " + err.Error())
		return err
	}

	s.mu.Lock()
	s.lastLevel = level
	s.mu.Unlock()

	s.notifier.Notify("brightness_changed", map[string]interface{}{
		"display_id": display.ID,
		"level":      level,
		"source":     source,
	})

	if s.history != nil {
		if err := s.history.Record(ctx, display.ID, display.Name, level, source); err != nil {
			s.logger.WithError(err).Warn("Failed to record brightness history")
		}
	}
	return nil
}

// SelectDisplay switches the active display and syncs its current level.
func (s *Service) SelectDisplay(ctx context.Context, index int) error {
	if _, ok := s.detector.DisplayByIndex(index); !ok {
		return ErrNoSuchDisplay
	}

	s.mu.Lock()
	s.selected = index
	s.mu.Unlock()

	s.syncCurrent(ctx)
	s.notifyStatus("")
	return nil
}

// RefreshDisplays re-runs detection. A selection left dangling by the new
// list falls back to the first display.
func (s *Service) RefreshDisplays(ctx context.Context) []detector.Display {
	displays := s.detector.Refresh(ctx)

	s.mu.Lock()
	if s.selected >= len(displays) {
		s.selected = 0
	}
	s.mu.Unlock()

	s.syncCurrent(ctx)
	s.notifier.Notify("displays_updated", displays)
	s.notifyStatus("")
	return displays
}

// TestSupport probes the selected display and pushes the result to clients.
func (s *Service) TestSupport(ctx context.Context) (brightness.SupportResult, error) {
	display, ok := s.selectedDisplay()
	if !ok {
		return brightness.SupportResult{}, ErrNoSuchDisplay
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	result := s.controller.TestSupport(ctx, display)
	s.notifier.Notify("support_test", result)
	return result, nil
}

// Status returns a snapshot of the panel state.
func (s *Service) Status() Status {
	s.mu.Lock()
	selected := s.selected
	level := s.lastLevel
	s.mu.Unlock()

	return Status{
		Displays:      s.detector.Displays(),
		SelectedIndex: selected,
		Brightness:    level,
	}
}

// SetGeometry records the client window geometry for persistence.
func (s *Service) SetGeometry(geometry string) {
	s.mu.Lock()
	s.geometry = geometry
	s.mu.Unlock()
}

// Shutdown flushes any pending slider write and persists the panel state.
func (s *Service) Shutdown() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	flush := s.pendingSet
	s.mu.Unlock()

	if flush {
		s.flushPending()
	}

	s.mu.Lock()
	saved := settings.Settings{
		LastBrightness:   s.lastLevel,
		LastDisplayIndex: s.selected,
		WindowGeometry:   s.geometry,
	}
	s.mu.Unlock()

	return s.store.Save(saved)
}

// syncCurrent reads the selected display's level and pushes it to clients
// with the updating guard held, so the echoing slide events do not write the
// value straight back.
func (s *Service) syncCurrent(ctx context.Context) {
	display, ok := s.selectedDisplay()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	level, err := s.controller.Get(ctx, display)
	if err != nil {
		s.logger.WithError(err).WithField("display", display.Name).Warn("Could not read current brightness")
		return
	}

	s.updating.Store(true)
	defer s.updating.Store(false)

	s.mu.Lock()
	s.lastLevel = level
	s.mu.Unlock()

	s.notifier.Notify("brightness_changed", map[string]interface{}{
		"display_id": display.ID,
		"level":      level,
		"source":     "sync",
	})
}

func (s *Service) selectedDisplay() (detector.Display, bool) {
	s.mu.Lock()
	index := s.selected
	s.mu.Unlock()
	return s.detector.DisplayByIndex(index)
}

func (s *Service) notifyStatus(message string) {
	status := s.Status()
	status.Message = message
	s.notifier.Notify("status", status)
}
