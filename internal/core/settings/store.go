package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// Settings is the persisted panel state. All fields are optional; anything
// missing from the file keeps its default.
type Settings struct {
	LastBrightness   int    `json:"last_brightness"`
	LastDisplayIndex int    `json:"last_display_index"`
	WindowGeometry   string `json:"window_geometry,omitempty"`
}

// Defaults returns the settings used when nothing has been persisted yet.
func Defaults() Settings {
	return Settings{
		LastBrightness:   50,
		LastDisplayIndex: 0,
	}
}

// Store persists settings as a JSON file. Loading never fails: a missing or
// corrupt file yields defaults, so the panel always starts.
type Store struct {
	path   string
	logger *logrus.Logger
	mu     sync.Mutex
}

// NewStore creates a store persisting to path.
func NewStore(path string, logger *logrus.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger,
	}
}

// Load reads the persisted settings, falling back to defaults on any
// problem. Out-of-range persisted brightness is reset to the default
// rather than propagated.
func (s *Store) Load() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := Defaults()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithError(err).Warn("Failed to read settings file, using defaults")
		}
		return settings
	}

	if err := json.Unmarshal(data, &settings); err != nil {
		s.logger.WithError(err).Warn("Failed to parse settings file, using defaults")
		return Defaults()
	}

	if settings.LastBrightness < 0 || settings.LastBrightness > 100 {
		settings.LastBrightness = Defaults().LastBrightness
	}
	if settings.LastDisplayIndex < 0 {
		settings.LastDisplayIndex = 0
	}

	return settings
}

// Save writes the settings atomically enough for a single-user desktop tool:
// parent directories are created on demand and the file is user-readable
// only.
func (s *Store) Save(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return err
	}

	s.logger.WithField("path", s.path).Debug("Settings saved")
	return nil
}
