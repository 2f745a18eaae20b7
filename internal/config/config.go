package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Database  DatabaseConfig  `mapstructure:"database"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Detection DetectionConfig `mapstructure:"detection"`
	Control   ControlConfig   `mapstructure:"control"`
	Panel     PanelConfig     `mapstructure:"panel"`
	Settings  SettingsConfig  `mapstructure:"settings"`
	System    SystemConfig    `mapstructure:"system"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
	Mode string `mapstructure:"mode"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AuthConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	JWTSecret   string `mapstructure:"jwt_secret"`
	TokenExpiry int    `mapstructure:"token_expiry"`
}

type DatabaseConfig struct {
	Path             string `mapstructure:"path"`
	HistoryLimit     int    `mapstructure:"history_limit"`
	HistoryRetention string `mapstructure:"history_retention"`
}

type WebSocketConfig struct {
	PingInterval int `mapstructure:"ping_interval"`
	PongTimeout  int `mapstructure:"pong_timeout"`
}

// DetectionConfig controls display detection. RefreshSchedule is a cron spec
// for periodic re-detection; Timeout bounds each detection shell-out.
type DetectionConfig struct {
	Timeout            string `mapstructure:"timeout"`
	RefreshSchedule    string `mapstructure:"refresh_schedule"`
	EnumerationEnabled bool   `mapstructure:"enumeration_enabled"`
}

type ControlConfig struct {
	Timeout string `mapstructure:"timeout"`
}

// PanelConfig carries the slider orchestration knobs. DebounceWindow is the
// coalescing window for bursts of slider events; a burst produces exactly one
// hardware write with the final value.
type PanelConfig struct {
	DebounceWindow string `mapstructure:"debounce_window"`
}

type SettingsConfig struct {
	Path string `mapstructure:"path"`
}

type SystemConfig struct {
	SkipPlatformCheck bool   `mapstructure:"skip_platform_check"`
	ProbeTimeout      string `mapstructure:"probe_timeout"`
}

type DiscoveryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Instance string `mapstructure:"instance"`
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()

	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("logging.level", "LOG_LEVEL")
	viper.BindEnv("auth.jwt_secret", "JWT_SECRET")
	viper.BindEnv("auth.enabled", "BRIGHTPANEL_AUTH_ENABLED")
	viper.BindEnv("database.path", "BRIGHTPANEL_DATABASE_PATH")
	viper.BindEnv("settings.path", "BRIGHTPANEL_SETTINGS_PATH")
	viper.BindEnv("system.skip_platform_check", "BRIGHTPANEL_SKIP_PLATFORM_CHECK")
	viper.BindEnv("discovery.enabled", "BRIGHTPANEL_DISCOVERY_ENABLED")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; defaults cover everything.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// defaultSettingsPath places the settings file under the user config
// directory so persistence works regardless of the working directory the
// binary was launched from.
func defaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "./data/settings.json"
	}
	return filepath.Join(dir, "brightpanel", "settings.json")
}

func setDefaults() {
	viper.SetDefault("server.port", 3456)
	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.mode", "production")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	viper.SetDefault("auth.enabled", false)
	viper.SetDefault("auth.token_expiry", 3600)

	viper.SetDefault("database.path", "./data/brightpanel.db")
	viper.SetDefault("database.history_limit", 100)
	viper.SetDefault("database.history_retention", "720h")

	viper.SetDefault("websocket.ping_interval", 54)
	viper.SetDefault("websocket.pong_timeout", 60)

	viper.SetDefault("detection.timeout", "10s")
	viper.SetDefault("detection.refresh_schedule", "@every 5m")
	viper.SetDefault("detection.enumeration_enabled", true)

	viper.SetDefault("control.timeout", "5s")

	viper.SetDefault("panel.debounce_window", "150ms")

	viper.SetDefault("settings.path", defaultSettingsPath())

	viper.SetDefault("system.skip_platform_check", false)
	viper.SetDefault("system.probe_timeout", "5s")

	viper.SetDefault("discovery.enabled", false)
	viper.SetDefault("discovery.instance", "brightpanel")
}

// TimeoutDuration returns the detection timeout, falling back to 10s on a
// malformed value.
func (c DetectionConfig) TimeoutDuration() time.Duration {
	return parseDuration(c.Timeout, 10*time.Second)
}

// TimeoutDuration returns the control timeout, falling back to 5s.
func (c ControlConfig) TimeoutDuration() time.Duration {
	return parseDuration(c.Timeout, 5*time.Second)
}

// DebounceDuration returns the panel debounce window, falling back to 150ms.
func (c PanelConfig) DebounceDuration() time.Duration {
	return parseDuration(c.DebounceWindow, 150*time.Millisecond)
}

// RetentionDuration returns the history retention window, falling back to
// 30 days.
func (c DatabaseConfig) RetentionDuration() time.Duration {
	return parseDuration(c.HistoryRetention, 30*24*time.Hour)
}

// ProbeDuration returns the system check probe timeout, falling back to 5s.
func (c SystemConfig) ProbeDuration() time.Duration {
	return parseDuration(c.ProbeTimeout, 5*time.Second)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
