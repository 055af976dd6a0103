// Package config handles persistent user configuration for cfdash.
//
// Configuration is stored as JSON at ~/.config/cfdash/config.json (or the
// platform-equivalent path returned by os.UserConfigDir).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"nathanbeddoewebdev/cfdash/internal/analytics/domain"
)

const (
	appDir   = "cfdash"
	fileName = "config.json"
)

// Defaults applied when a key is unset.
const (
	DefaultCacheTime    = 900
	DefaultCacheBackend = "file"
	DefaultListenAddr   = ":8080"
	DefaultUser         = "admin"
	DefaultLogLevel     = "info"
)

// pathOverride, when non-empty, replaces the default config file path.
// Intended for testing. Use SetPath / ResetPath to manage.
var pathOverride string

// SetPath overrides the config file path. Intended for testing.
func SetPath(p string) { pathOverride = p }

// ResetPath clears the path override, reverting to the default. Intended for testing.
func ResetPath() { pathOverride = "" }

// Config holds user preferences that persist across invocations.
type Config struct {
	ZoneID string `json:"zone_id,omitempty"`

	// CacheTime is the analytics cache lifetime in seconds. Nil means the
	// default; 0 disables caching.
	CacheTime *int `json:"cache_time,omitempty"`

	CacheBackend string   `json:"cache_backend,omitempty"`
	CachePrefix  string   `json:"cache_prefix,omitempty"`
	RedisURL     string   `json:"redis_url,omitempty"`
	ChartColors  []string `json:"chart_colors,omitempty"`
	Timezone     string   `json:"timezone,omitempty"`
	ListenAddr   string   `json:"listen_addr,omitempty"`
	DefaultUser  string   `json:"default_user,omitempty"`
	LogLevel     string   `json:"log_level,omitempty"`

	// MetricLabels renames chart datasets, keyed by metric name.
	MetricLabels map[string]string `json:"metric_labels,omitempty"`
}

// CacheTTL returns the analytics cache lifetime. Zero means caching is
// disabled.
func (c *Config) CacheTTL() time.Duration {
	if c.CacheTime == nil {
		return DefaultCacheTime * time.Second
	}
	if *c.CacheTime <= 0 {
		return 0
	}
	return time.Duration(*c.CacheTime) * time.Second
}

// Backend returns the configured cache backend name.
func (c *Config) Backend() string {
	if c.CacheBackend == "" {
		return DefaultCacheBackend
	}
	return c.CacheBackend
}

// Palette returns the configured chart colors, or nil for the default.
func (c *Config) Palette() []string {
	if len(c.ChartColors) == 0 {
		return nil
	}
	out := make([]string, len(c.ChartColors))
	copy(out, c.ChartColors)
	return out
}

// Labels returns the configured dataset labels, or nil for the defaults.
// Entries for unknown metrics are skipped.
func (c *Config) Labels() map[domain.MetricKind]string {
	if len(c.MetricLabels) == 0 {
		return nil
	}
	out := make(map[domain.MetricKind]string, len(c.MetricLabels))
	for k, v := range c.MetricLabels {
		m, err := domain.ParseMetricKind(k)
		if err != nil || v == "" {
			continue
		}
		out[m] = v
	}
	return out
}

// Location returns the zone interval labels are rendered in. Unset means
// the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Listen returns the HTTP listen address.
func (c *Config) Listen() string {
	if c.ListenAddr == "" {
		return DefaultListenAddr
	}
	return c.ListenAddr
}

// User returns the identity used when a request carries none.
func (c *Config) User() string {
	if c.DefaultUser == "" {
		return DefaultUser
	}
	return c.DefaultUser
}

// Level returns the log level name.
func (c *Config) Level() string {
	if c.LogLevel == "" {
		return DefaultLogLevel
	}
	return c.LogLevel
}

// Path returns the absolute path to the config file.
// If SetPath has been called, that value is returned instead.
// Otherwise it uses os.UserConfigDir which resolves to
// ~/Library/Application Support on macOS, ~/.config on Linux, and
// %AppData% on Windows.
func Path() (string, error) {
	if pathOverride != "" {
		return pathOverride, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: unable to determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load reads the config file from disk and returns the parsed Config.
// If the file does not exist, a zero-value Config is returned (not an error).
func Load() (*Config, error) {
	return loadFrom("")
}

// loadFrom reads the config from the given path. If path is empty, the
// default Path() is used. Exported only for testing via LoadFrom.
func loadFrom(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the config to disk, creating the parent directory if needed.
func (c *Config) Save() error {
	return c.saveTo("")
}

// saveTo writes the config to the given path. If path is empty, the
// default Path() is used.
func (c *Config) saveTo(path string) error {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}

	return nil
}

// LoadFrom reads the config from the given path. Intended for testing.
func LoadFrom(path string) (*Config, error) {
	return loadFrom(path)
}

// SaveTo writes the config to the given path. Intended for testing.
func (c *Config) SaveTo(path string) error {
	return c.saveTo(path)
}
