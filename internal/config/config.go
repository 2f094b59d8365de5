// Package config is the persisted settings store for the
// visualization: shape parameters, ring layout, zoom state and the
// event-source subscriptions. Settings live in one YAML file; Load
// creates it with defaults on first run and Save writes atomically
// with 0600 permissions.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ICSConfig describes a single ICS subscription source.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label shown in the UI.
	Name string `yaml:"name" json:"name"`
}

// ZoomConfig persists the navigator position between runs.
type ZoomConfig struct {
	Level string `yaml:"level" json:"level"` // year|month|week|day
	Year  int    `yaml:"year" json:"year"`
	Month int    `yaml:"month" json:"month"` // 0-11
	Week  int    `yaml:"week" json:"week"`   // 0-51
	Day   int    `yaml:"day" json:"day"`     // 1-31
}

// Config is the top-level application configuration plus the
// user-mutable visualization settings. Core components receive a
// loaded instance explicitly; nothing reads this as ambient state.
type Config struct {
	// Listen is the HTTP listen address for the UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA display timezone (e.g. "Europe/Berlin").
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron schedules periodic event refresh (e.g. "*/15 * * * *").
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// ICS is the list of subscribed event sources.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	// Mode selects the active visualization: shape | rings | zoom.
	Mode string `yaml:"mode" json:"mode"`

	// CornerRadius is the roundness slider position, 0..100.
	// 100 is a pure circle, 0 the inscribed square shape.
	CornerRadius int `yaml:"corner_radius" json:"corner_radius"`

	// Direction is the placement direction: "cw" or "ccw".
	Direction string `yaml:"direction" json:"direction"`

	// RotationOffset shifts the angular origin, in degrees.
	// Snapped to quarter turns (0/90/180/270).
	RotationOffset int `yaml:"rotation_offset" json:"rotation_offset"`

	// RingOrder lists ring names outermost first.
	RingOrder []string `yaml:"ring_order" json:"ring_order"`

	// RingVisibility toggles rings independently of their order.
	RingVisibility map[string]bool `yaml:"ring_visibility" json:"ring_visibility"`

	// RingWidth is the configured band width in pixels. Layout clamps
	// it down when too many rings are visible, never up.
	RingWidth float64 `yaml:"ring_width" json:"ring_width"`

	// CurrentYear is the year being displayed. Zero means "this year".
	CurrentYear int `yaml:"current_year" json:"current_year"`

	// Zoom is the persisted navigator state.
	Zoom ZoomConfig `yaml:"zoom" json:"zoom"`
}

// DefaultRingOrder is outermost to innermost.
var DefaultRingOrder = []string{"seasons", "months", "weeks", "hebrew-months", "holidays"}

func defaultRingVisibility() map[string]bool {
	return map[string]bool{
		"seasons": true,
		"months":  true,
		"weeks":   true,
	}
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:         "127.0.0.1:8080",
		Timezone:       "UTC",
		RefreshCron:    "*/15 * * * *",
		ICS:            []ICSConfig{},
		Mode:           "zoom",
		CornerRadius:   100,
		Direction:      "cw",
		RotationOffset: 0,
		RingOrder:      append([]string(nil), DefaultRingOrder...),
		RingVisibility: defaultRingVisibility(),
		RingWidth:      36,
		Zoom:           ZoomConfig{Level: "year"},
	}
}

// Normalize fills in missing/zero values with sensible defaults so
// that partially-filled configs (e.g. older versions) still behave
// correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}

	switch c.Mode {
	case "shape", "rings", "zoom":
		// ok
	default:
		c.Mode = "zoom"
	}

	if c.CornerRadius < 0 {
		c.CornerRadius = 0
	}
	if c.CornerRadius > 100 {
		c.CornerRadius = 100
	}

	switch c.Direction {
	case "cw", "ccw":
	default:
		c.Direction = "cw"
	}

	c.RotationOffset = ((c.RotationOffset % 360) + 360) % 360
	c.RotationOffset = (c.RotationOffset / 90) * 90

	if len(c.RingOrder) == 0 {
		c.RingOrder = append([]string(nil), DefaultRingOrder...)
	}
	if c.RingVisibility == nil {
		c.RingVisibility = defaultRingVisibility()
	}
	if c.RingWidth <= 0 {
		c.RingWidth = 36
	}

	switch c.Zoom.Level {
	case "year", "month", "week", "day":
	default:
		c.Zoom.Level = "year"
	}
	if c.Zoom.Month < 0 || c.Zoom.Month > 11 {
		c.Zoom.Month = 0
	}
	if c.Zoom.Week < 0 || c.Zoom.Week > 51 {
		c.Zoom.Week = 0
	}
	if c.Zoom.Day < 1 || c.Zoom.Day > 31 {
		c.Zoom.Day = 1
	}
}

// Clone returns a deep copy: the slices and the visibility map are
// detached, so the copy can cross a lock boundary safely.
func (c *Config) Clone() *Config {
	out := *c
	out.ICS = append([]ICSConfig(nil), c.ICS...)
	out.RingOrder = append([]string(nil), c.RingOrder...)
	if c.RingVisibility != nil {
		out.RingVisibility = make(map[string]bool, len(c.RingVisibility))
		for name, visible := range c.RingVisibility {
			out.RingVisibility[name] = visible
		}
	}
	return &out
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: create parent directory if needed,
//     write a default config with 0600 perms and return it.
//   - If the file exists: read YAML, unmarshal, normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so the
				// caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: temp file in the same directory, then rename.
	tmp, err := os.CreateTemp(dir, ".yearshape-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save delegates to the package-level Save, which reads nicely at
// call sites that already hold a *Config.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
