package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "zoom" || cfg.CornerRadius != 100 || cfg.Direction != "cw" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default file not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.CornerRadius = 42
	cfg.Direction = "ccw"
	cfg.RotationOffset = 180
	cfg.RingOrder = []string{"weeks", "seasons"}
	cfg.RingVisibility = map[string]bool{"weeks": true, "seasons": false}
	cfg.RingWidth = 28
	cfg.CurrentYear = 2025
	cfg.Zoom = ZoomConfig{Level: "month", Year: 2025, Month: 5, Week: 22, Day: 3}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.CornerRadius != 42 || got.Direction != "ccw" || got.RotationOffset != 180 {
		t.Errorf("shape settings lost: %+v", got)
	}
	if len(got.RingOrder) != 2 || got.RingOrder[0] != "weeks" {
		t.Errorf("ring order lost: %v", got.RingOrder)
	}
	if got.RingVisibility["seasons"] {
		t.Error("seasons visibility should persist as false")
	}
	if got.Zoom != cfg.Zoom {
		t.Errorf("zoom = %+v, want %+v", got.Zoom, cfg.Zoom)
	}
}

func TestNormalizeClampsAndSnaps(t *testing.T) {
	cfg := &Config{
		CornerRadius:   250,
		Direction:      "widdershins",
		RotationOffset: -45,
		Mode:           "cube",
		Zoom:           ZoomConfig{Level: "galaxy", Month: 99, Week: -3, Day: 0},
	}
	cfg.Normalize()

	if cfg.CornerRadius != 100 {
		t.Errorf("corner radius = %d", cfg.CornerRadius)
	}
	if cfg.Direction != "cw" {
		t.Errorf("direction = %q", cfg.Direction)
	}
	if cfg.RotationOffset%90 != 0 || cfg.RotationOffset < 0 || cfg.RotationOffset >= 360 {
		t.Errorf("rotation offset = %d", cfg.RotationOffset)
	}
	if cfg.Mode != "zoom" {
		t.Errorf("mode = %q", cfg.Mode)
	}
	if cfg.Zoom.Level != "year" || cfg.Zoom.Month != 0 || cfg.Zoom.Week != 0 || cfg.Zoom.Day != 1 {
		t.Errorf("zoom = %+v", cfg.Zoom)
	}
	if cfg.RingWidth <= 0 || len(cfg.RingOrder) == 0 {
		t.Errorf("ring defaults missing: %+v", cfg)
	}
}

func TestLoadRejectsEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Error("empty path must error")
	}
	if err := Save("", DefaultConfig()); err == nil {
		t.Error("empty path must error")
	}
}
