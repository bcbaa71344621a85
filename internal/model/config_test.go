package model

import (
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Display.Theme != "ocean" {
		t.Errorf("Theme = %q, want ocean", cfg.Display.Theme)
	}
	if cfg.Display.PreviewCount != 3 {
		t.Errorf("PreviewCount = %d, want 3", cfg.Display.PreviewCount)
	}
	if cfg.Display.TimestampFormat != DefaultTimestampFormat {
		t.Errorf("TimestampFormat = %q", cfg.Display.TimestampFormat)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Logging.Level)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	want := &AppConfig{
		Display: DisplayConfig{
			Theme:           "forest",
			PreviewCount:    5,
			TimestampFormat: "2006-01-02 15:04",
		},
		Logging: LoggingConfig{Level: "debug", File: "/tmp/x.log"},
	}
	if err := SaveConfig(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Display.Theme != "forest" || got.Display.PreviewCount != 5 {
		t.Errorf("display = %+v, want %+v", got.Display, want.Display)
	}
	if got.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", got.Logging.Level)
	}
}

func TestLoadConfig_SanitizesBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := &AppConfig{
		Display: DisplayConfig{Theme: "ocean", PreviewCount: 0},
		Logging: LoggingConfig{Level: "info"},
	}
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Display.PreviewCount != 3 {
		t.Errorf("PreviewCount = %d, want sanitized default 3", got.Display.PreviewCount)
	}
	if got.Display.TimestampFormat != DefaultTimestampFormat {
		t.Errorf("TimestampFormat = %q, want default", got.Display.TimestampFormat)
	}
}
