package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Hydration.IntervalMinutes != 30 {
		t.Errorf("interval = %d, want 30", cfg.Hydration.IntervalMinutes)
	}
	if cfg.Drinking.IoUThreshold != 0.1 {
		t.Errorf("iou threshold = %g, want 0.1", cfg.Drinking.IoUThreshold)
	}
	if !cfg.Web.Enabled {
		t.Error("dashboard disabled by default")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sipsense.toml")
	body := `
state_path = "/tmp/test-state.json"

[hydration]
interval_minutes = 45

[drinking]
iou_threshold = 0.2
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Hydration.IntervalMinutes != 45 {
		t.Errorf("interval = %d, want 45", cfg.Hydration.IntervalMinutes)
	}
	if cfg.Drinking.IoUThreshold != 0.2 {
		t.Errorf("iou threshold = %g, want 0.2", cfg.Drinking.IoUThreshold)
	}
	if cfg.StatePath != "/tmp/test-state.json" {
		t.Errorf("state path = %q", cfg.StatePath)
	}
	// Untouched sections keep their defaults
	if cfg.Camera.Width != 640 {
		t.Errorf("camera width = %d, want 640", cfg.Camera.Width)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("SIPSENSE_INTERVAL_MINUTES", "15")
	t.Setenv("SIPSENSE_WEB_PORT", "9999")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Hydration.IntervalMinutes != 15 {
		t.Errorf("interval = %d, want 15", cfg.Hydration.IntervalMinutes)
	}
	if cfg.Web.Port != "9999" {
		t.Errorf("port = %q, want 9999", cfg.Web.Port)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero interval", "[hydration]\ninterval_minutes = 0\n"},
		{"iou out of range", "[drinking]\niou_threshold = 1.5\n"},
		{"zero confirm frames", "[drinking]\nmin_confirm_frames = 0\n"},
		{"negative debounce", "[drinking]\nstop_debounce_ms = -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.toml")
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}
