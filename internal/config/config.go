// Package config handles configuration loading and validation for the
// sipsense daemon. Values come from a TOML file, overridable per-key
// through the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the full daemon configuration.
type Config struct {
	Camera    CameraConfig    `toml:"camera"`
	Detection DetectionConfig `toml:"detection"`
	Drinking  DrinkingConfig  `toml:"drinking"`
	Hydration HydrationConfig `toml:"hydration"`
	Web       WebConfig       `toml:"web"`
	StatePath string          `toml:"state_path"`
	LogLevel  string          `toml:"log_level"`
}

// CameraConfig selects and shapes the capture device.
type CameraConfig struct {
	DeviceID int `toml:"device_id"`
	Width    int `toml:"width"`
	Height   int `toml:"height"`
	FPS      int `toml:"fps"`
	Quality  int `toml:"quality"`
}

// DetectionConfig locates the detection models. When APIKey is set the
// daemon uses the hosted detection API instead of the local ONNX model.
type DetectionConfig struct {
	FaceModelPath   string `toml:"face_model_path"`
	ObjectModelPath string `toml:"object_model_path"`

	APIEndpoint string `toml:"api_endpoint"`
	APIKey      string `toml:"api_key"`
}

// DrinkingConfig tunes the detection fusion loop.
type DrinkingConfig struct {
	FaceIntervalMS   int     `toml:"face_interval_ms"`
	ObjectIntervalMS int     `toml:"object_interval_ms"`
	EvalIntervalMS   int     `toml:"eval_interval_ms"`
	GraceMS          int     `toml:"grace_ms"`
	IoUThreshold     float64 `toml:"iou_threshold"`

	MinConfirmFrames int `toml:"min_confirm_frames"`
	StopDebounceMS   int `toml:"stop_debounce_ms"`
	MinSipDurationMS int `toml:"min_sip_duration_ms"`
}

// HydrationConfig tunes reminders.
type HydrationConfig struct {
	IntervalMinutes   int  `toml:"interval_minutes"`
	ReminderCheckSec  int  `toml:"reminder_check_sec"`
	ReminderMinGapSec int  `toml:"reminder_min_gap_sec"`
	DisableReminders  bool `toml:"disable_reminders"`
}

// WebConfig shapes the dashboard server.
type WebConfig struct {
	Port    string `toml:"port"`
	Enabled bool   `toml:"enabled"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Camera: CameraConfig{
			DeviceID: 0,
			Width:    640,
			Height:   480,
			FPS:      30,
			Quality:  85,
		},
		Detection: DetectionConfig{
			FaceModelPath:   "models/face_detection_yunet_2023mar.onnx",
			ObjectModelPath: "models/yolov8n.onnx",
		},
		Drinking: DrinkingConfig{
			FaceIntervalMS:   66,  // ~15 Hz
			ObjectIntervalMS: 200, // ~5 Hz
			EvalIntervalMS:   100,
			GraceMS:          1000,
			IoUThreshold:     0.1,
			MinConfirmFrames: 3,
			StopDebounceMS:   500,
			MinSipDurationMS: 2000,
		},
		Hydration: HydrationConfig{
			IntervalMinutes:   30,
			ReminderCheckSec:  30,
			ReminderMinGapSec: 300,
		},
		Web: WebConfig{
			Port:    "8093",
			Enabled: true,
		},
		StatePath: defaultStatePath(),
		LogLevel:  "info",
	}
}

// defaultStatePath places persisted state under the user config dir,
// falling back to the working directory.
func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "sipsense-state.json"
	}
	return filepath.Join(dir, "sipsense", "state.json")
}

// Validate rejects values the daemon cannot run with.
func (c *Config) Validate() error {
	if c.Hydration.IntervalMinutes < 1 {
		return fmt.Errorf("hydration.interval_minutes must be at least 1, got %d", c.Hydration.IntervalMinutes)
	}
	if c.Drinking.IoUThreshold <= 0 || c.Drinking.IoUThreshold >= 1 {
		return fmt.Errorf("drinking.iou_threshold must be in (0, 1), got %g", c.Drinking.IoUThreshold)
	}
	for name, ms := range map[string]int{
		"drinking.face_interval_ms":    c.Drinking.FaceIntervalMS,
		"drinking.object_interval_ms":  c.Drinking.ObjectIntervalMS,
		"drinking.eval_interval_ms":    c.Drinking.EvalIntervalMS,
		"drinking.grace_ms":            c.Drinking.GraceMS,
		"drinking.stop_debounce_ms":    c.Drinking.StopDebounceMS,
		"drinking.min_sip_duration_ms": c.Drinking.MinSipDurationMS,
	} {
		if ms < 1 {
			return fmt.Errorf("%s must be positive, got %d", name, ms)
		}
	}
	if c.Hydration.ReminderCheckSec < 1 {
		return fmt.Errorf("hydration.reminder_check_sec must be at least 1, got %d", c.Hydration.ReminderCheckSec)
	}
	if c.Hydration.ReminderMinGapSec < 0 {
		return fmt.Errorf("hydration.reminder_min_gap_sec must not be negative, got %d", c.Hydration.ReminderMinGapSec)
	}
	if c.Drinking.MinConfirmFrames < 1 {
		return fmt.Errorf("drinking.min_confirm_frames must be at least 1, got %d", c.Drinking.MinConfirmFrames)
	}
	if c.Web.Enabled && c.Web.Port == "" {
		return fmt.Errorf("web.port required when the dashboard is enabled")
	}
	return nil
}

// FaceInterval returns the face detection cadence.
func (c *DrinkingConfig) FaceInterval() time.Duration {
	return time.Duration(c.FaceIntervalMS) * time.Millisecond
}

// ObjectInterval returns the object detection cadence.
func (c *DrinkingConfig) ObjectInterval() time.Duration {
	return time.Duration(c.ObjectIntervalMS) * time.Millisecond
}

// EvalInterval returns the fusion evaluation cadence.
func (c *DrinkingConfig) EvalInterval() time.Duration {
	return time.Duration(c.EvalIntervalMS) * time.Millisecond
}

// Grace returns how long a detection result stays fresh.
func (c *DrinkingConfig) Grace() time.Duration {
	return time.Duration(c.GraceMS) * time.Millisecond
}

// StopDebounce returns the overlap-dropout tolerance.
func (c *DrinkingConfig) StopDebounce() time.Duration {
	return time.Duration(c.StopDebounceMS) * time.Millisecond
}

// MinSipDuration returns the shortest session that counts as a drink.
func (c *DrinkingConfig) MinSipDuration() time.Duration {
	return time.Duration(c.MinSipDurationMS) * time.Millisecond
}
