package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load builds the configuration: defaults, then the TOML file at path
// (skipped when absent), then environment overrides, then validation.
// A .env file in the working directory is loaded first when present.
func Load(path string) (Config, error) {
	// Non-fatal if absent
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("stat config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides lets the environment win over file values. Only the
// keys an operator realistically flips at launch are exposed.
func (c *Config) applyEnvOverrides() {
	envString("SIPSENSE_STATE_PATH", &c.StatePath)
	envString("SIPSENSE_LOG_LEVEL", &c.LogLevel)
	envString("SIPSENSE_WEB_PORT", &c.Web.Port)
	envBool("SIPSENSE_WEB_ENABLED", &c.Web.Enabled)

	envInt("SIPSENSE_CAMERA_DEVICE", &c.Camera.DeviceID)
	envString("SIPSENSE_FACE_MODEL", &c.Detection.FaceModelPath)
	envString("SIPSENSE_OBJECT_MODEL", &c.Detection.ObjectModelPath)
	envString("SIPSENSE_API_ENDPOINT", &c.Detection.APIEndpoint)
	envString("SIPSENSE_API_KEY", &c.Detection.APIKey)

	envInt("SIPSENSE_INTERVAL_MINUTES", &c.Hydration.IntervalMinutes)
	envBool("SIPSENSE_DISABLE_REMINDERS", &c.Hydration.DisableReminders)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
