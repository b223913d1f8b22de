// Package camera wraps the local webcam behind a JPEG frame source.
package camera

// Config holds the webcam capture parameters.
type Config struct {
	DeviceID int `json:"device_id"` // V4L2 device index
	Width    int `json:"width"`     // Frame width in pixels
	Height   int `json:"height"`    // Frame height in pixels
	FPS      int `json:"fps"`       // Requested capture rate
	Quality  int `json:"quality"`   // JPEG quality 1-100
}

// DefaultConfig returns the recommended webcam configuration.
// 640x480 keeps detection latency low on CPU-only hosts.
func DefaultConfig() Config {
	return Config{
		DeviceID: 0,
		Width:    640,
		Height:   480,
		FPS:      30,
		Quality:  85,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.DeviceID < 0 {
		errors = append(errors, "device_id must not be negative")
	}
	if c.Width < 160 || c.Width > 4096 {
		errors = append(errors, "width must be between 160 and 4096")
	}
	if c.Height < 120 || c.Height > 2160 {
		errors = append(errors, "height must be between 120 and 2160")
	}
	if c.FPS < 1 || c.FPS > 120 {
		errors = append(errors, "fps must be between 1 and 120")
	}
	if c.Quality < 1 || c.Quality > 100 {
		errors = append(errors, "quality must be between 1 and 100")
	}

	return errors
}
