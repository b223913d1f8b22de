package drinking

import "time"

// Config holds all tunable parameters for the detection pipeline.
type Config struct {
	// Timing
	FaceInterval   time.Duration // How often to run face detection
	ObjectInterval time.Duration // How often to run object detection
	EvalInterval   time.Duration // Minimum spacing between fusion evaluations

	// Grace is how long a stream's last observation stays valid.
	// A transient detector miss inside this window does not count as
	// "face gone" or "object gone".
	Grace time.Duration

	// IoUThreshold is the minimum mouth/object IoU that counts as overlap.
	IoUThreshold float64

	// Classes is the vessel class whitelist.
	Classes []string

	// Session holds the start/stop hysteresis parameters.
	Session SessionConfig
}

// DefaultConfig returns the recommended pipeline configuration.
func DefaultConfig() Config {
	return Config{
		// Face detection runs faster than object detection; the fusion
		// step always uses the latest value of each.
		FaceInterval:   66 * time.Millisecond,  // ~15 Hz
		ObjectInterval: 200 * time.Millisecond, // 5 Hz
		EvalInterval:   100 * time.Millisecond,

		Grace: time.Second,

		// 10% overlap is enough: a bottle tilted to the mouth covers
		// little of the padded lip box.
		IoUThreshold: 0.1,

		Classes: []string{"cup", "glass", "bottle"},

		Session: DefaultSessionConfig(),
	}
}
