// Package debug provides global debug logging flags
package debug

import "fmt"

// Enabled controls whether debug logging is active
var Enabled bool

// Vision controls whether verbose per-frame vision logs are shown
// (face landmarks, object boxes, IoU scores).
// Use --debug-vision flag to enable these very verbose logs
var Vision bool

// Log prints a message only if debug mode is enabled
func Log(format string, args ...interface{}) {
	if Enabled {
		fmt.Printf(format, args...)
	}
}

// Logln prints a message with newline only if debug mode is enabled
func Logln(msg string) {
	if Enabled {
		fmt.Println(msg)
	}
}

// VisionLog prints a message only if vision debug mode is enabled
func VisionLog(format string, args ...interface{}) {
	if Vision {
		fmt.Printf(format, args...)
	}
}

// VisionLogln prints a message with newline only if vision debug mode is enabled
func VisionLogln(msg string) {
	if Vision {
		fmt.Println(msg)
	}
}
