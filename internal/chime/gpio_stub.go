//go:build !linux || (!arm && !arm64)

package chime

import "fmt"

// Stub implementation for non-Linux and/or non-ARM platforms.
func openBuzzer(pin int) (buzzer, error) {
	return nil, fmt.Errorf("chime: gpio unsupported on this platform")
}

var openBuzzerFn = openBuzzer
