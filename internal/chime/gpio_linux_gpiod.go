//go:build linux && (arm || arm64)

package chime

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/warthog618/go-gpiocdev"
)

// openBuzzer drives the given BCM GPIO as a digital output using the Linux
// GPIO character device (libgpiod). Intended for a piezo buzzer or a small
// speaker behind a transistor.
func openBuzzer(pin int) (buzzer, error) {
	if pin <= 0 {
		return nil, fmt.Errorf("chime: invalid gpio pin %d", pin)
	}

	// On Pi, line names are commonly "GPIO13", etc.
	lineName := fmt.Sprintf("GPIO%d", pin)

	// Try likely chips first; newer Pi kernels can expose header GPIOs on
	// more than one chip.
	chipCandidates := []string{"/dev/gpiochip0", "/dev/gpiochip4"}
	entries, _ := os.ReadDir("/dev")
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "gpiochip") {
			chipCandidates = append(chipCandidates, filepath.Join("/dev", name))
		}
	}

	for _, chipPath := range chipCandidates {
		chip, err := gpiocdev.NewChip(chipPath)
		if err != nil {
			continue
		}
		offset, err := chip.FindLine(lineName)
		if err != nil {
			_ = chip.Close()
			continue
		}
		line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("satclock-chime"))
		if err != nil {
			_ = chip.Close()
			continue
		}
		return &gpiodBuzzer{chip: chip, line: line}, nil
	}

	return nil, fmt.Errorf("chime: gpio line %q not found (or busy)", lineName)
}

var openBuzzerFn = openBuzzer

type gpiodBuzzer struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

func (g *gpiodBuzzer) SetOn(on bool) error {
	if g == nil || g.line == nil {
		return fmt.Errorf("chime: gpio driver not initialized")
	}
	v := 0
	if on {
		v = 1
	}
	return g.line.SetValue(v)
}

func (g *gpiodBuzzer) Close() error {
	if g == nil || g.line == nil {
		return nil
	}
	// Graceful shutdown: leave the buzzer silent.
	_ = g.line.SetValue(0)
	err := g.line.Close()
	g.line = nil
	if g.chip != nil {
		_ = g.chip.Close()
		g.chip = nil
	}
	return err
}
