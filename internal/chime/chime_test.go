package chime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/wwood2025/Satellite-Clock/internal/boundary"
)

type fakeBuzzer struct {
	mu     sync.Mutex
	pulses int
	on     bool
	closed bool
}

func (f *fakeBuzzer) SetOn(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if on && !f.on {
		f.pulses++
	}
	f.on = on
	return nil
}

func (f *fakeBuzzer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeBuzzer) state() (pulses int, on, closed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pulses, f.on, f.closed
}

func withFakeBuzzer(t *testing.T, fb *fakeBuzzer) {
	t.Helper()
	oldOpen := openBuzzerFn
	oldSleep := sleepFn
	openBuzzerFn = func(pin int) (buzzer, error) { return fb, nil }
	sleepFn = func(time.Duration) {}
	t.Cleanup(func() {
		openBuzzerFn = oldOpen
		sleepFn = oldSleep
	})
}

func startService(t *testing.T, fb *fakeBuzzer) *Service {
	t.Helper()
	withFakeBuzzer(t, fb)
	svc := New(Config{Enable: true, Pin: 13})
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(svc.Close)
	return svc
}

func waitPulses(t *testing.T, fb *fakeBuzzer, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if pulses, _, _ := fb.state(); pulses == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	pulses, _, _ := fb.state()
	t.Fatalf("pulses = %d, want %d", pulses, want)
}

func TestService_HourChimeIsOnePulse(t *testing.T) {
	fb := &fakeBuzzer{}
	svc := startService(t, fb)
	svc.Play(boundary.EventHourChime)
	waitPulses(t, fb, 1)
	if _, on, _ := fb.state(); on {
		t.Fatalf("buzzer left on after pattern")
	}
}

func TestService_AlarmIsBurst(t *testing.T) {
	fb := &fakeBuzzer{}
	svc := startService(t, fb)
	svc.Play(boundary.EventAlarm)
	waitPulses(t, fb, 9)
}

func TestService_CloseSilencesBuzzer(t *testing.T) {
	fb := &fakeBuzzer{}
	svc := startService(t, fb)
	svc.Play(boundary.EventHalfChime)
	waitPulses(t, fb, 1)
	svc.Close()
	if _, _, closed := fb.state(); !closed {
		t.Fatalf("expected driver closed")
	}
}

func TestService_DisabledPlayIsNoop(t *testing.T) {
	svc := New(Config{Enable: false})
	svc.Play(boundary.EventAlarm) // must not panic or block
	if snap := svc.Snapshot(); snap.Enabled {
		t.Fatalf("snapshot reports enabled")
	}
}
