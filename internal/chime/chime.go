// Package chime drives a piezo buzzer on a GPIO line in response to the
// boundary events: one long pulse on the hour, one short pulse on the half
// hour, and a repeating burst for the alarm.
package chime

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/wwood2025/Satellite-Clock/internal/boundary"
)

var sleepFn = time.Sleep

// buzzer is the minimal interface chime needs from a GPIO backend.
// Close should be best-effort and leave the line low.
type buzzer interface {
	SetOn(on bool) error
	Close() error
}

type Config struct {
	Enable bool

	// Pin is BCM GPIO numbering.
	Pin int
}

type Snapshot struct {
	Enabled   bool   `json:"enabled"`
	Available bool   `json:"available"`
	LastEvent string `json:"last_event,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

// Service plays chime patterns off the tick loop. Events are queued so a
// slow pattern never stalls a tick; the queue is small and overflow drops.
type Service struct {
	cfg Config

	mu   sync.RWMutex
	snap Snapshot

	drv    buzzer
	events chan boundary.Event

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}
}

func New(cfg Config) *Service {
	if cfg.Pin == 0 {
		cfg.Pin = 13
	}
	return &Service{
		cfg:    cfg,
		events: make(chan boundary.Event, 8),
		stopCh: make(chan struct{}),
		snap:   Snapshot{Enabled: cfg.Enable},
	}
}

func (s *Service) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("chime: service is nil")
	}
	if !s.cfg.Enable {
		return nil
	}

	drv, err := openBuzzerFn(s.cfg.Pin)
	if err != nil {
		// Keep the clock running without a buzzer; status reports why.
		s.setErr(err.Error())
		log.Printf("chime init failed pin=%d: %v", s.cfg.Pin, err)
		return err
	}
	s.drv = drv
	s.setState(func(sn *Snapshot) { sn.Available = true })
	log.Printf("chime enabled pin=%d", s.cfg.Pin)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case ev := <-s.events:
				s.play(ev)
			}
		}
	}()
	return nil
}

// Play queues an event. Never blocks; when the queue is full the event is
// dropped (a missed chime beats a stalled tick loop).
func (s *Service) Play(ev boundary.Event) {
	if s == nil || !s.cfg.Enable {
		return
	}
	select {
	case s.events <- ev:
	default:
	}
}

func (s *Service) play(ev boundary.Event) {
	if s.drv == nil {
		return
	}
	var err error
	switch ev {
	case boundary.EventHourChime:
		err = s.pulse(600*time.Millisecond, 0, 1)
	case boundary.EventHalfChime:
		err = s.pulse(250*time.Millisecond, 0, 1)
	case boundary.EventAlarm:
		err = s.pulse(300*time.Millisecond, 200*time.Millisecond, 9)
	default:
		return
	}
	s.setState(func(sn *Snapshot) {
		sn.LastEvent = ev.String()
		if err != nil {
			sn.LastError = err.Error()
		}
	})
}

func (s *Service) pulse(on, off time.Duration, count int) error {
	for i := 0; i < count; i++ {
		if err := s.drv.SetOn(true); err != nil {
			return err
		}
		sleepFn(on)
		if err := s.drv.SetOn(false); err != nil {
			return err
		}
		if off > 0 && i < count-1 {
			sleepFn(off)
		}
	}
	return nil
}

func (s *Service) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *Service) Close() {
	if s == nil {
		return
	}
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
	if s.drv != nil {
		_ = s.drv.Close()
		s.drv = nil
	}
}

func (s *Service) setErr(msg string) {
	s.setState(func(sn *Snapshot) { sn.LastError = msg })
}

func (s *Service) setState(update func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update(&s.snap)
}
