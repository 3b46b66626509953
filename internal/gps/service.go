package gps

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Config controls the GPS reader.
//
// Device may be empty to auto-detect a /dev/ttyACM* or /dev/ttyUSB* port.
// UTCOffset is applied to every decoded fix time so the rest of the clock only
// ever sees local-zone values.
type Config struct {
	Enable bool

	Device string
	Baud   int

	// Location the decoded fix times are expressed in (a fixed UTC offset).
	Location *time.Location

	// OnSentence, when set, is called once per line with the outcome.
	// Used for metrics; must be fast.
	OnSentence func(applied bool)
}

// Service reads NMEA from a serial device on its own goroutine and publishes
// the accumulated receiver state as an atomic snapshot. The tick loop is the
// single reader; partial updates are never observable.
type Service struct {
	cfg Config

	cancel context.CancelFunc
	wg     sync.WaitGroup

	last atomic.Value // Snapshot

	mu      sync.Mutex
	closer  io.Closer
	lastErr atomic.Value // string
}

func New(cfg Config) *Service {
	s := &Service{cfg: cfg}
	s.last.Store(Snapshot{FixType: FixTypeNone})
	s.lastErr.Store("")
	return s
}

func (s *Service) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("gps service is nil")
	}
	if !s.cfg.Enable {
		return nil
	}
	if ctx == nil {
		return fmt.Errorf("ctx is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	device := strings.TrimSpace(s.cfg.Device)
	if device == "" {
		device = autoDetectDevice()
		if device == "" {
			s.setError("gps auto-detect failed: no /dev/ttyACM* or /dev/ttyUSB* found")
			return fmt.Errorf("gps auto-detect failed")
		}
	}
	baud := s.cfg.Baud
	if baud == 0 {
		baud = 9600
	}

	f, err := openSerial(device, baud)
	if err != nil {
		s.setError(fmt.Sprintf("gps open failed device=%s baud=%d: %v", device, baud, err))
		return err
	}
	s.closer = f

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	log.Printf("gps enabled device=%s baud=%d", device, baud)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() { _ = f.Close() }()
		s.consume(childCtx, f)
	}()
	return nil
}

// consume reads newline-terminated sentences until ctx is cancelled or the
// reader fails. Factored out so tests and replay sources can feed lines
// without a serial device.
func (s *Service) consume(ctx context.Context, r io.Reader) {
	scanner := bufio.NewScanner(r)
	// NMEA sentences are typically < 82 chars; allow headroom for chatter.
	scanner.Buffer(make([]byte, 0, 256), 4096)

	st := NewState(s.cfg.Location)
	s.last.Store(st.Snapshot())

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if !scanner.Scan() {
			err := scanner.Err()
			if err == nil {
				err = io.EOF
			}
			s.setError(fmt.Sprintf("gps read stopped: %v", err))
			return
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		applied := st.Apply(time.Now(), line)
		if s.cfg.OnSentence != nil {
			s.cfg.OnSentence(applied)
		}
		if applied {
			s.last.Store(st.Snapshot())
		}
	}
}

// Feed runs the reader over r instead of a serial device. It blocks until r
// is drained or ctx is cancelled.
func (s *Service) Feed(ctx context.Context, r io.Reader) {
	s.consume(ctx, r)
}

func (s *Service) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	cancel := s.cancel
	closer := s.closer
	s.cancel = nil
	s.closer = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if closer != nil {
		_ = closer.Close()
	}
	s.wg.Wait()
}

// Snapshot returns the most recently published receiver state.
func (s *Service) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{FixType: FixTypeNone}
	}
	v := s.last.Load()
	if v == nil {
		return Snapshot{FixType: FixTypeNone}
	}
	return v.(Snapshot)
}

// LastError returns the most recent reader error, if any.
func (s *Service) LastError() string {
	if s == nil {
		return ""
	}
	v := s.lastErr.Load()
	if v == nil {
		return ""
	}
	return v.(string)
}

func (s *Service) setError(msg string) {
	s.lastErr.Store(msg)
}

func autoDetectDevice() string {
	// Keep it intentionally tiny and predictable.
	candidates := []string{}
	for i := 0; i < 10; i++ {
		candidates = append(candidates, fmt.Sprintf("/dev/ttyACM%d", i))
	}
	for i := 0; i < 10; i++ {
		candidates = append(candidates, fmt.Sprintf("/dev/ttyUSB%d", i))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
