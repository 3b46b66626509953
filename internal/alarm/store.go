// Package alarm persists the configured alarm time as a small JSON file so it
// survives restarts. The web control surface writes it; the tick loop reads it.
package alarm

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/wwood2025/Satellite-Clock/internal/boundary"
)

// fileSchema matches the on-disk format: {"hour": 6, "minute": 45} with null
// meaning unset.
type fileSchema struct {
	Hour   *int `json:"hour"`
	Minute *int `json:"minute"`
}

type Store struct {
	path string

	mu  sync.Mutex
	cur boundary.Alarm
}

// NewStore loads the alarm file at path. A missing or unreadable file simply
// means no alarm is set; the clock must keep running either way.
func NewStore(path string) *Store {
	s := &Store{path: path}

	b, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var f fileSchema
	if err := json.Unmarshal(b, &f); err != nil {
		return s
	}
	if f.Hour != nil && f.Minute != nil && validAlarm(*f.Hour, *f.Minute) {
		s.cur = boundary.Alarm{Hour: *f.Hour, Minute: *f.Minute, Set: true}
	}
	return s
}

// Get returns the currently armed alarm.
func (s *Store) Get() boundary.Alarm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Set arms the alarm and persists it.
func (s *Store) Set(hour, minute int) error {
	if !validAlarm(hour, minute) {
		return fmt.Errorf("alarm out of range: %02d:%02d", hour, minute)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = boundary.Alarm{Hour: hour, Minute: minute, Set: true}
	return s.saveLocked()
}

// Clear disarms the alarm and persists the unset state.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = boundary.Alarm{}
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	var f fileSchema
	if s.cur.Set {
		h, m := s.cur.Hour, s.cur.Minute
		f.Hour = &h
		f.Minute = &m
	}
	b, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("alarm marshal: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("alarm save: %w", err)
	}
	return nil
}

func validAlarm(hour, minute int) bool {
	return hour >= 0 && hour <= 23 && minute >= 0 && minute <= 59
}
