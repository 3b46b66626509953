// Package boundary turns the continuously advancing displayed time into
// discrete events: hour chimes, half-hour chimes and alarm matches. The tick
// loop observes the same minute many times over; latches ensure each boundary
// fires exactly once and re-arms after the minute moves on.
package boundary

import "time"

type Event int

const (
	EventHourChime Event = iota
	EventHalfChime
	EventAlarm
)

func (e Event) String() string {
	switch e {
	case EventHourChime:
		return "hour_chime"
	case EventHalfChime:
		return "half_chime"
	case EventAlarm:
		return "alarm"
	default:
		return "unknown"
	}
}

// Alarm is the configured alarm time; Set is false when no alarm is armed.
type Alarm struct {
	Hour   int
	Minute int
	Set    bool
}

// Watcher holds the chime and alarm latches. Single-caller, no locking.
type Watcher struct {
	chimedHour   int
	chimedHourOK bool
	chimedHalf   int
	chimedHalfOK bool

	alarmLatched bool
	latchHour    int
	latchMinute  int
}

func NewWatcher() *Watcher {
	return &Watcher{}
}

// Observe evaluates one displayed timestamp and returns the events it
// crosses. A zero t (before the first arbiter tick) produces nothing.
func (w *Watcher) Observe(t time.Time, alarm Alarm) []Event {
	if t.IsZero() {
		return nil
	}
	hour, minute, second := t.Hour(), t.Minute(), t.Second()

	var events []Event

	if minute == 0 && (!w.chimedHourOK || w.chimedHour != hour) {
		events = append(events, EventHourChime)
		w.chimedHour = hour
		w.chimedHourOK = true
	}
	if minute == 30 && (!w.chimedHalfOK || w.chimedHalf != hour) {
		events = append(events, EventHalfChime)
		w.chimedHalf = hour
		w.chimedHalfOK = true
	}
	if minute != 0 && minute != 30 {
		// Re-arm both chimes once the minute leaves the boundary.
		w.chimedHourOK = false
		w.chimedHalfOK = false
	}

	if alarm.Set && hour == alarm.Hour && minute == alarm.Minute {
		if second == 0 && !(w.alarmLatched && w.latchHour == hour && w.latchMinute == minute) {
			events = append(events, EventAlarm)
			w.alarmLatched = true
			w.latchHour = hour
			w.latchMinute = minute
		}
	} else {
		// Outside the alarm minute the latch clears, so the alarm can fire
		// again at its next occurrence.
		w.alarmLatched = false
	}

	return events
}
