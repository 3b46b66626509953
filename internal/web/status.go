package web

import (
	"sync/atomic"
	"time"
)

type Status struct {
	startUnixNano int64
	ticks         uint64
	lastTickNano  int64
	clock         atomic.Value // ClockSnapshot
	gps           atomic.Value // GPSSnapshot
	alarm         atomic.Value // AlarmSnapshot
	chime         atomic.Value // ChimeSnapshot
}

func NewStatus() *Status {
	s := &Status{}
	now := time.Now().UTC()
	atomic.StoreInt64(&s.startUnixNano, now.UnixNano())
	atomic.StoreInt64(&s.lastTickNano, 0)
	s.clock.Store(ClockSnapshot{})
	s.gps.Store(GPSSnapshot{})
	s.alarm.Store(AlarmSnapshot{})
	s.chime.Store(ChimeSnapshot{})
	return s
}

// ClockSnapshot is the UI-facing view of the arbitrated time.
type ClockSnapshot struct {
	Time   string `json:"time,omitempty"`   // HH:MM:SS local
	Date   string `json:"date,omitempty"`   // Monday, January 02 2006
	Source string `json:"source,omitempty"` // "GPS: ..." / "NTP: ..." / offline
}

type GPSSnapshot struct {
	FixQuality int    `json:"fix_quality"`
	Satellites int    `json:"satellites"`
	FixType    string `json:"fix_type,omitempty"`
	BestSNR    int    `json:"best_snr"`
	LastError  string `json:"last_error,omitempty"`
}

type ChimeSnapshot struct {
	Enabled   bool   `json:"enabled"`
	Available bool   `json:"available"`
	LastEvent string `json:"last_event,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

type AlarmSnapshot struct {
	Set    bool   `json:"set"`
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	Pretty string `json:"pretty,omitempty"` // HH:MM when set
}

func (s *Status) SetClock(c ClockSnapshot) {
	s.clock.Store(c)
}

func (s *Status) SetGPS(g GPSSnapshot) {
	s.gps.Store(g)
}

func (s *Status) SetAlarm(a AlarmSnapshot) {
	s.alarm.Store(a)
}

func (s *Status) SetChime(c ChimeSnapshot) {
	s.chime.Store(c)
}

func (s *Status) MarkTick(nowUTC time.Time) {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	atomic.StoreInt64(&s.lastTickNano, nowUTC.UnixNano())
	atomic.AddUint64(&s.ticks, 1)
}

type StatusSnapshot struct {
	Service     string        `json:"service"`
	NowUTC      string        `json:"now_utc"`
	UptimeSec   int64         `json:"uptime_sec"`
	TicksTotal  uint64        `json:"ticks_total"`
	LastTickUTC string        `json:"last_tick_utc,omitempty"`
	Clock       ClockSnapshot `json:"clock"`
	GPS         GPSSnapshot   `json:"gps"`
	Alarm       AlarmSnapshot `json:"alarm"`
	Chime       ChimeSnapshot `json:"chime"`
}

func (s *Status) Snapshot(nowUTC time.Time) StatusSnapshot {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	start := time.Unix(0, atomic.LoadInt64(&s.startUnixNano)).UTC()
	uptime := nowUTC.Sub(start)
	lastTick := atomic.LoadInt64(&s.lastTickNano)

	snap := StatusSnapshot{
		Service:    "satclock",
		NowUTC:     nowUTC.UTC().Format(time.RFC3339Nano),
		UptimeSec:  int64(uptime.Seconds()),
		TicksTotal: atomic.LoadUint64(&s.ticks),
		Clock:      s.clock.Load().(ClockSnapshot),
		GPS:        s.gps.Load().(GPSSnapshot),
		Alarm:      s.alarm.Load().(AlarmSnapshot),
		Chime:      s.chime.Load().(ChimeSnapshot),
	}
	if lastTick != 0 {
		snap.LastTickUTC = time.Unix(0, lastTick).UTC().Format(time.RFC3339Nano)
	}
	return snap
}
