package gps

import (
	"strconv"
	"time"
)

// Fix type labels reported by GSA.
const (
	FixTypeNone = "NO FIX"
	FixType2D   = "2D FIX"
	FixType3D   = "3D FIX"
)

// State accumulates receiver state across sentences. It has a single writer
// (the serial reader) and is never shared directly; consumers take a Snapshot.
type State struct {
	loc *time.Location

	fixTime    time.Time // local-zone time from the last valid RMC
	quality    int
	satellites int
	fixType    string
	bestSNR    int       // running maximum, never reset within a run
	lastRecv   time.Time // monotonic instant of the last quality-gated sentence
}

// NewState returns a State whose decoded fix times are expressed in loc.
func NewState(loc *time.Location) *State {
	if loc == nil {
		loc = time.UTC
	}
	return &State{loc: loc, fixType: FixTypeNone}
}

// Snapshot is an immutable view of the receiver state.
type Snapshot struct {
	FixTime     time.Time `json:"fix_time,omitempty"`
	FixQuality  int       `json:"fix_quality"`
	Satellites  int       `json:"satellites"`
	FixType     string    `json:"fix_type"`
	BestSNR     int       `json:"best_snr"`
	LastReceive time.Time `json:"-"`
}

func (s *State) Snapshot() Snapshot {
	return Snapshot{
		FixTime:     s.fixTime,
		FixQuality:  s.quality,
		Satellites:  s.satellites,
		FixType:     s.fixType,
		BestSNR:     s.bestSNR,
		LastReceive: s.lastRecv,
	}
}

// Apply feeds one line into the state. now is the monotonic receive instant.
// It reports whether any field changed; unrecognized or unreadable lines are
// ignored without error.
func (s *State) Apply(now time.Time, line string) bool {
	tag, fields, ok := splitSentence(line)
	if !ok {
		return false
	}
	switch tag {
	case "GPRMC", "GNRMC":
		return s.applyRMC(now, fields)
	case "GPGGA":
		return s.applyGGA(now, fields)
	case "GPGSA":
		return s.applyGSA(now, fields)
	case "GPGSV":
		return s.applyGSV(now, fields)
	default:
		return false
	}
}

// markReceive refreshes the staleness instant. Fix quality > 0 is the sole
// gate: sentences seen while the receiver reports no fix do not count.
func (s *State) markReceive(now time.Time) {
	if s.quality > 0 {
		s.lastRecv = now
	}
}

// RMC: field 1 = hhmmss, field 2 = status (A=valid), field 9 = ddmmyy.
func (s *State) applyRMC(now time.Time, f []string) bool {
	status, ok := field(f, 2)
	if !ok || status != "A" {
		return false
	}
	timeStr, _ := field(f, 1)
	dateStr, _ := field(f, 9)
	if len(timeStr) < 6 || len(dateStr) < 6 {
		return false
	}
	hh, ok1 := atoi(timeStr[0:2])
	mm, ok2 := atoi(timeStr[2:4])
	ss, ok3 := atoi(timeStr[4:6])
	dd, ok4 := atoi(dateStr[0:2])
	mo, ok5 := atoi(dateStr[2:4])
	yy, ok6 := atoi(dateStr[4:6])
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
		return false
	}
	utc := time.Date(2000+yy, time.Month(mo), dd, hh, mm, ss, 0, time.UTC)
	// time.Date normalizes out-of-range components (month 99, Feb 30, hour
	// 31) instead of failing; a round trip detects any such sentence so it
	// is skipped like every other unreadable one.
	if utc.Year() != 2000+yy || utc.Month() != time.Month(mo) || utc.Day() != dd ||
		utc.Hour() != hh || utc.Minute() != mm || utc.Second() != ss {
		return false
	}
	s.fixTime = utc.In(s.loc)
	s.markReceive(now)
	return true
}

// GGA: field 6 = fix quality (empty means 0), field 7 = satellites used.
func (s *State) applyGGA(now time.Time, f []string) bool {
	updated := false
	if v, ok := field(f, 6); ok {
		if v == "" {
			s.quality = 0
			updated = true
		} else if q, ok := atoi(v); ok {
			s.quality = q
			updated = true
		}
	}
	if v, ok := field(f, 7); ok {
		if v == "" {
			s.satellites = 0
			updated = true
		} else if n, ok := atoi(v); ok {
			s.satellites = n
			updated = true
		}
	}
	s.markReceive(now)
	return updated
}

// GSA: field 2 = fix mode (1=none, 2=2D, 3=3D).
func (s *State) applyGSA(now time.Time, f []string) bool {
	mode, ok := field(f, 2)
	if !ok {
		return false
	}
	switch mode {
	case "2":
		s.fixType = FixType2D
	case "3":
		s.fixType = FixType3D
	default:
		s.fixType = FixTypeNone
	}
	s.markReceive(now)
	return true
}

// GSV: fields 7, 11, 15, 19 carry one SNR per satellite slot when present.
// BestSNR is a high-water mark for display; it intentionally never decreases.
func (s *State) applyGSV(now time.Time, f []string) bool {
	updated := false
	for _, idx := range [...]int{7, 11, 15, 19} {
		v, ok := field(f, idx)
		if !ok || v == "" {
			continue
		}
		snr, ok := atoi(v)
		if !ok || snr < 0 {
			continue
		}
		if snr > s.bestSNR {
			s.bestSNR = snr
			updated = true
		}
	}
	s.markReceive(now)
	return updated
}

func atoi(v string) (int, bool) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
