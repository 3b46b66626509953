// Package arbiter fuses the satellite feed, the network time fallback and the
// local monotonic clock into one smoothly advancing wall-clock value.
//
// Each tick picks a tier: a fresh GPS fix wins; otherwise a throttled NTP
// query; otherwise pure extrapolation from the last known value. No tier ever
// fails the tick; the output is always a best-effort timestamp plus a label
// describing which source produced it.
package arbiter

import (
	"fmt"
	"time"

	"github.com/wwood2025/Satellite-Clock/internal/gps"
)

const (
	// gpsStaleAfter is how long after the last quality-gated sentence the
	// satellite feed is still trusted.
	gpsStaleAfter = 10 * time.Second

	// snapThreshold bounds extrapolation error: once the satellite time runs
	// ahead of the displayed time by more than this, the display snaps to it.
	// Smaller differences are absorbed by gliding to avoid visible jitter.
	snapThreshold = 1500 * time.Millisecond

	// queryInterval spaces out network queries while GPS is unavailable.
	// Measured on the monotonic clock so wall jumps cannot defeat it.
	queryInterval = 30 * time.Second
)

// Source labels, in fallback order.
const (
	LabelOffline = "System time (offline)"
	LabelStartup = "Startup"
)

// Querier asks the network time servers once; ok is false when all failed.
type Querier interface {
	Query() (t time.Time, server string, ok bool)
}

// systemNow seeds the display when every source is unavailable.
// Swapped by tests.
var systemNow = time.Now

// Arbiter owns the displayed wall-clock value. Not safe for concurrent use;
// the tick loop is its only caller.
type Arbiter struct {
	ntp Querier
	loc *time.Location

	displayed  time.Time
	lastTick   time.Time
	lastQuery  time.Time
	lastServer string
	label      string
	snapped    bool
}

func New(ntp Querier, loc *time.Location) *Arbiter {
	if loc == nil {
		loc = time.Local
	}
	return &Arbiter{ntp: ntp, loc: loc, label: LabelStartup}
}

// Tick advances the displayed time by one step. now must come from the
// monotonic clock; fix is the current receiver snapshot.
func (a *Arbiter) Tick(now time.Time, fix gps.Snapshot) (time.Time, string) {
	var elapsed time.Duration
	if !a.lastTick.IsZero() {
		elapsed = now.Sub(a.lastTick)
	}
	a.lastTick = now
	a.snapped = false

	haveGPS := !fix.FixTime.IsZero() && fix.FixQuality > 0 &&
		!fix.LastReceive.IsZero() && now.Sub(fix.LastReceive) < gpsStaleAfter

	if haveGPS {
		switch {
		case a.displayed.IsZero():
			a.displayed = fix.FixTime
		case fix.FixTime.After(a.displayed.Add(snapThreshold)):
			// Snap: discard the extrapolated value, the receiver has drifted
			// too far ahead of it.
			a.displayed = fix.FixTime
			a.snapped = true
		default:
			a.displayed = a.displayed.Add(elapsed)
		}
		a.label = fmt.Sprintf("GPS: %s | Sats:%d | SNR:%d dB", fix.FixType, fix.Satellites, fix.BestSNR)
		return a.displayed, a.label
	}

	if a.lastServer == "" || now.Sub(a.lastQuery) > queryInterval {
		a.lastQuery = now
		if t, server, ok := a.ntp.Query(); ok {
			a.displayed = t.In(a.loc)
			a.lastServer = server
			a.label = "NTP: " + server
			return a.displayed, a.label
		}
		if a.displayed.IsZero() {
			a.displayed = systemNow().In(a.loc)
		} else {
			a.displayed = a.displayed.Add(elapsed)
		}
		a.label = LabelOffline
		return a.displayed, a.label
	}

	// Inside the throttle window: glide, keep the previous label.
	if a.displayed.IsZero() {
		a.displayed = systemNow().In(a.loc)
	} else {
		a.displayed = a.displayed.Add(elapsed)
	}
	return a.displayed, a.label
}

// Displayed returns the current wall-clock value (zero before the first tick).
func (a *Arbiter) Displayed() time.Time {
	return a.displayed
}

// Label returns the human-readable description of the last driving source.
func (a *Arbiter) Label() string {
	return a.label
}

// Snapped reports whether the last tick snapped instead of gliding.
func (a *Arbiter) Snapped() bool {
	return a.snapped
}
