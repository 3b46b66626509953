package arbiter

import (
	"strings"
	"testing"
	"time"

	"github.com/wwood2025/Satellite-Clock/internal/gps"
)

var testZone = time.FixedZone("UTC-5", -5*60*60)

type fakeQuerier struct {
	t       time.Time
	server  string
	ok      bool
	queries int
}

func (q *fakeQuerier) Query() (time.Time, string, bool) {
	q.queries++
	return q.t, q.server, q.ok
}

func goodFix(fixTime, lastRecv time.Time) gps.Snapshot {
	return gps.Snapshot{
		FixTime:     fixTime,
		FixQuality:  1,
		Satellites:  8,
		FixType:     gps.FixType3D,
		BestSNR:     40,
		LastReceive: lastRecv,
	}
}

func TestTick_SnapWhenGPSRunsAhead(t *testing.T) {
	q := &fakeQuerier{}
	a := New(q, testZone)

	base := time.Now()
	display := time.Date(2024, 1, 1, 7, 0, 0, 0, testZone)

	a.Tick(base, goodFix(display, base)) // seeds displayed = T

	// One second later the receiver reports T+2s: beyond the 1.5 s threshold.
	got, _ := a.Tick(base.Add(time.Second), goodFix(display.Add(2*time.Second), base.Add(time.Second)))
	want := display.Add(2 * time.Second)
	if !got.Equal(want) {
		t.Fatalf("expected snap to %v, got %v", want, got)
	}
}

func TestTick_GlideAbsorbsSmallDelta(t *testing.T) {
	q := &fakeQuerier{}
	a := New(q, testZone)

	base := time.Now()
	display := time.Date(2024, 1, 1, 7, 0, 0, 0, testZone)

	a.Tick(base, goodFix(display, base))

	// Receiver only 0.5 s ahead: glide by elapsed, ignore the delta.
	got, _ := a.Tick(base.Add(time.Second), goodFix(display.Add(500*time.Millisecond), base.Add(time.Second)))
	want := display.Add(time.Second)
	if !got.Equal(want) {
		t.Fatalf("expected glide to %v, got %v", want, got)
	}
	if q.queries != 0 {
		t.Fatalf("GPS ticks must not query NTP, got %d queries", q.queries)
	}
}

func TestTick_StaleGPSFallsBack(t *testing.T) {
	q := &fakeQuerier{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), server: "time.example", ok: true}
	a := New(q, testZone)

	base := time.Now()
	fixTime := time.Date(2024, 1, 1, 7, 0, 0, 0, testZone)

	// Last quality-gated sentence is 11 s old: feed must be distrusted even
	// though the fix time itself is defined.
	fix := goodFix(fixTime, base.Add(-11*time.Second))
	got, label := a.Tick(base, fix)
	if q.queries != 1 {
		t.Fatalf("expected an NTP query, got %d", q.queries)
	}
	if !strings.HasPrefix(label, "NTP: ") {
		t.Fatalf("label = %q, want NTP prefix", label)
	}
	want := time.Date(2024, 1, 1, 7, 0, 0, 0, testZone)
	if !got.Equal(want) {
		t.Fatalf("displayed = %v, want %v", got, want)
	}
}

func TestTick_NoReceiveInstantMeansNoGPS(t *testing.T) {
	q := &fakeQuerier{ok: false}
	a := New(q, testZone)

	base := time.Now()
	fix := gps.Snapshot{
		FixTime:    time.Date(2024, 1, 1, 7, 0, 0, 0, testZone),
		FixQuality: 1,
	}
	_, label := a.Tick(base, fix)
	if strings.HasPrefix(label, "GPS:") {
		t.Fatalf("feed without a receive instant must not count as GPS, label=%q", label)
	}
}

func TestTick_NTPThrottle(t *testing.T) {
	q := &fakeQuerier{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), server: "time.example", ok: true}
	a := New(q, testZone)

	base := time.Now()
	none := gps.Snapshot{FixType: gps.FixTypeNone}

	a.Tick(base, none)
	if q.queries != 1 {
		t.Fatalf("first tick must query, got %d", q.queries)
	}

	// 5 s later: still inside the 30 s window, no new query.
	a.Tick(base.Add(5*time.Second), none)
	if q.queries != 1 {
		t.Fatalf("tick inside throttle window queried, total %d", q.queries)
	}

	// 31 s after the last query: exactly one more.
	a.Tick(base.Add(31*time.Second), none)
	if q.queries != 2 {
		t.Fatalf("expected second query after window, got %d", q.queries)
	}
}

func TestTick_ThrottledTicksGlide(t *testing.T) {
	q := &fakeQuerier{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), server: "time.example", ok: true}
	a := New(q, testZone)

	base := time.Now()
	none := gps.Snapshot{FixType: gps.FixTypeNone}

	first, label := a.Tick(base, none)
	got, label2 := a.Tick(base.Add(2*time.Second), none)
	if !got.Equal(first.Add(2 * time.Second)) {
		t.Fatalf("expected glide by 2s: %v -> %v", first, got)
	}
	if label2 != label {
		t.Fatalf("throttled tick changed label: %q -> %q", label, label2)
	}
}

func TestTick_OfflineSeedsFromSystemClock(t *testing.T) {
	seed := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	oldNow := systemNow
	systemNow = func() time.Time { return seed }
	defer func() { systemNow = oldNow }()

	q := &fakeQuerier{ok: false}
	a := New(q, testZone)

	got, label := a.Tick(time.Now(), gps.Snapshot{FixType: gps.FixTypeNone})
	if label != LabelOffline {
		t.Fatalf("label = %q, want %q", label, LabelOffline)
	}
	if !got.Equal(seed) {
		t.Fatalf("displayed = %v, want seed %v", got, seed)
	}
}

func TestTick_GPSLabelFormat(t *testing.T) {
	q := &fakeQuerier{}
	a := New(q, testZone)

	base := time.Now()
	_, label := a.Tick(base, goodFix(time.Date(2024, 1, 1, 7, 0, 0, 0, testZone), base))
	want := "GPS: 3D FIX | Sats:8 | SNR:40 dB"
	if label != want {
		t.Fatalf("label = %q, want %q", label, want)
	}
}

// End-to-end: a valid RMC decoding to 2024-01-01T12:00:00 UTC at offset -5
// must display 07:00 local on the next tick, labelled GPS.
func TestTick_EndToEndFromSentence(t *testing.T) {
	st := gps.NewState(testZone)
	now := time.Now()
	st.Apply(now, "$GPGGA,120000,,,,,1,08,,,,,,,")
	st.Apply(now, "$GPRMC,120000,A,,,,,,,010124,,")

	a := New(&fakeQuerier{}, testZone)
	got, label := a.Tick(now.Add(80*time.Millisecond), st.Snapshot())
	if !strings.HasPrefix(label, "GPS:") {
		t.Fatalf("label = %q, want GPS prefix", label)
	}
	want := time.Date(2024, 1, 1, 7, 0, 0, 0, testZone)
	if !got.Equal(want) {
		t.Fatalf("displayed = %v, want %v", got, want)
	}
}
