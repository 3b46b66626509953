package gps

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestService_FeedPublishesSnapshots(t *testing.T) {
	svc := New(Config{Location: testZone})

	lines := strings.Join([]string{
		"$GPGGA,120000,,,,,1,07,,,,,,,",
		"$GPGSA,A,3,04,05,,09,12,,,24,,,,,2.5,1.3,2.1",
		"$GPGSV,3,1,11,03,03,111,23,04,15,270,41,06,01,010,12,13,06,292,35",
		"$GPRMC,120000,A,,,,,,,010124,,",
		"this is not nmea",
	}, "\r\n") + "\r\n"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	svc.Feed(ctx, strings.NewReader(lines))

	snap := svc.Snapshot()
	if snap.FixQuality != 1 {
		t.Fatalf("quality = %d, want 1", snap.FixQuality)
	}
	if snap.Satellites != 7 {
		t.Fatalf("satellites = %d, want 7", snap.Satellites)
	}
	if snap.FixType != FixType3D {
		t.Fatalf("fix type = %q, want %q", snap.FixType, FixType3D)
	}
	if snap.BestSNR != 41 {
		t.Fatalf("best snr = %d, want 41", snap.BestSNR)
	}
	if snap.FixTime.IsZero() || snap.FixTime.Hour() != 7 {
		t.Fatalf("fix time = %v, want 07:00 local", snap.FixTime)
	}
}

func TestService_DisabledStartIsNoop(t *testing.T) {
	svc := New(Config{Enable: false})
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("disabled start: %v", err)
	}
	svc.Close()
	if got := svc.Snapshot().FixType; got != FixTypeNone {
		t.Fatalf("fix type = %q, want %q", got, FixTypeNone)
	}
}
