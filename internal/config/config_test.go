package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "cfg.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func requireErrEq(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %q, got nil", want)
	}
	if err.Error() != want {
		t.Fatalf("error=%q want %q", err.Error(), want)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeTempConfig(t, "clock:\n  utc_offset_hours: -5\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Clock.TickInterval != 80*time.Millisecond {
		t.Fatalf("tick_interval=%s want 80ms", cfg.Clock.TickInterval)
	}
	if cfg.GPS.Baud != 9600 {
		t.Fatalf("baud=%d want 9600", cfg.GPS.Baud)
	}
	if len(cfg.NTP.Servers) != 3 || cfg.NTP.Servers[0] != "pool.ntp.org" {
		t.Fatalf("servers=%v", cfg.NTP.Servers)
	}
	if cfg.NTP.Timeout != 3*time.Second {
		t.Fatalf("timeout=%s", cfg.NTP.Timeout)
	}
	if cfg.Alarm.File != "alarm_time.json" {
		t.Fatalf("alarm file=%q", cfg.Alarm.File)
	}
	if cfg.Chime.Pin != 13 {
		t.Fatalf("chime pin=%d", cfg.Chime.Pin)
	}
	if cfg.Web.Listen != ":8080" {
		t.Fatalf("listen=%q", cfg.Web.Listen)
	}
}

func TestLoad_OffsetValidation(t *testing.T) {
	path := writeTempConfig(t, "clock:\n  utc_offset_hours: 15\n")
	_, err := Load(path)
	requireErrEq(t, err, "clock.utc_offset_hours must be within -12..14, got 15")

	path = writeTempConfig(t, "clock:\n  utc_offset_hours: -13\n")
	_, err = Load(path)
	requireErrEq(t, err, "clock.utc_offset_hours must be within -12..14, got -13")
}

func TestLoad_BaudValidation(t *testing.T) {
	path := writeTempConfig(t, "gps:\n  baud: 1234\n")
	_, err := Load(path)
	requireErrEq(t, err, "gps.baud 1234 is not a supported rate")
}

func TestLoad_MQTTRequiresBroker(t *testing.T) {
	path := writeTempConfig(t, "mqtt:\n  enable: true\n")
	_, err := Load(path)
	requireErrEq(t, err, "mqtt.broker is required when mqtt.enable is true")
}

func TestLocation(t *testing.T) {
	c := ClockConfig{UTCOffsetHours: -5}
	loc := c.Location()
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC).In(loc)
	if at.Hour() != 7 {
		t.Fatalf("hour=%d want 7", at.Hour())
	}
	if (ClockConfig{}).Location() != time.UTC {
		t.Fatalf("zero offset should use UTC")
	}
}
