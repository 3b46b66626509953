package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	GPS     GPSConfig     `yaml:"gps"`
	Clock   ClockConfig   `yaml:"clock"`
	NTP     NTPConfig     `yaml:"ntp"`
	Alarm   AlarmConfig   `yaml:"alarm"`
	Chime   ChimeConfig   `yaml:"chime"`
	Web     WebConfig     `yaml:"web"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Display DisplayConfig `yaml:"display"`
}

type GPSConfig struct {
	Enable bool   `yaml:"enable"`
	Device string `yaml:"device"` // empty = auto-detect
	Baud   int    `yaml:"baud"`
}

type ClockConfig struct {
	UTCOffsetHours int           `yaml:"utc_offset_hours"`
	TickInterval   time.Duration `yaml:"tick_interval"`
}

// Location builds the fixed local zone for the configured UTC offset.
func (c ClockConfig) Location() *time.Location {
	if c.UTCOffsetHours == 0 {
		return time.UTC
	}
	name := fmt.Sprintf("UTC%+d", c.UTCOffsetHours)
	return time.FixedZone(name, c.UTCOffsetHours*3600)
}

type NTPConfig struct {
	Servers []string      `yaml:"servers"`
	Timeout time.Duration `yaml:"timeout"`
}

type AlarmConfig struct {
	File string `yaml:"file"`
}

type ChimeConfig struct {
	Enable bool `yaml:"enable"`
	Pin    int  `yaml:"pin"`
}

type WebConfig struct {
	Listen string `yaml:"listen"`
}

type MQTTConfig struct {
	Enable   bool          `yaml:"enable"`
	Broker   string        `yaml:"broker"`
	ClientID string        `yaml:"client_id"`
	Topic    string        `yaml:"topic"`
	Interval time.Duration `yaml:"interval"`
}

type DisplayConfig struct {
	Dest string `yaml:"dest"` // empty = no external display
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.DefaultAndValidate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultAndValidate fills defaults and rejects values the clock cannot run
// with. It is split from Load so tests and callers with an in-memory config
// can use it directly.
func (cfg *Config) DefaultAndValidate() error {
	if cfg.GPS.Baud == 0 {
		cfg.GPS.Baud = 9600
	}
	switch cfg.GPS.Baud {
	case 4800, 9600, 19200, 38400, 57600, 115200:
	default:
		return fmt.Errorf("gps.baud %d is not a supported rate", cfg.GPS.Baud)
	}

	if cfg.Clock.UTCOffsetHours < -12 || cfg.Clock.UTCOffsetHours > 14 {
		return fmt.Errorf("clock.utc_offset_hours must be within -12..14, got %d", cfg.Clock.UTCOffsetHours)
	}
	if cfg.Clock.TickInterval <= 0 {
		cfg.Clock.TickInterval = 80 * time.Millisecond
	}
	if cfg.Clock.TickInterval < 10*time.Millisecond {
		return fmt.Errorf("clock.tick_interval %v is too small", cfg.Clock.TickInterval)
	}

	if len(cfg.NTP.Servers) == 0 {
		cfg.NTP.Servers = []string{"pool.ntp.org", "time.google.com", "time.cloudflare.com"}
	}
	if cfg.NTP.Timeout <= 0 {
		cfg.NTP.Timeout = 3 * time.Second
	}

	if cfg.Alarm.File == "" {
		cfg.Alarm.File = "alarm_time.json"
	}

	if cfg.Chime.Pin == 0 {
		cfg.Chime.Pin = 13
	}
	if cfg.Chime.Pin < 0 {
		return fmt.Errorf("chime.pin must be a valid BCM pin, got %d", cfg.Chime.Pin)
	}

	if cfg.Web.Listen == "" {
		cfg.Web.Listen = ":8080"
	}

	if cfg.MQTT.Enable && cfg.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt.enable is true")
	}
	if cfg.MQTT.Interval <= 0 {
		cfg.MQTT.Interval = 5 * time.Second
	}

	return nil
}
