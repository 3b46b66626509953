// Package mqttpub publishes clock status to an MQTT broker so other devices
// on the network (home automation, secondary displays) can follow the clock
// without polling the web API.
package mqttpub

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type Config struct {
	Enable   bool
	Broker   string // e.g. tcp://localhost:1883
	ClientID string
	Topic    string
	Interval time.Duration
}

// Status is the published payload.
type Status struct {
	Time   string `json:"time"`
	Source string `json:"source"`
	Alarm  string `json:"alarm,omitempty"`
}

type Publisher struct {
	cfg    Config
	client mqtt.Client
	last   time.Time
}

// NewPublisher connects to the broker. A connection failure is returned to the
// caller; the clock runs fine without MQTT, so callers degrade rather than
// abort.
func NewPublisher(cfg Config) (*Publisher, error) {
	if !cfg.Enable {
		return &Publisher{cfg: cfg}, nil
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "satclock"
	}
	if cfg.Topic == "" {
		cfg.Topic = "satclock/status"
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(3 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, token.Error())
	}
	log.Printf("mqtt: connected to %s, publishing %s", cfg.Broker, cfg.Topic)
	return &Publisher{cfg: cfg, client: client}, nil
}

// Publish sends st if the publish interval has elapsed. Publishes are retained
// so late subscribers see the latest status immediately.
func (p *Publisher) Publish(now time.Time, st Status) {
	if p == nil || p.client == nil {
		return
	}
	if !p.last.IsZero() && now.Sub(p.last) < p.cfg.Interval {
		return
	}
	p.last = now

	payload, err := json.Marshal(st)
	if err != nil {
		return
	}
	if token := p.client.Publish(p.cfg.Topic, 0, true, payload); token.Wait() && token.Error() != nil {
		log.Printf("mqtt: publish failed: %v", token.Error())
	}
}

func (p *Publisher) Close() {
	if p == nil || p.client == nil {
		return
	}
	p.client.Disconnect(250)
}
