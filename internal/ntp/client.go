// Package ntp implements a minimal SNTP client used as the clock's fallback
// time source. One Query walks the configured server list in priority order
// and returns the first answer; retry cadence belongs to the caller.
package ntp

import (
	"fmt"
	"net"
	"strings"
	"time"
)

const defaultTimeout = 3 * time.Second

// ntpEpoch is 1900-01-01; NTP timestamps count seconds from there.
var ntpEpoch = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

type Config struct {
	// Servers, in priority order. Entries without a port get ":123".
	Servers []string
	// Timeout bounds each individual server attempt.
	Timeout time.Duration
}

type Client struct {
	servers []string
	timeout time.Duration

	// dial is swapped by tests.
	dial func(addr string, timeout time.Duration) (net.Conn, error)
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		servers: cfg.Servers,
		timeout: timeout,
		dial: func(addr string, timeout time.Duration) (net.Conn, error) {
			return net.DialTimeout("udp", addr, timeout)
		},
	}
}

// Query tries each server once, in order, and returns the first successful
// (UTC time, server) pair. ok is false when every server failed; there are no
// retries within a single call.
func (c *Client) Query() (t time.Time, server string, ok bool) {
	for _, s := range c.servers {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		got, err := c.queryServer(s)
		if err != nil {
			continue
		}
		return got, s, true
	}
	return time.Time{}, "", false
}

// queryServer performs one SNTP exchange (RFC 5905, client mode, version 4).
func (c *Client) queryServer(host string) (time.Time, error) {
	addr := host
	if _, _, err := net.SplitHostPort(host); err != nil {
		addr = net.JoinHostPort(host, "123")
	}

	conn, err := c.dial(addr, c.timeout)
	if err != nil {
		return time.Time{}, fmt.Errorf("ntp dial %s: %w", addr, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return time.Time{}, fmt.Errorf("ntp deadline: %w", err)
	}

	// 48-byte request: LI=0, VN=4, Mode=3 (client).
	req := make([]byte, 48)
	req[0] = 0x23
	if _, err := conn.Write(req); err != nil {
		return time.Time{}, fmt.Errorf("ntp write: %w", err)
	}

	resp := make([]byte, 48)
	n, err := conn.Read(resp)
	if err != nil {
		return time.Time{}, fmt.Errorf("ntp read: %w", err)
	}
	if n < 48 {
		return time.Time{}, fmt.Errorf("ntp short response: %d bytes", n)
	}

	// Transmit timestamp: seconds in bytes 40-43, fraction in 44-47.
	sec := uint32(resp[40])<<24 | uint32(resp[41])<<16 | uint32(resp[42])<<8 | uint32(resp[43])
	frac := uint32(resp[44])<<24 | uint32(resp[45])<<16 | uint32(resp[46])<<8 | uint32(resp[47])
	if sec == 0 {
		return time.Time{}, fmt.Errorf("ntp zero timestamp")
	}
	t := ntpEpoch.Add(time.Duration(sec)*time.Second + time.Duration(frac)*time.Second/(1<<32))
	return t.UTC(), nil
}
