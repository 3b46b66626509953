// Package display pushes rendered clock frames to an external display over
// UDP datagrams. A networked LED matrix (or anything that can listen on a
// socket) gets one small JSON frame per second; lost datagrams are harmless
// since the next frame supersedes them.
package display

import (
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Frame is one rendered clock update.
type Frame struct {
	Time   string `json:"time"`   // HH:MM:SS
	Date   string `json:"date"`   // Monday, January 02 2006
	Source string `json:"source"` // arbiter source label
}

type Sender struct {
	dest string
	conn *net.UDPConn

	lastSecond int
}

// NewSender resolves and connects the destination once; Send is then a single
// write per frame.
func NewSender(dest string) (*Sender, error) {
	addr, err := net.ResolveUDPAddr("udp", dest)
	if err != nil {
		return nil, fmt.Errorf("resolve display dest: %w", err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dial display dest: %w", err)
	}
	return &Sender{dest: dest, conn: conn, lastSecond: -1}, nil
}

// Send emits a frame for t, at most once per displayed second. label is the
// arbiter's source description.
func (s *Sender) Send(t time.Time, label string) error {
	if s == nil || s.conn == nil || t.IsZero() {
		return nil
	}
	if t.Second() == s.lastSecond {
		return nil
	}
	s.lastSecond = t.Second()

	frame := Frame{
		Time:   t.Format("15:04:05"),
		Date:   t.Format("Monday, January 02 2006"),
		Source: label,
	}
	payload, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("display marshal: %w", err)
	}
	_, err = s.conn.Write(payload)
	return err
}

func (s *Sender) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
