package display

import (
	"encoding/json"
	"net"
	"testing"
	"time"
)

func listen(t *testing.T) (*net.UDPConn, string) {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, conn.LocalAddr().String()
}

func TestSenderEmitsFrame(t *testing.T) {
	conn, addr := listen(t)

	s, err := NewSender(addr)
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer s.Close()

	at := time.Date(2024, 1, 1, 7, 30, 15, 0, time.UTC)
	if err := s.Send(at, "GPS: 3D FIX | Sats:8 | SNR:40 dB"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 1024)
	n, _, err := conn.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var frame Frame
	if err := json.Unmarshal(buf[:n], &frame); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if frame.Time != "07:30:15" {
		t.Errorf("time = %q, want 07:30:15", frame.Time)
	}
	if frame.Date != "Monday, January 01 2024" {
		t.Errorf("date = %q", frame.Date)
	}
	if frame.Source != "GPS: 3D FIX | Sats:8 | SNR:40 dB" {
		t.Errorf("source = %q", frame.Source)
	}
}

func TestSenderOncePerSecond(t *testing.T) {
	conn, addr := listen(t)

	s, err := NewSender(addr)
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer s.Close()

	at := time.Date(2024, 1, 1, 7, 30, 15, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := s.Send(at.Add(time.Duration(i)*80*time.Millisecond), "x"); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	// same displayed second each time, only one datagram expected
	conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	buf := make([]byte, 1024)
	if _, _, err := conn.ReadFromUDP(buf); err != nil {
		t.Fatalf("first read: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := conn.ReadFromUDP(buf); err == nil {
		t.Error("unexpected second datagram within the same second")
	}
}

func TestSenderIgnoresZeroTime(t *testing.T) {
	_, addr := listen(t)
	s, err := NewSender(addr)
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer s.Close()
	if err := s.Send(time.Time{}, "x"); err != nil {
		t.Fatalf("Send zero time: %v", err)
	}
}
