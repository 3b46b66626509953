// Package web exposes the clock's control surface: a small status page, a
// JSON API for the alarm, a WebSocket push feed, and Prometheus metrics.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/wwood2025/Satellite-Clock/internal/boundary"
)

// AlarmStore is the alarm persistence surface the API mutates.
// Implementations must be safe to call concurrently.
type AlarmStore interface {
	Get() boundary.Alarm
	Set(hour, minute int) error
	Clear() error
}

// ChimeTester lets the UI trigger the alarm sound without waiting for the
// alarm time.
type ChimeTester interface {
	Play(ev boundary.Event)
}

func Handler(status *Status, alarms AlarmStore, chimer ChimeTester, hub *Hub, metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexHTML))
	})

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		snap := status.Snapshot(time.Now().UTC())
		b, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			http.Error(w, "marshal failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(b)
		_, _ = w.Write([]byte("\n"))
	})

	mux.HandleFunc("/api/alarm", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeAlarm(w, alarms.Get())
		case http.MethodPost:
			var req struct {
				Hour   *int `json:"hour"`
				Minute *int `json:"minute"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, fmt.Sprintf("bad request: %v", err), http.StatusBadRequest)
				return
			}
			if req.Hour == nil || req.Minute == nil {
				http.Error(w, "hour and minute are required", http.StatusBadRequest)
				return
			}
			if err := alarms.Set(*req.Hour, *req.Minute); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			writeAlarm(w, alarms.Get())
		case http.MethodDelete:
			if err := alarms.Clear(); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			writeAlarm(w, alarms.Get())
		default:
			w.Header().Set("Allow", "GET, POST, DELETE")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/api/alarm/test", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if chimer == nil {
			http.Error(w, "chime unavailable", http.StatusNotFound)
			return
		}
		chimer.Play(boundary.EventAlarm)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("{\"ok\":true}\n"))
	})

	if hub != nil {
		mux.HandleFunc("/api/ws", hub.HandleWS)
	}
	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}

	return mux
}

func writeAlarm(w http.ResponseWriter, a boundary.Alarm) {
	snap := AlarmSnapshot{Set: a.Set, Hour: a.Hour, Minute: a.Minute}
	if a.Set {
		snap.Pretty = fmt.Sprintf("%02d:%02d", a.Hour, a.Minute)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}

func Serve(ctx context.Context, listenAddr string, status *Status, alarms AlarmStore, chimer ChimeTester, hub *Hub, metricsHandler http.Handler) error {
	if status == nil {
		status = NewStatus()
	}

	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           Handler(status, alarms, chimer, hub, metricsHandler),
		ReadHeaderTimeout: 5 * time.Second,
		// No WriteTimeout: /api/ws connections are long-lived.
		IdleTimeout:    30 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MiB
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
