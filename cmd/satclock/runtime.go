package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/wwood2025/Satellite-Clock/internal/alarm"
	"github.com/wwood2025/Satellite-Clock/internal/arbiter"
	"github.com/wwood2025/Satellite-Clock/internal/boundary"
	"github.com/wwood2025/Satellite-Clock/internal/chime"
	"github.com/wwood2025/Satellite-Clock/internal/config"
	"github.com/wwood2025/Satellite-Clock/internal/display"
	"github.com/wwood2025/Satellite-Clock/internal/gps"
	"github.com/wwood2025/Satellite-Clock/internal/metrics"
	"github.com/wwood2025/Satellite-Clock/internal/mqttpub"
	"github.com/wwood2025/Satellite-Clock/internal/ntp"
	"github.com/wwood2025/Satellite-Clock/internal/web"
)

// statusLogInterval spaces out the periodic console status line.
const statusLogInterval = 10 * time.Second

// countingQuerier wraps the NTP client so every query lands in metrics.
type countingQuerier struct {
	inner *ntp.Client
	met   *metrics.Metrics
}

func (q countingQuerier) Query() (time.Time, string, bool) {
	t, server, ok := q.inner.Query()
	if q.met != nil {
		if ok {
			q.met.NTPQueriesTotal.WithLabelValues("ok").Inc()
		} else {
			q.met.NTPQueriesTotal.WithLabelValues("failed").Inc()
		}
	}
	return t, server, ok
}

type runtime struct {
	cfg config.Config
	loc *time.Location

	status  *web.Status
	hub     *web.Hub
	met     *metrics.Metrics
	gpsSvc  *gps.Service
	arb     *arbiter.Arbiter
	watcher *boundary.Watcher
	alarms  *alarm.Store
	chimes  *chime.Service
	mqtt    *mqttpub.Publisher
	disp    *display.Sender

	lastStatusLog time.Time
}

func newRuntime(ctx context.Context, cfg config.Config) (*runtime, error) {
	loc := cfg.Clock.Location()
	met := metrics.New()

	rt := &runtime{
		cfg:     cfg,
		loc:     loc,
		status:  web.NewStatus(),
		hub:     web.NewHub(),
		met:     met,
		watcher: boundary.NewWatcher(),
		alarms:  alarm.NewStore(cfg.Alarm.File),
	}

	rt.gpsSvc = gps.New(gps.Config{
		Enable:   cfg.GPS.Enable,
		Device:   cfg.GPS.Device,
		Baud:     cfg.GPS.Baud,
		Location: loc,
		OnSentence: func(applied bool) {
			outcome := "ignored"
			if applied {
				outcome = "applied"
			}
			met.SentencesTotal.WithLabelValues(outcome).Inc()
		},
	})
	if err := rt.gpsSvc.Start(ctx); err != nil {
		// The clock still runs on NTP; report and continue.
		log.Printf("gps unavailable: %v", err)
	}

	ntpClient := ntp.New(ntp.Config{Servers: cfg.NTP.Servers, Timeout: cfg.NTP.Timeout})
	rt.arb = arbiter.New(countingQuerier{inner: ntpClient, met: met}, loc)

	rt.chimes = chime.New(chime.Config{Enable: cfg.Chime.Enable, Pin: cfg.Chime.Pin})
	if err := rt.chimes.Start(ctx); err != nil {
		log.Printf("chime unavailable: %v", err)
	}

	var err error
	rt.mqtt, err = mqttpub.NewPublisher(mqttpub.Config{
		Enable:   cfg.MQTT.Enable,
		Broker:   cfg.MQTT.Broker,
		ClientID: cfg.MQTT.ClientID,
		Topic:    cfg.MQTT.Topic,
		Interval: cfg.MQTT.Interval,
	})
	if err != nil {
		log.Printf("mqtt unavailable: %v", err)
	}

	if cfg.Display.Dest != "" {
		rt.disp, err = display.NewSender(cfg.Display.Dest)
		if err != nil {
			log.Printf("display unavailable: %v", err)
		}
	}

	return rt, nil
}

// run drives the tick loop until ctx is cancelled.
func (rt *runtime) run(ctx context.Context) error {
	ticker := time.NewTicker(rt.cfg.Clock.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rt.tick(time.Now())
		}
	}
}

// tick is one pass of the clock: read the receiver snapshot, arbitrate the
// displayed time, fire boundary events, and publish everywhere.
func (rt *runtime) tick(now time.Time) {
	fix := rt.gpsSvc.Snapshot()
	displayed, label := rt.arb.Tick(now, fix)

	rt.met.TicksTotal.Inc()
	if rt.arb.Snapped() {
		rt.met.SnapsTotal.Inc()
	}
	rt.met.ActiveSource.Set(sourceCode(label))

	for _, ev := range rt.watcher.Observe(displayed, rt.alarms.Get()) {
		log.Printf("%s at %s", ev, displayed.Format("15:04:05"))
		rt.chimes.Play(ev)
		rt.met.ChimesTotal.WithLabelValues(ev.String()).Inc()
	}

	rt.publish(now, displayed, label, fix)

	if now.Sub(rt.lastStatusLog) >= statusLogInterval {
		rt.lastStatusLog = now
		log.Printf("time=%s source=%q sats=%d snr=%d",
			displayed.Format("15:04:05"), label, fix.Satellites, fix.BestSNR)
	}
}

// publish pushes the tick result to the web status, WebSocket clients, the
// external display, and MQTT.
func (rt *runtime) publish(now, displayed time.Time, label string, fix gps.Snapshot) {
	clock := web.ClockSnapshot{Source: label}
	if !displayed.IsZero() {
		clock.Time = displayed.Format("15:04:05")
		clock.Date = displayed.Format("Monday, January 02 2006")
	}
	rt.status.SetClock(clock)

	gpsSnap := web.GPSSnapshot{
		FixQuality: fix.FixQuality,
		Satellites: fix.Satellites,
		BestSNR:    fix.BestSNR,
	}
	if fix.FixType != "" {
		gpsSnap.FixType = fix.FixType
	}
	gpsSnap.LastError = rt.gpsSvc.LastError()
	rt.status.SetGPS(gpsSnap)

	cs := rt.chimes.Snapshot()
	rt.status.SetChime(web.ChimeSnapshot{
		Enabled:   cs.Enabled,
		Available: cs.Available,
		LastEvent: cs.LastEvent,
		LastError: cs.LastError,
	})

	a := rt.alarms.Get()
	alarmSnap := web.AlarmSnapshot{Set: a.Set, Hour: a.Hour, Minute: a.Minute}
	if a.Set {
		alarmSnap.Pretty = fmt.Sprintf("%02d:%02d", a.Hour, a.Minute)
	}
	rt.status.SetAlarm(alarmSnap)
	rt.status.MarkTick(now.UTC())

	if payload, err := json.Marshal(rt.status.Snapshot(now.UTC())); err == nil {
		rt.hub.Broadcast(payload)
	}

	if rt.disp != nil {
		if err := rt.disp.Send(displayed, label); err != nil {
			log.Printf("display send failed: %v", err)
		}
	}

	st := mqttpub.Status{Time: clock.Time, Source: label}
	if a.Set {
		st.Alarm = alarmSnap.Pretty
	}
	rt.mqtt.Publish(now, st)
}

func sourceCode(label string) float64 {
	switch {
	case strings.HasPrefix(label, "GPS:"):
		return metrics.SourceGPS
	case strings.HasPrefix(label, "NTP:"):
		return metrics.SourceNTP
	default:
		return metrics.SourceOffline
	}
}

func (rt *runtime) close() {
	if rt.disp != nil {
		rt.disp.Close()
	}
	rt.mqtt.Close()
	rt.chimes.Close()
	rt.gpsSvc.Close()
}
