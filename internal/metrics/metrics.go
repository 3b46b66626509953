// Package metrics exposes the clock's counters and gauges via Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Source codes reported by the active-source gauge.
const (
	SourceOffline = 0
	SourceNTP     = 1
	SourceGPS     = 2
)

type Metrics struct {
	TicksTotal      prometheus.Counter
	SentencesTotal  *prometheus.CounterVec // labels: outcome (applied|ignored)
	NTPQueriesTotal *prometheus.CounterVec // labels: result (ok|failed)
	SnapsTotal      prometheus.Counter
	ChimesTotal     *prometheus.CounterVec // labels: event
	ActiveSource    prometheus.Gauge       // 0=offline, 1=ntp, 2=gps

	registry *prometheus.Registry
}

func New() *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "satclock_ticks_total",
			Help: "Clock ticks processed.",
		}),
		SentencesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "satclock_nmea_sentences_total",
			Help: "NMEA lines read from the receiver.",
		}, []string{"outcome"}),
		NTPQueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "satclock_ntp_queries_total",
			Help: "Network time queries, by result.",
		}, []string{"result"}),
		SnapsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "satclock_snaps_total",
			Help: "Times the display snapped to the satellite time.",
		}),
		ChimesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "satclock_chimes_total",
			Help: "Boundary events fired, by kind.",
		}, []string{"event"}),
		ActiveSource: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "satclock_active_source",
			Help: "Source driving the display: 0=offline, 1=ntp, 2=gps.",
		}),
		registry: prometheus.NewRegistry(),
	}
	m.registry.MustRegister(
		m.TicksTotal,
		m.SentencesTotal,
		m.NTPQueriesTotal,
		m.SnapsTotal,
		m.ChimesTotal,
		m.ActiveSource,
	)
	return m
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
