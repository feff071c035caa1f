// Package metrics exposes prometheus counters for the panel controller.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "timecircuits"

// Registry holds all controller metrics.
type Registry struct {
	reg *prometheus.Registry

	KeypadCommands *prometheus.CounterVec
	Travels        *prometheus.CounterVec
	RTCRetries     prometheus.Counter
	NTPSyncs       *prometheus.CounterVec
	Rollovers      prometheus.Counter
	Chimes         *prometheus.CounterVec
	TravelPhase    prometheus.Gauge
	OffsetMinutes  prometheus.Gauge
}

// New creates a registry with its own prometheus.Registry, so tests can build
// as many as they like.
func New() *Registry {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Registry{
		reg: reg,
		KeypadCommands: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keypad_commands_total",
			Help:      "Committed keypad entries by command shape and result",
		}, []string{"shape", "result"}),
		Travels: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "travels_total",
			Help:      "Time travels by kind",
		}, []string{"kind"}),
		RTCRetries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rtc_read_retries_total",
			Help:      "Re-reads of the true-time source after an out-of-range value",
		}),
		NTPSyncs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ntp_syncs_total",
			Help:      "Network time sync attempts by result",
		}, []string{"result"}),
		Rollovers: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rollovers_total",
			Help:      "Year 9999 rollover corrections",
		}),
		Chimes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chimes_total",
			Help:      "Fired alarms, reminders, countdowns and hourly sounds",
		}, []string{"kind"}),
		TravelPhase: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "travel_phase",
			Help:      "Current travel phase, 0 when idle",
		}),
		OffsetMinutes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "present_offset_minutes",
			Help:      "Signed distance of the shown present from true time",
		}),
	}
}

// Handler serves the registry in the prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
