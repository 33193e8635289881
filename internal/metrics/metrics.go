// Package metrics defines the Prometheus collectors for the landing page.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups every collector the service exports.
type Metrics struct {
	Submissions      *prometheus.CounterVec
	StorageErrors    *prometheus.CounterVec
	CalendarExports  *prometheus.CounterVec
	ModalTransitions *prometheus.CounterVec
	ActiveSessions   prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Submissions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registration_submissions_total",
				Help: "Registration form submissions by outcome",
			},
			[]string{"outcome"},
		),
		StorageErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "registration_storage_errors_total",
				Help: "Failed registration writes by error kind",
			},
			[]string{"kind"},
		),
		CalendarExports: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "calendar_exports_total",
				Help: "Calendar file downloads by trigger and status",
			},
			[]string{"trigger", "status"},
		),
		ModalTransitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modal_transitions_total",
				Help: "Registration dialog state changes",
			},
			[]string{"from", "to", "trigger"},
		),
		ActiveSessions: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "page_sessions_active",
				Help: "Page sessions currently held in memory",
			},
		),
	}
}

// Nop returns collectors registered nowhere, for tests and disabled metrics.
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}
