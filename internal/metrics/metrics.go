// Package metrics holds the Prometheus collectors of pcrm. They are registered with the default
// registry and exposed by the web service under /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Resolutions counts name lookups.
	// Labels: outcome (resolved, chosen, not_found, cancelled, ambiguous, invalid, error)
	Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pcrm",
		Subsystem: "resolver",
		Name:      "resolutions_total",
		Help:      "Total name resolutions by outcome",
	}, []string{"outcome"})

	// ContactsMarked counts how often a contact was stamped as contacted.
	// Labels: reason (note, reminder, interaction)
	ContactsMarked = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pcrm",
		Subsystem: "activity",
		Name:      "contacts_marked_total",
		Help:      "Total updates of the last contacted timestamp",
	}, []string{"reason"})

	// Operations counts the mutating operations of the application layer.
	// Labels: operation, status (success, error)
	Operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pcrm",
		Subsystem: "crm",
		Name:      "operations_total",
		Help:      "Total mutating operations by result",
	}, []string{"operation", "status"})

	// CalendarSyncs counts calendar event insertions.
	// Labels: status (created, exists, error)
	CalendarSyncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pcrm",
		Subsystem: "calendar",
		Name:      "syncs_total",
		Help:      "Total calendar synchronisations by result",
	}, []string{"status"})

	// RequestDuration measures the latency of the web service.
	// Labels: method, route, code
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pcrm",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "route", "code"})
)

// Status maps an error to the status label of Operations.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
