// Package services – intake flow metrics.
//
// Counters here cover the conversation layer; HTTP-level metrics live in
// the middleware package. Label cardinality is bounded by the finite state
// set.
package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// flowEvents counts processed inbound events by the state that
	// handled them.
	flowEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_flow_events_total",
			Help: "Total inbound conversation events processed, by handling state.",
		},
		[]string{"state"},
	)

	// recordsSaved counts successfully appended repair records.
	recordsSaved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_records_saved_total",
			Help: "Total repair records appended to the record store.",
		},
	)

	// duplicatesRejected counts save attempts rejected by the
	// idempotency-key check.
	duplicatesRejected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_duplicates_rejected_total",
			Help: "Total save attempts rejected as duplicate submissions.",
		},
	)
)

func init() {
	prometheus.MustRegister(flowEvents, recordsSaved, duplicatesRejected)
}
