package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SuggestionsCreated counts accepted suggestion submissions.
	SuggestionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "suggestion_service_suggestions_created_total",
		Help: "Number of suggestions created",
	})

	// Transitions counts lifecycle transitions by action.
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "suggestion_service_transitions_total",
		Help: "Number of successful status transitions",
	}, []string{"action"})

	// Awards counts ledger awards by reason.
	Awards = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "suggestion_service_awards_total",
		Help: "Number of ledger awards issued",
	}, []string{"reason"})

	// DuplicateAwards counts idempotency short-circuits on one-shot awards.
	DuplicateAwards = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "suggestion_service_duplicate_awards_total",
		Help: "Number of award attempts rejected by the uniqueness constraint",
	}, []string{"reason"})

	// Measurements counts measurement outcomes (completed, insufficient_data).
	Measurements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "suggestion_service_measurements_total",
		Help: "Number of measurement evaluations by outcome",
	}, []string{"outcome"})
)
