package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes recorded for outbound provider calls.
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
	OutcomeSkipped  = "skipped"
)

var (
	ProviderCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripplanner_provider_calls_total",
		Help: "Outbound third-party API calls by provider and outcome",
	}, []string{"provider", "outcome"})

	RemindersSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripplanner_reminders_sent_total",
		Help: "The total number of reminder e-mails sent",
	})
	ReminderErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripplanner_reminder_errors_total",
		Help: "The total number of reminder e-mails that failed to send",
	})

	ItemsEnriched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripplanner_items_enriched_total",
		Help: "Itinerary items that received geocoding or weather data",
	}, []string{"kind"})
)

// ObserveProvider is a shorthand for ProviderCalls.WithLabelValues(...).Inc().
func ObserveProvider(provider, outcome string) {
	ProviderCalls.WithLabelValues(provider, outcome).Inc()
}
