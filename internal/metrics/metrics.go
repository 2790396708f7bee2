package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	eventsIngestedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cybervision_events_ingested_total",
		Help: "Total number of events accepted into the store, by origin",
	}, []string{"origin"})
	eventsRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cybervision_events_rejected_total",
		Help: "Total number of ingestion records rejected by validation",
	})
	analysisRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cybervision_analysis_runs_total",
		Help: "Total number of analysis invocations, by outcome",
	}, []string{"outcome"})
	liveTicksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cybervision_live_ticks_total",
		Help: "Total number of live feed simulator ticks",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(eventsIngestedTotal, eventsRejectedTotal, analysisRunsTotal, liveTicksTotal)
}

// AddEventsIngested records n accepted events for the given origin.
func AddEventsIngested(origin string, n int) {
	eventsIngestedTotal.WithLabelValues(origin).Add(float64(n))
}

// IncEventsRejected increments the rejected ingestion records counter.
func IncEventsRejected() { eventsRejectedTotal.Inc() }

// IncAnalysisRun records one analysis invocation outcome.
func IncAnalysisRun(outcome string) { analysisRunsTotal.WithLabelValues(outcome).Inc() }

// IncLiveTick increments the simulator tick counter.
func IncLiveTick() { liveTicksTotal.Inc() }
