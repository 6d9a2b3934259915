package services

import "github.com/prometheus/client_golang/prometheus"

var (
	diagnosesCounter       *prometheus.CounterVec
	defaultSolutionCounter prometheus.Counter
	renormalizedCounter    prometheus.Counter
)

func init() {
	diagnosesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "diagnoses_total",
			Help: "Total number of diagnosis requests by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)
	defaultSolutionCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "diagnosis_default_solution_total",
			Help: "Total number of diagnoses where the standard inspection had to be inserted.",
		},
	)
	renormalizedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "diagnoses_renormalized_total",
			Help: "Total number of stored diagnoses rewritten for a newer schema version.",
		},
	)
	prometheus.MustRegister(diagnosesCounter, defaultSolutionCounter, renormalizedCounter)
}

// Ergebnisse für das outcome-Label.
const (
	outcomeOK            = "ok"
	outcomeParseFailure  = "parse_failure"
	outcomeProviderError = "provider_error"
)
