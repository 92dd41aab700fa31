package provisioning

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "ociclaim"

var (
	// attemptsTotal counts launch attempts by candidate and outcome.
	attemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "scheduler",
			Name:      "attempts_total",
			Help:      "Total number of launch attempts by availability domain, OCPU count and outcome",
		},
		[]string{"availability_domain", "ocpus", "outcome"},
	)

	// attemptDuration tracks how long a single attempt takes end to end.
	attemptDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "scheduler",
			Name:      "attempt_duration_seconds",
			Help:      "Duration of launch attempts in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 13), // 250ms to ~17m
		},
		[]string{"outcome"},
	)

	// passesTotal counts completed passes over the candidate list.
	passesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "scheduler",
			Name:      "passes_total",
			Help:      "Total number of full passes over the candidate list",
		},
	)

	// candidateIndex is the index of the candidate being attempted.
	candidateIndex = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "scheduler",
			Name:      "candidate_index",
			Help:      "Index of the current candidate in the search order",
		},
	)

	// claimed is 1 once an instance has been claimed.
	claimed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "scheduler",
			Name:      "claimed",
			Help:      "Whether an instance has been claimed (1) or not (0)",
		},
	)
)

// RegisterMetrics registers the engine metrics. Registering twice is a no-op.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{attemptsTotal, attemptDuration, passesTotal, candidateIndex, claimed} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}

// recordAttemptMetric records a finished attempt.
func recordAttemptMetric(c CandidateSpec, outcome OutcomeKind, seconds float64) {
	attemptsTotal.WithLabelValues(c.AvailabilityDomain, fmt.Sprint(c.OCPUs), outcome.String()).Inc()
	attemptDuration.WithLabelValues(outcome.String()).Observe(seconds)
	if outcome == OutcomeSuccess {
		claimed.Set(1)
	}
}

// recordCandidateMetric records the position in the search order.
func recordCandidateMetric(index int) {
	candidateIndex.Set(float64(index))
}

// recordPassMetric records a wrap to the first candidate.
func recordPassMetric() {
	passesTotal.Inc()
}
