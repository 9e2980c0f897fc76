package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AssessmentsTotal counts assessed emails by verdict.
	AssessmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "phishguard_assessments_total",
		Help: "Total number of assessed emails by threat level and recommended action.",
	}, []string{"threat_level", "recommended_action"})

	// AssessmentDuration tracks end-to-end assessment latency.
	AssessmentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "phishguard_assessment_duration_seconds",
		Help:    "Time taken to assess one email.",
		Buckets: prometheus.DefBuckets,
	})

	// ParseFailures counts messages that could not be parsed and were passed
	// through unscored.
	ParseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phishguard_parse_failures_total",
		Help: "Total number of messages that failed MIME parsing.",
	})

	// IndicatorsFound counts threat indicators across all assessments.
	IndicatorsFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "phishguard_indicators_found_total",
		Help: "Total number of threat indicators raised.",
	})
)

// ObserveAssessment records one completed assessment.
func ObserveAssessment(threatLevel, recommendedAction string, durationSeconds float64, indicators int) {
	AssessmentsTotal.WithLabelValues(threatLevel, recommendedAction).Inc()
	AssessmentDuration.Observe(durationSeconds)
	IndicatorsFound.Add(float64(indicators))
}
