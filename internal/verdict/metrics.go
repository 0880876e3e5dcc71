package verdict

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	verdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdicts_generated_total",
			Help: "Verdicts produced, by outcome (model or fallback).",
		},
		[]string{"outcome"},
	)
	injectionRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "submission_injection_rejections_total",
			Help: "Submissions rejected for prompt-injection markers.",
		},
	)
	precedentCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "precedent_cache_lookups_total",
			Help: "Precedent cache lookups, by result (hit or miss).",
		},
		[]string{"result"},
	)
	keywordExtractionSkips = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "keyword_extraction_skips_total",
			Help: "Submissions the extraction model classified as frivolous.",
		},
	)
	verdictAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "verdict_model_attempts",
			Help:    "Model attempts consumed per verdict.",
			Buckets: []float64{1, 2, 3},
		},
	)
)
