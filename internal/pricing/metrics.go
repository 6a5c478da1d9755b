package pricing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// calculationsTotal counts completed calculations by pricing mode.
	calculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_calculations_total",
		Help: "Total number of completed price calculations by mode",
	}, []string{"mode"}) // mode: base, template

	// calculationDuration tracks how long the engine spends per calculation.
	calculationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricing_calculation_duration_seconds",
		Help:    "Time taken for a price calculation by mode",
		Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
	}, []string{"mode"})

	// validationFailures counts inputs rejected before any arithmetic ran.
	validationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pricing_validation_failures_total",
		Help: "Total number of pricing inputs rejected by validation",
	})

	// unpriceableMaterials counts silent zero-cost degradations so data
	// quality issues in the material catalog stay visible.
	unpriceableMaterials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_unpriceable_materials_total",
		Help: "Total number of calculations where material cost degraded to zero",
	}, []string{"unit_type"})

	// rulesEvaluated tracks the distribution of rule counts per template quote.
	rulesEvaluated = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pricing_template_rules_evaluated_count",
		Help:    "Number of template pricing rules evaluated per quote",
		Buckets: []float64{1, 2, 5, 10, 20, 50},
	})
)
