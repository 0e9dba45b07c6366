package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recomputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dashboard_recompute_duration_seconds",
		Help:    "Time to filter the dataset and run every aggregator",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
	})

	filteredRows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_filtered_rows",
		Help: "Rows in the most recently computed filtered view",
	})

	malformedFilters = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_malformed_filter_total",
		Help: "Filter inputs recovered by treating a dimension as unconstrained",
	})

	staleResults = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_stale_results_dropped_total",
		Help: "Recomputations discarded because a newer filter state arrived",
	})

	datasetRows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dashboard_dataset_rows",
		Help: "Rows in the loaded dataset",
	})
)
