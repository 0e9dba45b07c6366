package services

import (
	"math"
	"sort"

	"noshow-dashboard/models"
)

// fiveNumber returns min, quartiles and max of xs using linear interpolation
// between order statistics. xs is sorted in place and must not be empty.
func fiveNumber(xs []float64) models.BoxStats {
	sort.Float64s(xs)
	return models.BoxStats{
		N:      len(xs),
		Min:    xs[0],
		Q1:     quantile(xs, 0.25),
		Median: quantile(xs, 0.5),
		Q3:     quantile(xs, 0.75),
		Max:    xs[len(xs)-1],
	}
}

// quantile expects sorted input.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// DelayStats summarises the scheduling delay, in days, of the view.
// The boolean is false for an empty view.
func DelayStats(v models.View) (models.BoxStats, bool) {
	if v.Len() == 0 {
		return models.BoxStats{}, false
	}
	xs := make([]float64, v.Len())
	for i := range xs {
		xs[i] = float64(v.At(i).DelayDays)
	}
	return fiveNumber(xs), true
}
