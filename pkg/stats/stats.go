// Package stats summarizes batches of verdicts.
package stats

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Percentile calculates the p-th percentile of a sorted slice using the
// empirical quantile. The slice must already be sorted in ascending order.
// Returns 0 if the slice is empty.
func Percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	q := float64(p) / 100
	q = min(max(q, 0), 1)
	return stat.Quantile(q, stat.Empirical, sorted, nil)
}

// Summary describes the used fraction across a batch.
type Summary struct {
	Count        int     `json:"count" toon:"count"`
	Flagged      int     `json:"flagged" toon:"flagged"`
	Failed       int     `json:"failed" toon:"failed"`
	MeanFraction float64 `json:"mean_fraction" toon:"mean_fraction"`
	Median       float64 `json:"median_fraction" toon:"median_fraction"`
	P10          float64 `json:"p10_fraction" toon:"p10_fraction"`
	P90          float64 `json:"p90_fraction" toon:"p90_fraction"`
	StdDev       float64 `json:"stddev_fraction" toon:"stddev_fraction"`
	MeanUnused   float64 `json:"mean_unused" toon:"mean_unused"`
}

// Summarize computes a Summary from per-submission used fractions and
// unused character counts. fractions and unused must have equal length.
func Summarize(fractions []float64, unused []int, flagged, failed int) Summary {
	s := Summary{Count: len(fractions), Flagged: flagged, Failed: failed}
	if len(fractions) == 0 {
		return s
	}

	sorted := slices.Clone(fractions)
	slices.Sort(sorted)

	s.MeanFraction = stat.Mean(sorted, nil)
	s.Median = Percentile(sorted, 50)
	s.P10 = Percentile(sorted, 10)
	s.P90 = Percentile(sorted, 90)
	if len(sorted) > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}

	counts := make([]float64, len(unused))
	for i, u := range unused {
		counts[i] = float64(u)
	}
	if len(counts) > 0 {
		s.MeanUnused = stat.Mean(counts, nil)
	}
	return s
}
