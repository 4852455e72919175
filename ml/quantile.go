// Package ml holds the statistical models used by the pipeline and the
// prediction service: an Isolation Forest anomaly detector, a Random Forest
// classifier and small numeric helpers.
package ml

import (
	"math"
	"sort"
)

// Quantile returns the p-quantile (0 <= p <= 1) of xs, interpolating
// linearly between the order statistics around position (n-1)*p. NaN
// values are ignored. It returns NaN for an empty input.
func Quantile(xs []float64, p float64) float64 {
	cp := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsNaN(v) {
			cp = append(cp, v)
		}
	}
	n := len(cp)
	if n == 0 {
		return math.NaN()
	}
	sort.Float64s(cp)
	if p <= 0 {
		return cp[0]
	}
	if p >= 1 {
		return cp[n-1]
	}
	rank := p * float64(n-1)
	lower := int(rank)
	upper := lower + 1
	weight := rank - float64(lower)
	if upper >= n || cp[lower] == cp[upper] {
		return cp[lower]
	}
	return cp[lower]*(1-weight) + cp[upper]*weight
}

// IQRBounds returns [Q1 - k*IQR, Q3 + k*IQR] for xs.
func IQRBounds(xs []float64, k float64) (lower, upper float64) {
	q1 := Quantile(xs, 0.25)
	q3 := Quantile(xs, 0.75)
	iqr := q3 - q1
	return q1 - k*iqr, q3 + k*iqr
}
