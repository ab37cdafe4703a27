package stats

import "math"

// WeightedMoments accumulates a weighted mean and variance online without
// storing the samples.
//
// References:
// - Welford, B.P. (1962). "Note on a method for calculating corrected sums of squares"
// - West, D.H.D. (1979). "Updating mean and variance estimates: an improved method"
type WeightedMoments struct {
	count     int
	weightSum float64
	mean      float64
	m2        float64 // weighted sum of squared deviations
}

// NewWeightedMoments creates an empty accumulator
func NewWeightedMoments() *WeightedMoments {
	return &WeightedMoments{}
}

// Add accumulates x with weight w. Non-positive or non-finite weights and
// non-finite values are ignored
func (m *WeightedMoments) Add(x, w float64) {
	if !(w > 0) || math.IsInf(w, 0) || math.IsNaN(x) || math.IsInf(x, 0) {
		return
	}
	m.count++
	m.weightSum += w
	delta := x - m.mean
	m.mean += (w / m.weightSum) * delta
	m.m2 += w * delta * (x - m.mean)
}

// Count returns the number of accepted samples
func (m *WeightedMoments) Count() int {
	return m.count
}

// WeightSum returns the total weight
func (m *WeightedMoments) WeightSum() float64 {
	return m.weightSum
}

// Mean returns the weighted mean, 0 when empty
func (m *WeightedMoments) Mean() float64 {
	return m.mean
}

// Variance returns the weighted population variance, 0 when empty
func (m *WeightedMoments) Variance() float64 {
	if m.weightSum == 0 {
		return 0
	}
	return math.Max(m.m2/m.weightSum, 0)
}

// StdDev returns the weighted population standard deviation
func (m *WeightedMoments) StdDev() float64 {
	return math.Sqrt(m.Variance())
}

// Reset clears the accumulator
func (m *WeightedMoments) Reset() {
	*m = WeightedMoments{}
}
