package stats

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"
)

func TestWeightedMomentsMatchesBatch(t *testing.T) {
	x := []float64{0.01, -0.02, 0.005, 0.03, 0.0}
	w := []float64{1, 0.5, 2, 0.25, 3}

	m := NewWeightedMoments()
	for i := range x {
		m.Add(x[i], w[i])
	}
	if m.Count() != 5 || m.WeightSum() != 6.75 {
		t.Fatalf("Count = %d, WeightSum = %v", m.Count(), m.WeightSum())
	}
	if want := stat.Mean(x, w); math.Abs(m.Mean()-want) > 1e-15 {
		t.Errorf("Mean = %v, want %v", m.Mean(), want)
	}
	if want := stat.PopVariance(x, w); math.Abs(m.Variance()-want) > 1e-15 {
		t.Errorf("Variance = %v, want %v", m.Variance(), want)
	}
}

func TestWeightedMomentsIgnoresInvalid(t *testing.T) {
	m := NewWeightedMoments()
	m.Add(1, 0)
	m.Add(1, -1)
	m.Add(math.NaN(), 1)
	m.Add(2, math.Inf(1))
	if m.Count() != 0 || m.Mean() != 0 || m.Variance() != 0 {
		t.Errorf("invalid samples accepted: %+v", m)
	}
	m.Add(3, 1)
	m.Reset()
	if m.Count() != 0 {
		t.Error("Reset kept samples")
	}
}
