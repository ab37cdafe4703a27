package harmonic

import (
	"math"
	"testing"
)

func TestInharmonicityHarmonicSeries(t *testing.T) {
	in := NewInharmonicity()
	var hs Harmonics
	for h := 1; h <= 5; h++ {
		hs = append(hs, Harmonic{Number: h, Frequency: 200 * float64(h), AmplitudeSquared: 1 / float64(h)})
	}
	in.AddHarmonics(hs)
	if in.Pairs() != 10 {
		t.Errorf("Pairs = %d, want 10", in.Pairs())
	}
	if math.Abs(in.Mean()) > 1e-12 || in.StdDev() > 1e-6 {
		t.Errorf("Mean = %v, StdDev = %v", in.Mean(), in.StdDev())
	}
}

func TestInharmonicityPowerLaw(t *testing.T) {
	// f_h = f_1 · h^(1+β) gives exactly β for every pair
	const beta = 0.01
	in := NewInharmonicity()
	var hs Harmonics
	for h := 1; h <= 6; h++ {
		hs = append(hs, Harmonic{Number: h, Frequency: 100 * math.Pow(float64(h), 1+beta), AmplitudeSquared: 1})
	}
	in.AddHarmonics(hs)
	if math.Abs(in.Mean()-beta) > 1e-12 {
		t.Errorf("Mean = %v, want %v", in.Mean(), beta)
	}

	in.AddPair(hs[0], hs[0])
	if in.Pairs() != 15 {
		t.Errorf("identical pair counted: %d", in.Pairs())
	}
	in.Reset()
	if in.Pairs() != 0 {
		t.Error("Reset kept pairs")
	}
}
