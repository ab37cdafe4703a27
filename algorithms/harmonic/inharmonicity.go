package harmonic

import (
	"math"

	"github.com/RyanBlaney/sonido-tuner/algorithms/stats"
)

// Inharmonicity estimates how far a set of partials departs from an exact
// integer series. Every pair of harmonics (i, j) contributes
//
//	log(f_j/f_i) / log(h_j/h_i) - 1
//
// weighted by the geometric mean of the two amplitudes; a perfectly harmonic
// tone yields 0, stiff strings yield positive values
type Inharmonicity struct {
	moments *stats.WeightedMoments
}

// NewInharmonicity creates an empty estimator
func NewInharmonicity() *Inharmonicity {
	return &Inharmonicity{moments: stats.NewWeightedMoments()}
}

// AddPair accumulates one pair of harmonics. Pairs with equal harmonic
// numbers or invalid values are ignored
func (in *Inharmonicity) AddPair(a, b Harmonic) {
	if a.Number == b.Number || a.Number < 1 || b.Number < 1 {
		return
	}
	if !(a.Frequency > 0) || !(b.Frequency > 0) {
		return
	}
	value := math.Log(b.Frequency/a.Frequency)/math.Log(float64(b.Number)/float64(a.Number)) - 1
	weight := math.Sqrt(a.Amplitude() * b.Amplitude())
	in.moments.Add(value, weight)
}

// AddHarmonics accumulates all pairs of hs
func (in *Inharmonicity) AddHarmonics(hs Harmonics) {
	for i := range hs {
		for j := i + 1; j < len(hs); j++ {
			in.AddPair(hs[i], hs[j])
		}
	}
}

// Pairs returns the number of accumulated pairs
func (in *Inharmonicity) Pairs() int {
	return in.moments.Count()
}

// Mean returns the weighted mean inharmonicity
func (in *Inharmonicity) Mean() float64 {
	return in.moments.Mean()
}

// StdDev returns the weighted standard deviation
func (in *Inharmonicity) StdDev() float64 {
	return in.moments.StdDev()
}

// Reset clears the estimator
func (in *Inharmonicity) Reset() {
	in.moments.Reset()
}
