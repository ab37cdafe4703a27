package filters

import (
	"math"
)

// DCRemoval is a one-pole DC blocking filter
//
//	y[n] = x[n] - x[n-1] + R·y[n-1]
//
// applied to the capture stream before analysis, so a microphone offset
// does not leak into the zero-lag energy of the autocorrelation.
//
// References:
//   - Julius O. Smith III, "Introduction to Digital Filters with Audio Applications"
//     https://ccrma.stanford.edu/~jos/filters/DC_Blocker.html
type DCRemoval struct {
	pole       float64 // R, 0 < R < 1
	sampleRate int

	x1 float64 // x[n-1]
	y1 float64 // y[n-1]
}

// NewDCRemoval creates a filter with the given -3 dB cutoff. The pole is
// approximated as R = 1 - 2π·fc/fs and clamped to (0, 1)
func NewDCRemoval(sampleRate int, cutoff float64) *DCRemoval {
	dc := &DCRemoval{sampleRate: sampleRate, pole: 0.995}
	if sampleRate > 0 && cutoff > 0 {
		dc.pole = math.Min(math.Max(1-2*math.Pi*cutoff/float64(sampleRate), 0.001), 0.999)
	}
	return dc
}

// SampleRate returns the sample rate the pole was designed for
func (dc *DCRemoval) SampleRate() int {
	return dc.sampleRate
}

// Cutoff returns the approximate -3 dB cutoff in Hz
func (dc *DCRemoval) Cutoff() float64 {
	return (1 - dc.pole) * float64(dc.sampleRate) / (2 * math.Pi)
}

// Process filters one sample
func (dc *DCRemoval) Process(input float64) float64 {
	output := input - dc.x1 + dc.pole*dc.y1
	dc.x1 = input
	dc.y1 = output
	return output
}

// ProcessInPlace filters a buffer, continuing from the previous call
func (dc *DCRemoval) ProcessInPlace(samples []float64) {
	for i, s := range samples {
		samples[i] = dc.Process(s)
	}
}

// Reset clears the filter state. Call this when the stream is discontinuous
func (dc *DCRemoval) Reset() {
	dc.x1 = 0
	dc.y1 = 0
}
