package harmonic

import (
	"math"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/algorithms/spectral"
)

// Harmonic is one detected partial of a tone
type Harmonic struct {
	Number           int     `json:"number"`            // 1 = fundamental
	Frequency        float64 `json:"frequency"`         // refined frequency in Hz
	SpectrumIndex    float64 `json:"spectrum_index"`    // refined, fractional bin index
	AmplitudeSquared float64 `json:"amplitude_squared"` // interpolated |X|² at the peak
}

// Amplitude returns the peak amplitude
func (h Harmonic) Amplitude() float64 {
	return math.Sqrt(math.Max(h.AmplitudeSquared, 0))
}

// Harmonics is a list of partials ordered by harmonic number
type Harmonics []Harmonic

// Energy returns the summed squared amplitudes
func (hs Harmonics) Energy() float64 {
	var e float64
	for _, h := range hs {
		e += h.AmplitudeSquared
	}
	return e
}

// Find returns the harmonic with the given number
func (hs Harmonics) Find(number int) (Harmonic, bool) {
	for _, h := range hs {
		if h.Number == number {
			return h, true
		}
	}
	return Harmonic{}, false
}

// Params controls the harmonic search
type Params struct {
	MaxHarmonics int     `json:"max_harmonics"`
	Tolerance    float64 `json:"tolerance"`     // search half-width as a fraction of the fundamental
	MaxFrequency float64 `json:"max_frequency"` // 0 searches up to Nyquist
	// MinRelativeAmplitude drops peaks weaker than this fraction of the
	// strongest harmonic found so far (squared amplitudes)
	MinRelativeAmplitude float64 `json:"min_relative_amplitude"`
	// EnergyHalfWidth is the number of bins on each side of a harmonic
	// counted as harmonic energy
	EnergyHalfWidth int `json:"energy_half_width"`
}

// DefaultParams returns the search settings used by the tuner
func DefaultParams() Params {
	return Params{
		MaxHarmonics:         8,
		Tolerance:            0.1,
		MinRelativeAmplitude: 1e-4,
		EnergyHalfWidth:      2,
	}
}

// FindHarmonics searches the spectrum for the partials of a tone with the
// approximate fundamental f0. The expected position of each harmonic is
// extrapolated from the harmonics already found, so stretched partials of
// stiff strings are followed. Peaks are refined by parabolic interpolation
func FindHarmonics(spectrum *spectral.FrequencySpectrum, f0 float64, p Params) Harmonics {
	if spectrum == nil || !(f0 > 0) || p.MaxHarmonics <= 0 {
		return nil
	}
	power := spectrum.Power()
	resolution := spectrum.Resolution()
	maxFrequency := float64(spectrum.SampleRate()) / 2
	if p.MaxFrequency > 0 {
		maxFrequency = math.Min(maxFrequency, p.MaxFrequency)
	}
	halfWidth := math.Max(p.Tolerance*f0, resolution)

	predictor := NewPredictor()
	var hs Harmonics
	var strongest float64

	for h := 1; h <= p.MaxHarmonics; h++ {
		expected := float64(h) * f0
		if predictor.Count() > 0 {
			expected = predictor.Predict(h)
		}
		if expected > maxFrequency {
			break
		}

		lo := max(int(math.Floor((expected-halfWidth)/resolution)), 1)
		hi := min(int(math.Ceil((expected+halfWidth)/resolution)), len(power)-2)
		if lo > hi {
			continue
		}
		best := lo
		for i := lo + 1; i <= hi; i++ {
			if power[i] > power[best] {
				best = i
			}
		}
		if !(power[best] > power[best-1] && power[best] >= power[best+1]) {
			continue
		}

		offset, value := common.ParabolicPeak(power[best-1], power[best], power[best+1])
		index := float64(best) + offset
		frequency := spectrum.Frequency(index)
		if math.Abs(frequency-expected) > halfWidth {
			continue
		}
		if value < p.MinRelativeAmplitude*strongest {
			continue
		}
		strongest = math.Max(strongest, value)

		hs = append(hs, Harmonic{
			Number:           h,
			Frequency:        frequency,
			SpectrumIndex:    index,
			AmplitudeSquared: value,
		})
		predictor.Add(h, frequency)
	}
	return hs
}

// EnergyRatio returns the share of spectral energy between minFrequency and
// maxFrequency that lies within halfWidth bins of the harmonics
func EnergyRatio(spectrum *spectral.FrequencySpectrum, hs Harmonics, halfWidth int, minFrequency, maxFrequency float64) float64 {
	if spectrum == nil || len(hs) == 0 {
		return 0
	}
	power := spectrum.Power()
	lo := spectrum.Bin(minFrequency)
	hi := spectrum.Bin(maxFrequency)
	if maxFrequency <= 0 {
		hi = len(power) - 1
	}

	var total float64
	for i := lo; i <= hi; i++ {
		total += power[i]
	}
	if !(total > 0) {
		return 0
	}

	var harmonic float64
	last := -1 // highest bin already counted
	for _, h := range hs {
		c := int(math.Round(h.SpectrumIndex))
		from := max(c-halfWidth, lo, last+1)
		to := min(c+halfWidth, hi)
		for i := from; i <= to; i++ {
			harmonic += power[i]
		}
		last = max(last, to)
	}
	return math.Min(harmonic/total, 1)
}
