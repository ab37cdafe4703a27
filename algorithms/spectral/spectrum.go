package spectral

import (
	"math/cmplx"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
)

// FrequencySpectrum is the one-sided spectrum of a windowed, zero-padded
// frame. Bin k covers frequency k·SampleRate/FFTSize
type FrequencySpectrum struct {
	bins       []complex128
	power      *common.Handle[float64]
	sampleRate int
	fftSize    int
}

// Size returns the number of bins (FFTSize/2 + 1)
func (s *FrequencySpectrum) Size() int {
	return len(s.bins)
}

// FFTSize returns the transform length
func (s *FrequencySpectrum) FFTSize() int {
	return s.fftSize
}

// SampleRate returns the sample rate of the analysed frame
func (s *FrequencySpectrum) SampleRate() int {
	return s.sampleRate
}

// Resolution returns the bin spacing in Hz
func (s *FrequencySpectrum) Resolution() float64 {
	return float64(s.sampleRate) / float64(s.fftSize)
}

// Frequency returns the centre frequency of a possibly fractional bin
func (s *FrequencySpectrum) Frequency(bin float64) float64 {
	return bin * s.Resolution()
}

// Bin returns the bin index nearest to frequency, clamped to the spectrum
func (s *FrequencySpectrum) Bin(frequency float64) int {
	i := int(frequency/s.Resolution() + 0.5)
	return max(0, min(i, len(s.bins)-1))
}

// Value returns the complex value of a bin
func (s *FrequencySpectrum) Value(bin int) complex128 {
	return s.bins[bin]
}

// Amplitude returns |X[bin]|
func (s *FrequencySpectrum) Amplitude(bin int) float64 {
	return cmplx.Abs(s.bins[bin])
}

// AmplitudeSquared returns |X[bin]|²
func (s *FrequencySpectrum) AmplitudeSquared(bin int) float64 {
	return s.power.Data()[bin]
}

// Power returns |X|² for all bins. The slice is owned by the spectrum
func (s *FrequencySpectrum) Power() []float64 {
	return s.power.Data()[:len(s.bins)]
}

// Release returns pooled storage
func (s *FrequencySpectrum) Release() {
	if s.power != nil {
		s.power.Release()
		s.power = nil
	}
}
