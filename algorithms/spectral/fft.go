package spectral

import (
	"github.com/mjibson/go-dsp/fft"
)

// FFT wraps the mjibson/go-dsp transforms used by the analysis pipeline
type FFT struct {
	size int
}

// NewFFT creates a transform for inputs of the given length
func NewFFT(size int) *FFT {
	return &FFT{size: size}
}

// Size returns the transform length
func (f *FFT) Size() int {
	return f.size
}

// Compute returns the complex spectrum of a real input of length Size
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}

// ComputeInverseReal computes the inverse transform and writes the real
// part into dst, which must be at least len(x) long
func (f *FFT) ComputeInverseReal(dst []float64, x []complex128) []float64 {
	if len(x) == 0 {
		return dst[:0]
	}
	result := fft.IFFT(x)
	for i, val := range result {
		dst[i] = real(val)
	}
	return dst[:len(result)]
}

// PowerSpectrum writes |X[k]|² into dst and returns it
func PowerSpectrum(dst []float64, spectrum []complex128) []float64 {
	for i, c := range spectrum {
		re, im := real(c), imag(c)
		dst[i] = re*re + im*im
	}
	return dst[:len(spectrum)]
}
