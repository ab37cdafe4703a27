package spectral

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/algorithms/windowing"
)

// AutoCorrelation is the autocorrelation function of one windowed frame over
// lags 0 .. WindowSize-1
type AutoCorrelation struct {
	values     *common.Handle[float64]
	window     []float64 // normalized window autocorrelation, shared
	sampleRate int
}

// Values returns r[lag]. The slice is owned by the autocorrelation
func (a *AutoCorrelation) Values() []float64 {
	return a.values.Data()
}

// Size returns the number of lags
func (a *AutoCorrelation) Size() int {
	return a.values.Len()
}

// SampleRate returns the sample rate the lags refer to
func (a *AutoCorrelation) SampleRate() int {
	return a.sampleRate
}

// ZeroLag returns r[0], the energy of the windowed frame
func (a *AutoCorrelation) ZeroLag() float64 {
	return a.values.Data()[0]
}

// IsSilent reports a frame without energy
func (a *AutoCorrelation) IsSilent() bool {
	return !(a.ZeroLag() > 0)
}

// Normalized returns r[lag]/r[0], or 0 for a silent frame
func (a *AutoCorrelation) Normalized(lag int) float64 {
	if a.IsSilent() {
		return 0
	}
	return a.values.Data()[lag] / a.ZeroLag()
}

// Compensated returns r[lag] divided by the normalized autocorrelation of
// the analysis window, which removes the taper the window imposes on longer
// lags. Lags where the window correlation vanishes yield 0
func (a *AutoCorrelation) Compensated(lag int) float64 {
	if lag < 0 || lag >= len(a.window) || !(a.window[lag] > minWindowCorrelation) {
		return 0
	}
	return a.values.Data()[lag] / a.window[lag]
}

// CompensatedInto writes Compensated(lag) for lags 0 .. len(dst)-1
func (a *AutoCorrelation) CompensatedInto(dst []float64) []float64 {
	n := min(len(dst), a.Size())
	for lag := range n {
		dst[lag] = a.Compensated(lag)
	}
	return dst[:n]
}

// LagToFrequency converts a possibly fractional lag to Hz
func (a *AutoCorrelation) LagToFrequency(lag float64) float64 {
	if !(lag > 0) {
		return 0
	}
	return float64(a.sampleRate) / lag
}

// Release returns pooled storage
func (a *AutoCorrelation) Release() {
	if a.values != nil {
		a.values.Release()
		a.values = nil
	}
}

// AutoCorrelator computes autocorrelation functions by the Wiener-Khinchin
// theorem: window, zero-pad to at least twice the window length, transform,
// take |X|² and transform back
type AutoCorrelator struct {
	windowSize        int
	fftSize           int
	window            *windowing.Window
	windowCorrelation []float64
	fft               *FFT
	pool              *common.Pool[float64]
}

const minWindowCorrelation = 1e-6

// NewAutoCorrelator creates an autocorrelator for frames of windowSize
// samples. pool may be nil
func NewAutoCorrelator(windowSize int, windowType windowing.Type, pool *common.Pool[float64]) (*AutoCorrelator, error) {
	if windowSize < 4 {
		return nil, fmt.Errorf("window size must be at least 4, got %d", windowSize)
	}
	w, err := windowing.New(windowType, windowSize)
	if err != nil {
		return nil, err
	}
	fftSize := common.NextPowerOfTwo(2 * windowSize)
	ac := &AutoCorrelator{
		windowSize: windowSize,
		fftSize:    fftSize,
		window:     w,
		fft:        NewFFT(fftSize),
		pool:       pool,
	}

	// autocorrelation of the window itself, normalized to 1 at lag 0
	padded := make([]float64, fftSize)
	copy(padded, w.GetCoefficients())
	wc := make([]float64, windowSize)
	ac.correlate(wc, padded, make([]float64, fftSize))
	if wc[0] > 0 {
		floats.Scale(1/wc[0], wc)
		wc[0] = 1
	}
	ac.windowCorrelation = wc
	return ac, nil
}

// correlate transforms the zero-padded windowed frame in padded, writes its
// two-sided power spectrum into power and the leading lags of the inverse
// transform into dst. padded is overwritten. The forward bins are returned
func (ac *AutoCorrelator) correlate(dst, padded, power []float64) []complex128 {
	bins := ac.fft.Compute(padded)
	PowerSpectrum(power, bins)

	powerBins := make([]complex128, ac.fftSize)
	for i, p := range power {
		powerBins[i] = complex(p, 0)
	}
	inverse := ac.fft.ComputeInverseReal(padded, powerBins)
	copy(dst, inverse[:len(dst)])
	return bins
}

// WindowSize returns the frame length analysed per call
func (ac *AutoCorrelator) WindowSize() int {
	return ac.windowSize
}

// FFTSize returns the zero-padded transform length
func (ac *AutoCorrelator) FFTSize() int {
	return ac.fftSize
}

// Window returns the analysis window
func (ac *AutoCorrelator) Window() *windowing.Window {
	return ac.window
}

// Compute analyses the leading WindowSize samples of frame. Both results
// must be released by the caller. Frames shorter than the window are
// rejected with ErrFrameTooShort
func (ac *AutoCorrelator) Compute(frame []float64, sampleRate int) (*AutoCorrelation, *FrequencySpectrum, error) {
	if len(frame) < ac.windowSize {
		return nil, nil, fmt.Errorf("%w: %d samples, window %d", ErrFrameTooShort, len(frame), ac.windowSize)
	}
	if sampleRate <= 0 {
		return nil, nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}

	padded := ac.pool.Acquire(ac.fftSize)
	defer padded.Release()
	if err := ac.window.ApplyTo(padded.Data(), frame); err != nil {
		return nil, nil, err
	}

	// the full two-sided power spectrum stays with the returned spectrum
	power := ac.pool.Acquire(ac.fftSize)
	corr := ac.pool.Acquire(ac.windowSize)
	bins := ac.correlate(corr.Data(), padded.Data(), power.Data())

	half := ac.fftSize/2 + 1
	spectrum := &FrequencySpectrum{
		bins:       bins[:half],
		power:      power,
		sampleRate: sampleRate,
		fftSize:    ac.fftSize,
	}
	return &AutoCorrelation{values: corr, window: ac.windowCorrelation, sampleRate: sampleRate}, spectrum, nil
}
