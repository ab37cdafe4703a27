package windowing

import (
	"fmt"
	"strings"

	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"
)

// Type selects a window function
type Type int

const (
	Rectangular Type = iota
	Hamming
	Hann
	Blackman
	Bartlett
	FlatTop
)

var typeNames = map[Type]string{
	Rectangular: "rectangular",
	Hamming:     "hamming",
	Hann:        "hann",
	Blackman:    "blackman",
	Bartlett:    "bartlett",
	FlatTop:     "flattop",
}

var generators = map[Type]func(int) []float64{
	Rectangular: window.Rectangular,
	Hamming:     window.Hamming,
	Hann:        window.Hann,
	Blackman:    window.Blackman,
	Bartlett:    window.Bartlett,
	FlatTop:     window.FlatTop,
}

// String returns the configuration name of the window type
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType resolves a configuration name ("hann", "hamming", ...).
// "hanning" and "none" are accepted as aliases
func ParseType(name string) (Type, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "hanning":
		return Hann, nil
	case "none", "":
		return Rectangular, nil
	}
	for t, tn := range typeNames {
		if tn == n {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown window type %q", name)
}

// MarshalText implements encoding.TextMarshaler
func (t Type) MarshalText() ([]byte, error) {
	if _, ok := typeNames[t]; !ok {
		return nil, fmt.Errorf("unknown window type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Window holds precomputed coefficients of one window function
type Window struct {
	windowType   Type
	coefficients []float64
	gain         float64
}

// New creates a window of the given type and size
func New(t Type, size int) (*Window, error) {
	gen, ok := generators[t]
	if !ok {
		return nil, fmt.Errorf("unknown window type %d", int(t))
	}
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}
	coeffs := gen(size)
	return &Window{
		windowType:   t,
		coefficients: coeffs,
		gain:         floats.Sum(coeffs) / float64(size),
	}, nil
}

// Apply applies the window to a signal (creates new array)
func (w *Window) Apply(signal []float64) []float64 {
	if len(signal) != len(w.coefficients) {
		return nil
	}
	windowed := append([]float64(nil), signal...)
	floats.Mul(windowed, w.coefficients)
	return windowed
}

// ApplyInPlace applies the window to a signal in-place
func (w *Window) ApplyInPlace(signal []float64) error {
	if len(signal) != len(w.coefficients) {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), len(w.coefficients))
	}
	floats.Mul(signal, w.coefficients)
	return nil
}

// ApplyTo writes the windowed signal into dst, which must be at least as
// long as the window. Samples of dst beyond the window are left untouched
func (w *Window) ApplyTo(dst, signal []float64) error {
	n := len(w.coefficients)
	if len(signal) < n || len(dst) < n {
		return fmt.Errorf("buffers (%d, %d) shorter than window size (%d)", len(dst), len(signal), n)
	}
	floats.MulTo(dst[:n], signal[:n], w.coefficients)
	return nil
}

// GetCoefficients returns a copy of the window coefficients
func (w *Window) GetCoefficients() []float64 {
	return append([]float64(nil), w.coefficients...)
}

// GetSize returns the window size
func (w *Window) GetSize() int {
	return len(w.coefficients)
}

// GetType returns the window type
func (w *Window) GetType() Type {
	return w.windowType
}

// Gain returns the mean coefficient (coherent gain)
func (w *Window) Gain() float64 {
	return w.gain
}
