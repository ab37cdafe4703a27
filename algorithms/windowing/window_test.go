package windowing

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseType(t *testing.T) {
	for name, want := range map[string]Type{
		"hann":        Hann,
		"Hanning":     Hann,
		" hamming ":   Hamming,
		"rectangular": Rectangular,
		"none":        Rectangular,
		"blackman":    Blackman,
		"bartlett":    Bartlett,
		"flattop":     FlatTop,
	} {
		got, err := ParseType(name)
		if err != nil || got != want {
			t.Errorf("ParseType(%q) = %v, %v; want %v", name, got, err, want)
		}
	}
	if _, err := ParseType("kaiser"); err == nil {
		t.Error("ParseType(kaiser) succeeded")
	}
	for ty := range typeNames {
		back, err := ParseType(ty.String())
		if err != nil || back != ty {
			t.Errorf("round trip of %v gave %v, %v", ty, back, err)
		}
	}
}

func TestWindowApply(t *testing.T) {
	w, err := New(Rectangular, 4)
	if err != nil {
		t.Fatal(err)
	}
	signal := []float64{1, 2, 3, 4}
	if diff := cmp.Diff(signal, w.Apply(signal)); diff != "" {
		t.Errorf("rectangular window changed signal (-want +got):\n%s", diff)
	}
	if w.Gain() != 1 {
		t.Errorf("Gain = %v", w.Gain())
	}

	h, err := New(Hann, 9)
	if err != nil {
		t.Fatal(err)
	}
	coeffs := h.GetCoefficients()
	if math.Abs(coeffs[4]-1) > 1e-12 || math.Abs(coeffs[0]) > 1e-12 {
		t.Errorf("Hann coefficients %v", coeffs)
	}

	ones := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1}
	if err := h.ApplyInPlace(ones); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(coeffs, ones, cmpopts.EquateApprox(0, 1e-15)); diff != "" {
		t.Errorf("ApplyInPlace (-want +got):\n%s", diff)
	}
	if err := h.ApplyInPlace(make([]float64, 3)); err == nil {
		t.Error("size mismatch accepted")
	}

	dst := make([]float64, 12)
	src := make([]float64, 12)
	for i := range src {
		src[i] = 2
	}
	if err := h.ApplyTo(dst, src); err != nil {
		t.Fatal(err)
	}
	if dst[4] != 2 || dst[10] != 0 {
		t.Errorf("ApplyTo = %v", dst)
	}
}

func TestNewInvalid(t *testing.T) {
	if _, err := New(Type(99), 8); err == nil {
		t.Error("unknown type accepted")
	}
	if _, err := New(Hann, 0); err == nil {
		t.Error("zero size accepted")
	}
}
