package music

import (
	"errors"
	"math"
	"testing"
)

func TestNewRationalReduces(t *testing.T) {
	for n := int64(-12); n <= 12; n++ {
		for d := int64(-12); d <= 12; d++ {
			if d == 0 {
				continue
			}
			r, err := NewRational(n, d)
			if err != nil {
				t.Fatalf("NewRational(%d, %d): %v", n, d, err)
			}
			if r.Denominator() <= 0 {
				t.Errorf("NewRational(%d, %d) has denominator %d", n, d, r.Denominator())
			}
			if g := gcd(abs64(r.Numerator()), r.Denominator()); g != 1 {
				t.Errorf("NewRational(%d, %d) = %v is not reduced (gcd %d)", n, d, r, g)
			}
			if sum, err := r.Add(r.Neg()); err != nil || sum != Zero || sum.Denominator() != 1 {
				t.Errorf("%v + -%v = %v, %v; want 0/1", r, r, sum, err)
			}
			if got, want := r.Float64(), float64(n)/float64(d); got != want {
				t.Errorf("NewRational(%d, %d).Float64() = %v, want %v", n, d, got, want)
			}
		}
	}
}

func TestNewRationalZeroDenominator(t *testing.T) {
	if _, err := NewRational(3, 0); !errors.Is(err, ErrZeroDenominator) {
		t.Errorf("NewRational(3, 0) error = %v, want ErrZeroDenominator", err)
	}
	if _, err := MustRational(1, 2).Div(Zero); !errors.Is(err, ErrZeroDenominator) {
		t.Errorf("Div by zero error = %v, want ErrZeroDenominator", err)
	}
}

func TestRationalArithmetic(t *testing.T) {
	half := MustRational(1, 2)
	third := MustRational(1, 3)
	for _, tc := range []struct {
		name string
		op   func() (RationalNumber, error)
		want RationalNumber
	}{
		{"add", func() (RationalNumber, error) { return half.Add(third) }, MustRational(5, 6)},
		{"sub", func() (RationalNumber, error) { return third.Sub(half) }, MustRational(-1, 6)},
		{"mul", func() (RationalNumber, error) { return half.Mul(MustRational(-4, 3)) }, MustRational(-2, 3)},
		{"div", func() (RationalNumber, error) { return half.Div(MustRational(-1, 4)) }, Int(-2)},
		{"zero value", func() (RationalNumber, error) { return RationalNumber{}.Add(half) }, half},
		{"large but exact", func() (RationalNumber, error) {
			return MustRational(math.MaxInt64, 3).Mul(MustRational(3, math.MaxInt64))
		}, One},
	} {
		got, err := tc.op()
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
	if got := MustRational(3, -9).Neg(); got != third {
		t.Errorf("neg: got %v, want %v", got, third)
	}
}

func TestRationalOverflow(t *testing.T) {
	maxInt := Int(math.MaxInt64)
	for _, tc := range []struct {
		name string
		op   func() (RationalNumber, error)
	}{
		{"add numerators", func() (RationalNumber, error) { return maxInt.Add(One) }},
		{"add negative", func() (RationalNumber, error) { return maxInt.Neg().Sub(One) }},
		{"add denominators", func() (RationalNumber, error) {
			return MustRational(1, 4000000000).Add(MustRational(1, 4000000001))
		}},
		{"mul numerators", func() (RationalNumber, error) { return maxInt.Mul(Int(2)) }},
		{"mul denominators", func() (RationalNumber, error) {
			return MustRational(1, 4000000000).Mul(MustRational(1, 4000000001))
		}},
		{"div", func() (RationalNumber, error) { return maxInt.Div(MustRational(1, 2)) }},
		{"min int numerator", func() (RationalNumber, error) { return NewRational(math.MinInt64, 1) }},
		{"min int denominator", func() (RationalNumber, error) { return NewRational(3, math.MinInt64) }},
		{"parsed min int", func() (RationalNumber, error) { return ParseRational("-9223372036854775808") }},
	} {
		if got, err := tc.op(); !errors.Is(err, ErrOverflow) {
			t.Errorf("%s: got %v, %v; want ErrOverflow", tc.name, got, err)
		}
	}
	if got, err := maxInt.Neg().Add(maxInt); err != nil || got != Zero {
		t.Errorf("-max + max = %v, %v; want 0", got, err)
	}
}

func TestParseRational(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want RationalNumber
		ok   bool
	}{
		{"3", Int(3), true},
		{"-1/4", MustRational(-1, 4), true},
		{" 6 / 8 ", MustRational(3, 4), true},
		{"1/0", RationalNumber{}, false},
		{"a/b", RationalNumber{}, false},
		{"1/2/3", RationalNumber{}, false},
		{"", RationalNumber{}, false},
	} {
		got, err := ParseRational(tc.in)
		if (err == nil) != tc.ok {
			t.Errorf("ParseRational(%q) error = %v, want ok=%v", tc.in, err, tc.ok)
			continue
		}
		if tc.ok && got != tc.want {
			t.Errorf("ParseRational(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if s := MustRational(-2, 6).String(); s != "-1/3" {
		t.Errorf("String() = %q, want -1/3", s)
	}
}

func TestRationalPow(t *testing.T) {
	if got := MustRational(1, 2).Pow(4); got != 2 {
		t.Errorf("4^(1/2) = %v, want 2", got)
	}
	if got := Zero.Pow(7); got != 1 {
		t.Errorf("7^0 = %v, want 1", got)
	}
	if got := Int(-1).Pow(2); got != 0.5 {
		t.Errorf("2^-1 = %v, want 0.5", got)
	}
}
