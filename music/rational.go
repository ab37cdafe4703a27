package music

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// RationalNumber is an exact fraction. Values are always reduced with a
// positive denominator, so two equal fractions compare equal with ==.
// The zero value is 0/1. Numerator and denominator stay within
// ±math.MaxInt64; arithmetic leaving that range fails with ErrOverflow
type RationalNumber struct {
	num int64
	// denominator minus one, so that the zero value is a valid 0/1
	dm1 int64
}

// Zero and One are convenience constants
var (
	Zero = RationalNumber{}
	One  = RationalNumber{num: 1}
)

// NewRational creates a reduced fraction n/d
func NewRational(n, d int64) (RationalNumber, error) {
	if d == 0 {
		return RationalNumber{}, errors.Wrapf(ErrZeroDenominator, "rational %d/%d", n, d)
	}
	if n == math.MinInt64 || d == math.MinInt64 {
		return RationalNumber{}, errors.Wrapf(ErrOverflow, "rational %d/%d", n, d)
	}
	return reduce(n, d), nil
}

// MustRational is like NewRational but panics on invalid input. It is
// meant for constant tables
func MustRational(n, d int64) RationalNumber {
	r, err := NewRational(n, d)
	if err != nil {
		panic(err)
	}
	return r
}

// Int returns the fraction n/1. It panics for math.MinInt64
func Int(n int64) RationalNumber {
	return MustRational(n, 1)
}

// reduce expects n and d within ±math.MaxInt64 and d != 0
func reduce(n, d int64) RationalNumber {
	if d < 0 {
		n, d = -n, -d
	}
	if n == 0 {
		return Zero
	}
	g := gcd(abs64(n), d)
	return RationalNumber{num: n / g, dm1: d/g - 1}
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

// mul64 returns a*b, false if the product leaves ±math.MaxInt64
func mul64(a, b int64) (int64, bool) {
	hi, lo := bits.Mul64(uint64(abs64(a)), uint64(abs64(b)))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, false
	}
	if (a < 0) != (b < 0) {
		return -int64(lo), true
	}
	return int64(lo), true
}

// add64 returns a+b, false if the sum leaves ±math.MaxInt64
func add64(a, b int64) (int64, bool) {
	sum := a + b
	if (a > 0 && b > 0 && sum < 0) || (a < 0 && b < 0 && sum >= 0) || sum == math.MinInt64 {
		return 0, false
	}
	return sum, true
}

// Numerator returns the reduced numerator
func (r RationalNumber) Numerator() int64 { return r.num }

// Denominator returns the reduced, positive denominator
func (r RationalNumber) Denominator() int64 { return r.dm1 + 1 }

// Add returns r + o
func (r RationalNumber) Add(o RationalNumber) (RationalNumber, error) {
	rd, od := r.Denominator(), o.Denominator()
	g := gcd(rd, od)
	a, ok1 := mul64(r.num, od/g)
	b, ok2 := mul64(o.num, rd/g)
	n, ok3 := add64(a, b)
	d, ok4 := mul64(rd/g, od)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return RationalNumber{}, errors.Wrapf(ErrOverflow, "%v + %v", r, o)
	}
	return reduce(n, d), nil
}

// Sub returns r - o
func (r RationalNumber) Sub(o RationalNumber) (RationalNumber, error) {
	return r.Add(o.Neg())
}

// Neg returns -r
func (r RationalNumber) Neg() RationalNumber {
	return RationalNumber{num: -r.num, dm1: r.dm1}
}

// Mul returns r * o
func (r RationalNumber) Mul(o RationalNumber) (RationalNumber, error) {
	if r.num == 0 || o.num == 0 {
		return Zero, nil
	}
	g1 := gcd(abs64(r.num), o.Denominator())
	g2 := gcd(abs64(o.num), r.Denominator())
	n, ok1 := mul64(r.num/g1, o.num/g2)
	d, ok2 := mul64(r.Denominator()/g2, o.Denominator()/g1)
	if !ok1 || !ok2 {
		return RationalNumber{}, errors.Wrapf(ErrOverflow, "%v * %v", r, o)
	}
	return reduce(n, d), nil
}

// Div returns r / o. Dividing by zero fails with ErrZeroDenominator
func (r RationalNumber) Div(o RationalNumber) (RationalNumber, error) {
	if o.num == 0 {
		return RationalNumber{}, errors.Wrapf(ErrZeroDenominator, "division of %v by zero", r)
	}
	return r.Mul(reduce(o.Denominator(), o.num))
}

// IsZero reports whether r equals 0
func (r RationalNumber) IsZero() bool { return r.num == 0 }

// Sign returns -1, 0 or 1
func (r RationalNumber) Sign() int {
	switch {
	case r.num < 0:
		return -1
	case r.num > 0:
		return 1
	}
	return 0
}

// Float64 converts the fraction to a float
func (r RationalNumber) Float64() float64 {
	return float64(r.num) / float64(r.Denominator())
}

// Pow returns base raised to the power r
func (r RationalNumber) Pow(base float64) float64 {
	switch {
	case r.num == 0:
		return 1
	case r.dm1 == 0:
		return math.Pow(base, float64(r.num))
	}
	return math.Pow(base, r.Float64())
}

// String formats the fraction as "n/d", or "n" for integers
func (r RationalNumber) String() string {
	if r.dm1 == 0 {
		return strconv.FormatInt(r.num, 10)
	}
	return fmt.Sprintf("%d/%d", r.num, r.Denominator())
}

// ParseRational parses "n", "n/d" or "-n/d". Surrounding white space is ignored
func ParseRational(s string) (RationalNumber, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) > 2 || parts[0] == "" {
		return RationalNumber{}, errors.Errorf("cannot parse rational number %q", s)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return RationalNumber{}, errors.Wrapf(err, "numerator of %q", s)
	}
	d := int64(1)
	if len(parts) == 2 {
		d, err = strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			return RationalNumber{}, errors.Wrapf(err, "denominator of %q", s)
		}
	}
	return NewRational(n, d)
}

// MarshalText implements encoding.TextMarshaler
func (r RationalNumber) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *RationalNumber) UnmarshalText(text []byte) error {
	v, err := ParseRational(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
