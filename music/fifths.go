package music

import "fmt"

// Reference ratios of the three commas used to describe tempered fifths
var (
	PythagoreanCommaRatio = 531441.0 / 524288.0 // 3^12 / 2^19
	SyntonicCommaRatio    = 81.0 / 80.0
	SchismaRatio          = 32805.0 / 32768.0 // Pythagorean / syntonic
)

// PureFifth is the untempered fifth ratio
const PureFifth = 1.5

// FifthModification describes how far a tempered fifth deviates from 3/2, as
// exponents of the Pythagorean comma, the syntonic comma and the schisma.
// A value of {Syntonic: -1/4} is a quarter-comma meantone fifth
type FifthModification struct {
	Pythagorean RationalNumber `json:"pythagorean_comma"`
	Syntonic    RationalNumber `json:"syntonic_comma"`
	Schisma     RationalNumber `json:"schisma"`
}

// NewFifthModification builds a simplified modification
func NewFifthModification(pythagorean, syntonic, schisma RationalNumber) (FifthModification, error) {
	return FifthModification{pythagorean, syntonic, schisma}.Simplify()
}

// Simplify collapses redundant combinations using the identity
// pythagorean comma = syntonic comma + schisma
func (m FifthModification) Simplify() (FifthModification, error) {
	p, sy, sc := m.Pythagorean, m.Syntonic, m.Schisma
	var err error
	switch {
	case !sy.IsZero() && sy == sc:
		// x*S + x*s = x*P
		p, err = p.Add(sy)
		sy, sc = Zero, Zero
	case !p.IsZero() && p == sy.Neg():
		// x*P - x*S = x*s
		sc, err = sc.Add(p)
		p, sy = Zero, Zero
	case !p.IsZero() && p == sc.Neg():
		// x*P - x*s = x*S
		sy, err = sy.Add(p)
		p, sc = Zero, Zero
	}
	if err != nil {
		return FifthModification{}, err
	}
	return FifthModification{Pythagorean: p, Syntonic: sy, Schisma: sc}, nil
}

// Add returns the simplified sum m + o
func (m FifthModification) Add(o FifthModification) (FifthModification, error) {
	p, err := m.Pythagorean.Add(o.Pythagorean)
	if err != nil {
		return FifthModification{}, err
	}
	sy, err := m.Syntonic.Add(o.Syntonic)
	if err != nil {
		return FifthModification{}, err
	}
	sc, err := m.Schisma.Add(o.Schisma)
	if err != nil {
		return FifthModification{}, err
	}
	return FifthModification{Pythagorean: p, Syntonic: sy, Schisma: sc}.Simplify()
}

// Sub returns the simplified difference m - o
func (m FifthModification) Sub(o FifthModification) (FifthModification, error) {
	return m.Add(o.Neg())
}

// Neg returns the negated modification
func (m FifthModification) Neg() FifthModification {
	return FifthModification{
		Pythagorean: m.Pythagorean.Neg(),
		Syntonic:    m.Syntonic.Neg(),
		Schisma:     m.Schisma.Neg(),
	}
}

// IsZero reports whether the modification leaves the fifth pure
func (m FifthModification) IsZero() bool {
	return m.Pythagorean.IsZero() && m.Syntonic.IsZero() && m.Schisma.IsZero()
}

// Ratio converts the modification into the multiplier applied to a pure fifth
func (m FifthModification) Ratio() float64 {
	return m.Pythagorean.Pow(PythagoreanCommaRatio) *
		m.Syntonic.Pow(SyntonicCommaRatio) *
		m.Schisma.Pow(SchismaRatio)
}

// Cents converts the modification into cents
func (m FifthModification) Cents() float64 {
	return RatioToCents(m.Ratio())
}

func (m FifthModification) String() string {
	return fmt.Sprintf("P=%v S=%v s=%v", m.Pythagorean, m.Syntonic, m.Schisma)
}
