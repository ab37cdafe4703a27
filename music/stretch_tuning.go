package music

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// StretchPoint is one knot of a stretch tuning curve
type StretchPoint struct {
	Key                  int     `json:"key"`
	UnstretchedFrequency float64 `json:"unstretched_frequency"`
	Cents                float64 `json:"cents"`
}

// StretchTuning is a piecewise curve of cent corrections over frequency,
// interpolated linearly in cents over log2(frequency) and held flat beyond
// the first and last knot. Values are immutable; the With* methods return
// modified copies
type StretchTuning struct {
	Name        string
	Description string

	points  []StretchPoint
	nextKey int
}

// NewStretchTuning builds a curve from parallel arrays of unstretched
// frequencies and cent corrections, as read from a StretchTuning block
func NewStretchTuning(unstretched, cents []float64) (*StretchTuning, error) {
	if len(unstretched) != len(cents) {
		return nil, errors.Wrapf(ErrInvalidStretchTuning, "%d frequencies but %d cent values", len(unstretched), len(cents))
	}
	st := &StretchTuning{}
	for i := range unstretched {
		f, c := unstretched[i], cents[i]
		if !(f > 0) || math.IsInf(f, 0) || math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, errors.Wrapf(ErrInvalidStretchTuning, "invalid point %d (%g Hz, %g cents)", i, f, c)
		}
		var err error
		st, err = st.WithPoint(f, c)
		if err != nil {
			return nil, err
		}
	}
	return st, nil
}

// Len returns the number of knots
func (s *StretchTuning) Len() int {
	if s == nil {
		return 0
	}
	return len(s.points)
}

// Points returns a copy of the knots sorted by frequency
func (s *StretchTuning) Points() []StretchPoint {
	if s == nil {
		return nil
	}
	return append([]StretchPoint(nil), s.points...)
}

// UnstretchedFrequencies returns the knot frequencies
func (s *StretchTuning) UnstretchedFrequencies() []float64 {
	out := make([]float64, s.Len())
	for i, p := range s.Points() {
		out[i] = p.UnstretchedFrequency
	}
	return out
}

// StretchInCents returns the knot cent values
func (s *StretchTuning) StretchInCents() []float64 {
	out := make([]float64, s.Len())
	for i, p := range s.Points() {
		out[i] = p.Cents
	}
	return out
}

func (s *StretchTuning) clone() *StretchTuning {
	if s == nil {
		return &StretchTuning{}
	}
	c := *s
	c.points = append([]StretchPoint(nil), s.points...)
	return &c
}

func (s *StretchTuning) insert(p StretchPoint) {
	i := sort.Search(len(s.points), func(i int) bool {
		return s.points[i].UnstretchedFrequency >= p.UnstretchedFrequency
	})
	if i < len(s.points) && s.points[i].UnstretchedFrequency == p.UnstretchedFrequency {
		// same frequency replaces the stored value
		p.Key = s.points[i].Key
		s.points[i] = p
		return
	}
	s.points = append(s.points, StretchPoint{})
	copy(s.points[i+1:], s.points[i:])
	s.points[i] = p
}

// WithPoint returns a copy with an added knot. A knot at an existing
// frequency replaces the old value
func (s *StretchTuning) WithPoint(frequency, cents float64) (*StretchTuning, error) {
	if !(frequency > 0) {
		return nil, errors.Wrapf(ErrInvalidStretchTuning, "frequency must be positive, got %g", frequency)
	}
	c := s.clone()
	c.insert(StretchPoint{Key: c.nextKey, UnstretchedFrequency: frequency, Cents: cents})
	c.nextKey++
	return c, nil
}

// WithModifiedPoint returns a copy where the knot with the given key is
// moved to a new frequency and value
func (s *StretchTuning) WithModifiedPoint(key int, frequency, cents float64) (*StretchTuning, error) {
	if !(frequency > 0) {
		return nil, errors.Wrapf(ErrInvalidStretchTuning, "frequency must be positive, got %g", frequency)
	}
	c, err := s.WithoutPoint(key)
	if err != nil {
		return nil, err
	}
	c.insert(StretchPoint{Key: key, UnstretchedFrequency: frequency, Cents: cents})
	return c, nil
}

// WithoutPoint returns a copy without the knot with the given key
func (s *StretchTuning) WithoutPoint(key int) (*StretchTuning, error) {
	c := s.clone()
	for i, p := range c.points {
		if p.Key == key {
			c.points = append(c.points[:i], c.points[i+1:]...)
			return c, nil
		}
	}
	return nil, errors.Wrapf(ErrInvalidStretchTuning, "no point with key %d", key)
}

// Cents returns the correction at an unstretched frequency
func (s *StretchTuning) Cents(frequency float64) float64 {
	n := s.Len()
	switch {
	case n == 0:
		return 0
	case frequency <= s.points[0].UnstretchedFrequency:
		return s.points[0].Cents
	case frequency >= s.points[n-1].UnstretchedFrequency:
		return s.points[n-1].Cents
	}
	i := sort.Search(n, func(i int) bool {
		return s.points[i].UnstretchedFrequency >= frequency
	})
	hi := s.points[i]
	if hi.UnstretchedFrequency == frequency {
		return hi.Cents
	}
	lo := s.points[i-1]
	t := math.Log2(frequency/lo.UnstretchedFrequency) / math.Log2(hi.UnstretchedFrequency/lo.UnstretchedFrequency)
	return lo.Cents + t*(hi.Cents-lo.Cents)
}

// Apply returns the stretched frequency
func (s *StretchTuning) Apply(frequency float64) float64 {
	return frequency * CentsToRatio(s.Cents(frequency))
}
