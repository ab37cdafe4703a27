package music

import (
	"math"
	"sort"

	"github.com/pkg/errors"
)

// MaxScaleSteps bounds the number of degrees generated in each direction
// from the reference note
const MaxScaleSteps = 4096

// ScaleParams configures a MusicalScale
type ScaleParams struct {
	Temperament Temperament
	// RootNote is the note the temperament is built on; nil selects the
	// temperament's first possible root
	RootNote *MusicalNote
	// ReferenceNote is tuned to ReferenceFrequency; nil selects the
	// default reference of the note names (usually A4)
	ReferenceNote      *MusicalNote
	ReferenceFrequency float64
	MinFrequency       float64
	MaxFrequency       float64
	// Stretch is optional
	Stretch *StretchTuning
}

// MusicalScale binds a temperament to a reference frequency and holds the
// precomputed, strictly increasing frequencies of all audible degrees.
// Degree 0 is the reference note. Scales are immutable
type MusicalScale struct {
	temperament        Temperament
	names              *NoteNameScale
	referenceFrequency float64
	minFrequency       float64
	maxFrequency       float64
	stretch            *StretchTuning

	frequencies    []float64
	referenceIndex int
}

// NewMusicalScale builds the frequency table. Invalid configurations are
// rejected with ErrInvalidScale, ErrInvalidTemperament or ErrIterationLimit
func NewMusicalScale(p ScaleParams) (*MusicalScale, error) {
	if p.Temperament == nil {
		return nil, errors.Wrap(ErrInvalidScale, "missing temperament")
	}
	if p.Temperament.Size() <= 0 {
		return nil, errors.Wrapf(ErrInvalidTemperament, "temperament %q has no notes", p.Temperament.ID())
	}
	if !(p.ReferenceFrequency > 0) || math.IsInf(p.ReferenceFrequency, 0) {
		return nil, errors.Wrapf(ErrInvalidScale, "reference frequency must be positive, got %g", p.ReferenceFrequency)
	}
	if !(p.MinFrequency > 0) || !(p.MaxFrequency > p.MinFrequency) || math.IsInf(p.MaxFrequency, 0) {
		return nil, errors.Wrapf(ErrInvalidScale, "invalid frequency range [%g, %g]", p.MinFrequency, p.MaxFrequency)
	}
	if p.ReferenceFrequency < p.MinFrequency || p.ReferenceFrequency > p.MaxFrequency {
		return nil, errors.Wrapf(ErrInvalidScale, "reference frequency %g outside [%g, %g]",
			p.ReferenceFrequency, p.MinFrequency, p.MaxFrequency)
	}

	cents := p.Temperament.Cents()
	if len(cents) != p.Temperament.Size()+1 {
		return nil, errors.Wrapf(ErrInvalidTemperament, "temperament %q has %d cent values for %d notes",
			p.Temperament.ID(), len(cents), p.Temperament.Size())
	}
	for i := 1; i < len(cents); i++ {
		if !(cents[i] > cents[i-1]) {
			return nil, errors.Wrapf(ErrInvalidScale, "cents of %q not strictly increasing at index %d", p.Temperament.ID(), i)
		}
	}

	names, err := p.Temperament.NoteNames(p.RootNote)
	if err != nil {
		return nil, errors.Wrap(err, "note names")
	}
	if names.Size() != p.Temperament.Size() {
		return nil, errors.Wrapf(ErrInvalidTemperament, "%d note names for %d notes", names.Size(), p.Temperament.Size())
	}
	if p.ReferenceNote != nil {
		if names, err = names.WithReference(*p.ReferenceNote); err != nil {
			return nil, err
		}
	}

	s := &MusicalScale{
		temperament:        p.Temperament,
		names:              names,
		referenceFrequency: p.ReferenceFrequency,
		minFrequency:       p.MinFrequency,
		maxFrequency:       p.MaxFrequency,
		stretch:            p.Stretch,
	}
	if err := s.build(cents); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MusicalScale) build(cents []float64) error {
	n := len(cents) - 1
	refLocal, _ := s.names.LocalIndex(s.names.ReferenceNote())
	centsAt := func(k int) float64 {
		return float64(floorDiv(k, n))*CentsPerOctave + cents[floorMod(k, n)]
	}
	refCents := centsAt(refLocal)
	refStretch := s.stretch.Cents(s.referenceFrequency)
	frequency := func(degree int) float64 {
		if degree == 0 {
			return s.referenceFrequency
		}
		f := s.referenceFrequency * CentsToRatio(centsAt(refLocal+degree)-refCents)
		if s.stretch.Len() > 0 {
			f *= CentsToRatio(s.stretch.Cents(f) - refStretch)
		}
		return f
	}

	var up []float64
	for d := 0; ; d++ {
		if d > MaxScaleSteps {
			return errors.Wrapf(ErrIterationLimit, "more than %d degrees above the reference", MaxScaleSteps)
		}
		f := frequency(d)
		if f > s.maxFrequency {
			break
		}
		up = append(up, f)
	}
	var down []float64
	for d := -1; ; d-- {
		if -d > MaxScaleSteps {
			return errors.Wrapf(ErrIterationLimit, "more than %d degrees below the reference", MaxScaleSteps)
		}
		f := frequency(d)
		if f < s.minFrequency {
			break
		}
		down = append(down, f)
	}

	s.frequencies = make([]float64, 0, len(down)+len(up))
	for i := len(down) - 1; i >= 0; i-- {
		s.frequencies = append(s.frequencies, down[i])
	}
	s.referenceIndex = len(down)
	s.frequencies = append(s.frequencies, up...)

	for i := 1; i < len(s.frequencies); i++ {
		if !(s.frequencies[i] > s.frequencies[i-1]) {
			return errors.Wrapf(ErrInvalidScale, "frequencies not increasing at degree %d (stretch tuning too steep?)",
				i-s.referenceIndex)
		}
	}
	return nil
}

// Temperament returns the underlying temperament
func (s *MusicalScale) Temperament() Temperament { return s.temperament }

// NoteNames returns the note names, referenced to the scale's reference note
func (s *MusicalScale) NoteNames() *NoteNameScale { return s.names }

// ReferenceNote returns the note at degree 0
func (s *MusicalScale) ReferenceNote() MusicalNote { return s.names.ReferenceNote() }

// ReferenceFrequency returns the frequency of degree 0
func (s *MusicalScale) ReferenceFrequency() float64 { return s.referenceFrequency }

// Stretch returns the stretch tuning, which may be nil
func (s *MusicalScale) Stretch() *StretchTuning { return s.stretch }

// FrequencyRange returns the audible range the table was clipped to
func (s *MusicalScale) FrequencyRange() (float64, float64) {
	return s.minFrequency, s.maxFrequency
}

// Frequencies returns a copy of the frequency table
func (s *MusicalScale) Frequencies() []float64 {
	return append([]float64(nil), s.frequencies...)
}

// ReferenceIndex returns the array index of degree 0 in Frequencies
func (s *MusicalScale) ReferenceIndex() int { return s.referenceIndex }

// DegreeRange returns the lowest and highest degree in the table
func (s *MusicalScale) DegreeRange() (int, int) {
	return -s.referenceIndex, len(s.frequencies) - 1 - s.referenceIndex
}

// Frequency returns the frequency of a degree, or false if the degree lies
// outside the audible range
func (s *MusicalScale) Frequency(degree int) (float64, bool) {
	i := degree + s.referenceIndex
	if i < 0 || i >= len(s.frequencies) {
		return 0, false
	}
	return s.frequencies[i], true
}

// NearestIndex returns the degree whose frequency is closest to frequency.
// Frequencies outside the table map to its first or last degree. When two
// neighbours are exactly equally far away the lower degree wins
func (s *MusicalScale) NearestIndex(frequency float64) int {
	fs := s.frequencies
	i := sort.SearchFloat64s(fs, frequency)
	switch {
	case i == 0:
		return -s.referenceIndex
	case i == len(fs):
		return len(fs) - 1 - s.referenceIndex
	}
	if frequency-fs[i-1] <= fs[i]-frequency {
		i--
	}
	return i - s.referenceIndex
}

// CentsDeviation returns how many cents frequency lies above the degree
func (s *MusicalScale) CentsDeviation(frequency float64, degree int) float64 {
	target, ok := s.Frequency(degree)
	if !ok || !(frequency > 0) {
		return math.NaN()
	}
	return RatioToCents(frequency / target)
}

// NoteToIndex maps a note to its degree
func (s *MusicalScale) NoteToIndex(note MusicalNote) (int, bool) {
	return s.names.NoteToIndex(note)
}

// IndexToNote maps a degree to its note
func (s *MusicalScale) IndexToNote(degree int) MusicalNote {
	return s.names.IndexToNote(degree)
}

// NoteFrequency returns the frequency of a note, or false if the note is
// unknown or inaudible
func (s *MusicalScale) NoteFrequency(note MusicalNote) (float64, bool) {
	d, ok := s.NoteToIndex(note)
	if !ok {
		return 0, false
	}
	return s.Frequency(d)
}
