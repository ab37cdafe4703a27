package music

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Temperament describes how an octave is divided. Every variant exposes the
// full capability set; the optional views report false where they do not
// apply
type Temperament interface {
	// ID is a stable identifier, used as key for predefined temperaments
	ID() string
	Name() string
	Abbreviation() string
	Description() string

	// Size is the number of notes per octave, not counting the closing octave
	Size() int
	// Cents returns Size()+1 non-decreasing values from 0 to 1200
	Cents() []float64

	RationalNumbers() ([]RationalNumber, bool)
	ChainOfFifths() (*ChainOfFifths, bool)
	EqualDivision() (int, bool)

	// PossibleRootNotes lists the notes a temperament can be built on
	PossibleRootNotes() []MusicalNote
	// NoteNames returns the names of one octave starting at root. A nil
	// root selects the first possible root note
	NoteNames(root *MusicalNote) (*NoteNameScale, error)
}

// TemperamentInfo holds the descriptive fields shared by all variants
type TemperamentInfo struct {
	Key    string `json:"id"`
	Title  string `json:"name"`
	Abbrev string `json:"abbreviation"`
	About  string `json:"description,omitempty"`
}

func (i TemperamentInfo) ID() string           { return i.Key }
func (i TemperamentInfo) Name() string         { return i.Title }
func (i TemperamentInfo) Abbreviation() string { return i.Abbrev }
func (i TemperamentInfo) Description() string  { return i.About }

func copyCents(c []float64) []float64 {
	out := make([]float64, len(c))
	copy(out, c)
	return out
}

// validateCents checks the invariants of a cents table and pins the last
// value to exactly 1200
func validateCents(cents []float64) error {
	if len(cents) < 2 {
		return errors.Wrapf(ErrInvalidTemperament, "temperament needs at least one note, got %d cent values", len(cents))
	}
	if floats.HasNaN(cents) {
		return errors.Wrap(ErrInvalidTemperament, "cents contain NaN")
	}
	if math.Abs(cents[0]) > 1e-9 {
		return errors.Wrapf(ErrInvalidTemperament, "first cent value must be 0, got %g", cents[0])
	}
	last := len(cents) - 1
	if math.Abs(cents[last]-CentsPerOctave) > 1e-6 {
		return errors.Wrapf(ErrInvalidTemperament, "last cent value must be 1200, got %g", cents[last])
	}
	for i := 1; i < len(cents); i++ {
		if cents[i] < cents[i-1] {
			return errors.Wrapf(ErrInvalidTemperament, "cents decrease at index %d (%g < %g)", i, cents[i], cents[i-1])
		}
	}
	cents[0] = 0
	cents[last] = CentsPerOctave
	return nil
}

func namesFor(notes []MusicalNote, switchIndex int, root *MusicalNote) (*NoteNameScale, error) {
	r := notes[0]
	if root != nil {
		r = *root
	}
	rotated, sw, err := rotateNames(notes, switchIndex, r)
	if err != nil {
		return nil, err
	}
	return buildNameScale(rotated, sw)
}

// EDOTemperament divides the octave into equal steps
type EDOTemperament struct {
	TemperamentInfo
	divisions int
	names     []MusicalNote
}

// NewEDO creates an n-EDO temperament
func NewEDO(n int) (*EDOTemperament, error) {
	if n <= 0 {
		return nil, errors.Wrapf(ErrInvalidTemperament, "EDO needs at least one division, got %d", n)
	}
	return &EDOTemperament{
		TemperamentInfo: TemperamentInfo{
			Key:    edoKey(n),
			Title:  edoKey(n),
			Abbrev: edoKey(n),
			About:  "Equal division of the octave",
		},
		divisions: n,
		names:     edoNames(n),
	}, nil
}

func edoKey(n int) string {
	return strconv.Itoa(n) + "-EDO"
}

func (t *EDOTemperament) Size() int { return t.divisions }

func (t *EDOTemperament) Cents() []float64 {
	cents := make([]float64, t.divisions+1)
	for i := range cents {
		cents[i] = CentsPerOctave * float64(i) / float64(t.divisions)
	}
	cents[t.divisions] = CentsPerOctave
	return cents
}

func (t *EDOTemperament) RationalNumbers() ([]RationalNumber, bool) { return nil, false }
func (t *EDOTemperament) ChainOfFifths() (*ChainOfFifths, bool)     { return nil, false }
func (t *EDOTemperament) EqualDivision() (int, bool)                { return t.divisions, true }

func (t *EDOTemperament) PossibleRootNotes() []MusicalNote {
	out := make([]MusicalNote, len(t.names))
	copy(out, t.names)
	return out
}

func (t *EDOTemperament) NoteNames(root *MusicalNote) (*NoteNameScale, error) {
	return namesFor(t.names, 0, root)
}

// ChainTemperament derives its notes from a chain of tempered fifths. With
// extended naming each chain note is named by its position on the line of
// fifths, so sharps and flats stay distinct
type ChainTemperament struct {
	TemperamentInfo
	chain    *ChainOfFifths
	extended bool
	cents    []float64
}

// NewChainTemperament creates a chain-of-fifths temperament. Chains that do
// not span twelve notes always use extended naming
func NewChainTemperament(info TemperamentInfo, chain *ChainOfFifths, extended bool) (*ChainTemperament, error) {
	if chain == nil {
		return nil, errors.Wrap(ErrInvalidTemperament, "missing chain of fifths")
	}
	cents := chain.Cents()
	if err := validateCents(cents); err != nil {
		return nil, errors.Wrapf(err, "temperament %q", info.Key)
	}
	return &ChainTemperament{
		TemperamentInfo: info,
		chain:           chain,
		extended:        extended || chain.NumNotes() != 12,
		cents:           cents,
	}, nil
}

func (t *ChainTemperament) Size() int                                 { return t.chain.NumNotes() }
func (t *ChainTemperament) Cents() []float64                          { return copyCents(t.cents) }
func (t *ChainTemperament) RationalNumbers() ([]RationalNumber, bool) { return nil, false }
func (t *ChainTemperament) ChainOfFifths() (*ChainOfFifths, bool)     { return t.chain, true }
func (t *ChainTemperament) EqualDivision() (int, bool)                { return 0, false }

// ExtendedNaming reports whether notes are named along the line of fifths
func (t *ChainTemperament) ExtendedNaming() bool { return t.extended }

func (t *ChainTemperament) lineOfFifthsNames(root MusicalNote) []MusicalNote {
	rootLof := lineOfFifthsPosition(root)
	positions := t.chain.SortedChainPositions()
	names := make([]MusicalNote, len(positions))
	for i, p := range positions {
		names[i] = lineOfFifthsNote(rootLof + p - t.chain.RootIndex())
	}
	return names
}

func (t *ChainTemperament) PossibleRootNotes() []MusicalNote {
	if !t.extended {
		return standardNames()
	}
	return t.lineOfFifthsNames(NewNote(C, Natural, 0))
}

func (t *ChainTemperament) NoteNames(root *MusicalNote) (*NoteNameScale, error) {
	if !t.extended {
		return namesFor(standardNames(), 0, root)
	}
	r := NewNote(C, Natural, 0)
	if root != nil {
		if root.Modifier.Arrows != 0 {
			return nil, errors.Wrapf(ErrInvalidNote, "root %s cannot be placed on the line of fifths", root.Name())
		}
		r = *root
	}
	names := t.lineOfFifthsNames(r)
	return buildNameScale(names, letterWrapIndex(names))
}

// RationalTemperament is defined by an explicit list of just ratios
type RationalTemperament struct {
	TemperamentInfo
	ratios []RationalNumber
	cents  []float64
	names  []MusicalNote
}

// NewRationalTemperament takes Size()+1 ratios starting at 1 and ending at 2
func NewRationalTemperament(info TemperamentInfo, ratios []RationalNumber) (*RationalTemperament, error) {
	if len(ratios) < 2 {
		return nil, errors.Wrapf(ErrInvalidTemperament, "temperament %q needs at least two ratios", info.Key)
	}
	if ratios[0] != One || ratios[len(ratios)-1] != Int(2) {
		return nil, errors.Wrapf(ErrInvalidTemperament, "temperament %q must span 1 to 2, got %v to %v",
			info.Key, ratios[0], ratios[len(ratios)-1])
	}
	cents := make([]float64, len(ratios))
	for i, r := range ratios {
		if r.Sign() <= 0 {
			return nil, errors.Wrapf(ErrInvalidTemperament, "temperament %q has non-positive ratio %v", info.Key, r)
		}
		cents[i] = RatioToCents(r.Float64())
	}
	if err := validateCents(cents); err != nil {
		return nil, errors.Wrapf(err, "temperament %q", info.Key)
	}
	t := &RationalTemperament{
		TemperamentInfo: info,
		ratios:          append([]RationalNumber(nil), ratios...),
		cents:           cents,
		names:           edoNames(len(ratios) - 1),
	}
	return t, nil
}

func (t *RationalTemperament) Size() int        { return len(t.ratios) - 1 }
func (t *RationalTemperament) Cents() []float64 { return copyCents(t.cents) }

func (t *RationalTemperament) RationalNumbers() ([]RationalNumber, bool) {
	return append([]RationalNumber(nil), t.ratios...), true
}

func (t *RationalTemperament) ChainOfFifths() (*ChainOfFifths, bool) { return nil, false }
func (t *RationalTemperament) EqualDivision() (int, bool)            { return 0, false }

func (t *RationalTemperament) PossibleRootNotes() []MusicalNote {
	return append([]MusicalNote(nil), t.names...)
}

func (t *RationalTemperament) NoteNames(root *MusicalNote) (*NoteNameScale, error) {
	return namesFor(t.names, 0, root)
}

// CustomTemperament is a free-form table of cents with optional note names
type CustomTemperament struct {
	TemperamentInfo
	cents       []float64
	names       []MusicalNote
	switchIndex int
}

// NewCustomTemperament takes Size()+1 cent values ending at 1200. If names
// is nil, names of the EDO with the same size are used; otherwise names
// must hold Size() entries and switchIndex marks the octave switch
func NewCustomTemperament(info TemperamentInfo, cents []float64, names []MusicalNote, switchIndex int) (*CustomTemperament, error) {
	c := copyCents(cents)
	if err := validateCents(c); err != nil {
		return nil, errors.Wrapf(err, "temperament %q", info.Key)
	}
	size := len(c) - 1
	if names == nil {
		names = edoNames(size)
		switchIndex = 0
	}
	if len(names) != size {
		return nil, errors.Wrapf(ErrInvalidTemperament, "temperament %q has %d notes but %d names", info.Key, size, len(names))
	}
	if switchIndex < 0 || switchIndex >= size {
		return nil, errors.Wrapf(ErrInvalidTemperament, "temperament %q octave switch index %d out of range", info.Key, switchIndex)
	}
	return &CustomTemperament{
		TemperamentInfo: info,
		cents:           c,
		names:           append([]MusicalNote(nil), names...),
		switchIndex:     switchIndex,
	}, nil
}

func (t *CustomTemperament) Size() int                                 { return len(t.cents) - 1 }
func (t *CustomTemperament) Cents() []float64                          { return copyCents(t.cents) }
func (t *CustomTemperament) RationalNumbers() ([]RationalNumber, bool) { return nil, false }
func (t *CustomTemperament) ChainOfFifths() (*ChainOfFifths, bool)     { return nil, false }
func (t *CustomTemperament) EqualDivision() (int, bool)                { return 0, false }

func (t *CustomTemperament) PossibleRootNotes() []MusicalNote {
	return append([]MusicalNote(nil), t.names...)
}

func (t *CustomTemperament) NoteNames(root *MusicalNote) (*NoteNameScale, error) {
	return namesFor(t.names, t.switchIndex, root)
}
