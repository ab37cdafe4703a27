package music

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// BaseNote is one of the seven natural note letters
type BaseNote uint8

const (
	C BaseNote = iota
	D
	E
	F
	G
	A
	B
)

var baseNoteLetters = [...]string{"C", "D", "E", "F", "G", "A", "B"}

// semitones of each natural above C in 12-EDO
var baseNoteSemitones = [...]int{0, 2, 4, 5, 7, 9, 11}

// position of each natural on the line of fifths, C = 0
var baseNoteFifths = [...]int{0, 2, 4, -1, 1, 3, 5}

func (b BaseNote) String() string {
	if int(b) < len(baseNoteLetters) {
		return baseNoteLetters[b]
	}
	return "?"
}

// NoteModifier holds the accidentals of a note: sharps (negative for flats)
// and arrows (ups and downs by one EDO step, negative for downs)
type NoteModifier struct {
	Sharps int8 `json:"sharps,omitempty"`
	Arrows int8 `json:"arrows,omitempty"`
}

// Common modifiers
var (
	Natural     = NoteModifier{}
	Sharp       = NoteModifier{Sharps: 1}
	Flat        = NoteModifier{Sharps: -1}
	DoubleSharp = NoteModifier{Sharps: 2}
	DoubleFlat  = NoteModifier{Sharps: -2}
	Up          = NoteModifier{Arrows: 1}
	Down        = NoteModifier{Arrows: -1}
)

func (m NoteModifier) String() string {
	var sb strings.Builder
	for i := int8(0); i < m.Sharps; i++ {
		sb.WriteByte('#')
	}
	for i := m.Sharps; i < 0; i++ {
		sb.WriteByte('b')
	}
	for i := int8(0); i < m.Arrows; i++ {
		sb.WriteByte('^')
	}
	for i := m.Arrows; i < 0; i++ {
		sb.WriteByte('v')
	}
	return sb.String()
}

// MusicalNote is a spelled note with an octave and an optional enharmonic
// spelling. EnharmonicOctaveOffset is added to Octave to obtain the octave
// of the enharmonic spelling, e.g. B4 has the enharmonic Cb5 (offset 1)
type MusicalNote struct {
	Base     BaseNote     `json:"base"`
	Modifier NoteModifier `json:"modifier"`
	Octave   int          `json:"octave"`

	HasEnharmonic          bool         `json:"has_enharmonic,omitempty"`
	EnharmonicBase         BaseNote     `json:"enharmonic_base,omitempty"`
	EnharmonicModifier     NoteModifier `json:"enharmonic_modifier,omitempty"`
	EnharmonicOctaveOffset int          `json:"enharmonic_octave_offset,omitempty"`
}

// NewNote creates a note without enharmonic spelling
func NewNote(base BaseNote, modifier NoteModifier, octave int) MusicalNote {
	return MusicalNote{Base: base, Modifier: modifier, Octave: octave}
}

// WithEnharmonic returns a copy of n with the given enharmonic spelling
func (n MusicalNote) WithEnharmonic(base BaseNote, modifier NoteModifier, octaveOffset int) MusicalNote {
	n.HasEnharmonic = true
	n.EnharmonicBase = base
	n.EnharmonicModifier = modifier
	n.EnharmonicOctaveOffset = octaveOffset
	return n
}

// WithOctave returns a copy of n in another octave
func (n MusicalNote) WithOctave(octave int) MusicalNote {
	n.Octave = octave
	return n
}

// SwitchEnharmonic returns the note spelled with its enharmonic as primary.
// Notes without enharmonic are returned unchanged
func (n MusicalNote) SwitchEnharmonic() MusicalNote {
	if !n.HasEnharmonic {
		return n
	}
	return MusicalNote{
		Base:                   n.EnharmonicBase,
		Modifier:               n.EnharmonicModifier,
		Octave:                 n.Octave + n.EnharmonicOctaveOffset,
		HasEnharmonic:          true,
		EnharmonicBase:         n.Base,
		EnharmonicModifier:     n.Modifier,
		EnharmonicOctaveOffset: -n.EnharmonicOctaveOffset,
	}
}

// spelling is the octave independent part of a note name
type spelling struct {
	base     BaseNote
	modifier NoteModifier
}

func (n MusicalNote) primary() spelling {
	return spelling{n.Base, n.Modifier}
}

func (n MusicalNote) enharmonic() (spelling, bool) {
	return spelling{n.EnharmonicBase, n.EnharmonicModifier}, n.HasEnharmonic
}

// Equal reports whether both notes have the same primary spelling and
// octave; enharmonic data is ignored
func (n MusicalNote) Equal(o MusicalNote) bool {
	return n.primary() == o.primary() && n.Octave == o.Octave
}

// EqualIgnoringOctave reports whether the primary spellings coincide
func (n MusicalNote) EqualIgnoringOctave(o MusicalNote) bool {
	return n.primary() == o.primary()
}

// MatchesIgnoringOctave reports whether any spelling of n equals any
// spelling of o
func (n MusicalNote) MatchesIgnoringOctave(o MusicalNote) bool {
	ne, nok := n.enharmonic()
	oe, ook := o.enharmonic()
	switch {
	case n.primary() == o.primary():
		return true
	case ook && n.primary() == oe:
		return true
	case nok && ne == o.primary():
		return true
	case nok && ook && ne == oe:
		return true
	}
	return false
}

// Name formats the note without octave, e.g. "C#"
func (n MusicalNote) Name() string {
	return n.Base.String() + n.Modifier.String()
}

// EnharmonicName formats the enharmonic spelling without octave, or "" if
// there is none
func (n MusicalNote) EnharmonicName() string {
	if !n.HasEnharmonic {
		return ""
	}
	return n.EnharmonicBase.String() + n.EnharmonicModifier.String()
}

// String formats the note with octave, e.g. "C#4"
func (n MusicalNote) String() string {
	return n.Name() + strconv.Itoa(n.Octave)
}

// MarshalText implements encoding.TextMarshaler with the primary spelling
func (n MusicalNote) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (n *MusicalNote) UnmarshalText(text []byte) error {
	v, err := ParseNote(string(text))
	if err != nil {
		return err
	}
	*n = v
	return nil
}

// ParseNote parses names like "A4", "C#3", "Bb2", "Ebv5" or "F#^-1".
// The octave is optional and defaults to 4. Unicode sharp and flat signs
// are accepted
func ParseNote(s string) (MusicalNote, error) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("♯", "#", "♭", "b", "↑", "^", "↓", "v").Replace(s)
	if s == "" {
		return MusicalNote{}, errors.Wrap(ErrInvalidNote, "empty note name")
	}

	var base BaseNote
	switch strings.ToUpper(s[:1]) {
	case "C":
		base = C
	case "D":
		base = D
	case "E":
		base = E
	case "F":
		base = F
	case "G":
		base = G
	case "A":
		base = A
	case "B":
		base = B
	default:
		return MusicalNote{}, errors.Wrapf(ErrInvalidNote, "unknown note letter in %q", s)
	}

	var mod NoteModifier
	i := 1
loop:
	for ; i < len(s); i++ {
		switch s[i] {
		case '#':
			mod.Sharps++
		case 'b':
			mod.Sharps--
		case 'x':
			mod.Sharps += 2
		case '^':
			mod.Arrows++
		case 'v':
			mod.Arrows--
		default:
			break loop
		}
	}

	octave := 4
	if rest := s[i:]; rest != "" {
		o, err := strconv.Atoi(rest)
		if err != nil {
			return MusicalNote{}, errors.Wrapf(ErrInvalidNote, "bad octave in %q", s)
		}
		octave = o
	}
	return NewNote(base, mod, octave), nil
}

// MustParseNote is like ParseNote but panics on error
func MustParseNote(s string) MusicalNote {
	n, err := ParseNote(s)
	if err != nil {
		panic(err)
	}
	return n
}
