package music

import "github.com/pkg/errors"

// NoteNameScale names the notes of one octave and maps notes to the linear
// degree index used by MusicalScale, where index 0 is the reference note.
//
// The octave number of a note increments at OctaveSwitchIndex, which need
// not be the first entry: with an A based list ["A", "A#", "B", "C", ...]
// the switch is at index 3, so the octave goes up at C
type NoteNameScale struct {
	notes             []MusicalNote
	octaveSwitchIndex int
	defaultReference  MusicalNote

	reference         MusicalNote
	referenceLocal    int
	referenceAdjusted int
}

// NewNoteNameScale builds a name scale. The octave fields of notes are
// ignored. The default reference note becomes the active reference
func NewNoteNameScale(notes []MusicalNote, octaveSwitchIndex int, defaultReference MusicalNote) (*NoteNameScale, error) {
	if len(notes) == 0 {
		return nil, errors.Wrap(ErrInvalidNote, "note name scale is empty")
	}
	if octaveSwitchIndex < 0 || octaveSwitchIndex >= len(notes) {
		return nil, errors.Wrapf(ErrInvalidNote, "octave switch index %d outside [0, %d)", octaveSwitchIndex, len(notes))
	}
	s := &NoteNameScale{
		notes:             make([]MusicalNote, len(notes)),
		octaveSwitchIndex: octaveSwitchIndex,
	}
	for i, n := range notes {
		s.notes[i] = n.WithOctave(0)
	}
	if err := s.setReference(defaultReference); err != nil {
		return nil, err
	}
	s.defaultReference = s.reference
	return s, nil
}

// WithReference returns a copy of the scale that counts degrees from ref
func (s *NoteNameScale) WithReference(ref MusicalNote) (*NoteNameScale, error) {
	c := *s
	if err := c.setReference(ref); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *NoteNameScale) setReference(ref MusicalNote) error {
	local, octave, ok := s.localMatch(ref)
	if !ok {
		return errors.Wrapf(ErrInvalidNote, "reference note %v is not part of the scale", ref)
	}
	s.reference = s.notes[local].WithOctave(octave)
	s.referenceLocal = local
	s.referenceAdjusted = s.adjustedOctave(local, octave)
	return nil
}

// Size returns the number of notes per octave
func (s *NoteNameScale) Size() int { return len(s.notes) }

// Notes returns a copy of the per-octave note list
func (s *NoteNameScale) Notes() []MusicalNote {
	out := make([]MusicalNote, len(s.notes))
	copy(out, s.notes)
	return out
}

// OctaveSwitchIndex returns the local index at which the octave increments
func (s *NoteNameScale) OctaveSwitchIndex() int { return s.octaveSwitchIndex }

// ReferenceNote returns the note at degree 0
func (s *NoteNameScale) ReferenceNote() MusicalNote { return s.reference }

// DefaultReferenceNote returns the reference note suggested by the naming scheme
func (s *NoteNameScale) DefaultReferenceNote() MusicalNote { return s.defaultReference }

// adjustedOctave counts octaves from the first list entry instead of the
// switch note. Entries at or after the switch index already carry the
// incremented octave number, so one is subtracted there
func (s *NoteNameScale) adjustedOctave(local, octave int) int {
	if local >= s.octaveSwitchIndex && s.octaveSwitchIndex > 0 {
		return octave - 1
	}
	return octave
}

// localMatch finds the entry matching the primary or enharmonic spelling of
// note and returns the octave in terms of the entry's primary spelling
func (s *NoteNameScale) localMatch(note MusicalNote) (int, int, bool) {
	want := note.primary()
	for i, n := range s.notes {
		if n.primary() == want {
			return i, note.Octave, true
		}
	}
	for i, n := range s.notes {
		if e, ok := n.enharmonic(); ok && e == want {
			return i, note.Octave - n.EnharmonicOctaveOffset, true
		}
	}
	return NoteNotFound, 0, false
}

// LocalIndex returns the position of note within one octave, ignoring its
// octave and matching either spelling
func (s *NoteNameScale) LocalIndex(note MusicalNote) (int, bool) {
	i, _, ok := s.localMatch(note)
	return i, ok
}

func (s *NoteNameScale) linearIndex(local, octave int) int {
	return (s.adjustedOctave(local, octave)-s.referenceAdjusted)*len(s.notes) + local - s.referenceLocal
}

// NoteToIndex returns the degree of note relative to the reference note.
// If the note is not part of the scale it returns NoteNotFound and false
func (s *NoteNameScale) NoteToIndex(note MusicalNote) (int, bool) {
	local, octave, ok := s.localMatch(note)
	if !ok {
		return NoteNotFound, false
	}
	return s.linearIndex(local, octave), true
}

// IndexToNote returns the note at the given degree
func (s *NoteNameScale) IndexToNote(index int) MusicalNote {
	n := len(s.notes)
	pos := s.referenceLocal + index
	local := floorMod(pos, n)
	octave := s.referenceAdjusted + floorDiv(pos, n)
	if local >= s.octaveSwitchIndex && s.octaveSwitchIndex > 0 {
		octave++
	}
	return s.notes[local].WithOctave(octave)
}

// MatchingIndices returns the degrees of all entries matching note while
// ignoring both the octave distinction between spellings and the choice of
// enharmonic. It is used to check whether a detected note belongs to a set
// of instrument strings regardless of how the strings are spelled
func (s *NoteNameScale) MatchingIndices(note MusicalNote) []int {
	var out []int
	for i, n := range s.notes {
		if !n.MatchesIgnoringOctave(note) {
			continue
		}
		octave := note.Octave
		if n.primary() != note.primary() && n.HasEnharmonic {
			if e, _ := n.enharmonic(); e == note.primary() {
				octave -= n.EnharmonicOctaveOffset
			}
		}
		out = append(out, s.linearIndex(i, octave))
	}
	return out
}
