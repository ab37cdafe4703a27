package music

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustNames(t *testing.T, tmp Temperament, root string) *NoteNameScale {
	t.Helper()
	var r *MusicalNote
	if root != "" {
		n := MustParseNote(root)
		r = &n
	}
	names, err := tmp.NoteNames(r)
	if err != nil {
		t.Fatal(err)
	}
	return names
}

func TestNoteNameScaleCBased(t *testing.T) {
	edo, _ := NewEDO(12)
	names := mustNames(t, edo, "")
	if ref := names.ReferenceNote(); ref.String() != "A4" {
		t.Fatalf("reference = %v, want A4", ref)
	}
	for _, tc := range []struct {
		note  string
		index int
	}{
		{"A4", 0},
		{"A#4", 1},
		{"Bb4", 1},
		{"B4", 2},
		{"C5", 3},
		{"C4", -9},
		{"G#4", -1},
		{"A3", -12},
		{"C0", -57},
	} {
		got, ok := names.NoteToIndex(MustParseNote(tc.note))
		if !ok || got != tc.index {
			t.Errorf("NoteToIndex(%s) = %d, %v; want %d", tc.note, got, ok, tc.index)
		}
		back := names.IndexToNote(tc.index)
		if _, ok := names.NoteToIndex(back); !ok || !back.MatchesIgnoringOctave(MustParseNote(tc.note)) {
			t.Errorf("IndexToNote(%d) = %v, want %s", tc.index, back, tc.note)
		}
	}
	if idx, ok := names.NoteToIndex(MustParseNote("C^4")); ok || idx != NoteNotFound || idx == 0 {
		t.Errorf("unknown note gave %d, %v", idx, ok)
	}
}

func TestNoteNameScaleABased(t *testing.T) {
	// the octave number increments at C, three entries into the list
	edo, _ := NewEDO(12)
	names := mustNames(t, edo, "A")
	if names.OctaveSwitchIndex() != 3 {
		t.Fatalf("OctaveSwitchIndex() = %d, want 3", names.OctaveSwitchIndex())
	}
	if first := names.Notes()[0].Name(); first != "A" {
		t.Fatalf("first note = %s", first)
	}
	for _, tc := range []struct {
		note  string
		index int
	}{
		{"A4", 0},
		{"B4", 2},
		{"C5", 3},
		{"G#4", -1},
		{"C4", -9},
		{"A5", 12},
		{"G#5", 11},
	} {
		got, ok := names.NoteToIndex(MustParseNote(tc.note))
		if !ok || got != tc.index {
			t.Errorf("NoteToIndex(%s) = %d, %v; want %d", tc.note, got, ok, tc.index)
		}
		if back := names.IndexToNote(tc.index); !back.Equal(MustParseNote(tc.note)) && !back.SwitchEnharmonic().Equal(MustParseNote(tc.note)) {
			t.Errorf("IndexToNote(%d) = %v, want %s", tc.index, back, tc.note)
		}
	}
}

func TestNoteNameScaleRoundTrip(t *testing.T) {
	for _, key := range []string{"edo12", "edo19", "edo24", "edo31", "edo53", "meantone_quarter_comma_extended"} {
		tmp, err := Predefined(key)
		if err != nil {
			t.Fatal(err)
		}
		for _, root := range tmp.PossibleRootNotes()[:3] {
			r := root
			names, err := tmp.NoteNames(&r)
			if err != nil {
				t.Fatalf("%s root %s: %v", key, root.Name(), err)
			}
			for local, n := range names.Notes() {
				for _, octave := range []int{1, 4, 7} {
					note := n.WithOctave(octave)
					idx, ok := names.NoteToIndex(note)
					if !ok {
						t.Fatalf("%s: NoteToIndex(%v) not found", key, note)
					}
					back := names.IndexToNote(idx)
					if !back.EqualIgnoringOctave(n) {
						t.Errorf("%s root %s: local %d %v -> %d -> %v", key, root.Name(), local, note, idx, back)
					}
					if back.Octave != octave {
						t.Errorf("%s root %s: %v came back in octave %d", key, root.Name(), note, back.Octave)
					}
				}
			}
		}
	}
}

func TestMatchingIndices(t *testing.T) {
	edo, _ := NewEDO(12)
	names := mustNames(t, edo, "")
	got := names.MatchingIndices(MustParseNote("Bb4"))
	if diff := cmp.Diff([]int{1}, got); diff != "" {
		t.Errorf("MatchingIndices(Bb4) mismatch (-want +got):\n%s", diff)
	}
	if got := names.MatchingIndices(MustParseNote("Dv4")); len(got) != 0 {
		t.Errorf("MatchingIndices(Dv4) = %v, want none", got)
	}
}

func TestNoteNameScaleEnharmonicOctave(t *testing.T) {
	notes := []MusicalNote{
		NewNote(C, Natural, 0).WithEnharmonic(B, Sharp, -1),
		NewNote(D, Natural, 0),
		NewNote(B, Natural, 0).WithEnharmonic(C, Flat, 1),
	}
	names, err := NewNoteNameScale(notes, 0, NewNote(C, Natural, 4))
	if err != nil {
		t.Fatal(err)
	}
	if idx, ok := names.NoteToIndex(MustParseNote("B#3")); !ok || idx != 0 {
		t.Errorf("B#3 -> %d, %v; want 0", idx, ok)
	}
	if idx, ok := names.NoteToIndex(MustParseNote("Cb5")); !ok || idx != 2 {
		t.Errorf("Cb5 -> %d, %v; want 2", idx, ok)
	}
}

func TestEDO19Names(t *testing.T) {
	tmp, _ := Predefined("edo19")
	names := tmp.PossibleRootNotes()
	if len(names) != 19 {
		t.Fatalf("%d names", len(names))
	}
	for _, tc := range []struct {
		index      int
		name       string
		enharmonic string
	}{
		{0, "C", ""},
		{1, "C#", ""},
		{2, "Db", ""},
		{3, "D", ""},
		{7, "E#", "Fb"},
		{8, "F", ""},
		{11, "G", ""},
	} {
		n := names[tc.index]
		if n.Name() != tc.name || n.EnharmonicName() != tc.enharmonic {
			t.Errorf("index %d = %s/%s, want %s/%s", tc.index, n.Name(), n.EnharmonicName(), tc.name, tc.enharmonic)
		}
	}
}
