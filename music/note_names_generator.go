package music

import (
	"math"

	"github.com/pkg/errors"
)

// standardNames returns the twelve tone names with sharps as primary and
// flats as enharmonic spelling
func standardNames() []MusicalNote {
	return []MusicalNote{
		NewNote(C, Natural, 0),
		NewNote(C, Sharp, 0).WithEnharmonic(D, Flat, 0),
		NewNote(D, Natural, 0),
		NewNote(D, Sharp, 0).WithEnharmonic(E, Flat, 0),
		NewNote(E, Natural, 0),
		NewNote(F, Natural, 0),
		NewNote(F, Sharp, 0).WithEnharmonic(G, Flat, 0),
		NewNote(G, Natural, 0),
		NewNote(G, Sharp, 0).WithEnharmonic(A, Flat, 0),
		NewNote(A, Natural, 0),
		NewNote(A, Sharp, 0).WithEnharmonic(B, Flat, 0),
		NewNote(B, Natural, 0),
	}
}

type edoCandidate struct {
	spelling
	octaveOffset int
	cost         float64
}

// edoNames names the steps of an n-EDO in ups and downs notation, starting
// at C. Naturals are placed by the best fifth of the EDO, sharps raise by
// 7*fifth - 4*n steps and arrows cover the remaining steps
func edoNames(n int) []MusicalNote {
	if n == 12 {
		return standardNames()
	}
	fifth := int(math.Round(float64(n) * math.Log2(PureFifth)))
	sharp := 7*fifth - 4*n
	var naturals [7]int
	for b := range naturals {
		naturals[b] = baseNoteFifths[b]*fifth - floorDiv(baseNoteFifths[b]*fifth, n)*n
	}
	names := make([]MusicalNote, n)
	for k := 0; k < n; k++ {
		var cands []edoCandidate
		for maxArrows := 3; len(cands) == 0 && maxArrows <= n+3; maxArrows++ {
			cands = edoCandidates(k, n, naturals, sharp, maxArrows)
		}
		best := cands[0]
		for _, c := range cands[1:] {
			if c.cost < best.cost {
				best = c
			}
		}
		note := NewNote(best.base, best.modifier, 0)

		// enharmonic: prefer flats on a different letter
		var alt *edoCandidate
		for i := range cands {
			c := &cands[i]
			if c.base == best.base || c.modifier.Sharps > 0 || c.modifier.Sharps < -1 {
				continue
			}
			if best.modifier == Natural && c.modifier != Natural {
				continue
			}
			if alt == nil || c.cost < alt.cost {
				alt = c
			}
		}
		if alt != nil && alt.cost < best.cost+5 {
			note = note.WithEnharmonic(alt.base, alt.modifier, alt.octaveOffset-best.octaveOffset)
		}
		names[k] = note
	}
	return names
}

func edoCandidates(k, n int, naturals [7]int, sharp, maxArrows int) []edoCandidate {
	maxSharps := 2
	if sharp <= 0 {
		maxSharps = 0
	}
	var out []edoCandidate
	for b, pos := range naturals {
		for q := -maxSharps; q <= maxSharps; q++ {
			for a := -maxArrows; a <= maxArrows; a++ {
				r := pos + q*sharp + a
				if floorMod(r, n) != k {
					continue
				}
				offset := (k - r) / n
				if offset < -1 || offset > 1 {
					continue
				}
				cost := 10*math.Abs(float64(a)) + 3*math.Abs(float64(q))
				if offset != 0 {
					cost += 20
				}
				if q < 0 {
					cost++
				}
				if a < 0 {
					cost += 0.5
				}
				out = append(out, edoCandidate{
					spelling:     spelling{BaseNote(b), NoteModifier{Sharps: int8(q), Arrows: int8(a)}},
					octaveOffset: offset,
					cost:         cost,
				})
			}
		}
	}
	return out
}

// lineOfFifthsNote names the note lof fifths above C, e.g. -1 is F and 7 is C#
func lineOfFifthsNote(lof int) MusicalNote {
	idx := floorMod(lof+1, 7) // F C G D A E B
	sharps := floorDiv(lof+1, 7)
	order := [...]BaseNote{F, C, G, D, A, E, B}
	return NewNote(order[idx], NoteModifier{Sharps: int8(sharps)}, 0)
}

// lineOfFifthsPosition is the inverse of lineOfFifthsNote; arrows are ignored
func lineOfFifthsPosition(n MusicalNote) int {
	return baseNoteFifths[n.Base] + 7*int(n.Modifier.Sharps)
}

// rotateNames rotates a C based list so that root becomes the first entry
func rotateNames(notes []MusicalNote, switchIndex int, root MusicalNote) ([]MusicalNote, int, error) {
	rootIdx := -1
	for i, n := range notes {
		if n.MatchesIgnoringOctave(root) {
			rootIdx = i
			break
		}
	}
	if rootIdx < 0 {
		return nil, 0, errors.Wrapf(ErrInvalidNote, "root note %s is not part of the note names", root.Name())
	}
	size := len(notes)
	out := make([]MusicalNote, size)
	for i := range out {
		n := notes[(rootIdx+i)%size]
		// a root given in its enharmonic spelling keeps that spelling
		if i == 0 && n.primary() != root.primary() {
			n = n.SwitchEnharmonic()
		}
		out[i] = n
	}
	return out, floorMod(switchIndex-rootIdx, size), nil
}

// letterWrapIndex returns the first index at which the note letters wrap
// from B back towards C, or 0 if they never do
func letterWrapIndex(notes []MusicalNote) int {
	for i := 1; i < len(notes); i++ {
		if notes[i].Base < notes[i-1].Base {
			return i
		}
	}
	return 0
}

// defaultReferenceFor picks A4 if the names contain an A. Otherwise it
// takes the spelling closest to A in 12-EDO semitones, preferring fewer
// accidentals and then list order, e.g. G##4 in line-of-fifths names that
// have no A natural. The octave is chosen so the note sounds nearest to A4
func defaultReferenceFor(notes []MusicalNote) MusicalNote {
	a4 := NewNote(A, Natural, 4)
	for _, n := range notes {
		if n.MatchesIgnoringOctave(a4) {
			return a4
		}
	}

	const target = 4*12 + 9 // A4 in semitones above C0
	best, bestDist, bestAccidentals := 0, math.MaxInt, math.MaxInt
	for i, n := range notes {
		pc := baseNoteSemitones[n.Base] + int(n.Modifier.Sharps)
		dist := floorMod(target-pc, 12)
		dist = min(dist, 12-dist)
		accidentals := abs(int(n.Modifier.Sharps)) + abs(int(n.Modifier.Arrows))
		if dist < bestDist || (dist == bestDist && accidentals < bestAccidentals) {
			best, bestDist, bestAccidentals = i, dist, accidentals
		}
	}
	n := notes[best]
	pc := baseNoteSemitones[n.Base] + int(n.Modifier.Sharps)
	octave := int(math.Round(float64(target-pc) / 12))
	return n.WithOctave(octave)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func buildNameScale(notes []MusicalNote, switchIndex int) (*NoteNameScale, error) {
	return NewNoteNameScale(notes, switchIndex, defaultReferenceFor(notes))
}
