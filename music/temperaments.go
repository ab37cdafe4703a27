package music

import (
	"strconv"

	"github.com/pkg/errors"
)

func syntonic(n, d int64) FifthModification {
	return FifthModification{Syntonic: MustRational(n, d)}
}

func pythagorean(n, d int64) FifthModification {
	return FifthModification{Pythagorean: MustRational(n, d)}
}

func pureFifths(n int) []FifthModification {
	return make([]FifthModification, n)
}

func repeatFifth(m FifthModification, n int) []FifthModification {
	out := make([]FifthModification, n)
	for i := range out {
		out[i] = m
	}
	return out
}

type predefined struct {
	key   string
	build func() (Temperament, error)
}

func chainEntry(key, name, abbrev, about string, fifths []FifthModification, rootIndex int, extended bool) predefined {
	return predefined{key, func() (Temperament, error) {
		chain, err := NewChainOfFifths(fifths, rootIndex)
		if err != nil {
			return nil, err
		}
		return NewChainTemperament(TemperamentInfo{key, name, abbrev, about}, chain, extended)
	}}
}

func edoEntry(n int) predefined {
	return predefined{"edo" + strconv.Itoa(n), func() (Temperament, error) {
		t, err := NewEDO(n)
		if err != nil {
			return nil, err
		}
		t.Key = "edo" + strconv.Itoa(n)
		return t, nil
	}}
}

var predefinedTemperaments = []predefined{
	edoEntry(12),
	edoEntry(17),
	edoEntry(19),
	edoEntry(22),
	edoEntry(24),
	edoEntry(31),
	edoEntry(41),
	edoEntry(53),
	// Eb Bb F C G D A E B F# C# G#
	chainEntry("pythagorean", "Pythagorean tuning", "Pyth",
		"Pure fifths, the wolf fifth between G# and Eb",
		pureFifths(11), 3, false),
	chainEntry("meantone_quarter_comma", "Quarter-comma meantone", "1/4 MT",
		"All fifths narrowed by a quarter syntonic comma",
		repeatFifth(syntonic(-1, 4), 11), 3, false),
	// Gb Db Ab Eb Bb F C G D A E B F# C# G# D# A#
	chainEntry("meantone_quarter_comma_extended", "Extended quarter-comma meantone", "1/4 MT17",
		"Seventeen notes per octave with distinct sharps and flats",
		repeatFifth(syntonic(-1, 4), 16), 6, true),
	// C G D A E B F# C# G# D# A# F
	chainEntry("werckmeister3", "Werckmeister III", "W III",
		"C-G, G-D, D-A and B-F# narrowed by a quarter Pythagorean comma",
		[]FifthModification{
			pythagorean(-1, 4), pythagorean(-1, 4), pythagorean(-1, 4), {}, {},
			pythagorean(-1, 4), {}, {}, {}, {}, {},
		}, 0, false),
	// Db Ab Eb Bb F C G D A E B F#
	chainEntry("kirnberger3", "Kirnberger III", "K III",
		"C-G to A-E narrowed by a quarter syntonic comma, F#-Db by a schisma",
		[]FifthModification{
			{}, {}, {}, {}, {},
			syntonic(-1, 4), syntonic(-1, 4), syntonic(-1, 4), syntonic(-1, 4),
			{}, {},
		}, 5, false),
	// F C G D A E B F# C# G# D# A#
	chainEntry("vallotti", "Vallotti", "Val",
		"F-C to E-B narrowed by a sixth Pythagorean comma",
		append(repeatFifth(pythagorean(-1, 6), 6), pureFifths(5)...), 1, false),
	// C G D A E B F# C# G# D# A# F
	chainEntry("young2", "Young II", "Y II",
		"C-G to E-B and F-C narrowed by a sixth Pythagorean comma",
		append(repeatFifth(pythagorean(-1, 6), 5), pureFifths(6)...), 0, false),
	{"just_5limit", func() (Temperament, error) {
		ratios := []RationalNumber{
			One, MustRational(16, 15), MustRational(9, 8), MustRational(6, 5),
			MustRational(5, 4), MustRational(4, 3), MustRational(45, 32), MustRational(3, 2),
			MustRational(8, 5), MustRational(5, 3), MustRational(9, 5), MustRational(15, 8), Int(2),
		}
		return NewRationalTemperament(TemperamentInfo{
			Key:    "just_5limit",
			Title:  "5-limit just intonation",
			Abbrev: "JI",
			About:  "Pure thirds and fifths relative to the root",
		}, ratios)
	}},
}

// PredefinedKeys lists the keys accepted by Predefined
func PredefinedKeys() []string {
	keys := make([]string, len(predefinedTemperaments))
	for i, p := range predefinedTemperaments {
		keys[i] = p.key
	}
	return keys
}

// Predefined returns a built-in temperament by key, e.g. "edo12" or
// "werckmeister3"
func Predefined(key string) (Temperament, error) {
	for _, p := range predefinedTemperaments {
		if p.key == key {
			return p.build()
		}
	}
	return nil, errors.Wrapf(ErrInvalidTemperament, "unknown temperament %q", key)
}
