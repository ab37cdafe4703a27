package music

import "math"

// CentsPerOctave is the size of an octave in cents
const CentsPerOctave = 1200.0

// RatioToCents converts a frequency ratio into cents
func RatioToCents(ratio float64) float64 {
	return CentsPerOctave * math.Log2(ratio)
}

// CentsToRatio converts cents into a frequency ratio
func CentsToRatio(cents float64) float64 {
	return math.Exp2(cents / CentsPerOctave)
}

// floorDiv and floorMod round towards negative infinity, so that degree -1
// maps to the last note of the previous octave
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
