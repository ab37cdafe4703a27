package common

import "math"

// parabolaEpsilon is the smallest curvature treated as a real peak
const parabolaEpsilon = 1e-10

// ParabolicPeak fits a parabola through three equally spaced samples
// centred on y1 and returns the vertex offset from the centre (in samples,
// within [-1, 1] for a true local extremum) and the interpolated value.
// Flat or degenerate triples return offset 0 and y1
func ParabolicPeak(y0, y1, y2 float64) (offset, value float64) {
	denom := 2 * (2*y1 - y0 - y2)
	if math.Abs(denom) < parabolaEpsilon {
		return 0, y1
	}
	offset = (y2 - y0) / denom
	if math.IsNaN(offset) || math.Abs(offset) > 1 {
		return 0, y1
	}

	a := 0.5 * (y0 - 2*y1 + y2)
	b := 0.5 * (y2 - y0)
	return offset, y1 + a*offset*offset + b*offset
}

// RefinePeak refines the maximum of data at index i. Indices at the edges
// are returned unchanged
func RefinePeak(data []float64, i int) (position, value float64) {
	if i <= 0 || i >= len(data)-1 {
		if i >= 0 && i < len(data) {
			return float64(i), data[i]
		}
		return float64(i), 0
	}
	offset, value := ParabolicPeak(data[i-1], data[i], data[i+1])
	return float64(i) + offset, value
}
