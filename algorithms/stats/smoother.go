package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
)

// OutlierRemovingSmoother is a moving average over the most recent values
// that ignores values deviating from the window median by more than a
// relative tolerance.
//
// Consecutive outliers and skipped frames count as faulty. Once more than
// maxFaulty faulty values arrive in a row, the history is dropped: an outlier
// then starts a new history, a skip leaves the smoother empty
type OutlierRemovingSmoother struct {
	size      int
	tolerance float64
	maxFaulty int

	values  []float64 // ring of the most recent accepted values
	next    int
	faulty  int
	value   float64
	resets  int
	scratch []float64
}

// NewOutlierRemovingSmoother creates a smoother averaging up to size values.
// tolerance is relative to the median, e.g. 0.05 for 5%
func NewOutlierRemovingSmoother(size int, tolerance float64, maxFaulty int) *OutlierRemovingSmoother {
	size = max(size, 1)
	return &OutlierRemovingSmoother{
		size:      size,
		tolerance: math.Abs(tolerance),
		maxFaulty: max(maxFaulty, 0),
		values:    make([]float64, 0, size),
		scratch:   make([]float64, 0, size),
	}
}

// Add feeds a value and returns the smoothed value and whether the input was
// treated as an outlier. An outlier leaves the smoothed value unchanged
func (s *OutlierRemovingSmoother) Add(v float64) (smoothed float64, outlier bool) {
	if len(s.values) == 0 {
		s.push(v)
		s.faulty = 0
		s.value = v
		return s.value, false
	}

	median := common.Median(s.values)
	if !s.within(v, median) {
		s.faulty++
		if s.faulty <= s.maxFaulty {
			return s.value, true
		}
		s.clear()
		s.resets++
		s.push(v)
		s.value = v
		return s.value, false
	}

	s.faulty = 0
	s.push(v)
	s.value = s.trimmedMean()
	return s.value, false
}

// Skip records a frame without a usable value. It reports whether the
// history was dropped
func (s *OutlierRemovingSmoother) Skip() (reset bool) {
	if len(s.values) == 0 {
		return false
	}
	s.faulty++
	if s.faulty <= s.maxFaulty {
		return false
	}
	s.clear()
	s.resets++
	return true
}

// Value returns the current smoothed value, false when the history is empty
func (s *OutlierRemovingSmoother) Value() (float64, bool) {
	if len(s.values) == 0 {
		return 0, false
	}
	return s.value, true
}

// Len returns the number of values in the history
func (s *OutlierRemovingSmoother) Len() int {
	return len(s.values)
}

// Faulty returns the number of consecutive faulty values
func (s *OutlierRemovingSmoother) Faulty() int {
	return s.faulty
}

// Resets returns how often the history was dropped since creation
func (s *OutlierRemovingSmoother) Resets() int {
	return s.resets
}

// Reset empties the smoother
func (s *OutlierRemovingSmoother) Reset() {
	s.clear()
}

func (s *OutlierRemovingSmoother) clear() {
	s.values = s.values[:0]
	s.next = 0
	s.faulty = 0
	s.value = 0
}

func (s *OutlierRemovingSmoother) push(v float64) {
	if len(s.values) < s.size {
		s.values = append(s.values, v)
		return
	}
	s.values[s.next] = v
	s.next = (s.next + 1) % s.size
}

func (s *OutlierRemovingSmoother) within(v, median float64) bool {
	if median == 0 {
		return v == 0
	}
	return math.Abs(v-median) <= s.tolerance*math.Abs(median)
}

// trimmedMean averages the history values close to its median
func (s *OutlierRemovingSmoother) trimmedMean() float64 {
	median := common.Median(s.values)
	s.scratch = s.scratch[:0]
	for _, v := range s.values {
		if s.within(v, median) {
			s.scratch = append(s.scratch, v)
		}
	}
	if len(s.scratch) == 0 {
		return median
	}
	return stat.Mean(s.scratch, nil)
}
