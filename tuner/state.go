package tuner

import "math"

// TuningState classifies the deviation from the target note
type TuningState int

const (
	Unknown TuningState = iota
	InTune
	TooLow
	TooHigh
)

func (s TuningState) String() string {
	switch s {
	case InTune:
		return "in tune"
	case TooLow:
		return "too low"
	case TooHigh:
		return "too high"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s TuningState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ClassifyTuning maps a deviation in cents to a state using a symmetric
// tolerance band. The band edges count as in tune
func ClassifyTuning(cents, tolerance float64) TuningState {
	switch {
	case math.IsNaN(cents) || math.IsInf(cents, 0):
		return Unknown
	case math.Abs(cents) <= math.Abs(tolerance):
		return InTune
	case cents < 0:
		return TooLow
	default:
		return TooHigh
	}
}
