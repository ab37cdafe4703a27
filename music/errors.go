package music

import "errors"

// Configuration errors. Callers match them with errors.Is; the returned
// errors carry additional context
var (
	ErrZeroDenominator      = errors.New("zero denominator")
	ErrOverflow             = errors.New("rational number overflow")
	ErrInvalidTemperament   = errors.New("invalid temperament")
	ErrInvalidChain         = errors.New("invalid chain of fifths")
	ErrInvalidScale         = errors.New("invalid musical scale")
	ErrIterationLimit       = errors.New("frequency table iteration limit exceeded")
	ErrInvalidStretchTuning = errors.New("invalid stretch tuning")
	ErrInvalidNote          = errors.New("invalid note")
)

// NoteNotFound is returned as index by lookups that have no match
const NoteNotFound = -1 << 31
