package spectral

import "errors"

// ErrFrameTooShort is returned when a frame holds fewer samples than the
// analysis window
var ErrFrameTooShort = errors.New("frame shorter than window size")
