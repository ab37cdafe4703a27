package tuner

import (
	"math"
	"slices"

	"github.com/pkg/errors"

	"github.com/RyanBlaney/sonido-tuner/music"
	"github.com/RyanBlaney/sonido-tuner/tuner/config"
)

// InstrumentString is one string of the configured instrument resolved
// against the scale
type InstrumentString struct {
	Note      music.MusicalNote `json:"note"`
	Degree    int               `json:"degree"`
	Frequency float64           `json:"frequency"`
}

// Snapshot is the immutable configuration of a tuning session. A change
// of settings builds a new snapshot which the evaluator picks up before
// the next frame
type Snapshot struct {
	config    config.Config
	scale     *music.MusicalScale
	strings   []InstrumentString
	onStrings map[int]struct{} // every degree any string spelling matches
}

// NewSnapshot validates cfg and builds its frequency table
func NewSnapshot(cfg *config.Config) (*Snapshot, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	scale, err := cfg.BuildScale()
	if err != nil {
		return nil, err
	}

	s := &Snapshot{
		config:    *cfg,
		scale:     scale,
		onStrings: make(map[int]struct{}),
	}
	s.config.Instrument.Strings = slices.Clone(cfg.Instrument.Strings)

	names := scale.NoteNames()
	for _, note := range cfg.Instrument.Strings {
		degree, ok := scale.NoteToIndex(note)
		if !ok {
			return nil, errors.Wrapf(config.ErrInvalidConfig, "string %s is not part of temperament %q", note, scale.Temperament().ID())
		}
		f, ok := scale.Frequency(degree)
		if !ok {
			return nil, errors.Wrapf(config.ErrInvalidConfig, "string %s lies outside the scale range", note)
		}
		s.strings = append(s.strings, InstrumentString{Note: note, Degree: degree, Frequency: f})
		for _, d := range names.MatchingIndices(note) {
			s.onStrings[d] = struct{}{}
		}
	}
	return s, nil
}

// Config returns a copy of the configuration the snapshot was built from
func (s *Snapshot) Config() config.Config {
	c := s.config
	c.Instrument.Strings = slices.Clone(s.config.Instrument.Strings)
	return c
}

// Detection returns the detection parameters
func (s *Snapshot) Detection() config.DetectionConfig {
	return s.config.Detection
}

// Scale returns the frequency table
func (s *Snapshot) Scale() *music.MusicalScale {
	return s.scale
}

// Strings returns the instrument strings, empty for chromatic tuning
func (s *Snapshot) Strings() []InstrumentString {
	return slices.Clone(s.strings)
}

// Target is the note a frequency is tuned against
type Target struct {
	Note      music.MusicalNote `json:"note"`
	Degree    int               `json:"degree"`
	Frequency float64           `json:"frequency"`
	Cents     float64           `json:"cents"`     // deviation of the input from Frequency
	OnString  bool              `json:"on_string"` // nearest chromatic degree is an instrument string
	State     TuningState       `json:"state"`
}

// Target selects the note to tune against. Chromatic sessions use the
// nearest scale degree, instrument sessions the nearest string
func (s *Snapshot) Target(frequency float64) (Target, bool) {
	if !(frequency > 0) || math.IsInf(frequency, 0) {
		return Target{}, false
	}
	nearest := s.scale.NearestIndex(frequency)
	degree := nearest
	if len(s.strings) > 0 {
		best := math.Inf(1)
		for _, str := range s.strings {
			if d := math.Abs(math.Log(frequency / str.Frequency)); d < best {
				best = d
				degree = str.Degree
			}
		}
	}

	f, ok := s.scale.Frequency(degree)
	if !ok {
		return Target{}, false
	}
	_, onString := s.onStrings[nearest]
	cents := s.scale.CentsDeviation(frequency, degree)
	return Target{
		Note:      s.scale.IndexToNote(degree),
		Degree:    degree,
		Frequency: f,
		Cents:     cents,
		OnString:  onString,
		State:     ClassifyTuning(cents, s.config.Detection.ToleranceCents),
	}, true
}
