package config

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/RyanBlaney/sonido-tuner/music"
)

func (t TemperamentConfig) info(fallbackKey string) music.TemperamentInfo {
	info := music.TemperamentInfo{
		Key:    fallbackKey,
		Title:  t.Name,
		Abbrev: t.Abbreviation,
		About:  t.Description,
	}
	if info.Title == "" {
		info.Title = fallbackKey
	}
	return info
}

// Build constructs the configured temperament
func (t TemperamentConfig) Build() (music.Temperament, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	switch t.Kind {
	case KindPredefined:
		return music.Predefined(t.Key)
	case KindEDO:
		return nonNil(music.NewEDO(t.Divisions))
	case KindChain:
		chain, err := music.NewChainOfFifths(t.Fifths, t.RootIndex)
		if err != nil {
			return nil, err
		}
		return nonNil(music.NewChainTemperament(t.info("chain"+strconv.Itoa(chain.NumNotes())), chain, t.ExtendedNaming))
	case KindRational:
		return nonNil(music.NewRationalTemperament(t.info("rational"+strconv.Itoa(len(t.Ratios)-1)), t.Ratios))
	default:
		return nonNil(music.NewCustomTemperament(t.info("custom"+strconv.Itoa(len(t.Cents)-1)), t.Cents, t.NoteNames, t.OctaveSwitchIndex))
	}
}

// nonNil keeps a failed constructor from producing a non-nil interface
// holding a nil pointer
func nonNil[T music.Temperament](t T, err error) (music.Temperament, error) {
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Build constructs the stretch curve; a nil config yields no stretch
func (s *StretchConfig) Build() (*music.StretchTuning, error) {
	if s == nil || len(s.UnstretchedFrequencies) == 0 {
		return nil, nil
	}
	return music.NewStretchTuning(s.UnstretchedFrequencies, s.StretchInCents)
}

// Params resolves the scale section into parameters for music.NewMusicalScale
func (s ScaleConfig) Params() (music.ScaleParams, error) {
	t, err := s.Temperament.Build()
	if err != nil {
		return music.ScaleParams{}, errors.WithMessage(err, "temperament")
	}
	stretch, err := s.Stretch.Build()
	if err != nil {
		return music.ScaleParams{}, errors.WithMessage(err, "stretch tuning")
	}
	return music.ScaleParams{
		Temperament:        t,
		RootNote:           s.RootNote,
		ReferenceNote:      s.ReferenceNote,
		ReferenceFrequency: s.ReferenceFrequency,
		MinFrequency:       s.MinFrequency,
		MaxFrequency:       s.MaxFrequency,
		Stretch:            stretch,
	}, nil
}

// BuildScale validates the configuration and builds the frequency table
func (c *Config) BuildScale() (*music.MusicalScale, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	params, err := c.Scale.Params()
	if err != nil {
		return nil, err
	}
	return music.NewMusicalScale(params)
}
