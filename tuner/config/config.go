package config

import (
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"

	"github.com/RyanBlaney/sonido-tuner/algorithms/windowing"
	"github.com/RyanBlaney/sonido-tuner/music"
)

// ErrInvalidConfig is returned for configurations that cannot start a
// tuning session
var ErrInvalidConfig = errors.New("invalid tuner configuration")

// Config holds everything a tuning session needs
type Config struct {
	Scale      ScaleConfig      `json:"scale"`
	Detection  DetectionConfig  `json:"detection"`
	Instrument InstrumentConfig `json:"instrument"`
}

// ScaleConfig selects the temperament and where it sits in frequency
type ScaleConfig struct {
	Temperament        TemperamentConfig  `json:"temperament"`
	RootNote           *music.MusicalNote `json:"root_note,omitempty"`      // nil: first possible root
	ReferenceNote      *music.MusicalNote `json:"reference_note,omitempty"` // nil: naming default (A4)
	ReferenceFrequency float64            `json:"reference_frequency"`
	MinFrequency       float64            `json:"min_frequency"` // audible range of the frequency table
	MaxFrequency       float64            `json:"max_frequency"`
	Stretch            *StretchConfig     `json:"stretch,omitempty"`
}

// TemperamentKind selects how a TemperamentConfig is interpreted
type TemperamentKind string

const (
	KindPredefined TemperamentKind = "predefined"
	KindEDO        TemperamentKind = "edo"
	KindChain      TemperamentKind = "chain"
	KindRational   TemperamentKind = "rational"
	KindCents      TemperamentKind = "cents"
)

// TemperamentConfig describes a temperament by already parsed numbers
type TemperamentConfig struct {
	Kind TemperamentKind `json:"kind"`

	// predefined
	Key string `json:"key,omitempty"`

	// edo
	Divisions int `json:"divisions,omitempty"`

	// chain
	Fifths         []music.FifthModification `json:"fifths,omitempty"`
	RootIndex      int                       `json:"root_index,omitempty"`
	ExtendedNaming bool                      `json:"extended_naming,omitempty"`

	// rational
	Ratios []music.RationalNumber `json:"ratios,omitempty"` // including 1/1 and 2/1

	// cents
	Cents             []float64           `json:"cents,omitempty"`      // including 0 and 1200
	NoteNames         []music.MusicalNote `json:"note_names,omitempty"` // optional, one per step
	OctaveSwitchIndex int                 `json:"octave_switch_index,omitempty"`

	// Name, Abbreviation and Description label non-predefined temperaments
	Name         string `json:"name,omitempty"`
	Abbreviation string `json:"abbreviation,omitempty"`
	Description  string `json:"description,omitempty"`
}

// StretchConfig is a stretch-tuning curve as parallel arrays
type StretchConfig struct {
	Name                   string    `json:"name,omitempty"`
	UnstretchedFrequencies []float64 `json:"unstretched_frequencies"`
	StretchInCents         []float64 `json:"stretch_in_cents"`
}

// DetectionConfig controls the per-frame pitch detection
type DetectionConfig struct {
	WindowSize int            `json:"window_size"` // samples per analysis window
	HopSize    int            `json:"hop_size"`    // samples between windows, 0 = window size
	Window     windowing.Type `json:"window"`
	DCCutoff   float64        `json:"dc_cutoff"` // DC-removal corner in Hz, 0 disables

	MinFrequency float64 `json:"min_frequency"` // detectable range in Hz
	MaxFrequency float64 `json:"max_frequency"`

	MaxHarmonics      int     `json:"max_harmonics"`
	HarmonicTolerance float64 `json:"harmonic_tolerance"` // fraction of the fundamental

	MaxNoise          float64 `json:"max_noise"`           // 0-1, frames above are dropped
	MinHarmonicEnergy float64 `json:"min_harmonic_energy"` // 0-1, frames below are dropped
	Sensitivity       float64 `json:"sensitivity"`         // 0-100, higher accepts quieter input

	SmoothingWindow  int     `json:"smoothing_window"`  // values in the moving average
	MaxFaultyValues  int     `json:"max_faulty_values"` // consecutive faults before the history resets
	OutlierTolerance float64 `json:"outlier_tolerance"` // relative to the median

	OctaveJumpThreshold float64 `json:"octave_jump_threshold"` // keep the previous lag if its peak reaches this share of the maximum
	ToleranceCents      float64 `json:"tolerance_cents"`       // in-tune band around the target

	PoolSize  int `json:"pool_size"`  // idle buffers kept per size
	QueueSize int `json:"queue_size"` // frames buffered between source and evaluator
}

// InstrumentConfig lists the strings of an instrument. Without strings the
// tuner targets the nearest chromatic degree
type InstrumentConfig struct {
	Name    string              `json:"name,omitempty"`
	Strings []music.MusicalNote `json:"strings,omitempty"`
}

// DefaultConfig returns a chromatic 12-EDO tuner at A4 = 440 Hz
func DefaultConfig() *Config {
	return &Config{
		Scale: ScaleConfig{
			Temperament: TemperamentConfig{
				Kind: KindPredefined,
				Key:  "edo12",
			},
			ReferenceFrequency: 440,
			MinFrequency:       16,
			MaxFrequency:       16000,
		},
		Detection: DefaultDetectionConfig(),
	}
}

// DefaultDetectionConfig returns detection settings for 44.1 kHz input
func DefaultDetectionConfig() DetectionConfig {
	return DetectionConfig{
		WindowSize:          4096,
		HopSize:             1024,
		Window:              windowing.Hann,
		DCCutoff:            10,
		MinFrequency:        25,
		MaxFrequency:        4000,
		MaxHarmonics:        8,
		HarmonicTolerance:   0.1,
		MaxNoise:            0.5,
		MinHarmonicEnergy:   0.3,
		Sensitivity:         50,
		SmoothingWindow:     5,
		MaxFaultyValues:     3,
		OutlierTolerance:    0.03,
		OctaveJumpThreshold: 0.9,
		ToleranceCents:      5,
		PoolSize:            16,
		QueueSize:           8,
	}
}

// MinRMS converts the sensitivity into the quietest accepted frame RMS.
// Sensitivity 100 accepts -90 dBFS, 0 accepts nothing below full scale
func (d DetectionConfig) MinRMS() float64 {
	s := math.Max(0, math.Min(100, d.Sensitivity))
	return math.Pow(10, -0.9*s/20)
}

// Validate checks ranges and cross-field constraints
func (c *Config) Validate() error {
	s := c.Scale
	if !(s.ReferenceFrequency > 0) {
		return errors.Wrapf(ErrInvalidConfig, "reference frequency must be positive, got %g", s.ReferenceFrequency)
	}
	if !(s.MinFrequency > 0) || !(s.MaxFrequency > s.MinFrequency) {
		return errors.Wrapf(ErrInvalidConfig, "invalid scale range [%g, %g]", s.MinFrequency, s.MaxFrequency)
	}
	if s.Stretch != nil && len(s.Stretch.UnstretchedFrequencies) != len(s.Stretch.StretchInCents) {
		return errors.Wrapf(ErrInvalidConfig, "stretch tuning has %d frequencies but %d cents",
			len(s.Stretch.UnstretchedFrequencies), len(s.Stretch.StretchInCents))
	}
	if err := c.Scale.Temperament.validate(); err != nil {
		return err
	}

	d := c.Detection
	switch {
	case d.WindowSize < 64:
		return errors.Wrapf(ErrInvalidConfig, "window size must be at least 64, got %d", d.WindowSize)
	case d.HopSize < 0:
		return errors.Wrapf(ErrInvalidConfig, "hop size must not be negative, got %d", d.HopSize)
	case d.DCCutoff < 0:
		return errors.Wrapf(ErrInvalidConfig, "dc cutoff must not be negative, got %g", d.DCCutoff)
	case !(d.MinFrequency > 0) || !(d.MaxFrequency > d.MinFrequency):
		return errors.Wrapf(ErrInvalidConfig, "invalid detection range [%g, %g]", d.MinFrequency, d.MaxFrequency)
	case d.MaxHarmonics < 1:
		return errors.Wrapf(ErrInvalidConfig, "max harmonics must be at least 1, got %d", d.MaxHarmonics)
	case !(d.HarmonicTolerance > 0) || d.HarmonicTolerance >= 0.5:
		return errors.Wrapf(ErrInvalidConfig, "harmonic tolerance must be in (0, 0.5), got %g", d.HarmonicTolerance)
	case d.MaxNoise < 0 || d.MaxNoise > 1:
		return errors.Wrapf(ErrInvalidConfig, "max noise must be in [0, 1], got %g", d.MaxNoise)
	case d.MinHarmonicEnergy < 0 || d.MinHarmonicEnergy > 1:
		return errors.Wrapf(ErrInvalidConfig, "min harmonic energy must be in [0, 1], got %g", d.MinHarmonicEnergy)
	case d.Sensitivity < 0 || d.Sensitivity > 100:
		return errors.Wrapf(ErrInvalidConfig, "sensitivity must be in [0, 100], got %g", d.Sensitivity)
	case d.SmoothingWindow < 1:
		return errors.Wrapf(ErrInvalidConfig, "smoothing window must be at least 1, got %d", d.SmoothingWindow)
	case d.MaxFaultyValues < 0:
		return errors.Wrapf(ErrInvalidConfig, "max faulty values must not be negative, got %d", d.MaxFaultyValues)
	case !(d.OutlierTolerance > 0):
		return errors.Wrapf(ErrInvalidConfig, "outlier tolerance must be positive, got %g", d.OutlierTolerance)
	case d.OctaveJumpThreshold < 0 || d.OctaveJumpThreshold > 1:
		return errors.Wrapf(ErrInvalidConfig, "octave jump threshold must be in [0, 1], got %g", d.OctaveJumpThreshold)
	case !(d.ToleranceCents > 0):
		return errors.Wrapf(ErrInvalidConfig, "tolerance must be positive, got %g cents", d.ToleranceCents)
	case d.PoolSize < 0 || d.QueueSize < 1:
		return errors.Wrapf(ErrInvalidConfig, "pool size %d, queue size %d", d.PoolSize, d.QueueSize)
	}
	return nil
}

func (t TemperamentConfig) validate() error {
	switch t.Kind {
	case KindPredefined:
		if t.Key == "" {
			return errors.Wrap(ErrInvalidConfig, "predefined temperament needs a key")
		}
	case KindEDO:
		if t.Divisions < 1 {
			return errors.Wrapf(ErrInvalidConfig, "edo needs at least one division, got %d", t.Divisions)
		}
	case KindChain:
		if len(t.Fifths) == 0 {
			return errors.Wrap(ErrInvalidConfig, "chain temperament needs fifths")
		}
	case KindRational:
		if len(t.Ratios) < 2 {
			return errors.Wrap(ErrInvalidConfig, "rational temperament needs at least two ratios")
		}
	case KindCents:
		if len(t.Cents) < 2 {
			return errors.Wrap(ErrInvalidConfig, "cents temperament needs at least two values")
		}
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown temperament kind %q", t.Kind)
	}
	return nil
}

// Load reads a JSON configuration. Fields missing from the input keep
// their defaults
func Load(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.Wrapf(ErrInvalidConfig, "decode: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a JSON configuration file
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer f.Close()

	cfg, err := Load(f)
	if err != nil {
		return nil, errors.WithMessagef(err, "config %s", path)
	}
	return cfg, nil
}
