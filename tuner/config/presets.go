package config

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/RyanBlaney/sonido-tuner/music"
)

func notes(names ...string) []music.MusicalNote {
	out := make([]music.MusicalNote, len(names))
	for i, n := range names {
		out[i] = music.MustParseNote(n)
	}
	return out
}

// Instrument presets in standard tuning
var instruments = map[string]InstrumentConfig{
	"chromatic": {Name: "chromatic"},
	"guitar":    {Name: "guitar", Strings: notes("E2", "A2", "D3", "G3", "B3", "E4")},
	"bass":      {Name: "bass", Strings: notes("E1", "A1", "D2", "G2")},
	"ukulele":   {Name: "ukulele", Strings: notes("G4", "C4", "E4", "A4")},
	"violin":    {Name: "violin", Strings: notes("G3", "D4", "A4", "E5")},
	"viola":     {Name: "viola", Strings: notes("C3", "G3", "D4", "A4")},
	"cello":     {Name: "cello", Strings: notes("C2", "G2", "D3", "A3")},
	"piano":     {Name: "piano"},
}

// Instruments lists the preset names accepted by ConfigForInstrument
func Instruments() []string {
	names := make([]string, 0, len(instruments))
	for name := range instruments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ConfigForInstrument returns the default configuration adjusted for an
// instrument preset
func ConfigForInstrument(name string) (*Config, error) {
	inst, ok := instruments[name]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidConfig, "unknown instrument %q", name)
	}
	cfg := DefaultConfig()
	cfg.Instrument = InstrumentConfig{
		Name:    inst.Name,
		Strings: append([]music.MusicalNote(nil), inst.Strings...),
	}

	switch name {
	case "bass":
		// the low E1 needs a longer window
		cfg.Detection.WindowSize = 8192
		cfg.Detection.MinFrequency = 25
		cfg.Detection.MaxFrequency = 1000

	case "guitar", "cello":
		cfg.Detection.MinFrequency = 50
		cfg.Detection.MaxFrequency = 1500

	case "violin", "viola", "ukulele":
		cfg.Detection.WindowSize = 2048
		cfg.Detection.MinFrequency = 100
		cfg.Detection.MaxFrequency = 4000

	case "piano":
		// a typical Railsback curve for a medium size grand
		cfg.Scale.Stretch = &StretchConfig{
			Name:                   "piano",
			UnstretchedFrequencies: []float64{27.5, 55, 110, 220, 440, 880, 1760, 3520},
			StretchInCents:         []float64{-20, -8, -3, -1, 0, 2, 8, 25},
		}
		cfg.Detection.MaxHarmonics = 12
	}
	return cfg, nil
}
