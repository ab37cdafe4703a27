package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-tuner/algorithms/windowing"
	"github.com/RyanBlaney/sonido-tuner/music"
)

func TestDefaultConfigBuilds(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	scale, err := cfg.BuildScale()
	require.NoError(t, err)
	assert.Equal(t, "edo12", scale.Temperament().ID())
	f, ok := scale.Frequency(0)
	require.True(t, ok)
	assert.Equal(t, 440.0, f)
	assert.Nil(t, scale.Stretch())
}

func TestLoadOverridesDefaults(t *testing.T) {
	input := `{
		"scale": {
			"temperament": {"kind": "chain", "fifths": [
				{"syntonic_comma": "-1/4"}, {"syntonic_comma": "-1/4"}, {"syntonic_comma": "-1/4"},
				{"syntonic_comma": "-1/4"}, {"syntonic_comma": "-1/4"}, {"syntonic_comma": "-1/4"},
				{"syntonic_comma": "-1/4"}, {"syntonic_comma": "-1/4"}, {"syntonic_comma": "-1/4"},
				{"syntonic_comma": "-1/4"}, {"syntonic_comma": "-1/4"}
			], "root_index": 3, "name": "My meantone"},
			"reference_note": "A4",
			"reference_frequency": 415,
			"stretch": {"unstretched_frequencies": [100, 1000], "stretch_in_cents": [-2, 3]}
		},
		"detection": {"window": "blackman", "window_size": 2048},
		"instrument": {"name": "custom", "strings": ["E2", "Bb3"]}
	}`
	cfg, err := Load(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 415.0, cfg.Scale.ReferenceFrequency)
	assert.Equal(t, 16.0, cfg.Scale.MinFrequency, "unset fields keep defaults")
	assert.Equal(t, windowing.Blackman, cfg.Detection.Window)
	assert.Equal(t, 2048, cfg.Detection.WindowSize)
	assert.Equal(t, 1024, cfg.Detection.HopSize)
	require.Len(t, cfg.Instrument.Strings, 2)
	assert.Equal(t, "Bb3", cfg.Instrument.Strings[1].String())

	scale, err := cfg.BuildScale()
	require.NoError(t, err)
	assert.Equal(t, "My meantone", scale.Temperament().Name())
	_, isChain := scale.Temperament().ChainOfFifths()
	assert.True(t, isChain)
	require.NotNil(t, scale.Stretch())
	assert.Equal(t, 2, scale.Stretch().Len())
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown field", `{"scale": {"reference": 440}}`},
		{"syntax", `{"scale": `},
		{"negative reference", `{"scale": {"reference_frequency": -1}}`},
		{"bad window", `{"detection": {"window": "triangle-ish"}}`},
		{"bad kind", `{"scale": {"temperament": {"kind": "magic"}}}`},
		{"sensitivity", `{"detection": {"sensitivity": 101}}`},
		{"stretch lengths", `{"scale": {"stretch": {"unstretched_frequencies": [1, 2], "stretch_in_cents": [0]}}}`},
		{"bad note", `{"instrument": {"strings": ["X9"]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "error %v does not wrap ErrInvalidConfig", err)
		})
	}
}

func TestTemperamentKinds(t *testing.T) {
	tests := []struct {
		name string
		cfg  TemperamentConfig
		size int
	}{
		{"predefined", TemperamentConfig{Kind: KindPredefined, Key: "werckmeister3"}, 12},
		{"edo", TemperamentConfig{Kind: KindEDO, Divisions: 19}, 19},
		{"rational", TemperamentConfig{Kind: KindRational, Ratios: []music.RationalNumber{
			music.One, music.MustRational(5, 4), music.MustRational(3, 2), music.Int(2),
		}}, 3},
		{"cents", TemperamentConfig{Kind: KindCents, Cents: []float64{0, 500, 700, 1200}}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmp, err := tt.cfg.Build()
			require.NoError(t, err)
			assert.Equal(t, tt.size, tmp.Size())
			cents := tmp.Cents()
			assert.Equal(t, 1200.0, cents[len(cents)-1])
		})
	}

	_, err := TemperamentConfig{Kind: KindEDO}.Build()
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	tmp, err := TemperamentConfig{Kind: KindCents, Cents: []float64{0, 700, 500, 1200}}.Build()
	assert.True(t, errors.Is(err, music.ErrInvalidTemperament))
	assert.Nil(t, tmp)
}

func TestConfigForInstrument(t *testing.T) {
	for _, name := range Instruments() {
		t.Run(name, func(t *testing.T) {
			cfg, err := ConfigForInstrument(name)
			require.NoError(t, err)
			require.NoError(t, cfg.Validate())
			_, err = cfg.BuildScale()
			require.NoError(t, err)
		})
	}

	guitar, err := ConfigForInstrument("guitar")
	require.NoError(t, err)
	assert.Len(t, guitar.Instrument.Strings, 6)

	piano, err := ConfigForInstrument("piano")
	require.NoError(t, err)
	scale, err := piano.BuildScale()
	require.NoError(t, err)
	c8, ok := scale.NoteFrequency(music.MustParseNote("C8"))
	require.True(t, ok)
	assert.Greater(t, c8, 4186.01*music.CentsToRatio(20))

	_, err = ConfigForInstrument("theremin")
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuner.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"detection": {"tolerance_cents": 2}}`), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2.0, cfg.Detection.ToleranceCents)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestMinRMS(t *testing.T) {
	d := DefaultDetectionConfig()
	assert.InDelta(t, 0.005623, d.MinRMS(), 1e-6)
	d.Sensitivity = 100
	assert.InDelta(t, 3.1623e-5, d.MinRMS(), 1e-8)
	d.Sensitivity = 0
	assert.Equal(t, 1.0, d.MinRMS())
}
