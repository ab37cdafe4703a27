package tuner

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/algorithms/spectral"
	"github.com/RyanBlaney/sonido-tuner/logging"
	"github.com/RyanBlaney/sonido-tuner/tuner/config"
)

const testRate = 44100

func sineFrame(freq, amplitude float64, n int, start int64) *common.TimeSeries {
	values := make([]float64, n)
	for i := range values {
		values[i] = amplitude * math.Sin(2*math.Pi*freq*float64(start+int64(i))/testRate)
	}
	return common.NewTimeSeries(values, testRate, start)
}

func noiseFrame(rng *rand.Rand, n int, start int64) *common.TimeSeries {
	values := make([]float64, n)
	for i := range values {
		values[i] = 0.3 * rng.NormFloat64()
	}
	return common.NewTimeSeries(values, testRate, start)
}

func newEvaluator(t *testing.T, cfg *config.Config) *FrequencyEvaluator {
	t.Helper()
	snap, err := NewSnapshot(cfg)
	require.NoError(t, err)
	e, err := NewFrequencyEvaluator(snap, common.NewPool[float64](8), &logging.NoOpLogger{})
	require.NoError(t, err)
	return e
}

func evaluateSine(t *testing.T, e *FrequencyEvaluator, freq float64, frames int) Result {
	t.Helper()
	var res Result
	for i := range frames {
		var err error
		res, err = e.Evaluate(context.Background(), sineFrame(freq, 0.5, 4096, int64(i)*1024))
		require.NoError(t, err)
	}
	return res
}

func TestEvaluatorInTune(t *testing.T) {
	e := newEvaluator(t, nil)
	res := evaluateSine(t, e, 440, 6)

	require.True(t, res.Updated, "reject reason %q", res.RejectReason)
	require.True(t, res.HasTarget)
	assert.InDelta(t, 440, res.Frequency, 0.01)
	assert.Equal(t, "A4", res.Target.Note.String())
	assert.Equal(t, 0, res.Target.Degree)
	assert.Equal(t, 440.0, res.Target.Frequency)
	assert.InDelta(t, 0, res.Target.Cents, 0.1)
	assert.Equal(t, InTune, res.State())
	assert.Less(t, res.Noise, 0.01)
	assert.Greater(t, res.EnergyRatio, 0.9)
	require.NotEmpty(t, res.Harmonics)
	assert.Equal(t, 1, res.Harmonics[0].Number)

	last, ok := e.Last()
	require.True(t, ok)
	assert.Equal(t, res.Frequency, last.Frequency)
}

func TestEvaluatorTooHigh(t *testing.T) {
	e := newEvaluator(t, nil)
	res := evaluateSine(t, e, 445, 6)

	require.True(t, res.HasTarget)
	assert.Equal(t, 0, res.Target.Degree)
	assert.InDelta(t, 19.56, res.Target.Cents, 0.1)
	assert.Equal(t, TooHigh, res.State())
}

func TestEvaluatorLowNote(t *testing.T) {
	e := newEvaluator(t, nil)
	res := evaluateSine(t, e, 82.41, 4)

	require.True(t, res.HasTarget)
	assert.Equal(t, "E2", res.Target.Note.String())
	assert.InDelta(t, 0, res.Target.Cents, 0.5)
	assert.Equal(t, InTune, res.State())
}

func TestEvaluatorNoisyFramesResetHistory(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Detection.MaxFaultyValues = 3
	e := newEvaluator(t, cfg)
	good := evaluateSine(t, e, 440, 5)
	require.True(t, good.HasTarget)

	rng := rand.New(rand.NewSource(7))
	var resets int
	for i := range 20 {
		res, err := e.Evaluate(context.Background(), noiseFrame(rng, 4096, int64(10+i)*1024))
		require.NoError(t, err)
		assert.False(t, res.Updated)
		assert.Equal(t, RejectNoisy, res.RejectReason)
		if res.HistoryReset {
			resets++
			assert.Equal(t, i, cfg.Detection.MaxFaultyValues, "history must drop after the allowed faulty frames")
		}
		if i < cfg.Detection.MaxFaultyValues {
			assert.InDelta(t, good.Frequency, res.Frequency, 1e-9, "value kept while faults are tolerated")
		} else {
			assert.Zero(t, res.Frequency)
			assert.False(t, res.HasTarget)
			assert.Equal(t, Unknown, res.State())
		}
	}
	assert.Equal(t, 1, resets)
}

func TestEvaluatorRejectsQuietAndSilentFrames(t *testing.T) {
	e := newEvaluator(t, nil)
	ctx := context.Background()

	res, err := e.Evaluate(ctx, common.NewTimeSeries(make([]float64, 4096), testRate, 0))
	require.NoError(t, err)
	assert.Equal(t, RejectSilent, res.RejectReason)

	res, err = e.Evaluate(ctx, sineFrame(440, 1e-4, 4096, 0))
	require.NoError(t, err)
	assert.Equal(t, RejectTooQuiet, res.RejectReason)
	assert.False(t, res.HasTarget)

	_, err = e.Evaluate(ctx, sineFrame(440, 0.5, 1000, 0))
	assert.ErrorIs(t, err, spectral.ErrFrameTooShort)
}

func TestEvaluatorCancelled(t *testing.T) {
	e := newEvaluator(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Evaluate(ctx, sineFrame(440, 0.5, 4096, 0))
	assert.ErrorIs(t, err, context.Canceled)
	_, ok := e.Last()
	assert.False(t, ok)
}

func TestEvaluatorSnapshotSwitch(t *testing.T) {
	e := newEvaluator(t, nil)
	evaluateSine(t, e, 440, 3)

	cfg := config.DefaultConfig()
	cfg.Scale.ReferenceFrequency = 442
	snap, err := NewSnapshot(cfg)
	require.NoError(t, err)
	e.SetSnapshot(snap)

	res := evaluateSine(t, e, 440, 3)
	require.True(t, res.HasTarget)
	assert.Equal(t, 442.0, res.Target.Frequency)
	assert.InDelta(t, -7.85, res.Target.Cents, 0.1)
	assert.Equal(t, TooLow, res.State())
	assert.Same(t, snap, e.Snapshot())

	e.Reset()
	_, ok := e.Last()
	assert.False(t, ok)
}

func TestEvaluatorKeepsSnapshotThatCannotBeApplied(t *testing.T) {
	e := newEvaluator(t, nil)
	good := e.Snapshot()
	evaluateSine(t, e, 440, 3)

	// snapshots are validated on construction, so break one by hand
	broken := *good
	broken.config.Detection.WindowSize = 2
	e.SetSnapshot(&broken)

	for range 3 {
		res := evaluateSine(t, e, 440, 1)
		require.True(t, res.Updated, "reject reason %q", res.RejectReason)
		require.True(t, res.HasTarget)
		assert.Equal(t, "A4", res.Target.Note.String())
		assert.Same(t, good, e.active)
		assert.Same(t, &broken, e.rejected)
	}

	cfg := config.DefaultConfig()
	cfg.Scale.ReferenceFrequency = 442
	next, err := NewSnapshot(cfg)
	require.NoError(t, err)
	e.SetSnapshot(next)
	res := evaluateSine(t, e, 440, 1)
	assert.Same(t, next, e.active)
	assert.Nil(t, e.rejected)
	assert.Equal(t, 442.0, res.Target.Frequency)
}

func TestEvaluatorHarmonicTone(t *testing.T) {
	e := newEvaluator(t, nil)
	values := make([]float64, 4096)
	for i := range values {
		for h := 1; h <= 6; h++ {
			values[i] += 0.3 / float64(h) * math.Sin(2*math.Pi*110*float64(h)*float64(i)/testRate)
		}
	}
	res, err := e.Evaluate(context.Background(), common.NewTimeSeries(values, testRate, 0))
	require.NoError(t, err)

	require.True(t, res.Updated, "reject reason %q", res.RejectReason)
	assert.Equal(t, "A2", res.Target.Note.String())
	assert.InDelta(t, 0, res.Target.Cents, 0.5)
	assert.GreaterOrEqual(t, len(res.Harmonics), 6)
	assert.InDelta(t, 0, res.Inharmonicity, 5e-3)
}
