package tuner

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/logging"
	"github.com/RyanBlaney/sonido-tuner/tuner/config"
)

func sineChunks(freq float64, chunkSize, chunks int, start int64) []common.SampleData {
	out := make([]common.SampleData, chunks)
	for c := range out {
		pos := start + int64(c*chunkSize)
		samples := make([]float64, chunkSize)
		for i := range samples {
			samples[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(pos+int64(i))/testRate)
		}
		out[c] = common.SampleData{Samples: samples, SampleRate: testRate, FramePosition: pos}
	}
	return out
}

func collect(results <-chan Result) chan []Result {
	done := make(chan []Result, 1)
	go func() {
		var all []Result
		for r := range results {
			all = append(all, r)
		}
		done <- all
	}()
	return done
}

func TestRunnerProcessesStream(t *testing.T) {
	runner, err := NewRunner(nil, RunnerOptions{Logger: &logging.NoOpLogger{}, QueueSize: 32})
	require.NoError(t, err)

	for _, chunk := range sineChunks(440, 1024, 20, 0) {
		assert.False(t, runner.Submit(chunk))
	}
	runner.Close()

	done := collect(runner.Results())
	require.NoError(t, runner.Run(context.Background()))
	results := <-done

	// 20480 samples give windows starting at 0, 1024, ..., 16384
	require.Len(t, results, 17)
	for i, res := range results {
		assert.Equal(t, int64(i*1024), res.FramePosition)
	}
	last := results[len(results)-1]
	require.True(t, last.HasTarget)
	assert.Equal(t, "A4", last.Target.Note.String())
	assert.Equal(t, InTune, last.State())

	stats := runner.Stats()
	assert.Equal(t, int64(20), stats.Chunks)
	assert.Equal(t, int64(17), stats.Frames)
	assert.Equal(t, stats.Frames, stats.Updates+stats.Rejected)
	assert.Zero(t, stats.Dropped)

	// every window and scratch buffer went back to the pool
	assert.Positive(t, runner.Pool().Idle(4096))
	assert.Positive(t, runner.Pool().Stats().Reused)
}

func TestRunnerAppliesSnapshotUpdate(t *testing.T) {
	runner, err := NewRunner(nil, RunnerOptions{Logger: &logging.NoOpLogger{}, QueueSize: 32})
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Scale.ReferenceFrequency = 442
	cfg.Detection.WindowSize = 2048
	cfg.Detection.HopSize = 512
	snap, err := NewSnapshot(cfg)
	require.NoError(t, err)
	runner.UpdateSnapshot(snap)

	for _, chunk := range sineChunks(442, 512, 12, 0) {
		runner.Submit(chunk)
	}
	runner.Close()

	done := collect(runner.Results())
	require.NoError(t, runner.Run(context.Background()))
	results := <-done

	// 6144 samples, windows of 2048 every 512
	require.Len(t, results, 9)
	last := results[len(results)-1]
	require.True(t, last.HasTarget)
	assert.Equal(t, 442.0, last.Target.Frequency)
	assert.InDelta(t, 0, last.Target.Cents, 0.5)
}

func TestRunnerIgnoresInvalidSnapshotUpdate(t *testing.T) {
	runner, err := NewRunner(nil, RunnerOptions{Logger: &logging.NoOpLogger{}, QueueSize: 32})
	require.NoError(t, err)
	good, err := NewSnapshot(config.DefaultConfig())
	require.NoError(t, err)
	broken := *good
	broken.config.Detection.WindowSize = 2
	runner.UpdateSnapshot(&broken)

	for _, chunk := range sineChunks(440, 1024, 20, 0) {
		runner.Submit(chunk)
	}
	runner.Close()

	done := collect(runner.Results())
	require.NoError(t, runner.Run(context.Background()))
	results := <-done

	// the default geometry stays in place
	require.Len(t, results, 17)
	last := results[len(results)-1]
	require.True(t, last.HasTarget)
	assert.Equal(t, "A4", last.Target.Note.String())
}

func TestRunnerCancellation(t *testing.T) {
	runner, err := NewRunner(nil, RunnerOptions{Logger: &logging.NoOpLogger{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- runner.Run(ctx) }()

	runner.Submit(sineChunks(440, 1024, 1, 0)[0])
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	// the result channel is closed once Run returns
	for range runner.Results() {
	}
	assert.ErrorIs(t, runner.Run(context.Background()), ErrRunnerStarted)
}

func TestRunnerDropsOldestWhenFull(t *testing.T) {
	runner, err := NewRunner(nil, RunnerOptions{Logger: &logging.NoOpLogger{}, QueueSize: 2})
	require.NoError(t, err)

	chunks := sineChunks(440, 4096, 3, 0)
	assert.False(t, runner.Submit(chunks[0]))
	assert.False(t, runner.Submit(chunks[1]))
	assert.True(t, runner.Submit(chunks[2]))
	runner.Close()

	done := collect(runner.Results())
	require.NoError(t, runner.Run(context.Background()))
	results := <-done

	// the first chunk is lost, the rest is one contiguous stream from 4096
	require.Len(t, results, 5)
	assert.Equal(t, int64(4096), results[0].FramePosition)
	assert.Equal(t, int64(8192), results[4].FramePosition)
	assert.Equal(t, int64(1), runner.Stats().Dropped)
}
