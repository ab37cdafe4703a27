package tuner

import (
	"context"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/algorithms/filters"
	"github.com/RyanBlaney/sonido-tuner/logging"
)

// ErrRunnerStarted is returned by a second call to Run
var ErrRunnerStarted = errors.New("runner already started")

// RunnerOptions configures a Runner
type RunnerOptions struct {
	Logger       logging.Logger // nil uses the global logger
	QueueSize    int            // 0 uses the snapshot's queue size
	ResultBuffer int            // capacity of the result channel, default 1
}

// RunnerStats counts processed audio
type RunnerStats struct {
	Chunks   int64 `json:"chunks"`
	Frames   int64 `json:"frames"`
	Updates  int64 `json:"updates"`
	Rejected int64 `json:"rejected"`
	Dropped  int64 `json:"dropped"`
}

// Runner evaluates audio on a background goroutine. A source submits
// chunks, Run cuts them into windows and evaluates them one at a time, and
// results are delivered in order on the Results channel
type Runner struct {
	queue     *FrameQueue
	results   chan Result
	pending   atomic.Pointer[Snapshot]
	evaluator *FrequencyEvaluator
	pool      *common.Pool[float64]
	logger    logging.Logger
	started   atomic.Bool

	chunks, frames, updates, rejected atomic.Int64
}

// NewRunner creates a runner for a session; snap nil uses the default
// configuration
func NewRunner(snap *Snapshot, opts RunnerOptions) (*Runner, error) {
	if snap == nil {
		var err error
		if snap, err = NewSnapshot(nil); err != nil {
			return nil, err
		}
	}
	d := snap.Detection()
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = d.QueueSize
	}
	logger := logging.OrGlobal(opts.Logger).WithFields(logging.Fields{
		"component": "tuner_runner",
	})

	pool := common.NewPool[float64](d.PoolSize)
	evaluator, err := NewFrequencyEvaluator(snap, pool, logger)
	if err != nil {
		return nil, errors.WithMessage(err, "create evaluator")
	}
	return &Runner{
		queue:     NewFrameQueue(queueSize),
		results:   make(chan Result, max(opts.ResultBuffer, 1)),
		evaluator: evaluator,
		pool:      pool,
		logger:    logger,
	}, nil
}

// Submit queues a chunk of samples. It never blocks and reports whether
// older audio was dropped to make room
func (r *Runner) Submit(data common.SampleData) (dropped bool) {
	return r.queue.Push(data)
}

// Close signals the end of the input. Run returns after the queued audio
// has been processed
func (r *Runner) Close() {
	r.queue.Close()
}

// Results delivers one Result per evaluated window. The channel is closed
// when Run returns
func (r *Runner) Results() <-chan Result {
	return r.results
}

// UpdateSnapshot switches the configuration before the next chunk
func (r *Runner) UpdateSnapshot(snap *Snapshot) {
	if snap != nil {
		r.pending.Store(snap)
	}
}

// Last returns the latest result
func (r *Runner) Last() (Result, bool) {
	return r.evaluator.Last()
}

// Pool returns the buffer pool shared by the pipeline
func (r *Runner) Pool() *common.Pool[float64] {
	return r.pool
}

// Stats returns counters of the running session
func (r *Runner) Stats() RunnerStats {
	return RunnerStats{
		Chunks:   r.chunks.Load(),
		Frames:   r.frames.Load(),
		Updates:  r.updates.Load(),
		Rejected: r.rejected.Load(),
		Dropped:  r.queue.Dropped(),
	}
}

// pipeline holds the per-stream state owned by the Run goroutine
type pipeline struct {
	assembler *common.TimeSeriesAssembler
	dc        *filters.DCRemoval
	scratch   []float64
}

func (r *Runner) newPipeline(snap *Snapshot) *pipeline {
	d := snap.Detection()
	return &pipeline{assembler: common.NewTimeSeriesAssembler(d.WindowSize, d.HopSize, r.pool)}
}

// prepare filters a copy of the chunk. The DC filter follows the sample
// rate of the stream
func (p *pipeline) prepare(data common.SampleData, cutoff float64) common.SampleData {
	if cutoff <= 0 {
		return data
	}
	if p.dc == nil || p.dc.SampleRate() != data.SampleRate {
		p.dc = filters.NewDCRemoval(data.SampleRate, cutoff)
	}
	p.scratch = append(p.scratch[:0], data.Samples...)
	p.dc.ProcessInPlace(p.scratch)
	data.Samples = p.scratch
	return data
}

// Run processes submitted audio until Close was called and the queue is
// drained, or until ctx is cancelled. Cancellation abandons the current
// chunk between windows and returns ctx.Err()
func (r *Runner) Run(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return ErrRunnerStarted
	}
	defer close(r.results)

	snap := r.evaluator.Snapshot()
	p := r.newPipeline(snap)
	r.logger.Info("Tuning session started", logging.Fields{
		"temperament":         snap.Scale().Temperament().ID(),
		"reference_frequency": snap.Scale().ReferenceFrequency(),
		"window_size":         snap.Detection().WindowSize,
		"hop_size":            p.assembler.HopSize(),
	})

	for {
		data, err := r.queue.Pop(ctx)
		if errors.Is(err, ErrQueueClosed) {
			r.logger.Info("Tuning session finished", logging.Fields{
				"frames":  r.frames.Load(),
				"updates": r.updates.Load(),
				"dropped": r.queue.Dropped(),
			})
			return nil
		}
		if err != nil {
			r.logger.Debug("Tuning session cancelled", logging.Fields{"frames": r.frames.Load()})
			return err
		}

		if next := r.pending.Swap(nil); next != nil {
			if err := r.validateSnapshot(next); err != nil {
				r.logger.Error(err, "Ignoring invalid configuration update")
			} else {
				old := snap.Detection()
				snap = next
				r.evaluator.SetSnapshot(next)
				if d := next.Detection(); d.WindowSize != old.WindowSize || d.HopSize != old.HopSize || d.DCCutoff != old.DCCutoff {
					p = r.newPipeline(next)
				}
				r.logger.Info("Configuration updated", logging.Fields{
					"temperament": next.Scale().Temperament().ID(),
				})
			}
		}

		r.chunks.Add(1)
		windows := p.assembler.Add(p.prepare(data, snap.Detection().DCCutoff))
		if err := r.evaluate(ctx, windows); err != nil {
			return err
		}
	}
}

// validateSnapshot rejects updates whose detection settings cannot drive
// the pipeline, so the assembler and the evaluator keep the same geometry
func (r *Runner) validateSnapshot(snap *Snapshot) error {
	cfg := snap.Config()
	return cfg.Validate()
}

// evaluate runs the evaluator over windows, releasing every window even
// when it stops early
func (r *Runner) evaluate(ctx context.Context, windows []*common.TimeSeries) error {
	for i, ts := range windows {
		if err := ctx.Err(); err != nil {
			releaseAll(windows[i:])
			return err
		}
		res, err := r.evaluator.Evaluate(ctx, ts)
		ts.Release()
		if err != nil {
			if ctx.Err() != nil {
				releaseAll(windows[i+1:])
				return ctx.Err()
			}
			r.logger.Error(err, "Frame evaluation failed", logging.Fields{
				"frame_position": ts.FramePosition,
			})
			continue
		}

		r.frames.Add(1)
		if res.Updated {
			r.updates.Add(1)
		} else {
			r.rejected.Add(1)
		}

		select {
		case r.results <- res:
		case <-ctx.Done():
			releaseAll(windows[i+1:])
			return ctx.Err()
		}
	}
	return nil
}

func releaseAll(windows []*common.TimeSeries) {
	for _, ts := range windows {
		ts.Release()
	}
}
