package tuner

import (
	"context"
	"sync/atomic"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/algorithms/harmonic"
	"github.com/RyanBlaney/sonido-tuner/algorithms/stats"
	"github.com/RyanBlaney/sonido-tuner/logging"
)

// Result is the outcome of evaluating one frame
type Result struct {
	FramePosition int64 `json:"frame_position"`
	SampleRate    int   `json:"sample_rate"`

	// Updated is false when the frame left the smoothed frequency unchanged
	Updated      bool         `json:"updated"`
	RejectReason RejectReason `json:"reject_reason,omitempty"`
	// HistoryReset reports that this frame dropped the smoothing history
	HistoryReset bool `json:"history_reset,omitempty"`

	// Frequency is the smoothed frequency, 0 while there is no estimate
	Frequency    float64 `json:"frequency"`
	RawFrequency float64 `json:"raw_frequency"`

	Noise               float64            `json:"noise"`
	EnergyRatio         float64            `json:"energy_ratio"`
	Harmonics           harmonic.Harmonics `json:"harmonics,omitempty"`
	Inharmonicity       float64            `json:"inharmonicity"`
	InharmonicityStdDev float64            `json:"inharmonicity_std_dev"`

	// Target is valid when HasTarget is set
	HasTarget bool   `json:"has_target"`
	Target    Target `json:"target"`
}

// State returns the tuning state, Unknown without a target
func (r Result) State() TuningState {
	if !r.HasTarget {
		return Unknown
	}
	return r.Target.State
}

// FrequencyEvaluator turns frames into smoothed frequencies and tuning
// decisions. Evaluate must not be called concurrently; SetSnapshot and Last
// may be called from any goroutine
type FrequencyEvaluator struct {
	snapshot atomic.Pointer[Snapshot]
	last     atomic.Pointer[Result]
	pool     *common.Pool[float64]
	logger   logging.Logger

	// owned by the evaluating goroutine
	active   *Snapshot
	rejected *Snapshot // last snapshot that could not be applied
	detector *FrequencyDetector
	smoother *stats.OutlierRemovingSmoother
}

// NewFrequencyEvaluator creates an evaluator. A nil logger uses the global
// logger; pool may be nil
func NewFrequencyEvaluator(snap *Snapshot, pool *common.Pool[float64], logger logging.Logger) (*FrequencyEvaluator, error) {
	e := &FrequencyEvaluator{
		pool: pool,
		logger: logging.OrGlobal(logger).WithFields(logging.Fields{
			"component": "frequency_evaluator",
		}),
	}
	if snap == nil {
		var err error
		if snap, err = NewSnapshot(nil); err != nil {
			return nil, err
		}
	}
	if err := e.activate(snap); err != nil {
		return nil, err
	}
	e.snapshot.Store(snap)
	return e, nil
}

// SetSnapshot replaces the configuration. It takes effect with the next
// evaluated frame
func (e *FrequencyEvaluator) SetSnapshot(snap *Snapshot) {
	if snap != nil {
		e.snapshot.Store(snap)
	}
}

// Snapshot returns the most recently set configuration
func (e *FrequencyEvaluator) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

// Last returns the latest result, false before the first frame
func (e *FrequencyEvaluator) Last() (Result, bool) {
	r := e.last.Load()
	if r == nil {
		return Result{}, false
	}
	return *r, true
}

// Reset drops the smoothing history
func (e *FrequencyEvaluator) Reset() {
	e.smoother.Reset()
	e.last.Store(nil)
}

func (e *FrequencyEvaluator) activate(snap *Snapshot) error {
	d := snap.Detection()
	detector, err := NewFrequencyDetector(d, e.pool)
	if err != nil {
		return err
	}
	e.active = snap
	e.rejected = nil
	e.detector = detector
	e.smoother = stats.NewOutlierRemovingSmoother(d.SmoothingWindow, d.OutlierTolerance, d.MaxFaultyValues)
	return nil
}

// Evaluate analyses one time series. Detection failures are reported in
// the result and never returned as errors; errors are reserved for invalid
// frames and cancellation
func (e *FrequencyEvaluator) Evaluate(ctx context.Context, ts *common.TimeSeries) (Result, error) {
	if snap := e.snapshot.Load(); snap != e.active && snap != e.rejected {
		if err := e.activate(snap); err != nil {
			// the previous snapshot stays active until a usable one is set
			e.rejected = snap
			e.logger.Error(err, "Failed to apply snapshot, keeping the previous one", logging.Fields{
				"window_size": snap.Detection().WindowSize,
			})
		} else {
			e.logger.Debug("Applied new snapshot", logging.Fields{
				"temperament": snap.Scale().Temperament().ID(),
				"window_size": snap.Detection().WindowSize,
			})
		}
	}

	previous, _ := e.smoother.Value()
	det, reason, err := e.detector.Detect(ctx, ts.Values(), ts.SampleRate, previous)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		FramePosition:       ts.FramePosition,
		SampleRate:          ts.SampleRate,
		RejectReason:        reason,
		RawFrequency:        det.Frequency,
		Noise:               det.Noise,
		EnergyRatio:         det.EnergyRatio,
		Harmonics:           det.Harmonics,
		Inharmonicity:       det.Inharmonicity,
		InharmonicityStdDev: det.InharmonicityStdDev,
	}

	resets := e.smoother.Resets()
	if reason != RejectNone {
		e.smoother.Skip()
	} else if _, outlier := e.smoother.Add(det.Frequency); outlier {
		res.RejectReason = RejectOutlier
	} else {
		res.Updated = true
	}
	res.HistoryReset = e.smoother.Resets() != resets

	if res.HistoryReset {
		e.logger.Debug("Smoothing history reset", logging.Fields{
			"frame_position": ts.FramePosition,
			"reason":         string(res.RejectReason),
		})
	} else if res.RejectReason != RejectNone {
		e.logger.Debug("Frame rejected", logging.Fields{
			"frame_position": ts.FramePosition,
			"reason":         string(res.RejectReason),
			"noise":          det.Noise,
		})
	}

	if f, ok := e.smoother.Value(); ok {
		res.Frequency = f
		res.Target, res.HasTarget = e.active.Target(f)
	}
	e.last.Store(&res)
	return res, nil
}
