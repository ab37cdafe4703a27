package tuner

import (
	"context"
	"math"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/algorithms/harmonic"
	"github.com/RyanBlaney/sonido-tuner/algorithms/spectral"
	"github.com/RyanBlaney/sonido-tuner/tuner/config"
)

// RejectReason tells why a frame did not update the frequency estimate
type RejectReason string

const (
	RejectNone              RejectReason = ""
	RejectTooQuiet          RejectReason = "too_quiet"
	RejectSilent            RejectReason = "silent"
	RejectNoPeak            RejectReason = "no_peak"
	RejectNoisy             RejectReason = "noisy"
	RejectNoHarmonics       RejectReason = "no_harmonics"
	RejectLowHarmonicEnergy RejectReason = "low_harmonic_energy"
	RejectOutlier           RejectReason = "outlier"
)

// keyMaximumThreshold selects the first correlation peak reaching this share
// of the strongest peak, so multiples of the period do not win on noise
const keyMaximumThreshold = 0.9

// octaveSearchWidth is the relative lag range searched around the previous
// period
const octaveSearchWidth = 0.1

// Detection is the unsmoothed analysis of one frame
type Detection struct {
	Frequency           float64            `json:"frequency"`
	Lag                 float64            `json:"lag"` // refined period in samples
	RMS                 float64            `json:"rms"`
	Noise               float64            `json:"noise"`        // 1 - r[period]/r[0]
	EnergyRatio         float64            `json:"energy_ratio"` // share of spectral energy in the harmonics
	Harmonics           harmonic.Harmonics `json:"harmonics,omitempty"`
	Inharmonicity       float64            `json:"inharmonicity"`
	InharmonicityStdDev float64            `json:"inharmonicity_std_dev"`
}

// FrequencyDetector estimates the fundamental of single frames from the
// autocorrelation function and validates it against the spectrum
type FrequencyDetector struct {
	params        config.DetectionConfig
	correlator    *spectral.AutoCorrelator
	pool          *common.Pool[float64]
	harmonics     harmonic.Params
	inharmonicity *harmonic.Inharmonicity
	minRMS        float64
}

// NewFrequencyDetector creates a detector; pool may be nil
func NewFrequencyDetector(params config.DetectionConfig, pool *common.Pool[float64]) (*FrequencyDetector, error) {
	correlator, err := spectral.NewAutoCorrelator(params.WindowSize, params.Window, pool)
	if err != nil {
		return nil, err
	}
	hp := harmonic.DefaultParams()
	hp.MaxHarmonics = params.MaxHarmonics
	hp.Tolerance = params.HarmonicTolerance
	// two native bins on each side cover the main lobe of the usual windows
	hp.EnergyHalfWidth = 2 * correlator.FFTSize() / correlator.WindowSize()

	return &FrequencyDetector{
		params:        params,
		correlator:    correlator,
		pool:          pool,
		harmonics:     hp,
		inharmonicity: harmonic.NewInharmonicity(),
		minRMS:        params.MinRMS(),
	}, nil
}

// WindowSize returns the number of samples analysed per frame
func (d *FrequencyDetector) WindowSize() int {
	return d.correlator.WindowSize()
}

// lagRange returns the lags that correspond to the detectable frequencies
func (d *FrequencyDetector) lagRange(sampleRate int) (int, int) {
	fs := float64(sampleRate)
	n := d.correlator.WindowSize()
	minLag := max(int(math.Floor(fs/d.params.MaxFrequency)), 2)
	maxLag := min(int(math.Ceil(fs/d.params.MinFrequency)), n/2, n-2)
	return minLag, maxLag
}

// Detect analyses the leading window of frame. previous is the last
// accepted frequency, or 0. A rejected frame returns a reason together
// with whatever was measured before the rejection
func (d *FrequencyDetector) Detect(ctx context.Context, frame []float64, sampleRate int, previous float64) (Detection, RejectReason, error) {
	var det Detection
	n := d.correlator.WindowSize()
	if len(frame) >= n {
		det.RMS = common.RMS(frame[:n])
		switch {
		case !(det.RMS > 0):
			return det, RejectSilent, nil
		case det.RMS < d.minRMS:
			return det, RejectTooQuiet, nil
		}
	}

	corr, spectrum, err := d.correlator.Compute(frame, sampleRate)
	if err != nil {
		return det, RejectNone, err
	}
	defer corr.Release()
	defer spectrum.Release()

	if corr.IsSilent() {
		return det, RejectSilent, nil
	}
	if err := ctx.Err(); err != nil {
		return det, RejectNone, err
	}

	minLag, maxLag := d.lagRange(sampleRate)
	if minLag+1 >= maxLag {
		return det, RejectNoPeak, nil
	}
	buf := d.pool.Acquire(maxLag + 2)
	defer buf.Release()
	r := corr.CompensatedInto(buf.Data())

	lag, ok := d.findPeak(r, minLag, maxLag, sampleRate, previous)
	if !ok {
		return det, RejectNoPeak, nil
	}

	position, value := common.RefinePeak(r, lag)
	det.Lag = position
	det.Frequency = corr.LagToFrequency(position)
	det.Noise = math.Max(0, math.Min(1, 1-value/r[0]))
	if det.Noise > d.params.MaxNoise {
		return det, RejectNoisy, nil
	}

	det.Harmonics = harmonic.FindHarmonics(spectrum, det.Frequency, d.harmonics)
	if len(det.Harmonics) == 0 {
		return det, RejectNoHarmonics, nil
	}
	det.EnergyRatio = harmonic.EnergyRatio(spectrum, det.Harmonics, d.harmonics.EnergyHalfWidth, 0.5*d.params.MinFrequency, 0)
	if det.EnergyRatio < d.params.MinHarmonicEnergy {
		return det, RejectLowHarmonicEnergy, nil
	}

	d.inharmonicity.Reset()
	d.inharmonicity.AddHarmonics(det.Harmonics)
	det.Inharmonicity = d.inharmonicity.Mean()
	det.InharmonicityStdDev = d.inharmonicity.StdDev()
	return det, RejectNone, nil
}

// findPeak returns the period lag. The search starts behind the first local
// minimum of r. Among the local maxima the earliest one close to the
// strongest wins, unless a maximum near the previous period is almost as
// strong, which suppresses octave jumps
func (d *FrequencyDetector) findPeak(r []float64, minLag, maxLag, sampleRate int, previous float64) (int, bool) {
	start := -1
	for l := 1; l <= maxLag; l++ {
		if r[l] <= r[l-1] && r[l] < r[l+1] {
			start = l
			break
		}
	}
	if start < 0 {
		return 0, false
	}
	start = max(start, minLag)

	isMax := func(l int) bool { return r[l] >= r[l-1] && r[l] >= r[l+1] }

	strongest := math.Inf(-1)
	for l := start; l <= maxLag; l++ {
		if isMax(l) && r[l] > strongest {
			strongest = r[l]
		}
	}
	if !(strongest > 0) {
		return 0, false
	}

	chosen := -1
	for l := start; l <= maxLag; l++ {
		if isMax(l) && r[l] >= keyMaximumThreshold*strongest {
			chosen = l
			break
		}
	}

	if previous > 0 {
		expected := float64(sampleRate) / previous
		lo := max(start, int(math.Floor(expected*(1-octaveSearchWidth))))
		hi := min(maxLag, int(math.Ceil(expected*(1+octaveSearchWidth))))
		near := -1
		for l := lo; l <= hi; l++ {
			if isMax(l) && (near < 0 || r[l] > r[near]) {
				near = l
			}
		}
		if near >= 0 && r[near] >= d.params.OctaveJumpThreshold*strongest {
			chosen = near
		}
	}
	return chosen, chosen >= 0
}
