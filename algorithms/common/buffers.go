package common

// SampleData is a contiguous chunk of mono samples delivered by an audio
// source
type SampleData struct {
	Samples       []float64 `json:"samples"`
	SampleRate    int       `json:"sample_rate"`
	FramePosition int64     `json:"frame_position"` // stream position of Samples[0]
}

// TimeSeries is one analysis window of samples. Windows built by a
// TimeSeriesAssembler live in pooled storage and must be released once
// processed
type TimeSeries struct {
	handle        *Handle[float64]
	SampleRate    int   // samples per second
	FramePosition int64 // stream position of the first sample
}

// NewTimeSeries wraps a copy of values in an unpooled time series
func NewTimeSeries(values []float64, sampleRate int, framePosition int64) *TimeSeries {
	h := (*Pool[float64])(nil).Acquire(len(values))
	copy(h.Data(), values)
	return &TimeSeries{handle: h, SampleRate: sampleRate, FramePosition: framePosition}
}

// Values returns the samples
func (ts *TimeSeries) Values() []float64 {
	return ts.handle.Data()
}

// Size returns the number of samples
func (ts *TimeSeries) Size() int {
	return ts.handle.Len()
}

// Duration returns the window length in seconds
func (ts *TimeSeries) Duration() float64 {
	if ts.SampleRate <= 0 {
		return 0
	}
	return float64(ts.Size()) / float64(ts.SampleRate)
}

// Retain adds a reference to the underlying storage
func (ts *TimeSeries) Retain() *TimeSeries {
	ts.handle.Retain()
	return ts
}

// Release drops a reference to the underlying storage
func (ts *TimeSeries) Release() {
	ts.handle.Release()
}

// TimeSeriesAssembler cuts a stream of SampleData chunks into analysis
// windows of windowSize samples, advancing hopSize samples between windows.
// A hop smaller than the window gives overlapping windows; a larger hop
// skips samples. A gap in frame positions or a sample rate change restarts
// assembly at the new chunk
type TimeSeriesAssembler struct {
	windowSize int
	hopSize    int
	pool       *Pool[float64]

	buffer     []float64
	bufferPos  int64 // stream position of buffer[0]
	nextPos    int64 // expected position of the next chunk
	pendingHop int   // samples still to skip from upcoming chunks
	sampleRate int
	started    bool
}

// NewTimeSeriesAssembler creates an assembler. hopSize <= 0 selects
// contiguous windows. pool may be nil
func NewTimeSeriesAssembler(windowSize, hopSize int, pool *Pool[float64]) *TimeSeriesAssembler {
	if hopSize <= 0 {
		hopSize = windowSize
	}
	return &TimeSeriesAssembler{
		windowSize: windowSize,
		hopSize:    hopSize,
		pool:       pool,
		buffer:     make([]float64, 0, 2*windowSize),
	}
}

// Add appends a chunk and returns every window completed by it, oldest first
func (a *TimeSeriesAssembler) Add(data SampleData) []*TimeSeries {
	if a.windowSize <= 0 {
		return nil
	}
	if !a.started || data.SampleRate != a.sampleRate || data.FramePosition != a.nextPos {
		a.Reset()
		a.started = true
		a.sampleRate = data.SampleRate
		a.bufferPos = data.FramePosition
	}
	a.nextPos = data.FramePosition + int64(len(data.Samples))

	samples := data.Samples
	if a.pendingHop > 0 {
		skip := min(a.pendingHop, len(samples))
		samples = samples[skip:]
		a.pendingHop -= skip
	}
	a.buffer = append(a.buffer, samples...)

	var out []*TimeSeries
	for len(a.buffer) >= a.windowSize {
		h := a.pool.Acquire(a.windowSize)
		copy(h.Data(), a.buffer[:a.windowSize])
		out = append(out, &TimeSeries{
			handle:        h,
			SampleRate:    a.sampleRate,
			FramePosition: a.bufferPos,
		})

		drop := min(a.hopSize, len(a.buffer))
		n := copy(a.buffer, a.buffer[drop:])
		a.buffer = a.buffer[:n]
		a.bufferPos += int64(drop)

		if rest := a.hopSize - drop; rest > 0 {
			a.pendingHop = rest
			a.bufferPos += int64(rest)
		}
	}
	return out
}

// Buffered returns the number of samples waiting for the next window
func (a *TimeSeriesAssembler) Buffered() int {
	return len(a.buffer)
}

// WindowSize returns the window length
func (a *TimeSeriesAssembler) WindowSize() int {
	return a.windowSize
}

// HopSize returns the hop length
func (a *TimeSeriesAssembler) HopSize() int {
	return a.hopSize
}

// Reset drops buffered samples
func (a *TimeSeriesAssembler) Reset() {
	a.buffer = a.buffer[:0]
	a.pendingHop = 0
	a.started = false
}
