package transcode

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/youpy/go-wav"
)

func sineWAV(t *testing.T, left, right []int, rate int) []byte {
	t.Helper()
	samples := make([]wav.Sample, len(left))
	for i := range left {
		samples[i] = wav.Sample{Values: [2]int{left[i], right[i]}}
	}
	var buf bytes.Buffer
	w := wav.NewWriter(&buf, uint32(len(samples)), 2, uint32(rate), 16)
	require.NoError(t, w.WriteSamples(samples))
	return buf.Bytes()
}

func TestDecodeWAVDownmix(t *testing.T) {
	const n = 800
	left := make([]int, n)
	right := make([]int, n)
	for i := range n {
		v := int(math.Round(16000 * math.Sin(2*math.Pi*440*float64(i)/8000)))
		left[i] = v
		right[i] = v / 2
	}

	audio, err := DecodeWAV(bytes.NewReader(sineWAV(t, left, right, 8000)))
	require.NoError(t, err)

	assert.Equal(t, 8000, audio.SampleRate)
	assert.Equal(t, 2, audio.Channels)
	assert.Equal(t, 100*time.Millisecond, audio.Duration)
	require.Len(t, audio.PCM, n)
	for i := range n {
		want := (float64(left[i]) + float64(right[i])) / 2 / 32768
		assert.InDelta(t, want, audio.PCM[i], 1e-4)
	}
}

func TestDecodeFileWAV(t *testing.T) {
	const n = 1000
	left := make([]int, n)
	for i := range left {
		left[i] = 1000
	}
	path := filepath.Join(t.TempDir(), "tone.WAV")
	require.NoError(t, os.WriteFile(path, sineWAV(t, left, left, 1000), 0o644))

	d := NewDecoder(&DecoderConfig{MaxDuration: 500 * time.Millisecond})
	audio, err := d.DecodeFile(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, audio.PCM, 500)
	assert.Equal(t, 500*time.Millisecond, audio.Duration)
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	_, err := DecodeWAV(bytes.NewReader([]byte("definitely not a riff file")))
	assert.Error(t, err)
}

func TestChunks(t *testing.T) {
	audio := newAudioData(make([]float64, 10), 100, 1)
	chunks := audio.Chunks(4)
	require.Len(t, chunks, 3)
	assert.Equal(t, int64(0), chunks[0].FramePosition)
	assert.Equal(t, int64(8), chunks[2].FramePosition)
	assert.Len(t, chunks[2].Samples, 2)
	assert.Equal(t, 100, chunks[1].SampleRate)
	assert.Nil(t, audio.Chunks(0))
}

func TestBytesToFloat64(t *testing.T) {
	raw := make([]byte, 8*3+5)
	for i, v := range []float64{0.5, -0.25, 1} {
		binary.LittleEndian.PutUint64(raw[i*8:], math.Float64bits(v))
	}
	assert.Equal(t, []float64{0.5, -0.25, 1}, bytesToFloat64(raw))
	assert.Nil(t, bytesToFloat64(raw[:7]))
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, NewDecoder(nil).ValidateConfig())
	assert.Error(t, NewDecoder(&DecoderConfig{TargetSampleRate: -1}).ValidateConfig())
	assert.Error(t, NewDecoder(&DecoderConfig{Timeout: -time.Second}).ValidateConfig())
}
