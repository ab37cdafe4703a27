package transcode

import (
	"time"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
)

// AudioData represents decoded mono PCM audio
type AudioData struct {
	PCM        []float64     `json:"-"` // Mono samples in [-1, 1]
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"` // Channel count of the source before downmix
	Duration   time.Duration `json:"duration"`
}

func newAudioData(pcm []float64, sampleRate, channels int) *AudioData {
	var duration time.Duration
	if sampleRate > 0 {
		duration = time.Duration(float64(len(pcm)) / float64(sampleRate) * float64(time.Second))
	}
	return &AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   channels,
		Duration:   duration,
	}
}

// Chunks splits the audio into consecutive sample blocks of the given size,
// as a live source would deliver them. The last chunk may be shorter
func (a *AudioData) Chunks(size int) []common.SampleData {
	if size <= 0 || len(a.PCM) == 0 {
		return nil
	}
	chunks := make([]common.SampleData, 0, (len(a.PCM)+size-1)/size)
	for start := 0; start < len(a.PCM); start += size {
		end := min(start+size, len(a.PCM))
		chunks = append(chunks, common.SampleData{
			Samples:       a.PCM[start:end],
			SampleRate:    a.SampleRate,
			FramePosition: int64(start),
		})
	}
	return chunks
}
