package transcode

import (
	"fmt"
	"io"
	"math"

	"github.com/RyanBlaney/sonido-tuner/logging"
	"github.com/youpy/go-wav"
)

// WAVSource is what the RIFF reader needs: sequential and random access
type WAVSource interface {
	io.Reader
	io.ReaderAt
}

// DecodeWAV reads a PCM WAV stream and downmixes it to mono
func DecodeWAV(r WAVSource) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "DecodeWAV",
	})

	reader := wav.NewReader(r)
	format, err := reader.Format()
	if err != nil {
		return nil, fmt.Errorf("failed to read wav header: %w", err)
	}
	if format.NumChannels == 0 || format.SampleRate == 0 {
		return nil, fmt.Errorf("invalid wav format: %d channels at %d Hz", format.NumChannels, format.SampleRate)
	}

	// Samples carry at most two channel values
	channels := min(uint(format.NumChannels), 2)
	scale := math.Ldexp(1, int(format.BitsPerSample)-1)
	offset := 0
	if format.BitsPerSample == 8 {
		offset = 128
	}

	var pcm []float64
	for {
		samples, err := reader.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read wav samples: %w", err)
		}
		for _, sample := range samples {
			sum := 0.0
			for ch := range channels {
				sum += float64(reader.IntValue(sample, ch)-offset) / scale
			}
			pcm = append(pcm, sum/float64(channels))
		}
	}

	logger.Debug("Decoded wav", logging.Fields{
		"sample_rate":     format.SampleRate,
		"channels":        format.NumChannels,
		"bits_per_sample": format.BitsPerSample,
		"samples":         len(pcm),
	})

	return newAudioData(pcm, int(format.SampleRate), int(format.NumChannels)), nil
}
