package transcode

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-tuner/logging"
)

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	TargetSampleRate int           `json:"target_sample_rate"` // ffmpeg output rate, 0 keeps the source rate
	MaxDuration      time.Duration `json:"max_duration"`       // 0 means no limit
	FFmpegPath       string        `json:"ffmpeg_path"`        // Path to ffmpeg binary
	Timeout          time.Duration `json:"timeout"`            // Timeout for ffmpeg operations
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 44100,
		MaxDuration:      0,
		FFmpegPath:       "ffmpeg",
		Timeout:          30 * time.Second,
	}
}

// Decoder turns audio files into mono PCM. WAV files are read natively,
// everything else goes through ffmpeg
type Decoder struct {
	config *DecoderConfig
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{config: config}
}

// ValidateConfig validates the decoder configuration
func (d *Decoder) ValidateConfig() error {
	if d.config.TargetSampleRate < 0 {
		return fmt.Errorf("target sample rate must not be negative: %d", d.config.TargetSampleRate)
	}
	if d.config.MaxDuration < 0 {
		return fmt.Errorf("max duration must not be negative: %v", d.config.MaxDuration)
	}
	if d.config.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative: %v", d.config.Timeout)
	}
	return nil
}

// DecodeFile decodes an audio file and returns mono PCM data
func (d *Decoder) DecodeFile(ctx context.Context, filename string) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "DecodeFile",
		"filename":  filename,
	})

	if err := d.ValidateConfig(); err != nil {
		return nil, err
	}

	logger.Debug("Starting audio file decode")

	var (
		audio *AudioData
		err   error
	)
	if strings.EqualFold(filepath.Ext(filename), ".wav") {
		audio, err = d.decodeWAVFile(filename)
	} else {
		audio, err = d.decodeWithFFmpeg(ctx, filename, logger)
	}
	if err != nil {
		logger.Error(err, "Failed to decode audio file")
		return nil, err
	}

	d.truncate(audio)
	logger.Debug("Audio decoded", logging.Fields{
		"sample_rate": audio.SampleRate,
		"channels":    audio.Channels,
		"duration":    audio.Duration,
	})
	return audio, nil
}

func (d *Decoder) decodeWAVFile(filename string) (*AudioData, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer f.Close()
	return DecodeWAV(f)
}

func (d *Decoder) truncate(audio *AudioData) {
	if d.config.MaxDuration <= 0 || audio.SampleRate <= 0 {
		return
	}
	limit := int(d.config.MaxDuration.Seconds() * float64(audio.SampleRate))
	if limit < len(audio.PCM) {
		*audio = *newAudioData(audio.PCM[:limit], audio.SampleRate, audio.Channels)
	}
}

func (d *Decoder) buildFFmpegArgs(filename string) []string {
	args := []string{"-nostdin", "-i", filename, "-f", "f64le", "-ac", "1"}
	if d.config.TargetSampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(d.config.TargetSampleRate))
	}
	if d.config.MaxDuration > 0 {
		args = append(args, "-t", strconv.FormatFloat(d.config.MaxDuration.Seconds(), 'f', 3, 64))
	}
	return append(args, "pipe:1")
}

func (d *Decoder) decodeWithFFmpeg(ctx context.Context, filename string, logger logging.Logger) (*AudioData, error) {
	if d.config.TargetSampleRate == 0 {
		return nil, errors.New("ffmpeg decoding needs a target sample rate")
	}
	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	args := d.buildFFmpegArgs(filename)
	logger.Debug("Running ffmpeg command", logging.Fields{
		"args": strings.Join(args, " "),
	})

	output, err := exec.CommandContext(ctx, d.config.FFmpegPath, args...).Output()
	if err != nil {
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			logger.Error(err, "Ffmpeg decode failed", logging.Fields{
				"stderr": string(exitError.Stderr),
			})
		}
		return nil, fmt.Errorf("ffmpeg decode failed: %w", err)
	}

	pcm := bytesToFloat64(output)
	if len(pcm) == 0 {
		return nil, errors.New("ffmpeg produced no audio")
	}
	return newAudioData(pcm, d.config.TargetSampleRate, 1), nil
}

// bytesToFloat64 converts raw float64 little-endian bytes to []float64
func bytesToFloat64(data []byte) []float64 {
	data = data[:len(data)-len(data)%8]
	if len(data) == 0 {
		return nil
	}

	samples := make([]float64, len(data)/8)
	for i := range samples {
		samples[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8 : i*8+8]))
	}
	return samples
}
