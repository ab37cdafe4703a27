package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/cheggaaa/pb"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/pflag"

	"github.com/RyanBlaney/sonido-tuner/logging"
	"github.com/RyanBlaney/sonido-tuner/transcode"
	"github.com/RyanBlaney/sonido-tuner/tuner"
	"github.com/RyanBlaney/sonido-tuner/tuner/config"
)

type options struct {
	configPath  string
	instrument  string
	temperament string
	reference   float64
	tolerance   float64
	chunkSize   int
	ffmpeg      string
	level       string
	debug       bool
	noProgress  bool
	all         bool
}

func main() {
	var opts options
	pflag.StringVarP(&opts.configPath, "config", "c", "", "JSON configuration file")
	pflag.StringVarP(&opts.instrument, "instrument", "i", "", "instrument preset ("+strings.Join(config.Instruments(), ", ")+")")
	pflag.StringVarP(&opts.temperament, "temperament", "t", "", "predefined temperament key")
	pflag.Float64VarP(&opts.reference, "reference", "r", 0, "reference frequency in Hz")
	pflag.Float64Var(&opts.tolerance, "tolerance", 0, "in-tune band in cents")
	pflag.IntVar(&opts.chunkSize, "chunk", 1024, "samples per submitted chunk")
	pflag.StringVar(&opts.ffmpeg, "ffmpeg", "ffmpeg", "ffmpeg binary for non-WAV input")
	pflag.StringVarP(&opts.level, "log-level", "l", "info", "log level (debug, info, warn, error)")
	pflag.BoolVarP(&opts.debug, "debug", "d", false, "dump the session configuration")
	pflag.BoolVar(&opts.noProgress, "no-progress", false, "hide the progress bar")
	pflag.BoolVarP(&opts.all, "all", "a", false, "print rejected frames as well")
	pflag.Parse()

	logger := logging.NewDefaultLogger()
	level, err := logging.ParseLevel(opts.level)
	if err != nil {
		logger.Fatal(err, "invalid log level")
	}
	logger.SetLevel(level)
	if opts.debug {
		logger.SetLevel(logging.DebugLevel)
	}
	logging.SetGlobalLogger(logger)

	if pflag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: tunewav [flags] <audio file>...")
		pflag.PrintDefaults()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	snap, err := buildSnapshot(opts)
	if err != nil {
		logger.Fatal(err, "invalid configuration")
	}
	if opts.debug {
		spew.Fdump(os.Stderr, snap.Config())
	}

	decoderConfig := transcode.DefaultDecoderConfig()
	decoderConfig.FFmpegPath = opts.ffmpeg
	decoder := transcode.NewDecoder(decoderConfig)

	for _, path := range pflag.Args() {
		if err := tuneFile(ctx, decoder, snap, path, opts); err != nil {
			logger.Error(err, "failed to tune file", logging.Fields{"file": path})
			os.Exit(1)
		}
	}
}

func buildSnapshot(opts options) (*tuner.Snapshot, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case opts.configPath != "":
		cfg, err = config.LoadFile(opts.configPath)
	case opts.instrument != "":
		cfg, err = config.ConfigForInstrument(opts.instrument)
	default:
		cfg = config.DefaultConfig()
	}
	if err != nil {
		return nil, err
	}

	if opts.temperament != "" {
		cfg.Scale.Temperament = config.TemperamentConfig{
			Kind: config.KindPredefined,
			Key:  opts.temperament,
		}
	}
	if opts.reference > 0 {
		cfg.Scale.ReferenceFrequency = opts.reference
	}
	if opts.tolerance > 0 {
		cfg.Detection.ToleranceCents = opts.tolerance
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return tuner.NewSnapshot(cfg)
}

func tuneFile(ctx context.Context, decoder *transcode.Decoder, snap *tuner.Snapshot, path string, opts options) error {
	audio, err := decoder.DecodeFile(ctx, path)
	if err != nil {
		return err
	}
	chunks := audio.Chunks(opts.chunkSize)

	// offline input must not be dropped, so the queue holds the whole file
	runner, err := tuner.NewRunner(snap, tuner.RunnerOptions{
		QueueSize:    len(chunks) + 1,
		ResultBuffer: 16,
	})
	if err != nil {
		return err
	}
	for _, chunk := range chunks {
		runner.Submit(chunk)
	}
	runner.Close()

	errc := make(chan error, 1)
	go func() { errc <- runner.Run(ctx) }()

	var bar *pb.ProgressBar
	if !opts.noProgress {
		bar = pb.New(expectedWindows(len(audio.PCM), snap.Detection())).Prefix(path)
		bar.Output = os.Stderr
		bar.Start()
	}

	var lines []string
	for result := range runner.Results() {
		if bar != nil {
			bar.Increment()
		}
		if line, ok := formatResult(result, opts.all); ok {
			lines = append(lines, line)
		}
	}
	if bar != nil {
		bar.Finish()
	}
	if err := <-errc; err != nil {
		return err
	}

	for _, line := range lines {
		fmt.Println(line)
	}
	stats := runner.Stats()
	logging.Info("file tuned", logging.Fields{
		"file":        path,
		"duration":    audio.Duration,
		"sample_rate": audio.SampleRate,
		"frames":      stats.Frames,
		"updates":     stats.Updates,
		"rejected":    stats.Rejected,
	})
	if opts.debug {
		if last, ok := runner.Last(); ok {
			spew.Fdump(os.Stderr, last)
		}
	}
	return nil
}

func expectedWindows(samples int, d config.DetectionConfig) int {
	hop := d.HopSize
	if hop <= 0 {
		hop = d.WindowSize
	}
	if samples < d.WindowSize {
		return 0
	}
	return (samples-d.WindowSize)/hop + 1
}

func formatResult(r tuner.Result, all bool) (string, bool) {
	at := float64(r.FramePosition) / float64(r.SampleRate)
	if !r.Updated {
		if !all {
			return "", false
		}
		return fmt.Sprintf("%8.3fs  %-20s", at, r.RejectReason), true
	}
	if !r.HasTarget {
		return fmt.Sprintf("%8.3fs  %9.3f Hz  %-6s", at, r.Frequency, "-"), true
	}
	t := r.Target
	marker := ""
	if t.OnString {
		marker = "*"
	}
	return fmt.Sprintf("%8.3fs  %9.3f Hz  %-6s%1s %+7.2f cents  %s",
		at, r.Frequency, t.Note, marker, t.Cents, t.State), true
}
