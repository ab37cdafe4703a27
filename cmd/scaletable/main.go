package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli"

	"github.com/RyanBlaney/sonido-tuner/logging"
	"github.com/RyanBlaney/sonido-tuner/music"
	"github.com/RyanBlaney/sonido-tuner/tuner/config"
)

var version string

func init() {
	if version == "" {
		version = "unknown"
	}
}

var debugFlag = cli.BoolFlag{
	Name:  "debug, d",
	Usage: `Show debug messages`,
}

var temperamentsCmd = cli.Command{
	Name:    "temperaments",
	Aliases: []string{"ls"},
	Usage:   "Lists the predefined temperaments",
	Action: func(ctx *cli.Context) error {
		for _, key := range music.PredefinedKeys() {
			t, err := music.Predefined(key)
			if err != nil {
				return cli.NewExitError(err, 1)
			}
			fmt.Printf("%-16s %-6s %3d  %s\n", key, t.Abbreviation(), t.Size(), t.Name())
		}
		return nil
	},
}

var centsCmd = cli.Command{
	Name:      "cents",
	Aliases:   []string{"c"},
	Usage:     "Prints the steps of a temperament in cents",
	ArgsUsage: "<temperament>",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "root, r",
			Usage: `Root note used for naming the steps`,
		},
		debugFlag,
	},
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() < 1 {
			cli.ShowCommandHelp(ctx, "cents")
			os.Exit(1)
		}
		setupLogging(ctx)
		t, err := music.Predefined(ctx.Args().First())
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		var root *music.MusicalNote
		if s := ctx.String("root"); s != "" {
			n, err := music.ParseNote(s)
			if err != nil {
				return cli.NewExitError(err, 1)
			}
			root = &n
		}
		names, err := t.NoteNames(root)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		if ctx.Bool("debug") {
			spew.Fdump(os.Stderr, t)
		}

		cents := t.Cents()
		ratios, hasRatios := t.RationalNumbers()
		notes := names.Notes()
		for i, c := range cents {
			name := "octave"
			if i < len(notes) {
				name = notes[i].String()
			}
			line := fmt.Sprintf("%3d  %-8s %9.3f", i, name, c)
			if hasRatios {
				line += "  " + ratios[i].String()
			}
			fmt.Println(line)
		}
		return nil
	},
}

var tableCmd = cli.Command{
	Name:    "table",
	Aliases: []string{"t"},
	Usage:   "Prints the frequency table of a scale",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: `JSON configuration file`,
		},
		cli.StringFlag{
			Name:  "instrument, i",
			Usage: `Instrument preset (` + strings.Join(config.Instruments(), ", ") + `)`,
		},
		cli.StringFlag{
			Name:  "temperament, t",
			Usage: `Predefined temperament key`,
		},
		cli.Float64Flag{
			Name:  "reference, f",
			Usage: `Reference frequency in Hz`,
		},
		cli.StringFlag{
			Name:  "reference-note, n",
			Usage: `Note tuned to the reference frequency`,
		},
		cli.StringFlag{
			Name:  "root, r",
			Usage: `Root note of the temperament`,
		},
		cli.Float64Flag{
			Name:  "min",
			Usage: `Lowest frequency in Hz`,
		},
		cli.Float64Flag{
			Name:  "max",
			Usage: `Highest frequency in Hz`,
		},
		debugFlag,
	},
	Action: func(ctx *cli.Context) error {
		setupLogging(ctx)
		cfg, err := tableConfig(ctx)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		scale, err := cfg.BuildScale()
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		if ctx.Bool("debug") {
			spew.Fdump(os.Stderr, cfg.Scale)
		}

		lo, hi := scale.DegreeRange()
		logging.Debug("scale built", logging.Fields{
			"temperament": scale.Temperament().ID(),
			"reference":   scale.ReferenceNote().String(),
			"degrees":     hi - lo + 1,
		})
		for d := lo; d <= hi; d++ {
			f, _ := scale.Frequency(d)
			fmt.Printf("%5d  %-8s %11.4f Hz\n", d, scale.IndexToNote(d), f)
		}
		return nil
	},
}

func tableConfig(ctx *cli.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case ctx.String("config") != "":
		cfg, err = config.LoadFile(ctx.String("config"))
	case ctx.String("instrument") != "":
		cfg, err = config.ConfigForInstrument(ctx.String("instrument"))
	default:
		cfg = config.DefaultConfig()
	}
	if err != nil {
		return nil, err
	}

	s := &cfg.Scale
	if key := ctx.String("temperament"); key != "" {
		s.Temperament = config.TemperamentConfig{Kind: config.KindPredefined, Key: key}
	}
	if f := ctx.Float64("reference"); f > 0 {
		s.ReferenceFrequency = f
	}
	if f := ctx.Float64("min"); f > 0 {
		s.MinFrequency = f
	}
	if f := ctx.Float64("max"); f > 0 {
		s.MaxFrequency = f
	}
	for flag, dst := range map[string]**music.MusicalNote{
		"root":           &s.RootNote,
		"reference-note": &s.ReferenceNote,
	} {
		if v := ctx.String(flag); v != "" {
			n, err := music.ParseNote(v)
			if err != nil {
				return nil, err
			}
			*dst = &n
		}
	}
	return cfg, cfg.Validate()
}

func setupLogging(ctx *cli.Context) {
	logger := logging.NewDefaultLogger()
	if ctx.Bool("debug") {
		logger.SetLevel(logging.DebugLevel)
	}
	logging.SetGlobalLogger(logger)
}

func main() {
	app := cli.NewApp()
	app.Name = "scaletable"
	app.Version = version
	app.Usage = "Inspects temperaments and the frequency tables built from them"
	app.HelpName = "scaletable"

	app.Commands = []cli.Command{
		temperamentsCmd,
		centsCmd,
		tableCmd,
	}

	app.Action = func(ctx *cli.Context) error {
		cli.ShowAppHelp(ctx)
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
