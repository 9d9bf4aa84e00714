// Package main provides the CLI entry point for optiflow.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/optiflow/pkg/adapters/filesink"
	"github.com/user/optiflow/pkg/adapters/imagecodec"
	"github.com/user/optiflow/pkg/adapters/logger"
	"github.com/user/optiflow/pkg/adapters/nullsink"
	"github.com/user/optiflow/pkg/adapters/osfilesystem"
	"github.com/user/optiflow/pkg/config"
	"github.com/user/optiflow/pkg/orchestrator"
	"github.com/user/optiflow/pkg/ports"
	"github.com/user/optiflow/pkg/project"
	"github.com/user/optiflow/pkg/sequencer"
	"github.com/user/optiflow/pkg/stages/estimate"
	"github.com/user/optiflow/pkg/stages/synthesize"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:  "optiflow",
		Usage: l10n.T("Interpolate inbetween animation frames with optical flow"),
		Commands: []*cli.Command{
			interpolateCommand(),
			renderCommand(),
			versionCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file")},
		&cli.IntFlag{Name: "workers", Usage: l10n.T("Worker pool size (0 = all CPUs)")},
		&cli.IntFlag{Name: "levels", Usage: l10n.T("Pyramid levels (0 = auto)")},
		&cli.IntFlag{Name: "iterations", Usage: l10n.T("Refinement iterations per level")},
		&cli.IntFlag{Name: "window", Usage: l10n.T("Least-squares window radius in pixels")},
		&cli.Float64Flag{Name: "damping", Usage: l10n.T("Regularization for textureless regions")},
		&cli.BoolFlag{Name: "symmetric", Usage: l10n.T("Estimate the reverse field for backward warping")},
		&cli.IntFlag{Name: "max-dimension", Usage: l10n.T("Shrink keyframes larger than this before estimation (0 = off)")},
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Save intermediate artifacts")},
		&cli.StringFlag{Name: "debug-dir", Value: "./debug", Usage: l10n.T("Directory for debug artifacts")},
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info", Usage: l10n.T("Log level (debug, info, warn, error)")},
		&cli.StringFlag{Name: "log-file", Usage: l10n.T("Write rotating JSON logs to this file")},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output")},
	}
}

func interpolateCommand() *cli.Command {
	flags := append([]cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: ".", Usage: l10n.T("Output directory for synthesized frames")},
		&cli.IntFlag{Name: "frames", Aliases: []string{"n"}, Value: 1, Usage: l10n.T("Number of inbetween frames to synthesize")},
		&cli.StringFlag{Name: "format", Value: "png", Usage: l10n.T("Frame format (png or jpg)")},
		&cli.IntFlag{Name: "quality", Value: 90, Usage: l10n.T("JPEG quality (1-100)")},
	}, commonFlags()...)

	return &cli.Command{
		Name:      "interpolate",
		Usage:     l10n.T("Synthesize inbetween frames between two keyframe images"),
		ArgsUsage: "SOURCE TARGET",
		Flags:     flags,
		Action: func(cCtx *cli.Context) error {
			if cCtx.NArg() != 2 {
				return cli.Exit(l10n.T("expected exactly two keyframe image paths"), 2)
			}

			cfg, err := resolveConfig(cCtx)
			if err != nil {
				return err
			}
			cfg.Output.Dir = cCtx.String("output")
			cfg.Output.Format = cCtx.String("format")
			if cCtx.IsSet("quality") {
				cfg.Output.Quality = cCtx.Int("quality")
			}

			ctx, log := setup(cCtx)
			orch := buildOrchestrator(cfg, cCtx.Bool("debug"), cCtx.String("debug-dir"), log)

			_, err = orch.Run(ctx, orchestrator.Config{
				SourcePath:   cCtx.Args().Get(0),
				TargetPath:   cCtx.Args().Get(1),
				FrameCount:   cCtx.Int("frames"),
				Params:       cfg.Flow.ToParams(),
				MaxDimension: cfg.MaxDimension,
				OutputDir:    cfg.Output.Dir,
				Pattern:      cfg.Output.Pattern,
				Format:       ports.ParseImageFormat(cfg.Output.Format),
				Quality:      cfg.Output.Quality,
			})
			if sequencer.IsCancelled(err) {
				return cli.Exit(l10n.T("cancelled"), 130)
			}
			return err
		},
	}
}

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     l10n.T("Render every keyframe pair of a project file"),
		ArgsUsage: "PROJECT",
		Flags:     commonFlags(),
		Action: func(cCtx *cli.Context) error {
			if cCtx.NArg() != 1 {
				return cli.Exit(l10n.T("expected a project file path"), 2)
			}

			cfg, err := resolveConfig(cCtx)
			if err != nil {
				return err
			}

			proj, err := project.Load(cCtx.Args().First())
			if err != nil {
				return fmt.Errorf("load project: %w", err)
			}

			ctx, log := setup(cCtx)
			orch := buildOrchestrator(cfg, cCtx.Bool("debug"), cCtx.String("debug-dir"), log)

			for i, pair := range proj.Pairs {
				flowCfg := cfg.Flow
				if pair.Flow != nil {
					flowCfg = *pair.Flow
				}

				log.Info(l10n.F("Rendering pair %d of %d", i+1, len(proj.Pairs)))
				_, err := orch.Run(ctx, orchestrator.Config{
					SourcePath:   pair.Source,
					TargetPath:   pair.Target,
					FrameCount:   pair.Frames,
					Params:       flowCfg.ToParams(),
					MaxDimension: cfg.MaxDimension,
					OutputDir:    fmt.Sprintf("%s/pair-%03d", proj.Output.Dir, i+1),
					Pattern:      proj.Output.Pattern,
					Format:       ports.ParseImageFormat(proj.Output.Format),
					Quality:      proj.Output.Quality,
				})
				if err != nil {
					if sequencer.IsCancelled(err) {
						return cli.Exit(l10n.T("cancelled"), 130)
					}
					return fmt.Errorf("pair %d: %w", i+1, err)
				}
			}
			return nil
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: l10n.T("Show version information"),
		Action: func(cCtx *cli.Context) error {
			fmt.Println(l10n.F("optiflow version %s", version))
			return nil
		},
	}
}

// resolveConfig layers defaults, the optional config file, environment
// overrides, and CLI flags, in that order.
func resolveConfig(cCtx *cli.Context) (config.Config, error) {
	cfg := config.Defaults()

	if path := cCtx.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("apply environment: %w", err)
	}

	if cCtx.IsSet("workers") {
		cfg.Workers = cCtx.Int("workers")
	}
	if cCtx.IsSet("levels") {
		cfg.Flow.PyramidLevels = cCtx.Int("levels")
	}
	if cCtx.IsSet("iterations") {
		cfg.Flow.Iterations = cCtx.Int("iterations")
	}
	if cCtx.IsSet("window") {
		cfg.Flow.WindowRadius = cCtx.Int("window")
	}
	if cCtx.IsSet("damping") {
		cfg.Flow.Damping = cCtx.Float64("damping")
	}
	if cCtx.IsSet("symmetric") {
		cfg.Flow.Symmetric = cCtx.Bool("symmetric")
	}
	if cCtx.IsSet("max-dimension") {
		cfg.MaxDimension = cCtx.Int("max-dimension")
	}
	if cCtx.IsSet("log-level") {
		cfg.LogLevel = cCtx.String("log-level")
	}
	if cCtx.IsSet("log-file") {
		cfg.LogFile = cCtx.String("log-file")
	}

	return cfg, nil
}

// setup builds the logger and a context cancelled by SIGINT/SIGTERM.
func setup(cCtx *cli.Context) (context.Context, ports.Logger) {
	var log ports.Logger
	level := ports.ParseLogLevel(cCtx.String("log-level"))
	switch {
	case cCtx.Bool("quiet"):
		log = logger.NewNoop()
	case cCtx.String("log-file") != "":
		log = logger.NewFile(cCtx.String("log-file"), level)
	default:
		log = logger.NewConsole(level)
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn(l10n.T("Interrupted, shutting down..."))
		cancel()
	}()

	return ctx, log
}

// buildSink returns a file sink rooted at debugDir, or the null sink
// when debugging is off or the directory cannot be created.
func buildSink(fs ports.FileSystem, codec ports.ImageCodec, debug bool, debugDir string, log ports.Logger) ports.DebugSink {
	if !debug {
		return nullsink.New()
	}
	if err := fs.MkdirAll(debugDir); err != nil {
		log.Warn(l10n.F("Cannot create debug directory %s, debug output disabled: %s", debugDir, err))
		return nullsink.New()
	}
	return filesink.New(debugDir, fs, codec)
}

// buildOrchestrator wires the adapters, stages and sequencer.
func buildOrchestrator(cfg config.Config, debug bool, debugDir string, log ports.Logger) *orchestrator.Orchestrator {
	fs := osfilesystem.New()
	codec := imagecodec.New()
	sink := buildSink(fs, codec, debug, debugDir, log)

	estimateStage := estimate.NewStage(sink, log, cfg.Workers)
	synthesizeStage := synthesize.NewStage(sink, log, cfg.Workers)
	seq := sequencer.New(estimateStage, synthesizeStage, log, cfg.MaxPixels)

	return orchestrator.New(seq, fs, codec, sink, log)
}
