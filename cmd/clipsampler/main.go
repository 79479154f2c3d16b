// Package main provides the CLI entry point for clipsampler.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/user/clipsampler/pkg/clipsampler"
	"github.com/user/clipsampler/pkg/config"
	"github.com/user/clipsampler/pkg/transform"
)

var version = "dev"

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:        "clipsampler",
		Usage:       l10n.T("Sample fixed-size clips of frames from videos"),
		Description: l10n.T("clipsampler decodes videos at random access and extracts clips of resized RGB frames."),
		Version:     version,
		Writer:      stdout,
		ErrWriter:   stderr,
		Commands: []*cli.Command{
			sampleCommand(),
			probeCommand(),
			versionCommand(),
		},
		// Exit codes are handled in main so tests can run the app in-process.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func exitCode(err error) int {
	var coder cli.ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}

func sampleCommand() *cli.Command {
	// Flag categories
	var (
		catConfig   = l10n.T("Configuration")
		catVideo    = l10n.T("Frame Geometry")
		catSampling = l10n.T("Sampling")
		catDecoder  = l10n.T("Decoder")
		catDebug    = l10n.T("Debug")
		catLogging  = l10n.T("Logging")
	)

	return &cli.Command{
		Name:        "sample",
		Usage:       l10n.T("Sample clips from one or more videos"),
		Description: l10n.T("Sample clips from every video and optionally write debug images and a summary."),
		ArgsUsage:   "VIDEO [VIDEO...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file"), Category: catConfig},

			&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Usage: l10n.T("Output frame width (default: 224)"), Category: catVideo},
			&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Usage: l10n.T("Output frame height (default: 224)"), Category: catVideo},
			&cli.IntFlag{Name: "stream", Usage: l10n.T("Video stream index (-1 = best stream)"), Category: catVideo},
			&cli.StringFlag{Name: "interpolation", Usage: l10n.T("Resize kernel (nearest, approx-bilinear, bilinear, catmull-rom)"), Category: catVideo},

			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Usage: l10n.T("Sampling mode (index-based, time-based)"), Category: catSampling},
			&cli.StringFlag{Name: "sampler", Aliases: []string{"s"}, Usage: l10n.T("Clip distribution (uniform, random)"), Category: catSampling},
			&cli.Uint64Flag{Name: "seed", Usage: l10n.T("Random seed; video n uses seed+n"), Category: catSampling},
			&cli.Float64Flag{Name: "frame-rate", Usage: l10n.T("Time-based target frame rate (0 = native rate)"), Category: catSampling},
			&cli.IntFlag{Name: "clips", Usage: l10n.T("Clips per video"), Category: catSampling},
			&cli.IntFlag{Name: "frames", Usage: l10n.T("Frames per clip"), Category: catSampling},
			&cli.IntFlag{Name: "workers", Aliases: []string{"j"}, Usage: l10n.T("Videos sampled concurrently (0 = number of CPUs)"), Category: catSampling},

			&cli.StringFlag{Name: "ffmpeg-path", Usage: l10n.T("Path to ffmpeg executable (falls back to FFMPEG_PATH env, then PATH)"), Category: catDecoder},

			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Enable debug output"), Category: catDebug},
			&cli.StringFlag{Name: "debug-dir", Usage: l10n.T("Directory for debug output"), Category: catDebug},
			&cli.StringFlag{Name: "summary", Usage: l10n.T("Output run summary to file (Markdown format)"), Category: catDebug},

			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)"), Category: catLogging},
			&cli.StringFlag{Name: "log-format", Usage: l10n.T("Log format (console, text, json)"), Category: catLogging},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: l10n.T("Suppress all log output"), Category: catLogging},
		},
		Action: runSample,
	}
}

func runSample(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit(l10n.T("At least one video argument is required"), 2)
	}

	cfg, err := buildConfig(c)
	if err != nil {
		return cli.Exit(l10n.F("Failed to load configuration: %s", err), 2)
	}

	runner, err := clipsampler.New(cfg)
	if err != nil {
		return cli.Exit(l10n.F("Failed to load configuration: %s", err), 2)
	}
	log := runner.Logger()

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn(l10n.T("Interrupted, shutting down..."))
			cancel()
		case <-ctx.Done():
		}
	}()

	result, runErr := runner.Run(ctx, c.Args().Slice())

	if cfg.Summary != "" {
		if err := runner.WriteSummary(cfg.Summary, result); err != nil {
			log.Error(l10n.F("Failed to write summary: %s", err))
		} else {
			log.Info(l10n.F("Summary saved to %s", cfg.Summary))
		}
	}

	if runErr != nil {
		return runErr
	}
	if result.Failed > 0 {
		return cli.Exit(l10n.F("%d of %d videos failed", result.Failed, len(result.Videos)), 1)
	}
	return nil
}

// buildConfig loads the configuration file, if any, and applies CLI overrides.
func buildConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	builder := clipsampler.NewConfigBuilderFrom(cfg)

	// Apply frame geometry
	width, height := cfg.Video.Width, cfg.Video.Height
	if c.IsSet("width") {
		width = c.Int("width")
	}
	if c.IsSet("height") {
		height = c.Int("height")
	}
	builder.WithSize(width, height)
	if c.IsSet("stream") {
		builder.WithStream(c.Int("stream"))
	}
	if c.IsSet("interpolation") {
		builder.WithInterpolation(transform.Interpolation(c.String("interpolation")))
	}

	// Apply sampling policy
	clips, frames := cfg.Sampler.ClipsPerVideo, cfg.Sampler.FramesPerClip
	if c.IsSet("clips") {
		clips = c.Int("clips")
	}
	if c.IsSet("frames") {
		frames = c.Int("frames")
	}
	builder.WithClips(clips, frames)
	if c.IsSet("workers") {
		builder.WithWorkers(c.Int("workers"))
	}

	// Apply decoder, debug and summary options
	if c.IsSet("ffmpeg-path") {
		builder.WithFFmpegPath(c.String("ffmpeg-path"))
	}
	if c.Bool("debug") || cfg.Debug {
		dir := cfg.DebugDir
		if c.IsSet("debug-dir") {
			dir = c.String("debug-dir")
		}
		builder.WithDebug(dir)
	}
	if c.IsSet("summary") {
		builder.WithSummary(c.String("summary"))
	}

	// Apply logging
	level, format := cfg.LogLevel, cfg.LogFormat
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		format = c.String("log-format")
	}
	if c.Bool("quiet") {
		level = "quiet"
	}
	builder.WithLogging(level, format)

	cfg = builder.Build()

	// Mode and sampler names are validated as given.
	if c.IsSet("mode") {
		cfg.Sampler.Mode = c.String("mode")
	}
	if c.IsSet("sampler") {
		cfg.Sampler.Type = c.String("sampler")
	}
	if c.IsSet("seed") {
		cfg.Sampler.Seed = c.Uint64("seed")
	}
	if c.IsSet("frame-rate") {
		cfg.Sampler.FrameRate = c.Float64("frame-rate")
	}
	return cfg, nil
}

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:        "probe",
		Usage:       l10n.T("Show container and stream metadata of a video"),
		Description: l10n.T("Open a video and print its streams without decoding frames."),
		ArgsUsage:   "VIDEO",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: l10n.T("Output format (json, yaml)")},
			&cli.StringFlag{Name: "ffmpeg-path", Usage: l10n.T("Path to ffmpeg executable (falls back to FFMPEG_PATH env, then PATH)")},
		},
		Action: runProbe,
	}
}

func runProbe(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit(l10n.T("Exactly one video argument is required"), 2)
	}

	cfg := clipsampler.NewConfigBuilder().
		WithFFmpegPath(c.String("ffmpeg-path")).
		WithLogging("quiet", config.LogFormatConsole).
		Build()
	runner, err := clipsampler.New(cfg)
	if err != nil {
		return err
	}

	info, err := runner.Probe(c.Args().First())
	if err != nil {
		return err
	}

	w := c.App.Writer
	switch c.String("format") {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(info); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	default:
		return cli.Exit(l10n.F("Unknown output format %q", c.String("format")), 2)
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: l10n.T("Show version information"),
		Action: func(c *cli.Context) error {
			fmt.Fprintln(c.App.Writer, l10n.F("clipsampler version %s (%s/%s)", version, runtime.GOOS, runtime.GOARCH))
			return nil
		},
	}
}
