// Package clipsampler wires the decoder, sampler and debug adapters into a ready-to-use runner.
package clipsampler

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/user/clipsampler/pkg/adapters/filesink"
	"github.com/user/clipsampler/pkg/adapters/ggrenderer"
	"github.com/user/clipsampler/pkg/adapters/logger"
	"github.com/user/clipsampler/pkg/adapters/mp4demux"
	"github.com/user/clipsampler/pkg/adapters/nullsink"
	"github.com/user/clipsampler/pkg/adapters/osfilesystem"
	"github.com/user/clipsampler/pkg/adapters/smartdecoder"
	"github.com/user/clipsampler/pkg/config"
	"github.com/user/clipsampler/pkg/contactsheet"
	"github.com/user/clipsampler/pkg/decoder"
	"github.com/user/clipsampler/pkg/frame"
	"github.com/user/clipsampler/pkg/orchestrator"
	"github.com/user/clipsampler/pkg/ports"
	"github.com/user/clipsampler/pkg/sampler"
	"github.com/user/clipsampler/pkg/summarizer"
	"github.com/user/clipsampler/pkg/transform"
)

// Runner samples videos with the default adapters.
type Runner struct {
	config  config.Config
	logger  ports.Logger
	fs      ports.FileSystem
	opts    decoder.Options
	sampler *sampler.Sampler
	orch    *orchestrator.Orchestrator
}

// Option configures a Runner.
type Option func(*runnerOptions)

type runnerOptions struct {
	logger   ports.Logger
	fs       ports.FileSystem
	decoders ports.DecoderFactory
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(l ports.Logger) Option {
	return func(o *runnerOptions) {
		o.logger = l
	}
}

// WithFileSystem replaces the OS filesystem used for debug output and summaries.
func WithFileSystem(fs ports.FileSystem) Option {
	return func(o *runnerOptions) {
		o.fs = fs
	}
}

// WithDecoderFactory replaces the ffmpeg-backed decoder factory.
func WithDecoderFactory(f ports.DecoderFactory) Option {
	return func(o *runnerOptions) {
		o.decoders = f
	}
}

// New validates cfg and creates a Runner.
func New(cfg config.Config, options ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o runnerOptions
	for _, opt := range options {
		opt(&o)
	}
	if o.logger == nil {
		l, err := NewLogger(cfg, os.Stdout)
		if err != nil {
			return nil, err
		}
		o.logger = l
	}
	if o.fs == nil {
		o.fs = osfilesystem.New()
	}
	if o.decoders == nil {
		o.decoders = smartdecoder.New(smartdecoder.Options{FFmpegPath: cfg.FFmpegPath})
	}

	renderer := ggrenderer.New()
	var sink ports.DebugSink
	if cfg.Debug {
		if err := o.fs.MkdirAll(cfg.DebugDir); err != nil {
			return nil, fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.DebugDir, o.fs, renderer)
	} else {
		sink = nullsink.New()
	}

	opts := decoder.Options{
		Demuxer:  mp4demux.New(),
		Decoders: o.decoders,
		Logger:   o.logger,
	}
	s := sampler.New(opts, o.logger,
		sampler.WithTransformer(transform.New(transform.Interpolation(cfg.Video.Interpolation))),
		sampler.WithSink(sink),
	)
	orch := orchestrator.New(
		sampler.NewStage(s),
		contactsheet.NewStage(renderer, o.logger),
		sink,
		o.logger,
	)

	return &Runner{
		config:  cfg,
		logger:  o.logger,
		fs:      o.fs,
		opts:    opts,
		sampler: s,
		orch:    orch,
	}, nil
}

// NewLogger builds the logger selected by cfg.LogLevel and cfg.LogFormat.
func NewLogger(cfg config.Config, w io.Writer) (ports.Logger, error) {
	level := ports.ParseLogLevel(cfg.LogLevel)
	switch cfg.LogFormat {
	case "", config.LogFormatConsole:
		if level == ports.LevelQuiet {
			return logger.NewNoop(), nil
		}
		if w == os.Stdout {
			return logger.NewConsole(level), nil
		}
		return logger.NewConsoleWriter(level, w), nil
	default:
		l, err := logger.NewLogrus(level, cfg.LogFormat, w)
		if err != nil {
			return nil, err
		}
		return l, nil
	}
}

// Config returns the validated configuration.
func (r *Runner) Config() config.Config {
	return r.config
}

// Logger returns the logger the runner reports to.
func (r *Runner) Logger() ports.Logger {
	return r.logger
}

// Run samples every video in paths. See orchestrator.Orchestrator.Run.
func (r *Runner) Run(ctx context.Context, paths []string) (orchestrator.RunResult, error) {
	return r.orch.Run(ctx, r.config.ToOrchestratorConfig(paths))
}

// Sample samples a single video as the first video of a run.
func (r *Runner) Sample(path string) ([]frame.Clip, error) {
	cfg, err := r.config.ToSamplerConfig(0)
	if err != nil {
		return nil, err
	}
	return r.sampler.Sample(sampler.FromFile(path), r.config.ToVideoArgs(), cfg)
}

// Probe opens path and returns its container metadata.
func (r *Runner) Probe(path string) (decoder.ContainerInfo, error) {
	h, err := decoder.OpenFile(path, r.opts)
	if err != nil {
		return decoder.ContainerInfo{}, err
	}
	defer h.Close()
	return h.ContainerInfo(), nil
}

// Summarize builds the run summary of result.
func (r *Runner) Summarize(result orchestrator.RunResult) *summarizer.Summary {
	c := r.config
	return summarizer.NewBuilder().
		WithSettings(summarizer.Settings{
			Mode:          c.Sampler.Mode,
			Sampler:       c.Sampler.Type,
			Seed:          c.Sampler.Seed,
			FrameRate:     c.Sampler.FrameRate,
			ClipsPerVideo: c.Sampler.ClipsPerVideo,
			FramesPerClip: c.Sampler.FramesPerClip,
			Width:         c.Video.Width,
			Height:        c.Video.Height,
			Interpolation: c.Video.Interpolation,
		}).
		WithRunResult(result).
		Build()
}

// WriteSummary writes the Markdown summary of result to path.
func (r *Runner) WriteSummary(path string, result orchestrator.RunResult) error {
	w := summarizer.NewWriter(summarizer.NewMarkdownFormatter(), r.fs)
	return w.Write(path, r.Summarize(result))
}
