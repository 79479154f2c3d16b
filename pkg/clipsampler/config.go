package clipsampler

import (
	"github.com/user/clipsampler/pkg/config"
	"github.com/user/clipsampler/pkg/sampler"
	"github.com/user/clipsampler/pkg/transform"
)

// ConfigBuilder provides a fluent interface for building config.Config.
type ConfigBuilder struct {
	config config.Config
}

// NewConfigBuilder creates a new ConfigBuilder with default values.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: config.Defaults(),
	}
}

// NewConfigBuilderFrom starts from an existing configuration, such as one loaded from a file.
func NewConfigBuilderFrom(cfg config.Config) *ConfigBuilder {
	return &ConfigBuilder{config: cfg}
}

// Build returns the built Config.
func (b *ConfigBuilder) Build() config.Config {
	return b.config
}

// WithSize sets the output frame size.
func (b *ConfigBuilder) WithSize(width, height int) *ConfigBuilder {
	b.config.Video.Width = width
	b.config.Video.Height = height
	return b
}

// WithStream selects the video stream. Use sampler.BestStream for the default stream.
func (b *ConfigBuilder) WithStream(stream int) *ConfigBuilder {
	b.config.Video.Stream = stream
	return b
}

// WithInterpolation sets the resize kernel.
func (b *ConfigBuilder) WithInterpolation(interp transform.Interpolation) *ConfigBuilder {
	b.config.Video.Interpolation = string(interp)
	return b
}

// WithIndexBased positions clips by frame index.
func (b *ConfigBuilder) WithIndexBased() *ConfigBuilder {
	b.config.Sampler.Mode = sampler.IndexBased{}.String()
	b.config.Sampler.FrameRate = 0
	return b
}

// WithTimeBased positions clips by timestamp. A frameRate of 0 keeps the native rate.
func (b *ConfigBuilder) WithTimeBased(frameRate float64) *ConfigBuilder {
	b.config.Sampler.Mode = sampler.TimeBased{}.String()
	b.config.Sampler.FrameRate = frameRate
	return b
}

// WithUniform spreads clips evenly over the video.
func (b *ConfigBuilder) WithUniform() *ConfigBuilder {
	b.config.Sampler.Type = sampler.Uniform{}.String()
	return b
}

// WithRandom draws clip starts at random. Video n of a run uses seed+n.
func (b *ConfigBuilder) WithRandom(seed uint64) *ConfigBuilder {
	b.config.Sampler.Type = sampler.Random{}.String()
	b.config.Sampler.Seed = seed
	return b
}

// WithClips sets the number of clips per video and frames per clip.
func (b *ConfigBuilder) WithClips(clipsPerVideo, framesPerClip int) *ConfigBuilder {
	b.config.Sampler.ClipsPerVideo = clipsPerVideo
	b.config.Sampler.FramesPerClip = framesPerClip
	return b
}

// WithWorkers sets the number of videos sampled concurrently (0 = number of CPUs).
func (b *ConfigBuilder) WithWorkers(workers int) *ConfigBuilder {
	b.config.Workers = workers
	return b
}

// WithFFmpegPath sets a custom ffmpeg binary.
func (b *ConfigBuilder) WithFFmpegPath(path string) *ConfigBuilder {
	b.config.FFmpegPath = path
	return b
}

// WithDebug enables debug output into dir.
func (b *ConfigBuilder) WithDebug(dir string) *ConfigBuilder {
	b.config.Debug = true
	b.config.DebugDir = dir
	return b
}

// WithSummary writes a Markdown run summary to path.
func (b *ConfigBuilder) WithSummary(path string) *ConfigBuilder {
	b.config.Summary = path
	return b
}

// WithLogging sets the log level and format.
func (b *ConfigBuilder) WithLogging(level, format string) *ConfigBuilder {
	b.config.LogLevel = level
	b.config.LogFormat = format
	return b
}
