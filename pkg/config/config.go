// Package config provides configuration loading and management.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/user/clipsampler/pkg/adapters/logger"
	"github.com/user/clipsampler/pkg/orchestrator"
	"github.com/user/clipsampler/pkg/pipeline"
	"github.com/user/clipsampler/pkg/ports"
	"github.com/user/clipsampler/pkg/sampler"
	"github.com/user/clipsampler/pkg/transform"
	"gopkg.in/yaml.v3"
)

// LogFormatConsole selects the colored console logger. logger.FormatText and
// logger.FormatJSON select logrus.
const LogFormatConsole = "console"

// Config represents the full configuration for clipsampler.
type Config struct {
	Video   VideoConfig   `yaml:"video"`
	Sampler SamplerConfig `yaml:"sampler"`

	// Workers is the number of videos sampled concurrently (0 = number of CPUs).
	Workers    int    `yaml:"workers"`
	FFmpegPath string `yaml:"ffmpeg_path"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`

	// Summary is the path of the Markdown run summary. Empty disables it.
	Summary string `yaml:"summary"`
}

// VideoConfig represents the output geometry of sampled frames.
type VideoConfig struct {
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	Stream        int    `yaml:"stream"`
	Interpolation string `yaml:"interpolation"`
}

// SamplerConfig represents the sampling policy.
type SamplerConfig struct {
	Mode          string  `yaml:"mode"`
	Type          string  `yaml:"type"`
	ClipsPerVideo int     `yaml:"clips_per_video"`
	FramesPerClip int     `yaml:"frames_per_clip"`
	Seed          uint64  `yaml:"seed"`
	FrameRate     float64 `yaml:"frame_rate"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	input := pipeline.DefaultSampleInput()
	return Config{
		Video: VideoConfig{
			Width:         input.Width,
			Height:        input.Height,
			Stream:        sampler.BestStream,
			Interpolation: string(transform.DefaultInterpolation),
		},
		Sampler: SamplerConfig{
			Mode:          input.Mode,
			Type:          input.SamplerType,
			ClipsPerVideo: input.ClipsPerVideo,
			FramesPerClip: input.FramesPerClip,
		},
		Workers:   runtime.NumCPU(),
		LogLevel:  ports.LevelInfo.String(),
		LogFormat: LogFormatConsole,
		DebugDir:  "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults(), err
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Defaults()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks the whole configuration and reports every problem at once.
func (c Config) Validate() error {
	var problems []string

	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		problems = append(problems, fmt.Sprintf("video size must be positive, got %dx%d", c.Video.Width, c.Video.Height))
	}
	if c.Video.Stream < sampler.BestStream {
		problems = append(problems, fmt.Sprintf("stream must be -1 (best) or a stream index, got %d", c.Video.Stream))
	}
	if !transform.IsValidInterpolation(c.Video.Interpolation) {
		problems = append(problems, fmt.Sprintf("invalid interpolation '%s', must be one of: %s",
			c.Video.Interpolation, strings.Join(interpolationNames(), ", ")))
	}

	if _, err := sampler.ParseMode(c.Sampler.Mode, c.Sampler.FrameRate); err != nil {
		problems = append(problems, err.Error())
	}
	if _, err := sampler.ParseDistribution(c.Sampler.Type, c.Sampler.Seed); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Sampler.ClipsPerVideo <= 0 {
		problems = append(problems, "clips_per_video must be positive")
	}
	if c.Sampler.FramesPerClip <= 0 {
		problems = append(problems, "frames_per_clip must be positive")
	}
	if c.Sampler.FrameRate < 0 {
		problems = append(problems, "frame_rate cannot be negative (use 0 for the native rate)")
	}

	if c.Workers < 0 {
		problems = append(problems, "workers cannot be negative (use 0 for auto-detect)")
	}
	if !ports.IsValidLogLevel(c.LogLevel) {
		problems = append(problems, fmt.Sprintf("invalid log_level '%s'", c.LogLevel))
	}
	if c.LogFormat != LogFormatConsole && !logger.IsValidFormat(c.LogFormat) {
		problems = append(problems, fmt.Sprintf("invalid log_format '%s', must be one of: %s, %s, %s",
			c.LogFormat, LogFormatConsole, logger.FormatText, logger.FormatJSON))
	}
	if c.Debug && c.DebugDir == "" {
		problems = append(problems, "debug_dir is required when debug is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: configuration validation failed:\n  - %s", sampler.ErrConfig, strings.Join(problems, "\n  - "))
	}
	return nil
}

func interpolationNames() []string {
	var names []string
	for _, i := range transform.Interpolations() {
		names = append(names, string(i))
	}
	return names
}

// Seed returns the random seed of the video at ordinal. Each video gets its own
// stream so results do not depend on which worker samples it.
func (c Config) Seed(ordinal int) uint64 {
	return c.Sampler.Seed + uint64(ordinal)
}

// ToSamplerConfig builds the sampling policy of the video at ordinal.
func (c Config) ToSamplerConfig(ordinal int) (sampler.Config, error) {
	mode, err := sampler.ParseMode(c.Sampler.Mode, c.Sampler.FrameRate)
	if err != nil {
		return sampler.Config{}, err
	}
	dist, err := sampler.ParseDistribution(c.Sampler.Type, c.Seed(ordinal))
	if err != nil {
		return sampler.Config{}, err
	}
	return sampler.Config{
		Mode:          mode,
		Distribution:  dist,
		ClipsPerVideo: c.Sampler.ClipsPerVideo,
		FramesPerClip: c.Sampler.FramesPerClip,
	}, nil
}

// ToVideoArgs returns the per-video decoding arguments.
func (c Config) ToVideoArgs() sampler.VideoArgs {
	return sampler.VideoArgs{Width: c.Video.Width, Height: c.Video.Height, Stream: c.Video.Stream}
}

// SampleInput describes the video at path as the ordinal-th job of a run.
func (c Config) SampleInput(path string, ordinal int) pipeline.SampleInput {
	return pipeline.SampleInput{
		Name:          path,
		Path:          path,
		Width:         c.Video.Width,
		Height:        c.Video.Height,
		Stream:        c.Video.Stream,
		Mode:          c.Sampler.Mode,
		SamplerType:   c.Sampler.Type,
		Seed:          c.Seed(ordinal),
		FrameRate:     c.Sampler.FrameRate,
		ClipsPerVideo: c.Sampler.ClipsPerVideo,
		FramesPerClip: c.Sampler.FramesPerClip,
	}
}

// ToOrchestratorConfig converts Config to orchestrator.Config for the given videos.
func (c Config) ToOrchestratorConfig(paths []string) orchestrator.Config {
	oc := orchestrator.DefaultConfig()
	oc.Workers = c.Workers
	oc.Videos = make([]pipeline.SampleInput, len(paths))
	for i, path := range paths {
		oc.Videos[i] = c.SampleInput(path, i)
	}
	return oc
}
