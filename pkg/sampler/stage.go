package sampler

import (
	"context"
	"time"

	"github.com/user/clipsampler/pkg/pipeline"
)

// Stage runs a Sampler as a pipeline stage.
type Stage struct {
	sampler *Sampler
}

// NewStage creates a new sample stage.
func NewStage(s *Sampler) *Stage {
	return &Stage{sampler: s}
}

// ConfigFromInput builds the sampling policy described by input.
func ConfigFromInput(input pipeline.SampleInput) (Config, error) {
	mode, err := ParseMode(input.Mode, input.FrameRate)
	if err != nil {
		return Config{}, err
	}
	dist, err := ParseDistribution(input.SamplerType, input.Seed)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Mode:          mode,
		Distribution:  dist,
		ClipsPerVideo: input.ClipsPerVideo,
		FramesPerClip: input.FramesPerClip,
	}, nil
}

// Execute samples the video described by input.
func (s *Stage) Execute(ctx context.Context, input pipeline.SampleInput) (pipeline.SampleResult, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.SampleResult{}, err
	}

	cfg, err := ConfigFromInput(input)
	if err != nil {
		return pipeline.SampleResult{}, err
	}

	src := FromFile(input.Path)
	if input.Path == "" {
		src = FromBytes(input.Name, input.Data)
	}
	args := VideoArgs{Width: input.Width, Height: input.Height, Stream: input.Stream}

	start := time.Now()
	res, err := s.sampler.Run(src, args, cfg)
	if err != nil {
		return pipeline.SampleResult{}, err
	}

	indices := make([][]int, len(res.Specs))
	for i, spec := range res.Specs {
		indices[i] = spec.Indices
	}
	return pipeline.SampleResult{
		Name:     input.Name,
		Clips:    res.Clips,
		Starts:   res.Starts(),
		Indices:  indices,
		Stream:   res.Stream,
		Stats:    res.Stats,
		Duration: time.Since(start),
	}, nil
}
