// Package summarizer provides summary generation for sampling runs.
package summarizer

import (
	"time"

	"github.com/google/uuid"
	"github.com/user/clipsampler/pkg/orchestrator"
)

// Summary contains all data collected during a sampling run.
type Summary struct {
	// Metadata
	RunID       string
	GeneratedAt time.Time

	// Sampling settings shared by all videos
	Settings Settings

	// Run results
	Run RunInfo

	// Per-video results, in input order
	Videos []VideoInfo
}

// Settings contains the sampling configuration.
type Settings struct {
	Mode          string
	Sampler       string
	Seed          uint64
	FrameRate     float64 // 0 = native rate
	ClipsPerVideo int
	FramesPerClip int
	Width         int
	Height        int
	Interpolation string
}

// RunInfo contains batch-level results.
type RunInfo struct {
	Workers    int
	Succeeded  int
	Failed     int
	DurationMs int64
}

// VideoInfo contains the result of one video.
type VideoInfo struct {
	Name string

	// Source stream, zero when sampling failed before probing
	Codec       string
	Width       int
	Height      int
	FrameCount  int
	DurationSec float64
	FPS         float64

	// Results
	Starts        []float64
	SeeksDone     int64
	FramesDecoded int64
	DurationMs    int64
	Error         string
}

// Failed reports whether the video could not be sampled.
func (v VideoInfo) Failed() bool {
	return v.Error != ""
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSettings sets the sampling settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithRun sets batch-level information. Succeeded and Failed are counted by AddVideo.
func (b *Builder) WithRun(workers int, durationMs int64) *Builder {
	b.summary.Run.Workers = workers
	b.summary.Run.DurationMs = durationMs
	return b
}

// AddVideo appends a per-video result.
func (b *Builder) AddVideo(video VideoInfo) *Builder {
	b.summary.Videos = append(b.summary.Videos, video)
	if video.Failed() {
		b.summary.Run.Failed++
	} else {
		b.summary.Run.Succeeded++
	}
	return b
}

// WithRunResult adds the run information and every video outcome of an orchestrator run.
func (b *Builder) WithRunResult(result orchestrator.RunResult) *Builder {
	b.WithRun(result.Workers, result.Duration.Milliseconds())
	for _, outcome := range result.Videos {
		b.AddVideo(VideoFromOutcome(outcome))
	}
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}

// VideoFromOutcome converts an orchestrator outcome.
func VideoFromOutcome(outcome orchestrator.VideoOutcome) VideoInfo {
	v := VideoInfo{Name: outcome.Input.Name}
	if outcome.Err != nil {
		v.Error = outcome.Err.Error()
		return v
	}

	res := outcome.Result
	v.Codec = res.Stream.CodecName
	v.Width = res.Stream.Width
	v.Height = res.Stream.Height
	v.FrameCount = res.Stream.FrameCount
	v.DurationSec = res.Stream.Duration
	v.FPS = res.Stream.AverageFPS
	v.Starts = res.Starts
	v.SeeksDone = res.Stats.SeeksDone
	v.FramesDecoded = res.Stats.FramesDecoded
	v.DurationMs = res.Duration.Milliseconds()
	return v
}
