// Package orchestrator runs independent sampling jobs, one per video, on a bounded worker pool.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/user/clipsampler/pkg/decoder"
	"github.com/user/clipsampler/pkg/pipeline"
	"github.com/user/clipsampler/pkg/ports"
)

// Config contains all configuration for a batch run.
type Config struct {
	// Videos are sampled independently. Random seeds are expected to be derived per video already.
	Videos []pipeline.SampleInput

	// Workers bounds concurrent jobs. Zero or less uses runtime.NumCPU().
	Workers int

	// ContactSheetTheme styles debug contact sheets.
	ContactSheetTheme pipeline.ContactSheetTheme
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Workers:           runtime.NumCPU(),
		ContactSheetTheme: pipeline.DefaultContactSheetTheme(),
	}
}

// Orchestrator coordinates the sampling of many videos.
type Orchestrator struct {
	sampleStage pipeline.Stage[pipeline.SampleInput, pipeline.SampleResult]
	sheetStage  pipeline.Stage[pipeline.ContactSheetInput, pipeline.ContactSheetResult]
	sink        ports.DebugSink
	logger      ports.Logger
}

// New creates a new Orchestrator. sheetStage may be nil when no contact sheets are wanted.
func New(
	sampleStage pipeline.Stage[pipeline.SampleInput, pipeline.SampleResult],
	sheetStage pipeline.Stage[pipeline.ContactSheetInput, pipeline.ContactSheetResult],
	sink ports.DebugSink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		sampleStage: sampleStage,
		sheetStage:  sheetStage,
		sink:        sink,
		logger:      logger,
	}
}

// VideoOutcome is the result of one video. Exactly one of Result and Err is meaningful.
type VideoOutcome struct {
	Input  pipeline.SampleInput
	Result pipeline.SampleResult
	Err    error
}

// RunResult contains the outcomes of a batch run, in input order.
type RunResult struct {
	Videos    []VideoOutcome
	Succeeded int
	Failed    int
	Workers   int
	Duration  time.Duration
}

// Run samples every video. A failing video does not stop the others; its error is
// recorded in its outcome. Cancelling ctx stops workers from taking new jobs and
// makes Run return ctx.Err() along with the outcomes collected so far.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	start := time.Now()
	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(config.Videos) {
		workers = len(config.Videos)
	}

	result := RunResult{Workers: workers}
	if len(config.Videos) == 0 {
		return result, nil
	}

	o.logger.Info(l10n.F("Sampling %d videos with %d workers", len(config.Videos), workers))

	outcomes := o.executeParallel(ctx, config, workers)
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}
	result.Videos = outcomes
	result.Duration = time.Since(start)

	o.logger.Info(l10n.F("Sampling completed: %d succeeded, %d failed", result.Succeeded, result.Failed))

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// indexedOutcome holds an outcome with its original index for sorting.
type indexedOutcome struct {
	index   int
	outcome VideoOutcome
}

// executeParallel samples videos using a worker pool. Jobs never started because of
// cancellation are reported with the context error.
func (o *Orchestrator) executeParallel(ctx context.Context, config Config, workers int) []VideoOutcome {
	numVideos := len(config.Videos)
	jobs := make(chan int, numVideos)
	results := make(chan indexedOutcome, numVideos)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go o.worker(ctx, &wg, config, jobs, results)
	}

	for i := 0; i < numVideos; i++ {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]indexedOutcome, 0, numVideos)
	for r := range results {
		collected = append(collected, r)
	}

	sort.Slice(collected, func(i, j int) bool {
		return collected[i].index < collected[j].index
	})

	outcomes := make([]VideoOutcome, numVideos)
	done := make([]bool, numVideos)
	for _, r := range collected {
		outcomes[r.index] = r.outcome
		done[r.index] = true
	}
	for i := range outcomes {
		if !done[i] {
			outcomes[i] = VideoOutcome{Input: config.Videos[i], Err: ctx.Err()}
		}
	}
	return outcomes
}

// worker processes videos from the jobs channel until it is drained or ctx is done.
func (o *Orchestrator) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	config Config,
	jobs <-chan int,
	results chan<- indexedOutcome,
) {
	defer wg.Done()

	for idx := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		input := config.Videos[idx]
		results <- indexedOutcome{index: idx, outcome: o.sampleVideo(ctx, input, config.ContactSheetTheme)}
	}
}

func (o *Orchestrator) sampleVideo(ctx context.Context, input pipeline.SampleInput, theme pipeline.ContactSheetTheme) VideoOutcome {
	o.logger.Info(l10n.F("Sampling %s", input.Name))

	res, err := o.sampleStage.Execute(ctx, input)
	if err != nil {
		o.logger.Error(l10n.F("Failed to sample %s: %s", input.Name, err))
		return VideoOutcome{Input: input, Err: fmt.Errorf("%s: %w", input.Name, err)}
	}
	o.logger.Info(l10n.F("Sampled %d clips of %d frames from %s in %d ms",
		len(res.Clips), input.FramesPerClip, input.Name, res.Duration.Milliseconds()))

	if o.sink.Enabled() {
		if err := o.saveDebug(ctx, input, res, theme); err != nil {
			o.logger.Warn(l10n.F("Failed to save debug output for %s: %s", input.Name, err))
		}
	}
	return VideoOutcome{Input: input, Result: res}
}

// Metadata is the JSON document saved per video in debug mode.
type Metadata struct {
	Name       string             `json:"name"`
	Path       string             `json:"path,omitempty"`
	Mode       string             `json:"mode"`
	Sampler    string             `json:"sampler"`
	Seed       uint64             `json:"seed"`
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	Stream     decoder.StreamInfo `json:"stream"`
	Clips      []ClipMetadata     `json:"clips"`
	Stats      decoder.Stats      `json:"stats"`
	DurationMs int64              `json:"duration_ms"`
}

// ClipMetadata describes one sampled clip.
type ClipMetadata struct {
	Start   float64 `json:"start"`
	Indices []int   `json:"indices"`
}

// NewMetadata builds the debug metadata of a sampled video.
func NewMetadata(input pipeline.SampleInput, res pipeline.SampleResult) Metadata {
	clips := make([]ClipMetadata, len(res.Indices))
	for i, indices := range res.Indices {
		clips[i] = ClipMetadata{Indices: indices}
		if i < len(res.Starts) {
			clips[i].Start = res.Starts[i]
		}
	}
	return Metadata{
		Name:       input.Name,
		Path:       input.Path,
		Mode:       input.Mode,
		Sampler:    input.SamplerType,
		Seed:       input.Seed,
		Width:      input.Width,
		Height:     input.Height,
		Stream:     res.Stream,
		Clips:      clips,
		Stats:      res.Stats,
		DurationMs: res.Duration.Milliseconds(),
	}
}

func (o *Orchestrator) saveDebug(ctx context.Context, input pipeline.SampleInput, res pipeline.SampleResult, theme pipeline.ContactSheetTheme) error {
	data, err := json.MarshalIndent(NewMetadata(input, res), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := o.sink.SaveMetadataJSON(input.Name, data); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}

	if o.sheetStage == nil || len(res.Clips) == 0 {
		return nil
	}
	labels := make([]string, len(res.Clips))
	for i := range res.Clips {
		labels[i] = fmt.Sprintf("clip %d  start %.3f", i, res.Starts[i])
	}
	sheet, err := o.sheetStage.Execute(ctx, pipeline.ContactSheetInput{
		Title:  input.Name,
		Clips:  res.Clips,
		Labels: labels,
		Theme:  theme,
	})
	if err != nil {
		return fmt.Errorf("contact sheet: %w", err)
	}
	if err := o.sink.SaveContactSheet(input.Name, sheet.Image); err != nil {
		return fmt.Errorf("save contact sheet: %w", err)
	}
	o.logger.Info(l10n.F("Contact sheet saved for %s", input.Name))
	return nil
}
