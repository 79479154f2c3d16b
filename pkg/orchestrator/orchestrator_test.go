package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/user/clipsampler/pkg/frame"
	"github.com/user/clipsampler/pkg/mocks"
	"github.com/user/clipsampler/pkg/pipeline"
	"github.com/user/clipsampler/pkg/ports"
)

// mockSampleStage returns one clip per video whose first frame index is the video seed.
type mockSampleStage struct {
	mu     sync.Mutex
	inputs []pipeline.SampleInput
	errs   map[string]error
	delay  func(input pipeline.SampleInput) time.Duration
}

func (m *mockSampleStage) Execute(ctx context.Context, input pipeline.SampleInput) (pipeline.SampleResult, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, input)
	err := m.errs[input.Name]
	m.mu.Unlock()

	if m.delay != nil {
		time.Sleep(m.delay(input))
	}
	if err != nil {
		return pipeline.SampleResult{}, err
	}

	f := frame.New(input.Width, input.Height)
	f.Index = int(input.Seed)
	return pipeline.SampleResult{
		Name:    input.Name,
		Clips:   []frame.Clip{{Frames: []frame.Frame{f}}},
		Starts:  []float64{float64(input.Seed)},
		Indices: [][]int{{int(input.Seed)}},
	}, nil
}

// mockSheetStage records contact sheet requests.
type mockSheetStage struct {
	calls int32
	err   error
}

func (m *mockSheetStage) Execute(ctx context.Context, input pipeline.ContactSheetInput) (pipeline.ContactSheetResult, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.err != nil {
		return pipeline.ContactSheetResult{}, m.err
	}
	return pipeline.ContactSheetResult{Image: image.NewRGBA(image.Rect(0, 0, 4, 4))}, nil
}

func videos(names ...string) []pipeline.SampleInput {
	inputs := make([]pipeline.SampleInput, len(names))
	for i, name := range names {
		in := pipeline.DefaultSampleInput()
		in.Name = name
		in.Width, in.Height = 4, 4
		in.Seed = uint64(100 + i)
		inputs[i] = in
	}
	return inputs
}

func TestOrchestrator_RunPreservesOrder(t *testing.T) {
	stage := &mockSampleStage{
		// Earlier videos finish last.
		delay: func(input pipeline.SampleInput) time.Duration {
			return time.Duration(110-input.Seed) * time.Millisecond
		},
	}
	orch := New(stage, nil, mocks.NewDebugSink(false), mocks.NewLogger())

	config := DefaultConfig()
	config.Videos = videos("a", "b", "c", "d", "e")
	config.Workers = 3

	result, err := orch.Run(context.Background(), config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Succeeded != 5 || result.Failed != 0 {
		t.Errorf("expected 5 succeeded, got %d/%d", result.Succeeded, result.Failed)
	}
	if result.Workers != 3 {
		t.Errorf("expected 3 workers, got %d", result.Workers)
	}
	for i, outcome := range result.Videos {
		if outcome.Input.Name != config.Videos[i].Name {
			t.Errorf("outcome %d: expected %s, got %s", i, config.Videos[i].Name, outcome.Input.Name)
		}
		if got := outcome.Result.Indices[0][0]; got != 100+i {
			t.Errorf("outcome %d: expected seed-derived index %d, got %d", i, 100+i, got)
		}
	}
}

func TestOrchestrator_RunCollectsFailures(t *testing.T) {
	sampleErr := errors.New("corrupt")
	stage := &mockSampleStage{errs: map[string]error{"b": sampleErr}}
	logger := mocks.NewLogger()
	orch := New(stage, nil, mocks.NewDebugSink(false), logger)

	config := DefaultConfig()
	config.Videos = videos("a", "b", "c")
	config.Workers = 1

	result, err := orch.Run(context.Background(), config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Succeeded != 2 || result.Failed != 1 {
		t.Errorf("expected 2/1, got %d/%d", result.Succeeded, result.Failed)
	}
	if !errors.Is(result.Videos[1].Err, sampleErr) {
		t.Errorf("expected sample error for b, got %v", result.Videos[1].Err)
	}
	if result.Videos[2].Err != nil {
		t.Errorf("video after a failure should still be sampled: %v", result.Videos[2].Err)
	}
	if logger.Count(ports.LevelError) != 1 {
		t.Errorf("expected 1 error log, got %d", logger.Count(ports.LevelError))
	}
}

func TestOrchestrator_RunCancelled(t *testing.T) {
	stage := &mockSampleStage{}
	orch := New(stage, nil, mocks.NewDebugSink(false), mocks.NewLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	config := DefaultConfig()
	config.Videos = videos("a", "b")

	result, err := orch.Run(ctx, config)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(result.Videos) != 2 {
		t.Fatalf("expected an outcome per video, got %d", len(result.Videos))
	}
	for i, outcome := range result.Videos {
		if !errors.Is(outcome.Err, context.Canceled) {
			t.Errorf("outcome %d: expected context.Canceled, got %v", i, outcome.Err)
		}
	}
	if len(stage.inputs) != 0 {
		t.Errorf("expected no jobs to start, got %d", len(stage.inputs))
	}
}

func TestOrchestrator_RunEmpty(t *testing.T) {
	orch := New(&mockSampleStage{}, nil, mocks.NewDebugSink(false), mocks.NewLogger())

	result, err := orch.Run(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Videos) != 0 || result.Succeeded != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestOrchestrator_RunWithDebugSink(t *testing.T) {
	sink := mocks.NewDebugSink(true)
	sheets := &mockSheetStage{}
	orch := New(&mockSampleStage{}, sheets, sink, mocks.NewLogger())

	config := DefaultConfig()
	config.Videos = videos("a", "b")

	if _, err := orch.Run(context.Background(), config); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sheets.calls != 2 {
		t.Errorf("expected 2 contact sheets, got %d", sheets.calls)
	}
	if len(sink.ContactSheets) != 2 {
		t.Errorf("expected 2 saved contact sheets, got %d", len(sink.ContactSheets))
	}

	data, ok := sink.Metadata["b"]
	if !ok {
		t.Fatal("expected metadata for b")
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatalf("invalid metadata JSON: %v", err)
	}
	if meta.Name != "b" || meta.Seed != 101 || len(meta.Clips) != 1 || meta.Clips[0].Indices[0] != 101 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
}

func TestOrchestrator_DebugFailureIsWarning(t *testing.T) {
	sink := mocks.NewDebugSink(true)
	logger := mocks.NewLogger()
	orch := New(&mockSampleStage{}, &mockSheetStage{err: errors.New("render")}, sink, logger)

	config := DefaultConfig()
	config.Videos = videos("a")

	result, err := orch.Run(context.Background(), config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Failed != 0 {
		t.Errorf("debug output failures must not fail the video")
	}
	if logger.Count(ports.LevelWarn) != 1 {
		t.Errorf("expected 1 warning, got %d", logger.Count(ports.LevelWarn))
	}
}
