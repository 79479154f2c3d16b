package sampler

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/user/clipsampler/pkg/decoder"
	"github.com/user/clipsampler/pkg/frame"
	"github.com/user/clipsampler/pkg/mocks"
	"github.com/user/clipsampler/pkg/pipeline"
	"github.com/user/clipsampler/pkg/ports"
	"github.com/user/clipsampler/pkg/transform"
)

// 13 s at 30 fps, keyframe every second.
var thirteenSeconds = mocks.VideoSpec{Frames: 390, GOP: 30, FPS: 30, Width: 16, Height: 8}

var testSource = FromBytes("test.mp4", []byte("mock"))

func newTestSampler(spec mocks.VideoSpec, options ...Option) (*Sampler, *mocks.DemuxerOpener, *mocks.Logger) {
	opener := &mocks.DemuxerOpener{Spec: spec}
	logger := mocks.NewLogger()
	options = append([]Option{WithTransformer(transform.New(transform.Nearest))}, options...)
	s := New(decoder.Options{Demuxer: opener, Decoders: mocks.NewDecoderFactory()}, logger, options...)
	return s, opener, logger
}

func clipIndices(clips []frame.Clip) [][]int {
	out := make([][]int, len(clips))
	for i, c := range clips {
		out[i] = c.Indices()
	}
	return out
}

func TestSampleUniformIndexBased(t *testing.T) {
	s, _, _ := newTestSampler(thirteenSeconds)
	cfg := Config{Mode: IndexBased{}, Distribution: Uniform{}, ClipsPerVideo: 2, FramesPerClip: 4}

	res, err := s.Run(testSource, NewVideoArgs(8, 4), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.State != StateDone {
		t.Errorf("expected state %s, got %s", StateDone, res.State)
	}
	if !reflect.DeepEqual(res.Starts(), []float64{0, 193}) {
		t.Errorf("got starts %v, want [0 193]", res.Starts())
	}

	want := [][]int{{0, 1, 2, 3}, {193, 194, 195, 196}}
	if got := clipIndices(res.Clips); !reflect.DeepEqual(got, want) {
		t.Errorf("got indices %v, want %v", got, want)
	}

	for ci, clip := range res.Clips {
		if clip.Shape() != [4]int{4, 4, 8, 3} {
			t.Errorf("clip %d: got shape %v", ci, clip.Shape())
		}
		for _, f := range clip.Frames {
			if got := mocks.ColorPTS(f.RGB(7, 3)); got != int64(f.Index*1000) {
				t.Errorf("clip %d frame %d: picture of pts %d", ci, f.Index, got)
			}
		}
	}

	if res.Stats.SeeksDone != 2 {
		t.Errorf("expected one seek per clip, got %d", res.Stats.SeeksDone)
	}
	if res.Stream.FrameCount != 390 {
		t.Errorf("expected 390 frames, got %d", res.Stream.FrameCount)
	}
}

func TestSampleUniformIsDeterministic(t *testing.T) {
	s, _, _ := newTestSampler(thirteenSeconds)
	cfg := Config{Mode: IndexBased{}, Distribution: Uniform{}, ClipsPerVideo: 3, FramesPerClip: 5}

	a, err := s.Sample(testSource, NewVideoArgs(8, 4), cfg)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := s.Sample(testSource, NewVideoArgs(8, 4), cfg)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("uniform sampling returned different clips")
	}
}

func TestSampleUniformTimeBased(t *testing.T) {
	s, _, _ := newTestSampler(thirteenSeconds)
	cfg := Config{Mode: TimeBased{}, Distribution: Uniform{}, ClipsPerVideo: 2, FramesPerClip: 4}

	res, err := s.Run(testSource, NewVideoArgs(8, 4), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]int{{0, 1, 2, 3}, {193, 194, 195, 196}}
	if got := clipIndices(res.Clips); !reflect.DeepEqual(got, want) {
		t.Errorf("got indices %v, want %v", got, want)
	}
	if len(res.Specs[1].Timestamps) != 4 {
		t.Errorf("expected timestamps in time-based specs, got %v", res.Specs[1].Timestamps)
	}
}

func TestSampleRandomTimeBasedSeeded(t *testing.T) {
	s, _, _ := newTestSampler(thirteenSeconds)
	run := func(seed uint64) Result {
		t.Helper()
		cfg := Config{Mode: TimeBased{}, Distribution: NewRandom(seed), ClipsPerVideo: 3, FramesPerClip: 4}
		res, err := s.Run(testSource, NewVideoArgs(8, 4), cfg)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		return res
	}

	a := run(0)
	b := run(0)
	if !reflect.DeepEqual(a.Starts(), b.Starts()) {
		t.Errorf("seed 0 gave %v and %v", a.Starts(), b.Starts())
	}
	if !reflect.DeepEqual(a.Clips, b.Clips) {
		t.Error("seed 0 gave different clips")
	}
	if reflect.DeepEqual(a.Starts(), run(1).Starts()) {
		t.Errorf("seeds 0 and 1 gave identical starts %v", a.Starts())
	}

	maxStart := 13.0 - 4.0/30
	for i, start := range a.Starts() {
		if start < 0 || start > maxStart {
			t.Errorf("clip %d starts at %v, outside [0, %v]", i, start, maxStart)
		}
	}
	if len(a.Clips) != 3 {
		t.Fatalf("expected 3 clips, got %d", len(a.Clips))
	}
	for i, c := range a.Clips {
		if c.Len() != 4 {
			t.Errorf("clip %d has %d frames", i, c.Len())
		}
	}
}

func TestSampleInsufficientLength(t *testing.T) {
	s, _, _ := newTestSampler(mocks.VideoSpec{Frames: 10, GOP: 5, FPS: 30})

	tests := []struct {
		name string
		cfg  Config
	}{
		{"index-based", Config{Mode: IndexBased{}, Distribution: Uniform{}, ClipsPerVideo: 1, FramesPerClip: 11}},
		{"time-based", Config{Mode: TimeBased{}, Distribution: Uniform{}, ClipsPerVideo: 1, FramesPerClip: 11}},
		{"random time-based", Config{Mode: TimeBased{FrameRate: 30}, Distribution: NewRandom(0), ClipsPerVideo: 2, FramesPerClip: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Run(testSource, NewVideoArgs(8, 4), tt.cfg)
			if !errors.Is(err, ErrInsufficientLength) {
				t.Errorf("expected ErrInsufficientLength, got %v", err)
			}
			if res.State != StateFailed || res.Clips != nil {
				t.Errorf("expected failed empty result, got %s with %d clips", res.State, len(res.Clips))
			}
		})
	}

	clips, err := s.Sample(testSource, NewVideoArgs(8, 4), Config{Mode: IndexBased{}, Distribution: Uniform{}, ClipsPerVideo: 2, FramesPerClip: 10})
	if err != nil {
		t.Fatalf("clip as long as the video rejected: %v", err)
	}
	if len(clips) != 2 || clips[0].Indices()[0] != 0 || clips[1].Indices()[0] != 0 {
		t.Errorf("expected two clips starting at 0, got %v", clipIndices(clips))
	}
}

func TestSampleConfigErrors(t *testing.T) {
	s, opener, _ := newTestSampler(thirteenSeconds)
	valid := Config{Mode: IndexBased{}, Distribution: Uniform{}, ClipsPerVideo: 1, FramesPerClip: 1}

	if _, err := s.Sample(testSource, NewVideoArgs(0, 4), valid); !errors.Is(err, ErrConfig) {
		t.Errorf("zero width: expected ErrConfig, got %v", err)
	}
	bad := valid
	bad.ClipsPerVideo = 0
	if _, err := s.Sample(testSource, NewVideoArgs(8, 4), bad); !errors.Is(err, ErrConfig) {
		t.Errorf("zero clips: expected ErrConfig, got %v", err)
	}
	if len(opener.Opened) != 0 {
		t.Errorf("video opened for an invalid config")
	}
}

func TestSampleStreamSelection(t *testing.T) {
	spec := thirteenSeconds
	spec.WithAudio = true
	s, _, _ := newTestSampler(spec)
	cfg := Config{Mode: IndexBased{}, Distribution: Uniform{}, ClipsPerVideo: 1, FramesPerClip: 2}

	res, err := s.Run(testSource, NewVideoArgs(8, 4), cfg)
	if err != nil {
		t.Fatalf("best stream: %v", err)
	}
	if res.Stream.Index != 1 {
		t.Errorf("expected video stream 1, got %d", res.Stream.Index)
	}

	args := NewVideoArgs(8, 4)
	args.Stream = 0
	if _, err := s.Sample(testSource, args, cfg); !errors.Is(err, decoder.ErrInvalidStream) {
		t.Errorf("audio stream: expected ErrInvalidStream, got %v", err)
	}
}

func TestSampleDecodeFailureAborts(t *testing.T) {
	opener := &mocks.DemuxerOpener{}
	opener.OpenFunc = func(r io.ReadSeeker) (ports.Demuxer, error) {
		d := mocks.NewDemuxer(thirteenSeconds)
		d.ReadErrors[195] = errors.New("truncated sample")
		return d, nil
	}
	s := New(decoder.Options{Demuxer: opener, Decoders: mocks.NewDecoderFactory()}, mocks.NewLogger())
	cfg := Config{Mode: IndexBased{}, Distribution: Uniform{}, ClipsPerVideo: 2, FramesPerClip: 4}

	res, err := s.Run(testSource, NewVideoArgs(8, 4), cfg)
	if !errors.Is(err, decoder.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if res.Clips != nil || res.State != StateFailed {
		t.Errorf("expected no clips and failed state, got %d clips and %s", len(res.Clips), res.State)
	}
}

func TestSampleOpenFailure(t *testing.T) {
	s, _, _ := newTestSampler(thirteenSeconds)
	cfg := Config{Mode: IndexBased{}, Distribution: Uniform{}, ClipsPerVideo: 1, FramesPerClip: 1}

	if _, err := s.Sample(FromBytes("empty", nil), NewVideoArgs(8, 4), cfg); !errors.Is(err, decoder.ErrOpen) {
		t.Errorf("expected ErrOpen, got %v", err)
	}
	if _, err := s.Sample(FromFile("/nonexistent/video.mp4"), NewVideoArgs(8, 4), cfg); !errors.Is(err, decoder.ErrOpen) {
		t.Errorf("expected ErrOpen, got %v", err)
	}
}

func TestSampleDebugSinkAndStates(t *testing.T) {
	sink := mocks.NewDebugSink(true)
	s, _, logger := newTestSampler(thirteenSeconds, WithSink(sink))
	cfg := Config{Mode: IndexBased{}, Distribution: Uniform{}, ClipsPerVideo: 2, FramesPerClip: 3}

	if _, err := s.Sample(testSource, NewVideoArgs(8, 4), cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sink.FrameCount() != 6 {
		t.Errorf("expected 6 debug frames, got %d", sink.FrameCount())
	}
	if _, ok := sink.Frames[mocks.FrameKey("test.mp4", 1, 2)]; !ok {
		t.Error("missing last frame of second clip")
	}

	var transitions []string
	for _, e := range logger.Entries() {
		if e.Component == "sampler" && e.Level == ports.LevelDebug {
			transitions = append(transitions, e.Message)
		}
	}
	want := []string{
		"test.mp4: idle -> computing-specs",
		"test.mp4: computing-specs -> decoding-frames",
		"test.mp4: decoding-frames -> done",
	}
	for _, w := range want {
		found := false
		for _, m := range transitions {
			if m == w {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing state transition %q in %v", w, transitions)
		}
	}
}

func TestStageExecute(t *testing.T) {
	s, _, _ := newTestSampler(thirteenSeconds)
	stage := NewStage(s)

	input := pipeline.DefaultSampleInput()
	input.Name = "test.mp4"
	input.Data = []byte("mock")
	input.Width, input.Height = 8, 4
	input.ClipsPerVideo, input.FramesPerClip = 2, 4

	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Name != "test.mp4" || len(result.Clips) != 2 {
		t.Errorf("got %q with %d clips", result.Name, len(result.Clips))
	}
	if !reflect.DeepEqual(result.Starts, []float64{0, 193}) {
		t.Errorf("got starts %v", result.Starts)
	}
	if !reflect.DeepEqual(result.Indices[1], []int{193, 194, 195, 196}) {
		t.Errorf("got indices %v", result.Indices[1])
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := stage.Execute(ctx, input); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	input.SamplerType = "poisson"
	if _, err := stage.Execute(context.Background(), input); !errors.Is(err, ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}
