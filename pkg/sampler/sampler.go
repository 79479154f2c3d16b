// Package sampler extracts fixed-length clips of transformed frames from a video.
package sampler

import (
	"fmt"
	"path/filepath"

	"github.com/user/clipsampler/pkg/decoder"
	"github.com/user/clipsampler/pkg/frame"
	"github.com/user/clipsampler/pkg/ports"
	"github.com/user/clipsampler/pkg/transform"
)

// State is the progress of one sampling invocation.
type State int

const (
	StateIdle State = iota
	StateComputingSpecs
	StateDecodingFrames
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateComputingSpecs:
		return "computing-specs"
	case StateDecodingFrames:
		return "decoding-frames"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Source is a video given as a file path or an in-memory buffer.
type Source struct {
	Path string
	Data []byte
	name string
}

// FromFile returns a Source reading the file at path.
func FromFile(path string) Source {
	return Source{Path: path}
}

// FromBytes returns a Source over data. name labels the video in logs and debug output.
func FromBytes(name string, data []byte) Source {
	return Source{Data: data, name: name}
}

// Name returns the label of the source.
func (s Source) Name() string {
	if s.name != "" {
		return s.name
	}
	if s.Path != "" {
		return filepath.Base(s.Path)
	}
	return "memory"
}

func (s Source) open(opts decoder.Options) (*decoder.VideoHandle, error) {
	if s.Path != "" {
		return decoder.OpenFile(s.Path, opts)
	}
	return decoder.OpenBytes(s.Data, opts)
}

// Result is the full outcome of a sampling invocation.
type Result struct {
	Clips  []frame.Clip
	Specs  []ClipSpec
	Stream decoder.StreamInfo
	Stats  decoder.Stats
	State  State
}

// Starts returns the start position of every clip.
func (r Result) Starts() []float64 {
	starts := make([]float64, len(r.Specs))
	for i, s := range r.Specs {
		starts[i] = s.Start
	}
	return starts
}

// Sampler runs sampling invocations. It keeps no state between invocations
// and may be used from several goroutines.
type Sampler struct {
	opts        decoder.Options
	logger      ports.Logger
	transformer *transform.Transformer
	sink        ports.DebugSink
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithTransformer sets the resize kernel. The default is catmull-rom.
func WithTransformer(t *transform.Transformer) Option {
	return func(s *Sampler) {
		s.transformer = t
	}
}

// WithSink sends every transformed clip frame to sink when it is enabled.
func WithSink(sink ports.DebugSink) Option {
	return func(s *Sampler) {
		s.sink = sink
	}
}

// New creates a Sampler decoding through opts.
func New(opts decoder.Options, logger ports.Logger, options ...Option) *Sampler {
	if opts.Logger == nil {
		opts.Logger = logger
	}
	s := &Sampler{
		opts:        opts,
		logger:      logger.WithComponent("sampler"),
		transformer: transform.New(transform.DefaultInterpolation),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Sample returns cfg.ClipsPerVideo clips of cfg.FramesPerClip frames, each frame
// resized to args. It fails as a whole: no partial result is returned.
func (s *Sampler) Sample(src Source, args VideoArgs, cfg Config) ([]frame.Clip, error) {
	res, err := s.Run(src, args, cfg)
	if err != nil {
		return nil, err
	}
	return res.Clips, nil
}

// Run is Sample returning the clip specs, stream metadata and decode stats as well.
func (s *Sampler) Run(src Source, args VideoArgs, cfg Config) (Result, error) {
	inv := &invocation{logger: s.logger, video: src.Name()}
	res, err := s.run(inv, src, args, cfg)
	if err != nil {
		inv.set(StateFailed)
		return Result{State: StateFailed}, err
	}
	inv.set(StateDone)
	res.State = StateDone
	return res, nil
}

func (s *Sampler) run(inv *invocation, src Source, args VideoArgs, cfg Config) (Result, error) {
	if err := args.Validate(); err != nil {
		return Result{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	h, err := src.open(s.opts)
	if err != nil {
		return Result{}, err
	}
	defer h.Close()

	stream := args.Stream
	if stream == BestStream {
		stream = h.ContainerInfo().BestVideoStream
		if stream < 0 {
			return Result{}, fmt.Errorf("%w: %s has no video stream", decoder.ErrInvalidStream, inv.video)
		}
	}
	if err := h.RegisterStream(stream); err != nil {
		return Result{}, err
	}
	info, err := h.StreamInfo(stream)
	if err != nil {
		return Result{}, err
	}

	inv.set(StateComputingSpecs)
	specs, err := cfg.Mode.clipSpecs(handleTimeline{h: h, stream: stream, info: info}, cfg.FramesPerClip, cfg.ClipsPerVideo, cfg.Distribution)
	if err != nil {
		return Result{}, err
	}
	s.logger.Debug("Planned %d %s %s clips of %d frames for %s", len(specs), cfg.Distribution, cfg.Mode, cfg.FramesPerClip, inv.video)

	inv.set(StateDecodingFrames)
	clips := make([]frame.Clip, len(specs))
	for ci, spec := range specs {
		clip, err := s.assemble(h, stream, spec, args, inv.video, ci)
		if err != nil {
			return Result{}, fmt.Errorf("clip %d of %s: %w", ci, inv.video, err)
		}
		clips[ci] = clip
	}

	return Result{
		Clips:  clips,
		Specs:  specs,
		Stream: info,
		Stats:  h.Stats(),
	}, nil
}

// assemble decodes and transforms the frames of one clip. Each raw frame is dropped after its transform.
func (s *Sampler) assemble(h *decoder.VideoHandle, stream int, spec ClipSpec, args VideoArgs, video string, ci int) (frame.Clip, error) {
	clip := frame.Clip{Frames: make([]frame.Frame, 0, len(spec.Indices))}
	for fi, index := range spec.Indices {
		raw, err := h.DecodeFrameAtIndex(stream, index)
		if err != nil {
			return frame.Clip{}, err
		}
		f, err := s.transformer.Transform(raw, args.Width, args.Height)
		if err != nil {
			return frame.Clip{}, err
		}
		clip.Frames = append(clip.Frames, f)

		if s.sink != nil && s.sink.Enabled() {
			if err := s.sink.SaveClipFrame(video, ci, fi, f); err != nil {
				s.logger.Warn("Failed to save debug frame %d of clip %d: %v", fi, ci, err)
			}
		}
	}
	return clip, nil
}

type invocation struct {
	logger ports.Logger
	video  string
	state  State
}

func (inv *invocation) set(state State) {
	inv.logger.Debug("%s: %s -> %s", inv.video, inv.state, state)
	inv.state = state
}

// handleTimeline exposes a registered stream to clip planning.
type handleTimeline struct {
	h      *decoder.VideoHandle
	stream int
	info   decoder.StreamInfo
}

func (t handleTimeline) frameCount() int     { return t.info.FrameCount }
func (t handleTimeline) duration() float64   { return t.info.Duration }
func (t handleTimeline) averageFPS() float64 { return t.info.AverageFPS }

func (t handleTimeline) indexAt(seconds float64) (int, error) {
	return t.h.TimestampToFrameIndex(t.stream, seconds)
}
