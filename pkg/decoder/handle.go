// Package decoder provides random-access, frame-indexed decoding of compressed video streams.
//
// A VideoHandle owns an opened container and the decode state of every stream
// registered on it. Handles are independent of each other; calls on one handle are
// serialized by its own lock.
package decoder

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/user/clipsampler/pkg/ports"
)

// State is the lifecycle state of a VideoHandle.
type State int

const (
	// StateCreated means the container is open but no stream is registered.
	StateCreated State = iota
	// StateStreamRegistered means at least one stream may be decoded.
	StateStreamRegistered
	// StateDecoding means at least one frame has been decoded.
	StateDecoding
	// StateClosed means the handle has been released.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStreamRegistered:
		return "stream-registered"
	case StateDecoding:
		return "decoding"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Options wires the container and codec backends used by a handle.
type Options struct {
	Demuxer  ports.DemuxerOpener
	Decoders ports.DecoderFactory
	Logger   ports.Logger
}

// VideoHandle is an opened video. It is safe for concurrent use, but decode calls on
// one handle are serialized.
type VideoHandle struct {
	mu sync.Mutex

	demux    ports.Demuxer
	decoders ports.DecoderFactory
	logger   ports.Logger
	closer   io.Closer

	tracks    []ports.TrackInfo
	indices   []*streamIndex
	streams   []StreamInfo
	container ContainerInfo

	contexts map[int]*decodeContext
	state    State
	stats    Stats
}

// OpenFile opens a video file.
func OpenFile(path string, opts Options) (*VideoHandle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	h, err := Open(f, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	h.closer = f
	return h, nil
}

// OpenBytes opens a video held in memory. The buffer must not be modified while the handle is open.
func OpenBytes(data []byte, opts Options) (*VideoHandle, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrOpen)
	}
	return Open(bytes.NewReader(data), opts)
}

// Open probes the container read from r and enumerates its streams.
func Open(r io.ReadSeeker, opts Options) (*VideoHandle, error) {
	if opts.Demuxer == nil || opts.Decoders == nil {
		return nil, fmt.Errorf("%w: demuxer and decoder factory are required", ErrOpen)
	}
	log := opts.Logger
	if log == nil {
		log = nopLogger{}
	}

	demux, err := opts.Demuxer.Open(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}

	h := &VideoHandle{
		demux:    demux,
		decoders: opts.Decoders,
		logger:   log.WithComponent("decoder"),
		tracks:   demux.Tracks(),
		contexts: make(map[int]*decodeContext),
		state:    StateCreated,
	}
	if err := h.scan(); err != nil {
		demux.Close()
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}

	h.logger.Debug("Opened container with %d streams", len(h.streams))
	return h, nil
}

// scan builds the sample index and metadata of every track.
func (h *VideoHandle) scan() error {
	h.indices = make([]*streamIndex, len(h.tracks))
	h.streams = make([]StreamInfo, len(h.tracks))
	h.container = ContainerInfo{BestVideoStream: -1}

	firstVideo := -1
	for i, track := range h.tracks {
		samples, err := h.demux.Samples(i)
		if err != nil {
			return fmt.Errorf("read sample table of stream %d: %w", i, err)
		}
		idx, err := buildIndex(samples, track.Timescale)
		if err != nil {
			return fmt.Errorf("index stream %d: %w", i, err)
		}
		h.indices[i] = idx
		h.streams[i] = idx.info(track)
		h.streams[i].Index = i

		switch track.MediaType {
		case ports.MediaVideo:
			h.container.NumVideoStreams++
			if firstVideo < 0 {
				firstVideo = i
			}
			if h.container.BestVideoStream < 0 && track.Codec != ports.CodecUnknown && idx.len() > 0 {
				h.container.BestVideoStream = i
			}
		case ports.MediaAudio:
			h.container.NumAudioStreams++
		}
		if h.streams[i].Duration > h.container.Duration {
			h.container.Duration = h.streams[i].Duration
		}
	}
	if h.container.BestVideoStream < 0 {
		h.container.BestVideoStream = firstVideo
	}
	h.container.Streams = h.streams
	return nil
}

// ContainerInfo returns the metadata of all streams.
func (h *VideoHandle) ContainerInfo() ContainerInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	info := h.container
	info.Streams = append([]StreamInfo(nil), h.streams...)
	return info
}

// StreamInfo returns the metadata of one stream.
func (h *VideoHandle) StreamInfo(stream int) (StreamInfo, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if stream < 0 || stream >= len(h.streams) {
		return StreamInfo{}, fmt.Errorf("%w: stream %d does not exist (%d streams)", ErrInvalidStream, stream, len(h.streams))
	}
	return h.streams[stream], nil
}

// State returns the lifecycle state of the handle.
func (h *VideoHandle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// RegisterStream prepares a video stream for decoding. Registering a stream twice is a no-op.
func (h *VideoHandle) RegisterStream(stream int) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == StateClosed {
		return ErrClosed
	}
	if stream < 0 || stream >= len(h.streams) {
		return fmt.Errorf("%w: stream %d does not exist (%d streams)", ErrInvalidStream, stream, len(h.streams))
	}
	if _, ok := h.contexts[stream]; ok {
		return nil
	}

	info := h.streams[stream]
	if !info.IsVideo() {
		return fmt.Errorf("%w: stream %d is %s, not video", ErrInvalidStream, stream, info.MediaType)
	}
	if info.FrameCount == 0 {
		return fmt.Errorf("%w: stream %d has no frames", ErrInvalidStream, stream)
	}

	dec, err := h.decoders.NewDecoder(h.tracks[stream])
	if err != nil {
		return fmt.Errorf("%w: stream %d (%s): %v", ErrInvalidStream, stream, info.CodecName, err)
	}

	h.contexts[stream] = newDecodeContext(stream, h.indices[stream], dec)
	if h.state == StateCreated {
		h.state = StateStreamRegistered
	}
	h.logger.Debug("Registered stream %d (%s, %d frames, %d keyframes)", stream, info.CodecName, info.FrameCount, info.KeyFrameCount)
	return nil
}

// context returns the decode context of a registered stream. Callers hold h.mu.
func (h *VideoHandle) context(stream int) (*decodeContext, error) {
	if h.state == StateClosed {
		return nil, ErrClosed
	}
	ctx, ok := h.contexts[stream]
	if !ok {
		return nil, fmt.Errorf("%w: stream %d is not registered", ErrInvalidStream, stream)
	}
	return ctx, nil
}

// Stats returns the decode counters accumulated since open or the last ResetStats.
func (h *VideoHandle) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stats
}

// ResetStats zeroes the decode counters.
func (h *VideoHandle) ResetStats() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats = Stats{}
}

// Close releases the decoders, the container and the underlying file, if any.
func (h *VideoHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == StateClosed {
		return nil
	}
	h.state = StateClosed
	for _, ctx := range h.contexts {
		ctx.dec.Close()
	}
	h.contexts = nil

	err := h.demux.Close()
	if h.closer != nil {
		if cerr := h.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{})        {}
func (nopLogger) Info(string, ...interface{})         {}
func (nopLogger) Warn(string, ...interface{})         {}
func (nopLogger) Error(string, ...interface{})        {}
func (l nopLogger) WithComponent(string) ports.Logger { return l }
