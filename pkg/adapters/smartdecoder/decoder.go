// Package smartdecoder selects a packet decoder backend for each track codec.
package smartdecoder

import (
	"errors"
	"fmt"

	"github.com/user/clipsampler/pkg/adapters/ffmpegdecoder"
	"github.com/user/clipsampler/pkg/ports"
)

// Backend represents the decoding backend used.
type Backend string

const (
	// BackendFFmpeg represents FFmpeg-based decoding.
	BackendFFmpeg Backend = "ffmpeg"
)

// Info contains information about the selected decoder.
type Info struct {
	// Codec is the track codec.
	Codec ports.Codec
	// Backend is the decoding backend being used.
	Backend Backend
}

// Options configures the smart decoder behavior.
type Options struct {
	// FFmpegPath is an optional custom path to the ffmpeg binary.
	FFmpegPath string
}

var (
	// ErrUnsupportedCodec is returned when the codec is not supported.
	ErrUnsupportedCodec = errors.New("smartdecoder: unsupported codec")
	// ErrNoDecoderAvailable is returned when no decoder is available for the codec.
	ErrNoDecoderAvailable = errors.New("smartdecoder: no decoder available")
)

type backendFunc func(codec ports.Codec) (ports.PacketDecoder, error)

// Factory implements ports.DecoderFactory.
//
// The selection flow:
//   - H.264: FFmpeg decoder (raw Annex B elementary stream)
//   - AV1: FFmpeg decoder (low overhead OBU stream)
//   - HEVC and anything else: unsupported
type Factory struct {
	available func() bool
	ffmpeg    backendFunc
}

// New creates a factory. A non-empty FFmpegPath overrides ffmpeg discovery process-wide.
func New(opts Options) *Factory {
	if opts.FFmpegPath != "" {
		ffmpegdecoder.SetFFmpegPath(opts.FFmpegPath)
	}
	return &Factory{
		available: ffmpegdecoder.IsAvailable,
		ffmpeg: func(codec ports.Codec) (ports.PacketDecoder, error) {
			return ffmpegdecoder.New(codec)
		},
	}
}

// Select reports the backend that would decode codec.
func (f *Factory) Select(codec ports.Codec) (Info, error) {
	switch codec {
	case ports.CodecH264, ports.CodecAV1:
		if !f.available() {
			return Info{}, fmt.Errorf("%w: %s needs ffmpeg", ErrNoDecoderAvailable, codec)
		}
		return Info{Codec: codec, Backend: BackendFFmpeg}, nil
	default:
		return Info{}, fmt.Errorf("%w: %s", ErrUnsupportedCodec, codec)
	}
}

// NewDecoder creates a decoder for the track's codec.
func (f *Factory) NewDecoder(track ports.TrackInfo) (ports.PacketDecoder, error) {
	info, err := f.Select(track.Codec)
	if err != nil {
		return nil, err
	}
	switch info.Backend {
	case BackendFFmpeg:
		return f.ffmpeg(track.Codec)
	default:
		return nil, fmt.Errorf("%w: backend %s", ErrNoDecoderAvailable, info.Backend)
	}
}

var _ ports.DecoderFactory = (*Factory)(nil)

// IsH264Available checks if H.264 decoding is available.
func IsH264Available() bool {
	return ffmpegdecoder.IsAvailable()
}

// IsAV1Available checks if AV1 decoding is available.
func IsAV1Available() bool {
	return ffmpegdecoder.IsAvailable()
}
