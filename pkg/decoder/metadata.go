package decoder

import (
	"fmt"

	"github.com/user/clipsampler/pkg/ports"
)

// Rational is a fraction, used for stream time bases.
type Rational struct {
	Num int64
	Den int64
}

// Float returns the value of the fraction.
func (r Rational) Float() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// StreamInfo is the immutable metadata of one stream.
type StreamInfo struct {
	Index     int             `json:"index" yaml:"index"`
	MediaType ports.MediaType `json:"media_type" yaml:"media_type"`
	Codec     ports.Codec     `json:"codec" yaml:"codec"`
	CodecName string          `json:"codec_name" yaml:"codec_name"`
	Width     int             `json:"width,omitempty" yaml:"width,omitempty"`
	Height    int             `json:"height,omitempty" yaml:"height,omitempty"`

	FrameCount    int     `json:"frame_count" yaml:"frame_count"`
	KeyFrameCount int     `json:"key_frame_count" yaml:"key_frame_count"`
	AverageFPS    float64 `json:"average_fps" yaml:"average_fps"`
	// Duration is in seconds.
	Duration float64  `json:"duration" yaml:"duration"`
	TimeBase Rational `json:"time_base" yaml:"time_base"`

	// BeginSeconds and EndSeconds bound the presentation timestamps found in the sample table.
	BeginSeconds float64 `json:"begin_seconds" yaml:"begin_seconds"`
	EndSeconds   float64 `json:"end_seconds" yaml:"end_seconds"`
	// BitRate is in bits per second.
	BitRate float64 `json:"bit_rate" yaml:"bit_rate"`
}

// IsVideo reports whether the stream carries video.
func (s StreamInfo) IsVideo() bool {
	return s.MediaType == ports.MediaVideo
}

// ContainerInfo describes all streams of an opened video.
type ContainerInfo struct {
	Streams         []StreamInfo `json:"streams" yaml:"streams"`
	NumVideoStreams int          `json:"num_video_streams" yaml:"num_video_streams"`
	NumAudioStreams int          `json:"num_audio_streams" yaml:"num_audio_streams"`
	// Duration is the longest stream duration in seconds.
	Duration float64 `json:"duration" yaml:"duration"`
	// BestVideoStream is the default video stream index, or -1 when there is none.
	BestVideoStream int `json:"best_video_stream" yaml:"best_video_stream"`
}
