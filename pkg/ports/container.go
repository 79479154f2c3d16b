package ports

import (
	"io"
)

// MediaType classifies a container track.
type MediaType string

const (
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
	MediaOther MediaType = "other"
)

// Codec identifies the compression format of a track.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecHEVC    Codec = "hevc"
	CodecAV1     Codec = "av1"
	CodecUnknown Codec = "unknown"
)

// TrackInfo holds the container-level facts about one track.
type TrackInfo struct {
	Index     int
	TrackID   uint32
	MediaType MediaType
	Codec     Codec
	// CodecName is the sample entry four-character code (e.g. "avc1", "mp4a").
	CodecName string
	Width     int
	Height    int
	// Timescale is the number of ticks per second (the time base is 1/Timescale).
	Timescale uint32
	// Duration is the media duration in Timescale ticks. Zero when unknown.
	Duration uint64
}

// Sample describes one compressed access unit, in decode order.
type Sample struct {
	DecodeTime uint64
	// PresentationTime is DecodeTime plus the composition offset, in Timescale ticks.
	PresentationTime int64
	Duration         uint32
	Size             uint32
	Keyframe         bool
}

// Demuxer exposes the tracks of an opened container.
type Demuxer interface {
	// Tracks returns all tracks in container order.
	Tracks() []TrackInfo

	// Samples returns the sample table of a track in decode order.
	Samples(track int) ([]Sample, error)

	// ReadPacket returns the codec-ready payload of a sample.
	// Keyframe payloads carry the out-of-band parameter sets needed to start decoding there.
	ReadPacket(track, sample int) ([]byte, error)

	// Close releases container resources.
	Close() error
}

// DemuxerOpener probes a byte stream and opens it as a container.
type DemuxerOpener interface {
	Open(r io.ReadSeeker) (Demuxer, error)
}
