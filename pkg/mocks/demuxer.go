package mocks

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/user/clipsampler/pkg/ports"
)

// VideoSpec describes a synthetic video served by Demuxer.
type VideoSpec struct {
	Frames    int
	GOP       int // Frames per keyframe interval; 0 means every frame is a keyframe
	FPS       int
	Width     int
	Height    int
	Timescale uint32
	// Reorder swaps each pair of frames after a keyframe in decode order, like B-frames do.
	Reorder bool
	// WithAudio adds an audio track before the video track.
	WithAudio bool
	// Codec defaults to ports.CodecH264.
	Codec ports.Codec
}

// Demuxer is a mock implementation of ports.Demuxer serving a synthetic sample table.
type Demuxer struct {
	mu sync.Mutex

	tracks  []ports.TrackInfo
	samples map[int][]ports.Sample

	// ReadErrors makes ReadPacket fail for the given decode-order sample of the video track.
	ReadErrors map[int]error
	// Recorded calls for verification
	ReadPacketCalls []ReadPacketCall
	Closed          bool
}

// ReadPacketCall records a call to ReadPacket.
type ReadPacketCall struct {
	Track  int
	Sample int
}

// NewDemuxer creates a mock demuxer for the given spec.
func NewDemuxer(spec VideoSpec) *Demuxer {
	if spec.FPS == 0 {
		spec.FPS = 30
	}
	if spec.Timescale == 0 {
		spec.Timescale = uint32(spec.FPS) * 1000
	}
	if spec.Width == 0 {
		spec.Width = 64
	}
	if spec.Height == 0 {
		spec.Height = 48
	}
	if spec.Codec == "" {
		spec.Codec = ports.CodecH264
	}

	d := &Demuxer{
		samples:    make(map[int][]ports.Sample),
		ReadErrors: make(map[int]error),
	}

	if spec.WithAudio {
		d.tracks = append(d.tracks, ports.TrackInfo{
			Index:     len(d.tracks),
			TrackID:   uint32(len(d.tracks) + 1),
			MediaType: ports.MediaAudio,
			Codec:     ports.CodecUnknown,
			CodecName: "mp4a",
			Timescale: 48000,
			Duration:  uint64(spec.Frames) * 48000 / uint64(spec.FPS),
		})
		d.samples[0] = []ports.Sample{{Keyframe: true, Duration: 1024, Size: 10}}
	}

	frameDur := spec.Timescale / uint32(spec.FPS)
	video := len(d.tracks)
	d.tracks = append(d.tracks, ports.TrackInfo{
		Index:     video,
		TrackID:   uint32(video + 1),
		MediaType: ports.MediaVideo,
		Codec:     spec.Codec,
		CodecName: codecName(spec.Codec),
		Width:     spec.Width,
		Height:    spec.Height,
		Timescale: spec.Timescale,
		Duration:  uint64(spec.Frames) * uint64(frameDur),
	})
	d.samples[video] = buildSamples(spec, frameDur)
	return d
}

func codecName(c ports.Codec) string {
	switch c {
	case ports.CodecH264:
		return "avc1"
	case ports.CodecAV1:
		return "av01"
	case ports.CodecHEVC:
		return "hvc1"
	default:
		return "unkn"
	}
}

// buildSamples lays out frames in decode order with presentation times by frame number.
func buildSamples(spec VideoSpec, frameDur uint32) []ports.Sample {
	presentation := make([]int, 0, spec.Frames)
	for i := 0; i < spec.Frames; i++ {
		presentation = append(presentation, i)
	}

	isKey := func(i int) bool {
		return spec.GOP <= 0 || i%spec.GOP == 0
	}

	order := make([]int, 0, spec.Frames)
	for i := 0; i < spec.Frames; {
		if spec.Reorder && !isKey(i) && i+1 < spec.Frames && !isKey(i+1) {
			order = append(order, presentation[i+1], presentation[i])
			i += 2
			continue
		}
		order = append(order, presentation[i])
		i++
	}

	samples := make([]ports.Sample, len(order))
	for d, p := range order {
		samples[d] = ports.Sample{
			DecodeTime:       uint64(d) * uint64(frameDur),
			PresentationTime: int64(p) * int64(frameDur),
			Duration:         frameDur,
			Size:             uint32(100 + p%7),
			Keyframe:         isKey(p),
		}
	}
	return samples
}

// VideoTrack returns the index of the video track.
func (m *Demuxer) VideoTrack() int {
	return len(m.tracks) - 1
}

func (m *Demuxer) Tracks() []ports.TrackInfo {
	return append([]ports.TrackInfo(nil), m.tracks...)
}

func (m *Demuxer) Samples(track int) ([]ports.Sample, error) {
	s, ok := m.samples[track]
	if !ok {
		return nil, fmt.Errorf("no track %d", track)
	}
	return append([]ports.Sample(nil), s...), nil
}

func (m *Demuxer) ReadPacket(track, sample int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ReadPacketCalls = append(m.ReadPacketCalls, ReadPacketCall{Track: track, Sample: sample})
	if track == m.VideoTrack() {
		if err, ok := m.ReadErrors[sample]; ok {
			return nil, err
		}
	}
	samples, ok := m.samples[track]
	if !ok || sample < 0 || sample >= len(samples) {
		return nil, fmt.Errorf("no sample %d in track %d", sample, track)
	}
	return []byte(fmt.Sprintf("track=%d sample=%d", track, sample)), nil
}

func (m *Demuxer) Close() error {
	m.Closed = true
	return nil
}

// ReadCount returns the number of ReadPacket calls.
func (m *Demuxer) ReadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ReadPacketCalls)
}

var _ ports.Demuxer = (*Demuxer)(nil)

// ErrCorruptInput is returned by DemuxerOpener when configured to reject input.
var ErrCorruptInput = errors.New("mocks: corrupt input")

// DemuxerOpener is a mock implementation of ports.DemuxerOpener.
// Every Open returns a fresh Demuxer built from Spec.
type DemuxerOpener struct {
	Spec VideoSpec
	// OpenFunc overrides the default behaviour when set.
	OpenFunc func(r io.ReadSeeker) (ports.Demuxer, error)

	mu     sync.Mutex
	Opened []*Demuxer
}

func (m *DemuxerOpener) Open(r io.ReadSeeker) (ports.Demuxer, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(r)
	}
	d := NewDemuxer(m.Spec)
	m.mu.Lock()
	m.Opened = append(m.Opened, d)
	m.mu.Unlock()
	return d, nil
}

var _ ports.DemuxerOpener = (*DemuxerOpener)(nil)
