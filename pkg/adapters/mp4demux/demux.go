// Package mp4demux reads the sample tables and compressed samples of MP4 files,
// progressive or fragmented, using mp4ff.
package mp4demux

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/user/clipsampler/pkg/adapters/codecdetect"
	"github.com/user/clipsampler/pkg/ports"
)

var (
	// ErrNoTracks is returned for files without a moov box or tracks.
	ErrNoTracks = errors.New("mp4demux: no tracks found")

	// ErrNoSample is returned for a sample outside a track's sample table.
	ErrNoSample = errors.New("mp4demux: no such sample")
)

// Opener implements ports.DemuxerOpener for MP4 files.
type Opener struct{}

// New creates a new MP4 opener.
func New() *Opener {
	return &Opener{}
}

// Open parses the file structure read from r. Progressive files keep reading
// sample data from r, so r must stay open until the Demuxer is closed.
func (o *Opener) Open(r io.ReadSeeker) (ports.Demuxer, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}
	mp4File, err := mp4.DecodeFile(r)
	if err != nil {
		return nil, fmt.Errorf("decode mp4: %w", err)
	}

	traks := codecdetect.Tracks(mp4File)
	if len(traks) == 0 {
		return nil, ErrNoTracks
	}

	fragmented := mp4File.IsFragmented() && mp4File.Init != nil && mp4File.Init.Moov != nil
	d := &Demuxer{reader: r}
	for i, trak := range traks {
		t, err := newTrack(i, trak)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		if fragmented {
			if err := t.readFragments(mp4File); err != nil {
				return nil, fmt.Errorf("track %d: %w", i, err)
			}
		} else if err := t.readSampleTable(trak); err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		d.tracks = append(d.tracks, t)
	}
	return d, nil
}

var _ ports.DemuxerOpener = (*Opener)(nil)

// Demuxer implements ports.Demuxer over a parsed MP4 file.
type Demuxer struct {
	mu     sync.Mutex
	reader io.ReadSeeker
	tracks []*track
}

func (d *Demuxer) Tracks() []ports.TrackInfo {
	infos := make([]ports.TrackInfo, len(d.tracks))
	for i, t := range d.tracks {
		infos[i] = t.info
	}
	return infos
}

func (d *Demuxer) Samples(track int) ([]ports.Sample, error) {
	if track < 0 || track >= len(d.tracks) {
		return nil, fmt.Errorf("%w: track %d", ErrNoSample, track)
	}
	return append([]ports.Sample(nil), d.tracks[track].samples...), nil
}

// ReadPacket returns a sample in the bitstream format the decoders consume:
// Annex B with parameter sets on keyframes for H.264, temporal units for AV1.
func (d *Demuxer) ReadPacket(track, sample int) ([]byte, error) {
	if track < 0 || track >= len(d.tracks) {
		return nil, fmt.Errorf("%w: track %d", ErrNoSample, track)
	}
	t := d.tracks[track]
	if sample < 0 || sample >= len(t.samples) {
		return nil, fmt.Errorf("%w: sample %d of track %d", ErrNoSample, sample, track)
	}

	var data []byte
	if t.data != nil {
		data = t.data[sample]
	} else {
		var err error
		if data, err = d.readAt(t.offsets[sample], t.samples[sample].Size); err != nil {
			return nil, err
		}
	}
	return t.packetize(data, t.samples[sample].Keyframe), nil
}

func (d *Demuxer) readAt(offset uint64, size uint32) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.reader.Seek(int64(offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to sample: %w", err)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(d.reader, data); err != nil {
		return nil, fmt.Errorf("read sample: %w", err)
	}
	return data, nil
}

// Close releases the sample tables. The reader is owned by the caller.
func (d *Demuxer) Close() error {
	d.tracks = nil
	return nil
}

var _ ports.Demuxer = (*Demuxer)(nil)
