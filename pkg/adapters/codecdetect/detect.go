// Package codecdetect identifies the codec of MP4 tracks from their sample entries.
package codecdetect

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/user/clipsampler/pkg/ports"
)

// DetectFromFile detects the codec of the first video track of an MP4 file.
func DetectFromFile(path string) (ports.Codec, error) {
	f, err := os.Open(path)
	if err != nil {
		return ports.CodecUnknown, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return DetectFromReader(f)
}

// DetectFromReader detects the codec of the first video track from an io.ReadSeeker.
func DetectFromReader(reader io.ReadSeeker) (ports.Codec, error) {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return ports.CodecUnknown, fmt.Errorf("decode mp4: %w", err)
	}

	// Reset reader position for subsequent reads
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return ports.CodecUnknown, fmt.Errorf("seek: %w", err)
	}

	return detectFromMP4File(mp4File)
}

// DetectFromBytes detects the codec of the first video track from MP4 data bytes.
func DetectFromBytes(data []byte) (ports.Codec, error) {
	return DetectFromReader(bytes.NewReader(data))
}

// Tracks returns the track boxes of a progressive or fragmented file.
func Tracks(mp4File *mp4.File) []*mp4.TrakBox {
	if mp4File.IsFragmented() && mp4File.Init != nil && mp4File.Init.Moov != nil {
		return mp4File.Init.Moov.Traks
	}
	if mp4File.Moov != nil {
		return mp4File.Moov.Traks
	}
	return nil
}

func detectFromMP4File(mp4File *mp4.File) (ports.Codec, error) {
	for _, trak := range Tracks(mp4File) {
		if MediaType(trak) != ports.MediaVideo {
			continue
		}
		codec, _ := FromTrack(trak)
		return codec, nil
	}
	return ports.CodecUnknown, fmt.Errorf("no video track found")
}

// MediaType classifies a track by its handler.
func MediaType(trak *mp4.TrakBox) ports.MediaType {
	if trak.Mdia == nil || trak.Mdia.Hdlr == nil {
		return ports.MediaOther
	}
	switch trak.Mdia.Hdlr.HandlerType {
	case "vide":
		return ports.MediaVideo
	case "soun":
		return ports.MediaAudio
	default:
		return ports.MediaOther
	}
}

// SampleEntry returns the first sample description box of a track, or nil.
func SampleEntry(trak *mp4.TrakBox) mp4.Box {
	if trak.Mdia == nil || trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return nil
	}
	children := trak.Mdia.Minf.Stbl.Stsd.Children
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// FromTrack returns the codec of a track and the four-character code of its sample entry.
func FromTrack(trak *mp4.TrakBox) (ports.Codec, string) {
	entry := SampleEntry(trak)
	if entry == nil {
		return ports.CodecUnknown, ""
	}

	name := entry.Type()
	switch name {
	case "avc1", "avc3":
		return ports.CodecH264, name
	case "hvc1", "hev1":
		return ports.CodecHEVC, name
	case "av01":
		return ports.CodecAV1, name
	default:
		return ports.CodecUnknown, name
	}
}
