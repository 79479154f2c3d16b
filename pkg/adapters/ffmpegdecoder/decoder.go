// Package ffmpegdecoder decodes H.264 and AV1 access units with an external ffmpeg process.
//
// Packets since the most recent keyframe are buffered as an elementary stream.
// A picture request runs ffmpeg over that buffer and selects the requested
// frame by its rank in presentation order.
package ffmpegdecoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"strconv"
	"sync"

	"github.com/user/clipsampler/pkg/ports"
)

var (
	// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
	ErrFFmpegNotFound = errors.New("ffmpegdecoder: ffmpeg not found")

	// ErrDecodeFailed is returned when ffmpeg cannot produce the requested picture.
	ErrDecodeFailed = errors.New("ffmpegdecoder: decode failed")

	// ErrNotFed is returned for a picture whose packet was not fed since the last keyframe or flush.
	ErrNotFed = errors.New("ffmpegdecoder: packet not fed")

	// ErrUnsupportedCodec is returned for codecs ffmpeg is not driven for here.
	ErrUnsupportedCodec = errors.New("ffmpegdecoder: unsupported codec")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("ffmpegdecoder: decoder closed")
)

// Decoder implements ports.PacketDecoder.
type Decoder struct {
	ffmpegPath string
	format     string

	mu     sync.Mutex
	stream bytes.Buffer
	fed    []int64
	closed bool
}

// New creates a decoder for the given codec. The ffmpeg binary is resolved once here.
func New(codec ports.Codec) (*Decoder, error) {
	var format string
	switch codec {
	case ports.CodecH264:
		format = "h264"
	case ports.CodecAV1:
		format = "obu"
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, codec)
	}

	ffmpegPath, err := FindFFmpeg()
	if err != nil {
		return nil, err
	}
	return &Decoder{ffmpegPath: ffmpegPath, format: format}, nil
}

// Decode buffers one access unit. A keyframe starts a new buffer.
func (d *Decoder) Decode(pkt ports.Packet) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}
	if len(pkt.Data) == 0 {
		return fmt.Errorf("%w: empty packet", ErrDecodeFailed)
	}
	if pkt.Keyframe {
		d.reset()
	} else if len(d.fed) == 0 {
		return fmt.Errorf("%w: delta packet without preceding keyframe", ErrDecodeFailed)
	}

	d.stream.Write(pkt.Data)
	d.fed = append(d.fed, pkt.PTS)
	return nil
}

// Picture decodes the buffered stream and returns the frame presented at pts.
func (d *Decoder) Picture(pts int64) (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrClosed
	}

	found := false
	rank := 0
	for _, p := range d.fed {
		switch {
		case p == pts:
			found = true
		case p < pts:
			rank++
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: pts %d", ErrNotFed, pts)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(d.ffmpegPath,
		"-hide_banner",
		"-loglevel", "error",
		"-f", d.format,
		"-i", "pipe:0",
		"-vf", "select=eq(n\\,"+strconv.Itoa(rank)+")",
		"-vsync", "0",
		"-frames:v", "1",
		"-f", "image2pipe",
		"-c:v", "png",
		"pipe:1",
	)
	cmd.Stdin = bytes.NewReader(d.stream.Bytes())
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg: %v\nstderr: %s", ErrDecodeFailed, err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: no frame at rank %d\nstderr: %s", ErrDecodeFailed, rank, stderr.String())
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("%w: decode png: %v", ErrDecodeFailed, err)
	}
	return img, nil
}

// Flush discards the buffered stream.
func (d *Decoder) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reset()
}

func (d *Decoder) reset() {
	d.stream.Reset()
	d.fed = d.fed[:0]
}

// Close releases decoder resources.
func (d *Decoder) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reset()
	d.closed = true
}

var _ ports.PacketDecoder = (*Decoder)(nil)
