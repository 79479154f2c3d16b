package mocks

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/user/clipsampler/pkg/ports"
)

var (
	// ErrMissingReference is returned when a non-keyframe packet arrives with no keyframe fed since the last flush.
	ErrMissingReference = errors.New("mocks: missing reference frame")
	// ErrNotDecoded is returned by Picture for a pts that was never fed.
	ErrNotDecoded = errors.New("mocks: picture not decoded")
)

// PTSColor encodes a presentation timestamp into a solid color.
func PTSColor(pts int64) color.RGBA {
	return color.RGBA{R: uint8(pts >> 16), G: uint8(pts >> 8), B: uint8(pts), A: 255}
}

// ColorPTS reverses PTSColor.
func ColorPTS(r, g, b uint8) int64 {
	return int64(r)<<16 | int64(g)<<8 | int64(b)
}

// PacketDecoder is a mock implementation of ports.PacketDecoder.
// Pictures are solid images whose color is PTSColor(pts).
type PacketDecoder struct {
	mu sync.Mutex

	Width  int
	Height int

	// DecodeFunc, when set, is consulted before the default behaviour.
	DecodeFunc func(pkt ports.Packet) error
	// PictureErrors makes Picture fail for the given pts.
	PictureErrors map[int64]error

	haveKey bool
	fed     map[int64]bool

	// Recorded calls for verification
	DecodeCalls  []ports.Packet
	PictureCalls []int64
	FlushCount   int
	Closed       bool
}

// NewPacketDecoder creates a mock decoder producing w x h pictures.
func NewPacketDecoder(w, h int) *PacketDecoder {
	return &PacketDecoder{
		Width:         w,
		Height:        h,
		PictureErrors: make(map[int64]error),
		fed:           make(map[int64]bool),
	}
}

func (m *PacketDecoder) Decode(pkt ports.Packet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DecodeCalls = append(m.DecodeCalls, pkt)
	if m.DecodeFunc != nil {
		if err := m.DecodeFunc(pkt); err != nil {
			return err
		}
	}
	if pkt.Keyframe {
		m.haveKey = true
	}
	if !m.haveKey {
		return ErrMissingReference
	}
	m.fed[pkt.PTS] = true
	return nil
}

func (m *PacketDecoder) Picture(pts int64) (image.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PictureCalls = append(m.PictureCalls, pts)
	if err, ok := m.PictureErrors[pts]; ok {
		return nil, err
	}
	if !m.fed[pts] {
		return nil, fmt.Errorf("%w: pts %d", ErrNotDecoded, pts)
	}
	img := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	c := PTSColor(pts)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img, nil
}

func (m *PacketDecoder) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FlushCount++
	m.haveKey = false
	m.fed = make(map[int64]bool)
}

func (m *PacketDecoder) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
}

// DecodeCount returns the number of packets fed.
func (m *PacketDecoder) DecodeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.DecodeCalls)
}

// Flushes returns the number of Flush calls.
func (m *PacketDecoder) Flushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FlushCount
}

var _ ports.PacketDecoder = (*PacketDecoder)(nil)

// DecoderFactory is a mock implementation of ports.DecoderFactory.
type DecoderFactory struct {
	mu sync.Mutex

	// NewDecoderFunc overrides the default behaviour when set.
	NewDecoderFunc func(track ports.TrackInfo) (ports.PacketDecoder, error)
	// Unsupported lists codecs the factory refuses.
	Unsupported map[ports.Codec]bool

	Created []*PacketDecoder
}

// NewDecoderFactory creates a factory supporting every codec.
func NewDecoderFactory() *DecoderFactory {
	return &DecoderFactory{Unsupported: make(map[ports.Codec]bool)}
}

func (m *DecoderFactory) NewDecoder(track ports.TrackInfo) (ports.PacketDecoder, error) {
	if m.NewDecoderFunc != nil {
		return m.NewDecoderFunc(track)
	}
	if m.Unsupported[track.Codec] {
		return nil, fmt.Errorf("codec %s not supported", track.Codec)
	}
	d := NewPacketDecoder(track.Width, track.Height)
	m.mu.Lock()
	m.Created = append(m.Created, d)
	m.mu.Unlock()
	return d, nil
}

// Last returns the most recently created decoder.
func (m *DecoderFactory) Last() *PacketDecoder {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Created) == 0 {
		return nil
	}
	return m.Created[len(m.Created)-1]
}

var _ ports.DecoderFactory = (*DecoderFactory)(nil)
