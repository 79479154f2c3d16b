package decoder

import (
	"fmt"
	"io"

	"github.com/user/clipsampler/pkg/frame"
)

// SimpleDecoder decodes the best video stream of a video, addressed by frame index.
type SimpleDecoder struct {
	handle *VideoHandle
	stream int
	info   StreamInfo
}

// NewSimpleDecoder opens r and registers its best video stream.
func NewSimpleDecoder(r io.ReadSeeker, opts Options) (*SimpleDecoder, error) {
	h, err := Open(r, opts)
	if err != nil {
		return nil, err
	}
	d, err := newSimple(h)
	if err != nil {
		h.Close()
		return nil, err
	}
	return d, nil
}

// NewSimpleDecoderFromHandle registers the best video stream of an already opened handle.
func NewSimpleDecoderFromHandle(h *VideoHandle) (*SimpleDecoder, error) {
	return newSimple(h)
}

func newSimple(h *VideoHandle) (*SimpleDecoder, error) {
	best := h.ContainerInfo().BestVideoStream
	if best < 0 {
		return nil, fmt.Errorf("%w: no video stream", ErrInvalidStream)
	}
	if err := h.RegisterStream(best); err != nil {
		return nil, err
	}
	info, err := h.StreamInfo(best)
	if err != nil {
		return nil, err
	}
	return &SimpleDecoder{handle: h, stream: best, info: info}, nil
}

// Len returns the number of frames.
func (d *SimpleDecoder) Len() int {
	return d.info.FrameCount
}

// Stream returns the metadata of the decoded stream.
func (d *SimpleDecoder) Stream() StreamInfo {
	return d.info
}

// Handle returns the underlying VideoHandle.
func (d *SimpleDecoder) Handle() *VideoHandle {
	return d.handle
}

// At decodes frame i. Negative indices count back from the end.
func (d *SimpleDecoder) At(i int) (frame.Frame, error) {
	if i < 0 {
		i += d.info.FrameCount
	}
	if i < 0 || i >= d.info.FrameCount {
		return frame.Frame{}, fmt.Errorf("%w: index %d, length is %d", ErrOutOfRange, i, d.info.FrameCount)
	}
	return d.handle.DecodeFrameAtIndex(d.stream, i)
}

// Next decodes the next frame of the cursor, returning io.EOF after the last frame.
func (d *SimpleDecoder) Next() (frame.Frame, error) {
	return d.handle.NextFrame(d.stream)
}

// Close releases the underlying handle.
func (d *SimpleDecoder) Close() error {
	return d.handle.Close()
}
