package decoder

import (
	"fmt"
	"io"
	"math"

	"github.com/user/clipsampler/pkg/frame"
	"github.com/user/clipsampler/pkg/ports"
)

// Stats counts decoder work. It exists to observe seek behaviour.
type Stats struct {
	// SeeksAttempted counts decode requests that needed packets the decoder had not seen.
	SeeksAttempted int64 `json:"seeks_attempted"`
	// SeeksDone counts flushes followed by decoding from a keyframe.
	SeeksDone int64 `json:"seeks_done"`
	// SeeksSkipped counts requests served by decoding forward within the current keyframe run.
	SeeksSkipped  int64 `json:"seeks_skipped"`
	PacketsRead   int64 `json:"packets_read"`
	PacketsSent   int64 `json:"packets_sent"`
	Flushes       int64 `json:"flushes"`
	FramesDecoded int64 `json:"frames_decoded"`
}

// decodeContext is the decode cursor of one registered stream.
type decodeContext struct {
	stream int
	idx    *streamIndex
	dec    ports.PacketDecoder

	// fed is the last decode position fed since the last flush, -1 when nothing is fed.
	fed int
	// runKeyframe is the decode position of the keyframe the fed run started from.
	runKeyframe int
	// lastIndex is the last decoded frame index in presentation order, -1 if none.
	lastIndex int
	// cursor is the next frame returned by NextFrame.
	cursor int
}

func newDecodeContext(stream int, idx *streamIndex, dec ports.PacketDecoder) *decodeContext {
	return &decodeContext{
		stream:      stream,
		idx:         idx,
		dec:         dec,
		fed:         -1,
		runKeyframe: -1,
		lastIndex:   -1,
	}
}

func (c *decodeContext) reset() {
	c.dec.Flush()
	c.fed = -1
	c.runKeyframe = -1
}

// DecodeFrameAtIndex decodes the frame at a presentation-order index.
func (h *VideoHandle) DecodeFrameAtIndex(stream, index int) (frame.Frame, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ctx, err := h.context(stream)
	if err != nil {
		return frame.Frame{}, err
	}
	return h.decodeAt(ctx, index)
}

// DecodeFramesAtIndices decodes several frames of one stream. It fails as a whole if any frame fails.
func (h *VideoHandle) DecodeFramesAtIndices(stream int, indices []int) (frame.Clip, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ctx, err := h.context(stream)
	if err != nil {
		return frame.Clip{}, err
	}
	for _, i := range indices {
		if i < 0 || i >= ctx.idx.len() {
			return frame.Clip{}, fmt.Errorf("%w: frame %d, stream %d has %d frames", ErrOutOfRange, i, stream, ctx.idx.len())
		}
	}

	clip := frame.Clip{Frames: make([]frame.Frame, 0, len(indices))}
	for _, i := range indices {
		f, err := h.decodeAt(ctx, i)
		if err != nil {
			return frame.Clip{}, err
		}
		clip.Frames = append(clip.Frames, f)
	}
	return clip, nil
}

// decodeAt seeks only when the target cannot be reached by decoding forward. Callers hold h.mu.
func (h *VideoHandle) decodeAt(ctx *decodeContext, index int) (frame.Frame, error) {
	idx := ctx.idx
	if index < 0 || index >= idx.len() {
		return frame.Frame{}, fmt.Errorf("%w: frame %d, stream %d has %d frames", ErrOutOfRange, index, ctx.stream, idx.len())
	}

	target := idx.order[index]
	key := idx.keyframe[target]
	sameRun := ctx.fed >= 0 && key == ctx.runKeyframe

	switch {
	case sameRun && target <= ctx.fed:
		// Already fed: the picture is held by the decoder.
	case ctx.fed >= 0 && target > ctx.fed && (sameRun || target == ctx.fed+1):
		h.stats.SeeksAttempted++
		h.stats.SeeksSkipped++
		if err := h.feed(ctx, ctx.fed+1, target); err != nil {
			return frame.Frame{}, err
		}
	default:
		h.stats.SeeksAttempted++
		h.stats.SeeksDone++
		h.stats.Flushes++
		h.logger.Debug("Seeking stream %d to keyframe %d for frame %d", ctx.stream, key, index)
		ctx.reset()
		ctx.runKeyframe = key
		if err := h.feed(ctx, key, target); err != nil {
			return frame.Frame{}, err
		}
	}

	pts := idx.pts[index]
	img, err := ctx.dec.Picture(pts)
	if err != nil {
		ctx.reset()
		return frame.Frame{}, fmt.Errorf("%w: frame %d of stream %d: %v", ErrDecode, index, ctx.stream, err)
	}

	h.stats.FramesDecoded++
	ctx.lastIndex = index
	h.state = StateDecoding

	f := frame.FromImage(img)
	f.PTS = pts
	f.Seconds = idx.relSeconds(pts)
	f.Index = index
	return f, nil
}

// feed sends the samples at decode positions from..to to the decoder.
func (h *VideoHandle) feed(ctx *decodeContext, from, to int) error {
	for d := from; d <= to; d++ {
		data, err := h.demux.ReadPacket(ctx.stream, d)
		if err != nil {
			ctx.reset()
			return fmt.Errorf("%w: read packet %d of stream %d: %v", ErrDecode, d, ctx.stream, err)
		}
		h.stats.PacketsRead++

		s := ctx.idx.samples[d]
		if s.Keyframe {
			ctx.runKeyframe = d
		}
		pkt := ports.Packet{Data: data, PTS: s.PresentationTime, Keyframe: s.Keyframe}
		if err := ctx.dec.Decode(pkt); err != nil {
			ctx.reset()
			return fmt.Errorf("%w: packet %d of stream %d: %v", ErrDecode, d, ctx.stream, err)
		}
		h.stats.PacketsSent++
		ctx.fed = d
	}
	return nil
}

// TimestampToFrameIndex maps an offset in seconds from the stream start to the frame
// with the nearest presentation timestamp.
func (h *VideoHandle) TimestampToFrameIndex(stream int, seconds float64) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	idx, err := h.timedIndex(stream, seconds)
	if err != nil {
		return 0, err
	}
	return idx.nearest(idx.ticks(seconds)), nil
}

// FrameDisplayedAt decodes the frame on screen at an offset in seconds from the stream start.
func (h *VideoHandle) FrameDisplayedAt(stream int, seconds float64) (frame.Frame, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	idx, err := h.timedIndex(stream, seconds)
	if err != nil {
		return frame.Frame{}, err
	}
	ctx, err := h.context(stream)
	if err != nil {
		return frame.Frame{}, err
	}
	return h.decodeAt(ctx, idx.displayed(idx.ticks(seconds)))
}

func (h *VideoHandle) timedIndex(stream int, seconds float64) (*streamIndex, error) {
	if h.state == StateClosed {
		return nil, ErrClosed
	}
	if stream < 0 || stream >= len(h.streams) || !h.streams[stream].IsVideo() {
		return nil, fmt.Errorf("%w: stream %d", ErrInvalidStream, stream)
	}
	info := h.streams[stream]
	if math.IsNaN(seconds) || seconds < 0 || seconds > info.Duration || info.FrameCount == 0 {
		return nil, fmt.Errorf("%w: %.6fs, stream %d lasts %.6fs", ErrOutOfRange, seconds, stream, info.Duration)
	}
	return h.indices[stream], nil
}

// ticks converts an offset from the stream start into an absolute presentation timestamp.
func (idx *streamIndex) ticks(seconds float64) int64 {
	return idx.pts[0] + int64(math.Round(seconds*float64(idx.timescale)))
}

// SetCursor places the cursor of a registered stream at the first frame at or after seconds.
func (h *VideoHandle) SetCursor(stream int, seconds float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	idx, err := h.timedIndex(stream, seconds)
	if err != nil {
		return err
	}
	ctx, err := h.context(stream)
	if err != nil {
		return err
	}

	i := idx.displayed(idx.ticks(seconds))
	if idx.pts[i] < idx.ticks(seconds) {
		i++
	}
	ctx.cursor = i
	return nil
}

// NextFrame decodes the frame at the cursor and advances it. It returns io.EOF past the last frame.
func (h *VideoHandle) NextFrame(stream int) (frame.Frame, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ctx, err := h.context(stream)
	if err != nil {
		return frame.Frame{}, err
	}
	if ctx.cursor >= ctx.idx.len() {
		return frame.Frame{}, io.EOF
	}
	f, err := h.decodeAt(ctx, ctx.cursor)
	if err != nil {
		return frame.Frame{}, err
	}
	ctx.cursor++
	return f, nil
}
