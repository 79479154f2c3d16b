package decoder

import (
	"fmt"
	"sort"

	"github.com/user/clipsampler/pkg/ports"
)

// streamIndex maps presentation-order frame indices onto the decode-order sample table.
type streamIndex struct {
	samples []ports.Sample
	// order[i] is the decode position of the i-th frame in presentation order.
	order []int
	// keyframe[d] is the decode position of the keyframe governing decode position d.
	keyframe []int
	// pts[i] is the presentation timestamp of the i-th frame in presentation order.
	pts       []int64
	timescale uint32
	numKeys   int
}

func buildIndex(samples []ports.Sample, timescale uint32) (*streamIndex, error) {
	if timescale == 0 {
		return nil, fmt.Errorf("zero timescale")
	}

	idx := &streamIndex{
		samples:   samples,
		order:     make([]int, len(samples)),
		keyframe:  make([]int, len(samples)),
		pts:       make([]int64, len(samples)),
		timescale: timescale,
	}

	// Samples before the first keyframe cannot be decoded on their own;
	// they are governed by position 0 so a seek there starts from the beginning.
	current := 0
	for d, s := range samples {
		if s.Keyframe {
			current = d
			idx.numKeys++
		}
		idx.keyframe[d] = current
		idx.order[d] = d
	}

	sort.SliceStable(idx.order, func(a, b int) bool {
		return samples[idx.order[a]].PresentationTime < samples[idx.order[b]].PresentationTime
	})
	for i, d := range idx.order {
		idx.pts[i] = samples[d].PresentationTime
	}

	return idx, nil
}

func (idx *streamIndex) len() int {
	return len(idx.order)
}

func (idx *streamIndex) seconds(pts int64) float64 {
	return float64(pts) / float64(idx.timescale)
}

// relSeconds returns the offset of pts from the first presentation timestamp.
func (idx *streamIndex) relSeconds(pts int64) float64 {
	if len(idx.pts) == 0 {
		return 0
	}
	return float64(pts-idx.pts[0]) / float64(idx.timescale)
}

// endPTS returns the presentation time after the last frame.
func (idx *streamIndex) endPTS() int64 {
	if len(idx.order) == 0 {
		return 0
	}
	last := idx.order[len(idx.order)-1]
	return idx.samples[last].PresentationTime + int64(idx.samples[last].Duration)
}

// nearest returns the frame whose presentation timestamp is closest to pts, ties to the earlier frame.
func (idx *streamIndex) nearest(pts int64) int {
	i := sort.Search(len(idx.pts), func(i int) bool { return idx.pts[i] >= pts })
	switch {
	case i == 0:
		return 0
	case i == len(idx.pts):
		return len(idx.pts) - 1
	case idx.pts[i]-pts < pts-idx.pts[i-1]:
		return i
	default:
		return i - 1
	}
}

// displayed returns the frame on screen at pts: the last frame starting at or before it.
func (idx *streamIndex) displayed(pts int64) int {
	i := sort.Search(len(idx.pts), func(i int) bool { return idx.pts[i] > pts })
	if i == 0 {
		return 0
	}
	return i - 1
}

func (idx *streamIndex) info(track ports.TrackInfo) StreamInfo {
	info := StreamInfo{
		Index:         track.Index,
		MediaType:     track.MediaType,
		Codec:         track.Codec,
		CodecName:     track.CodecName,
		Width:         track.Width,
		Height:        track.Height,
		FrameCount:    idx.len(),
		KeyFrameCount: idx.numKeys,
		TimeBase:      Rational{Num: 1, Den: int64(track.Timescale)},
	}
	if idx.len() == 0 {
		return info
	}

	begin := idx.pts[0]
	end := idx.endPTS()
	info.BeginSeconds = idx.seconds(begin)
	info.EndSeconds = idx.seconds(end)

	if track.Duration > 0 {
		info.Duration = float64(track.Duration) / float64(track.Timescale)
	} else {
		info.Duration = idx.seconds(end - begin)
	}

	if info.Duration > 0 {
		info.AverageFPS = float64(idx.len()) / info.Duration
		var bytes uint64
		for _, s := range idx.samples {
			bytes += uint64(s.Size)
		}
		info.BitRate = float64(bytes*8) / info.Duration
	}
	return info
}
