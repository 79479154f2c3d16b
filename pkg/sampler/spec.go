package sampler

import (
	"fmt"
	"math"
)

// ClipSpec lists the frames of one clip.
type ClipSpec struct {
	// Start is a frame index (index-based) or an offset in seconds (time-based).
	Start   float64 `json:"start"`
	Indices []int   `json:"indices"`

	// Timestamps are the requested offsets in seconds; empty for index-based clips.
	Timestamps []float64 `json:"timestamps,omitempty"`
}

// timeline is the view of a registered stream that clip planning needs.
type timeline interface {
	frameCount() int
	duration() float64
	averageFPS() float64
	indexAt(seconds float64) (int, error)
}

func (IndexBased) clipSpecs(tl timeline, frames, clips int, dist Distribution) ([]ClipSpec, error) {
	count := tl.frameCount()
	if frames > count {
		return nil, fmt.Errorf("%w: %d frames per clip, stream has %d frames", ErrInsufficientLength, frames, count)
	}

	starts := dist.Starts(Range{Max: float64(count - frames), Discrete: true}, clips)
	specs := make([]ClipSpec, len(starts))
	for i, start := range starts {
		first := int(start)
		spec := ClipSpec{Start: start, Indices: make([]int, frames)}
		for j := range spec.Indices {
			spec.Indices[j] = first + j
		}
		specs[i] = spec
	}
	return specs, nil
}

func (m TimeBased) clipSpecs(tl timeline, frames, clips int, dist Distribution) ([]ClipSpec, error) {
	fps := m.FrameRate
	if fps <= 0 {
		fps = tl.averageFPS()
	}
	if fps <= 0 {
		return nil, fmt.Errorf("%w: stream has no frame rate", ErrInsufficientLength)
	}

	clipDuration := float64(frames) / fps
	span := tl.duration() - clipDuration
	if span < 0 {
		return nil, fmt.Errorf("%w: clip lasts %.3fs, stream lasts %.3fs", ErrInsufficientLength, clipDuration, tl.duration())
	}

	starts := dist.Starts(Range{Max: span}, clips)
	specs := make([]ClipSpec, len(starts))
	for i, start := range starts {
		spec := ClipSpec{
			Start:      start,
			Indices:    make([]int, frames),
			Timestamps: make([]float64, frames),
		}
		for j := range spec.Indices {
			ts := math.Min(start+float64(j)/fps, tl.duration())
			idx, err := tl.indexAt(ts)
			if err != nil {
				return nil, err
			}
			spec.Timestamps[j] = ts
			spec.Indices[j] = idx
		}
		specs[i] = spec
	}
	return specs, nil
}
