package sampler

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
)

// Mode selects how clip positions are expressed: frame indices or timestamps.
// The implementations are IndexBased and TimeBased.
type Mode interface {
	String() string

	// clipSpecs computes clips start positions over tl and expands each into frames target frames.
	clipSpecs(tl timeline, frames, clips int, dist Distribution) ([]ClipSpec, error)
}

// IndexBased places clips on frame indices; a clip is a run of consecutive frames.
type IndexBased struct{}

func (IndexBased) String() string { return "index-based" }

// TimeBased places clips on timestamps; a clip is frames timestamps spaced 1/fps apart.
type TimeBased struct {
	// FrameRate is the target frame rate of a clip. Zero uses the stream's average rate.
	FrameRate float64
}

func (m TimeBased) String() string {
	if m.FrameRate > 0 {
		return fmt.Sprintf("time-based@%gfps", m.FrameRate)
	}
	return "time-based"
}

// Range is the set of valid clip starts [0, Max]. Discrete ranges hold the integers only.
type Range struct {
	Max      float64
	Discrete bool
}

// Distribution spreads n clip starts over a Range.
// The implementations are Uniform and Random.
type Distribution interface {
	String() string

	// Starts returns n start positions inside r, in the order clips are emitted.
	Starts(r Range, n int) []float64
}

// Uniform spaces starts evenly from offset 0. It uses no randomness.
type Uniform struct{}

func (Uniform) String() string { return "uniform" }

// Starts returns floor(i*(Max+1)/n) for discrete ranges and i*Max/n otherwise.
func (Uniform) Starts(r Range, n int) []float64 {
	starts := make([]float64, n)
	for i := range starts {
		if r.Discrete {
			count := int(r.Max) + 1
			starts[i] = float64(i * count / n)
		} else {
			starts[i] = float64(i) * r.Max / float64(n)
		}
	}
	return starts
}

// Random draws every start independently and uniformly. Overlapping clips are allowed.
type Random struct {
	Rand *rand.Rand
}

// NewRandom returns a Random distribution seeded deterministically.
func NewRandom(seed uint64) Random {
	return Random{Rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (Random) String() string { return "random" }

func (d Random) Starts(r Range, n int) []float64 {
	starts := make([]float64, n)
	for i := range starts {
		if r.Discrete {
			starts[i] = float64(d.Rand.IntN(int(r.Max) + 1))
		} else {
			starts[i] = d.Rand.Float64() * r.Max
		}
	}
	return starts
}

// ParseMode parses "index-based" or "time-based" (also "index" and "time").
// frameRate only applies to the time-based mode.
func ParseMode(s string, frameRate float64) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "index-based", "index":
		return IndexBased{}, nil
	case "time-based", "time":
		return TimeBased{FrameRate: frameRate}, nil
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrConfig, s)
	}
}

// ParseDistribution parses "uniform" or "random". seed only applies to random.
func ParseDistribution(s string, seed uint64) (Distribution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "uniform":
		return Uniform{}, nil
	case "random":
		return NewRandom(seed), nil
	default:
		return nil, fmt.Errorf("%w: unknown sampler type %q", ErrConfig, s)
	}
}

// Config is a sampling policy.
type Config struct {
	Mode          Mode
	Distribution  Distribution
	ClipsPerVideo int
	FramesPerClip int
}

// Validate checks the policy, wrapping ErrConfig.
func (c Config) Validate() error {
	if c.Mode == nil {
		return fmt.Errorf("%w: mode is required", ErrConfig)
	}
	if m, ok := c.Mode.(TimeBased); ok && (m.FrameRate < 0 || math.IsNaN(m.FrameRate) || math.IsInf(m.FrameRate, 0)) {
		return fmt.Errorf("%w: frame rate must be positive or zero, got %v", ErrConfig, m.FrameRate)
	}
	if c.Distribution == nil {
		return fmt.Errorf("%w: distribution is required", ErrConfig)
	}
	if r, ok := c.Distribution.(Random); ok && r.Rand == nil {
		return fmt.Errorf("%w: random distribution needs a random source", ErrConfig)
	}
	if c.ClipsPerVideo <= 0 {
		return fmt.Errorf("%w: clips_per_video must be positive, got %d", ErrConfig, c.ClipsPerVideo)
	}
	if c.FramesPerClip <= 0 {
		return fmt.Errorf("%w: frames_per_clip must be positive, got %d", ErrConfig, c.FramesPerClip)
	}
	return nil
}

// BestStream selects the container's best video stream.
const BestStream = -1

// VideoArgs is the output geometry of every sampled frame.
type VideoArgs struct {
	Width  int
	Height int
	// Stream is the video stream to sample, or BestStream.
	Stream int
}

// NewVideoArgs returns VideoArgs for the best video stream.
func NewVideoArgs(width, height int) VideoArgs {
	return VideoArgs{Width: width, Height: height, Stream: BestStream}
}

// Validate checks the geometry, wrapping ErrConfig.
func (a VideoArgs) Validate() error {
	if a.Width <= 0 || a.Height <= 0 {
		return fmt.Errorf("%w: output size must be positive, got %dx%d", ErrConfig, a.Width, a.Height)
	}
	if a.Stream < BestStream {
		return fmt.Errorf("%w: invalid stream %d", ErrConfig, a.Stream)
	}
	return nil
}
