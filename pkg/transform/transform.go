// Package transform resizes decoded frames to a fixed output geometry.
package transform

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/user/clipsampler/pkg/frame"
)

// ErrInvalidSize is returned for non-positive output dimensions.
var ErrInvalidSize = errors.New("transform: invalid output size")

// Interpolation names a resampling kernel.
type Interpolation string

const (
	Nearest        Interpolation = "nearest"
	ApproxBiLinear Interpolation = "approx-bilinear"
	BiLinear       Interpolation = "bilinear"
	CatmullRom     Interpolation = "catmull-rom"
)

// DefaultInterpolation is used when none is configured.
const DefaultInterpolation = CatmullRom

// Interpolations lists the supported kernels.
func Interpolations() []Interpolation {
	return []Interpolation{Nearest, ApproxBiLinear, BiLinear, CatmullRom}
}

// IsValidInterpolation reports whether name is a supported kernel.
func IsValidInterpolation(name string) bool {
	for _, i := range Interpolations() {
		if string(i) == name {
			return true
		}
	}
	return false
}

func (i Interpolation) scaler() draw.Scaler {
	switch i {
	case Nearest:
		return draw.NearestNeighbor
	case ApproxBiLinear:
		return draw.ApproxBiLinear
	case BiLinear:
		return draw.BiLinear
	default:
		return draw.CatmullRom
	}
}

// Transformer resizes frames with a fixed kernel. It holds no mutable state.
type Transformer struct {
	scaler draw.Scaler
}

// New creates a Transformer using the given kernel.
func New(interp Interpolation) *Transformer {
	return &Transformer{scaler: interp.scaler()}
}

var defaultTransformer = New(DefaultInterpolation)

// Transform resizes f to exactly width × height with the default kernel.
func Transform(f frame.Frame, width, height int) (frame.Frame, error) {
	return defaultTransformer.Transform(f, width, height)
}

// Transform stretches f to exactly width × height RGB. The aspect ratio is not preserved.
func (t *Transformer) Transform(f frame.Frame, width, height int) (frame.Frame, error) {
	if width <= 0 || height <= 0 {
		return frame.Frame{}, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if f.Width <= 0 || f.Height <= 0 || len(f.Pix) != f.Width*f.Height*frame.Channels {
		return frame.Frame{}, fmt.Errorf("%w: source frame %dx%d with %d bytes", ErrInvalidSize, f.Width, f.Height, len(f.Pix))
	}

	out := frame.Frame{
		Width:   width,
		Height:  height,
		PTS:     f.PTS,
		Seconds: f.Seconds,
		Index:   f.Index,
	}

	if f.Width == width && f.Height == height {
		out.Pix = make([]uint8, len(f.Pix))
		copy(out.Pix, f.Pix)
		return out, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	t.scaler.Scale(dst, dst.Bounds(), f.RGBA(), f.Bounds(), draw.Src, nil)
	out.Pix = frame.FromImage(dst).Pix
	return out, nil
}
