// Package frame defines decoded frames and clips as dense RGB pixel buffers.
package frame

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Channels is the number of interleaved channels per pixel (R, G, B).
const Channels = 3

// Frame is a decoded image with shape (Height, Width, 3), 8-bit RGB, row-major.
type Frame struct {
	Pix    []uint8
	Width  int
	Height int

	// PTS is the presentation timestamp in stream time-base ticks.
	PTS int64
	// Seconds is the presentation timestamp in seconds, relative to the stream start.
	Seconds float64
	// Index is the source frame index in presentation order.
	Index int
}

// New allocates a black frame of the given size.
func New(width, height int) Frame {
	return Frame{
		Pix:    make([]uint8, width*height*Channels),
		Width:  width,
		Height: height,
	}
}

// Shape returns (height, width, channels).
func (f Frame) Shape() [3]int {
	return [3]int{f.Height, f.Width, Channels}
}

// RGB returns the pixel at (x, y).
func (f Frame) RGB(x, y int) (r, g, b uint8) {
	i := (y*f.Width + x) * Channels
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// FromImage converts any image into an RGB frame of the same size.
func FromImage(img image.Image) Frame {
	b := img.Bounds()
	f := New(b.Dx(), b.Dy())

	switch src := img.(type) {
	case *image.RGBA:
		packRGBA(f, src.Pix, src.Stride, b.Min.X-src.Rect.Min.X, b.Min.Y-src.Rect.Min.Y)
	case *image.NRGBA:
		// Decoded video has no alpha, so NRGBA and RGBA share the same RGB bytes.
		packRGBA(f, src.Pix, src.Stride, b.Min.X-src.Rect.Min.X, b.Min.Y-src.Rect.Min.Y)
	default:
		rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
		packRGBA(f, rgba.Pix, rgba.Stride, 0, 0)
	}
	return f
}

func packRGBA(f Frame, pix []uint8, stride, offX, offY int) {
	for y := 0; y < f.Height; y++ {
		row := pix[(y+offY)*stride+offX*4:]
		out := f.Pix[y*f.Width*Channels:]
		for x := 0; x < f.Width; x++ {
			out[x*3] = row[x*4]
			out[x*3+1] = row[x*4+1]
			out[x*3+2] = row[x*4+2]
		}
	}
}

// RGBA returns an opaque RGBA copy of the frame, usable as a draw source.
func (f Frame) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, j := 0, 0; i < len(f.Pix); i, j = i+3, j+4 {
		img.Pix[j] = f.Pix[i]
		img.Pix[j+1] = f.Pix[i+1]
		img.Pix[j+2] = f.Pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// ColorModel implements image.Image.
func (f Frame) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (f Frame) Bounds() image.Rectangle { return image.Rect(0, 0, f.Width, f.Height) }

// At implements image.Image.
func (f Frame) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return color.RGBA{}
	}
	r, g, b := f.RGB(x, y)
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// Clip is an ordered sequence of equally-shaped frames sampled from one video.
type Clip struct {
	Frames []Frame
}

// Len returns the number of frames in the clip.
func (c Clip) Len() int {
	return len(c.Frames)
}

// Shape returns (frames, height, width, channels) of the stacked clip.
// A clip without frames has shape (0, 0, 0, 3).
func (c Clip) Shape() [4]int {
	if len(c.Frames) == 0 {
		return [4]int{0, 0, 0, Channels}
	}
	f := c.Frames[0]
	return [4]int{len(c.Frames), f.Height, f.Width, Channels}
}

// Indices returns the source frame indices of the clip, in order.
func (c Clip) Indices() []int {
	out := make([]int, len(c.Frames))
	for i, f := range c.Frames {
		out[i] = f.Index
	}
	return out
}

// Stack returns the clip as a single (frames, height, width, 3) buffer.
func (c Clip) Stack() ([]uint8, error) {
	shape := c.Shape()
	frameSize := shape[1] * shape[2] * Channels
	out := make([]uint8, 0, shape[0]*frameSize)
	for i, f := range c.Frames {
		if f.Width != shape[2] || f.Height != shape[1] || len(f.Pix) != frameSize {
			return nil, fmt.Errorf("frame %d has shape %v, expected %v", i, f.Shape(), [3]int{shape[1], shape[2], Channels})
		}
		out = append(out, f.Pix...)
	}
	return out, nil
}
