package pipeline

import (
	"image"
	"image/color"
	"time"

	"github.com/user/clipsampler/pkg/decoder"
	"github.com/user/clipsampler/pkg/frame"
)

// =============================================================================
// Sample Stage Types
// =============================================================================

// SampleInput describes one video to sample.
type SampleInput struct {
	// Name labels the video in logs, summaries and debug output.
	Name string
	// Path of the video file. Data is used when Path is empty.
	Path string
	Data []byte

	Width  int
	Height int
	Stream int // -1 selects the best video stream

	Mode          string // index-based or time-based
	SamplerType   string // uniform or random
	Seed          uint64
	FrameRate     float64 // time-based target rate, 0 for native
	ClipsPerVideo int
	FramesPerClip int
}

// DefaultSampleInput returns a SampleInput with default sampling parameters.
func DefaultSampleInput() SampleInput {
	return SampleInput{
		Width:         224,
		Height:        224,
		Stream:        -1,
		Mode:          "index-based",
		SamplerType:   "uniform",
		ClipsPerVideo: 4,
		FramesPerClip: 8,
	}
}

// SampleResult contains the clips of one video.
type SampleResult struct {
	Name     string
	Clips    []frame.Clip
	Starts   []float64
	Indices  [][]int
	Stream   decoder.StreamInfo
	Stats    decoder.Stats
	Duration time.Duration
}

// =============================================================================
// Contact Sheet Stage Types
// =============================================================================

// ContactSheetInput contains the clips to lay out, one row per clip.
type ContactSheetInput struct {
	Title  string
	Clips  []frame.Clip
	Labels []string // Row labels, one per clip
	Theme  ContactSheetTheme
}

// ContactSheetTheme contains styling for contact sheets.
type ContactSheetTheme struct {
	BackgroundColor color.Color
	BorderColor     color.Color
	TextColor       color.Color
	Gap             int
	Padding         int
	LabelHeight     int
}

// DefaultContactSheetTheme returns the default contact sheet theme.
func DefaultContactSheetTheme() ContactSheetTheme {
	return ContactSheetTheme{
		BackgroundColor: color.RGBA{R: 32, G: 32, B: 32, A: 255},
		BorderColor:     color.RGBA{R: 96, G: 96, B: 96, A: 255},
		TextColor:       color.White,
		Gap:             4,
		Padding:         8,
		LabelHeight:     16,
	}
}

// ContactSheetResult contains the rendered sheet.
type ContactSheetResult struct {
	Image image.Image
}
