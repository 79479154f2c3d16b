// Package testfixture generates small MP4 files with ffmpeg for tests.
//
// Every frame is a flat color encoding its frame number, see FrameNumber.
package testfixture

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
)

// Options describes the video to generate.
type Options struct {
	Width   int
	Height  int
	FPS     int
	Frames  int // At most 128 so frame numbers stay decodable
	GOP     int
	BFrames int
	// Fragmented writes a fragmented MP4 with a fragment per keyframe.
	Fragmented bool
	// Encoder is the ffmpeg video encoder, libx264 by default.
	Encoder string
}

// Default returns a 64x48, 30 fps, 45 frame H.264 video with a keyframe every 15 frames.
func Default() Options {
	return Options{
		Width:   64,
		Height:  48,
		FPS:     30,
		Frames:  45,
		GOP:     15,
		BFrames: 2,
		Encoder: "libx264",
	}
}

// FFmpeg returns the ffmpeg binary, skipping the test when there is none.
func FFmpeg(t testing.TB) string {
	t.Helper()
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not available")
	}
	return path
}

// MP4 writes the video into a temporary directory and returns its path.
// The test is skipped when ffmpeg or the encoder is missing.
func MP4(t testing.TB, opts Options) string {
	t.Helper()
	ffmpeg := FFmpeg(t)
	if opts.Encoder == "" {
		opts.Encoder = "libx264"
	}

	out := filepath.Join(t.TempDir(), fmt.Sprintf("fixture_%dx%d_%d.mp4", opts.Width, opts.Height, opts.Frames))
	source := fmt.Sprintf(
		"color=c=black:s=%dx%d:r=%d,format=rgb24,geq=r=16*mod(N\\,16):g=32*floor(N/16):b=128",
		opts.Width, opts.Height, opts.FPS,
	)
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", source,
		"-frames:v", strconv.Itoa(opts.Frames),
		"-c:v", opts.Encoder,
		"-pix_fmt", "yuv420p",
		"-g", strconv.Itoa(opts.GOP),
	}
	if opts.Encoder == "libx264" {
		args = append(args,
			"-qp", "0",
			"-keyint_min", strconv.Itoa(opts.GOP),
			"-sc_threshold", "0",
			"-bf", strconv.Itoa(opts.BFrames),
		)
	}
	if opts.Fragmented {
		args = append(args, "-movflags", "frag_keyframe+empty_moov+default_base_moof")
	}
	args = append(args, out)

	var stderr bytes.Buffer
	cmd := exec.Command(ffmpeg, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Skipf("cannot generate fixture with %s: %v: %s", opts.Encoder, err, stderr.String())
	}
	return out
}

// FrameNumber decodes the frame number from the color of a generated frame.
func FrameNumber(r, g, b uint8) int {
	low := (int(r) + 8) / 16
	high := (int(g) + 16) / 32
	return high*16 + low
}
