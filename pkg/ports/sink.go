package ports

import (
	"image"
)

// DebugSink abstracts debug output for sampled clips.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveClipFrame saves one transformed frame of a clip.
	SaveClipFrame(video string, clip, frame int, img image.Image) error

	// SaveContactSheet saves an overview image of all clips of a video.
	SaveContactSheet(video string, img image.Image) error

	// SaveMetadataJSON saves probe and sampling metadata of a video.
	SaveMetadataJSON(video string, data []byte) error
}
