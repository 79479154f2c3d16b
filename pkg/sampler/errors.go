package sampler

import "errors"

var (
	// ErrConfig is returned for non-positive clip counts, frame counts or output dimensions,
	// and for unknown or incomplete sampling policies.
	ErrConfig = errors.New("sampler: invalid configuration")

	// ErrInsufficientLength is returned when the video is shorter than one clip.
	ErrInsufficientLength = errors.New("sampler: video too short for clip")
)
