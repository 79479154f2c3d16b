package decoder

import "errors"

var (
	// ErrOpen is returned when the input is missing, unreadable, corrupt or not a supported container.
	ErrOpen = errors.New("decoder: cannot open video")

	// ErrInvalidStream is returned for a bad or non-video stream index,
	// or a decode attempted before the stream was registered.
	ErrInvalidStream = errors.New("decoder: invalid stream")

	// ErrOutOfRange is returned for a frame index or timestamp outside the stream.
	ErrOutOfRange = errors.New("decoder: position out of range")

	// ErrDecode is returned when a corrupt packet is met while decoding.
	ErrDecode = errors.New("decoder: decode failed")

	// ErrClosed is returned for operations on a closed handle.
	ErrClosed = errors.New("decoder: handle closed")
)
