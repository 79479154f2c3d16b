package ports

import (
	"image"
)

// Packet is one access unit handed to a PacketDecoder.
type Packet struct {
	Data     []byte
	PTS      int64
	Keyframe bool
}

// PacketDecoder decodes a track's access units.
// Packets are fed in decode order; pictures are retrieved by presentation timestamp.
type PacketDecoder interface {
	// Decode feeds one access unit.
	Decode(pkt Packet) error

	// Picture returns the decoded picture with the given presentation timestamp.
	// Only packets fed since the last Flush can be retrieved.
	Picture(pts int64) (image.Image, error)

	// Flush discards all decoder state, as required before a seek.
	Flush()

	// Close releases decoder resources.
	Close()
}

// DecoderFactory creates a PacketDecoder for a track.
type DecoderFactory interface {
	NewDecoder(track TrackInfo) (PacketDecoder, error)
}
