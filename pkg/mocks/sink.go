package mocks

import (
	"fmt"
	"image"
	"sync"

	"github.com/user/clipsampler/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	// Frames is keyed by "video/clip/frame".
	Frames        map[string]image.Image
	ContactSheets map[string]image.Image
	Metadata      map[string][]byte
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:       enabled,
		Frames:        make(map[string]image.Image),
		ContactSheets: make(map[string]image.Image),
		Metadata:      make(map[string][]byte),
	}
}

// FrameKey builds the Frames map key.
func FrameKey(video string, clip, frame int) string {
	return fmt.Sprintf("%s/%d/%d", video, clip, frame)
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveClipFrame(video string, clip, frame int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frames[FrameKey(video, clip, frame)] = img
	return nil
}

func (m *DebugSink) SaveContactSheet(video string, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ContactSheets[video] = img
	return nil
}

func (m *DebugSink) SaveMetadataJSON(video string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Metadata[video] = data
	return nil
}

// FrameCount returns the number of saved clip frames.
func (m *DebugSink) FrameCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Frames)
}

var _ ports.DebugSink = (*DebugSink)(nil)

// NullSink is a no-op implementation of ports.DebugSink.
type NullSink struct{}

func (m *NullSink) Enabled() bool { return false }

func (m *NullSink) SaveClipFrame(video string, clip, frame int, img image.Image) error {
	return nil
}

func (m *NullSink) SaveContactSheet(video string, img image.Image) error { return nil }

func (m *NullSink) SaveMetadataJSON(video string, data []byte) error { return nil }

var _ ports.DebugSink = (*NullSink)(nil)
