// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/user/clipsampler/pkg/ports"
)

// Sink saves debug output to files, one directory per video:
//
//	<base>/<video>/clip-00/frame-000.png
//	<base>/<video>/contact-sheet.png
//	<base>/<video>/metadata.json
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// VideoDir returns the directory holding the debug output of a video.
func (s *Sink) VideoDir(video string) string {
	return filepath.Join(s.baseDir, DirName(video))
}

// DirName derives a directory name from a video path or name.
func DirName(video string) string {
	name := filepath.Base(video)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." || name == ".." {
		return "video"
	}
	return name
}

// SaveClipFrame saves one transformed clip frame as PNG.
func (s *Sink) SaveClipFrame(video string, clip, frame int, img image.Image) error {
	dir := filepath.Join(s.VideoDir(video), fmt.Sprintf("clip-%02d", clip))
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode clip frame: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("frame-%03d.png", frame))
	return s.fs.WriteFile(path, data)
}

// SaveContactSheet saves the contact sheet of a video as PNG.
func (s *Sink) SaveContactSheet(video string, img image.Image) error {
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode contact sheet: %w", err)
	}
	path := filepath.Join(s.VideoDir(video), "contact-sheet.png")
	return s.fs.WriteFile(path, data)
}

// SaveMetadataJSON saves the probe and sampling metadata of a video.
func (s *Sink) SaveMetadataJSON(video string, data []byte) error {
	path := filepath.Join(s.VideoDir(video), "metadata.json")
	return s.fs.WriteFile(path, data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
