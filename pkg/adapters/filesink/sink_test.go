package filesink

import (
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/user/clipsampler/pkg/mocks"
	"github.com/user/clipsampler/pkg/ports"
)

// testBaseDir is a platform-independent base directory for tests
var testBaseDir = filepath.Join("debug")

func pngRenderer() *mocks.Renderer {
	return &mocks.Renderer{
		EncodeImageFunc: func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
			return []byte{0x89, 0x50, 0x4E, 0x47}, nil // PNG header
		},
	}
}

func TestSink_Enabled(t *testing.T) {
	sink := New(testBaseDir, mocks.NewFileSystem(), &mocks.Renderer{})

	if !sink.Enabled() {
		t.Error("expected Enabled to return true")
	}
}

func TestDirName(t *testing.T) {
	tests := []struct {
		video string
		want  string
	}{
		{"/videos/cat.mp4", "cat"},
		{"clips/a b&c.mov", "a_b_c"},
		{"archive.tar.mp4", "archive.tar"},
		{"", "video"},
		{"..", "video"},
	}

	for _, tt := range tests {
		if got := DirName(tt.video); got != tt.want {
			t.Errorf("DirName(%q) = %q, want %q", tt.video, got, tt.want)
		}
	}
}

func TestSink_SaveClipFrame(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, pngRenderer())

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	if err := sink.SaveClipFrame("/data/cat.mp4", 2, 5, img); err != nil {
		t.Fatalf("SaveClipFrame failed: %v", err)
	}

	expectedPath := filepath.Join(testBaseDir, "cat", "clip-02", "frame-005.png")
	if _, ok := fs.GetFile(expectedPath); !ok {
		t.Errorf("expected file to be saved at %s", expectedPath)
	}
}

func TestSink_SaveClipFrameEncodeError(t *testing.T) {
	fs := mocks.NewFileSystem()
	encodeErr := errors.New("boom")
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
			return nil, encodeErr
		},
	}
	sink := New(testBaseDir, fs, renderer)

	err := sink.SaveClipFrame("cat.mp4", 0, 0, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	if !errors.Is(err, encodeErr) {
		t.Errorf("expected encode error, got %v", err)
	}
}

func TestSink_SaveContactSheet(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, pngRenderer())

	if err := sink.SaveContactSheet("cat.mp4", image.NewRGBA(image.Rect(0, 0, 64, 64))); err != nil {
		t.Fatalf("SaveContactSheet failed: %v", err)
	}

	expectedPath := filepath.Join(testBaseDir, "cat", "contact-sheet.png")
	if _, ok := fs.GetFile(expectedPath); !ok {
		t.Errorf("expected file to be saved at %s", expectedPath)
	}
}

func TestSink_SaveMetadataJSON(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.Renderer{})

	data := []byte(`{"clips": 4}`)
	if err := sink.SaveMetadataJSON("cat.mp4", data); err != nil {
		t.Fatalf("SaveMetadataJSON failed: %v", err)
	}

	expectedPath := filepath.Join(testBaseDir, "cat", "metadata.json")
	saved, ok := fs.GetFile(expectedPath)
	if !ok {
		t.Fatalf("expected file to be saved at %s", expectedPath)
	}
	if string(saved) != string(data) {
		t.Errorf("expected %q, got %q", data, saved)
	}
}

func TestSink_MultipleClipFrames(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, pngRenderer())

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for clip := 0; clip < 2; clip++ {
		for frame := 0; frame < 5; frame++ {
			if err := sink.SaveClipFrame("cat.mp4", clip, frame, img); err != nil {
				t.Fatalf("SaveClipFrame %d/%d failed: %v", clip, frame, err)
			}
		}
	}

	if count := len(fs.GetAllFiles()); count != 10 {
		t.Errorf("expected 10 files, got %d", count)
	}
}
