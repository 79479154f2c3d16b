package contactsheet

import (
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/user/clipsampler/pkg/adapters/ggrenderer"
	"github.com/user/clipsampler/pkg/frame"
	"github.com/user/clipsampler/pkg/mocks"
	"github.com/user/clipsampler/pkg/pipeline"
)

func makeClip(frames, w, h int, shade uint8) frame.Clip {
	clip := frame.Clip{}
	for i := 0; i < frames; i++ {
		f := frame.New(w, h)
		for p := range f.Pix {
			f.Pix[p] = shade
		}
		f.Index = i
		clip.Frames = append(clip.Frames, f)
	}
	return clip
}

func testTheme() pipeline.ContactSheetTheme {
	return pipeline.ContactSheetTheme{
		BackgroundColor: color.Black,
		BorderColor:     color.White,
		TextColor:       color.White,
		Gap:             2,
		Padding:         4,
		LabelHeight:     10,
	}
}

func TestComputeLayout(t *testing.T) {
	input := pipeline.ContactSheetInput{
		Title: "video",
		Clips: []frame.Clip{makeClip(3, 20, 10, 0), makeClip(2, 20, 10, 0)},
		Theme: testTheme(),
	}

	layout := ComputeLayout(input)

	// 4 + 3*20 + 2*2 + 4
	if layout.Width != 72 {
		t.Errorf("expected width 72, got %d", layout.Width)
	}
	// 4 + (10+2) title + (10+10) row 0 + 2 gap + (10+10) row 1 + 4
	if layout.Height != 62 {
		t.Errorf("expected height 62, got %d", layout.Height)
	}
	if layout.Columns != 3 || layout.CellWidth != 20 || layout.CellHeight != 10 {
		t.Errorf("unexpected grid %d cols of %dx%d", layout.Columns, layout.CellWidth, layout.CellHeight)
	}
	if len(layout.Rows) != 2 || len(layout.Rows[1].Cells) != 2 {
		t.Fatalf("unexpected rows: %+v", layout.Rows)
	}

	cell := layout.Rows[1].Cells[1]
	if cell.X != 26 || cell.Y != 48 {
		t.Errorf("expected row 1 cell 1 at (26,48), got (%d,%d)", cell.X, cell.Y)
	}
	if layout.Rows[0].Label.Y != 16 {
		t.Errorf("expected first label at y=16, got %d", layout.Rows[0].Label.Y)
	}
}

func TestComputeLayoutNoTitle(t *testing.T) {
	input := pipeline.ContactSheetInput{
		Clips: []frame.Clip{makeClip(1, 8, 8, 0)},
		Theme: testTheme(),
	}

	layout := ComputeLayout(input)
	if layout.Rows[0].Label.Y != 4 {
		t.Errorf("expected label directly below padding, got y=%d", layout.Rows[0].Label.Y)
	}
	if layout.Width != 16 || layout.Height != 26 {
		t.Errorf("expected 16x26, got %dx%d", layout.Width, layout.Height)
	}
}

func TestStage_Execute(t *testing.T) {
	renderer := &mocks.Renderer{}
	stage := NewStage(renderer, mocks.NewLogger())

	input := pipeline.ContactSheetInput{
		Title:  "cat.mp4",
		Clips:  []frame.Clip{makeClip(4, 16, 16, 0), makeClip(4, 16, 16, 0)},
		Labels: []string{"clip 0", "clip 1"},
		Theme:  testTheme(),
	}

	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Image == nil {
		t.Fatal("expected image")
	}

	if len(renderer.Canvases) != 1 {
		t.Fatalf("expected one canvas, got %d", len(renderer.Canvases))
	}
	canvas := renderer.Canvases[0]
	if canvas.ImagesDrawn != 8 {
		t.Errorf("expected 8 frames drawn, got %d", canvas.ImagesDrawn)
	}
	want := []string{"cat.mp4", "clip 0", "clip 1"}
	if len(canvas.Texts) != len(want) {
		t.Fatalf("expected texts %v, got %v", want, canvas.Texts)
	}
	for i := range want {
		if canvas.Texts[i] != want[i] {
			t.Errorf("text %d: expected %q, got %q", i, want[i], canvas.Texts[i])
		}
	}
}

func TestStage_ExecuteErrors(t *testing.T) {
	stage := NewStage(&mocks.Renderer{}, mocks.NewLogger())

	if _, err := stage.Execute(context.Background(), pipeline.ContactSheetInput{Theme: testTheme()}); !errors.Is(err, ErrNoClips) {
		t.Errorf("expected ErrNoClips, got %v", err)
	}

	empty := pipeline.ContactSheetInput{Clips: []frame.Clip{{}}, Theme: testTheme()}
	if _, err := stage.Execute(context.Background(), empty); !errors.Is(err, ErrNoClips) {
		t.Errorf("expected ErrNoClips for frameless clips, got %v", err)
	}

	mismatched := pipeline.ContactSheetInput{
		Clips:  []frame.Clip{makeClip(1, 4, 4, 0)},
		Labels: []string{"a", "b"},
		Theme:  testTheme(),
	}
	if _, err := stage.Execute(context.Background(), mismatched); err == nil {
		t.Error("expected error for mismatched labels")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := stage.Execute(ctx, mismatched); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestStage_ExecuteWithGG(t *testing.T) {
	stage := NewStage(ggrenderer.New(), mocks.NewLogger())

	input := pipeline.ContactSheetInput{
		Clips: []frame.Clip{makeClip(2, 10, 10, 200)},
		Theme: testTheme(),
	}

	result, err := stage.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	layout := ComputeLayout(input)
	bounds := result.Image.Bounds()
	if bounds.Dx() != layout.Width || bounds.Dy() != layout.Height {
		t.Errorf("expected %dx%d, got %dx%d", layout.Width, layout.Height, bounds.Dx(), bounds.Dy())
	}

	// Center of the second cell carries the frame content.
	cell := layout.Rows[0].Cells[1]
	r, _, _, _ := result.Image.At(cell.X+cell.Width/2, cell.Y+cell.Height/2).RGBA()
	if r>>8 != 200 {
		t.Errorf("expected frame pixel 200, got %d", r>>8)
	}
}
