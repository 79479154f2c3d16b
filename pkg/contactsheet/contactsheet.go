// Package contactsheet renders the clips of one video as a single overview image,
// one labelled row of frames per clip.
package contactsheet

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/clipsampler/pkg/pipeline"
	"github.com/user/clipsampler/pkg/ports"
)

// ErrNoClips is returned when there is nothing to lay out.
var ErrNoClips = errors.New("contactsheet: no clips")

// Stage renders contact sheets.
type Stage struct {
	renderer ports.Renderer
	logger   ports.Logger
}

// NewStage creates a new contact sheet stage.
func NewStage(renderer ports.Renderer, logger ports.Logger) *Stage {
	return &Stage{
		renderer: renderer,
		logger:   logger.WithComponent("contactsheet"),
	}
}

// Execute renders the sheet.
func (s *Stage) Execute(ctx context.Context, input pipeline.ContactSheetInput) (pipeline.ContactSheetResult, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.ContactSheetResult{}, err
	}
	if len(input.Clips) == 0 {
		return pipeline.ContactSheetResult{}, ErrNoClips
	}
	if input.Labels != nil && len(input.Labels) != len(input.Clips) {
		return pipeline.ContactSheetResult{}, fmt.Errorf("contactsheet: %d labels for %d clips", len(input.Labels), len(input.Clips))
	}

	layout := ComputeLayout(input)
	if layout.CellWidth == 0 || layout.CellHeight == 0 {
		return pipeline.ContactSheetResult{}, fmt.Errorf("%w: clips hold no frames", ErrNoClips)
	}
	s.logger.Debug("Rendering %dx%d contact sheet of %d clips", layout.Width, layout.Height, len(input.Clips))

	theme := input.Theme
	canvas := s.renderer.CreateCanvas(layout.Width, layout.Height, theme.BackgroundColor)

	if input.Title != "" {
		canvas.DrawText(input.Title, layout.Title.X, layout.Title.Y+layout.Title.Height/2, theme.TextColor)
	}
	for i, row := range layout.Rows {
		if input.Labels != nil {
			canvas.DrawText(input.Labels[i], row.Label.X, row.Label.Y+row.Label.Height/2, theme.TextColor)
		}
		for j, cell := range row.Cells {
			canvas.DrawImage(input.Clips[i].Frames[j].RGBA(), cell.X, cell.Y)
			canvas.DrawRectStroke(cell.X, cell.Y, cell.Width, cell.Height, theme.BorderColor, 1)
		}
	}

	return pipeline.ContactSheetResult{Image: canvas.ToImage()}, nil
}

var _ pipeline.Stage[pipeline.ContactSheetInput, pipeline.ContactSheetResult] = (*Stage)(nil)
