package contactsheet

import (
	"github.com/user/clipsampler/pkg/pipeline"
)

// Rectangle is an axis-aligned area of the sheet.
type Rectangle struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Row is the area of one clip: a label line followed by one cell per frame.
type Row struct {
	Label Rectangle
	Cells []Rectangle
}

// Layout positions everything drawn on a sheet.
type Layout struct {
	Width  int
	Height int

	Columns    int
	CellWidth  int
	CellHeight int

	Title Rectangle
	Rows  []Row
}

// ComputeLayout places one row per clip. Every cell takes the size of the largest frame so
// rows of shorter clips stay aligned to the same columns.
func ComputeLayout(input pipeline.ContactSheetInput) Layout {
	theme := input.Theme

	cellWidth, cellHeight, columns := 0, 0, 0
	for _, clip := range input.Clips {
		if clip.Len() > columns {
			columns = clip.Len()
		}
		for _, f := range clip.Frames {
			if f.Width > cellWidth {
				cellWidth = f.Width
			}
			if f.Height > cellHeight {
				cellHeight = f.Height
			}
		}
	}

	width := theme.Padding*2 + columns*cellWidth
	if columns > 1 {
		width += (columns - 1) * theme.Gap
	}

	y := theme.Padding
	var title Rectangle
	if input.Title != "" {
		title = Rectangle{X: theme.Padding, Y: y, Width: width - theme.Padding*2, Height: theme.LabelHeight}
		y += theme.LabelHeight + theme.Gap
	}

	rows := make([]Row, len(input.Clips))
	for i, clip := range input.Clips {
		row := Row{
			Label: Rectangle{X: theme.Padding, Y: y, Width: width - theme.Padding*2, Height: theme.LabelHeight},
			Cells: make([]Rectangle, clip.Len()),
		}
		y += theme.LabelHeight
		for j := range clip.Frames {
			row.Cells[j] = Rectangle{
				X:      theme.Padding + j*(cellWidth+theme.Gap),
				Y:      y,
				Width:  cellWidth,
				Height: cellHeight,
			}
		}
		y += cellHeight
		if i < len(input.Clips)-1 {
			y += theme.Gap
		}
		rows[i] = row
	}

	return Layout{
		Width:      width,
		Height:     y + theme.Padding,
		Columns:    columns,
		CellWidth:  cellWidth,
		CellHeight: cellHeight,
		Title:      title,
		Rows:       rows,
	}
}
