// Package labels packs printable product labels onto fixed-size pages.
//
// All lengths are millimetres. Rectangles use a top-left origin with row 0
// nearest the top margin; Rect.BottomLeft converts for renderers whose origin
// is the bottom-left corner of the page.
package labels

import (
	"errors"
	"fmt"
	"math"
)

// ErrDegenerateLayout is wrapped by every *LayoutError.
var ErrDegenerateLayout = errors.New("degenerate label layout")

// PageSize is the physical size of a sheet.
type PageSize struct {
	Width  float64
	Height float64
}

// A4 is the default sheet.
var A4 = PageSize{Width: 210, Height: 297}

// Margins around the printable area of a sheet.
type Margins struct {
	Top    float64
	Bottom float64
	Left   float64
	Right  float64
}

// Geometry is the page-independent part of a label setting.
type Geometry struct {
	LabelWidth  float64
	LabelHeight float64
	Margins     Margins
}

// Grid is the packing grid derived from a page and a label geometry.
type Grid struct {
	Page            PageSize
	Geometry        Geometry
	PrintableWidth  float64
	PrintableHeight float64
	LabelsPerRow    int
	LabelsPerColumn int
}

// LabelsPerPage is the number of cells on one sheet.
func (g Grid) LabelsPerPage() int {
	return g.LabelsPerRow * g.LabelsPerColumn
}

// LayoutError identifies the dimension that makes a grid unusable.
type LayoutError struct {
	Dimension string
	Value     float64
	Limit     float64
	msg       string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDegenerateLayout, e.msg)
}

func (e *LayoutError) Unwrap() error { return ErrDegenerateLayout }

// ComputeGrid derives the grid without validating it. Label sizes that do not
// fit yield zero rows or columns.
func ComputeGrid(page PageSize, geo Geometry) Grid {
	g := Grid{
		Page:            page,
		Geometry:        geo,
		PrintableWidth:  page.Width - geo.Margins.Left - geo.Margins.Right,
		PrintableHeight: page.Height - geo.Margins.Top - geo.Margins.Bottom,
	}
	g.LabelsPerRow = cells(g.PrintableWidth, geo.LabelWidth)
	g.LabelsPerColumn = cells(g.PrintableHeight, geo.LabelHeight)
	return g
}

func cells(span, size float64) int {
	if size <= 0 || span <= 0 {
		return 0
	}
	return int(math.Floor(span / size))
}

// NewGrid derives the grid and rejects geometries that leave no room for a
// single label.
func NewGrid(page PageSize, geo Geometry) (Grid, error) {
	if err := checkPositive("label_width", geo.LabelWidth); err != nil {
		return Grid{}, err
	}
	if err := checkPositive("label_height", geo.LabelHeight); err != nil {
		return Grid{}, err
	}
	for _, m := range []struct {
		name  string
		value float64
	}{
		{"margin_top", geo.Margins.Top},
		{"margin_bottom", geo.Margins.Bottom},
		{"margin_left", geo.Margins.Left},
		{"margin_right", geo.Margins.Right},
	} {
		if m.value < 0 || math.IsNaN(m.value) {
			return Grid{}, &LayoutError{Dimension: m.name, Value: m.value,
				msg: fmt.Sprintf("%s must not be negative, got %gmm", m.name, m.value)}
		}
	}

	g := ComputeGrid(page, geo)
	if g.LabelsPerRow == 0 {
		return Grid{}, &LayoutError{
			Dimension: "label_width",
			Value:     geo.LabelWidth,
			Limit:     g.PrintableWidth,
			msg:       fmt.Sprintf("label width %gmm exceeds printable width %gmm", geo.LabelWidth, g.PrintableWidth),
		}
	}
	if g.LabelsPerColumn == 0 {
		return Grid{}, &LayoutError{
			Dimension: "label_height",
			Value:     geo.LabelHeight,
			Limit:     g.PrintableHeight,
			msg:       fmt.Sprintf("label height %gmm exceeds printable height %gmm", geo.LabelHeight, g.PrintableHeight),
		}
	}
	return g, nil
}

func checkPositive(name string, v float64) error {
	if v > 0 {
		return nil
	}
	return &LayoutError{Dimension: name, Value: v, msg: fmt.Sprintf("%s must be positive, got %gmm", name, v)}
}
