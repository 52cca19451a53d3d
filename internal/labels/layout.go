package labels

import (
	"iter"
	"slices"
)

// Visibility toggles the optional parts of a label.
type Visibility struct {
	ShowPrice       bool
	ShowIngredients bool
	ShowExpiryDate  bool
	ShowStoreName   bool
	ShowLogo        bool
}

// Setting is the snapshot of a stored label setting used for one job.
type Setting struct {
	Geometry
	Visibility
}

// RecipeSnapshot lists the ingredient (material) names of a product's recipe
// in usage order.
type RecipeSnapshot struct {
	Ingredients []string
}

// Item is one printable product.
type Item struct {
	Name         string
	SellingPrice *float64
	Recipe       *RecipeSnapshot
}

// Job is a single print request.
type Job struct {
	Setting    Setting
	Items      []Item
	ExpiryDate string
	StoreName  string
}

// Rect is a placement rectangle with a top-left origin.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// BottomLeft returns the same rectangle with Y measured from the bottom edge
// of a page of the given height.
func (r Rect) BottomLeft(pageHeight float64) Rect {
	r.Y = pageHeight - r.Y - r.Height
	return r
}

// Placement is one label on one page.
type Placement struct {
	// Index is the position of the item in the job.
	Index   int
	Page    int
	Row     int
	Col     int
	Rect    Rect
	Content Block
}

// Engine lays out jobs on a fixed page size.
type Engine struct {
	page PageSize
	opts Options
}

// NewEngine returns an engine for page. A zero page falls back to A4.
func NewEngine(page PageSize, opts Options) *Engine {
	if page.Width <= 0 || page.Height <= 0 {
		page = A4
	}
	return &Engine{page: page, opts: opts.withDefaults()}
}

// Page returns the sheet size the engine lays out on.
func (e *Engine) Page() PageSize { return e.page }

// Plan is a validated job ready to be laid out.
type Plan struct {
	grid       Grid
	setting    Setting
	items      []Item
	expiryDate string
	storeName  string
	opts       Options
}

// Plan validates the job's grid. Degenerate geometries are rejected here,
// before any pagination happens.
func (e *Engine) Plan(job Job) (*Plan, error) {
	grid, err := NewGrid(e.page, job.Setting.Geometry)
	if err != nil {
		return nil, err
	}
	return &Plan{
		grid:       grid,
		setting:    job.Setting,
		items:      slices.Clone(job.Items),
		expiryDate: job.ExpiryDate,
		storeName:  job.StoreName,
		opts:       e.opts,
	}, nil
}

// Grid is the validated packing grid of the plan.
func (p *Plan) Grid() Grid { return p.grid }

// Setting is the label setting the plan was built from.
func (p *Plan) Setting() Setting { return p.setting }

// Len is the number of labels in the plan.
func (p *Plan) Len() int { return len(p.items) }

// PageCount is the number of sheets the plan fills.
func (p *Plan) PageCount() int {
	per := p.grid.LabelsPerPage()
	if len(p.items) == 0 || per == 0 {
		return 0
	}
	return (len(p.items) + per - 1) / per
}

// Placements fills cells in row-major order and starts a new page when the
// rows run out. Items are never reordered. Every iteration starts from the
// first item, so ranging twice yields the same sequence.
func (p *Plan) Placements() iter.Seq[Placement] {
	return func(yield func(Placement) bool) {
		g := p.grid
		geo := g.Geometry
		page := 0
		indexWithinPage := 0

		for i, item := range p.items {
			row := indexWithinPage / g.LabelsPerRow
			col := indexWithinPage % g.LabelsPerRow
			if row >= g.LabelsPerColumn {
				page++
				indexWithinPage = 0
				row, col = 0, 0
			}

			pl := Placement{
				Index: i,
				Page:  page,
				Row:   row,
				Col:   col,
				Rect: Rect{
					X:      geo.Margins.Left + float64(col)*geo.LabelWidth,
					Y:      geo.Margins.Top + float64(row)*geo.LabelHeight,
					Width:  geo.LabelWidth,
					Height: geo.LabelHeight,
				},
				Content: Format(item, p.setting, geo.LabelHeight, p.expiryDate, p.storeName, p.opts),
			}
			if !yield(pl) {
				return
			}
			indexWithinPage++
		}
	}
}
