// Package render draws label plans onto PDF sheets.
package render

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/Simplici0/bakecost/internal/labels"
)

const utf8Family = "label"

// Options configure the PDF output.
type Options struct {
	// FontPath is a TrueType font with the glyphs labels need. Without it the
	// core Helvetica face is used, which only covers cp1252.
	FontPath string
	// LogoPath is drawn in the top-right corner when the setting shows logos.
	LogoPath string
	// Borders outlines every label cell.
	Borders bool
	// CreatedAt pins the document timestamp; zero means now.
	CreatedAt time.Time
}

// Stats describe a rendered document.
type Stats struct {
	Pages  int
	Labels int
}

// PDF renders plan and writes the document to w.
func PDF(w io.Writer, plan *labels.Plan, opts Options) (Stats, error) {
	page := plan.Grid().Page
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: page.Width, Ht: page.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	created := opts.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	pdf.SetCreationDate(created)
	pdf.SetModificationDate(created)
	pdf.SetCatalogSort(true)

	family := "Helvetica"
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	if opts.FontPath != "" {
		pdf.AddUTF8Font(utf8Family, "", opts.FontPath)
		pdf.AddUTF8Font(utf8Family, "B", opts.FontPath)
		family = utf8Family
		translate = func(s string) string { return s }
	}

	setting := plan.Setting()
	stats := Stats{}
	current := -1
	for pl := range plan.Placements() {
		for current < pl.Page {
			pdf.AddPage()
			current++
			stats.Pages++
		}

		r := pl.Rect
		if opts.Borders {
			pdf.SetLineWidth(0.2)
			pdf.Rect(r.X, r.Y, r.Width, r.Height, "D")
		}
		for _, line := range pl.Content.Lines {
			style := ""
			if line.Style.Bold() {
				style = "B"
			}
			pdf.SetFont(family, style, line.Style.FontSize())
			pdf.Text(r.X+line.X, r.Y+line.Y, translate(line.Text))
		}
		if setting.ShowLogo && opts.LogoPath != "" {
			size := min(r.Height/3, r.Width/4)
			pdf.ImageOptions(opts.LogoPath, r.X+r.Width-size-1, r.Y+1, size, size, false,
				fpdf.ImageOptions{ReadDpi: true}, 0, "")
		}
		stats.Labels++

		if err := pdf.Error(); err != nil {
			return Stats{}, fmt.Errorf("draw label %d: %w", pl.Index, err)
		}
	}

	if current < 0 {
		pdf.AddPage()
		stats.Pages++
	}

	if err := pdf.Output(w); err != nil {
		return Stats{}, fmt.Errorf("write pdf: %w", err)
	}
	return stats, nil
}
