package labels

import (
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

const (
	maxNameRunes       = 30
	maxIngredientNames = 5
	ingredientWrap     = 35
	ellipsis           = "..."

	// ptToMM converts typographic points to millimetres.
	ptToMM = 25.4 / 72
)

// Vertical rhythm inside a label, in points.
const (
	paddingPt        = 5
	titleAdvancePt   = 20
	priceAdvancePt   = 18
	captionAdvancePt = 12
	lineAdvancePt    = 10
	expiryAdvancePt  = 12
)

// Style selects how a renderer draws a line.
type Style int

const (
	StyleTitle Style = iota
	StylePrice
	StyleCaption
	StyleBody
	StyleFooter
)

// FontSize is the point size a renderer should use for the style.
func (s Style) FontSize() float64 {
	switch s {
	case StyleTitle:
		return 14
	case StylePrice:
		return 12
	case StyleCaption:
		return 8
	default:
		return 7
	}
}

// Bold reports whether the style is drawn in a bold face.
func (s Style) Bold() bool {
	return s == StyleTitle || s == StylePrice
}

// Line is one positioned text run. X and Y are offsets of the baseline start
// from the label's top-left corner.
type Line struct {
	Text  string
	Style Style
	X     float64
	Y     float64
}

// Block is the formatted content of one label.
type Block struct {
	Name            string
	Price           string
	ShowIngredients bool
	Ingredients     []string
	ExpiryDate      string
	StoreName       string
	Lines           []Line
}

// Options carry the wording a label uses.
type Options struct {
	CurrencySymbol     string
	IngredientsCaption string
	ExpiryCaption      string
}

// DefaultOptions are used for zero-valued fields of Options.
var DefaultOptions = Options{
	CurrencySymbol:     "¥",
	IngredientsCaption: "Ingredients:",
	ExpiryCaption:      "Best before:",
}

func (o Options) withDefaults() Options {
	if o.CurrencySymbol == "" {
		o.CurrencySymbol = DefaultOptions.CurrencySymbol
	}
	if o.IngredientsCaption == "" {
		o.IngredientsCaption = DefaultOptions.IngredientsCaption
	}
	if o.ExpiryCaption == "" {
		o.ExpiryCaption = DefaultOptions.ExpiryCaption
	}
	return o
}

// TruncateName keeps the first 30 characters of a product name.
func TruncateName(name string) string {
	return truncateRunes(name, maxNameRunes)
}

// FormatPrice renders an integer currency amount with thousands separators.
// Fractions are dropped, not rounded.
func FormatPrice(symbol string, price float64) string {
	return symbol + humanize.Comma(int64(price))
}

// IngredientText joins at most five ingredient names and marks the rest with
// an ellipsis.
func IngredientText(names []string) string {
	if len(names) <= maxIngredientNames {
		return strings.Join(names, ", ")
	}
	return strings.Join(names[:maxIngredientNames], ", ") + ellipsis
}

// WrapIngredients hard-wraps text at 35 characters onto at most two lines.
// Anything past the second line is dropped.
func WrapIngredients(text string) []string {
	if utf8.RuneCountInString(text) <= ingredientWrap {
		return []string{text}
	}
	r := []rune(text)
	end := min(len(r), 2*ingredientWrap)
	return []string{string(r[:ingredientWrap]), string(r[ingredientWrap:end])}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Format builds the content block of a label for item under setting.
func Format(item Item, setting Setting, labelHeight float64, expiryDate, storeName string, opts Options) Block {
	opts = opts.withDefaults()
	x := paddingPt * ptToMM
	y := paddingPt * ptToMM

	b := Block{Name: TruncateName(item.Name)}
	b.Lines = append(b.Lines, Line{Text: b.Name, Style: StyleTitle, X: x, Y: y})
	y += titleAdvancePt * ptToMM

	// A zero price is treated as unpriced.
	if setting.ShowPrice && item.SellingPrice != nil && *item.SellingPrice > 0 {
		b.Price = FormatPrice(opts.CurrencySymbol, *item.SellingPrice)
		b.Lines = append(b.Lines, Line{Text: b.Price, Style: StylePrice, X: x, Y: y})
		y += priceAdvancePt * ptToMM
	}

	if setting.ShowIngredients && item.Recipe != nil {
		b.ShowIngredients = true
		b.Lines = append(b.Lines, Line{Text: opts.IngredientsCaption, Style: StyleCaption, X: x, Y: y})
		y += captionAdvancePt * ptToMM

		b.Ingredients = WrapIngredients(IngredientText(item.Recipe.Ingredients))
		for _, text := range b.Ingredients {
			b.Lines = append(b.Lines, Line{Text: text, Style: StyleBody, X: x, Y: y})
			y += lineAdvancePt * ptToMM
		}
	}

	if setting.ShowExpiryDate && expiryDate != "" {
		b.ExpiryDate = expiryDate
		b.Lines = append(b.Lines, Line{Text: opts.ExpiryCaption + " " + expiryDate, Style: StyleCaption, X: x, Y: y})
	}

	// The store name sits on the bottom edge whatever the content above it.
	if setting.ShowStoreName {
		b.StoreName = storeName
		b.Lines = append(b.Lines, Line{Text: storeName, Style: StyleFooter, X: x, Y: labelHeight - paddingPt*ptToMM})
	}

	return b
}
