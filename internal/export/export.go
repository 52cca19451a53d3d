// Package export builds spreadsheet reports of product costs.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/bakecost/internal/labels"
	"github.com/Simplici0/bakecost/internal/models"
)

// SheetName is the worksheet holding the cost report.
const SheetName = "Products"

var header = []any{
	"product_id",
	"name",
	"recipe_id",
	"include_fixed_cost",
	"material_cost",
	"fixed_cost_per_unit",
	"total_cost",
	"profit_margin",
	"suggested_price",
	"selling_price",
	"actual_profit_amount",
	"actual_profit_margin",
	"price_label",
}

// ProductCosts writes an xlsx workbook with one row per product. currency
// prefixes the formatted price column.
func ProductCosts(w io.Writer, products []models.Product, currency string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, p := range products {
		var recipeID, selling, priceLabel any
		if p.RecipeID != nil {
			recipeID = *p.RecipeID
		}
		price := p.SuggestedPrice
		if p.SellingPrice != nil {
			selling = *p.SellingPrice
			price = *p.SellingPrice
		}
		priceLabel = labels.FormatPrice(currency, price)

		row := []any{
			p.ID,
			p.Name,
			recipeID,
			p.IncludeFixedCost,
			p.MaterialCost,
			p.FixedCostPerUnit,
			p.TotalCost,
			p.ProfitMargin,
			p.SuggestedPrice,
			selling,
			p.ActualProfitAmount,
			p.ActualProfitMargin,
			priceLabel,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("resolve cell for product %d: %w", p.ID, err)
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write product %d: %w", p.ID, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
