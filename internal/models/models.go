// Package models holds the persisted bookkeeping records of one store.
package models

import (
	"github.com/Simplici0/bakecost/internal/costing"
	"github.com/Simplici0/bakecost/internal/labels"
)

// Store is a tenant. Every other record belongs to exactly one store.
type Store struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// Material is a purchased raw material.
type Material struct {
	ID               int64   `json:"id"`
	StoreID          int64   `json:"store_id"`
	Name             string  `json:"name"`
	PurchasePrice    float64 `json:"purchase_price"`
	PurchaseQuantity float64 `json:"purchase_quantity"`
	Unit             string  `json:"unit"`
	UnitPrice        float64 `json:"unit_price"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

// Snapshot is the costing view of the material.
func (m Material) Snapshot() costing.MaterialSnapshot {
	return costing.MaterialSnapshot{ID: m.ID, Name: m.Name, UnitPrice: m.UnitPrice}
}

// RecipeMaterial is one usage line of a recipe.
type RecipeMaterial struct {
	ID           int64   `json:"id"`
	MaterialID   int64   `json:"material_id"`
	Quantity     float64 `json:"quantity"`
	MaterialName string  `json:"material_name,omitempty"`
	MaterialUnit string  `json:"material_unit,omitempty"`
	Cost         float64 `json:"cost"`
}

// Recipe is a named set of material usages.
type Recipe struct {
	ID           int64            `json:"id"`
	StoreID      int64            `json:"store_id"`
	Name         string           `json:"name"`
	Description  *string          `json:"description"`
	MaterialCost float64          `json:"material_cost"`
	Materials    []RecipeMaterial `json:"materials"`
	CreatedAt    string           `json:"created_at"`
	UpdatedAt    string           `json:"updated_at"`
}

// FixedCost is a monthly overhead line.
type FixedCost struct {
	ID            int64   `json:"id"`
	StoreID       int64   `json:"store_id"`
	Name          string  `json:"name"`
	MonthlyAmount float64 `json:"monthly_amount"`
	IsActive      bool    `json:"is_active"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// Costing is the costing view of the fixed cost.
func (f FixedCost) Costing() costing.FixedCost {
	return costing.FixedCost{MonthlyAmount: f.MonthlyAmount, IsActive: f.IsActive}
}

// Product is a sellable item. Its cost fields are a snapshot taken at the
// last calculation, not a live view of the recipe.
type Product struct {
	ID                 int64    `json:"id"`
	StoreID            int64    `json:"store_id"`
	RecipeID           *int64   `json:"recipe_id"`
	Name               string   `json:"name"`
	IncludeFixedCost   bool     `json:"include_fixed_cost"`
	ProfitMargin       float64  `json:"profit_margin"`
	SellingPrice       *float64 `json:"selling_price"`
	MaterialCost       float64  `json:"material_cost"`
	FixedCostPerUnit   float64  `json:"fixed_cost_per_unit"`
	TotalCost          float64  `json:"total_cost"`
	SuggestedPrice     float64  `json:"suggested_price"`
	ActualProfitAmount float64  `json:"actual_profit_amount"`
	ActualProfitMargin float64  `json:"actual_profit_margin"`
	CreatedAt          string   `json:"created_at"`
	UpdatedAt          string   `json:"updated_at"`
}

// Input is the costing view of the product.
func (p Product) Input(hasRecipe bool) costing.ProductInput {
	return costing.ProductInput{
		HasRecipe:        hasRecipe,
		IncludeFixedCost: p.IncludeFixedCost,
		ProfitMargin:     p.ProfitMargin,
		SellingPrice:     p.SellingPrice,
	}
}

// Apply copies derived costs onto the product.
func (p *Product) Apply(c costing.Costs) {
	p.MaterialCost = c.MaterialCost
	p.FixedCostPerUnit = c.FixedCostPerUnit
	p.TotalCost = c.TotalCost
	p.SuggestedPrice = c.SuggestedPrice
	p.ActualProfitAmount = c.ActualProfitAmount
	p.ActualProfitMargin = c.ActualProfitMargin
}

// LabelSetting is a label preset. The per-page counts are derived from the
// geometry and the configured sheet size.
type LabelSetting struct {
	ID              int64   `json:"id"`
	StoreID         int64   `json:"store_id"`
	PresetName      string  `json:"preset_name"`
	LabelWidth      float64 `json:"label_width"`
	LabelHeight     float64 `json:"label_height"`
	MarginTop       float64 `json:"margin_top"`
	MarginBottom    float64 `json:"margin_bottom"`
	MarginLeft      float64 `json:"margin_left"`
	MarginRight     float64 `json:"margin_right"`
	ShowPrice       bool    `json:"show_price"`
	ShowIngredients bool    `json:"show_ingredients"`
	ShowExpiryDate  bool    `json:"show_expiry_date"`
	ShowStoreName   bool    `json:"show_store_name"`
	ShowLogo        bool    `json:"show_logo"`
	LogoPath        *string `json:"logo_path"`
	IsDefault       bool    `json:"is_default"`
	LabelsPerPage   int     `json:"labels_per_page"`
	LabelsPerRow    int     `json:"labels_per_row"`
	LabelsPerColumn int     `json:"labels_per_column"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// Geometry is the layout view of the setting.
func (s LabelSetting) Geometry() labels.Geometry {
	return labels.Geometry{
		LabelWidth:  s.LabelWidth,
		LabelHeight: s.LabelHeight,
		Margins: labels.Margins{
			Top:    s.MarginTop,
			Bottom: s.MarginBottom,
			Left:   s.MarginLeft,
			Right:  s.MarginRight,
		},
	}
}

// Setting is the snapshot handed to the layout engine.
func (s LabelSetting) Setting() labels.Setting {
	return labels.Setting{
		Geometry: s.Geometry(),
		Visibility: labels.Visibility{
			ShowPrice:       s.ShowPrice,
			ShowIngredients: s.ShowIngredients,
			ShowExpiryDate:  s.ShowExpiryDate,
			ShowStoreName:   s.ShowStoreName,
			ShowLogo:        s.ShowLogo,
		},
	}
}

// Derive fills the per-page counts for page.
func (s *LabelSetting) Derive(page labels.PageSize) {
	g := labels.ComputeGrid(page, s.Geometry())
	s.LabelsPerRow = g.LabelsPerRow
	s.LabelsPerColumn = g.LabelsPerColumn
	s.LabelsPerPage = g.LabelsPerPage()
}
