package main

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/Simplici0/bakecost/internal/costing"
	"github.com/Simplici0/bakecost/internal/export"
	"github.com/Simplici0/bakecost/internal/repository"
)

type calculateRequest struct {
	TotalMonthlyProduction *int `json:"total_monthly_production"`
}

func (s *server) defaultProduction() int {
	if n := s.cfg.Pricing.DefaultMonthlyProduction; n > 0 {
		return n
	}
	return costing.DefaultMonthlyProduction
}

func (s *server) handleProductsList(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	products, err := s.repo.ListProducts(r.Context(), currentStore(r).ID, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *server) handleProductsCreate(w http.ResponseWriter, r *http.Request) {
	var in repository.ProductInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	product, err := s.repo.CreateProduct(r.Context(), currentStore(r).ID, in, s.defaultProduction())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (s *server) handleProductsGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	product, err := s.repo.GetProduct(r.Context(), currentStore(r).ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *server) handleProductsUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var patch repository.ProductPatch
	if err := decodeJSON(w, r, &patch, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	product, err := s.repo.UpdateProduct(r.Context(), currentStore(r).ID, id, patch, s.defaultProduction())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *server) handleProductsDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.repo.DeleteProduct(r.Context(), currentStore(r).ID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleProductsCalculate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req calculateRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	production := s.defaultProduction()
	if req.TotalMonthlyProduction != nil {
		production = *req.TotalMonthlyProduction
		if production <= 0 {
			s.writeError(w, r, badRequest("total_monthly_production must be greater than 0"))
			return
		}
	}

	product, err := s.repo.CalculateProductCost(r.Context(), currentStore(r).ID, id, production)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *server) handleProductsExport(w http.ResponseWriter, r *http.Request) {
	store := currentStore(r)
	products, err := s.repo.ListProducts(r.Context(), store.ID, repository.ListOptions{Limit: -1})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.ProductCosts(&buf, products, s.cfg.Pricing.CurrencySymbol); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="products-%d.xlsx"`, store.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
