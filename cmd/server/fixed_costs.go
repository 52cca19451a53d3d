package main

import (
	"net/http"

	"github.com/Simplici0/bakecost/internal/repository"
)

func (s *server) handleFixedCostsList(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	costs, err := s.repo.ListFixedCosts(r.Context(), currentStore(r).ID, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, costs)
}

func (s *server) handleFixedCostsCreate(w http.ResponseWriter, r *http.Request) {
	var in repository.FixedCostInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	cost, err := s.repo.CreateFixedCost(r.Context(), currentStore(r).ID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cost)
}

func (s *server) handleFixedCostsGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cost, err := s.repo.GetFixedCost(r.Context(), currentStore(r).ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cost)
}

func (s *server) handleFixedCostsUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var patch repository.FixedCostPatch
	if err := decodeJSON(w, r, &patch, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	cost, err := s.repo.UpdateFixedCost(r.Context(), currentStore(r).ID, id, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cost)
}

func (s *server) handleFixedCostsDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.repo.DeleteFixedCost(r.Context(), currentStore(r).ID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
