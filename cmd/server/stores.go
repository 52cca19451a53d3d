package main

import (
	"net/http"

	"github.com/Simplici0/bakecost/internal/repository"
)

func (s *server) handleStoreCreate(w http.ResponseWriter, r *http.Request) {
	var in repository.StoreInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	store, err := s.repo.CreateStore(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, store)
}

func (s *server) handleStoreCurrent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentStore(r))
}
