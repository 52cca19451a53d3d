package main

import (
	"net/http"

	"github.com/Simplici0/bakecost/internal/repository"
)

func (s *server) handleMaterialsList(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	materials, err := s.repo.ListMaterials(r.Context(), currentStore(r).ID, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, materials)
}

func (s *server) handleMaterialsCreate(w http.ResponseWriter, r *http.Request) {
	var in repository.MaterialInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	material, err := s.repo.CreateMaterial(r.Context(), currentStore(r).ID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, material)
}

func (s *server) handleMaterialsGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	material, err := s.repo.GetMaterial(r.Context(), currentStore(r).ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, material)
}

func (s *server) handleMaterialsUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var patch repository.MaterialPatch
	if err := decodeJSON(w, r, &patch, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	material, err := s.repo.UpdateMaterial(r.Context(), currentStore(r).ID, id, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, material)
}

func (s *server) handleMaterialsDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.repo.DeleteMaterial(r.Context(), currentStore(r).ID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
