package main

import (
	"net/http"

	"github.com/Simplici0/bakecost/internal/repository"
)

func (s *server) handleRecipesList(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	recipes, err := s.repo.ListRecipes(r.Context(), currentStore(r).ID, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (s *server) handleRecipesCreate(w http.ResponseWriter, r *http.Request) {
	var in repository.RecipeInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	recipe, err := s.repo.CreateRecipe(r.Context(), currentStore(r).ID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, recipe)
}

func (s *server) handleRecipesGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	recipe, err := s.repo.GetRecipe(r.Context(), currentStore(r).ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (s *server) handleRecipesUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var patch repository.RecipePatch
	if err := decodeJSON(w, r, &patch, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	recipe, err := s.repo.UpdateRecipe(r.Context(), currentStore(r).ID, id, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (s *server) handleRecipesDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.repo.DeleteRecipe(r.Context(), currentStore(r).ID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
