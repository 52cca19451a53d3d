package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/Simplici0/bakecost/internal/models"
)

const storeHeader = "X-Store-Code"

type storeContextKey struct{}

// storeMiddleware resolves the tenant named by the X-Store-Code header. Every
// handler behind it works on that store only.
func (s *server) storeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code := strings.TrimSpace(r.Header.Get(storeHeader))
		if code == "" {
			s.writeError(w, r, badRequest("%s header is required", storeHeader))
			return
		}

		store, err := s.repo.StoreByCode(r.Context(), code)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), storeContextKey{}, store)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentStore(r *http.Request) *models.Store {
	store, _ := r.Context().Value(storeContextKey{}).(*models.Store)
	return store
}
