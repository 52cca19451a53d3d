package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Simplici0/bakecost/internal/costing"
	"github.com/Simplici0/bakecost/internal/labels"
	"github.com/Simplici0/bakecost/internal/repository"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "BAD_REQUEST"
	case errors.Is(err, repository.ErrValidation), errors.Is(err, costing.ErrInvalidQuantity):
		return http.StatusBadRequest, "VALIDATION_FAILED"
	case errors.Is(err, costing.ErrDegenerateMargin):
		return http.StatusUnprocessableEntity, "DEGENERATE_MARGIN"
	case errors.Is(err, labels.ErrDegenerateLayout):
		return http.StatusUnprocessableEntity, "DEGENERATE_LAYOUT"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, "CONFLICT"
	default:
		return http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"
	}
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		s.log.Error().
			Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request failed")
		message = "internal error"
	}
	writeJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the request body into dst. An empty body leaves dst
// untouched when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return badRequest("invalid JSON body: %v", err)
	}
	return nil
}

func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid id %q", raw)
	}
	return id, nil
}

func parseListOptions(r *http.Request) (repository.ListOptions, error) {
	var opts repository.ListOptions
	q := r.URL.Query()
	if raw := q.Get("skip"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return opts, badRequest("skip must be a non-negative integer")
		}
		opts.Offset = v
	}
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > 1000 {
			return opts, badRequest("limit must be between 1 and 1000")
		}
		opts.Limit = v
	}
	return opts, nil
}
