package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Simplici0/bakecost/internal/labels"
	"github.com/Simplici0/bakecost/internal/metrics"
	"github.com/Simplici0/bakecost/internal/models"
	"github.com/Simplici0/bakecost/internal/render"
	"github.com/Simplici0/bakecost/internal/repository"
)

// maxExpiryRunes caps the expiry text; it is printed as given.
const maxExpiryRunes = 64

type printRequest struct {
	ProductIDs     []int64 `json:"product_ids"`
	LabelSettingID *int64  `json:"label_setting_id"`
	ExpiryDate     string  `json:"expiry_date"`
}

func (req printRequest) validate() error {
	if len(req.ProductIDs) == 0 {
		return badRequest("product_ids must list at least one product")
	}
	for i, id := range req.ProductIDs {
		if id <= 0 {
			return badRequest("product_ids[%d] is not a valid id", i)
		}
	}
	if utf8.RuneCountInString(req.ExpiryDate) > maxExpiryRunes {
		return badRequest("expiry_date must be at most %d characters", maxExpiryRunes)
	}
	return nil
}

func (s *server) handleLabelSettingsList(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	settings, err := s.repo.ListLabelSettings(r.Context(), currentStore(r).ID, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *server) handleLabelSettingsCreate(w http.ResponseWriter, r *http.Request) {
	var in repository.LabelSettingInput
	if err := decodeJSON(w, r, &in, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	setting, err := s.repo.CreateLabelSetting(r.Context(), currentStore(r).ID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, setting)
}

func (s *server) handleLabelSettingsDefault(w http.ResponseWriter, r *http.Request) {
	setting, err := s.repo.DefaultLabelSetting(r.Context(), currentStore(r).ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

func (s *server) handleLabelSettingsGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	setting, err := s.repo.GetLabelSetting(r.Context(), currentStore(r).ID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

func (s *server) handleLabelSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var patch repository.LabelSettingPatch
	if err := decodeJSON(w, r, &patch, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	setting, err := s.repo.UpdateLabelSetting(r.Context(), currentStore(r).ID, id, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

func (s *server) handleLabelSettingsDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.repo.DeleteLabelSetting(r.Context(), currentStore(r).ID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleLabelsPrint(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	store := currentStore(r)

	var req printRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	setting, err := s.printSetting(r, store.ID, req.LabelSettingID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	items, err := s.repo.PrintItems(r.Context(), store.ID, req.ProductIDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	plan, err := s.engine.Plan(labels.Job{
		Setting:    setting.Setting(),
		Items:      items,
		ExpiryDate: req.ExpiryDate,
		StoreName:  store.Name,
	})
	if err != nil {
		if errors.Is(err, labels.ErrDegenerateLayout) {
			s.metrics.Rejected(metrics.RejectLayout)
		}
		s.writeError(w, r, err)
		return
	}

	opts := render.Options{
		FontPath:  s.cfg.Labels.FontPath,
		Borders:   s.cfg.Labels.Borders,
		CreatedAt: s.now(),
	}
	if setting.LogoPath != nil {
		opts.LogoPath = *setting.LogoPath
	}

	var buf bytes.Buffer
	stats, err := render.PDF(&buf, plan, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.Rendered(stats.Labels, stats.Pages, time.Since(start))

	jobID := uuid.NewString()
	s.log.Info().
		Str("job_id", jobID).
		Int64("store_id", store.ID).
		Int64("label_setting_id", setting.ID).
		Int("labels", stats.Labels).
		Int("pages", stats.Pages).
		Msg("labels rendered")

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="labels-%s.pdf"`, jobID))
	w.Header().Set("X-Print-Job-ID", jobID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *server) printSetting(r *http.Request, storeID int64, id *int64) (*models.LabelSetting, error) {
	if id != nil {
		return s.repo.GetLabelSetting(r.Context(), storeID, *id)
	}
	return s.repo.DefaultLabelSetting(r.Context(), storeID)
}
