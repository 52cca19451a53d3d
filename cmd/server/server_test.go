package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Simplici0/bakecost/internal/config"
	"github.com/Simplici0/bakecost/internal/db"
	"github.com/Simplici0/bakecost/internal/labels"
	"github.com/Simplici0/bakecost/internal/metrics"
	"github.com/Simplici0/bakecost/internal/migrations"
	"github.com/Simplici0/bakecost/internal/repository"
	"github.com/Simplici0/bakecost/internal/seed"
)

const testStore = "main"

func testConfig() config.Config {
	var cfg config.Config
	cfg.App.Env = "test"
	cfg.Metrics.Enabled = true
	cfg.Pricing.DefaultProfitMargin = 30
	cfg.Pricing.DefaultMonthlyProduction = 1
	cfg.Pricing.CurrencySymbol = "¥"
	cfg.Labels.PageWidthMM = labels.A4.Width
	cfg.Labels.PageHeightMM = labels.A4.Height
	cfg.Labels.IngredientsCaption = "Ingredients:"
	cfg.Labels.ExpiryCaption = "Best before:"
	cfg.Seed.StoreCode = testStore
	cfg.Seed.StoreName = "Main Street Bakery"
	return cfg
}

func newTestServer(t *testing.T) (*server, http.Handler) {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "server-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := testConfig()
	if _, err := seed.Run(database, seed.Config{StoreCode: cfg.Seed.StoreCode, StoreName: cfg.Seed.StoreName}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	log := zerolog.New(io.Discard)
	m := metrics.New()
	srv := &server{
		cfg: cfg,
		repo: repository.New(database, log, m, repository.Options{
			Page:                cfg.PageSize(),
			DefaultProfitMargin: cfg.Pricing.DefaultProfitMargin,
		}),
		engine:  labels.NewEngine(cfg.PageSize(), cfg.LabelOptions()),
		metrics: m,
		log:     log,
		now:     func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
	return srv, srv.routes()
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return doAs(t, h, testStore, method, path, body)
}

func doAs(t *testing.T, h http.Handler, store, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if store != "" {
		req.Header.Set(storeHeader, store)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, want, rec.Body.String())
	}
}

func expectErrorCode(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	expectStatus(t, rec, status)
	env := decode[errorEnvelope](t, rec)
	if env.Error.Code != code {
		t.Fatalf("error code = %q, want %q (%s)", env.Error.Code, code, env.Error.Message)
	}
}

func TestHealth(t *testing.T) {
	_, h := newTestServer(t)

	rec := doAs(t, h, "", http.MethodGet, "/health", nil)
	expectStatus(t, rec, http.StatusOK)
	if rec.Body.String() != "OK" {
		t.Fatalf("body = %q, want OK", rec.Body.String())
	}
}

func TestStoreHeader(t *testing.T) {
	_, h := newTestServer(t)

	expectErrorCode(t, doAs(t, h, "", http.MethodGet, "/api/materials", nil), http.StatusBadRequest, "BAD_REQUEST")
	expectErrorCode(t, doAs(t, h, "ghost", http.MethodGet, "/api/materials", nil), http.StatusNotFound, "NOT_FOUND")

	rec := do(t, h, http.MethodGet, "/api/stores/current", nil)
	expectStatus(t, rec, http.StatusOK)
	store := decode[map[string]any](t, rec)
	if store["code"] != testStore || store["name"] != "Main Street Bakery" {
		t.Fatalf("current store = %v", store)
	}
}

func TestStoreCreate(t *testing.T) {
	_, h := newTestServer(t)

	rec := doAs(t, h, "", http.MethodPost, "/api/stores", map[string]any{"code": "north", "name": "North"})
	expectStatus(t, rec, http.StatusCreated)

	rec = doAs(t, h, "", http.MethodPost, "/api/stores", map[string]any{"code": "north", "name": "Again"})
	expectErrorCode(t, rec, http.StatusConflict, "CONFLICT")

	rec = doAs(t, h, "north", http.MethodGet, "/api/materials", nil)
	expectStatus(t, rec, http.StatusOK)
}

func TestMetricsEndpoint(t *testing.T) {
	_, h := newTestServer(t)

	expectStatus(t, do(t, h, http.MethodPost, "/api/materials", map[string]any{
		"name": "Flour", "purchase_price": 300, "purchase_quantity": 1000, "unit": "g",
	}), http.StatusCreated)

	rec := doAs(t, h, "", http.MethodGet, "/metrics", nil)
	expectStatus(t, rec, http.StatusOK)
	if !bytes.Contains(rec.Body.Bytes(), []byte(`bakecost_recalculations_total{kind="material"} 1`)) {
		t.Fatalf("metrics output lacks the material recalculation:\n%s", rec.Body.String())
	}
}

func TestInvalidBody(t *testing.T) {
	_, h := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/materials", bytes.NewBufferString("{not json"))
	req.Header.Set(storeHeader, testStore)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	expectErrorCode(t, rec, http.StatusBadRequest, "BAD_REQUEST")
}
