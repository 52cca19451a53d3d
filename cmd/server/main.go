package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Simplici0/bakecost/internal/config"
	"github.com/Simplici0/bakecost/internal/db"
	"github.com/Simplici0/bakecost/internal/labels"
	"github.com/Simplici0/bakecost/internal/logger"
	"github.com/Simplici0/bakecost/internal/metrics"
	"github.com/Simplici0/bakecost/internal/migrations"
	"github.com/Simplici0/bakecost/internal/repository"
	"github.com/Simplici0/bakecost/internal/seed"
)

type server struct {
	cfg     config.Config
	repo    *repository.Repository
	engine  *labels.Engine
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback := logger.New(true, os.Stderr)
		fallback.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.New(cfg.IsDev(), os.Stdout)

	database, err := db.Open(cfg.DB.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		log.Fatal().Err(err).Msg("failed to run database migrations")
	}

	stats, err := seed.Run(database, seed.Config{StoreCode: cfg.Seed.StoreCode, StoreName: cfg.Seed.StoreName})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed database")
	}
	log.Info().Int("inserts", stats.Inserts).Msg("seed complete")

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
		now:     time.Now,
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()
	log.Info().Str("addr", cfg.HTTP.Addr).Msg("listening")

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return
	}
	log.Info().Msg("graceful shutdown complete")
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	if s.cfg.Metrics.Enabled {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/stores", s.handleStoreCreate)

		r.Group(func(r chi.Router) {
			r.Use(s.storeMiddleware)

			r.Get("/stores/current", s.handleStoreCurrent)

			r.Route("/materials", func(r chi.Router) {
				r.Get("/", s.handleMaterialsList)
				r.Post("/", s.handleMaterialsCreate)
				r.Get("/{id}", s.handleMaterialsGet)
				r.Put("/{id}", s.handleMaterialsUpdate)
				r.Delete("/{id}", s.handleMaterialsDelete)
			})

			r.Route("/recipes", func(r chi.Router) {
				r.Get("/", s.handleRecipesList)
				r.Post("/", s.handleRecipesCreate)
				r.Get("/{id}", s.handleRecipesGet)
				r.Put("/{id}", s.handleRecipesUpdate)
				r.Delete("/{id}", s.handleRecipesDelete)
			})

			r.Route("/fixed-costs", func(r chi.Router) {
				r.Get("/", s.handleFixedCostsList)
				r.Post("/", s.handleFixedCostsCreate)
				r.Get("/{id}", s.handleFixedCostsGet)
				r.Put("/{id}", s.handleFixedCostsUpdate)
				r.Delete("/{id}", s.handleFixedCostsDelete)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", s.handleProductsList)
				r.Post("/", s.handleProductsCreate)
				r.Get("/export", s.handleProductsExport)
				r.Get("/{id}", s.handleProductsGet)
				r.Put("/{id}", s.handleProductsUpdate)
				r.Delete("/{id}", s.handleProductsDelete)
				r.Post("/{id}/calculate-cost", s.handleProductsCalculate)
			})

			r.Route("/labels", func(r chi.Router) {
				r.Get("/settings", s.handleLabelSettingsList)
				r.Post("/settings", s.handleLabelSettingsCreate)
				r.Get("/settings/default", s.handleLabelSettingsDefault)
				r.Get("/settings/{id}", s.handleLabelSettingsGet)
				r.Put("/settings/{id}", s.handleLabelSettingsUpdate)
				r.Delete("/settings/{id}", s.handleLabelSettingsDelete)
				r.Post("/print", s.handleLabelsPrint)
			})
		})
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
