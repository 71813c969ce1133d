package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/sme-outreach/internal/config"
	"github.com/sells-group/sme-outreach/internal/model"
	"github.com/sells-group/sme-outreach/internal/pipeline"
	"github.com/sells-group/sme-outreach/internal/store"
)

// Pipeline is the slice of controller operations the HTTP layer invokes.
type Pipeline interface {
	CreateCountry(ctx context.Context, name, code, flag string) (*model.Country, error)
	Discover(ctx context.Context, countryID string) ([]model.SME, error)
	BuildWebsite(ctx context.Context, smeID string) (*model.Website, error)
	Deploy(ctx context.Context, smeID string) (*pipeline.DeployResult, error)
	GenerateEmail(ctx context.Context, smeID string) (*model.Email, error)
}

// Server exposes the outreach pipeline over HTTP.
type Server struct {
	router chi.Router
	ctrl   Pipeline
	store  store.Store
	cfg    config.ServerConfig
}

func New(ctrl Pipeline, st store.Store, cfg config.ServerConfig) *Server {
	s := &Server{
		ctrl:  ctrl,
		store: st,
		cfg:   cfg,
	}
	s.router = s.routes()
	return s
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("starting server", zap.Int("port", s.cfg.Port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/countries", func(r chi.Router) {
		r.Get("/", s.handleListCountries)
		r.Post("/", s.handleCreateCountry)
		r.Delete("/{id}", s.handleDeleteCountry)
		r.Post("/{id}/search-smes", s.handleSearchSMEs)
		r.Get("/{id}/smes", s.handleListSMEs)
	})

	r.Route("/smes/{id}", func(r chi.Router) {
		r.Post("/build-website", s.handleBuildWebsite)
		r.Get("/website", s.handleGetWebsite)
		r.Get("/website/preview", s.handlePreviewWebsite)
		r.Get("/website/download", s.handleDownloadWebsite)
		r.Post("/deploy", s.handleDeploy)
		r.Post("/generate-email", s.handleGenerateEmail)
		r.Get("/email", s.handleGetEmail)
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError classifies an error into a status code and renders the
// {error, detail} body.
func writeError(w http.ResponseWriter, err error) {
	var status int
	var label string

	switch {
	case errors.Is(err, store.ErrNotFound):
		status, label = http.StatusNotFound, "not found"
	case errors.Is(err, pipeline.ErrValidation):
		status, label = http.StatusBadRequest, "validation failed"
	case errors.Is(err, pipeline.ErrPrecondition):
		status, label = http.StatusBadRequest, "precondition failed"
	default:
		status, label = http.StatusInternalServerError, "internal error"
		zap.L().Error("request failed", zap.Error(err))
	}

	writeJSON(w, status, map[string]string{
		"error":  label,
		"detail": err.Error(),
	})
}
