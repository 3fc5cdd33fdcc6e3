package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/voxarchive/internal/apperr"
	"github.com/MikeSquared-Agency/voxarchive/internal/cache"
	"github.com/MikeSquared-Agency/voxarchive/internal/hermes"
	"github.com/MikeSquared-Agency/voxarchive/internal/retrieval"
)

// PageCache serves assembled pages by key, loading them on a miss.
type PageCache interface {
	GetOrLoad(ctx context.Context, key string, load cache.Loader) ([]byte, error)
}

// Reporter is told about every retrieval that reached the store.
type Reporter interface {
	ReportRetrieval(ev hermes.RetrievalExecuted)
}

// Options carries the optional collaborators of a Server. Leave a field nil to
// run without it.
type Options struct {
	Cache    PageCache
	Reporter Reporter
	Logger   *slog.Logger
}

type Server struct {
	router   *chi.Mux
	engine   *retrieval.Engine
	cache    PageCache
	reporter Reporter
	logger   *slog.Logger
	srv      *http.Server
}

func NewServer(port int, engine *retrieval.Engine, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(instrument)

	s := &Server{
		router:   router,
		engine:   engine,
		cache:    opts.Cache,
		reporter: opts.Reporter,
		logger:   logger,
	}
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	router.Get("/health", s.health)
	router.Handle("/metrics", promhttp.Handler())
	router.Route("/api/v1/dialogues", func(r chi.Router) {
		r.Get("/", s.listDialogues)
		r.Get("/facets", s.facetOptions)
		r.Get("/scenes/{fileName}", s.scene)
	})

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called, which makes it return nil.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listDialogues handles GET /api/v1/dialogues.
func (s *Server) listDialogues(w http.ResponseWriter, r *http.Request) {
	req := s.engine.Normalize(retrieval.ParseRequest(r.URL.Query()))

	load := func(ctx context.Context) (any, error) {
		start := time.Now()
		page, err := s.engine.Retrieve(ctx, req)
		if err != nil {
			return nil, err
		}
		if s.reporter != nil {
			s.reporter.ReportRetrieval(hermes.NewRetrievalExecuted(
				page.Mode.String(), req.Facets(), string(page.Scene),
				page.Pagination.Total, page.Pagination.Page, time.Since(start)))
		}
		return page, nil
	}

	if s.cache == nil {
		page, err := load(r.Context())
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
		return
	}

	body, err := s.cache.GetOrLoad(r.Context(), cache.Key(req.Key()), load)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// scene handles GET /api/v1/dialogues/scenes/{fileName}.
func (s *Server) scene(w http.ResponseWriter, r *http.Request) {
	recs, err := s.engine.Scene(r.Context(), chi.URLParam(r, "fileName"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": recs})
}

// facetOptions handles GET /api/v1/dialogues/facets.
func (s *Server) facetOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.engine.FacetOptions(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError sends only the code and message of err. The cause stays in the log.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	appErr := apperr.From(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", appErr.Code, "error", err)
	}
	writeJSON(w, appErr.HTTPStatus, appErr)
}
