package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/snarg/stt-bench/internal/cache"
	"github.com/snarg/stt-bench/internal/catalog"
	"github.com/snarg/stt-bench/internal/config"
	"github.com/snarg/stt-bench/internal/metrics"
	"github.com/snarg/stt-bench/internal/transcribe"
)

type Server struct {
	http *http.Server
	log  zerolog.Logger
}

// Deps carries everything the HTTP layer serves.
type Deps struct {
	Config     *config.Config
	Dispatcher *transcribe.Dispatcher
	Cache      *cache.Store
	Catalog    *catalog.Catalog
	CatalogDB  *catalog.DB // optional
	Providers  map[string]transcribe.Provider
	Version    string
	StartTime  time.Time
}

func NewServer(deps Deps, log zerolog.Logger) *Server {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Recoverer)
	r.Use(Logger(log))
	r.Use(CORS)
	r.Use(metrics.InstrumentHandler)

	providerNames := make([]string, 0, len(deps.Providers))
	for name := range deps.Providers {
		providerNames = append(providerNames, name)
	}
	sort.Strings(providerNames)

	health := NewHealthHandler(deps.CatalogDB, deps.Cache.Len, providerNames, deps.Version, deps.StartTime)
	r.Get("/api/v1/health", health.ServeHTTP)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	tr := NewTranscribeHandler(deps.Dispatcher, deps.Catalog, deps.Cache, deps.Config.DefaultLanguage, log)
	audio := NewAudioHandler(deps.Catalog, deps.CatalogDB, log)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Config.AuthToken))

		r.Get("/api/v1/models", tr.ListModels)
		r.Get("/api/v1/audio", audio.List)
		r.Get("/api/v1/audio/file", audio.Serve)
		r.Post("/api/v1/transcribe", tr.Transcribe)
		r.Post("/api/v1/cache/clear", tr.ClearCache)
	})

	return &Server{
		http: &http.Server{
			Addr:         deps.Config.HTTPAddr,
			Handler:      r,
			ReadTimeout:  deps.Config.ReadTimeout,
			WriteTimeout: deps.Config.WriteTimeout,
			IdleTimeout:  deps.Config.IdleTimeout,
		},
		log: log,
	}
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("http server starting")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server shutting down")
	return s.http.Shutdown(ctx)
}
