// Package server exposes the dashboard over HTTP. The dataset is loaded
// once at start-up; every request recomputes its view from that immutable
// slice.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/chrisdamba/orderpulse/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	orders   []models.EnrichedOrder
	stores   []string
	cfg      models.ServerConfig
	cache    *bigcache.BigCache
	registry *prometheus.Registry
	metrics  *httpMetrics
	log      *zap.Logger
}

// New builds a server over the normalized dataset. stores is the store
// directory of the raw dataset. A zero CacheTTL disables memoization.
func New(orders []models.EnrichedOrder, stores []string, cfg models.ServerConfig, log *zap.Logger) (*Server, error) {
	s := &Server{
		orders:   orders,
		stores:   stores,
		cfg:      cfg,
		registry: prometheus.NewRegistry(),
		log:      log,
	}
	s.metrics = newHTTPMetrics(s.registry)

	if cfg.CacheTTL > 0 {
		cache, err := newDashboardCache(cfg.CacheTTL)
		if err != nil {
			return nil, err
		}
		s.cache = cache
	}
	return s, nil
}

func newDashboardCache(ttl time.Duration) (*bigcache.BigCache, error) {
	cacheCfg := bigcache.DefaultConfig(ttl)
	cacheCfg.Shards = 64
	cacheCfg.MaxEntriesInWindow = 1024
	cacheCfg.MaxEntrySize = 4096
	cacheCfg.HardMaxCacheSize = 64
	cacheCfg.Verbose = false
	return bigcache.New(context.Background(), cacheCfg)
}

func (s *Server) Router() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(requestLogger(s.log))
	router.Use(s.metrics.instrument)
	router.Use(middleware.Recoverer)

	router.Get("/health", s.health())
	router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	router.Route("/api", func(api chi.Router) {
		api.Get("/stores", s.listStores())
		api.Get("/stores/comparison", s.storeComparison())
		api.Get("/dashboard", s.dashboard())
		api.Get("/series", s.series())
		api.Get("/orders", s.orderTable())
	})
	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", s.cfg.Addr), zap.Int("orders", len(s.orders)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("server shutdown complete")
	return nil
}

func (s *Server) Close() error {
	if s.cache != nil {
		return s.cache.Close()
	}
	return nil
}
