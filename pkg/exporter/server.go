// Copyright (c) 2025, the fleethealth authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package exporter

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/fleetops/fleethealth/pkg/defaults"
	"github.com/fleetops/fleethealth/pkg/errors"
	"github.com/fleetops/fleethealth/pkg/serializer"
)

// Server is the fleethealthd HTTP server. It serves the exporter metric
// families at / and /metrics, plus health and readiness endpoints, and
// refreshes its data on a fixed cadence.
type Server struct {
	cfg       *Config
	gatherer  Gatherer
	collector *Collector
	registry  *prometheus.Registry
	limiter   *rate.Limiter

	httpServer *http.Server

	mu    sync.RWMutex
	ready bool
}

// NewServer creates a Server gathering from the given Gatherer.
func NewServer(cfg *Config, gatherer Gatherer) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Server{
		cfg:       cfg,
		gatherer:  gatherer,
		collector: NewCollector(cfg.Server),
		registry:  prometheus.NewRegistry(),
		limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst),
	}
	s.registry.MustRegister(s.collector)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		Handler:      s.routes(),
		ReadTimeout:  defaults.ServerReadTimeout,
		WriteTimeout: defaults.ServerWriteTimeout,
		IdleTimeout:  defaults.ServerIdleTimeout,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// system endpoints bypass rate limiting
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)

	metricsHandler := promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
	mux.Handle("/metrics", s.withMiddleware(metricsHandler))
	mux.Handle("/", s.withMiddleware(metricsHandler))

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	serializer.RespondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"server": s.cfg.Server,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()

	if !ready {
		serializer.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"code":   string(errors.ErrCodeNotReady),
		})
		return
	}
	serializer.RespondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

func (s *Server) setReady(ready bool) {
	s.mu.Lock()
	s.ready = ready
	s.mu.Unlock()
}

// refresh runs one gathering cycle and publishes it to the collector.
func (s *Server) refresh(ctx context.Context) error {
	start := time.Now()
	data, err := s.gatherer.Gather(ctx)
	if err != nil {
		refreshesTotal.WithLabelValues(statusError).Inc()
		return err
	}

	s.collector.Update(data)
	refreshesTotal.WithLabelValues(statusSuccess).Inc()
	refreshDuration.Observe(time.Since(start).Seconds())

	slog.Debug("exporter data refreshed",
		"jobs", len(data.Jobs),
		"masterStats", len(data.MasterStats),
		"summary", len(data.Summary),
		"took", time.Since(start).Round(time.Millisecond).String(),
	)
	return nil
}

// refreshLoop keeps the collector current until the context ends. A cycle
// failing is logged and retried on the next tick.
func (s *Server) refreshLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.refresh(ctx); err != nil {
				slog.Error("refresh cycle failed", "error", err)
			}
		}
	}
}

// Run serves until the context is cancelled, then shuts down gracefully.
// The first gathering cycle runs before the server accepts traffic so a
// scrape never sees an uninitialized collector as ready.
func (s *Server) Run(ctx context.Context) error {
	if err := s.refresh(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable,
			"initial gathering cycle failed", err)
	}
	s.setReady(true)

	slog.Info("exporter listening",
		"addr", s.httpServer.Addr,
		"refresh", s.cfg.RefreshInterval().String(),
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.httpServer.ListenAndServe(); err != nil &&
			!stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return s.refreshLoop(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		s.setReady(false)

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), defaults.ServerShutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "exporter server error", err)
	}
	slog.Info("exporter stopped gracefully")
	return nil
}
