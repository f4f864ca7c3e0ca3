package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"didvault/internal/app"
)

// Version is reported by the banner route.
const Version = "1.0.0"

// Server is the vault's HTTP API together with its metrics listener and
// background relay dispatcher.
type Server struct {
	w   *app.Wire
	log *zap.Logger
	mux *http.ServeMux
	now func() time.Time
}

// New builds the API over an already wired dependency graph.
func New(w *app.Wire) *Server {
	s := &Server{
		w:   w,
		log: w.Log.With(zap.String("component", "http")),
		mux: http.NewServeMux(),
		now: time.Now,
	}
	s.routes()
	return s
}

// Handler returns the API with its middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.withAccessLog(s.withSecurityHeaders(s.withRateLimit(s.mux))))
}

// Run serves the API on cfg.Listen and metrics on cfg.MetricsListen, and runs
// the relay dispatcher, until ctx is cancelled or one of them fails.
func (s *Server) Run(ctx context.Context) error {
	cfg := s.w.Config
	api := &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	servers := []*http.Server{api}
	if cfg.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.w.Metrics.Handler())
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		})
		servers = append(servers, &http.Server{
			Addr:              cfg.MetricsListen,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	listeners := make([]net.Listener, 0, len(servers))
	for _, srv := range servers {
		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			for _, l := range listeners {
				_ = l.Close()
			}
			return fmt.Errorf("listen %s: %w", srv.Addr, err)
		}
		listeners = append(listeners, ln)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.w.Dispatcher.Run(ctx) })
	for i, srv := range servers {
		ln := listeners[i]
		s.log.Info("listening", zap.String("addr", ln.Addr().String()))
		g.Go(func() error {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		s.log.Info("shut down")
		return errors.Join(errs...)
	})
	return g.Wait()
}
