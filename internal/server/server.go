// Package server exposes the subscribe endpoint, a health check and the
// story assets over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/metcalfc/trustfall/internal/config"
	"github.com/metcalfc/trustfall/internal/httpx"
	"github.com/metcalfc/trustfall/internal/subscribe"
)

// Server is the API and asset server.
type Server struct {
	cfg  *config.Config
	log  *zap.Logger
	http *http.Server
}

// New builds a server from cfg. client is used for provider calls.
func New(cfg *config.Config, client *http.Client, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{cfg: cfg, log: log.Named("server")}
	s.http = &http.Server{
		Addr:              cfg.Server.Bind,
		Handler:           s.routes(client),
		ReadHeaderTimeout: cfg.Server.ReadTimeout(),
		ReadTimeout:       cfg.Server.ReadTimeout(),
	}
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.http.Handler }

func (s *Server) routes(client *http.Client) http.Handler {
	mux := http.NewServeMux()

	mux.Handle(subscribe.Path, httpx.Chain(
		subscribe.NewHandler(s.cfg.Provider, client, s.log),
		httpx.RequireMethod(http.MethodPost),
	))
	mux.Handle("/healthz", httpx.Chain(
		http.HandlerFunc(s.health),
		httpx.RequireMethod(http.MethodGet),
	))

	if dir := s.cfg.Site.AssetsDir; dir != "" {
		files := http.FileServer(http.Dir(dir))
		for _, prefix := range []string{"/images/", "/audio/"} {
			mux.Handle(prefix, httpx.Chain(files, httpx.RequireMethod(http.MethodGet)))
		}
	}

	return httpx.Chain(mux,
		httpx.RequestID(),
		httpx.AccessLog(s.log),
		httpx.RecoverPanic(s.log),
	)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"subscribe":  s.cfg.Provider.Complete(),
		"assets_dir": s.cfg.Site.AssetsDir != "",
	})
}

// CheckAssets verifies that the asset directory has the expected layout.
func (s *Server) CheckAssets() error {
	dir := s.cfg.Site.AssetsDir
	if dir == "" {
		return nil
	}
	for _, sub := range []string{"images", "audio"} {
		info, err := os.Stat(filepath.Join(dir, sub))
		if err != nil {
			return fmt.Errorf("assets: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("assets: %s is not a directory", filepath.Join(dir, sub))
		}
	}
	return nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening",
			zap.String("addr", ln.Addr().String()),
			zap.Bool("subscribe_configured", s.cfg.Provider.Complete()))
		errc <- s.http.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout())
	defer cancel()
	s.log.Info("shutting down")
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
