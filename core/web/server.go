// Package web serves the host-platform liveness endpoints. The page on /
// exists so free-tier hosting keeps the process alive; /health is the probe
// target and /metrics exposes Prometheus collectors.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log/slog"

	"github.com/nexonhq/nexon-bot/core/logger"
)

const statusPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Nexon Status</title>
    <style>
        body {
            margin: 0;
            padding: 0;
            background-color: #000000;
            display: flex;
            justify-content: center;
            align-items: center;
            height: 100vh;
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            color: #00ff41;
            overflow: hidden;
        }
        .container { text-align: center; position: relative; }
        .online-dot {
            width: 12px;
            height: 12px;
            background-color: #00ff41;
            border-radius: 50%;
            margin: 0 auto 20px;
            box-shadow: 0 0 10px #00ff41, 0 0 20px #00ff41;
            animation: glow 1.5s infinite alternate;
        }
        .status-text {
            font-size: 2.5rem;
            font-weight: bold;
            text-shadow: 0 0 10px #00ff41, 0 0 20px #00ff41;
        }
        @keyframes glow {
            0% { box-shadow: 0 0 10px #00ff41; }
            100% { box-shadow: 0 0 20px #00ff41; }
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="online-dot"></div>
        <h1 class="status-text">Nexon is live</h1>
    </div>
</body>
</html>
`

// Server wraps the liveness HTTP listener.
type Server struct {
	srv *http.Server
}

// NewServer builds the liveness server on the given port.
func NewServer(port int) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(statusPage))
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "web", "web.listen",
			slog.String("status", "ok"),
			slog.String("mode", "http"),
			slog.String("addr", s.srv.Addr),
		)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("web: shutdown: %w", err)
		}
		return <-errCh
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("web: serve: %w", err)
		}
		return nil
	}
}
