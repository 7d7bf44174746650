package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/akolanti/DocSearch/internal/adapter/utils"
	"github.com/akolanti/DocSearch/internal/config"
	"github.com/akolanti/DocSearch/internal/handlers"
	"github.com/akolanti/DocSearch/internal/middleware"
	"github.com/akolanti/DocSearch/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

var _logger = logger_i.NewLogger("Server")

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	WorkerStop       chan bool
	Group            *sync.WaitGroup
	CloseServices    context.CancelFunc
}

type Server struct {
	http *http.Server
}

// NewRouter mounts every route behind the middleware chain. mcp may be nil.
func NewRouter(h *handlers.Handler, chain *middleware.Chain, mcp http.Handler) *chi.Mux {
	r := utils.NewRouter()

	r.Get("/ping", chain.Wrap(h.GetHandler))
	r.Get("/health", chain.Wrap(h.HealthHandler))
	r.Post("/search", chain.Wrap(h.SearchHandler))
	r.Post("/ingest", chain.Wrap(h.PostIngestHandler))
	r.Get("/status/{id}", chain.Wrap(h.GetStatusHandler))
	r.Post("/upload", chain.Wrap(h.PostUploadHandler))
	if mcp != nil {
		r.Handle("/mcp", chain.Handler(mcp))
	}
	return r
}

func CreateServer(listenAddr string, handler http.Handler) *Server {
	return &Server{
		http: &http.Server{
			Addr:         listenAddr,
			Handler:      handler,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
	}
}

func (s *Server) ListenAndServe() {
	_logger.Info("Server is listening at", "address", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		_logger.Error("Server crashed", "error", err.Error(), "addr", s.http.Addr)
	}
}

// ShutDownHandler waits for a signal, drains HTTP, then stops the workers and closes
// external clients. Workers finish their current task before wg is released.
func (s *Server) ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	_logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		s.http.SetKeepAlivesEnabled(false)

		if err := s.http.Shutdown(ctx); err != nil {
			_logger.Error("Could not shutdown gracefully", "error", err)
		}

		close(shutdownParams.WorkerStop)
		shutdownParams.Group.Wait()
		shutdownParams.CloseServices()
		close(done)
	}()

	select {
	case <-done:
		_logger.Info("Gracefully shut down")
		close(shutdownParams.StopExecution)
	case <-ctx.Done():
		_logger.Error("Force shut down")
		os.Exit(1)
	}
}
