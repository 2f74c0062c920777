package httpServer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"tournamentBot/internal/config"
	"tournamentBot/internal/transport/httpServer/routers"
	"tournamentBot/internal/utils/logger/sl"

	"github.com/go-chi/chi/v5"
)

type HttpServer struct {
	log    *slog.Logger
	server *http.Server
}

// NewHttpServer собирает admin API на chi.
func NewHttpServer(log *slog.Logger, router *routers.Router, cfg *config.Config) *HttpServer {
	mux := chi.NewRouter()
	router.Mount(mux)

	return &HttpServer{
		log: log,
		server: &http.Server{
			Addr:         net.JoinHostPort(cfg.HttpServer.Address, cfg.HttpServer.Port),
			Handler:      mux,
			ReadTimeout:  cfg.HttpServer.Timeout,
			WriteTimeout: cfg.HttpServer.Timeout,
		},
	}
}

// Listen блокируется до остановки сервера.
func (s *HttpServer) Listen() {
	op := "HttpServer.Listen()"
	log := s.log.With(slog.String("op", op))

	log.Info("http server started", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http server error", sl.Err(err))
	}
}

func (s *HttpServer) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("force exit http server: %w", err)
	}
	return nil
}
