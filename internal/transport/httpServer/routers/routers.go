package routers

import (
	"log/slog"
	"net/http"

	"tournamentBot/internal/transport/httpServer/handlers"
	myMiddleware "tournamentBot/internal/transport/httpServer/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Instrumenter отдаёт метрики и оборачивает хэндлеры счётчиками запросов.
type Instrumenter interface {
	Handler() http.Handler
	InstrumentHandler(next http.Handler) http.Handler
}

type Router struct {
	log               *slog.Logger
	secret            string
	tournamentHandler *handlers.TournamentHandler
	metrics           Instrumenter
}

func NewRouter(log *slog.Logger, secret string, tournamentHandler *handlers.TournamentHandler, metrics Instrumenter) *Router {
	return &Router{
		log:               log,
		secret:            secret,
		tournamentHandler: tournamentHandler,
		metrics:           metrics,
	}
}

func (r *Router) Mount(mux *chi.Mux) {
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(cors.AllowAll().Handler)
	mux.Use(myMiddleware.NewLoggerMiddleware(r.log))
	mux.Use(r.metrics.InstrumentHandler)
	mux.Use(middleware.Heartbeat("/ping"))

	mux.Method(http.MethodGet, "/metrics", r.metrics.Handler())

	mux.Route("/api", func(mux chi.Router) {
		mux.Route("/v1", func(mux chi.Router) {
			mux.Use(myMiddleware.JWTAuth(r.secret))

			mux.Route("/tournaments", func(mux chi.Router) {
				mux.Get("/", r.tournamentHandler.GetTournaments)
				mux.Get("/{key}", r.tournamentHandler.GetTournament)
			})
			mux.Post("/scrape", r.tournamentHandler.TriggerScrape)
		})
	})
}
