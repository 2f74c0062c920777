package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"tournamentBot/internal/models/domain"
	"tournamentBot/internal/orchestrator"
	"tournamentBot/internal/transport/httpServer/handlers/dto"
	"tournamentBot/internal/utils"
	"tournamentBot/internal/utils/logger/sl"

	"github.com/go-chi/chi/v5"
)

type TournamentHandler struct {
	repository TournamentRepository
	trigger    CycleTrigger
	log        *slog.Logger
}

func NewTournamentHandler(log *slog.Logger, repo TournamentRepository, trigger CycleTrigger) *TournamentHandler {
	return &TournamentHandler{
		repository: repo,
		trigger:    trigger,
		log:        log,
	}
}

// GetTournaments обрабатывает GET /api/v1/tournaments?status=...
// Без параметра status возвращаются все турниры.
func (h *TournamentHandler) GetTournaments(w http.ResponseWriter, r *http.Request) {
	op := "httpServer.handlers.TournamentHandler.GetTournaments()"
	log := h.log.With(slog.String("op", op))

	status := r.URL.Query().Get("status")
	ctx := r.Context()

	var tournaments []domain.Tournament
	var err error

	if status != "" {
		if !isValidStatus(status) {
			h.respondError(log, fmt.Errorf("invalid status filter: %s", status), w, http.StatusBadRequest)
			return
		}
		tournaments, err = h.repository.FindTournamentsByStatus(ctx, domain.TournamentStatus(status))
	} else {
		tournaments, err = h.repository.ReadAllTournaments(ctx)
	}

	if err != nil {
		h.respondError(log, fmt.Errorf("failed to get tournaments: %w", err), w, http.StatusInternalServerError)
		return
	}

	if err := utils.Json(w, http.StatusOK, dto.MapDomainToTournamentResponseList(tournaments)); err != nil {
		log.Error("error encoding response", sl.Err(err))
	}
}

// GetTournament обрабатывает GET /api/v1/tournaments/{key}
func (h *TournamentHandler) GetTournament(w http.ResponseWriter, r *http.Request) {
	op := "httpServer.handlers.TournamentHandler.GetTournament()"
	log := h.log.With(slog.String("op", op))

	key := chi.URLParam(r, "key")
	if key == "" {
		h.respondError(log, fmt.Errorf("empty key"), w, http.StatusBadRequest)
		return
	}

	tournament, err := h.repository.FindTournamentByKey(r.Context(), key)
	if errors.Is(err, domain.ErrTournamentNotFound) {
		h.respondError(log, fmt.Errorf("tournament %s not found", key), w, http.StatusNotFound)
		return
	}
	if err != nil {
		h.respondError(log, fmt.Errorf("failed to get tournament: %w", err), w, http.StatusInternalServerError)
		return
	}

	if err := utils.Json(w, http.StatusOK, dto.MapDomainToTournamentResponse(tournament)); err != nil {
		log.Error("error encoding response", sl.Err(err))
	}
}

// TriggerScrape обрабатывает POST /api/v1/scrape
func (h *TournamentHandler) TriggerScrape(w http.ResponseWriter, r *http.Request) {
	op := "httpServer.handlers.TournamentHandler.TriggerScrape()"
	log := h.log.With(slog.String("op", op))

	err := h.trigger.TriggerCycle()
	if errors.Is(err, orchestrator.ErrCycleRunning) {
		h.respondError(log, err, w, http.StatusConflict)
		return
	}
	if err != nil {
		h.respondError(log, fmt.Errorf("failed to start cycle: %w", err), w, http.StatusInternalServerError)
		return
	}

	log.Info("check cycle triggered via api")

	if err := utils.Json(w, http.StatusAccepted, dto.ScrapeResponse{Status: "started"}); err != nil {
		log.Error("error encoding response", sl.Err(err))
	}
}

func (h *TournamentHandler) respondError(log *slog.Logger, err error, w http.ResponseWriter, status int) {
	log.Error("handler error", sl.Err(err))
	if httpErr := utils.Err(w, status, err); httpErr != nil {
		log.Error("error sending http response", sl.Err(httpErr))
	}
}

func isValidStatus(status string) bool {
	switch domain.TournamentStatus(status) {
	case domain.TournamentStatusPending, domain.TournamentStatusPublished:
		return true
	default:
		return false
	}
}
