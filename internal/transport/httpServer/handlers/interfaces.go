package handlers

import (
	"context"

	"tournamentBot/internal/models/domain"
)

// TournamentRepository — интерфейс для чтения турниров из хэндлеров.
type TournamentRepository interface {
	ReadAllTournaments(ctx context.Context) ([]domain.Tournament, error)
	FindTournamentsByStatus(ctx context.Context, status domain.TournamentStatus) ([]domain.Tournament, error)
	FindTournamentByKey(ctx context.Context, key string) (domain.Tournament, error)
}

// CycleTrigger запускает внеочередной цикл проверки источников.
type CycleTrigger interface {
	TriggerCycle() error
}
