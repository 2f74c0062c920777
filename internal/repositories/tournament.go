package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tournamentBot/internal/models/domain"
	"tournamentBot/internal/models/repositories"

	"github.com/jmoiron/sqlx"
)

const selectColumns = `SELECT id, identity_key, name, dates, image_url, url, source, location, status, created_at FROM tournaments`

// CreateTournament вставляет турнир, если его ключа ещё нет в базе.
// Повторная вставка того же ключа не ошибка: возвращается inserted=false.
func (r *Repository) CreateTournament(ctx context.Context, t domain.Tournament) (bool, error) {
	op := "repository.CreateTournament()"

	if t.Status == "" {
		t.Status = domain.TournamentStatusPending
	}
	repoTournament := mapToRepo(t)

	insertQuery := r.DB.Rebind(`INSERT INTO tournaments (
		identity_key, name, dates, image_url, url, source, location, status
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (identity_key) DO NOTHING`)

	result, err := r.DB.ExecContext(ctx, insertQuery,
		repoTournament.Key,
		repoTournament.Name,
		repoTournament.Dates,
		repoTournament.ImageURL,
		repoTournament.URL,
		repoTournament.Source,
		repoTournament.Location,
		repoTournament.Status,
	)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: error checking rows affected: %w", op, err)
	}

	return rowsAffected > 0, nil
}

func (r *Repository) FindTournamentByKey(ctx context.Context, key string) (domain.Tournament, error) {
	op := "repository.FindTournamentByKey()"

	var repoTournament repositories.Tournament
	query := r.DB.Rebind(selectColumns + ` WHERE identity_key = ? LIMIT 1`)

	err := r.DB.GetContext(ctx, &repoTournament, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Tournament{}, fmt.Errorf("%s: %w: %s", op, ErrTournamentNotFound, key)
		}
		return domain.Tournament{}, fmt.Errorf("%s: %w", op, err)
	}

	return mapToDomain(repoTournament), nil
}

// FindKnownKeys возвращает подмножество keys, которое уже есть в базе.
func (r *Repository) FindKnownKeys(ctx context.Context, keys []string) (map[string]struct{}, error) {
	op := "repository.FindKnownKeys()"

	known := make(map[string]struct{}, len(keys))
	if len(keys) == 0 {
		return known, nil
	}

	query, args, err := sqlx.In(`SELECT identity_key FROM tournaments WHERE identity_key IN (?)`, keys)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var found []string
	if err := r.DB.SelectContext(ctx, &found, r.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, k := range found {
		known[k] = struct{}{}
	}

	return known, nil
}

func (r *Repository) MarkPublished(ctx context.Context, key string) error {
	op := "repository.MarkPublished()"

	query := r.DB.Rebind(`UPDATE tournaments SET status = ? WHERE identity_key = ?`)

	result, err := r.DB.ExecContext(ctx, query, string(domain.TournamentStatusPublished), key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: error checking rows affected: %w", op, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w: %s", op, ErrTournamentNotFound, key)
	}

	return nil
}

func (r *Repository) FindTournamentsByStatus(ctx context.Context, status domain.TournamentStatus) ([]domain.Tournament, error) {
	op := "repository.FindTournamentsByStatus()"

	var repoTournaments []repositories.Tournament
	query := r.DB.Rebind(selectColumns + ` WHERE status = ? ORDER BY id ASC`)

	if err := r.DB.SelectContext(ctx, &repoTournaments, query, string(status)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return mapToDomainList(repoTournaments), nil
}

func (r *Repository) ReadAllTournaments(ctx context.Context) ([]domain.Tournament, error) {
	op := "repository.ReadAllTournaments()"

	var repoTournaments []repositories.Tournament
	if err := r.DB.SelectContext(ctx, &repoTournaments, selectColumns+` ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return mapToDomainList(repoTournaments), nil
}

func mapToRepo(t domain.Tournament) repositories.Tournament {
	return repositories.Tournament{
		BaseModel: repositories.BaseModel{
			ID: t.ID,
		},
		Key:      t.Key,
		Name:     t.Name,
		Dates:    t.Dates,
		ImageURL: sql.NullString{String: t.ImageURL, Valid: t.ImageURL != ""},
		URL:      sql.NullString{String: t.URL, Valid: t.URL != ""},
		Source:   string(t.Source),
		Location: t.Location,
		Status:   string(t.Status),
	}
}

func mapToDomain(t repositories.Tournament) domain.Tournament {
	source := domain.Source(t.Source)
	if source == "" {
		source = domain.SourcePadelteams
	}

	return domain.Tournament{
		ID:        t.ID,
		Key:       t.Key,
		Name:      t.Name,
		Dates:     t.Dates,
		ImageURL:  t.ImageURL.String,
		URL:       t.URL.String,
		Source:    source,
		Location:  t.Location,
		Status:    domain.TournamentStatus(t.Status),
		CreatedAt: t.CreatedAt,
	}
}

func mapToDomainList(list []repositories.Tournament) []domain.Tournament {
	result := make([]domain.Tournament, len(list))
	for i, t := range list {
		result[i] = mapToDomain(t)
	}
	return result
}
