package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"tournamentBot/internal/config"
	"tournamentBot/internal/models/domain"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite3"
)

// ErrTournamentNotFound возвращается, когда турнира с таким ключом нет в базе.
var ErrTournamentNotFound = domain.ErrTournamentNotFound

type Repository struct {
	log    *slog.Logger
	DB     *sqlx.DB
	driver string
}

// New открывает соединение с базой и создаёт схему, если её нет.
func New(log *slog.Logger, cfg *config.Config) (*Repository, error) {
	op := "repositories.New()"
	l := log.With(slog.String("op", op))

	driver, dsn, err := dataSource(cfg.DBConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if driver == driverSQLite {
		// SQLite не умеет параллельную запись, сериализуем через один коннект
		db.SetMaxOpenConns(1)
	}

	r := &Repository{
		log:    log,
		DB:     db,
		driver: driver,
	}

	if err := r.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	l.Info("repository ready", slog.String("driver", driver))

	return r, nil
}

func dataSource(cfg config.DBConfig) (string, string, error) {
	switch cfg.Driver {
	case driverPostgres:
		return driverPostgres, fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
		), nil
	case driverSQLite, "sqlite", "":
		return driverSQLite, cfg.Path, nil
	default:
		return "", "", fmt.Errorf("unsupported db driver: %s", cfg.Driver)
	}
}

func (r *Repository) migrate(ctx context.Context) error {
	idColumn := "BIGSERIAL PRIMARY KEY"
	if r.driver == driverSQLite {
		idColumn = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	queries := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS tournaments (
			id %s,
			identity_key TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			dates TEXT NOT NULL DEFAULT '',
			image_url TEXT,
			url TEXT,
			source TEXT NOT NULL DEFAULT 'padelteams',
			location TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`, idColumn),
		`CREATE INDEX IF NOT EXISTS idx_tournaments_status ON tournaments (status)`,
	}

	for _, q := range queries {
		if _, err := r.DB.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}

// Shutdown закрывает соединение с базой.
func (r *Repository) Shutdown(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("force exit repository: %w", ctx.Err())
	default:
		return r.DB.Close()
	}
}
