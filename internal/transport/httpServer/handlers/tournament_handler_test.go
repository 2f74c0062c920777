package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tournamentBot/internal/models/domain"
	"tournamentBot/internal/orchestrator"
	"tournamentBot/internal/transport/httpServer/handlers/dto"
	"tournamentBot/internal/utils/logger/handlers/slogdiscard"

	"github.com/go-chi/chi/v5"
)

type memoryRepository struct {
	tournaments []domain.Tournament
	err         error
}

func (r *memoryRepository) ReadAllTournaments(context.Context) ([]domain.Tournament, error) {
	return r.tournaments, r.err
}

func (r *memoryRepository) FindTournamentsByStatus(_ context.Context, status domain.TournamentStatus) ([]domain.Tournament, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.Tournament
	for _, t := range r.tournaments {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memoryRepository) FindTournamentByKey(_ context.Context, key string) (domain.Tournament, error) {
	if r.err != nil {
		return domain.Tournament{}, r.err
	}
	for _, t := range r.tournaments {
		if t.Key == key {
			return t, nil
		}
	}
	return domain.Tournament{}, domain.ErrTournamentNotFound
}

type fakeTrigger struct {
	err   error
	calls int
}

func (f *fakeTrigger) TriggerCycle() error {
	f.calls++
	return f.err
}

func newTestMux(repo TournamentRepository, trigger CycleTrigger) *chi.Mux {
	h := NewTournamentHandler(slogdiscard.NewDiscardLogger(), repo, trigger)

	mux := chi.NewRouter()
	mux.Get("/api/v1/tournaments", h.GetTournaments)
	mux.Get("/api/v1/tournaments/{key}", h.GetTournament)
	mux.Post("/api/v1/scrape", h.TriggerScrape)
	return mux
}

func testTournaments() []domain.Tournament {
	return []domain.Tournament{
		{Key: "AAA1", Name: "Open Porto", Source: domain.SourcePadelteams, Status: domain.TournamentStatusPending},
		{Key: "tie_42", Name: "FPP Lisboa", Source: domain.SourceTiepadel, Status: domain.TournamentStatusPublished},
	}
}

func TestGetTournaments(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		repoErr  error
		wantCode int
		wantKeys []string
	}{
		{"all", "", nil, http.StatusOK, []string{"AAA1", "tie_42"}},
		{"pending", "?status=pending", nil, http.StatusOK, []string{"AAA1"}},
		{"published", "?status=published", nil, http.StatusOK, []string{"tie_42"}},
		{"invalid status", "?status=archived", nil, http.StatusBadRequest, nil},
		{"repository error", "", errors.New("db down"), http.StatusInternalServerError, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(&memoryRepository{tournaments: testTournaments(), err: tt.repoErr}, &fakeTrigger{})

			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/tournaments"+tt.query, nil))

			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d, body=%s", rr.Code, tt.wantCode, rr.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			var got []dto.TournamentResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
				t.Fatalf("cannot decode response: %v", err)
			}
			if len(got) != len(tt.wantKeys) {
				t.Fatalf("got %d tournaments, want %d", len(got), len(tt.wantKeys))
			}
			for i, key := range tt.wantKeys {
				if got[i].Key != key {
					t.Errorf("got[%d].Key = %q, want %q", i, got[i].Key, key)
				}
			}
		})
	}
}

func TestGetTournament(t *testing.T) {
	mux := newTestMux(&memoryRepository{tournaments: testTournaments()}, &fakeTrigger{})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/tournaments/tie_42", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var got dto.TournamentResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("cannot decode response: %v", err)
	}
	if got.Source != "tiepadel" || got.Status != "published" {
		t.Errorf("unexpected response: %+v", got)
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/tournaments/missing", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing key: status = %d, want 404", rr.Code)
	}
}

func TestTriggerScrape(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"started", nil, http.StatusAccepted},
		{"already running", orchestrator.ErrCycleRunning, http.StatusConflict},
		{"other error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trigger := &fakeTrigger{err: tt.err}
			mux := newTestMux(&memoryRepository{}, trigger)

			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/scrape", nil))

			if rr.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			if trigger.calls != 1 {
				t.Errorf("TriggerCycle called %d times, want 1", trigger.calls)
			}
		})
	}
}
