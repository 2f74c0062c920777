package routers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tournamentBot/internal/metrics"
	"tournamentBot/internal/models/domain"
	"tournamentBot/internal/transport/httpServer/handlers"
	myMiddleware "tournamentBot/internal/transport/httpServer/middleware"
	"tournamentBot/internal/utils/logger/handlers/slogdiscard"

	"github.com/go-chi/chi/v5"
)

const testSecret = "router-secret"

type emptyRepository struct{}

func (emptyRepository) ReadAllTournaments(context.Context) ([]domain.Tournament, error) {
	return []domain.Tournament{}, nil
}

func (emptyRepository) FindTournamentsByStatus(context.Context, domain.TournamentStatus) ([]domain.Tournament, error) {
	return []domain.Tournament{}, nil
}

func (emptyRepository) FindTournamentByKey(context.Context, string) (domain.Tournament, error) {
	return domain.Tournament{}, domain.ErrTournamentNotFound
}

type nopTrigger struct{}

func (nopTrigger) TriggerCycle() error { return nil }

func newTestMux(t *testing.T) *chi.Mux {
	t.Helper()

	m, err := metrics.New()
	if err != nil {
		t.Fatalf("metrics.New() unexpected error: %v", err)
	}

	log := slogdiscard.NewDiscardLogger()
	router := NewRouter(log, testSecret, handlers.NewTournamentHandler(log, emptyRepository{}, nopTrigger{}), m)

	mux := chi.NewRouter()
	router.Mount(mux)
	return mux
}

func TestRouter_Access(t *testing.T) {
	mux := newTestMux(t)

	token, err := myMiddleware.NewToken(testSecret, "admin", time.Hour)
	if err != nil {
		t.Fatalf("NewToken() unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		method   string
		path     string
		auth     bool
		wantCode int
	}{
		{"ping is open", http.MethodGet, "/ping", false, http.StatusOK},
		{"metrics is open", http.MethodGet, "/metrics", false, http.StatusOK},
		{"list requires token", http.MethodGet, "/api/v1/tournaments", false, http.StatusUnauthorized},
		{"list with token", http.MethodGet, "/api/v1/tournaments", true, http.StatusOK},
		{"unknown key", http.MethodGet, "/api/v1/tournaments/nope", true, http.StatusNotFound},
		{"scrape requires token", http.MethodPost, "/api/v1/scrape", false, http.StatusUnauthorized},
		{"scrape with token", http.MethodPost, "/api/v1/scrape", true, http.StatusAccepted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			rr := httptest.NewRecorder()

			mux.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Errorf("status = %d, want %d, body=%s", rr.Code, tt.wantCode, rr.Body.String())
			}
		})
	}
}

func TestRouter_MetricsRecordRequests(t *testing.T) {
	mux := newTestMux(t)

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/tournaments", nil))

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !strings.Contains(rr.Body.String(), `status="401"`) {
		t.Errorf("unauthorized request should be counted, body=%q", rr.Body.String())
	}
}
