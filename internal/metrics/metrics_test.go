package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func scrapeBody(t *testing.T, m *Metrics) string {
	t.Helper()

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected metrics handler to return 200, got %d", rr.Code)
	}
	return rr.Body.String()
}

func TestInstrumentHandler(t *testing.T) {
	m, err := New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	mux := chi.NewRouter()
	mux.Use(m.InstrumentHandler)
	mux.Get("/api/v1/tournaments/{key}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	for _, key := range []string{"tie_1", "AAA1"} {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/tournaments/"+key, nil))
		if rr.Code != http.StatusAccepted {
			t.Fatalf("unexpected status code: %d", rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	body := scrapeBody(t, m)
	if !strings.Contains(body, `tournamentbot_http_requests_total{method="GET",path="/api/v1/tournaments/{key}",status="202"} 2`) {
		t.Fatalf("requests_total metric not recorded by route pattern, body=%q", body)
	}
	if !strings.Contains(body, `path="unmatched",status="404"`) {
		t.Fatalf("unmatched route should be collapsed, body=%q", body)
	}
}

func TestDomainCounters(t *testing.T) {
	m, err := New()
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	m.ObserveScrape("tiepadel", time.Second, errors.New("boom"))
	m.ObserveScrape("tiepadel", time.Second, nil)
	m.AddCandidates("tiepadel", 3)
	m.IncNewTournament("padelteams")
	m.IncCycle("skipped")
	m.IncPublication("published")
	m.IncNotifyFailure()

	body := scrapeBody(t, m)

	expected := []string{
		`tournamentbot_scraper_source_errors_total{source="tiepadel"} 1`,
		`tournamentbot_scraper_duration_seconds_count{source="tiepadel"} 2`,
		`tournamentbot_scraper_candidates_total{source="tiepadel"} 3`,
		`tournamentbot_scraper_new_tournaments_total{source="padelteams"} 1`,
		`tournamentbot_orchestrator_cycles_total{result="skipped"} 1`,
		`tournamentbot_publisher_publications_total{outcome="published"} 1`,
		`tournamentbot_orchestrator_notify_failures_total 1`,
	}
	for _, line := range expected {
		if !strings.Contains(body, line) {
			t.Errorf("metric %q not found", line)
		}
	}
}
