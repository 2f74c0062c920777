package sites

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"tournamentBot/internal/config"

	"github.com/PuerkitoBio/goquery"
)

var testDay = time.Date(2026, time.March, 21, 0, 0, 0, 0, time.UTC)

func loadFixture(t *testing.T) *goquery.Document {
	t.Helper()

	data, err := os.ReadFile("testdata/padelteams_competitions.html")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}

	return doc
}

func TestParsePadelteams(t *testing.T) {
	base, _ := url.Parse("https://padelteams.pt")
	candidates := parsePadelteams(loadFixture(t), base, testDay)

	wantKeys := []string{"AAA1", "BBB2", "DDD4", "EEE%3D"}
	if len(candidates) != len(wantKeys) {
		t.Fatalf("expected %d candidates, got %d: %+v", len(wantKeys), len(candidates), candidates)
	}
	for i, key := range wantKeys {
		if candidates[i].Key != key {
			t.Errorf("candidate %d key = %q, want %q", i, candidates[i].Key, key)
		}
	}

	first := candidates[0]
	if first.Name != "Torneio Primavera" {
		t.Errorf("Name = %q", first.Name)
	}
	if first.Dates != "21-03-2026 / 22-03-2026" {
		t.Errorf("Dates = %q", first.Dates)
	}
	if first.ImageURL != "https://padelteams.pt/uploads/competitions/primavera.jpeg" {
		t.Errorf("ImageURL = %q", first.ImageURL)
	}
	if first.URL != "https://padelteams.pt/info/competition?k=AAA1" {
		t.Errorf("URL = %q", first.URL)
	}

	if candidates[1].ImageURL != "" {
		t.Errorf("card without image should have empty ImageURL, got %q", candidates[1].ImageURL)
	}

	noName := candidates[2]
	if noName.Name != "Unknown" {
		t.Errorf("missing name should default to Unknown, got %q", noName.Name)
	}
	if noName.Dates != "TBD" {
		t.Errorf("malformed date should be kept, got %q", noName.Dates)
	}

	absolute := candidates[3]
	if absolute.ImageURL != "https://cdn.example.com/pics/summer.png" {
		t.Errorf("ImageURL = %q", absolute.ImageURL)
	}
	if absolute.URL != "https://padelteams.pt/info/competition?k=EEE%3D" {
		t.Errorf("URL = %q", absolute.URL)
	}
}

func TestParsePadelteams_IdentityStable(t *testing.T) {
	base, _ := url.Parse("https://padelteams.pt")

	first := parsePadelteams(loadFixture(t), base, testDay)
	second := parsePadelteams(loadFixture(t), base, testDay)

	if len(first) != len(second) {
		t.Fatalf("different result sizes: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Key != second[i].Key {
			t.Errorf("key %d changed between runs: %q vs %q", i, first[i].Key, second[i].Key)
		}
	}
}

func TestIsFinished(t *testing.T) {
	tests := []struct {
		dates string
		want  bool
	}{
		{"20-03-2026", true},
		{"21-03-2026", false},
		{"22-03-2026", false},
		{"19-03-2026 / 20-03-2026", true},
		{"20-03-2026 / 21-03-2026", false},
		{"1-4-2026", false},
		{"TBD", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.dates, func(t *testing.T) {
			if got := isFinished(tt.dates, testDay); got != tt.want {
				t.Errorf("isFinished(%q) = %v, want %v", tt.dates, got, tt.want)
			}
		})
	}
}

func TestFullSizeImage(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"/img/a_t.jpeg", "/img/a.jpeg"},
		{"/img/a_t.jpg", "/img/a.jpg"},
		{"/img/a_t.webp", "/img/a.webp"},
		{"/img/a_t.gif", "/img/a_t.gif"},
		{"/img/a_tt.png", "/img/a_tt.png"},
		{"/img/a.png", "/img/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := fullSizeImage(tt.src); got != tt.want {
				t.Errorf("fullSizeImage(%q) = %q, want %q", tt.src, got, tt.want)
			}
		})
	}
}

func TestScrapePadelteams_HTTP(t *testing.T) {
	data, err := os.ReadFile("testdata/padelteams_competitions.html")
	if err != nil {
		t.Fatalf("failed to load test fixture: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/infoclub/competitions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
	}))
	defer server.Close()

	originalNow := now
	now = func() time.Time { return testDay.Add(10 * time.Hour) }
	defer func() { now = originalNow }()

	site := config.SiteConfig{
		Name:    "padelteams",
		URL:     server.URL + "/infoclub/competitions?k=YmlkPTgy",
		BaseURL: "https://padelteams.pt",
	}

	candidates, err := ScrapePadelteams(context.Background(), site, FetchOptions{Timeout: 5 * time.Second}, make(chan struct{}))
	if err != nil {
		t.Fatalf("ScrapePadelteams() unexpected error: %v", err)
	}
	if len(candidates) != 4 {
		t.Fatalf("expected 4 candidates, got %d", len(candidates))
	}
}
