package sites

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"sync"
	"testing"
	"time"

	"tournamentBot/internal/config"
)

const federation = "Federação Portuguesa de Padel"

func testTiepadelSite(u string) config.SiteConfig {
	return config.SiteConfig{
		Name:           "tiepadel",
		URL:            u + "/methods.aspx/Get_Find_Tournaments",
		BaseURL:        u,
		PageSize:       10,
		Federation:     federation,
		ExcludeKeyword: "liga",
		Country:        196,
		Region:         11,
	}
}

func TestParseTiepadelPage(t *testing.T) {
	body := `{"d": [
		{"TITLE": "Open Cascais", "CRITOU_NAMREC": "Federação Portuguesa de Padel", "LOC_NAMREC": "Cascais Padel", "DATES": "2026-03-27 to 2026-03-29", "CODTOU": 101, "LINK": "/torneio/101", "IMAGE": "https://img.tiepadel.com/101.jpg"},
		{"TITLE": "Club Social", "CRITOU_NAMREC": "Outro Promotor", "LOC_NAMREC": "Lisboa", "DATES": "2026-04-01", "CODTOU": 102, "LINK": "/torneio/102", "IMAGE": ""},
		{"TITLE": "Circuito Interno", "CRITOU_NAMREC": "Federação Portuguesa de Padel", "LOC_NAMREC": "Federação Portuguesa de Padel", "DATES": "2026-04-01", "CODTOU": 103, "LINK": "/torneio/103", "IMAGE": ""},
		{"TITLE": "LIGA de Clubes", "CRITOU_NAMREC": "Federação Portuguesa de Padel", "LOC_NAMREC": "Oeiras", "DATES": "2026-04-01", "CODTOU": 104, "LINK": "/torneio/104", "IMAGE": ""},
		{"TITLE": "Starts Today", "CRITOU_NAMREC": "Federação Portuguesa de Padel", "LOC_NAMREC": "Oeiras", "DATES": "2026-03-21 to 2026-03-22", "CODTOU": 105, "LINK": "/torneio/105", "IMAGE": ""},
		{"TITLE": "Started Yesterday", "CRITOU_NAMREC": "Federação Portuguesa de Padel", "LOC_NAMREC": "Oeiras", "DATES": "2026-03-20", "CODTOU": 106, "LINK": "/torneio/106", "IMAGE": ""},
		{"TITLE": "Date Pending", "CRITOU_NAMREC": "Federação Portuguesa de Padel", "LOC_NAMREC": "Sintra", "DATES": "brevemente", "CODTOU": "107", "LINK": "https://www.tiepadel.com/torneio/107", "IMAGE": ""},
		{"TITLE": "Tomorrow", "CRITOU_NAMREC": "Federação Portuguesa de Padel", "LOC_NAMREC": "Sintra", "DATES": "2026-03-22", "CODTOU": 108, "LINK": "/torneio/108", "IMAGE": ""}
	]}`

	base, _ := url.Parse("https://www.tiepadel.com")
	candidates, count, err := parseTiepadelPage([]byte(body), testTiepadelSite("https://www.tiepadel.com"), base, testDay)
	if err != nil {
		t.Fatalf("parseTiepadelPage() unexpected error: %v", err)
	}
	if count != 8 {
		t.Errorf("count = %d, want 8", count)
	}

	wantKeys := []string{"101", "107", "108"}
	if len(candidates) != len(wantKeys) {
		t.Fatalf("expected %d candidates, got %d: %+v", len(wantKeys), len(candidates), candidates)
	}
	for i, key := range wantKeys {
		if candidates[i].Key != key {
			t.Errorf("candidate %d key = %q, want %q", i, candidates[i].Key, key)
		}
	}

	first := candidates[0]
	if first.Dates != "27-03-2026 / 29-03-2026" {
		t.Errorf("Dates = %q", first.Dates)
	}
	if first.URL != "https://www.tiepadel.com/torneio/101" {
		t.Errorf("URL = %q", first.URL)
	}
	if first.Location != "Cascais Padel" {
		t.Errorf("Location = %q", first.Location)
	}
	if first.ImageURL != "https://img.tiepadel.com/101.jpg" {
		t.Errorf("ImageURL = %q", first.ImageURL)
	}

	if candidates[1].Dates != "brevemente" {
		t.Errorf("unparsable dates should pass through, got %q", candidates[1].Dates)
	}
}

func TestParseTiepadelPage_InvalidJSON(t *testing.T) {
	base, _ := url.Parse("https://www.tiepadel.com")
	if _, _, err := parseTiepadelPage([]byte("<html>"), testTiepadelSite("x"), base, testDay); err == nil {
		t.Error("expected decode error")
	}
}

func TestConvertTiepadelDates(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-03-13 to 2026-03-15", "13-03-2026 / 15-03-2026"},
		{"2026-03-13", "13-03-2026"},
		{"2026-3-5 to 2026-3-7", "05-03-2026 / 07-03-2026"},
		{"2026-03-13 to soon", "13-03-2026 / soon"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := convertTiepadelDates(tt.in); got != tt.want {
				t.Errorf("convertTiepadelDates(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAdmitTiepadel_StartDate(t *testing.T) {
	site := testTiepadelSite("https://www.tiepadel.com")

	tests := []struct {
		dates string
		want  bool
	}{
		{"2026-3-22 to 2026-3-23", true},
		{"2026-3-21 to 2026-3-23", false},
		{"2026-03-20", false},
		{"soon", true},
	}

	for _, tt := range tests {
		t.Run(tt.dates, func(t *testing.T) {
			item := tiepadelItem{Title: "Open", Promoter: federation, Location: "Lisboa", Dates: tt.dates}
			if got := admitTiepadel(item, site, testDay); got != tt.want {
				t.Errorf("admitTiepadel(%q) = %v, want %v", tt.dates, got, tt.want)
			}
		})
	}
}

func TestFlexibleString(t *testing.T) {
	var item tiepadelItem
	if err := json.Unmarshal([]byte(`{"CODTOU": 42}`), &item); err != nil {
		t.Fatalf("number: %v", err)
	}
	if item.Code != "42" {
		t.Errorf("Code = %q, want 42", item.Code)
	}

	if err := json.Unmarshal([]byte(`{"CODTOU": "abc"}`), &item); err != nil {
		t.Fatalf("string: %v", err)
	}
	if item.Code != "abc" {
		t.Errorf("Code = %q, want abc", item.Code)
	}
}

func TestScrapeTiepadel_Pagination(t *testing.T) {
	offsetRe := regexp.MustCompile(`count_items: (\d+)`)

	var (
		mu      sync.Mutex
		offsets []int
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json; charset=utf-8" {
			t.Errorf("unexpected Content-Type %q", ct)
		}

		body, _ := io.ReadAll(r.Body)
		m := offsetRe.FindStringSubmatch(string(body))
		if m == nil {
			t.Errorf("request body has no offset: %s", body)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		offset, _ := strconv.Atoi(m[1])

		mu.Lock()
		offsets = append(offsets, offset)
		mu.Unlock()

		size := 0
		switch offset {
		case 0:
			size = 10
		case 10:
			size = 3
		}

		items := make([]map[string]interface{}, 0, size)
		for i := 0; i < size; i++ {
			id := offset + i
			title := fmt.Sprintf("Torneio %d", id)
			if id == 0 {
				title = "Liga Regional"
			}
			items = append(items, map[string]interface{}{
				"TITLE":         title,
				"CRITOU_NAMREC": federation,
				"LOC_NAMREC":    "Clube",
				"DATES":         "2026-04-10 to 2026-04-12",
				"CODTOU":        id,
				"LINK":          fmt.Sprintf("/torneio/%d", id),
				"IMAGE":         "",
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"d": items})
	}))
	defer server.Close()

	originalNow := now
	now = func() time.Time { return testDay }
	defer func() { now = originalNow }()

	candidates, err := ScrapeTiepadel(context.Background(), testTiepadelSite(server.URL), FetchOptions{Timeout: 5 * time.Second}, make(chan struct{}))
	if err != nil {
		t.Fatalf("ScrapeTiepadel() unexpected error: %v", err)
	}

	if len(candidates) != 12 {
		t.Errorf("expected 12 candidates, got %d", len(candidates))
	}

	mu.Lock()
	defer mu.Unlock()
	if len(offsets) != 2 || offsets[0] != 0 || offsets[1] != 10 {
		t.Errorf("offsets = %v, want [0 10]", offsets)
	}
}
