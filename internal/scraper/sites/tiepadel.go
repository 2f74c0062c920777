package sites

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"tournamentBot/internal/config"

	"github.com/geziyor/geziyor"
	"github.com/geziyor/geziyor/client"
)

const (
	tiepadelDateLayout = "2006-1-2"
	outputDateLayout   = "02-01-2006"
	// maxPages ограничивает пагинацию, если API перестанет учитывать смещение
	maxPages = 100
)

type tiepadelResponse struct {
	D []tiepadelItem `json:"d"`
}

type tiepadelItem struct {
	Title    string         `json:"TITLE"`
	Promoter string         `json:"CRITOU_NAMREC"`
	Location string         `json:"LOC_NAMREC"`
	Dates    string         `json:"DATES"`
	Code     flexibleString `json:"CODTOU"`
	Link     string         `json:"LINK"`
	Image    string         `json:"IMAGE"`
}

// flexibleString принимает в JSON как строку, так и число.
type flexibleString string

func (f *flexibleString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexibleString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexibleString(n.String())
		return nil
	}

	return fmt.Errorf("expected string or number, got %s", string(data))
}

// ScrapeTiepadel — скрапер API поиска турниров tiepadel.com с постраничной выборкой.
func ScrapeTiepadel(ctx context.Context, site config.SiteConfig, opts FetchOptions, shutdownChan <-chan struct{}) ([]Candidate, error) {
	base, err := baseURL(site)
	if err != nil {
		return nil, err
	}

	pageSize := site.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}

	var (
		candidates []Candidate
		fetchErr   error
		mu         sync.Mutex
		requestPage func(g *geziyor.Geziyor, offset, page int)
	)
	day := today()

	setErr := func(err error) {
		mu.Lock()
		fetchErr = err
		mu.Unlock()
	}

	requestPage = func(g *geziyor.Geziyor, offset, page int) {
		select {
		case <-ctx.Done():
			return
		case <-shutdownChan:
			return
		default:
		}

		req, err := client.NewRequest(http.MethodPost, site.URL, bytes.NewReader(tiepadelRequestBody(site, offset)))
		if err != nil {
			setErr(err)
			return
		}
		req.Header.Set("Content-Type", "application/json; charset=utf-8")

		g.Do(req, func(g *geziyor.Geziyor, r *client.Response) {
			if r.StatusCode != http.StatusOK {
				setErr(fmt.Errorf("unexpected status code: %d", r.StatusCode))
				return
			}

			found, count, err := parseTiepadelPage(r.Body, site, base, day)
			if err != nil {
				setErr(err)
				return
			}

			mu.Lock()
			candidates = append(candidates, found...)
			mu.Unlock()

			if count == 0 || count < pageSize || page+1 >= maxPages {
				return
			}
			requestPage(g, offset+count, page+1)
		})
	}

	gez := geziyor.NewGeziyor(&geziyor.Options{
		StartRequestsFunc: func(g *geziyor.Geziyor) {
			requestPage(g, 0, 0)
		},
		Timeout:           opts.Timeout,
		UserAgent:         opts.UserAgent,
		ParseHTMLDisabled: true,
		RobotsTxtDisabled: true,
		URLRevisitEnabled: true,
		LogDisabled:       true,
		ErrorFunc: func(g *geziyor.Geziyor, r *client.Request, err error) {
			setErr(err)
		},
	})

	if err := runGeziyor(ctx, gez, shutdownChan); err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()

	if fetchErr != nil {
		return nil, fmt.Errorf("tiepadel: %w", fetchErr)
	}

	return candidates, nil
}

func tiepadelRequestBody(site config.SiteConfig, offset int) []byte {
	// API принимает именно такой JS-подобный литерал, а не строгий JSON
	return []byte(fmt.Sprintf(
		`{count_items: %d, name:"", filter:1, country:%d, state:0, region:%d, city:0}`,
		offset, site.Country, site.Region,
	))
}

// parseTiepadelPage разбирает одну страницу ответа API.
// Возвращает прошедших фильтры кандидатов и число элементов на странице.
func parseTiepadelPage(body []byte, site config.SiteConfig, base *url.URL, day time.Time) ([]Candidate, int, error) {
	var resp tiepadelResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, 0, fmt.Errorf("decode tiepadel page: %w", err)
	}

	candidates := make([]Candidate, 0, len(resp.D))
	for _, item := range resp.D {
		if !admitTiepadel(item, site, day) {
			continue
		}

		link := item.Link
		if link != "" {
			link = resolveURL(base, link)
		}

		candidates = append(candidates, Candidate{
			Key:      string(item.Code),
			Name:     item.Title,
			Dates:    convertTiepadelDates(item.Dates),
			ImageURL: item.Image,
			URL:      link,
			Location: item.Location,
		})
	}

	return candidates, len(resp.D), nil
}

// admitTiepadel применяет фильтры источника: только турниры федерации,
// без собственного листинга федерации, без лиг и только будущие.
func admitTiepadel(item tiepadelItem, site config.SiteConfig, day time.Time) bool {
	if item.Promoter != site.Federation {
		return false
	}
	if item.Location == site.Federation {
		return false
	}
	if site.ExcludeKeyword != "" && strings.Contains(strings.ToLower(item.Title), strings.ToLower(site.ExcludeKeyword)) {
		return false
	}

	startStr := strings.TrimSpace(strings.Split(item.Dates, " to ")[0])
	start, err := time.ParseInLocation(tiepadelDateLayout, startStr, day.Location())
	if err != nil {
		return true
	}

	return start.After(day)
}

// convertTiepadelDates переводит "2026-03-13 to 2026-03-15" в "13-03-2026 / 15-03-2026".
func convertTiepadelDates(dates string) string {
	parts := strings.Split(dates, " to ")
	converted := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if t, err := time.Parse(tiepadelDateLayout, p); err == nil {
			converted = append(converted, t.Format(outputDateLayout))
			continue
		}
		converted = append(converted, p)
	}

	return strings.Join(converted, " / ")
}
