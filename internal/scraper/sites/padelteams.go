package sites

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"tournamentBot/internal/config"

	"github.com/PuerkitoBio/goquery"
	"github.com/geziyor/geziyor"
	"github.com/geziyor/geziyor/client"
)

const padelteamsDateLayout = "2-1-2006"

var (
	competitionKeyRe = regexp.MustCompile(`k=([A-Za-z0-9%=]+)`)
	thumbSuffixRe    = regexp.MustCompile(`_t\.(jpeg|jpg|png|webp)$`)
)

// ScrapePadelteams — скрапер страницы соревнований клуба на padelteams.pt
func ScrapePadelteams(ctx context.Context, site config.SiteConfig, opts FetchOptions, shutdownChan <-chan struct{}) ([]Candidate, error) {
	base, err := baseURL(site)
	if err != nil {
		return nil, err
	}

	var (
		candidates []Candidate
		fetchErr   error
		mu         sync.Mutex
	)
	day := today()

	gez := geziyor.NewGeziyor(&geziyor.Options{
		StartURLs:   []string{site.URL},
		Timeout:     opts.Timeout,
		UserAgent:   opts.UserAgent,
		LogDisabled: true,
		ParseFunc: func(g *geziyor.Geziyor, r *client.Response) {
			mu.Lock()
			defer mu.Unlock()

			if r.StatusCode != http.StatusOK {
				fetchErr = fmt.Errorf("unexpected status code: %d", r.StatusCode)
				return
			}
			if r.HTMLDoc == nil {
				fetchErr = fmt.Errorf("empty html document")
				return
			}
			candidates = append(candidates, parsePadelteams(r.HTMLDoc, base, day)...)
		},
		ErrorFunc: func(g *geziyor.Geziyor, r *client.Request, err error) {
			mu.Lock()
			fetchErr = err
			mu.Unlock()
		},
	})

	if err := runGeziyor(ctx, gez, shutdownChan); err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()

	if fetchErr != nil {
		return nil, fmt.Errorf("padelteams: %w", fetchErr)
	}

	return candidates, nil
}

// parsePadelteams извлекает турниры из карточек-ссылок на страницу соревнования.
func parsePadelteams(doc *goquery.Document, base *url.URL, day time.Time) []Candidate {
	var candidates []Candidate

	doc.Find("a[href*='/info/competition?k=']").Each(func(_ int, card *goquery.Selection) {
		href, _ := card.Attr("href")

		match := competitionKeyRe.FindStringSubmatch(href)
		if match == nil {
			return
		}

		// Название
		name := "Unknown"
		if nameSel := card.Find("div.text-dark.bold").First(); nameSel.Length() > 0 {
			name = strings.TrimSpace(nameSel.Text())
		}

		// Даты: одна или две
		var dates string
		spans := card.Find("span.px2.bold")
		switch {
		case spans.Length() >= 2:
			dates = strings.TrimSpace(spans.Eq(0).Text()) + " / " + strings.TrimSpace(spans.Eq(1).Text())
		case spans.Length() == 1:
			dates = strings.TrimSpace(spans.Eq(0).Text())
		}

		// Картинка: миниатюра → полный размер
		var imageURL string
		if src, ok := card.Find("img.cover-image-mini").First().Attr("src"); ok && src != "" {
			imageURL = resolveURL(base, fullSizeImage(src))
		}

		if isFinished(dates, day) {
			return
		}

		candidates = append(candidates, Candidate{
			Key:      match[1],
			Name:     name,
			Dates:    dates,
			ImageURL: imageURL,
			URL:      resolveURL(base, href),
		})
	})

	return candidates
}

// fullSizeImage убирает суффикс _t перед расширением миниатюры.
func fullSizeImage(src string) string {
	return thumbSuffixRe.ReplaceAllString(src, ".$1")
}

// isFinished сообщает, что последняя дата турнира строго раньше day.
// Нераспознанная дата турнир не исключает.
func isFinished(dates string, day time.Time) bool {
	parts := strings.Split(dates, "/")
	last := strings.TrimSpace(parts[len(parts)-1])

	t, err := time.ParseInLocation(padelteamsDateLayout, last, day.Location())
	if err != nil {
		return false
	}

	return t.Before(day)
}

func baseURL(site config.SiteConfig) (*url.URL, error) {
	raw := site.BaseURL
	if raw == "" {
		raw = site.URL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", raw, err)
	}

	return u, nil
}

func resolveURL(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

// runGeziyor запускает краулер и ждёт его завершения, отмены контекста или shutdown.
func runGeziyor(ctx context.Context, gez *geziyor.Geziyor, shutdownChan <-chan struct{}) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		gez.Start()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-shutdownChan:
		return fmt.Errorf("shutdown")
	}
}
