package sites

import (
	"context"
	"time"

	"tournamentBot/internal/config"
)

// Candidate — сырой турнир, извлечённый из источника, до канонизации.
type Candidate struct {
	Key      string // Сырой ключ источника, без префикса
	Name     string
	Dates    string
	ImageURL string
	URL      string
	Location string
}

// FetchOptions — общие параметры HTTP-запросов скраперов.
type FetchOptions struct {
	Timeout   time.Duration
	UserAgent string
}

// ScrapeFunc — тип функции скрапера для конкретного источника.
// Возвращает кандидатов, уже прошедших фильтры источника.
type ScrapeFunc func(ctx context.Context, site config.SiteConfig, opts FetchOptions, shutdownChan <-chan struct{}) ([]Candidate, error)

// now подменяется в тестах.
var now = time.Now

// today возвращает начало текущего дня в локальной зоне.
func today() time.Time {
	t := now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
