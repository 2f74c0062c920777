package dto

import (
	"time"

	"tournamentBot/internal/models/domain"
)

// TournamentResponse — DTO для ответа с данными турнира.
type TournamentResponse struct {
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Dates     string    `json:"dates"`
	ImageURL  string    `json:"image_url,omitempty"`
	URL       string    `json:"url,omitempty"`
	Source    string    `json:"source"`
	Location  string    `json:"location,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ScrapeResponse — ответ на запуск цикла проверки.
type ScrapeResponse struct {
	Status string `json:"status"`
}

func MapDomainToTournamentResponse(t domain.Tournament) TournamentResponse {
	return TournamentResponse{
		Key:       t.Key,
		Name:      t.Name,
		Dates:     t.Dates,
		ImageURL:  t.ImageURL,
		URL:       t.URL,
		Source:    t.Source.String(),
		Location:  t.Location,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
	}
}

func MapDomainToTournamentResponseList(tournaments []domain.Tournament) []TournamentResponse {
	result := make([]TournamentResponse, len(tournaments))
	for i, t := range tournaments {
		result[i] = MapDomainToTournamentResponse(t)
	}
	return result
}
