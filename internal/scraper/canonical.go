package scraper

import (
	"tournamentBot/internal/models/domain"
	"tournamentBot/internal/scraper/sites"
)

// Canonicalize превращает кандидата источника в турнир с ключом идентичности.
// Ключ = префикс источника + сырой ключ, поэтому ключи разных источников не пересекаются.
func Canonicalize(source domain.Source, c sites.Candidate) domain.Tournament {
	profile := source.Profile()

	return domain.Tournament{
		Key:      profile.KeyPrefix + c.Key,
		Name:     c.Name,
		Dates:    c.Dates,
		ImageURL: c.ImageURL,
		URL:      c.URL,
		Source:   profile.Source,
		Location: c.Location,
		Status:   domain.TournamentStatusPending,
	}
}

// CanonicalizeAll канонизирует пачку кандидатов с сохранением порядка.
func CanonicalizeAll(source domain.Source, candidates []sites.Candidate) []domain.Tournament {
	result := make([]domain.Tournament, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, Canonicalize(source, c))
	}
	return result
}
