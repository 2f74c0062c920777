package scraper

import "tournamentBot/internal/models/domain"

// FilterNew оставляет турниры, ключей которых нет среди известных.
// Повторы ключа внутри одной пачки тоже отбрасываются; порядок обнаружения сохраняется.
func FilterNew(tournaments []domain.Tournament, known map[string]struct{}) []domain.Tournament {
	seen := make(map[string]struct{}, len(tournaments))
	result := make([]domain.Tournament, 0, len(tournaments))

	for _, t := range tournaments {
		if _, ok := known[t.Key]; ok {
			continue
		}
		if _, ok := seen[t.Key]; ok {
			continue
		}
		seen[t.Key] = struct{}{}
		result = append(result, t)
	}

	return result
}

// keysOf возвращает ключи пачки для запроса известных.
func keysOf(tournaments []domain.Tournament) []string {
	keys := make([]string, 0, len(tournaments))
	for _, t := range tournaments {
		keys = append(keys, t.Key)
	}
	return keys
}
