package domain

import (
	"errors"
	"time"
)

// ErrTournamentNotFound — турнира с таким ключом нет в хранилище.
var ErrTournamentNotFound = errors.New("tournament not found")

// TournamentStatus представляет статус турнира в пайплайне публикации
type TournamentStatus string

const (
	// TournamentStatusPending — турнир найден скрапером и ждёт публикации
	TournamentStatusPending TournamentStatus = "pending"
	// TournamentStatusPublished — анонс опубликован в группе
	TournamentStatusPublished TournamentStatus = "published"
)

// Source — источник, с которого получен турнир
type Source string

const (
	SourcePadelteams Source = "padelteams"
	SourceTiepadel   Source = "tiepadel"
)

// Tournament - доменная модель турнира
type Tournament struct {
	ID        int64
	Key       string // Ключ идентичности, уникален среди всех источников
	Name      string
	Dates     string // DD-MM-YYYY или DD-MM-YYYY / DD-MM-YYYY
	ImageURL  string
	URL       string
	Source    Source
	Location  string
	Status    TournamentStatus
	CreatedAt time.Time
}

// Venue - площадка из статического списка
type Venue struct {
	Name string
	URL  string
}

// SourceProfile описывает правила источника: подписи в посте и префикс ключа.
type SourceProfile struct {
	Source    Source
	Label     string // Отображаемое имя источника в уведомлении
	Organizer string
	Type      string
	KeyPrefix string // Префикс, добавляемый к сырому ключу источника
}

var sourceProfiles = map[Source]SourceProfile{
	SourcePadelteams: {
		Source:    SourcePadelteams,
		Label:     "padelteams.pt",
		Organizer: "Padel Players",
		Type:      "Social",
	},
	SourceTiepadel: {
		Source:    SourceTiepadel,
		Label:     "tiepadel.com",
		Organizer: "Federação Portuguesa de Padel",
		Type:      "Federation",
		KeyPrefix: "tie_",
	},
}

// Profile возвращает профиль источника. Неизвестный источник считается padelteams.
func (s Source) Profile() SourceProfile {
	if p, ok := sourceProfiles[s]; ok {
		return p
	}
	return sourceProfiles[SourcePadelteams]
}

// IsKnown сообщает, есть ли у источника профиль.
func (s Source) IsKnown() bool {
	_, ok := sourceProfiles[s]
	return ok
}

func (s Source) String() string {
	return string(s)
}
