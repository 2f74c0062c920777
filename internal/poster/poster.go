package poster

import (
	"fmt"
	"html"
	"strings"
	"time"

	"tournamentBot/internal/models/domain"
)

const dateLayout = "2-1-2006"

var monthsGenitive = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

func month(t time.Time) string {
	return monthsGenitive[t.Month()-1]
}

// FormatDates переводит "D-M-YYYY" или "D-M-YYYY / D-M-YYYY" в русскую запись,
// день и месяц могут быть без ведущего нуля.
// Всё, что не разбирается, возвращается без изменений.
func FormatDates(dates string) string {
	dates = strings.TrimSpace(dates)
	parts := strings.Split(dates, "/")
	if len(parts) > 2 {
		return dates
	}

	parsed := make([]time.Time, 0, len(parts))
	for _, p := range parts {
		d, err := time.Parse(dateLayout, strings.TrimSpace(p))
		if err != nil {
			return dates
		}
		parsed = append(parsed, d)
	}

	start := parsed[0]
	if len(parsed) == 1 || parsed[1].Equal(start) {
		return fmt.Sprintf("%d %s %d", start.Day(), month(start), start.Year())
	}

	end := parsed[1]
	switch {
	case start.Year() == end.Year() && start.Month() == end.Month():
		return fmt.Sprintf("%d-%d %s %d", start.Day(), end.Day(), month(start), start.Year())
	case start.Year() == end.Year():
		return fmt.Sprintf("%d %s - %d %s %d", start.Day(), month(start), end.Day(), month(end), end.Year())
	default:
		return fmt.Sprintf("%d %s %d - %d %s %d",
			start.Day(), month(start), start.Year(), end.Day(), month(end), end.Year())
	}
}

// FormatPost собирает HTML-текст анонса для группы.
func FormatPost(t domain.Tournament, v domain.Venue, description string) string {
	profile := t.Source.Profile()

	var sb strings.Builder

	fmt.Fprintf(&sb, "<a href=\"%s\">%s</a>\n", html.EscapeString(t.URL), html.EscapeString(t.Name))
	fmt.Fprintf(&sb, "📅 %s\n", html.EscapeString(FormatDates(t.Dates)))
	fmt.Fprintf(&sb, "📍 <a href=\"%s\">%s</a>\n", html.EscapeString(v.URL), html.EscapeString(v.Name))
	fmt.Fprintf(&sb, "<b>Организатор:</b> %s\n", html.EscapeString(profile.Organizer))
	fmt.Fprintf(&sb, "<b>Тип турнира:</b> %s", html.EscapeString(profile.Type))

	if strings.TrimSpace(description) != "" {
		fmt.Fprintf(&sb, "\n\n%s", html.EscapeString(description))
	}

	return sb.String()
}
