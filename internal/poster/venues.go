package poster

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"tournamentBot/internal/models/domain"
)

// VenueFile читает список площадок из файла при каждом обращении,
// поэтому правки файла применяются без перезапуска.
type VenueFile struct {
	path string
}

func NewVenueFile(path string) *VenueFile {
	return &VenueFile{path: path}
}

// Venues возвращает актуальный список площадок. Отсутствующий файл — пустой список.
func (f *VenueFile) Venues() ([]domain.Venue, error) {
	return LoadVenues(f.path)
}

// LoadVenues читает файл формата "имя|url".
func LoadVenues(path string) ([]domain.Venue, error) {
	op := "poster.LoadVenues()"

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer file.Close()

	venues, err := ParseVenues(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return venues, nil
}

// ParseVenues разбирает строки "имя|url". Пустые строки, комментарии (#)
// и строки без разделителя пропускаются.
func ParseVenues(r io.Reader) ([]domain.Venue, error) {
	var venues []domain.Venue

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, link, ok := strings.Cut(line, "|")
		if !ok {
			continue
		}

		venues = append(venues, domain.Venue{
			Name: strings.TrimSpace(name),
			URL:  strings.TrimSpace(link),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return venues, nil
}
