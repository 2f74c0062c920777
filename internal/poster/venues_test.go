package poster

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseVenues(t *testing.T) {
	input := `# площадки
Padel Club Lisboa | https://maps.example.com/lisboa

  Cascais Arena|https://cascais.example.com  
no separator here
#Commented|https://x
Empty URL|
`
	venues, err := ParseVenues(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseVenues() unexpected error: %v", err)
	}

	if len(venues) != 3 {
		t.Fatalf("expected 3 venues, got %d: %+v", len(venues), venues)
	}
	if venues[0].Name != "Padel Club Lisboa" || venues[0].URL != "https://maps.example.com/lisboa" {
		t.Errorf("venue 0 = %+v", venues[0])
	}
	if venues[1].Name != "Cascais Arena" || venues[1].URL != "https://cascais.example.com" {
		t.Errorf("venue 1 = %+v", venues[1])
	}
	if venues[2].Name != "Empty URL" || venues[2].URL != "" {
		t.Errorf("venue 2 = %+v", venues[2])
	}
}

func TestVenueFile_ReloadsOnEveryCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "venues.txt")
	f := NewVenueFile(path)

	venues, err := f.Venues()
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if len(venues) != 0 {
		t.Fatalf("missing file should give empty list, got %+v", venues)
	}

	if err := os.WriteFile(path, []byte("A|https://a\n"), 0644); err != nil {
		t.Fatal(err)
	}
	venues, _ = f.Venues()
	if len(venues) != 1 {
		t.Fatalf("expected 1 venue, got %d", len(venues))
	}

	if err := os.WriteFile(path, []byte("A|https://a\nB|https://b\n"), 0644); err != nil {
		t.Fatal(err)
	}
	venues, _ = f.Venues()
	if len(venues) != 2 {
		t.Errorf("file edit not picked up, got %d venues", len(venues))
	}
}
