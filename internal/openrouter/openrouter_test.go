package openrouter

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"tournamentBot/internal/models/domain"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"description":"a"}`, `{"description":"a"}`},
		{"markdown fence", "```json\n{\"description\":\"a\"}\n```", `{"description":"a"}`},
		{"trailing text", `{"description":"a {b}"} Надеюсь, это поможет!`, `{"description":"a {b}"}`},
		{"escaped quote", `{"description":"say \"hi\" }"}`, `{"description":"say \"hi\" }"}`},
		{"text before object", `Вот ответ: {"description":"a"}`, `{"description":"a"}`},
		{"no object", "just text", "just text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSONObject(tt.in); got != tt.want {
				t.Errorf("extractJSONObject() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit", errors.New("error, status code: 429"), true},
		{"io.EOF", io.EOF, true},
		{"wrapped unexpected EOF", fmt.Errorf("read body: %w", io.ErrUnexpectedEOF), true},
		{"unauthorized", errors.New("401 unauthorized"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDraftPrompt(t *testing.T) {
	prompt := draftPrompt(
		domain.Tournament{
			Name:   "Open Cascais",
			Dates:  "27-03-2026 / 29-03-2026",
			URL:    "https://www.tiepadel.com/torneio/1",
			Source: domain.SourceTiepadel,
		},
		domain.Venue{Name: "Cascais Padel"},
	)

	for _, want := range []string{"Open Cascais", "27-29 марта 2026", "Cascais Padel", "Federação Portuguesa de Padel", "не указано"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt does not contain %q", want)
		}
	}
}
