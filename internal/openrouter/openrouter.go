package openrouter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"tournamentBot/internal/config"
	"tournamentBot/internal/models/domain"
	"tournamentBot/internal/models/dto"
	"tournamentBot/internal/poster"
	"tournamentBot/internal/utils/logger/sl"

	openrouter "github.com/revrost/go-openrouter"
	"github.com/revrost/go-openrouter/jsonschema"
)

const (
	// retryCount определяет количество попыток повторного запроса при ошибках.
	retryCount int = 3
	// retryDuration задаёт интервал между попытками повторного запроса.
	retryDuration time.Duration = 5 * time.Second
)

// Openrouter — клиент OpenRouter API для черновиков описаний турниров.
type Openrouter struct {
	logger          *slog.Logger
	cfg             *config.Config
	Client          *openrouter.Client
	shutdownChannel chan struct{}
	shutdownOnce    sync.Once
}

// NewClient создаёт новый экземпляр Openrouter.
func NewClient(
	logger *slog.Logger,
	cfg *config.Config,
) *Openrouter {
	op := "Openrouter.NewClient()"
	log := logger.With(
		slog.String("op", op),
	)

	client := openrouter.NewClient(
		cfg.BotConfig.AI.AIApiToken,
	)

	log.Info("Creating openrouter client", slog.String("model", cfg.AIModel()))

	return &Openrouter{
		logger:          logger,
		cfg:             cfg,
		Client:          client,
		shutdownChannel: make(chan struct{}),
	}
}

// DraftDescription просит модель написать описание турнира для поста.
func (s *Openrouter) DraftDescription(ctx context.Context, t domain.Tournament, v domain.Venue) (string, error) {
	op := "openrouter.DraftDescription()"
	log := s.logger.With(
		slog.String("op", op),
		slog.String("key", t.Key),
	)
	log.Info("drafting tournament description")

	ctx, cancel := context.WithTimeout(ctx, s.cfg.BotConfig.AI.GetTimeout())
	defer cancel()

	var responseSchema dto.DraftResponseSchema
	schema, err := jsonschema.GenerateSchemaForType(responseSchema)
	if err != nil {
		return "", fmt.Errorf("%s: GenerateSchemaForType error: %w", op, err)
	}

	request := openrouter.ChatCompletionRequest{
		Model: s.cfg.AIModel(),
		Messages: []openrouter.ChatCompletionMessage{
			openrouter.SystemMessage(s.cfg.BotConfig.AI.SystemRolePrompt),
			openrouter.UserMessage(draftPrompt(t, v)),
		},
		MaxTokens:   s.cfg.BotConfig.AI.MaxTokens,
		Temperature: s.cfg.BotConfig.AI.Temperature,
		ResponseFormat: &openrouter.ChatCompletionResponseFormat{
			Type: "json_schema",
			JSONSchema: &openrouter.ChatCompletionResponseFormatJSONSchema{
				Name:   "draftResponseSchema",
				Strict: true,
				Schema: schema,
			},
		},
	}

	var resp openrouter.ChatCompletionResponse
	for retry := range retryCount {
		resp, err = s.Client.CreateChatCompletion(ctx, request)
		if !isRetryable(err) {
			break
		}

		log.Error("AI completion error", sl.Err(err), slog.Int("retry", retry))

		select {
		case <-s.shutdownChannel:
			return "", fmt.Errorf("%s: shutdown openrouter client", op)
		case <-ctx.Done():
			return "", fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(retryDuration):
		}
	}

	if err != nil {
		return "", fmt.Errorf("%s: AI completion failed: %w", op, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: empty AI response", op)
	}

	cleanedResponse := extractJSONObject(resp.Choices[0].Message.Content.Text)
	if err := json.Unmarshal([]byte(cleanedResponse), &responseSchema); err != nil {
		log.Error("error unmarshal response", sl.Err(err), slog.String("response", cleanedResponse))
		return "", fmt.Errorf("%s: unmarshal error: %w", op, err)
	}

	text := responseSchema.Text()
	if text == "" {
		return "", fmt.Errorf("%s: empty description in AI response", op)
	}

	log.Debug("AI draft response", slog.Any("schema", responseSchema))
	return text, nil
}

// draftPrompt формирует запрос к модели по данным турнира.
func draftPrompt(t domain.Tournament, v domain.Venue) string {
	profile := t.Source.Profile()

	location := t.Location
	if location == "" {
		location = "не указано"
	}

	return fmt.Sprintf(`Напиши короткое описание турнира по паделу для поста в Telegram-группе.
Название: %s
Даты: %s
Площадка: %s
Место по данным источника: %s
Организатор: %s
Тип турнира: %s
Ссылка: %s

Требования:
1. 2-4 предложения на русском языке, без повторения дат и ссылок
2. Без HTML и markdown
3. Добавь 2-4 хэштега`,
		t.Name,
		poster.FormatDates(t.Dates),
		v.Name,
		location,
		profile.Organizer,
		profile.Type,
		t.URL,
	)
}

// isRetryable — 429 от API или оборванное соединение.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "EOF")
}

// extractJSONObject возвращает первый JSON-объект из ответа модели.
// Ограждение ```json и текст вокруг объекта отбрасываются.
func extractJSONObject(response string) string {
	response = strings.TrimSpace(response)

	start := strings.IndexByte(response, '{')
	if start == -1 {
		return response
	}

	var obj json.RawMessage
	if err := json.NewDecoder(strings.NewReader(response[start:])).Decode(&obj); err != nil {
		return response[start:]
	}
	return string(obj)
}

// Shutdown прерывает ожидание между повторами запросов.
func (s *Openrouter) Shutdown(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("force exit AI client: %w", ctx.Err())
	default:
		s.shutdownOnce.Do(func() {
			close(s.shutdownChannel)
		})
		return nil
	}
}
