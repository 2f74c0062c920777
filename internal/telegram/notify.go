package telegramBot

import (
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"

	"tournamentBot/internal/models/domain"
	"tournamentBot/internal/utils/logger/sl"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	maxCaptionLength = 1024
	maxImageSize     = 10 << 20
)

// NotifyNewTournament присылает администратору новый турнир с кнопкой публикации.
func (bot *Bot) NotifyNewTournament(ctx context.Context, t domain.Tournament) error {
	op := "bot.NotifyNewTournament()"

	keyboard := publishKeyboard(t.Key)
	if err := bot.sendHTML(bot.cfg.BotConfig.AdminID, formatNotification(t), &keyboard); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func publishKeyboard(key string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 Опубликовать", actionPublish+":"+key),
		),
	)
}

// formatNotification форматирует уведомление о турнире в HTML-текст для Telegram.
func formatNotification(t domain.Tournament) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "🏆 <b>Новый турнир!</b> (%s)\n\n", t.Source.Profile().Label)
	fmt.Fprintf(&sb, "<b>%s</b>\n", html.EscapeString(t.Name))
	fmt.Fprintf(&sb, "📅 %s\n", html.EscapeString(t.Dates))
	if t.Location != "" {
		fmt.Fprintf(&sb, "📍 %s\n", html.EscapeString(t.Location))
	}
	fmt.Fprint(&sb, "\n")
	fmt.Fprintf(&sb, "🔗 %s\n\n", html.EscapeString(t.URL))
	fmt.Fprint(&sb, "Нажмите кнопку, чтобы начать публикацию.")

	return sb.String()
}

// Announce публикует анонс в группу (и тему, если задана): фото с подписью,
// либо текст, если картинки нет или её не удалось скачать.
func (bot *Bot) Announce(ctx context.Context, t domain.Tournament, text string) error {
	op := "bot.Announce()"
	log := bot.log.With(
		slog.String("op", op),
		slog.String("key", t.Key),
	)

	params := tgbotapi.Params{}
	params.AddNonZero64("chat_id", bot.cfg.BotConfig.GroupChatID)
	params.AddNonZero("message_thread_id", bot.cfg.BotConfig.TopicID)
	params.AddNonEmpty("parse_mode", tgbotapi.ModeHTML)

	if t.ImageURL != "" && utf8.RuneCountInString(text) <= maxCaptionLength {
		image, err := bot.downloadImage(ctx, t.ImageURL)
		if err == nil {
			params.AddNonEmpty("caption", text)
			file := tgbotapi.RequestFile{
				Name: "photo",
				Data: tgbotapi.FileBytes{Name: imageFileName(t.ImageURL), Bytes: image},
			}
			if _, err := bot.tgbot.UploadFiles("sendPhoto", params, []tgbotapi.RequestFile{file}); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
			log.Debug("announcement sent with photo")
			return nil
		}
		log.Warn("image download failed, sending text", sl.Err(err))
	}

	params.AddNonEmpty("text", text)
	if _, err := bot.tgbot.MakeRequest("sendMessage", params); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("announcement sent as text")
	return nil
}

func (bot *Bot) downloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, imageDownloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := bot.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("image is larger than %d bytes", maxImageSize)
	}

	return data, nil
}

// imageFileName берёт расширение из URL картинки, по умолчанию jpeg.
func imageFileName(imageURL string) string {
	ext := "jpeg"
	if u, err := url.Parse(imageURL); err == nil {
		if e := strings.TrimPrefix(path.Ext(u.Path), "."); e != "" {
			ext = e
		}
	}
	return "tournament." + ext
}
