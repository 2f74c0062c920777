package telegramBot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"tournamentBot/internal/models/domain"
	"tournamentBot/internal/publisher"
	"tournamentBot/internal/utils/logger/sl"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	actionPublish = "publish"
	actionVenue   = "venue"
	actionDraft   = "draft"
	actionConfirm = "confirm"

	maxPendingListed = 20
)

const (
	textAccessDenied      = "Нет доступа"
	textNotFoundAlert     = "Турнир не найден в базе"
	textNotFound          = "⚠️ Турнир не найден в базе."
	textBadChoice         = "Некорректный выбор"
	textStaleButton       = "Публикация не активна. Начните заново."
	textCancelled         = "❌ Публикация отменена."
	textPublished         = "✅ Пост опубликован в группу!"
	textConfirmQuestion   = "Опубликовать в группу?"
	textDraftFailed       = "⚠️ Не удалось получить описание от AI. Отправьте описание текстом."
	textNoActivePublish   = "Нет активной публикации."
	textNoPending         = "Неопубликованных турниров нет."
	textUnknownCommand    = "Неизвестная команда"
	textModelChanged      = "👍 Модель изменена 👍"
	textSetModelUsage     = "Использование: /setmodel <модель>"
	textDescriptionPrompt = "Теперь отправьте описание турнира (текст сообщения):"
	textPreviewFailed     = "⚠️ Не удалось показать превью. Отправьте описание ещё раз или /cancel."
	textPublishedNotSaved = "⚠️ Пост опубликован, но статус турнира не сохранён. Не публикуйте его повторно."
)

func (bot *Bot) commandHandler(ctx context.Context, msg *tgbotapi.Message) error {
	op := "bot.commandHandler()"
	log := bot.log.With(
		slog.String("op", op),
		slog.String("command", msg.Command()),
	)

	chatID := msg.Chat.ID

	if !bot.isAdmin(msg.From) {
		log.Debug("command from non-admin ignored", slog.Int64("userID", userID(msg.From)))
		return bot.sendHTML(chatID, textAccessDenied, nil)
	}

	switch msg.Command() {
	case "start", "help":
		text := "Привет! Я слежу за новыми турнирами и пришлю уведомление, когда появится новый.\n\n" +
			"/pending — неопубликованные турниры\n" +
			"/cancel — отменить текущую публикацию\n" +
			"/getmodel, /setmodel — модель AI для черновиков описаний"
		return bot.sendHTML(chatID, text, nil)

	case "pending":
		return bot.sendPending(ctx, chatID)

	case "cancel":
		cleared, err := bot.workflow.Cancel(msg.From.ID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !cleared {
			return bot.sendHTML(chatID, textNoActivePublish, nil)
		}
		return bot.sendHTML(chatID, textCancelled, nil)

	case "getmodel":
		return bot.sendHTML(chatID, html.EscapeString(bot.cfg.AIModel()), nil)

	case "setmodel":
		model := strings.TrimSpace(msg.CommandArguments())
		if model == "" {
			return bot.sendHTML(chatID, textSetModelUsage, nil)
		}

		if err := bot.cfg.SetAIModel(model); err != nil {
			// модель уже применена в памяти, не сохранён только файл
			log.Error("failed to persist model", sl.Err(err))
		}
		log.Info("AI model changed", slog.String("model", model))

		return bot.sendHTML(chatID, textModelChanged, nil)

	default:
		return bot.sendHTML(chatID, textUnknownCommand, nil)
	}
}

// sendPending повторно присылает уведомления о неопубликованных турнирах.
func (bot *Bot) sendPending(ctx context.Context, chatID int64) error {
	op := "bot.sendPending()"

	tournaments, err := bot.repository.FindTournamentsByStatus(ctx, domain.TournamentStatusPending)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if len(tournaments) == 0 {
		return bot.sendHTML(chatID, textNoPending, nil)
	}

	for i, t := range tournaments {
		if i == maxPendingListed {
			rest := len(tournaments) - maxPendingListed
			return bot.sendHTML(chatID, fmt.Sprintf("… и ещё %d", rest), nil)
		}
		keyboard := publishKeyboard(t.Key)
		if err := bot.sendHTML(chatID, formatNotification(t), &keyboard); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// textHandler принимает описание турнира от администратора на шаге ввода описания.
// Остальные сообщения игнорируются.
func (bot *Bot) textHandler(ctx context.Context, msg *tgbotapi.Message) error {
	op := "bot.textHandler()"

	if !bot.isAdmin(msg.From) || bot.workflow.State(msg.From.ID) != publisher.AwaitingDescription {
		return nil
	}

	preview, err := bot.workflow.SubmitDescription(ctx, msg.From.ID, msg.Text)
	if err != nil {
		if errors.Is(err, publisher.ErrTournamentNotFound) {
			return bot.sendHTML(msg.Chat.ID, textNotFound, nil)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return bot.sendPreview(msg.Chat.ID, msg.From.ID, preview)
}

// sendPreview показывает превью с кнопками подтверждения. Если Telegram его не принял,
// сессия возвращается на ввод описания, а администратор получает простой текст без разметки.
func (bot *Bot) sendPreview(chatID, actor int64, preview publisher.Preview) error {
	op := "bot.sendPreview()"
	log := bot.log.With(slog.String("op", op))

	err := bot.sendHTML(chatID, "👁 <b>Превью поста:</b>\n\n"+preview.Text, nil)
	if err == nil {
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Опубликовать", actionConfirm+":yes"),
				tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", actionConfirm+":no"),
			),
		)
		err = bot.sendHTML(chatID, textConfirmQuestion, &keyboard)
	}
	if err == nil {
		return nil
	}

	if reopenErr := bot.workflow.ReopenDescription(actor); reopenErr != nil {
		log.Error("cannot return to description step", sl.Err(reopenErr))
	}
	if _, sendErr := bot.tgbot.Send(tgbotapi.NewMessage(chatID, textPreviewFailed)); sendErr != nil {
		log.Error("failed to send preview notice", sl.Err(sendErr))
	}

	return fmt.Errorf("%s: %w", op, err)
}

func (bot *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	op := "bot.handleCallbackQuery()"
	log := bot.log.With(
		slog.String("op", op),
		slog.String("data", callback.Data),
	)

	action, argument, _ := strings.Cut(callback.Data, ":")

	var err error
	switch action {
	case actionPublish:
		err = bot.handlePublish(ctx, callback, argument)
	case actionVenue:
		err = bot.handleVenue(ctx, callback, argument)
	case actionDraft:
		err = bot.handleDraft(ctx, callback)
	case actionConfirm:
		err = bot.handleConfirm(ctx, callback, argument == "yes")
	default:
		log.Warn("unknown callback action")
		bot.answerCallback(callback, "")
		return
	}

	if err != nil {
		log.Error("callback handler failed", sl.Err(err))
	}
}

// callbackChat возвращает чат, из которого пришло нажатие.
func callbackChat(callback *tgbotapi.CallbackQuery) int64 {
	if callback.Message != nil && callback.Message.Chat != nil {
		return callback.Message.Chat.ID
	}
	return callback.From.ID
}

// answerWorkflowError показывает администратору ошибку шага, общую для всех кнопок.
// Возвращает false, если ошибка не из этого набора.
func (bot *Bot) answerWorkflowError(callback *tgbotapi.CallbackQuery, err error) bool {
	switch {
	case errors.Is(err, publisher.ErrAccessDenied):
		bot.answerCallback(callback, textAccessDenied)
	case errors.Is(err, publisher.ErrNoSession), errors.Is(err, publisher.ErrWrongState):
		bot.answerCallback(callback, textStaleButton)
	case errors.Is(err, publisher.ErrTournamentNotFound):
		bot.answerCallback(callback, "")
		if sendErr := bot.sendHTML(callbackChat(callback), textNotFound, nil); sendErr != nil {
			bot.log.Error("failed to send notice", sl.Err(sendErr))
		}
	default:
		return false
	}
	return true
}

func (bot *Bot) handlePublish(ctx context.Context, callback *tgbotapi.CallbackQuery, key string) error {
	op := "bot.handlePublish()"

	prompt, err := bot.workflow.Initiate(ctx, callback.From.ID, key)
	switch {
	case err == nil:
	case errors.Is(err, publisher.ErrTournamentNotFound):
		bot.answerCallback(callback, textNotFoundAlert)
		return nil
	case errors.Is(err, publisher.ErrNoVenues):
		bot.answerCallback(callback, "")
		text := fmt.Sprintf("⚠️ Файл %s пуст. Добавьте площадки.", filepath.Base(bot.cfg.BotConfig.VenuesFile))
		return bot.sendHTML(callbackChat(callback), html.EscapeString(text), nil)
	case bot.answerWorkflowError(callback, err):
		return nil
	default:
		bot.answerCallback(callback, "")
		return fmt.Errorf("%s: %w", op, err)
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(prompt.Venues))
	for i, venue := range prompt.Venues {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(venue.Name, actionVenue+":"+strconv.Itoa(i)),
		))
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(rows...)

	text := fmt.Sprintf("📍 Выберите место проведения для <b>%s</b>:", html.EscapeString(prompt.Tournament.Name))
	bot.answerCallback(callback, "")
	return bot.sendHTML(callbackChat(callback), text, &keyboard)
}

func (bot *Bot) handleVenue(ctx context.Context, callback *tgbotapi.CallbackQuery, argument string) error {
	op := "bot.handleVenue()"

	index, convErr := strconv.Atoi(argument)
	if convErr != nil {
		index = -1
	}

	venue, err := bot.workflow.SelectVenue(ctx, callback.From.ID, index)
	switch {
	case err == nil:
	case errors.Is(err, publisher.ErrVenueOutOfRange):
		bot.answerCallback(callback, textBadChoice)
		return nil
	case bot.answerWorkflowError(callback, err):
		return nil
	default:
		bot.answerCallback(callback, "")
		return fmt.Errorf("%s: %w", op, err)
	}

	text := fmt.Sprintf("✅ Площадка: <b>%s</b>\n\n%s", html.EscapeString(venue.Name), textDescriptionPrompt)

	var keyboard *tgbotapi.InlineKeyboardMarkup
	if bot.draftEnabled {
		k := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✨ Сгенерировать описание", actionDraft+":ai"),
			),
		)
		keyboard = &k
	}

	bot.answerCallback(callback, "")
	return bot.sendHTML(callbackChat(callback), text, keyboard)
}

func (bot *Bot) handleDraft(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	op := "bot.handleDraft()"

	bot.answerCallback(callback, "")

	preview, err := bot.workflow.DraftDescription(ctx, callback.From.ID)
	switch {
	case err == nil:
	case errors.Is(err, publisher.ErrDraftUnavailable):
		bot.log.Warn("AI draft failed", slog.String("op", op), sl.Err(err))
		return bot.sendHTML(callbackChat(callback), textDraftFailed, nil)
	case bot.answerWorkflowError(callback, err):
		return nil
	default:
		return fmt.Errorf("%s: %w", op, err)
	}

	return bot.sendPreview(callbackChat(callback), callback.From.ID, preview)
}

func (bot *Bot) handleConfirm(ctx context.Context, callback *tgbotapi.CallbackQuery, yes bool) error {
	op := "bot.handleConfirm()"
	chatID := callbackChat(callback)

	outcome, err := bot.workflow.Confirm(ctx, callback.From.ID, yes)
	switch {
	case err == nil:
	case errors.Is(err, publisher.ErrDelivery):
		bot.answerCallback(callback, "")
		return bot.sendHTML(chatID, "⚠️ Ошибка публикации: "+html.EscapeString(err.Error()), nil)
	case outcome.Published:
		// пост ушёл, но статус не сохранён: турнир останется в /pending
		bot.answerCallback(callback, "")
		if sendErr := bot.sendHTML(chatID, textPublishedNotSaved, nil); sendErr != nil {
			return fmt.Errorf("%s: %w", op, sendErr)
		}
		return fmt.Errorf("%s: %w", op, err)
	case bot.answerWorkflowError(callback, err):
		return nil
	default:
		bot.answerCallback(callback, "")
		return bot.sendHTML(chatID, "⚠️ Ошибка публикации: "+html.EscapeString(err.Error()), nil)
	}

	bot.answerCallback(callback, "")
	if outcome.Cancelled {
		return bot.sendHTML(chatID, textCancelled, nil)
	}
	return bot.sendHTML(chatID, textPublished, nil)
}

func userID(u *tgbotapi.User) int64 {
	if u == nil {
		return 0
	}
	return u.ID
}
