package telegramBot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"tournamentBot/internal/config"
	"tournamentBot/internal/models/domain"
	"tournamentBot/internal/publisher"
	"tournamentBot/internal/utils/logger/sl"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	handlerTimeout       = 2 * time.Minute
	imageDownloadTimeout = 30 * time.Second
)

// botAPI — часть *tgbotapi.BotAPI, которой пользуется бот.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
	UploadFiles(endpoint string, params tgbotapi.Params, files []tgbotapi.RequestFile) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Workflow — диалог публикации турнира.
type Workflow interface {
	IsAdmin(actor int64) bool
	Initiate(ctx context.Context, actor int64, key string) (publisher.VenuePrompt, error)
	SelectVenue(ctx context.Context, actor int64, index int) (domain.Venue, error)
	SubmitDescription(ctx context.Context, actor int64, text string) (publisher.Preview, error)
	DraftDescription(ctx context.Context, actor int64) (publisher.Preview, error)
	ReopenDescription(actor int64) error
	Confirm(ctx context.Context, actor int64, yes bool) (publisher.Outcome, error)
	State(actor int64) publisher.State
	Cancel(actor int64) (bool, error)
}

type Repository interface {
	FindTournamentsByStatus(ctx context.Context, status domain.TournamentStatus) ([]domain.Tournament, error)
}

type Bot struct {
	log          *slog.Logger
	cfg          *config.Config
	tgbot        botAPI
	repository   Repository
	workflow     Workflow
	httpClient   *http.Client
	draftEnabled bool
	shutdownChan chan struct{}
	shutdownOnce sync.Once
}

// New подключается к Telegram Bot API.
func New(log *slog.Logger, cfg *config.Config, repository Repository) (*Bot, error) {
	op := "telegramBot.New()"

	api, err := tgbotapi.NewBotAPI(cfg.BotConfig.TgbotApiToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("authorized on telegram", slog.String("op", op), slog.String("account", api.Self.UserName))

	return newBot(log, cfg, api, repository), nil
}

func newBot(log *slog.Logger, cfg *config.Config, api botAPI, repository Repository) *Bot {
	return &Bot{
		log:          log,
		cfg:          cfg,
		tgbot:        api,
		repository:   repository,
		httpClient:   &http.Client{Timeout: imageDownloadTimeout},
		shutdownChan: make(chan struct{}),
	}
}

// SetWorkflow подключает диалог публикации. draftEnabled включает кнопку AI-черновика.
func (bot *Bot) SetWorkflow(w Workflow, draftEnabled bool) {
	bot.workflow = w
	bot.draftEnabled = draftEnabled
}

// Start читает обновления до Shutdown. Каждое обновление обрабатывается до конца,
// паника в обработчике логируется и не останавливает цикл.
func (bot *Bot) Start(timeout int) {
	op := "bot.Start()"
	log := bot.log.With(slog.String("op", op))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeout

	updates := bot.tgbot.GetUpdatesChan(u)
	log.Info("telegram bot started")

	for {
		select {
		case <-bot.shutdownChan:
			log.Info("telegram bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				log.Info("updates channel closed")
				return
			}
			bot.handleUpdate(update)
		}
	}
}

func (bot *Bot) handleUpdate(update tgbotapi.Update) {
	op := "bot.handleUpdate()"
	log := bot.log.With(slog.String("op", op), slog.Int("updateID", update.UpdateID))

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic in update handler", slog.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	switch {
	case update.CallbackQuery != nil:
		bot.handleCallbackQuery(ctx, update.CallbackQuery)

	case update.Message != nil && update.Message.IsCommand():
		if err := bot.commandHandler(ctx, update.Message); err != nil {
			log.Error("command handler failed", sl.Err(err))
		}

	case update.Message != nil && update.Message.Text != "":
		if err := bot.textHandler(ctx, update.Message); err != nil {
			log.Error("text handler failed", sl.Err(err))
		}
	}
}

func (bot *Bot) isAdmin(user *tgbotapi.User) bool {
	return user != nil && user.ID == bot.cfg.BotConfig.AdminID
}

// sendHTML отправляет HTML-сообщение с необязательной клавиатурой.
func (bot *Bot) sendHTML(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}

	if _, err := bot.tgbot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// answerCallback скрывает часики у кнопки; непустой текст показывается всплывающим окном.
func (bot *Bot) answerCallback(callback *tgbotapi.CallbackQuery, text string) {
	callbackConfig := tgbotapi.NewCallback(callback.ID, text)
	callbackConfig.ShowAlert = text != ""
	if _, err := bot.tgbot.Request(callbackConfig); err != nil {
		bot.log.Error("failed to send callback response", slog.String("op", "bot.answerCallback()"), sl.Err(err))
	}
}

// Shutdown останавливает получение обновлений.
func (bot *Bot) Shutdown(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("force exit telegram bot: %w", ctx.Err())
	default:
		bot.shutdownOnce.Do(func() {
			close(bot.shutdownChan)
			bot.tgbot.StopReceivingUpdates()
		})
		return nil
	}
}
