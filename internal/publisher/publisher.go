package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"tournamentBot/internal/models/domain"
	"tournamentBot/internal/poster"
	"tournamentBot/internal/utils/logger/sl"
)

var (
	ErrAccessDenied       = errors.New("access denied")
	ErrNoSession          = errors.New("no active publish session")
	ErrWrongState         = errors.New("action not allowed in current state")
	ErrVenueOutOfRange    = errors.New("venue index out of range")
	ErrTournamentNotFound = domain.ErrTournamentNotFound
	ErrNoVenues           = errors.New("venue list is empty")
	ErrDelivery           = errors.New("announcement delivery failed")
	ErrDraftUnavailable   = errors.New("description draft is not available")
)

type Repository interface {
	FindTournamentByKey(ctx context.Context, key string) (domain.Tournament, error)
	MarkPublished(ctx context.Context, key string) error
}

type VenueSource interface {
	Venues() ([]domain.Venue, error)
}

// Announcer доставляет готовый анонс в группу.
type Announcer interface {
	Announce(ctx context.Context, t domain.Tournament, text string) error
}

// Drafter предлагает текст описания турнира.
type Drafter interface {
	DraftDescription(ctx context.Context, t domain.Tournament, v domain.Venue) (string, error)
}

type Metrics interface {
	IncPublication(outcome string)
}

// VenuePrompt — результат Initiate: что показать администратору.
type VenuePrompt struct {
	Tournament domain.Tournament
	Venues     []domain.Venue
}

// Preview — черновик анонса перед подтверждением.
type Preview struct {
	Tournament  domain.Tournament
	Venue       domain.Venue
	Description string
	Text        string
}

// Outcome — итог подтверждения.
type Outcome struct {
	Tournament domain.Tournament
	Cancelled  bool
	Published  bool
}

// Workflow — диалог публикации: площадка → описание → превью → подтверждение.
type Workflow struct {
	log       *slog.Logger
	adminID   int64
	repo      Repository
	venues    VenueSource
	announcer Announcer
	drafter   Drafter
	metrics   Metrics
	sessions  *SessionStore
	locks     sync.Map // int64 -> *sync.Mutex
}

// New создаёт Workflow. drafter и metrics могут быть nil.
func New(
	log *slog.Logger,
	adminID int64,
	repo Repository,
	venues VenueSource,
	announcer Announcer,
	drafter Drafter,
	metrics Metrics,
	sessions *SessionStore,
) *Workflow {
	return &Workflow{
		log:       log,
		adminID:   adminID,
		repo:      repo,
		venues:    venues,
		announcer: announcer,
		drafter:   drafter,
		metrics:   metrics,
		sessions:  sessions,
	}
}

func (w *Workflow) lock(actor int64) func() {
	m, _ := w.locks.LoadOrStore(actor, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (w *Workflow) authorize(actor int64) error {
	if actor != w.adminID {
		return ErrAccessDenied
	}
	return nil
}

func (w *Workflow) count(outcome string) {
	if w.metrics != nil {
		w.metrics.IncPublication(outcome)
	}
}

// IsAdmin сообщает, является ли актор администратором.
func (w *Workflow) IsAdmin(actor int64) bool {
	return actor == w.adminID
}

// Initiate начинает публикацию турнира и возвращает список площадок.
// Пустой список площадок не создаёт сессию и не трогает прежнюю.
func (w *Workflow) Initiate(ctx context.Context, actor int64, key string) (VenuePrompt, error) {
	op := "publisher.Initiate()"

	if err := w.authorize(actor); err != nil {
		return VenuePrompt{}, err
	}
	defer w.lock(actor)()

	t, err := w.repo.FindTournamentByKey(ctx, key)
	if err != nil {
		return VenuePrompt{}, fmt.Errorf("%s: %w", op, err)
	}

	venues, err := w.venues.Venues()
	if err != nil {
		return VenuePrompt{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(venues) == 0 {
		return VenuePrompt{Tournament: t}, ErrNoVenues
	}

	w.sessions.Create(actor, t.Key)

	w.log.Debug("publish session started",
		slog.String("op", op),
		slog.String("key", t.Key),
		slog.Int("venues", len(venues)),
	)

	return VenuePrompt{Tournament: t, Venues: venues}, nil
}

// SelectVenue записывает выбранную площадку и переводит сессию к вводу описания.
func (w *Workflow) SelectVenue(ctx context.Context, actor int64, index int) (domain.Venue, error) {
	op := "publisher.SelectVenue()"

	if err := w.authorize(actor); err != nil {
		return domain.Venue{}, err
	}
	defer w.lock(actor)()

	sess, err := w.session(actor, AwaitingVenue)
	if err != nil {
		return domain.Venue{}, err
	}

	venues, err := w.venues.Venues()
	if err != nil {
		return domain.Venue{}, fmt.Errorf("%s: %w", op, err)
	}
	if index < 0 || index >= len(venues) {
		return domain.Venue{}, ErrVenueOutOfRange
	}

	venue := venues[index]
	sess.Venue = &venue
	sess.State = AwaitingDescription
	w.sessions.Update(sess)

	return venue, nil
}

// SubmitDescription сохраняет описание и возвращает превью поста.
func (w *Workflow) SubmitDescription(ctx context.Context, actor int64, text string) (Preview, error) {
	op := "publisher.SubmitDescription()"

	if err := w.authorize(actor); err != nil {
		return Preview{}, err
	}
	defer w.lock(actor)()

	sess, err := w.session(actor, AwaitingDescription)
	if err != nil {
		return Preview{}, err
	}

	t, err := w.resolve(ctx, sess)
	if err != nil {
		return Preview{}, fmt.Errorf("%s: %w", op, err)
	}

	return w.preview(sess, t, text), nil
}

// DraftDescription просит Drafter написать описание и дальше ведёт себя как SubmitDescription.
func (w *Workflow) DraftDescription(ctx context.Context, actor int64) (Preview, error) {
	op := "publisher.DraftDescription()"

	if err := w.authorize(actor); err != nil {
		return Preview{}, err
	}
	defer w.lock(actor)()

	sess, err := w.session(actor, AwaitingDescription)
	if err != nil {
		return Preview{}, err
	}
	if w.drafter == nil {
		return Preview{}, ErrDraftUnavailable
	}

	t, err := w.resolve(ctx, sess)
	if err != nil {
		return Preview{}, fmt.Errorf("%s: %w", op, err)
	}

	text, err := w.drafter.DraftDescription(ctx, t, *sess.Venue)
	if err != nil {
		return Preview{}, fmt.Errorf("%s: %w: %w", op, ErrDraftUnavailable, err)
	}

	return w.preview(sess, t, text), nil
}

// ReopenDescription возвращает сессию с шага подтверждения на ввод описания,
// например когда превью не удалось показать администратору.
func (w *Workflow) ReopenDescription(actor int64) error {
	if err := w.authorize(actor); err != nil {
		return err
	}
	defer w.lock(actor)()

	sess, err := w.session(actor, AwaitingConfirmation)
	if err != nil {
		return err
	}

	sess.Description = ""
	sess.State = AwaitingDescription
	w.sessions.Update(sess)

	return nil
}

// Confirm публикует анонс (yes) или отменяет публикацию. Сессия очищается в любом случае.
func (w *Workflow) Confirm(ctx context.Context, actor int64, yes bool) (Outcome, error) {
	op := "publisher.Confirm()"
	log := w.log.With(slog.String("op", op))

	if err := w.authorize(actor); err != nil {
		return Outcome{}, err
	}
	defer w.lock(actor)()

	sess, err := w.session(actor, AwaitingConfirmation)
	if err != nil {
		return Outcome{}, err
	}
	defer w.sessions.Clear(actor)

	if !yes {
		w.count("cancelled")
		return Outcome{Cancelled: true}, nil
	}

	t, err := w.repo.FindTournamentByKey(ctx, sess.TournamentKey)
	if err != nil {
		w.count("failed")
		return Outcome{}, fmt.Errorf("%s: %w", op, err)
	}

	text := poster.FormatPost(t, *sess.Venue, sess.Description)
	if err := w.announcer.Announce(ctx, t, text); err != nil {
		w.count("failed")
		log.Error("announcement failed", slog.String("key", t.Key), sl.Err(err))
		return Outcome{Tournament: t}, fmt.Errorf("%s: %w: %w", op, ErrDelivery, err)
	}

	w.count("published")

	if err := w.repo.MarkPublished(ctx, t.Key); err != nil {
		log.Error("announcement sent but status not updated", slog.String("key", t.Key), sl.Err(err))
		return Outcome{Tournament: t, Published: true}, fmt.Errorf("%s: %w", op, err)
	}

	t.Status = domain.TournamentStatusPublished
	log.Info("tournament published", slog.String("key", t.Key))

	return Outcome{Tournament: t, Published: true}, nil
}

// State возвращает текущий шаг сессии актора.
func (w *Workflow) State(actor int64) State {
	sess, ok := w.sessions.Get(actor)
	if !ok {
		return Idle
	}
	return sess.State
}

// Cancel сбрасывает сессию из любого состояния. Возвращает true, если сессия была.
func (w *Workflow) Cancel(actor int64) (bool, error) {
	if err := w.authorize(actor); err != nil {
		return false, err
	}
	defer w.lock(actor)()

	cleared := w.sessions.Clear(actor)
	if cleared {
		w.count("cancelled")
	}
	return cleared, nil
}

func (w *Workflow) session(actor int64, want State) (Session, error) {
	sess, ok := w.sessions.Get(actor)
	if !ok {
		return Session{}, ErrNoSession
	}
	if sess.State != want {
		return Session{}, fmt.Errorf("%w: %s", ErrWrongState, sess.State)
	}
	return sess, nil
}

// resolve перечитывает турнир сессии. Пропавший турнир прерывает сессию.
func (w *Workflow) resolve(ctx context.Context, sess Session) (domain.Tournament, error) {
	t, err := w.repo.FindTournamentByKey(ctx, sess.TournamentKey)
	if err != nil {
		if errors.Is(err, ErrTournamentNotFound) {
			w.sessions.Clear(sess.AdminID)
		}
		return domain.Tournament{}, err
	}
	return t, nil
}

func (w *Workflow) preview(sess Session, t domain.Tournament, text string) Preview {
	sess.Description = text
	sess.State = AwaitingConfirmation
	w.sessions.Update(sess)

	return Preview{
		Tournament:  t,
		Venue:       *sess.Venue,
		Description: text,
		Text:        poster.FormatPost(t, *sess.Venue, text),
	}
}
