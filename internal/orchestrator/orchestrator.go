package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"tournamentBot/internal/config"
	"tournamentBot/internal/models/domain"
	"tournamentBot/internal/utils/logger/sl"

	"github.com/google/uuid"
)

const notifyTimeout = 30 * time.Second

// ErrCycleRunning — предыдущий цикл проверки ещё не завершился.
var ErrCycleRunning = errors.New("check cycle is already running")

// Scraper определяет интерфейс для взаимодействия со скрапером.
type Scraper interface {
	AddJob(requestID uuid.UUID, site config.SiteConfig) (chan struct{}, error)
}

// Notifier сообщает администратору о новом турнире.
type Notifier interface {
	NotifyNewTournament(ctx context.Context, t domain.Tournament) error
}

type Metrics interface {
	IncCycle(result string)
	IncNotifyFailure()
}

// Orchestrator управляет пайплайном: периодический скрапинг → уведомление администратора.
type Orchestrator struct {
	logger             *slog.Logger
	cfg                *config.Config
	scraper            Scraper
	notifier           Notifier
	metrics            Metrics
	newTournamentsChan <-chan domain.Tournament
	doneChans          []chan struct{}
	mu                 sync.Mutex
	running            atomic.Bool
	shutdownChan       chan struct{}
	shutdownOnce       sync.Once
}

// New создаёт новый экземпляр Orchestrator.
func New(
	logger *slog.Logger,
	cfg *config.Config,
	scraper Scraper,
	notifier Notifier,
	metrics Metrics,
	newTournamentsChan <-chan domain.Tournament,
) *Orchestrator {
	op := "Orchestrator.New()"
	log := logger.With(slog.String("op", op))
	log.Info("Creating orchestrator")

	return &Orchestrator{
		logger:             logger,
		cfg:                cfg,
		scraper:            scraper,
		notifier:           notifier,
		metrics:            metrics,
		newTournamentsChan: newTournamentsChan,
		doneChans:          make([]chan struct{}, 0),
		shutdownChan:       make(chan struct{}),
	}
}

// Start запускает обработку новых турниров и цикл проверки:
// сразу при старте и далее раз в scraper.interval. Блокируется до Shutdown.
func (o *Orchestrator) Start() {
	op := "Orchestrator.Start()"
	log := o.logger.With(slog.String("op", op))

	interval := o.cfg.ScraperConfig.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	log.Info("orchestrator started", slog.Duration("interval", interval))

	go o.processNewTournaments()

	o.tick(log)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-o.shutdownChan:
			log.Info("orchestrator stopped")
			return
		case <-ticker.C:
			o.tick(log)
		}
	}
}

func (o *Orchestrator) tick(log *slog.Logger) {
	if err := o.RunCycle(); err != nil {
		if errors.Is(err, ErrCycleRunning) {
			log.Warn("previous check cycle still running, tick skipped")
			return
		}
		log.Error("check cycle failed", sl.Err(err))
	}
}

// RunCycle синхронно выполняет один цикл проверки всех источников.
// Если цикл уже идёт, возвращает ErrCycleRunning.
func (o *Orchestrator) RunCycle() error {
	if !o.running.CompareAndSwap(false, true) {
		o.metrics.IncCycle("skipped")
		return ErrCycleRunning
	}
	defer o.running.Store(false)

	return o.runCycle()
}

// TriggerCycle запускает цикл в фоне и сразу возвращает управление.
func (o *Orchestrator) TriggerCycle() error {
	if !o.running.CompareAndSwap(false, true) {
		o.metrics.IncCycle("skipped")
		return ErrCycleRunning
	}

	go func() {
		defer o.running.Store(false)
		if err := o.runCycle(); err != nil {
			o.logger.Error("triggered check cycle failed", slog.String("op", "Orchestrator.TriggerCycle()"), sl.Err(err))
		}
	}()

	return nil
}

// IsRunning сообщает, идёт ли сейчас цикл проверки.
func (o *Orchestrator) IsRunning() bool {
	return o.running.Load()
}

func (o *Orchestrator) runCycle() (err error) {
	op := "Orchestrator.runCycle()"
	cycleID := uuid.New()
	log := o.logger.With(
		slog.String("op", op),
		slog.String("cycleID", cycleID.String()),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic: %v", op, r)
			o.metrics.IncCycle("failed")
		}
	}()

	log.Info("check cycle started", slog.Int("sites", len(o.cfg.ScraperConfig.Sites)))

	var failed int
	for _, site := range o.cfg.ScraperConfig.Sites {
		if err := o.AddJob(site); err != nil {
			failed++
		}
	}

	o.WaitAll()

	if failed > 0 && failed == len(o.cfg.ScraperConfig.Sites) {
		o.metrics.IncCycle("failed")
		return fmt.Errorf("%s: no jobs were scheduled", op)
	}

	o.metrics.IncCycle("completed")
	log.Info("check cycle completed")
	return nil
}

// processNewTournaments слушает канал новых турниров и уведомляет администратора.
func (o *Orchestrator) processNewTournaments() {
	op := "Orchestrator.processNewTournaments()"
	log := o.logger.With(slog.String("op", op))

	for {
		select {
		case <-o.shutdownChan:
			log.Info("processNewTournaments shutting down")
			return
		case t, ok := <-o.newTournamentsChan:
			if !ok {
				log.Info("newTournamentsChan closed")
				return
			}
			o.notify(log, t)
		}
	}
}

func (o *Orchestrator) notify(log *slog.Logger, t domain.Tournament) {
	defer func() {
		if r := recover(); r != nil {
			o.metrics.IncNotifyFailure()
			log.Error("panic while notifying", slog.Any("panic", r), slog.String("key", t.Key))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := o.notifier.NotifyNewTournament(ctx, t); err != nil {
		o.metrics.IncNotifyFailure()
		log.Error("failed to notify admin", slog.String("key", t.Key), sl.Err(err))
		return
	}

	log.Debug("admin notified", slog.String("key", t.Key), slog.String("name", t.Name))
}

// AddJob добавляет джобу в скрапер и сохраняет канал Done для ожидания.
func (o *Orchestrator) AddJob(site config.SiteConfig) error {
	op := "Orchestrator.AddJob()"
	log := o.logger.With(slog.String("op", op))

	requestID := uuid.New()
	doneChan, err := o.scraper.AddJob(requestID, site)
	if err != nil {
		log.Error("failed to add job",
			slog.String("siteName", site.Name),
			slog.String("url", site.URL),
			sl.Err(err),
		)
		return err
	}

	o.mu.Lock()
	o.doneChans = append(o.doneChans, doneChan)
	o.mu.Unlock()

	log.Debug("job added",
		slog.String("requestID", requestID.String()),
		slog.String("siteName", site.Name),
	)

	return nil
}

// WaitAll ожидает завершения всех добавленных джоб скрапера или остановки сервиса.
func (o *Orchestrator) WaitAll() {
	op := "Orchestrator.WaitAll()"
	log := o.logger.With(slog.String("op", op))

	o.mu.Lock()
	chans := o.doneChans
	o.doneChans = make([]chan struct{}, 0)
	o.mu.Unlock()

	log.Debug("waiting for all scraper jobs", slog.Int("count", len(chans)))

	for _, doneChan := range chans {
		select {
		case <-doneChan:
		case <-o.shutdownChan:
			log.Info("shutdown while waiting for scraper jobs")
			return
		}
	}

	log.Debug("all scraper jobs completed")
}

// Shutdown корректно завершает оркестратор.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("force exit orchestrator: %w", ctx.Err())
	default:
		o.shutdownOnce.Do(func() {
			close(o.shutdownChan)
		})
		return nil
	}
}
