package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tournamentBot/internal/config"
	"tournamentBot/internal/models/domain"
	"tournamentBot/internal/scraper/sites"
	"tournamentBot/internal/utils/logger/sl"

	"github.com/google/uuid"
)

type Repository interface {
	FindKnownKeys(ctx context.Context, keys []string) (map[string]struct{}, error)
	CreateTournament(ctx context.Context, t domain.Tournament) (bool, error)
}

type Metrics interface {
	ObserveScrape(source string, d time.Duration, err error)
	AddCandidates(source string, n int)
	IncNewTournament(source string)
}

// Job представляет задачу, передаваемую в воркер.
type Job struct {
	requestID uuid.UUID         // Уникальный идентификатор запроса
	site      config.SiteConfig // Источник для скрапинга
	Done      chan struct{}     // Канал для сигнала завершения
}

// Scraper — структура, управляющая скрапингом турниров.
type Scraper struct {
	logger             *slog.Logger
	cfg                *config.Config
	repository         Repository
	metrics            Metrics
	scrapers           map[string]sites.ScrapeFunc // Регистр скраперов по имени источника
	jobs               chan Job
	NewTournamentsChan chan domain.Tournament // Новые турниры для уведомления администратора
	shutdownChannel    chan struct{}
	shutdownOnce       sync.Once
	wg                 *sync.WaitGroup
}

// New создаёт новый экземпляр Scraper.
func New(
	logger *slog.Logger,
	cfg *config.Config,
	repository Repository,
	metrics Metrics,
) *Scraper {
	op := "Scraper.New()"
	log := logger.With(
		slog.String("op", op),
	)

	log.Info("Creating scraper client")

	bufferSize := cfg.ScraperConfig.JobBufferSize
	if bufferSize < len(cfg.ScraperConfig.Sites) {
		bufferSize = len(cfg.ScraperConfig.Sites)
	}

	s := &Scraper{
		logger:             logger,
		cfg:                cfg,
		repository:         repository,
		metrics:            metrics,
		scrapers:           make(map[string]sites.ScrapeFunc),
		jobs:               make(chan Job, bufferSize),
		NewTournamentsChan: make(chan domain.Tournament, 100),
		shutdownChannel:    make(chan struct{}),
		wg:                 &sync.WaitGroup{},
	}

	// Регистрация скраперов
	s.scrapers[string(domain.SourcePadelteams)] = sites.ScrapePadelteams
	s.scrapers[string(domain.SourceTiepadel)] = sites.ScrapeTiepadel

	return s
}

// Start запускает воркеры для обработки задач.
func (s *Scraper) Start() {
	op := "Scraper.Start()"
	log := s.logger.With(
		slog.String("op", op),
	)
	for i := 0; i < s.cfg.ScraperConfig.WorkersCount; i++ {
		s.wg.Add(1)
		go s.handleJob(i)
	}
	log.Info("scraper service started", slog.Int("workers", s.cfg.ScraperConfig.WorkersCount))

	s.wg.Wait()
}

// AddJob добавляет новую задачу в очередь на обработку.
func (s *Scraper) AddJob(requestID uuid.UUID, site config.SiteConfig) (chan struct{}, error) {
	newJob := Job{
		requestID: requestID,
		site:      site,
		Done:      make(chan struct{}),
	}
	select {
	case <-s.shutdownChannel:
		return nil, fmt.Errorf("service is shutting down")
	default:
	}

	select {
	case s.jobs <- newJob:
		return newJob.Done, nil
	default:
		return nil, fmt.Errorf("job buffer is full")
	}
}

// handleJob — воркер, обрабатывающий задачи из канала.
func (s *Scraper) handleJob(id int) {
	defer s.wg.Done()
	op := "Scraper.handleJob()"
	log := s.logger.With(
		slog.String("op", op),
		slog.Int("workerId", id),
	)

	log.Info("start scraper job handler")

	for {
		select {
		case <-s.shutdownChannel:
			return
		case job := <-s.jobs:
			joblog := log.With(
				slog.String("requestID", job.requestID.String()),
				slog.String("siteName", job.site.Name),
			)

			newCount, err := s.runJob(joblog, job)
			if err != nil {
				joblog.Error("scraping failed", sl.Err(err))
				continue
			}

			joblog.Info("scraping completed", slog.Int("newTournaments", newCount))
		}
	}
}

// runJob обрабатывает задачу и всегда закрывает job.Done. Паника источника
// превращается в ошибку и не останавливает воркер.
func (s *Scraper) runJob(log *slog.Logger, job Job) (newCount int, err error) {
	defer close(job.Done)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while scraping %s: %v", job.site.Name, r)
		}
	}()

	return s.processSite(log, job.site)
}

// processSite выполняет один источник и сохраняет новые турниры.
// Возвращает число впервые сохранённых турниров.
func (s *Scraper) processSite(log *slog.Logger, site config.SiteConfig) (int, error) {
	op := "Scraper.processSite()"

	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout())
	defer cancel()

	fresh, err := s.Discover(ctx, site)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("novelty filter applied", slog.Int("new", len(fresh)))

	created := 0
	for _, t := range fresh {
		inserted, err := s.repository.CreateTournament(ctx, t)
		if err != nil {
			log.Error("failed to create tournament", slog.String("key", t.Key), sl.Err(err))
			continue
		}
		if !inserted {
			log.Debug("tournament already exists", slog.String("key", t.Key))
			continue
		}

		created++
		s.metrics.IncNewTournament(site.Name)
		log.Debug("tournament created", slog.String("key", t.Key), slog.String("name", t.Name))

		select {
		case s.NewTournamentsChan <- t:
		case <-s.shutdownChannel:
			return created, fmt.Errorf("%s: service is shutting down", op)
		}
	}

	return created, nil
}

// Discover извлекает турниры источника, канонизирует их и отбрасывает уже известные.
// Ничего не сохраняет.
func (s *Scraper) Discover(ctx context.Context, site config.SiteConfig) ([]domain.Tournament, error) {
	op := "Scraper.Discover()"

	scrapeFunc, exists := s.scrapers[site.Name]
	if !exists {
		return nil, fmt.Errorf("%s: scraper not found for site %q", op, site.Name)
	}

	opts := sites.FetchOptions{
		Timeout:   s.cfg.ScraperConfig.GetTimeout(),
		UserAgent: s.cfg.ScraperConfig.UserAgent,
	}

	start := time.Now()
	candidates, err := scrapeFunc(ctx, site, opts, s.shutdownChannel)
	s.metrics.ObserveScrape(site.Name, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.AddCandidates(site.Name, len(candidates))

	tournaments := CanonicalizeAll(domain.Source(site.Name), candidates)

	known, err := s.repository.FindKnownKeys(ctx, keysOf(tournaments))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return FilterNew(tournaments, known), nil
}

// jobTimeout — общий дедлайн задачи: пагинация делает несколько запросов.
func (s *Scraper) jobTimeout() time.Duration {
	timeout := s.cfg.ScraperConfig.GetTimeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return timeout * 10
}

// Shutdown корректно завершает работу сервиса.
func (s *Scraper) Shutdown(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("force exit scraper: %w", ctx.Err())
	default:
		s.shutdownOnce.Do(func() {
			close(s.shutdownChannel)
		})
		return nil
	}
}
