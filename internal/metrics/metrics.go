package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tournamentbot"

// Metrics — коллектор метрик бота: скрапинг, циклы, публикации и HTTP API.
type Metrics struct {
	registry        *prometheus.Registry
	scrapeDuration  *prometheus.HistogramVec
	sourceErrors    *prometheus.CounterVec
	candidates      *prometheus.CounterVec
	newTournaments  *prometheus.CounterVec
	notifyFailures  prometheus.Counter
	cycles          *prometheus.CounterVec
	publications    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

// New создаёт коллектор с собственным реестром.
func New() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		scrapeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scraper",
			Name:      "duration_seconds",
			Help:      "Time spent scraping a single source.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		sourceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scraper",
			Name:      "source_errors_total",
			Help:      "Failed source fetches.",
		}, []string{"source"}),
		candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scraper",
			Name:      "candidates_total",
			Help:      "Tournaments extracted from sources after source filters.",
		}, []string{"source"}),
		newTournaments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scraper",
			Name:      "new_tournaments_total",
			Help:      "Tournaments persisted for the first time.",
		}, []string{"source"}),
		notifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "notify_failures_total",
			Help:      "Failed admin notifications about new tournaments.",
		}),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orchestrator",
			Name:      "cycles_total",
			Help:      "Check cycles by result.",
		}, []string{"result"}),
		publications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "publisher",
			Name:      "publications_total",
			Help:      "Finished publish workflows by outcome.",
		}, []string{"outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution for admin API requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of admin API requests.",
		}, []string{"method", "path", "status"}),
	}

	collectors := []prometheus.Collector{
		m.scrapeDuration,
		m.sourceErrors,
		m.candidates,
		m.newTournaments,
		m.notifyFailures,
		m.cycles,
		m.publications,
		m.requestDuration,
		m.requestTotal,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ObserveScrape фиксирует длительность и результат скрапинга источника.
func (m *Metrics) ObserveScrape(source string, d time.Duration, err error) {
	m.scrapeDuration.WithLabelValues(source).Observe(d.Seconds())
	if err != nil {
		m.sourceErrors.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) AddCandidates(source string, n int) {
	m.candidates.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) IncNewTournament(source string) {
	m.newTournaments.WithLabelValues(source).Inc()
}

func (m *Metrics) IncNotifyFailure() {
	m.notifyFailures.Inc()
}

// IncCycle считает циклы проверки: completed | skipped | failed.
func (m *Metrics) IncCycle(result string) {
	m.cycles.WithLabelValues(result).Inc()
}

// IncPublication считает завершённые публикации: published | cancelled | failed.
func (m *Metrics) IncPublication(outcome string) {
	m.publications.WithLabelValues(outcome).Inc()
}

// Handler возвращает HTTP-обработчик для /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler оборачивает обработчик и пишет метрики запросов.
func (m *Metrics) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		status := strconv.Itoa(rw.status)
		route := routePattern(r)
		m.requestTotal.WithLabelValues(r.Method, route, status).Inc()
		m.requestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// routePattern возвращает шаблон маршрута chi, чтобы ключи турниров не раздували метки.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
