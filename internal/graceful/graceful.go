package graceful

import (
	"context"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"tournamentBot/internal/utils/logger/sl"
)

// Operation — функция остановки одного сервиса.
type Operation func(ctx context.Context) error

// GracefulShutdown ждёт SIGINT/SIGTERM (или отмены ctx), параллельно выполняет
// операции остановки с общим таймаутом и закрывает возвращаемый канал.
func GracefulShutdown(ctx context.Context, timeout time.Duration, ops map[string]Operation, log *slog.Logger) <-chan struct{} {
	wait := make(chan struct{})

	go func() {
		sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		<-sigCtx.Done()
		log.Info("shutting down")

		shutdown(timeout, ops, log)
		close(wait)
	}()

	return wait
}

func shutdown(timeout time.Duration, ops map[string]Operation, log *slog.Logger) {
	timeoutCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var wg sync.WaitGroup

	for name, op := range ops {
		wg.Add(1)

		go func(name string, op Operation) {
			defer wg.Done()

			log.Info("cleaning up", slog.String("service", name))
			if err := op(timeoutCtx); err != nil {
				log.Error("clean up failed", slog.String("service", name), sl.Err(err))
				return
			}
			log.Info("shutdown gracefully", slog.String("service", name))
		}(name, op)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-timeoutCtx.Done():
		log.Warn("shutdown timeout elapsed, forcing exit", slog.Duration("timeout", timeout))
	}
}
