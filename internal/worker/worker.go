package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"greader/reader"
)

// Archiver архивирует одну категорию.
type Archiver interface {
	ArchiveCategory(ctx context.Context, category reader.Category) error
}

// Worker периодически архивирует категории по cron-расписанию.
// Один reader.Client нельзя использовать конкурентно, поэтому категории
// обрабатываются последовательно, а циклы не перекрываются.
type Worker struct {
	archiver   Archiver
	categories []reader.Category
	schedule   string
	timeout    time.Duration
	log        *slog.Logger

	mu     sync.Mutex
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New создает воркер. schedule - стандартное cron-выражение или дескриптор вида "@every 15m";
// timeout ограничивает обработку одной категории.
func New(archiver Archiver, categories []reader.Category, schedule string, timeout time.Duration, log *slog.Logger) *Worker {
	return &Worker{
		archiver:   archiver,
		categories: categories,
		schedule:   schedule,
		timeout:    timeout,
		log:        log.With(slog.String("component", "worker")),
	}
}

// Start запускает первый цикл сразу, а следующие - по расписанию.
// Возвращает ошибку, если расписание некорректно.
func (w *Worker) Start() error {
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := w.cron.AddFunc(w.schedule, w.RunOnce); err != nil {
		w.cancel()
		return fmt.Errorf("invalid schedule %q: %w", w.schedule, err)
	}
	w.log.Info("Archive worker started",
		slog.String("schedule", w.schedule),
		slog.Int("category_count", len(w.categories)),
	)
	w.done = make(chan struct{})
	go func() {
		defer close(w.done)
		w.RunOnce()
	}()
	w.cron.Start()
	return nil
}

// Stop останавливает расписание и дожидается завершения текущего цикла.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
	if w.done != nil {
		<-w.done
	}
	w.log.Info("Worker stopped")
}

// RunOnce архивирует все категории по очереди.
// Ошибка одной категории не прерывает обработку остальных.
func (w *Worker) RunOnce() {
	w.mu.Lock()
	defer w.mu.Unlock()

	ctx := w.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	w.log.Info("Archive cycle started", slog.Int("categories", len(w.categories)))
	var successCount, errorCount int
	for _, category := range w.categories {
		if ctx.Err() != nil {
			break
		}
		if err := w.runCategory(ctx, category); err != nil {
			errorCount++
			w.log.Error("Category archiving failed",
				slog.String("category", string(category)),
				slog.Any("error", err),
			)
			continue
		}
		successCount++
	}
	w.log.Info("Archive cycle completed",
		slog.Int("successful", successCount),
		slog.Int("errors", errorCount),
		slog.Int("total", len(w.categories)),
		slog.Duration("duration", time.Since(start)),
	)
}

func (w *Worker) runCategory(ctx context.Context, category reader.Category) error {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	return w.archiver.ArchiveCategory(ctx, category)
}

// Categories возвращает архивируемые категории.
func (w *Worker) Categories() []reader.Category { return w.categories }

// Schedule возвращает расписание воркера.
func (w *Worker) Schedule() string { return w.schedule }
