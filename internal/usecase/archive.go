package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"greader/reader"
)

// ArchiveUseCase копирует записи категорий Google Reader в архив.
// Выборка инкрементальная: запрашиваются записи начиная с самой свежей уже сохраненной.
type ArchiveUseCase struct {
	reader  StreamReader
	storage EntryStorage
	count   int
	log     *slog.Logger
}

// NewArchiveUseCase создает UseCase архивации; count - размер одной выборки (параметр n).
func NewArchiveUseCase(r StreamReader, s EntryStorage, count int, log *slog.Logger) *ArchiveUseCase {
	return &ArchiveUseCase{
		reader:  r,
		storage: s,
		count:   count,
		log:     log,
	}
}

// ArchiveCategory выполняет один цикл: определение точки отсчета, выборка и сохранение.
func (uc *ArchiveUseCase) ArchiveCategory(ctx context.Context, category reader.Category) error {
	start := time.Now()
	log := uc.log.With(
		slog.String("component", "archiver"),
		slog.String("category", string(category)),
	)
	log.Info("Archiving category started")

	since, err := uc.storage.LatestUpdated(ctx, category)
	if err != nil {
		log.Error("Failed to read archive position",
			slog.String("stage", "position"),
			slog.Any("error", err),
		)
		return fmt.Errorf("position lookup failed for %s: %w", category, err)
	}

	f, err := uc.reader.Items(ctx, category, reader.ListOptions{Count: uc.count, Since: since})
	if err != nil {
		log.Error("Stream fetch failed",
			slog.String("stage", "fetch"),
			slog.Any("error", err),
		)
		return fmt.Errorf("fetch failed for %s: %w", category, err)
	}
	log.Debug("Stream fetched",
		slog.String("stage", "fetch"),
		slog.Int("items_found", f.Len()),
	)

	saved, err := uc.storage.SaveEntries(ctx, category, f)
	if err != nil {
		log.Error("Archive save failed",
			slog.String("stage", "save"),
			slog.Any("error", err),
		)
		return fmt.Errorf("save failed for %s: %w", category, err)
	}

	log.Info("Archiving category completed",
		slog.Int("items_found", f.Len()),
		slog.Int("items_saved", saved),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}
