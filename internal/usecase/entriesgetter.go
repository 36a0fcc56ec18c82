package usecase

import (
	"context"

	"greader/feed"
	"greader/reader"
)

// EntriesGetterUseCase отдает сохраненные записи для HTTP API.
type EntriesGetterUseCase struct {
	source EntrySource
}

func NewEntriesGetterUseCase(s EntrySource) *EntriesGetterUseCase {
	return &EntriesGetterUseCase{source: s}
}

// GetEntries возвращает не более limit записей категории из архива.
func (uc *EntriesGetterUseCase) GetEntries(ctx context.Context, category reader.Category, limit int) ([]feed.Entry, error) {
	return uc.source.GetEntries(ctx, category, limit)
}
