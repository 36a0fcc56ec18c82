package usecase

import (
	"context"
	"time"

	"greader/feed"
	"greader/reader"
)

// StreamReader получает ленту категории из Google Reader.
// Реализуется *reader.Client.
type StreamReader interface {
	Items(ctx context.Context, category reader.Category, opts reader.ListOptions) (*feed.Feed, error)
}

// EntryStorage сохраняет записи в архив и сообщает время самой свежей сохраненной записи.
type EntryStorage interface {
	SaveEntries(ctx context.Context, category reader.Category, f *feed.Feed) (int, error)
	LatestUpdated(ctx context.Context, category reader.Category) (time.Time, error)
}

// EntrySource отдает записи из архива.
type EntrySource interface {
	GetEntries(ctx context.Context, category reader.Category, n int) ([]feed.Entry, error)
}
