package storage

import (
	"context"
	"time"

	"greader/feed"
	"greader/reader"
)

// Storage объединяет операции архива записей по категориям.
type Storage interface {
	SaveEntries(ctx context.Context, category reader.Category, f *feed.Feed) (int, error)
	GetEntries(ctx context.Context, category reader.Category, n int) ([]feed.Entry, error)
	LatestUpdated(ctx context.Context, category reader.Category) (time.Time, error)
	Close()
}
