package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greader/feed"
	"greader/reader"
)

type fakeReader struct {
	feed     *feed.Feed
	err      error
	gotCat   reader.Category
	gotOpts  reader.ListOptions
	numCalls int
}

func (f *fakeReader) Items(_ context.Context, c reader.Category, opts reader.ListOptions) (*feed.Feed, error) {
	f.numCalls++
	f.gotCat = c
	f.gotOpts = opts
	return f.feed, f.err
}

type fakeStorage struct {
	latest    time.Time
	latestErr error
	saveErr   error
	saved     map[reader.Category][]feed.Entry
}

func (s *fakeStorage) LatestUpdated(context.Context, reader.Category) (time.Time, error) {
	return s.latest, s.latestErr
}

func (s *fakeStorage) SaveEntries(_ context.Context, c reader.Category, f *feed.Feed) (int, error) {
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	if s.saved == nil {
		s.saved = map[reader.Category][]feed.Entry{}
	}
	s.saved[c] = append(s.saved[c], f.Entries...)
	return len(f.Entries), nil
}

func (s *fakeStorage) GetEntries(_ context.Context, c reader.Category, n int) ([]feed.Entry, error) {
	entries := s.saved[c]
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestArchiveCategory_IncrementalFetch(t *testing.T) {
	latest := time.Date(2010, 1, 5, 14, 0, 0, 0, time.UTC)
	r := &fakeReader{feed: &feed.Feed{Entries: []feed.Entry{{ID: "a"}, {ID: "b"}}}}
	s := &fakeStorage{latest: latest}
	uc := NewArchiveUseCase(r, s, 100, discardLogger())

	err := uc.ArchiveCategory(context.Background(), reader.CategoryStarred)

	require.NoError(t, err)
	assert.Equal(t, reader.CategoryStarred, r.gotCat)
	assert.Equal(t, reader.ListOptions{Count: 100, Since: latest}, r.gotOpts)
	assert.Len(t, s.saved[reader.CategoryStarred], 2)
}

func TestArchiveCategory_EmptyArchiveFetchesWithoutSince(t *testing.T) {
	r := &fakeReader{feed: &feed.Feed{}}
	s := &fakeStorage{}
	uc := NewArchiveUseCase(r, s, 20, discardLogger())

	require.NoError(t, uc.ArchiveCategory(context.Background(), reader.CategoryRead))
	assert.True(t, r.gotOpts.Since.IsZero())
}

func TestArchiveCategory_Errors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("position", func(t *testing.T) {
		r := &fakeReader{}
		uc := NewArchiveUseCase(r, &fakeStorage{latestErr: boom}, 20, discardLogger())
		err := uc.ArchiveCategory(context.Background(), reader.CategoryRead)
		assert.ErrorIs(t, err, boom)
		assert.Zero(t, r.numCalls)
	})

	t.Run("fetch", func(t *testing.T) {
		reqErr := &reader.RequestError{URL: "http://x", Status: 401, Body: "expired"}
		uc := NewArchiveUseCase(&fakeReader{err: reqErr}, &fakeStorage{}, 20, discardLogger())
		err := uc.ArchiveCategory(context.Background(), reader.CategoryRead)
		var target *reader.RequestError
		require.True(t, errors.As(err, &target))
		assert.Equal(t, 401, target.Status)
		assert.Contains(t, err.Error(), "fetch failed for read")
	})

	t.Run("save", func(t *testing.T) {
		r := &fakeReader{feed: &feed.Feed{Entries: []feed.Entry{{ID: "a"}}}}
		uc := NewArchiveUseCase(r, &fakeStorage{saveErr: boom}, 20, discardLogger())
		err := uc.ArchiveCategory(context.Background(), reader.CategoryRead)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "save failed")
	})
}

func TestEntriesGetter(t *testing.T) {
	s := &fakeStorage{saved: map[reader.Category][]feed.Entry{
		reader.CategoryStarred: {{ID: "1"}, {ID: "2"}, {ID: "3"}},
	}}
	uc := NewEntriesGetterUseCase(s)

	entries, err := uc.GetEntries(context.Background(), reader.CategoryStarred, 2)

	require.NoError(t, err)
	assert.Equal(t, []feed.Entry{{ID: "1"}, {ID: "2"}}, entries)
}
