package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greader/reader"
)

type recordingArchiver struct {
	mu       sync.Mutex
	calls    []reader.Category
	failOn   reader.Category
	inFlight int
	maxSeen  int
}

func (a *recordingArchiver) ArchiveCategory(_ context.Context, c reader.Category) error {
	a.mu.Lock()
	a.inFlight++
	if a.inFlight > a.maxSeen {
		a.maxSeen = a.inFlight
	}
	a.calls = append(a.calls, c)
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.inFlight--
		a.mu.Unlock()
	}()
	if c == a.failOn {
		return errors.New("stream unavailable")
	}
	return nil
}

func (a *recordingArchiver) snapshot() []reader.Category {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]reader.Category(nil), a.calls...)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunOnce_SequentialAndContinuesOnError(t *testing.T) {
	a := &recordingArchiver{failOn: reader.CategoryRead}
	cats := []reader.Category{reader.CategoryRead, reader.CategoryStarred, reader.CategoryBroadcast}
	w := New(a, cats, "@every 1h", time.Second, discardLogger())

	w.RunOnce()

	assert.Equal(t, cats, a.snapshot())
	assert.Equal(t, 1, a.maxSeen)
}

func TestStart_RunsImmediately(t *testing.T) {
	a := &recordingArchiver{}
	w := New(a, []reader.Category{reader.CategoryStarred}, "@every 1h", 0, discardLogger())

	require.NoError(t, w.Start())
	assert.Eventually(t, func() bool { return len(a.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
	w.Stop()

	assert.Equal(t, []reader.Category{reader.CategoryStarred}, a.snapshot())
}

func TestStart_InvalidSchedule(t *testing.T) {
	w := New(&recordingArchiver{}, nil, "whenever", 0, discardLogger())

	err := w.Start()

	assert.ErrorContains(t, err, "invalid schedule")
}

func TestAccessors(t *testing.T) {
	cats := []reader.Category{reader.CategoryStarred}
	w := New(&recordingArchiver{}, cats, "*/5 * * * *", 0, discardLogger())

	assert.Equal(t, cats, w.Categories())
	assert.Equal(t, "*/5 * * * *", w.Schedule())
}
