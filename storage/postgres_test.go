package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greader/feed"
	"greader/reader"
)

func TestNullTime(t *testing.T) {
	assert.Nil(t, nullTime(time.Time{}))

	now := time.Date(2010, 1, 5, 14, 0, 0, 0, time.UTC)
	got := nullTime(now)
	if assert.NotNil(t, got) {
		assert.Equal(t, now, *got)
	}
}

func TestDerefTime(t *testing.T) {
	assert.True(t, derefTime(nil).IsZero())

	local := time.Date(2010, 1, 5, 17, 0, 0, 0, time.FixedZone("MSK", 3*60*60))
	assert.Equal(t, time.Date(2010, 1, 5, 14, 0, 0, 0, time.UTC), derefTime(&local))
}

type fakePool struct {
	tx       *fakeTx
	beginErr error

	rows      *fakeRows
	querySQL  string
	queryArgs []any

	row     fakeRow
	rowArgs []any
	closed  bool
}

func (p *fakePool) Begin(context.Context) (pgx.Tx, error) {
	if p.beginErr != nil {
		return nil, p.beginErr
	}
	return p.tx, nil
}

func (p *fakePool) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	p.querySQL = sql
	p.queryArgs = args
	return p.rows, nil
}

func (p *fakePool) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	p.rowArgs = args
	return p.row
}

func (p *fakePool) Close() { p.closed = true }

// fakeTx отвечает на каждый запрос пакета значением inserted по порядку.
type fakeTx struct {
	pgx.Tx
	inserted   []bool
	scanErr    error
	queued     []*pgx.QueuedQuery
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	tx.queued = b.QueuedQueries
	return &fakeBatchResults{tx: tx}
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	tx.rolledBack = true
	return nil
}

type fakeBatchResults struct {
	tx *fakeTx
	i  int
}

func (r *fakeBatchResults) Exec() (pgconn.CommandTag, error) { return pgconn.CommandTag{}, nil }
func (r *fakeBatchResults) Query() (pgx.Rows, error)         { return nil, errors.New("not supported") }
func (r *fakeBatchResults) Close() error                     { return nil }

func (r *fakeBatchResults) QueryRow() pgx.Row {
	if r.tx.scanErr != nil {
		return fakeRow{err: r.tx.scanErr}
	}
	row := fakeRow{values: []any{r.tx.inserted[r.i]}}
	r.i++
	return row
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assignValues(dest, r.values)
}

type fakeRows struct {
	data [][]any
	i    int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.data[r.i-1], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.i >= len(r.data) {
		return false
	}
	r.i++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return assignValues(dest, r.data[r.i-1])
}

func assignValues(dest, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *bool:
			*p = values[i].(bool)
		case *string:
			*p = values[i].(string)
		case **time.Time:
			*p = values[i].(*time.Time)
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

func newTestDB(pool *fakePool) *PostgresEntryDB {
	return newPostgresEntryDB(pool, 20, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSaveEntries_CountsOnlyInserted(t *testing.T) {
	published := time.Date(2010, 1, 5, 13, 55, 58, 0, time.UTC)
	tx := &fakeTx{inserted: []bool{true, false}}
	db := newTestDB(&fakePool{tx: tx})
	f := &feed.Feed{Entries: []feed.Entry{
		{ID: "tag:1", Title: "New", Published: published, Summary: "short"},
		{ID: ""},
		{ID: "tag:2", Title: "Seen", Author: "Ann"},
	}}

	saved, err := db.SaveEntries(context.Background(), reader.CategoryStarred, f)

	require.NoError(t, err)
	assert.Equal(t, 1, saved)
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
	require.Len(t, tx.queued, 2)
	assert.Contains(t, tx.queued[0].SQL, "author = EXCLUDED.author")
	assert.Equal(t, []any{"starred", "tag:1", "New", "", "short", "", "", &published, (*time.Time)(nil)}, tx.queued[0].Arguments)
	assert.Equal(t, "tag:2", tx.queued[1].Arguments[1])
	assert.Equal(t, "Ann", tx.queued[1].Arguments[5])
}

func TestSaveEntries_RollsBackOnError(t *testing.T) {
	tx := &fakeTx{scanErr: errors.New("unique violation")}
	db := newTestDB(&fakePool{tx: tx})

	saved, err := db.SaveEntries(context.Background(), reader.CategoryRead, &feed.Feed{Entries: []feed.Entry{{ID: "tag:1"}}})

	require.Error(t, err)
	assert.Zero(t, saved)
	assert.Contains(t, err.Error(), "failed to execute batch")
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestSaveEntries_EmptyFeed(t *testing.T) {
	pool := &fakePool{beginErr: errors.New("must not begin")}

	saved, err := newTestDB(pool).SaveEntries(context.Background(), reader.CategoryRead, &feed.Feed{})

	require.NoError(t, err)
	assert.Zero(t, saved)
}

func TestGetEntries(t *testing.T) {
	updated := time.Date(2010, 1, 5, 17, 1, 2, 0, time.FixedZone("MSK", 3*60*60))
	pool := &fakePool{rows: &fakeRows{data: [][]any{
		{"tag:1", "First", "http://a", "body", "Ann", "Blog", (*time.Time)(nil), &updated},
	}}}

	entries, err := newTestDB(pool).GetEntries(context.Background(), reader.CategoryBroadcast, 0)

	require.NoError(t, err)
	assert.Equal(t, []any{"broadcast", 20}, pool.queryArgs)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "tag:1", e.ID)
	assert.Equal(t, "body", e.Content)
	assert.Equal(t, "Blog", e.SourceTitle)
	assert.True(t, e.Published.IsZero())
	assert.Equal(t, time.Date(2010, 1, 5, 14, 1, 2, 0, time.UTC), e.Updated)
}

func TestLatestUpdated(t *testing.T) {
	pool := &fakePool{row: fakeRow{values: []any{(*time.Time)(nil)}}}
	db := newTestDB(pool)

	latest, err := db.LatestUpdated(context.Background(), reader.CategoryStarred)
	require.NoError(t, err)
	assert.True(t, latest.IsZero())
	assert.Equal(t, []any{"starred"}, pool.rowArgs)

	ts := time.Date(2010, 1, 5, 14, 22, 41, 0, time.UTC)
	pool.row = fakeRow{values: []any{&ts}}
	latest, err = db.LatestUpdated(context.Background(), reader.CategoryStarred)
	require.NoError(t, err)
	assert.Equal(t, ts, latest)
}

func TestClose(t *testing.T) {
	pool := &fakePool{}
	newTestDB(pool).Close()
	assert.True(t, pool.closed)
}
