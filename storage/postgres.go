package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"greader/feed"
	"greader/reader"
)

// pgxPool - часть *pgxpool.Pool, которой пользуется архив.
type pgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

type PostgresEntryDB struct {
	pool         pgxPool
	log          *slog.Logger
	defaultLimit int
}

func NewPostgresEntryDB(pool *pgxpool.Pool, defaultLimit int, log *slog.Logger) *PostgresEntryDB {
	return newPostgresEntryDB(pool, defaultLimit, log)
}

func newPostgresEntryDB(pool pgxPool, defaultLimit int, log *slog.Logger) *PostgresEntryDB {
	log = log.With(slog.String("component", "storage"))
	log.Info("Initializing Postgres entry archive")
	return &PostgresEntryDB{
		pool:         pool,
		log:          log,
		defaultLimit: defaultLimit,
	}
}

func (db *PostgresEntryDB) Close() {
	db.log.Info("Closing database connection pool")
	db.pool.Close()
}

// SaveEntries добавляет записи ленты в архив категории и возвращает число новых строк.
// Уже сохраненные записи (по entry_id) перезаписываются целиком, кроме archived_at,
// и не учитываются в результате.
func (db *PostgresEntryDB) SaveEntries(ctx context.Context, category reader.Category, f *feed.Feed) (saved int, err error) {
	const op = "storage.postgres.SaveEntries"
	log := db.log.With(slog.String("op", op), slog.String("category", string(category)))
	if f.Len() == 0 {
		return 0, nil
	}
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		log.Error("Failed to begin transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(context.Background()); rollbackErr != nil {
				log.Error("Failed to rollback transaction", slog.Any("error", rollbackErr))
			}
		}
	}()
	// xmax = 0 только у только что вставленной строки, а не у обновленной.
	query := `
	INSERT INTO entries (category, entry_id, title, link, content, author, source_title, published, updated)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (category, entry_id) DO UPDATE
	SET title = EXCLUDED.title,
		link = EXCLUDED.link,
		content = EXCLUDED.content,
		author = EXCLUDED.author,
		source_title = EXCLUDED.source_title,
		published = EXCLUDED.published,
		updated = EXCLUDED.updated
	RETURNING (xmax = 0) AS inserted;
	`
	batch := &pgx.Batch{}
	for _, e := range f.Entries {
		if e.ID == "" {
			continue
		}
		batch.Queue(
			query,
			string(category),
			e.ID,
			e.Title,
			e.Link,
			e.Body(),
			e.Author,
			e.SourceTitle,
			nullTime(e.Published),
			nullTime(e.Updated),
		)
	}
	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		var inserted bool
		if err = results.QueryRow().Scan(&inserted); err != nil {
			results.Close()
			log.Error("Failed to execute batch", slog.Any("error", err))
			return 0, fmt.Errorf("%s: failed to execute batch: %w", op, err)
		}
		if inserted {
			saved++
		}
	}
	if err = results.Close(); err != nil {
		log.Error("Failed to close batch", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to close batch: %w", op, err)
	}
	if err = tx.Commit(ctx); err != nil {
		log.Error("Failed to commit transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	log.Debug("Entries archived", slog.Int("count", saved))
	return saved, nil
}

// GetEntries возвращает n последних записей категории, сначала самые свежие.
func (db *PostgresEntryDB) GetEntries(ctx context.Context, category reader.Category, n int) ([]feed.Entry, error) {
	limit := n
	if limit <= 0 {
		limit = db.defaultLimit
	}
	const op = "storage.postgres.GetEntries"
	log := db.log.With(
		slog.String("op", op),
		slog.String("category", string(category)),
		slog.Int("limit", limit),
	)
	query := `
	SELECT entry_id, title, link, content, author, source_title, published, updated
	FROM entries
	WHERE category = $1
	ORDER BY COALESCE(updated, published, archived_at) DESC
	LIMIT $2;
	`
	rows, err := db.pool.Query(ctx, query, string(category), limit)
	if err != nil {
		log.Error("Database query failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (feed.Entry, error) {
		var e feed.Entry
		var published, updated *time.Time
		err := row.Scan(
			&e.ID,
			&e.Title,
			&e.Link,
			&e.Content,
			&e.Author,
			&e.SourceTitle,
			&published,
			&updated,
		)
		e.Published = derefTime(published)
		e.Updated = derefTime(updated)
		return e, err
	})
	if err != nil {
		log.Error("Failed to collect rows", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to scan row: %w", op, err)
	}
	log.Debug("Retrieved archived entries", slog.Int("count", len(entries)))
	return entries, nil
}

// LatestUpdated возвращает время самой свежей записи категории или нулевое время, если архив пуст.
func (db *PostgresEntryDB) LatestUpdated(ctx context.Context, category reader.Category) (time.Time, error) {
	const op = "storage.postgres.LatestUpdated"
	var latest *time.Time
	err := db.pool.QueryRow(ctx,
		`SELECT max(COALESCE(updated, published)) FROM entries WHERE category = $1`,
		string(category),
	).Scan(&latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return derefTime(latest), nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}
