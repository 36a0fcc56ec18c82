package migrations

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Migration struct {
	ID    string
	UpSQL string
}

var allMigrations = []Migration{
	{
		ID: "20100105120000_create_entries_table",
		UpSQL: `
		CREATE TABLE entries(
		category TEXT NOT NULL,
		entry_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		link TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		author TEXT NOT NULL DEFAULT '',
		source_title TEXT NOT NULL DEFAULT '',
		published TIMESTAMPTZ,
		updated TIMESTAMPTZ,
		archived_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (category, entry_id)
		);`,
	},
	{
		ID: "20100105120100_index_entries_by_updated",
		UpSQL: `
		CREATE INDEX entries_category_updated_idx ON entries (category, updated DESC);`,
	},
}

// Ordered возвращает миграции, отсортированные по ID.
func Ordered() []Migration {
	out := append([]Migration(nil), allMigrations...)
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// Apply применяет к базе все еще не примененные миграции в одной транзакции.
func Apply(ctx context.Context, log *slog.Logger, pool *pgxpool.Pool) error {
	log = log.With(slog.String("component", "migrations"))
	log.Info("Starting database migrations check...")
	_, err := pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
	id TEXT PRIMARY KEY
	);
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	rows, err := pool.Query(ctx, "SELECT id FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("failed to scan migration ids: %w", err)
	}
	applied := make(map[string]bool, len(ids))
	for _, id := range ids {
		applied[id] = true
	}
	pending := Pending(applied)
	if len(pending) == 0 {
		log.Info("Database is up to date, no new migrations found.")
		return nil
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)
	for _, m := range pending {
		log.Info("Applying migration", slog.String("id", m.ID))
		if _, err := tx.Exec(ctx, m.UpSQL); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (id) VALUES ($1)", m.ID); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migrations transaction: %w", err)
	}
	log.Info("Database migrations applied successfully", slog.Int("count", len(pending)))
	return nil
}

// Pending возвращает миграции, которых нет среди applied, в порядке применения.
func Pending(applied map[string]bool) []Migration {
	var out []Migration
	for _, m := range Ordered() {
		if !applied[m.ID] {
			out = append(out, m)
		}
	}
	return out
}
