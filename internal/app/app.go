package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"greader/internal/config"
	"greader/internal/migrations"
	server "greader/internal/transport/http"
	"greader/internal/usecase"
	"greader/internal/worker"
	"greader/reader"
	"greader/storage"
)

var _ usecase.StreamReader = (*reader.Client)(nil)

// App - сервис архивации: воркер копирует категории Google Reader в PostgreSQL,
// HTTP API отдает сохраненные записи.
type App struct {
	config   *config.Config
	logger   *slog.Logger
	server   *http.Server
	worker   *worker.Worker
	storage  *storage.PostgresEntryDB
	stopChan chan os.Signal
	wg       sync.WaitGroup
}

// New подключается к базе, применяет миграции, выполняет вход в Google Reader
// и собирает зависимости. Логгер создается вызывающим.
func New(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) (*App, error) {
	categories, err := cfg.Archive.ParsedCategories()
	if err != nil {
		return nil, fmt.Errorf("bad init app: %w", err)
	}
	dbPool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if err := migrations.Apply(ctx, appLogger, dbPool); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("migrations failed: %w", err)
	}

	client, err := NewReaderClient(ctx, cfg.Reader, appLogger)
	if err != nil {
		dbPool.Close()
		return nil, err
	}

	entryDB := storage.NewPostgresEntryDB(dbPool, reader.DefaultCount, appLogger)
	archiver := usecase.NewArchiveUseCase(client, entryDB, cfg.Archive.Count, appLogger)
	entriesGetter := usecase.NewEntriesGetterUseCase(entryDB)
	handler := server.NewHandler(appLogger, entriesGetter)
	router := server.NewServer(appLogger, handler)

	w := worker.New(archiver, categories, cfg.Archive.Schedule, 2*cfg.Reader.TimeoutDuration(), appLogger)

	return &App{
		config: cfg,
		logger: appLogger,
		server: &http.Server{
			Addr:              cfg.Server.Address,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		worker:   w,
		storage:  entryDB,
		stopChan: make(chan os.Signal, 1),
	}, nil
}

// NewReaderClient выполняет вход через ClientLogin с настройками из конфигурации.
func NewReaderClient(ctx context.Context, cfg config.ReaderConfig, log *slog.Logger) (*reader.Client, error) {
	client, err := reader.Authenticate(ctx, cfg.Email, cfg.Password,
		reader.WithBaseURL(cfg.BaseURL),
		reader.WithLoginURL(cfg.LoginURL),
		reader.WithHTTPClient(&http.Client{Timeout: cfg.TimeoutDuration()}),
		reader.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("google reader login failed: %w", err)
	}
	return client, nil
}

// Run запускает воркер и HTTP API и блокируется до сигнала завершения.
func (a *App) Run() error {
	a.logger.Info("Starting greader archive",
		slog.String("component", "app"),
		slog.Int("category_count", len(a.worker.Categories())),
		slog.String("schedule", a.worker.Schedule()),
	)
	if err := a.worker.Start(); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}
	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		a.worker.Stop()
		return fmt.Errorf("failed to create listener: %w", err)
	}
	a.logger.Info("HTTP server ready",
		slog.String("component", "server"),
		slog.String("address", listener.Addr().String()),
	)
	serverErr := make(chan error, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			a.logger.Error("HTTP server failed", slog.String("component", "server"), slog.Any("error", err))
			serverErr <- err
		}
	}()
	signal.Notify(a.stopChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(a.stopChan)
	select {
	case sig := <-a.stopChan:
		a.logger.Info("Shutdown signal received",
			slog.String("component", "app"),
			slog.String("signal", sig.String()),
		)
	case err := <-serverErr:
		a.logger.Warn("Server stopped unexpectedly, initiating shutdown",
			slog.String("component", "app"),
			slog.Any("error", err),
		)
	}
	return a.Shutdown()
}

// Shutdown останавливает воркер, HTTP-сервер (с таймаутом 10 секунд) и пул соединений.
func (a *App) Shutdown() error {
	a.logger.Info("Starting graceful shutdown", slog.String("component", "app"))
	if a.worker != nil {
		a.worker.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var shutdownErr error
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", slog.Any("error", err))
		shutdownErr = err
	}
	a.wg.Wait()
	if a.storage != nil {
		a.storage.Close()
	}
	a.logger.Info("Application stopped gracefully", slog.String("component", "app"))
	return shutdownErr
}
