// Package app wires configuration, storage, the record store, localization
// and the router into one runnable unit shared by the shells.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaswdr/faker"

	"emprec/internal/app/demo"
	"emprec/internal/app/router"
	"emprec/internal/domain/store"
	"emprec/internal/platform/config"
	"emprec/internal/platform/db"
	"emprec/internal/platform/i18n"
	"emprec/internal/platform/metrics"
	"emprec/internal/platform/storage"
)

const flushTimeout = 10 * time.Second

type App struct {
	Config    config.Config
	Logger    *slog.Logger
	Metrics   *metrics.Collector
	Store     *store.Store
	Localizer *i18n.Localizer

	async      *storage.Async
	stopWriter context.CancelFunc
	pool       *pgxpool.Pool
}

// New validates cfg, opens the configured storage backend and loads the
// store from it. Close flushes pending writes and releases the backend.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	}

	backend, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}
	return a.build(backend), nil
}

// NewWithStorage wires the app on an already opened backend, such as the
// browser's localStorage.
func NewWithStorage(cfg config.Config, backend storage.Storage, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	}
	return a.build(backend)
}

func (a *App) build(backend storage.Storage) *App {
	catalog := i18n.Default().WithLogger(a.Logger)
	a.Store = store.New(backend,
		store.WithLogger(a.Logger),
		store.WithMetrics(a.Metrics),
		store.WithPageSize(a.Config.DefaultPageSize),
		store.WithDefaultLanguage(i18n.DetectLanguage(a.Config.DefaultLanguage, a.Config.Locales...)),
	)
	a.Localizer = i18n.NewLocalizer(catalog, a.Store.Language())
	a.Logger.Info("store loaded",
		"driver", a.Config.StorageDriver,
		"records", a.Store.Len(),
		"language", a.Store.Language(),
	)
	return a
}

func (a *App) openStorage(ctx context.Context) (storage.Storage, error) {
	var backend storage.Storage
	switch a.Config.StorageDriver {
	case config.DriverMemory:
		return storage.NewMemory(), nil
	case config.DriverFile:
		file, err := storage.NewFile(a.Config.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open file storage: %w", err)
		}
		backend = file
	case config.DriverPostgres:
		pool, err := db.Connect(ctx, a.Config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		pg, err := storage.NewPostgres(ctx, pool, a.Config.StorageTable, a.Config.StorageTimeout)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}
		a.pool = pool
		backend = pg
	default:
		return nil, fmt.Errorf("unknown storage driver %q", a.Config.StorageDriver)
	}

	writerCtx, cancel := context.WithCancel(context.Background())
	a.async = storage.NewAsync(backend, a.Config.StorageQueueSize, a.Logger)
	a.async.Start(writerCtx)
	a.stopWriter = cancel
	return a.async, nil
}

// NewRouter returns a router over the app's store following history and
// the app's localizer. The caller starts it.
func (a *App) NewRouter(history router.History, views router.ViewFactory) *router.Router {
	return router.New(a.Store, history,
		router.WithViews(views),
		router.WithLocalizer(a.Localizer),
		router.WithLogger(a.Logger),
	)
}

// SeedDemo loads the demo roster into an empty store when enabled.
func (a *App) SeedDemo(gen faker.Faker, now time.Time) int {
	if !a.Config.SeedDemoData {
		return 0
	}
	n := demo.Seed(a.Store, gen, a.Config.DemoExtraRecords, now)
	if n > 0 {
		a.Logger.Info("demo data seeded", "records", n)
	}
	return n
}

// Close waits for queued writes and releases the storage backend.
func (a *App) Close() error {
	var errs []error
	if a.async != nil {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		if err := a.async.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush storage: %w", err))
		}
		cancel()
		a.stopWriter()
		if a.async.Dropped()+a.async.Failed() > 0 {
			a.Logger.Warn("storage writes lost", "dropped", a.async.Dropped(), "failed", a.async.Failed())
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	return errors.Join(errs...)
}
