// Package server initializes and runs the contactsync server: it wires the
// database, runs migrations, starts the HTTP API and the background sweep
// that retries queued sync entries, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/vkraskov/contactsync/internal/logging"
	"github.com/vkraskov/contactsync/internal/server/config"
	"github.com/vkraskov/contactsync/internal/server/contacts"
	"github.com/vkraskov/contactsync/internal/server/httpapi"
	"github.com/vkraskov/contactsync/internal/server/repositories/repomanager"
	syncsvc "github.com/vkraskov/contactsync/internal/server/sync"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	contactService *contacts.Service
	syncService    *syncsvc.Service
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	manager, err := newRepositoryManager(cfg.DatabaseDriver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := manager.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	cs := contacts.NewService(db, manager, cfg)
	ss := syncsvc.NewService(db, manager, logger)

	return &App{config: cfg, logger: logger, db: db, contactService: cs, syncService: ss}, nil
}

func newRepositoryManager(driver string) (repomanager.RepositoryManager, error) {
	switch driver {
	case "pgx":
		return repomanager.NewPostgresRepositoryManager(), nil
	case "sqlite":
		return repomanager.NewSQLiteRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", driver)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger, app.contactService, app.syncService, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// startSweep retries queued sync entries on a fixed interval until the
// context is cancelled.
func (app *App) startSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := app.syncService.SweepPending(ctx); err != nil {
				app.logger.Error(ctx, "sweep error", "error", err)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startSweep(ctx, app.config.SweepInterval)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing database", "error", err)
	}
}
