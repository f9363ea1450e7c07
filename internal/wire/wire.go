// Package wire provides dependency injection for the finq application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	cliadapter "github.com/example/finq/internal/adapters/cli"
	"github.com/example/finq/internal/adapters/cache"
	"github.com/example/finq/internal/adapters/devbackend"
	"github.com/example/finq/internal/adapters/network"
	"github.com/example/finq/internal/adapters/notify"
	"github.com/example/finq/internal/adapters/persistence"
	"github.com/example/finq/internal/adapters/remote"
	"github.com/example/finq/internal/adapters/sqlite"
	"github.com/example/finq/internal/app"
	"github.com/example/finq/internal/config"
	"github.com/example/finq/internal/db"
	"github.com/example/finq/internal/models"
	"github.com/example/finq/internal/ports/primary"
	"github.com/example/finq/internal/ports/secondary"
)

// Options are the process-wide settings taken from CLI flags.
// Configure must be called before the first service accessor.
type Options struct {
	ConfigPath string
	Offline    bool
	Verbose    bool
	// Console receives user-facing sync notifications; defaults to stdout.
	Console io.Writer
}

var (
	opts Options

	cfg             config.Config
	logger          *slog.Logger
	database        *sql.DB
	healthMonitor   *network.HealthMonitor
	monitor         secondary.ConnectivityMonitor
	dispatchService primary.DispatchService
	replayService   primary.ReplayService
	once            sync.Once
)

// Configure records the CLI options used by initServices.
func Configure(o Options) {
	opts = o
}

// Config returns the loaded configuration.
func Config() config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the process logger.
func Logger() *slog.Logger {
	once.Do(initServices)
	return logger
}

// DispatchService returns the singleton DispatchService instance.
func DispatchService() primary.DispatchService {
	once.Do(initServices)
	return dispatchService
}

// ReplayService returns the singleton ReplayService instance.
func ReplayService() primary.ReplayService {
	once.Do(initServices)
	return replayService
}

// CheckConnectivity takes one connectivity reading. It is a no-op when
// --offline pinned the monitor.
func CheckConnectivity(ctx context.Context) bool {
	once.Do(initServices)
	if healthMonitor == nil {
		return monitor.Offline()
	}
	return healthMonitor.Check(ctx)
}

// WatchConnectivity keeps checking the backend in the background until ctx
// is done.
func WatchConnectivity(ctx context.Context) {
	once.Do(initServices)
	if healthMonitor != nil {
		healthMonitor.Start(ctx)
	}
}

// NewLogger builds the slog logger used across the process.
func NewLogger(out io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	logger = NewLogger(os.Stderr, opts.Verbose)
	slog.SetDefault(logger)

	loaded, err := config.Load(opts.ConfigPath)
	if err != nil {
		fatal("failed to load config", err)
	}
	cfg = loaded

	database, err = db.Open(cfg.DBPath)
	if err != nil {
		fatal("failed to initialize database", err)
	}

	// Secondary adapters
	kv := sqlite.NewKeyValueStore(database)
	mutationLog := persistence.NewMutationLog(kv, logger)
	identity := persistence.NewSessionIdentityProvider(cfg.UserID)
	gateway := remote.NewClient(remote.Config{
		BaseURL:     cfg.BackendURL,
		APIKey:      cfg.APIKey,
		AccessToken: cfg.AccessToken,
		Timeout:     cfg.Network.RequestTimeout.Duration,
	}, logger)

	if opts.Offline {
		monitor = network.NewManualMonitor(true)
	} else {
		healthMonitor = network.NewHealthMonitor(gateway.Health, cfg.Network.CheckInterval.Duration, logger)
		monitor = healthMonitor
	}

	debts := cache.NewStore[models.Debt](func(ctx context.Context, key secondary.CollectionKey) ([]models.Debt, error) {
		return gateway.ListDebts(ctx, key.OwnerID)
	}, logger).WithPersistence(kv)
	assets := cache.NewStore[models.Asset](func(ctx context.Context, key secondary.CollectionKey) ([]models.Asset, error) {
		return gateway.ListAssets(ctx, key.OwnerID)
	}, logger).WithPersistence(kv)

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	notifier := notify.Multi{notify.NewLogNotifier(logger), notify.NewConsoleNotifier(console)}

	// Services (primary ports implementation)
	dispatchService = app.NewDispatchService(identity, monitor, gateway, mutationLog, debts, assets, logger)
	replayService = app.NewReplayService(identity, monitor, gateway, mutationLog, debts, assets, notifier,
		app.ReplayOptions{
			Interval:    cfg.Replay.Interval.Duration,
			MaxAttempts: cfg.Replay.MaxAttempts,
		}, logger)
}

// Close releases the database handle if it was opened.
func Close() error {
	if database == nil {
		return nil
	}
	return database.Close()
}

// QueueAdapter returns a new QueueAdapter writing to stdout.
func QueueAdapter() *cliadapter.QueueAdapter {
	return QueueAdapterWithOutput(os.Stdout)
}

// QueueAdapterWithOutput returns a new QueueAdapter writing to the given output.
func QueueAdapterWithOutput(out io.Writer) *cliadapter.QueueAdapter {
	once.Do(initServices)
	return cliadapter.NewQueueAdapter(replayService, out)
}

// LedgerAdapter returns a new LedgerAdapter writing to stdout.
func LedgerAdapter() *cliadapter.LedgerAdapter {
	return LedgerAdapterWithOutput(os.Stdout)
}

// LedgerAdapterWithOutput returns a new LedgerAdapter writing to the given output.
func LedgerAdapterWithOutput(out io.Writer) *cliadapter.LedgerAdapter {
	once.Do(initServices)
	return cliadapter.NewLedgerAdapter(dispatchService, out)
}

// DevBackend opens the development backend database at dbPath and returns
// a server for it. It does not touch the client singletons beyond logging.
func DevBackend(dbPath, apiKey string) (*devbackend.Server, func() error, error) {
	once.Do(initServices)
	backendDB, err := db.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open dev backend database: %w", err)
	}
	return devbackend.NewServer(devbackend.NewStore(backendDB), apiKey, logger), backendDB.Close, nil
}

func fatal(msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
