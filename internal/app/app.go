package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/linkshelf/internal/config"
	"github.com/MrSnakeDoc/linkshelf/internal/httpserver"
	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
	"github.com/MrSnakeDoc/linkshelf/internal/preview"
	"github.com/MrSnakeDoc/linkshelf/internal/scheduler"
	"github.com/MrSnakeDoc/linkshelf/internal/shelf"
	"github.com/MrSnakeDoc/linkshelf/internal/store"
	"github.com/MrSnakeDoc/linkshelf/internal/utils"
	"github.com/MrSnakeDoc/linkshelf/internal/version"
)

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	server   *httpserver.Server
	backend  store.Backend
	shelf    *shelf.Store
	restorer *scheduler.Restorer
	writer   *scheduler.SnapshotWriter
	purger   *scheduler.TrashPurger // nil when retention is 0
}

// New wires the server. The backend must be reachable: without it nothing
// would survive a restart, so startup fails instead.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	loggerClient.Debugf("configuration: %+v", cfg.Redacted())

	backend, err := OpenBackend(ctx, cfg, loggerClient.Named("store"))
	if err != nil {
		return nil, err
	}

	cred, err := OpenCredential(ctx, cfg, backend, loggerClient)
	if err != nil {
		utils.Close(backend)
		return nil, err
	}

	fetcher := preview.NewFetcher(cfg.PreviewEndpoint, cred,
		preview.WithTimeout(cfg.PreviewTimeout),
		preview.WithLogger(loggerClient.Named("preview")))

	sh := shelf.New(fetcher, shelf.WithLogger(loggerClient.Named("shelf")))

	// Create manual snapshot trigger channel
	snapshotTrigger := make(chan struct{}, 1)

	writer := scheduler.NewSnapshotWriter(sh, backend, loggerClient.Named("snapshot"), cfg.SnapshotInterval, snapshotTrigger)

	// Every applied change queues a write; queued writes coalesce.
	sh.Subscribe(func(ev shelf.Event) {
		loggerClient.Debug("shelf event",
			logger.String("kind", string(ev.Kind)),
			logger.Strings("ids", ev.IDs))
		writer.Nudge()
	})

	var purger *scheduler.TrashPurger
	if cfg.TrashRetention > 0 {
		purger = scheduler.NewTrashPurger(sh, loggerClient.Named("purger"), cfg.PurgeInterval, cfg.TrashRetention)
	}

	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		RateBurst:       cfg.RateBurst,
		RatePerMin:      cfg.RatePerMin,
		Shelf:           sh,
		Credential:      cred,
		Backend:         backend,
		SnapshotTrigger: snapshotTrigger,
		ExportTitle:     cfg.ExportTitle,
	}

	return &App{
		cfg:      cfg,
		logger:   loggerClient,
		server:   httpserver.New(cfg, loggerClient, d),
		backend:  backend,
		shelf:    sh,
		restorer: scheduler.NewRestorer(backend, sh, cfg.SeedFile, loggerClient.Named("restore")),
		writer:   writer,
		purger:   purger,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting %s on %s (backend=%s)", version.String(), a.cfg.ListenPort, a.backend.Name())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.restorer.Restore(ctx); err != nil {
		utils.MustClose(a.backend, "backend", a.logger)
		return fmt.Errorf("failed to restore shelf: %w", err)
	}

	a.writer.Start(ctx)
	a.logger.Info("snapshot writer started",
		logger.Duration("interval", a.cfg.SnapshotInterval))

	if a.purger != nil {
		a.purger.Start(ctx)
		a.logger.Info("trash purger started",
			logger.Duration("interval", a.cfg.PurgeInterval),
			logger.Duration("retention", a.cfg.TrashRetention))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
	}

	if err := a.shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// shutdown stops accepting requests, cancels pending preview fetches and
// writes a last snapshot before closing the backend.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	var stopErr error
	if err := a.server.Stop(shutdownCtx); err != nil {
		stopErr = fmt.Errorf("failed to stop server: %w", err)
	}

	a.writer.Stop()
	if a.purger != nil {
		a.purger.Stop()
	}

	// Pending fetches are cancelled; their placeholders are saved as loading
	// and fetched again after the next restore.
	a.shelf.Close()

	if err := a.writer.Flush(shutdownCtx); err != nil {
		a.logger.Error("final snapshot write failed", logger.Error(err))
	} else {
		a.logger.Info("✅ Final snapshot written")
	}

	utils.MustClose(a.backend, "backend", a.logger)
	a.logger.Info("✅ linkshelf stopped cleanly")
	_ = a.logger.Sync()
	return stopErr
}
