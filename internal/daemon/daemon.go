package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikigai-wellness/ikigai/internal/api"
	"github.com/ikigai-wellness/ikigai/internal/app/engagement"
	"github.com/ikigai-wellness/ikigai/internal/app/progress"
	"github.com/ikigai-wellness/ikigai/internal/app/quiz"
	"github.com/ikigai-wellness/ikigai/internal/domain"
	"github.com/ikigai-wellness/ikigai/internal/health"
	"github.com/ikigai-wellness/ikigai/internal/infra/catalog"
	"github.com/ikigai-wellness/ikigai/internal/infra/sqlite"
)

// Daemon is the Ikigai runtime. It wires together all services.
type Daemon struct {
	Config   Config
	Log      *slog.Logger
	DB       *sqlite.DB // nil when storage is ephemeral
	Catalog  *catalog.Catalog
	Store    *progress.Store
	Engine   *engagement.Engine
	Sessions *quiz.Registry
	Health   *health.Checker
	Server   *api.Server
	cancel   context.CancelFunc
}

// New creates a Daemon from the on-disk configuration.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := NewLogger(cfg.Logging, os.Stderr)

	cat := catalog.Default()
	if cfg.Catalog.File != "" {
		c, err := catalog.LoadFile(cfg.Catalog.File)
		if err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		cat = c
	}

	d := &Daemon{Config: cfg, Log: logger, Catalog: cat}

	var kv domain.KVStore
	if cfg.Storage.Ephemeral {
		kv = progress.NewMemoryBackend()
		logger.Info("storage is ephemeral; progress is lost on exit", "component", "daemon")
	} else {
		db, err := sqlite.Open(cfg.Storage.Dir)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		d.DB = db
		kv = db
	}

	d.Store = progress.NewStore(kv, logger)
	d.Engine = engagement.NewEngine(d.Store, cat, logger)
	d.Sessions = quiz.NewRegistry(d.Engine)

	if d.DB != nil {
		d.Health = health.NewChecker(d.DB, cfg.Storage.Dir, cat, logger)
	} else {
		d.Health = health.NewChecker(nil, "", cat, logger)
	}

	d.Server = api.NewServer(d.Engine, d.Sessions, logger)
	d.Server.SetHealth(d.Health)
	if cfg.Telemetry.Prometheus {
		d.Server.EnableMetrics()
	}
	return d, nil
}

// Addr is the listen address of the HTTP server.
func (d *Daemon) Addr() string {
	return fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)
}

// Serve starts the HTTP server and blocks until ctx is cancelled or a
// termination signal arrives.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	defer cancel()

	go d.Health.Run(ctx)
	go d.sweepSessions(ctx, time.Minute)

	httpServer := &http.Server{
		Addr:         d.Addr(),
		Handler:      d.Server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			d.Log.Warn("http shutdown", "component", "daemon", "err", err)
		}
	}()

	d.Log.Info("serving", "component", "daemon", "addr", "http://"+d.Addr(),
		"ephemeral", d.Config.Storage.Ephemeral, "metrics", d.Config.Telemetry.Prometheus)

	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// sweepSessions drops idle quiz sessions every interval until ctx ends.
func (d *Daemon) sweepSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := d.Sessions.Sweep(); n > 0 {
				d.Log.Debug("idle sessions dropped", "component", "daemon", "count", n)
			}
		}
	}
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
