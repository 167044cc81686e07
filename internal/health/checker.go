// Package health runs periodic self-checks of the progress service:
// storage reachability, a writable data directory, and a usable catalog.
package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ikigai-wellness/ikigai/internal/infra/metrics"
)

// Pinger is a storage backend that can report reachability. sqlite.DB
// implements it.
type Pinger interface {
	Ping() error
}

// ModuleCounter reports how many modules a catalog holds.
type ModuleCounter interface {
	ModuleCount() int
}

// Check defines a single health check with optional recovery action.
type Check struct {
	Name      string
	CheckFn   func(ctx context.Context) error
	RecoverFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs periodic health checks with auto-recovery.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
	log      *slog.Logger
}

// NewChecker builds the standard checks. A nil store (ephemeral mode)
// drops the storage check; an empty dataDir drops the directory check.
func NewChecker(store Pinger, dataDir string, cat ModuleCounter, log *slog.Logger) *Checker {
	if log == nil {
		log = slog.Default()
	}
	c := &Checker{interval: 60 * time.Second, log: log.With("component", "health")}

	if store != nil {
		c.checks = append(c.checks, Check{
			Name:    "storage",
			CheckFn: func(ctx context.Context) error { return store.Ping() },
		})
	}
	if dataDir != "" {
		c.checks = append(c.checks, Check{
			Name:    "data_dir",
			CheckFn: func(ctx context.Context) error { return checkWritable(dataDir) },
			RecoverFn: func(ctx context.Context) error {
				return os.MkdirAll(dataDir, 0o700)
			},
		})
	}
	c.checks = append(c.checks, Check{
		Name: "catalog",
		CheckFn: func(ctx context.Context) error {
			if cat == nil || cat.ModuleCount() == 0 {
				return errors.New("catalog has no modules")
			}
			return nil
		},
	})
	return c
}

// SetInterval overrides the 60s default between runs.
func (c *Checker) SetInterval(d time.Duration) { c.interval = d }

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	c.RunOnce(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.RunOnce(ctx)
		}
	}
}

// RunOnce executes every check now and records the results.
func (c *Checker) RunOnce(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{Name: check.Name, CheckedAt: time.Now()}
		err := check.CheckFn(ctx)
		if err != nil && check.RecoverFn != nil {
			if rerr := check.RecoverFn(ctx); rerr == nil {
				err = check.CheckFn(ctx)
			}
		}
		if err != nil {
			s.Error = err.Error()
			c.log.Warn("health check failed", "check", check.Name, "err", err)
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(0)
		} else {
			s.Healthy = true
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(1)
		}
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass. Vacuously true before the
// first run.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

// ─── Check Implementations ──────────────────────────────────────────────────

func checkWritable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("check data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	probe := filepath.Join(dir, ".health")
	if err := os.WriteFile(probe, nil, 0o600); err != nil {
		return fmt.Errorf("data dir not writable: %w", err)
	}
	return os.Remove(probe)
}
