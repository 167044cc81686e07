// Package engagement is the gamification engine: module and challenge
// completion, badge awards, island progress, and the level/XP view.
// Every mutation runs load → compute → save on the progress store.
package engagement

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ikigai-wellness/ikigai/internal/domain"
	"github.com/ikigai-wellness/ikigai/internal/infra/metrics"
)

// ProgressStore is the persistence the engine needs.
// progress.Store implements it.
type ProgressStore interface {
	Load() domain.UserProgress
	Save(domain.UserProgress) bool
	Reset() bool
}

// Engine applies gamification rules to the stored progress record.
// The mutex serializes load-mutate-save cycles so concurrent callers
// (HTTP handlers) cannot overwrite each other's writes.
type Engine struct {
	mu      sync.Mutex
	store   ProgressStore
	catalog domain.Catalog
	now     func() time.Time
	log     *slog.Logger
}

// NewEngine creates an engine. A nil logger uses slog.Default().
func NewEngine(store ProgressStore, catalog domain.Catalog, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		store:   store,
		catalog: catalog,
		now:     time.Now,
		log:     log.With("component", "engagement"),
	}
}

// SetClock replaces the time source used for completedAt/earnedAt stamps.
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
}

// Catalog returns the catalog the engine resolves badges against.
func (e *Engine) Catalog() domain.Catalog { return e.catalog }

// Progress returns the current stored progress.
func (e *Engine) Progress() domain.UserProgress {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Load()
}

// CompleteModule marks a module finished under islandID, awarding points,
// recomputing the island's progress and granting the module's badge.
// Completing an already-completed module changes nothing.
func (e *Engine) CompleteModule(moduleID, islandID string) domain.UserProgress {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.store.Load()
	if p.IsModuleCompleted(moduleID) {
		return p
	}

	now := e.now()
	p.CompletedModules[moduleID] = domain.CompletedModule{CompletedAt: now, IslandID: islandID}
	p.TotalPoints += domain.PointsPerModule
	// Recorded even when the catalog has no such island.
	p.IslandProgress[islandID] = islandProgressFor(p, islandID)

	metrics.ModulesCompleted.WithLabelValues(islandID).Inc()
	metrics.PointsAwarded.WithLabelValues("module").Add(domain.PointsPerModule)

	if badge, ok := e.awardBadge(&p, moduleID, islandID, now); ok {
		e.log.Info("badge awarded", "badge", badge.ID, "module", moduleID)
	}

	e.store.Save(p)
	e.log.Info("module completed", "module", moduleID, "island", islandID, "total_points", p.TotalPoints)
	return e.store.Load()
}

// CompleteChallenge marks a challenge done and awards its points once.
func (e *Engine) CompleteChallenge(challengeID string) domain.UserProgress {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.store.Load()
	if p.IsChallengeCompleted(challengeID) {
		return p
	}

	p.CompletedChallenges = append(p.CompletedChallenges, challengeID)
	p.TotalPoints += domain.PointsPerChallenge
	metrics.ChallengesCompleted.Inc()
	metrics.PointsAwarded.WithLabelValues("challenge").Add(domain.PointsPerChallenge)

	e.store.Save(p)
	e.log.Info("challenge completed", "challenge", challengeID, "total_points", p.TotalPoints)
	return e.store.Load()
}

// SaveModuleResponses replaces the stored answers of a module wholesale.
func (e *Engine) SaveModuleResponses(moduleID string, responses map[string]domain.Answer) domain.UserProgress {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.store.Load()
	p.ModuleResponses[moduleID] = domain.ModuleResponses{
		Responses:   domain.CloneResponses(responses),
		CompletedAt: e.now(),
	}
	e.store.Save(p)
	return e.store.Load()
}

// ResetAllData discards the stored record. The next load yields defaults.
func (e *Engine) ResetAllData() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	ok := e.store.Reset()
	if ok {
		e.log.Info("progress reset")
	}
	return ok
}

// IslandPercent is the island progress formula: min(100, round(100*n/3)).
func IslandPercent(completed int) int {
	pct := int(math.Round(float64(completed) * 100 / domain.ModulesPerIsland))
	return min(100, pct)
}

func islandProgressFor(p domain.UserProgress, islandID string) domain.IslandProgress {
	n := p.CompletedCountForIsland(islandID)
	return domain.IslandProgress{Progress: IslandPercent(n), CompletedModules: n}
}
