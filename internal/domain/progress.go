// Package domain holds the pure types of the wellness program: the persisted
// progress aggregate, questionnaire answers, and the read-only catalog.
// Nothing here touches storage or I/O.
package domain

import (
	"slices"
	"time"
)

// ─── Scoring Constants ──────────────────────────────────────────────────────

const (
	PointsPerModule    = 100 // First-time module completion
	PointsPerBadge     = 50  // First-time badge award
	PointsPerChallenge = 50  // First-time challenge completion

	// ModulesPerIsland is the fixed denominator of island progress.
	ModulesPerIsland = 3

	// PointsPerLevel is the width of one level on the XP bar.
	PointsPerLevel = 500

	DefaultStreak        = 3
	DefaultWellnessScore = 65
)

// ─── Progress Aggregate ─────────────────────────────────────────────────────

// UserProgress is the single persisted record of one installation.
type UserProgress struct {
	TotalPoints         int                        `json:"total_points"`
	Streak              int                        `json:"streak"`
	WellnessScore       int                        `json:"wellness_score"`
	CompletedModules    map[string]CompletedModule `json:"completed_modules"`
	Badges              []Badge                    `json:"badges"`
	IslandProgress      map[string]IslandProgress  `json:"island_progress"`
	ModuleResponses     map[string]ModuleResponses `json:"module_responses"`
	CompletedChallenges []string                   `json:"completed_challenges"`
}

// CompletedModule records when a module was finished and under which island.
type CompletedModule struct {
	CompletedAt time.Time `json:"completed_at"`
	IslandID    string    `json:"island_id"`
}

// Badge is an earned achievement. Badges are unique by ID.
type Badge struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	EarnedAt    time.Time `json:"earned_at"`
}

// IslandProgress is derived from CompletedModules and never edited directly.
type IslandProgress struct {
	Progress         int `json:"progress"` // percent, 0-100
	CompletedModules int `json:"completed_modules"`
}

// ModuleResponses is the last saved answer set of a module.
type ModuleResponses struct {
	Responses   map[string]Answer `json:"responses"`
	CompletedAt time.Time         `json:"completed_at"`
}

// DefaultProgress returns the record synthesized when nothing is stored.
func DefaultProgress() UserProgress {
	return UserProgress{
		Streak:              DefaultStreak,
		WellnessScore:       DefaultWellnessScore,
		CompletedModules:    map[string]CompletedModule{},
		Badges:              []Badge{},
		IslandProgress:      map[string]IslandProgress{},
		ModuleResponses:     map[string]ModuleResponses{},
		CompletedChallenges: []string{},
	}
}

// Normalize replaces nil collections with empty ones. Records decoded from
// older or hand-edited data may omit any of them.
func (p *UserProgress) Normalize() {
	if p.CompletedModules == nil {
		p.CompletedModules = map[string]CompletedModule{}
	}
	if p.Badges == nil {
		p.Badges = []Badge{}
	}
	if p.IslandProgress == nil {
		p.IslandProgress = map[string]IslandProgress{}
	}
	if p.ModuleResponses == nil {
		p.ModuleResponses = map[string]ModuleResponses{}
	}
	if p.CompletedChallenges == nil {
		p.CompletedChallenges = []string{}
	}
}

// Clone returns a deep copy, so callers can mutate without aliasing.
func (p UserProgress) Clone() UserProgress {
	c := p
	c.CompletedModules = make(map[string]CompletedModule, len(p.CompletedModules))
	for k, v := range p.CompletedModules {
		c.CompletedModules[k] = v
	}
	c.Badges = slices.Clone(p.Badges)
	c.IslandProgress = make(map[string]IslandProgress, len(p.IslandProgress))
	for k, v := range p.IslandProgress {
		c.IslandProgress[k] = v
	}
	c.ModuleResponses = make(map[string]ModuleResponses, len(p.ModuleResponses))
	for k, v := range p.ModuleResponses {
		c.ModuleResponses[k] = ModuleResponses{
			Responses:   CloneResponses(v.Responses),
			CompletedAt: v.CompletedAt,
		}
	}
	c.CompletedChallenges = slices.Clone(p.CompletedChallenges)
	c.Normalize()
	return c
}

// IsModuleCompleted reports whether moduleID has a completion entry.
func (p UserProgress) IsModuleCompleted(moduleID string) bool {
	_, ok := p.CompletedModules[moduleID]
	return ok
}

// HasBadge reports whether a badge with this ID was earned.
func (p UserProgress) HasBadge(id string) bool {
	return slices.ContainsFunc(p.Badges, func(b Badge) bool { return b.ID == id })
}

// IsChallengeCompleted reports whether challengeID was completed.
func (p UserProgress) IsChallengeCompleted(challengeID string) bool {
	return slices.Contains(p.CompletedChallenges, challengeID)
}

// CompletedCountForIsland counts completion entries tagged with islandID.
func (p UserProgress) CompletedCountForIsland(islandID string) int {
	n := 0
	for _, m := range p.CompletedModules {
		if m.IslandID == islandID {
			n++
		}
	}
	return n
}
