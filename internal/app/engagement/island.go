package engagement

import "github.com/ikigai-wellness/ikigai/internal/domain"

// IslandSummary is the read projection of one island's progress.
type IslandSummary struct {
	IslandID       string `json:"island_id"`
	CompletedCount int    `json:"completed_count"`
	Percent        int    `json:"percent"`
}

// IslandSummaryFor reads an island's recorded progress. Islands without
// any recorded progress report zeros.
func IslandSummaryFor(p domain.UserProgress, islandID string) IslandSummary {
	ip := p.IslandProgress[islandID]
	return IslandSummary{
		IslandID:       islandID,
		CompletedCount: ip.CompletedModules,
		Percent:        ip.Progress,
	}
}

// ModuleView pairs a catalog module with its gate and completion state.
type ModuleView struct {
	Module    domain.Module `json:"module"`
	Unlocked  bool          `json:"unlocked"`
	Completed bool          `json:"completed"`
}

// IslandModules lists an island's modules in order with the linear unlock
// gate applied: the first is always open, each later one opens when its
// predecessor is completed.
func IslandModules(cat domain.Catalog, p domain.UserProgress, islandID string) []ModuleView {
	mods := cat.ModulesForIsland(islandID)
	out := make([]ModuleView, len(mods))
	for i, m := range mods {
		out[i] = ModuleView{
			Module:    m,
			Unlocked:  i == 0 || p.IsModuleCompleted(mods[i-1].ID),
			Completed: p.IsModuleCompleted(m.ID),
		}
	}
	return out
}

// ModuleUnlocked applies the unlock gate to a single module. Unknown
// modules are locked.
func ModuleUnlocked(cat domain.Catalog, p domain.UserProgress, moduleID string) bool {
	m, ok := cat.Module(moduleID)
	if !ok {
		return false
	}
	for _, v := range IslandModules(cat, p, m.IslandID) {
		if v.Module.ID == moduleID {
			return v.Unlocked
		}
	}
	return false
}

// ─── Dashboard Overview ─────────────────────────────────────────────────────

// IslandOverview is one row of the dashboard.
type IslandOverview struct {
	Island  domain.Island `json:"island"`
	Summary IslandSummary `json:"summary"`
	Badges  []BadgeView   `json:"badges"`
}

// ChallengeView pairs a challenge with its completion flag.
type ChallengeView struct {
	Challenge domain.Challenge `json:"challenge"`
	Completed bool             `json:"completed"`
}

// Overview is everything the home screen renders in one read.
type Overview struct {
	TotalPoints   int              `json:"total_points"`
	Streak        int              `json:"streak"`
	WellnessScore int              `json:"wellness_score"`
	Level         Level            `json:"level"`
	BadgeCount    int              `json:"badge_count"`
	Badges        []domain.Badge   `json:"badges"`
	Islands       []IslandOverview `json:"islands"`
	Challenges    []ChallengeView  `json:"challenges"`
}

// BuildOverview projects progress over the catalog.
func BuildOverview(cat domain.Catalog, p domain.UserProgress) Overview {
	ov := Overview{
		TotalPoints:   p.TotalPoints,
		Streak:        p.Streak,
		WellnessScore: p.WellnessScore,
		Level:         LevelFor(p.TotalPoints),
		BadgeCount:    len(p.Badges),
		Badges:        p.Badges,
	}
	for _, is := range cat.Islands() {
		ov.Islands = append(ov.Islands, IslandOverview{
			Island:  is,
			Summary: IslandSummaryFor(p, is.ID),
			Badges:  BadgeCatalog(is, p),
		})
	}
	for _, ch := range cat.Challenges() {
		ov.Challenges = append(ov.Challenges, ChallengeView{
			Challenge: ch,
			Completed: p.IsChallengeCompleted(ch.ID),
		})
	}
	return ov
}
