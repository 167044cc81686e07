package engagement

import (
	"time"

	"github.com/ikigai-wellness/ikigai/internal/domain"
	"github.com/ikigai-wellness/ikigai/internal/infra/metrics"
)

// awardBadge grants the badge attached to moduleID, resolved against
// islandID's badge table. Returns false when the module has no badge, a
// lookup misses, or the badge was already earned (idempotent).
func (e *Engine) awardBadge(p *domain.UserProgress, moduleID, islandID string, at time.Time) (domain.Badge, bool) {
	def, ok := e.badgeFor(moduleID, islandID)
	if !ok {
		return domain.Badge{}, false
	}
	if p.HasBadge(def.ID) {
		return domain.Badge{}, false
	}

	badge := domain.Badge{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
		Icon:        def.Icon,
		EarnedAt:    at,
	}
	p.Badges = append(p.Badges, badge)
	p.TotalPoints += domain.PointsPerBadge

	metrics.BadgesAwarded.Inc()
	metrics.PointsAwarded.WithLabelValues("badge").Add(domain.PointsPerBadge)
	return badge, true
}

// badgeFor resolves the badge definition of a module. Any miss along the
// way (module, badge id, island, badge entry) means there is nothing to award.
func (e *Engine) badgeFor(moduleID, islandID string) (domain.BadgeDef, bool) {
	if e.catalog == nil {
		return domain.BadgeDef{}, false
	}
	mod, ok := e.catalog.Module(moduleID)
	if !ok || mod.BadgeID == "" {
		return domain.BadgeDef{}, false
	}
	island, ok := e.catalog.Island(islandID)
	if !ok {
		return domain.BadgeDef{}, false
	}
	return island.Badge(mod.BadgeID)
}

// BadgeCatalog lists every badge of an island with its earned state.
// Used by the island detail views.
func BadgeCatalog(island domain.Island, p domain.UserProgress) []BadgeView {
	out := make([]BadgeView, 0, len(island.Badges))
	for _, def := range island.Badges {
		out = append(out, BadgeView{BadgeDef: def, Earned: p.HasBadge(def.ID)})
	}
	return out
}

// BadgeView pairs a badge definition with whether it was earned.
type BadgeView struct {
	domain.BadgeDef
	Earned bool `json:"earned"`
}
