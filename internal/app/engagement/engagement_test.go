package engagement_test

import (
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/ikigai-wellness/ikigai/internal/app/engagement"
	"github.com/ikigai-wellness/ikigai/internal/app/progress"
	"github.com/ikigai-wellness/ikigai/internal/domain"
	"github.com/ikigai-wellness/ikigai/internal/infra/catalog"
	"github.com/ikigai-wellness/ikigai/internal/infra/sqlite"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

var fixedNow = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

// testCatalog is one island with three modules: A carries badge X,
// B has none, C references a badge the island does not define.
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		[]domain.Island{
			{ID: "calm", Name: "Calm", ModuleCount: 3, Badges: []domain.BadgeDef{
				{ID: "X", Name: "Explorer", Description: "Finished A", Icon: "*"},
			}},
			{ID: "energy", Name: "Energy", ModuleCount: 3},
		},
		[]domain.Module{
			{ID: "A", IslandID: "calm", Points: 100, BadgeID: "X"},
			{ID: "B", IslandID: "calm", Points: 100},
			{ID: "C", IslandID: "calm", Points: 100, BadgeID: "ghost"},
			{ID: "E1", IslandID: "energy", Points: 100},
		},
		[]domain.Challenge{{ID: "walk", Points: 50}, {ID: "breathe", Points: 50}},
	)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return c
}

func newEngine(t *testing.T) *engagement.Engine {
	t.Helper()
	store := progress.NewStore(progress.NewMemoryBackend(), quiet)
	e := engagement.NewEngine(store, testCatalog(t), quiet)
	e.SetClock(func() time.Time { return fixedNow })
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Module Completion
// ═══════════════════════════════════════════════════════════════════════════

func TestCompleteModule_Scenario(t *testing.T) {
	e := newEngine(t)

	e.CompleteModule("A", "calm")
	p := e.CompleteModule("B", "calm")

	if p.TotalPoints != 250 {
		t.Errorf("TotalPoints = %d, want 250", p.TotalPoints)
	}
	if len(p.Badges) != 1 || p.Badges[0].ID != "X" {
		t.Fatalf("Badges = %+v, want [X]", p.Badges)
	}
	if !p.Badges[0].EarnedAt.Equal(fixedNow) {
		t.Errorf("EarnedAt = %v, want %v", p.Badges[0].EarnedAt, fixedNow)
	}
	ip := p.IslandProgress["calm"]
	if ip.Progress != 67 || ip.CompletedModules != 2 {
		t.Errorf("island progress = %+v, want 67%% / 2", ip)
	}
	if got := p.CompletedModules["A"]; got.IslandID != "calm" || !got.CompletedAt.Equal(fixedNow) {
		t.Errorf("completedModules[A] = %+v", got)
	}
}

func TestCompleteModule_Idempotent(t *testing.T) {
	e := newEngine(t)

	first := e.CompleteModule("A", "calm")
	second := e.CompleteModule("A", "calm")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeat completion changed state:\n first  %+v\n second %+v", first, second)
	}
	if second.TotalPoints != 150 {
		t.Errorf("TotalPoints = %d, want 150", second.TotalPoints)
	}
	if len(second.Badges) != 1 {
		t.Errorf("Badges = %d, want 1", len(second.Badges))
	}
}

func TestCompleteModule_IslandProgressFormula(t *testing.T) {
	tests := []struct {
		completed int
		want      int
	}{
		{0, 0},
		{1, 33},
		{2, 67},
		{3, 100},
		{4, 100}, // capped
	}
	for _, tt := range tests {
		if got := engagement.IslandPercent(tt.completed); got != tt.want {
			t.Errorf("IslandPercent(%d) = %d, want %d", tt.completed, got, tt.want)
		}
	}

	e := newEngine(t)
	e.CompleteModule("A", "calm")
	e.CompleteModule("B", "calm")
	p := e.CompleteModule("C", "calm")
	if ip := p.IslandProgress["calm"]; ip.Progress != 100 || ip.CompletedModules != 3 {
		t.Errorf("island progress = %+v, want 100%% / 3", ip)
	}
	if _, ok := p.IslandProgress["energy"]; ok {
		t.Error("untouched island should have no progress entry")
	}
}

func TestCompleteModule_CatalogMisses(t *testing.T) {
	e := newEngine(t)

	// Badge id the island does not define
	p := e.CompleteModule("C", "calm")
	if len(p.Badges) != 0 || p.TotalPoints != 100 {
		t.Errorf("ghost badge: badges=%v points=%d, want none/100", p.Badges, p.TotalPoints)
	}

	// Module absent from the catalog: still completes, no badge
	p = e.CompleteModule("unknown", "calm")
	if !p.IsModuleCompleted("unknown") || p.TotalPoints != 200 {
		t.Errorf("unknown module: completed=%v points=%d", p.IsModuleCompleted("unknown"), p.TotalPoints)
	}
	if p.IslandProgress["calm"].CompletedModules != 2 {
		t.Errorf("calm completed = %d, want 2", p.IslandProgress["calm"].CompletedModules)
	}

	// Module completed under a different island than its badge table
	p = e.CompleteModule("A", "energy")
	if p.HasBadge("X") {
		t.Error("badge X should not resolve against island energy")
	}

	// Island absent from the catalog: progress is still tracked under its id
	p = e.CompleteModule("B", "nowhere")
	if got := p.IslandProgress["nowhere"]; got.CompletedModules != 1 || got.Progress != 33 {
		t.Errorf("nowhere progress = %+v, want 1 module / 33%%", got)
	}
}

func TestCompleteModule_NoRetroactiveBadge(t *testing.T) {
	e := newEngine(t)

	// First completed under a wrong island: no badge
	e.CompleteModule("A", "energy")
	// Later call with the right island is a no-op
	p := e.CompleteModule("A", "calm")
	if p.HasBadge("X") {
		t.Error("badge must not be awarded retroactively")
	}
	if p.TotalPoints != 100 {
		t.Errorf("TotalPoints = %d, want 100", p.TotalPoints)
	}
}

func TestCompleteModule_BadgeUniqueAcrossModules(t *testing.T) {
	c, err := catalog.New(
		[]domain.Island{{ID: "calm", Name: "Calm", Badges: []domain.BadgeDef{{ID: "X", Name: "X"}}}},
		[]domain.Module{
			{ID: "A", IslandID: "calm", BadgeID: "X"},
			{ID: "B", IslandID: "calm", BadgeID: "X"},
		},
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}
	e := engagement.NewEngine(progress.NewStore(progress.NewMemoryBackend(), quiet), c, quiet)

	e.CompleteModule("A", "calm")
	p := e.CompleteModule("B", "calm")
	if len(p.Badges) != 1 {
		t.Errorf("Badges = %d, want 1 (shared badge awarded once)", len(p.Badges))
	}
	if p.TotalPoints != 250 {
		t.Errorf("TotalPoints = %d, want 250", p.TotalPoints)
	}
}

func TestCompleteModule_BadgeResolvedByKey(t *testing.T) {
	c, err := catalog.New(
		[]domain.Island{{ID: "calm", Name: "Calm", Badges: []domain.BadgeDef{
			{Key: "breath", ID: "breath_master", Name: "Breath master"},
		}}},
		[]domain.Module{{ID: "A", IslandID: "calm", BadgeID: "breath"}},
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}
	e := engagement.NewEngine(progress.NewStore(progress.NewMemoryBackend(), quiet), c, quiet)

	p := e.CompleteModule("A", "calm")
	if len(p.Badges) != 1 || p.Badges[0].ID != "breath_master" {
		t.Errorf("Badges = %+v, want [breath_master]", p.Badges)
	}
	if p.TotalPoints != 150 {
		t.Errorf("TotalPoints = %d, want 150", p.TotalPoints)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Challenges, Responses, Reset
// ═══════════════════════════════════════════════════════════════════════════

func TestCompleteChallenge(t *testing.T) {
	e := newEngine(t)

	p := e.CompleteChallenge("walk")
	if p.TotalPoints != 50 || !p.IsChallengeCompleted("walk") {
		t.Errorf("after walk: points=%d completed=%v", p.TotalPoints, p.CompletedChallenges)
	}
	p = e.CompleteChallenge("walk")
	if p.TotalPoints != 50 || len(p.CompletedChallenges) != 1 {
		t.Errorf("repeat: points=%d challenges=%v, want 50/[walk]", p.TotalPoints, p.CompletedChallenges)
	}
}

func TestPointAccounting(t *testing.T) {
	e := newEngine(t)

	ops := []func(){
		func() { e.CompleteModule("A", "calm") },
		func() { e.CompleteChallenge("walk") },
		func() { e.CompleteModule("A", "calm") },
		func() { e.CompleteModule("B", "calm") },
		func() { e.CompleteChallenge("breathe") },
		func() { e.CompleteChallenge("walk") },
		func() { e.CompleteModule("E1", "energy") },
	}
	for _, op := range ops {
		op()
	}

	p := e.Progress()
	want := 100*len(p.CompletedModules) + 50*len(p.Badges) + 50*len(p.CompletedChallenges)
	if p.TotalPoints != want {
		t.Errorf("TotalPoints = %d, want %d", p.TotalPoints, want)
	}
	if p.TotalPoints != 450 {
		t.Errorf("TotalPoints = %d, want 450", p.TotalPoints)
	}
}

func TestSaveModuleResponses_Overwrites(t *testing.T) {
	e := newEngine(t)

	e.SaveModuleResponses("A", map[string]domain.Answer{
		"q1": domain.ScaleAnswer(2),
		"q2": domain.TextAnswer("old"),
	})
	p := e.SaveModuleResponses("A", map[string]domain.Answer{
		"q1": domain.ScaleAnswer(5),
	})

	got := p.ModuleResponses["A"]
	if len(got.Responses) != 1 {
		t.Fatalf("responses = %v, want wholesale overwrite with 1 entry", got.Responses)
	}
	if got.Responses["q1"].Scale != 5 {
		t.Errorf("q1 = %v, want 5", got.Responses["q1"])
	}
	if !got.CompletedAt.Equal(fixedNow) {
		t.Errorf("CompletedAt = %v, want %v", got.CompletedAt, fixedNow)
	}
	if p.IsModuleCompleted("A") {
		t.Error("saving responses alone must not complete the module")
	}
}

func TestResetAllData(t *testing.T) {
	e := newEngine(t)

	e.CompleteModule("A", "calm")
	e.CompleteChallenge("walk")
	if !e.ResetAllData() {
		t.Fatal("ResetAllData() = false")
	}

	p := e.Progress()
	if !reflect.DeepEqual(p, domain.DefaultProgress()) {
		t.Errorf("after reset = %+v, want defaults", p)
	}
	if p.TotalPoints != 0 || p.Streak != 3 || p.WellnessScore != 65 {
		t.Errorf("defaults = %d/%d/%d", p.TotalPoints, p.Streak, p.WellnessScore)
	}
}

func TestEngine_Persists(t *testing.T) {
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	cat := testCatalog(t)

	e1 := engagement.NewEngine(progress.NewStore(db, quiet), cat, quiet)
	e1.CompleteModule("A", "calm")

	e2 := engagement.NewEngine(progress.NewStore(db, quiet), cat, quiet)
	p := e2.Progress()
	if p.TotalPoints != 150 || !p.HasBadge("X") {
		t.Errorf("reloaded: points=%d badges=%v", p.TotalPoints, p.Badges)
	}
}

func TestEngine_ConcurrentCompletions(t *testing.T) {
	e := newEngine(t)

	var wg sync.WaitGroup
	for _, id := range []string{"A", "B", "C", "E1"} {
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				island := "calm"
				if id == "E1" {
					island = "energy"
				}
				e.CompleteModule(id, island)
			}(id)
		}
	}
	wg.Wait()

	p := e.Progress()
	if len(p.CompletedModules) != 4 {
		t.Errorf("completed = %d, want 4", len(p.CompletedModules))
	}
	if p.TotalPoints != 450 {
		t.Errorf("TotalPoints = %d, want 450 (no lost updates)", p.TotalPoints)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Level & XP
// ═══════════════════════════════════════════════════════════════════════════

func TestLevelFor(t *testing.T) {
	tests := []struct {
		points  int
		level   int
		xp      int
		percent float64
	}{
		{0, 1, 0, 0},
		{250, 1, 250, 50},
		{499, 1, 499, 99.8},
		{500, 2, 0, 0},
		{1250, 3, 250, 50},
	}
	for _, tt := range tests {
		got := engagement.LevelFor(tt.points)
		if got.Level != tt.level || got.XPInLevel != tt.xp || got.XPPercent != tt.percent {
			t.Errorf("LevelFor(%d) = %+v, want level %d xp %d pct %.1f",
				tt.points, got, tt.level, tt.xp, tt.percent)
		}
		if got.XPToNext != 500-tt.xp {
			t.Errorf("LevelFor(%d).XPToNext = %d, want %d", tt.points, got.XPToNext, 500-tt.xp)
		}
	}
}

func TestPointsForLevel(t *testing.T) {
	if p := engagement.PointsForLevel(1); p != 0 {
		t.Errorf("level 1 starts at %d, want 0", p)
	}
	if p := engagement.PointsForLevel(3); p != 1000 {
		t.Errorf("level 3 starts at %d, want 1000", p)
	}
	for lvl := 1; lvl <= 10; lvl++ {
		if got := engagement.LevelFor(engagement.PointsForLevel(lvl)).Level; got != lvl {
			t.Errorf("LevelFor(PointsForLevel(%d)) = %d", lvl, got)
		}
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Island Projection & Unlock Gate
// ═══════════════════════════════════════════════════════════════════════════

func TestIslandSummaryFor_Defaults(t *testing.T) {
	got := engagement.IslandSummaryFor(domain.DefaultProgress(), "calm")
	if got.CompletedCount != 0 || got.Percent != 0 {
		t.Errorf("summary = %+v, want zeros", got)
	}
}

func TestIslandModules_LinearGate(t *testing.T) {
	e := newEngine(t)
	cat := e.Catalog()

	unlocked := func() []bool {
		var out []bool
		for _, v := range engagement.IslandModules(cat, e.Progress(), "calm") {
			out = append(out, v.Unlocked)
		}
		return out
	}

	if got := unlocked(); !reflect.DeepEqual(got, []bool{true, false, false}) {
		t.Errorf("fresh = %v, want [true false false]", got)
	}
	e.CompleteModule("A", "calm")
	if got := unlocked(); !reflect.DeepEqual(got, []bool{true, true, false}) {
		t.Errorf("after A = %v, want [true true false]", got)
	}
	e.CompleteModule("B", "calm")
	if got := unlocked(); !reflect.DeepEqual(got, []bool{true, true, true}) {
		t.Errorf("after B = %v, want all unlocked", got)
	}

	if !engagement.ModuleUnlocked(cat, e.Progress(), "E1") {
		t.Error("first module of another island is always unlocked")
	}
	if engagement.ModuleUnlocked(cat, e.Progress(), "missing") {
		t.Error("unknown module should be locked")
	}
}

func TestIslandModules_GateIgnoresOtherIslands(t *testing.T) {
	e := newEngine(t)
	e.CompleteModule("E1", "energy")

	if engagement.ModuleUnlocked(e.Catalog(), e.Progress(), "B") {
		t.Error("completing another island's module must not unlock B")
	}
}

func TestBuildOverview(t *testing.T) {
	e := newEngine(t)
	e.CompleteModule("A", "calm")
	e.CompleteChallenge("walk")

	ov := engagement.BuildOverview(e.Catalog(), e.Progress())
	if ov.TotalPoints != 200 || ov.Level.Level != 1 || ov.BadgeCount != 1 {
		t.Errorf("overview = points %d level %d badges %d", ov.TotalPoints, ov.Level.Level, ov.BadgeCount)
	}
	if len(ov.Islands) != 2 || ov.Islands[0].Summary.Percent != 33 {
		t.Errorf("islands = %+v", ov.Islands)
	}
	if !ov.Islands[0].Badges[0].Earned {
		t.Error("badge X should be marked earned")
	}
	if !ov.Challenges[0].Completed || ov.Challenges[1].Completed {
		t.Errorf("challenges = %+v", ov.Challenges)
	}
}

func TestDefaultCatalog_FullIsland(t *testing.T) {
	store := progress.NewStore(progress.NewMemoryBackend(), quiet)
	e := engagement.NewEngine(store, catalog.Default(), quiet)

	var p domain.UserProgress
	for _, m := range catalog.Default().ModulesForIsland("equilibre") {
		p = e.CompleteModule(m.ID, "equilibre")
	}
	if p.TotalPoints != 450 {
		t.Errorf("TotalPoints = %d, want 450 (3 modules + 3 badges)", p.TotalPoints)
	}
	want := []string{"explorer_equilibre", "maitre_temps", "chercheur_sens"}
	for i, id := range want {
		if p.Badges[i].ID != id {
			t.Errorf("badge[%d] = %s, want %s", i, p.Badges[i].ID, id)
		}
	}
	if p.IslandProgress["equilibre"].Progress != 100 {
		t.Errorf("progress = %d, want 100", p.IslandProgress["equilibre"].Progress)
	}
}
