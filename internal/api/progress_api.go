package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ikigai-wellness/ikigai/internal/app/engagement"
	"github.com/ikigai-wellness/ikigai/internal/domain"
)

// ─── Progress ───────────────────────────────────────────────────────────────

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Progress())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if !s.engine.ResetAllData() {
		writeError(w, http.StatusInternalServerError, "reset failed")
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Progress())
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, engagement.LevelFor(s.engine.Progress().TotalPoints))
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, engagement.BuildOverview(s.engine.Catalog(), s.engine.Progress()))
}

// ─── Islands & Modules ──────────────────────────────────────────────────────

type islandListItem struct {
	Island  domain.Island            `json:"island"`
	Summary engagement.IslandSummary `json:"summary"`
}

type islandDetail struct {
	Island  domain.Island            `json:"island"`
	Summary engagement.IslandSummary `json:"summary"`
	Modules []engagement.ModuleView  `json:"modules"`
	Badges  []engagement.BadgeView   `json:"badges"`
}

func (s *Server) handleIslands(w http.ResponseWriter, r *http.Request) {
	p := s.engine.Progress()
	islands := s.engine.Catalog().Islands()
	out := make([]islandListItem, 0, len(islands))
	for _, is := range islands {
		out = append(out, islandListItem{Island: is, Summary: engagement.IslandSummaryFor(p, is.ID)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"islands": out})
}

func (s *Server) handleIsland(w http.ResponseWriter, r *http.Request) {
	cat := s.engine.Catalog()
	is, ok := cat.Island(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrIslandNotFound.Error())
		return
	}
	p := s.engine.Progress()
	writeJSON(w, http.StatusOK, islandDetail{
		Island:  is,
		Summary: engagement.IslandSummaryFor(p, is.ID),
		Modules: engagement.IslandModules(cat, p, is.ID),
		Badges:  engagement.BadgeCatalog(is, p),
	})
}

// handleCompleteModule completes a module under its catalog island.
// Locked modules are refused; the engine itself does not gate.
func (s *Server) handleCompleteModule(w http.ResponseWriter, r *http.Request) {
	m, ok := s.unlockedModule(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.engine.CompleteModule(m.ID, m.IslandID))
}

func (s *Server) handleCompleteChallenge(w http.ResponseWriter, r *http.Request) {
	ch, ok := s.engine.Catalog().Challenge(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrChallengeNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.engine.CompleteChallenge(ch.ID))
}

// unlockedModule resolves a module and applies the unlock gate, writing
// the error response itself on failure. Completed modules always pass.
func (s *Server) unlockedModule(w http.ResponseWriter, id string) (domain.Module, bool) {
	cat := s.engine.Catalog()
	m, ok := cat.Module(id)
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrModuleNotFound.Error())
		return domain.Module{}, false
	}
	p := s.engine.Progress()
	if !p.IsModuleCompleted(id) && !engagement.ModuleUnlocked(cat, p, id) {
		writeError(w, http.StatusConflict, "module is locked")
		return domain.Module{}, false
	}
	return m, true
}
