// Package quiz runs the per-module questionnaire: one question per step,
// a required-answer gate on advance, and submission into the engine on
// the last step.
package quiz

import (
	"fmt"
	"sync"

	"github.com/ikigai-wellness/ikigai/internal/domain"
	"github.com/ikigai-wellness/ikigai/internal/infra/metrics"
)

// Engine is the slice of the gamification engine a session drives.
// engagement.Engine implements it.
type Engine interface {
	Progress() domain.UserProgress
	SaveModuleResponses(moduleID string, responses map[string]domain.Answer) domain.UserProgress
	CompleteModule(moduleID, islandID string) domain.UserProgress
}

// State is the session phase.
type State int

const (
	Answering State = iota
	Finished
)

func (s State) String() string {
	if s == Finished {
		return "finished"
	}
	return "answering"
}

// MarshalText renders the state as "answering" or "finished".
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText parses the MarshalText form.
func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "answering":
		*s = Answering
	case "finished":
		*s = Finished
	default:
		return fmt.Errorf("quiz: unknown state %q", b)
	}
	return nil
}

// Session is the questionnaire state machine for one module. The step
// position is never persisted; only the response map is.
// Safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	engine    Engine
	module    domain.Module
	state     State
	step      int
	readOnly  bool
	responses map[string]domain.Answer
}

// Open starts a session at step 0, seeded with any stored answers for the
// module. A module that is already completed opens read-only.
func Open(engine Engine, module domain.Module) *Session {
	p := engine.Progress()
	s := &Session{
		engine:    engine,
		module:    module,
		responses: domain.CloneResponses(p.ModuleResponses[module.ID].Responses),
	}
	mode := "answer"
	if p.IsModuleCompleted(module.ID) {
		s.readOnly = true
		s.state = Finished
		mode = "review"
	}
	metrics.SessionsOpened.WithLabelValues(mode).Inc()
	return s
}

// ─── Transitions ────────────────────────────────────────────────────────────

// RecordAnswer stores an answer for questionID without advancing.
// Returns false when the session no longer accepts input.
func (s *Session) RecordAnswer(questionID string, a domain.Answer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptsInput() {
		return false
	}
	s.responses[questionID] = a.Clone()
	return true
}

// Toggle flips one option of a checkbox question, evicting the oldest
// selection when the question's max-select cap is reached. Returns false
// for unknown questions, non-checkbox questions and unknown options.
func (s *Session) Toggle(questionID, optionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptsInput() {
		return false
	}
	q, ok := s.question(questionID)
	if !ok || q.Type != domain.QuestionCheckbox || !q.HasOption(optionID) {
		return false
	}
	var current []string
	if a, ok := s.responses[questionID]; ok && a.Kind == domain.QuestionCheckbox {
		current = a.Selected
	}
	s.responses[questionID] = domain.Answer{
		Kind:     domain.QuestionCheckbox,
		Selected: ToggleSelection(current, optionID, q.MaxSelect),
	}
	return true
}

// Advance moves to the next question, or submits on the last one.
// It is rejected while the current question is unsatisfied.
func (s *Session) Advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptsInput() {
		return false
	}
	if !s.currentSatisfied() {
		metrics.AdvanceRejected.Inc()
		return false
	}
	if s.step >= len(s.module.Questions)-1 {
		s.submit()
		return true
	}
	s.step++
	return true
}

// Retreat steps back one question. Recorded answers are kept.
func (s *Session) Retreat() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.acceptsInput() || s.step == 0 {
		return false
	}
	s.step--
	return true
}

func (s *Session) submit() {
	s.engine.SaveModuleResponses(s.module.ID, s.responses)
	s.engine.CompleteModule(s.module.ID, s.module.IslandID)
	s.state = Finished
}

func (s *Session) acceptsInput() bool {
	return !s.readOnly && s.state == Answering
}

func (s *Session) currentSatisfied() bool {
	if len(s.module.Questions) == 0 {
		return true
	}
	q := s.module.Questions[s.step]
	a, ok := s.responses[q.ID]
	return Satisfied(q, a, ok)
}

func (s *Session) question(id string) (domain.Question, bool) {
	for _, q := range s.module.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return domain.Question{}, false
}

// ─── Accessors ──────────────────────────────────────────────────────────────

func (s *Session) Module() domain.Module { return s.module }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Step() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

func (s *Session) ReadOnly() bool { return s.readOnly }

// Current returns the question at the current step. ok is false for a
// module without questions.
func (s *Session) Current() (domain.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.module.Questions) == 0 {
		return domain.Question{}, false
	}
	return s.module.Questions[s.step], true
}

// Responses returns a copy of the recorded answers.
func (s *Session) Responses() map[string]domain.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneResponses(s.responses)
}

// CanAdvance reports whether Advance would currently succeed.
func (s *Session) CanAdvance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acceptsInput() && s.currentSatisfied()
}

// IsLast reports whether the current step is the submitting one.
func (s *Session) IsLast() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step >= len(s.module.Questions)-1
}

// Snapshot is a consistent read of the whole session.
type Snapshot struct {
	ModuleID   string                   `json:"module_id"`
	IslandID   string                   `json:"island_id"`
	State      State                    `json:"state"`
	Step       int                      `json:"step"`
	Total      int                      `json:"total"`
	ReadOnly   bool                     `json:"read_only"`
	CanAdvance bool                     `json:"can_advance"`
	IsLast     bool                     `json:"is_last"`
	Current    *domain.Question         `json:"current,omitempty"`
	Responses  map[string]domain.Answer `json:"responses"`
}

// Snapshot captures the session under one lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ModuleID:   s.module.ID,
		IslandID:   s.module.IslandID,
		State:      s.state,
		Step:       s.step,
		Total:      len(s.module.Questions),
		ReadOnly:   s.readOnly,
		CanAdvance: s.acceptsInput() && s.currentSatisfied(),
		IsLast:     s.step >= len(s.module.Questions)-1,
		Responses:  domain.CloneResponses(s.responses),
	}
	if len(s.module.Questions) > 0 {
		q := s.module.Questions[s.step]
		snap.Current = &q
	}
	return snap
}
