package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ikigai-wellness/ikigai/internal/app/quiz"
	"github.com/ikigai-wellness/ikigai/internal/domain"
)

// ─── Questionnaire Sessions ─────────────────────────────────────────────────

type openSessionRequest struct {
	ModuleID string `json:"module_id" validate:"required"`
}

type answerRequest struct {
	QuestionID string         `json:"question_id" validate:"required"`
	Answer     *domain.Answer `json:"answer" validate:"required"`
}

type toggleRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	OptionID   string `json:"option_id" validate:"required"`
}

type sessionResponse struct {
	ID      string        `json:"id"`
	Session quiz.Snapshot `json:"session"`
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	m, ok := s.unlockedModule(w, req.ModuleID)
	if !ok {
		return
	}
	id, sess := s.sessions.Open(m)
	s.log.Debug("session opened", "session", id, "module", m.ID, "read_only", sess.ReadOnly())
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id, Session: sess.Snapshot()})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Session: sess.Snapshot()})
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Close(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, domain.ErrSessionNotFound.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.transition(w, id, sess, sess.RecordAnswer(req.QuestionID, *req.Answer), "answer rejected")
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req toggleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.transition(w, id, sess, sess.Toggle(req.QuestionID, req.OptionID), "not a checkbox option")
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.transition(w, id, sess, sess.Advance(), "current question is not answered")
}

func (s *Server) handleRetreat(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.transition(w, id, sess, sess.Retreat(), "already at the first question")
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, *quiz.Session, bool) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return "", nil, false
	}
	return id, sess, true
}

// transition reports the session after a state-machine call. A refused
// call is 409 on a finished session and 422 otherwise.
func (s *Server) transition(w http.ResponseWriter, id string, sess *quiz.Session, accepted bool, reason string) {
	if !accepted {
		if sess.State() == quiz.Finished {
			writeError(w, http.StatusConflict, "session is finished")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, reason)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, Session: sess.Snapshot()})
}
