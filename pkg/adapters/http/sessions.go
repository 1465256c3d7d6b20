package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/session"
	"github.com/go-chi/chi/v5"
)

// SessionView is the current configuration of an interactive session.
type SessionView struct {
	ID      string            `json:"id"`
	Machine string            `json:"machine,omitempty"`
	Input   string            `json:"input"`
	Status  domain.Status     `json:"status"`
	Reason  domain.HaltReason `json:"reason,omitempty"`
	State   domain.State      `json:"state"`
	Steps   int               `json:"steps"`
	Head    int               `json:"head"`
	Window  string            `json:"window"`
	CanUndo bool              `json:"can_undo"`
	Tape    domain.Snapshot   `json:"tape"`
}

func viewOf(live *session.Live) SessionView {
	snap := live.Snapshot()
	return SessionView{
		ID:      live.ID(),
		Machine: live.Machine().Name(),
		Input:   live.Input,
		Status:  live.Status(),
		Reason:  live.Reason(),
		State:   live.State(),
		Steps:   live.Steps(),
		Head:    live.Head(),
		Window:  snap.Window(),
		CanUndo: live.CanUndo(),
		Tape:    snap,
	}
}

// ListSessions handles the GET /v1/sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"sessions": s.Sessions.List()})
}

// CreateSession handles the POST /v1/sessions request.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	body, m, ok := s.decodeRunRequest(w, r)
	if !ok {
		return
	}

	id, err := s.Sessions.Start(r.Context(), m, body.Input, turing.WithStepLimit(body.StepLimit))
	if err != nil {
		if errors.Is(err, session.ErrLimitReached) {
			s.writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		s.writeRunError(w, err)
		return
	}

	s.withSession(w, r, id, http.StatusCreated, func(ctx context.Context, live *session.Live) error {
		return nil
	})
}

// GetSession handles the GET /v1/sessions/{id} request.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, chi.URLParam(r, "id"), http.StatusOK, func(ctx context.Context, live *session.Live) error {
		return nil
	})
}

// StepSession handles the POST /v1/sessions/{id}/step request.
func (s *Server) StepSession(w http.ResponseWriter, r *http.Request) {
	count := 1
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid count %q: expected a positive integer", raw))
			return
		}
		count = n
	}

	s.withSession(w, r, chi.URLParam(r, "id"), http.StatusOK, func(ctx context.Context, live *session.Live) error {
		for i := 0; i < count && live.Step(ctx) == domain.StatusRunning; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		return nil
	})
}

// UndoSession handles the POST /v1/sessions/{id}/undo request.
func (s *Server) UndoSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, chi.URLParam(r, "id"), http.StatusOK, func(ctx context.Context, live *session.Live) error {
		return live.Undo()
	})
}

// RunSession handles the POST /v1/sessions/{id}/run request.
func (s *Server) RunSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, chi.URLParam(r, "id"), http.StatusOK, func(ctx context.Context, live *session.Live) error {
		_, err := live.Run(ctx)
		return err
	})
}

// DeleteSession handles the DELETE /v1/sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FinishSession handles the POST /v1/sessions/{id}/finish request.
func (s *Server) FinishSession(w http.ResponseWriter, r *http.Request) {
	record, err := s.Sessions.Finish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, present(record, traceWanted(r)))
}

// withSession runs fn under the session lock and answers with the resulting view.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, id string, status int, fn func(context.Context, *session.Live) error) {
	var view SessionView
	err := s.Sessions.WithLock(r.Context(), id, func(ctx context.Context, live *session.Live) error {
		if err := fn(ctx, live); err != nil {
			return err
		}
		view = viewOf(live)
		return nil
	})
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	s.writeJSON(w, status, view)
}

func (s *Server) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		s.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, domain.ErrNothingToUndo), errors.Is(err, session.ErrStillRunning):
		s.writeError(w, http.StatusConflict, err)
	default:
		s.writeError(w, http.StatusInternalServerError, err)
	}
}
