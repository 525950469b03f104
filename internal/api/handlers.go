package api

import (
	"context"
	"net/http"
	"time"

	"github.com/examscores/scorebot/internal/domain"
)

// StudentService is what the student endpoints call.
type StudentService interface {
	Create(ctx context.Context, in domain.StudentCreate) (domain.Student, error)
	Get(ctx context.Context, id int64) (domain.Student, error)
}

// ScoreService is what the score endpoints call.
type ScoreService interface {
	Upsert(ctx context.Context, studentID int64, in domain.ScoreUpsert) (domain.Score, error)
	List(ctx context.Context, studentID int64) ([]domain.Score, error)
}

// Pinger reports store health for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type handlers struct {
	students StudentService
	scores   ScoreService
	health   Pinger
}

func (h *handlers) createStudent(w http.ResponseWriter, r *http.Request) {
	var in domain.StudentCreate
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	st, err := h.students.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (h *handlers) getStudent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	st, err := h.students.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handlers) upsertScore(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in domain.ScoreUpsert
	if err := decodeBody(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	sc, err := h.scores.Upsert(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (h *handlers) listScores(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	scores, err := h.scores.List(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if scores == nil {
		scores = []domain.Score{}
	}
	writeJSON(w, http.StatusOK, scores)
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.health.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
