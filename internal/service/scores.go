package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/examscores/scorebot/core/logger"
	"github.com/examscores/scorebot/internal/domain"
)

// ScoreStore is the persistence the score service needs.
type ScoreStore interface {
	UpsertScore(ctx context.Context, studentID int64, subject string, score int) (domain.Score, error)
	FindScoresByStudent(ctx context.Context, studentID int64) ([]domain.Score, error)
}

// Scores records and lists exam scores.
type Scores struct {
	store    ScoreStore
	validate *Validator
}

// NewScores wires the score service.
func NewScores(store ScoreStore, v *Validator) *Scores {
	if v == nil {
		v = NewValidator()
	}
	return &Scores{store: store, validate: v}
}

// Upsert validates in before touching the store, then creates or overwrites
// the (student, subject) score.
func (s *Scores) Upsert(ctx context.Context, studentID int64, in domain.ScoreUpsert) (domain.Score, error) {
	if err := s.validate.Struct(in); err != nil {
		return domain.Score{}, err
	}
	sc, err := s.store.UpsertScore(ctx, studentID, in.Subject, *in.Score)
	if err != nil {
		s.logFailure(ctx, "score.upsert", studentID, err)
		return domain.Score{}, err
	}
	logger.LogEvent(ctx, logger.SVCScores, slog.LevelInfo, "score.upsert",
		slog.String("status", "ok"),
		slog.Int64("student_id", studentID),
		slog.Int64("score_id", sc.ID),
		slog.String("subject", logger.SanitizeLimit(sc.Subject, 64)),
		slog.Int("score", sc.Score),
	)
	return sc, nil
}

// List returns the student's scores in insertion order.
func (s *Scores) List(ctx context.Context, studentID int64) ([]domain.Score, error) {
	scores, err := s.store.FindScoresByStudent(ctx, studentID)
	if err != nil {
		s.logFailure(ctx, "score.list", studentID, err)
		return nil, err
	}
	return scores, nil
}

func (s *Scores) logFailure(ctx context.Context, event string, studentID int64, err error) {
	level, status := slog.LevelError, "fail"
	if errors.Is(err, domain.ErrNotFound) {
		level, status = slog.LevelInfo, "not_found"
	}
	logger.LogEvent(ctx, logger.SVCScores, level, event,
		slog.String("status", status),
		slog.Int64("student_id", studentID),
		slog.String("err", err.Error()),
	)
}
