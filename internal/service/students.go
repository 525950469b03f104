// Package service validates requests and applies them to the store.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/examscores/scorebot/core/logger"
	"github.com/examscores/scorebot/internal/domain"
)

// StudentStore is the persistence the student service needs.
type StudentStore interface {
	CreateStudent(ctx context.Context, firstName, lastName string) (domain.Student, error)
	GetStudent(ctx context.Context, id int64) (domain.Student, error)
}

// Students creates and reads students.
type Students struct {
	store    StudentStore
	validate *Validator
}

// NewStudents wires the student service.
func NewStudents(store StudentStore, v *Validator) *Students {
	if v == nil {
		v = NewValidator()
	}
	return &Students{store: store, validate: v}
}

// Create validates in and always inserts a new student.
func (s *Students) Create(ctx context.Context, in domain.StudentCreate) (domain.Student, error) {
	if err := s.validate.Struct(in); err != nil {
		return domain.Student{}, err
	}
	st, err := s.store.CreateStudent(ctx, in.FirstName, in.LastName)
	if err != nil {
		logger.LogEvent(ctx, logger.SVCStudents, slog.LevelError, "student.create",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return domain.Student{}, err
	}
	logger.LogEvent(ctx, logger.SVCStudents, slog.LevelInfo, "student.create",
		slog.String("status", "ok"),
		slog.Int64("student_id", st.ID),
	)
	return st, nil
}

// Get returns the student or domain.ErrStudentNotFound.
func (s *Students) Get(ctx context.Context, id int64) (domain.Student, error) {
	st, err := s.store.GetStudent(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.LogEvent(ctx, logger.SVCStudents, slog.LevelError, "student.get",
			slog.String("status", "fail"),
			slog.Int64("student_id", id),
			slog.String("err", err.Error()),
		)
	}
	return st, err
}
