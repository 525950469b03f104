// Package storage persists students and scores with sqlx.
// Queries are written with ? placeholders and rebound for the active driver.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/examscores/scorebot/internal/domain"
)

const (
	insertStudentSQL = `INSERT INTO students (first_name, last_name) VALUES (?, ?)
RETURNING id, first_name, last_name`

	selectStudentSQL = `SELECT id, first_name, last_name FROM students WHERE id = ?`

	studentExistsSQL = `SELECT EXISTS (SELECT 1 FROM students WHERE id = ?)`

	// One statement so concurrent writers for the same pair never create a second row.
	upsertScoreSQL = `INSERT INTO scores (student_id, subject, score) VALUES (?, ?, ?)
ON CONFLICT (student_id, subject) DO UPDATE SET score = excluded.score
RETURNING id, subject, score, student_id`

	selectScoresSQL = `SELECT id, subject, score, student_id FROM scores WHERE student_id = ? ORDER BY id`
)

// Store is the relational repository behind the API.
type Store struct {
	db *sqlx.DB
}

// New wraps an open database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateStudent inserts a new student. Identical names produce distinct rows.
func (s *Store) CreateStudent(ctx context.Context, firstName, lastName string) (domain.Student, error) {
	var st domain.Student
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(insertStudentSQL), firstName, lastName).StructScan(&st)
	if err != nil {
		return domain.Student{}, fmt.Errorf("insert student: %w", err)
	}
	return st, nil
}

// GetStudent loads a student by id.
func (s *Store) GetStudent(ctx context.Context, id int64) (domain.Student, error) {
	var st domain.Student
	err := s.db.GetContext(ctx, &st, s.db.Rebind(selectStudentSQL), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Student{}, domain.ErrStudentNotFound
	}
	if err != nil {
		return domain.Student{}, fmt.Errorf("select student %d: %w", id, err)
	}
	return st, nil
}

// UpsertScore writes the student's score for subject, creating the row on first
// submission and overwriting it afterwards. The row id is kept across updates.
func (s *Store) UpsertScore(ctx context.Context, studentID int64, subject string, score int) (domain.Score, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Score{}, fmt.Errorf("begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := studentExists(ctx, tx, studentID); err != nil {
		return domain.Score{}, err
	}

	var out domain.Score
	if err := tx.QueryRowxContext(ctx, tx.Rebind(upsertScoreSQL), studentID, subject, score).StructScan(&out); err != nil {
		return domain.Score{}, fmt.Errorf("upsert score: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Score{}, fmt.Errorf("commit upsert: %w", err)
	}
	return out, nil
}

// FindScoresByStudent returns the student's scores in insertion order.
// The slice is empty, never nil, when the student has no scores.
func (s *Store) FindScoresByStudent(ctx context.Context, studentID int64) ([]domain.Score, error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin list: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := studentExists(ctx, tx, studentID); err != nil {
		return nil, err
	}

	scores := []domain.Score{}
	if err := tx.SelectContext(ctx, &scores, tx.Rebind(selectScoresSQL), studentID); err != nil {
		return nil, fmt.Errorf("select scores: %w", err)
	}
	return scores, nil
}

func studentExists(ctx context.Context, tx *sqlx.Tx, id int64) error {
	var ok bool
	if err := tx.GetContext(ctx, &ok, tx.Rebind(studentExistsSQL), id); err != nil {
		return fmt.Errorf("check student %d: %w", id, err)
	}
	if !ok {
		return domain.ErrStudentNotFound
	}
	return nil
}
