// Package domain holds the records exchanged between the store, the API and the bot.
package domain

import "slices"

// Student is a registered exam taker.
type Student struct {
	ID        int64  `db:"id" json:"id"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
}

// Score is the result of one student in one subject.
type Score struct {
	ID        int64  `db:"id" json:"id"`
	Subject   string `db:"subject" json:"subject"`
	Score     int    `db:"score" json:"score"`
	StudentID int64  `db:"student_id" json:"student_id"`
}

// StudentCreate is the payload of student registration.
type StudentCreate struct {
	FirstName string `json:"first_name" validate:"required,min=1,max=50"`
	LastName  string `json:"last_name" validate:"required,min=1,max=50"`
}

// ScoreUpsert is the payload of score submission.
// Score is a pointer so that a missing value and zero can be told apart.
type ScoreUpsert struct {
	Subject string `json:"subject" validate:"required,min=1,max=50"`
	Score   *int   `json:"score" validate:"required,min=0,max=100"`
}

// Subjects is the closed list the bot offers for score entry.
var Subjects = []string{
	"Mathematics",
	"Russian",
	"Physics",
	"Computer Science",
	"Chemistry",
	"Literature",
	"Biology",
}

// IsSubject reports whether s exactly matches one of Subjects.
func IsSubject(s string) bool {
	return slices.Contains(Subjects, s)
}
