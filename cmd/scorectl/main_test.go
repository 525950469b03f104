package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examscores/scorebot/internal/apiclient"
	"github.com/examscores/scorebot/internal/domain"
)

type stubFetcher struct {
	student domain.Student
	scores  []domain.Score
	err     error
}

func (s stubFetcher) GetStudent(context.Context, int64) (domain.Student, error) {
	return s.student, s.err
}

func (s stubFetcher) ListScores(context.Context, int64) ([]domain.Score, error) {
	return s.scores, nil
}

func TestReportTable(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	err := report(context.Background(), stubFetcher{
		student: domain.Student{ID: 4, FirstName: "Ann", LastName: "Lee"},
		scores: []domain.Score{
			{ID: 1, Subject: "Physics", Score: 90, StudentID: 4},
			{ID: 2, Subject: "Biology", Score: 75, StudentID: 4},
		},
	}, 4, &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Student #4: Ann Lee")
	assert.Contains(t, out, "Physics")
	assert.Contains(t, out, "90")
	assert.Contains(t, out, "165")
}

func TestReportEmpty(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	err := report(context.Background(), stubFetcher{student: domain.Student{ID: 2}}, 2, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No scores yet.")
}

func TestReportUpstreamError(t *testing.T) {
	uerr := &apiclient.UpstreamError{Op: apiclient.OpGetStudent, StatusCode: 404, Body: `{"detail":"Student not found"}`}
	err := report(context.Background(), stubFetcher{err: uerr}, 9, &bytes.Buffer{})
	assert.ErrorIs(t, err, uerr)
}

func TestRunRejectsBadArgs(t *testing.T) {
	t.Setenv("CONFIG_PATH", t.TempDir()+"/none.yaml")
	assert.Error(t, run(nil, &bytes.Buffer{}))
	assert.ErrorContains(t, run([]string{"abc"}, &bytes.Buffer{}), "invalid student id")
}
