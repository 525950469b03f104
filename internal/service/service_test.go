package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examscores/scorebot/internal/domain"
	"github.com/examscores/scorebot/internal/storage/storagetest"
)

type countingStore struct {
	calls int
}

func (c *countingStore) CreateStudent(context.Context, string, string) (domain.Student, error) {
	c.calls++
	return domain.Student{ID: 1}, nil
}

func (c *countingStore) GetStudent(context.Context, int64) (domain.Student, error) {
	c.calls++
	return domain.Student{}, domain.ErrStudentNotFound
}

func (c *countingStore) UpsertScore(context.Context, int64, string, int) (domain.Score, error) {
	c.calls++
	return domain.Score{ID: 1}, nil
}

func (c *countingStore) FindScoresByStudent(context.Context, int64) ([]domain.Score, error) {
	c.calls++
	return []domain.Score{}, nil
}

func intp(v int) *int { return &v }

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	out := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		require.Len(t, f.Loc, 2)
		assert.Equal(t, "body", f.Loc[0])
		out = append(out, f.Loc[1])
	}
	return out
}

func TestScoreValidationSkipsStore(t *testing.T) {
	store := &countingStore{}
	svc := NewScores(store, nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		in     domain.ScoreUpsert
		fields []string
	}{
		{"score above range", domain.ScoreUpsert{Subject: "Math", Score: intp(101)}, []string{"score"}},
		{"score below range", domain.ScoreUpsert{Subject: "Math", Score: intp(-1)}, []string{"score"}},
		{"score missing", domain.ScoreUpsert{Subject: "Math"}, []string{"score"}},
		{"subject empty", domain.ScoreUpsert{Subject: "", Score: intp(50)}, []string{"subject"}},
		{"subject too long", domain.ScoreUpsert{Subject: strings.Repeat("x", 51), Score: intp(50)}, []string{"subject"}},
		{"both bad", domain.ScoreUpsert{Subject: "", Score: intp(200)}, []string{"subject", "score"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Upsert(ctx, 1, tc.in)
			assert.Equal(t, tc.fields, fieldNames(t, err))
		})
	}
	assert.Zero(t, store.calls)
}

func TestScoreBoundsAccepted(t *testing.T) {
	store := &countingStore{}
	svc := NewScores(store, nil)
	for _, v := range []int{0, 100} {
		_, err := svc.Upsert(context.Background(), 1, domain.ScoreUpsert{Subject: "Math", Score: intp(v)})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, store.calls)
}

func TestStudentValidation(t *testing.T) {
	store := &countingStore{}
	svc := NewStudents(store, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.StudentCreate{FirstName: "", LastName: strings.Repeat("я", 51)})
	assert.Equal(t, []string{"first_name", "last_name"}, fieldNames(t, err))
	assert.Zero(t, store.calls)

	// 50 code points are fine even when they take more bytes
	_, err = svc.Create(ctx, domain.StudentCreate{FirstName: strings.Repeat("я", 50), LastName: "Ivanov"})
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls)
}

func TestValidationMessages(t *testing.T) {
	v := NewValidator()
	err := v.Struct(domain.ScoreUpsert{Subject: "Math", Score: intp(101)})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "less_than_equal", verr.Fields[0].Type)
	assert.Equal(t, "Input should be less than or equal to 100", verr.Fields[0].Msg)

	err = v.Struct(domain.ScoreUpsert{Score: intp(1)})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "missing", verr.Fields[0].Type)
}

func TestScoresEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := storagetest.New(t)
	students := NewStudents(store, nil)
	scores := NewScores(store, nil)

	st, err := students.Create(ctx, domain.StudentCreate{FirstName: "Ivan", LastName: "Ivanov"})
	require.NoError(t, err)

	first, err := scores.Upsert(ctx, st.ID, domain.ScoreUpsert{Subject: "Math", Score: intp(85)})
	require.NoError(t, err)
	second, err := scores.Upsert(ctx, st.ID, domain.ScoreUpsert{Subject: "Math", Score: intp(90)})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	list, err := scores.List(ctx, st.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 90, list[0].Score)

	_, err = scores.Upsert(ctx, st.ID+1, domain.ScoreUpsert{Subject: "Math", Score: intp(1)})
	assert.True(t, errors.Is(err, domain.ErrStudentNotFound))

	_, err = students.Get(ctx, st.ID+1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
