package bot

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examscores/scorebot/core/telegram/state"
	"github.com/examscores/scorebot/internal/api"
	"github.com/examscores/scorebot/internal/apiclient"
	"github.com/examscores/scorebot/internal/domain"
	"github.com/examscores/scorebot/internal/service"
	"github.com/examscores/scorebot/internal/storage/storagetest"
)

const user int64 = 1001

func newLiveConversation(t *testing.T) *Conversation {
	t.Helper()
	store := storagetest.New(t)
	v := service.NewValidator()
	srv := httptest.NewServer(api.NewRouter(api.Deps{
		Students: service.NewStudents(store, v),
		Scores:   service.NewScores(store, v),
		Health:   store,
	}))
	t.Cleanup(srv.Close)
	return NewConversation(apiclient.New(srv.URL, 5*time.Second), nil)
}

type failingAPI struct {
	err   error
	calls int
}

func (f *failingAPI) CreateStudent(context.Context, string, string) (domain.Student, error) {
	f.calls++
	return domain.Student{}, f.err
}

func (f *failingAPI) UpsertScore(context.Context, int64, string, int) (domain.Score, error) {
	f.calls++
	return domain.Score{}, f.err
}

func (f *failingAPI) ListScores(context.Context, int64) ([]domain.Score, error) {
	f.calls++
	return nil, f.err
}

func registered(t *testing.T, client API, studentID int64) *Conversation {
	t.Helper()
	conv := NewConversation(client, nil)
	conv.Sessions().Update(user, func(s *state.Session[Data]) { s.Data.StudentID = studentID })
	return conv
}

func TestConversationHappyPath(t *testing.T) {
	ctx := context.Background()
	conv := newLiveConversation(t)

	r := conv.Start(user)
	assert.Equal(t, KeyboardMain, r.Keyboard)
	assert.Contains(t, r.Text, "/enter_scores")
	assert.False(t, conv.InProgress(user))

	r = conv.Register(user)
	assert.Equal(t, KeyboardRemove, r.Keyboard)
	assert.Equal(t, StateAwaitingRegistrationName, conv.Sessions().GetState(user))

	r = conv.HandleText(ctx, user, "John Smith")
	assert.Equal(t, "Registered as: John Smith", r.Text)
	assert.Equal(t, state.StateIdle, conv.Sessions().GetState(user))
	assert.NotZero(t, conv.Sessions().Get(user).Data.StudentID)

	r = conv.ViewScores(ctx, user)
	assert.Equal(t, textNoScores, r.Text)

	r = conv.EnterScores(user)
	assert.Equal(t, KeyboardSubjects, r.Keyboard)
	assert.Equal(t, StateAwaitingSubjectSelection, conv.Sessions().GetState(user))

	r = conv.HandleText(ctx, user, "Physics")
	assert.Equal(t, KeyboardCancel, r.Keyboard)
	assert.Equal(t, StateAwaitingScoreValue, conv.Sessions().GetState(user))
	assert.Equal(t, "Physics", conv.Sessions().Get(user).Data.Subject)

	r = conv.HandleText(ctx, user, " 87 ")
	assert.Equal(t, "Saved: Physics → 87", r.Text)
	assert.Equal(t, state.StateIdle, conv.Sessions().GetState(user))

	conv.EnterScores(user)
	conv.HandleText(ctx, user, "Physics")
	conv.HandleText(ctx, user, "90")
	conv.EnterScores(user)
	conv.HandleText(ctx, user, "Biology")
	conv.HandleText(ctx, user, "0")

	r = conv.ViewScores(ctx, user)
	assert.Equal(t, "Your scores:\nPhysics: 90\nBiology: 0", r.Text)
}

func TestRegisterFirstGuards(t *testing.T) {
	conv := NewConversation(&failingAPI{}, nil)

	r := conv.EnterScores(user)
	assert.Equal(t, textRegisterFirst, r.Text)
	assert.Equal(t, state.StateIdle, conv.Sessions().GetState(user))

	r = conv.ViewScores(context.Background(), user)
	assert.Equal(t, textRegisterFirst, r.Text)
}

func TestRepromptsKeepState(t *testing.T) {
	ctx := context.Background()
	fake := &failingAPI{}
	conv := registered(t, fake, 5)

	conv.Register(user)
	for _, in := range []string{"John", "John Paul Smith", "   "} {
		r := conv.HandleText(ctx, user, in)
		assert.Equal(t, textBadName, r.Text, in)
		assert.Equal(t, StateAwaitingRegistrationName, conv.Sessions().GetState(user))
	}

	conv.EnterScores(user)
	for _, in := range []string{"Geography", "physics", " Physics"} {
		r := conv.HandleText(ctx, user, in)
		assert.Equal(t, textBadSubject, r.Text, in)
		assert.Equal(t, StateAwaitingSubjectSelection, conv.Sessions().GetState(user))
	}

	conv.HandleText(ctx, user, "Chemistry")
	for _, in := range []string{"abc", "101", "-1", "7.5", ""} {
		r := conv.HandleText(ctx, user, in)
		assert.Equal(t, textBadScore, r.Text, in)
		assert.Equal(t, StateAwaitingScoreValue, conv.Sessions().GetState(user))
	}
	assert.Zero(t, fake.calls, "bad input must not reach the API")
}

func TestCancelClearsPendingInput(t *testing.T) {
	conv := registered(t, &failingAPI{}, 9)
	conv.EnterScores(user)
	conv.HandleText(context.Background(), user, "Literature")

	r := conv.Cancel(user)
	assert.Equal(t, KeyboardMain, r.Keyboard)
	sess := conv.Sessions().Get(user)
	assert.Equal(t, state.StateIdle, sess.State)
	assert.Empty(t, sess.Data.Subject)
	assert.Equal(t, int64(9), sess.Data.StudentID)

	r = conv.HandleText(context.Background(), user, "55")
	assert.Equal(t, textIdleHint, r.Text)
}

func TestUpstreamFailureResetsState(t *testing.T) {
	ctx := context.Background()
	fake := &failingAPI{err: &apiclient.UpstreamError{
		Op:         apiclient.OpUpsertScore,
		StatusCode: 404,
		Body:       `{"detail":"Student not found"}`,
	}}
	conv := registered(t, fake, 77)
	conv.EnterScores(user)
	conv.HandleText(ctx, user, "Mathematics")

	r := conv.HandleText(ctx, user, "50")
	assert.Equal(t, `Error while saving: 404 {"detail":"Student not found"}`, r.Text)
	assert.Equal(t, state.StateIdle, conv.Sessions().GetState(user))
	assert.Equal(t, 1, fake.calls)
}

func TestRegistrationFailureKeepsUnbound(t *testing.T) {
	fake := &failingAPI{err: &apiclient.UpstreamError{
		Op:  apiclient.OpCreateStudent,
		Err: errors.New("connection refused"),
	}}
	conv := NewConversation(fake, nil)
	conv.Register(user)

	r := conv.HandleText(context.Background(), user, "Ann Lee")
	assert.Equal(t, textUnavailable, r.Text)
	sess := conv.Sessions().Get(user)
	assert.Equal(t, state.StateIdle, sess.State)
	assert.Zero(t, sess.Data.StudentID)
}

func TestUnexpectedErrorText(t *testing.T) {
	conv := registered(t, &failingAPI{err: errors.New("boom")}, 3)
	r := conv.ViewScores(context.Background(), user)
	assert.Equal(t, textOtherUnexpected, r.Text)
}

func TestIdleHintAndStats(t *testing.T) {
	conv := NewConversation(&failingAPI{}, nil)
	assert.Equal(t, textIdleHint, conv.HandleText(context.Background(), user, "hello").Text)

	conv.Register(user)
	conv.Register(user + 1)
	conv.Register(user + 2)
	assert.Equal(t, "Sessions: 3 tracked, 3 in progress\nBusy lanes: 0", conv.Stats().Text)

	conv.Sessions().Update(user+2, func(s *state.Session[Data]) { s.Data.StudentID = 4 })
	conv.Cancel(user + 1)
	conv.Cancel(user + 2)
	assert.Equal(t, "Sessions: 2 tracked, 1 in progress\nBusy lanes: 0", conv.Stats().Text)

	release := conv.Sessions().Lanes().Acquire(user)
	defer release()
	assert.Contains(t, conv.Stats().Text, "Busy lanes: 1")
}

func TestMarkup(t *testing.T) {
	assert.Nil(t, Markup(KeyboardKeep))
	assert.True(t, Markup(KeyboardRemove).RemoveKeyboard)

	subjects := Markup(KeyboardSubjects)
	require.Len(t, subjects.ReplyKeyboard, len(domain.Subjects)+1)
	for i, s := range domain.Subjects {
		require.Len(t, subjects.ReplyKeyboard[i], 1)
		assert.Equal(t, s, subjects.ReplyKeyboard[i][0].Text)
	}
	assert.Equal(t, "/cancel", subjects.ReplyKeyboard[len(domain.Subjects)][0].Text)

	main := Markup(KeyboardMain)
	require.Len(t, main.ReplyKeyboard, 2)
	assert.Equal(t, "/register", main.ReplyKeyboard[0][0].Text)
	assert.Equal(t, "/view_scores", main.ReplyKeyboard[1][0].Text)
}

func TestRegistryCommands(t *testing.T) {
	app, err := NewApp(nil, &failingAPI{})
	assert.Error(t, err)
	assert.Nil(t, app)

	app = &App{conv: NewConversation(&failingAPI{}, nil)}
	reg := app.Registry()
	visible := reg.ListCommands(true)
	names := make([]string, 0, len(visible))
	for _, c := range visible {
		names = append(names, c.Text)
	}
	assert.Equal(t, []string{"/start", "/register", "/enter_scores", "/view_scores", "/cancel"}, names)

	_, cmd, ok := reg.LookupCommand("/sessions@scorebot")
	require.True(t, ok)
	assert.True(t, cmd.AdminOnly)
}
