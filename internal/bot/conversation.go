// Package bot holds the exam scores conversation and its Telegram wiring.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/examscores/scorebot/core/logger"
	"github.com/examscores/scorebot/core/telegram/state"
	"github.com/examscores/scorebot/internal/apiclient"
	"github.com/examscores/scorebot/internal/domain"
)

// Conversation states besides state.StateIdle.
const (
	StateAwaitingRegistrationName state.State = "awaiting_registration_name"
	StateAwaitingSubjectSelection state.State = "awaiting_subject_selection"
	StateAwaitingScoreValue       state.State = "awaiting_score_value"
)

// Data is the per-user payload kept next to the state.
// StudentID survives /cancel; Subject is only set while awaiting a score.
type Data struct {
	StudentID int64
	Subject   string
}

// Keyboard names the reply keyboard sent with a message.
type Keyboard int

const (
	// KeyboardKeep leaves whatever keyboard the user has.
	KeyboardKeep Keyboard = iota
	KeyboardMain
	KeyboardSubjects
	KeyboardCancel
	KeyboardRemove
)

// Reply is what the bot answers to one update.
type Reply struct {
	Text     string
	Keyboard Keyboard
}

// API is the part of the scores API the conversation calls.
type API interface {
	CreateStudent(ctx context.Context, firstName, lastName string) (domain.Student, error)
	UpsertScore(ctx context.Context, studentID int64, subject string, score int) (domain.Score, error)
	ListScores(ctx context.Context, studentID int64) ([]domain.Score, error)
}

// InputFormatError rejects free text that does not fit the awaited input.
type InputFormatError struct {
	Prompt string
}

func (e *InputFormatError) Error() string { return e.Prompt }

const (
	textGreeting = "Hi! I keep track of your exam scores.\n" +
		"Commands:\n" +
		"/register - register a student\n" +
		"/enter_scores - enter scores\n" +
		"/view_scores - view your scores\n" +
		"/cancel - cancel the current action"
	textIdleHint        = "Use /register, /enter_scores or /view_scores. /start shows the menu."
	textAskName         = "Send your first and last name separated by a space (for example: John Smith). Press /cancel to abort."
	textBadName         = "Send exactly two words: your first and last name. Press /cancel to abort."
	textRegisterFirst   = "Register first with /register"
	textChooseSubject   = "Choose a subject (use the buttons):"
	textBadSubject      = "Please choose a subject from the buttons or press /cancel."
	textBadScore        = "Enter a valid score from 0 to 100."
	textNoScores        = "You have no saved scores yet."
	textCancelled       = "Action cancelled. Back to the main menu."
	textUnavailable     = "The scores service is unavailable, try again later."
	textOtherUnexpected = "Something went wrong, try again later."
)

// Conversation drives the per-user dialog. It is safe for concurrent use
// as long as calls for one user are serialized, which the user lane does.
type Conversation struct {
	api      API
	sessions *state.Store[Data]
}

// NewConversation creates a Conversation backed by sessions.
func NewConversation(api API, sessions *state.Store[Data]) *Conversation {
	if sessions == nil {
		sessions = state.NewStore[Data]()
	}
	return &Conversation{api: api, sessions: sessions}
}

// Sessions exposes the backing store.
func (c *Conversation) Sessions() *state.Store[Data] {
	return c.sessions
}

// InProgress reports whether the user is waiting on free-text input.
func (c *Conversation) InProgress(userID int64) bool {
	return c.sessions.InProgress(userID)
}

// Start greets the user without touching the state.
func (c *Conversation) Start(int64) Reply {
	return Reply{Text: textGreeting, Keyboard: KeyboardMain}
}

// Register asks for the user's name.
func (c *Conversation) Register(userID int64) Reply {
	c.sessions.Update(userID, func(s *state.Session[Data]) {
		s.State = StateAwaitingRegistrationName
		s.Data.Subject = ""
	})
	return Reply{Text: textAskName, Keyboard: KeyboardRemove}
}

// EnterScores opens subject selection for a registered user.
func (c *Conversation) EnterScores(userID int64) Reply {
	if c.sessions.Get(userID).Data.StudentID == 0 {
		return Reply{Text: textRegisterFirst}
	}
	c.sessions.Update(userID, func(s *state.Session[Data]) {
		s.State = StateAwaitingSubjectSelection
		s.Data.Subject = ""
	})
	return Reply{Text: textChooseSubject, Keyboard: KeyboardSubjects}
}

// ViewScores lists the saved scores of a registered user.
func (c *Conversation) ViewScores(ctx context.Context, userID int64) Reply {
	studentID := c.sessions.Get(userID).Data.StudentID
	if studentID == 0 {
		return Reply{Text: textRegisterFirst}
	}
	scores, err := c.api.ListScores(ctx, studentID)
	if err != nil {
		return Reply{Text: failureText(ctx, "fetching scores", err)}
	}
	if len(scores) == 0 {
		return Reply{Text: textNoScores}
	}
	lines := make([]string, 0, len(scores))
	for _, s := range scores {
		lines = append(lines, fmt.Sprintf("%s: %d", s.Subject, s.Score))
	}
	return Reply{Text: "Your scores:\n" + strings.Join(lines, "\n")}
}

// Cancel drops any pending input and returns to the main menu.
// A user with no bound student is forgotten.
func (c *Conversation) Cancel(userID int64) Reply {
	c.reset(userID)
	return Reply{Text: textCancelled, Keyboard: KeyboardMain}
}

// reset returns the user to idle, dropping the session when nothing in it is worth keeping.
func (c *Conversation) reset(userID int64) {
	if c.sessions.Get(userID).Data.StudentID == 0 {
		c.sessions.Clear(userID)
		return
	}
	c.sessions.Update(userID, func(s *state.Session[Data]) {
		s.State = state.StateIdle
		s.Data.Subject = ""
	})
}

// Stats describes the session store for admins.
func (c *Conversation) Stats() Reply {
	tracked, inProgress := c.sessions.Stats()
	return Reply{Text: fmt.Sprintf("Sessions: %d tracked, %d in progress\nBusy lanes: %d",
		tracked, inProgress, c.sessions.Lanes().Len())}
}

// HandleText consumes free text according to the user's state.
func (c *Conversation) HandleText(ctx context.Context, userID int64, text string) Reply {
	var (
		reply Reply
		err   error
	)
	switch c.sessions.GetState(userID) {
	case StateAwaitingRegistrationName:
		reply, err = c.registerName(ctx, userID, text)
	case StateAwaitingSubjectSelection:
		reply, err = c.chooseSubject(userID, text)
	case StateAwaitingScoreValue:
		reply, err = c.saveScore(ctx, userID, text)
	default:
		return Reply{Text: textIdleHint}
	}
	var inputErr *InputFormatError
	if errors.As(err, &inputErr) {
		return Reply{Text: inputErr.Prompt}
	}
	return reply
}

func (c *Conversation) registerName(ctx context.Context, userID int64, text string) (Reply, error) {
	first, last, err := parseName(text)
	if err != nil {
		return Reply{}, err
	}
	student, err := c.api.CreateStudent(ctx, first, last)
	if err != nil {
		c.reset(userID)
		return Reply{Text: failureText(ctx, "registering", err)}, nil
	}
	c.sessions.Update(userID, func(s *state.Session[Data]) {
		s.State = state.StateIdle
		s.Data.StudentID = student.ID
	})
	logger.Info(ctx, "bot", "student.bound",
		slog.Int64("user_id", userID),
		slog.Int64("student_id", student.ID),
	)
	return Reply{Text: fmt.Sprintf("Registered as: %s %s", student.FirstName, student.LastName)}, nil
}

func (c *Conversation) chooseSubject(userID int64, text string) (Reply, error) {
	if !domain.IsSubject(text) {
		return Reply{}, &InputFormatError{Prompt: textBadSubject}
	}
	c.sessions.Update(userID, func(s *state.Session[Data]) {
		s.State = StateAwaitingScoreValue
		s.Data.Subject = text
	})
	return Reply{
		Text:     fmt.Sprintf("Enter your %s score (0-100). Press /cancel to abort.", text),
		Keyboard: KeyboardCancel,
	}, nil
}

func (c *Conversation) saveScore(ctx context.Context, userID int64, text string) (Reply, error) {
	score, err := parseScore(text)
	if err != nil {
		return Reply{}, err
	}
	data := c.sessions.Get(userID).Data
	saved, err := c.api.UpsertScore(ctx, data.StudentID, data.Subject, score)
	c.reset(userID)
	if err != nil {
		return Reply{Text: failureText(ctx, "saving", err)}, nil
	}
	return Reply{Text: fmt.Sprintf("Saved: %s → %d", saved.Subject, saved.Score)}, nil
}

func parseName(text string) (string, string, error) {
	parts := strings.Fields(text)
	if len(parts) != 2 {
		return "", "", &InputFormatError{Prompt: textBadName}
	}
	return parts[0], parts[1], nil
}

func parseScore(text string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || v < 0 || v > 100 {
		return 0, &InputFormatError{Prompt: textBadScore}
	}
	return v, nil
}

func failureText(ctx context.Context, action string, err error) string {
	logger.Warn(ctx, "bot", "api.failed",
		slog.String("action", action),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	)
	var upErr *apiclient.UpstreamError
	if !errors.As(err, &upErr) {
		return textOtherUnexpected
	}
	if upErr.StatusCode == 0 {
		return textUnavailable
	}
	return fmt.Sprintf("Error while %s: %d %s", action, upErr.StatusCode, upErr.Body)
}
