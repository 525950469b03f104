package state

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session is the single record kept per user.
type Session[T any] struct {
	State State
	Data  T
}

// InProgress reports whether the session waits for user input.
func (s Session[T]) InProgress() bool {
	return s.State != "" && s.State != StateIdle
}
