package view

import (
	"errors"
)

var (
	// ErrActionInProgress is returned when the row already has an action in flight.
	ErrActionInProgress = errors.New("an action is already in progress for this item")
	// ErrActionNotAllowed is returned when the action guard rejects the current data.
	ErrActionNotAllowed = errors.New("action is not allowed in the current state")
	// ErrNotReady is returned when an action is triggered before data has loaded.
	ErrNotReady = errors.New("view has no data loaded")
)

// Mode is the current render mode of a view.
type Mode int

const (
	ModeIdle Mode = iota
	ModeLoading
	ModeReady
	ModeEmpty
	ModeFailed
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeLoading:
		return "loading"
	case ModeReady:
		return "ready"
	case ModeEmpty:
		return "empty"
	case ModeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText renders the mode by name in JSON views.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// State is a point-in-time copy of a controller.
type State[T any] struct {
	Mode Mode `json:"mode"`
	Data T    `json:"data"`
	// Err is the page-level error shown with a retry affordance.
	Err string `json:"error,omitempty"`
	// ActionErr is the last failed action's message. Data stays as it was.
	ActionErr string `json:"actionError,omitempty"`
	// Notice is the last successful action's message.
	Notice  string   `json:"notice,omitempty"`
	Pending []string `json:"pending"`
}

// Loaded reports whether Data holds a successful fetch result.
func (s State[T]) Loaded() bool {
	return s.Mode == ModeReady || s.Mode == ModeEmpty
}

// IsPending reports whether rowID has an action in flight.
func (s State[T]) IsPending(rowID string) bool {
	for _, id := range s.Pending {
		if id == rowID {
			return true
		}
	}
	return false
}
