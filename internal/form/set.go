package form

import (
	"context"
	"sync"
)

// DefaultSetLimit is how many row forms a Set keeps before idle ones are dropped.
const DefaultSetLimit = 64

// Set keeps one form per row key, so a submit on one row never blocks another.
// Forms are created on first use and dropped once they close.
type Set[P any] struct {
	newForm func() *Form[P]
	limit   int

	mu    sync.Mutex
	forms map[string]*Form[P]
}

// NewSet creates an empty set. newForm builds the form for a row the first time it is used.
func NewSet[P any](newForm func() *Form[P]) *Set[P] {
	return &Set[P]{
		newForm: newForm,
		limit:   DefaultSetLimit,
		forms:   map[string]*Form[P]{},
	}
}

// Form returns the form of key, creating it when the row has none.
func (s *Set[P]) Form(key string) *Form[P] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.forms[key]; ok {
		return f
	}
	if len(s.forms) >= s.limit {
		for k, f := range s.forms {
			if !f.busy() {
				delete(s.forms, k)
			}
		}
	}
	f := s.newForm()
	s.forms[key] = f
	return f
}

// Submit opens the form of key with input and submits it.
func (s *Set[P]) Submit(ctx context.Context, key string, input P) error {
	f := s.Form(key)
	if err := f.Open(input); err != nil {
		return err
	}
	err := f.Submit(ctx)

	s.mu.Lock()
	if s.forms[key] == f && f.Phase() == PhaseClosed {
		delete(s.forms, key)
	}
	s.mu.Unlock()
	return err
}

// State returns the state of the form of key. ok is false when the row has no form.
func (s *Set[P]) State(key string) (state State[P], ok bool) {
	s.mu.Lock()
	f, ok := s.forms[key]
	s.mu.Unlock()
	if !ok {
		return State[P]{}, false
	}
	return f.State(), true
}

// Len returns the number of rows holding a form.
func (s *Set[P]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.forms)
}
