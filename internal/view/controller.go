package view

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/wardconsole/internal/apiclient"
	"stealthcompany.com/wardconsole/internal/metrics"
)

// FetchFunc loads the data behind a view.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Action is a mutation triggered from a view.
type Action[T any] struct {
	// Name labels the action in logs, metrics and the default success message.
	Name string
	// RowID identifies the row the action belongs to. Empty means a page-level action.
	RowID string
	// Allowed is evaluated against the current data before Run. Nil allows.
	Allowed func(data T) bool
	// Run performs exactly one backend call.
	Run func(ctx context.Context) error
	// SuccessMessage is passed to the notifier on success.
	SuccessMessage string
}

func (a Action[T]) key() string {
	if a.RowID != "" {
		return a.RowID
	}
	return a.Name
}

// Option configures a controller.
type Option func(*settings)

type settings struct {
	notifier Notifier
}

// WithNotifier sets where action outcomes are reported.
func WithNotifier(n Notifier) Option {
	return func(s *settings) {
		if n != nil {
			s.notifier = n
		}
	}
}

// Controller drives the fetch, act, refetch loop of one view.
// It is safe for concurrent use.
type Controller[T any] struct {
	name     string
	fetch    FetchFunc[T]
	isEmpty  func(T) bool
	notifier Notifier

	mu         sync.Mutex
	state      State[T]
	pending    map[string]string
	generation uint64
}

// NewController creates a controller in the idle state. Data equal to the zero
// value of T (a nil pointer, for instance) renders as empty.
func NewController[T any](name string, fetch FetchFunc[T], opts ...Option) *Controller[T] {
	s := settings{notifier: nopNotifier{}}
	for _, opt := range opts {
		opt(&s)
	}

	return &Controller[T]{
		name:     name,
		fetch:    fetch,
		isEmpty:  isZero[T],
		notifier: s.notifier,
		pending:  map[string]string{},
	}
}

// NewListController is NewController for list views: an empty slice renders as empty.
func NewListController[E any](name string, fetch FetchFunc[[]E], opts ...Option) *Controller[[]E] {
	c := NewController(name, fetch, opts...)
	c.isEmpty = func(list []E) bool { return len(list) == 0 }
	return c
}

func isZero[T any](v T) bool {
	return reflect.ValueOf(&v).Elem().IsZero()
}

// Name returns the view name
func (c *Controller[T]) Name() string {
	return c.name
}

// Load runs the fetch and replaces the data wholesale. On failure the view is
// Failed with a human-readable message and the error is returned.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.state.Mode = ModeLoading
	c.state.Err = ""
	c.mu.Unlock()

	log.Debug().Str("view", c.name).Msg("Loading view")
	data, err := c.fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	// a newer load started while this one was in flight; its result wins
	if gen != c.generation {
		return err
	}

	if err != nil {
		var zero T
		c.state.Mode = ModeFailed
		c.state.Data = zero
		c.state.Err = apiclient.Message(err)
		metrics.RecordViewFetch(c.name, "error")
		log.Warn().Err(err).Str("view", c.name).Msg("View fetch failed")
		return err
	}

	c.state.Data = data
	if c.isEmpty(data) {
		c.state.Mode = ModeEmpty
		metrics.RecordViewFetch(c.name, "empty")
	} else {
		c.state.Mode = ModeReady
		metrics.RecordViewFetch(c.name, "success")
	}
	log.Debug().Str("view", c.name).Str("mode", c.state.Mode.String()).Msg("View loaded")
	return nil
}

// Retry re-runs the same fetch after a failure.
func (c *Controller[T]) Retry(ctx context.Context) error {
	return c.Load(ctx)
}

// Act runs a mutation and, on success, refetches the view. The refetch is
// issued only after the action has returned. A failed action leaves the data
// untouched and reports the message through the notifier.
func (c *Controller[T]) Act(ctx context.Context, a Action[T]) error {
	key := a.key()

	c.mu.Lock()
	if !c.state.Loaded() && c.state.Mode != ModeLoading {
		c.mu.Unlock()
		metrics.RecordViewAction(c.name, a.Name, "rejected")
		return ErrNotReady
	}
	if a.Allowed != nil && !a.Allowed(c.state.Data) {
		c.mu.Unlock()
		metrics.RecordViewAction(c.name, a.Name, "rejected")
		return fmt.Errorf("%s: %w", a.Name, ErrActionNotAllowed)
	}
	if _, busy := c.pending[key]; busy {
		c.mu.Unlock()
		metrics.RecordViewAction(c.name, a.Name, "busy")
		return ErrActionInProgress
	}
	c.pending[key] = a.Name
	c.state.ActionErr = ""
	c.state.Notice = ""
	c.mu.Unlock()

	log.Debug().Str("view", c.name).Str("action", a.Name).Str("row", a.RowID).Msg("Action started")
	err := a.Run(ctx)

	c.mu.Lock()
	delete(c.pending, key)
	if err != nil {
		msg := apiclient.Message(err)
		c.state.ActionErr = msg
		c.mu.Unlock()

		metrics.RecordViewAction(c.name, a.Name, "error")
		log.Warn().Err(err).Str("view", c.name).Str("action", a.Name).Str("row", a.RowID).Msg("Action failed")
		c.notifier.Failure(msg)
		return err
	}

	msg := a.SuccessMessage
	if msg == "" {
		msg = fmt.Sprintf("%s completed", a.Name)
	}
	c.state.Notice = msg
	c.mu.Unlock()

	metrics.RecordViewAction(c.name, a.Name, "success")
	log.Info().Str("view", c.name).Str("action", a.Name).Str("row", a.RowID).Msg("Action succeeded")
	c.notifier.Success(msg)

	// the action stands even if the refetch fails; the view shows the fetch error
	_ = c.Load(ctx)
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Controller[T]) Snapshot() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Pending = make([]string, 0, len(c.pending))
	for id := range c.pending {
		s.Pending = append(s.Pending, id)
	}
	sort.Strings(s.Pending)
	return s
}

// Data returns the current data, which is the zero value unless loaded.
func (c *Controller[T]) Data() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Data
}
