package pages

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"stealthcompany.com/wardconsole/internal/display"
	"stealthcompany.com/wardconsole/internal/form"
	"stealthcompany.com/wardconsole/internal/resources"
	"stealthcompany.com/wardconsole/internal/session"
	"stealthcompany.com/wardconsole/internal/view"
)

const defaultReasonMinLength = 10

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrBadInput      = errors.New("invalid action input")
	ErrForbidden     = errors.New("your role cannot open this page")
)

// Page is a view the CLI and view server can load, render and act on.
type Page interface {
	Name() string
	Load(ctx context.Context) error
	View() any
	Do(ctx context.Context, action string, input json.RawMessage) error
}

// Deps is what every page is built from.
type Deps struct {
	Service         *resources.Service
	Notifier        view.Notifier
	ReasonMinLength int
	Now             func() time.Time
}

func (d Deps) reasonMin() int {
	if d.ReasonMinLength < 1 {
		return defaultReasonMinLength
	}
	return d.ReasonMinLength
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) opts() []view.Option {
	return []view.Option{view.WithNotifier(d.Notifier)}
}

// Header is the part of every view model describing the load and the last action.
type Header struct {
	Title       string    `json:"title"`
	Mode        view.Mode `json:"mode"`
	Error       string    `json:"error,omitempty"`
	Empty       string    `json:"empty,omitempty"`
	Notice      string    `json:"notice,omitempty"`
	ActionError string    `json:"actionError,omitempty"`
}

func header[T any](title, empty string, s view.State[T]) Header {
	h := Header{
		Title:       title,
		Mode:        s.Mode,
		Error:       s.Err,
		Notice:      s.Notice,
		ActionError: s.ActionErr,
	}
	if s.Mode == view.ModeEmpty {
		h.Empty = empty
	}
	return h
}

// ReasonInput is the payload of every action that needs a written justification.
type ReasonInput struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

func reasonValidator(min int) form.ValidateFunc[ReasonInput] {
	return func(p ReasonInput) form.ValidationErrors {
		errs := form.ValidationErrors{}
		form.Check(errs, "id", p.ID, form.Positive())
		form.Check(errs, "reason", p.Reason, form.Required(), form.MinLength(min))
		return errs
	}
}

// submitForm opens f with input and submits it in one go, the way a modal
// filled in and confirmed by the user would.
func submitForm[P any](ctx context.Context, f *form.Form[P], input P) error {
	if err := f.Open(input); err != nil {
		return err
	}
	return f.Submit(ctx)
}

// rowForm is the state of the row form of id, or nil when that row has none open.
func rowForm[P any](s *form.Set[P], id int64) *form.State[P] {
	st, ok := s.State(rowID(id))
	if !ok {
		return nil
	}
	return &st
}

type actionFunc func(ctx context.Context, raw json.RawMessage) error

// bind decodes the raw JSON input into I before calling fn. Missing input decodes as the zero value.
func bind[I any](fn func(ctx context.Context, in I) error) actionFunc {
	return func(ctx context.Context, raw json.RawMessage) error {
		var in I
		if len(bytes.TrimSpace(raw)) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			dec := json.NewDecoder(bytes.NewReader(raw))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&in); err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: %v", ErrBadInput, err)
			}
		}
		return fn(ctx, in)
	}
}

func dispatch(ctx context.Context, actions map[string]actionFunc, name string, raw json.RawMessage) error {
	fn, ok := actions[name]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownAction, name)
	}
	return fn(ctx, raw)
}

func rowID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// rowHasStatus builds an action guard: the row must exist and be in one of statuses.
func rowHasStatus[E any](id int64, idOf func(E) int64, statusOf func(E) string, statuses ...string) func([]E) bool {
	return func(list []E) bool {
		for _, e := range list {
			if idOf(e) != id {
				continue
			}
			return statusIn(statusOf(e), statuses...)
		}
		return false
	}
}

func statusIn(status string, statuses ...string) bool {
	for _, s := range statuses {
		if status == s {
			return true
		}
	}
	return false
}

func date(t resources.Timestamp) string {
	return display.FormatDate(t.Time)
}

func dateTime(t resources.Timestamp) string {
	return display.FormatDateTime(t.Time)
}

// Authorize checks the role claim of the current session. Tokens that cannot
// be decoded locally are left for the backend to judge.
func Authorize(holder session.Holder, roles ...string) error {
	creds, err := holder.Get()
	if err != nil {
		return err
	}
	if len(roles) == 0 {
		return nil
	}
	claims, err := session.ParseClaims(creds.AccessToken)
	if err != nil {
		return nil
	}
	for _, role := range roles {
		if claims.HasRole(role) {
			return nil
		}
	}
	return ErrForbidden
}
