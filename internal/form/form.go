package form

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/wardconsole/internal/apiclient"
)

var (
	ErrNotOpen    = errors.New("form is not open")
	ErrSubmitting = errors.New("form is already submitting")
	ErrDisabled   = errors.New("form submission is disabled")
)

// Phase is where a form is in its open, validate, submit cycle.
type Phase int

const (
	PhaseClosed Phase = iota
	PhaseOpen
	PhaseValidating
	PhaseSubmitting
)

func (p Phase) String() string {
	switch p {
	case PhaseClosed:
		return "closed"
	case PhaseOpen:
		return "open"
	case PhaseValidating:
		return "validating"
	case PhaseSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ValidateFunc returns the field messages for p, or nil when it can be submitted.
type ValidateFunc[P any] func(p P) ValidationErrors

// SubmitFunc sends the payload; it should make exactly one backend call.
type SubmitFunc[P any] func(ctx context.Context, p P) error

// State is a copy of a form for rendering.
type State[P any] struct {
	Phase         Phase            `json:"phase"`
	Payload       P                `json:"payload"`
	Errors        ValidationErrors `json:"errors,omitempty"`
	Error         string           `json:"error,omitempty"`
	SubmitEnabled bool             `json:"submitEnabled"`
}

// Form collects and validates the input of one action.
type Form[P any] struct {
	name      string
	validate  ValidateFunc[P]
	submit    SubmitFunc[P]
	onSuccess func(ctx context.Context)
	enabled   func() bool

	mu      sync.Mutex
	phase   Phase
	payload P
	errs    ValidationErrors
	err     string
}

// New creates a closed form. onSuccess runs after a successful submit, once
// the form has closed; it is where the parent view refetches. Either of
// validate and onSuccess may be nil.
func New[P any](name string, validate ValidateFunc[P], submit SubmitFunc[P], onSuccess func(ctx context.Context)) *Form[P] {
	return &Form[P]{
		name:      name,
		validate:  validate,
		submit:    submit,
		onSuccess: onSuccess,
	}
}

// EnableWhen gates submission, e.g. on there being any bed to pick.
func (f *Form[P]) EnableWhen(fn func() bool) *Form[P] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = fn
	return f
}

// SubmitEnabled reports whether Submit would be attempted.
func (f *Form[P]) SubmitEnabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitEnabledLocked()
}

func (f *Form[P]) submitEnabledLocked() bool {
	if f.phase != PhaseOpen {
		return false
	}
	return f.enabled == nil || f.enabled()
}

// Open shows the form with prefill as the initial input. Opening an open form resets it.
func (f *Form[P]) Open(prefill P) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.phase == PhaseSubmitting || f.phase == PhaseValidating {
		return ErrSubmitting
	}
	f.phase = PhaseOpen
	f.payload = prefill
	f.errs = nil
	f.err = ""
	return nil
}

// Update edits the input in place.
func (f *Form[P]) Update(fn func(p *P)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.phase {
	case PhaseClosed:
		return ErrNotOpen
	case PhaseValidating, PhaseSubmitting:
		return ErrSubmitting
	}
	fn(&f.payload)
	return nil
}

// Close discards the input without submitting.
func (f *Form[P]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.phase == PhaseSubmitting {
		return
	}
	var zero P
	f.phase = PhaseClosed
	f.payload = zero
	f.errs = nil
	f.err = ""
}

// Submit validates the input and, when valid, sends it. Validation failures
// return ValidationErrors without any call. A failed send keeps the form open
// with the input intact and the message inline.
func (f *Form[P]) Submit(ctx context.Context) error {
	f.mu.Lock()
	switch f.phase {
	case PhaseClosed:
		f.mu.Unlock()
		return ErrNotOpen
	case PhaseValidating, PhaseSubmitting:
		f.mu.Unlock()
		return ErrSubmitting
	}
	if !f.submitEnabledLocked() {
		f.mu.Unlock()
		return ErrDisabled
	}

	f.phase = PhaseValidating
	payload := f.payload
	if f.validate != nil {
		if errs := f.validate(payload); len(errs) > 0 {
			f.phase = PhaseOpen
			f.errs = errs
			f.err = ""
			f.mu.Unlock()
			log.Debug().Str("form", f.name).Str("errors", errs.Error()).Msg("Form validation failed")
			return errs
		}
	}
	f.errs = nil
	f.err = ""
	f.phase = PhaseSubmitting
	f.mu.Unlock()

	err := f.submit(ctx, payload)

	f.mu.Lock()
	if err != nil {
		f.phase = PhaseOpen
		f.err = apiclient.Message(err)
		f.mu.Unlock()
		log.Warn().Err(err).Str("form", f.name).Msg("Form submit failed")
		return err
	}
	var zero P
	f.phase = PhaseClosed
	f.payload = zero
	f.mu.Unlock()

	log.Debug().Str("form", f.name).Msg("Form submitted")
	if f.onSuccess != nil {
		f.onSuccess(ctx)
	}
	return nil
}

// State returns a copy of the form for rendering.
func (f *Form[P]) State() State[P] {
	f.mu.Lock()
	defer f.mu.Unlock()

	var errs ValidationErrors
	if len(f.errs) > 0 {
		errs = make(ValidationErrors, len(f.errs))
		for k, v := range f.errs {
			errs[k] = v
		}
	}
	return State[P]{
		Phase:         f.phase,
		Payload:       f.payload,
		Errors:        errs,
		Error:         f.err,
		SubmitEnabled: f.submitEnabledLocked(),
	}
}

// Phase returns the current phase.
func (f *Form[P]) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

func (f *Form[P]) busy() bool {
	p := f.Phase()
	return p == PhaseValidating || p == PhaseSubmitting
}

// Name returns the form name
func (f *Form[P]) Name() string {
	return f.name
}
