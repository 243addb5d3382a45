package form

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetRowsSubmitIndependently(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	sent := make(chan string, 4)

	s := NewSet(func() *Form[reasonInput] {
		return New("skip", validateReason, func(ctx context.Context, p reasonInput) error {
			sent <- p.Reason
			if p.Reason == "row five is blocked" {
				close(started)
				<-release
			}
			return nil
		}, nil)
	})

	done := make(chan error, 1)
	go func() {
		done <- s.Submit(context.Background(), "5", reasonInput{Reason: "row five is blocked"})
	}()
	<-started

	assert.ErrorIs(t, s.Submit(context.Background(), "5", reasonInput{Reason: "second attempt"}), ErrSubmitting)
	require.NoError(t, s.Submit(context.Background(), "6", reasonInput{Reason: "row six goes through"}))

	st, ok := s.State("5")
	require.True(t, ok)
	assert.Equal(t, PhaseSubmitting, st.Phase)
	_, ok = s.State("6")
	assert.False(t, ok, "closed forms are dropped")

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 0, s.Len())
	assert.Len(t, sent, 2)
}

func TestSetKeepsInvalidForm(t *testing.T) {
	s := NewSet(func() *Form[reasonInput] {
		return New("skip", validateReason, func(ctx context.Context, p reasonInput) error {
			return nil
		}, nil)
	})

	err := s.Submit(context.Background(), "5", reasonInput{Reason: "short"})
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))

	st, ok := s.State("5")
	require.True(t, ok)
	assert.Equal(t, PhaseOpen, st.Phase)
	assert.Equal(t, "short", st.Payload.Reason)
	assert.Equal(t, "must be at least 10 characters", st.Errors["reason"])

	_, ok = s.State("6")
	assert.False(t, ok)
}

func TestSetDropsIdleFormsAtLimit(t *testing.T) {
	s := NewSet(func() *Form[reasonInput] {
		return New("skip", validateReason, func(ctx context.Context, p reasonInput) error {
			return nil
		}, nil)
	})

	for i := 0; i < DefaultSetLimit; i++ {
		_ = s.Submit(context.Background(), fmt.Sprint(i), reasonInput{})
	}
	assert.Equal(t, DefaultSetLimit, s.Len())

	_ = s.Submit(context.Background(), "next", reasonInput{})
	assert.Equal(t, 1, s.Len())
}
