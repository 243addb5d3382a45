package view

import (
	"github.com/rs/zerolog"
)

// Notifier receives action outcomes. The CLI prints them, the view server logs them.
type Notifier interface {
	Success(msg string)
	Failure(msg string)
}

// LogNotifier writes action outcomes to a zerolog logger.
type LogNotifier struct {
	Logger zerolog.Logger
}

func (n LogNotifier) Success(msg string) {
	n.Logger.Info().Msg(msg)
}

func (n LogNotifier) Failure(msg string) {
	n.Logger.Warn().Msg(msg)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Failure(string) {}

// NotifierFunc adapts a pair of functions to Notifier. Nil functions are skipped.
type NotifierFunc struct {
	OnSuccess func(msg string)
	OnFailure func(msg string)
}

func (n NotifierFunc) Success(msg string) {
	if n.OnSuccess != nil {
		n.OnSuccess(msg)
	}
}

func (n NotifierFunc) Failure(msg string) {
	if n.OnFailure != nil {
		n.OnFailure(msg)
	}
}
