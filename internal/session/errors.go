package session

import "errors"

var (
	ErrFrozen         = errors.New("attempt already graded, answers are frozen")
	ErrNoAnswers      = errors.New("cannot submit without any answer")
	ErrSubmitInFlight = errors.New("a submission is already in flight")
	ErrInvalidState   = errors.New("operation not allowed in current state")
)
