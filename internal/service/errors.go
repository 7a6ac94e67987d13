package service

import "errors"

var (
	// ErrNoQuizSelected is returned when a client opens the exam runner
	// without having selected a quiz. The caller should send the user back
	// to the dashboard.
	ErrNoQuizSelected = errors.New("service: no quiz selected")
	// ErrInvalidEntryToken is returned when a token-gated quiz is selected
	// with a wrong or missing token.
	ErrInvalidEntryToken = errors.New("service: invalid entry token")
	// ErrNoActiveSession is returned by exam commands when the client has
	// no in-progress attempt.
	ErrNoActiveSession = errors.New("service: no active exam session")
)
