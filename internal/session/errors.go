package session

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when no stored session matches an ID
	// or the matching file cannot be read.
	ErrSessionNotFound = errors.New("session not found")
	// ErrAlreadyCompleted is returned when mutating a completed session.
	ErrAlreadyCompleted = errors.New("session already completed")
	// ErrNoActiveSession is returned when no session is attached.
	ErrNoActiveSession = errors.New("no active session")
)

// PersistenceError wraps a failed read or write of a session file.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("session %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
