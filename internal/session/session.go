// Package session tracks the one student authenticated in the running
// process, if any.
//
// States are Anonymous and Authenticated(id). A session only moves from
// Anonymous to Authenticated; switching to another student requires
// logging out first.
package session

import (
	"errors"
	"sync"

	"github.com/samber/oops"
)

// ErrAlreadyAuthenticated is returned by SetCurrent when a different
// student is already logged in.
var ErrAlreadyAuthenticated = errors.New("another student is already logged in")

// Session holds the current student ID. The zero value is Anonymous and
// ready to use.
type Session struct {
	mu      sync.Mutex
	current string
}

// New returns an Anonymous session.
func New() *Session {
	return &Session{}
}

// Current returns the authenticated ID and true, or "" and false.
func (s *Session) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current != ""
}

// Authenticated reports whether a student is logged in.
func (s *Session) Authenticated() bool {
	_, ok := s.Current()
	return ok
}

// SetCurrent records id as the authenticated student. Setting the ID that
// is already current is a no-op.
func (s *Session) SetCurrent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(id); err != nil {
		return err
	}
	s.current = id
	return nil
}

// Check returns the error SetCurrent would return for id, without changing
// anything. Use it before an operation that should not run when the
// session cannot move to id.
func (s *Session) Check(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.check(id)
}

func (s *Session) check(id string) error {
	if id == "" {
		return oops.Code("SESSION_EMPTY_ID").Errorf("session id cannot be empty")
	}
	if s.current != "" && s.current != id {
		return oops.Code("SESSION_ACTIVE").
			With("current", s.current).
			With("requested", id).
			Wrap(ErrAlreadyAuthenticated)
	}
	return nil
}

// Clear logs out. It returns the ID that was logged in, if any.
func (s *Session) Clear() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current
	s.current = ""
	return prev, prev != ""
}

// OnDeleted clears the session if id is the authenticated student and
// reports whether it did. Call it right after a successful delete.
func (s *Session) OnDeleted(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == "" || s.current != id {
		return false
	}
	s.current = ""
	return true
}
