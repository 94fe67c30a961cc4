package auth

import (
	"fmt"

	"github.com/dmitrijs2005/videotec/internal/client/models"
)

type Kind int

const (
	Uninitialized Kind = iota
	Restoring
	Authenticated
	Anonymous
	InFlight
)

func (k Kind) String() string {
	switch k {
	case Uninitialized:
		return "uninitialized"
	case Restoring:
		return "restoring"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	case InFlight:
		return "in_flight"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Op names the operation of an InFlight state.
type Op int

const (
	OpLogin Op = iota + 1
	OpLogout
	OpEndSession
)

func (o Op) String() string {
	switch o {
	case OpLogin:
		return "login"
	case OpLogout:
		return "logout"
	case OpEndSession:
		return "end_session"
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// State is a snapshot of the session lifecycle. Session is set only for
// Authenticated; Op and Previous only for InFlight, where Previous is
// either Anonymous or Authenticated.
type State struct {
	Kind     Kind
	Session  models.Session
	Op       Op
	Previous *State
}

func UninitializedState() State { return State{Kind: Uninitialized} }
func RestoringState() State     { return State{Kind: Restoring} }
func AnonymousState() State     { return State{Kind: Anonymous} }

func AuthenticatedState(s models.Session) State {
	return State{Kind: Authenticated, Session: s}
}

func InFlightState(op Op, previous State) State {
	p := previous
	return State{Kind: InFlight, Op: op, Previous: &p}
}

// Settled returns the state an observer should act on: the previous state
// while an operation is in flight, s itself otherwise.
func (s State) Settled() State {
	if s.Kind == InFlight && s.Previous != nil {
		return *s.Previous
	}
	return s
}

func (s State) IsAuthenticated() bool {
	return s.Kind == Authenticated
}

func (s State) String() string {
	switch s.Kind {
	case Authenticated:
		return fmt.Sprintf("authenticated(%s)", s.Session.Profile.Email)
	case InFlight:
		prev := "?"
		if s.Previous != nil {
			prev = s.Previous.String()
		}
		return fmt.Sprintf("in_flight(%s, %s)", s.Op, prev)
	}
	return s.Kind.String()
}
