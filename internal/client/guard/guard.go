// Package guard decides whether a console view may be shown for the
// current session state.
package guard

import (
	"fmt"
	"sort"

	"github.com/dmitrijs2005/videotec/internal/client/auth"
)

type Requirement int

const (
	Public Requirement = iota
	RequiresAuth
)

type Outcome int

const (
	// Wait means the session is still being resolved; show a loading
	// indicator and decide again on the next transition.
	Wait Outcome = iota
	Allow
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Wait:
		return "wait"
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// HomeView is where anonymous users are sent from protected views.
const HomeView = "home"

type Decision struct {
	Outcome Outcome
	// Target is set for Redirect.
	Target string
}

// Decide is pure: the same state and requirement always give the same
// decision. An in-flight operation is decided as the state it started
// from.
func Decide(state auth.State, req Requirement) Decision {
	s := state.Settled()

	switch s.Kind {
	case auth.Authenticated:
		return Decision{Outcome: Allow}
	case auth.Anonymous:
		if req == RequiresAuth {
			return Decision{Outcome: Redirect, Target: HomeView}
		}
		return Decision{Outcome: Allow}
	default:
		return Decision{Outcome: Wait}
	}
}

// Views lists the console's views and what each requires.
var Views = map[string]Requirement{
	HomeView:          Public,
	"login":           Public,
	"register":        Public,
	"forgot-password": Public,
	"reset-password":  Public,
	"schools":         RequiresAuth,
	"my-schools":      RequiresAuth,
	"classes":         RequiresAuth,
	"my-classes":      RequiresAuth,
	"courses":         RequiresAuth,
	"my-courses":      RequiresAuth,
	"course-details":  RequiresAuth,
	"create-school":   RequiresAuth,
	"create-class":    RequiresAuth,
	"create-course":   RequiresAuth,
	"profile":         RequiresAuth,
}

// Lookup returns the requirement of view.
func Lookup(view string) (Requirement, bool) {
	r, ok := Views[view]
	return r, ok
}

// ViewNames returns the known view names, sorted.
func ViewNames() []string {
	names := make([]string, 0, len(Views))
	for name := range Views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
