// Package guard decides whether a protected command may run for the current
// session, must wait for it to settle or must send the user elsewhere.
package guard

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/roomzy/internal/session"
)

const (
	DefaultLoginPath    = "/login"
	DefaultVerifyPath   = "/verify-email"
	DefaultNonAdminPath = "/inicio"
)

// Requirement is the capability a Guard checks.
type Requirement int

const (
	// Authenticated only needs a signed in user.
	Authenticated Requirement = iota
	// Verified also needs the user's email to be verified.
	Verified
)

// Outcome is what a guarded caller should do.
type Outcome int

const (
	Wait Outcome = iota
	Redirect
	Render
)

func (o Outcome) String() string {
	switch o {
	case Wait:
		return "wait"
	case Redirect:
		return "redirect"
	case Render:
		return "render"
	}
	return "unknown"
}

// Decision is the result of evaluating a guard. Path is set for Redirect.
type Decision struct {
	Outcome Outcome
	Path    string
}

// ErrNotReady is returned by Decision.Err while the session is still loading.
var ErrNotReady = errors.New("session still loading")

// RedirectError is returned by Decision.Err when access was denied.
type RedirectError struct {
	Path string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirect to %s", e.Path)
}

// Err converts the decision into an error for callers that cannot wait:
// nil for Render, *RedirectError for Redirect.
func (d Decision) Err() error {
	switch d.Outcome {
	case Render:
		return nil
	case Redirect:
		return &RedirectError{Path: d.Path}
	}
	return ErrNotReady
}

// Source is the part of the session store a guard reads and drives.
type Source interface {
	Phase() session.Phase
	Snapshot() session.State
	RefreshUser(ctx context.Context)
}

var _ Source = (*session.Store)(nil)

// Evaluator is implemented by Guard and AdminGuard.
type Evaluator interface {
	Decide(phase session.Phase, st session.State) Decision
}

// Guard gates content on authentication and optionally email verification.
type Guard struct {
	Require    Requirement
	RedirectTo string
	VerifyPath string
}

// Decide is pure: it only looks at the phase and state it is given.
func (g Guard) Decide(phase session.Phase, st session.State) Decision {
	if phase != session.PhaseReady || st.IsLoading {
		return Decision{Outcome: Wait}
	}

	if !st.IsAuthenticated {
		return Decision{Outcome: Redirect, Path: orDefault(g.RedirectTo, DefaultLoginPath)}
	}

	if g.Require == Verified && st.User != nil && !st.User.IsEmailVerified {
		return Decision{Outcome: Redirect, Path: orDefault(g.VerifyPath, DefaultVerifyPath)}
	}

	return Decision{Outcome: Render}
}

// AdminGuard gates the back office: signed in users without the admin role
// are sent to RedirectTo.
type AdminGuard struct {
	LoginPath  string
	RedirectTo string
}

func (g AdminGuard) Decide(phase session.Phase, st session.State) Decision {
	d := Guard{Require: Authenticated, RedirectTo: g.LoginPath}.Decide(phase, st)
	if d.Outcome != Render {
		return d
	}

	if !st.User.IsAdmin() {
		return Decision{Outcome: Redirect, Path: orDefault(g.RedirectTo, DefaultNonAdminPath)}
	}

	return d
}

// Mount evaluates e against src. Once the store is hydrated and no user is
// loaded nor loading, it first asks the store to load the current user.
func Mount(ctx context.Context, src Source, e Evaluator) Decision {
	phase := src.Phase()
	if phase != session.PhaseReady {
		return Decision{Outcome: Wait}
	}

	st := src.Snapshot()
	if st.User == nil && !st.IsLoading {
		src.RefreshUser(ctx)
		st = src.Snapshot()
	}

	d := e.Decide(phase, st)

	log.Debug().Str("outcome", d.Outcome.String()).Str("path", d.Path).Msg("guard evaluated")

	return d
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
