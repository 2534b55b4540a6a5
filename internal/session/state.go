// Package session holds the signed in user's state and the actions that change
// it. Every action commits at most twice, once on entry and once with its
// result, and observers only ever see committed snapshots.
package session

import "github.com/wolfeidau/roomzy/internal/models"

// Phase tracks restoring the persisted snapshot.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseHydrating
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseHydrating:
		return "hydrating"
	case PhaseReady:
		return "ready"
	}
	return "unknown"
}

// State is a snapshot of the session. IsAuthenticated is kept equal to
// User != nil by every commit.
type State struct {
	User            *models.User
	IsAuthenticated bool
	IsLoading       bool
	Error           string

	IsRegistering           bool
	IsLoggingIn             bool
	IsVerifyingEmail        bool
	IsResendingCode         bool
	IsChangingPassword      bool
	IsForgotPasswordLoading bool
	IsResetPasswordLoading  bool

	PendingVerificationEmail  string
	RequiresEmailVerification bool
}

// InitialState is the empty session a process starts with and logout returns to.
func InitialState() State {
	return State{}
}

// ContentAccessible reports whether protected content may be shown: the user
// is signed in, no verification is pending and the email is verified.
func (s State) ContentAccessible() bool {
	return s.IsAuthenticated &&
		!s.RequiresEmailVerification &&
		s.User != nil &&
		s.User.IsEmailVerified
}

// Busy reports whether any action is in flight.
func (s State) Busy() bool {
	return s.IsLoading ||
		s.IsRegistering ||
		s.IsLoggingIn ||
		s.IsVerifyingEmail ||
		s.IsResendingCode ||
		s.IsChangingPassword ||
		s.IsForgotPasswordLoading ||
		s.IsResetPasswordLoading
}

func (s State) clone() State {
	s.User = s.User.Clone()
	return s
}
