package session

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/wolfeidau/roomzy/internal/models"
	"github.com/wolfeidau/roomzy/internal/service"
	"github.com/wolfeidau/roomzy/internal/storage"
	"github.com/wolfeidau/roomzy/internal/telemetry"
	"github.com/wolfeidau/roomzy/internal/validation"
)

// AuthAPI is the backend surface the store drives. *service.AuthService implements it.
type AuthAPI interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.Response[models.User], error)
	Login(ctx context.Context, req models.LoginRequest) (*models.Response[models.User], error)
	VerifyEmail(ctx context.Context, req models.VerifyEmailRequest) (*models.Response[models.User], error)
	ResendVerificationCode(ctx context.Context, req models.ResendCodeRequest) (*models.Response[models.Empty], error)
	Logout(ctx context.Context) (*models.Response[models.Empty], error)
	CurrentUser(ctx context.Context) (*models.Response[models.User], error)
	ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (*models.Response[models.Empty], error)
	ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (*models.Response[models.Empty], error)
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*models.Response[models.Empty], error)
	IsAuthenticated() bool
}

var _ AuthAPI = (*service.AuthService)(nil)

// Actions are the operations that change the session. None of them return an
// error: failures are reported in the Result and recorded in State.Error.
type Actions interface {
	Register(ctx context.Context, req models.RegisterRequest) models.Result
	Login(ctx context.Context, req models.LoginRequest) models.Result
	VerifyEmail(ctx context.Context, req models.VerifyEmailRequest) models.Result
	ResendVerificationCode(ctx context.Context, req models.ResendCodeRequest) models.Result
	Logout(ctx context.Context)
	RefreshUser(ctx context.Context)
	ChangePassword(ctx context.Context, req models.ChangePasswordRequest) models.Result
	ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) models.Result
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) models.Result
	ClearError()
	ClearPendingVerification()
	SetUser(user *models.User)
}

var _ Actions = (*Store)(nil)

// Default failure messages recorded in State.Error.
const (
	registerFailed       = "Error en el registro"
	loginFailed          = "Error en el login"
	verifyEmailFailed    = "Error verificando email"
	resendCodeFailed     = "Error reenviando código"
	changePasswordFailed = "Error cambiando contraseña"
	forgotPasswordFailed = "Error olvidando contraseña"
	resetPasswordFailed  = "Error reseteando contraseña"
	connectionFailed     = "Error de conexión"
)

// Store owns the session state. Create one per process with New and pass it
// to whatever needs it.
type Store struct {
	mu     sync.Mutex
	state  State
	phase  Phase
	closed bool

	// notifyMu orders notifications the same way as commits
	notifyMu    sync.Mutex
	subscribers map[int]func(State)
	nextSubID   int

	auth    AuthAPI
	kv      storage.KV
	metrics *telemetry.Metrics
}

// New creates a store driving auth. The whitelisted snapshot is persisted in kv
// once the store is hydrated; kv may be nil for a purely in-memory session.
func New(auth AuthAPI, kv storage.KV) *Store {
	return &Store{
		state:       InitialState(),
		subscribers: make(map[int]func(State)),
		auth:        auth,
		kv:          kv,
		metrics:     telemetry.GetMetrics(),
	}
}

// Snapshot returns the current committed state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Phase returns the hydration phase.
func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Subscribe registers fn to receive every committed snapshot and returns a
// function removing it. fn runs synchronously after the commit and must not
// call actions on the store.
func (s *Store) Subscribe(fn func(State)) func() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.notifyMu.Lock()
		defer s.notifyMu.Unlock()
		delete(s.subscribers, id)
	}
}

// Close detaches the store. Actions already in flight finish their network
// call but their results are no longer committed.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.notifyMu.Lock()
	clear(s.subscribers)
	s.notifyMu.Unlock()
}

// commit applies fn to a copy of the state, restores the authentication
// invariant, persists and notifies observers.
func (s *Store) commit(fn func(st *State)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		log.Debug().Msg("store closed, dropping commit")
		return
	}

	next := s.state.clone()
	fn(&next)
	next.IsAuthenticated = next.User != nil
	s.state = next

	s.persistLocked()

	snapshot := next.clone()

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, sub := range s.subscribers {
		sub(snapshot.clone())
	}
}

func (s *Store) reset(st *State) {
	*st = InitialState()
}

func (s *Store) recordAction(ctx context.Context, action string, success bool) {
	s.metrics.SessionActionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.Bool("success", success),
	))
}

// failure converts a service error into the action result and the message
// stored in State.Error.
func failure(err error, fallback string) (models.Result, string) {
	var fieldErrors []models.FieldError
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		fieldErrors = svcErr.Errors
	}

	return models.Result{
		Success: false,
		Message: service.MessageOf(err, connectionFailed),
		Errors:  fieldErrors,
	}, service.MessageOf(err, fallback)
}

// Register creates the account. On success the normalized email is
// remembered as pending verification.
func (s *Store) Register(ctx context.Context, req models.RegisterRequest) models.Result {
	req.Email = validation.NormalizeEmail(req.Email)

	s.commit(func(st *State) {
		st.Error = ""
		st.IsRegistering = true
	})

	resp, err := s.auth.Register(ctx, req)
	if err != nil {
		res, msg := failure(err, registerFailed)
		s.commit(func(st *State) {
			st.IsRegistering = false
			st.Error = msg
		})
		s.recordAction(ctx, "register", false)
		return res
	}

	s.commit(func(st *State) {
		st.IsRegistering = false
		if resp.Success {
			st.PendingVerificationEmail = req.Email
			st.RequiresEmailVerification = true
		}
	})
	s.recordAction(ctx, "register", resp.Success)

	return models.Result{Success: resp.Success, Message: resp.Message}
}

// Login signs the user in. When the backend asks for email verification the
// submitted email becomes the pending one and protected content stays
// inaccessible until VerifyEmail succeeds.
func (s *Store) Login(ctx context.Context, req models.LoginRequest) models.Result {
	req.Email = validation.NormalizeEmail(req.Email)

	s.commit(func(st *State) {
		st.Error = ""
		st.IsLoggingIn = true
	})

	resp, err := s.auth.Login(ctx, req)
	if err != nil {
		res, msg := failure(err, loginFailed)
		s.commit(func(st *State) {
			st.IsLoggingIn = false
			st.Error = msg
		})
		s.recordAction(ctx, "login", false)
		return res
	}

	s.commit(func(st *State) {
		st.IsLoggingIn = false
		if !resp.Success {
			return
		}
		if resp.User != nil {
			st.User = resp.User.Clone()
		}
		if resp.User != nil || resp.RequiresEmailVerification {
			st.RequiresEmailVerification = resp.RequiresEmailVerification
			st.PendingVerificationEmail = ""
			if resp.RequiresEmailVerification {
				st.PendingVerificationEmail = req.Email
			}
		}
	})
	s.recordAction(ctx, "login", resp.Success)

	return models.Result{
		Success:                   resp.Success,
		Message:                   resp.Message,
		RequiresEmailVerification: resp.RequiresEmailVerification,
	}
}

// VerifyEmail confirms the pending email and signs the user in.
func (s *Store) VerifyEmail(ctx context.Context, req models.VerifyEmailRequest) models.Result {
	s.commit(func(st *State) {
		st.Error = ""
		st.IsVerifyingEmail = true
	})

	resp, err := s.auth.VerifyEmail(ctx, req)
	if err != nil {
		res, msg := failure(err, verifyEmailFailed)
		s.commit(func(st *State) {
			st.IsVerifyingEmail = false
			st.Error = msg
		})
		s.recordAction(ctx, "verify_email", false)
		return res
	}

	s.commit(func(st *State) {
		st.IsVerifyingEmail = false
		if resp.Success && resp.User != nil {
			st.User = resp.User.Clone()
			st.RequiresEmailVerification = false
			st.PendingVerificationEmail = ""
		}
	})
	s.recordAction(ctx, "verify_email", resp.Success)

	return models.Result{Success: resp.Success, Message: resp.Message}
}

func (s *Store) ResendVerificationCode(ctx context.Context, req models.ResendCodeRequest) models.Result {
	return s.simpleAction(ctx, "resend_code", resendCodeFailed,
		func(st *State, v bool) { st.IsResendingCode = v },
		func() (*models.Response[models.Empty], error) { return s.auth.ResendVerificationCode(ctx, req) },
	)
}

func (s *Store) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) models.Result {
	return s.simpleAction(ctx, "change_password", changePasswordFailed,
		func(st *State, v bool) { st.IsChangingPassword = v },
		func() (*models.Response[models.Empty], error) { return s.auth.ChangePassword(ctx, req) },
	)
}

func (s *Store) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) models.Result {
	return s.simpleAction(ctx, "forgot_password", forgotPasswordFailed,
		func(st *State, v bool) { st.IsForgotPasswordLoading = v },
		func() (*models.Response[models.Empty], error) { return s.auth.ForgotPassword(ctx, req) },
	)
}

func (s *Store) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) models.Result {
	return s.simpleAction(ctx, "reset_password", resetPasswordFailed,
		func(st *State, v bool) { st.IsResetPasswordLoading = v },
		func() (*models.Response[models.Empty], error) { return s.auth.ResetPassword(ctx, req) },
	)
}

// simpleAction runs an action whose only effect on the session is its loading
// flag and, on failure, the error message.
func (s *Store) simpleAction(
	ctx context.Context,
	name, fallback string,
	setFlag func(st *State, v bool),
	run func() (*models.Response[models.Empty], error),
) models.Result {
	s.commit(func(st *State) {
		st.Error = ""
		setFlag(st, true)
	})

	resp, err := run()
	if err != nil {
		res, msg := failure(err, fallback)
		s.commit(func(st *State) {
			setFlag(st, false)
			st.Error = msg
		})
		s.recordAction(ctx, name, false)
		return res
	}

	s.commit(func(st *State) {
		setFlag(st, false)
	})
	s.recordAction(ctx, name, resp.Success)

	return models.Result{Success: resp.Success, Message: resp.Message}
}

// Logout ends the session on the backend and locally. The local reset happens
// even when the backend cannot be reached.
func (s *Store) Logout(ctx context.Context) {
	s.commit(func(st *State) {
		st.Error = ""
		st.IsLoading = true
	})

	if _, err := s.auth.Logout(ctx); err != nil {
		log.Warn().Err(err).Msg("logout failed on the server, clearing local session")
	}

	s.commit(s.reset)
	s.metrics.SessionResetsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "logout")))
	s.recordAction(ctx, "logout", true)
}

// RefreshUser reloads the current user from the backend. Without an access
// token the session is reset immediately and no request is made.
func (s *Store) RefreshUser(ctx context.Context) {
	if !s.auth.IsAuthenticated() {
		s.commit(s.reset)
		s.metrics.SessionResetsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "no_token")))
		return
	}

	s.commit(func(st *State) {
		st.Error = ""
		st.IsLoading = true
	})

	resp, err := s.auth.CurrentUser(ctx)
	if err != nil || !resp.Success || resp.User == nil {
		if err != nil {
			log.Debug().Err(err).Msg("failed to load current user")
		}
		s.commit(s.reset)
		s.metrics.SessionResetsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "refresh_failed")))
		s.recordAction(ctx, "refresh_user", false)
		return
	}

	s.commit(func(st *State) {
		st.IsLoading = false
		st.User = resp.User.Clone()
	})
	s.recordAction(ctx, "refresh_user", true)
}

// ClearError drops the last failure message.
func (s *Store) ClearError() {
	s.commit(func(st *State) {
		st.Error = ""
	})
}

// ClearPendingVerification abandons the pending email verification.
func (s *Store) ClearPendingVerification() {
	s.commit(func(st *State) {
		st.PendingVerificationEmail = ""
		st.RequiresEmailVerification = false
	})
}

// SetUser replaces the user, for example after a profile update. A nil user
// signs the session out locally.
func (s *Store) SetUser(user *models.User) {
	s.commit(func(st *State) {
		st.User = user.Clone()
	})
}
