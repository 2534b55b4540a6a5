package service

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/roomzy/internal/apiclient"
	"github.com/wolfeidau/roomzy/internal/models"
	"github.com/wolfeidau/roomzy/internal/storage"
)

const (
	registerPath       = "/auth/register"
	loginPath          = "/auth/login"
	logoutPath         = "/auth/logout"
	verifyEmailPath    = "/auth/verify-email"
	resendCodePath     = "/auth/resend-verification-code"
	currentUserPath    = "/auth/me"
	changePasswordPath = "/auth/change-password"
	forgotPasswordPath = "/auth/forgot-password"
	resetPasswordPath  = "/auth/reset-password"
)

const noRefreshTokenMessage = "No hay token de refresh"

// AuthService covers the /auth endpoints and owns writes to the credential pair
// outside of the client's own refresh cycle.
type AuthService struct {
	client *apiclient.Client
	tokens *storage.TokenStore
}

func NewAuthService(client *apiclient.Client) *AuthService {
	return &AuthService{client: client, tokens: client.Tokens()}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.Response[models.User], error) {
	return call[models.User](ctx, s.client, &apiclient.Request{
		Method:    http.MethodPost,
		Path:      registerPath,
		Body:      req,
		NoRefresh: true,
	})
}

// Login persists the issued credential pair when the backend accepts the credentials.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.Response[models.User], error) {
	resp, err := call[models.User](ctx, s.client, &apiclient.Request{
		Method:    http.MethodPost,
		Path:      loginPath,
		Body:      req,
		NoRefresh: true,
	})
	if err != nil {
		return nil, err
	}

	if err := s.storeTokens(resp.Success, resp.Tokens); err != nil {
		return nil, err
	}

	return resp, nil
}

// VerifyEmail confirms the code; a credential pair in the answer is persisted.
func (s *AuthService) VerifyEmail(ctx context.Context, req models.VerifyEmailRequest) (*models.Response[models.User], error) {
	resp, err := call[models.User](ctx, s.client, &apiclient.Request{
		Method:    http.MethodPost,
		Path:      verifyEmailPath,
		Body:      req,
		NoRefresh: true,
	})
	if err != nil {
		return nil, err
	}

	if err := s.storeTokens(resp.Success, resp.Tokens); err != nil {
		return nil, err
	}

	return resp, nil
}

func (s *AuthService) ResendVerificationCode(ctx context.Context, req models.ResendCodeRequest) (*models.Response[models.Empty], error) {
	return call[models.Empty](ctx, s.client, &apiclient.Request{
		Method:    http.MethodPost,
		Path:      resendCodePath,
		Body:      req,
		NoRefresh: true,
	})
}

func (s *AuthService) CurrentUser(ctx context.Context) (*models.Response[models.User], error) {
	return call[models.User](ctx, s.client, &apiclient.Request{
		Method: http.MethodGet,
		Path:   currentUserPath,
	})
}

// Logout tells the backend to revoke the session. Local tokens are cleared
// whether or not the call succeeds.
func (s *AuthService) Logout(ctx context.Context) (*models.Response[models.Empty], error) {
	resp, err := call[models.Empty](ctx, s.client, &apiclient.Request{
		Method: http.MethodPost,
		Path:   logoutPath,
	})

	s.ClearSession()

	return resp, err
}

// RefreshToken exchanges the stored refresh token for a new pair outside of
// the 401 flow. Any failure clears the pair.
func (s *AuthService) RefreshToken(ctx context.Context) (*models.Response[models.Empty], error) {
	refreshToken := s.tokens.RefreshToken()
	if refreshToken == "" {
		s.ClearSession()
		return nil, &Error{Message: noRefreshTokenMessage, Err: apiclient.ErrNoRefreshToken}
	}

	resp, err := call[models.Empty](ctx, s.client, &apiclient.Request{
		Method:    http.MethodPost,
		Path:      apiclient.RefreshTokenPath,
		Body:      models.RefreshTokenRequest{RefreshToken: refreshToken},
		NoRefresh: true,
	})
	if err != nil {
		s.ClearSession()
		return nil, err
	}

	if err := s.storeTokens(resp.Success, resp.Tokens); err != nil {
		s.ClearSession()
		return nil, err
	}

	return resp, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (*models.Response[models.Empty], error) {
	return call[models.Empty](ctx, s.client, &apiclient.Request{
		Method: http.MethodPut,
		Path:   changePasswordPath,
		Body:   req,
	})
}

func (s *AuthService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (*models.Response[models.Empty], error) {
	return call[models.Empty](ctx, s.client, &apiclient.Request{
		Method:    http.MethodPost,
		Path:      forgotPasswordPath,
		Body:      req,
		NoRefresh: true,
	})
}

func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*models.Response[models.Empty], error) {
	return call[models.Empty](ctx, s.client, &apiclient.Request{
		Method:    http.MethodPost,
		Path:      resetPasswordPath,
		Body:      req,
		NoRefresh: true,
	})
}

// IsAuthenticated reports whether an access token is stored. It does not
// contact the backend.
func (s *AuthService) IsAuthenticated() bool {
	return s.tokens.HasAccessToken()
}

// ClearSession drops the credential pair.
func (s *AuthService) ClearSession() {
	if err := s.tokens.Clear(); err != nil {
		log.Error().Err(err).Msg("failed to clear tokens")
	}
}

func (s *AuthService) storeTokens(success bool, tokens *models.Tokens) error {
	if !success || tokens == nil || tokens.AccessToken == "" {
		return nil
	}
	if err := s.tokens.SetTokens(tokens.AccessToken, tokens.RefreshToken); err != nil {
		return &Error{Message: "No se pudo guardar la sesión", Err: err}
	}
	return nil
}
