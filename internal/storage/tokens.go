package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Keys of the credential pair, shared with anything else reading the same area.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
)

var (
	// ErrNotJWT is returned when the access token is an opaque string.
	ErrNotJWT = errors.New("access token is not a JWT")
	// ErrNoAccessToken is returned when there is nothing to inspect.
	ErrNoAccessToken = errors.New("no access token stored")
)

// TokenStore reads and writes the credential pair.
type TokenStore struct {
	kv KV
}

// NewTokenStore creates a token store over kv.
func NewTokenStore(kv KV) *TokenStore {
	return &TokenStore{kv: kv}
}

// AccessToken returns the stored access token or an empty string.
func (t *TokenStore) AccessToken() string {
	v, _, err := t.kv.Get(AccessTokenKey)
	if err != nil {
		return ""
	}
	return v
}

// RefreshToken returns the stored refresh token or an empty string.
func (t *TokenStore) RefreshToken() string {
	v, _, err := t.kv.Get(RefreshTokenKey)
	if err != nil {
		return ""
	}
	return v
}

// HasAccessToken returns true if an access token is stored.
func (t *TokenStore) HasAccessToken() bool {
	return t.AccessToken() != ""
}

// SetAccessToken replaces the access token and leaves the refresh token alone.
func (t *TokenStore) SetAccessToken(accessToken string) error {
	if err := t.kv.Set(AccessTokenKey, accessToken); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	return nil
}

// SetTokens stores both halves of the pair. An empty refresh token keeps the
// stored one.
func (t *TokenStore) SetTokens(accessToken, refreshToken string) error {
	if err := t.SetAccessToken(accessToken); err != nil {
		return err
	}
	if refreshToken == "" {
		return nil
	}
	if err := t.kv.Set(RefreshTokenKey, refreshToken); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// Clear removes both tokens.
func (t *TokenStore) Clear() error {
	return t.kv.Delete(AccessTokenKey, RefreshTokenKey)
}

// AccessTokenClaims describes the stored access token for diagnostics.
type AccessTokenClaims struct {
	Subject   string
	ExpiresAt time.Time
	Expired   bool
}

// InspectAccessToken decodes the access token claims without verifying the signature.
// The client never trusts these claims, the server remains the authority.
func (t *TokenStore) InspectAccessToken() (*AccessTokenClaims, error) {
	raw := t.AccessToken()
	if raw == "" {
		return nil, ErrNoAccessToken
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}

	out := &AccessTokenClaims{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
		out.Expired = time.Now().After(claims.ExpiresAt.Time)
	}
	return out, nil
}
