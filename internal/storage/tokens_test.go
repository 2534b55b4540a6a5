package storage

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStore_SetAndClear(t *testing.T) {
	tokens := NewTokenStore(NewMemoryStore())

	assert.False(t, tokens.HasAccessToken())
	assert.Empty(t, tokens.RefreshToken())

	require.NoError(t, tokens.SetTokens("access-1", "refresh-1"))
	assert.True(t, tokens.HasAccessToken())
	assert.Equal(t, "access-1", tokens.AccessToken())
	assert.Equal(t, "refresh-1", tokens.RefreshToken())

	require.NoError(t, tokens.Clear())
	assert.False(t, tokens.HasAccessToken())
	assert.Empty(t, tokens.RefreshToken())
}

func TestTokenStore_SetTokensKeepsRefreshWhenEmpty(t *testing.T) {
	tokens := NewTokenStore(NewMemoryStore())

	require.NoError(t, tokens.SetTokens("access-1", "refresh-1"))
	require.NoError(t, tokens.SetTokens("access-2", ""))

	assert.Equal(t, "access-2", tokens.AccessToken())
	assert.Equal(t, "refresh-1", tokens.RefreshToken())

	require.NoError(t, tokens.SetAccessToken("access-3"))
	assert.Equal(t, "access-3", tokens.AccessToken())
	assert.Equal(t, "refresh-1", tokens.RefreshToken())
}

func TestTokenStore_SharesKeysWithKV(t *testing.T) {
	kv := NewMemoryStore()
	tokens := NewTokenStore(kv)
	require.NoError(t, tokens.SetTokens("a", "r"))

	v, ok, err := kv.Get("accessToken")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	v, ok, err = kv.Get("refreshToken")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "r", v)
}

func TestTokenStore_InspectAccessToken(t *testing.T) {
	signed := func(t *testing.T, exp time.Time) string {
		t.Helper()
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(exp),
		})
		s, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)
		return s
	}

	t.Run("valid token", func(t *testing.T) {
		tokens := NewTokenStore(NewMemoryStore())
		require.NoError(t, tokens.SetTokens(signed(t, time.Now().Add(time.Hour)), "r"))

		claims, err := tokens.InspectAccessToken()
		require.NoError(t, err)
		assert.Equal(t, "42", claims.Subject)
		assert.False(t, claims.Expired)
	})

	t.Run("expired token", func(t *testing.T) {
		tokens := NewTokenStore(NewMemoryStore())
		require.NoError(t, tokens.SetTokens(signed(t, time.Now().Add(-time.Hour)), "r"))

		claims, err := tokens.InspectAccessToken()
		require.NoError(t, err)
		assert.True(t, claims.Expired)
	})

	t.Run("opaque token", func(t *testing.T) {
		tokens := NewTokenStore(NewMemoryStore())
		require.NoError(t, tokens.SetTokens("opaque", "r"))

		_, err := tokens.InspectAccessToken()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotJWT)
	})

	t.Run("no token", func(t *testing.T) {
		tokens := NewTokenStore(NewMemoryStore())
		_, err := tokens.InspectAccessToken()
		assert.ErrorIs(t, err, ErrNoAccessToken)
	})
}
