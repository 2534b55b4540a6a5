package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfeidau/roomzy/internal/guard"
	"github.com/wolfeidau/roomzy/internal/models"
)

type account struct {
	user     models.User
	password string
	code     string
}

// backend is an in memory Roomzy API issuing JWT access tokens.
type backend struct {
	mu       sync.Mutex
	accounts map[string]*account
	access   map[string]string
	refresh  map[string]string
	nextID   int64
	tokenSeq int

	registerCalls atomic.Int32
	meCalls       atomic.Int32
	refreshCalls  atomic.Int32
	logoutCalls   atomic.Int32
	photo         string
}

func newBackend(t *testing.T) (*backend, *httptest.Server) {
	t.Helper()

	b := &backend{
		accounts: map[string]*account{},
		access:   map[string]string{},
		refresh:  map[string]string{},
		nextID:   100,
	}
	srv := httptest.NewServer(b.handler(t))
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *backend) addAccount(id int64, email, password string, role models.Role, verified bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.accounts[email] = &account{
		user: models.User{
			ID:              id,
			Name:            "Ana",
			LastName:        "Pérez",
			Email:           email,
			Region:          "Valparaíso",
			City:            "Viña del Mar",
			Phone:           "987654321",
			Role:            role,
			IsEmailVerified: verified,
		},
		password: password,
		code:     "ABC123",
	}
}

// issue must be called with b.mu held.
func (b *backend) issue(email string) map[string]string {
	b.tokenSeq++
	acc := b.accounts[email]

	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprint(acc.user.ID),
		ID:        fmt.Sprint(b.tokenSeq),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(15 * time.Minute)),
	}
	access, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	refresh := fmt.Sprintf("refresh-%d", b.tokenSeq)

	b.access[access] = email
	b.refresh[refresh] = email

	return map[string]string{"accessToken": access, "refreshToken": refresh, "expiresIn": "15m"}
}

// expireAccess invalidates every access token, refresh tokens keep working.
func (b *backend) expireAccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.access = map[string]string{}
}

// revokeAll invalidates every credential.
func (b *backend) revokeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.access = map[string]string{}
	b.refresh = map[string]string{}
}

func (b *backend) authorize(w http.ResponseWriter, r *http.Request) (*account, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	email, ok := b.access[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Token expirado"})
		return nil, false
	}
	return b.accounts[email], true
}

func (b *backend) byID(id string) *account {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, acc := range b.accounts {
		if fmt.Sprint(acc.user.ID) == id {
			return acc
		}
	}
	return nil
}

func (b *backend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		b.registerCalls.Add(1)
		var req models.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		b.mu.Lock()
		defer b.mu.Unlock()
		if _, exists := b.accounts[req.Email]; exists {
			writeJSON(w, http.StatusConflict, map[string]any{"success": false, "message": "El email ya está registrado"})
			return
		}
		b.nextID++
		b.accounts[req.Email] = &account{
			user: models.User{
				ID:       b.nextID,
				Name:     req.Name,
				LastName: req.LastName,
				Email:    req.Email,
				Region:   req.Region,
				City:     req.City,
				Phone:    req.Phone,
				Role:     req.Role,
			},
			password: req.Password,
			code:     "ABC123",
		}
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Usuario registrado exitosamente"})
	})

	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		b.mu.Lock()
		defer b.mu.Unlock()
		acc, ok := b.accounts[req.Email]
		if !ok || acc.password != req.Password {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Credenciales inválidas"})
			return
		}
		if !acc.user.IsEmailVerified {
			writeJSON(w, http.StatusOK, map[string]any{
				"success":                   true,
				"message":                   "Por favor verifica tu email",
				"requiresEmailVerification": true,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Login exitoso",
			"user":    acc.user,
			"tokens":  b.issue(req.Email),
		})
	})

	mux.HandleFunc("POST /auth/verify-email", func(w http.ResponseWriter, r *http.Request) {
		var req models.VerifyEmailRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		b.mu.Lock()
		defer b.mu.Unlock()
		acc, ok := b.accounts[req.Email]
		if !ok || acc.code != req.Code {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Código de verificación inválido"})
			return
		}
		acc.user.IsEmailVerified = true
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Email verificado exitosamente",
			"user":    acc.user,
			"tokens":  b.issue(req.Email),
		})
	})

	mux.HandleFunc("POST /auth/resend-verification-code", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Código reenviado"})
	})

	mux.HandleFunc("POST /auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		b.refreshCalls.Add(1)
		var req models.RefreshTokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		b.mu.Lock()
		defer b.mu.Unlock()
		email, ok := b.refresh[req.RefreshToken]
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Refresh token inválido"})
			return
		}
		delete(b.refresh, req.RefreshToken)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "tokens": b.issue(email)})
	})

	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		b.logoutCalls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Sesión cerrada"})
	})

	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		b.meCalls.Add(1)
		acc, ok := b.authorize(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": acc.user})
	})

	mux.HandleFunc("GET /users/profile/{id}", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := b.authorize(w, r); !ok {
			return
		}
		acc := b.byID(r.PathValue("id"))
		if acc == nil {
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Usuario no encontrado"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": acc.user})
	})

	mux.HandleFunc("PATCH /users/profile/photo", func(w http.ResponseWriter, r *http.Request) {
		acc, ok := b.authorize(w, r)
		if !ok {
			return
		}
		_, header, err := r.FormFile("profilePhoto")
		require.NoError(t, err)

		b.mu.Lock()
		b.photo = header.Filename
		url := "/uploads/" + header.Filename
		acc.user.ProfilePhoto = &url
		user := acc.user
		b.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Foto actualizada", "user": user})
	})

	mux.HandleFunc("PATCH /users/profile/{id}", func(w http.ResponseWriter, r *http.Request) {
		acc, ok := b.authorize(w, r)
		if !ok {
			return
		}
		var req models.UpdateProfileRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		b.mu.Lock()
		defer b.mu.Unlock()
		if req.City != nil {
			acc.user.City = *req.City
		}
		if req.Bio != nil {
			acc.user.Bio = *req.Bio
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": acc.user})
	})

	admin := func(w http.ResponseWriter, r *http.Request) bool {
		acc, ok := b.authorize(w, r)
		if !ok {
			return false
		}
		if !acc.user.IsAdmin() {
			writeJSON(w, http.StatusForbidden, map[string]any{"success": false, "message": "Acceso denegado"})
			return false
		}
		return true
	}

	mux.HandleFunc("GET /admin/users", func(w http.ResponseWriter, r *http.Request) {
		if !admin(w, r) {
			return
		}
		b.mu.Lock()
		var users []models.User
		for _, acc := range b.accounts {
			users = append(users, acc.user)
		}
		b.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"users":      users,
				"pagination": map[string]any{"currentPage": 1, "totalPages": 1, "totalUsers": len(users), "limit": 10},
			},
		})
	})

	mux.HandleFunc("GET /admin/users/stats", func(w http.ResponseWriter, r *http.Request) {
		if !admin(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{"stats": map[string]any{
				"totalUsers":      2,
				"usersByRole":     map[string]int{"admin": 1, "seeker": 1},
				"verifiedUsers":   2,
				"unverifiedUsers": 0,
			}},
		})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type runner interface {
	Run(ctx context.Context, globals *Globals) error
}

// cli runs commands against one backend and one state directory, so the
// session carries over between invocations like it does on disk.
type cli struct {
	url string
	dir string
}

func newCLI(t *testing.T, srv *httptest.Server) *cli {
	return &cli{url: srv.URL, dir: t.TempDir()}
}

func (c *cli) run(cmd runner, stdin string) (string, error) {
	var out bytes.Buffer
	err := cmd.Run(context.Background(), &Globals{
		APIURL:   c.url,
		StateDir: c.dir,
		Timeout:  5 * time.Second,
		stdout:   &out,
		stdin:    strings.NewReader(stdin),
	})
	return out.String(), err
}

func (c *cli) login(t *testing.T, email, password string) {
	t.Helper()
	_, err := c.run(&LoginCmd{Email: email, Password: password}, "")
	require.NoError(t, err)
}

func TestLoginWhoamiStatusLogout(t *testing.T) {
	b, srv := newBackend(t)
	b.addAccount(7, "ana@example.com", "Secreta123", models.RoleSeeker, true)
	c := newCLI(t, srv)

	out, err := c.run(&LoginCmd{Email: "ANA@example.com "}, "Secreta123\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Ana Pérez <ana@example.com>")

	out, err = c.run(&WhoamiCmd{}, "")
	require.NoError(t, err)
	assert.Regexp(t, `Email:\s+ana@example.com`, out)
	assert.Regexp(t, `Phone:\s+\+56 987654321`, out)
	assert.Regexp(t, `Location:\s+Viña del Mar, Valparaíso`, out)

	out, err = c.run(&StatusCmd{}, "")
	require.NoError(t, err)
	assert.Regexp(t, `Session:\s+ready`, out)
	assert.Regexp(t, `Authenticated:\s+yes`, out)
	assert.Regexp(t, `Refresh token:\s+yes`, out)
	assert.Regexp(t, `Access token:\s+valid`, out)
	assert.Regexp(t, `Subject:\s+7`, out)

	out, err = c.run(&LogoutCmd{}, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")
	assert.Equal(t, int32(1), b.logoutCalls.Load())

	_, err = c.run(&WhoamiCmd{}, "")
	assert.ErrorIs(t, err, ErrNotSignedIn)

	out, err = c.run(&StatusCmd{}, "")
	require.NoError(t, err)
	assert.Regexp(t, `Authenticated:\s+no`, out)
	assert.Regexp(t, `Access token:\s+none`, out)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	b, srv := newBackend(t)
	b.addAccount(7, "ana@example.com", "Secreta123", models.RoleSeeker, true)
	c := newCLI(t, srv)

	_, err := c.run(&LoginCmd{Email: "ana@example.com", Password: "Otra1234"}, "")
	require.Error(t, err)
	assert.Equal(t, "Credenciales inválidas", err.Error())
	assert.Zero(t, b.refreshCalls.Load())
}

func TestWhoami_NotSignedIn(t *testing.T) {
	b, srv := newBackend(t)
	c := newCLI(t, srv)

	_, err := c.run(&WhoamiCmd{}, "")
	assert.ErrorIs(t, err, ErrNotSignedIn)
	assert.Zero(t, b.meCalls.Load(), "no token means no request")
}

func TestRegisterAndVerify(t *testing.T) {
	_, srv := newBackend(t)
	c := newCLI(t, srv)

	out, err := c.run(&RegisterCmd{
		FirstName: "Bruno",
		LastName:  "Díaz",
		Email:     "Bruno@Example.com",
		Region:    "Metropolitana",
		City:      "Santiago",
		Phone:     "+56 9 1234 5678",
		Password:  "Secreta123",
	}, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Usuario registrado exitosamente")
	assert.Contains(t, out, "bruno@example.com")

	out, err = c.run(&StatusCmd{}, "")
	require.NoError(t, err)
	assert.Regexp(t, `Pending verification:\s+bruno@example.com`, out)

	_, err = c.run(&VerifyEmailCmd{Code: "ZZZ999"}, "")
	require.Error(t, err)
	assert.Equal(t, "Código de verificación inválido", err.Error())

	out, err = c.run(&VerifyEmailCmd{}, "abc123\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Email verificado exitosamente")

	out, err = c.run(&WhoamiCmd{}, "")
	require.NoError(t, err)
	assert.Regexp(t, `Name:\s+Bruno Díaz`, out)
	assert.Regexp(t, `Verified:\s+yes`, out)

	out, err = c.run(&StatusCmd{}, "")
	require.NoError(t, err)
	assert.NotContains(t, out, "Pending verification")
}

func TestRegister_InvalidInputMakesNoRequest(t *testing.T) {
	b, srv := newBackend(t)
	c := newCLI(t, srv)

	out, err := c.run(&RegisterCmd{
		FirstName: "B",
		LastName:  "Díaz",
		Email:     "not-an-email",
		Region:    "Metropolitana",
		City:      "Santiago",
		Phone:     "812345678",
		Password:  "secreta",
	}, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, out, "email: El formato del email no es válido")
	assert.Contains(t, out, "firstName: El nombre debe tener al menos 2 caracteres")
	assert.Contains(t, out, "phone:")
	assert.Contains(t, out, "password:")
	assert.Zero(t, b.registerCalls.Load())
}

func TestLogin_RequiresVerification(t *testing.T) {
	b, srv := newBackend(t)
	b.addAccount(9, "eva@example.com", "Secreta123", models.RoleHost, false)
	c := newCLI(t, srv)

	out, err := c.run(&LoginCmd{Email: "eva@example.com", Password: "Secreta123"}, "")
	require.NoError(t, err)
	assert.Contains(t, out, "roomzy verify-email")

	out, err = c.run(&ResendCodeCmd{}, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Código reenviado")

	_, err = c.run(&VerifyEmailCmd{Code: "ABC123"}, "")
	require.NoError(t, err)

	out, err = c.run(&ProfileShowCmd{}, "")
	require.NoError(t, err)
	assert.Regexp(t, `Email:\s+eva@example.com`, out)
}

func TestVerifyEmail_NothingPending(t *testing.T) {
	_, srv := newBackend(t)
	c := newCLI(t, srv)

	_, err := c.run(&VerifyEmailCmd{Code: "ABC123"}, "")
	assert.ErrorIs(t, err, ErrNoPendingEmail)
}

func TestExpiredAccessTokenIsRefreshed(t *testing.T) {
	b, srv := newBackend(t)
	b.addAccount(7, "ana@example.com", "Secreta123", models.RoleSeeker, true)
	c := newCLI(t, srv)
	c.login(t, "ana@example.com", "Secreta123")

	b.expireAccess()

	out, err := c.run(&ProfileShowCmd{}, "")
	require.NoError(t, err)
	assert.Regexp(t, `ID:\s+7`, out)
	assert.Equal(t, int32(1), b.refreshCalls.Load())

	_, err = c.run(&ProfileShowCmd{ID: 7}, "")
	require.NoError(t, err)
	assert.Equal(t, int32(1), b.refreshCalls.Load(), "rotated pair was stored")
}

func TestRevokedSessionExpires(t *testing.T) {
	b, srv := newBackend(t)
	b.addAccount(7, "ana@example.com", "Secreta123", models.RoleSeeker, true)
	c := newCLI(t, srv)
	c.login(t, "ana@example.com", "Secreta123")

	b.revokeAll()

	_, err := c.run(&ProfileShowCmd{}, "")
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = c.run(&WhoamiCmd{}, "")
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestProfileEdit(t *testing.T) {
	b, srv := newBackend(t)
	b.addAccount(7, "ana@example.com", "Secreta123", models.RoleSeeker, true)
	c := newCLI(t, srv)
	c.login(t, "ana@example.com", "Secreta123")

	t.Run("no changes", func(t *testing.T) {
		out, err := c.run(&ProfileEditCmd{City: "Viña del Mar"}, "")
		require.NoError(t, err)
		assert.Contains(t, out, noChangesMessage)
	})

	t.Run("invalid phone", func(t *testing.T) {
		out, err := c.run(&ProfileEditCmd{Phone: "123"}, "")
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Contains(t, out, "phone:")
	})

	t.Run("updates the cached user", func(t *testing.T) {
		out, err := c.run(&ProfileEditCmd{City: "Quilpué", Bio: "Ordenada"}, "")
		require.NoError(t, err)
		assert.Contains(t, out, "Perfil actualizado exitosamente")

		out, err = c.run(&WhoamiCmd{}, "")
		require.NoError(t, err)
		assert.Regexp(t, `Location:\s+Quilpué, Valparaíso`, out)
		assert.Regexp(t, `Bio:\s+Ordenada`, out)
	})
}

func TestProfilePhoto(t *testing.T) {
	b, srv := newBackend(t)
	b.addAccount(7, "ana@example.com", "Secreta123", models.RoleSeeker, true)
	c := newCLI(t, srv)
	c.login(t, "ana@example.com", "Secreta123")

	path := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0600))

	out, err := c.run(&ProfilePhotoCmd{Path: path}, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Foto actualizada")
	assert.Equal(t, "me.png", b.photo)

	out, err = c.run(&WhoamiCmd{}, "")
	require.NoError(t, err)
	assert.Regexp(t, `Photo:\s+/uploads/me.png`, out)
}

func TestPasswordChange_RequiresLogin(t *testing.T) {
	_, srv := newBackend(t)
	c := newCLI(t, srv)

	_, err := c.run(&PasswordChangeCmd{Current: "Secreta123", New: "Nueva1234"}, "")
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestAdminCommands(t *testing.T) {
	b, srv := newBackend(t)
	b.addAccount(7, "ana@example.com", "Secreta123", models.RoleSeeker, true)
	b.addAccount(1, "root@example.com", "Admin1234", models.RoleAdmin, true)

	t.Run("seeker is denied", func(t *testing.T) {
		c := newCLI(t, srv)
		c.login(t, "ana@example.com", "Secreta123")

		_, err := c.run(&AdminUsersListCmd{Page: 1, Limit: 10}, "")
		assert.ErrorIs(t, err, ErrAdminRequired)
	})

	t.Run("admin lists users", func(t *testing.T) {
		c := newCLI(t, srv)
		c.login(t, "root@example.com", "Admin1234")

		out, err := c.run(&AdminUsersListCmd{Page: 1, Limit: 10}, "")
		require.NoError(t, err)
		assert.Contains(t, out, "ana@example.com")
		assert.Contains(t, out, "root@example.com")
		assert.Contains(t, out, "Page 1 of 1, 2 users")

		out, err = c.run(&AdminUsersStatsCmd{}, "")
		require.NoError(t, err)
		assert.Regexp(t, `Total:\s+2`, out)
		assert.Regexp(t, `Admins:\s+1`, out)
	})

	t.Run("delete asks for confirmation", func(t *testing.T) {
		c := newCLI(t, srv)
		c.login(t, "root@example.com", "Admin1234")

		_, err := c.run(&AdminUsersDeleteCmd{ID: 7}, "n\n")
		assert.ErrorIs(t, err, ErrAborted)
	})
}

func TestAdminUsersUpdate_Request(t *testing.T) {
	t.Run("only set fields", func(t *testing.T) {
		cmd := &AdminUsersUpdateCmd{ID: 7, City: " Santiago ", Phone: "+56 9 8765 4321", MarkVerified: true}
		req, err := cmd.Request()
		require.NoError(t, err)
		require.NotNil(t, req.City)
		assert.Equal(t, "Santiago", *req.City)
		require.NotNil(t, req.Phone)
		assert.Equal(t, "987654321", *req.Phone)
		require.NotNil(t, req.IsEmailVerified)
		assert.True(t, *req.IsEmailVerified)
		assert.Nil(t, req.Name)
		assert.Nil(t, req.Role)
	})

	t.Run("mark unverified", func(t *testing.T) {
		req, err := (&AdminUsersUpdateCmd{MarkUnverified: true}).Request()
		require.NoError(t, err)
		require.NotNil(t, req.IsEmailVerified)
		assert.False(t, *req.IsEmailVerified)
	})

	t.Run("nothing to update", func(t *testing.T) {
		_, err := (&AdminUsersUpdateCmd{ID: 7}).Request()
		assert.ErrorIs(t, err, ErrNothingToUpdate)
	})

	t.Run("bad phone", func(t *testing.T) {
		_, err := (&AdminUsersUpdateCmd{Phone: "123"}).Request()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "phone")
	})

	t.Run("role is normalized", func(t *testing.T) {
		req, err := (&AdminUsersUpdateCmd{Role: "Host"}).Request()
		require.NoError(t, err)
		require.NotNil(t, req.Role)
		assert.Equal(t, models.RoleHost, *req.Role)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := (&AdminUsersUpdateCmd{Role: "owner"}).Request()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "role")
	})
}

func TestAdminUsersList_UnknownRole(t *testing.T) {
	_, srv := newBackend(t)
	c := newCLI(t, srv)

	_, err := c.run(&AdminUsersListCmd{Role: "owner"}, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRedirectError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		sessionLost bool
		want        error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "login", err: &guard.RedirectError{Path: guard.DefaultLoginPath}, want: ErrNotSignedIn},
		{name: "login after lost session", err: &guard.RedirectError{Path: guard.DefaultLoginPath}, sessionLost: true, want: ErrSessionExpired},
		{name: "verify", err: &guard.RedirectError{Path: guard.DefaultVerifyPath}, want: ErrEmailUnverified},
		{name: "non admin", err: &guard.RedirectError{Path: guard.DefaultNonAdminPath}, want: ErrAdminRequired},
		{name: "not ready", err: guard.ErrNotReady, want: guard.ErrNotReady},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := redirectError(tt.err, tt.sessionLost)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPrompter_NonInteractive(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader(" ana@example.com \nSecreta123\nSecreta123\nlast"), &out)

	email, err := p.Text("Email", "")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", email)
	assert.Contains(t, out.String(), "Email: ")

	preset, err := p.Text("Email", "given@example.com")
	require.NoError(t, err)
	assert.Equal(t, "given@example.com", preset)

	pw, confirm, err := p.newPassword("Password", "")
	require.NoError(t, err)
	assert.Equal(t, "Secreta123", pw)
	assert.Equal(t, "Secreta123", confirm)

	last, err := p.Text("Name", "")
	require.NoError(t, err)
	assert.Equal(t, "last", last)

	_, err = p.Text("Name", "")
	assert.ErrorIs(t, err, io.EOF)
}
