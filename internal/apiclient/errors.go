package apiclient

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/wolfeidau/roomzy/internal/models"
)

// ConnectionErrorMessage is shown to users when the backend cannot be reached.
const ConnectionErrorMessage = "Error de conexión"

var (
	// ErrConnection is returned when the request never produced an HTTP response.
	ErrConnection = errors.New("connection failed")

	// ErrRefreshFailed is returned when the refresh endpoint rejects the refresh token.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrNoRefreshToken is returned when a refresh is needed but none is stored.
	ErrNoRefreshToken = errors.New("no refresh token")
)

// Error is an HTTP error response decoded from the backend envelope.
type Error struct {
	Status  int
	Message string
	Errors  []models.FieldError
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// IsUnauthorized returns true if err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
