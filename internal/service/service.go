// Package service wraps each backend endpoint in a typed call. Every failure
// leaving this package is a *Error carrying the server message, or the generic
// connection message when no response was received.
package service

import (
	"context"
	"errors"

	"github.com/wolfeidau/roomzy/internal/apiclient"
	"github.com/wolfeidau/roomzy/internal/models"
)

// Error is the normalized failure returned by every service call.
type Error struct {
	Status  int
	Message string
	Errors  []models.FieldError
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// MessageOf returns the user facing message of err, or fallback when err
// carries none.
func MessageOf(err error, fallback string) string {
	var svcErr *Error
	if errors.As(err, &svcErr) && svcErr.Message != "" {
		return svcErr.Message
	}
	return fallback
}

func normalize(err error) *Error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}

	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		return &Error{Status: apiErr.Status, Message: apiErr.Message, Errors: apiErr.Errors, Err: err}
	}

	return &Error{Message: apiclient.ConnectionErrorMessage, Err: err}
}

func call[T any](ctx context.Context, client *apiclient.Client, req *apiclient.Request) (*models.Response[T], error) {
	var resp models.Response[T]
	if err := client.Do(ctx, req, &resp); err != nil {
		return nil, normalize(err)
	}
	return &resp, nil
}
