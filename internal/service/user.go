package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/wolfeidau/roomzy/internal/apiclient"
	"github.com/wolfeidau/roomzy/internal/models"
)

const (
	profilePhotoPath  = "/users/profile/photo"
	profilePhotoField = "profilePhoto"

	profileUpdatedMessage = "Perfil actualizado exitosamente"
	validationMessage     = "Error de validación"
)

// UserService covers profile management.
type UserService struct {
	client *apiclient.Client
}

func NewUserService(client *apiclient.Client) *UserService {
	return &UserService{client: client}
}

func profilePath(id int64) string {
	return fmt.Sprintf("/users/profile/%d", id)
}

func (s *UserService) GetProfile(ctx context.Context, id int64) (*models.Response[models.User], error) {
	return call[models.User](ctx, s.client, &apiclient.Request{
		Method: http.MethodGet,
		Path:   profilePath(id),
	})
}

// UpdateProfile patches the given fields. A 400 carrying field errors is not
// an error: it comes back as an unsuccessful response with Errors set so the
// caller can show them next to each field.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, req models.UpdateProfileRequest) (*models.Response[models.User], error) {
	resp, err := call[models.User](ctx, s.client, &apiclient.Request{
		Method: http.MethodPatch,
		Path:   profilePath(id),
		Body:   req,
	})
	if err != nil {
		var svcErr *Error
		if errors.As(err, &svcErr) && svcErr.Status == http.StatusBadRequest && len(svcErr.Errors) > 0 {
			msg := svcErr.Message
			if msg == "" || msg == http.StatusText(http.StatusBadRequest) {
				msg = validationMessage
			}
			return &models.Response[models.User]{Success: false, Message: msg, Errors: svcErr.Errors}, nil
		}
		return nil, err
	}

	if resp.Message == "" {
		resp.Message = profileUpdatedMessage
	}

	return resp, nil
}

// UpdateProfilePhoto uploads a new profile photo for the signed in user.
func (s *UserService) UpdateProfilePhoto(ctx context.Context, filename string, content io.Reader) (*models.Response[models.User], error) {
	return call[models.User](ctx, s.client, &apiclient.Request{
		Method: http.MethodPatch,
		Path:   profilePhotoPath,
		File: &apiclient.File{
			Field:    profilePhotoField,
			Filename: filename,
			Content:  content,
		},
	})
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) (*models.Response[models.Empty], error) {
	return call[models.Empty](ctx, s.client, &apiclient.Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("/users/%d", id),
	})
}
