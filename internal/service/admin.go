package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/wolfeidau/roomzy/internal/apiclient"
	"github.com/wolfeidau/roomzy/internal/models"
)

const (
	adminUsersPath     = "/admin/users"
	adminUserStatsPath = "/admin/users/stats"
)

// AdminService is the user back office. The backend rejects callers without
// the admin role, the CLI additionally checks it before calling.
type AdminService struct {
	client *apiclient.Client
}

func NewAdminService(client *apiclient.Client) *AdminService {
	return &AdminService{client: client}
}

func adminUserPath(id int64) string {
	return fmt.Sprintf("%s/%d", adminUsersPath, id)
}

// ListUsers returns one page of users. Zero valued filter fields are omitted.
func (s *AdminService) ListUsers(ctx context.Context, filter models.UsersFilter) (*models.Response[models.UsersPage], error) {
	query := url.Values{}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Role != "" {
		query.Set("role", string(filter.Role))
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}

	return call[models.UsersPage](ctx, s.client, &apiclient.Request{
		Method: http.MethodGet,
		Path:   adminUsersPath,
		Query:  query,
	})
}

func (s *AdminService) GetUser(ctx context.Context, id int64) (*models.Response[models.UserEnvelope], error) {
	return call[models.UserEnvelope](ctx, s.client, &apiclient.Request{
		Method: http.MethodGet,
		Path:   adminUserPath(id),
	})
}

func (s *AdminService) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.Response[models.UserEnvelope], error) {
	return call[models.UserEnvelope](ctx, s.client, &apiclient.Request{
		Method: http.MethodPost,
		Path:   adminUsersPath,
		Body:   req,
	})
}

func (s *AdminService) UpdateUser(ctx context.Context, id int64, req models.UpdateUserRequest) (*models.Response[models.UserEnvelope], error) {
	return call[models.UserEnvelope](ctx, s.client, &apiclient.Request{
		Method: http.MethodPut,
		Path:   adminUserPath(id),
		Body:   req,
	})
}

func (s *AdminService) DeleteUser(ctx context.Context, id int64) (*models.Response[models.Empty], error) {
	return call[models.Empty](ctx, s.client, &apiclient.Request{
		Method: http.MethodDelete,
		Path:   adminUserPath(id),
	})
}

func (s *AdminService) UserStats(ctx context.Context) (*models.Response[models.UserStats], error) {
	return call[models.UserStats](ctx, s.client, &apiclient.Request{
		Method: http.MethodGet,
		Path:   adminUserStatsPath,
	})
}
