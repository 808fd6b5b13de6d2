package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mealhub-dev/mealhub/internal/models"
)

// GetUser fetches the backend profile keyed by email.
func (c *Client) GetUser(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(email), nil, nil, &profile, authRequired); err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateUserRequest registers the backend profile after a provider account is
// created. The backend assigns the default role and status.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoURL,omitempty"`
}

// CreateUser creates the backend profile for a freshly registered account.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*models.Profile, error) {
	var profile models.Profile
	if err := c.do(ctx, http.MethodPost, "/users", nil, req, &profile, authOptional); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateUserRequest is a partial backend-profile update. Nil fields are left
// unchanged. Status and role changes are admin operations.
type UpdateUserRequest struct {
	Name     *string               `json:"name,omitempty"`
	PhotoURL *string               `json:"photoURL,omitempty"`
	Status   *models.AccountStatus `json:"status,omitempty"`
	Role     *models.Role          `json:"role,omitempty"`
}

// UpdateUser patches the backend profile keyed by email.
func (c *Client) UpdateUser(ctx context.Context, email string, req UpdateUserRequest) (*models.Profile, error) {
	var profile models.Profile
	if err := c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(email), nil, req, &profile, authRequired); err != nil {
		return nil, err
	}
	return &profile, nil
}
