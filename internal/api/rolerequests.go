package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mealhub-dev/mealhub/internal/models"
)

// RoleRequests lists role requests. Admins see all of them; other callers
// only their own.
func (c *Client) RoleRequests(ctx context.Context) ([]models.RoleRequest, error) {
	var requests []models.RoleRequest
	if err := c.do(ctx, http.MethodGet, "/role-requests", nil, nil, &requests, authRequired); err != nil {
		return nil, err
	}
	return requests, nil
}

// RoleRequestInput is the payload for submitting a role request.
type RoleRequestInput struct {
	TargetRole models.Role `json:"requestedRole"`
	Reason     string      `json:"reason,omitempty"`
}

// CreateRoleRequest submits a role request for the current user.
func (c *Client) CreateRoleRequest(ctx context.Context, input RoleRequestInput) (*models.RoleRequest, error) {
	var request models.RoleRequest
	if err := c.do(ctx, http.MethodPost, "/role-requests", nil, input, &request, authRequired); err != nil {
		return nil, err
	}
	return &request, nil
}

// ResolveRoleRequest approves or rejects the outstanding request of the user
// with the given email (admin only).
func (c *Client) ResolveRoleRequest(ctx context.Context, email string, state models.RequestState) (*models.RoleRequest, error) {
	var request models.RoleRequest
	body := map[string]models.RequestState{"status": state}
	if err := c.do(ctx, http.MethodPatch, "/role-requests/"+url.PathEscape(email), nil, body, &request, authRequired); err != nil {
		return nil, err
	}
	return &request, nil
}
