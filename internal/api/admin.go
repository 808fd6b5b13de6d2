package api

import (
	"context"
	"net/http"

	"github.com/mealhub-dev/mealhub/internal/models"
)

// PlatformStats returns the admin dashboard aggregates.
func (c *Client) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	var stats models.PlatformStats
	if err := c.do(ctx, http.MethodGet, "/admin/platform-stats", nil, nil, &stats, authRequired); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListUsers returns all backend profiles (admin only).
func (c *Client) ListUsers(ctx context.Context) ([]models.Profile, error) {
	var users []models.Profile
	if err := c.do(ctx, http.MethodGet, "/users", nil, nil, &users, authRequired); err != nil {
		return nil, err
	}
	return users, nil
}
