package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mealhub-dev/mealhub/internal/models"
)

// Favorites returns the current user's favorites.
func (c *Client) Favorites(ctx context.Context) ([]models.Favorite, error) {
	var favorites []models.Favorite
	if err := c.do(ctx, http.MethodGet, "/favorites", nil, nil, &favorites, authRequired); err != nil {
		return nil, err
	}
	return favorites, nil
}

// AddFavorite bookmarks a meal for the current user.
func (c *Client) AddFavorite(ctx context.Context, mealID string) (*models.Favorite, error) {
	var favorite models.Favorite
	body := map[string]string{"mealId": mealID}
	if err := c.do(ctx, http.MethodPost, "/favorites", nil, body, &favorite, authRequired); err != nil {
		return nil, err
	}
	return &favorite, nil
}

// RemoveFavorite deletes a favorite by its ID.
func (c *Client) RemoveFavorite(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/favorites/"+url.PathEscape(id), nil, nil, nil, authRequired)
}
