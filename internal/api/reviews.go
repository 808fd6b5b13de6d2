package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mealhub-dev/mealhub/internal/models"
)

// ReviewsByMeal returns all reviews for a meal. No identity required.
func (c *Client) ReviewsByMeal(ctx context.Context, mealID string) ([]models.Review, error) {
	var reviews []models.Review
	if err := c.do(ctx, http.MethodGet, "/reviews/meal/"+url.PathEscape(mealID), nil, nil, &reviews, authOptional); err != nil {
		return nil, err
	}
	return reviews, nil
}

// ReviewsByUser returns the reviews written by a user.
func (c *Client) ReviewsByUser(ctx context.Context, email string) ([]models.Review, error) {
	var reviews []models.Review
	if err := c.do(ctx, http.MethodGet, "/reviews/user/"+url.PathEscape(email), nil, nil, &reviews, authRequired); err != nil {
		return nil, err
	}
	return reviews, nil
}

// ReviewInput is the payload for creating or editing a review.
type ReviewInput struct {
	MealID  string `json:"mealId"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// CreateReview posts a review for a meal.
func (c *Client) CreateReview(ctx context.Context, input ReviewInput) (*models.Review, error) {
	var review models.Review
	if err := c.do(ctx, http.MethodPost, "/reviews", nil, input, &review, authRequired); err != nil {
		return nil, err
	}
	return &review, nil
}

// UpdateReview edits an existing review.
func (c *Client) UpdateReview(ctx context.Context, id string, input ReviewInput) (*models.Review, error) {
	var review models.Review
	if err := c.do(ctx, http.MethodPatch, "/reviews/"+url.PathEscape(id), nil, input, &review, authRequired); err != nil {
		return nil, err
	}
	return &review, nil
}

// DeleteReview removes a review.
func (c *Client) DeleteReview(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/reviews/"+url.PathEscape(id), nil, nil, nil, authRequired)
}
