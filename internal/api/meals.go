package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mealhub-dev/mealhub/internal/models"
)

// MealFilter narrows and orders the public meal listing.
type MealFilter struct {
	Search   string
	Category string
	SortBy   string // "price-asc", "price-desc", "rating"
	Page     int
	Limit    int
}

func (f MealFilter) query() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.SortBy != "" {
		q.Set("sort", f.SortBy)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// MealPage is one page of the meal listing.
type MealPage struct {
	Meals []models.Meal `json:"meals"`
	Total int           `json:"total"`
}

// ListMeals returns the public meal listing. No identity required.
func (c *Client) ListMeals(ctx context.Context, filter MealFilter) (*MealPage, error) {
	var page MealPage
	if err := c.do(ctx, http.MethodGet, "/meals", filter.query(), nil, &page, authOptional); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetMeal returns a single meal by ID.
func (c *Client) GetMeal(ctx context.Context, id string) (*models.Meal, error) {
	var meal models.Meal
	if err := c.do(ctx, http.MethodGet, "/meals/id/"+url.PathEscape(id), nil, nil, &meal, authOptional); err != nil {
		return nil, err
	}
	return &meal, nil
}

// MealsByChef returns the meals owned by the chef with the given email.
func (c *Client) MealsByChef(ctx context.Context, email string) ([]models.Meal, error) {
	var meals []models.Meal
	if err := c.do(ctx, http.MethodGet, "/meals/chef/"+url.PathEscape(email), nil, nil, &meals, authRequired); err != nil {
		return nil, err
	}
	return meals, nil
}

// MealInput is the payload for creating or updating a meal.
type MealInput struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	ImageURL     string  `json:"image"`
	Price        float64 `json:"price"`
	Category     string  `json:"category"`
	Available    bool    `json:"available"`
	DeliveryArea string  `json:"deliveryArea,omitempty"`
}

// CreateMeal publishes a new meal for the current chef.
func (c *Client) CreateMeal(ctx context.Context, input MealInput) (*models.Meal, error) {
	var meal models.Meal
	if err := c.do(ctx, http.MethodPost, "/meals", nil, input, &meal, authRequired); err != nil {
		return nil, err
	}
	return &meal, nil
}

// UpdateMeal patches an existing meal.
func (c *Client) UpdateMeal(ctx context.Context, id string, input MealInput) (*models.Meal, error) {
	var meal models.Meal
	if err := c.do(ctx, http.MethodPatch, "/meals/"+url.PathEscape(id), nil, input, &meal, authRequired); err != nil {
		return nil, err
	}
	return &meal, nil
}

// DeleteMeal removes a meal.
func (c *Client) DeleteMeal(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/meals/"+url.PathEscape(id), nil, nil, nil, authRequired)
}
