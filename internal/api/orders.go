package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mealhub-dev/mealhub/internal/models"
)

// OrdersByUser returns the orders placed by the user with the given email.
func (c *Client) OrdersByUser(ctx context.Context, email string) ([]models.Order, error) {
	var orders []models.Order
	if err := c.do(ctx, http.MethodGet, "/orders/user/"+url.PathEscape(email), nil, nil, &orders, authRequired); err != nil {
		return nil, err
	}
	return orders, nil
}

// OrdersByChef returns the orders received by a chef.
func (c *Client) OrdersByChef(ctx context.Context, chefID string) ([]models.Order, error) {
	var orders []models.Order
	if err := c.do(ctx, http.MethodGet, "/orders/chef/"+url.PathEscape(chefID), nil, nil, &orders, authRequired); err != nil {
		return nil, err
	}
	return orders, nil
}

// OrderInput is the payload for placing an order.
type OrderInput struct {
	MealID   string `json:"mealId"`
	Quantity int    `json:"quantity"`
	Address  string `json:"address"`
}

// CreateOrderResponse carries the created order plus the external payment
// redirect the caller must follow to complete checkout.
type CreateOrderResponse struct {
	Order      models.Order `json:"order"`
	PaymentURL string       `json:"paymentUrl,omitempty"`
}

// CreateOrder places an order for the current user.
func (c *Client) CreateOrder(ctx context.Context, input OrderInput) (*CreateOrderResponse, error) {
	var resp CreateOrderResponse
	if err := c.do(ctx, http.MethodPost, "/order", nil, input, &resp, authRequired); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateOrderStatus moves an order to a new lifecycle state (chef/admin).
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	var order models.Order
	body := map[string]models.OrderStatus{"status": status}
	if err := c.do(ctx, http.MethodPatch, "/orders/status/"+url.PathEscape(id), nil, body, &order, authRequired); err != nil {
		return nil, err
	}
	return &order, nil
}

// ConfirmPayment reports a completed external payment session so the backend
// marks the matching order as paid.
func (c *Client) ConfirmPayment(ctx context.Context, sessionID string) (*models.Order, error) {
	q := url.Values{}
	q.Set("session_id", sessionID)
	var order models.Order
	if err := c.do(ctx, http.MethodPatch, "/payment-success", q, nil, &order, authRequired); err != nil {
		return nil, err
	}
	return &order, nil
}
