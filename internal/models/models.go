package models

import "time"

// Role is the backend-assigned role of a user account.
type Role string

const (
	RoleUser  Role = "user"
	RoleChef  Role = "chef"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleChef, RoleAdmin:
		return true
	}
	return false
}

// AccountStatus is the backend-assigned account status.
type AccountStatus string

const (
	StatusActive AccountStatus = "active"
	StatusFraud  AccountStatus = "fraud"
)

// RequestState is the state of a role request for a target role.
type RequestState string

const (
	RequestPending  RequestState = "pending"
	RequestApproved RequestState = "approved"
	RequestRejected RequestState = "rejected"
)

// Profile is the server-of-record user record, keyed by email. It is
// distinct from the identity provider's principal: the provider owns the
// credentials, the backend owns role and status.
type Profile struct {
	Email    string        `json:"email"`
	Name     string        `json:"name"`
	PhotoURL string        `json:"photoURL,omitempty"`
	Role     Role          `json:"role"`
	Status   AccountStatus `json:"status"`
	ChefID   string        `json:"chefId,omitempty"`

	// Role-request sub-state per target role, if any is outstanding.
	ChefRequest  RequestState `json:"chefRequest,omitempty"`
	AdminRequest RequestState `json:"adminRequest,omitempty"`

	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Meal is a listing offered by a chef.
type Meal struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	ImageURL     string    `json:"image"`
	Price        float64   `json:"price"`
	Category     string    `json:"category"`
	ChefID       string    `json:"chefId"`
	ChefName     string    `json:"chefName"`
	ChefEmail    string    `json:"chefEmail"`
	Rating       float64   `json:"rating"`
	ReviewCount  int       `json:"reviewCount"`
	Available    bool      `json:"available"`
	DeliveryArea string    `json:"deliveryArea,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
}

// OrderStatus is the lifecycle state of an order, owned by the backend.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderPreparing OrderStatus = "preparing"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// Order is a placed order for a meal.
type Order struct {
	ID         string      `json:"id"`
	MealID     string      `json:"mealId"`
	MealTitle  string      `json:"mealTitle"`
	ChefID     string      `json:"chefId"`
	UserEmail  string      `json:"userEmail"`
	UserName   string      `json:"userName"`
	Quantity   int         `json:"quantity"`
	Price      float64     `json:"price"`
	Address    string      `json:"address,omitempty"`
	Status     OrderStatus `json:"status"`
	PaymentRef string      `json:"paymentRef,omitempty"`
	CreatedAt  time.Time   `json:"created_at,omitzero"`
}

// Review is a rating plus comment left by a user on a meal.
type Review struct {
	ID        string    `json:"id"`
	MealID    string    `json:"mealId"`
	UserEmail string    `json:"userEmail"`
	UserName  string    `json:"userName"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Favorite is a user's bookmark of a meal.
type Favorite struct {
	ID        string    `json:"id"`
	MealID    string    `json:"mealId"`
	MealTitle string    `json:"mealTitle"`
	UserEmail string    `json:"userEmail"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// RoleRequest is a user's pending request to be granted a role.
type RoleRequest struct {
	ID         string       `json:"id"`
	UserEmail  string       `json:"userEmail"`
	UserName   string       `json:"userName"`
	TargetRole Role         `json:"requestedRole"`
	Reason     string       `json:"reason,omitempty"`
	State      RequestState `json:"status"`
	CreatedAt  time.Time    `json:"created_at,omitzero"`
}

// PlatformStats is the admin dashboard aggregate.
type PlatformStats struct {
	TotalUsers    int     `json:"totalUsers"`
	TotalChefs    int     `json:"totalChefs"`
	TotalMeals    int     `json:"totalMeals"`
	TotalOrders   int     `json:"totalOrders"`
	TotalRevenue  float64 `json:"totalRevenue"`
	PendingOrders int     `json:"pendingOrders"`
}
