package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mealhub-dev/mealhub/internal/identity"
	"github.com/mealhub-dev/mealhub/internal/models"
)

// chefDashboardBackend serves the endpoints the chef dashboard reads.
func chefDashboardBackend(t *testing.T, chef *models.Profile, meals []models.Meal, orders []models.Order) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch {
		case r.URL.Path == "/users/"+chef.Email:
			json.NewEncoder(w).Encode(chef)
		case r.URL.Path == "/meals/chef/"+chef.Email:
			json.NewEncoder(w).Encode(meals)
		case r.URL.Path == "/orders/chef/"+chef.ChefID:
			json.NewEncoder(w).Encode(orders)
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"not found"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDashboardChefShowsMealsAndOrders(t *testing.T) {
	chef := chefProfile("chef@example.com")
	backend := chefDashboardBackend(t, chef,
		[]models.Meal{{ID: "m1", Title: "Beef Rendang", Price: 12.5, Available: true}},
		[]models.Order{{ID: "o1", MealTitle: "Beef Rendang", Quantity: 2, Status: models.OrderPaid}},
	)
	setupTestEnvironment(t, backend.URL)

	provider := &stubProvider{restored: &identity.User{Email: "chef@example.com"}}
	output, err := runAndCapture(t, func(out *bytes.Buffer) error {
		return runDashboardChef(out, newMockTokenStore(), stubFactory(provider))
	})
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if !strings.Contains(output, "Beef Rendang") {
		t.Errorf("expected meal listed, got:\n%s", output)
	}
	if !strings.Contains(output, "Incoming orders (1)") {
		t.Errorf("expected incoming orders, got:\n%s", output)
	}
}

func TestDashboardChefDeniedForPlainUser(t *testing.T) {
	backend := testBackend(t, map[string]*models.Profile{
		"user@example.com": userProfile("user@example.com"),
	})
	setupTestEnvironment(t, backend.URL)

	provider := &stubProvider{restored: &identity.User{Email: "user@example.com"}}
	output, err := runAndCapture(t, func(out *bytes.Buffer) error {
		return runDashboardChef(out, newMockTokenStore(), stubFactory(provider))
	})
	if err != nil {
		t.Fatalf("dashboard errored: %v", err)
	}
	if !strings.Contains(output, "don't have access") {
		t.Errorf("expected access refusal, got:\n%s", output)
	}
}

func TestDashboardAdminDeniedForChef(t *testing.T) {
	// Role gates are exact: a chef is not an admin.
	backend := testBackend(t, map[string]*models.Profile{
		"chef@example.com": chefProfile("chef@example.com"),
	})
	setupTestEnvironment(t, backend.URL)

	provider := &stubProvider{restored: &identity.User{Email: "chef@example.com"}}
	output, err := runAndCapture(t, func(out *bytes.Buffer) error {
		return runDashboardAdmin(out, newMockTokenStore(), stubFactory(provider), "", "approved")
	})
	if err != nil {
		t.Fatalf("dashboard errored: %v", err)
	}
	if !strings.Contains(output, "don't have access") {
		t.Errorf("expected access refusal, got:\n%s", output)
	}
}

func TestDashboardSignedOutGoesToLoginNotHome(t *testing.T) {
	// Unauthenticated on a role-gated surface: the presence guard runs first,
	// so the user is sent to sign in rather than silently refused.
	backend := testBackend(t, nil)
	setupTestEnvironment(t, backend.URL)

	output, err := runAndCapture(t, func(out *bytes.Buffer) error {
		return runDashboardAdmin(out, newMockTokenStore(), stubFactory(&stubProvider{}), "", "approved")
	})
	if err != nil {
		t.Fatalf("dashboard errored: %v", err)
	}
	if !strings.Contains(output, "Please sign in first") {
		t.Errorf("expected sign-in redirect, got:\n%s", output)
	}
	if strings.Contains(output, "don't have access") {
		t.Errorf("role refusal must not fire before presence, got:\n%s", output)
	}
}
