package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mealhub-dev/mealhub/internal/api"
	"github.com/mealhub-dev/mealhub/internal/guard"
	"github.com/mealhub-dev/mealhub/internal/models"
	"github.com/mealhub-dev/mealhub/tests/e2e/testhelpers"
)

func settle(t *testing.T, p *testhelpers.Pipeline) guard.AuthSnapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snap, err := p.App.Watcher.WaitSettled(ctx)
	require.NoError(t, err, "auth pipeline did not settle")
	return snap
}

func TestUserJourney(t *testing.T) {
	mock, srv := testhelpers.Backend(t)
	mock.SeedAccount("chef@mealhub.test", "chef123", "Chef Dana", models.RoleChef)
	mealID := mock.SeedMeal("chef@mealhub.test", "Beef Rendang", "dinner", 12.50)

	store := testhelpers.NewMemStore()
	p := testhelpers.NewPipeline(t, srv, store)
	p.App.Start(context.Background())
	ctx := context.Background()

	t.Run("RegisterAndResolveRole", func(t *testing.T) {
		user, err := p.App.Session.Register(ctx, "sam@example.com", "secret1")
		require.NoError(t, err)
		require.Equal(t, "sam@example.com", user.Email)

		_, err = p.App.API.CreateUser(ctx, api.CreateUserRequest{Email: user.Email, Name: "Sam"})
		require.NoError(t, err)

		snap := settle(t, p)
		require.NotNil(t, snap.User)
		require.True(t, snap.RoleResolved)
		require.Equal(t, models.RoleUser, snap.Role)

		state, _ := guard.Chain(snap, guard.Presence{})
		require.Equal(t, guard.Allowed, state)

		// A plain user must be refused on the chef surface, toward home.
		state, g := guard.Chain(snap, guard.Presence{}, guard.RoleIs{Target: models.RoleChef})
		require.Equal(t, guard.Denied, state)
		nav := &testhelpers.RecordingNav{}
		g.Deny(nav, "dashboard chef")
		path, returnTo := nav.Last()
		require.Equal(t, "/", path)
		require.Empty(t, returnTo)
	})

	t.Run("BrowseOrderAndPay", func(t *testing.T) {
		page, err := p.App.API.ListMeals(ctx, api.MealFilter{Search: "rendang"})
		require.NoError(t, err)
		require.Len(t, page.Meals, 1)

		placed, err := p.App.API.CreateOrder(ctx, api.OrderInput{MealID: mealID, Quantity: 2, Address: "12 Spice St"})
		require.NoError(t, err)
		require.Equal(t, models.OrderPending, placed.Order.Status)
		require.NotEmpty(t, placed.PaymentURL)

		paid, err := p.App.API.ConfirmPayment(ctx, placed.Order.PaymentRef)
		require.NoError(t, err)
		require.Equal(t, models.OrderPaid, paid.Status)

		orders, err := p.App.API.OrdersByUser(ctx, "sam@example.com")
		require.NoError(t, err)
		require.Len(t, orders, 1)
		require.Equal(t, 25.0, orders[0].Price)
	})

	t.Run("ReviewAndFavorite", func(t *testing.T) {
		review, err := p.App.API.CreateReview(ctx, api.ReviewInput{MealID: mealID, Rating: 5, Comment: "Superb"})
		require.NoError(t, err)
		require.Equal(t, 5, review.Rating)

		meal, err := p.App.API.GetMeal(ctx, mealID)
		require.NoError(t, err)
		require.Equal(t, 5.0, meal.Rating)
		require.Equal(t, 1, meal.ReviewCount)

		fav, err := p.App.API.AddFavorite(ctx, mealID)
		require.NoError(t, err)
		favorites, err := p.App.API.Favorites(ctx)
		require.NoError(t, err)
		require.Len(t, favorites, 1)
		require.NoError(t, p.App.API.RemoveFavorite(ctx, fav.ID))
	})

	t.Run("LogoutClearsSession", func(t *testing.T) {
		p.App.Session.Logout(ctx)

		snap := settle(t, p)
		require.Nil(t, snap.User)
		require.False(t, snap.RoleResolved)

		state, g := guard.Chain(snap, guard.Presence{}, guard.RoleIs{Target: models.RoleChef})
		require.Equal(t, guard.Denied, state)
		nav := &testhelpers.RecordingNav{}
		g.Deny(nav, "dashboard chef")
		path, returnTo := nav.Last()
		require.Equal(t, "/login", path, "signed-out user goes to login, not home")
		require.Equal(t, "dashboard chef", returnTo)

		// Protected calls short-circuit without a token.
		_, err := p.App.API.Favorites(ctx)
		require.ErrorIs(t, err, api.ErrNoToken)
	})
}

func TestSessionRestoreAcrossInvocations(t *testing.T) {
	mock, srv := testhelpers.Backend(t)
	mock.SeedAccount("chef@mealhub.test", "chef123", "Chef Dana", models.RoleChef)

	store := testhelpers.NewMemStore()
	ctx := context.Background()

	// First invocation: sign in, leaving a refresh token in the store.
	first := testhelpers.NewPipeline(t, srv, store)
	first.App.Start(ctx)
	_, err := first.App.Session.Login(ctx, "chef@mealhub.test", "chef123")
	require.NoError(t, err)
	snap := settle(t, first)
	require.Equal(t, models.RoleChef, snap.Role)

	// Second invocation with the same store: the session is restored and the
	// role re-resolved without credentials.
	second := testhelpers.NewPipeline(t, srv, store)
	second.App.Start(ctx)
	snap = settle(t, second)
	require.NotNil(t, snap.User)
	require.Equal(t, "chef@mealhub.test", snap.User.Email)
	require.Equal(t, models.RoleChef, snap.Role)

	state, _ := guard.Chain(snap, guard.Presence{}, guard.RoleIs{Target: models.RoleChef})
	require.Equal(t, guard.Allowed, state)
}

func TestChefPublishesAndServesOrders(t *testing.T) {
	mock, srv := testhelpers.Backend(t)
	mock.SeedAccount("chef@mealhub.test", "chef123", "Chef Dana", models.RoleChef)
	mock.SeedAccount("sam@mealhub.test", "user123", "Sam", models.RoleUser)

	ctx := context.Background()
	chef := testhelpers.NewPipeline(t, srv, testhelpers.NewMemStore())
	chef.App.Start(ctx)
	_, err := chef.App.Session.Login(ctx, "chef@mealhub.test", "chef123")
	require.NoError(t, err)
	settle(t, chef)

	meal, err := chef.App.API.CreateMeal(ctx, api.MealInput{Title: "Laksa", Price: 9.0, Category: "lunch", Available: true})
	require.NoError(t, err)

	// A customer orders it.
	user := testhelpers.NewPipeline(t, srv, testhelpers.NewMemStore())
	user.App.Start(ctx)
	_, err = user.App.Session.Login(ctx, "sam@mealhub.test", "user123")
	require.NoError(t, err)
	settle(t, user)
	placed, err := user.App.API.CreateOrder(ctx, api.OrderInput{MealID: meal.ID, Quantity: 1})
	require.NoError(t, err)

	// The chef sees and advances it.
	profile, err := chef.App.API.GetUser(ctx, "chef@mealhub.test")
	require.NoError(t, err)
	orders, err := chef.App.API.OrdersByChef(ctx, profile.ChefID)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	advanced, err := chef.App.API.UpdateOrderStatus(ctx, placed.Order.ID, models.OrderPreparing)
	require.NoError(t, err)
	require.Equal(t, models.OrderPreparing, advanced.Status)

	// The customer cannot advance orders.
	_, err = user.App.API.UpdateOrderStatus(ctx, placed.Order.ID, models.OrderDelivered)
	require.Error(t, err)
}

func TestRoleRequestApprovalFlow(t *testing.T) {
	mock, srv := testhelpers.Backend(t)
	mock.SeedAccount("admin@mealhub.test", "admin123", "Admin", models.RoleAdmin)
	mock.SeedAccount("sam@mealhub.test", "user123", "Sam", models.RoleUser)

	ctx := context.Background()
	user := testhelpers.NewPipeline(t, srv, testhelpers.NewMemStore())
	user.App.Start(ctx)
	_, err := user.App.Session.Login(ctx, "sam@mealhub.test", "user123")
	require.NoError(t, err)
	settle(t, user)

	_, err = user.App.API.CreateRoleRequest(ctx, api.RoleRequestInput{TargetRole: models.RoleChef, Reason: "I cook"})
	require.NoError(t, err)

	admin := testhelpers.NewPipeline(t, srv, testhelpers.NewMemStore())
	admin.App.Start(ctx)
	_, err = admin.App.Session.Login(ctx, "admin@mealhub.test", "admin123")
	require.NoError(t, err)
	settle(t, admin)

	requests, err := admin.App.API.RoleRequests(ctx)
	require.NoError(t, err)
	require.Len(t, requests, 1)

	resolved, err := admin.App.API.ResolveRoleRequest(ctx, "sam@mealhub.test", models.RequestApproved)
	require.NoError(t, err)
	require.Equal(t, models.RequestApproved, resolved.State)

	profile, err := admin.App.API.GetUser(ctx, "sam@mealhub.test")
	require.NoError(t, err)
	require.Equal(t, models.RoleChef, profile.Role)
	require.NotEmpty(t, profile.ChefID)

	stats, err := admin.App.API.PlatformStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalUsers)
	require.Equal(t, 1, stats.TotalChefs)
}

func TestSuspensionTearsDownSession(t *testing.T) {
	mock, srv := testhelpers.Backend(t)
	mock.SeedAccount("sam@mealhub.test", "user123", "Sam", models.RoleUser)

	ctx := context.Background()
	p := testhelpers.NewPipeline(t, srv, testhelpers.NewMemStore())
	p.App.Start(ctx)
	_, err := p.App.Session.Login(ctx, "sam@mealhub.test", "user123")
	require.NoError(t, err)
	settle(t, p)

	mock.SuspendAccount("sam@mealhub.test")

	// The next authenticated call is rejected; the interceptor signs the
	// session out and redirects to login, and the caller still sees the error.
	_, err = p.App.API.Favorites(ctx)
	require.Error(t, err)
	apiErr, ok := api.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, 403, apiErr.Status)

	path, returnTo := p.Nav.Last()
	require.Equal(t, "/login", path)
	require.Empty(t, returnTo)

	snap := settle(t, p)
	require.Nil(t, snap.User, "session must be terminated after rejection")
}
