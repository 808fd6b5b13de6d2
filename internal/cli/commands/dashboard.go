package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mealhub-dev/mealhub/internal/cli/auth"
	"github.com/mealhub-dev/mealhub/internal/guard"
	"github.com/mealhub-dev/mealhub/internal/identity"
	"github.com/mealhub-dev/mealhub/internal/models"
)

// NewDashboardCmd creates the role-gated dashboard command group.
func NewDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Role-specific dashboards",
	}
	cmd.AddCommand(newDashboardChefCmd())
	cmd.AddCommand(newDashboardAdminCmd())
	return cmd
}

func newDashboardChefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chef",
		Short: "Your meals and incoming orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboardChef(os.Stdout, auth.Store{}, nil)
		},
	}
}

func runDashboardChef(out io.Writer, store identity.TokenStore, factory providerFactory) error {
	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := context.Background()
	snap, ok, err := sess.requireAllowed(ctx, "dashboard chef",
		guard.Presence{}, guard.RoleIs{Target: models.RoleChef})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	meals, err := sess.app.API.MealsByChef(ctx, snap.User.Email)
	if err != nil {
		return fmt.Errorf("failed to load your meals: %w", err)
	}

	fmt.Fprintf(out, "Chef dashboard — %s\n\n", snap.User.Email)
	if len(meals) == 0 {
		fmt.Fprintln(out, "You have no meals yet. Publish one with 'mealhub meal add'.")
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tPRICE\tRATING\tAVAILABLE")
		for _, meal := range meals {
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%.1f (%d)\t%t\n",
				meal.ID, meal.Title, meal.Price, meal.Rating, meal.ReviewCount, meal.Available)
		}
		w.Flush()
	}

	// Orders are keyed by the backend chef id, not the email.
	profile, err := sess.app.API.GetUser(ctx, snap.User.Email)
	if err != nil {
		return fmt.Errorf("failed to load your profile: %w", err)
	}
	orders, err := sess.app.API.OrdersByChef(ctx, profile.ChefID)
	if err != nil {
		return fmt.Errorf("failed to load incoming orders: %w", err)
	}

	fmt.Fprintf(out, "\nIncoming orders (%d):\n", len(orders))
	if len(orders) > 0 {
		printOrders(out, orders)
		fmt.Fprintln(out, "\nAdvance an order with 'mealhub order status <order-id> <status>'.")
	}
	return nil
}

func newDashboardAdminCmd() *cobra.Command {
	var resolveEmail, resolveState string

	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Platform stats, users and role requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboardAdmin(os.Stdout, auth.Store{}, nil, resolveEmail, resolveState)
		},
	}
	cmd.Flags().StringVar(&resolveEmail, "resolve", "", "Resolve the role request of this user")
	cmd.Flags().StringVar(&resolveState, "state", "approved", "Resolution: approved or rejected")
	return cmd
}

func runDashboardAdmin(out io.Writer, store identity.TokenStore, factory providerFactory, resolveEmail, resolveState string) error {
	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := context.Background()
	_, ok, err := sess.requireAllowed(ctx, "dashboard admin",
		guard.Presence{}, guard.RoleIs{Target: models.RoleAdmin})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if resolveEmail != "" {
		return resolveRoleRequest(ctx, sess, out, resolveEmail, resolveState)
	}

	stats, err := sess.app.API.PlatformStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load platform stats: %w", err)
	}
	fmt.Fprintln(out, "Platform stats")
	fmt.Fprintf(out, "  Users: %d (%d chefs)\n", stats.TotalUsers, stats.TotalChefs)
	fmt.Fprintf(out, "  Meals: %d\n", stats.TotalMeals)
	fmt.Fprintf(out, "  Orders: %d (%d pending)\n", stats.TotalOrders, stats.PendingOrders)
	fmt.Fprintf(out, "  Revenue: %.2f\n", stats.TotalRevenue)

	users, err := sess.app.API.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	fmt.Fprintf(out, "\nUsers (%d):\n", len(users))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EMAIL\tNAME\tROLE\tSTATUS")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.Email, u.Name, u.Role, u.Status)
	}
	w.Flush()

	requests, err := sess.app.API.RoleRequests(ctx)
	if err != nil {
		return fmt.Errorf("failed to list role requests: %w", err)
	}
	pending := requests[:0:0]
	for _, req := range requests {
		if req.State == models.RequestPending {
			pending = append(pending, req)
		}
	}
	fmt.Fprintf(out, "\nPending role requests (%d):\n", len(pending))
	if len(pending) > 0 {
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "EMAIL\tNAME\tREQUESTED\tREASON")
		for _, req := range pending {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", req.UserEmail, req.UserName, req.TargetRole, req.Reason)
		}
		w.Flush()
		fmt.Fprintln(out, "\nResolve one with 'mealhub dashboard admin --resolve <email> --state approved|rejected'.")
	}
	return nil
}

func resolveRoleRequest(ctx context.Context, sess *cliSession, out io.Writer, email, state string) error {
	resolution := models.RequestState(state)
	if resolution != models.RequestApproved && resolution != models.RequestRejected {
		return fmt.Errorf("invalid --state %q (use approved or rejected)", state)
	}
	req, err := sess.app.API.ResolveRoleRequest(ctx, email, resolution)
	if err != nil {
		return fmt.Errorf("failed to resolve role request: %w", err)
	}
	fmt.Fprintf(out, "✓ Request of %s for role %s: %s\n", req.UserEmail, req.TargetRole, req.State)
	return nil
}
