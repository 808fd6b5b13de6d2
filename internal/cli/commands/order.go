package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/mealhub-dev/mealhub/internal/api"
	"github.com/mealhub-dev/mealhub/internal/cli/auth"
	"github.com/mealhub-dev/mealhub/internal/guard"
	"github.com/mealhub-dev/mealhub/internal/identity"
	"github.com/mealhub-dev/mealhub/internal/models"
)

// NewOrderCmd creates the order command group.
func NewOrderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Place and inspect orders",
	}
	cmd.AddCommand(newOrderPlaceCmd())
	cmd.AddCommand(newOrderLsCmd())
	cmd.AddCommand(newOrderStatusCmd())
	cmd.AddCommand(newOrderConfirmPaymentCmd())
	return cmd
}

func newOrderPlaceCmd() *cobra.Command {
	var mealID, address string
	var quantity int

	cmd := &cobra.Command{
		Use:   "place",
		Short: "Order a meal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrderPlace(os.Stdout, auth.Store{}, nil, mealID, quantity, address)
		},
	}

	cmd.Flags().StringVar(&mealID, "meal", "", "Meal ID (interactive selection if omitted)")
	cmd.Flags().IntVar(&quantity, "qty", 1, "Quantity")
	cmd.Flags().StringVar(&address, "address", "", "Delivery address")

	return cmd
}

func runOrderPlace(out io.Writer, store identity.TokenStore, factory providerFactory, mealID string, quantity int, address string) error {
	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := context.Background()
	_, ok, err := sess.requireAllowed(ctx, "order place", guard.Presence{})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}

	if mealID == "" {
		mealID, err = promptMealSelection(ctx, sess)
		if err != nil {
			return err
		}
	}

	resp, err := sess.app.API.CreateOrder(ctx, api.OrderInput{
		MealID:   mealID,
		Quantity: quantity,
		Address:  address,
	})
	if err != nil {
		return fmt.Errorf("failed to place order: %w", err)
	}

	fmt.Fprintf(out, "✓ Order %s placed (%s, qty %d)\n", resp.Order.ID, resp.Order.MealTitle, resp.Order.Quantity)
	if resp.PaymentURL != "" {
		fmt.Fprintf(out, "Complete payment at:\n\n  %s\n\nThen run: mealhub order confirm-payment <session-id>\n", resp.PaymentURL)
	}
	return nil
}

// promptMealSelection lets the user pick a meal interactively.
func promptMealSelection(ctx context.Context, sess *cliSession) (string, error) {
	page, err := sess.app.API.ListMeals(ctx, api.MealFilter{})
	if err != nil {
		return "", fmt.Errorf("failed to list meals: %w", err)
	}
	if len(page.Meals) == 0 {
		return "", fmt.Errorf("no meals available")
	}

	labels := make([]string, len(page.Meals))
	for i, meal := range page.Meals {
		labels[i] = fmt.Sprintf("%s — %.2f (%s)", meal.Title, meal.Price, meal.ChefName)
	}

	prompt := promptui.Select{
		Label: "Select a meal",
		Items: labels,
	}
	idx, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("selection canceled: %w", err)
	}
	return page.Meals[idx].ID, nil
}

func newOrderLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List your orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrderLs(os.Stdout, auth.Store{}, nil)
		},
	}
}

func runOrderLs(out io.Writer, store identity.TokenStore, factory providerFactory) error {
	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := context.Background()
	snap, ok, err := sess.requireAllowed(ctx, "order ls", guard.Presence{})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	orders, err := sess.app.API.OrdersByUser(ctx, snap.User.Email)
	if err != nil {
		return fmt.Errorf("failed to list orders: %w", err)
	}

	printOrders(out, orders)
	return nil
}

func printOrders(out io.Writer, orders []models.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(out, "No orders found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMEAL\tQTY\tPRICE\tSTATUS")
	fmt.Fprintln(w, "──\t────\t───\t─────\t──────")
	for _, order := range orders {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%s\n",
			order.ID, order.MealTitle, order.Quantity, order.Price, order.Status)
	}
	w.Flush()
}

func newOrderStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <order-id> <status>",
		Short: "Update an order's status (chef only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrderStatus(os.Stdout, auth.Store{}, nil, args[0], args[1])
		},
	}
}

func runOrderStatus(out io.Writer, store identity.TokenStore, factory providerFactory, orderID, status string) error {
	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := context.Background()
	_, ok, err := sess.requireAllowed(ctx, "order status", guard.Presence{}, guard.RoleIs{Target: models.RoleChef})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	order, err := sess.app.API.UpdateOrderStatus(ctx, orderID, models.OrderStatus(status))
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	fmt.Fprintf(out, "✓ Order %s is now %s\n", order.ID, order.Status)
	return nil
}

func newOrderConfirmPaymentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm-payment <session-id>",
		Short: "Confirm a completed external payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrderConfirmPayment(os.Stdout, auth.Store{}, nil, args[0])
		},
	}
}

func runOrderConfirmPayment(out io.Writer, store identity.TokenStore, factory providerFactory, sessionID string) error {
	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := context.Background()
	_, ok, err := sess.requireAllowed(ctx, "order confirm-payment", guard.Presence{})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	order, err := sess.app.API.ConfirmPayment(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to confirm payment: %w", err)
	}

	fmt.Fprintf(out, "✓ Payment confirmed, order %s is %s\n", order.ID, order.Status)
	return nil
}
