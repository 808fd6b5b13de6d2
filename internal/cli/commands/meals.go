package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mealhub-dev/mealhub/internal/api"
	"github.com/mealhub-dev/mealhub/internal/cli/auth"
	"github.com/mealhub-dev/mealhub/internal/identity"
)

// NewMealsCmd creates the meals command group (public browsing).
func NewMealsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meals",
		Short: "Browse meals",
	}
	cmd.AddCommand(newMealsLsCmd())
	cmd.AddCommand(newMealsShowCmd())
	return cmd
}

func newMealsLsCmd() *cobra.Command {
	var filter api.MealFilter

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List available meals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMealsLs(os.Stdout, auth.Store{}, nil, filter)
		},
	}

	cmd.Flags().StringVar(&filter.Search, "search", "", "Search in title and description")
	cmd.Flags().StringVar(&filter.Category, "category", "", "Filter by category")
	cmd.Flags().StringVar(&filter.SortBy, "sort", "", "Sort order: price-asc, price-desc, rating")
	cmd.Flags().IntVar(&filter.Page, "page", 0, "Page number")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Page size")

	return cmd
}

func runMealsLs(out io.Writer, store identity.TokenStore, factory providerFactory, filter api.MealFilter) error {
	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	page, err := sess.app.API.ListMeals(context.Background(), filter)
	if err != nil {
		return fmt.Errorf("failed to list meals: %w", err)
	}

	if len(page.Meals) == 0 {
		fmt.Fprintln(out, "No meals found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tPRICE\tRATING\tCHEF")
	fmt.Fprintln(w, "──\t─────\t────────\t─────\t──────\t────")
	for _, meal := range page.Meals {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.1f (%d)\t%s\n",
			meal.ID, meal.Title, meal.Category, meal.Price, meal.Rating, meal.ReviewCount, meal.ChefName)
	}
	w.Flush()

	fmt.Fprintf(out, "\n%d of %d meals\n", len(page.Meals), page.Total)
	return nil
}

func newMealsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <meal-id>",
		Short: "Show one meal with its reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMealsShow(os.Stdout, auth.Store{}, nil, args[0])
		},
	}
}

func runMealsShow(out io.Writer, store identity.TokenStore, factory providerFactory, mealID string) error {
	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := context.Background()
	meal, err := sess.app.API.GetMeal(ctx, mealID)
	if err != nil {
		return fmt.Errorf("failed to fetch meal: %w", err)
	}

	fmt.Fprintf(out, "%s — %.2f (%s)\n", meal.Title, meal.Price, meal.Category)
	fmt.Fprintf(out, "By %s\n\n%s\n", meal.ChefName, meal.Description)
	if !meal.Available {
		fmt.Fprintln(out, "\nCurrently unavailable.")
	}

	reviews, err := sess.app.API.ReviewsByMeal(ctx, mealID)
	if err != nil {
		// Reviews are decoration here; the meal itself rendered fine.
		fmt.Fprintf(out, "\n(could not load reviews: %v)\n", err)
		return nil
	}
	if len(reviews) > 0 {
		fmt.Fprintf(out, "\nReviews (%d):\n", len(reviews))
		for _, review := range reviews {
			fmt.Fprintf(out, "  %d/5 %s — %s\n", review.Rating, review.UserName, review.Comment)
		}
	}
	return nil
}
