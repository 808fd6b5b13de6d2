package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mealhub-dev/mealhub/internal/api"
	"github.com/mealhub-dev/mealhub/internal/cli/auth"
	"github.com/mealhub-dev/mealhub/internal/guard"
	"github.com/mealhub-dev/mealhub/internal/identity"
)

// NewReviewsCmd creates the reviews command group.
func NewReviewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Read and write meal reviews",
	}
	cmd.AddCommand(newReviewsLsCmd())
	cmd.AddCommand(newReviewsAddCmd())
	cmd.AddCommand(newReviewsEditCmd())
	cmd.AddCommand(newReviewsRmCmd())
	return cmd
}

func newReviewsLsCmd() *cobra.Command {
	var mine bool

	cmd := &cobra.Command{
		Use:     "ls [meal-id]",
		Aliases: []string{"list"},
		Short:   "List reviews for a meal, or your own with --mine",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mealID := ""
			if len(args) == 1 {
				mealID = args[0]
			}
			return runReviewsLs(os.Stdout, auth.Store{}, nil, mealID, mine)
		},
	}
	cmd.Flags().BoolVar(&mine, "mine", false, "List your own reviews")
	return cmd
}

func runReviewsLs(out io.Writer, store identity.TokenStore, factory providerFactory, mealID string, mine bool) error {
	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := context.Background()

	if mine {
		snap, ok, err := sess.requireAllowed(ctx, "reviews ls --mine", guard.Presence{})
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		reviews, err := sess.app.API.ReviewsByUser(ctx, snap.User.Email)
		if err != nil {
			return fmt.Errorf("failed to list reviews: %w", err)
		}
		for _, review := range reviews {
			fmt.Fprintf(out, "%s  %d/5 on %s — %s\n", review.ID, review.Rating, review.MealID, review.Comment)
		}
		if len(reviews) == 0 {
			fmt.Fprintln(out, "You have not written any reviews.")
		}
		return nil
	}

	if mealID == "" {
		return fmt.Errorf("meal ID is required (or use --mine)")
	}
	reviews, err := sess.app.API.ReviewsByMeal(ctx, mealID)
	if err != nil {
		return fmt.Errorf("failed to list reviews: %w", err)
	}
	if len(reviews) == 0 {
		fmt.Fprintln(out, "No reviews yet.")
		return nil
	}
	for _, review := range reviews {
		fmt.Fprintf(out, "%s  %d/5 %s — %s\n", review.ID, review.Rating, review.UserName, review.Comment)
	}
	return nil
}

func newReviewsAddCmd() *cobra.Command {
	var rating int
	var comment string

	cmd := &cobra.Command{
		Use:   "add <meal-id>",
		Short: "Review a meal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReviewsAdd(os.Stdout, auth.Store{}, nil, args[0], rating, comment)
		},
	}
	cmd.Flags().IntVar(&rating, "rating", 5, "Rating from 1 to 5")
	cmd.Flags().StringVar(&comment, "comment", "", "Review text")
	return cmd
}

func runReviewsAdd(out io.Writer, store identity.TokenStore, factory providerFactory, mealID string, rating int, comment string) error {
	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}

	ctx := context.Background()
	_, ok, err := sess.requireAllowed(ctx, "reviews add", guard.Presence{})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	review, err := sess.app.API.CreateReview(ctx, api.ReviewInput{
		MealID:  mealID,
		Rating:  rating,
		Comment: comment,
	})
	if err != nil {
		return fmt.Errorf("failed to post review: %w", err)
	}

	fmt.Fprintf(out, "✓ Review %s posted\n", review.ID)
	return nil
}

func newReviewsEditCmd() *cobra.Command {
	var rating int
	var comment string

	cmd := &cobra.Command{
		Use:   "edit <review-id>",
		Short: "Edit one of your reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReviewsEdit(os.Stdout, auth.Store{}, nil, args[0], rating, comment)
		},
	}
	cmd.Flags().IntVar(&rating, "rating", 0, "New rating from 1 to 5")
	cmd.Flags().StringVar(&comment, "comment", "", "New review text")
	return cmd
}

func runReviewsEdit(out io.Writer, store identity.TokenStore, factory providerFactory, reviewID string, rating int, comment string) error {
	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := context.Background()
	_, ok, err := sess.requireAllowed(ctx, "reviews edit", guard.Presence{})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	review, err := sess.app.API.UpdateReview(ctx, reviewID, api.ReviewInput{
		Rating:  rating,
		Comment: comment,
	})
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	fmt.Fprintf(out, "✓ Review %s updated\n", review.ID)
	return nil
}

func newReviewsRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <review-id>",
		Short: "Delete one of your reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReviewsRm(os.Stdout, auth.Store{}, nil, args[0])
		},
	}
}

func runReviewsRm(out io.Writer, store identity.TokenStore, factory providerFactory, reviewID string) error {
	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := context.Background()
	_, ok, err := sess.requireAllowed(ctx, "reviews rm", guard.Presence{})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := sess.app.API.DeleteReview(ctx, reviewID); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	fmt.Fprintf(out, "✓ Review %s deleted\n", reviewID)
	return nil
}
