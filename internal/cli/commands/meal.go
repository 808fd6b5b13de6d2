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
	"github.com/mealhub-dev/mealhub/internal/models"
	"github.com/mealhub-dev/mealhub/internal/uploads"
)

// NewMealCmd creates the meal management command group for chefs.
func NewMealCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meal",
		Short: "Manage your meals (chefs only)",
	}
	cmd.AddCommand(newMealAddCmd())
	cmd.AddCommand(newMealUpdateCmd())
	cmd.AddCommand(newMealRmCmd())
	return cmd
}

func newMealAddCmd() *cobra.Command {
	var input api.MealInput
	var imagePath string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Publish a new meal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMealAdd(os.Stdout, auth.Store{}, nil, nil, input, imagePath)
		},
	}
	cmd.Flags().StringVar(&input.Title, "title", "", "Meal title")
	cmd.Flags().StringVar(&input.Description, "description", "", "Meal description")
	cmd.Flags().Float64Var(&input.Price, "price", 0, "Price")
	cmd.Flags().StringVar(&input.Category, "category", "", "Category")
	cmd.Flags().StringVar(&input.DeliveryArea, "delivery-area", "", "Delivery area")
	cmd.Flags().BoolVar(&input.Available, "available", true, "Whether the meal is orderable")
	cmd.Flags().StringVar(&imagePath, "image", "", "Path to a meal photo")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("price")
	return cmd
}

func runMealAdd(out io.Writer, store identity.TokenStore, factory providerFactory, uploader uploads.Uploader, input api.MealInput, imagePath string) error {
	if input.Price <= 0 {
		return fmt.Errorf("price must be positive")
	}

	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := context.Background()
	_, ok, err := sess.requireAllowed(ctx, "meal add",
		guard.Presence{}, guard.RoleIs{Target: models.RoleChef})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if imagePath != "" {
		input.ImageURL, err = uploadMealImage(ctx, out, uploader, imagePath)
		if err != nil {
			return err
		}
	}

	meal, err := sess.app.API.CreateMeal(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to publish meal: %w", err)
	}
	fmt.Fprintf(out, "✓ Published %q (id %s)\n", meal.Title, meal.ID)
	return nil
}

func newMealUpdateCmd() *cobra.Command {
	var (
		title, description, category, deliveryArea, imagePath string
		price                                                 float64
		available                                             bool
	)

	cmd := &cobra.Command{
		Use:   "update <meal-id>",
		Short: "Update one of your meals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Only overlay flags the caller actually set, so an untouched
			// field keeps its current value.
			overlay := func(input *api.MealInput) {
				if cmd.Flags().Changed("title") {
					input.Title = title
				}
				if cmd.Flags().Changed("description") {
					input.Description = description
				}
				if cmd.Flags().Changed("price") {
					input.Price = price
				}
				if cmd.Flags().Changed("category") {
					input.Category = category
				}
				if cmd.Flags().Changed("delivery-area") {
					input.DeliveryArea = deliveryArea
				}
				if cmd.Flags().Changed("available") {
					input.Available = available
				}
			}
			return runMealUpdate(os.Stdout, auth.Store{}, nil, nil, args[0], overlay, imagePath)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Meal title")
	cmd.Flags().StringVar(&description, "description", "", "Meal description")
	cmd.Flags().Float64Var(&price, "price", 0, "Price")
	cmd.Flags().StringVar(&category, "category", "", "Category")
	cmd.Flags().StringVar(&deliveryArea, "delivery-area", "", "Delivery area")
	cmd.Flags().BoolVar(&available, "available", true, "Whether the meal is orderable")
	cmd.Flags().StringVar(&imagePath, "image", "", "Path to a new meal photo")
	return cmd
}

func runMealUpdate(out io.Writer, store identity.TokenStore, factory providerFactory, uploader uploads.Uploader, mealID string, overlay func(*api.MealInput), imagePath string) error {
	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := context.Background()
	_, ok, err := sess.requireAllowed(ctx, "meal update",
		guard.Presence{}, guard.RoleIs{Target: models.RoleChef})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	current, err := sess.app.API.GetMeal(ctx, mealID)
	if err != nil {
		return fmt.Errorf("failed to fetch meal: %w", err)
	}
	input := api.MealInput{
		Title:        current.Title,
		Description:  current.Description,
		ImageURL:     current.ImageURL,
		Price:        current.Price,
		Category:     current.Category,
		Available:    current.Available,
		DeliveryArea: current.DeliveryArea,
	}
	overlay(&input)
	if imagePath != "" {
		input.ImageURL, err = uploadMealImage(ctx, out, uploader, imagePath)
		if err != nil {
			return err
		}
	}
	if input.Price <= 0 {
		return fmt.Errorf("price must be positive")
	}

	meal, err := sess.app.API.UpdateMeal(ctx, mealID, input)
	if err != nil {
		return fmt.Errorf("failed to update meal: %w", err)
	}
	fmt.Fprintf(out, "✓ Updated %q\n", meal.Title)
	return nil
}

func newMealRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <meal-id>",
		Short: "Remove one of your meals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMealRm(os.Stdout, auth.Store{}, nil, args[0])
		},
	}
}

func runMealRm(out io.Writer, store identity.TokenStore, factory providerFactory, mealID string) error {
	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := context.Background()
	_, ok, err := sess.requireAllowed(ctx, "meal rm",
		guard.Presence{}, guard.RoleIs{Target: models.RoleChef})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := sess.app.API.DeleteMeal(ctx, mealID); err != nil {
		return fmt.Errorf("failed to remove meal: %w", err)
	}
	fmt.Fprintf(out, "✓ Removed meal %s\n", mealID)
	return nil
}

func uploadMealImage(ctx context.Context, out io.Writer, uploader uploads.Uploader, imagePath string) (string, error) {
	if uploader == nil {
		var err error
		uploader, err = newUploader()
		if err != nil {
			return "", err
		}
	}
	fmt.Fprintln(out, "Uploading image...")
	imageURL, err := uploader.UploadImage(ctx, imagePath, "meals")
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return imageURL, nil
}
