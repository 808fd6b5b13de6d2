package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mealhub-dev/mealhub/internal/cli/auth"
	"github.com/mealhub-dev/mealhub/internal/guard"
	"github.com/mealhub-dev/mealhub/internal/identity"
)

// NewFavoritesCmd creates the favorites command group.
func NewFavoritesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manage your favorite meals",
	}
	cmd.AddCommand(newFavoritesLsCmd())
	cmd.AddCommand(newFavoritesAddCmd())
	cmd.AddCommand(newFavoritesRmCmd())
	return cmd
}

func newFavoritesLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List your favorites",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFavoritesLs(os.Stdout, auth.Store{}, nil)
		},
	}
}

func runFavoritesLs(out io.Writer, store identity.TokenStore, factory providerFactory) error {
	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := context.Background()
	_, ok, err := sess.requireAllowed(ctx, "favorites ls", guard.Presence{})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	favorites, err := sess.app.API.Favorites(ctx)
	if err != nil {
		return fmt.Errorf("failed to list favorites: %w", err)
	}

	if len(favorites) == 0 {
		fmt.Fprintln(out, "No favorites yet.")
		return nil
	}
	for _, favorite := range favorites {
		fmt.Fprintf(out, "%s  %s (meal %s)\n", favorite.ID, favorite.MealTitle, favorite.MealID)
	}
	return nil
}

func newFavoritesAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <meal-id>",
		Short: "Add a meal to your favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFavoritesAdd(os.Stdout, auth.Store{}, nil, args[0])
		},
	}
}

func runFavoritesAdd(out io.Writer, store identity.TokenStore, factory providerFactory, mealID string) error {
	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := context.Background()
	_, ok, err := sess.requireAllowed(ctx, "favorites add", guard.Presence{})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	favorite, err := sess.app.API.AddFavorite(ctx, mealID)
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}

	fmt.Fprintf(out, "✓ Added %s to favorites (%s)\n", favorite.MealTitle, favorite.ID)
	return nil
}

func newFavoritesRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <favorite-id>",
		Short: "Remove a favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFavoritesRm(os.Stdout, auth.Store{}, nil, args[0])
		},
	}
}

func runFavoritesRm(out io.Writer, store identity.TokenStore, factory providerFactory, favoriteID string) error {
	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := context.Background()
	_, ok, err := sess.requireAllowed(ctx, "favorites rm", guard.Presence{})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := sess.app.API.RemoveFavorite(ctx, favoriteID); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}

	fmt.Fprintf(out, "✓ Favorite %s removed\n", favoriteID)
	return nil
}
