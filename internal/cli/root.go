package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mealhub-dev/mealhub/internal/cli/commands"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "mealhub",
	Short: "MealHub - Home-cooked meal marketplace",
	Long: `MealHub CLI - Order home-cooked meals from local chefs.

Browse meals without signing in; ordering, reviews, favorites and the chef
and admin dashboards require an account.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mealhub version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewRegisterCmd())
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewMealsCmd())
	rootCmd.AddCommand(commands.NewMealCmd())
	rootCmd.AddCommand(commands.NewOrderCmd())
	rootCmd.AddCommand(commands.NewReviewsCmd())
	rootCmd.AddCommand(commands.NewFavoritesCmd())
	rootCmd.AddCommand(commands.NewRequestRoleCmd())
	rootCmd.AddCommand(commands.NewProfileCmd())
	rootCmd.AddCommand(commands.NewDashboardCmd())
	rootCmd.AddCommand(commands.NewThemeCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
