package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mealhub-dev/mealhub/internal/cli/auth"
	"github.com/mealhub-dev/mealhub/internal/identity"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out of MealHub",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(os.Stdout, auth.Store{}, nil)
		},
	}
}

func runLogout(out io.Writer, store identity.TokenStore, factory providerFactory) error {
	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	// Notifies the backend first, then terminates the provider session; never
	// fails even when the backend call does.
	sess.app.Session.Logout(context.Background())

	fmt.Fprintln(out, "✓ Signed out.")
	return nil
}
