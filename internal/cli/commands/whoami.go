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

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session and resolved role",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(os.Stdout, auth.Store{}, nil)
		},
	}
}

func runWhoami(out io.Writer, store identity.TokenStore, factory providerFactory) error {
	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	snap, ok, err := sess.requireAllowed(context.Background(), "whoami", guard.Presence{})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	name := snap.User.DisplayName
	if name == "" {
		name = "(no display name)"
	}
	fmt.Fprintf(out, "Signed in as %s\n", snap.User.Email)
	fmt.Fprintf(out, "  Name: %s\n", name)
	if snap.RoleResolved {
		fmt.Fprintf(out, "  Role: %s\n", snap.Role)
	} else {
		fmt.Fprintln(out, "  Role: (not resolved)")
	}
	return nil
}
