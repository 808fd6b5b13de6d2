package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mealhub-dev/mealhub/internal/api"
	"github.com/mealhub-dev/mealhub/internal/cli/auth"
	"github.com/mealhub-dev/mealhub/internal/identity"
	"github.com/mealhub-dev/mealhub/internal/session"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a MealHub account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegister(os.Stdout, auth.Store{}, nil, email, password, name)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (will prompt if not provided)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")

	return cmd
}

func runRegister(out io.Writer, store identity.TokenStore, factory providerFactory, email, password, name string) error {
	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	if email == "" {
		return fmt.Errorf("email is required (use --email)")
	}
	if password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Fprint(out, "Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Fprintln(out)
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password)")
		}
	}

	ctx := context.Background()

	user, err := sess.app.Session.Register(ctx, email, password)
	if err != nil {
		if ae, ok := identity.AsAuthError(err); ok {
			return fmt.Errorf("registration failed: %s", ae.UserMessage())
		}
		if fe, ok := session.AsFieldError(err); ok {
			return fmt.Errorf("registration failed: %s", fe.Message)
		}
		return fmt.Errorf("registration failed: %w", err)
	}

	if name != "" {
		if _, err := sess.app.Session.UpdateProfile(ctx, &name, nil); err != nil {
			fmt.Fprintf(out, "Warning: failed to set display name: %v\n", err)
		}
	}

	// Create the backend profile so the account gets its default role.
	if _, err := sess.app.API.CreateUser(ctx, api.CreateUserRequest{
		Email: user.Email,
		Name:  name,
	}); err != nil {
		fmt.Fprintf(out, "Warning: failed to create backend profile: %v\n", err)
	}

	fmt.Fprintln(out, "✓ Account created!")
	fmt.Fprintf(out, "  User: %s\n", user.Email)
	return nil
}
