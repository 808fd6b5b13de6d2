package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mealhub-dev/mealhub/internal/cli/auth"
	"github.com/mealhub-dev/mealhub/internal/cli/userconfig"
	"github.com/mealhub-dev/mealhub/internal/config"
	"github.com/mealhub-dev/mealhub/internal/identity"
	"github.com/mealhub-dev/mealhub/internal/session"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string
	var google bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to MealHub",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(os.Stdout, auth.Store{}, nil, email, password, google)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set MEALHUB_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set MEALHUB_PASSWORD, will prompt if not provided)")
	cmd.Flags().BoolVar(&google, "google", false, "Sign in with Google instead of email/password")

	return cmd
}

func runLogin(out io.Writer, store identity.TokenStore, factory providerFactory, email, password string, google bool) error {
	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := context.Background()

	var user *identity.User
	if google {
		user, err = runGoogleLogin(ctx, sess)
	} else {
		user, err = runPasswordLogin(ctx, sess, email, password)
	}
	if err != nil {
		if ae, ok := identity.AsAuthError(err); ok {
			return fmt.Errorf("login failed: %s", ae.UserMessage())
		}
		if fe, ok := session.AsFieldError(err); ok {
			return fmt.Errorf("login failed: %s", fe.Message)
		}
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Fprintln(out, "✓ Login successful!")
	name := user.DisplayName
	if name == "" {
		name = user.Email
	}
	fmt.Fprintf(out, "  User: %s (%s)\n", name, user.Email)

	// Honor a location preserved by an earlier redirect to /login.
	if returnTo, err := userconfig.GetReturnTo(); err == nil && returnTo != "" {
		_ = userconfig.SetReturnTo("")
		fmt.Fprintf(out, "  You can now retry: mealhub %s\n", returnTo)
	}

	return nil
}

func runPasswordLogin(ctx context.Context, sess *cliSession, email, password string) (*identity.User, error) {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("MEALHUB_EMAIL")
	}
	if password == "" {
		password = os.Getenv("MEALHUB_PASSWORD")
	}

	if email == "" {
		return nil, fmt.Errorf("email is required (use --email flag or MEALHUB_EMAIL env var)")
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Fprint(sess.out, "Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return nil, fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Fprintln(sess.out)
		} else {
			return nil, fmt.Errorf("password is required in non-interactive mode (use --password flag or MEALHUB_PASSWORD env var)")
		}
	}

	fmt.Fprintf(sess.out, "Signing in to %s...\n", sess.cfg.Host())
	return sess.app.Session.Login(ctx, email, password)
}

func runGoogleLogin(ctx context.Context, sess *cliSession) (*identity.User, error) {
	envCfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	social, err := envCfg.RequireSocial()
	if err != nil {
		return nil, err
	}
	flow := identity.NewGoogleFlow(social.GoogleClientID, social.GoogleClientSecret, sess.out)
	return sess.app.Session.LoginWithSocial(ctx, flow, "google")
}
