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
)

// NewRequestRoleCmd creates the request-role command.
func NewRequestRoleCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "request-role <chef|admin>",
		Short: "Ask an admin to grant you a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequestRole(os.Stdout, auth.Store{}, nil, args[0], reason)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Why you want this role")
	return cmd
}

func runRequestRole(out io.Writer, store identity.TokenStore, factory providerFactory, target, reason string) error {
	role := models.Role(target)
	if !role.Valid() || role == models.RoleUser {
		return fmt.Errorf("role must be chef or admin")
	}

	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := context.Background()
	_, ok, err := sess.requireAllowed(ctx, "request-role "+target, guard.Presence{})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	request, err := sess.app.API.CreateRoleRequest(ctx, api.RoleRequestInput{
		TargetRole: role,
		Reason:     reason,
	})
	if err != nil {
		return fmt.Errorf("failed to submit role request: %w", err)
	}

	fmt.Fprintf(out, "✓ Requested the %s role (%s). An admin will review it.\n", request.TargetRole, request.State)
	return nil
}
