package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mealhub-dev/mealhub/internal/api"
	"github.com/mealhub-dev/mealhub/internal/cli/auth"
	"github.com/mealhub-dev/mealhub/internal/config"
	"github.com/mealhub-dev/mealhub/internal/guard"
	"github.com/mealhub-dev/mealhub/internal/identity"
	"github.com/mealhub-dev/mealhub/internal/uploads"
)

// NewProfileCmd creates the profile command group.
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and update your profile",
	}
	cmd.AddCommand(newProfileUpdateCmd())
	return cmd
}

func newProfileUpdateCmd() *cobra.Command {
	var name, photoPath string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update your display name and photo",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfileUpdate(os.Stdout, auth.Store{}, nil, nil, name, photoPath)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVar(&photoPath, "photo", "", "Path to a new profile photo")
	return cmd
}

func runProfileUpdate(out io.Writer, store identity.TokenStore, factory providerFactory, uploader uploads.Uploader, name, photoPath string) error {
	if name == "" && photoPath == "" {
		return fmt.Errorf("nothing to update (use --name and/or --photo)")
	}

	sess, err := newSession(out, store, factory)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := context.Background()
	snap, ok, err := sess.requireAllowed(ctx, "profile update", guard.Presence{})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	var namePtr, photoPtr *string
	if name != "" {
		namePtr = &name
	}
	if photoPath != "" {
		if uploader == nil {
			uploader, err = newUploader()
			if err != nil {
				return err
			}
		}
		fmt.Fprintln(out, "Uploading photo...")
		photoURL, err := uploader.UploadImage(ctx, photoPath, "profiles")
		if err != nil {
			return fmt.Errorf("failed to upload photo: %w", err)
		}
		photoPtr = &photoURL
	}

	// The provider owns displayName/photoURL; the backend profile mirrors
	// them for listings.
	if _, err := sess.app.Session.UpdateProfile(ctx, namePtr, photoPtr); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if _, err := sess.app.API.UpdateUser(ctx, snap.User.Email, api.UpdateUserRequest{
		Name:     namePtr,
		PhotoURL: photoPtr,
	}); err != nil {
		fmt.Fprintf(out, "Warning: backend profile update failed: %v\n", err)
	}

	fmt.Fprintln(out, "✓ Profile updated")
	return nil
}

func newUploader() (uploads.Uploader, error) {
	envCfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	up, err := envCfg.RequireUploads()
	if err != nil {
		return nil, err
	}
	return uploads.NewCloudinary(up.CloudinaryURL)
}
