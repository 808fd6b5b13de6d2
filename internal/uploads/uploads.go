// Package uploads pushes images to the external hosting service and returns
// their public URLs. The client never serves images itself.
package uploads

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const maxImageSize = 5 * 1024 * 1024

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// Uploader stores a local image and returns its hosted public URL.
type Uploader interface {
	UploadImage(ctx context.Context, localPath, folder string) (string, error)
}

// Cloudinary implements Uploader against the Cloudinary API.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary builds an uploader from a cloudinary:// URL.
func NewCloudinary(cloudinaryURL string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to init cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld}, nil
}

// UploadImage validates and uploads the file at localPath, returning the
// hosted HTTPS URL.
func (u *Cloudinary) UploadImage(ctx context.Context, localPath, folder string) (string, error) {
	if err := validateImage(localPath); err != nil {
		return "", err
	}

	resp, err := u.cld.Upload.Upload(ctx, localPath, uploader.UploadParams{
		PublicID: fmt.Sprintf("%s_%d", folder, time.Now().UnixNano()),
		Folder:   folder,
	})
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("upload returned no URL")
	}
	return resp.SecureURL, nil
}

func validateImage(localPath string) error {
	info, err := os.Stat(localPath)
	if err != nil {
		return fmt.Errorf("cannot read image: %w", err)
	}
	if info.Size() > maxImageSize {
		return fmt.Errorf("image too large (max 5MB)")
	}
	ext := strings.ToLower(filepath.Ext(localPath))
	if !allowedExtensions[ext] {
		return fmt.Errorf("unsupported image format %q (use png, jpg, jpeg, gif or webp)", ext)
	}
	return nil
}
