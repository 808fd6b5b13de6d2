package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "mealhub-cli"
)

// getKeyringKey returns a unique key for storing refresh tokens per API host
func getKeyringKey(host string) string {
	return fmt.Sprintf("refresh-%s", host)
}

// SaveRefreshToken persists the provider refresh token securely in the OS
// keychain/credential manager
func SaveRefreshToken(host, token string) error {
	key := getKeyringKey(host)
	if err := keyring.Set(service, key, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// LoadRefreshToken retrieves the provider refresh token from the OS
// keychain/credential manager. A missing token is not an error: it just means
// no session to restore.
func LoadRefreshToken(host string) (string, error) {
	key := getKeyringKey(host)
	token, err := keyring.Get(service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load token: %w", err)
	}
	return token, nil
}

// DeleteRefreshToken removes the provider refresh token from the OS
// keychain/credential manager
func DeleteRefreshToken(host string) error {
	if err := keyring.Delete(service, getKeyringKey(host)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
