// Package secrets resolves the CareerLeaf API secret from configuration or
// the OS keychain.
package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/dbsmedya/clmigrate/internal/config"
)

// KeyringService groups clmigrate secrets in the OS keychain.
const KeyringService = "clmigrate"

// ErrSecretNotFound is returned when neither configuration nor keychain hold a secret.
var ErrSecretNotFound = errors.New("api secret not found (set remote.api_secret or store it in the keychain)")

// APISecret returns remote.api_secret when set, otherwise the keychain entry
// for remote.keyring_account.
func APISecret(cfg config.RemoteConfig) (string, error) {
	if strings.TrimSpace(cfg.APISecret) != "" {
		return cfg.APISecret, nil
	}
	account := strings.TrimSpace(cfg.KeyringAccount)
	if account == "" {
		return "", ErrSecretNotFound
	}

	secret, err := keyring.Get(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrSecretNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read keychain entry %q: %w", account, err)
	}
	if strings.TrimSpace(secret) == "" {
		return "", ErrSecretNotFound
	}
	return secret, nil
}

// SetAPISecret stores secret under account.
func SetAPISecret(account, secret string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(secret) == "" {
		return errors.New("secret is empty")
	}
	return keyring.Set(KeyringService, account, secret)
}

// DeleteAPISecret removes the keychain entry for account.
func DeleteAPISecret(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

// DefaultAccount derives a keychain account name from the API key and host.
func DefaultAccount(cfg config.RemoteConfig) string {
	host := strings.TrimPrefix(strings.TrimPrefix(cfg.URL, "https://"), "http://")
	host = strings.TrimRight(host, "/")
	return fmt.Sprintf("clmigrate:%s@%s", cfg.APIKey, host)
}
