// Package credential supplies the bearer token for backend calls. The
// token comes from the CAREPORTAL_TOKEN environment variable or, failing
// that, the system keyring.
package credential

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/99designs/keyring"
)

const (
	serviceName = "careportal"

	// TokenKey is the keyring item holding the bearer token.
	TokenKey = "backend-token"

	// TokenEnv overrides the keyring when set.
	TokenEnv = "CAREPORTAL_TOKEN"
)

// ErrNoToken means neither the environment nor the keyring holds a token.
var ErrNoToken = errors.New("no backend token configured")

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/careportal/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("careportal-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Token returns the bearer token, preferring the environment.
func Token() (string, error) {
	if tok := strings.TrimSpace(os.Getenv(TokenEnv)); tok != "" {
		return tok, nil
	}

	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(TokenKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", TokenKey, err)
	}

	tok := strings.TrimSpace(string(item.Data))
	if tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

// SaveToken stores the bearer token in the system keyring.
func SaveToken(token string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:   TokenKey,
		Data:  []byte(strings.TrimSpace(token)),
		Label: "Care portal backend token",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", TokenKey, err)
	}

	return nil
}

// DeleteToken removes the stored bearer token. A missing token is not an
// error.
func DeleteToken() error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(TokenKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", TokenKey, err)
	}

	return nil
}
