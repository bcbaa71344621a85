// Package credential stores account passwords in the system keyring,
// keyed by account ID. Passwords never touch the account registry or
// the config file.
package credential

import (
	"fmt"
	"path/filepath"

	"github.com/99designs/keyring"

	"github.com/nhle/inbox-reader/internal/model"
)

const serviceName = "inbox-reader"

// openKeyring returns a configured keyring instance. The file backend
// is the last resort for systems without a native secret service; its
// store lives next to the account registry.
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
		FileDir:                  filepath.Join(model.DefaultDataDir(), "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt("inbox-reader-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves the password stored for an account ID.
func Get(accountID string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(accountID)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", accountID, err)
	}

	return string(item.Data), nil
}

// Set stores an account password under its account ID.
func Set(accountID, password string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  accountID,
		Data: []byte(password),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", accountID, err)
	}

	return nil
}

// Delete removes the password stored for an account ID.
func Delete(accountID string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(accountID)
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", accountID, err)
	}

	return nil
}
