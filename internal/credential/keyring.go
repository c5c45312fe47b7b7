// Package credential keeps server secrets in the system keyring.
package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"

	"github.com/nhle/taskflow/internal/model"
)

const serviceName = "taskflow"

// Keys under which secrets are stored.
const (
	KeyJWTSecret        = "jwt_secret"
	KeyAdminInviteToken = "admin_invite_token"
)

// ErrNotFound is returned by Get when no secret is stored under a key.
var ErrNotFound = errors.New("credential not found")

// Vault reads and writes secrets in a keyring.
type Vault struct {
	ring keyring.Keyring
}

// NewVault wraps an already opened keyring.
func NewVault(ring keyring.Keyring) *Vault {
	return &Vault{ring: ring}
}

// Open returns a Vault on the system keyring.
func Open() (*Vault, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/taskflow/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("taskflow-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewVault(ring), nil
}

// Get retrieves a secret by key.
func (v *Vault) Get(key string) (string, error) {
	item, err := v.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("getting credential %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores a secret by key.
func (v *Vault) Set(key string, value string) error {
	err := v.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: serviceName + " " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a secret by key.
func (v *Vault) Delete(key string) error {
	if err := v.ring.Remove(key); err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

// Resolve fills the empty secrets of cfg from the vault. Secrets absent
// from the vault stay empty.
func (v *Vault) Resolve(cfg *model.AuthConfig) error {
	fields := []struct {
		key   string
		value *string
	}{
		{KeyJWTSecret, &cfg.JWTSecret},
		{KeyAdminInviteToken, &cfg.AdminInviteToken},
	}
	for _, f := range fields {
		if *f.value != "" {
			continue
		}
		secret, err := v.Get(f.key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		*f.value = secret
	}
	return nil
}
