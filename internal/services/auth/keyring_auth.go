package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// ErrEmptyToken is returned when storing a blank token.
var ErrEmptyToken = errors.New("auth token is empty")

// KeyringStore keeps one token per provider in the OS keychain, under the
// service name and the normalized provider name as the account.
type KeyringStore struct {
	service string
}

// NewKeyringStore returns a store for service. Empty means ServiceName.
func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = ServiceName
	}
	return &KeyringStore{service: service}
}

func (k *KeyringStore) SetToken(provider string, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	if err := keyring.Set(k.service, NormalizeProvider(provider), token); err != nil {
		return fmt.Errorf("keychain: failed to store %s token: %w", provider, err)
	}
	return nil
}

func (k *KeyringStore) GetToken(provider string) (string, error) {
	token, err := keyring.Get(k.service, NormalizeProvider(provider))
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return "", ErrTokenNotFound
	case err != nil:
		return "", fmt.Errorf("keychain: failed to read %s token: %w", provider, err)
	}
	return token, nil
}

func (k *KeyringStore) DeleteToken(provider string) error {
	err := keyring.Delete(k.service, NormalizeProvider(provider))
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return ErrTokenNotFound
	case err != nil:
		return fmt.Errorf("keychain: failed to delete %s token: %w", provider, err)
	}
	return nil
}
