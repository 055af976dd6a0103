// Package auth stores provider API tokens. Tokens live in the OS keychain
// and can be overridden per provider through the environment, which is how
// headless deployments of 'cfdash dashboard serve' supply credentials.
package auth

import (
	"errors"
	"os"
	"strings"

	"nathanbeddoewebdev/cfdash/internal/util"
)

const ServiceName = "cfdash"

var ErrTokenNotFound = errors.New("auth token not found")

type Store interface {
	SetToken(provider string, token string) error
	GetToken(provider string) (string, error)
	DeleteToken(provider string) error
}

// DefaultStore returns the standard auth store: environment overrides on
// top of the OS keychain.
func DefaultStore() Store {
	return NewEnvStore(NewKeyringStore(ServiceName), os.LookupEnv)
}

// NormalizeProvider normalizes a provider name for consistent key lookup.
func NormalizeProvider(provider string) string {
	return util.NormalizeKey(provider)
}

// EnvVar is the environment variable that overrides the stored token for
// provider, e.g. CLOUDFLARE_API_TOKEN.
func EnvVar(provider string) string {
	key := strings.ToUpper(NormalizeProvider(provider))
	key = strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(key)
	return key + "_API_TOKEN"
}

// EnvStore reads tokens from the environment first and falls back to an
// inner store. Writes always go to the inner store.
type EnvStore struct {
	inner  Store
	lookup func(string) (string, bool)
}

// NewEnvStore wraps inner. lookup is usually os.LookupEnv.
func NewEnvStore(inner Store, lookup func(string) (string, bool)) *EnvStore {
	return &EnvStore{inner: inner, lookup: lookup}
}

func (e *EnvStore) SetToken(provider string, token string) error {
	return e.inner.SetToken(provider, token)
}

func (e *EnvStore) GetToken(provider string) (string, error) {
	if v, ok := e.lookup(EnvVar(provider)); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}
	return e.inner.GetToken(provider)
}

func (e *EnvStore) DeleteToken(provider string) error {
	return e.inner.DeleteToken(provider)
}
