// Package credential stores the bearer token used against the record service.
// Issuing and rotating tokens is the service's job; this package only keeps
// whatever token the user supplied.
package credential

import (
	"context"
	"errors"
	"strings"

	"github.com/zalando/go-keyring"

	domainerrors "github.com/bunkbed-tech/fushigi-sub000/internal/errors"
)

// Static is a fixed token, used when one is configured directly.
type Static string

// Token implements remote.TokenSource.
func (s Static) Token(context.Context) (string, error) {
	return string(s), nil
}

// Keyring keeps the token in the operating system's secret store.
type Keyring struct {
	service string
	account string
}

// NewKeyring creates a Keyring for one service/account pair.
func NewKeyring(service, account string) *Keyring {
	return &Keyring{service: service, account: account}
}

// Token implements remote.TokenSource. A missing entry yields an empty token.
func (k *Keyring) Token(context.Context) (string, error) {
	token, err := keyring.Get(k.service, k.account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeUnauthorized, "read token from keyring")
	}
	return token, nil
}

// Store saves token, replacing any previous one.
func (k *Keyring) Store(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return domainerrors.Validation("token must not be blank")
	}
	if err := keyring.Set(k.service, k.account, token); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "write token to keyring")
	}
	return nil
}

// Delete removes the stored token. Deleting a missing token is not an error.
func (k *Keyring) Delete() error {
	err := keyring.Delete(k.service, k.account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "delete token from keyring")
	}
	return nil
}
