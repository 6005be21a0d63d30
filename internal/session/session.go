// Package session ends and starts the signed-in session on this device.
package session

import (
	"context"
	"log/slog"

	"github.com/bunkbed-tech/fushigi-sub000/internal/events"
	domainerrors "github.com/bunkbed-tech/fushigi-sub000/internal/errors"
	"github.com/bunkbed-tech/fushigi-sub000/internal/store"
)

// CredentialStore holds the bearer token between runs.
type CredentialStore interface {
	Store(token string) error
	Delete() error
}

// Service manages login and logout.
type Service struct {
	credentials CredentialStore
	cache       store.Wiper
	bus         *events.Bus
	logger      *slog.Logger
}

// NewService creates a session service.
func NewService(credentials CredentialStore, cache store.Wiper, bus *events.Bus, logger *slog.Logger) *Service {
	return &Service{
		credentials: credentials,
		cache:       cache,
		bus:         bus,
		logger:      logger,
	}
}

// Login stores token for later runs.
func (s *Service) Login(token string) error {
	if err := s.credentials.Store(token); err != nil {
		return err
	}
	s.logger.Info("credential stored")
	return nil
}

// Logout deletes the stored credential, wipes the durable cache, and
// broadcasts one clear event. The event is broadcast even when a step
// before it failed, so no component keeps the previous user's data in
// memory. Every failure is returned.
func (s *Service) Logout(ctx context.Context, userID string) error {
	var errs []error

	if err := s.credentials.Delete(); err != nil {
		s.logger.Error("failed to delete credential", "error", err)
		errs = append(errs, err)
	}

	if err := s.cache.Wipe(ctx); err != nil {
		s.logger.Error("failed to wipe local cache", "error", err)
		errs = append(errs, domainerrors.LocalStorage(err, "wipe local cache"))
	}

	s.bus.Publish(events.NewClearedEvent(userID))
	s.logger.Info("logged out", "user_id", userID, "failures", len(errs))

	return domainerrors.Join(errs...)
}
