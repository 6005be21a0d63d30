// Package di provides dependency injection configuration for the Fushigi client.
package di

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/bunkbed-tech/fushigi-sub000/internal/config"
	"github.com/bunkbed-tech/fushigi-sub000/internal/di/providers"
	"github.com/bunkbed-tech/fushigi-sub000/internal/events"
	"github.com/bunkbed-tech/fushigi-sub000/internal/logger"
	"github.com/bunkbed-tech/fushigi-sub000/internal/session"
	"github.com/bunkbed-tech/fushigi-sub000/internal/study"
)

// NewContainer creates and configures the DI container with all providers.
// flags are the command-line values that override the environment.
func NewContainer(flags config.Flags) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, flags)

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideEventBus)

	// Local cache
	do.Provide(injector, providers.ProvideStore)

	// Remote service
	do.Provide(injector, providers.ProvideKeyring)
	do.Provide(injector, providers.ProvideTokenSource)
	do.Provide(injector, providers.ProvideRemoteClient)
	do.Provide(injector, providers.ProvideCollections)

	// Sync
	do.Provide(injector, providers.ProvideCoordinators)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSelector)
	do.Provide(injector, providers.ProvidePendingQueue)

	// Business services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideStudyService)

	return injector
}

// Bootstrap initializes every service and loads the local cache so that
// commands start from whatever was synced last.
func Bootstrap(ctx context.Context, injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*events.Bus](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*session.Service](injector)

	svc, err := do.Invoke[*study.Service](injector)
	if err != nil {
		return err
	}
	svc.LoadLocal(ctx)

	return nil
}
