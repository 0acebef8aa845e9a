// Package di provides dependency injection configuration for the movienight client.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/movienight/internal/backend"
	"github.com/listenupapp/movienight/internal/config"
	"github.com/listenupapp/movienight/internal/console"
	"github.com/listenupapp/movienight/internal/di/providers"
	"github.com/listenupapp/movienight/internal/logger"
	"github.com/listenupapp/movienight/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
// args are the command-line arguments without the program name.
func NewContainer(args []string) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig(args))
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Local state
	do.Provide(injector, providers.ProvideSessionStore)

	// Backend access
	do.Provide(injector, providers.ProvideAPIClient)
	do.Provide(injector, providers.ProvideGateway)

	// Front end
	do.Provide(injector, providers.ProvideConsole)

	return injector
}

// Bootstrap initializes every service so configuration and storage errors
// surface before the console starts.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*validation.Validator](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.SessionStoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.APIClientHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*backend.Gateway](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*console.Console](injector); err != nil {
		return err
	}
	return nil
}
