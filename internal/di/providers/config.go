// Package providers contains dependency injection providers for the movienight client.
package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/listenupapp/movienight/internal/config"
	"github.com/listenupapp/movienight/internal/logger"
	"github.com/listenupapp/movienight/internal/validation"
)

// ProvideConfig provides the application configuration parsed from args.
func ProvideConfig(args []string) do.Provider[*config.Config] {
	return func(i do.Injector) (*config.Config, error) {
		return config.LoadConfig(args)
	}
}

// ProvideLogger provides the structured logger. Logs go to stderr; the
// console owns stdout.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Writer:      os.Stderr,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Debug("Starting movienight",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"api_url", cfg.API.BaseURL,
		"session_path", cfg.Session.Path,
	)

	return log, nil
}

// ProvideValidator provides the shared struct validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}
