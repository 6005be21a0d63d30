package providers

import (
	"github.com/samber/do/v2"

	"github.com/bunkbed-tech/fushigi-sub000/internal/config"
	"github.com/bunkbed-tech/fushigi-sub000/internal/logger"
)

// ProvideConfig provides the client configuration. Command-line values are
// registered in the container as config.Flags before anything is invoked.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	flags, err := do.Invoke[config.Flags](i)
	if err != nil {
		flags = config.Flags{}
	}
	return config.LoadConfig(flags)
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development" && cfg.Logger.Level == "debug",
		Environment: cfg.App.Environment,
		File:        cfg.Logger.File,
	})

	log.Debug("Starting Fushigi",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Storage.DataPath,
		"remote_url", cfg.Remote.URL,
	)

	return log, nil
}
