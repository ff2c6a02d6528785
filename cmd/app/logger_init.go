package main

import (
	"github.com/service-lgtm/pw-next-sub000/internal/config"
	"github.com/service-lgtm/pw-next-sub000/internal/logger"
)

// initLogger installs a stdout logger for the short-lived maintenance commands
func initLogger(cfg *config.Config) {
	addSource := cfg.Environment == "dev" || cfg.Environment == "development"

	logger.InitLogger(logger.NewConfig(
		cfg.LogLevel,
		cfg.LogFormat,
		cfg.ServiceName,
		cfg.Version,
		cfg.Environment,
		addSource,
	))
}
