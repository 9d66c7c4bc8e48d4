package app

import (
	"strings"

	"github.com/charlesng35/fleetcn/pkg/logger"
)

// ConfigureLogging initialises the global logger with the provided level, defaulting to info.
func ConfigureLogging(cfg ServerConfig) error {
	level := strings.TrimSpace(cfg.LogLevel)
	if level == "" {
		level = "info"
	}
	return logger.Init(level, strings.TrimSpace(cfg.LogFormat))
}
