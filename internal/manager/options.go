package manager

import (
	"fmt"

	"github.com/cristianoliveira/rx-intray/internal/config"
	"github.com/cristianoliveira/rx-intray/internal/dedupconfig"
	"github.com/cristianoliveira/rx-intray/internal/desktop"
	"github.com/cristianoliveira/rx-intray/internal/hooks"
	"github.com/cristianoliveira/rx-intray/internal/logging"
	"github.com/cristianoliveira/rx-intray/internal/registry"
	"github.com/cristianoliveira/rx-intray/internal/settings"
)

// OptionsFromConfig builds Options from the loaded configuration: the
// settings backend, the system desktop platform asking through prompter,
// hooks, registry capacity and desktop throttling.
func OptionsFromConfig(log logging.Logger, prompter desktop.Prompter) (Options, error) {
	if log == nil {
		log = logging.Nop()
	}
	persister, err := settings.NewPersisterFromConfig()
	if err != nil {
		return Options{}, fmt.Errorf("settings backend: %w", err)
	}
	runner := hooks.NewFromConfig(log)
	if err := runner.Init(); err != nil {
		log.Warn("hooks unavailable", "error", err)
	}
	return Options{
		Persister:             persister,
		Platform:              desktop.NewSystemPlatform(prompter),
		Hooks:                 runner,
		Logger:                log,
		Registry:              []registry.Option{registry.WithCapacity(config.GetInt("max_notifications", registry.DefaultCapacity))},
		DesktopDedup:          dedupconfig.Load(),
		DesktopRatePerMinute:  config.GetInt("desktop_rate_per_minute", 20),
		DesktopDisplayTimeout: config.GetDuration("desktop_timeout", desktop.DefaultDisplayTimeout),
	}, nil
}
