package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/PowerShell/PowerShell-sub006/internal/command"
	"github.com/PowerShell/PowerShell-sub006/internal/ctxlog"
	"github.com/PowerShell/PowerShell-sub006/internal/defaults"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *command.Registry
	defaults *defaults.Table
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
func NewApp(outW io.Writer, appConfig *Config, modules ...command.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Create and populate the registry with the built-in commands.
	reg := command.NewRegistry()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All command modules registered.", "count", len(modules))

	var table *defaults.Table
	if appConfig.DefaultsPath != "" {
		var err error
		table, err = defaults.Load(ctx, appConfig.DefaultsPath)
		if err != nil {
			// A failure to load defaults is a fatal startup error.
			panic(fmt.Errorf("failed to load defaults: %w", err))
		}
		logger.Debug("Default parameter values loaded.")
	}

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		defaults: table,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *command.Registry {
	return a.registry
}
