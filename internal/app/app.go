package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/incomegrid/internal/config"
	"github.com/specialistvlad/incomegrid/internal/ctxlog"
	"github.com/specialistvlad/incomegrid/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	cfg       *Config
	logger    *slog.Logger
	registry  *registry.Registry
	model     *config.Model
	converter config.Converter
}

// NewApp loads the configuration, registers modules and validates that
// manifests and Go handlers agree. When no modules are given the core
// modules are used. Configuration and parity errors are programmer or
// operator errors at startup, so NewApp panics on them.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = CoreModules(outW)
	}

	paths := []string{cfg.GridPath}
	if cfg.ModulesPath != "" {
		paths = append(paths, cfg.ModulesPath)
	}

	model, converter, err := loader.Load(ctx, registry.Manifests(modules), paths...)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded.", "runners", len(model.Runners), "assets", len(model.Assets), "steps", len(model.Grid.Steps))

	reg := registry.New()
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	reg.PopulateDefinitionsFromModel(model)
	if err := reg.ValidateRegistry(ctx); err != nil {
		panic(err)
	}

	return &App{
		outW:      outW,
		cfg:       cfg,
		logger:    logger,
		registry:  reg,
		model:     model,
		converter: converter,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
