package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"crateweld/internal/config"
	"crateweld/internal/ctxlog"
	"crateweld/internal/launcher"
	"crateweld/internal/platform"
	"crateweld/internal/registry"
	"crateweld/internal/resolver"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW      io.Writer
	errW      io.Writer
	logger    *slog.Logger
	registry  *registry.Registry
	model     *config.Model
	platform  platform.Strategy
	resolver  *resolver.Resolver
	layout    resolver.Layout
	launcher  *launcher.Launcher
	appConfig *Config
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and
// registry. Reports go to outW; logs and the external tool's stderr go to
// errW. A failure to load the workspace is a fatal startup error and
// panics; the entrypoint recovers it.
func NewApp(outW, errW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, errW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.WorkspacePath)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Workspace loaded into unified model.", "crates", len(model.Crates), "targets", len(model.Targets))

	p := platform.ForHost()

	buildDir := model.Workspace.BuildDir
	if !p.IsAbs(buildDir) {
		buildDir = p.Join(model.Workspace.Root, buildDir)
	}

	launch := launcher.New(p, model.Workspace.Root, model.Workspace.BuildToolDir, outW, errW)

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules(launch)
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	return &App{
		outW:      outW,
		errW:      errW,
		logger:    logger,
		registry:  reg,
		model:     model,
		platform:  p,
		resolver:  resolver.New(p),
		layout:    resolver.Layout{Platform: p, BuildDir: buildDir},
		launcher:  launch,
		appConfig: appConfig,
	}
}

// Registry returns the application's registry. This is primarily for
// testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Model returns the loaded workspace model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}
