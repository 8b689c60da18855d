// Package app provides the application initialization and lifecycle management
package app

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/revmux/revmux/internal/config"
	"github.com/revmux/revmux/internal/git"
	"github.com/revmux/revmux/internal/github"
	"github.com/revmux/revmux/internal/loggy"
	"github.com/revmux/revmux/internal/provider"
	"github.com/revmux/revmux/internal/review"
)

// App represents the application instance with its dependencies
type App struct {
	Config    *config.Config
	Providers *provider.Registry
	Review    *review.Service
	Git       *git.Service
	GitHub    *github.Service
}

// New initializes a new application instance with all its dependencies
func New() (*App, error) {
	cfg, err := initConfig()
	if err != nil {
		return nil, err
	}

	if err := initLogger(cfg); err != nil {
		return nil, err
	}

	loggy.Info("Application initializing",
		"version", os.Getenv("VERSION"),
		"log_level", cfg.Logging.Level,
	)

	app := initServices(cfg)

	loggy.Info("Application initialized",
		"providers", app.Providers.Enabled())

	return app, nil
}

// initConfig loads and sets up the application configuration
func initConfig() (*config.Config, error) {
	cfg, err := config.LoadFromEnv("")
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	config.Set(cfg)
	return cfg, nil
}

// initLogger initializes the logging system
func initLogger(cfg *config.Config) error {
	err := loggy.Init(loggy.Config{
		Level:      config.ParseLogLevel(cfg.Logging.Level),
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// initServices wires up all application services
func initServices(cfg *config.Config) *App {
	logger := loggy.GetGlobalLogger()

	registry := provider.BuildRegistry(cfg, logger)

	reviewService := review.NewService(
		registry,
		cfg.Consensus.Threshold,
		cfg.Consensus.ProviderTimeout,
		logger,
	)

	gitService := git.NewService(logger)
	githubService := github.NewService(cfg.GitHub, logger)

	return &App{
		Config:    cfg,
		Providers: registry,
		Review:    reviewService,
		Git:       gitService,
		GitHub:    githubService,
	}
}

// Shutdown gracefully shuts down the application
func (app *App) Shutdown() error {
	loggy.Info("Shutting down application")
	return nil
}

// FromContext retrieves the App instance from the CLI context
func FromContext(c *cli.Context) (*App, error) {
	if c.App.Metadata == nil {
		return nil, fmt.Errorf("app metadata not found in context")
	}

	app, ok := c.App.Metadata["app"].(*App)
	if !ok {
		return nil, fmt.Errorf("app instance not found in context")
	}

	return app, nil
}
