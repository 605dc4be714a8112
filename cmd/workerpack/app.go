// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/workerpack/workerpack/internal/artifact"
	"github.com/workerpack/workerpack/internal/bundler"
	"github.com/workerpack/workerpack/internal/config"
)

type (
	// App wires CLI services and shared dependencies. Every command handler
	// receives the App and goes through it for configuration, bundling and
	// output.
	App struct {
		Config ConfigProvider
		Engine bundler.Engine
		// Clock stamps archive entries; nil uses the system time.
		Clock  artifact.Clock
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Engine bundler.Engine
		Clock  artifact.Clock
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options and reports
	// which file was read.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
		LoadWithSource(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Engine == nil {
		deps.Engine = bundler.Esbuild{}
	}

	return &App{
		Config: deps.Config,
		Engine: deps.Engine,
		Clock:  deps.Clock,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}, nil
}

// loadConfig loads the project configuration for dir, honoring --config.
func (a *App) loadConfig(ctx context.Context, flags *rootFlagValues, dir string) (*config.Config, string, error) {
	return a.Config.LoadWithSource(ctx, config.LoadOptions{
		ConfigFilePath: flags.configPath,
		ProjectDir:     dir,
	})
}

// logger returns the stage logger, writing to stderr.
func (a *App) logger(verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{
		Prefix: config.AppName,
		Level:  level,
	})
}
