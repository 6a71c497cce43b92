// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/holomush/metaprop/internal/config"
	"github.com/holomush/metaprop/internal/logging"
	"github.com/holomush/metaprop/internal/metrics"
	"github.com/holomush/metaprop/internal/scene"
	"github.com/holomush/metaprop/pkg/errutil"
)

const serviceName = "metaprop"

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configFile string
	registry   *scene.Registry

	cfg       *config.Config
	logger    *slog.Logger
	metrics   *metrics.Metrics
	uninstall func()
	server    *metrics.Server
}

// NewRootCmd creates the root command for the metaprop CLI.
func NewRootCmd() *cobra.Command {
	a := &app{registry: scene.SharedRegistry()}

	cmd := &cobra.Command{
		Use:   "metaprop",
		Short: "Inspect and edit reflected property documents",
		Long: `metaprop works on documents of reflected types. A document is loaded
from document.file (yaml, toml, json or binary, chosen by extension),
addressed by property paths such as vec2Array[1].x, and written back
with --write.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	cmd.PersistentFlags().StringVar(&a.configFile, "config", "", "config file path")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(newTypesCmd(a))
	cmd.AddCommand(newInspectCmd(a))
	cmd.AddCommand(newGetCmd(a))
	cmd.AddCommand(newSetCmd(a))
	cmd.AddCommand(newSchemaCmd(a))
	cmd.AddCommand(newGenCmd(a))
	cmd.AddCommand(newRunCmd(a))
	cmd.AddCommand(newLuaCmd(a))

	return cmd
}

// setup loads configuration, installs logging and metrics, and starts the
// metrics server when enabled.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(a.registry.Names()); err != nil {
		return err
	}
	a.cfg = cfg

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	a.logger = logging.Setup(serviceName, version, cfg.Log.Format, level, cmd.ErrOrStderr())
	slog.SetDefault(a.logger)

	a.metrics = metrics.New()
	a.uninstall = a.metrics.Install()

	if cfg.Metrics.Enabled {
		a.server = metrics.NewServer(cfg.Metrics.Addr, a.metrics, a.logger)
		if _, err := a.server.Start(); err != nil {
			a.uninstall()
			return err
		}
	}
	return nil
}

// teardown undoes setup. It is safe to call when setup failed part way.
func (a *app) teardown() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.server.Stop(ctx); err != nil {
			errutil.LogError(a.logger, "failed to stop metrics server", err)
		}
		cancel()
		a.server = nil
	}
	if a.uninstall != nil {
		a.uninstall()
		a.uninstall = nil
	}
}

// run wraps a subcommand body so teardown happens whether it fails or not.
func (a *app) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer a.teardown()
		return fn(cmd, args)
	}
}
