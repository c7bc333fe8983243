// Package cmd wires configuration, logging and the hosts into the
// particle-field command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/iburimskiy/particle-field/internal/config"
	"github.com/iburimskiy/particle-field/internal/driver"
	"github.com/iburimskiy/particle-field/internal/observability"
	"github.com/iburimskiy/particle-field/internal/particle"
)

// app carries state shared by every subcommand of one root command.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
}

// newRootCmd builds a fresh command tree with its own viper instance.
func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:          "particle-field",
		Short:        "Drifting particles that link up when close and flee the pointer.",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		// With no subcommand the window host runs.
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWindow(cmd.Context())
		},
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./particle-field.yaml)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = a.v.BindPFlag("logger.level", root.PersistentFlags().Lookup("log-level"))
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(
		newWindowCmd(a),
		newTermCmd(a),
		newSnapshotCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	observability.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// load reads the config file and environment, then starts the logger.
func (a *app) load() error {
	config.SetDefaults(a.v)
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath(".")
		a.v.SetConfigName("particle-field")
		a.v.SetConfigType("yaml")
	}

	a.v.SetEnvPrefix("PARTICLES")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg, err := config.NewConfigFromViper(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	observability.InitializeLogger(cfg.Logger)
	a.logger = observability.GetLogger()
	a.logger.Debug("Configuration loaded", zap.String("file", a.v.ConfigFileUsed()))
	return nil
}

// driverOptions translates the validated config into frame driver options.
func (a *app) driverOptions() (driver.Options, error) {
	palette, err := a.cfg.Palette()
	if err != nil {
		return driver.Options{}, err
	}
	link, err := config.ParseColor(a.cfg.Physics.LinkColor)
	if err != nil {
		return driver.Options{}, err
	}
	fade, err := config.ParseColor(a.cfg.Frame.FadeColor)
	if err != nil {
		return driver.Options{}, err
	}

	return driver.Options{
		Count:   a.cfg.Field.Count,
		Palette: particle.Palette(palette),
		Params: particle.Params{
			RepelRadius:   a.cfg.Physics.RepelRadius,
			RepelStrength: a.cfg.Physics.RepelStrength,
			LinkRadius:    a.cfg.Physics.LinkRadius,
			LinkAlpha:     a.cfg.Physics.LinkAlpha,
			LinkWidth:     a.cfg.Physics.LinkWidth,
			LinkColor:     link,
		},
		FadeColor: fade,
		FadeAlpha: a.cfg.Frame.FadeAlpha,
		Interval:  a.cfg.Frame.Interval,
		Logger:    a.logger,
	}, nil
}
