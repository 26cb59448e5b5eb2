package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dshills/dirsettings/internal/app"
	"github.com/dshills/dirsettings/internal/config"
)

// cli holds state shared by the subcommands.
type cli struct {
	v          *viper.Viper
	configFile string
	opts       config.Options
	logger     *zap.Logger
}

func newRootCommand() *cobra.Command {
	c := &cli{v: config.NewViper()}

	root := &cobra.Command{
		Use:   "dirsettings",
		Short: "Resolve and apply per-directory settings files",
		Long: `dirsettings merges the settings files found in every directory from the
filesystem root down to a file's directory, nearer directories winning, and
applies the result to an editing session.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configFile, "config", "c", "", "path to a dirsettings config file")
	flags.String("settings-file", config.DefaultOptions().SettingsFile, "settings file name looked up in each directory")
	flags.String("erase-marker", config.DefaultOptions().EraseMarker, "value that erases a key from the session")
	flags.String("opt-out-key", config.DefaultOptions().OptOutKey, "session key that disables directory settings when false")
	flags.String("log-level", config.DefaultOptions().LogLevel, "log level: debug, info, warn, error")

	c.bindFlags(flags, map[string]string{
		config.KeySettingsFile: "settings-file",
		config.KeyEraseMarker:  "erase-marker",
		config.KeyOptOutKey:    "opt-out-key",
		config.KeyLogLevel:     "log-level",
	})

	root.AddCommand(
		newResolveCommand(c),
		newApplyCommand(c),
		newWatchCommand(c),
	)
	return root
}

// bindFlags makes the named flags override the viper keys they map to.
func (c *cli) bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := c.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", name, err))
		}
	}
}

// load reads options and builds the logger.
func (c *cli) load(cmd *cobra.Command) error {
	opts, err := config.Load(c.v, c.configFile)
	if err != nil {
		return err
	}

	logger, err := config.NewLogger(opts.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	c.opts = opts
	c.logger = logger
	return nil
}

// newApp builds an App reading from the OS file system.
func (c *cli) newApp() (*app.App, error) {
	return app.New(c.opts, app.WithLogger(c.logger))
}
