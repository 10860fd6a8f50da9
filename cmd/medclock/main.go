// Command medclock runs the medicine reminder clock: two daily alarms with
// snooze, a four-button menu and a temperature/humidity monitor.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sweeney/medclock/internal/config"
	"github.com/sweeney/medclock/internal/logger"
	"github.com/sweeney/medclock/internal/version"
)

func main() {
	if err := newRootCmd(afero.NewOsFs()).Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	fs         afero.Fs
	configPath string
	logLevel   string
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	opts := &rootOptions{fs: fs}

	run := newRunCmd(opts)
	root := &cobra.Command{
		Use:          "medclock",
		Short:        "Medicine reminder clock with environment monitor.",
		Args:         cobra.NoArgs,
		RunE:         run.RunE,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultConfigFilename, "settings file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides the settings file)")

	root.AddCommand(
		run,
		newSimCmd(opts),
		newPrintStateCmd(opts),
		newInitConfigCmd(opts),
	)
	version.AttachCobraVersionCommand(root)
	return root
}

// load reads the settings file and applies the log level.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.fs, o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	lvl, ok := logger.ParseLogLevel(cfg.Log.Level)
	if !ok {
		return nil, fmt.Errorf("invalid log level %q", cfg.Log.Level)
	}
	logger.SetLevel(lvl)
	return cfg, nil
}

// setupLogging installs the global logger. A quiet logger keeps stdout free
// for a terminal UI.
func setupLogging(cfg *config.Config, quiet bool) {
	file := &logger.FileOptions{Path: cfg.Log.File}
	if quiet {
		logger.SetLogger(logger.NewQuiet(file))
		return
	}
	logger.SetLogger(logger.New(file))
}
