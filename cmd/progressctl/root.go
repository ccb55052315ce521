package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/scry-progression/internal/config"
	"github.com/phrazzld/scry-progression/internal/platform/logger"
	"github.com/spf13/cobra"
)

// cli carries global flags and the state PersistentPreRunE prepares for
// subcommands.
type cli struct {
	configFile string
	logLevel   string

	// logOutput overrides where logs go. Nil logs to stderr and installs the
	// logger as the slog default.
	logOutput io.Writer

	config *config.Config
	logger *slog.Logger
}

// newRootCmd builds the command tree. logOutput may be nil.
func newRootCmd(logOutput io.Writer) *cobra.Command {
	c := &cli{logOutput: logOutput}

	root := &cobra.Command{
		Use:   "progressctl",
		Short: "Drive the learning progression engine from the command line",
		Long: `progressctl runs the learning progression engine against in-memory stores.
It replays scripted learner sessions and evaluates the spaced-repetition
policy with the same configuration a deployment would use.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.PersistentFlags().StringVar(&c.configFile, "config", "",
		"path to a config file (default: ./progression.yaml if present)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "",
		"override the configured log level (debug, info, warn, error)")

	root.AddCommand(
		newReplayCmd(c),
		newIntervalCmd(c),
		newStrugglingCmd(c),
	)
	return root
}

// setup loads configuration and the logger before any subcommand runs.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if c.logLevel != "" {
		if _, ok := logger.ParseLevel(c.logLevel); !ok {
			return fmt.Errorf("invalid --log-level %q", c.logLevel)
		}
		cfg.Log.Level = c.logLevel
	}

	if c.logOutput != nil {
		c.logger = logger.New(cfg.Log, c.logOutput)
	} else {
		c.logger, err = logger.Setup(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to set up logger: %w", err)
		}
	}

	c.config = cfg
	c.logger.Debug("configuration loaded",
		slog.String("command", cmd.Name()),
		slog.String("log_level", cfg.Log.Level))
	return nil
}
