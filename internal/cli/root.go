package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"datefilter/internal/config"
	"datefilter/internal/logger"
)

type rootOptions struct {
	cfgFile string
	verbose bool
}

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "datefilter",
		Short: "Filter spreadsheet rows by the dates they contain",
		Long: `datefilter loads an Excel or CSV file, finds the first DD-MM-YYYY or
DD/MM/YYYY date in every row, and lets you narrow the rows down by typing
any part of a date.

Use "serve" for the browser interface or "browse" to stay in the terminal.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newServeCommand(opts, version))
	rootCmd.AddCommand(newBrowseCommand(opts))
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.NewLoader().LoadConfig(o.cfgFile)
	if err != nil {
		return nil, err
	}
	if o.verbose {
		cfg.Log.Level = logger.LevelDebug.String()
	}
	return cfg, nil
}

// newLogger writes to cfg.Log.File when set, otherwise to fallback.
// The returned closer releases the log file.
func newLogger(cfg *config.Config, fallback io.Writer) (*logger.Logger, func() error, error) {
	if cfg.Log.File == "" {
		return logger.New(fallback, cfg.LogLevel()), func() error { return nil }, nil
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return logger.New(f, cfg.LogLevel()), f.Close, nil
}
