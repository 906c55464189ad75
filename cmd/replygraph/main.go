package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rohankatakam/replygraph/internal/config"
	"github.com/rohankatakam/replygraph/internal/errors"
	"github.com/rohankatakam/replygraph/internal/logging"
)

var (
	// Version information (set by build flags)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile string
	verbose bool
	logger  *logging.Logger
	cfg     *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", formatError(err, verbose))
		os.Exit(exitCode(err))
	}
}

// formatError adds severity, context and stack for typed errors in verbose mode
func formatError(err error, detailed bool) string {
	if e, ok := errors.As(err); ok && detailed {
		return e.DetailedString()
	}
	return err.Error()
}

// exitCode is 2 for configuration problems, 1 otherwise
func exitCode(err error) int {
	switch errors.GetType(err) {
	case errors.ErrorTypeConfig, errors.ErrorTypeValidation:
		return 2
	default:
		return 1
	}
}

var rootCmd = &cobra.Command{
	Use:   "replygraph",
	Short: "Build speaker interaction graphs from reddit conversation corpora",
	Long: `replygraph turns ConvoKit-format reddit conversations into directed
"who replied to whom" graphs: a multigraph with one edge per reply, or a
weighted graph with one edge per speaker pair.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}

		logger, err = logging.NewLogger(loggerConfig(cfg, verbose))
		if err != nil {
			return err
		}
		if path := logger.LogFilePath(); path != "" {
			logger.Debugf("Logging to %s", path)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Close()
		}
	},
}

// loggerConfig applies the log section on top of the console defaults;
// --verbose wins over the configured level
func loggerConfig(cfg *config.Config, verbose bool) logging.Config {
	logCfg := logging.DefaultConfig(verbose)
	if !verbose && cfg.Log.Level != "" {
		logCfg.Level = cfg.Log.Level
	}
	logCfg.OutputFile = cfg.Log.File
	logCfg.JSONFormat = cfg.Log.JSON
	return logCfg
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .replygraph/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.SetVersionTemplate(`replygraph {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(sampleCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(wipeCmd)
}
