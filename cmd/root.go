package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/umlgen/internal/config"
	"github.com/ziadkadry99/umlgen/internal/logger"
)

var (
	cfgFile   string
	envFile   string
	verbose   bool
	logLevel  string
	logFormat string

	appLog *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "umlgen",
	Short: "Generate UML diagrams from plain-language descriptions",
	Long: `umlgen turns a description of a system into PlantUML markup using an
LLM, encodes it for a PlantUML server and shows the rendered diagram in a
terminal UI, a browser, or an AI agent over MCP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
		return setupLogger(config.LogConfig{})
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.FileName, "config file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with API keys")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (console, json)")
}

// setupLogger builds the process logger. Flags win over the config file.
func setupLogger(fromConfig config.LogConfig) error {
	level := logLevel
	switch {
	case verbose:
		level = "debug"
	case level == "":
		level = fromConfig.Level
	}
	if level == "" {
		level = "warn"
	}
	format := logFormat
	if format == "" {
		format = fromConfig.Format
	}
	l, err := logger.New(logger.Options{Level: level, HumanReadable: format != "json"})
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	appLog = l
	return nil
}

// exitError carries a process exit code other than 1.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}
