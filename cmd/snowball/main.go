package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/todmy/snowball/internal/config"
	"github.com/todmy/snowball/internal/logging"
)

var (
	v = config.NewViper()

	configFile string
	dbDSN      string
	logLevel   string
	logFormat  string
	logFile    string

	logger    *slog.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:           "snowball",
	Short:         "Bootstrapped relation extraction from entity-tagged sentences",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, logCloser, err = logging.New(logging.Options{
			Level:      logLevel,
			Format:     logFormat,
			File:       logFile,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		})
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "parameters file (key=value, yaml, toml or json)")
	rootCmd.PersistentFlags().StringVar(&dbDSN, "db", "snowball.db", "tuple cache and run store: sqlite path or postgres:// URL, empty disables it")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "text or json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to a rotating file")

	rootCmd.AddCommand(runCmd, tuplesCmd, showCmd, versionCmd)
}

// bindFlag exposes a command flag under a config key so that an explicit
// flag overrides the file and environment.
func bindFlag(key string, cmd *cobra.Command, name string) {
	_ = v.BindPFlag(key, cmd.Flags().Lookup(name))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger != nil {
			logger.Error("snowball failed", "error", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		if logCloser != nil {
			logCloser.Close()
		}
		stop()
		os.Exit(1)
	}
}
