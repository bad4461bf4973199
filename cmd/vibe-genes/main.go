// Package main provides the vibe-genes command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/vibe-genes/internal/config"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfgFile string
	verbose bool
)

// errUsage marks errors caused by bad arguments.
var errUsage = errors.New("usage error")

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vibe-genes",
		Short: "Gene metadata ETL and viewer",
		Long: `vibe-genes fetches gene metadata from the Ensembl REST API, log2-normalizes
an expression column, stores the rows in the gene_expression table and
serves the table as a read-only web page.

Configuration is read from ~/.vibe-genes.yaml, a .env file in the working
directory, and VIBE_GENES_* environment variables. Database credentials come
from DB_USER and DB_PASSWORD.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.vibe-genes.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().String("db-driver", "", "Database driver: postgres or duckdb")
	root.PersistentFlags().String("db-path", "", "DuckDB database file (duckdb driver only)")

	root.AddCommand(newETLCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newShowCmd())
	root.AddCommand(newInitDBCmd())
	root.AddCommand(newConfigCmd())

	return root
}

// initConfig loads .env and the config file, then registers defaults.
func initConfig() error {
	_ = godotenv.Load()

	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.SetConfigFile(filepath.Join(home, ".vibe-genes.yaml"))
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// loadConfig binds the persistent flags and builds the runtime config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	bindFlag(cmd, config.KeyDBDriver, "db-driver")
	bindFlag(cmd, config.KeyDBPath, "db-path")
	return config.Load(viper.GetViper())
}

// bindFlag binds a flag to a config key if the command defines it.
func bindFlag(cmd *cobra.Command, key, flag string) {
	if f := cmd.Flags().Lookup(flag); f != nil {
		viper.BindPFlag(key, f) //nolint:errcheck
	}
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	return cfg.Build()
}
