package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-genes/internal/config"
	"github.com/inodb/vibe-genes/internal/store"
	"github.com/inodb/vibe-genes/internal/viewer"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the gene table as a read-only web page",
		Long: `Load the whole gene_expression table once at startup and serve it as a
static HTML grid. The server is not started if the table cannot be read
or is empty.`,
		Example: `  vibe-genes serve
  vibe-genes serve --addr :8080 --debug=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bindFlag(cmd, config.KeyServerAddr, "addr")
			bindFlag(cmd, config.KeyServerDebug, "debug")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd, cfg)
		},
	}

	cmd.Flags().String("addr", viewer.DefaultAddr, "Listen address")
	cmd.Flags().Bool("debug", true, "Log every request")

	return cmd
}

func runServe(cmd *cobra.Command, cfg *config.Config) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := cmd.Context()

	s, err := store.Open(ctx, cfg.DB)
	if err != nil {
		logger.Error("error connecting to database", zap.Error(err))
		return err
	}
	srv, err := viewer.Load(ctx, s)
	s.Close()

	if errors.Is(err, viewer.ErrNoData) {
		fmt.Fprintf(os.Stderr, "No data fetched from the database. Exiting.\n")
		return nil
	}
	if err != nil {
		logger.Error("error fetching data", zap.Error(err))
		return err
	}

	srv.SetLogger(logger)
	srv.SetDebug(cfg.Server.Debug)
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
