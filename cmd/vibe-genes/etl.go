package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/vibe-genes/internal/config"
	"github.com/inodb/vibe-genes/internal/ensembl"
	"github.com/inodb/vibe-genes/internal/load"
	"github.com/inodb/vibe-genes/internal/pipeline"
	"github.com/inodb/vibe-genes/internal/store"
)

func newETLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "etl",
		Short: "Fetch genes from Ensembl, normalize and load them",
		Long: `Fetch each configured gene from the Ensembl REST API, apply log2(x+1) to the
expression column and insert the rows into the gene_expression table.

Genes that cannot be fetched are skipped. Rows that fail to insert are
skipped. Successful rows are committed once at the end. The table must
already exist (see "vibe-genes init-db").`,
		Example: `  vibe-genes etl
  vibe-genes etl --gene ENSG00000141510 --gene ENSG00000139618
  vibe-genes etl --genes-file genes.txt --db-driver duckdb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bindFlag(cmd, config.KeyGenes, "gene")
			bindFlag(cmd, config.KeyGenesFile, "genes-file")
			bindFlag(cmd, config.KeyEnsemblURL, "ensembl-url")
			bindFlag(cmd, config.KeyEnsemblAssembly, "assembly")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runETL(cmd, cfg)
		},
	}

	cmd.Flags().StringSlice("gene", nil, "Gene identifier to fetch (repeatable; replaces configured genes)")
	cmd.Flags().String("genes-file", "", "File with gene identifiers, one per line (use '-' for stdin)")
	cmd.Flags().String("ensembl-url", "", "Ensembl REST base URL")
	cmd.Flags().String("assembly", "", "Genome assembly: GRCh37 or GRCh38")

	return cmd
}

func runETL(cmd *cobra.Command, cfg *config.Config) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	if len(cfg.Genes) == 0 {
		return fmt.Errorf("%w: no gene identifiers configured", errUsage)
	}

	client := ensembl.NewClient(cfg.Ensembl.BaseURL, cfg.Ensembl.Timeout)
	client.SetLogger(logger)

	loader := load.NewLoader(store.NewConnector(cfg.DB))
	loader.SetLogger(logger)

	p := pipeline.New(client, loader)
	p.SetLogger(logger)

	logger.Info("starting ETL pipeline",
		zap.String("ensembl", cfg.Ensembl.BaseURL),
		zap.String("driver", cfg.DB.Driver),
		zap.Int("genes", len(cfg.Genes)))

	rep, err := p.Run(cmd.Context(), cfg.Genes)
	if errors.Is(err, pipeline.ErrNoRecords) {
		fmt.Fprintf(os.Stderr, "No data extracted. Exiting ETL pipeline.\n")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "ETL pipeline completed: %d fetched, %d inserted, %d skipped\n",
		len(rep.Extracted), len(rep.Load.Inserted), len(rep.Failures)+len(rep.Load.Failed))
	return nil
}
