package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-genes/internal/gene"
	"github.com/inodb/vibe-genes/internal/store"
)

func newInitDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Create the gene_expression table if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			s, err := store.Open(cmd.Context(), cfg.DB)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.CreateSchema(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Table %s is ready (%s)\n", gene.Table, s.Driver())
			return nil
		},
	}
}
