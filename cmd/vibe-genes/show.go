package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/inodb/vibe-genes/internal/output"
	"github.com/inodb/vibe-genes/internal/store"
)

func newShowCmd() *cobra.Command {
	var tsv bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the stored gene table",
		Example: `  vibe-genes show
  vibe-genes show --tsv > genes.tsv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := store.Open(ctx, cfg.DB)
			if err != nil {
				return err
			}
			defer s.Close()

			if tsv {
				genes, err := s.Genes(ctx)
				if err != nil {
					return err
				}
				w := output.NewTabWriter(os.Stdout)
				if err := w.WriteHeader(); err != nil {
					return err
				}
				for _, g := range genes {
					if err := w.Write(g); err != nil {
						return err
					}
				}
				return w.Flush()
			}

			snap, err := s.Snapshot(ctx)
			if err != nil {
				return err
			}
			output.RenderTerminal(os.Stdout, snap)
			fmt.Fprintf(os.Stderr, "%d rows\n", snap.Len())
			return nil
		},
	}

	cmd.Flags().BoolVar(&tsv, "tsv", false, "Write tab-separated values instead of a table")
	return cmd
}
