package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/inodb/vibe-genes/internal/gene"
)

// Table is a fully materialized query result keyed by column name.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Snapshot loads the entire gene table into memory.
func (s *Store) Snapshot(ctx context.Context) (*Table, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+gene.Table)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", gene.Table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	t := &Table{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		t.Rows = append(t.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return t, nil
}

// Genes returns all stored gene records ordered by gene_id.
func (s *Store) Genes(ctx context.Context) ([]gene.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+quotedColumns()+" FROM "+gene.Table+" ORDER BY gene_id")
	if err != nil {
		return nil, fmt.Errorf("query genes: %w", err)
	}
	defer rows.Close()

	var out []gene.Record
	for rows.Next() {
		r, err := scanGene(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genes: %w", err)
	}
	return out, nil
}

// scanGene reads one row in Columns order. The table may hold rows written
// by other tools, so NULL cells map to zero values.
func scanGene(rows *sql.Rows) (gene.Record, error) {
	var (
		id, name, region, biotype, desc, canonical, species sql.NullString
		length, start, end, strand                           sql.NullInt64
		expression                                           sql.NullFloat64
	)
	if err := rows.Scan(
		&id, &name, &length, &region,
		&start, &end, &expression, &biotype,
		&desc, &canonical, &strand, &species,
	); err != nil {
		return gene.Record{}, fmt.Errorf("scan gene: %w", err)
	}
	return gene.Record{
		ID:                  id.String,
		DisplayName:         name.String,
		Length:              length.Int64,
		SeqRegionName:       region.String,
		Start:               start.Int64,
		End:                 end.Int64,
		Strand:              int(strand.Int64),
		Biotype:             biotype.String,
		Description:         desc.String,
		CanonicalTranscript: canonical.String,
		Species:             species.String,
		Expression:          expression.Float64,
	}, nil
}
