// Package gene defines the gene metadata record persisted by vibe-genes.
package gene

import (
	"errors"
	"strings"
)

// Table is the name of the relational table holding gene records.
const Table = "gene_expression"

// Columns lists the persisted columns in insert order.
var Columns = []string{
	"gene_id",
	"display_name",
	"length",
	"seq_region_name",
	"start",
	"end",
	"expression",
	"biotype",
	"description",
	"canonical_transcript",
	"strand",
	"species",
}

// ErrMissingID is returned by Validate for a record without an identifier.
var ErrMissingID = errors.New("gene record has no identifier")

// Record is a single row of gene metadata.
type Record struct {
	ID                  string  // Stable gene identifier (e.g., ENSG00000139618)
	DisplayName         string  // Gene symbol (e.g., BRCA2)
	Length              int64   // Gene length in bases
	SeqRegionName       string  // Chromosome or region name
	Start               int64   // Gene start position (1-based)
	End                 int64   // Gene end position (1-based, inclusive)
	Strand              int     // +1 (forward), -1 (reverse), 0 (unknown)
	Biotype             string  // Gene biotype (e.g., protein_coding)
	Description         string  // Free text description
	CanonicalTranscript string  // Canonical transcript identifier
	Species             string  // Species name (e.g., homo_sapiens)
	Expression          float64 // Expression value; raw until normalized
}

// Validate checks the invariants required before a record is persisted.
func (r Record) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrMissingID
	}
	return nil
}

// Values returns the record's fields in Columns order.
func (r Record) Values() []any {
	return []any{
		r.ID,
		r.DisplayName,
		r.Length,
		r.SeqRegionName,
		r.Start,
		r.End,
		r.Expression,
		r.Biotype,
		r.Description,
		r.CanonicalTranscript,
		r.Strand,
		r.Species,
	}
}
