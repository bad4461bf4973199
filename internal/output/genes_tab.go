// Package output provides gene table output formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-genes/internal/gene"
)

// TabWriter writes gene records in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w:       bufio.NewWriter(w),
		columns: gene.Columns,
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single record. Empty strings are written as "-".
func (tw *TabWriter) Write(r gene.Record) error {
	values := []string{
		dash(r.ID),
		dash(r.DisplayName),
		strconv.FormatInt(r.Length, 10),
		dash(r.SeqRegionName),
		strconv.FormatInt(r.Start, 10),
		strconv.FormatInt(r.End, 10),
		strconv.FormatFloat(r.Expression, 'f', 6, 64),
		dash(r.Biotype),
		dash(sanitize(r.Description)),
		dash(r.CanonicalTranscript),
		strconv.Itoa(r.Strand),
		dash(r.Species),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// sanitize keeps free text on one TSV field.
func sanitize(s string) string {
	return strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(s)
}
