package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/inodb/vibe-genes/internal/store"
)

// NewTable returns a go-pretty table filled from a query snapshot.
func NewTable(snap *store.Table) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)

	header := make(table.Row, len(snap.Columns))
	for i, c := range snap.Columns {
		header[i] = c
	}
	t.AppendHeader(header)

	for _, r := range snap.Rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = FormatValue(v)
		}
		t.AppendRow(row)
	}
	return t
}

// RenderTerminal writes snap to w as a box-drawn table.
func RenderTerminal(w io.Writer, snap *store.Table) {
	t := NewTable(snap)
	t.SetOutputMirror(w)
	t.Render()
}

// FormatValue renders a database value for display. NULL is shown as "".
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	default:
		return fmt.Sprint(x)
	}
}

// WriteTSV writes snap as tab-delimited text with a header line.
func WriteTSV(w io.Writer, snap *store.Table) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(snap.Columns, "\t") + "\n"); err != nil {
		return err
	}
	for _, r := range snap.Rows {
		vals := make([]string, len(r))
		for i, v := range r {
			vals[i] = sanitize(FormatValue(v))
		}
		if _, err := bw.WriteString(strings.Join(vals, "\t") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
