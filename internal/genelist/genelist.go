// Package genelist reads the gene identifiers the ETL should fetch.
package genelist

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Default is the gene list used when none is configured
// (BRCA2, BRAF, SOX2, BRCA1, TP53).
var Default = []string{
	"ENSG00000139618",
	"ENSG00000157764",
	"ENSG00000181449",
	"ENSG00000012048",
	"ENSG00000141510",
}

// Header column names recognised in tab-delimited files.
var idColumns = []string{"gene_id", "Gene"}

// ReadFile reads gene identifiers from a plain or gzipped file.
// Use "-" for stdin.
func ReadFile(path string) ([]string, error) {
	if path == "-" {
		return Read(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gene list: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		defer gz.Close()
		return Read(gz)
	}
	return Read(br)
}

// Read parses identifiers, one per line. Blank lines and lines starting with
// '#' are ignored. If the first line is a tab-delimited header containing a
// gene_id or Gene column, identifiers are taken from that column.
// Order is preserved and duplicates are dropped.
func Read(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)

	var (
		ids     []string
		seen    = make(map[string]bool)
		col     = 0
		first   = true
		lineNum = 0
	)

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if first {
			first = false
			if idx := headerColumn(fields); idx >= 0 {
				col = idx
				continue
			}
		}

		if col >= len(fields) {
			return nil, fmt.Errorf("line %d: missing gene id column", lineNum)
		}
		id := strings.TrimSpace(fields[col])
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read gene list: %w", err)
	}

	return ids, nil
}

func headerColumn(fields []string) int {
	for i, f := range fields {
		for _, name := range idColumns {
			if strings.TrimSpace(f) == name {
				return i
			}
		}
	}
	return -1
}

// Merge combines identifier lists in order, dropping blanks and duplicates.
func Merge(lists ...[]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, l := range lists {
		for _, id := range l {
			id = strings.TrimSpace(id)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
