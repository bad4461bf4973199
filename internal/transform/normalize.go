// Package transform applies numeric normalization to gene records.
package transform

import (
	"errors"
	"fmt"
	"math"

	"github.com/inodb/vibe-genes/internal/gene"
)

// ErrDomain is returned when a value cannot be log-transformed.
var ErrDomain = errors.New("log2(x+1) undefined for x <= -1")

// Log2Plus1 returns log2(x+1).
func Log2Plus1(x float64) (float64, error) {
	if math.IsNaN(x) || x+1 <= 0 {
		return 0, fmt.Errorf("%w: got %v", ErrDomain, x)
	}
	return math.Log2(x + 1), nil
}

// Normalize returns a copy of records with Expression replaced by
// log2(Expression+1). The input slice is not modified.
//
// Normalize is not idempotent: a second pass transforms the already
// normalized values again.
func Normalize(records []gene.Record) ([]gene.Record, error) {
	out := make([]gene.Record, len(records))
	for i, r := range records {
		v, err := Log2Plus1(r.Expression)
		if err != nil {
			return nil, fmt.Errorf("normalize %s: %w", r.ID, err)
		}
		r.Expression = v
		out[i] = r
	}
	return out, nil
}
