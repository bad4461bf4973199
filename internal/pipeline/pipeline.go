// Package pipeline runs the extract, normalize and load steps in order.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inodb/vibe-genes/internal/ensembl"
	"github.com/inodb/vibe-genes/internal/gene"
	"github.com/inodb/vibe-genes/internal/load"
	"github.com/inodb/vibe-genes/internal/transform"
)

// ErrNoRecords is returned when extraction yields nothing to load.
var ErrNoRecords = errors.New("no data extracted")

// Extractor fetches gene records for a list of identifiers.
type Extractor interface {
	Extract(ctx context.Context, ids []string) ([]gene.Record, []ensembl.Failure)
}

// Report summarizes one pipeline run.
type Report struct {
	RunID     string
	Requested int
	Extracted []gene.Record // normalized records handed to the loader
	Failures  []ensembl.Failure
	Load      *load.Result
}

// Pipeline wires an extractor to a loader.
type Pipeline struct {
	extractor Extractor
	loader    *load.Loader
	logger    *zap.Logger
}

// New creates a pipeline.
func New(e Extractor, l *load.Loader) *Pipeline {
	return &Pipeline{
		extractor: e,
		loader:    l,
		logger:    zap.NewNop(),
	}
}

// SetLogger sets the logger for pipeline progress.
func (p *Pipeline) SetLogger(l *zap.Logger) {
	p.logger = l
}

// Run fetches ids, normalizes expression once, and loads the result.
// When nothing is extracted the loader is never invoked and ErrNoRecords is
// returned alongside the report.
func (p *Pipeline) Run(ctx context.Context, ids []string) (*Report, error) {
	rep := &Report{RunID: uuid.NewString(), Requested: len(ids)}
	log := p.logger.With(zap.String("run_id", rep.RunID))

	log.Info("extracting genes", zap.Int("requested", len(ids)))
	records, failures := p.extractor.Extract(ctx, ids)
	rep.Failures = failures

	if len(records) == 0 {
		log.Warn("no data extracted, exiting pipeline", zap.Int("failed", len(failures)))
		return rep, ErrNoRecords
	}

	log.Info("normalizing expression", zap.Int("records", len(records)))
	normalized, err := transform.Normalize(records)
	if err != nil {
		return rep, fmt.Errorf("transform: %w", err)
	}
	rep.Extracted = normalized

	log.Info("loading genes")
	res, err := p.loader.Load(ctx, normalized)
	rep.Load = res
	if err != nil {
		return rep, fmt.Errorf("load: %w", err)
	}

	log.Info("pipeline completed",
		zap.Int("inserted", len(res.Inserted)),
		zap.Int("row_failures", len(res.Failed)),
		zap.Int("fetch_failures", len(failures)))
	return rep, nil
}
