// Package load writes gene records to persistent storage one row at a time.
package load

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/vibe-genes/internal/gene"
)

// ErrConnect marks a load that was skipped because no connection could be made.
var ErrConnect = errors.New("database connection failed")

// Connector opens the storage session used for a single load.
type Connector interface {
	Connect(ctx context.Context) (Session, error)
}

// Session is an exclusively owned write session. Inserts become visible
// only after Commit. Close releases the session and must be called once.
type Session interface {
	Insert(ctx context.Context, r gene.Record) error
	Commit() error
	Close() error
}

// RowError records a row that failed to insert.
type RowError struct {
	GeneID string
	Err    error
}

func (e RowError) Error() string {
	return fmt.Sprintf("insert %s: %v", e.GeneID, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Result partitions the attempted rows into inserted and failed.
type Result struct {
	Inserted  []string
	Failed    []RowError
	Committed bool
}

// Attempted returns the number of rows the loader tried to insert.
func (r *Result) Attempted() int {
	return len(r.Inserted) + len(r.Failed)
}

// Loader inserts records through a Connector.
type Loader struct {
	connector Connector
	logger    *zap.Logger
}

// NewLoader creates a loader writing through c.
func NewLoader(c Connector) *Loader {
	return &Loader{
		connector: c,
		logger:    zap.NewNop(),
	}
}

// SetLogger sets the logger for per-row messages.
func (l *Loader) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// Load inserts every record, continuing past individual row failures, then
// commits once. The session is closed on every path once connected.
// If the connection fails nothing is written and the error wraps ErrConnect.
func (l *Loader) Load(ctx context.Context, records []gene.Record) (res *Result, err error) {
	sess, err := l.connector.Connect(ctx)
	if err != nil {
		l.logger.Error("failed to connect to the database, skipping load", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			l.logger.Warn("closing database session", zap.Error(cerr))
			if err == nil {
				err = fmt.Errorf("close session: %w", cerr)
			}
		}
	}()
	l.logger.Info("connected to the database")

	res = &Result{}
	for _, r := range records {
		if err := insertRow(ctx, sess, r); err != nil {
			l.logger.Warn("failed to insert gene", zap.String("gene_id", r.ID), zap.Error(err))
			res.Failed = append(res.Failed, RowError{GeneID: r.ID, Err: err})
			continue
		}
		l.logger.Info("inserted gene", zap.String("gene_id", r.ID))
		res.Inserted = append(res.Inserted, r.ID)
	}

	if err := sess.Commit(); err != nil {
		return res, fmt.Errorf("commit: %w", err)
	}
	res.Committed = true
	l.logger.Info("data committed to the database",
		zap.Int("inserted", len(res.Inserted)),
		zap.Int("failed", len(res.Failed)))

	return res, nil
}

func insertRow(ctx context.Context, sess Session, r gene.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return sess.Insert(ctx, r)
}
