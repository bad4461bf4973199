package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/inodb/vibe-genes/internal/gene"
	"github.com/inodb/vibe-genes/internal/load"
)

// ErrDuplicateGene is returned when a gene_id is already stored.
var ErrDuplicateGene = errors.New("gene already stored")

const rowSavepoint = "gene_row"

// LoadSession writes genes on one dedicated connection inside one transaction.
// A failed insert does not abort the transaction: PostgreSQL rolls back to a
// per-row savepoint. DuckDB has no savepoints, so duplicate ids are rejected
// before the insert runs and any other failure restarts the transaction and
// replays the rows written so far.
type LoadSession struct {
	conn    *sql.Conn
	tx      *sql.Tx
	driver  string
	written []gene.Record // rows in tx, DuckDB only
	aborted error         // set when tx can no longer commit what it reported
	done    bool
	closed  bool
	onClose func() error
}

var _ load.Session = (*LoadSession)(nil)

// BeginLoad acquires a connection and starts the load transaction.
func (s *Store) BeginLoad(ctx context.Context) (*LoadSession, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("get connection: %w", err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	return &LoadSession{conn: conn, tx: tx, driver: s.driver}, nil
}

// Insert writes a single gene. On error the row is discarded and the
// session stays usable for the next row.
func (ls *LoadSession) Insert(ctx context.Context, r gene.Record) error {
	if ls.done || ls.closed {
		return errors.New("load session is finished")
	}
	if ls.aborted != nil {
		return fmt.Errorf("load session aborted: %w", ls.aborted)
	}

	if ls.driver == DriverPostgres {
		return ls.insertWithSavepoint(ctx, r)
	}

	var n int
	if err := ls.tx.QueryRowContext(ctx,
		"SELECT count(*) FROM "+gene.Table+" WHERE gene_id = $1", r.ID).Scan(&n); err != nil {
		return fmt.Errorf("check existing gene: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateGene, r.ID)
	}
	if _, err := ls.tx.ExecContext(ctx, insertSQL, r.Values()...); err != nil {
		if rerr := ls.restart(ctx); rerr != nil {
			ls.aborted = rerr
			return fmt.Errorf("insert gene: %w (restart transaction: %v)", err, rerr)
		}
		return fmt.Errorf("insert gene: %w", err)
	}
	ls.written = append(ls.written, r)
	return nil
}

// restart discards the failed DuckDB transaction and rewrites the rows that
// had already been inserted into a fresh one.
func (ls *LoadSession) restart(ctx context.Context) error {
	if err := ls.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback: %w", err)
	}
	tx, err := ls.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	ls.tx = tx
	for _, r := range ls.written {
		if _, err := tx.ExecContext(ctx, insertSQL, r.Values()...); err != nil {
			return fmt.Errorf("replay %s: %w", r.ID, err)
		}
	}
	return nil
}

func (ls *LoadSession) insertWithSavepoint(ctx context.Context, r gene.Record) error {
	if _, err := ls.tx.ExecContext(ctx, "SAVEPOINT "+rowSavepoint); err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}

	if _, err := ls.tx.ExecContext(ctx, insertSQL, r.Values()...); err != nil {
		if _, rbErr := ls.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+rowSavepoint); rbErr != nil {
			ls.aborted = fmt.Errorf("rollback to savepoint: %w", rbErr)
			return fmt.Errorf("insert gene: %w (rollback to savepoint: %v)", err, rbErr)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s: %w", ErrDuplicateGene, r.ID, err)
		}
		return fmt.Errorf("insert gene: %w", err)
	}

	if _, err := ls.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+rowSavepoint); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	return nil
}

// Commit makes every successfully inserted row durable.
func (ls *LoadSession) Commit() error {
	if ls.done {
		return errors.New("load session already committed")
	}
	ls.done = true
	if ls.aborted != nil {
		if err := ls.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			return fmt.Errorf("load session aborted: %w (rollback: %v)", ls.aborted, err)
		}
		return fmt.Errorf("load session aborted: %w", ls.aborted)
	}
	return ls.tx.Commit()
}

// Close rolls back an uncommitted transaction and releases the connection.
// Calling Close more than once is a no-op.
func (ls *LoadSession) Close() error {
	if ls.closed {
		return nil
	}
	ls.closed = true

	var errs []error
	if !ls.done {
		if err := ls.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, fmt.Errorf("rollback: %w", err))
		}
	}
	if err := ls.conn.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close connection: %w", err))
	}
	if ls.onClose != nil {
		if err := ls.onClose(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Connector opens a fresh Store for every load and hands out a session that
// owns it. It implements load.Connector.
type Connector struct {
	cfg Config
}

// NewConnector creates a connector for cfg.
func NewConnector(cfg Config) *Connector {
	return &Connector{cfg: cfg}
}

// Connect opens the database and begins a load session.
func (c *Connector) Connect(ctx context.Context) (load.Session, error) {
	s, err := Open(ctx, c.cfg)
	if err != nil {
		return nil, err
	}

	ls, err := s.BeginLoad(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}
	ls.onClose = s.Close
	return ls, nil
}
