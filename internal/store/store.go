// Package store persists gene records in a relational table.
// PostgreSQL (via pgx) is the deployment target; DuckDB serves local runs
// and tests.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-genes/internal/gene"
)

// Supported drivers.
const (
	DriverPostgres = "postgres"
	DriverDuckDB   = "duckdb"
)

// Config describes how to reach the database.
type Config struct {
	Driver   string
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	Path     string // DuckDB file; empty for an in-memory database
}

// NormalizeDriver maps driver aliases to a supported driver name.
func NormalizeDriver(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "postgres", "postgresql", "pgx":
		return DriverPostgres, nil
	case "duckdb":
		return DriverDuckDB, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q (use postgres or duckdb)", name)
	}
}

// ConnString returns the PostgreSQL connection URL for cfg.
func (cfg Config) ConnString() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   cfg.address(),
		Path:   "/" + cfg.Database,
	}
	if cfg.User != "" {
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		} else {
			u.User = url.User(cfg.User)
		}
	}
	if cfg.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {cfg.SSLMode}}.Encode()
	}
	return u.String()
}

// address is the host, with the port only when one is configured.
func (cfg Config) address() string {
	if cfg.Port > 0 {
		return cfg.Host + ":" + strconv.Itoa(cfg.Port)
	}
	return cfg.Host
}

// Store manages a database handle holding the gene_expression table.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	driver, err := NormalizeDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	switch driver {
	case DriverPostgres:
		connConfig, err := pgx.ParseConfig(cfg.ConnString())
		if err != nil {
			return nil, fmt.Errorf("parse connection config: %w", err)
		}
		db = stdlib.OpenDB(*connConfig)
	case DriverDuckDB:
		if cfg.Path != "" {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
		db, err = sql.Open("duckdb", cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open duckdb: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		if driver == DriverPostgres {
			return nil, wrapConnectionError(err, cfg)
		}
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Driver returns the normalized driver name.
func (s *Store) Driver() string {
	return s.driver
}

// CreateSchema creates the gene table if it doesn't exist.
// The ETL itself never calls this; the table is expected to be provisioned.
func (s *Store) CreateSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+gene.Table+` (
		gene_id VARCHAR PRIMARY KEY,
		display_name VARCHAR,
		length BIGINT,
		seq_region_name VARCHAR,
		"start" BIGINT,
		"end" BIGINT,
		expression DOUBLE PRECISION,
		biotype VARCHAR,
		description VARCHAR,
		canonical_transcript VARCHAR,
		strand INTEGER,
		species VARCHAR
	)`)
	if err != nil {
		return fmt.Errorf("create %s table: %w", gene.Table, err)
	}
	return nil
}

// Count returns the number of stored gene records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM "+gene.Table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count genes: %w", err)
	}
	return n, nil
}

// quotedColumns returns the gene columns as a quoted, comma-separated list.
func quotedColumns() string {
	quoted := make([]string, len(gene.Columns))
	for i, c := range gene.Columns {
		quoted[i] = `"` + c + `"`
	}
	return strings.Join(quoted, ", ")
}

// insertSQL is the parameterized statement naming all gene columns.
var insertSQL = func() string {
	params := make([]string, len(gene.Columns))
	for i := range gene.Columns {
		params[i] = "$" + strconv.Itoa(i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		gene.Table, quotedColumns(), strings.Join(params, ", "))
}()
