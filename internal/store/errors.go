package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation reports whether err is a PostgreSQL unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// wrapConnectionError wraps raw pgx connection errors with actionable guidance.
func wrapConnectionError(err error, cfg Config) error {
	errStr := strings.ToLower(err.Error())
	addr := cfg.address()
	host, database := cfg.Host, cfg.Database

	readyCmd := "pg_isready -h " + host
	if cfg.Port > 0 {
		readyCmd += " -p " + strconv.Itoa(cfg.Port)
	}

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: %s)
  - Wrong host or port

Original error: %w`, addr, readyCmd, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`password authentication failed for database "%s"

Possible causes:
  - Wrong password (check $DB_PASSWORD or .env)
  - Wrong username (check $DB_USER)

Original error: %w`, database, err)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`database "%s" does not exist

To create it:
  createdb %s

Original error: %w`, database, database, err)

	case strings.Contains(errStr, "no such host"):
		return fmt.Errorf(`cannot resolve host "%s"

Original error: %w`, host, err)

	default:
		return fmt.Errorf("failed to connect to database: %w", err)
	}
}
