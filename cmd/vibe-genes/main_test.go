package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-genes/internal/store"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	viper.Reset()
	cfgFile, verbose = "", false

	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestETLCommandDuckDB(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dbPath := filepath.Join(t.TempDir(), "genes.duckdb")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/A") {
			w.Write([]byte(`{"id":"A","display_name":"X","length":10}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	require.NoError(t, execute(t, "init-db", "--db-driver", "duckdb", "--db-path", dbPath))
	require.NoError(t, execute(t, "etl",
		"--db-driver", "duckdb", "--db-path", dbPath,
		"--ensembl-url", srv.URL,
		"--gene", "A", "--gene", "B"))

	s, err := store.Open(context.Background(), store.Config{Driver: store.DriverDuckDB, Path: dbPath})
	require.NoError(t, err)
	defer s.Close()

	genes, err := s.Genes(context.Background())
	require.NoError(t, err)
	require.Len(t, genes, 1)
	assert.Equal(t, "A", genes[0].ID)
	assert.InDelta(t, 3.4594316186372973, genes[0].Expression, 1e-12)
}

func TestETLNoDataExitsCleanly(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	// The database is never touched, so an unreachable server is fine.
	err := execute(t, "etl",
		"--db-driver", "postgres",
		"--ensembl-url", srv.URL,
		"--gene", "B")
	assert.NoError(t, err)
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	err := execute(t, "etl", "--no-such-flag")
	assert.ErrorIs(t, err, errUsage)
}
