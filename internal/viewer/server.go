// Package viewer serves a read-only HTML grid of the stored gene table.
package viewer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/inodb/vibe-genes/internal/output"
	"github.com/inodb/vibe-genes/internal/store"
)

// ErrNoData is returned when the snapshot holds no rows.
var ErrNoData = errors.New("no data fetched from the database")

// DefaultAddr mirrors the port of the original dashboard.
const DefaultAddr = "127.0.0.1:8050"

// Snapshotter loads the full gene table.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*store.Table, error)
}

// Server renders one snapshot taken at startup. It never writes to the database.
type Server struct {
	snap   *store.Table
	page   []byte
	debug  bool
	logger *zap.Logger
}

// Load takes the snapshot and renders the page. A query failure or an
// empty table returns an error and no server.
func Load(ctx context.Context, src Snapshotter) (*Server, error) {
	snap, err := src.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch data: %w", err)
	}
	if snap.Len() == 0 {
		return nil, ErrNoData
	}
	return New(snap)
}

// New renders snap into a server.
func New(snap *store.Table) (*Server, error) {
	page, err := renderPage(snap)
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return &Server{
		snap:   snap,
		page:   page,
		logger: zap.NewNop(),
	}, nil
}

// SetLogger sets the logger for server and request messages.
func (s *Server) SetLogger(l *zap.Logger) {
	s.logger = l
}

// SetDebug enables per-request logging.
func (s *Server) SetDebug(debug bool) {
	s.debug = debug
}

// Rows returns the number of rows being served.
func (s *Server) Rows() int {
	return s.snap.Len()
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /genes.tsv", s.handleTSV)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok\n"))
	})

	if s.debug {
		return s.logRequests(mux)
	}
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(s.page)
}

func (s *Server) handleTSV(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
	if err := output.WriteTSV(w, s.snap); err != nil {
		s.logger.Warn("write tsv", zap.Error(err))
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("serving gene table",
		zap.String("url", "http://"+ln.Addr().String()+"/"),
		zap.Int("rows", s.snap.Len()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Gene Expression Data</title>
<style>
body { font-family: sans-serif; margin: 2em; }
h1 { text-align: center; }
.table-wrap { height: 350px; overflow-y: auto; }
table.gene-expression-table { border-collapse: collapse; width: 100%; }
table.gene-expression-table th { background-color: rgb(210, 210, 210); font-weight: bold; }
table.gene-expression-table th, table.gene-expression-table td { text-align: left; padding: 10px; }
table.gene-expression-table td { background-color: rgb(250, 250, 250); white-space: normal; }
</style>
</head>
<body>
<h1>Gene Expression Data</h1>
<div class="table-wrap" id="gene-expression-table">
{{.Table}}
</div>
<p>{{.Rows}} rows &middot; <a href="genes.tsv">download TSV</a></p>
</body>
</html>
`))

func renderPage(snap *store.Table) ([]byte, error) {
	t := output.NewTable(snap)
	t.Style().HTML.CSSClass = "gene-expression-table"

	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct {
		Table template.HTML
		Rows  int
	}{
		// go-pretty escapes cell text when rendering HTML.
		Table: template.HTML(t.RenderHTML()),
		Rows:  snap.Len(),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
