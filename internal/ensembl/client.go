// Package ensembl fetches gene metadata from the Ensembl REST API.
package ensembl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/inodb/vibe-genes/internal/gene"
)

// Default REST endpoints.
const (
	DefaultBaseURL = "https://rest.ensembl.org"
	GRCh37BaseURL  = "https://grch37.rest.ensembl.org"
	DefaultTimeout = 30 * time.Second
)

// BaseURLForAssembly returns the REST endpoint serving the given assembly.
// assembly should be "GRCh37" or "GRCh38"; anything else maps to the default.
func BaseURLForAssembly(assembly string) string {
	if strings.EqualFold(assembly, "GRCh37") {
		return GRCh37BaseURL
	}
	return DefaultBaseURL
}

// Client looks up genes by stable identifier.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient creates a client for the REST API at baseURL.
// A zero timeout leaves requests bounded only by the caller's context.
func NewClient(baseURL string, timeout time.Duration) *Client {
	hc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "vibe-genes")
	if timeout > 0 {
		hc.SetTimeout(timeout)
	}

	return &Client{
		http:   hc,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for per-gene progress and failure messages.
func (c *Client) SetLogger(l *zap.Logger) {
	c.logger = l
}

// lookupResponse is the subset of the /lookup/id payload we persist.
// Required fields are pointers so a missing key can be told apart from "".
type lookupResponse struct {
	ID                  *string `json:"id"`
	DisplayName         *string `json:"display_name"`
	Length              int64   `json:"length"`
	SeqRegionName       string  `json:"seq_region_name"`
	Start               int64   `json:"start"`
	End                 int64   `json:"end"`
	Strand              int     `json:"strand"`
	Biotype             string  `json:"biotype"`
	Description         string  `json:"description"`
	CanonicalTranscript string  `json:"canonical_transcript"`
	Species             string  `json:"species"`
}

func (lr *lookupResponse) toRecord(requested string) (gene.Record, error) {
	if lr.ID == nil || *lr.ID == "" {
		return gene.Record{}, &PayloadError{ID: requested, Field: "id"}
	}
	if lr.DisplayName == nil {
		return gene.Record{}, &PayloadError{ID: requested, Field: "display_name"}
	}

	return gene.Record{
		ID:                  *lr.ID,
		DisplayName:         *lr.DisplayName,
		Length:              lr.Length,
		SeqRegionName:       lr.SeqRegionName,
		Start:               lr.Start,
		End:                 lr.End,
		Strand:              lr.Strand,
		Biotype:             lr.Biotype,
		Description:         lr.Description,
		CanonicalTranscript: lr.CanonicalTranscript,
		Species:             lr.Species,
		// Gene length stands in for an expression measurement.
		Expression: float64(lr.Length),
	}, nil
}

// Lookup fetches a single gene. Any status other than 200 is a *StatusError.
func (c *Client) Lookup(ctx context.Context, id string) (gene.Record, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetQueryParam("content-type", "application/json").
		Get("/lookup/id/{id}")
	if err != nil {
		return gene.Record{}, fmt.Errorf("REST API request for %s failed: %w", id, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return gene.Record{}, &StatusError{ID: id, StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var lr lookupResponse
	if err := json.Unmarshal(resp.Body(), &lr); err != nil {
		return gene.Record{}, fmt.Errorf("decode lookup response for %s: %w", id, err)
	}
	return lr.toRecord(id)
}

// Failure records an identifier that could not be extracted.
type Failure struct {
	ID  string
	Err error
}

// Extract looks up each identifier in order, one request at a time.
// Failed identifiers are logged and skipped; they are returned alongside the
// records that were fetched so callers can report them.
func (c *Client) Extract(ctx context.Context, ids []string) ([]gene.Record, []Failure) {
	var (
		records  []gene.Record
		failures []Failure
	)

	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			c.logger.Warn("skipping blank gene identifier")
			continue
		}

		c.logger.Info("fetching gene", zap.String("gene_id", id))
		rec, err := c.Lookup(ctx, id)
		if err != nil {
			c.logger.Warn("failed to fetch gene", zap.String("gene_id", id), zap.Error(err))
			failures = append(failures, Failure{ID: id, Err: err})
			continue
		}

		c.logger.Info("fetched gene",
			zap.String("gene_id", id),
			zap.String("display_name", rec.DisplayName),
			zap.Float64("expression", rec.Expression))
		records = append(records, rec)
	}

	return records, failures
}
