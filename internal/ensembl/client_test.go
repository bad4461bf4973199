package ensembl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const brca2JSON = `{
	"id": "ENSG00000139618",
	"display_name": "BRCA2",
	"seq_region_name": "13",
	"start": 32315508,
	"end": 32400268,
	"strand": 1,
	"biotype": "protein_coding",
	"description": "BRCA2 DNA repair associated [Source:HGNC Symbol;Acc:HGNC:1101]",
	"canonical_transcript": "ENST00000380152.8",
	"species": "homo_sapiens",
	"length": 84761,
	"object_type": "Gene",
	"assembly_name": "GRCh38"
}`

// fakeEnsembl serves /lookup/id/{id} from a map of canned bodies; unknown ids get 404.
func fakeEnsembl(t *testing.T, bodies map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.URL.Query().Get("content-type"))
		id := strings.TrimPrefix(r.URL.Path, "/lookup/id/")
		body, ok := bodies[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"ID '` + id + `' not found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLookup(t *testing.T) {
	srv := fakeEnsembl(t, map[string]string{"ENSG00000139618": brca2JSON})
	c := NewClient(srv.URL, DefaultTimeout)

	rec, err := c.Lookup(context.Background(), "ENSG00000139618")
	require.NoError(t, err)

	assert.Equal(t, "ENSG00000139618", rec.ID)
	assert.Equal(t, "BRCA2", rec.DisplayName)
	assert.Equal(t, "13", rec.SeqRegionName)
	assert.Equal(t, int64(32315508), rec.Start)
	assert.Equal(t, int64(32400268), rec.End)
	assert.Equal(t, 1, rec.Strand)
	assert.Equal(t, "protein_coding", rec.Biotype)
	assert.Equal(t, "ENST00000380152.8", rec.CanonicalTranscript)
	assert.Equal(t, "homo_sapiens", rec.Species)
	assert.Equal(t, int64(84761), rec.Length)
	assert.Equal(t, float64(84761), rec.Expression, "expression is sourced from length")
}

func TestLookupDefaultsOptionalFields(t *testing.T) {
	srv := fakeEnsembl(t, map[string]string{"A": `{"id":"A","display_name":"X"}`})
	c := NewClient(srv.URL, 0)

	rec, err := c.Lookup(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "A", rec.ID)
	assert.Equal(t, "X", rec.DisplayName)
	assert.Zero(t, rec.Length)
	assert.Zero(t, rec.Start)
	assert.Zero(t, rec.End)
	assert.Zero(t, rec.Strand)
	assert.Empty(t, rec.SeqRegionName)
	assert.Empty(t, rec.Biotype)
	assert.Empty(t, rec.Description)
	assert.Empty(t, rec.CanonicalTranscript)
	assert.Empty(t, rec.Species)
	assert.Zero(t, rec.Expression)
}

func TestLookupUsesResolvedID(t *testing.T) {
	// Lookups by versioned id resolve to the unversioned stable id.
	srv := fakeEnsembl(t, map[string]string{"ENSG00000141510.18": `{"id":"ENSG00000141510","display_name":"TP53","length":25768}`})
	c := NewClient(srv.URL, 0)

	rec, err := c.Lookup(context.Background(), "ENSG00000141510.18")
	require.NoError(t, err)
	assert.Equal(t, "ENSG00000141510", rec.ID)
}

func TestLookupErrors(t *testing.T) {
	srv := fakeEnsembl(t, map[string]string{
		"NOID":   `{"display_name":"X"}`,
		"NONAME": `{"id":"NONAME"}`,
		"BROKEN": `{"id":`,
	})
	c := NewClient(srv.URL, 0)
	ctx := context.Background()

	_, err := c.Lookup(ctx, "MISSING")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, "MISSING", se.ID)

	var pe *PayloadError
	_, err = c.Lookup(ctx, "NOID")
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "id", pe.Field)

	_, err = c.Lookup(ctx, "NONAME")
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "display_name", pe.Field)

	_, err = c.Lookup(ctx, "BROKEN")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode lookup response")
}

func TestExtractSkipsFailures(t *testing.T) {
	srv := fakeEnsembl(t, map[string]string{
		"A": `{"id":"A","display_name":"X","length":10}`,
		"C": `{"id":"C","display_name":"Z","length":3}`,
	})
	c := NewClient(srv.URL, 0)

	recs, failures := c.Extract(context.Background(), []string{"A", "B", " ", "C"})

	require.Len(t, recs, 2)
	assert.Equal(t, "A", recs[0].ID)
	assert.Equal(t, "C", recs[1].ID)

	require.Len(t, failures, 1)
	assert.Equal(t, "B", failures[0].ID)
	var se *StatusError
	assert.ErrorAs(t, failures[0].Err, &se)
}

func TestExtractNetworkError(t *testing.T) {
	srv := fakeEnsembl(t, nil)
	url := srv.URL
	srv.Close()

	c := NewClient(url, 0)
	recs, failures := c.Extract(context.Background(), []string{"A"})
	assert.Empty(t, recs)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Err.Error(), "REST API request for A failed")
}

func TestBaseURLForAssembly(t *testing.T) {
	assert.Equal(t, GRCh37BaseURL, BaseURLForAssembly("GRCh37"))
	assert.Equal(t, GRCh37BaseURL, BaseURLForAssembly("grch37"))
	assert.Equal(t, DefaultBaseURL, BaseURLForAssembly("GRCh38"))
	assert.Equal(t, DefaultBaseURL, BaseURLForAssembly(""))
}
