package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-genes/internal/gene"
)

func TestLog2Plus1(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{1, 1},
		{3, 2},
		{10, math.Log2(11)},
		{-0.5, -1},
	}
	for _, tt := range tests {
		got, err := Log2Plus1(tt.in)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-12, "Log2Plus1(%v)", tt.in)
	}
}

func TestLog2Plus1Domain(t *testing.T) {
	for _, x := range []float64{-1, -2, math.Inf(-1), math.NaN()} {
		_, err := Log2Plus1(x)
		assert.ErrorIs(t, err, ErrDomain, "Log2Plus1(%v)", x)
	}
}

func TestNormalize(t *testing.T) {
	in := []gene.Record{
		{ID: "A", Length: 10, Expression: 10},
		{ID: "B", Length: 0, Expression: 0},
		{ID: "C", Length: 84761, Expression: 84761},
	}

	out, err := Normalize(in)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, math.Log2(11), out[0].Expression)
	assert.Equal(t, 0.0, out[1].Expression)
	assert.Equal(t, math.Log2(84762), out[2].Expression)

	// Other fields are carried over.
	assert.Equal(t, "C", out[2].ID)
	assert.Equal(t, int64(84761), out[2].Length)

	// Input is untouched.
	assert.Equal(t, 10.0, in[0].Expression)
	assert.Equal(t, 84761.0, in[2].Expression)
}

func TestNormalizeNotIdempotent(t *testing.T) {
	once, err := Normalize([]gene.Record{{ID: "A", Expression: 10}})
	require.NoError(t, err)
	twice, err := Normalize(once)
	require.NoError(t, err)

	assert.NotEqual(t, once[0].Expression, twice[0].Expression)
	assert.Equal(t, math.Log2(math.Log2(11)+1), twice[0].Expression)
}

func TestNormalizeError(t *testing.T) {
	_, err := Normalize([]gene.Record{{ID: "A", Expression: 1}, {ID: "BAD", Expression: -3}})
	require.ErrorIs(t, err, ErrDomain)
	assert.Contains(t, err.Error(), "BAD")
}

func TestNormalizeEmpty(t *testing.T) {
	out, err := Normalize(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
