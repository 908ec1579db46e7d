package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))

	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{
			name: "identical vectors",
			a:    []float32{1, 2, 3},
			b:    []float32{1, 2, 3},
			want: 1,
		},
		{
			name: "orthogonal vectors",
			a:    []float32{1, 0},
			b:    []float32{0, 1},
			want: 0,
		},
		{
			name: "opposite vectors",
			a:    []float32{1, 0},
			b:    []float32{-1, 0},
			want: -1,
		},
		{
			name: "mismatched lengths truncate to shorter",
			a:    []float32{1, 0, 5, 5, 5},
			b:    []float32{1, 0},
			want: 1,
		},
		{
			name: "empty vectors",
			a:    nil,
			b:    []float32{1, 2},
			want: 0,
		},
		{
			name: "zero magnitude",
			a:    []float32{0, 0, 0},
			b:    []float32{1, 2, 3},
			want: 0,
		},
		{
			name: "non-finite dimensions skipped",
			a:    []float32{1, nan, 0, 1, 1, 1, 1, 1, 1, 1},
			b:    []float32{1, 5, inf, 1, 1, 1, 1, 1, 1, 1},
			want: 1,
		},
		{
			name: "all non-finite",
			a:    []float32{nan, nan, nan},
			b:    []float32{1, 2, 3},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.False(t, math.IsNaN(got))
			assert.False(t, math.IsInf(got, 0))
		})
	}
}

func TestCosineSimilarity_AlwaysClamped(t *testing.T) {
	// Accumulated float error must never push the result past 1.
	v := make([]float32, 512)
	for i := range v {
		v[i] = 0.1
	}
	sim := CosineSimilarity(v, v)
	assert.LessOrEqual(t, sim, 1.0)
	assert.InDelta(t, 1.0, sim, 1e-6)
}

func TestValidEmbedding(t *testing.T) {
	nan := float32(math.NaN())

	assert.False(t, validEmbedding(nil))
	assert.False(t, validEmbedding([]float32{1, 2, 3}))
	assert.True(t, validEmbedding(make([]float32, MinEmbeddingDims)))
	assert.False(t, validEmbedding([]float32{nan, nan, nan, nan, nan, nan, nan, nan, nan, nan}))
	assert.True(t, validEmbedding([]float32{1, nan, nan, nan, nan, nan, nan, nan, nan, 1}))
}

func TestPlaceholderVector(t *testing.T) {
	a := placeholderVector(0, 16)
	b := placeholderVector(1, 16)

	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, placeholderVector(0, 16))

	// Distinct positions should not be collinear stand-ins.
	assert.Less(t, CosineSimilarity(a, b), 0.999)

	assert.Len(t, placeholderVector(3, 0), MinEmbeddingDims)
}
