package services

import "math"

// minUsableFraction is the minimum share of comparable dimensions (or
// finite vector entries) required before a similarity or a provider
// vector is trusted.
const minUsableFraction = 0.1

// nearZero guards against division by vanishing magnitudes.
const nearZero = 1e-9

// CosineSimilarity computes the cosine similarity of two vectors
// defensively. Mismatched lengths are truncated to the shorter vector;
// dimensions where either component is non-finite are skipped. If fewer
// than 10% of the compared dimensions were usable, or either magnitude
// is near zero, it returns 0 rather than NaN or Inf. The result is
// clamped to [-1, 1].
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}

	var dot, magA, magB float64
	usable := 0
	for i := 0; i < n; i++ {
		x := float64(a[i])
		y := float64(b[i])
		if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		usable++
		dot += x * y
		magA += x * x
		magB += y * y
	}

	if float64(usable) < float64(n)*minUsableFraction {
		return 0
	}
	if magA < nearZero || magB < nearZero {
		return 0
	}

	sim := dot / (math.Sqrt(magA) * math.Sqrt(magB))
	if sim > 1 {
		return 1
	}
	if sim < -1 {
		return -1
	}
	return sim
}

// MinEmbeddingDims is the minimum dimensionality accepted from a
// provider before a vector is considered valid.
const MinEmbeddingDims = 8

// validEmbedding reports whether a provider vector is usable: present,
// at least MinEmbeddingDims wide, with at least 10% finite entries.
func validEmbedding(v []float32) bool {
	if len(v) < MinEmbeddingDims {
		return false
	}
	finite := 0
	for _, x := range v {
		f := float64(x)
		if !math.IsNaN(f) && !math.IsInf(f, 0) {
			finite++
		}
	}
	return float64(finite) >= float64(len(v))*minUsableFraction
}

// placeholderVector builds a deterministic stand-in vector keyed by the
// chunk's position. Distinct positions yield distinct, non-zero vectors
// so failed embeddings do not collapse different chunks onto the same
// point.
func placeholderVector(position, dims int) []float32 {
	if dims <= 0 {
		dims = MinEmbeddingDims
	}
	v := make([]float32, dims)
	for i := range v {
		v[i] = float32(math.Sin(float64(position+1) * float64(i+1)))
	}
	return v
}
