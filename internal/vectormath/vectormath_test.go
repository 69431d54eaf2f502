package vectormath

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSymmetricAndBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 50; i++ {
		a := randomVector(rng, 16)
		b := randomVector(rng, 16)

		ab := Cosine(a, b)
		ba := Cosine(b, a)

		assert.InDelta(t, ab, ba, 1e-12)
		assert.GreaterOrEqual(t, ab, -1.0-1e-9)
		assert.LessOrEqual(t, ab, 1.0+1e-9)
	}
}

func TestCosineSelfSimilarity(t *testing.T) {
	v := []float32{0.3, -1.2, 4.5, 0.01}
	assert.InDelta(t, 1.0, Cosine(v, v), 1e-9)
}

func TestCosineZeroNormIsZero(t *testing.T) {
	zero := []float32{0, 0, 0}
	v := []float32{1, 2, 3}

	assert.Equal(t, 0.0, Cosine(zero, v))
	assert.Equal(t, 0.0, Cosine(v, zero))
	assert.Equal(t, 0.0, Cosine(zero, zero))
}

func TestCosineOrthogonal(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	assert.InDelta(t, 0.0, Cosine(a, b), 1e-12)

	opposite := []float32{-1, 0}
	assert.InDelta(t, -1.0, Cosine(a, opposite), 1e-12)
}

func TestDotShorterLength(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 5}
	assert.Equal(t, 14.0, Dot(a, b))
}

func randomVector(rng *rand.Rand, dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = float32(rng.NormFloat64())
	}
	return v
}
