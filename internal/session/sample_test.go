package session

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightedIndexRejectsDegenerateDistributions(t *testing.T) {
	_, ok := weightedIndex(nil, fixedRand(0.5))
	assert.False(t, ok)

	zero := []Candidate{{TokenID: 1}, {TokenID: 2, Probability: -0.3}, {TokenID: 3, Probability: math.NaN()}}
	_, ok = weightedIndex(zero, fixedRand(0.5))
	assert.False(t, ok)
}

func TestWeightedIndexIsNotUniform(t *testing.T) {
	cands := []Candidate{
		{TokenID: 1, Probability: 0.9},
		{TokenID: 2, Probability: 0.1},
	}
	rng := rand.New(rand.NewSource(42))
	counts := make([]int, 2)
	for i := 0; i < 10000; i++ {
		idx, ok := weightedIndex(cands, rng)
		if !ok {
			t.Fatalf("expected a draw")
		}
		counts[idx]++
	}
	assert.InDelta(t, 0.9, float64(counts[0])/10000, 0.02)
}

func TestWeightedIndexHandlesUnnormalizedWeights(t *testing.T) {
	// the top-N slice of a distribution rarely sums to one
	cands := []Candidate{
		{TokenID: 1, Probability: 0.2},
		{TokenID: 2, Probability: 0.1},
	}
	idx, ok := weightedIndex(cands, fixedRand(0.999999))
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	idx, ok = weightedIndex(cands, fixedRand(0.6))
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}
