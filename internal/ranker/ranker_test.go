package ranker

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-rag/internal/models"
)

func source(id int64, link string, embedding []float32) models.Source {
	return models.Source{ID: id, Link: link, Text: "text " + link, Embedding: embedding}
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-3, 0}), 1e-9)
}

func TestCosineSimilarityZeroNorm(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 1}, []float32{0, 0}))
}

func TestCosineSimilarityStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		a := make([]float32, 16)
		b := make([]float32, 16)
		for j := range a {
			a[j] = rng.Float32()*2 - 1
			b[j] = rng.Float32()*2 - 1
		}
		sim := CosineSimilarity(a, b)
		assert.False(t, math.IsNaN(sim))
		assert.GreaterOrEqual(t, sim, -1.0-1e-9)
		assert.LessOrEqual(t, sim, 1.0+1e-9)
	}
}

func TestRankOrdersBySimilarityDescending(t *testing.T) {
	r := New(5, 0.2)
	query := []float32{1, 0, 0}
	candidates := []models.Source{
		source(1, "https://mid", []float32{1, 1, 0}),
		source(2, "https://best", []float32{1, 0, 0}),
		source(3, "https://low", []float32{1, 2, 0}),
	}

	ranked := r.Rank(query, candidates)
	require.Len(t, ranked, 3)
	assert.Equal(t, "https://best", ranked[0].Link)
	assert.Equal(t, "https://mid", ranked[1].Link)
	assert.Equal(t, "https://low", ranked[2].Link)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Similarity, ranked[i].Similarity)
	}
}

func TestRankFiltersAtThreshold(t *testing.T) {
	r := New(5, 0.5)
	query := []float32{1, 0}
	candidates := []models.Source{
		source(1, "https://orthogonal", []float32{0, 1}), // sim 0
		source(2, "https://aligned", []float32{1, 0}),    // sim 1
	}

	ranked := r.Rank(query, candidates)
	require.Len(t, ranked, 1)
	assert.Equal(t, "https://aligned", ranked[0].Link)
	for _, rs := range ranked {
		assert.Greater(t, rs.Similarity, 0.5)
	}
}

func TestRankThresholdIsExclusive(t *testing.T) {
	// A candidate sitting exactly on the threshold is filtered out.
	r := New(5, 1.0)
	ranked := r.Rank([]float32{1, 0}, []models.Source{source(1, "https://exact", []float32{1, 0})})
	assert.Empty(t, ranked)
}

func TestRankCapsAtTopN(t *testing.T) {
	r := New(2, 0.0)
	query := []float32{1, 0}
	var candidates []models.Source
	for i := 0; i < 10; i++ {
		candidates = append(candidates, source(int64(i), fmt.Sprintf("https://u%d", i), []float32{1, float32(i) * 0.1}))
	}
	ranked := r.Rank(query, candidates)
	assert.Len(t, ranked, 2)
}

func TestRankBreaksTiesByInsertionOrder(t *testing.T) {
	r := New(5, 0.1)
	query := []float32{1, 0}
	candidates := []models.Source{
		source(1, "https://first", []float32{2, 0}),
		source(2, "https://second", []float32{3, 0}),
		source(3, "https://third", []float32{4, 0}),
	}

	// All three have similarity exactly 1; earlier insertion wins.
	ranked := r.Rank(query, candidates)
	require.Len(t, ranked, 3)
	assert.Equal(t, "https://first", ranked[0].Link)
	assert.Equal(t, "https://second", ranked[1].Link)
	assert.Equal(t, "https://third", ranked[2].Link)
}

func TestRankEmptyCandidates(t *testing.T) {
	r := New(5, 0.2)
	assert.Empty(t, r.Rank([]float32{1, 0}, nil))
}

func TestRankParametrizedThresholdAndWindowDefaults(t *testing.T) {
	// The source material disagrees on 0.2 vs 0.5; both must behave.
	query := []float32{1, 0}
	candidates := []models.Source{
		source(1, "https://weak", []float32{1, 2}),   // sim ~0.447
		source(2, "https://strong", []float32{1, 0}), // sim 1
	}

	loose := New(5, 0.2).Rank(query, candidates)
	strict := New(5, 0.5).Rank(query, candidates)
	assert.Len(t, loose, 2)
	assert.Len(t, strict, 1)
}
