// Package ranker selects the stored sources most relevant to a query vector.
// A linear scan is deliberate: sessions hold tens of sources, and the
// interface stays stable if an index ever replaces the scan.
package ranker

import (
	"math"
	"sort"

	"search-rag/internal/models"
)

type Ranker struct {
	topN      int
	threshold float64
}

func New(topN int, threshold float64) *Ranker {
	return &Ranker{topN: topN, threshold: threshold}
}

// Rank scores every candidate against the query embedding, keeps those above
// the similarity threshold and returns the top N in descending similarity.
// Exact ties keep insertion order, so ranking is deterministic. An empty
// candidate set yields an empty result, not an error.
func (r *Ranker) Rank(queryEmbedding []float32, candidates []models.Source) []models.RankedSource {
	type scored struct {
		src models.Source
		sim float64
	}

	var kept []scored
	for _, c := range candidates {
		sim := CosineSimilarity(queryEmbedding, c.Embedding)
		if sim <= r.threshold {
			continue
		}
		kept = append(kept, scored{src: c, sim: sim})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].sim > kept[j].sim
	})

	n := r.topN
	if n > len(kept) {
		n = len(kept)
	}
	out := make([]models.RankedSource, 0, n)
	for _, s := range kept[:n] {
		out = append(out, models.RankedSource{
			Title:      s.src.Title,
			Link:       s.src.Link,
			Text:       s.src.Text,
			Similarity: s.sim,
		})
	}
	return out
}

// CosineSimilarity computes (q·v)/(|q||v|) in float64. A zero-norm vector
// scores 0, which any positive threshold filters out.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
