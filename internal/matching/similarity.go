package matching

import (
	"context"
	"errors"
	"math"
	"sort"
)

// CosineSimilarity returns dot(a,b) / (|a| * |b|) in [-1, 1].
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, errors.New("empty embedding vector")
	}
	if len(a) != len(b) {
		return 0, errors.New("embedding dimension mismatch")
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, errors.New("zero-magnitude embedding vector")
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

type embedFunc func(ctx context.Context, text string) ([]float64, error)

// rankBySimilarity is the shared ranking core used by all strategies: one
// query embedding, one embedding per summary, threshold filter, stable
// descending sort, top-k cut.
func rankBySimilarity(ctx context.Context, embed embedFunc, query string, resumes []SummaryResume, cfg RankConfig) ([]SummaryResume, error) {
	queryEmbedding, err := embed(ctx, query)
	if err != nil {
		return nil, err
	}

	scored := make([]SummaryResume, 0, len(resumes))
	for _, resume := range resumes {
		resumeEmbedding, err := embed(ctx, resume.Summary)
		if err != nil {
			return nil, err
		}

		similarity, err := CosineSimilarity(queryEmbedding, resumeEmbedding)
		if err != nil {
			return nil, err
		}

		if similarity >= cfg.Threshold {
			resume.Score = similarity
			scored = append(scored, resume)
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > cfg.TopK {
		scored = scored[:cfg.TopK]
	}
	return scored, nil
}
