package matching

import (
	"context"
	"math"
	"testing"
)

func TestCosineSimilarityIdenticalVectors(t *testing.T) {
	v := []float64{0.3, 0.5, 0.2}
	got, err := CosineSimilarity(v, v)
	if err != nil {
		t.Fatalf("CosineSimilarity: %v", err)
	}
	if math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected similarity 1, got %f", got)
	}
}

func TestCosineSimilarityScaleInvariant(t *testing.T) {
	a := []float64{0.2, 0.7, 0.1}
	b := []float64{0.5, 0.1, 0.9}
	scaled := make([]float64, len(b))
	for i := range b {
		scaled[i] = b[i] * 10
	}

	base, err := CosineSimilarity(a, b)
	if err != nil {
		t.Fatalf("CosineSimilarity: %v", err)
	}
	got, err := CosineSimilarity(a, scaled)
	if err != nil {
		t.Fatalf("CosineSimilarity scaled: %v", err)
	}
	if math.Abs(base-got) > 1e-9 {
		t.Fatalf("expected scale invariance, got %f vs %f", base, got)
	}
}

func TestCosineSimilarityRejectsBadVectors(t *testing.T) {
	cases := []struct {
		name string
		a, b []float64
	}{
		{"empty a", nil, []float64{1}},
		{"empty b", []float64{1}, nil},
		{"dimension mismatch", []float64{1, 0}, []float64{1}},
		{"zero magnitude", []float64{0, 0}, []float64{1, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := CosineSimilarity(tc.a, tc.b); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

// unitVector returns a 2d unit vector whose cosine against [1,0] equals c.
func unitVector(c float64) []float64 {
	return []float64{c, math.Sqrt(1 - c*c)}
}

func staticEmbed(vectors map[string][]float64) embedFunc {
	return func(_ context.Context, text string) ([]float64, error) {
		v, ok := vectors[text]
		if !ok {
			return nil, &BackendError{Provider: "test", Op: "embed"}
		}
		return v, nil
	}
}

func TestRankBySimilarityFiltersSortsAndCuts(t *testing.T) {
	embed := staticEmbed(map[string][]float64{
		"query": {1, 0},
		"alice": unitVector(0.9),
		"bob":   unitVector(0.3),
		"carol": unitVector(0.6),
	})
	resumes := []SummaryResume{
		{CandidateName: "Alice", Summary: "alice"},
		{CandidateName: "Bob", Summary: "bob"},
		{CandidateName: "Carol", Summary: "carol"},
	}

	ranked, err := rankBySimilarity(context.Background(), embed, "query", resumes, RankConfig{TopK: 2, Threshold: 0.5})
	if err != nil {
		t.Fatalf("rankBySimilarity: %v", err)
	}

	if len(ranked) != 2 {
		t.Fatalf("expected 2 results, got %d", len(ranked))
	}
	if ranked[0].CandidateName != "Alice" || ranked[1].CandidateName != "Carol" {
		t.Fatalf("unexpected order: %q, %q", ranked[0].CandidateName, ranked[1].CandidateName)
	}
	if math.Abs(ranked[0].Score-0.9) > 1e-9 || math.Abs(ranked[1].Score-0.6) > 1e-9 {
		t.Fatalf("unexpected scores: %f, %f", ranked[0].Score, ranked[1].Score)
	}
}

func TestRankBySimilarityTiesKeepInputOrder(t *testing.T) {
	embed := staticEmbed(map[string][]float64{
		"query":  {1, 0},
		"first":  unitVector(0.8),
		"second": unitVector(0.8),
	})
	resumes := []SummaryResume{
		{CandidateName: "First", Summary: "first"},
		{CandidateName: "Second", Summary: "second"},
	}

	ranked, err := rankBySimilarity(context.Background(), embed, "query", resumes, RankConfig{TopK: 5, Threshold: 0.5})
	if err != nil {
		t.Fatalf("rankBySimilarity: %v", err)
	}
	if len(ranked) != 2 || ranked[0].CandidateName != "First" || ranked[1].CandidateName != "Second" {
		t.Fatalf("tie did not keep input order: %+v", ranked)
	}
}

func TestRankBySimilarityEmptyBelowThreshold(t *testing.T) {
	embed := staticEmbed(map[string][]float64{
		"query": {1, 0},
		"far":   unitVector(0.1),
	})
	resumes := []SummaryResume{{CandidateName: "Far", Summary: "far"}}

	ranked, err := rankBySimilarity(context.Background(), embed, "query", resumes, RankConfig{TopK: 3, Threshold: 0.5})
	if err != nil {
		t.Fatalf("rankBySimilarity: %v", err)
	}
	if len(ranked) != 0 {
		t.Fatalf("expected empty result, got %+v", ranked)
	}
}

func TestRankBySimilarityEmbedErrorStopsRanking(t *testing.T) {
	embed := staticEmbed(map[string][]float64{"query": {1, 0}})
	resumes := []SummaryResume{{CandidateName: "Unknown", Summary: "unknown"}}

	if _, err := rankBySimilarity(context.Background(), embed, "query", resumes, RankConfig{TopK: 3, Threshold: 0.5}); err == nil {
		t.Fatal("expected embed error to propagate")
	}
}
