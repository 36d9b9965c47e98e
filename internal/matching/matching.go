// Package matching provides the pluggable capability used to analyze résumés:
// summarization of extracted text, similarity ranking against a free-text
// query, and generation of a best-fit justification. Variants are selected by
// a strategy key at construction and are behaviorally interchangeable.
package matching

import (
	"context"
	"fmt"
)

// SummaryResume is the structured extraction of a single résumé.
// Score is populated only during ranking.
type SummaryResume struct {
	CandidateName string  `json:"candidate_name"`
	Summary       string  `json:"summary"`
	Score         float64 `json:"score"`
}

// Strategy is the capability contract every matching backend implements.
type Strategy interface {
	// Summarize turns raw résumé text into a structured summary. The backend
	// must answer with a JSON object {candidate_name, summary}; anything else
	// is a *BackendError.
	Summarize(ctx context.Context, documentText string) (SummaryResume, error)

	// Rank filters resumes by cosine similarity of their summaries against
	// the query embedding, keeps those at or above the threshold, and returns
	// at most top-k sorted by descending score. Ties keep input order.
	Rank(ctx context.Context, query string, resumes []SummaryResume) ([]SummaryResume, error)

	// Justify names and explains the best-fit candidate among the ranked
	// summaries for the given query.
	Justify(ctx context.Context, query string, ranked []SummaryResume) (string, error)
}

// RankConfig tunes ranking. Zero values fall back to the strategy defaults.
type RankConfig struct {
	TopK      int
	Threshold float64
}

func (c RankConfig) withDefaults(topK int, threshold float64) RankConfig {
	out := c
	if out.TopK <= 0 {
		out.TopK = topK
	}
	if out.Threshold <= 0 {
		out.Threshold = threshold
	}
	return out
}

// BackendError reports a failed or malformed backend interaction:
// network errors, timeouts, non-2xx responses, and schema mismatches.
type BackendError struct {
	Provider string
	Op       string
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// ConfigurationError reports an unknown strategy key. It is fatal and raised
// before any backend call is attempted.
type ConfigurationError struct {
	Strategy string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("unsupported matching strategy: %q", e.Strategy)
}
