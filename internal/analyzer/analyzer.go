// Package analyzer orchestrates a single matching strategy to turn résumé
// text into summaries and a set of summaries into a ranked subset with a
// justification.
package analyzer

import (
	"context"

	"resume-matcher/internal/matching"
)

// Analyzer is a stateless orchestration layer over one matching strategy.
// It is cheap to construct per task invocation.
type Analyzer struct {
	strategy matching.Strategy
}

// New constructs an Analyzer around the given strategy.
func New(strategy matching.Strategy) *Analyzer {
	return &Analyzer{strategy: strategy}
}

// GenerateSummary produces a structured summary from raw résumé text.
func (a *Analyzer) GenerateSummary(ctx context.Context, documentText string) (matching.SummaryResume, error) {
	return a.strategy.Summarize(ctx, documentText)
}

// RankAndJustify ranks the summaries against the query and generates a
// justification for the ranked subset. When no candidate clears the
// similarity threshold, justification is skipped and the subset is empty.
func (a *Analyzer) RankAndJustify(ctx context.Context, query string, resumes []matching.SummaryResume) ([]matching.SummaryResume, *string, error) {
	ranked, err := a.strategy.Rank(ctx, query, resumes)
	if err != nil {
		return nil, nil, err
	}
	if len(ranked) == 0 {
		return []matching.SummaryResume{}, nil, nil
	}

	justification, err := a.strategy.Justify(ctx, query, ranked)
	if err != nil {
		return nil, nil, err
	}
	return ranked, &justification, nil
}
