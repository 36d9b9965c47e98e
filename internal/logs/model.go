// Package logs owns the lifecycle record of a résumé-analysis request, from
// submission through its terminal outcome, and the REST surface to query it.
package logs

import (
	"time"

	"resume-matcher/internal/matching"
)

// Log statuses. A log is created in PROCESSING and moves exactly once to one
// of the terminal states.
const (
	StatusProcessing       = "PROCESSING"
	StatusProcessed        = "PROCESSED"
	StatusProcessingFailed = "PROCESSING_FAILED"
)

// IsTerminal reports whether the status admits no further transition.
func IsTerminal(status string) bool {
	return status == StatusProcessed || status == StatusProcessingFailed
}

// AnalysisResult is the structured output of one analysis task.
// Justification is present only when a query was supplied and ranking
// produced a non-empty subset.
type AnalysisResult struct {
	Resumes       []matching.SummaryResume `json:"resumes"`
	Justification *string                  `json:"justification"`
}

// Log tracks one analysis request. Result is non-nil iff Status is
// PROCESSED. Feedback is user-supplied and independent of the processing
// lifecycle.
type Log struct {
	ID        string          `json:"id"`
	RequestID string          `json:"request_id"`
	UserID    string          `json:"user_id"`
	Timestamp time.Time       `json:"timestamp"`
	Query     *string         `json:"query"`
	Status    string          `json:"status"`
	Result    *AnalysisResult `json:"result"`
	Feedback  *bool           `json:"feedback"`
}
