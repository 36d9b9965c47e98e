// Package analysis implements the background unit of work that turns a
// submitted batch of résumé files into a terminal log state.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-matcher/internal/analyzer"
	"resume-matcher/internal/logs"
	"resume-matcher/internal/matching"
	"resume-matcher/internal/queue"
	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/telemetry"
)

// TextExtractor converts a stored document into plain text and releases the
// stored object afterwards.
type TextExtractor interface {
	ExtractText(ctx context.Context, storageKey string) (string, error)
}

// Task drives one analysis: extract each file, summarize, optionally rank
// and justify against the query, then write the terminal log state.
type Task struct {
	Logs      logs.Repo
	Extractor TextExtractor
	Analyzer  *analyzer.Analyzer
}

// Run executes the task for one queue message.
//
// Pipeline failures (extraction or backend errors) are absorbed here: the log
// transitions to PROCESSING_FAILED and Run returns nil so the message is
// consumed. A non-nil return means the log store itself failed and the
// message should be redelivered. Run is idempotent for redelivery: a log
// already in a terminal state is skipped.
func (t *Task) Run(ctx context.Context, msg queue.Message) (err error) {
	startedAt := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = t.fail(ctx, msg.LogID, "", fmt.Errorf("panic: %v", r))
		}
	}()

	log, lookupErr := t.Logs.GetByID(ctx, msg.LogID)
	if lookupErr != nil {
		if errors.Is(lookupErr, logs.ErrNotFound) {
			// Precondition violation, not a processing failure: there is no
			// record to transition.
			telemetry.Error("analysis.log_missing", map[string]any{
				"log_id":     msg.LogID,
				"request_id": msg.RequestID,
			})
			return nil
		}
		return fmt.Errorf("log lookup id=%s: %w", msg.LogID, lookupErr)
	}

	if logs.IsTerminal(log.Status) {
		telemetry.Info("analysis.already_terminal", map[string]any{
			"log_id": msg.LogID,
			"status": log.Status,
		})
		return nil
	}

	telemetry.Info("analysis.started", map[string]any{
		"log_id":     msg.LogID,
		"request_id": msg.RequestID,
		"files":      len(msg.FilePaths),
	})

	summaries := make([]matching.SummaryResume, 0, len(msg.FilePaths))
	for _, filePath := range msg.FilePaths {
		text, extractErr := t.Extractor.ExtractText(ctx, filePath)
		if extractErr != nil {
			return t.fail(ctx, msg.LogID, filePath, extractErr)
		}

		summary, summarizeErr := t.Analyzer.GenerateSummary(ctx, text)
		if summarizeErr != nil {
			return t.fail(ctx, msg.LogID, filePath, summarizeErr)
		}
		summaries = append(summaries, summary)
	}

	finalResumes := summaries
	var justification *string

	if query := queryText(log.Query); query != "" {
		ranked, just, rankErr := t.Analyzer.RankAndJustify(ctx, query, summaries)
		if rankErr != nil {
			return t.fail(ctx, msg.LogID, "", rankErr)
		}
		finalResumes = ranked
		justification = just
	}

	result := &logs.AnalysisResult{
		Resumes:       finalResumes,
		Justification: justification,
	}
	if updateErr := t.Logs.UpdateStatusResult(ctx, msg.LogID, logs.StatusProcessed, result); updateErr != nil {
		return fmt.Errorf("mark processed id=%s: %w", msg.LogID, updateErr)
	}

	metrics.IncAnalysisJobsCompleted()
	metrics.ObserveAnalysisDurationMs(float64(time.Since(startedAt).Milliseconds()))
	telemetry.Info("analysis.completed", map[string]any{
		"log_id":  msg.LogID,
		"resumes": len(finalResumes),
		"ranked":  queryText(log.Query) != "",
	})
	return nil
}

// fail converts a pipeline error into the PROCESSING_FAILED terminal state.
// Only a failing state write propagates, so the queue redelivers.
func (t *Task) fail(ctx context.Context, logID, filePath string, cause error) error {
	fields := map[string]any{
		"log_id": logID,
		"error":  cause.Error(),
	}
	if filePath != "" {
		fields["file"] = filePath
	}
	telemetry.Error("analysis.failed", fields)
	metrics.IncAnalysisJobsFailed()

	if updateErr := t.Logs.UpdateStatusResult(ctx, logID, logs.StatusProcessingFailed, nil); updateErr != nil {
		return fmt.Errorf("mark failed id=%s: %w", logID, updateErr)
	}
	return nil
}

func queryText(query *string) string {
	if query == nil {
		return ""
	}
	return strings.TrimSpace(*query)
}
