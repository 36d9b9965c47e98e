// Package submissions accepts résumé batches for analysis: files are
// persisted to the object store, a processing log is created, and the
// analysis is enqueued for the background worker.
package submissions

import (
	"context"
	"fmt"
	"io"
	"time"

	"resume-matcher/internal/logs"
	"resume-matcher/internal/queue"
	"resume-matcher/internal/shared/storage/object"
	"resume-matcher/internal/shared/telemetry"
)

// File is one uploaded résumé document.
type File struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// SubmitInput carries a validated submission.
type SubmitInput struct {
	RequestID string
	UserID    string
	Query     *string
	Files     []File
}

// Service persists the submission and hands it off to the queue.
type Service struct {
	Logs  *logs.Service
	Store object.ObjectStore
	Queue queue.Client
}

// NewService constructs a Service.
func NewService(logSvc *logs.Service, store object.ObjectStore, q queue.Client) *Service {
	return &Service{Logs: logSvc, Store: store, Queue: q}
}

// Submit stores each file, records a PROCESSING log, and enqueues the
// analysis message. Files already stored are removed again when a later
// step fails, since the worker will never pick them up.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (logs.Log, error) {
	storageKeys := make([]string, 0, len(in.Files))
	for _, f := range in.Files {
		key, size, mime, err := s.Store.Save(ctx, f.Name, f.Reader)
		if err != nil {
			s.cleanup(ctx, storageKeys)
			return logs.Log{}, fmt.Errorf("store file %q: %w", f.Name, err)
		}
		telemetry.Info("submissions.file_stored", map[string]any{
			"request_id":  in.RequestID,
			"storage_key": key,
			"size_bytes":  size,
			"mime_type":   mime,
		})
		storageKeys = append(storageKeys, key)
	}

	log, err := s.Logs.Create(ctx, logs.Log{
		RequestID: in.RequestID,
		UserID:    in.UserID,
		Query:     in.Query,
	})
	if err != nil {
		s.cleanup(ctx, storageKeys)
		return logs.Log{}, fmt.Errorf("create log: %w", err)
	}

	msg := queue.Message{
		LogID:      log.ID,
		RequestID:  in.RequestID,
		FilePaths:  storageKeys,
		Query:      in.Query,
		EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
		Version:    queue.MessageVersion,
	}
	if err := s.Queue.Send(ctx, msg); err != nil {
		s.cleanup(ctx, storageKeys)
		if markErr := s.Logs.MarkFailed(ctx, log.ID); markErr != nil {
			telemetry.Error("submissions.mark_failed_error", map[string]any{
				"log_id": log.ID,
				"error":  markErr.Error(),
			})
		}
		return logs.Log{}, fmt.Errorf("enqueue analysis: %w", err)
	}

	return log, nil
}

func (s *Service) cleanup(ctx context.Context, storageKeys []string) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range storageKeys {
		if err := s.Store.Delete(ctx, key); err != nil {
			telemetry.Error("submissions.cleanup_error", map[string]any{
				"storage_key": key,
				"error":       err.Error(),
			})
		}
	}
}
