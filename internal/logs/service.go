package logs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// Service contains business logic for logs.
type Service struct {
	Repo Repo
}

// Create stores a new log. ID and timestamp are assigned here when absent.
func (s *Service) Create(ctx context.Context, log Log) (Log, error) {
	if log.RequestID == "" || log.UserID == "" {
		return Log{}, errors.New("request_id and user_id are required")
	}
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now().UTC()
	}
	if log.Status == "" {
		log.Status = StatusProcessing
	}

	if err := s.Repo.Create(ctx, log); err != nil {
		return Log{}, err
	}
	return log, nil
}

// Get returns a log by ID.
func (s *Service) Get(ctx context.Context, logID string) (Log, error) {
	if err := validateID(logID); err != nil {
		return Log{}, err
	}
	return s.Repo.GetByID(ctx, logID)
}

// PatchFeedback sets only the feedback field; status and result are never
// touched by this path.
func (s *Service) PatchFeedback(ctx context.Context, logID string, feedback bool) (Log, error) {
	if err := validateID(logID); err != nil {
		return Log{}, err
	}
	if err := s.Repo.UpdateFeedback(ctx, logID, feedback); err != nil {
		return Log{}, err
	}
	return s.Repo.GetByID(ctx, logID)
}

// List returns one page of logs, newest first.
func (s *Service) List(ctx context.Context, skip, limit int) (Page, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return s.Repo.ListPaginated(ctx, skip, limit)
}

// MarkFailed transitions a log to the failed terminal state with no result.
func (s *Service) MarkFailed(ctx context.Context, logID string) error {
	if err := validateID(logID); err != nil {
		return err
	}
	return s.Repo.UpdateStatusResult(ctx, logID, StatusProcessingFailed, nil)
}

// Delete removes a log by ID.
func (s *Service) Delete(ctx context.Context, logID string) error {
	if err := validateID(logID); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, logID)
}

func validateID(logID string) error {
	if _, err := uuid.Parse(logID); err != nil {
		return ErrInvalidID
	}
	return nil
}
