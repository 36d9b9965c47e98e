package logs

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores logs in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Log
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Log)}
}

// Create stores the log.
func (r *MemoryRepo) Create(ctx context.Context, log Log) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[log.ID] = log
	return nil
}

// GetByID returns a log by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, logID string) (Log, error) {
	if err := ctx.Err(); err != nil {
		return Log{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	log, ok := r.byID[logID]
	if !ok {
		return Log{}, ErrNotFound
	}
	return log, nil
}

// UpdateStatusResult updates only the status and result fields.
func (r *MemoryRepo) UpdateStatusResult(ctx context.Context, logID, status string, result *AnalysisResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	log, ok := r.byID[logID]
	if !ok {
		return ErrNotFound
	}
	log.Status = status
	log.Result = result
	r.byID[logID] = log
	return nil
}

// UpdateFeedback updates only the feedback field.
func (r *MemoryRepo) UpdateFeedback(ctx context.Context, logID string, feedback bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	log, ok := r.byID[logID]
	if !ok {
		return ErrNotFound
	}
	log.Feedback = &feedback
	r.byID[logID] = log
	return nil
}

// ListAll returns all logs ordered by timestamp descending.
func (r *MemoryRepo) ListAll(ctx context.Context) ([]Log, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedLocked(), nil
}

// ListPaginated returns one page of logs ordered by timestamp descending.
func (r *MemoryRepo) ListPaginated(ctx context.Context, skip, limit int) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.sortedLocked()
	total := len(all)

	if skip > total {
		skip = total
	}
	end := skip + limit
	if end > total {
		end = total
	}

	return Page{
		Total: total,
		Skip:  skip,
		Limit: limit,
		Data:  all[skip:end],
	}, nil
}

// Delete removes a log.
func (r *MemoryRepo) Delete(ctx context.Context, logID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[logID]; !ok {
		return ErrNotFound
	}
	delete(r.byID, logID)
	return nil
}

func (r *MemoryRepo) sortedLocked() []Log {
	out := make([]Log, 0, len(r.byID))
	for _, log := range r.byID {
		out = append(out, log)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}
