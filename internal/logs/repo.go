package logs

import "context"

// Page is one page of logs ordered by timestamp descending.
type Page struct {
	Total int   `json:"total"`
	Skip  int   `json:"skip"`
	Limit int   `json:"limit"`
	Data  []Log `json:"data"`
}

// Repo defines persistence operations for logs. Updates are field-level on
// purpose: the task writes status/result while feedback may be patched
// concurrently, and neither writer may clobber the other.
type Repo interface {
	Create(ctx context.Context, log Log) error
	GetByID(ctx context.Context, logID string) (Log, error)
	UpdateStatusResult(ctx context.Context, logID, status string, result *AnalysisResult) error
	UpdateFeedback(ctx context.Context, logID string, feedback bool) error
	ListAll(ctx context.Context) ([]Log, error)
	ListPaginated(ctx context.Context, skip, limit int) (Page, error)
	Delete(ctx context.Context, logID string) error
}
