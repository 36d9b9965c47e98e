package logs

import (
	"context"
	"testing"
	"time"

	"resume-matcher/internal/matching"
)

func TestMemoryRepoFieldLevelUpdates(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	if err := repo.Create(ctx, Log{ID: "log-1", RequestID: "req-1", UserID: "user-1", Status: StatusProcessing}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.UpdateFeedback(ctx, "log-1", true); err != nil {
		t.Fatalf("UpdateFeedback: %v", err)
	}

	result := &AnalysisResult{Resumes: []matching.SummaryResume{{CandidateName: "Jane"}}}
	if err := repo.UpdateStatusResult(ctx, "log-1", StatusProcessed, result); err != nil {
		t.Fatalf("UpdateStatusResult: %v", err)
	}

	log, err := repo.GetByID(ctx, "log-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if log.Status != StatusProcessed || log.Result == nil {
		t.Fatalf("terminal write lost: %+v", log)
	}
	if log.Feedback == nil || !*log.Feedback {
		t.Fatalf("feedback lost by status write: %+v", log.Feedback)
	}
}

func TestMemoryRepoMissingLog(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "nope"); err != ErrNotFound {
		t.Fatalf("GetByID: expected ErrNotFound, got %v", err)
	}
	if err := repo.UpdateStatusResult(ctx, "nope", StatusProcessed, nil); err != ErrNotFound {
		t.Fatalf("UpdateStatusResult: expected ErrNotFound, got %v", err)
	}
	if err := repo.UpdateFeedback(ctx, "nope", true); err != ErrNotFound {
		t.Fatalf("UpdateFeedback: expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "nope"); err != ErrNotFound {
		t.Fatalf("Delete: expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepoPaginationOrdering(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ids := []string{"a", "b", "c", "d", "e"}
	for i, id := range ids {
		if err := repo.Create(ctx, Log{
			ID:        id,
			RequestID: "req",
			UserID:    "user",
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Status:    StatusProcessing,
		}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	page, err := repo.ListPaginated(ctx, 1, 2)
	if err != nil {
		t.Fatalf("ListPaginated: %v", err)
	}
	if page.Total != 5 {
		t.Fatalf("expected total 5, got %d", page.Total)
	}
	// Newest first: e, d, c, b, a. Skip 1, take 2 -> d, c.
	if len(page.Data) != 2 || page.Data[0].ID != "d" || page.Data[1].ID != "c" {
		t.Fatalf("unexpected page data: %+v", page.Data)
	}

	page, err = repo.ListPaginated(ctx, 10, 2)
	if err != nil {
		t.Fatalf("ListPaginated past end: %v", err)
	}
	if len(page.Data) != 0 {
		t.Fatalf("expected empty page past end, got %+v", page.Data)
	}
}
