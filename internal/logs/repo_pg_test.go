package logs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"resume-matcher/internal/matching"
)

func newPGRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newPGRepo(t)

	query := "go backend"
	log := Log{
		ID:        "log-1",
		RequestID: "req-1",
		UserID:    "user-1",
		Timestamp: time.Now().UTC(),
		Query:     &query,
		Status:    StatusProcessing,
	}

	mock.ExpectExec("INSERT INTO logs").
		WithArgs(log.ID, log.RequestID, log.UserID, log.Timestamp, log.Query, log.Status, nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), log); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateStatusResultWritesOnlyStatusAndResult(t *testing.T) {
	repo, mock := newPGRepo(t)

	result := &AnalysisResult{Resumes: []matching.SummaryResume{{CandidateName: "Jane", Summary: "go", Score: 0.8}}}
	mock.ExpectExec(`UPDATE logs SET status = \$2, result = \$3 WHERE id = \$1`).
		WithArgs("log-1", StatusProcessed, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateStatusResult(context.Background(), "log-1", StatusProcessed, result); err != nil {
		t.Fatalf("UpdateStatusResult: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateStatusResultMissingRow(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectExec(`UPDATE logs SET status = \$2, result = \$3 WHERE id = \$1`).
		WithArgs("log-1", StatusProcessingFailed, nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatusResult(context.Background(), "log-1", StatusProcessingFailed, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpdateFeedback(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectExec(`UPDATE logs SET feedback = \$2 WHERE id = \$1`).
		WithArgs("log-1", true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateFeedback(context.Background(), "log-1", true); err != nil {
		t.Fatalf("UpdateFeedback: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByID(t *testing.T) {
	repo, mock := newPGRepo(t)

	just := "Jane fits best."
	payload, err := json.Marshal(AnalysisResult{
		Resumes:       []matching.SummaryResume{{CandidateName: "Jane", Summary: "go", Score: 0.8}},
		Justification: &just,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "request_id", "user_id", "ts", "query", "status", "result", "feedback"}).
		AddRow("log-1", "req-1", "user-1", ts, "go backend", StatusProcessed, payload, true)
	mock.ExpectQuery("SELECT id, request_id, user_id, ts, query, status, result, feedback").
		WithArgs("log-1").
		WillReturnRows(rows)

	log, err := repo.GetByID(context.Background(), "log-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if log.Status != StatusProcessed {
		t.Fatalf("unexpected status %s", log.Status)
	}
	if log.Query == nil || *log.Query != "go backend" {
		t.Fatalf("unexpected query: %v", log.Query)
	}
	if log.Result == nil || len(log.Result.Resumes) != 1 || log.Result.Justification == nil {
		t.Fatalf("unexpected result: %+v", log.Result)
	}
	if log.Feedback == nil || !*log.Feedback {
		t.Fatalf("unexpected feedback: %v", log.Feedback)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectQuery("SELECT id, request_id, user_id, ts, query, status, result, feedback").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "request_id", "user_id", "ts", "query", "status", "result", "feedback"}))

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListPaginated(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM logs`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "request_id", "user_id", "ts", "query", "status", "result", "feedback"}).
		AddRow("log-2", "req-2", "user-1", ts, nil, StatusProcessing, nil, nil)
	mock.ExpectQuery("SELECT id, request_id, user_id, ts, query, status, result, feedback").
		WithArgs(1, 1).
		WillReturnRows(rows)

	page, err := repo.ListPaginated(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("ListPaginated: %v", err)
	}
	if page.Total != 3 || page.Skip != 1 || page.Limit != 1 || len(page.Data) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Data[0].Query != nil || page.Data[0].Result != nil || page.Data[0].Feedback != nil {
		t.Fatalf("nullable columns must stay nil: %+v", page.Data[0])
	}
}
