package logs

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newLogsRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := &Service{Repo: NewMemoryRepo()}
	router := gin.New()
	api := router.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(api)
	return router, svc
}

func TestHandlerCreateLog(t *testing.T) {
	router, _ := newLogsRouter(t)

	body := bytes.NewBufferString(`{"request_id": "req-1", "user_id": "user-1", "query": "go dev"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/logs", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created Log
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Status != StatusProcessing {
		t.Fatalf("expected PROCESSING, got %s", created.Status)
	}
	if created.Query == nil || *created.Query != "go dev" {
		t.Fatalf("unexpected query: %v", created.Query)
	}
}

func TestHandlerCreateLogIgnoresClientStatus(t *testing.T) {
	router, svc := newLogsRouter(t)

	body := bytes.NewBufferString(`{"request_id": "req-1", "user_id": "user-1", "status": "PROCESSED"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/logs", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created Log
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Status != StatusProcessing {
		t.Fatalf("client-supplied status must not stick, got %s", created.Status)
	}

	stored, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Status != StatusProcessing || stored.Result != nil {
		t.Fatalf("stored log must be PROCESSING with nil result, got status=%s result=%v", stored.Status, stored.Result)
	}
}

func TestHandlerCreateLogMissingFields(t *testing.T) {
	router, _ := newLogsRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/logs", bytes.NewBufferString(`{"user_id": "user-1"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestHandlerGetLog(t *testing.T) {
	router, svc := newLogsRouter(t)
	created, err := svc.Create(context.Background(), Log{RequestID: "req-1", UserID: "user-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs/"+created.ID, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var got Log
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("unexpected log: %+v", got)
	}
}

func TestHandlerGetLogErrors(t *testing.T) {
	router, _ := newLogsRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs/not-a-uuid", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/logs/"+uuid.NewString(), nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", resp.Code)
	}
}

func TestHandlerListLogsPagination(t *testing.T) {
	router, svc := newLogsRouter(t)
	for i := 0; i < 3; i++ {
		if _, err := svc.Create(context.Background(), Log{RequestID: "req", UserID: "user"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/logs?skip=1&limit=1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var page Page
	if err := json.Unmarshal(resp.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if page.Total != 3 || page.Skip != 1 || page.Limit != 1 || len(page.Data) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestHandlerPatchFeedback(t *testing.T) {
	router, svc := newLogsRouter(t)
	created, err := svc.Create(context.Background(), Log{RequestID: "req-1", UserID: "user-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	body := bytes.NewBufferString(`{"feedback": false}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/logs/"+created.ID+"/feedback", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var got Log
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Feedback == nil || *got.Feedback {
		t.Fatalf("expected feedback false, got %v", got.Feedback)
	}
}

func TestHandlerPatchFeedbackRequiresBody(t *testing.T) {
	router, svc := newLogsRouter(t)
	created, err := svc.Create(context.Background(), Log{RequestID: "req-1", UserID: "user-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/logs/"+created.ID+"/feedback", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestHandlerDeleteLog(t *testing.T) {
	router, svc := newLogsRouter(t)
	created, err := svc.Create(context.Background(), Log{RequestID: "req-1", UserID: "user-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/logs/"+created.ID, nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}

	if _, err := svc.Get(context.Background(), created.ID); err == nil {
		t.Fatal("expected log to be gone")
	}
}
