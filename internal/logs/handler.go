package logs

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the logs service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches log routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/logs", h.create)
	rg.GET("/logs", h.list)
	rg.GET("/logs/:id", h.get)
	rg.PATCH("/logs/:id/feedback", h.patchFeedback)
	rg.DELETE("/logs/:id", h.remove)
}

type createLogRequest struct {
	RequestID string  `json:"request_id" binding:"required"`
	UserID    string  `json:"user_id" binding:"required"`
	Query     *string `json:"query"`
}

func (h *Handler) create(c *gin.Context) {
	var req createLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "request_id and user_id are required", nil)
		return
	}

	// New logs always start processing; terminal states are only ever
	// written by the analysis task.
	log, err := h.Svc.Create(c.Request.Context(), Log{
		RequestID: req.RequestID,
		UserID:    req.UserID,
		Timestamp: time.Now().UTC(),
		Query:     req.Query,
		Status:    StatusProcessing,
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create log", nil)
		return
	}

	respond.JSON(c, http.StatusCreated, log)
}

func (h *Handler) get(c *gin.Context) {
	logID := c.Param("id")
	c.Set("logId", logID)

	log, err := h.Svc.Get(c.Request.Context(), logID)
	if err != nil {
		h.respondError(c, err, "failed to fetch log")
		return
	}
	respond.OK(c, log)
}

func (h *Handler) list(c *gin.Context) {
	skip := queryInt(c, "skip", 0)
	limit := queryInt(c, "limit", defaultPageLimit)

	page, err := h.Svc.List(c.Request.Context(), skip, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list logs", nil)
		return
	}
	respond.OK(c, page)
}

type feedbackRequest struct {
	Feedback *bool `json:"feedback" binding:"required"`
}

func (h *Handler) patchFeedback(c *gin.Context) {
	logID := c.Param("id")
	c.Set("logId", logID)

	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Feedback == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "feedback is required", nil)
		return
	}

	log, err := h.Svc.PatchFeedback(c.Request.Context(), logID, *req.Feedback)
	if err != nil {
		h.respondError(c, err, "failed to patch feedback")
		return
	}
	respond.OK(c, log)
}

func (h *Handler) remove(c *gin.Context) {
	logID := c.Param("id")
	c.Set("logId", logID)

	if err := h.Svc.Delete(c.Request.Context(), logID); err != nil {
		h.respondError(c, err, "failed to delete log")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidID):
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid log id", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "log not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
