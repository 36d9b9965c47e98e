package submissions

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resume-matcher/internal/shared/server/respond"
	"resume-matcher/internal/shared/telemetry"
)

const maxUploadBytes = 10 << 20

var allowedContentTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
}

// Handler exposes the submission endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches submission routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze-resume", h.submit)
}

func (h *Handler) submit(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart form is required", nil)
		return
	}

	requestID := strings.TrimSpace(c.PostForm("request_id"))
	userID := strings.TrimSpace(c.PostForm("user_id"))
	if _, err := uuid.Parse(requestID); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "request_id must be a valid UUID", nil)
		return
	}
	if _, err := uuid.Parse(userID); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "user_id must be a valid UUID", nil)
		return
	}

	var query *string
	if q := strings.TrimSpace(c.PostForm("query")); q != "" {
		query = &q
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "at least one file is required", nil)
		return
	}
	for _, fh := range headers {
		if err := validateFileHeader(fh); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), []map[string]string{
				{"field": "files", "issue": fh.Filename},
			})
			return
		}
	}

	files := make([]File, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, fh := range headers {
		f, openErr := fh.Open()
		if openErr != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unreadable file upload", nil)
			return
		}
		opened = append(opened, f)
		files = append(files, File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Reader:      f,
		})
	}

	log, err := h.Svc.Submit(c.Request.Context(), SubmitInput{
		RequestID: requestID,
		UserID:    userID,
		Query:     query,
		Files:     files,
	})
	if err != nil {
		telemetry.Error("submissions.submit_error", map[string]any{
			"request_id": requestID,
			"error":      err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to accept submission", nil)
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"log_id":  log.ID,
		"status":  log.Status,
		"message": "analysis accepted",
	})
}

func validateFileHeader(fh *multipart.FileHeader) error {
	contentType := strings.TrimSpace(fh.Header.Get("Content-Type"))
	if _, ok := allowedContentTypes[contentType]; !ok {
		return errUnsupportedType(contentType)
	}
	if fh.Size <= 0 || fh.Size > maxUploadBytes {
		return errFileSize{}
	}
	return nil
}

type errUnsupportedType string

func (e errUnsupportedType) Error() string {
	return "unsupported content type " + string(e) + "; expected application/pdf, image/jpeg or image/png"
}

type errFileSize struct{}

func (errFileSize) Error() string { return "file size must be between 1 byte and 10 MiB" }
