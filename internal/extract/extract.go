// Package extract converts stored résumé documents into plain text. The
// extractor owns the stored object's lifecycle: after a single extraction
// attempt, success or failure, the object is deleted and the storage key must
// not be reused by callers.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ledongthuc/pdf"

	"resume-matcher/internal/shared/storage/object"
	"resume-matcher/internal/shared/telemetry"
)

const (
	mimePDF  = "application/pdf"
	mimeJPEG = "image/jpeg"
	mimePNG  = "image/png"
)

// ExtractionError reports an unreadable or unsupported source document.
type ExtractionError struct {
	StorageKey string
	Err        error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.StorageKey, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extractor pulls text out of stored documents. OCR handles raster images
// and may be nil, in which case image uploads fail extraction.
type Extractor struct {
	Store object.ObjectStore
	OCR   *OCRClient
}

// ExtractText reads the object at storageKey, extracts UTF-8 plain text, and
// deletes the object regardless of outcome.
func (e *Extractor) ExtractText(ctx context.Context, storageKey string) (string, error) {
	defer func() {
		if err := e.Store.Delete(context.WithoutCancel(ctx), storageKey); err != nil {
			telemetry.Error("extract.delete_failed", map[string]any{
				"storage_key": storageKey,
				"error":       err.Error(),
			})
		}
	}()

	body, err := e.Store.Open(ctx, storageKey)
	if err != nil {
		return "", &ExtractionError{StorageKey: storageKey, Err: err}
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", &ExtractionError{StorageKey: storageKey, Err: fmt.Errorf("read: %w", err)}
	}

	text, err := e.extractBytes(ctx, raw)
	if err != nil {
		return "", &ExtractionError{StorageKey: storageKey, Err: err}
	}
	return strings.TrimSpace(text), nil
}

func (e *Extractor) extractBytes(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty document")
	}

	mimeType := sniffMimeType(data)
	switch mimeType {
	case mimePDF:
		return extractPDF(data)
	case mimeJPEG, mimePNG:
		if e.OCR == nil {
			return "", fmt.Errorf("no OCR backend configured for %s", mimeType)
		}
		return e.OCR.Recognize(ctx, data, mimeType)
	default:
		if strings.HasPrefix(mimeType, "text/") {
			return string(data), nil
		}
		return "", fmt.Errorf("unsupported mime type: %s", mimeType)
	}
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func sniffMimeType(data []byte) string {
	detected := http.DetectContentType(data)
	return strings.ToLower(strings.TrimSpace(strings.Split(detected, ";")[0]))
}
