package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OCRClient calls an OCR sidecar that turns raster images into text.
// The sidecar accepts the raw image as the request body and answers with a
// JSON object {"text": "..."} holding the page text, newline-separated.
type OCRClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOCRClient constructs an OCR client for the given base URL.
func NewOCRClient(baseURL string, timeout time.Duration) *OCRClient {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OCRClient{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type ocrResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// Recognize submits the image and returns the recognized text.
func (c *OCRClient) Recognize(ctx context.Context, image []byte, mimeType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ocr", bytes.NewReader(image))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mimeType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("ocr request timeout: %w", err)
		}
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ocr http status %d", resp.StatusCode)
	}

	var parsed ocrResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("ocr response parse: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("ocr error: %s", parsed.Error)
	}
	return strings.TrimSpace(parsed.Text), nil
}
