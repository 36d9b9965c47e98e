package matching

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	ollamaProvider = "ollama"

	ollamaDefaultTopK      = 3
	ollamaDefaultThreshold = 0.5
)

// Ollama implements Strategy against a self-hosted inference server.
type Ollama struct {
	baseURL    string
	chatModel  string
	embedModel string
	rank       RankConfig
	httpClient *http.Client
}

// NewOllama constructs an Ollama-backed strategy.
func NewOllama(cfg Config) *Ollama {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.OllamaBaseURL), "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	chatModel := strings.TrimSpace(cfg.OllamaChatModel)
	if chatModel == "" {
		chatModel = "llama3.2:latest"
	}
	embedModel := strings.TrimSpace(cfg.OllamaEmbedModel)
	if embedModel == "" {
		embedModel = "bge-m3"
	}

	return &Ollama{
		baseURL:    baseURL,
		chatModel:  chatModel,
		embedModel: embedModel,
		rank:       cfg.Rank.withDefaults(ollamaDefaultTopK, ollamaDefaultThreshold),
		httpClient: &http.Client{Timeout: callTimeout(cfg)},
	}
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
	Format   json.RawMessage     `json:"format,omitempty"`
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message ollamaChatMessage `json:"message"`
	Error   string            `json:"error,omitempty"`
}

type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type ollamaEmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// summaryFormat constrains the chat response to the summary schema.
var summaryFormat = json.RawMessage(fmt.Sprintf(`{
	"type": "object",
	"properties": {
		"candidate_name": {"type": "string", "description": %q},
		"summary": {"type": "string", "description": %q}
	},
	"required": ["candidate_name", "summary"]
}`, candidateNameDescription, summaryDescription))

// Summarize asks the chat endpoint for a schema-constrained summary.
func (o *Ollama) Summarize(ctx context.Context, documentText string) (SummaryResume, error) {
	reqBody := ollamaChatRequest{
		Model:    o.chatModel,
		Messages: []ollamaChatMessage{{Role: "user", Content: summarizePrompt(documentText)}},
		Stream:   false,
		Format:   summaryFormat,
	}

	var parsed ollamaChatResponse
	if err := o.post(ctx, "/api/chat", reqBody, &parsed); err != nil {
		return SummaryResume{}, &BackendError{Provider: ollamaProvider, Op: "summarize", Err: err}
	}
	if parsed.Error != "" {
		return SummaryResume{}, &BackendError{Provider: ollamaProvider, Op: "summarize", Err: errors.New(parsed.Error)}
	}

	summary, err := parseSummaryJSON(parsed.Message.Content)
	if err != nil {
		return SummaryResume{}, &BackendError{Provider: ollamaProvider, Op: "summarize", Err: err}
	}
	return summary, nil
}

// Rank scores resumes against the query via the embedding endpoint.
func (o *Ollama) Rank(ctx context.Context, query string, resumes []SummaryResume) ([]SummaryResume, error) {
	return rankBySimilarity(ctx, o.embed, query, resumes, o.rank)
}

// Justify generates the best-fit explanation for the ranked resumes.
func (o *Ollama) Justify(ctx context.Context, query string, ranked []SummaryResume) (string, error) {
	reqBody := ollamaGenerateRequest{
		Model:  o.chatModel,
		Prompt: justifySystemInstruction + "\n\n" + justifyPrompt(query, ranked),
		Stream: false,
		Options: map[string]any{
			"temperature":    0.2,
			"repeat_penalty": 1,
		},
	}

	var parsed ollamaGenerateResponse
	if err := o.post(ctx, "/api/generate", reqBody, &parsed); err != nil {
		return "", &BackendError{Provider: ollamaProvider, Op: "justify", Err: err}
	}
	if parsed.Error != "" {
		return "", &BackendError{Provider: ollamaProvider, Op: "justify", Err: errors.New(parsed.Error)}
	}

	text := strings.TrimSpace(parsed.Response)
	if text == "" {
		return "", &BackendError{Provider: ollamaProvider, Op: "justify", Err: errors.New("empty response")}
	}
	return text, nil
}

func (o *Ollama) embed(ctx context.Context, text string) ([]float64, error) {
	reqBody := ollamaEmbedRequest{Model: o.embedModel, Input: text}

	var parsed ollamaEmbedResponse
	if err := o.post(ctx, "/api/embed", reqBody, &parsed); err != nil {
		return nil, &BackendError{Provider: ollamaProvider, Op: "embed", Err: err}
	}
	if parsed.Error != "" {
		return nil, &BackendError{Provider: ollamaProvider, Op: "embed", Err: errors.New(parsed.Error)}
	}
	if len(parsed.Embeddings) == 0 || len(parsed.Embeddings[0]) == 0 {
		return nil, &BackendError{Provider: ollamaProvider, Op: "embed", Err: errors.New("response missing embeddings")}
	}
	return parsed.Embeddings[0], nil
}

func (o *Ollama) post(ctx context.Context, path string, reqBody any, out any) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return fmt.Errorf("request timeout: %w", err)
		}
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("http status %d: %s", resp.StatusCode, truncate(string(body), 256))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("response parse: %w", err)
	}
	return nil
}

// parseSummaryJSON validates the backend reply against the summary schema.
func parseSummaryJSON(content string) (SummaryResume, error) {
	var payload struct {
		CandidateName string `json:"candidate_name"`
		Summary       string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &payload); err != nil {
		return SummaryResume{}, fmt.Errorf("summary parse: %w", err)
	}
	if strings.TrimSpace(payload.CandidateName) == "" || strings.TrimSpace(payload.Summary) == "" {
		return SummaryResume{}, errors.New("summary missing candidate_name or summary")
	}
	return SummaryResume{CandidateName: payload.CandidateName, Summary: payload.Summary}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
