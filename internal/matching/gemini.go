package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	geminiProvider = "gemini"

	geminiDefaultTopK      = 5
	geminiDefaultThreshold = 0.5
)

// Gemini implements Strategy against the hosted Gemini API.
type Gemini struct {
	client      *genai.Client
	model       string
	embedModel  string
	rank        RankConfig
	callTimeout time.Duration
}

// NewGemini constructs a Gemini-backed strategy.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	apiKey := strings.TrimSpace(cfg.GeminiAPIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(cfg.GeminiModel)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	embedModel := strings.TrimSpace(cfg.GeminiEmbedModel)
	if embedModel == "" {
		embedModel = "text-embedding-004"
	}

	return &Gemini{
		client:      client,
		model:       model,
		embedModel:  embedModel,
		rank:        cfg.Rank.withDefaults(geminiDefaultTopK, geminiDefaultThreshold),
		callTimeout: callTimeout(cfg),
	}, nil
}

var geminiSummarySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"candidate_name": {Type: genai.TypeString, Description: candidateNameDescription},
		"summary":        {Type: genai.TypeString, Description: summaryDescription},
	},
	Required: []string{"candidate_name", "summary"},
}

// Summarize requests a schema-constrained JSON summary.
func (g *Gemini) Summarize(ctx context.Context, documentText string) (SummaryResume, error) {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	content, err := g.generate(ctx, summarizePrompt(documentText), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   geminiSummarySchema,
	})
	if err != nil {
		return SummaryResume{}, &BackendError{Provider: geminiProvider, Op: "summarize", Err: err}
	}

	summary, err := parseSummaryJSON(content)
	if err != nil {
		return SummaryResume{}, &BackendError{Provider: geminiProvider, Op: "summarize", Err: err}
	}
	return summary, nil
}

// Rank scores resumes against the query via the embedding model.
func (g *Gemini) Rank(ctx context.Context, query string, resumes []SummaryResume) ([]SummaryResume, error) {
	return rankBySimilarity(ctx, g.embed, query, resumes, g.rank)
}

// Justify generates the best-fit explanation for the ranked resumes.
func (g *Gemini) Justify(ctx context.Context, query string, ranked []SummaryResume) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	content, err := g.generate(ctx, justifyPrompt(query, ranked), &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: justifySystemInstruction}},
		},
	})
	if err != nil {
		return "", &BackendError{Provider: geminiProvider, Op: "justify", Err: err}
	}
	return content, nil
}

func (g *Gemini) embed(ctx context.Context, text string) ([]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	resp, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, &BackendError{Provider: geminiProvider, Op: "embed", Err: err}
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, &BackendError{Provider: geminiProvider, Op: "embed", Err: errors.New("response missing embeddings")}
	}

	values := resp.Embeddings[0].Values
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out, nil
}

func (g *Gemini) generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("empty response")
	}
	return output, nil
}
