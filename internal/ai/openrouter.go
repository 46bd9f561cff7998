package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mrlokans/bordereaux/internal/canonical"
)

// ErrDisabled is returned by the disabled stub.
var ErrDisabled = errors.New("ai suggestions are not configured")

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultModel   = "openai/gpt-4o-mini"
	defaultTimeout = 30 * time.Second
	maxSampleRows  = 3
)

// OpenRouterClient calls the OpenRouter chat-completions API.
type OpenRouterClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option customizes an OpenRouterClient.
type Option func(*OpenRouterClient)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *OpenRouterClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL overrides the API endpoint (used by tests).
func WithBaseURL(url string) Option {
	return func(c *OpenRouterClient) {
		if url != "" {
			c.baseURL = strings.TrimSuffix(url, "/")
		}
	}
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *OpenRouterClient) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewOpenRouterClient creates a client for the OpenRouter API.
func NewOpenRouterClient(apiKey string, opts ...Option) *OpenRouterClient {
	c := &OpenRouterClient{
		apiKey:  apiKey,
		model:   defaultModel,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *OpenRouterClient) Enabled() bool { return c.apiKey != "" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// modelOutput is the JSON shape the prompt asks the model to produce.
type modelOutput struct {
	Mappings         map[string]string  `json:"mappings"`          // raw header -> canonical field
	ConfidenceScores map[string]float64 `json:"confidence_scores"` // raw header -> [0,1]
}

// SuggestMapping asks the model for a header mapping and parses the answer
// defensively: unknown canonical fields and headers not present in the file
// are discarded, and every kept pairing must carry a confidence in [0,1].
func (c *OpenRouterClient) SuggestMapping(ctx context.Context, headers []string, sampleRows []map[string]string) (map[string]Suggestion, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You map insurance bordereaux file columns to standardized field names. Respond with valid JSON only."},
			{Role: "user", Content: buildPrompt(headers, sampleRows)},
		},
		Temperature: 0.3,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call suggestion model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("suggestion model returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("suggestion model returned no choices")
	}

	return parseModelOutput(parsed.Choices[0].Message.Content, headers)
}

// parseModelOutput validates the untrusted model answer against the known
// schema and the file's actual headers.
func parseModelOutput(content string, headers []string) (map[string]Suggestion, error) {
	content = stripCodeFence(content)

	var out modelOutput
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("parse model output: %w", err)
	}
	if len(out.Mappings) == 0 {
		return nil, fmt.Errorf("model output contains no mappings")
	}

	headerSet := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		headerSet[h] = struct{}{}
	}

	result := make(map[string]Suggestion)
	for header, field := range out.Mappings {
		if !canonical.IsField(field) {
			continue
		}
		if _, ok := headerSet[header]; !ok {
			continue
		}
		confidence, ok := out.ConfidenceScores[header]
		if !ok || confidence < 0 || confidence > 1 {
			continue
		}
		// Keep the higher-confidence pairing when the model maps two
		// headers to the same canonical field; equal confidence breaks
		// the tie on the lexicographically smaller header so repeated
		// parses of the same answer agree.
		if existing, ok := result[field]; ok {
			if existing.Confidence > confidence {
				continue
			}
			if existing.Confidence == confidence && existing.SourceHeader <= header {
				continue
			}
		}
		result[field] = Suggestion{SourceHeader: header, Confidence: confidence}
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("model output contained no usable mappings")
	}
	return result, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func buildPrompt(headers []string, sampleRows []map[string]string) string {
	var b strings.Builder

	b.WriteString("The file has the following columns:\n")
	for _, h := range headers {
		fmt.Fprintf(&b, "- %s\n", h)
	}

	b.WriteString("\nAvailable canonical fields:\n")
	for _, f := range canonical.Fields() {
		fmt.Fprintf(&b, "- %s: %s\n", f.Name, f.Description)
	}

	if len(sampleRows) > 0 {
		limit := len(sampleRows)
		if limit > maxSampleRows {
			limit = maxSampleRows
		}
		b.WriteString("\nSample row values:\n")
		for _, row := range sampleRows[:limit] {
			if data, err := json.Marshal(row); err == nil {
				b.Write(data)
				b.WriteString("\n")
			}
		}
	}

	b.WriteString(`
Map each file column to the most appropriate canonical field. Return a JSON object:
{
  "mappings": {"column name": "canonical_field_name"},
  "confidence_scores": {"column name": 0.95}
}
Only map columns with a clear match, keep confidence scores between 0.0 and 1.0,
and omit columns that match no canonical field. Return ONLY the JSON object.`)

	return b.String()
}
