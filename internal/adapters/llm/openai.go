// Package llm provides the model-backed intent extractor.
package llm

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/xeipuuv/gojsonschema"

	"cinematch/internal/domain"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 8 * time.Second
)

//go:embed extract_schema.json
var extractSchema string

var schemaLoader = gojsonschema.NewStringLoader(extractSchema)

const systemPrompt = `You convert a movie request into search intent.
Answer with one JSON object and nothing else, using exactly these keys:
{
  "year": integer or null,
  "yearRange": {"start": integer, "end": integer} or null,
  "language": ISO-639-1 code or null,
  "region": ISO-3166-1 alpha-2 code or null,
  "genres": array of TMDB movie genre names or null,
  "excludeGenres": array of TMDB movie genre names or null,
  "moodTags": array of short mood words (cozy, sad, scary, funny, dark, romantic...) or null,
  "intent": {"top": boolean, "latest": boolean, "award": boolean} or null,
  "titleCandidate": the literal movie title if the user names one, else null,
  "subjective": true when the request is about a feeling or vibe rather than facts
}
Set only one of year and yearRange. Use null when the request gives no signal.`

// OpenAIExtractor extracts intent through an OpenAI-compatible chat completions API.
type OpenAIExtractor struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewOpenAIExtractor creates a new extractor. An empty apiKey is allowed;
// Extract then fails with domain.ErrConfiguration.
func NewOpenAIExtractor(apiKey, baseURL, model string, timeout time.Duration) *OpenAIExtractor {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OpenAIExtractor{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Extract asks the model for the intent of query.
func (a *OpenAIExtractor) Extract(ctx context.Context, query string) (*domain.LLMExtract, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("openai api key: %w", domain.ErrConfiguration)
	}

	content, err := a.complete(ctx, query)
	if err != nil {
		return nil, err
	}
	return decodeExtract(content)
}

func (a *OpenAIExtractor) complete(ctx context.Context, query string) (string, error) {
	reqBody := chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: query},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling chat completions: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading chat completion: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completions returned status %d", resp.StatusCode)
	}

	var completion chatResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("decoding chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion has no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

// decodeExtract parses and validates the model answer.
func decodeExtract(content string) (*domain.LLMExtract, error) {
	content = stripFence(strings.TrimSpace(content))
	if !json.Valid([]byte(content)) {
		return nil, fmt.Errorf("%w: %.80q", domain.ErrParse, content)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractSchema, err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrExtractSchema, strings.Join(problems, "; "))
	}

	var extract domain.LLMExtract
	if err := json.Unmarshal([]byte(content), &extract); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractSchema, err)
	}
	return &extract, nil
}

// stripFence removes a surrounding markdown code fence.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
