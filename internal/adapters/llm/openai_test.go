package llm_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"cinematch/internal/adapters/llm"
	"cinematch/internal/domain"
	"cinematch/test/fixtures"
)

func newServer(t *testing.T, content string, status int) (*httptest.Server, *map[string]any) {
	t.Helper()
	captured := map[string]any{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		captured["_path"] = r.URL.Path
		captured["_auth"] = r.Header.Get("Authorization")
		w.WriteHeader(status)
		w.Write([]byte(fixtures.GenerateChatCompletion(content)))
	}))
	t.Cleanup(server.Close)
	return server, &captured
}

func TestExtract_ValidAnswer(t *testing.T) {
	// Arrange
	server, captured := newServer(t, fixtures.GenerateSadNinetiesExtract(), http.StatusOK)
	extractor := llm.NewOpenAIExtractor("sk-test", server.URL, "", time.Second)

	// Act
	extract, err := extractor.Extract(context.Background(), "sad movies from the 90s")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if extract.YearRange == nil || extract.YearRange.Start != 1990 || extract.YearRange.End != 1999 {
		t.Errorf("YearRange: got %+v", extract.YearRange)
	}
	if extract.Year != nil || extract.Language != nil || extract.TitleCandidate != nil {
		t.Errorf("expected null fields to stay nil: %+v", extract)
	}
	if len(extract.MoodTags) != 1 || extract.MoodTags[0] != "sad" {
		t.Errorf("MoodTags: got %v", extract.MoodTags)
	}
	if extract.Subjective == nil || !*extract.Subjective {
		t.Errorf("Subjective: got %v", extract.Subjective)
	}

	c := *captured
	if c["_path"] != "/chat/completions" {
		t.Errorf("path: got %v", c["_path"])
	}
	if c["_auth"] != "Bearer sk-test" {
		t.Errorf("Authorization: got %v", c["_auth"])
	}
	if c["model"] != llm.DefaultModel {
		t.Errorf("model: got %v", c["model"])
	}
	format, _ := c["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Errorf("response_format: got %v", c["response_format"])
	}
}

func TestExtract_FencedAnswer(t *testing.T) {
	server, _ := newServer(t, "```json\n{\"titleCandidate\": \"Heat\"}\n```", http.StatusOK)
	extractor := llm.NewOpenAIExtractor("sk-test", server.URL, "", time.Second)

	extract, err := extractor.Extract(context.Background(), "heat")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if extract.TitleCandidate == nil || *extract.TitleCandidate != "Heat" {
		t.Errorf("TitleCandidate: got %v", extract.TitleCandidate)
	}
}

func TestExtract_NonJSONAnswer_ReturnsParseError(t *testing.T) {
	server, _ := newServer(t, "Sure! Here are some sad movies from the 90s:", http.StatusOK)
	extractor := llm.NewOpenAIExtractor("sk-test", server.URL, "", time.Second)

	_, err := extractor.Extract(context.Background(), "sad movies from the 90s")

	if !errors.Is(err, domain.ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
}

func TestExtract_SchemaViolation_ReturnsSchemaError(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"year as string", `{"year": "1999"}`},
		{"genres as string", `{"genres": "Drama"}`},
		{"range without end", `{"yearRange": {"start": 1990}}`},
		{"not an object", `["Drama"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newServer(t, tt.content, http.StatusOK)
			extractor := llm.NewOpenAIExtractor("sk-test", server.URL, "", time.Second)

			_, err := extractor.Extract(context.Background(), "query")

			if !errors.Is(err, domain.ErrExtractSchema) {
				t.Errorf("expected ErrExtractSchema, got %v", err)
			}
		})
	}
}

func TestExtract_MissingKey_ReturnsConfigurationError(t *testing.T) {
	extractor := llm.NewOpenAIExtractor("", "http://127.0.0.1:0", "", time.Second)

	_, err := extractor.Extract(context.Background(), "anything")

	if !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestExtract_ErrorStatus_IsTransportError(t *testing.T) {
	server, _ := newServer(t, "{}", http.StatusTooManyRequests)
	extractor := llm.NewOpenAIExtractor("sk-test", server.URL, "", time.Second)

	_, err := extractor.Extract(context.Background(), "anything")

	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status error, got %v", err)
	}
	if errors.Is(err, domain.ErrParse) {
		t.Error("status errors must not be reported as parse errors")
	}
}
