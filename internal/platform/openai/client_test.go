package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yungbote/hrgen/internal/platform/logger"
)

const okBody = `{
  "model": "gpt-4o-2024-08-06",
  "output": [
    {"type": "message", "role": "assistant", "content": [{"type": "output_text", "text": "{\"job_title\":\"Data Analyst\"}"}]}
  ],
  "usage": {"input_tokens": 120, "output_tokens": 45, "total_tokens": 165}
}`

func newTestClient(t *testing.T, srv *httptest.Server, noTemp ...string) Client {
	t.Helper()
	c, err := NewClient(logger.Nop(), Config{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-4o", NoTemperatureModels: noTemp})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestGenerateJSONRequestAndUsage(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("path: want=/v1/responses got=%q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("authorization header missing")
		}
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &got)
		_, _ = w.Write([]byte(okBody))
	}))
	defer srv.Close()

	temp := 0.0
	resp, err := newTestClient(t, srv).GenerateJSON(context.Background(), JSONRequest{
		System:          "sys",
		Messages:        []Message{{Role: "user", Content: "job_title: Data Analyst"}},
		SchemaName:      "job_description",
		Schema:          map[string]any{"type": "object"},
		Strict:          true,
		Temperature:     &temp,
		MaxOutputTokens: 4048,
	})
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if resp.Text != `{"job_title":"Data Analyst"}` {
		t.Fatalf("text: got %q", resp.Text)
	}
	if resp.Usage.InputTokens != 120 || resp.Usage.OutputTokens != 45 {
		t.Fatalf("usage: got %+v", resp.Usage)
	}

	input, _ := got["input"].([]any)
	if len(input) != 2 {
		t.Fatalf("input: want=2 messages got=%d", len(input))
	}
	format := got["text"].(map[string]any)["format"].(map[string]any)
	if format["type"] != "json_schema" || format["name"] != "job_description" || format["strict"] != true {
		t.Fatalf("format: got %v", format)
	}
	if _, ok := got["temperature"]; !ok {
		t.Fatalf("temperature: want present")
	}
	if got["max_output_tokens"] != float64(4048) {
		t.Fatalf("max_output_tokens: got %v", got["max_output_tokens"])
	}
}

func TestGenerateJSONOmitsTemperatureForListedModels(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &got)
		_, _ = w.Write([]byte(okBody))
	}))
	defer srv.Close()

	temp := 1.0
	_, err := newTestClient(t, srv, "gpt-4*").GenerateJSON(context.Background(), JSONRequest{
		SchemaName:  "s",
		Schema:      map[string]any{},
		Temperature: &temp,
	})
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if _, ok := got["temperature"]; ok {
		t.Fatalf("temperature: want omitted got %v", got["temperature"])
	}
}

func TestGenerateJSONHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).GenerateJSON(context.Background(), JSONRequest{SchemaName: "s", Schema: map[string]any{}})
	var httpErr *openAIHTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("want *openAIHTTPError got %v", err)
	}
	if httpErr.HTTPStatusCode() != http.StatusTooManyRequests {
		t.Fatalf("status: want=429 got=%d", httpErr.HTTPStatusCode())
	}
}

func TestGenerateJSONRefusal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":[{"type":"message","role":"assistant","content":[{"type":"refusal","refusal":"no"}]}]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).GenerateJSON(context.Background(), JSONRequest{SchemaName: "s", Schema: map[string]any{}})
	if !errors.Is(err, ErrRefused) {
		t.Fatalf("want ErrRefused got %v", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(logger.Nop(), Config{}); err == nil {
		t.Fatalf("want error for missing key")
	}
}
