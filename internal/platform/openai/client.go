package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/hrgen/internal/platform/logger"
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// Models listed here never receive a temperature (reasoning models reject it).
	// A trailing "*" matches by prefix, e.g. "o1-*".
	NoTemperatureModels []string
}

type Message struct {
	Role    string // "user" | "assistant"
	Content string
}

// JSONRequest is one structured-output call.
type JSONRequest struct {
	System          string
	Messages        []Message
	SchemaName      string
	Schema          any
	Strict          bool
	Temperature     *float64
	MaxOutputTokens int
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

// JSONResponse carries the raw output text; decoding is the caller's job.
type JSONResponse struct {
	Text  string
	Model string
	Usage Usage
}

// Client is the OpenAI API client used by the generators.
type Client interface {
	GenerateJSON(ctx context.Context, req JSONRequest) (JSONResponse, error)
	Model() string
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client

	noTempModels   map[string]bool
	noTempPrefixes []string
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	noTempModels, noTempPrefixes := parseNoTempModelRules(cfg.NoTemperatureModels)

	return &client{
		log:            log.With("service", "OpenAIClient"),
		baseURL:        baseURL,
		apiKey:         apiKey,
		model:          model,
		httpClient:     &http.Client{Timeout: timeout},
		noTempModels:   noTempModels,
		noTempPrefixes: noTempPrefixes,
	}, nil
}

func (c *client) Model() string { return c.model }

func normalizeModelKey(m string) string {
	return strings.ToLower(strings.TrimSpace(m))
}

func parseNoTempModelRules(rules []string) (map[string]bool, []string) {
	m := map[string]bool{}
	var prefixes []string
	for _, part := range rules {
		s := normalizeModelKey(part)
		if s == "" {
			continue
		}
		if strings.HasSuffix(s, "*") {
			p := strings.TrimSpace(strings.TrimRight(strings.TrimSuffix(s, "*"), "-_./:"))
			if p != "" {
				prefixes = append(prefixes, p)
			}
			continue
		}
		m[s] = true
	}
	return m, prefixes
}

func (c *client) modelIsNoTemp(model string) bool {
	m := normalizeModelKey(model)
	if m == "" {
		return false
	}
	if c.noTempModels[m] {
		return true
	}
	for _, p := range c.noTempPrefixes {
		if strings.HasPrefix(m, p) {
			return true
		}
	}
	return false
}

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *openAIHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

type inputMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type responsesRequest struct {
	Model string         `json:"model"`
	Input []inputMessage `json:"input"`

	Text struct {
		Format map[string]any `json:"format,omitempty"`
	} `json:"text,omitempty"`

	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"max_output_tokens,omitempty"`
}

type responsesResponse struct {
	Model  string `json:"model"`
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type    string `json:"type"`
			Text    string `json:"text,omitempty"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Usage struct {
		InputTokens      int `json:"input_tokens"`
		OutputTokens     int `json:"output_tokens"`
		TotalTokens      int `json:"total_tokens"`
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage,omitempty"`
}

func extractOutputText(resp responsesResponse) (text string, refusal string) {
	var out, ref strings.Builder
	for _, item := range resp.Output {
		if item.Type != "message" || item.Role != "assistant" {
			continue
		}
		for _, c := range item.Content {
			switch c.Type {
			case "output_text":
				out.WriteString(c.Text)
			case "refusal":
				ref.WriteString(c.Refusal)
			}
		}
	}
	return out.String(), ref.String()
}

func usageFrom(resp responsesResponse) Usage {
	u := Usage{InputTokens: resp.Usage.InputTokens, OutputTokens: resp.Usage.OutputTokens}
	if u.InputTokens == 0 && u.OutputTokens == 0 {
		u.InputTokens = resp.Usage.PromptTokens
		u.OutputTokens = resp.Usage.CompletionTokens
	}
	if u.InputTokens == 0 && u.OutputTokens == 0 && resp.Usage.TotalTokens > 0 {
		u.InputTokens = resp.Usage.TotalTokens
	}
	return u
}

// ErrRefused is returned when the model declines to answer.
var ErrRefused = errors.New("model refused")

func (c *client) GenerateJSON(ctx context.Context, in JSONRequest) (JSONResponse, error) {
	if strings.TrimSpace(in.SchemaName) == "" {
		return JSONResponse{}, errors.New("schemaName required")
	}
	if in.Schema == nil {
		return JSONResponse{}, errors.New("schema required")
	}

	req := responsesRequest{Model: c.model, MaxOutputTokens: in.MaxOutputTokens}
	if strings.TrimSpace(in.System) != "" {
		req.Input = append(req.Input, inputMessage{Role: "system", Content: in.System})
	}
	for _, m := range in.Messages {
		role := strings.TrimSpace(m.Role)
		if role == "" {
			role = "user"
		}
		req.Input = append(req.Input, inputMessage{Role: role, Content: m.Content})
	}
	if in.Temperature != nil && !c.modelIsNoTemp(req.Model) {
		req.Temperature = in.Temperature
	}
	req.Text.Format = map[string]any{
		"type":   "json_schema",
		"name":   in.SchemaName,
		"schema": in.Schema,
		"strict": in.Strict,
	}

	start := time.Now()
	var resp responsesResponse
	if err := c.do(ctx, http.MethodPost, "/v1/responses", &req, &resp); err != nil {
		return JSONResponse{}, err
	}

	text, refusal := extractOutputText(resp)
	if refusal != "" {
		return JSONResponse{}, fmt.Errorf("%w: %s", ErrRefused, refusal)
	}
	out := JSONResponse{Text: text, Model: resp.Model, Usage: usageFrom(resp)}
	if out.Model == "" {
		out.Model = c.model
	}
	c.log.Debug("structured generation finished",
		"schema", in.SchemaName,
		"model", out.Model,
		"prompt_tokens", out.Usage.InputTokens,
		"completion_tokens", out.Usage.OutputTokens,
		"elapsed", time.Since(start).String(),
	)
	return out, nil
}

func (c *client) do(ctx context.Context, method, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("openai decode error: %w; raw=%s", err, truncate(string(raw), 512))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(" + strconv.Itoa(len(s)-n) + " more bytes)"
}
