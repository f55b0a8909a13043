package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/yungbote/hrgen/internal/platform/logger"
)

type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint (tests, proxies).
	BaseURL string
}

type Message struct {
	Role    string // "user" | "assistant"
	Content string
}

type JSONRequest struct {
	System          string
	Messages        []Message
	Schema          *genai.Schema
	Temperature     *float64
	MaxOutputTokens int
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

type JSONResponse struct {
	Text  string
	Model string
	Usage Usage
}

type Client interface {
	GenerateJSON(ctx context.Context, req JSONRequest) (JSONResponse, error)
	Model() string
}

type client struct {
	log   *logger.Logger
	sdk   *genai.Client
	model string
}

func NewClient(ctx context.Context, log *logger.Logger, cfg Config) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if u := strings.TrimSpace(cfg.BaseURL); u != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: u}
	}
	sdk, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &client{log: log.With("service", "GeminiClient"), sdk: sdk, model: model}, nil
}

func (c *client) Model() string { return c.model }

// ErrEmptyCandidate is returned when the reply carries no text part.
var ErrEmptyCandidate = errors.New("gemini returned no text")

func (c *client) GenerateJSON(ctx context.Context, in JSONRequest) (JSONResponse, error) {
	if in.Schema == nil {
		return JSONResponse{}, errors.New("schema required")
	}
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   in.Schema,
	}
	if strings.TrimSpace(in.System) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(in.System, genai.RoleUser)
	}
	if in.Temperature != nil {
		t := float32(*in.Temperature)
		cfg.Temperature = &t
	}
	if in.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = int32(in.MaxOutputTokens)
	}

	contents := make([]*genai.Content, 0, len(in.Messages))
	for _, m := range in.Messages {
		role := genai.Role(genai.RoleUser)
		if m.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	start := time.Now()
	resp, err := c.sdk.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return JSONResponse{}, err
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return JSONResponse{}, ErrEmptyCandidate
	}
	out := JSONResponse{Text: text, Model: c.model}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	c.log.Debug("structured generation finished",
		"model", c.model,
		"prompt_tokens", out.Usage.InputTokens,
		"completion_tokens", out.Usage.OutputTokens,
		"elapsed", time.Since(start).String(),
	)
	return out, nil
}
