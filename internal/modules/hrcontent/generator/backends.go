package generator

import (
	"context"

	"github.com/yungbote/hrgen/internal/platform/gemini"
	"github.com/yungbote/hrgen/internal/platform/openai"
)

type openAIBackend struct {
	c openai.Client
}

// FromOpenAI sends requests as strict json_schema structured outputs.
func FromOpenAI(c openai.Client) JSONClient { return &openAIBackend{c: c} }

func (b *openAIBackend) GenerateJSON(ctx context.Context, req Request) (Response, error) {
	msgs := make([]openai.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, openai.Message{Role: m.Role, Content: m.Content})
	}
	out, err := b.c.GenerateJSON(ctx, openai.JSONRequest{
		System:          req.System,
		Messages:        msgs,
		SchemaName:      req.SchemaName,
		Schema:          req.Schema.ToOpenAI(),
		Strict:          req.Schema.FullyRequired(),
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxOutputTokens,
	})
	if err != nil {
		return Response{}, err
	}
	return Response{
		Text:  out.Text,
		Model: out.Model,
		Usage: Usage{PromptTokens: out.Usage.InputTokens, CompletionTokens: out.Usage.OutputTokens},
	}, nil
}

type geminiBackend struct {
	c gemini.Client
}

func FromGemini(c gemini.Client) JSONClient { return &geminiBackend{c: c} }

func (b *geminiBackend) GenerateJSON(ctx context.Context, req Request) (Response, error) {
	msgs := make([]gemini.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, gemini.Message{Role: m.Role, Content: m.Content})
	}
	out, err := b.c.GenerateJSON(ctx, gemini.JSONRequest{
		System:          req.System,
		Messages:        msgs,
		Schema:          req.Schema.ToGemini(),
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxOutputTokens,
	})
	if err != nil {
		return Response{}, err
	}
	return Response{
		Text:  out.Text,
		Model: out.Model,
		Usage: Usage{PromptTokens: out.Usage.InputTokens, CompletionTokens: out.Usage.OutputTokens},
	}, nil
}
