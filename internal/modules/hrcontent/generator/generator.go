// Package generator issues one structured-generation request per job title
// and decodes the reply into a Document.
package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/hrgen/internal/modules/hrcontent/schema"
	"github.com/yungbote/hrgen/internal/platform/gemini"
	"github.com/yungbote/hrgen/internal/platform/openai"
)

// Document is the decoded nested mapping returned by the model. It is not
// mutated after decode.
type Document map[string]any

type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Result is a successful generation. Document is never nil.
type Result struct {
	Document Document
	Usage    Usage
	Model    string
	Raw      string
}

type ErrorKind string

const (
	ErrorDecode    ErrorKind = "decode"
	ErrorRefusal   ErrorKind = "refusal"
	ErrorEmpty     ErrorKind = "empty"
	ErrorTransport ErrorKind = "transport"
)

// GenerationError reports why a title produced no document.
type GenerationError struct {
	Kind  ErrorKind
	Title string
	Raw   string
	Err   error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("generate %q: %s", e.Title, e.Kind)
	}
	return fmt.Sprintf("generate %q: %s: %v", e.Title, e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

type Message struct {
	Role    string
	Content string
}

type Request struct {
	SchemaName      string
	Schema          schema.Node
	System          string
	Messages        []Message
	Temperature     *float64
	MaxOutputTokens int
}

type Response struct {
	Text  string
	Model string
	Usage Usage
}

// JSONClient is the generation backend.
type JSONClient interface {
	GenerateJSON(ctx context.Context, req Request) (Response, error)
}

// Spec is the fixed part of every request a pipeline makes.
type Spec struct {
	SchemaName string
	Schema     schema.Node
	System     string
	// UserTemplate is formatted with the job title ("job_title: %s").
	UserTemplate string
	// Examples is a prior exchange sent ahead of the real user turn.
	Examples        []Message
	Temperature     *float64
	MaxOutputTokens int
}

type Generator struct {
	client JSONClient
	spec   Spec
}

func New(client JSONClient, spec Spec) *Generator {
	if strings.TrimSpace(spec.UserTemplate) == "" {
		spec.UserTemplate = "%s"
	}
	spec.System = strings.TrimSpace(spec.System)
	return &Generator{client: client, spec: spec}
}

func (g *Generator) Spec() Spec { return g.spec }

// Request renders the request for one title without sending it.
func (g *Generator) Request(title string) Request {
	msgs := make([]Message, 0, len(g.spec.Examples)+1)
	msgs = append(msgs, g.spec.Examples...)
	msgs = append(msgs, Message{Role: "user", Content: fmt.Sprintf(g.spec.UserTemplate, title)})
	return Request{
		SchemaName:      g.spec.SchemaName,
		Schema:          g.spec.Schema,
		System:          g.spec.System,
		Messages:        msgs,
		Temperature:     g.spec.Temperature,
		MaxOutputTokens: g.spec.MaxOutputTokens,
	}
}

func (g *Generator) Generate(ctx context.Context, title string) (Result, error) {
	resp, err := g.client.GenerateJSON(ctx, g.Request(title))
	if err != nil {
		kind := ErrorTransport
		switch {
		case errors.Is(err, openai.ErrRefused):
			kind = ErrorRefusal
		case errors.Is(err, gemini.ErrEmptyCandidate):
			kind = ErrorEmpty
		}
		return Result{}, &GenerationError{Kind: kind, Title: title, Err: err}
	}

	raw := strings.TrimSpace(resp.Text)
	if raw == "" {
		return Result{}, &GenerationError{Kind: ErrorEmpty, Title: title}
	}
	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return Result{}, &GenerationError{Kind: ErrorDecode, Title: title, Raw: raw, Err: err}
	}
	if doc == nil {
		return Result{}, &GenerationError{Kind: ErrorDecode, Title: title, Raw: raw, Err: errors.New("reply is not a JSON object")}
	}
	return Result{Document: doc, Usage: resp.Usage, Model: resp.Model, Raw: raw}, nil
}
