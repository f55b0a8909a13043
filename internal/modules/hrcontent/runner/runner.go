// Package runner drives one pipeline over a list of job titles, strictly in
// order, from generation through publishing.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/hrgen/internal/modules/hrcontent/docreplica"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/flatten"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/generator"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/ledger"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/pipelines"
	"github.com/yungbote/hrgen/internal/observability"
	"github.com/yungbote/hrgen/internal/pkg/httpx"
	"github.com/yungbote/hrgen/internal/platform/logger"
)

// FailurePolicy decides what happens to a title whose generation failed.
type FailurePolicy string

const (
	// ContinueOnFailure publishes the title anyway with an empty document,
	// so every column falls back to its placeholder.
	ContinueOnFailure FailurePolicy = "continue"
	SkipOnFailure     FailurePolicy = "skip"
)

type ValidationMode string

const (
	// ValidationLog reports schema issues and publishes regardless.
	ValidationLog ValidationMode = "log"
	// ValidationEnforce skips titles whose document does not conform.
	ValidationEnforce ValidationMode = "enforce"
)

func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case "", ContinueOnFailure:
		return ContinueOnFailure, nil
	case SkipOnFailure:
		return SkipOnFailure, nil
	}
	return "", fmt.Errorf("unknown generation failure policy %q (continue|skip)", s)
}

func ParseValidationMode(s string) (ValidationMode, error) {
	switch ValidationMode(s) {
	case "", ValidationLog:
		return ValidationLog, nil
	case ValidationEnforce:
		return ValidationEnforce, nil
	}
	return "", fmt.Errorf("unknown validation mode %q (log|enforce)", s)
}

type Generator interface {
	Generate(ctx context.Context, title string) (generator.Result, error)
}

type Replicator interface {
	FetchTemplate(ctx context.Context, docID string) (docreplica.Template, error)
	Replicate(ctx context.Context, tpl docreplica.Template, jobTitle string) (string, error)
}

type Publisher interface {
	AppendRows(ctx context.Context, rows ...flatten.Row) error
	SubstitutePlaceholders(ctx context.Context, docID string, header flatten.Header, row flatten.Row) bool
}

type Mirror interface {
	Append(ctx context.Context, header flatten.Header, rows ...flatten.Row) error
}

type Options struct {
	OnGenerationFailure FailurePolicy
	Validation          ValidationMode
	// DryRun generates and flattens but writes nothing to Google; the row is
	// printed to Out instead.
	DryRun bool
	Out    io.Writer
}

// Deps are the collaborators of one run. Replicator is only needed for
// pipelines with a template; Mirror, Ledger and Metrics are optional.
type Deps struct {
	Log        *logger.Logger
	Definition pipelines.Definition
	Generator  Generator
	Replicator Replicator
	Publisher  Publisher
	Mirror     Mirror
	Ledger     ledger.UsageRecordRepo
	Metrics    *observability.RunMetrics
}

type Summary struct {
	RunID            uuid.UUID
	Processed        int
	Published        int
	DryRun           int
	Skipped          int
	Failed           int
	PromptTokens     int
	CompletionTokens int
	Elapsed          time.Duration
}

type Runner struct {
	log    *logger.Logger
	deps   Deps
	opts   Options
	tracer trace.Tracer
}

func New(deps Deps, opts Options) (*Runner, error) {
	if deps.Generator == nil {
		return nil, errors.New("runner: generator required")
	}
	if !opts.DryRun {
		if deps.Publisher == nil {
			return nil, errors.New("runner: publisher required")
		}
		if deps.Definition.HasTemplate() && deps.Replicator == nil {
			return nil, fmt.Errorf("runner: pipeline %s needs a replicator", deps.Definition.Name)
		}
	}
	if opts.OnGenerationFailure == "" {
		opts.OnGenerationFailure = ContinueOnFailure
	}
	if opts.Validation == "" {
		opts.Validation = ValidationLog
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{
		log:    log.With("service", "Runner", "pipeline", string(deps.Definition.Name)),
		deps:   deps,
		opts:   opts,
		tracer: observability.Tracer(),
	}, nil
}

// Run processes titles in order. It stops at the first error that would
// leave the batch in an unknown state (template, document or sheet writes);
// rows appended before that stay appended.
func (r *Runner) Run(ctx context.Context, titles []string) (Summary, error) {
	runStart := time.Now()
	sum := Summary{RunID: uuid.New()}
	log := r.log.With("run_id", sum.RunID.String())
	def := r.deps.Definition

	ctx, span := r.tracer.Start(ctx, "hrgen.run", trace.WithAttributes(
		attribute.String("hrgen.pipeline", string(def.Name)),
		attribute.String("hrgen.run_id", sum.RunID.String()),
		attribute.Int("hrgen.titles", len(titles)),
		attribute.Bool("hrgen.dry_run", r.opts.DryRun),
	))
	defer span.End()

	var tpl docreplica.Template
	if def.HasTemplate() && !r.opts.DryRun {
		var err error
		tpl, err = r.deps.Replicator.FetchTemplate(ctx, def.TemplateDocID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "template")
			return sum, err
		}
	}

	log.Info("run started", "titles", len(titles), "dry_run", r.opts.DryRun)
	for i, title := range titles {
		out, err := r.processTitle(ctx, log, sum.RunID, tpl, title)
		sum.Processed++
		sum.PromptTokens += out.usage.PromptTokens
		sum.CompletionTokens += out.usage.CompletionTokens
		switch out.status {
		case ledger.StatusPublished:
			sum.Published++
		case ledger.StatusDryRun:
			sum.DryRun++
		case ledger.StatusSkipped:
			sum.Skipped++
		case ledger.StatusFailed:
			sum.Failed++
		}
		if err != nil {
			log.Error("run aborted", "title", title, "index", i, "kind", httpx.Classify(err), "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "aborted")
			sum.Elapsed = time.Since(runStart)
			return sum, fmt.Errorf("%s: %w", title, err)
		}
	}
	sum.Elapsed = time.Since(runStart)
	log.Info("run finished",
		"processed", sum.Processed,
		"published", sum.Published,
		"dry_run", sum.DryRun,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"prompt_tokens", sum.PromptTokens,
		"completion_tokens", sum.CompletionTokens,
		"elapsed", sum.Elapsed.Round(10*time.Millisecond).String(),
	)
	return sum, nil
}

type outcome struct {
	status string
	usage  generator.Usage
}
