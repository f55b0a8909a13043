package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/hrgen/internal/modules/hrcontent/docreplica"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/flatten"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/generator"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/ledger"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/publish"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/schema"
	"github.com/yungbote/hrgen/internal/pkg/httpx"
	"github.com/yungbote/hrgen/internal/platform/logger"
)

// titleRun carries what one title accumulates on its way through the stages.
type titleRun struct {
	runID  uuid.UUID
	title  string
	start  time.Time
	result generator.Result
	ok     bool
	genErr error
	header flatten.Header
	row    flatten.Row
	docID  string
	link   string
}

func (r *Runner) processTitle(ctx context.Context, baseLog *logger.Logger, runID uuid.UUID, tpl docreplica.Template, title string) (outcome, error) {
	def := r.deps.Definition
	log := baseLog.With("title", title)
	tr := &titleRun{runID: runID, title: title, start: time.Now()}

	ctx, span := r.tracer.Start(ctx, "hrgen.title", trace.WithAttributes(
		attribute.String("hrgen.pipeline", string(def.Name)),
		attribute.String("hrgen.title", title),
	))
	defer span.End()

	// generate
	err := r.stage(ctx, "generate", func(ctx context.Context) error {
		res, err := r.deps.Generator.Generate(ctx, title)
		if err != nil {
			return err
		}
		tr.result, tr.ok = res, true
		return nil
	})
	if err != nil {
		tr.genErr = err
		var gerr *generator.GenerationError
		kind := "unknown"
		if errors.As(err, &gerr) {
			kind = string(gerr.Kind)
		}
		log.Warn("generation failed",
			"kind", kind,
			"transport", httpx.Classify(err),
			"policy", string(r.opts.OnGenerationFailure),
			"error", err,
		)
		if r.opts.OnGenerationFailure == SkipOnFailure {
			return r.finish(ctx, log, tr, ledger.StatusSkipped, err)
		}
		tr.result = generator.Result{Document: generator.Document{}}
	} else {
		log.Info("content generated",
			"model", tr.result.Model,
			"prompt_tokens", tr.result.Usage.PromptTokens,
			"completion_tokens", tr.result.Usage.CompletionTokens,
		)
		r.deps.Metrics.AddTokens(string(def.Name), tr.result.Usage.PromptTokens, tr.result.Usage.CompletionTokens)
	}

	// validate; a degraded empty document has already been reported
	if tr.ok {
		verr := r.stage(ctx, "validate", func(context.Context) error {
			return schema.Validate(def.Generation.Schema, map[string]any(tr.result.Document))
		})
		if verr != nil {
			log.Warn("document does not match schema", "mode", string(r.opts.Validation), "error", verr)
			if r.opts.Validation == ValidationEnforce {
				return r.finish(ctx, log, tr, ledger.StatusFailed, verr)
			}
		}
	}

	tr.header, tr.row = def.Layout.Flatten(title, tr.result.Document)

	if r.opts.DryRun {
		r.printRow(tr)
		return r.finish(ctx, log, tr, ledger.StatusDryRun, nil)
	}

	if def.HasTemplate() {
		err := r.stage(ctx, "replicate", func(ctx context.Context) error {
			id, err := r.deps.Replicator.Replicate(ctx, tpl, title)
			tr.docID = id
			return err
		})
		if err != nil {
			out, _ := r.finish(ctx, log, tr, ledger.StatusFailed, err)
			return out, err
		}
		log.Info("document created", "document_id", tr.docID)

		if def.Substitute {
			_ = r.stage(ctx, "substitute", func(ctx context.Context) error {
				if !r.deps.Publisher.SubstitutePlaceholders(ctx, tr.docID, tr.header, tr.row) {
					return errors.New("placeholder substitution failed")
				}
				return nil
			})
		}

		tr.link = publish.DocLink(tr.docID)
		if def.LinkColumn != "" && !tr.row.Set(tr.header, def.LinkColumn, tr.link) {
			log.Warn("link column missing from row", "column", def.LinkColumn)
		}
		log.Info("google doc link", "link", tr.link)
	}

	if err := r.stage(ctx, "append", func(ctx context.Context) error {
		return r.deps.Publisher.AppendRows(ctx, tr.row)
	}); err != nil {
		out, _ := r.finish(ctx, log, tr, ledger.StatusFailed, err)
		return out, fmt.Errorf("append row: %w", err)
	}
	r.deps.Metrics.IncRows(string(def.Name), 1)

	if r.deps.Mirror != nil {
		if err := r.deps.Mirror.Append(ctx, tr.header, tr.row); err != nil {
			log.Warn("mirror append failed", "kind", httpx.Classify(err), "error", err)
		}
	}

	return r.finish(ctx, log, tr, ledger.StatusPublished, tr.genErr)
}

// stage runs fn in a child span and records its duration.
func (r *Runner) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := r.tracer.Start(ctx, "hrgen."+name)
	defer span.End()
	start := time.Now()
	err := fn(ctx)
	r.deps.Metrics.ObserveStage(string(r.deps.Definition.Name), name, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, name)
	}
	return err
}

// finish logs the elapsed time, counts the outcome and writes the ledger
// row. Ledger failures are logged and never fail the title.
func (r *Runner) finish(ctx context.Context, log *logger.Logger, tr *titleRun, status string, cause error) (outcome, error) {
	def := r.deps.Definition
	elapsed := time.Since(tr.start)
	out := outcome{status: status}
	if tr.ok {
		out.usage = tr.result.Usage
	}

	r.deps.Metrics.IncTitle(string(def.Name), status)
	r.deps.Metrics.ObserveTitle(string(def.Name), elapsed)
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("hrgen.status", status))

	kv := []interface{}{"status", status, "time_taken", fmt.Sprintf("%.2fs", elapsed.Seconds())}
	if tr.ok {
		kv = append(kv,
			"prompt_tokens", tr.result.Usage.PromptTokens,
			"completion_tokens", tr.result.Usage.CompletionTokens,
		)
	}
	log.Info("title finished", kv...)

	if r.deps.Ledger != nil {
		rec := &ledger.UsageRecord{
			RunID:     tr.runID,
			Pipeline:  string(def.Name),
			JobTitle:  tr.title,
			Status:    status,
			DocID:     tr.docID,
			DocLink:   tr.link,
			Document:  ledger.DocumentJSON(tr.result.Document),
			ElapsedMS: elapsed.Milliseconds(),
		}
		if tr.ok {
			prompt, completion := tr.result.Usage.PromptTokens, tr.result.Usage.CompletionTokens
			rec.Model = tr.result.Model
			rec.PromptTokens = &prompt
			rec.CompletionTokens = &completion
		}
		if cause != nil {
			rec.Error = cause.Error()
		}
		if err := r.deps.Ledger.Create(ctx, nil, rec); err != nil {
			log.Warn("ledger write failed", "error", err)
		}
	}
	return out, nil
}

func (r *Runner) printRow(tr *titleRun) {
	fmt.Fprintf(r.opts.Out, "# %s (%d columns)\n", tr.title, len(tr.row))
	for i, col := range tr.header {
		val := ""
		if i < len(tr.row) {
			val = tr.row[i]
		}
		fmt.Fprintf(r.opts.Out, "%s\t%q\n", col, val)
	}
}
