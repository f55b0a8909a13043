// Package docreplica copies a template document's paragraphs, runs and
// formatting into a freshly created document.
package docreplica

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/hrgen/internal/platform/gworkspace"
	"github.com/yungbote/hrgen/internal/platform/logger"
)

type Replicator struct {
	log    *logger.Logger
	docs   gworkspace.Docs
	drive  gworkspace.Drive
	suffix string
}

// NewReplicator creates documents titled "<job title> <suffix>".
func NewReplicator(log *logger.Logger, docs gworkspace.Docs, drive gworkspace.Drive, suffix string) *Replicator {
	return &Replicator{
		log:    log.With("service", "DocReplicator"),
		docs:   docs,
		drive:  drive,
		suffix: strings.TrimSpace(suffix),
	}
}

func (r *Replicator) FetchTemplate(ctx context.Context, docID string) (Template, error) {
	d, err := r.docs.GetDocument(ctx, docID)
	if err != nil {
		return Template{}, fmt.Errorf("fetch template: %w", err)
	}
	tpl := FromDocument(d)
	r.log.Info("template loaded", "document_id", docID, "paragraphs", len(tpl.Paragraphs))
	return tpl, nil
}

// Replicate creates the document, applies the whole plan in one batch and
// then opens it for public reading. If the batch fails the created document
// is left in place and its id is returned with the error.
func (r *Replicator) Replicate(ctx context.Context, tpl Template, jobTitle string) (string, error) {
	title := strings.TrimSpace(jobTitle + " " + r.suffix)
	docID, err := r.docs.CreateDocument(ctx, title)
	if err != nil {
		return "", err
	}

	plan := BuildPlan(tpl)
	if len(plan.Degenerate) > 0 {
		r.log.Warn("template paragraphs without text carry style or bullets; their ranges are zero width",
			"template_id", tpl.DocumentID,
			"paragraphs", plan.Degenerate,
		)
	}
	if err := r.docs.BatchUpdate(ctx, docID, plan.Operations); err != nil {
		return docID, fmt.Errorf("replicate template into %s: %w", docID, err)
	}
	if err := r.drive.GrantPublicRead(ctx, docID); err != nil {
		return docID, err
	}
	r.log.Debug("document replicated", "document_id", docID, "operations", len(plan.Operations), "cursor", plan.Cursor)
	return docID, nil
}
