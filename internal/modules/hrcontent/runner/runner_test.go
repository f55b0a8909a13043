package runner

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/api/docs/v1"

	"github.com/yungbote/hrgen/internal/modules/hrcontent/docreplica"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/generator"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/ledger"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/pipelines"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/publish"
	"github.com/yungbote/hrgen/internal/observability"
	"github.com/yungbote/hrgen/internal/platform/logger"
)

const dataAnalyst = `{
	"job_title": "Data Analyst",
	"job_description": "Turns data into decisions.",
	"key_responsibilities": ["Build dashboards", "Clean data"],
	"skills": ["SQL", "Python"],
	"kpis": "Accuracy and turnaround.",
	"kpis_focus": [{"focus_area": "Accuracy", "description": "Error-free reports."}],
	"team_structure": {"reports_to": "Head of Analytics", "collaborates_with": "Product", "leads": "None"},
	"tools": ["Excel", "Tableau"],
	"qualification": "BSc in Statistics."
}`

type fakeClient struct {
	texts map[string]string
	err   error
	reqs  []generator.Request
}

func (f *fakeClient) GenerateJSON(_ context.Context, req generator.Request) (generator.Response, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return generator.Response{}, f.err
	}
	user := req.Messages[len(req.Messages)-1].Content
	return generator.Response{
		Text:  f.texts[user],
		Model: "gpt-4o",
		Usage: generator.Usage{PromptTokens: 100, CompletionTokens: 250},
	}, nil
}

// fakeWorkspace stands in for Docs, Drive and Sheets.
type fakeWorkspace struct {
	created   []string
	batches   map[string][][]*docs.Request
	shared    []string
	appended  [][]string
	appendErr error
}

func newWorkspace() *fakeWorkspace {
	return &fakeWorkspace{batches: map[string][][]*docs.Request{}}
}

func (w *fakeWorkspace) GetDocument(_ context.Context, id string) (*docs.Document, error) {
	return &docs.Document{
		DocumentId: id,
		Body: &docs.Body{Content: []*docs.StructuralElement{
			{Paragraph: &docs.Paragraph{Elements: []*docs.ParagraphElement{
				{TextRun: &docs.TextRun{Content: "{{job_title}}\n", TextStyle: &docs.TextStyle{Bold: true}}},
			}}},
			{Paragraph: &docs.Paragraph{Elements: []*docs.ParagraphElement{
				{TextRun: &docs.TextRun{Content: "{{job_description}}\n"}},
			}}},
		}},
	}, nil
}

func (w *fakeWorkspace) CreateDocument(_ context.Context, title string) (string, error) {
	w.created = append(w.created, title)
	return "doc-" + string(rune('0'+len(w.created))), nil
}

func (w *fakeWorkspace) BatchUpdate(_ context.Context, id string, reqs []*docs.Request) error {
	w.batches[id] = append(w.batches[id], reqs)
	return nil
}

func (w *fakeWorkspace) GrantPublicRead(_ context.Context, id string) error {
	w.shared = append(w.shared, id)
	return nil
}

func (w *fakeWorkspace) AppendRows(_ context.Context, _, _ string, rows [][]string) (int64, error) {
	if w.appendErr != nil {
		return 0, w.appendErr
	}
	w.appended = append(w.appended, rows...)
	return int64(len(rows)), nil
}

type fixture struct {
	ws      *fakeWorkspace
	client  *fakeClient
	repo    ledger.UsageRecordRepo
	metrics *observability.RunMetrics
	out     *bytes.Buffer
}

func newRunner(t *testing.T, name pipelines.Name, opts Options) (*Runner, *fixture) {
	t.Helper()
	pipelines.RegisterAll()
	def, err := pipelines.Get(name)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	db, err := ledger.Open("")
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	fx := &fixture{
		ws:      newWorkspace(),
		client:  &fakeClient{texts: map[string]string{"Data Analyst": dataAnalyst}},
		repo:    ledger.NewUsageRecordRepo(db, logger.Nop()),
		metrics: observability.NewRunMetrics(),
		out:     &bytes.Buffer{},
	}
	pub, err := publish.NewPublisher(logger.Nop(), fx.ws, fx.ws, publish.Target{
		SpreadsheetURL: "https://docs.google.com/spreadsheets/d/sheet-1/edit",
		Worksheet:      def.Worksheet,
	})
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	opts.Out = fx.out
	r, err := New(Deps{
		Log:        logger.Nop(),
		Definition: def,
		Generator:  generator.New(fx.client, def.Generation),
		Replicator: docreplica.NewReplicator(logger.Nop(), fx.ws, fx.ws, def.DocSuffix),
		Publisher:  pub,
		Ledger:     fx.repo,
		Metrics:    fx.metrics,
	}, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r, fx
}

func TestRunJobDescriptionEndToEnd(t *testing.T) {
	r, fx := newRunner(t, pipelines.JobDescription, Options{})
	sum, err := r.Run(context.Background(), []string{"Data Analyst"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Published != 1 || sum.PromptTokens != 100 || sum.CompletionTokens != 250 {
		t.Fatalf("summary: %+v", sum)
	}

	if len(fx.ws.created) != 1 || fx.ws.created[0] != "Data Analyst JD Template" {
		t.Fatalf("created: got %q", fx.ws.created)
	}
	if len(fx.ws.shared) != 1 || fx.ws.shared[0] != "doc-1" {
		t.Fatalf("shared: got %q", fx.ws.shared)
	}

	// replica batch, then placeholder batch
	batches := fx.ws.batches["doc-1"]
	if len(batches) != 2 {
		t.Fatalf("batches: want=2 got=%d", len(batches))
	}
	subs := batches[1]
	if len(subs) != 27 {
		t.Fatalf("substitutions: want=27 got=%d", len(subs))
	}
	first := subs[0].ReplaceAllText
	if first.ContainsText.Text != "{{job_title}}" || first.ReplaceText != "Data Analyst" {
		t.Fatalf("first substitution: %+v", first)
	}
	if last := subs[26].ReplaceAllText; last.ContainsText.Text != "{{link}}" || last.ReplaceText != "" {
		t.Fatalf("link substitution happens before the link is known: %+v", last)
	}

	if len(fx.ws.appended) != 1 {
		t.Fatalf("appended: want=1 got=%d", len(fx.ws.appended))
	}
	row := fx.ws.appended[0]
	if len(row) != 27 {
		t.Fatalf("row width: want=27 got=%d", len(row))
	}
	if row[26] != publish.DocLink("doc-1") {
		t.Fatalf("link: want=%q got=%q", publish.DocLink("doc-1"), row[26])
	}
	if row[14] != "Accuracy" || row[16] != "" || row[17] != "" {
		t.Fatalf("kpi slots: %q", row[14:20])
	}

	recs, err := fx.repo.ListByRun(context.Background(), nil, sum.RunID)
	if err != nil || len(recs) != 1 {
		t.Fatalf("ledger: got %d err=%v", len(recs), err)
	}
	if recs[0].Status != ledger.StatusPublished || recs[0].DocLink != publish.DocLink("doc-1") {
		t.Fatalf("ledger record: %+v", recs[0])
	}
	if recs[0].PromptTokens == nil || *recs[0].PromptTokens != 100 {
		t.Fatalf("ledger tokens: %v", recs[0].PromptTokens)
	}
}

func TestRunContinuesWithPlaceholdersOnGenerationFailure(t *testing.T) {
	r, fx := newRunner(t, pipelines.Resume, Options{})
	fx.client.err = errors.New("connection reset")
	sum, err := r.Run(context.Background(), []string{"Nurse"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Published != 1 || sum.PromptTokens != 0 {
		t.Fatalf("summary: %+v", sum)
	}
	row := fx.ws.appended[0]
	if len(row) != 17 || row[0] != "Nurse" || row[1] != "N/A" || row[3] != "N/A" {
		t.Fatalf("row: %q", row)
	}
	if len(fx.ws.created) != 0 {
		t.Fatalf("resume has no template, created %q", fx.ws.created)
	}
	recs, _ := fx.repo.ListByRun(context.Background(), nil, sum.RunID)
	if len(recs) != 1 || recs[0].PromptTokens != nil || !strings.Contains(recs[0].Error, "transport") {
		t.Fatalf("ledger: %+v", recs)
	}
}

func TestRunSkipPolicy(t *testing.T) {
	r, fx := newRunner(t, pipelines.Resume, Options{OnGenerationFailure: SkipOnFailure})
	fx.client.err = errors.New("connection reset")
	sum, err := r.Run(context.Background(), []string{"Nurse", "Welder"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Skipped != 2 || len(fx.ws.appended) != 0 {
		t.Fatalf("skip: summary=%+v appended=%d", sum, len(fx.ws.appended))
	}
}

func TestRunEnforceValidation(t *testing.T) {
	r, fx := newRunner(t, pipelines.JobDescription, Options{Validation: ValidationEnforce})
	fx.client.texts["Data Analyst"] = `{"job_title": "Data Analyst"}`
	sum, err := r.Run(context.Background(), []string{"Data Analyst"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Failed != 1 || len(fx.ws.appended) != 0 || len(fx.ws.created) != 0 {
		t.Fatalf("enforce: summary=%+v", sum)
	}

	r, fx = newRunner(t, pipelines.JobDescription, Options{})
	fx.client.texts["Data Analyst"] = `{"job_title": "Data Analyst"}`
	if _, err := r.Run(context.Background(), []string{"Data Analyst"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(fx.ws.appended) != 1 || fx.ws.appended[0][8] != "N/A" {
		t.Fatalf("log mode should publish with placeholders, got %q", fx.ws.appended)
	}
}

func TestRunDryRun(t *testing.T) {
	r, fx := newRunner(t, pipelines.JobDescription, Options{DryRun: true})
	sum, err := r.Run(context.Background(), []string{"Data Analyst"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.DryRun != 1 || len(fx.ws.appended) != 0 || len(fx.ws.created) != 0 {
		t.Fatalf("dry run wrote to workspace: %+v", sum)
	}
	if !strings.Contains(fx.out.String(), "job_description\t\"Turns data into decisions.\"") {
		t.Fatalf("dry run output: %s", fx.out.String())
	}
}

func TestRunAbortsOnAppendFailure(t *testing.T) {
	r, fx := newRunner(t, pipelines.Resume, Options{})
	fx.ws.appendErr = errors.New("quota exceeded")
	fx.client.texts["job title: Nurse"] = "{}"
	sum, err := r.Run(context.Background(), []string{"Nurse", "Welder"})
	if err == nil || !strings.Contains(err.Error(), "Nurse") {
		t.Fatalf("Run: want error naming the title, got %v", err)
	}
	if sum.Processed != 1 || sum.Failed != 1 {
		t.Fatalf("summary: %+v", sum)
	}
}

func TestParsePolicies(t *testing.T) {
	if p, err := ParseFailurePolicy(""); err != nil || p != ContinueOnFailure {
		t.Fatalf("ParseFailurePolicy(empty): %v %v", p, err)
	}
	if _, err := ParseFailurePolicy("retry"); err == nil {
		t.Fatalf("ParseFailurePolicy(retry): want error")
	}
	if m, err := ParseValidationMode("enforce"); err != nil || m != ValidationEnforce {
		t.Fatalf("ParseValidationMode(enforce): %v %v", m, err)
	}
	if _, err := ParseValidationMode("strict"); err == nil {
		t.Fatalf("ParseValidationMode(strict): want error")
	}
}
