package ledger

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/hrgen/internal/platform/logger"
)

func TestIsPostgres(t *testing.T) {
	cases := []struct {
		dsn  string
		want bool
	}{
		{"postgres://u:p@localhost:5432/hr?sslmode=disable", true},
		{"host=localhost user=postgres dbname=hr", true},
		{"", false},
		{":memory:", false},
		{"./var/ledger.db", false},
	}
	for _, tc := range cases {
		if got := isPostgres(tc.dsn); got != tc.want {
			t.Fatalf("isPostgres(%q): want=%v got=%v", tc.dsn, tc.want, got)
		}
	}
}

func TestCreateAndListByRun(t *testing.T) {
	db, err := Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	repo := NewUsageRecordRepo(db, logger.Nop())
	ctx := context.Background()

	runID := uuid.New()
	prompt, completion := 812, 1204
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	recs := []*UsageRecord{
		{
			RunID:            runID,
			Pipeline:         "jobdesc",
			JobTitle:         "Data Analyst",
			PromptTokens:     &prompt,
			CompletionTokens: &completion,
			Status:           StatusPublished,
			DocID:            "doc-1",
			Document:         DocumentJSON(map[string]any{"job_title": "Data Analyst"}),
			CreatedAt:        base,
		},
		{
			RunID:     runID,
			Pipeline:  "jobdesc",
			JobTitle:  "Nurse",
			Status:    StatusFailed,
			Error:     "refusal",
			CreatedAt: base.Add(time.Second),
		},
		{RunID: uuid.New(), Pipeline: "skills", JobTitle: "Other", Status: StatusDryRun},
	}
	for _, rec := range recs {
		if err := repo.Create(ctx, nil, rec); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if rec.ID == uuid.Nil {
			t.Fatalf("Create: want id assigned")
		}
	}

	got, err := repo.ListByRun(ctx, nil, runID)
	if err != nil {
		t.Fatalf("ListByRun: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListByRun: want=2 got=%d", len(got))
	}
	if got[0].JobTitle != "Data Analyst" || got[1].JobTitle != "Nurse" {
		t.Fatalf("order: got %q, %q", got[0].JobTitle, got[1].JobTitle)
	}
	if got[0].PromptTokens == nil || *got[0].PromptTokens != 812 {
		t.Fatalf("prompt tokens: got %v", got[0].PromptTokens)
	}
	if got[1].PromptTokens != nil {
		t.Fatalf("prompt tokens: want nil for failed title")
	}
	var doc map[string]any
	if err := json.Unmarshal(got[0].Document, &doc); err != nil || doc["job_title"] != "Data Analyst" {
		t.Fatalf("document: got %s err=%v", string(got[0].Document), err)
	}
	if string(got[1].Document) != "{}" {
		t.Fatalf("document: want={} got=%s", string(got[1].Document))
	}
}

func TestDocumentJSON(t *testing.T) {
	if got := string(DocumentJSON(nil)); got != "{}" {
		t.Fatalf("DocumentJSON(nil): want={} got=%s", got)
	}
}
