// Package publish appends flattened rows to a worksheet and fills template
// placeholders in generated documents.
package publish

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/api/docs/v1"

	"github.com/yungbote/hrgen/internal/modules/hrcontent/flatten"
	"github.com/yungbote/hrgen/internal/pkg/httpx"
	"github.com/yungbote/hrgen/internal/platform/gworkspace"
	"github.com/yungbote/hrgen/internal/platform/logger"
)

const docLinkPattern = "https://docs.google.com/document/d/%s/copy"

// DocLink is the shareable "make a copy" link for a document.
func DocLink(docID string) string {
	return fmt.Sprintf(docLinkPattern, docID)
}

var spreadsheetIDRe = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// SpreadsheetID extracts the id from a spreadsheet URL. A bare id is
// returned unchanged.
func SpreadsheetID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if m := spreadsheetIDRe.FindStringSubmatch(raw); m != nil {
		return m[1], nil
	}
	if raw != "" && !strings.ContainsAny(raw, "/:?#") {
		return raw, nil
	}
	return "", fmt.Errorf("no spreadsheet id in %q", raw)
}

type Target struct {
	SpreadsheetURL string
	Worksheet      string
}

type Publisher struct {
	log           *logger.Logger
	sheets        gworkspace.Sheets
	docs          gworkspace.Docs
	spreadsheetID string
	worksheet     string
}

func NewPublisher(log *logger.Logger, sheets gworkspace.Sheets, docs gworkspace.Docs, target Target) (*Publisher, error) {
	id, err := SpreadsheetID(target.SpreadsheetURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(target.Worksheet) == "" {
		return nil, fmt.Errorf("worksheet required")
	}
	return &Publisher{
		log:           log.With("service", "Publisher", "worksheet", target.Worksheet),
		sheets:        sheets,
		docs:          docs,
		spreadsheetID: id,
		worksheet:     target.Worksheet,
	}, nil
}

// A1 quotes the worksheet name for use as a range.
func (p *Publisher) A1() string {
	return "'" + strings.ReplaceAll(p.worksheet, "'", "''") + "'"
}

// AppendRows appends rows after the worksheet's existing data. The header
// row is assumed to exist already.
func (p *Publisher) AppendRows(ctx context.Context, rows ...flatten.Row) error {
	if len(rows) == 0 {
		return nil
	}
	values := make([][]string, len(rows))
	for i, r := range rows {
		values[i] = r
	}
	n, err := p.sheets.AppendRows(ctx, p.spreadsheetID, p.A1(), values)
	if err != nil {
		return err
	}
	p.log.Info("rows appended", "rows", n)
	return nil
}

// SubstitutePlaceholders replaces every {{column}} in the document with the
// row's value for that column, case sensitive, in header order. It is best
// effort: failures are logged and reported as false.
func (p *Publisher) SubstitutePlaceholders(ctx context.Context, docID string, header flatten.Header, row flatten.Row) bool {
	reqs := PlaceholderRequests(header, row)
	if err := p.docs.BatchUpdate(ctx, docID, reqs); err != nil {
		p.log.Warn("placeholder substitution failed",
			"document_id", docID,
			"kind", httpx.Classify(err),
			"error", err,
		)
		return false
	}
	return true
}

// PlaceholderRequests builds one ReplaceAllText request per header column.
func PlaceholderRequests(header flatten.Header, row flatten.Row) []*docs.Request {
	reqs := make([]*docs.Request, 0, len(header))
	for i, col := range header {
		val := ""
		if i < len(row) {
			val = row[i]
		}
		reqs = append(reqs, &docs.Request{
			ReplaceAllText: &docs.ReplaceAllTextRequest{
				ContainsText: &docs.SubstringMatchCriteria{Text: "{{" + col + "}}", MatchCase: true},
				ReplaceText:  val,
				// An empty ReplaceText must still be sent to clear the placeholder.
				ForceSendFields: []string{"ReplaceText"},
			},
		})
	}
	return reqs
}
