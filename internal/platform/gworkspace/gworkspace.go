// Package gworkspace wraps the Docs, Drive and Sheets APIs behind the few
// calls the publishing pipeline makes.
package gworkspace

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/yungbote/hrgen/internal/platform/gcp"
	"github.com/yungbote/hrgen/internal/platform/logger"
)

type Docs interface {
	GetDocument(ctx context.Context, docID string) (*docs.Document, error)
	CreateDocument(ctx context.Context, title string) (string, error)
	BatchUpdate(ctx context.Context, docID string, reqs []*docs.Request) error
}

type Drive interface {
	GrantPublicRead(ctx context.Context, fileID string) error
}

type Sheets interface {
	// AppendRows appends after the last row of the table at rangeA1 and
	// returns the number of rows written.
	AppendRows(ctx context.Context, spreadsheetID, rangeA1 string, rows [][]string) (int64, error)
}

type Config struct {
	Credentials gcp.Credentials
	// Endpoint overrides every API's base URL (tests, proxies).
	Endpoint string
}

var scopes = []string{
	docs.DocumentsScope,
	drive.DriveScope,
	sheets.SpreadsheetsScope,
}

// Service implements Docs, Drive and Sheets over one set of credentials.
type Service struct {
	log    *logger.Logger
	docs   *docs.Service
	drive  *drive.Service
	sheets *sheets.Service
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*Service, error) {
	opts := cfg.Credentials.ClientOptions(scopes...)
	if ep := strings.TrimSpace(cfg.Endpoint); ep != "" {
		opts = []option.ClientOption{option.WithEndpoint(ep), option.WithoutAuthentication()}
	}
	docsSvc, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("docs service: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	sheetsSvc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Service{
		log:    log.With("service", "GoogleWorkspace"),
		docs:   docsSvc,
		drive:  driveSvc,
		sheets: sheetsSvc,
	}, nil
}

func (s *Service) GetDocument(ctx context.Context, docID string) (*docs.Document, error) {
	doc, err := s.docs.Documents.Get(docID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", docID, err)
	}
	return doc, nil
}

func (s *Service) CreateDocument(ctx context.Context, title string) (string, error) {
	doc, err := s.docs.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create document %q: %w", title, err)
	}
	s.log.Info("document created", "document_id", doc.DocumentId, "title", title)
	return doc.DocumentId, nil
}

func (s *Service) BatchUpdate(ctx context.Context, docID string, reqs []*docs.Request) error {
	if len(reqs) == 0 {
		return nil
	}
	_, err := s.docs.Documents.BatchUpdate(docID, &docs.BatchUpdateDocumentRequest{Requests: reqs}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("batch update %s (%d requests): %w", docID, len(reqs), err)
	}
	return nil
}

func (s *Service) GrantPublicRead(ctx context.Context, fileID string) error {
	_, err := s.drive.Permissions.Create(fileID, &drive.Permission{Type: "anyone", Role: "reader"}).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("grant public read on %s: %w", fileID, err)
	}
	return nil
}

func (s *Service) AppendRows(ctx context.Context, spreadsheetID, rangeA1 string, rows [][]string) (int64, error) {
	values := make([][]interface{}, 0, len(rows))
	for _, r := range rows {
		cells := make([]interface{}, len(r))
		for i, c := range r {
			cells[i] = c
		}
		values = append(values, cells)
	}
	resp, err := s.sheets.Spreadsheets.Values.Append(spreadsheetID, rangeA1, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("append %d rows to %s: %w", len(rows), rangeA1, err)
	}
	if resp.Updates == nil {
		return int64(len(rows)), nil
	}
	return resp.Updates.UpdatedRows, nil
}
