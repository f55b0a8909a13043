// Package ledger records one row per processed title: token usage, the
// generated document and where it was published.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/hrgen/internal/platform/logger"
)

const (
	StatusPublished = "published"
	StatusDryRun    = "dry_run"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

type UsageRecord struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RunID            uuid.UUID      `gorm:"type:uuid;column:run_id;not null;index" json:"run_id"`
	Pipeline         string         `gorm:"column:pipeline;not null;index" json:"pipeline"`
	JobTitle         string         `gorm:"column:job_title;not null" json:"job_title"`
	Model            string         `gorm:"column:model" json:"model,omitempty"`
	PromptTokens     *int           `gorm:"column:prompt_tokens" json:"prompt_tokens,omitempty"`
	CompletionTokens *int           `gorm:"column:completion_tokens" json:"completion_tokens,omitempty"`
	Status           string         `gorm:"column:status;not null;index" json:"status"`
	Error            string         `gorm:"column:error" json:"error,omitempty"`
	DocID            string         `gorm:"column:doc_id" json:"doc_id,omitempty"`
	DocLink          string         `gorm:"column:doc_link" json:"doc_link,omitempty"`
	Document         datatypes.JSON `gorm:"column:document;type:jsonb" json:"document"`
	ElapsedMS        int64          `gorm:"column:elapsed_ms" json:"elapsed_ms"`
	CreatedAt        time.Time      `gorm:"not null;index" json:"created_at"`
}

func (UsageRecord) TableName() string { return "usage_record" }

// Open connects to Postgres when dsn is a postgres:// URL or key=value DSN,
// and to SQLite otherwise (a file path, or ":memory:" when dsn is empty).
// The usage_record table is migrated on open.
func Open(dsn string) (*gorm.DB, error) {
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	}

	var (
		db  *gorm.DB
		err error
	)
	if isPostgres(dsn) {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		if strings.TrimSpace(dsn) == "" {
			dsn = ":memory:"
		}
		db, err = gorm.Open(sqlite.Open(dsn), cfg)
		if err == nil {
			// each connection to :memory: is its own database
			sqlDB, dbErr := db.DB()
			if dbErr != nil {
				return nil, fmt.Errorf("open ledger: %w", dbErr)
			}
			sqlDB.SetMaxOpenConns(1)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	if err := db.AutoMigrate(&UsageRecord{}); err != nil {
		return nil, fmt.Errorf("migrate ledger: %w", err)
	}
	return db, nil
}

func isPostgres(dsn string) bool {
	d := strings.TrimSpace(dsn)
	return strings.HasPrefix(d, "postgres://") ||
		strings.HasPrefix(d, "postgresql://") ||
		strings.Contains(d, "host=")
}

type UsageRecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rec *UsageRecord) error
	ListByRun(ctx context.Context, tx *gorm.DB, runID uuid.UUID) ([]*UsageRecord, error)
}

type usageRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUsageRecordRepo(db *gorm.DB, baseLog *logger.Logger) UsageRecordRepo {
	return &usageRecordRepo{
		db:  db,
		log: baseLog.With("repo", "UsageRecordRepo"),
	}
}

func (r *usageRecordRepo) Create(ctx context.Context, tx *gorm.DB, rec *UsageRecord) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if rec == nil {
		return nil
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if len(rec.Document) == 0 {
		rec.Document = datatypes.JSON([]byte("{}"))
	}
	return transaction.WithContext(ctx).Create(rec).Error
}

func (r *usageRecordRepo) ListByRun(ctx context.Context, tx *gorm.DB, runID uuid.UUID) ([]*UsageRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*UsageRecord
	if err := transaction.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// DocumentJSON encodes a generated document for the Document column. A nil
// document is stored as {}.
func DocumentJSON(doc map[string]any) datatypes.JSON {
	if doc == nil {
		return datatypes.JSON([]byte("{}"))
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(b)
}
