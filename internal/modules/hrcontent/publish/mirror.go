package publish

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/yungbote/hrgen/internal/modules/hrcontent/flatten"
	"github.com/yungbote/hrgen/internal/platform/gcp"
	"github.com/yungbote/hrgen/internal/platform/logger"
)

// Mirror keeps an append-only CSV copy of every published row, either on
// local disk or at a gs://bucket/object URL. The header is written once,
// when the table is new; later rows are projected onto the existing
// header by column name.
type Mirror struct {
	log   *logger.Logger
	store gcp.ObjectStore
	dest  string
}

// NewMirror returns nil when dest is empty. store may be nil for local paths.
func NewMirror(log *logger.Logger, store gcp.ObjectStore, dest string) (*Mirror, error) {
	if dest == "" {
		return nil, nil
	}
	if _, _, ok := gcp.ParseObjectURL(dest); ok && store == nil {
		return nil, fmt.Errorf("mirror %s needs object storage", dest)
	}
	return &Mirror{log: log.With("service", "Mirror", "dest", dest), store: store, dest: dest}, nil
}

func (m *Mirror) Append(ctx context.Context, header flatten.Header, rows ...flatten.Row) error {
	if m == nil || len(rows) == 0 {
		return nil
	}
	if bucket, key, ok := gcp.ParseObjectURL(m.dest); ok {
		return m.appendObject(ctx, bucket, key, header, rows)
	}
	return m.appendFile(header, rows)
}

func (m *Mirror) appendObject(ctx context.Context, bucket, key string, header flatten.Header, rows []flatten.Row) error {
	existing, err := m.store.ReadObject(ctx, bucket, key)
	if err != nil && !errors.Is(err, gcp.ErrObjectNotFound) {
		return err
	}
	chunk, err := encodeRows(existing, header, rows)
	if err != nil {
		return err
	}
	out := append(existing, chunk...)
	if err := m.store.WriteObject(ctx, bucket, key, out, "text/csv"); err != nil {
		return err
	}
	m.log.Debug("mirror updated", "rows", len(rows))
	return nil
}

func (m *Mirror) appendFile(header flatten.Header, rows []flatten.Row) error {
	existing, err := os.ReadFile(m.dest)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read mirror: %w", err)
	}
	chunk, err := encodeRows(existing, header, rows)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(m.dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create mirror dir: %w", err)
		}
	}
	f, err := os.OpenFile(m.dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open mirror: %w", err)
	}
	if _, err := f.Write(chunk); err != nil {
		_ = f.Close()
		return fmt.Errorf("write mirror: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close mirror: %w", err)
	}
	m.log.Debug("mirror updated", "rows", len(rows))
	return nil
}

// encodeRows renders the CSV bytes to append after existing. A new table
// gets header first; an existing one keeps its own column order.
func encodeRows(existing []byte, header flatten.Header, rows []flatten.Row) ([]byte, error) {
	target := header
	writeHeader := true
	if len(bytes.TrimSpace(existing)) > 0 {
		first, err := csv.NewReader(bytes.NewReader(existing)).Read()
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read mirror header: %w", err)
		}
		if len(first) > 0 {
			target = first
			writeHeader = false
		}
	}

	var buf bytes.Buffer
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		buf.WriteByte('\n')
	}
	w := csv.NewWriter(&buf)
	if writeHeader {
		if err := w.Write(target); err != nil {
			return nil, err
		}
	}
	for _, r := range rows {
		if err := w.Write(project(header, r, target)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func project(from flatten.Header, row flatten.Row, to flatten.Header) []string {
	out := make([]string, len(to))
	for i, col := range to {
		if j := from.Index(col); j >= 0 && j < len(row) {
			out[i] = row[j]
		}
	}
	return out
}
