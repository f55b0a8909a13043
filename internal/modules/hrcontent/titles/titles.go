// Package titles loads the job titles a batch runs over.
package titles

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultColumn is the title column of the source sheet export.
const DefaultColumn = "clean_job_titles"

// Normalize trims and title-cases a job title ("data analyst" -> "Data Analyst").
func Normalize(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return cases.Title(language.English).String(s)
}

// Read returns the normalized, non-empty values of column in CSV order.
func Read(r io.Reader, column string) ([]string, error) {
	if strings.TrimSpace(column) == "" {
		column = DefaultColumn
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("titles: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("titles: read header: %w", err)
	}
	idx := -1
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("titles: column %q not found in %v", column, header)
	}

	var out []string
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("titles: line %d: %w", line, err)
		}
		if idx >= len(rec) {
			continue
		}
		if t := Normalize(rec[idx]); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}

func ReadFile(path, column string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("titles: %w", err)
	}
	defer f.Close()
	return Read(f, column)
}

// Window returns titles[offset:offset+limit], clamped. limit <= 0 means no limit.
func Window(titles []string, offset, limit int) []string {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(titles) {
		return nil
	}
	end := len(titles)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return titles[offset:end]
}
