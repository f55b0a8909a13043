// Package pipelines declares the content pipelines: what each asks the
// model for, how its answer becomes a row and where that row is published.
package pipelines

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/hrgen/internal/modules/hrcontent/flatten"
	"github.com/yungbote/hrgen/internal/modules/hrcontent/generator"
)

type Definition struct {
	Name        Name
	Description string

	Generation generator.Spec
	Layout     flatten.Layout

	// Worksheet is the tab rows are appended to.
	Worksheet string
	// TemplateDocID is the Google Doc replicated per title. Empty means the
	// pipeline only appends rows.
	TemplateDocID string
	DocSuffix     string
	// Substitute fills {{column}} placeholders in the replica from the row.
	Substitute bool
	// LinkColumn receives the replica's share link.
	LinkColumn string
	// MirrorPath is the default CSV copy of the output table, if any.
	MirrorPath string
}

// HasTemplate reports whether titles get their own document.
func (d Definition) HasTemplate() bool { return strings.TrimSpace(d.TemplateDocID) != "" }

var registry = map[Name]Definition{}

// Register adds or replaces a definition. It panics when the layout does not
// match the schema, so a drifted pipeline fails at startup.
func Register(d Definition) {
	if strings.TrimSpace(string(d.Name)) == "" {
		panic("pipelines: missing name")
	}
	if strings.TrimSpace(d.Generation.SchemaName) == "" {
		panic(fmt.Sprintf("pipelines: %s missing schema name", d.Name))
	}
	if strings.TrimSpace(d.Worksheet) == "" {
		panic(fmt.Sprintf("pipelines: %s missing worksheet", d.Name))
	}
	if err := d.Layout.Check(d.Generation.Schema); err != nil {
		panic(fmt.Sprintf("pipelines: %s: %v", d.Name, err))
	}
	if d.LinkColumn != "" && d.Layout.Header().Index(d.LinkColumn) < 0 {
		panic(fmt.Sprintf("pipelines: %s link column %q not in header", d.Name, d.LinkColumn))
	}
	registry[d.Name] = d
}

func Get(name Name) (Definition, error) {
	d, ok := registry[name]
	if !ok {
		return Definition{}, fmt.Errorf("unknown pipeline: %s (have %s)", name, strings.Join(namesOf(), ", "))
	}
	return d, nil
}

// All returns every registered definition ordered by name.
func All() []Definition {
	out := make([]Definition, 0, len(registry))
	for _, n := range namesOf() {
		out = append(out, registry[Name(n)])
	}
	return out
}

func namesOf() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, string(n))
	}
	sort.Strings(names)
	return names
}

func temperature(v float64) *float64 { return &v }

// RegisterAll registers the built-in pipelines.
func RegisterAll() {
	Register(jobDescription())
	Register(interview())
	Register(resume())
	Register(skills())
}
