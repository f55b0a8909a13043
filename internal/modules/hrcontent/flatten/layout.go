// Package flatten turns a generated document into one spreadsheet row.
//
// A Layout is an ordered list of column groups. Every group carries an
// explicit Policy that decides how its cells are produced and which
// placeholder stands in for missing data. The placeholders differ between
// policies and are not unified.
package flatten

import (
	"fmt"
	"strings"

	"github.com/yungbote/hrgen/internal/modules/hrcontent/schema"
)

type Policy int

const (
	// SingleFieldWithDefault emits the value at Path, or Default when absent.
	SingleFieldWithDefault Policy = iota + 1
	// Constant emits Value (or the job title when FromTitle is set).
	Constant
	// BulletList renders a string list at Path through FormatBullets.
	BulletList
	// JoinedText joins a string list at Path with newlines.
	JoinedText
	// FixedWidthPadded emits exactly Slots x len(SubFields) cells. Missing
	// slots are "" and a present slot missing a sub-field gets its Default.
	FixedWidthPadded
	// VariableWidthUnpadded emits len(SubFields) cells per element actually
	// present. Its width is unknown until the document is traversed.
	VariableWidthUnpadded
	// TreeProjection flattens the whole document into underscore-joined
	// keys and projects the result onto Columns.
	TreeProjection
)

func (p Policy) String() string {
	switch p {
	case SingleFieldWithDefault:
		return "single_field_with_default"
	case Constant:
		return "constant"
	case BulletList:
		return "bullet_list"
	case JoinedText:
		return "joined_text"
	case FixedWidthPadded:
		return "fixed_width_padded"
	case VariableWidthUnpadded:
		return "variable_width_unpadded"
	case TreeProjection:
		return "tree_projection"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// SubField is one named field of a repeated sub-object.
type SubField struct {
	Name string
	// Column is a header pattern taking the 1-based element index, e.g. "kpis_focus_%d".
	Column  string
	Default string
	Bullets bool
}

// Pairing expands a captured section by zipping two lists per tier into
// <Prefix>_<tier>_<i>_<NameKey|WithKey> columns.
type Pairing struct {
	Section string
	Prefix  string
	Names   string
	With    string
	NameKey string
}

type ColumnGroup struct {
	Policy Policy
	Column string
	Path   string

	Default   string
	Value     string
	FromTitle bool

	Slots     int
	SubFields []SubField

	Columns []string
	Pairing *Pairing
}

// Layout is the hand-declared column order of one pipeline.
type Layout struct {
	Groups []ColumnGroup
}

// Header is an ordered list of column names.
type Header []string

func (h Header) Index(name string) int {
	for i, c := range h {
		if c == name {
			return i
		}
	}
	return -1
}

// Row is one flattened spreadsheet row. The empty marker is "".
type Row []string

// Set writes value into the named column. It reports false when the header
// has no such column or the row is too short.
func (r Row) Set(h Header, column, value string) bool {
	i := h.Index(column)
	if i < 0 || i >= len(r) {
		return false
	}
	r[i] = value
	return true
}

// Fixed reports whether every row built from the layout has the same width.
func (l Layout) Fixed() bool {
	for _, g := range l.Groups {
		if g.Policy == VariableWidthUnpadded {
			return false
		}
	}
	return true
}

// Header returns the declared columns. Variable-width groups contribute
// nothing here; use the header returned by Flatten for those layouts.
func (l Layout) Header() Header {
	var h Header
	for _, g := range l.Groups {
		switch g.Policy {
		case FixedWidthPadded:
			for slot := 1; slot <= g.Slots; slot++ {
				for _, sf := range g.SubFields {
					h = append(h, fmt.Sprintf(sf.Column, slot))
				}
			}
		case VariableWidthUnpadded:
		case TreeProjection:
			h = append(h, g.Columns...)
		default:
			h = append(h, g.Column)
		}
	}
	return h
}

// Flatten builds the row for one document. The returned header is the
// declared header with any variable-width columns filled in as traversed.
func (l Layout) Flatten(title string, doc map[string]any) (Header, Row) {
	var (
		h   Header
		row Row
	)
	for _, g := range l.Groups {
		switch g.Policy {
		case SingleFieldWithDefault:
			h = append(h, g.Column)
			row = append(row, scalarOr(doc, g.Path, g.Default))

		case Constant:
			h = append(h, g.Column)
			if g.FromTitle {
				row = append(row, title)
			} else {
				row = append(row, g.Value)
			}

		case BulletList:
			h = append(h, g.Column)
			v, _ := lookup(doc, g.Path)
			row = append(row, FormatBullets(v))

		case JoinedText:
			h = append(h, g.Column)
			row = append(row, joined(doc, g.Path))

		case FixedWidthPadded:
			seq, _ := lookupList(doc, g.Path)
			for slot := 0; slot < g.Slots; slot++ {
				for _, sf := range g.SubFields {
					h = append(h, fmt.Sprintf(sf.Column, slot+1))
					if slot >= len(seq) {
						row = append(row, "")
						continue
					}
					row = append(row, subField(seq[slot], sf))
				}
			}

		case VariableWidthUnpadded:
			seq, _ := lookupList(doc, g.Path)
			for i, el := range seq {
				for _, sf := range g.SubFields {
					h = append(h, fmt.Sprintf(sf.Column, i+1))
					row = append(row, subField(el, sf))
				}
			}

		case TreeProjection:
			flat := Tree(doc, g.Pairing)
			for _, c := range g.Columns {
				h = append(h, c)
				row = append(row, flat[c])
			}
		}
	}
	return h, row
}

func subField(el any, sf SubField) string {
	obj, _ := el.(map[string]any)
	v, ok := obj[sf.Name]
	if sf.Bullets {
		if !ok {
			return NA
		}
		return FormatBullets(v)
	}
	if !ok || v == nil {
		return sf.Default
	}
	return text(v)
}

func scalarOr(doc map[string]any, path, def string) string {
	v, ok := lookup(doc, path)
	if !ok || v == nil {
		return def
	}
	if list, isList := v.([]any); isList {
		return joinList(list)
	}
	return text(v)
}

func joined(doc map[string]any, path string) string {
	v, ok := lookup(doc, path)
	if !ok || v == nil {
		return NA
	}
	if list, isList := v.([]any); isList {
		return joinList(list)
	}
	return text(v)
}

func joinList(list []any) string {
	parts := make([]string, 0, len(list))
	for _, it := range list {
		parts = append(parts, text(it))
	}
	return strings.Join(parts, "\n")
}

func lookup(doc map[string]any, path string) (any, bool) {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func lookupList(doc map[string]any, path string) ([]any, bool) {
	v, ok := lookup(doc, path)
	if !ok {
		return nil, false
	}
	seq, ok := v.([]any)
	return seq, ok
}

// Check verifies every path-addressed group against the declared schema so
// a layout cannot silently drift from the shape the model is asked for.
func (l Layout) Check(root schema.Node) error {
	var problems []string
	for _, g := range l.Groups {
		if g.Path == "" {
			continue
		}
		n, ok := root.Lookup(g.Path)
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: path %q not declared", g.Policy, g.Path))
			continue
		}
		want := map[Policy][]schema.Shape{
			SingleFieldWithDefault: {schema.ShapeScalar, schema.ShapeStringList},
			BulletList:             {schema.ShapeStringList, schema.ShapeNestedList},
			JoinedText:             {schema.ShapeStringList, schema.ShapeScalar},
			FixedWidthPadded:       {schema.ShapeObjectList},
			VariableWidthUnpadded:  {schema.ShapeObjectList},
		}[g.Policy]
		if len(want) == 0 {
			continue
		}
		if !hasShape(want, n.Shape()) {
			problems = append(problems, fmt.Sprintf("%s: path %q has shape %s", g.Policy, g.Path, n.Shape()))
			continue
		}
		for _, sf := range g.SubFields {
			if _, ok := n.Lookup(sf.Name); !ok {
				problems = append(problems, fmt.Sprintf("%s: sub-field %q not declared under %q", g.Policy, sf.Name, g.Path))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("layout does not match schema:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

func hasShape(list []schema.Shape, s schema.Shape) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
