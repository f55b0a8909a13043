package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

type Issue struct {
	Path    string
	Message string
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ValidationError lists every structural problem found in one pass.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "validation failed"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation error(s)", len(e.Issues))
	for _, is := range e.Issues {
		b.WriteString("\n  ")
		b.WriteString(is.String())
	}
	return b.String()
}

// Validate checks value against n and returns a *ValidationError listing all
// missing required fields, type mismatches, forbidden extra fields and
// short arrays. It does not stop at the first problem.
func Validate(n Node, value any) error {
	var issues []Issue
	walk(n, value, "", &issues)
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: issues}
}

func walk(n Node, value any, path string, issues *[]Issue) {
	add := func(format string, args ...any) {
		*issues = append(*issues, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	switch n.Kind {
	case KindString:
		if _, ok := value.(string); !ok {
			add("expected string, got %s", typeName(value))
		}

	case KindInteger:
		if !isInteger(value) {
			add("expected integer, got %s", typeName(value))
		}

	case KindArray:
		items, ok := value.([]any)
		if !ok {
			add("expected array, got %s", typeName(value))
			return
		}
		if n.MinItems > 0 && len(items) < n.MinItems {
			add("expected at least %d items, got %d", n.MinItems, len(items))
		}
		if n.Items == nil {
			return
		}
		for i, item := range items {
			walk(*n.Items, item, path+"["+strconv.Itoa(i)+"]", issues)
		}

	case KindObject:
		obj, ok := value.(map[string]any)
		if !ok {
			add("expected object, got %s", typeName(value))
			return
		}
		for _, f := range n.Fields {
			child := joinPath(path, f.Name)
			v, present := obj[f.Name]
			if !present {
				if f.Required {
					*issues = append(*issues, Issue{Path: child, Message: "field required"})
				}
				continue
			}
			if v == nil && !f.Required {
				continue
			}
			walk(f.Node, v, child, issues)
		}
		if n.Strict {
			var extra []string
			for k := range obj {
				if _, declared := n.Field(k); !declared {
					extra = append(extra, k)
				}
			}
			sort.Strings(extra)
			for _, k := range extra {
				*issues = append(*issues, Issue{Path: joinPath(path, k), Message: "extra field not permitted"})
			}
		}
	}
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func isInteger(v any) bool {
	switch t := v.(type) {
	case int, int32, int64:
		return true
	case float64:
		return t == math.Trunc(t) && !math.IsInf(t, 0)
	case json.Number:
		_, err := t.Int64()
		return err == nil
	default:
		return false
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int, int32, int64, json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
