package flatten

import (
	"encoding/json"
	"html"
	"strconv"
	"strings"
)

// NA is the placeholder for absent content fields.
const NA = "N/A"

// FormatBullets renders a sequence as an escaped <ul> block, one <li> per
// element in order. Nested sequences are joined with ", " before escaping.
// Anything that is not a sequence yields NA.
func FormatBullets(v any) string {
	var items []string
	switch t := v.(type) {
	case []any:
		items = make([]string, 0, len(t))
		for _, it := range t {
			if inner, ok := it.([]any); ok {
				parts := make([]string, 0, len(inner))
				for _, p := range inner {
					parts = append(parts, text(p))
				}
				items = append(items, strings.Join(parts, ", "))
				continue
			}
			items = append(items, text(it))
		}
	case []string:
		items = t
	default:
		return NA
	}

	var b strings.Builder
	b.WriteString("<ul>\n")
	for _, it := range items {
		b.WriteString("  <li>")
		b.WriteString(html.EscapeString(it))
		b.WriteString("</li>\n")
	}
	b.WriteString("</ul>")
	return b.String()
}

// text stringifies a decoded JSON value for a cell.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, text(p))
		}
		return strings.Join(parts, ", ")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
