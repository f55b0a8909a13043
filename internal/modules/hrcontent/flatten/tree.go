package flatten

import (
	"fmt"
	"strconv"
)

// Tree flattens doc into "<parent>_<key>" keys, with list elements keyed by
// their zero-based index. When p is set, recursion stops one level under
// p.Section: each tier there is captured whole and expanded by pairing
// p.Names with p.With positionally.
func Tree(doc map[string]any, p *Pairing) map[string]string {
	out := map[string]string{}
	var captured map[string]any
	for k, v := range doc {
		if p != nil && k == p.Section {
			captured, _ = v.(map[string]any)
			continue
		}
		walkTree(k, v, out)
	}
	if p != nil && captured != nil {
		expandPairs(captured, p, out)
	}
	return out
}

func walkTree(key string, v any, out map[string]string) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			walkTree(key+"_"+k, child, out)
		}
	case []any:
		for i, el := range t {
			walkTree(key+"_"+strconv.Itoa(i), el, out)
		}
	default:
		out[key] = text(v)
	}
}

func expandPairs(section map[string]any, p *Pairing, out map[string]string) {
	nameKey := p.NameKey
	if nameKey == "" {
		nameKey = "name"
	}
	for tier, raw := range section {
		obj, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		names, _ := obj[p.Names].([]any)
		with, _ := obj[p.With].([]any)
		for i, n := range names {
			base := fmt.Sprintf("%s_%s_%d_", p.Prefix, tier, i)
			out[base+nameKey] = text(n)
			if i < len(with) {
				out[base+p.With] = text(with[i])
			} else {
				out[base+p.With] = ""
			}
		}
	}
}
