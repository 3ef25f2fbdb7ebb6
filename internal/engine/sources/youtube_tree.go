package sources

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Upstream JSON is decoded into an untyped tree (map[string]any, []any,
// string, float64, bool). Typed records are built only through the named
// accessor chains below, never by asserting one fixed shape.

// dig walks a path of object keys (string) and array indices (int).
// Returns nil as soon as a step does not exist.
func dig(node any, path ...any) any {
	cur := node
	for _, step := range path {
		switch k := step.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return nil
			}
			cur = m[k]
		case int:
			a, ok := cur.([]any)
			if !ok || k < 0 || k >= len(a) {
				return nil
			}
			cur = a[k]
		default:
			return nil
		}
		if cur == nil {
			return nil
		}
	}
	return cur
}

// list returns the array at path, or nil.
func list(node any, path ...any) []any {
	a, _ := dig(node, path...).([]any)
	return a
}

// obj returns the object at path, or nil.
func obj(node any, path ...any) map[string]any {
	m, _ := dig(node, path...).(map[string]any)
	return m
}

// textOf renders the common YouTube text shapes as a plain string:
// raw strings and numbers, {simpleText}, {runs:[{text}]} (joined),
// {content} (view models) and {label} accessibility data.
func textOf(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any:
		if s, ok := t["simpleText"].(string); ok {
			return s
		}
		if runs, ok := t["runs"].([]any); ok {
			var sb strings.Builder
			for _, r := range runs {
				if s, ok := dig(r, "text").(string); ok {
					sb.WriteString(s)
				}
			}
			return sb.String()
		}
		if s, ok := t["content"].(string); ok {
			return s
		}
		if s, ok := t["label"].(string); ok {
			return s
		}
	}
	return ""
}

// accessor extracts one candidate value for a field from a tree node.
type accessor func(node any) string

// chain is an ordered list of alternative accessors for one logical field.
// The first non-empty (after trimming) result wins.
type chain []accessor

func (c chain) first(node any) string {
	for _, a := range c {
		if s := strings.TrimSpace(a(node)); s != "" {
			return s
		}
	}
	return ""
}

// at is the basic accessor: the text at a fixed path.
func at(path ...any) accessor {
	return func(node any) string { return textOf(dig(node, path...)) }
}

// under runs inner against the node at path.
func under(path []any, inner accessor) accessor {
	return func(node any) string { return inner(dig(node, path...)) }
}

// anyItem runs inner against each element of the array at path and returns
// the first non-empty result.
func anyItem(path []any, inner accessor) accessor {
	return func(node any) string {
		for _, it := range list(node, path...) {
			if s := strings.TrimSpace(inner(it)); s != "" {
				return s
			}
		}
		return ""
	}
}

// lastItem runs inner against the final element of the array at path.
func lastItem(path []any, inner accessor) accessor {
	return func(node any) string {
		items := list(node, path...)
		if len(items) == 0 {
			return ""
		}
		return inner(items[len(items)-1])
	}
}

// containing narrows a to results that mention substr (case-insensitive).
func containing(substr string, a accessor) accessor {
	substr = strings.ToLower(substr)
	return func(node any) string {
		s := a(node)
		if strings.Contains(strings.ToLower(s), substr) {
			return s
		}
		return ""
	}
}

// findAll collects every object stored under key anywhere in the tree,
// depth-first. Array order is preserved; sibling object keys are not ordered.
func findAll(node any, key string) []map[string]any {
	var out []map[string]any
	var walk func(v any)
	walk = func(v any) {
		switch t := v.(type) {
		case map[string]any:
			if m, ok := t[key].(map[string]any); ok {
				out = append(out, m)
			}
			for k, child := range t {
				if k == key {
					continue
				}
				walk(child)
			}
		case []any:
			for _, child := range t {
				walk(child)
			}
		}
	}
	walk(node)
	return out
}

// decodeTree parses a JSON document into the untyped tree.
func decodeTree(data string) (map[string]any, error) {
	var root map[string]any
	if err := json.Unmarshal([]byte(data), &root); err != nil {
		return nil, err
	}
	return root, nil
}
