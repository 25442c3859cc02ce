package tmpl

import (
	"encoding/json"
	"strings"
)

// MarshalJSON implements json.Marshaler for Template.
func (t *Template) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ToMap())
}

// ToMap converts the template to native Go values for inspection.
func (t *Template) ToMap() map[string]any {
	segs := make([]any, 0, len(t.Segments()))

	for _, seg := range t.Segments() {
		if seg.Node == nil {
			segs = append(segs, map[string]any{"text": seg.Text})

			continue
		}

		segs = append(segs, NodeMap(seg.Node))
	}

	m := map[string]any{"segments": segs}

	if t != nil && t.Purpose != "" {
		m["purpose"] = t.Purpose
	}

	if t != nil && t.ID != "" {
		m["id"] = t.ID
	}

	return m
}

// NodeMap converts an expression tree to native Go values for inspection.
func NodeMap(n Node) map[string]any {
	switch node := n.(type) {
	case nil:
		return nil
	case Const:
		return map[string]any{"const": node.Value}
	case Lookup:
		return map[string]any{"lookup": strings.Join(node.Path, ".")}
	case GlobalRef:
		return map[string]any{"global": strings.Join(node.Path, ".")}
	case Arith:
		m := map[string]any{
			"op":    string(node.Op),
			"right": NodeMap(node.Right),
		}

		if node.Left != nil {
			m["left"] = NodeMap(node.Left)
		}

		return m
	case Pipe:
		args := make([]any, len(node.Args))
		for i, a := range node.Args {
			args[i] = NodeMap(a)
		}

		return map[string]any{"pipe": node.Name, "args": args}
	case Raw:
		return map[string]any{"raw": NodeMap(node.X)}
	case Escaped:
		return map[string]any{"escaped": NodeMap(node.X)}
	default:
		return map[string]any{"node": "unknown"}
	}
}

// TokenMaps converts tokens to native Go values for inspection.
func TokenMaps(tokens []Token) []map[string]any {
	out := make([]map[string]any, len(tokens))
	for i, t := range tokens {
		out[i] = map[string]any{"kind": t.Kind.String(), "text": t.Text}
	}

	return out
}
