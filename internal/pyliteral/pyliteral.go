// Package pyliteral converts tree-sitter Python expression nodes into Go
// literal values (string, bool, []any, map[string]any), shared between the
// node-definition extractor and the graph-file parser. String/number/bool
// constants pass through, list/tuple become []any, dict becomes
// map[string]any built by zipping keys and values, and anything else
// yields nil so downstream normalization/validation can report the
// problem instead of the pipeline crashing.
package pyliteral

import sitter "github.com/smacker/go-tree-sitter"

// Of converts a single Python expression node into a Go value.
func Of(n *sitter.Node, src []byte) any {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "string":
		return stringContent(n, src)
	case "integer", "float":
		return n.Content(src)
	case "true":
		return true
	case "false":
		return false
	case "none":
		return nil
	case "list", "tuple":
		var out []any
		for i := 0; i < int(n.NamedChildCount()); i++ {
			out = append(out, Of(n.NamedChild(i), src))
		}
		return out
	case "dictionary":
		out := map[string]any{}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			pair := n.NamedChild(i)
			if pair.Type() != "pair" {
				continue
			}
			key := pair.ChildByFieldName("key")
			val := pair.ChildByFieldName("value")
			if key == nil || val == nil {
				continue
			}
			keyStr, ok := Of(key, src).(string)
			if !ok {
				continue
			}
			out[keyStr] = Of(val, src)
		}
		return out
	default:
		return nil
	}
}

func stringContent(n *sitter.Node, src []byte) string {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "string_content" {
			return c.Content(src)
		}
	}
	return ""
}
