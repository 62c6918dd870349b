// Package pygraph parses an authored graph-definition .py file into a
// graph.GraphModel.
//
// Graph files in this workspace are produced by a companion code-generation
// pass that emits: a module docstring carrying graph_id/graph_name/
// graph_type as "key: value" lines, a GRAPH_VARIABLES list of variable
// tuples, and a GRAPH_DEFINITION dict literal holding the canonical
// nodes/edges the UI authored -- the same shape GraphModel.Serialize
// produces, so the parser's job is to round-trip that literal back into a
// GraphModel. The authoritative representation is produced by that
// code-generation pass; this parser is expected to round-trip it.
package pygraph

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/viant/graphforge/graph"
	"github.com/viant/graphforge/internal/pyliteral"
)

// ParseFile reads and parses a graph-definition file.
func ParseFile(ctx context.Context, path string) (*graph.GraphModel, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return ParseSource(ctx, path, src)
}

// ParseSource parses graph-definition source already in memory.
func ParseSource(ctx context.Context, path string, src []byte) (*graph.GraphModel, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}

	root := tree.RootNode()
	header := moduleDocstring(root, src)
	fields := parseHeaderFields(header)

	model := graph.New(fields["graph_id"], fields["graph_name"])
	if gt, ok := fields["graph_type"]; ok {
		model.Metadata["graph_type"] = gt
	}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() != "expression_statement" {
			continue
		}
		assign := soleAssignment(stmt)
		if assign == nil {
			continue
		}
		target := assign.ChildByFieldName("left")
		value := assign.ChildByFieldName("right")
		if target == nil || value == nil || target.Type() != "identifier" {
			continue
		}
		switch target.Content(src) {
		case "GRAPH_VARIABLES":
			model.GraphVariables = parseGraphVariables(value, src)
		case "GRAPH_DEFINITION":
			applyGraphDefinition(model, pyliteral.Of(value, src))
		}
	}

	return model, nil
}

// moduleDocstring returns the content of the first top-level string
// expression statement, if present.
func moduleDocstring(root *sitter.Node, src []byte) string {
	if root.NamedChildCount() == 0 {
		return ""
	}
	first := root.NamedChild(0)
	if first.Type() != "expression_statement" {
		return ""
	}
	if first.NamedChildCount() == 0 {
		return ""
	}
	strNode := first.NamedChild(0)
	if strNode.Type() != "string" {
		return ""
	}
	return stringContent(strNode, src)
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

// parseHeaderFields reads "key: value" lines out of the module docstring.
func parseHeaderFields(doc string) map[string]string {
	fields := map[string]string{}
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		if key != "" {
			fields[key] = val
		}
	}
	return fields
}

func soleAssignment(stmt *sitter.Node) *sitter.Node {
	if stmt.NamedChildCount() == 0 {
		return nil
	}
	child := stmt.NamedChild(0)
	if child.Type() == "assignment" {
		return child
	}
	return nil
}

// parseGraphVariables reads the GRAPH_VARIABLES list of
// (name, type, default, exposed, description) tuples.
func parseGraphVariables(n *sitter.Node, src []byte) []graph.GraphVariable {
	literal := pyliteral.Of(n, src)
	items, ok := literal.([]any)
	if !ok {
		return nil
	}
	var out []graph.GraphVariable
	for _, item := range items {
		tuple, ok := item.([]any)
		if !ok || len(tuple) < 2 {
			continue
		}
		v := graph.GraphVariable{}
		if s, ok := tuple[0].(string); ok {
			v.Name = s
		}
		if s, ok := tuple[1].(string); ok {
			v.Type = s
		}
		if len(tuple) > 2 {
			v.Default = fmt.Sprintf("%v", tuple[2])
		}
		if len(tuple) > 3 {
			if b, ok := tuple[3].(bool); ok {
				v.Exposed = b
			}
		}
		if len(tuple) > 4 {
			if s, ok := tuple[4].(string); ok {
				v.Description = s
			}
		}
		out = append(out, v)
	}
	return out
}

// applyGraphDefinition populates the model's nodes and edges from the
// GRAPH_DEFINITION dict literal, whose shape mirrors
// graph.GraphModel.Serialize's output.
func applyGraphDefinition(model *graph.GraphModel, literal any) {
	def, ok := literal.(map[string]any)
	if !ok {
		return
	}
	if nodes, ok := def["nodes"].([]any); ok {
		for _, item := range nodes {
			nodeMap, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if n := nodeFromLiteral(nodeMap); n != nil {
				model.AddNode(n)
			}
		}
	}
	if edges, ok := def["edges"].([]any); ok {
		for _, item := range edges {
			edgeMap, ok := item.(map[string]any)
			if !ok {
				continue
			}
			e := &graph.EdgeModel{
				ID:      stringField(edgeMap, "id"),
				SrcNode: stringField(edgeMap, "src_node"),
				SrcPort: stringField(edgeMap, "src_port"),
				DstNode: stringField(edgeMap, "dst_node"),
				DstPort: stringField(edgeMap, "dst_port"),
			}
			model.AddEdge(e)
		}
	}
	if metadata, ok := def["metadata"].(map[string]any); ok {
		for k, v := range metadata {
			model.Metadata[k] = v
		}
	}
	model.GraphRevision = 0
}

func nodeFromLiteral(m map[string]any) *graph.NodeModel {
	id := stringField(m, "id")
	if id == "" {
		return nil
	}
	n := graph.NewNode(id, stringField(m, "title"), stringField(m, "category"),
		portsFromLiteral(m["inputs"], true), portsFromLiteral(m["outputs"], false))
	n.CompositeID = stringField(m, "composite_id")
	if consts, ok := m["input_constants"].(map[string]any); ok {
		for k, v := range consts {
			n.InputConstants[k] = fmt.Sprintf("%v", v)
		}
	}
	if pos, ok := m["pos"].([]any); ok && len(pos) == 2 {
		n.PosX = toFloat(pos[0])
		n.PosY = toFloat(pos[1])
	}
	return n
}

func portsFromLiteral(v any, isInput bool) []graph.PortModel {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	ports := make([]graph.PortModel, 0, len(list))
	for _, item := range list {
		if name, ok := item.(string); ok {
			ports = append(ports, graph.PortModel{Name: name, IsInput: isInput})
		}
	}
	return ports
}

func stringField(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	case float64:
		return t
	default:
		return 0
	}
}
