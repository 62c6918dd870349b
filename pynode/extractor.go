// Package pynode implements the node-definition pipeline: AST extraction of
// node_spec(...)-decorated functions, normalization, and the indexed node
// registry.
//
// The extractor never imports or executes the inspected files. It parses
// with the go-tree-sitter Python grammar, walking the syntax tree the same
// way a language-agnostic AST inspector would.
package pynode

import (
	"context"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/viant/graphforge/internal/pyliteral"
)

// nodeSpecDecorator is the decorator name the extractor looks for.
const nodeSpecDecorator = "node_spec"

// ExtractedSpec is the raw, unnormalized output of AST extraction.
type ExtractedSpec struct {
	FilePath     string
	FunctionName string

	Name                      string
	Category                  string
	Inputs                    [][2]string // (port_name, type_name) pairs, in source order
	Outputs                   [][2]string
	Description               string
	MountRestrictions         []string
	DocReference              string
	DynamicPortType           string
	Scopes                    []string
	Aliases                   []string
	InputGenericConstraints   map[string]any
	OutputGenericConstraints  map[string]any
	InputEnumOptions          map[string]any
	OutputEnumOptions         map[string]any
}

// Extract parses the given implementation files and returns one
// ExtractedSpec per node_spec(...)-decorated top-level function. A function
// without the decorator is skipped silently -- it is not an error, per
// extractor_ast.py.
func Extract(ctx context.Context, paths []string) ([]ExtractedSpec, error) {
	var specs []ExtractedSpec
	for _, path := range paths {
		fileSpecs, err := ExtractFile(ctx, path)
		if err != nil {
			return nil, err
		}
		specs = append(specs, fileSpecs...)
	}
	return specs, nil
}

// ExtractFile parses a single implementation file.
func ExtractFile(ctx context.Context, path string) ([]ExtractedSpec, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-existent files are skipped, not an error (extractor_ast.py).
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return ExtractSource(ctx, path, src)
}

// ExtractSource parses Python source already in memory.
func ExtractSource(ctx context.Context, path string, src []byte) ([]ExtractedSpec, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}

	var specs []ExtractedSpec
	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		fn, decorators := unwrapDecoratedFunction(child)
		if fn == nil {
			continue
		}
		call := findNodeSpecCall(decorators, src)
		if call == nil {
			continue
		}
		spec := ExtractedSpec{
			FilePath:     path,
			FunctionName: functionName(fn, src),
		}
		applyKeywordArgs(call, src, &spec)
		specs = append(specs, spec)
	}
	return specs, nil
}

// unwrapDecoratedFunction returns (fn, decoratorNodes) for a
// decorated_definition wrapping a function_definition, or (nil, nil) for
// anything else (plain functions without decorators can never match
// node_spec so they are not candidates at all).
func unwrapDecoratedFunction(n *sitter.Node) (*sitter.Node, []*sitter.Node) {
	if n == nil {
		return nil, nil
	}
	if n.Type() == "function_definition" {
		return nil, nil
	}
	if n.Type() != "decorated_definition" {
		return nil, nil
	}
	var decorators []*sitter.Node
	var fn *sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "decorator":
			decorators = append(decorators, c)
		case "function_definition":
			fn = c
		}
	}
	if fn == nil {
		return nil, nil
	}
	return fn, decorators
}

func functionName(fn *sitter.Node, src []byte) string {
	nameNode := fn.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	return nameNode.Content(src)
}

// findNodeSpecCall returns the "call" node of the first decorator shaped
// like @node_spec(...), or nil.
func findNodeSpecCall(decorators []*sitter.Node, src []byte) *sitter.Node {
	for _, dec := range decorators {
		// A decorator node wraps a single expression child (often a call).
		for i := 0; i < int(dec.NamedChildCount()); i++ {
			expr := dec.NamedChild(i)
			if expr.Type() != "call" {
				continue
			}
			fn := expr.ChildByFieldName("function")
			if fn != nil && fn.Type() == "identifier" && fn.Content(src) == nodeSpecDecorator {
				return expr
			}
		}
	}
	return nil
}

// applyKeywordArgs walks a call's argument_list, reading each
// keyword_argument into the matching ExtractedSpec field via toLiteral,
// mirroring extractor_ast.py's dec.keywords loop.
func applyKeywordArgs(call *sitter.Node, src []byte, spec *ExtractedSpec) {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return
	}
	for i := 0; i < int(args.NamedChildCount()); i++ {
		kw := args.NamedChild(i)
		if kw.Type() != "keyword_argument" {
			continue
		}
		nameNode := kw.ChildByFieldName("name")
		valueNode := kw.ChildByFieldName("value")
		if nameNode == nil || valueNode == nil {
			continue
		}
		name := nameNode.Content(src)
		value := pyliteral.Of(valueNode, src)
		assignKeyword(spec, name, value)
	}
}

func assignKeyword(spec *ExtractedSpec, name string, value any) {
	switch name {
	case "name":
		spec.Name, _ = value.(string)
	case "category":
		spec.Category, _ = value.(string)
	case "inputs":
		spec.Inputs = toPairs(value)
	case "outputs":
		spec.Outputs = toPairs(value)
	case "description":
		spec.Description, _ = value.(string)
	case "mount_restrictions":
		spec.MountRestrictions = toStringList(value)
	case "doc_reference":
		spec.DocReference, _ = value.(string)
	case "dynamic_port_type":
		spec.DynamicPortType, _ = value.(string)
	case "scopes":
		spec.Scopes = toStringList(value)
	case "aliases":
		spec.Aliases = toStringList(value)
	case "input_generic_constraints":
		spec.InputGenericConstraints, _ = value.(map[string]any)
	case "output_generic_constraints":
		spec.OutputGenericConstraints, _ = value.(map[string]any)
	case "input_enum_options":
		spec.InputEnumOptions, _ = value.(map[string]any)
	case "output_enum_options":
		spec.OutputEnumOptions, _ = value.(map[string]any)
	}
}

// toPairs converts an []any of 2-element []any/string-pairs into [][2]string,
// mirroring extractor_ast.py's tolerant handling of (name, type) pairs.
func toPairs(v any) [][2]string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var pairs [][2]string
	for _, item := range list {
		pairList, ok := item.([]any)
		if !ok || len(pairList) < 2 {
			continue
		}
		first, _ := pairList[0].(string)
		second, _ := pairList[1].(string)
		pairs = append(pairs, [2]string{first, second})
	}
	return pairs
}

func toStringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
