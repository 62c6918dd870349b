package validate

import (
	"fmt"
	"strings"

	"github.com/viant/graphforge/graph"
	"github.com/viant/graphforge/pynode"
	"github.com/viant/graphforge/settings"
)

// eventNodeCategory marks a node as an event root for the purposes of
// event-name validation.
const eventNodeCategory = "事件节点"

// eventNameConstant is the input-constant key an event node stores its
// registered event/signal name under.
const eventNameConstant = "事件名"

// builtinEvents are the event names the engine recognizes without needing
// a signal binding.
var builtinEvents = map[string]bool{
	"Start": true, "Update": true, "Destroy": true, "Tick": true,
	"启动": true, "更新": true, "销毁": true,
}

// compatAliases extends type compatibility beyond reflexivity/generic for
// pairs the node library declares as interchangeable (e.g. an int literal
// feeding a float input).
var compatAliases = map[[2]string]bool{
	{"整数", "浮点数"}: true,
}

const genericType = "通用"

// Validate runs every registered rule against a graph and returns the full
// report; it never stops early on the first failure.
func Validate(model *graph.GraphModel, registry *pynode.Registry, cfg *settings.Settings) Report {
	if cfg == nil {
		cfg = settings.Default()
	}
	var report Report

	knownEvents := collectKnownEventNames(model)

	for _, id := range model.SortedNodeIDs() {
		node := model.Nodes[id]
		validateEventName(node, knownEvents, &report)
	}

	for _, id := range model.SortedEdgeIDs() {
		edge := model.Edges[id]
		validateEdge(model, edge, registry, cfg, &report)
	}

	return report
}

// collectKnownEventNames merges the built-in events with any signal names
// declared in the graph's metadata ("signal_bindings"), so a custom signal
// used as an event source is not flagged as unknown.
func collectKnownEventNames(model *graph.GraphModel) map[string]bool {
	known := map[string]bool{}
	for name := range builtinEvents {
		known[name] = true
	}
	if bindings, ok := model.Metadata["signal_bindings"].([]any); ok {
		for _, b := range bindings {
			if name, ok := b.(string); ok {
				known[name] = true
			}
		}
	}
	if bindings, ok := model.Metadata["signal_bindings"].([]string); ok {
		for _, name := range bindings {
			known[name] = true
		}
	}
	return known
}

func validateEventName(node *graph.NodeModel, knownEvents map[string]bool, report *Report) {
	if node.Category == eventNodeCategory {
		if name, ok := node.InputConstants[eventNameConstant]; ok && name != "" {
			if !knownEvents[name] {
				report.add(LevelError, CodeUnknownEventName, node.ID,
					fmt.Sprintf("event name %q is neither a built-in event nor a known signal", name))
			}
		}
	}
	if strings.HasPrefix(node.Title, "on_") {
		eventName := strings.TrimPrefix(node.Title, "on_")
		if !knownEvents[eventName] {
			report.add(LevelWarning, CodeOnMethodNameUnknown, node.ID,
				fmt.Sprintf("method name on_%s does not match a built-in event or known signal", eventName))
		}
	}
}

func validateEdge(model *graph.GraphModel, edge *graph.EdgeModel, registry *pynode.Registry, cfg *settings.Settings, report *Report) {
	srcNode, srcOK := model.Nodes[edge.SrcNode]
	dstNode, dstOK := model.Nodes[edge.DstNode]
	if !srcOK || !dstOK {
		report.add(LevelError, CodeUnknownPort, edge.ID, "edge endpoint references a missing node")
		return
	}

	srcIdx := srcNode.OutputIndex(edge.SrcPort)
	dstIdx := dstNode.InputIndex(edge.DstPort)
	if srcIdx < 0 || dstIdx < 0 {
		report.add(LevelError, CodeUnknownPort, edge.ID,
			fmt.Sprintf("edge references unknown port (%s.%s -> %s.%s)", edge.SrcNode, edge.SrcPort, edge.DstNode, edge.DstPort))
		return
	}

	srcIsFlow := graph.IsFlowPortName(edge.SrcPort)
	dstIsFlow := graph.IsFlowPortName(edge.DstPort)
	if srcIsFlow != dstIsFlow {
		report.add(LevelError, CodeFlowDataSegregation, edge.ID,
			"flow ports may only connect to flow ports, and data ports only to data ports")
		return
	}
	if srcIsFlow {
		return
	}

	if graph.IsSelectionPortName(edge.SrcPort) || graph.IsSelectionPortName(edge.DstPort) {
		report.add(LevelError, CodeSelectionPortWired, edge.ID, "selection ports cannot be wired")
		return
	}

	if registry != nil {
		srcType, dstType := portTypes(registry, srcNode, dstNode, edge)
		if srcType != "" && dstType != "" && !typesCompatible(srcType, dstType) {
			report.add(LevelError, CodeIncompatiblePortTypes, edge.ID,
				fmt.Sprintf("%s is not compatible with %s", srcType, dstType))
		}

		if cfg.StrictEntityInputsWireOnly {
			validateEntityInputProvenance(dstNode, edge.DstPort, registry, report, edge.ID)
		}
	}
}

func portTypes(registry *pynode.Registry, srcNode, dstNode *graph.NodeModel, edge *graph.EdgeModel) (string, string) {
	var srcType, dstType string
	if def, ok := registry.Get(srcNode.Category + "/" + srcNode.Title); ok {
		srcType = def.OutputTypes[edge.SrcPort]
	}
	if def, ok := registry.Get(dstNode.Category + "/" + dstNode.Title); ok {
		dstType = def.InputTypes[edge.DstPort]
	}
	return srcType, dstType
}

// typesCompatible implements the type-compatibility rule: reflexive,
// "generic" compatible with anything, parameterized list/map types
// compatible iff their element types are, and otherwise incompatible unless
// an explicit alias is declared.
func typesCompatible(src, dst string) bool {
	if src == dst {
		return true
	}
	if src == genericType || dst == genericType {
		return true
	}
	if compatAliases[[2]string{src, dst}] || compatAliases[[2]string{dst, src}] {
		return true
	}
	srcElem, srcIsList := listElementType(src)
	dstElem, dstIsList := listElementType(dst)
	if srcIsList && dstIsList {
		return typesCompatible(srcElem, dstElem)
	}
	srcKey, srcVal, srcIsMap := mapElementTypes(src)
	dstKey, dstVal, dstIsMap := mapElementTypes(dst)
	if srcIsMap && dstIsMap {
		return typesCompatible(srcKey, dstKey) && typesCompatible(srcVal, dstVal)
	}
	return false
}

// listElementType recognizes a "列表<T>" parameterized list type and
// returns its element type.
func listElementType(t string) (string, bool) {
	const prefix, suffix = "列表<", ">"
	if strings.HasPrefix(t, prefix) && strings.HasSuffix(t, suffix) {
		return t[len(prefix) : len(t)-len(suffix)], true
	}
	return "", false
}

// mapElementTypes recognizes a "字典<K,V>" parameterized mapping type and
// returns its key and value types. A key-less "字典<V>" form is also
// accepted, with the key type defaulting to the generic type.
func mapElementTypes(t string) (key, value string, ok bool) {
	const prefix, suffix = "字典<", ">"
	if !strings.HasPrefix(t, prefix) || !strings.HasSuffix(t, suffix) {
		return "", "", false
	}
	inner := t[len(prefix) : len(t)-len(suffix)]
	if k, v, found := strings.Cut(inner, ","); found {
		return strings.TrimSpace(k), strings.TrimSpace(v), true
	}
	return genericType, inner, true
}

// validateEntityInputProvenance enforces the strict-mode rule that an entity
// input may come only from a node output (any wired edge already satisfies
// this by construction) or an event parameter; this function only needs to
// flag the case this package can actually observe, a constant literal
// assigned directly to an entity input.
func validateEntityInputProvenance(node *graph.NodeModel, port string, registry *pynode.Registry, report *Report, location string) {
	entityInputs := registry.EntityInputNames(node.Title)
	if entityInputs == nil || !entityInputs[port] {
		return
	}
	if _, hasConstant := node.InputConstants[port]; hasConstant {
		report.add(LevelError, CodeEntityInputProvenance, location,
			fmt.Sprintf("entity input %q on %s cannot be satisfied by a literal constant in strict mode", port, node.ID))
	}
}
