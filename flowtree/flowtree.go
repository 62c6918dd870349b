// Package flowtree renders a read-only ASCII debug view of a graph's event
// flows: one section per event root, flow nodes depth-first with branches
// enumerated by output-port order, back-edges rendered as cycles, and leaf
// flow nodes annotated with their data inputs.
//
// It is never invoked by layout.ComputeLayout; it exists purely so a human
// can read back what the layout engine built.
package flowtree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/viant/graphforge/graph"
)

const (
	eventNodeCategory = "事件节点"
	indentUnit        = "  "
)

// Render produces the full debug tree for model.
func Render(model *graph.GraphModel) string {
	if len(model.Nodes) == 0 {
		return "(empty graph)\n"
	}

	roots := eventRoots(model)
	if len(roots) == 0 {
		return renderDataLayers(model)
	}

	var b strings.Builder
	for _, rootID := range roots {
		root := model.Nodes[rootID]
		fmt.Fprintf(&b, "== %s (%s) ==\n", root.Title, rootID)
		visited := map[string]bool{}
		renderFlowNode(&b, model, rootID, 0, visited)
		b.WriteString("\n")
	}
	return b.String()
}

func eventRoots(model *graph.GraphModel) []string {
	var roots []string
	for _, id := range model.SortedNodeIDs() {
		if model.Nodes[id].Category == eventNodeCategory {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

func renderFlowNode(b *strings.Builder, model *graph.GraphModel, id string, depth int, visited map[string]bool) {
	indent := strings.Repeat(indentUnit, depth)
	node := model.Nodes[id]

	if visited[id] {
		fmt.Fprintf(b, "%s↻ cycle: %s\n", indent, node.Title)
		return
	}
	visited[id] = true

	fmt.Fprintf(b, "%s%s (%s)\n", indent, node.Title, id)
	for _, key := range sortedConstantKeys(node.InputConstants) {
		fmt.Fprintf(b, "%s  const %s = %s\n", indent, key, node.InputConstants[key])
	}

	outEdges := flowOutEdges(model, id)
	if len(outEdges) == 0 {
		renderDataInputs(b, model, node, indent)
		return
	}
	for _, edge := range outEdges {
		renderFlowNode(b, model, edge.DstNode, depth+1, visited)
	}
}

func renderDataInputs(b *strings.Builder, model *graph.GraphModel, node *graph.NodeModel, indent string) {
	for _, edgeID := range model.SortedEdgeIDs() {
		edge := model.Edges[edgeID]
		if edge.DstNode != node.ID || graph.IsFlowPortName(edge.DstPort) {
			continue
		}
		src := model.Nodes[edge.SrcNode]
		srcTitle := edge.SrcNode
		if src != nil {
			srcTitle = src.Title
		}
		fmt.Fprintf(b, "%s  %s ← %s.%s\n", indent, edge.DstPort, srcTitle, edge.SrcPort)
	}
}

func flowOutEdges(model *graph.GraphModel, nodeID string) []*graph.EdgeModel {
	var edges []*graph.EdgeModel
	for _, edgeID := range model.SortedEdgeIDs() {
		edge := model.Edges[edgeID]
		if edge.SrcNode == nodeID && graph.IsFlowPortName(edge.SrcPort) {
			edges = append(edges, edge)
		}
	}
	if node := model.Nodes[nodeID]; node != nil {
		sort.SliceStable(edges, func(i, j int) bool {
			return node.OutputIndex(edges[i].SrcPort) < node.OutputIndex(edges[j].SrcPort)
		})
	}
	return edges
}

func sortedConstantKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// renderDataLayers handles a pure-data graph (no event roots): nodes are
// rendered left to right in dependency layers instead of a flow tree.
func renderDataLayers(model *graph.GraphModel) string {
	depth := map[string]int{}
	for _, id := range model.SortedNodeIDs() {
		depth[id] = 0
	}
	for range model.Nodes {
		changed := false
		for _, edgeID := range model.SortedEdgeIDs() {
			edge := model.Edges[edgeID]
			if depth[edge.DstNode] < depth[edge.SrcNode]+1 {
				depth[edge.DstNode] = depth[edge.SrcNode] + 1
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	layers := map[int][]string{}
	maxLayer := 0
	for id, d := range depth {
		layers[d] = append(layers[d], id)
		if d > maxLayer {
			maxLayer = d
		}
	}

	var b strings.Builder
	for layer := 0; layer <= maxLayer; layer++ {
		ids := layers[layer]
		sort.Strings(ids)
		titles := make([]string, len(ids))
		for i, id := range ids {
			titles[i] = model.Nodes[id].Title
		}
		fmt.Fprintf(&b, "layer %d: %s\n", layer, strings.Join(titles, ", "))
	}
	return b.String()
}
