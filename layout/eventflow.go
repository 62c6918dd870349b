package layout

import (
	"github.com/viant/graphforge/graph"
)

// eventNodeCategory marks a node as an event root, mirroring
// validate.eventNodeCategory -- kept as a separate constant here since the
// two packages must not import each other for this one marker.
const eventNodeCategory = "事件节点"

// FindEventRoots returns the ids (sorted) of every node that starts an event
// flow: nodes whose category marks them as event nodes, plus virtual input
// pins on composite/subgraph editors.
func FindEventRoots(model *graph.GraphModel) []string {
	return findEventRoots(model)
}

func findEventRoots(model *graph.GraphModel) []string {
	var roots []string
	for _, id := range model.SortedNodeIDs() {
		n := model.Nodes[id]
		if n.Category == eventNodeCategory {
			roots = append(roots, id)
			continue
		}
		if n.IsVirtualPin && n.IsVirtualPinInput {
			roots = append(roots, id)
		}
	}
	return roots
}

// propagateEventMetadata runs a BFS from every root along flow-out edges,
// assigning (event_root_id, event_title) to every downstream flow node that
// hasn't already been claimed by an earlier root -- the same
// queue-of-unvisited-ids BFS shape as analyzer.Analyzer.computeTransitiveClosure,
// generalized from data-flow summary edges to event-metadata propagation.
func propagateEventMetadata(c *Context, roots []string) map[string]EventMetadata {
	result := map[string]EventMetadata{}
	for _, rootID := range roots {
		root, ok := c.Model.Nodes[rootID]
		if !ok {
			continue
		}
		if _, claimed := result[rootID]; claimed {
			continue
		}
		meta := EventMetadata{EventRootID: rootID, EventTitle: root.Title}
		result[rootID] = meta

		visited := map[string]bool{rootID: true}
		queue := []string{rootID}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, edge := range c.FlowOut(cur) {
				next := edge.DstNode
				if visited[next] {
					continue
				}
				visited[next] = true
				if _, claimed := result[next]; !claimed {
					result[next] = meta
				}
				queue = append(queue, next)
			}
		}
	}
	return result
}
