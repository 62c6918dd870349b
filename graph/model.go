// Package graph defines the typed node-graph model: ports, nodes, edges,
// graph-scoped variables, and the basic blocks the layout engine produces.
// It follows a "rich struct with private index maps and a Clone method"
// shape, modeling node/port/edge rather than a generic type graph.
package graph

import (
	"fmt"
	"sort"

	"github.com/viant/graphforge/fingerprint"
)

// GraphModel is a single authored graph: its nodes, edges, variables, and
// engine metadata.
type GraphModel struct {
	GraphID   string
	GraphName string

	Nodes map[string]*NodeModel
	Edges map[string]*EdgeModel

	GraphVariables []GraphVariable
	Metadata       map[string]any

	BasicBlocks []BasicBlock

	GraphRevision int
	GraphVersion  int
}

// New returns an empty graph ready to receive nodes and edges.
func New(graphID, graphName string) *GraphModel {
	return &GraphModel{
		GraphID:   graphID,
		GraphName: graphName,
		Nodes:     map[string]*NodeModel{},
		Edges:     map[string]*EdgeModel{},
		Metadata:  map[string]any{},
		GraphVersion: 1,
	}
}

// AddNode inserts or replaces a node and bumps the graph revision.
func (g *GraphModel) AddNode(n *NodeModel) {
	g.Nodes[n.ID] = n
	g.GraphRevision++
}

// RemoveNode deletes a node by id. It does not cascade to edges; callers
// are expected to remove dangling edges themselves.
func (g *GraphModel) RemoveNode(id string) bool {
	if _, ok := g.Nodes[id]; !ok {
		return false
	}
	delete(g.Nodes, id)
	g.GraphRevision++
	return true
}

// AddEdge inserts or replaces an edge and bumps the graph revision.
func (g *GraphModel) AddEdge(e *EdgeModel) {
	g.Edges[e.ID] = e
	g.GraphRevision++
}

// RemoveEdge deletes an edge by id.
func (g *GraphModel) RemoveEdge(id string) bool {
	if _, ok := g.Edges[id]; !ok {
		return false
	}
	delete(g.Edges, id)
	g.GraphRevision++
	return true
}

// SortedNodeIDs returns node ids in ascending order, the iteration order
// every deterministic pass over Nodes must use.
func (g *GraphModel) SortedNodeIDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SortedEdgeIDs returns edge ids in ascending order.
func (g *GraphModel) SortedEdgeIDs() []string {
	ids := make([]string, 0, len(g.Edges))
	for id := range g.Edges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NodeIDs implements fingerprint.SignatureSource.
func (g *GraphModel) NodeIDs() []string { return g.SortedNodeIDs() }

// EdgeIDs implements fingerprint.SignatureSource.
func (g *GraphModel) EdgeIDs() []string { return g.SortedEdgeIDs() }

// Edge implements fingerprint.SignatureSource.
func (g *GraphModel) Edge(id string) (srcNode, srcPort, dstNode, dstPort string, ok bool) {
	e, found := g.Edges[id]
	if !found {
		return "", "", "", "", false
	}
	return e.SrcNode, e.SrcPort, e.DstNode, e.DstPort, true
}

// Revision implements fingerprint.SignatureSource.
func (g *GraphModel) Revision() int { return g.GraphRevision }

// Version implements fingerprint.SignatureSource.
func (g *GraphModel) Version() int { return g.GraphVersion }

// Clone performs a deep copy of the model: every node and edge is cloned,
// metadata and variables are recreated. The layout service clones the
// caller's model before mutating it unless explicitly told not to.
func (g *GraphModel) Clone() *GraphModel {
	clone := &GraphModel{
		GraphID:       g.GraphID,
		GraphName:     g.GraphName,
		Nodes:         make(map[string]*NodeModel, len(g.Nodes)),
		Edges:         make(map[string]*EdgeModel, len(g.Edges)),
		Metadata:      make(map[string]any, len(g.Metadata)),
		GraphVariables: append([]GraphVariable(nil), g.GraphVariables...),
		BasicBlocks:   append([]BasicBlock(nil), g.BasicBlocks...),
		GraphRevision: g.GraphRevision,
		GraphVersion:  g.GraphVersion,
	}
	for id, n := range g.Nodes {
		clone.Nodes[id] = n.Clone()
	}
	for id, e := range g.Edges {
		ec := e.Clone()
		clone.Edges[id] = &ec
	}
	for k, v := range g.Metadata {
		clone.Metadata[k] = v
	}
	return clone
}

// GraphType returns the "graph_type" metadata value ("server" or "client"),
// or "" if unset.
func (g *GraphModel) GraphType() string {
	if v, ok := g.Metadata["graph_type"].(string); ok {
		return v
	}
	return ""
}

// Serialize produces a stable mapping: nodes and edges emitted in
// id-sorted order, positions included on nodes. This is the canonical form
// persisted by the graph cache.
func (g *GraphModel) Serialize() map[string]any {
	nodes := make([]map[string]any, 0, len(g.Nodes))
	for _, id := range g.SortedNodeIDs() {
		n := g.Nodes[id]
		nodes = append(nodes, serializeNode(n))
	}

	edges := make([]map[string]any, 0, len(g.Edges))
	for _, id := range g.SortedEdgeIDs() {
		e := g.Edges[id]
		edges = append(edges, map[string]any{
			"id":       e.ID,
			"src_node": e.SrcNode,
			"src_port": e.SrcPort,
			"dst_node": e.DstNode,
			"dst_port": e.DstPort,
		})
	}

	out := map[string]any{
		"graph_id":        g.GraphID,
		"graph_name":      g.GraphName,
		"nodes":           nodes,
		"edges":           edges,
		"graph_variables": g.GraphVariables,
		"metadata":        g.Metadata,
	}
	if len(g.BasicBlocks) > 0 {
		out["basic_blocks"] = g.BasicBlocks
	}
	return out
}

func serializeNode(n *NodeModel) map[string]any {
	inputs := make([]string, len(n.Inputs))
	for i, p := range n.Inputs {
		inputs[i] = p.Name
	}
	outputs := make([]string, len(n.Outputs))
	for i, p := range n.Outputs {
		outputs[i] = p.Name
	}
	return map[string]any{
		"id":              n.ID,
		"title":           n.Title,
		"category":        n.Category,
		"inputs":          inputs,
		"outputs":         outputs,
		"input_constants": n.InputConstants,
		"pos":             [2]float64{n.PosX, n.PosY},
		"composite_id":    n.CompositeID,
	}
}

// canonicalBytes renders a position-free serialization: the content hash
// must not change when a node is merely moved.
func (g *GraphModel) canonicalBytes() []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, g.GraphID...)
	buf = append(buf, 0)
	for _, id := range g.SortedNodeIDs() {
		n := g.Nodes[id]
		buf = append(buf, fmt.Sprintf("%s|%s|%s", n.ID, n.Title, n.Category)...)
		for _, p := range n.Inputs {
			buf = append(buf, fmt.Sprintf(">%s", p.Name)...)
		}
		for _, p := range n.Outputs {
			buf = append(buf, fmt.Sprintf("<%s", p.Name)...)
		}
		buf = append(buf, 0)
	}
	for _, id := range g.SortedEdgeIDs() {
		e := g.Edges[id]
		buf = append(buf, fmt.Sprintf("%s->%s:%s/%s", e.SrcNode, e.DstNode, e.SrcPort, e.DstPort)...)
		buf = append(buf, 0)
	}
	return buf
}

// ContentHash is the "is dirty?" hash: it excludes node positions entirely,
// so moving a node never changes it.
func (g *GraphModel) ContentHash() string {
	return fingerprint.ContentHash(g.canonicalBytes())
}
