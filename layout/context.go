// Package layout computes node positions for a GraphModel: event-flow
// discovery, basic-block identification, the global data-node copy manager,
// block positioning, and data-Y relaxation.
//
// No goroutines anywhere in this package: every pass is a plain sequential
// walk over sorted ids, with no internal parallelism.
package layout

import (
	"fmt"
	"sort"

	"github.com/viant/graphforge/fingerprint"
	"github.com/viant/graphforge/graph"
)

// EventMetadata is the (event root, event title) pair propagated to every
// flow node reachable from an event root.
type EventMetadata struct {
	EventRootID string
	EventTitle  string
}

// Context precomputes the indices every later layout pass needs. Build
// constructs it eagerly from a GraphModel and records the model's content
// signature, and Stale reports when the model has changed since. No cache
// of contexts is kept: ComputeLayout builds a fresh Context on every call.
type Context struct {
	Model *graph.GraphModel

	signature fingerprint.Signature
	fastHash  uint64

	flowCapable map[string]bool
	pureData    map[string]bool

	flowOutByNode map[string][]*graph.EdgeModel
	flowInByNode  map[string][]*graph.EdgeModel
	dataOutByNode map[string][]*graph.EdgeModel
	dataInByNode  map[string][]*graph.EdgeModel

	eventMetadataByNode map[string]EventMetadata
}

// Build constructs a Context from model, running event propagation
// immediately so EventMetadataFor is ready to use.
func Build(model *graph.GraphModel) *Context {
	fastHash, _ := fingerprint.FastHash(quickSignatureInput(model))
	c := &Context{
		Model:         model,
		signature:     fingerprint.GraphSignature(model),
		fastHash:      fastHash,
		flowCapable:   map[string]bool{},
		pureData:      map[string]bool{},
		flowOutByNode: map[string][]*graph.EdgeModel{},
		flowInByNode:  map[string][]*graph.EdgeModel{},
		dataOutByNode: map[string][]*graph.EdgeModel{},
		dataInByNode:  map[string][]*graph.EdgeModel{},
	}
	c.indexNodes()
	c.indexEdges()
	c.eventMetadataByNode = propagateEventMetadata(c, findEventRoots(model))
	return c
}

// Stale reports whether model's current content signature no longer matches
// the one this Context was built from. A highwayhash FastHash over the
// cheap (revision, version, node count, edge count) tuple runs first: a
// mismatch there is conclusive staleness without paying for the full
// sorted-ids SHA-1 GraphSignature. A FastHash match still falls through to
// the authoritative GraphSignature comparison, since the quick tuple can't
// see a same-count node/edge swap.
func (c *Context) Stale() bool {
	if fastHash, err := fingerprint.FastHash(quickSignatureInput(c.Model)); err == nil && fastHash != c.fastHash {
		return true
	}
	return c.signature != fingerprint.GraphSignature(c.Model)
}

// quickSignatureInput is the cheap-to-compute tuple FastHash pre-checks
// staleness against before the full GraphSignature is computed.
func quickSignatureInput(model *graph.GraphModel) []byte {
	return []byte(fmt.Sprintf("%d:%d:%d:%d", model.Revision(), model.Version(), len(model.Nodes), len(model.Edges)))
}

func (c *Context) indexNodes() {
	for _, id := range c.Model.SortedNodeIDs() {
		n := c.Model.Nodes[id]
		c.flowCapable[id] = n.HasFlowPort()
		c.pureData[id] = n.IsPureData()
	}
}

func (c *Context) indexEdges() {
	for _, id := range c.Model.SortedEdgeIDs() {
		e := c.Model.Edges[id]
		if graph.IsFlowPortName(e.SrcPort) {
			c.flowOutByNode[e.SrcNode] = append(c.flowOutByNode[e.SrcNode], e)
			c.flowInByNode[e.DstNode] = append(c.flowInByNode[e.DstNode], e)
		} else {
			c.dataOutByNode[e.SrcNode] = append(c.dataOutByNode[e.SrcNode], e)
			c.dataInByNode[e.DstNode] = append(c.dataInByNode[e.DstNode], e)
		}
	}
	for _, edges := range c.flowOutByNode {
		sortEdgesByID(edges)
	}
	for _, edges := range c.flowInByNode {
		sortEdgesByID(edges)
	}
	for _, edges := range c.dataOutByNode {
		sortEdgesByID(edges)
	}
	for _, edges := range c.dataInByNode {
		sortEdgesByID(edges)
	}
}

func sortEdgesByID(edges []*graph.EdgeModel) {
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })
}

// IsPureDataNode reports whether id has no flow ports (memoized).
func (c *Context) IsPureDataNode(id string) bool { return c.pureData[id] }

// FlowCapable reports whether id has at least one flow port.
func (c *Context) FlowCapable(id string) bool { return c.flowCapable[id] }

// FlowOut returns id's outgoing flow edges, sorted by edge id.
func (c *Context) FlowOut(id string) []*graph.EdgeModel { return c.flowOutByNode[id] }

// FlowIn returns id's incoming flow edges, sorted by edge id.
func (c *Context) FlowIn(id string) []*graph.EdgeModel { return c.flowInByNode[id] }

// DataOut returns id's outgoing data edges, sorted by edge id.
func (c *Context) DataOut(id string) []*graph.EdgeModel { return c.dataOutByNode[id] }

// DataIn returns id's incoming data edges, sorted by edge id.
func (c *Context) DataIn(id string) []*graph.EdgeModel { return c.dataInByNode[id] }

// EventMetadataFor returns the event root/title propagated to id, if any.
func (c *Context) EventMetadataFor(id string) (EventMetadata, bool) {
	m, ok := c.eventMetadataByNode[id]
	return m, ok
}

// CloneForModel returns a context for newModel, which must be a structural
// clone of c.Model (same ids, possibly different node/edge object
// identities). It rebuilds every index and reruns event propagation from
// scratch rather than re-linking the existing ones.
func (c *Context) CloneForModel(newModel *graph.GraphModel) *Context {
	return Build(newModel)
}
