package layout

import (
	"sort"

	"github.com/viant/graphforge/fingerprint"
	"github.com/viant/graphforge/graph"
)

// CopyManager runs the global data-node copy algorithm: it is deterministic
// and idempotent -- identical input always produces identical copy graphs,
// and running it twice on its own output is a no-op.
type CopyManager struct {
	c      *Context
	model  *graph.GraphModel
	blocks []*Block

	ownerBlockOf    map[string]*Block // canonical data node id -> owning block
	consumerBlocks  map[string]map[string]bool // canonical id -> set of consuming block ids
	blockByID       map[string]*Block
}

// NewCopyManager builds a manager over model's current pure-data dependency
// graph, attributing each block's directly- and transitively-consumed data
// nodes.
func NewCopyManager(c *Context, model *graph.GraphModel, blocks []*Block) *CopyManager {
	m := &CopyManager{
		c:              c,
		model:          model,
		blocks:         blocks,
		ownerBlockOf:   map[string]*Block{},
		consumerBlocks: map[string]map[string]bool{},
		blockByID:      map[string]*Block{},
	}
	for _, b := range blocks {
		m.blockByID[b.ID] = b
	}
	m.analyzeDependencies()
	m.attachUnassignedTails()
	m.assignOwners()
	return m
}

func (m *CopyManager) canonicalID(nodeID string) string {
	n, ok := m.model.Nodes[nodeID]
	if !ok {
		return nodeID
	}
	return n.CanonicalID()
}

// analyzeDependencies walks each block's flow nodes' incoming data edges,
// then expands to the canonical upstream closure through pure-data edges
// only, using the same BFS-over-adjacency shape as
// analyzer.Analyzer.computeTransitiveClosure.
func (m *CopyManager) analyzeDependencies() {
	for _, b := range m.blocks {
		direct := map[string]bool{}
		for _, flowID := range b.FlowNodes {
			for _, edge := range m.c.DataIn(flowID) {
				if m.c.IsPureDataNode(edge.SrcNode) {
					direct[m.canonicalID(edge.SrcNode)] = true
				}
			}
		}

		visited := map[string]bool{}
		queue := make([]string, 0, len(direct))
		for id := range direct {
			visited[id] = true
			queue = append(queue, id)
		}
		sort.Strings(queue)

		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			m.markConsumer(cur, b.ID)
			for _, edge := range m.c.DataIn(cur) {
				if !m.c.IsPureDataNode(edge.SrcNode) {
					continue
				}
				upstream := m.canonicalID(edge.SrcNode)
				if visited[upstream] {
					continue
				}
				visited[upstream] = true
				queue = append(queue, upstream)
			}
		}
	}
}

func (m *CopyManager) markConsumer(canonicalID, blockID string) {
	set, ok := m.consumerBlocks[canonicalID]
	if !ok {
		set = map[string]bool{}
		m.consumerBlocks[canonicalID] = set
	}
	set[blockID] = true
}

// attachUnassignedTails implements the unassigned-tail handling: pure-data
// sinks (no outgoing data edges) not yet attributed to any block are walked
// backward and attached to the rightmost (largest provisional column index)
// block that transitively depends on them, falling back to the highest
// order_index block.
func (m *CopyManager) attachUnassignedTails() {
	provisionalColumn := assignProvisionalColumns(m.c, m.blocks)

	var sinks []string
	for id := range m.model.Nodes {
		n := m.model.Nodes[id]
		if !m.c.IsPureDataNode(id) || n.IsDataNodeCopy {
			continue
		}
		if len(m.c.DataOut(id)) != 0 {
			continue
		}
		if m.consumerBlocks[m.canonicalID(id)] != nil {
			continue
		}
		sinks = append(sinks, id)
	}
	sort.Strings(sinks)

	for _, sinkID := range sinks {
		tail := m.collectUnassignedTail(sinkID)
		target := m.chooseAttachTarget(tail, provisionalColumn)
		if target == nil {
			continue
		}
		for id := range tail {
			m.markConsumer(m.canonicalID(id), target.ID)
		}
	}
}

// collectUnassignedTail walks backward (incoming pure-data edges) from sink,
// collecting every node in its still-unassigned subgraph.
func (m *CopyManager) collectUnassignedTail(sink string) map[string]bool {
	tail := map[string]bool{sink: true}
	queue := []string{sink}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, edge := range m.c.DataIn(cur) {
			if !m.c.IsPureDataNode(edge.SrcNode) {
				continue
			}
			if tail[edge.SrcNode] {
				continue
			}
			tail[edge.SrcNode] = true
			queue = append(queue, edge.SrcNode)
		}
	}
	return tail
}

func (m *CopyManager) chooseAttachTarget(tail map[string]bool, provisionalColumn map[string]int) *Block {
	var best *Block
	bestColumn := -1
	for id := range tail {
		for _, edge := range m.c.DataOut(id) {
			consumerBlock := m.ownerBlockOfFlowConsumer(edge.DstNode)
			if consumerBlock == nil {
				continue
			}
			col := provisionalColumn[consumerBlock.ID]
			if col > bestColumn || (col == bestColumn && best != nil && consumerBlock.OrderIndex > best.OrderIndex) {
				bestColumn = col
				best = consumerBlock
			}
		}
	}
	if best != nil {
		return best
	}
	// Fallback: highest order_index block overall.
	for _, b := range m.blocks {
		if best == nil || b.OrderIndex > best.OrderIndex {
			best = b
		}
	}
	return best
}

func (m *CopyManager) ownerBlockOfFlowConsumer(nodeID string) *Block {
	for _, b := range m.blocks {
		for _, fn := range b.FlowNodes {
			if fn == nodeID {
				return b
			}
		}
	}
	return nil
}

// assignProvisionalColumns runs a throw-away longest-path column assignment
// over the flow-only block graph, used only to resolve unassigned-tail
// attachment ties by "rightmost".
func assignProvisionalColumns(c *Context, blocks []*Block) map[string]int {
	blockOfFlowNode := map[string]string{}
	for _, b := range blocks {
		for _, fn := range b.FlowNodes {
			blockOfFlowNode[fn] = b.ID
		}
	}

	children := map[string]map[string]bool{}
	for _, b := range blocks {
		for _, fn := range b.FlowNodes {
			for _, edge := range c.FlowOut(fn) {
				childBlock, ok := blockOfFlowNode[edge.DstNode]
				if !ok || childBlock == b.ID {
					continue
				}
				set, ok := children[b.ID]
				if !ok {
					set = map[string]bool{}
					children[b.ID] = set
				}
				set[childBlock] = true
			}
		}
	}

	column := map[string]int{}
	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
		column[b.ID] = 0
	}
	sort.Strings(ids)
	// Relax |blocks| times, enough for a DAG of this size (no cycles expected
	// since blocks form an event-flow DAG in practice).
	for range ids {
		changed := false
		for _, id := range ids {
			for child := range children[id] {
				if column[child] < column[id]+1 {
					column[child] = column[id] + 1
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
	return column
}

// assignOwners picks, for every canonical data node consumed by >=1 block,
// the block with the smallest order_index as owner.
func (m *CopyManager) assignOwners() {
	for canonicalID, consumers := range m.consumerBlocks {
		var ownerBlock *Block
		for blockID := range consumers {
			b := m.blockByID[blockID]
			if b == nil {
				continue
			}
			if ownerBlock == nil || b.OrderIndex < ownerBlock.OrderIndex {
				ownerBlock = b
			}
		}
		if ownerBlock != nil {
			m.ownerBlockOf[canonicalID] = ownerBlock
		}
	}
}

// CopyNodeSpec is one entry of the application plan's copy_nodes sequence.
type CopyNodeSpec struct {
	CanonicalID string
	BlockID     string
	CopyNodeID  string
}

// EdgeMutation rewrites an existing edge's endpoint in place.
type EdgeMutation struct {
	EdgeID       string
	NewSrcNode   string
	NewDstNode   string
}

// NewEdgeSpec is a freshly synthesized edge feeding a copy node.
type NewEdgeSpec struct {
	EdgeID  string
	SrcNode string
	SrcPort string
	DstNode string
	DstPort string
}

// Plan is the pure-data application plan built by step 4, before any
// mutation is applied to the model.
type Plan struct {
	CopyNodes     []CopyNodeSpec
	EdgeMutations []EdgeMutation
	NewEdges      []NewEdgeSpec
}

// BuildPlan implements steps 2-4: identify shared nodes, assign deterministic
// copy ids, and produce the three sorted sequences. When crossBlockCopy is
// false only the owner attribution computed in NewCopyManager is kept --
// step 1 still ran, but no copies or edge mutations are planned.
func (m *CopyManager) BuildPlan(crossBlockCopy bool) Plan {
	var plan Plan
	if !crossBlockCopy {
		return plan
	}

	existingCopies := map[[2]string]string{} // (canonical, blockID) -> existing copy node id
	for id, n := range m.model.Nodes {
		if n.IsDataNodeCopy {
			existingCopies[[2]string{n.OriginalNodeID, n.CopyBlockID}] = id
		}
	}

	copyIDFor := map[[2]string]string{}

	var canonicalIDs []string
	for id := range m.consumerBlocks {
		canonicalIDs = append(canonicalIDs, id)
	}
	sort.Strings(canonicalIDs)

	for _, canonicalID := range canonicalIDs {
		consumers := m.consumerBlocks[canonicalID]
		owner := m.ownerBlockOf[canonicalID]
		if owner == nil || len(consumers) < 2 {
			continue
		}
		var blockIDs []string
		for blockID := range consumers {
			blockIDs = append(blockIDs, blockID)
		}
		sort.Strings(blockIDs)

		for _, blockID := range blockIDs {
			if blockID == owner.ID {
				continue
			}
			key := [2]string{canonicalID, blockID}
			copyID, ok := existingCopies[key]
			if !ok {
				copyID = canonicalID + "_copy_" + blockID + "_1"
			}
			copyIDFor[key] = copyID
			plan.CopyNodes = append(plan.CopyNodes, CopyNodeSpec{
				CanonicalID: canonicalID,
				BlockID:     blockID,
				CopyNodeID:  copyID,
			})
		}
	}
	sort.Slice(plan.CopyNodes, func(i, j int) bool {
		a, b := plan.CopyNodes[i], plan.CopyNodes[j]
		if a.CanonicalID != b.CanonicalID {
			return a.CanonicalID < b.CanonicalID
		}
		if a.BlockID != b.BlockID {
			return a.BlockID < b.BlockID
		}
		return a.CopyNodeID < b.CopyNodeID
	})

	m.buildEdgeMutationsAndNewEdges(&plan, copyIDFor)
	return plan
}

func (m *CopyManager) resolveInstance(canonicalID, blockID string, copyIDFor map[[2]string]string) string {
	owner := m.ownerBlockOf[canonicalID]
	if owner != nil && owner.ID == blockID {
		return canonicalID
	}
	if id, ok := copyIDFor[[2]string{canonicalID, blockID}]; ok {
		return id
	}
	return canonicalID
}

func (m *CopyManager) blockOwningDst(dstNodeID string) string {
	if b := m.ownerBlockOfFlowConsumer(dstNodeID); b != nil {
		return b.ID
	}
	canonical := m.canonicalID(dstNodeID)
	if owner := m.ownerBlockOf[canonical]; owner != nil {
		return owner.ID
	}
	return ""
}

func (m *CopyManager) buildEdgeMutationsAndNewEdges(plan *Plan, copyIDFor map[[2]string]string) {
	var edgeIDs []string
	for id := range m.model.Edges {
		edgeIDs = append(edgeIDs, id)
	}
	sort.Strings(edgeIDs)

	for _, edgeID := range edgeIDs {
		e := m.model.Edges[edgeID]
		if graph.IsFlowPortName(e.SrcPort) {
			continue
		}
		srcIsPureData := m.c.IsPureDataNode(e.SrcNode)
		if !srcIsPureData {
			continue
		}

		owningBlock := m.blockOwningDst(e.DstNode)
		if owningBlock == "" {
			continue
		}
		canonicalSrc := m.canonicalID(e.SrcNode)
		newSrc := m.resolveInstance(canonicalSrc, owningBlock, copyIDFor)
		if newSrc != e.SrcNode {
			plan.EdgeMutations = append(plan.EdgeMutations, EdgeMutation{
				EdgeID:     edgeID,
				NewSrcNode: newSrc,
				NewDstNode: e.DstNode,
			})
		}
	}

	for _, spec := range plan.CopyNodes {
		if _, ok := m.model.Nodes[spec.CanonicalID]; !ok {
			continue
		}
		for _, edge := range m.c.DataIn(spec.CanonicalID) {
			if !m.c.IsPureDataNode(edge.SrcNode) {
				continue
			}
			upstreamCanonical := m.canonicalID(edge.SrcNode)
			upstreamInstance := m.resolveInstance(upstreamCanonical, spec.BlockID, copyIDFor)
			newEdgeID := fingerprint.CopyEdgeID(upstreamInstance, edge.SrcPort, spec.CopyNodeID, edge.DstPort, 0)
			plan.NewEdges = append(plan.NewEdges, NewEdgeSpec{
				EdgeID:  newEdgeID,
				SrcNode: upstreamInstance,
				SrcPort: edge.SrcPort,
				DstNode: spec.CopyNodeID,
				DstPort: edge.DstPort,
			})
		}
	}
	sort.Slice(plan.NewEdges, func(i, j int) bool { return plan.NewEdges[i].EdgeID < plan.NewEdges[j].EdgeID })
}

// Apply materializes the plan onto the model: creates copy
// nodes, rewrites mutated edges in place, inserts new edges (deduplicating
// on (src_node,src_port,dst_node,dst_port) and re-deriving on id collision),
// and returns each block's final data-node membership (step 6).
func (m *CopyManager) Apply(plan Plan) map[string][]string {
	for _, spec := range plan.CopyNodes {
		if _, exists := m.model.Nodes[spec.CopyNodeID]; exists {
			continue
		}
		original, ok := m.model.Nodes[spec.CanonicalID]
		if !ok {
			continue
		}
		copyNode := original.Clone()
		copyNode.AsDataNodeCopy(spec.CopyNodeID, spec.CanonicalID, spec.BlockID)
		m.model.AddNode(copyNode)
	}

	for _, mut := range plan.EdgeMutations {
		e, ok := m.model.Edges[mut.EdgeID]
		if !ok {
			continue
		}
		e.SrcNode = mut.NewSrcNode
		e.DstNode = mut.NewDstNode
	}

	existingKeys := map[[4]string]bool{}
	for _, e := range m.model.Edges {
		existingKeys[e.Key()] = true
	}

	attempt := 0
	for _, spec := range plan.NewEdges {
		key := [4]string{spec.SrcNode, spec.SrcPort, spec.DstNode, spec.DstPort}
		if existingKeys[key] {
			continue
		}
		id := spec.EdgeID
		for {
			if _, collision := m.model.Edges[id]; !collision {
				break
			}
			attempt++
			id = fingerprint.CopyEdgeID(spec.SrcNode, spec.SrcPort, spec.DstNode, spec.DstPort, attempt)
		}
		m.model.AddEdge(&graph.EdgeModel{ID: id, SrcNode: spec.SrcNode, SrcPort: spec.SrcPort, DstNode: spec.DstNode, DstPort: spec.DstPort})
		existingKeys[key] = true
	}

	return m.BlockDataMembership()
}

// BlockDataMembership returns, per block, the sorted ids of every data node
// (owned originals and copies) attributed to it -- used by phase-2 block
// layout.
func (m *CopyManager) BlockDataMembership() map[string][]string {
	membership := map[string]map[string]bool{}
	for canonicalID, owner := range m.ownerBlockOf {
		set, ok := membership[owner.ID]
		if !ok {
			set = map[string]bool{}
			membership[owner.ID] = set
		}
		set[canonicalID] = true
	}
	for id, n := range m.model.Nodes {
		if n.IsDataNodeCopy {
			set, ok := membership[n.CopyBlockID]
			if !ok {
				set = map[string]bool{}
				membership[n.CopyBlockID] = set
			}
			set[id] = true
		}
	}

	result := map[string][]string{}
	for blockID, set := range membership {
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		result[blockID] = ids
	}
	return result
}
