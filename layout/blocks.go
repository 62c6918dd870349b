package layout

import (
	"sort"
	"strconv"
)

// IdentifyBlocks walks flow edges from each event root and
// split into blocks whenever the previous flow node branched (>1 outgoing
// flow edge) or the next node merges (>=1 incoming flow edge from outside
// the sequence currently being walked). Orphan flow nodes unreachable from
// any event root each get their own trailing block.
//
// order_index is assigned monotonically across all event roots in the order
// they are processed (roots are walked in FindEventRoots' sorted order, so
// the overall assignment is deterministic).
func IdentifyBlocks(c *Context) []*Block {
	var blocks []*Block
	visited := map[string]bool{}
	orderIndex := 0

	for _, rootID := range findEventRoots(c.Model) {
		if visited[rootID] {
			continue
		}
		blocks, orderIndex = walkEventRoot(c, rootID, visited, blocks, orderIndex)
	}

	// Orphan flow nodes: any flow-capable node never visited by an event walk.
	var orphanIDs []string
	for id := range c.Model.Nodes {
		if c.FlowCapable(id) && !visited[id] {
			orphanIDs = append(orphanIDs, id)
		}
	}
	sort.Strings(orphanIDs)
	for _, id := range orphanIDs {
		if visited[id] {
			continue
		}
		blocks, orderIndex = walkEventRoot(c, id, visited, blocks, orderIndex)
	}

	return blocks
}

func walkEventRoot(c *Context, rootID string, visited map[string]bool, blocks []*Block, orderIndex int) ([]*Block, int) {
	meta, _ := c.EventMetadataFor(rootID)
	eventRootID := meta.EventRootID
	if eventRootID == "" {
		eventRootID = rootID
	}

	block := NewBlock(blockID(eventRootID, orderIndex), orderIndex, eventRootID)
	orderIndex++
	blocks = append(blocks, block)

	cur := rootID
	for cur != "" {
		if visited[cur] {
			break
		}
		visited[cur] = true
		block.FlowNodes = append(block.FlowNodes, cur)

		out := c.FlowOut(cur)
		branched := len(out) > 1

		if branched {
			block.LastNodeBranches = len(out)
			for _, edge := range out {
				next := edge.DstNode
				if visited[next] {
					continue
				}
				if mergesFromOutside(c, next, block) {
					blocks, orderIndex = walkEventRoot(c, next, visited, blocks, orderIndex)
					continue
				}
				blocks, orderIndex = walkEventRoot(c, next, visited, blocks, orderIndex)
			}
			return blocks, orderIndex
		}

		if len(out) == 0 {
			break
		}

		next := out[0].DstNode
		if visited[next] {
			break
		}
		if mergesFromOutside(c, next, block) {
			blocks, orderIndex = walkEventRoot(c, next, visited, blocks, orderIndex)
			return blocks, orderIndex
		}
		cur = next
	}

	return blocks, orderIndex
}

// mergesFromOutside reports whether candidate has an incoming flow edge from
// a node outside the block currently being built -- a merge point starts a
// new block.
func mergesFromOutside(c *Context, candidate string, current *Block) bool {
	in := c.FlowIn(candidate)
	if len(in) < 2 {
		return false
	}
	inBlock := map[string]bool{}
	for _, id := range current.FlowNodes {
		inBlock[id] = true
	}
	for _, edge := range in {
		if !inBlock[edge.SrcNode] {
			return true
		}
	}
	return false
}

func blockID(eventRootID string, orderIndex int) string {
	return "block_" + eventRootID + "_" + strconv.Itoa(orderIndex)
}
