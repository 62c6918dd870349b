package layout

import (
	"sort"

	"github.com/viant/graphforge/settings"
)

// RelaxDataY runs per-block iterative relaxation of data-node Y positions,
// honoring the hard constraints (port-Y lower bound, column-bottom
// non-overlap, multi-parent interval) and pulling toward soft goals
// (parent/child centering, compactness) until no node moves or
// len(membership)+8 passes have run, whichever comes first. Returns a
// per-node debug trail explaining how each final Y was reached.
func RelaxDataY(c *Context, block *Block, membership []string, cfg *settings.Settings) map[string]YDebugEntry {
	if cfg == nil {
		cfg = settings.Default()
	}
	debug := map[string]YDebugEntry{}
	if len(membership) == 0 {
		return debug
	}

	nodeHeight := 40.0

	// Column assignment within the block by data-dependency distance: data
	// nodes with no consumer among the members are column 0, and each layer
	// further upstream gets the next column; column k is placed k+1 column
	// widths to the left of the flow nodes.
	columnOf := assignDataColumns(c, block, membership)

	y := map[string]float64{}
	for _, id := range membership {
		y[id] = portYLowerBound(c, id, block)
	}

	changed := true
	for iterations := 0; changed && iterations < len(membership)+8; iterations++ {
		changed = false

		byColumn := map[int][]string{}
		for _, id := range membership {
			byColumn[columnOf[id]] = append(byColumn[columnOf[id]], id)
		}
		for col, ids := range byColumn {
			sort.Slice(ids, func(i, j int) bool { return y[ids[i]] < y[ids[j]] })
			byColumn[col] = ids
		}

		for _, id := range membership {
			lowerBound := portYLowerBound(c, id, block)

			parents := dataParents(c, id, membership)
			target := y[id]
			chainPortRaw := lowerBound
			if len(parents) > 0 {
				sum := 0.0
				for _, p := range parents {
					sum += y[p] + nodeHeight/2
				}
				target = sum/float64(len(parents)) - nodeHeight/2
			}

			// Multi-parent interval: clamp target within [min,max] of parent centers.
			if len(parents) >= 2 {
				lo, hi := y[parents[0]], y[parents[0]]
				for _, p := range parents {
					if y[p] < lo {
						lo = y[p]
					}
					if y[p] > hi {
						hi = y[p]
					}
				}
				if target < lo {
					target = lo
				}
				if target > hi {
					target = hi
				}
			}

			clampedByLowerBound := false
			if target < lowerBound {
				slack := lowerBound - target
				if slack > cfg.LayoutDataYCompactSlackThresh && cfg.LayoutCompactDataYInBlock {
					target = target + slack*(1-cfg.LayoutDataYCompactPull)
				} else {
					target = lowerBound
				}
				if target < lowerBound {
					target = lowerBound
				}
				clampedByLowerBound = true
			}

			// Column-bottom non-overlap against nodes stacked above id in its column.
			col := columnOf[id]
			for _, other := range byColumn[col] {
				if other == id {
					continue
				}
				if y[other]+nodeHeight+cfg.DataStackGap > target && y[other] < target {
					target = y[other] + nodeHeight + cfg.DataStackGap
				}
			}

			if abs(target-y[id]) > 0.5 {
				y[id] = target
				changed = true
			}

			meta, _ := c.EventMetadataFor(block.EventRootID)
			debug[id] = YDebugEntry{
				Type:                     "data",
				FinalY:                   y[id],
				BlockID:                  block.ID,
				NodeHeight:               nodeHeight,
				EventFlowTitle:           meta.EventTitle,
				ChainPortCandidate:       target,
				ColumnBottomCandidate:    lowerBound,
				WasClampedByColumnBottom: clampedByLowerBound,
				ChainPortRaw:             chainPortRaw,
				ChainPortGap:             chainPortRaw - target,
			}
		}
	}

	const dataColumnWidth = 180
	for id, pos := range y {
		x := -float64(columnOf[id]+1) * dataColumnWidth
		block.NodeLocalPos[id] = [2]float64{x, pos}
	}

	return debug
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// portYLowerBound is the Y of the consuming flow node's matching input port,
// the hard floor a data node's top may never go above.
func portYLowerBound(c *Context, dataNodeID string, block *Block) float64 {
	for _, flowID := range block.FlowNodes {
		if pos, ok := block.NodeLocalPos[flowID]; ok {
			for _, edge := range c.DataOut(dataNodeID) {
				if edge.DstNode == flowID {
					return pos[1]
				}
			}
		}
	}
	return 0
}

func dataParents(c *Context, id string, membership []string) []string {
	inMembership := map[string]bool{}
	for _, m := range membership {
		inMembership[m] = true
	}
	var parents []string
	for _, edge := range c.DataIn(id) {
		if inMembership[edge.SrcNode] {
			parents = append(parents, edge.SrcNode)
		}
	}
	sort.Strings(parents)
	return parents
}

// assignDataColumns assigns each data node a column by longest path to a
// member with no consumer among the members (column 0), so data-dependency
// layers extend leftward (larger column = further upstream).
func assignDataColumns(c *Context, block *Block, membership []string) map[string]int {
	column := map[string]int{}
	for _, id := range membership {
		column[id] = 0
	}
	inMembership := map[string]bool{}
	for _, id := range membership {
		inMembership[id] = true
	}

	for range membership {
		changed := false
		for _, id := range membership {
			for _, edge := range c.DataOut(id) {
				if !inMembership[edge.DstNode] {
					continue
				}
				if column[id] < column[edge.DstNode]+1 {
					column[id] = column[edge.DstNode] + 1
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
