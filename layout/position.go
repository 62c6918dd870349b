package layout

import (
	"sort"

	"github.com/viant/graphforge/settings"
)

// PositionBlocks runs column assignment by longest-path DP, computes column
// pixel positions, within-column stacking, the centering rules, and
// event-group vertical stacking. Mutates each block's Column/TopLeftX/TopLeftY.
func PositionBlocks(c *Context, blocks []*Block, cfg *settings.Settings) {
	if cfg == nil {
		cfg = settings.Default()
	}
	if len(blocks) == 0 {
		return
	}

	byID := map[string]*Block{}
	for _, b := range blocks {
		byID[b.ID] = b
	}

	children, parents := blockAdjacency(c, blocks, byID)
	assignColumns(blocks, children)

	groups := groupByEventRoot(blocks)
	var groupOrder []string
	for root := range groups {
		groupOrder = append(groupOrder, root)
	}
	sort.Slice(groupOrder, func(i, j int) bool {
		return minOrderIndex(groups[groupOrder[i]]) < minOrderIndex(groups[groupOrder[j]])
	})

	groupTopY := cfg.InitialY
	for _, root := range groupOrder {
		groupBlocks := groups[root]
		groupHeight := positionGroup(groupBlocks, children, parents, cfg, groupTopY)
		groupTopY += groupHeight + cfg.EventYGap
	}

	if cfg.LayoutTightBlockPacking {
		tightenColumns(blocks)
	}
}

func blockAdjacency(c *Context, blocks []*Block, byID map[string]*Block) (children, parents map[string]map[string]bool) {
	children = map[string]map[string]bool{}
	parents = map[string]map[string]bool{}
	flowNodeBlock := map[string]string{}
	for _, b := range blocks {
		for _, fn := range b.FlowNodes {
			flowNodeBlock[fn] = b.ID
		}
	}
	for _, b := range blocks {
		for _, fn := range b.FlowNodes {
			for _, edge := range c.FlowOut(fn) {
				childID, ok := flowNodeBlock[edge.DstNode]
				if !ok || childID == b.ID {
					continue
				}
				addEdge(children, b.ID, childID)
				addEdge(parents, childID, b.ID)
			}
		}
	}
	return children, parents
}

func addEdge(m map[string]map[string]bool, from, to string) {
	set, ok := m[from]
	if !ok {
		set = map[string]bool{}
		m[from] = set
	}
	set[to] = true
}

// assignColumns is the longest-path DP: each block gets the smallest column
// index consistent with column(parent) < column(child).
func assignColumns(blocks []*Block, children map[string]map[string]bool) {
	ids := make([]string, len(blocks))
	byID := map[string]*Block{}
	for i, b := range blocks {
		ids[i] = b.ID
		byID[b.ID] = b
		b.Column = 0
	}
	sort.Strings(ids)
	for range ids {
		changed := false
		for _, id := range ids {
			for child := range children[id] {
				if byID[child].Column < byID[id].Column+1 {
					byID[child].Column = byID[id].Column + 1
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
}

func groupByEventRoot(blocks []*Block) map[string][]*Block {
	groups := map[string][]*Block{}
	for _, b := range blocks {
		groups[b.EventRootID] = append(groups[b.EventRootID], b)
	}
	return groups
}

func minOrderIndex(blocks []*Block) int {
	min := blocks[0].OrderIndex
	for _, b := range blocks {
		if b.OrderIndex < min {
			min = b.OrderIndex
		}
	}
	return min
}

// positionGroup lays out one event group's blocks, returning the group's
// total height so the caller can stack the next group below it.
func positionGroup(blocks []*Block, children, parents map[string]map[string]bool, cfg *settings.Settings, topY float64) float64 {
	byColumn := map[int][]*Block{}
	maxColumn := 0
	for _, b := range blocks {
		byColumn[b.Column] = append(byColumn[b.Column], b)
		if b.Column > maxColumn {
			maxColumn = b.Column
		}
	}
	for col := range byColumn {
		sort.Slice(byColumn[col], func(i, j int) bool { return byColumn[col][i].OrderIndex < byColumn[col][j].OrderIndex })
	}

	columnLeftX := make([]float64, maxColumn+1)
	columnWidth := make([]float64, maxColumn+1)
	for col := 0; col <= maxColumn; col++ {
		w := 0.0
		for _, b := range byColumn[col] {
			if b.Width > w {
				w = b.Width
			}
		}
		if w == 0 {
			w = 160
		}
		columnWidth[col] = w
	}
	x := cfg.InitialX
	for col := 0; col <= maxColumn; col++ {
		columnLeftX[col] = x
		x += columnWidth[col] + cfg.BlockXSpacing
	}

	// Initial top-to-bottom stacking within each column.
	y := make(map[string]float64)
	maxBottom := 0.0
	for col := 0; col <= maxColumn; col++ {
		cursor := topY
		for _, b := range byColumn[col] {
			h := b.Height
			if h == 0 {
				h = 80
			}
			y[b.ID] = cursor
			cursor += h + cfg.BlockYSpacing
		}
		if cursor > maxBottom {
			maxBottom = cursor
		}
	}

	applyCenteringRules(blocks, byColumn, children, parents, y, cfg)

	for _, b := range blocks {
		b.TopLeftX = columnLeftX[b.Column]
		b.TopLeftY = y[b.ID]
	}

	return maxBottom - topY
}

// applyCenteringRules applies multi-parent centering, multi-child centering,
// the column non-overlap clamp centering must respect, and the
// mutual-uniqueness chain propagation.
func applyCenteringRules(blocks []*Block, byColumn map[int][]*Block, children, parents map[string]map[string]bool, y map[string]float64, cfg *settings.Settings) {
	byID := map[string]*Block{}
	for _, b := range blocks {
		byID[b.ID] = b
	}

	height := func(id string) float64 {
		h := byID[id].Height
		if h == 0 {
			h = 80
		}
		return h
	}

	center := func(id string) float64 {
		return y[id] + height(id)/2
	}

	for _, b := range blocks {
		parentIDs := sortedKeys(parents[b.ID])
		if len(parentIDs) >= 2 {
			sum := 0.0
			for _, p := range parentIDs {
				sum += center(p)
			}
			avg := sum / float64(len(parentIDs))
			y[b.ID] = avg - height(b.ID)/2
		}
	}

	for _, b := range blocks {
		childIDs := sortedKeys(children[b.ID])
		if len(childIDs) >= 2 {
			sum := 0.0
			for _, ch := range childIDs {
				sum += center(ch)
			}
			avg := sum / float64(len(childIDs))
			y[b.ID] = avg - height(b.ID)/2
		}
	}

	// Centering must never lift a block above the preceding sibling in its
	// own column: clamp to prevSibling.bottom + BlockYSpacing, cascading
	// down the column so a clamp on one block keeps the rest consistent.
	columns := make([]int, 0, len(byColumn))
	for col := range byColumn {
		columns = append(columns, col)
	}
	sort.Ints(columns)
	for _, col := range columns {
		list := byColumn[col]
		if len(list) == 0 {
			continue
		}
		prevBottom := y[list[0].ID] + height(list[0].ID)
		for _, b := range list[1:] {
			minAllowed := prevBottom + cfg.BlockYSpacing
			if y[b.ID] < minAllowed {
				y[b.ID] = minAllowed
			}
			prevBottom = y[b.ID] + height(b.ID)
		}
	}

	// Mutual-uniqueness chain: parent has exactly one child, child has
	// exactly one parent -- align on top_y. Iterated to a fixed point so a
	// chain of any length ends fully aligned regardless of blocks' order.
	for changed := true; changed; {
		changed = false
		for _, b := range blocks {
			childIDs := sortedKeys(children[b.ID])
			if len(childIDs) != 1 {
				continue
			}
			child := childIDs[0]
			if len(sortedKeys(parents[child])) != 1 {
				continue
			}
			if y[b.ID] != y[child] {
				y[b.ID] = y[child]
				changed = true
			}
		}
	}
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// tightenColumns shifts each block leftward within its column to reduce
// horizontal slack, never crossing the column's own left boundary.
func tightenColumns(blocks []*Block) {
	byColumn := map[int][]*Block{}
	for _, b := range blocks {
		byColumn[b.Column] = append(byColumn[b.Column], b)
	}
	for _, group := range byColumn {
		minX := group[0].TopLeftX
		for _, b := range group {
			if b.TopLeftX < minX {
				minX = b.TopLeftX
			}
		}
		for _, b := range group {
			b.TopLeftX = minX
		}
	}
}
