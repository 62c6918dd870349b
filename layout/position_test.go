package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/graphforge/settings"
)

func newPositionTestBlock(id string, order int, column int, height float64) *Block {
	return &Block{
		ID:           id,
		OrderIndex:   order,
		Column:       column,
		Height:       height,
		NodeLocalPos: map[string][2]float64{},
	}
}

func centerOf(b *Block) float64 { return b.TopLeftY + b.Height/2 }

func TestApplyCenteringRules_TwoParentsOneChild(t *testing.T) {
	a := newPositionTestBlock("A", 1, 0, 100)
	c := newPositionTestBlock("C", 2, 0, 100)
	d := newPositionTestBlock("D", 3, 0, 100)
	unrelated := newPositionTestBlock("unrelated", 1, 1, 50)
	b := newPositionTestBlock("B", 2, 1, 100)

	blocks := []*Block{a, c, d, unrelated, b}
	children := map[string]map[string]bool{
		"A": {"B": true},
		"C": {"B": true},
		"D": {"B": true},
	}
	parents := map[string]map[string]bool{
		"B": {"A": true, "C": true, "D": true},
	}

	cfg := settings.Default()
	cfg.BlockYSpacing = 20

	positionGroup(blocks, children, parents, cfg, 0)

	expectedAvg := (centerOf(a) + centerOf(c) + centerOf(d)) / 3
	assert.InDelta(t, expectedAvg, centerOf(b), 0.001)
	assert.GreaterOrEqual(t, b.TopLeftY, unrelated.TopLeftY+unrelated.Height)
}

func TestApplyCenteringRules_ClampsAgainstPrecedingSibling(t *testing.T) {
	// Two short parents stacked at the top of column 0 pull B's raw average
	// above the bottom of the unrelated block stacked right above B in the
	// same column -- the clamp must push B back down to preserve non-overlap.
	p1 := newPositionTestBlock("P1", 1, 0, 40)
	p2 := newPositionTestBlock("P2", 2, 0, 40)
	unrelated := newPositionTestBlock("unrelated", 1, 1, 100)
	b := newPositionTestBlock("B", 2, 1, 60)

	blocks := []*Block{p1, p2, unrelated, b}
	children := map[string]map[string]bool{
		"P1": {"B": true},
		"P2": {"B": true},
	}
	parents := map[string]map[string]bool{
		"B": {"P1": true, "P2": true},
	}

	cfg := settings.Default()
	cfg.BlockYSpacing = 20

	positionGroup(blocks, children, parents, cfg, 0)

	rawAverage := (centerOf(p1)+centerOf(p2))/2 - b.Height/2
	minAllowed := unrelated.TopLeftY + unrelated.Height + cfg.BlockYSpacing

	assert.Less(t, rawAverage, minAllowed, "test setup must actually force a clamp")
	assert.InDelta(t, minAllowed, b.TopLeftY, 0.001)
}

func TestApplyCenteringRules_UniqueParentChildChain(t *testing.T) {
	preceding := newPositionTestBlock("preceding", 1, 0, 120)
	parent := newPositionTestBlock("parent", 2, 0, 200)
	child := newPositionTestBlock("child", 1, 1, 150)
	trailing := newPositionTestBlock("trailing", 2, 1, 100)

	blocks := []*Block{preceding, parent, child, trailing}
	children := map[string]map[string]bool{
		"parent": {"child": true},
	}
	parents := map[string]map[string]bool{
		"child": {"parent": true},
	}

	cfg := settings.Default()
	cfg.BlockYSpacing = 20

	positionGroup(blocks, children, parents, cfg, 0)

	assert.InDelta(t, child.TopLeftY, parent.TopLeftY, 0.001)
	assert.GreaterOrEqual(t, trailing.TopLeftY, child.TopLeftY+child.Height)
}

func TestApplyCenteringRules_BranchingChildOfUniqueChain(t *testing.T) {
	root := newPositionTestBlock("root", 1, 0, 100)
	branching := newPositionTestBlock("branching", 1, 1, 120)
	leafA := newPositionTestBlock("leafA", 1, 2, 180)
	leafB := newPositionTestBlock("leafB", 2, 2, 220)

	blocks := []*Block{root, branching, leafA, leafB}
	children := map[string]map[string]bool{
		"root":      {"branching": true},
		"branching": {"leafA": true, "leafB": true},
	}
	parents := map[string]map[string]bool{
		"branching": {"root": true},
		"leafA":     {"branching": true},
		"leafB":     {"branching": true},
	}

	cfg := settings.Default()
	cfg.BlockYSpacing = 20

	positionGroup(blocks, children, parents, cfg, 0)

	assert.InDelta(t, root.TopLeftY, branching.TopLeftY, 0.001)

	lo, hi := centerOf(leafA), centerOf(leafB)
	if lo > hi {
		lo, hi = hi, lo
	}
	assert.GreaterOrEqual(t, centerOf(branching), lo-0.001)
	assert.LessOrEqual(t, centerOf(branching), hi+0.001)
}

func TestApplyCenteringRules_ChainOfThreeConvergesToFixedPoint(t *testing.T) {
	a := newPositionTestBlock("A", 1, 0, 80)
	b := newPositionTestBlock("B", 1, 1, 80)
	c := newPositionTestBlock("C", 1, 2, 80)

	a.TopLeftY, b.TopLeftY, c.TopLeftY = 0, 50, 120

	blocks := []*Block{a, b, c}
	byColumn := map[int][]*Block{0: {a}, 1: {b}, 2: {c}}
	children := map[string]map[string]bool{
		"A": {"B": true},
		"B": {"C": true},
	}
	parents := map[string]map[string]bool{
		"B": {"A": true},
		"C": {"B": true},
	}
	y := map[string]float64{"A": a.TopLeftY, "B": b.TopLeftY, "C": c.TopLeftY}

	cfg := settings.Default()
	cfg.BlockYSpacing = 20

	applyCenteringRules(blocks, byColumn, children, parents, y, cfg)

	assert.Equal(t, y["C"], y["B"])
	assert.Equal(t, y["B"], y["A"])
}
