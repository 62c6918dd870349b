package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/graphforge/graph"
	"github.com/viant/graphforge/settings"
)

// buildSharedDataGraph builds two independent event flows that both consume
// the same pure-data constant node, the minimal shape that forces a copy.
func buildSharedDataGraph() *graph.GraphModel {
	model := graph.New("g1", "Shared")
	model.AddNode(graph.NewNode("rootA", "OnStart", "事件节点", nil, []graph.PortModel{{Name: "流程出"}}))
	model.AddNode(graph.NewNode("rootB", "OnUpdate", "事件节点", nil, []graph.PortModel{{Name: "流程出"}}))
	model.AddNode(graph.NewNode("consumeA", "UseA", "动作节点", []graph.PortModel{{Name: "流程入"}, {Name: "值"}}, nil))
	model.AddNode(graph.NewNode("consumeB", "UseB", "动作节点", []graph.PortModel{{Name: "流程入"}, {Name: "值"}}, nil))
	model.AddNode(graph.NewNode("shared", "SharedConst", "常量节点", nil, []graph.PortModel{{Name: "值"}}))

	model.AddEdge(&graph.EdgeModel{ID: "fa", SrcNode: "rootA", SrcPort: "流程出", DstNode: "consumeA", DstPort: "流程入"})
	model.AddEdge(&graph.EdgeModel{ID: "fb", SrcNode: "rootB", SrcPort: "流程出", DstNode: "consumeB", DstPort: "流程入"})
	model.AddEdge(&graph.EdgeModel{ID: "da", SrcNode: "shared", SrcPort: "值", DstNode: "consumeA", DstPort: "值"})
	model.AddEdge(&graph.EdgeModel{ID: "db", SrcNode: "shared", SrcPort: "值", DstNode: "consumeB", DstPort: "值"})
	return model
}

func TestCopyManager_SharedDataNodeGetsOneCopy(t *testing.T) {
	model := buildSharedDataGraph()
	c := Build(model)
	blocks := IdentifyBlocks(c)
	require.Len(t, blocks, 2)

	mgr := NewCopyManager(c, model, blocks)
	plan := mgr.BuildPlan(true)
	require.Len(t, plan.CopyNodes, 1)
	assert.Equal(t, "shared", plan.CopyNodes[0].CanonicalID)

	membership := mgr.Apply(plan)

	totalDataNodes := 0
	for _, ids := range membership {
		totalDataNodes += len(ids)
	}
	assert.Equal(t, 2, totalDataNodes, "owner keeps the original, the other block gets exactly one copy")

	var copyCount int
	for _, n := range model.Nodes {
		if n.IsDataNodeCopy {
			copyCount++
			assert.Equal(t, "shared", n.OriginalNodeID)
		}
	}
	assert.Equal(t, 1, copyCount)
}

func TestCopyManager_NoCopyWhenCrossBlockCopyDisabled(t *testing.T) {
	model := buildSharedDataGraph()
	c := Build(model)
	blocks := IdentifyBlocks(c)

	mgr := NewCopyManager(c, model, blocks)
	plan := mgr.BuildPlan(false)
	assert.Empty(t, plan.CopyNodes)
}

func TestCopyManager_Idempotent(t *testing.T) {
	model := buildSharedDataGraph()
	c := Build(model)
	blocks := IdentifyBlocks(c)
	mgr := NewCopyManager(c, model, blocks)
	plan := mgr.BuildPlan(true)
	mgr.Apply(plan)

	nodeCountAfterFirst := len(model.Nodes)
	edgeCountAfterFirst := len(model.Edges)

	c2 := Build(model)
	blocks2 := IdentifyBlocks(c2)
	mgr2 := NewCopyManager(c2, model, blocks2)
	plan2 := mgr2.BuildPlan(true)
	mgr2.Apply(plan2)

	assert.Equal(t, nodeCountAfterFirst, len(model.Nodes))
	assert.Equal(t, edgeCountAfterFirst, len(model.Edges))
}

func TestComputeLayout_AssignsPositionsAndBasicBlocks(t *testing.T) {
	model := buildSharedDataGraph()
	result := ComputeLayout(model, nil, settings.Default(), DefaultOptions())

	assert.NotEmpty(t, result.Positions)
	assert.NotEmpty(t, result.BasicBlocks)
	for _, id := range []string{"rootA", "rootB", "consumeA", "consumeB"} {
		_, ok := result.Positions[id]
		assert.True(t, ok, "expected a position for %s", id)
	}
}
