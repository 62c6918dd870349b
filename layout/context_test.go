package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/graphforge/graph"
)

func buildLinearGraph() *graph.GraphModel {
	model := graph.New("g1", "Linear")
	onStart := graph.NewNode("n1", "OnStart", "事件节点", nil, []graph.PortModel{{Name: "流程出"}})
	playAnim := graph.NewNode("n2", "PlayAnim", "动画节点",
		[]graph.PortModel{{Name: "流程入"}, {Name: "目标"}},
		[]graph.PortModel{{Name: "流程出"}})
	constEntity := graph.NewNode("n3", "SelfEntity", "常量节点", nil, []graph.PortModel{{Name: "值"}})

	model.AddNode(onStart)
	model.AddNode(playAnim)
	model.AddNode(constEntity)

	model.AddEdge(&graph.EdgeModel{ID: "e1", SrcNode: "n1", SrcPort: "流程出", DstNode: "n2", DstPort: "流程入"})
	model.AddEdge(&graph.EdgeModel{ID: "e2", SrcNode: "n3", SrcPort: "值", DstNode: "n2", DstPort: "目标"})
	return model
}

func TestContext_IsPureDataNode(t *testing.T) {
	model := buildLinearGraph()
	c := Build(model)
	assert.False(t, c.IsPureDataNode("n1"))
	assert.False(t, c.IsPureDataNode("n2"))
	assert.True(t, c.IsPureDataNode("n3"))
}

func TestContext_EventMetadataPropagates(t *testing.T) {
	model := buildLinearGraph()
	c := Build(model)

	meta, ok := c.EventMetadataFor("n2")
	require.True(t, ok)
	assert.Equal(t, "n1", meta.EventRootID)
	assert.Equal(t, "OnStart", meta.EventTitle)

	_, ok = c.EventMetadataFor("n3")
	assert.False(t, ok, "pure data node never receives flow event metadata")
}

func TestFindEventRoots(t *testing.T) {
	model := buildLinearGraph()
	roots := FindEventRoots(model)
	assert.Equal(t, []string{"n1"}, roots)
}
