package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph() *GraphModel {
	g := New("g1", "Test Graph")
	g.AddNode(NewNode("n1", "OnStart", "事件节点", nil, []PortModel{{Name: "流程出"}}))
	g.AddNode(NewNode("n2", "Print", "日志节点", []PortModel{{Name: "流程入"}, {Name: "内容"}}, nil))
	g.AddEdge(&EdgeModel{ID: "e1", SrcNode: "n1", SrcPort: "流程出", DstNode: "n2", DstPort: "流程入"})
	return g
}

func TestGraphModel_ContentHashIgnoresPosition(t *testing.T) {
	g := sampleGraph()
	before := g.ContentHash()

	g.Nodes["n1"].PosX = 500
	g.Nodes["n1"].PosY = -120

	after := g.ContentHash()
	assert.Equal(t, before, after, "moving a node must not change the content hash")
}

func TestGraphModel_ContentHashChangesOnStructure(t *testing.T) {
	g := sampleGraph()
	before := g.ContentHash()

	g.AddNode(NewNode("n3", "Another", "日志节点", nil, nil))

	after := g.ContentHash()
	assert.NotEqual(t, before, after)
}

func TestGraphModel_Clone(t *testing.T) {
	g := sampleGraph()
	clone := g.Clone()

	require.NotSame(t, g.Nodes["n1"], clone.Nodes["n1"])
	clone.Nodes["n1"].Title = "Changed"
	assert.Equal(t, "OnStart", g.Nodes["n1"].Title, "clone must be independent of the source model")

	assert.Equal(t, g.SortedNodeIDs(), clone.SortedNodeIDs())
	assert.Equal(t, g.SortedEdgeIDs(), clone.SortedEdgeIDs())
}

func TestNodeModel_PortClassification(t *testing.T) {
	n := NewNode("n1", "Branch", "流程控制节点",
		[]PortModel{{Name: "流程入"}},
		[]PortModel{{Name: "流程出-真"}, {Name: "信号名"}})

	assert.True(t, n.HasFlowPort())
	assert.False(t, n.IsPureData())
	assert.True(t, IsSelectionPortName("信号名"))
	assert.False(t, IsSelectionPortName("流程出-真"))
}

func TestNodeModel_CanonicalID(t *testing.T) {
	n := NewNode("D", "Const", "常量节点", nil, []PortModel{{Name: "值"}})
	assert.Equal(t, "D", n.CanonicalID())

	copyNode := n.Clone()
	copyNode.AsDataNodeCopy("D_copy_block_2_1", "D", "block_2")
	assert.Equal(t, "D", copyNode.CanonicalID())
	assert.True(t, copyNode.IsDataNodeCopy)
}
