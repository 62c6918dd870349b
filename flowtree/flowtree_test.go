package flowtree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/graphforge/graph"
)

func TestRender_EmptyGraph(t *testing.T) {
	model := graph.New("g1", "Empty")
	out := Render(model)
	assert.Equal(t, "(empty graph)\n", out)
}

func TestRender_LinearFlowWithDataInput(t *testing.T) {
	model := graph.New("g1", "Demo")
	model.AddNode(graph.NewNode("n1", "OnStart", "事件节点", nil, []graph.PortModel{{Name: "流程出"}}))
	model.AddNode(graph.NewNode("n2", "Print", "日志节点",
		[]graph.PortModel{{Name: "流程入"}, {Name: "内容"}}, nil))
	model.AddNode(graph.NewNode("n3", "ConstStr", "常量节点", nil, []graph.PortModel{{Name: "值"}}))

	model.AddEdge(&graph.EdgeModel{ID: "e1", SrcNode: "n1", SrcPort: "流程出", DstNode: "n2", DstPort: "流程入"})
	model.AddEdge(&graph.EdgeModel{ID: "e2", SrcNode: "n3", SrcPort: "值", DstNode: "n2", DstPort: "内容"})

	out := Render(model)
	assert.Contains(t, out, "OnStart")
	assert.Contains(t, out, "Print")
	assert.Contains(t, out, "内容 ← ConstStr.值")
}

func TestRender_Cycle(t *testing.T) {
	model := graph.New("g1", "Cycle")
	model.AddNode(graph.NewNode("n1", "OnStart", "事件节点", nil, []graph.PortModel{{Name: "流程出"}}))
	model.AddNode(graph.NewNode("n2", "Loop", "动作节点",
		[]graph.PortModel{{Name: "流程入"}}, []graph.PortModel{{Name: "流程出"}}))

	model.AddEdge(&graph.EdgeModel{ID: "e1", SrcNode: "n1", SrcPort: "流程出", DstNode: "n2", DstPort: "流程入"})
	model.AddEdge(&graph.EdgeModel{ID: "e2", SrcNode: "n2", SrcPort: "流程出", DstNode: "n2", DstPort: "流程入"})

	out := Render(model)
	assert.True(t, strings.Contains(out, "↻ cycle: Loop"))
}

func TestRender_PureDataGraphRendersLayers(t *testing.T) {
	model := graph.New("g1", "DataOnly")
	model.AddNode(graph.NewNode("a", "A", "常量节点", nil, []graph.PortModel{{Name: "值"}}))
	model.AddNode(graph.NewNode("b", "B", "运算节点", []graph.PortModel{{Name: "值"}}, []graph.PortModel{{Name: "值"}}))
	model.AddEdge(&graph.EdgeModel{ID: "e1", SrcNode: "a", SrcPort: "值", DstNode: "b", DstPort: "值"})

	out := Render(model)
	assert.Contains(t, out, "layer 0: A")
	assert.Contains(t, out, "layer 1: B")
}
