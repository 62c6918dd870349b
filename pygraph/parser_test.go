package pygraph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGraphSource = `"""
graph_id: g_demo_001
graph_name: Demo Graph
graph_type: server
"""

GRAPH_VARIABLES = [
    ("health", "整数", "100", True, "current health"),
]

GRAPH_DEFINITION = {
    "nodes": [
        {"id": "n1", "title": "OnStart", "category": "事件节点", "outputs": ["流程出"]},
        {"id": "n2", "title": "Print", "category": "日志节点", "inputs": ["流程入", "内容"]},
    ],
    "edges": [
        {"id": "e1", "src_node": "n1", "src_port": "流程出", "dst_node": "n2", "dst_port": "流程入"},
    ],
}


class DemoGraph:
    pass
`

func TestParseSource_ReadsHeaderVariablesAndDefinition(t *testing.T) {
	model, err := ParseSource(context.Background(), "graphs/demo.py", []byte(sampleGraphSource))
	require.NoError(t, err)

	assert.Equal(t, "g_demo_001", model.GraphID)
	assert.Equal(t, "Demo Graph", model.GraphName)
	assert.Equal(t, "server", model.GraphType())

	require.Len(t, model.GraphVariables, 1)
	assert.Equal(t, "health", model.GraphVariables[0].Name)
	assert.True(t, model.GraphVariables[0].Exposed)

	require.Len(t, model.Nodes, 2)
	require.Len(t, model.Edges, 1)
	edge := model.Edges["e1"]
	assert.Equal(t, "n1", edge.SrcNode)
	assert.Equal(t, "n2", edge.DstNode)
}
