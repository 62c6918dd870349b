package cache

import (
	"testing"
)

func sampleResultData() map[string]any {
	return map[string]any{
		"nodes": []any{
			map[string]any{"id": "n1", "outputs": []any{"流程出"}},
			map[string]any{"id": "n2", "inputs": []any{"流程入"}},
		},
		"edges": []any{
			map[string]any{"src_node": "n1", "src_port": "流程出", "dst_node": "n2", "dst_port": "流程入"},
		},
	}
}

func TestIsResultDataStructurallyConsistent_ValidGraph(t *testing.T) {
	if !isResultDataStructurallyConsistent(sampleResultData()) {
		t.Fatal("expected valid result data to pass structural check")
	}
}

func TestIsResultDataStructurallyConsistent_DanglingEdge(t *testing.T) {
	data := sampleResultData()
	data["edges"] = []any{
		map[string]any{"src_node": "n1", "src_port": "流程出", "dst_node": "missing", "dst_port": "流程入"},
	}
	if isResultDataStructurallyConsistent(data) {
		t.Fatal("expected dangling edge endpoint to fail structural check")
	}
}

func TestIsResultDataStructurallyConsistent_UnknownPort(t *testing.T) {
	data := sampleResultData()
	data["edges"] = []any{
		map[string]any{"src_node": "n1", "src_port": "不存在", "dst_node": "n2", "dst_port": "流程入"},
	}
	if isResultDataStructurallyConsistent(data) {
		t.Fatal("expected unknown port reference to fail structural check")
	}
}

func TestIsResultDataStructurallyConsistent_FlowPlaceholderAlwaysValid(t *testing.T) {
	data := sampleResultData()
	data["edges"] = []any{
		map[string]any{"src_node": "n1", "src_port": flowPortPlaceholder, "dst_node": "n2", "dst_port": flowPortPlaceholder},
	}
	if !isResultDataStructurallyConsistent(data) {
		t.Fatal("expected flow placeholder ports to always be considered valid")
	}
}

func TestIsResultDataStructurallyConsistent_MissingNodeID(t *testing.T) {
	data := sampleResultData()
	data["nodes"] = []any{
		map[string]any{"outputs": []any{"流程出"}},
	}
	if isResultDataStructurallyConsistent(data) {
		t.Fatal("expected node without an id to fail structural check")
	}
}
