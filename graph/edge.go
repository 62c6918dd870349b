package graph

// EdgeModel is a single connection between a source node's output port and
// a destination node's input port.
type EdgeModel struct {
	ID      string
	SrcNode string
	SrcPort string
	DstNode string
	DstPort string
}

// Key returns the logical identity of the edge's endpoints, independent of
// its id. Two edges with the same Key are semantically duplicates and get
// deduplicated wherever edges are synthesized.
func (e EdgeModel) Key() [4]string {
	return [4]string{e.SrcNode, e.SrcPort, e.DstNode, e.DstPort}
}

// Clone returns a copy of the edge.
func (e EdgeModel) Clone() EdgeModel { return e }
