package layout

import "github.com/viant/graphforge/graph"

// Block is the internal-to-layout representation of a basic block: a
// contiguous run of flow nodes plus the data nodes attributed to it.
type Block struct {
	ID string

	FlowNodes []string
	DataNodes []string

	Width  float64
	Height float64

	TopLeftX float64
	TopLeftY float64

	// NodeLocalPos holds each member node's position relative to TopLeft.
	NodeLocalPos map[string][2]float64

	Color string

	OrderIndex  int
	EventRootID string

	// LastNodeBranches is the outgoing flow-edge count of the block's final
	// flow node when that node branches, and 0 otherwise. IdentifyBlocks
	// records it; no later layout pass reads it.
	LastNodeBranches int

	// Column is assigned by the block positioning engine; -1 until set.
	Column int
}

// NewBlock returns an empty block ready to receive flow nodes.
func NewBlock(id string, orderIndex int, eventRootID string) *Block {
	return &Block{
		ID:           id,
		NodeLocalPos: map[string][2]float64{},
		OrderIndex:   orderIndex,
		EventRootID:  eventRootID,
		Column:       -1,
	}
}

// YDebugEntry records why a data node ended up at its final Y.
type YDebugEntry struct {
	Type      string // "data" | "flow"
	FinalY    float64
	BlockID   string
	NodeHeight float64
	EventFlowTitle string

	ColumnBottomCandidate float64
	ChainPortCandidate    float64
	SingleTargetCandidate float64

	WasClampedByColumnBottom bool
	ChainPortRaw             float64
	ChainPortGap             float64
}

// Result is the output of ComputeLayout.
type Result struct {
	Model       *graph.GraphModel
	Positions   map[string][2]float64
	BasicBlocks []Block
	YDebugInfo  map[string]YDebugEntry
}
