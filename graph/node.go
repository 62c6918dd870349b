package graph

// NodeModel is a single node in a graph: either a library-defined behavior
// node or a data-node copy produced by the global copy manager.
//
// The port index maps follow a private-map-for-O(1)-lookup convention.
type NodeModel struct {
	ID       string
	Title    string
	Category string

	Inputs  []PortModel
	Outputs []PortModel

	InputConstants map[string]string

	PosX float64
	PosY float64

	CompositeID string

	IsVirtualPin      bool
	IsVirtualPinInput bool
	VirtualPinIndex   int

	IsDataNodeCopy   bool
	OriginalNodeID   string
	CopyBlockID      string

	inputIndex  map[string]int
	outputIndex map[string]int
}

// NewNode constructs a node and builds its port indices.
func NewNode(id, title, category string, inputs, outputs []PortModel) *NodeModel {
	n := &NodeModel{
		ID:             id,
		Title:          title,
		Category:       category,
		Inputs:         inputs,
		Outputs:        outputs,
		InputConstants: map[string]string{},
	}
	n.reindex()
	return n
}

func (n *NodeModel) reindex() {
	n.inputIndex = make(map[string]int, len(n.Inputs))
	for i, p := range n.Inputs {
		n.inputIndex[p.Name] = i
	}
	n.outputIndex = make(map[string]int, len(n.Outputs))
	for i, p := range n.Outputs {
		n.outputIndex[p.Name] = i
	}
}

// InputIndex returns the index of a named input port, or -1.
func (n *NodeModel) InputIndex(name string) int {
	if n.inputIndex == nil {
		n.reindex()
	}
	if idx, ok := n.inputIndex[name]; ok {
		return idx
	}
	return -1
}

// OutputIndex returns the index of a named output port, or -1.
func (n *NodeModel) OutputIndex(name string) int {
	if n.outputIndex == nil {
		n.reindex()
	}
	if idx, ok := n.outputIndex[name]; ok {
		return idx
	}
	return -1
}

// RenameOutputPort renames an output port in place and rebuilds the index,
// reporting whether the port existed.
func (n *NodeModel) RenameOutputPort(oldName, newName string) bool {
	idx := n.OutputIndex(oldName)
	if idx < 0 {
		return false
	}
	n.Outputs[idx].Name = newName
	n.reindex()
	return true
}

// HasInput reports whether the node declares an input port of this name.
func (n *NodeModel) HasInput(name string) bool { return n.InputIndex(name) >= 0 }

// HasOutput reports whether the node declares an output port of this name.
func (n *NodeModel) HasOutput(name string) bool { return n.OutputIndex(name) >= 0 }

// HasFlowPort reports whether any input or output port is flow-typed.
func (n *NodeModel) HasFlowPort() bool {
	for _, p := range n.Inputs {
		if IsFlowPortName(p.Name) {
			return true
		}
	}
	for _, p := range n.Outputs {
		if IsFlowPortName(p.Name) {
			return true
		}
	}
	return false
}

// IsPureData reports whether the node has no flow ports at all.
func (n *NodeModel) IsPureData() bool { return !n.HasFlowPort() }

// CanonicalID returns the id of the root original this node was copied
// from, or its own id if it is not a copy.
func (n *NodeModel) CanonicalID() string {
	if n.IsDataNodeCopy && n.OriginalNodeID != "" {
		return n.OriginalNodeID
	}
	return n.ID
}

// Clone performs a deep copy of the node: every slice/map is recreated
// rather than shared. Used both by GraphModel.Clone and directly by the
// global copy manager when materializing a data-node copy.
func (n *NodeModel) Clone() *NodeModel {
	clone := &NodeModel{
		ID:                n.ID,
		Title:              n.Title,
		Category:           n.Category,
		Inputs:             append([]PortModel(nil), n.Inputs...),
		Outputs:            append([]PortModel(nil), n.Outputs...),
		InputConstants:     make(map[string]string, len(n.InputConstants)),
		PosX:               n.PosX,
		PosY:               n.PosY,
		CompositeID:        n.CompositeID,
		IsVirtualPin:       n.IsVirtualPin,
		IsVirtualPinInput:  n.IsVirtualPinInput,
		VirtualPinIndex:    n.VirtualPinIndex,
		IsDataNodeCopy:     n.IsDataNodeCopy,
		OriginalNodeID:     n.OriginalNodeID,
		CopyBlockID:        n.CopyBlockID,
	}
	for k, v := range n.InputConstants {
		clone.InputConstants[k] = v
	}
	clone.reindex()
	return clone
}

// AsDataNodeCopy rewrites this node (already a field-for-field clone of an
// original) into the copy of originalID attributed to blockID. The
// invariant held afterward: original_node_id is non-empty iff
// is_data_node_copy is true.
func (n *NodeModel) AsDataNodeCopy(id, originalID, blockID string) {
	n.ID = id
	n.IsDataNodeCopy = true
	n.OriginalNodeID = originalID
	n.CopyBlockID = blockID
}
