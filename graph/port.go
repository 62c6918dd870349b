package graph

import "strings"

// flowPortMarkers are the substrings that mark a port name as flow-typed
// (control flow) rather than data-typed. The markers are the Chinese terms
// the node library uses for "flow in"/"flow out".
var flowPortMarkers = []string{"流程入", "流程出", "流程"}

// selectionPortMarkers mark a data port as a selection port: it never
// participates in edges.
var selectionPortMarkers = []string{"信号名", "结构体名"}

// PortModel is a single input or output port on a node.
type PortModel struct {
	Name    string `yaml:"name" json:"name"`
	IsInput bool   `yaml:"is_input" json:"is_input"`
}

// IsFlowPortName reports whether a port name denotes control flow rather
// than data, used throughout the layout engine to segregate flow edges from
// data edges.
func IsFlowPortName(name string) bool {
	for _, marker := range flowPortMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// IsSelectionPortName reports whether a port name is a selection port: data
// shaped, but never wired.
func IsSelectionPortName(name string) bool {
	for _, marker := range selectionPortMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// IsFlow reports whether this port is a flow port.
func (p PortModel) IsFlow() bool { return IsFlowPortName(p.Name) }

// IsSelection reports whether this port is a selection port.
func (p PortModel) IsSelection() bool { return IsSelectionPortName(p.Name) }
