package layout

import (
	"strings"

	"github.com/viant/graphforge/graph"
	"github.com/viant/graphforge/internal/xlog"
	"github.com/viant/graphforge/pynode"
	"github.com/viant/graphforge/settings"
)

// Options configures ComputeLayout.
type Options struct {
	CloneModel            bool
	WriteBackToInputModel bool
	IncludeAugmentedModel bool
}

// DefaultOptions mirrors compute_layout's documented defaults.
func DefaultOptions() Options {
	return Options{CloneModel: true, WriteBackToInputModel: false, IncludeAugmentedModel: false}
}

// flowTypeMarker is the declared output type denoting control flow, matching
// graph.flowPortMarkers' "流程" substring.
const flowTypeMarker = "流程"

// flowPortPromotionTag is appended to an output port's name during the
// rename pass; it carries the "流程" substring so graph.IsFlowPortName
// recognizes the promoted port without the registry in hand.
const flowPortPromotionTag = "·流程"

// portRename records one output-port promotion so it can be reverted.
type portRename struct {
	nodeID   string
	original string
	promoted string
}

// promoteFlowOutputPorts renames output ports whose node-library-declared
// type is flow-typed but whose own name doesn't carry a recognizable flow
// marker (e.g. a branch node's "True"/"False" outputs), so later passes
// that segregate flow edges from data edges by port name see them
// correctly. The rename is lossless: renameEdgesSrcPort keeps every edge's
// src_port in sync, and the original names are recoverable via the
// returned renames.
func promoteFlowOutputPorts(model *graph.GraphModel, registry *pynode.Registry) []portRename {
	if registry == nil {
		return nil
	}
	var renames []portRename
	for _, id := range model.SortedNodeIDs() {
		n := model.Nodes[id]
		def, ok := registry.Get(n.Category + "/" + n.Title)
		if !ok {
			continue
		}
		for _, p := range n.Outputs {
			if graph.IsFlowPortName(p.Name) {
				continue
			}
			if !strings.Contains(def.OutputTypes[p.Name], flowTypeMarker) {
				continue
			}
			promoted := p.Name + flowPortPromotionTag
			if !n.RenameOutputPort(p.Name, promoted) {
				continue
			}
			renameEdgesSrcPort(model, id, p.Name, promoted)
			renames = append(renames, portRename{nodeID: id, original: p.Name, promoted: promoted})
		}
	}
	return renames
}

// revertPortRenames undoes promoteFlowOutputPorts' renames.
func revertPortRenames(model *graph.GraphModel, renames []portRename) {
	for _, r := range renames {
		n, ok := model.Nodes[r.nodeID]
		if !ok {
			continue
		}
		n.RenameOutputPort(r.promoted, r.original)
		renameEdgesSrcPort(model, r.nodeID, r.promoted, r.original)
	}
}

func renameEdgesSrcPort(model *graph.GraphModel, nodeID, from, to string) {
	for _, e := range model.Edges {
		if e.SrcNode == nodeID && e.SrcPort == from {
			e.SrcPort = to
		}
	}
}

// ComputeLayout runs the full event-region layout pipeline: event
// discovery, phase-1 block identification, the global copy manager, phase-2
// block layout, block-tree positioning, and basic_blocks assembly. When
// nodeLibrary is non-nil, output ports it declares as flow-typed are
// promoted (see promoteFlowOutputPorts) before layout runs; the promotion
// is reverted before returning whenever the working model is the caller's
// own (opts.CloneModel == false), so the caller never observes the
// internal port names.
func ComputeLayout(model *graph.GraphModel, nodeLibrary *pynode.Registry, cfg *settings.Settings, opts Options) *Result {
	if cfg == nil {
		cfg = settings.Default()
	}
	if cfg.LayoutDataLayerSort != "" && cfg.LayoutDataLayerSort != settings.SortNone {
		xlog.Default().WarnOnce("layout_data_layer_sort",
			"LAYOUT_DATA_LAYER_SORT=%q is experimental; falling back to %q", cfg.LayoutDataLayerSort, settings.SortNone)
	}

	working := model
	if opts.CloneModel {
		working = model.Clone()
	}

	renames := promoteFlowOutputPorts(working, nodeLibrary)
	if !opts.CloneModel {
		defer revertPortRenames(working, renames)
	}

	c := Build(working)
	blocks := IdentifyBlocks(c)

	mgr := NewCopyManager(c, working, blocks)
	plan := mgr.BuildPlan(cfg.DataNodeCrossBlockCopy)
	membership := mgr.Apply(plan)

	// The copy manager may have added nodes/edges; rebuild the context so
	// later passes see the augmented graph.
	c = Build(working)

	placeBlockFlowPositions(c, blocks, cfg)

	yDebug := map[string]YDebugEntry{}
	for _, b := range blocks {
		members := membership[b.ID]
		entries := RelaxDataY(c, b, members, cfg)
		for id, e := range entries {
			yDebug[id] = e
		}
		b.DataNodes = members
		computeBlockBoundingBox(b)
	}

	PositionBlocks(c, blocks, cfg)

	positions := map[string][2]float64{}
	var basicBlocks []graph.BasicBlock
	for _, b := range blocks {
		nodeIDs := append(append([]string(nil), b.FlowNodes...), b.DataNodes...)
		for _, id := range nodeIDs {
			local := b.NodeLocalPos[id]
			positions[id] = [2]float64{b.TopLeftX + local[0], b.TopLeftY + local[1]}
		}
		basicBlocks = append(basicBlocks, graph.BasicBlock{Nodes: nodeIDs, Color: b.Color})
	}

	for id, pos := range positions {
		if n, ok := working.Nodes[id]; ok {
			n.PosX, n.PosY = pos[0], pos[1]
		}
	}
	working.BasicBlocks = basicBlocks

	result := &Result{
		Model:       working,
		Positions:   positions,
		YDebugInfo:  yDebug,
		BasicBlocks: make([]Block, len(blocks)),
	}
	for i, b := range blocks {
		result.BasicBlocks[i] = *b
	}

	if opts.CloneModel && opts.WriteBackToInputModel {
		model.Nodes = working.Nodes
		model.Edges = working.Edges
		model.BasicBlocks = working.BasicBlocks
		model.GraphRevision++
	}

	return result
}

// placeBlockFlowPositions lays out a block's flow-node column: flow nodes
// form the rightmost column of the block, stacked top-to-bottom in
// execution order.
func placeBlockFlowPositions(c *Context, blocks []*Block, cfg *settings.Settings) {
	const flowRowHeight = 80
	for _, b := range blocks {
		y := 0.0
		for _, id := range b.FlowNodes {
			b.NodeLocalPos[id] = [2]float64{0, y}
			y += flowRowHeight
		}
		b.Height = y
		b.Width = 160
	}
}

// computeBlockBoundingBox recomputes a block's width/height once data-node
// local positions have been assigned, so flow nodes stay the rightmost
// column and data nodes extend to the left through NodeLocalPos[0].
func computeBlockBoundingBox(b *Block) {
	const dataColumnWidth = 180
	maxColumn := 0
	for _, id := range b.DataNodes {
		local := b.NodeLocalPos[id]
		col := int(-local[0] / dataColumnWidth)
		if col > maxColumn {
			maxColumn = col
		}
	}

	maxBottom := b.Height
	for _, id := range b.FlowNodes {
		if p := b.NodeLocalPos[id][1]; p+80 > maxBottom {
			maxBottom = p + 80
		}
	}
	for _, id := range b.DataNodes {
		if p := b.NodeLocalPos[id][1]; p+40 > maxBottom {
			maxBottom = p + 40
		}
	}
	b.Height = maxBottom
	b.Width = 160 + float64(maxColumn+1)*dataColumnWidth
}
