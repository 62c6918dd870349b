// Package settings carries the tunables the layout and validation
// components read. It is a plain struct, never a
// singleton: callers construct one with Default or LoadYAML and thread it
// explicitly through validate and layout, matching the
// "eliminate global mutable state" note.
package settings

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DataLayerSortMode controls LAYOUT_DATA_LAYER_SORT. Only SortNone has a
// real tie-breaking algorithm; the others are accepted but fall back to it
// with a one-time warning (see layout.ComputeLayout).
type DataLayerSortMode string

const (
	SortNone      DataLayerSortMode = "none"
	SortOutDegree DataLayerSortMode = "out_degree"
	SortInDegree  DataLayerSortMode = "in_degree"
	SortHybrid    DataLayerSortMode = "hybrid"
)

// Settings is the single configuration surface consumed by the engine core.
type Settings struct {
	LayoutAlgoVersion int `yaml:"layout_algo_version"`

	DataNodeCrossBlockCopy bool `yaml:"data_node_cross_block_copy"`
	LayoutTightBlockPacking bool `yaml:"layout_tight_block_packing"`

	LayoutCompactDataYInBlock      bool    `yaml:"layout_compact_data_y_in_block"`
	LayoutDataYCompactPull         float64 `yaml:"layout_data_y_compact_pull"`
	LayoutDataYCompactSlackThresh  float64 `yaml:"layout_data_y_compact_slack_threshold"`

	LayoutDataLayerSort DataLayerSortMode `yaml:"layout_data_layer_sort"`

	ShowLayoutYDebug bool `yaml:"show_layout_y_debug"`

	StrictEntityInputsWireOnly bool `yaml:"strict_entity_inputs_wire_only"`

	GraphUIVerbose   bool `yaml:"graph_ui_verbose"`
	ValidatorVerbose bool `yaml:"validator_verbose"`

	// AssertionMode is loaded and stored, but no layout pass reads it: an
	// unreachable data node is attached via the unassigned-tail fallback
	// whether or not it is set, and never causes a panic.
	AssertionMode bool `yaml:"assertion_mode"`

	// Geometry constants used by the block positioning engine and
	// the data-Y relaxation engine.
	InitialX        float64 `yaml:"initial_x"`
	InitialY        float64 `yaml:"initial_y"`
	BlockXSpacing   float64 `yaml:"block_x_spacing"`
	BlockYSpacing   float64 `yaml:"block_y_spacing"`
	EventYGap       float64 `yaml:"event_y_gap"`
	DataStackGap    float64 `yaml:"data_stack_gap"`
}

// Default returns the settings the source repository ships with.
func Default() *Settings {
	return &Settings{
		LayoutAlgoVersion:             1,
		DataNodeCrossBlockCopy:        true,
		LayoutTightBlockPacking:       true,
		LayoutCompactDataYInBlock:     true,
		LayoutDataYCompactPull:        0.6,
		LayoutDataYCompactSlackThresh: 200,
		LayoutDataLayerSort:           SortNone,
		ShowLayoutYDebug:              false,
		StrictEntityInputsWireOnly:    false,
		GraphUIVerbose:                false,
		ValidatorVerbose:              false,
		AssertionMode:                 false,
		InitialX:                      80,
		InitialY:                      80,
		BlockXSpacing:                 120,
		BlockYSpacing:                 60,
		EventYGap:                     140,
		DataStackGap:                  24,
	}
}

// LoadYAML reads a Settings value from a YAML file, starting from Default
// and overriding only the fields present in the document.
func LoadYAML(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return s, nil
}
