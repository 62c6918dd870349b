package graph

// GraphVariable is a single entry of GRAPH_VARIABLES: a graph-scoped value
// the author can expose to the editor.
type GraphVariable struct {
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type" json:"type"`
	Default     string `yaml:"default" json:"default"`
	Exposed     bool   `yaml:"exposed" json:"exposed"`
	Description string `yaml:"description" json:"description"`
}
