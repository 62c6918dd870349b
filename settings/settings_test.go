package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	s := Default()
	assert.True(t, s.DataNodeCrossBlockCopy)
	assert.Equal(t, SortNone, s.LayoutDataLayerSort)
	assert.Equal(t, 0.6, s.LayoutDataYCompactPull)
}

func TestLoadYAML_OverridesOnlyGivenFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strict_entity_inputs_wire_only: true\n"), 0o644))

	s, err := LoadYAML(path)
	require.NoError(t, err)

	assert.True(t, s.StrictEntityInputsWireOnly)
	assert.True(t, s.DataNodeCrossBlockCopy, "unspecified fields keep their Default() value")
}

func TestLoadYAML_MissingFile(t *testing.T) {
	_, err := LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
