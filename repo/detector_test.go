package repo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_PythonWorkspace(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(`[project]
name = "demo-nodes"
`), 0o644))

	nested := filepath.Join(dir, "plugins", "nodes", "server")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	filePath := filepath.Join(nested, "anim.py")
	require.NoError(t, os.WriteFile(filePath, []byte("# node"), 0o644))

	ws, err := New().Detect(context.Background(), filePath)
	require.NoError(t, err)

	assert.Equal(t, KindPython, ws.Kind)
	assert.Equal(t, dir, ws.RootPath)
	assert.Equal(t, "demo-nodes", ws.Name)
	assert.Equal(t, "plugins/nodes/server/anim.py", ws.RelativePath)
}

func TestDetect_UnknownWhenNoMarkerFound(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "loose.py")
	require.NoError(t, os.WriteFile(filePath, []byte("# node"), 0o644))

	ws, err := New().Detect(context.Background(), filePath)
	require.NoError(t, err)
	assert.Equal(t, KindUnknown, ws.Kind)
}
