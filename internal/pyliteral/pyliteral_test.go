package pyliteral

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// valueNodeOf parses "x = <expr>" and returns the assignment's value node.
func valueNodeOf(t *testing.T, expr string) (*sitter.Node, []byte) {
	t.Helper()
	src := []byte("x = " + expr + "\n")
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	require.NoError(t, err)

	root := tree.RootNode()
	stmt := root.NamedChild(0).NamedChild(0) // expression_statement -> assignment
	value := stmt.ChildByFieldName("right")
	require.NotNil(t, value)
	return value, src
}

func TestOf_StringLiteral(t *testing.T) {
	n, src := valueNodeOf(t, `"hello"`)
	assert.Equal(t, "hello", Of(n, src))
}

func TestOf_BoolAndNone(t *testing.T) {
	n, src := valueNodeOf(t, "True")
	assert.Equal(t, true, Of(n, src))

	n, src = valueNodeOf(t, "None")
	assert.Nil(t, Of(n, src))
}

func TestOf_List(t *testing.T) {
	n, src := valueNodeOf(t, `["a", "b"]`)
	assert.Equal(t, []any{"a", "b"}, Of(n, src))
}

func TestOf_Dictionary(t *testing.T) {
	n, src := valueNodeOf(t, `{"name": "health", "exposed": True}`)
	got := Of(n, src)
	assert.Equal(t, map[string]any{"name": "health", "exposed": true}, got)
}
