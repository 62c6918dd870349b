package pynode

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleNodeSource = `
@node_spec(
    name="播放动画",
    category="动画",
    inputs=[("流程入", "流程"), ("目标", "实体")],
    outputs=[("流程出", "流程")],
    description="plays an animation on the given entity",
    scopes=["server"],
    aliases=["play_anim"],
)
def play_animation(ctx, target):
    pass


def helper(x):
    return x
`

func TestExtractSource_SkipsUndecoratedFunctions(t *testing.T) {
	specs, err := ExtractSource(context.Background(), "server/anim/play.py", []byte(sampleNodeSource))
	require.NoError(t, err)
	require.Len(t, specs, 1)

	spec := specs[0]
	assert.Equal(t, "play_animation", spec.FunctionName)
	assert.Equal(t, "播放动画", spec.Name)
	assert.Equal(t, "动画", spec.Category)
	assert.Equal(t, []string{"server"}, spec.Scopes)
	assert.Equal(t, []string{"play_anim"}, spec.Aliases)
	assert.Equal(t, [][2]string{{"流程入", "流程"}, {"目标", "实体"}}, spec.Inputs)
	assert.Equal(t, [][2]string{{"流程出", "流程"}}, spec.Outputs)
}

func TestExtractFile_MissingFileIsNotAnError(t *testing.T) {
	specs, err := ExtractFile(context.Background(), "/no/such/file.py")
	require.NoError(t, err)
	assert.Nil(t, specs)
}
