package pynode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_IndexesEntityInputsAndVariadic(t *testing.T) {
	specs := Normalize([]ExtractedSpec{
		{
			FilePath: "plugins/nodes/server/anim/play.py",
			Name:     "播放动画",
			Category: "动画",
			Inputs:   [][2]string{{"目标", "实体"}, {"参数~1", "字符串"}, {"参数~2", "字符串"}},
			Aliases:  []string{"play_anim"},
		},
	})

	reg, err := Build(specs)
	require.NoError(t, err)

	def, ok := reg.Get("动画节点/播放动画")
	require.True(t, ok)
	assert.Equal(t, "动画节点/播放动画", def.StandardKey)

	aliased, ok := reg.GetByAlias("play_anim")
	require.True(t, ok)
	assert.Same(t, def, aliased)

	entityInputs := reg.EntityInputNames("播放动画")
	assert.True(t, entityInputs["目标"])

	assert.Equal(t, 2, reg.VariadicMinArgs("播放动画"))
}

func TestBuild_DuplicateKeyAcrossDisjointScopesIsAllowed(t *testing.T) {
	specs := Normalize([]ExtractedSpec{
		{FilePath: "plugins/nodes/server/a.py", Name: "N", Category: "C", Scopes: []string{"server"}},
		{FilePath: "plugins/nodes/client/a.py", Name: "N", Category: "C", Scopes: []string{"client"}},
	})

	reg, err := Build(specs)
	require.NoError(t, err)

	_, ok := reg.Get("C节点/N#server")
	assert.True(t, ok)
	_, ok = reg.Get("C节点/N#client")
	assert.True(t, ok)
}

func TestBuild_DuplicateKeySameScopeIsAnError(t *testing.T) {
	specs := Normalize([]ExtractedSpec{
		{FilePath: "plugins/nodes/server/a.py", Name: "N", Category: "C", Scopes: []string{"server"}},
		{FilePath: "plugins/nodes/server/b.py", Name: "N", Category: "C", Scopes: []string{"server"}},
	})

	_, err := Build(specs)
	assert.Error(t, err)
}
