package pynode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_AppendsCategorySuffixAndBuildsStandardKey(t *testing.T) {
	specs := []ExtractedSpec{
		{
			FilePath: "plugins/nodes/server/anim/play.py",
			Name:     "播放动画",
			Category: "动画",
			Inputs:   [][2]string{{"目标", "实体"}},
			Outputs:  [][2]string{{"流程出", "流程"}},
		},
	}

	got := Normalize(specs)
	assert := assert.New(t)
	assert.Len(got, 1)
	assert.Equal("动画节点", got[0].Category)
	assert.Equal("动画节点/播放动画", got[0].StandardKey)
	assert.Equal(map[string]string{"目标": "实体"}, got[0].InputTypes)
	assert.Equal([]string{"server"}, got[0].Scopes)
}

func TestNormalize_CategoryAlreadyHasSuffix(t *testing.T) {
	got := normalizeOne(ExtractedSpec{Name: "A", Category: "日志节点"})
	assert.Equal(t, "日志节点", got.Category)
}

func TestNormalize_MissingNameOrCategoryYieldsPlaceholder(t *testing.T) {
	got := normalizeOne(ExtractedSpec{Category: "动画"})
	assert.Empty(t, got.StandardKey)
	assert.Equal(t, map[string]string{}, got.InputTypes)
	assert.Equal(t, map[string]string{}, got.OutputTypes)
}

func TestNormalizeScopes_ProvidedScopesWin(t *testing.T) {
	got := normalizeScopes([]string{" server "}, "plugins/nodes/client/foo.py")
	assert.Equal(t, []string{"server"}, got)
}

func TestNormalizeScopes_FallsBackToPathWhenEmpty(t *testing.T) {
	got := normalizeScopes(nil, "plugins/nodes/client/anim/Play.py")
	assert.Equal(t, []string{"client"}, got)
}

func TestInferScopesFromPath_BothScopesPossible(t *testing.T) {
	got := inferScopesFromPath("shared/Server_Client/common.py")
	assert.Equal(t, []string{"server", "client"}, got)
}
