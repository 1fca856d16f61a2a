package mindgraph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazypower/lifelog/internal/models"
)

func node(id, content string, toRoot bool) models.Node {
	n := models.Node{Content: content, ToRoot: toRoot}
	n.ID = id
	return n
}

func sample() *Graph {
	nodes := []models.Node{
		node("a", "tired", true),
		node("b", "late nights", false),
		node("c", "phone in bed", false),
		node("d", "but I read", false),
	}
	edges := []models.Edge{
		{SourceID: "b", TargetID: "a"},
		{SourceID: "c", TargetID: "b"},
		{SourceID: "c", TargetID: "a"},
		{SourceID: "d", TargetID: "c"},
		{SourceID: "c", TargetID: "b"},
		{SourceID: "x", TargetID: "a"},
	}
	return New(nodes, edges)
}

func TestTargetsAndSources(t *testing.T) {
	g := sample()

	assert.Equal(t, 4, g.Len())
	assert.Equal(t, []string{"b", "a"}, g.Targets("c"))
	assert.Equal(t, []string{"b", "c"}, g.Sources("a"))
	assert.Equal(t, []string{"c"}, g.Sources("b"))
	assert.Empty(t, g.Targets("a"))
	assert.Empty(t, g.Sources("d"))
	assert.Empty(t, g.Targets("missing"))
}

func TestSourcesInvertTargets(t *testing.T) {
	g := sample()

	for _, src := range []string{"a", "b", "c", "d"} {
		for _, dst := range g.Targets(src) {
			assert.Contains(t, g.Sources(dst), src, "%s -> %s", src, dst)
		}
	}
}

func TestTargetsReturnsCopy(t *testing.T) {
	g := sample()

	ts := g.Targets("c")
	ts[0] = "zzz"
	assert.Equal(t, "b", g.Targets("c")[0])
}

func TestRootNodes(t *testing.T) {
	g := sample()

	roots := g.RootNodes()
	require.Len(t, roots, 1)
	assert.Equal(t, "a", roots[0].ID)
}

func TestRender(t *testing.T) {
	g := sample()
	c := models.Concern{Content: "why tired", ConcernType: models.ConcernAnalyze}
	c.ID = "root"

	r := g.Render(c)
	assert.Equal(t, "root", r.Root.ID)
	assert.Equal(t, "why tired", r.Root.Label)
	require.Len(t, r.Nodes, 4)
	assert.Equal(t, "late nights", r.Nodes[1].Label)

	assert.Equal(t, []RenderEdge{
		{From: "a", To: "root"},
		{From: "b", To: "a"},
		{From: "c", To: "b"},
		{From: "c", To: "a"},
		{From: "d", To: "c"},
	}, r.Edges)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"edges":[{"from":"a","to":"root"}`)
	assert.Contains(t, string(b), `"node_type":0`)
}

func TestRenderEmpty(t *testing.T) {
	g := New(nil, nil)
	r := g.Render(models.Concern{Content: "empty"})

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"nodes":[]`)
	assert.Contains(t, string(b), `"edges":[]`)
}
