package graph

import (
	"testing"

	"github.com/emrgen/cadeia/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(id, c string) *model.Document {
	dc := code(c)
	return &model.Document{ID: id, Kind: dc.Kind, Number: dc.Number, ParcelID: "parcel"}
}

// leveledChain returns A:0 <- B:1 <- C:2 where each cites the next as origin.
func leveledChain(t *testing.T) *Graph {
	g := New(doc("a", "M1"))
	AssignLevels(g)
	require.True(t, g.Link(code("M1"), doc("b", "M2")))
	require.True(t, g.Link(code("M2"), doc("c", "M3")))
	require.Equal(t, map[string]int{"M1": 0, "M2": 1, "M3": 2}, levels(g))
	return g
}

func TestAssignLevels_RootIsZero(t *testing.T) {
	g := New(doc("a", "M1"))
	AssignLevels(g)
	assert.Equal(t, 0, g.RootNode().Level)
	assert.True(t, g.RootNode().Leveled())
}

func TestAssignLevels_ShortestDistanceWins(t *testing.T) {
	g := New(doc("a", "M1"))
	g.AddNode(doc("b", "M2"))
	g.AddNode(doc("c", "M3"))
	g.addEdge(Edge{From: code("M1"), To: code("M2")})
	g.addEdge(Edge{From: code("M2"), To: code("M3")})
	g.addEdge(Edge{From: code("M1"), To: code("M3")})

	AssignLevels(g)
	assert.Equal(t, map[string]int{"M1": 0, "M2": 1, "M3": 1}, levels(g))
}

func TestAssignLevels_UnreachableStaysUnleveled(t *testing.T) {
	g := New(doc("a", "M1"))
	stray := g.AddNode(doc("z", "T9"))
	AssignLevels(g)
	assert.False(t, stray.Leveled())
}

func TestAssignLevels_ManualRoot(t *testing.T) {
	root := doc("a", "M1")
	pinned := 3
	root.ManualLevel = &pinned

	g := New(root)
	AssignLevels(g)
	assert.Equal(t, 3, g.RootNode().Level)
	assert.Equal(t, 0, g.RootNode().ComputedLevel)
}

func TestLink_ExistingRelationLeavesLevelsUnchanged(t *testing.T) {
	g := leveledChain(t)

	// B -> C exists, so C -> B would close a cycle.
	assert.False(t, g.Link(code("M3"), doc("b", "M2")))
	assert.Equal(t, map[string]int{"M1": 0, "M2": 1, "M3": 2}, levels(g))
	assert.Len(t, g.Dropped, 1)

}

func TestLink_LeveledEndpointsFollowTheNewEdge(t *testing.T) {
	g := leveledChain(t)
	g.Link(code("M3"), doc("d", "T7"))
	require.Equal(t, 3, levels(g)["T7"])

	// A -> C makes C a direct parent of the root; only C moves.
	assert.True(t, g.Link(code("M1"), doc("c", "M3")))
	assert.Equal(t, map[string]int{"M1": 0, "M2": 1, "M3": 1, "T7": 3}, levels(g))
}

func TestLink_LeveledEndpointsKeepManualLevel(t *testing.T) {
	g := leveledChain(t)
	c, ok := g.Node(code("M3"))
	require.True(t, ok)
	pinned := 9
	c.ManualLevel = &pinned
	c.refresh()

	assert.True(t, g.Link(code("M1"), doc("c", "M3")))
	assert.Equal(t, 1, c.ComputedLevel)
	assert.Equal(t, 9, c.Level)
}

func TestLink_NewParentGoesOneAboveChild(t *testing.T) {
	g := leveledChain(t)

	assert.True(t, g.Link(code("M2"), doc("d", "T7")))
	assert.Equal(t, map[string]int{"M1": 0, "M2": 1, "M3": 2, "T7": 2}, levels(g))
}

func TestLink_UnleveledChildGoesOneBelowParent(t *testing.T) {
	g := leveledChain(t)
	g.AddNode(doc("x", "M9"))

	assert.True(t, g.Link(code("M9"), doc("c", "M3")))
	n, ok := g.Node(code("M9"))
	require.True(t, ok)
	assert.Equal(t, 1, n.Level)
	assert.Equal(t, map[string]int{"M1": 0, "M2": 1, "M3": 2, "M9": 1}, levels(g))
}

func TestLink_DuplicateAndUnknownChild(t *testing.T) {
	g := leveledChain(t)

	assert.False(t, g.Link(code("M1"), doc("b", "M2")))
	assert.False(t, g.Link(code("T404"), doc("b", "M2")))
	assert.Len(t, g.Edges, 2)
}

func TestLink_ManualLevelReportedComputedKept(t *testing.T) {
	g := leveledChain(t)
	pinned := 10
	parent := doc("d", "T7")
	parent.ManualLevel = &pinned

	require.True(t, g.Link(code("M3"), parent))
	n, _ := g.Node(code("T7"))
	assert.Equal(t, 10, n.Level)
	assert.Equal(t, 3, n.ComputedLevel)

	require.True(t, g.Link(code("T7"), doc("e", "T8")))
	up, _ := g.Node(code("T8"))
	assert.Equal(t, 4, up.Level)
}
