package graph

import (
	"context"
	"testing"

	"github.com/emrgen/cadeia/internal/model"
	"github.com/emrgen/cadeia/internal/store"
	"github.com/emrgen/cadeia/internal/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func code(s string) model.DocumentCode {
	c, err := model.ParseCode(s)
	if err != nil {
		panic(err)
	}
	return c
}

func setup(t *testing.T) (*tester.Fixture, *store.GormStore) {
	db := tester.NewDB(t)
	return tester.NewFixture(t, db), store.NewGormStore(db)
}

func levels(g *Graph) map[string]int {
	out := make(map[string]int)
	for _, n := range g.Nodes {
		out[n.Code.String()] = n.Level
	}
	return out
}

func TestBuilder_Build_LinearChain(t *testing.T) {
	fx, st := setup(t)
	office := fx.Office("1º Registro de Imóveis")
	parcel := fx.Parcel("Fazenda Boa Vista", "100")
	other := fx.Parcel("Sítio Velho", "90")

	m100 := fx.Document(parcel, office, "M100")
	m90 := fx.Document(other, office, "M90")
	fx.Document(other, office, "T50")
	fx.Entry(m100, "M 90", office)
	fx.Entry(m90, "transcrição 50", nil)

	g, err := NewBuilder(st, 0).Build(context.TODO(), parcel)
	require.NoError(t, err)

	assert.Equal(t, code("M100"), g.Root)
	assert.Equal(t, 3, g.Len())
	assert.ElementsMatch(t, []Edge{
		{From: code("M100"), To: code("M90")},
		{From: code("M90"), To: code("T50")},
	}, g.Edges)
	assert.Equal(t, map[string]int{"M100": 0, "M90": 1, "T50": 2}, levels(g))
	assert.Empty(t, g.Unresolved)
	assert.False(t, g.Truncated)

	n, ok := g.Node(code("M90"))
	require.True(t, ok)
	assert.Equal(t, other.ID, n.ParcelID)
	assert.False(t, n.IsShared)
}

func TestBuilder_Expand_CycleTerminates(t *testing.T) {
	fx, st := setup(t)
	office := fx.Office("Cartório Único")
	parcel := fx.Parcel("Lote A", "1")

	a := fx.Document(parcel, office, "M1")
	b := fx.Document(parcel, office, "M2")
	fx.Entry(a, "M2", nil)
	fx.Entry(b, "M1", nil)

	g, err := NewBuilder(st, 0).Expand(context.TODO(), a)
	require.NoError(t, err)

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []Edge{{From: code("M1"), To: code("M2")}}, g.Edges)
	assert.Equal(t, []Edge{{From: code("M2"), To: code("M1")}}, g.Dropped)
}

func TestBuilder_Expand_UnresolvedOriginCreatesNothing(t *testing.T) {
	fx, st := setup(t)
	office := fx.Office("Cartório Único")
	parcel := fx.Parcel("Lote B", "7")

	root := fx.Document(parcel, office, "M7")
	entry := fx.Entry(root, "havido da matrícula 999 e lote rural", office)

	g, err := NewBuilder(st, 0).Expand(context.TODO(), root)
	require.NoError(t, err)

	assert.Equal(t, 1, g.Len())
	assert.Empty(t, g.Edges)
	require.Len(t, g.Unresolved, 1)
	assert.Equal(t, code("M999"), g.Unresolved[0].Code)
	assert.Equal(t, entry.ID, g.Unresolved[0].EntryID)

	var count int64
	require.NoError(t, fx.DB().Model(&model.Document{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestBuilder_Expand_SelfReferenceIgnored(t *testing.T) {
	fx, st := setup(t)
	office := fx.Office("Cartório Único")
	parcel := fx.Parcel("Lote C", "8")

	root := fx.Document(parcel, office, "M8")
	fx.Entry(root, "M8", nil)

	g, err := NewBuilder(st, 0).Expand(context.TODO(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Len())
	assert.Empty(t, g.Edges)
	assert.Empty(t, g.Unresolved)
}

func TestResolver_Precedence(t *testing.T) {
	fx, st := setup(t)
	declared := fx.Office("Cartório Declarado")
	busy := fx.Office("Cartório Movimentado")
	upstream := fx.Parcel("Origem", "50")

	placeholder := fx.Document(upstream, declared, "M50")
	withEntries := fx.Document(upstream, busy, "M50")
	fx.Entry(withEntries, "", nil)

	r := NewResolver(st)

	got, err := r.Resolve(context.TODO(), code("M50"), &declared.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, placeholder.ID, got.ID)

	got, err = r.Resolve(context.TODO(), code("M50"), nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, withEntries.ID, got.ID)

	unknown := "unknown-office"
	got, err = r.Resolve(context.TODO(), code("M50"), &unknown)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, withEntries.ID, got.ID)

	got, err = r.Resolve(context.TODO(), code("T50"), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBuilder_Build_DiamondParentOneAboveChild(t *testing.T) {
	fx, st := setup(t)
	office := fx.Office("Cartório Único")
	parcel := fx.Parcel("Fazenda", "10")

	a := fx.Document(parcel, office, "M10")
	b := fx.Document(parcel, office, "M20")
	c := fx.Document(parcel, office, "T30")
	fx.Document(parcel, office, "T40")
	fx.Entry(a, "M20; T30", nil)
	fx.Entry(b, "T40", nil)
	fx.Entry(c, "transcrição 40", nil)

	g, err := NewBuilder(st, 0).Build(context.TODO(), parcel)
	require.NoError(t, err)

	assert.Equal(t, 4, g.Len())
	assert.Len(t, g.Edges, 4)
	for _, e := range g.Edges {
		child, _ := g.Node(e.From)
		parent, _ := g.Node(e.To)
		assert.Equal(t, child.Level+1, parent.Level, "edge %s -> %s", e.From, e.To)
	}
	assert.Equal(t, map[string]int{"M10": 0, "M20": 1, "T30": 1, "T40": 2}, levels(g))
}

func TestBuilder_Build_ManualLevelWins(t *testing.T) {
	fx, st := setup(t)
	office := fx.Office("Cartório Único")
	parcel := fx.Parcel("Chácara", "11")

	root := fx.Document(parcel, office, "M11")
	parent := fx.Document(parcel, office, "M12")
	fx.Entry(root, "M12", nil)
	require.NoError(t, st.SetManualLevel(context.TODO(), parent.ID, intPtr(5)))

	g, err := NewBuilder(st, 0).Build(context.TODO(), parcel)
	require.NoError(t, err)

	n, ok := g.Node(code("M12"))
	require.True(t, ok)
	assert.Equal(t, 5, n.Level)
	assert.Equal(t, 1, n.ComputedLevel)
	require.NotNil(t, n.ManualLevel)
}

func TestBuilder_Build_Truncated(t *testing.T) {
	fx, st := setup(t)
	office := fx.Office("Cartório Único")
	parcel := fx.Parcel("Longa", "1")

	d1 := fx.Document(parcel, office, "M1")
	d2 := fx.Document(parcel, office, "M2")
	fx.Document(parcel, office, "M3")
	fx.Entry(d1, "M2", nil)
	fx.Entry(d2, "M3", nil)

	g, err := NewBuilder(st, 2).Build(context.TODO(), parcel)
	require.NoError(t, err)
	assert.True(t, g.Truncated)
	assert.Equal(t, 2, g.Len())
	assert.Len(t, g.Edges, 1)
}

func TestBuilder_Build_MarksShared(t *testing.T) {
	fx, st := setup(t)
	office := fx.Office("Cartório Único")
	parcel := fx.Parcel("Destino", "5")
	owner := fx.Parcel("Dono", "6")

	root := fx.Document(parcel, office, "M5")
	up := fx.Document(owner, office, "M6")
	fx.Entry(root, "M6", nil)
	fx.Imported(up, parcel)

	g, err := NewBuilder(st, 0).Build(context.TODO(), parcel)
	require.NoError(t, err)

	n, ok := g.Node(code("M6"))
	require.True(t, ok)
	assert.True(t, n.IsShared)
	assert.False(t, g.RootNode().IsShared)
}

func TestBuilder_Build_EmptyParcel(t *testing.T) {
	fx, st := setup(t)
	parcel := fx.Parcel("Vazio", "1")

	g, err := NewBuilder(st, 0).Build(context.TODO(), parcel)
	require.NoError(t, err)
	assert.Equal(t, 0, g.Len())
	assert.True(t, g.Root.IsZero())
}

func intPtr(v int) *int { return &v }
