package service

import (
	"testing"

	"github.com/emrgen/cadeia/internal/graph"
	"github.com/emrgen/cadeia/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuplicateDetector_FindDuplicate(t *testing.T) {
	e := newEnv(t)
	owner := e.fx.Parcel("Fazenda Velha", "500")
	requester := e.fx.Parcel("Fazenda Nova", "900")

	m500 := e.fx.Document(owner, e.office, "M500")
	t40 := e.fx.Document(owner, e.office, "T40")
	e.fx.Document(owner, e.office, "T10")
	e.fx.Entry(m500, "transcrição 40", nil)
	e.fx.Entry(t40, "T10", nil)

	d := NewDuplicateDetector(e.store, graph.NewBuilder(e.store, 0))

	match, err := d.FindDuplicate(ctx(), model.NewCode(model.KindMatricula, "500"), e.office.ID, requester.ID)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, m500.ID, match.MatchedDocument.ID)
	assert.Equal(t, []string{"M500", "T40", "T10"}, codes(match.ImportableChain))
}

func TestDuplicateDetector_ExcludesRequestingParcel(t *testing.T) {
	e := newEnv(t)
	owner := e.fx.Parcel("Fazenda", "500")
	e.fx.Document(owner, e.office, "M500")

	d := NewDuplicateDetector(e.store, graph.NewBuilder(e.store, 0))

	match, err := d.FindDuplicate(ctx(), model.NewCode(model.KindMatricula, "500"), e.office.ID, owner.ID)
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestDuplicateDetector_OtherOfficeIsNotADuplicate(t *testing.T) {
	e := newEnv(t)
	owner := e.fx.Parcel("Fazenda", "500")
	requester := e.fx.Parcel("Sítio", "1")
	elsewhere := e.fx.Office("2º Registro de Imóveis")
	e.fx.Document(owner, e.office, "M500")

	d := NewDuplicateDetector(e.store, graph.NewBuilder(e.store, 0))

	match, err := d.FindDuplicate(ctx(), model.NewCode(model.KindMatricula, "500"), elsewhere.ID, requester.ID)
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestDuplicateDetector_ChainSkipsSharedDocuments(t *testing.T) {
	e := newEnv(t)
	owner := e.fx.Parcel("Fazenda Velha", "500")
	requester := e.fx.Parcel("Fazenda Nova", "900")
	earlier := e.fx.Parcel("Outra", "77")

	m500 := e.fx.Document(owner, e.office, "M500")
	t40 := e.fx.Document(owner, e.office, "T40")
	e.fx.Entry(m500, "T40", nil)
	e.fx.Imported(t40, earlier)

	d := NewDuplicateDetector(e.store, graph.NewBuilder(e.store, 0))

	match, err := d.FindDuplicate(ctx(), model.NewCode(model.KindMatricula, "500"), e.office.ID, requester.ID)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, []string{"M500"}, codes(match.ImportableChain))

	for _, doc := range match.ImportableChain {
		imported, err := e.store.ImportRecordExists(ctx(), doc.ID)
		require.NoError(t, err)
		assert.False(t, imported)
	}
}

func TestDuplicateDetector_ChainSkipsRequesterDocuments(t *testing.T) {
	e := newEnv(t)
	owner := e.fx.Parcel("Fazenda Velha", "500")
	requester := e.fx.Parcel("Fazenda Nova", "900")

	m500 := e.fx.Document(owner, e.office, "M500")
	e.fx.Document(requester, e.office, "T1")
	e.fx.Entry(m500, "T1", nil)

	d := NewDuplicateDetector(e.store, graph.NewBuilder(e.store, 0))

	match, err := d.FindDuplicate(ctx(), model.NewCode(model.KindMatricula, "500"), e.office.ID, requester.ID)
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, []string{"M500"}, codes(match.ImportableChain))
}
