package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/emrgen/cadeia/internal/cache"
	"github.com/emrgen/cadeia/internal/model"
	"github.com/emrgen/cadeia/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func levelsOf(tree *TreePayload) map[string]int {
	out := make(map[string]int, len(tree.Documents))
	for _, d := range tree.Documents {
		out[d.Code] = d.Level
	}
	return out
}

func TestChainService_Tree(t *testing.T) {
	e := newEnv(t)
	parcel := e.fx.Parcel("Fazenda Boa Vista", "1200")
	m1200 := e.fx.Document(parcel, e.office, "M1200")
	t300 := e.fx.Document(parcel, e.office, "T300")
	e.fx.Document(parcel, e.office, "T7")
	e.fx.Entry(m1200, "Transcrição nº 300 e 999", nil)
	e.fx.Entry(t300, "T-7", nil)

	tree, err := e.service.Tree(ctx(), parcel.ID)
	require.NoError(t, err)

	assert.Equal(t, "M1200", tree.Root)
	assert.Equal(t, map[string]int{"M1200": 0, "T300": 1, "T7": 2}, levelsOf(tree))
	assert.Equal(t, []EdgePayload{{From: "M1200", To: "T300"}, {From: "T300", To: "T7"}}, tree.Edges)
	require.Len(t, tree.Unresolved, 1)
	assert.Equal(t, "M999", tree.Unresolved[0].Code.String())
	assert.False(t, tree.Truncated)
}

func TestChainService_Tree_UnknownParcel(t *testing.T) {
	e := newEnv(t)

	_, err := e.service.Tree(ctx(), "nope")
	assert.ErrorIs(t, err, ErrParcelNotFound)
}

func TestChainService_Tree_EmptyParcel(t *testing.T) {
	e := newEnv(t)
	parcel := e.fx.Parcel("Lote vazio", "1")

	tree, err := e.service.Tree(ctx(), parcel.ID)
	require.NoError(t, err)
	assert.Empty(t, tree.Root)
	assert.Empty(t, tree.Documents)
	assert.Empty(t, tree.Edges)
}

func TestChainService_CheckDuplicate(t *testing.T) {
	e := newEnv(t)
	owner := e.fx.Parcel("Origem", "500")
	requester := e.fx.Parcel("Destino", "900")
	m500 := e.fx.Document(owner, e.office, "M500")
	e.fx.Document(owner, e.office, "T40")
	e.fx.Entry(m500, "T40", nil)

	t.Run("invalid code", func(t *testing.T) {
		_, err := e.service.CheckDuplicate(ctx(), DuplicateCheckRequest{Code: "X12", OfficeID: e.office.ID, ParcelID: requester.ID})
		assert.ErrorIs(t, err, ErrInvalidCode)
	})

	t.Run("no match", func(t *testing.T) {
		res, err := e.service.CheckDuplicate(ctx(), DuplicateCheckRequest{Code: "M1", OfficeID: e.office.ID, ParcelID: requester.ID})
		require.NoError(t, err)
		assert.False(t, res.Exists)
		assert.Nil(t, res.MatchedDocument)
		assert.Empty(t, res.ImportableChain)
		assert.Empty(t, res.ProposalToken)
	})

	t.Run("match", func(t *testing.T) {
		res, err := e.service.CheckDuplicate(ctx(), DuplicateCheckRequest{Code: "m 500", OfficeID: e.office.ID, ParcelID: requester.ID})
		require.NoError(t, err)
		assert.True(t, res.Exists)
		require.NotNil(t, res.MatchedDocument)
		assert.Equal(t, m500.ID, res.MatchedDocument.ID)
		assert.Equal(t, "matrícula", res.MatchedDocument.Kind)
		require.Len(t, res.ImportableChain, 2)
		assert.NotEmpty(t, res.ProposalToken)
	})

	t.Run("own document", func(t *testing.T) {
		res, err := e.service.CheckDuplicate(ctx(), DuplicateCheckRequest{Code: "M500", OfficeID: e.office.ID, ParcelID: owner.ID})
		require.NoError(t, err)
		assert.False(t, res.Exists)
	})
}

func TestChainService_ConfirmImport(t *testing.T) {
	e := newEnv(t)
	owner := e.fx.Parcel("Origem", "500")
	requester := e.fx.Parcel("Destino", "900")
	m500 := e.fx.Document(owner, e.office, "M500")
	e.fx.Document(owner, e.office, "T40")
	e.fx.Entry(m500, "T40", nil)

	check, err := e.service.CheckDuplicate(ctx(), DuplicateCheckRequest{Code: "M500", OfficeID: e.office.ID, ParcelID: requester.ID})
	require.NoError(t, err)
	require.NotEmpty(t, check.ProposalToken)

	res, err := e.service.ConfirmImport(ctx(), check.ProposalToken, "ana")
	require.NoError(t, err)
	assert.Equal(t, requester.ID, res.ParcelID)
	assert.Equal(t, 2, res.Imported)
	assert.Len(t, e.importRecords(t), 2)

	_, err = e.service.ConfirmImport(ctx(), check.ProposalToken, "ana")
	assert.ErrorIs(t, err, ErrProposalNotFound)

	// everything upstream is shared now, nothing left to offer
	again, err := e.service.CheckDuplicate(ctx(), DuplicateCheckRequest{Code: "M500", OfficeID: e.office.ID, ParcelID: requester.ID})
	require.NoError(t, err)
	assert.True(t, again.Exists)
	assert.Empty(t, again.ImportableChain)
	assert.Empty(t, again.ProposalToken)
}

func TestChainService_Import_UnknownDocument(t *testing.T) {
	e := newEnv(t)
	dest := e.fx.Parcel("Destino", "2")

	_, err := e.service.Import(ctx(), []string{"missing"}, dest.ID, "ana")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.Empty(t, e.importRecords(t))
}

func TestChainService_UndoImport(t *testing.T) {
	e := newEnv(t)
	owner := e.fx.Parcel("Origem", "1")
	dest := e.fx.Parcel("Destino", "2")
	doc := e.fx.Document(owner, e.office, "M1")
	e.fx.Imported(doc, dest)

	require.NoError(t, e.service.UndoImport(ctx(), doc.ID))
	assert.ErrorIs(t, e.service.UndoImport(ctx(), doc.ID), ErrNotImported)
}

func TestChainService_SetManualLevel(t *testing.T) {
	e := newEnv(t)
	parcel := e.fx.Parcel("Fazenda", "10")
	m10 := e.fx.Document(parcel, e.office, "M10")
	t5 := e.fx.Document(parcel, e.office, "T5")
	e.fx.Entry(m10, "T5", nil)

	level := 4
	require.NoError(t, e.service.SetManualLevel(ctx(), t5.ID, &level))

	tree, err := e.service.Tree(ctx(), parcel.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, levelsOf(tree)["T5"])

	require.NoError(t, e.service.SetManualLevel(ctx(), t5.ID, nil))
	tree, err = e.service.Tree(ctx(), parcel.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, levelsOf(tree)["T5"])

	assert.ErrorIs(t, e.service.SetManualLevel(ctx(), "missing", &level), ErrDocumentNotFound)
}

func TestChainService_AddEntry(t *testing.T) {
	e := newEnv(t)
	owner := e.fx.Parcel("Fazenda Velha", "40")
	requester := e.fx.Parcel("Fazenda Nova", "900")
	t40 := e.fx.Document(owner, e.office, "T40")
	e.fx.Document(owner, e.office, "T10")
	e.fx.Entry(t40, "T10", nil)
	m900 := e.fx.Document(requester, e.office, "M900")

	res, err := e.service.AddEntry(ctx(), m900.ID, EntryRequest{
		Kind:   "abertura",
		Number: "R1",
		Origin: "Transcrição 40 e matrícula 77",
	})
	require.NoError(t, err)

	require.NotNil(t, res.Entry)
	assert.NotEmpty(t, res.Entry.ID)
	assert.Equal(t, []EdgePayload{{From: "M900", To: "T40"}}, res.Linked)
	assert.Equal(t, map[string]int{"M900": 0, "T40": 1}, levelsOf(res.Tree))

	require.Len(t, res.Duplicates, 1)
	assert.Equal(t, t40.ID, res.Duplicates[0].MatchedDocument.ID)
	assert.Len(t, res.Duplicates[0].ImportableChain, 2)
	assert.NotEmpty(t, res.Duplicates[0].ProposalToken)

	// the stored entry is part of the chain from now on
	tree, err := e.service.Tree(ctx(), requester.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"M900": 0, "T40": 1, "T10": 2}, levelsOf(tree))
}

func TestChainService_AddEntry_SelfReference(t *testing.T) {
	e := newEnv(t)
	parcel := e.fx.Parcel("Fazenda", "12")
	m12 := e.fx.Document(parcel, e.office, "M12")

	_, err := e.service.AddEntry(ctx(), m12.ID, EntryRequest{Kind: "registro", Number: "R2", Origin: "matrícula 12"})
	assert.ErrorIs(t, err, ErrSelfReference)

	entries, err := e.store.EntriesWithOrigin(ctx(), m12)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestChainService_AddEntry_KeepsExistingLevels(t *testing.T) {
	e := newEnv(t)
	parcel := e.fx.Parcel("Fazenda", "1")
	m1 := e.fx.Document(parcel, e.office, "M1")
	t2 := e.fx.Document(parcel, e.office, "T2")
	t3 := e.fx.Document(parcel, e.office, "T3")
	e.fx.Entry(m1, "T2", nil)
	e.fx.Entry(t2, "T3", nil)

	// T3 -> T2 would close a cycle
	res, err := e.service.AddEntry(ctx(), t3.ID, EntryRequest{Kind: "registro", Number: "R1", Origin: "T2"})
	require.NoError(t, err)
	assert.Empty(t, res.Linked)
	assert.Empty(t, res.Duplicates)
	assert.Equal(t, map[string]int{"M1": 0, "T2": 1, "T3": 2}, levelsOf(res.Tree))
}

func TestChainService_ConfirmImport_MissingActorKeepsProposal(t *testing.T) {
	e := newEnv(t)
	owner := e.fx.Parcel("Origem", "500")
	requester := e.fx.Parcel("Destino", "900")
	e.fx.Document(owner, e.office, "M500")

	check, err := e.service.CheckDuplicate(ctx(), DuplicateCheckRequest{Code: "M500", OfficeID: e.office.ID, ParcelID: requester.ID})
	require.NoError(t, err)

	_, err = e.service.ConfirmImport(ctx(), check.ProposalToken, "")
	assert.ErrorIs(t, err, ErrMissingActor)

	res, err := e.service.ConfirmImport(ctx(), check.ProposalToken, "ana")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
}

var errEntryInsert = errors.New("entry insert failed")

type failingEntryStore struct {
	*store.GormStore
}

func (failingEntryStore) CreateEntry(ctx context.Context, entry *model.Entry) error {
	return errEntryInsert
}

type countingProposalCache struct {
	*cache.MemoryProposalCache
	puts int
}

func (c *countingProposalCache) Put(ctx context.Context, p *cache.Proposal, ttl time.Duration) error {
	c.puts++
	return c.MemoryProposalCache.Put(ctx, p, ttl)
}

func TestChainService_AddEntry_FailedInsertLeavesNoProposal(t *testing.T) {
	e := newEnv(t)
	owner := e.fx.Parcel("Fazenda Velha", "40")
	requester := e.fx.Parcel("Fazenda Nova", "900")
	e.fx.Document(owner, e.office, "T40")
	m900 := e.fx.Document(requester, e.office, "M900")

	proposals := &countingProposalCache{MemoryProposalCache: cache.NewMemoryProposalCache()}
	svc := NewChainService(failingEntryStore{e.store}, proposals, e.events, Options{})

	_, err := svc.AddEntry(ctx(), m900.ID, EntryRequest{Kind: "abertura", Number: "R1", Origin: "Transcrição 40"})
	assert.ErrorIs(t, err, errEntryInsert)
	assert.Zero(t, proposals.puts)

	// the same entry through a working store does offer the import
	res, err := e.service.AddEntry(ctx(), m900.ID, EntryRequest{Kind: "abertura", Number: "R1", Origin: "Transcrição 40"})
	require.NoError(t, err)
	assert.Len(t, res.Duplicates, 1)
}
