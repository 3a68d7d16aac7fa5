package service

import (
	"context"
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/cadeia/internal/cache"
	"github.com/emrgen/cadeia/internal/graph"
	"github.com/emrgen/cadeia/internal/model"
	"github.com/emrgen/cadeia/internal/origin"
	"github.com/emrgen/cadeia/internal/queue"
	"github.com/emrgen/cadeia/internal/store"
	"github.com/sirupsen/logrus"
)

const DefaultProposalTTL = 30 * time.Minute

type Options struct {
	MaxDocuments int
	ProposalTTL  time.Duration
}

// ChainService serves the chain-of-title views and the import workflow.
type ChainService struct {
	store     store.Store
	builder   *graph.Builder
	detector  *DuplicateDetector
	importer  *Importer
	proposals cache.ProposalCache
	ttl       time.Duration
}

// NewChainService creates a new ChainService.
func NewChainService(store store.Store, proposals cache.ProposalCache, q queue.ImportQueue, opts Options) *ChainService {
	if opts.ProposalTTL <= 0 {
		opts.ProposalTTL = DefaultProposalTTL
	}
	if proposals == nil {
		proposals = cache.NewMemoryProposalCache()
	}

	builder := graph.NewBuilder(store, opts.MaxDocuments)
	return &ChainService{
		store:     store,
		builder:   builder,
		detector:  NewDuplicateDetector(store, builder),
		importer:  NewImporter(store, q),
		proposals: proposals,
		ttl:       opts.ProposalTTL,
	}
}

// Tree builds the parcel's leveled chain of title.
func (s *ChainService) Tree(ctx context.Context, parcelID string) (*TreePayload, error) {
	parcel, err := s.store.GetParcel(ctx, parcelID)
	if err != nil {
		return nil, err
	}

	g, err := s.builder.Build(ctx, parcel)
	if err != nil {
		return nil, err
	}

	return newTreePayload(parcel, g), nil
}

type DuplicateCheckRequest struct {
	Code     string `json:"code"`
	OfficeID string `json:"office_id"`
	ParcelID string `json:"parcel_id"`
}

// CheckDuplicate looks for the code under another parcel. When something can be
// imported, the offer is kept as a proposal that ConfirmImport accepts.
func (s *ChainService) CheckDuplicate(ctx context.Context, req DuplicateCheckRequest) (*DuplicateCheckResponse, error) {
	code, err := model.ParseCode(req.Code)
	if err != nil {
		return nil, err
	}

	match, err := s.detector.FindDuplicate(ctx, code, req.OfficeID, req.ParcelID)
	if err != nil {
		return nil, err
	}

	return s.respond(ctx, code, req.OfficeID, req.ParcelID, match)
}

func (s *ChainService) respond(ctx context.Context, code model.DocumentCode, officeID, parcelID string, match *DuplicateMatch) (*DuplicateCheckResponse, error) {
	res := &DuplicateCheckResponse{ImportableChain: make([]DocumentPayload, 0)}
	if match == nil {
		return res, nil
	}

	res.Exists = true
	matched := newDocumentPayload(match.MatchedDocument)
	res.MatchedDocument = &matched

	ids := make([]string, 0, len(match.ImportableChain))
	for _, doc := range match.ImportableChain {
		res.ImportableChain = append(res.ImportableChain, newDocumentPayload(doc))
		ids = append(ids, doc.ID)
	}

	if len(ids) == 0 {
		return res, nil
	}

	proposal := &cache.Proposal{
		Token:             cache.NewToken(),
		ParcelID:          parcelID,
		Code:              code.String(),
		OfficeID:          officeID,
		MatchedDocumentID: match.MatchedDocument.ID,
		DocumentIDs:       ids,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.proposals.Put(ctx, proposal, s.ttl); err != nil {
		return nil, err
	}
	res.ProposalToken = proposal.Token

	return res, nil
}

// ConfirmImport imports the chain offered by a duplicate check. A proposal can be
// confirmed once.
func (s *ChainService) ConfirmImport(ctx context.Context, token, actor string) (*ImportResult, error) {
	if actor == "" {
		return nil, ErrMissingActor
	}

	proposal, err := s.proposals.Take(ctx, token)
	if err != nil {
		return nil, err
	}

	docs, err := s.documents(ctx, proposal.DocumentIDs)
	if err != nil {
		return nil, err
	}

	return s.importer.Import(ctx, docs, proposal.ParcelID, actor)
}

// Import shares the given documents with parcelID.
func (s *ChainService) Import(ctx context.Context, documentIDs []string, parcelID, actor string) (*ImportResult, error) {
	docs, err := s.documents(ctx, documentIDs)
	if err != nil {
		return nil, err
	}

	return s.importer.Import(ctx, docs, parcelID, actor)
}

// UndoImport makes a shared document unshared again.
func (s *ChainService) UndoImport(ctx context.Context, documentID string) error {
	_, err := s.importer.Undo(ctx, documentID)
	return err
}

// SetManualLevel pins the level reported for a document; nil clears the pin.
func (s *ChainService) SetManualLevel(ctx context.Context, documentID string, level *int) error {
	return s.store.SetManualLevel(ctx, documentID, level)
}

type EntryRequest struct {
	Kind                   string     `json:"kind"`
	Number                 string     `json:"number"`
	Date                   *time.Time `json:"date"`
	Origin                 string     `json:"origin"`
	OriginRegistryOfficeID *string    `json:"origin_registry_office_id"`
}

type AddEntryResponse struct {
	Entry      *EntryPayload            `json:"entry"`
	Linked     []EdgePayload            `json:"linked"`
	Duplicates []DuplicateCheckResponse `json:"duplicates"`
	Tree       *TreePayload             `json:"tree"`
}

// AddEntry records an entry on a document. Once the entry is stored, every
// origin it cites that another parcel owns is checked for duplicates, and the
// resolved origins are linked into the current tree one edge at a time, so levels
// already shown for the chain do not move.
func (s *ChainService) AddEntry(ctx context.Context, documentID string, req EntryRequest) (*AddEntryResponse, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	codes := origin.ParseSorted(req.Origin)
	for _, code := range codes {
		if code == doc.Code() {
			return nil, fmt.Errorf("%w: %s", ErrSelfReference, code)
		}
	}

	parcel, err := s.store.GetParcel(ctx, doc.ParcelID)
	if err != nil {
		return nil, err
	}

	g, err := s.builder.Build(ctx, parcel)
	if err != nil {
		return nil, err
	}

	type citation struct {
		code   model.DocumentCode
		parent *model.Document
	}
	cited := make([]citation, 0, len(codes))
	for _, code := range codes {
		parent, err := s.builder.Resolver().Resolve(ctx, code, req.OriginRegistryOfficeID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			logrus.WithFields(logrus.Fields{"document": doc.ID, "code": code.String()}).Info("unresolved origin on new entry")
			continue
		}
		cited = append(cited, citation{code: code, parent: parent})
	}

	entry := &model.Entry{
		DocumentID:             doc.ID,
		Kind:                   req.Kind,
		Number:                 req.Number,
		Date:                   req.Date,
		Origin:                 req.Origin,
		OriginRegistryOfficeID: req.OriginRegistryOfficeID,
	}
	if err := s.store.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}

	res := &AddEntryResponse{
		Entry:      newEntryPayload(entry),
		Linked:     make([]EdgePayload, 0),
		Duplicates: make([]DuplicateCheckResponse, 0),
	}

	checked := mapset.NewThreadUnsafeSet[string]()
	for _, c := range cited {
		if c.parent.ParcelID == doc.ParcelID || !checked.Add(c.parent.ID) {
			continue
		}
		match, err := s.detector.FindDuplicate(ctx, c.code, c.parent.RegistryOfficeID, doc.ParcelID)
		if err != nil {
			return nil, err
		}
		if match != nil {
			dup, err := s.respond(ctx, c.code, c.parent.RegistryOfficeID, doc.ParcelID, match)
			if err != nil {
				return nil, err
			}
			res.Duplicates = append(res.Duplicates, *dup)
		}
	}

	for _, c := range cited {
		if g.Link(doc.Code(), c.parent) {
			res.Linked = append(res.Linked, EdgePayload{From: doc.Code().String(), To: c.parent.Code().String()})
		}
	}
	if err := s.builder.MarkShared(ctx, g); err != nil {
		return nil, err
	}
	res.Tree = newTreePayload(parcel, g)

	return res, nil
}

// documents loads ids in the given order; an unknown id fails the call.
func (s *ChainService) documents(ctx context.Context, ids []string) ([]*model.Document, error) {
	docs, err := s.store.ListDocumentsFromIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*model.Document, len(docs))
	for _, doc := range docs {
		byID[doc.ID] = doc
	}

	ordered := make([]*model.Document, 0, len(ids))
	for _, id := range ids {
		doc, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, id)
		}
		ordered = append(ordered, doc)
	}

	return ordered, nil
}
