package service

import (
	"context"

	"github.com/emrgen/cadeia/internal/graph"
	"github.com/emrgen/cadeia/internal/model"
	"github.com/sirupsen/logrus"
)

// DuplicateMatch is a document that already exists under another parcel, with the
// upstream documents that can be imported along with it.
type DuplicateMatch struct {
	MatchedDocument *model.Document
	ImportableChain []*model.Document
}

// DuplicateDetector finds documents a registrar is about to cite that another parcel already owns.
type DuplicateDetector struct {
	store   graph.DocumentStore
	builder *graph.Builder
}

func NewDuplicateDetector(store graph.DocumentStore, builder *graph.Builder) *DuplicateDetector {
	return &DuplicateDetector{store: store, builder: builder}
}

// FindDuplicate returns nil when no document with (code, officeID) exists outside
// excludingParcelID. The importable chain is the match plus everything upstream of
// it, minus documents already shared or already owned by the requesting parcel.
func (d *DuplicateDetector) FindDuplicate(ctx context.Context, code model.DocumentCode, officeID, excludingParcelID string) (*DuplicateMatch, error) {
	doc, err := d.store.FindDocumentByCodeAndOffice(ctx, code, officeID)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.ParcelID == excludingParcelID {
		return nil, nil
	}

	g, err := d.builder.Expand(ctx, doc)
	if err != nil {
		return nil, err
	}

	chain := make([]*model.Document, 0, g.Len())
	for _, n := range g.Nodes {
		if n.IsShared || n.ParcelID == excludingParcelID {
			continue
		}
		chain = append(chain, n.Document)
	}

	logrus.WithFields(logrus.Fields{
		"code":       code.String(),
		"document":   doc.ID,
		"owner":      doc.ParcelID,
		"requester":  excludingParcelID,
		"importable": len(chain),
	}).Info("duplicate document found")

	return &DuplicateMatch{MatchedDocument: doc, ImportableChain: chain}, nil
}
