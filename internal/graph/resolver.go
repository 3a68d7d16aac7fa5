package graph

import (
	"context"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/cadeia/internal/model"
	"github.com/sirupsen/logrus"
)

// DocumentStore is the read side of the document store the graph needs.
type DocumentStore interface {
	FindDocumentByCodeAndOffice(ctx context.Context, code model.DocumentCode, officeID string) (*model.Document, error)
	FindDocumentsByCode(ctx context.Context, code model.DocumentCode) ([]*model.Document, error)
	FindPrincipalDocument(ctx context.Context, parcel *model.Parcel) (*model.Document, error)
	EntriesWithOrigin(ctx context.Context, doc *model.Document) ([]*model.Entry, error)
	ImportedDocumentIDs(ctx context.Context, ids []string) (mapset.Set[string], error)
}

// Resolver maps an origin code to at most one stored document.
type Resolver struct {
	store DocumentStore
}

func NewResolver(store DocumentStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the document with code at officeID when the entry declared an
// origin office and it exists there. Otherwise it picks among the documents with
// that code in any office, preferring documents that already have entries over
// empty placeholders. It returns nil when the code is unknown.
func (r *Resolver) Resolve(ctx context.Context, code model.DocumentCode, officeID *string) (*model.Document, error) {
	if officeID != nil && *officeID != "" {
		doc, err := r.store.FindDocumentByCodeAndOffice(ctx, code, *officeID)
		if err != nil {
			return nil, err
		}
		if doc != nil {
			return doc, nil
		}
	}

	candidates, err := r.store.FindDocumentsByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	return pick(code, candidates), nil
}

// pick orders candidates by entry count (descending), creation time, then id.
func pick(code model.DocumentCode, candidates []*model.Document) *model.Document {
	if len(candidates) == 0 {
		return nil
	}

	ordered := make([]*model.Document, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if len(a.Entries) != len(b.Entries) {
			return len(a.Entries) > len(b.Entries)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	if len(ordered) > 1 && ordered[1].HasEntries() {
		logrus.WithFields(logrus.Fields{
			"code":       code.String(),
			"candidates": len(ordered),
			"office":     ordered[0].RegistryOfficeID,
		}).Warn("origin code exists with entries in several registry offices, picking the most complete")
	}

	return ordered[0]
}
