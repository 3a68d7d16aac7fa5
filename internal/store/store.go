package store

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/cadeia/internal/model"
)

type Store interface {
	ParcelStore
	DocumentStore
	EntryStore
	ImportStore
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}

type ParcelStore interface {
	// CreateRegistryOffice creates a new registry office.
	CreateRegistryOffice(ctx context.Context, office *model.RegistryOffice) error
	// CreateParcel creates a new parcel.
	CreateParcel(ctx context.Context, parcel *model.Parcel) error
	// GetParcel retrieves a parcel by ID.
	GetParcel(ctx context.Context, id string) (*model.Parcel, error)
	// ParcelExists reports whether a live (not deleted) parcel exists.
	ParcelExists(ctx context.Context, id string) (bool, error)
	// DeleteParcel soft deletes a parcel.
	DeleteParcel(ctx context.Context, id string) error
}

type DocumentStore interface {
	// CreateDocument creates a new document.
	CreateDocument(ctx context.Context, doc *model.Document) error
	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*model.Document, error)
	// ListDocumentsFromIDs retrieves a list of documents by IDs.
	ListDocumentsFromIDs(ctx context.Context, ids []string) ([]*model.Document, error)
	// ListParcelDocuments retrieves the documents owned by a parcel.
	ListParcelDocuments(ctx context.Context, parcelID string) ([]*model.Document, error)
	// FindDocumentByCodeAndOffice retrieves the document with the given identity, nil if absent.
	FindDocumentByCodeAndOffice(ctx context.Context, code model.DocumentCode, officeID string) (*model.Document, error)
	// FindDocumentsByCode retrieves the documents with the given code in any office, entries preloaded.
	FindDocumentsByCode(ctx context.Context, code model.DocumentCode) ([]*model.Document, error)
	// FindPrincipalDocument retrieves the parcel's principal document, nil if the parcel has none.
	FindPrincipalDocument(ctx context.Context, parcel *model.Parcel) (*model.Document, error)
	// SetManualLevel pins (or clears, with nil) the level reported for a document.
	SetManualLevel(ctx context.Context, id string, level *int) error
}

type EntryStore interface {
	// CreateEntry creates a new entry.
	CreateEntry(ctx context.Context, entry *model.Entry) error
	// EntriesWithOrigin retrieves the entries of a document that carry origin text.
	EntriesWithOrigin(ctx context.Context, doc *model.Document) ([]*model.Entry, error)
}

type ImportStore interface {
	// ImportRecordExists reports whether the document is imported anywhere.
	ImportRecordExists(ctx context.Context, documentID string) (bool, error)
	// ImportedDocumentIDs returns the subset of ids that have an import record.
	ImportedDocumentIDs(ctx context.Context, ids []string) (mapset.Set[string], error)
	// CreateImportRecord creates an import record; false when one already exists for the document.
	CreateImportRecord(ctx context.Context, documentID, parcelID, actor string) (bool, error)
	// DeleteImportRecord removes the document's import record, returning it (nil if none).
	DeleteImportRecord(ctx context.Context, documentID string) (*model.ImportRecord, error)
	// ListImportRecords retrieves the import records of a destination parcel.
	ListImportRecords(ctx context.Context, parcelID string) ([]*model.ImportRecord, error)
	// ListOrphanImportRecords retrieves import records whose destination parcel no longer exists.
	ListOrphanImportRecords(ctx context.Context) ([]*model.ImportRecord, error)
}
