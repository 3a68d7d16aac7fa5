package store

import (
	"context"
	"errors"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/cadeia/internal/model"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

func (g *GormStore) CreateRegistryOffice(ctx context.Context, office *model.RegistryOffice) error {
	if office.ID == "" {
		office.ID = uuid.New().String()
	}
	return g.db.WithContext(ctx).Create(office).Error
}

func (g *GormStore) CreateParcel(ctx context.Context, parcel *model.Parcel) error {
	if parcel.ID == "" {
		parcel.ID = uuid.New().String()
	}
	return g.db.WithContext(ctx).Create(parcel).Error
}

func (g *GormStore) GetParcel(ctx context.Context, id string) (*model.Parcel, error) {
	var parcel model.Parcel
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&parcel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrParcelNotFound
	}
	if err != nil {
		return nil, err
	}

	return &parcel, nil
}

func (g *GormStore) ParcelExists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.Parcel{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (g *GormStore) DeleteParcel(ctx context.Context, id string) error {
	return g.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Parcel{}).Error
}

func (g *GormStore) CreateDocument(ctx context.Context, doc *model.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	return g.db.WithContext(ctx).Omit("Entries").Create(doc).Error
}

func (g *GormStore) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	err := g.db.WithContext(ctx).Preload("Entries", orderedEntries).Where("id = ?", id).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

func (g *GormStore) ListDocumentsFromIDs(ctx context.Context, ids []string) ([]*model.Document, error) {
	docs := make([]*model.Document, 0)
	if len(ids) == 0 {
		return docs, nil
	}
	err := g.db.WithContext(ctx).Preload("Entries", orderedEntries).Where("id in (?)", ids).Find(&docs).Error
	return docs, err
}

func (g *GormStore) ListParcelDocuments(ctx context.Context, parcelID string) ([]*model.Document, error) {
	docs := make([]*model.Document, 0)
	err := g.db.WithContext(ctx).Where("parcel_id = ?", parcelID).Order("created_at asc, id asc").Find(&docs).Error
	return docs, err
}

func (g *GormStore) FindDocumentByCodeAndOffice(ctx context.Context, code model.DocumentCode, officeID string) (*model.Document, error) {
	var doc model.Document
	err := g.db.WithContext(ctx).
		Preload("Entries", orderedEntries).
		Where("kind = ? AND number = ? AND registry_office_id = ?", code.Kind, code.Number, officeID).
		Limit(1).
		Find(&doc).Error
	if err != nil {
		return nil, err
	}
	if doc.ID == "" {
		return nil, nil
	}

	return &doc, nil
}

func (g *GormStore) FindDocumentsByCode(ctx context.Context, code model.DocumentCode) ([]*model.Document, error) {
	docs := make([]*model.Document, 0)
	err := g.db.WithContext(ctx).
		Preload("Entries", orderedEntries).
		Where("kind = ? AND number = ?", code.Kind, code.Number).
		Order("created_at asc, id asc").
		Find(&docs).Error
	return docs, err
}

func (g *GormStore) FindPrincipalDocument(ctx context.Context, parcel *model.Parcel) (*model.Document, error) {
	docs, err := g.ListParcelDocuments(ctx, parcel.ID)
	if err != nil {
		return nil, err
	}

	return model.SelectPrincipal(parcel, docs), nil
}

func (g *GormStore) SetManualLevel(ctx context.Context, id string, level *int) error {
	res := g.db.WithContext(ctx).Model(&model.Document{}).Where("id = ?", id).Update("manual_level", level)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDocumentNotFound
	}

	return nil
}

func (g *GormStore) CreateEntry(ctx context.Context, entry *model.Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	return g.db.WithContext(ctx).Create(entry).Error
}

func (g *GormStore) EntriesWithOrigin(ctx context.Context, doc *model.Document) ([]*model.Entry, error) {
	entries := make([]*model.Entry, 0)
	err := g.db.WithContext(ctx).
		Where("document_id = ? AND origin IS NOT NULL AND TRIM(origin) <> ''", doc.ID).
		Order("created_at asc, id asc").
		Find(&entries).Error
	return entries, err
}

func (g *GormStore) ImportRecordExists(ctx context.Context, documentID string) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&model.ImportRecord{}).Where("document_id = ?", documentID).Count(&count).Error
	return count > 0, err
}

func (g *GormStore) ImportedDocumentIDs(ctx context.Context, ids []string) (mapset.Set[string], error) {
	imported := mapset.NewSet[string]()
	if len(ids) == 0 {
		return imported, nil
	}

	var found []string
	err := g.db.WithContext(ctx).Model(&model.ImportRecord{}).Where("document_id in (?)", ids).Pluck("document_id", &found).Error
	if err != nil {
		return nil, err
	}
	imported.Append(found...)

	return imported, nil
}

// CreateImportRecord relies on the unique index on document_id: the first writer
// wins and every concurrent or later attempt inserts nothing.
func (g *GormStore) CreateImportRecord(ctx context.Context, documentID, parcelID, actor string) (bool, error) {
	record := &model.ImportRecord{
		ID:                uuid.New().String(),
		DocumentID:        documentID,
		ImportingParcelID: parcelID,
		ImportedBy:        actor,
		ImportedAt:        time.Now().UTC(),
	}

	res := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "document_id"}}, DoNothing: true}).
		Create(record)
	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected == 1, nil
}

func (g *GormStore) DeleteImportRecord(ctx context.Context, documentID string) (*model.ImportRecord, error) {
	var record model.ImportRecord
	err := g.db.WithContext(ctx).Where("document_id = ?", documentID).Limit(1).Find(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == "" {
		return nil, nil
	}

	if err := g.db.WithContext(ctx).Where("id = ?", record.ID).Delete(&model.ImportRecord{}).Error; err != nil {
		return nil, err
	}

	logrus.Infof("import record removed for document %s (parcel %s)", documentID, record.ImportingParcelID)

	return &record, nil
}

func (g *GormStore) ListImportRecords(ctx context.Context, parcelID string) ([]*model.ImportRecord, error) {
	records := make([]*model.ImportRecord, 0)
	err := g.db.WithContext(ctx).Where("importing_parcel_id = ?", parcelID).Order("imported_at asc").Find(&records).Error
	return records, err
}

func (g *GormStore) ListOrphanImportRecords(ctx context.Context) ([]*model.ImportRecord, error) {
	records := make([]*model.ImportRecord, 0)
	err := g.db.WithContext(ctx).
		Select("import_records.*").
		Joins("LEFT JOIN parcels ON parcels.id = import_records.importing_parcel_id AND parcels.deleted_at IS NULL").
		Where("parcels.id IS NULL").
		Find(&records).Error
	return records, err
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}

func orderedEntries(db *gorm.DB) *gorm.DB {
	return db.Order("entries.created_at asc, entries.id asc")
}
