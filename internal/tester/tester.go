package tester

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/emrgen/cadeia/internal/model"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated sqlite database private to the test.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "cadeia.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := model.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

// Fixture creates registry data directly through gorm.
type Fixture struct {
	t   testing.TB
	db  *gorm.DB
	seq int
}

func NewFixture(t testing.TB, db *gorm.DB) *Fixture {
	return &Fixture{t: t, db: db}
}

func (f *Fixture) DB() *gorm.DB {
	return f.db
}

func (f *Fixture) Office(name string) *model.RegistryOffice {
	office := &model.RegistryOffice{ID: uuid.New().String(), Name: name}
	f.create(office)
	return office
}

func (f *Fixture) Parcel(name, registration string) *model.Parcel {
	parcel := &model.Parcel{ID: uuid.New().String(), Name: name, RegistrationNumber: registration}
	f.create(parcel)
	return parcel
}

// Document creates a document owned by parcel. code is written as "M123" or "T45".
func (f *Fixture) Document(parcel *model.Parcel, office *model.RegistryOffice, code string) *model.Document {
	c, err := model.ParseCode(code)
	if err != nil {
		f.t.Fatalf("fixture document code: %v", err)
	}

	f.seq++
	date := time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, f.seq)
	doc := &model.Document{
		ID:               uuid.New().String(),
		Kind:             c.Kind,
		Number:           c.Number,
		RegistryOfficeID: office.ID,
		ParcelID:         parcel.ID,
		Date:             &date,
	}
	f.create(doc)
	return doc
}

// Entry records an entry on doc citing origin; originOffice may be nil.
func (f *Fixture) Entry(doc *model.Document, origin string, originOffice *model.RegistryOffice) *model.Entry {
	f.seq++
	entry := &model.Entry{
		ID:         uuid.New().String(),
		DocumentID: doc.ID,
		Kind:       "registro",
		Number:     "R" + uuid.New().String()[:4],
		Origin:     origin,
		CreatedAt:  time.Now().Add(time.Duration(f.seq) * time.Millisecond),
	}
	if originOffice != nil {
		entry.OriginRegistryOfficeID = &originOffice.ID
	}
	f.create(entry)
	doc.Entries = append(doc.Entries, entry)
	return entry
}

func (f *Fixture) Imported(doc *model.Document, parcel *model.Parcel) *model.ImportRecord {
	record := &model.ImportRecord{
		ID:                uuid.New().String(),
		DocumentID:        doc.ID,
		ImportingParcelID: parcel.ID,
		ImportedBy:        "fixture",
		ImportedAt:        time.Now().UTC(),
	}
	f.create(record)
	return record
}

func (f *Fixture) create(value any) {
	f.t.Helper()
	if err := f.db.Create(value).Error; err != nil {
		f.t.Fatalf("fixture create %T: %v", value, err)
	}
}
