package model

import (
	"time"

	"gorm.io/gorm"
)

// Document is a registry record (matrícula or transcrição) issued by a registry office.
// A document is owned by the parcel that created it; other parcels can only see it
// through an ImportRecord.
type Document struct {
	ID               string       `gorm:"primaryKey;uuid;not null"`
	Kind             DocumentKind `gorm:"not null;uniqueIndex:idx_documents_identity,priority:1"`
	Number           string       `gorm:"not null;uniqueIndex:idx_documents_identity,priority:2"`
	RegistryOfficeID string       `gorm:"uuid;not null;uniqueIndex:idx_documents_identity,priority:3"`
	ParcelID         string       `gorm:"uuid;not null;index"`
	Date             *time.Time
	ManualLevel      *int
	Entries          []*Entry `gorm:"foreignKey:DocumentID;references:ID"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}

func (d *Document) Code() DocumentCode {
	return DocumentCode{Kind: d.Kind, Number: d.Number}
}

// HasEntries reports whether the document carries at least one entry.
// Entries must be preloaded.
func (d *Document) HasEntries() bool {
	return len(d.Entries) > 0
}
