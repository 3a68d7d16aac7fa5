package model

import "time"

// ImportRecord marks a document as shared into another parcel's chain.
// The unique index is on document_id alone: a document is imported at most once
// system-wide, whatever the destination.
type ImportRecord struct {
	ID                string    `gorm:"primaryKey;uuid;not null"`
	DocumentID        string    `gorm:"uuid;not null;uniqueIndex:idx_import_records_document_id"`
	ImportingParcelID string    `gorm:"uuid;not null;index"`
	ImportedBy        string    `gorm:"not null"`
	ImportedAt        time.Time `gorm:"not null"`
}

func (ImportRecord) TableName() string {
	return "import_records"
}
