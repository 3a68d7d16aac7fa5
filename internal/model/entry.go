package model

import (
	"time"

	"gorm.io/gorm"
)

// Entry is a dated transaction (lançamento) recorded against a document. Origin is the
// registrar's free-text reference to the document(s) this title descends from.
type Entry struct {
	ID                     string `gorm:"primaryKey;uuid;not null"`
	DocumentID             string `gorm:"uuid;not null;index"`
	Kind                   string // registro, averbacao, inicio_de_matricula
	Number                 string
	Date                   *time.Time
	Origin                 string
	OriginRegistryOfficeID *string `gorm:"uuid;index"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
	DeletedAt              gorm.DeletedAt `gorm:"index"`
}

func (Entry) TableName() string {
	return "entries"
}
