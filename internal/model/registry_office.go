package model

import "time"

// RegistryOffice (cartório) issues documents; it is part of a document's identity.
type RegistryOffice struct {
	ID        string `gorm:"primaryKey;uuid;not null"`
	Name      string `gorm:"not null"`
	CNS       string `gorm:"index"` // national registry code
	City      string
	State     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (RegistryOffice) TableName() string {
	return "registry_offices"
}
