package model

import "gorm.io/gorm"

// Migrate creates or updates every registry table, referenced tables first.
func Migrate(db *gorm.DB) error {
	for _, table := range []any{
		&RegistryOffice{},
		&Parcel{},
		&Document{},
		&Entry{},
		&ImportRecord{},
	} {
		if err := db.AutoMigrate(table); err != nil {
			return err
		}
	}

	return nil
}
