package model

import (
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"gorm.io/gorm"
)

// Parcel is the land unit (imóvel) whose chain of title is tracked.
type Parcel struct {
	ID                 string `gorm:"primaryKey;uuid;not null"`
	Name               string `gorm:"not null"`
	RegistrationNumber string `gorm:"index"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

func (Parcel) TableName() string {
	return "parcels"
}

// RegistrationDigits returns the registration number without punctuation, "12.345" -> "12345".
func (p *Parcel) RegistrationDigits() string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, p.RegistrationNumber)
}

// SelectPrincipal picks the parcel's principal document among the documents it owns:
// first a document whose number numerically equals the registration number, then one
// whose code contains the registration number, then the earliest dated one.
func SelectPrincipal(parcel *Parcel, docs []*Document) *Document {
	if len(docs) == 0 {
		return nil
	}

	ordered := make([]*Document, len(docs))
	copy(ordered, docs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return earlier(ordered[i], ordered[j])
	})

	reg := parcel.RegistrationDigits()
	if reg != "" {
		if want, err := strconv.ParseUint(reg, 10, 64); err == nil {
			for _, doc := range ordered {
				if n, err := strconv.ParseUint(doc.Number, 10, 64); err == nil && n == want {
					return doc
				}
			}
		}

		for _, doc := range ordered {
			if strings.Contains(doc.Code().String(), reg) {
				return doc
			}
		}
	}

	return ordered[0]
}

// earlier orders documents by date (undated last), creation time, then id.
// Matrículas win ties so the modern title is preferred when a number is shared.
func earlier(a, b *Document) bool {
	switch {
	case a.Date != nil && b.Date == nil:
		return true
	case a.Date == nil && b.Date != nil:
		return false
	case a.Date != nil && b.Date != nil && !a.Date.Equal(*b.Date):
		return a.Date.Before(*b.Date)
	}

	if a.Kind != b.Kind {
		return a.Kind == KindMatricula
	}

	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}

	return a.ID < b.ID
}
