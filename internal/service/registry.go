package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emrgen/cadeia/internal/model"
	"github.com/emrgen/cadeia/internal/store"
	"github.com/sirupsen/logrus"
)

// RegistryService records the offices, parcels and documents the chains are built from.
type RegistryService struct {
	store store.Store
}

func NewRegistryService(store store.Store) *RegistryService {
	return &RegistryService{store: store}
}

type OfficeRequest struct {
	Name  string `json:"name"`
	CNS   string `json:"cns"`
	City  string `json:"city"`
	State string `json:"state"`
}

type OfficePayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	CNS   string `json:"cns"`
	City  string `json:"city"`
	State string `json:"state"`
}

func (r *RegistryService) CreateOffice(ctx context.Context, req OfficeRequest) (*OfficePayload, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}

	office := &model.RegistryOffice{Name: req.Name, CNS: req.CNS, City: req.City, State: req.State}
	if err := r.store.CreateRegistryOffice(ctx, office); err != nil {
		return nil, err
	}

	return &OfficePayload{ID: office.ID, Name: office.Name, CNS: office.CNS, City: office.City, State: office.State}, nil
}

type ParcelRequest struct {
	Name               string `json:"name"`
	RegistrationNumber string `json:"registration_number"`
}

func (r *RegistryService) CreateParcel(ctx context.Context, req ParcelRequest) (*ParcelPayload, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}

	parcel := &model.Parcel{Name: req.Name, RegistrationNumber: req.RegistrationNumber}
	if err := r.store.CreateParcel(ctx, parcel); err != nil {
		return nil, err
	}

	return &ParcelPayload{ID: parcel.ID, Name: parcel.Name, RegistrationNumber: parcel.RegistrationNumber}, nil
}

// DeleteParcel soft-deletes a parcel. Documents it owns stay in place; its import
// records are removed later by the orphan import cleaner.
func (r *RegistryService) DeleteParcel(ctx context.Context, parcelID string) error {
	if _, err := r.store.GetParcel(ctx, parcelID); err != nil {
		return err
	}

	if err := r.store.DeleteParcel(ctx, parcelID); err != nil {
		return err
	}
	logrus.Infof("parcel %s deleted", parcelID)

	return nil
}

type DocumentRequest struct {
	Code             string     `json:"code"`
	RegistryOfficeID string     `json:"registry_office_id"`
	Date             *time.Time `json:"date"`
}

// CreateDocument registers a document owned by parcelID. A code is unique per
// registry office across all parcels.
func (r *RegistryService) CreateDocument(ctx context.Context, parcelID string, req DocumentRequest) (*DocumentPayload, error) {
	code, err := model.ParseCode(req.Code)
	if err != nil {
		return nil, err
	}
	if req.RegistryOfficeID == "" {
		return nil, fmt.Errorf("%w: registry_office_id is required", ErrInvalidRequest)
	}

	exists, err := r.store.ParcelExists(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrParcelNotFound
	}

	found, err := r.store.FindDocumentByCodeAndOffice(ctx, code, req.RegistryOfficeID)
	if err != nil {
		return nil, err
	}
	if found != nil {
		return nil, fmt.Errorf("%w: %s", ErrDocumentExists, code)
	}

	doc := &model.Document{
		Kind:             code.Kind,
		Number:           code.Number,
		RegistryOfficeID: req.RegistryOfficeID,
		ParcelID:         parcelID,
		Date:             req.Date,
	}
	if err := r.store.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}

	payload := newDocumentPayload(doc)
	return &payload, nil
}

type ImportRecordPayload struct {
	DocumentID string    `json:"document_id"`
	ParcelID   string    `json:"parcel_id"`
	ImportedBy string    `json:"imported_by"`
	ImportedAt time.Time `json:"imported_at"`
}

// ListImports returns the documents imported into parcelID, oldest first.
func (r *RegistryService) ListImports(ctx context.Context, parcelID string) ([]ImportRecordPayload, error) {
	if _, err := r.store.GetParcel(ctx, parcelID); err != nil {
		return nil, err
	}

	records, err := r.store.ListImportRecords(ctx, parcelID)
	if err != nil {
		return nil, err
	}

	out := make([]ImportRecordPayload, 0, len(records))
	for _, record := range records {
		out = append(out, ImportRecordPayload{
			DocumentID: record.DocumentID,
			ParcelID:   record.ImportingParcelID,
			ImportedBy: record.ImportedBy,
			ImportedAt: record.ImportedAt,
		})
	}

	return out, nil
}
