package service

import (
	"context"
	"time"

	"github.com/emrgen/cadeia/internal/model"
	"github.com/emrgen/cadeia/internal/queue"
	"github.com/emrgen/cadeia/internal/store"
	"github.com/sirupsen/logrus"
)

type ImportStatus string

const (
	ImportStatusImported           ImportStatus = "imported"
	ImportStatusAlreadyImported    ImportStatus = "already_imported"
	ImportStatusOwnedByDestination ImportStatus = "owned_by_destination"
)

type ImportItem struct {
	DocumentID string       `json:"document_id"`
	Code       string       `json:"code"`
	Status     ImportStatus `json:"status"`
}

type ImportResult struct {
	ParcelID string       `json:"parcel_id"`
	Items    []ImportItem `json:"items"`
	Imported int          `json:"imported"`
	Skipped  int          `json:"skipped"`
}

// Importer shares documents with a destination parcel. The document row is never
// copied or re-owned; only an import record is written.
type Importer struct {
	store store.Store
	queue queue.ImportQueue
}

func NewImporter(store store.Store, q queue.ImportQueue) *Importer {
	if q == nil {
		q = queue.Nop{}
	}

	return &Importer{store: store, queue: q}
}

// Import writes one import record per document in a single transaction. Documents
// already imported anywhere, by an earlier call or a concurrent one, are reported
// as skipped. A missing destination parcel fails the whole batch.
func (i *Importer) Import(ctx context.Context, docs []*model.Document, parcelID, actor string) (*ImportResult, error) {
	if actor == "" {
		return nil, ErrMissingActor
	}

	var result *ImportResult
	err := i.store.Transaction(ctx, func(tx store.Store) error {
		result = &ImportResult{ParcelID: parcelID, Items: make([]ImportItem, 0, len(docs))}

		exists, err := tx.ParcelExists(ctx, parcelID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrParcelNotFound
		}

		for _, doc := range docs {
			item := ImportItem{DocumentID: doc.ID, Code: doc.Code().String()}

			switch {
			case doc.ParcelID == parcelID:
				item.Status = ImportStatusOwnedByDestination
			default:
				item.Status, err = importOne(ctx, tx, doc, parcelID, actor)
				if err != nil {
					return err
				}
			}

			if item.Status == ImportStatusImported {
				result.Imported++
			} else {
				result.Skipped++
			}
			result.Items = append(result.Items, item)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"parcel":   parcelID,
		"actor":    actor,
		"imported": result.Imported,
		"skipped":  result.Skipped,
	}).Info("import finished")

	for _, item := range result.Items {
		if item.Status != ImportStatusImported {
			continue
		}
		i.publish(ctx, &queue.ImportEvent{
			Type:       queue.ImportEventImported,
			DocumentID: item.DocumentID,
			ParcelID:   parcelID,
			Actor:      actor,
			At:         time.Now().UTC(),
		})
	}

	return result, nil
}

func importOne(ctx context.Context, tx store.Store, doc *model.Document, parcelID, actor string) (ImportStatus, error) {
	imported, err := tx.ImportRecordExists(ctx, doc.ID)
	if err != nil {
		return "", err
	}
	if imported {
		return ImportStatusAlreadyImported, nil
	}

	created, err := tx.CreateImportRecord(ctx, doc.ID, parcelID, actor)
	if err != nil {
		return "", err
	}
	if !created {
		logrus.Infof("document %s imported concurrently, skipped", doc.ID)
		return ImportStatusAlreadyImported, nil
	}

	return ImportStatusImported, nil
}

// Undo removes the document's import record, making it unshared again.
func (i *Importer) Undo(ctx context.Context, documentID string) (*model.ImportRecord, error) {
	record, err := i.store.DeleteImportRecord(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNotImported
	}

	i.publish(ctx, &queue.ImportEvent{
		Type:       queue.ImportEventUnimported,
		DocumentID: record.DocumentID,
		ParcelID:   record.ImportingParcelID,
		At:         time.Now().UTC(),
	})

	return record, nil
}

func (i *Importer) publish(ctx context.Context, event *queue.ImportEvent) {
	if err := i.queue.PublishImport(ctx, event); err != nil {
		logrus.WithFields(logrus.Fields{
			"document": event.DocumentID,
			"parcel":   event.ParcelID,
			"type":     event.Type,
		}).Errorf("failed to publish import event: %v", err)
	}
}
