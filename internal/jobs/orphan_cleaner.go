package jobs

import (
	"context"
	"time"

	"github.com/emrgen/cadeia/internal/model"
	"github.com/sirupsen/logrus"
)

type orphanStore interface {
	ListOrphanImportRecords(ctx context.Context) ([]*model.ImportRecord, error)
}

type importUndoer interface {
	Undo(ctx context.Context, documentID string) (*model.ImportRecord, error)
}

// OrphanImportCleaner removes import records whose destination parcel was
// deleted, so the documents become importable again.
type OrphanImportCleaner struct {
	store    orphanStore
	importer importUndoer
	schedule string
	timeout  time.Duration
}

func NewOrphanImportCleaner(schedule string, store orphanStore, importer importUndoer) *OrphanImportCleaner {
	return &OrphanImportCleaner{
		store:    store,
		importer: importer,
		schedule: schedule,
		timeout:  time.Minute,
	}
}

func (c *OrphanImportCleaner) Name() string {
	return "orphan_import_cleaner"
}

func (c *OrphanImportCleaner) Schedule() string {
	return c.schedule
}

func (c *OrphanImportCleaner) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if _, err := c.Clean(ctx); err != nil {
		logrus.Errorf("orphan import cleaner failed: %v", err)
	}
}

// Clean returns the number of import records removed.
func (c *OrphanImportCleaner) Clean(ctx context.Context) (int, error) {
	records, err := c.store.ListOrphanImportRecords(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, record := range records {
		if _, err := c.importer.Undo(ctx, record.DocumentID); err != nil {
			logrus.WithFields(logrus.Fields{
				"document": record.DocumentID,
				"parcel":   record.ImportingParcelID,
			}).Errorf("failed to remove orphan import record: %v", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		logrus.Infof("removed %d orphan import records", removed)
	}

	return removed, nil
}
