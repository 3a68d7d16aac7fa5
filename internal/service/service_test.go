package service

import (
	"context"
	"testing"

	"github.com/emrgen/cadeia/internal/cache"
	"github.com/emrgen/cadeia/internal/model"
	"github.com/emrgen/cadeia/internal/queue"
	"github.com/emrgen/cadeia/internal/store"
	"github.com/emrgen/cadeia/internal/tester"
	"github.com/stretchr/testify/require"
)

type env struct {
	fx      *tester.Fixture
	store   *store.GormStore
	events  *queue.Memory
	service *ChainService
	office  *model.RegistryOffice
}

func newEnv(t *testing.T) *env {
	db := tester.NewDB(t)
	st := store.NewGormStore(db)
	events := queue.NewMemory()
	fx := tester.NewFixture(t, db)

	return &env{
		fx:      fx,
		store:   st,
		events:  events,
		service: NewChainService(st, cache.NewMemoryProposalCache(), events, Options{}),
		office:  fx.Office("1º Registro de Imóveis"),
	}
}

func (e *env) importRecords(t *testing.T) []model.ImportRecord {
	var records []model.ImportRecord
	require.NoError(t, e.fx.DB().Find(&records).Error)
	return records
}

func codes(docs []*model.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Code().String())
	}
	return out
}

func ctx() context.Context {
	return context.TODO()
}
