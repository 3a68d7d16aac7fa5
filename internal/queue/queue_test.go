package queue

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	q := NewMemory()
	event := &ImportEvent{Type: ImportEventImported, DocumentID: "d1", ParcelID: "p1", At: time.Now()}
	require.NoError(t, q.PublishImport(context.TODO(), event))

	events := q.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "d1", events[0].DocumentID)

	events[0].DocumentID = "changed"
	assert.Equal(t, "d1", q.Events()[0].DocumentID)
}

func TestKafka(t *testing.T) {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("KAFKA_BROKERS not set")
	}

	q, err := NewKafka(brokers, "cadeia.imports.test")
	require.NoError(t, err)
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = q.PublishImport(ctx, &ImportEvent{Type: ImportEventImported, DocumentID: "d1", ParcelID: "p1", At: time.Now()})
	assert.NoError(t, err)
}
