package queue

import (
	"context"
	"sync"
	"time"
)

var ImportEventTopic = "cadeia.imports"

type ImportEventType string

const (
	ImportEventImported   ImportEventType = "imported"
	ImportEventUnimported ImportEventType = "unimported"
)

// ImportEvent announces that a document became shared with (or was removed from) a parcel.
type ImportEvent struct {
	Type       ImportEventType `json:"type"`
	DocumentID string          `json:"document_id"`
	ParcelID   string          `json:"parcel_id"`
	Actor      string          `json:"actor,omitempty"`
	At         time.Time       `json:"at"`
}

type ImportQueue interface {
	// PublishImport appends an import event to the queue.
	PublishImport(ctx context.Context, event *ImportEvent) error
	Close() error
}

// Nop drops events; used when no broker is configured.
type Nop struct{}

func (Nop) PublishImport(ctx context.Context, event *ImportEvent) error { return nil }
func (Nop) Close() error                                                { return nil }

// Memory keeps published events in order.
type Memory struct {
	mu     sync.Mutex
	events []ImportEvent
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) PublishImport(ctx context.Context, event *ImportEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *event)
	return nil
}

func (m *Memory) Events() []ImportEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ImportEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *Memory) Close() error { return nil }
