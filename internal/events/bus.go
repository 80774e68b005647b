// Package events lets readers react to engine mutations (cache refresh,
// audit trails) without the engine knowing who listens.
package events

import (
	"sync"

	"association-backoffice/internal/models"

	"github.com/google/uuid"
)

type Event interface{ Name() string }

type BatchDeleted struct {
	BatchID        uuid.UUID
	RecordsRemoved int64
}

func (BatchDeleted) Name() string { return "batch_deleted" }

type RecordAssigned struct {
	RecordID   uuid.UUID
	ResidentID *uuid.UUID
	Status     models.AssignmentStatus
}

func (RecordAssigned) Name() string { return "record_assigned" }

type BulkConfirmed struct {
	Confirmed int64
}

func (BulkConfirmed) Name() string { return "bulk_confirmed" }

// Bus fans events out synchronously to every subscriber, in subscription
// order. Subscribers must not block.
type Bus struct {
	mu   sync.RWMutex
	subs []func(Event)
}

func NewBus() *Bus { return &Bus{} }

func (b *Bus) Subscribe(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(e)
	}
}
