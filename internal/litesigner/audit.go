package litesigner

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github/chapool/go-remotesigner/pkg/custodian"
)

// auditCapacity bounds the in-memory log, oldest entries are dropped first.
const auditCapacity = 10000

// AuditLog records API events in memory, newest first on listing.
type AuditLog struct {
	mu      sync.Mutex
	entries []custodian.AuditEntry
}

// NewAuditLog creates an empty audit log.
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

// Record appends an event.
func (a *AuditLog) Record(_ context.Context, event, resourceType string, resourceID *uuid.UUID, metadata map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.entries = append(a.entries, custodian.AuditEntry{
		ID:           uuid.New(),
		Event:        event,
		ActorType:    "api_key",
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Metadata:     metadata,
		CreatedAt:    time.Now().UTC(),
	})

	if len(a.entries) > auditCapacity {
		a.entries = a.entries[len(a.entries)-auditCapacity:]
	}
}

// List returns one page of entries, newest first.
func (a *AuditLog) List(_ context.Context, query custodian.AuditQuery) *custodian.AuditPage {
	a.mu.Lock()
	defer a.mu.Unlock()

	filtered := make([]custodian.AuditEntry, 0, len(a.entries))
	for i := len(a.entries) - 1; i >= 0; i-- {
		entry := a.entries[i]
		if query.Event != "" && entry.Event != query.Event {
			continue
		}
		if query.ResourceType != "" && entry.ResourceType != query.ResourceType {
			continue
		}
		if query.ResourceID != nil && (entry.ResourceID == nil || *entry.ResourceID != *query.ResourceID) {
			continue
		}
		filtered = append(filtered, entry)
	}

	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}

	offset := query.Offset
	if offset > len(filtered) {
		offset = len(filtered)
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}

	return &custodian.AuditPage{
		Items:  filtered[offset:end],
		Total:  len(filtered),
		Offset: offset,
		Limit:  limit,
	}
}
