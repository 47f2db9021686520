package domain

import "time"

// Event types
const (
	EventTypeEntrySetCreated = "entry_set.created"
)

// Aggregate types
const (
	AggregateTypeEntrySet = "entry_set"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewEntrySetCreatedEvent builds the outbox event recorded with a new entry set.
func NewEntrySetCreatedEvent(id string, set *EntrySet, now time.Time) *OutboxEvent {
	entries := make([]map[string]any, 0, len(set.Entries))
	for _, e := range set.Entries {
		entry := map[string]any{
			"id":           e.ID,
			"namespace":    e.Namespace,
			"name":         e.Name,
			"amount":       e.Amount,
			"currency":     e.Currency,
			"legal_entity": e.LegalEntity,
		}
		if e.AccountID != nil {
			entry["account_id"] = *e.AccountID
		}
		entries = append(entries, entry)
	}

	payload := map[string]any{
		"entry_set_id":    set.ID,
		"idempotency_key": set.IdempotencyKey,
		"committed_at":    set.CommittedAt.Format(time.RFC3339Nano),
		"entries":         entries,
	}
	if set.ReportingAt != nil {
		payload["reporting_at"] = set.ReportingAt.Format(time.RFC3339Nano)
	}

	return &OutboxEvent{
		ID:            id,
		AggregateID:   set.ID,
		AggregateType: AggregateTypeEntrySet,
		EventType:     EventTypeEntrySetCreated,
		Payload:       payload,
		CreatedAt:     now,
	}
}
