package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/zionledger/internal/domain"
	"github.com/iho/zionledger/internal/infrastructure/postgres/generated"
	"github.com/iho/zionledger/internal/usecase"
)

const (
	defaultOutboxBatch = 100
	maxOutboxBatch     = 1000
)

// OutboxRepository stores entry set events next to the entry set that
// produced them, so an event exists if and only if its set was committed.
type OutboxRepository struct {
	queries *generated.Queries
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return newOutboxRepository(pool)
}

func newOutboxRepository(db generated.DBTX) *OutboxRepository {
	return &OutboxRepository{queries: generated.New(db)}
}

// Create inserts event inside tx. It never runs outside a transaction.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("encode payload of event %s: %w", event.ID, err)
	}

	err = r.queries.WithTx(tx.(*Tx).PgxTx()).CreateOutboxEvent(ctx, generated.CreateOutboxEventParams{
		ID:            event.ID,
		AggregateID:   event.AggregateID,
		AggregateType: event.AggregateType,
		EventType:     event.EventType,
		Payload:       payload,
		CreatedAt:     event.CreatedAt.UTC(),
		Published:     event.Published,
	})
	if err != nil {
		return fmt.Errorf("insert event %s for %s %s: %w", event.ID, event.AggregateType, event.AggregateID, err)
	}

	return nil
}

// GetUnpublished returns up to limit pending events, oldest first.
// A row whose payload no longer decodes is reported instead of skipped.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	rows, err := r.queries.GetUnpublishedEvents(ctx, int32(clampBatch(limit)))
	if err != nil {
		return nil, fmt.Errorf("load unpublished events: %w", err)
	}

	events := make([]*domain.OutboxEvent, 0, len(rows))
	for _, row := range rows {
		event, err := outboxEventFromRow(row)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	err := r.queries.MarkEventPublished(ctx, generated.MarkEventPublishedParams{
		ID:          id,
		PublishedAt: publishedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("mark event %s published: %w", id, err)
	}

	return nil
}

// DeletePublished prunes delivered events older than before.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if err := r.queries.DeletePublishedEvents(ctx, before.UTC()); err != nil {
		return fmt.Errorf("prune published events: %w", err)
	}

	return nil
}

func clampBatch(limit int) int {
	switch {
	case limit <= 0:
		return defaultOutboxBatch
	case limit > maxOutboxBatch:
		return maxOutboxBatch
	default:
		return limit
	}
}

func outboxEventFromRow(row generated.OutboxEvent) (*domain.OutboxEvent, error) {
	event := &domain.OutboxEvent{
		ID:            row.ID,
		AggregateID:   row.AggregateID,
		AggregateType: row.AggregateType,
		EventType:     row.EventType,
		CreatedAt:     row.CreatedAt.UTC(),
		PublishedAt:   utcPtr(row.PublishedAt),
		Published:     row.Published,
	}

	if len(row.Payload) > 0 {
		if err := json.Unmarshal(row.Payload, &event.Payload); err != nil {
			return nil, fmt.Errorf("decode payload of event %s: %w", row.ID, err)
		}
	}

	return event, nil
}
