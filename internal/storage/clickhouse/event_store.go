package clickhouse

import (
	"context"
	"fmt"
	"time"

	"ico-sale-engine/internal/domain"
	"ico-sale-engine/internal/observability"
	"ico-sale-engine/internal/storage"
)

// EventStore implements storage.EventStore using ClickHouse. The sale event
// log is an insert-only analytics sink; nothing reads it back into sale
// state.
type EventStore struct {
	conn *Conn
}

// NewEventStore creates a new EventStore.
func NewEventStore(conn *Conn) *EventStore {
	return &EventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

// Append adds an event to the log.
func (s *EventStore) Append(ctx context.Context, e *domain.SaleEvent) (err error) {
	start := time.Now()
	defer func() { observability.RecordDBQuery("clickhouse", "event_append", time.Since(start).Seconds(), err) }()

	if e == nil || e.Sale == "" || e.Kind == "" {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO sale_events (
			sale, kind, actor, token_amount, native_amount, tokens_sold,
			total_raised, price, max_tokens, min_purchase, max_purchase,
			start_time, end_time, paused, occurred_at, ingested_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	// ingested_at breaks occurred_at ties, keeping append order for
	// events recorded within the same second.
	err = batch.Append(
		e.Sale, string(e.Kind), e.Actor,
		e.TokenAmount, e.NativeAmount, e.TokensSold, e.TotalRaised,
		e.Price, e.MaxTokens, e.MinPurchase, e.MaxPurchase,
		e.StartTime, e.EndTime, e.Paused, e.OccurredAt,
		time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// ListBySale retrieves all events for a sale, ordered by occurred_at ASC.
func (s *EventStore) ListBySale(ctx context.Context, sale string) ([]*domain.SaleEvent, error) {
	query := `
		SELECT sale, kind, actor, token_amount, native_amount, tokens_sold,
		       total_raised, price, max_tokens, min_purchase, max_purchase,
		       start_time, end_time, paused, occurred_at
		FROM sale_events
		WHERE sale = ?
		ORDER BY occurred_at ASC, ingested_at ASC
	`

	rows, err := s.conn.Query(ctx, query, sale)
	if err != nil {
		return nil, fmt.Errorf("query events by sale: %w", err)
	}
	defer rows.Close()

	return scanSaleEvents(rows)
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanSaleEvents scans multiple rows into a slice.
func scanSaleEvents(rows chRows) ([]*domain.SaleEvent, error) {
	var events []*domain.SaleEvent

	for rows.Next() {
		var e domain.SaleEvent
		var kind string

		err := rows.Scan(
			&e.Sale, &kind, &e.Actor,
			&e.TokenAmount, &e.NativeAmount, &e.TokensSold, &e.TotalRaised,
			&e.Price, &e.MaxTokens, &e.MinPurchase, &e.MaxPurchase,
			&e.StartTime, &e.EndTime, &e.Paused, &e.OccurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan sale event row: %w", err)
		}

		e.Kind = domain.EventKind(kind)
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sale event rows: %w", err)
	}

	return events, nil
}
