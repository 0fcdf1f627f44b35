package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/k-code-yt/retail-orders/internal/domain"
	eventrepo "github.com/k-code-yt/retail-orders/internal/repo/event"
	reposhared "github.com/k-code-yt/retail-orders/internal/repo/repo-shared"
)

const (
	consumerName   = "kafka-relay"
	batchSize      = 100
	flushTimeoutMs = 5000
)

// EventPublisher is what the relay needs from the Kafka producer: an async
// enqueue plus a bounded wait for outstanding delivery reports.
type EventPublisher interface {
	Produce(key, msg []byte) error
	Flush(timeoutMs int) int
}

// OutboxService relays committed order events to Kafka. order_events stays
// append-only: progress lives in a cursor row, locked per tick, so multiple
// relay instances never double-publish the same batch.
type OutboxService struct {
	db        *sqlx.DB
	eventRepo *eventrepo.EventRepo
	producer  EventPublisher
	interval  time.Duration
}

func NewOutbox(db *sqlx.DB, er *eventrepo.EventRepo, p EventPublisher) *OutboxService {
	return &OutboxService{
		db:        db,
		eventRepo: er,
		producer:  p,
		interval:  2 * time.Second,
	}
}

func (s *OutboxService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.handlePending(ctx)
		}
	}
}

func (s *OutboxService) handlePending(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	published, err := reposhared.TxClosure(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) (int, error) {
		lastID, err := s.lockOffset(ctx, tx)
		if err != nil {
			return 0, err
		}

		events, err := s.eventRepo.ListAfter(ctx, tx, lastID, batchSize)
		if err != nil {
			return 0, err
		}
		if len(events) == 0 {
			return 0, nil
		}

		var publishedThrough int64
		count := 0
		for _, e := range events {
			b, err := json.Marshal(relayEnvelope{
				EventPublicID: e.PublicID,
				OrderID:       e.OrderID,
				EventType:     e.EventType,
				Payload:       e.Payload,
				OccurredAt:    e.OccurredAt,
			})
			if err != nil {
				logrus.WithError(err).WithField("eventID", e.ID).Error("marshal event")
				return 0, err
			}
			if err := s.producer.Produce([]byte(e.PublicID), b); err != nil {
				// Stop the batch here; the cursor only advances past what
				// was handed to the producer.
				logrus.WithError(err).WithField("eventID", e.ID).Error("produce event")
				break
			}
			publishedThrough = e.ID
			count++
		}
		if count == 0 {
			return 0, nil
		}

		// Produce is an async enqueue, so wait for the delivery reports
		// before committing the cursor. If anything is still in flight the
		// whole tick rolls back and the next one re-reads the same batch:
		// duplicates are possible, losses are not.
		if outstanding := s.producer.Flush(flushTimeoutMs); outstanding > 0 {
			return 0, fmt.Errorf("%d events unconfirmed after flush", outstanding)
		}

		if err := s.updateOffset(ctx, tx, publishedThrough); err != nil {
			return 0, err
		}
		return count, nil
	})

	if err != nil {
		logrus.WithError(err).Error("outbox relay tick failed")
		return
	}
	if published > 0 {
		logrus.WithField("count", published).Info("relayed order events")
	}
}

type relayEnvelope struct {
	EventPublicID string           `json:"event_public_id"`
	OrderID       int64            `json:"order_id"`
	EventType     domain.EventType `json:"event_type"`
	Payload       json.RawMessage  `json:"payload"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

func (s *OutboxService) lockOffset(ctx context.Context, tx *sqlx.Tx) (int64, error) {
	q := `INSERT INTO outbox_offsets (consumer, last_event_id) VALUES ($1, 0)
		ON CONFLICT (consumer) DO UPDATE SET last_event_id = outbox_offsets.last_event_id
		RETURNING last_event_id`
	var lastID int64
	if err := tx.GetContext(ctx, &lastID, q, consumerName); err != nil {
		return 0, domain.NewPersistenceError(err)
	}
	return lastID, nil
}

func (s *OutboxService) updateOffset(ctx context.Context, tx *sqlx.Tx, lastID int64) error {
	_, err := tx.ExecContext(ctx, "UPDATE outbox_offsets SET last_event_id = $1 WHERE consumer = $2", lastID, consumerName)
	if err != nil {
		return domain.NewPersistenceError(err)
	}
	return nil
}
