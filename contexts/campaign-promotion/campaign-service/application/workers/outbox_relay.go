package workers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "soundtik/contexts/campaign-promotion/campaign-service/application"
	"soundtik/contexts/campaign-promotion/campaign-service/ports"
)

const defaultRelayBatch = 100

var errUndeliverableRow = errors.New("outbox row cannot be delivered")

// OutboxRelay drains campaign outbox rows onto the event bus, oldest first.
// A publish failure stops the cycle so rows keep their order. A row that
// can never be delivered is parked: it is logged with its payload and
// marked published so it stops holding back the rows behind it.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

type relayCycle struct {
	published int
	parked    int
}

func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger).With(
		"module", "campaign-promotion/campaign-service",
		"layer", "worker",
	)
	batch := r.BatchSize
	if batch <= 0 {
		batch = defaultRelayBatch
	}

	rows, err := r.Outbox.ListPendingOutbox(ctx, batch)
	if err != nil {
		logger.Error("campaign outbox list failed",
			"event", "campaign_outbox_list_failed",
			"error", err.Error(),
		)
		return err
	}

	var cycle relayCycle
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.relay(ctx, logger, row, &cycle); err != nil {
			return err
		}
	}

	if cycle.published > 0 || cycle.parked > 0 {
		logger.Info("campaign outbox relay cycle completed",
			"event", "campaign_outbox_relay_completed",
			"published_count", cycle.published,
			"parked_count", cycle.parked,
		)
	}
	return nil
}

func (r OutboxRelay) relay(ctx context.Context, logger *slog.Logger, row ports.OutboxMessage, cycle *relayCycle) error {
	topic, event, err := envelopeForRow(row)
	if err != nil {
		logger.Error("campaign outbox row parked",
			"event", "campaign_outbox_row_parked",
			"outbox_id", row.OutboxID,
			"event_type", row.EventType,
			"payload", string(row.Payload),
			"error", err.Error(),
		)
		if err := r.markDone(ctx, logger, row.OutboxID); err != nil {
			return err
		}
		cycle.parked++
		return nil
	}

	if err := r.Publisher.Publish(ctx, topic, event); err != nil {
		logger.Error("campaign outbox publish failed",
			"event", "campaign_outbox_publish_failed",
			"outbox_id", row.OutboxID,
			"event_type", topic,
			"error", err.Error(),
		)
		return err
	}
	if err := r.markDone(ctx, logger, row.OutboxID); err != nil {
		return err
	}
	cycle.published++
	return nil
}

// markDone records the row as handled. A failure here leaves the row pending
// and it is published again on the next cycle.
func (r OutboxRelay) markDone(ctx context.Context, logger *slog.Logger, outboxID string) error {
	if err := r.Outbox.MarkOutboxPublished(ctx, outboxID, r.now()); err != nil {
		logger.Error("campaign outbox mark published failed",
			"event", "campaign_outbox_mark_published_failed",
			"outbox_id", outboxID,
			"error", err.Error(),
		)
		return err
	}
	return nil
}

func (r OutboxRelay) now() time.Time {
	if r.Clock == nil {
		return time.Now().UTC()
	}
	return r.Clock.Now().UTC()
}

// envelopeForRow decodes a stored row and picks the topic it goes to. The
// envelope's own type wins over the row column.
func envelopeForRow(row ports.OutboxMessage) (string, ports.EventEnvelope, error) {
	var event ports.EventEnvelope
	if err := json.Unmarshal(row.Payload, &event); err != nil {
		return "", ports.EventEnvelope{}, errors.Join(errUndeliverableRow, err)
	}
	topic := strings.TrimSpace(event.EventType)
	if topic == "" {
		topic = strings.TrimSpace(row.EventType)
	}
	if topic == "" {
		return "", ports.EventEnvelope{}, errors.Join(errUndeliverableRow, errors.New("event type is empty"))
	}
	return topic, event, nil
}
