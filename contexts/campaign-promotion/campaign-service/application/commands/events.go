package commands

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"soundtik/contexts/campaign-promotion/campaign-service/domain/entities"
	"soundtik/contexts/campaign-promotion/campaign-service/ports"
	contractsv1 "soundtik/contracts/gen/events/v1"
)

const (
	EventCampaignCreated           = "campaign.created"
	EventCampaignSubmitted         = "campaign.submitted"
	EventCampaignApproved          = "campaign.approved"
	EventCampaignRejected          = "campaign.rejected"
	EventCampaignCompleted         = "campaign.completed"
	EventCampaignMetricsRecomputed = "campaign.metrics_recomputed"
)

func newCampaignEnvelope(
	eventID string,
	eventType string,
	campaignID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "campaign-service",
		TraceID:          eventID,
		SchemaVersion:    contractsv1.CurrentSchemaVersion,
		PartitionKeyPath: "campaign_id",
		PartitionKey:     campaignID,
		Data:             payload,
	}, nil
}

type transition struct {
	CampaignID string
	From       entities.CampaignStatus
	To         entities.CampaignStatus
	ActorID    string
	Reason     string
	EventType  string
	Data       map[string]any
	At         time.Time
}

// recordTransition appends the state history row and, when an outbox is wired,
// the matching domain event.
func recordTransition(
	ctx context.Context,
	history ports.HistoryRepository,
	outbox ports.OutboxWriter,
	idGen ports.IDGenerator,
	item transition,
) error {
	historyID, err := idGen.NewID(ctx)
	if err != nil {
		return err
	}
	if history != nil {
		if err := history.AppendState(ctx, entities.StateHistory{
			HistoryID:    historyID,
			CampaignID:   item.CampaignID,
			FromState:    item.From,
			ToState:      item.To,
			ChangedBy:    strings.TrimSpace(item.ActorID),
			ChangeReason: strings.TrimSpace(item.Reason),
			CreatedAt:    item.At,
		}); err != nil {
			return err
		}
	}
	if outbox == nil || item.EventType == "" {
		return nil
	}

	eventID, err := idGen.NewID(ctx)
	if err != nil {
		return err
	}
	data := map[string]any{
		"campaign_id": item.CampaignID,
		"from_status": string(item.From),
		"to_status":   string(item.To),
	}
	for key, value := range item.Data {
		data[key] = value
	}
	envelope, err := newCampaignEnvelope(eventID, item.EventType, item.CampaignID, item.At, data)
	if err != nil {
		return err
	}
	return outbox.AppendOutbox(ctx, envelope)
}
