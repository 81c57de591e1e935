package ports

import (
	"context"
	"time"

	"soundtik/contexts/campaign-promotion/campaign-service/domain/entities"
	contractsv1 "soundtik/contracts/gen/events/v1"
)

type CampaignFilter struct {
	UserID string
	Status entities.CampaignStatus
	Limit  int
}

// CampaignRepository persists campaigns. UpdateCampaign succeeds only while the
// stored version still equals expectedVersion; the caller sets the new version.
// A payment transaction id belongs to at most one campaign: UpdateCampaign
// returns ErrPaymentAlreadyApplied when another campaign already holds it.
type CampaignRepository interface {
	CreateCampaign(ctx context.Context, campaign entities.Campaign) error
	UpdateCampaign(ctx context.Context, campaign entities.Campaign, expectedVersion int64) error
	GetCampaign(ctx context.Context, campaignID string) (entities.Campaign, error)
	ListCampaigns(ctx context.Context, filter CampaignFilter) ([]entities.Campaign, error)
	ListCampaignsEndedBefore(ctx context.Context, now time.Time, limit int) ([]entities.Campaign, error)
}

type VideoRepository interface {
	AddVideo(ctx context.Context, video entities.Video) error
	GetVideo(ctx context.Context, videoID string) (entities.Video, error)
	UpdateVideo(ctx context.Context, video entities.Video) error
	DeleteVideo(ctx context.Context, videoID string) error
	ListVideosByCampaign(ctx context.Context, campaignID string) ([]entities.Video, error)
}

type MetricsRepository interface {
	GetMetrics(ctx context.Context, campaignID string) (entities.MetricsSummary, bool, error)
	SaveMetrics(ctx context.Context, summary entities.MetricsSummary) error
}

type HistoryRepository interface {
	AppendState(ctx context.Context, item entities.StateHistory) error
}

type IdempotencyRecord struct {
	Key             string
	RequestHash     string
	ResponsePayload []byte
	ExpiresAt       time.Time
}

type IdempotencyStore interface {
	GetRecord(ctx context.Context, key string, now time.Time) (IdempotencyRecord, bool, error)
	PutRecord(ctx context.Context, record IdempotencyRecord) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}

// EventDedupStore remembers consumed event ids. ReleaseEvent drops a
// reservation whose handling failed so a redelivery is processed again.
type EventDedupStore interface {
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
	ReleaseEvent(ctx context.Context, eventID string) error
}

// Store is the full persistence surface one backend provides.
type Store interface {
	CampaignRepository
	VideoRepository
	MetricsRepository
	HistoryRepository
	IdempotencyStore
	OutboxWriter
	OutboxRepository
	EventDedupStore
}
