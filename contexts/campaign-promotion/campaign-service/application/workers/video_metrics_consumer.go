package workers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "soundtik/contexts/campaign-promotion/campaign-service/application"
	"soundtik/contexts/campaign-promotion/campaign-service/application/commands"
	"soundtik/contexts/campaign-promotion/campaign-service/domain/entities"
	domainerrors "soundtik/contexts/campaign-promotion/campaign-service/domain/errors"
	"soundtik/contexts/campaign-promotion/campaign-service/ports"
)

const (
	VideoMetricsReportedTopic        = "tiktok.video_metrics_reported"
	defaultVideoMetricsConsumerGroup = "campaign-service-video-metrics-cg"
)

// VideoMetricsConsumer applies metric snapshots reported by the creator
// tooling and recomputes the campaign summary.
type VideoMetricsConsumer struct {
	Subscriber    ports.EventSubscriber
	Update        commands.UpdateVideoMetricsUseCase
	Dedup         ports.EventDedupStore
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Disabled      bool
	Logger        *slog.Logger
}

type videoMetricsPayload struct {
	CampaignID string `json:"campaign_id"`
	VideoID    string `json:"video_id"`
	Views      int64  `json:"views"`
	Likes      int64  `json:"likes"`
	Comments   int64  `json:"comments"`
	Shares     int64  `json:"shares"`
	Status     string `json:"status"`
}

func (c VideoMetricsConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	if c.Disabled {
		logger.Info("video metrics consumer disabled by feature flag",
			"event", "campaign_video_metrics_consumer_disabled",
			"module", "campaign-promotion/campaign-service",
			"layer", "worker",
		)
		return nil
	}
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultVideoMetricsConsumerGroup
	}
	return c.Subscriber.Subscribe(ctx, VideoMetricsReportedTopic, group, c.Handle)
}

func (c VideoMetricsConsumer) Handle(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	now := time.Now().UTC()
	if c.Clock != nil {
		now = c.Clock.Now().UTC()
	}

	var payload videoMetricsPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return fmt.Errorf("decode %s payload: %w", VideoMetricsReportedTopic, domainerrors.ErrEventPayloadInvalid)
	}
	if strings.TrimSpace(payload.VideoID) == "" {
		return fmt.Errorf("%s payload missing video_id: %w", VideoMetricsReportedTopic, domainerrors.ErrEventPayloadInvalid)
	}

	alreadyProcessed, err := c.Dedup.ReserveEvent(ctx, event.EventID, hashPayload(event.Data), now.Add(c.dedupTTL()))
	if err != nil {
		return err
	}
	if alreadyProcessed {
		logger.Debug("video metrics event already processed",
			"event", "campaign_video_metrics_replayed",
			"module", "campaign-promotion/campaign-service",
			"layer", "worker",
			"event_id", event.EventID,
		)
		return nil
	}

	video, err := c.Update.Execute(ctx, commands.UpdateVideoMetricsCommand{
		CampaignID: payload.CampaignID,
		VideoID:    payload.VideoID,
		ActorID:    systemActor,
		Metrics: entities.VideoMetrics{
			Views:    payload.Views,
			Likes:    payload.Likes,
			Comments: payload.Comments,
			Shares:   payload.Shares,
		},
		Status: entities.VideoStatus(strings.ToLower(strings.TrimSpace(payload.Status))),
	})
	if err != nil {
		if releaseErr := c.Dedup.ReleaseEvent(ctx, event.EventID); releaseErr != nil {
			logger.Error("video metrics event release failed",
				"event", "campaign_video_metrics_release_failed",
				"module", "campaign-promotion/campaign-service",
				"layer", "worker",
				"event_id", event.EventID,
				"error", releaseErr.Error(),
			)
		}
		logger.Error("video metrics event failed",
			"event", "campaign_video_metrics_failed",
			"module", "campaign-promotion/campaign-service",
			"layer", "worker",
			"event_id", event.EventID,
			"video_id", payload.VideoID,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("video metrics event applied",
		"event", "campaign_video_metrics_applied",
		"module", "campaign-promotion/campaign-service",
		"layer", "worker",
		"event_id", event.EventID,
		"campaign_id", video.CampaignID,
		"video_id", video.VideoID,
	)
	return nil
}

func (c VideoMetricsConsumer) dedupTTL() time.Duration {
	if c.DedupTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return c.DedupTTL
}

func hashPayload(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
