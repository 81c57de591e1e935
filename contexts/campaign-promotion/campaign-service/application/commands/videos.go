package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "soundtik/contexts/campaign-promotion/campaign-service/application"
	"soundtik/contexts/campaign-promotion/campaign-service/domain/entities"
	domainerrors "soundtik/contexts/campaign-promotion/campaign-service/domain/errors"
	"soundtik/contexts/campaign-promotion/campaign-service/ports"
)

// MetricsRecomputer rebuilds a campaign's summary from all of its videos.
type MetricsRecomputer struct {
	Videos  ports.VideoRepository
	Metrics ports.MetricsRepository
	Outbox  ports.OutboxWriter
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

func (r MetricsRecomputer) Recompute(ctx context.Context, campaignID string, now time.Time) (entities.MetricsSummary, error) {
	logger := application.ResolveLogger(r.Logger)
	videos, err := r.Videos.ListVideosByCampaign(ctx, campaignID)
	if err != nil {
		return entities.MetricsSummary{}, err
	}
	previous, found, err := r.Metrics.GetMetrics(ctx, campaignID)
	if err != nil {
		return entities.MetricsSummary{}, err
	}
	var follows int64
	if found {
		follows = previous.Follows
	}

	summary := entities.RecomputeMetrics(campaignID, videos, follows, now)
	if err := r.Metrics.SaveMetrics(ctx, summary); err != nil {
		return entities.MetricsSummary{}, err
	}

	if r.Outbox != nil {
		eventID, err := r.IDGen.NewID(ctx)
		if err != nil {
			return entities.MetricsSummary{}, err
		}
		envelope, err := newCampaignEnvelope(eventID, EventCampaignMetricsRecomputed, campaignID, now, map[string]any{
			"campaign_id": campaignID,
			"views":       summary.Views,
			"likes":       summary.Likes,
			"comments":    summary.Comments,
			"shares":      summary.Shares,
			"engagement":  summary.Engagement,
			"video_count": len(videos),
		})
		if err != nil {
			return entities.MetricsSummary{}, err
		}
		if err := r.Outbox.AppendOutbox(ctx, envelope); err != nil {
			return entities.MetricsSummary{}, err
		}
	}

	logger.Debug("campaign metrics recomputed",
		"event", "campaign_metrics_recomputed",
		"module", "campaign-promotion/campaign-service",
		"layer", "application",
		"campaign_id", campaignID,
		"views", summary.Views,
		"engagement", summary.Engagement,
	)
	return summary, nil
}

type AddVideoCommand struct {
	CampaignID      string
	ActorID         string
	URL             string
	TikTokID        string
	Thumbnail       string
	Caption         string
	CreatorUsername string
	Metrics         entities.VideoMetrics
}

type AddVideoUseCase struct {
	Campaigns  ports.CampaignRepository
	Videos     ports.VideoRepository
	Recomputer MetricsRecomputer
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc AddVideoUseCase) Execute(ctx context.Context, cmd AddVideoCommand) (entities.Video, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.ActorID) == "" {
		return entities.Video{}, domainerrors.ErrUnauthorizedActor
	}
	campaign, err := uc.Campaigns.GetCampaign(ctx, strings.TrimSpace(cmd.CampaignID))
	if err != nil {
		return entities.Video{}, err
	}
	if campaign.Status != entities.CampaignStatusActive && campaign.Status != entities.CampaignStatusCompleted {
		return entities.Video{}, domainerrors.ErrCampaignNotLive
	}
	if strings.TrimSpace(cmd.URL) == "" || !cmd.Metrics.Valid() {
		return entities.Video{}, domainerrors.ErrInvalidVideoInput
	}

	tiktokID := strings.TrimSpace(cmd.TikTokID)
	username := strings.TrimPrefix(strings.TrimSpace(cmd.CreatorUsername), "@")
	if tiktokID == "" || username == "" {
		parsedID, parsedUser, err := parseTikTokURL(cmd.URL)
		if err != nil && tiktokID == "" {
			return entities.Video{}, err
		}
		if tiktokID == "" {
			tiktokID = parsedID
		}
		if username == "" {
			username = parsedUser
		}
	}

	videoID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Video{}, err
	}
	now := uc.Clock.Now().UTC()
	video := entities.Video{
		VideoID:         videoID,
		CampaignID:      campaign.CampaignID,
		TikTokID:        tiktokID,
		URL:             strings.TrimSpace(cmd.URL),
		Thumbnail:       strings.TrimSpace(cmd.Thumbnail),
		Caption:         strings.TrimSpace(cmd.Caption),
		CreatorUsername: username,
		Metrics:         cmd.Metrics,
		Status:          entities.VideoStatusLive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.Videos.AddVideo(ctx, video); err != nil {
		return entities.Video{}, err
	}
	if _, err := uc.Recomputer.Recompute(ctx, campaign.CampaignID, now); err != nil {
		return entities.Video{}, err
	}

	logger.Info("campaign video added",
		"event", "campaign_video_added",
		"module", "campaign-promotion/campaign-service",
		"layer", "application",
		"campaign_id", campaign.CampaignID,
		"video_id", video.VideoID,
		"tiktok_id", video.TikTokID,
	)
	return video, nil
}

type UpdateVideoMetricsCommand struct {
	CampaignID string
	VideoID    string
	ActorID    string
	Metrics    entities.VideoMetrics
	Status     entities.VideoStatus
}

type UpdateVideoMetricsUseCase struct {
	Videos     ports.VideoRepository
	Recomputer MetricsRecomputer
	Clock      ports.Clock
	Logger     *slog.Logger
}

func (uc UpdateVideoMetricsUseCase) Execute(ctx context.Context, cmd UpdateVideoMetricsCommand) (entities.Video, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.ActorID) == "" {
		return entities.Video{}, domainerrors.ErrUnauthorizedActor
	}
	if !cmd.Metrics.Valid() {
		return entities.Video{}, domainerrors.ErrInvalidVideoInput
	}
	if cmd.Status != "" && !entities.IsSupportedVideoStatus(cmd.Status) {
		return entities.Video{}, domainerrors.ErrInvalidVideoInput
	}
	video, err := uc.Videos.GetVideo(ctx, strings.TrimSpace(cmd.VideoID))
	if err != nil {
		return entities.Video{}, err
	}
	if campaignID := strings.TrimSpace(cmd.CampaignID); campaignID != "" && video.CampaignID != campaignID {
		return entities.Video{}, domainerrors.ErrVideoNotFound
	}

	now := uc.Clock.Now().UTC()
	video.Metrics = cmd.Metrics
	if cmd.Status != "" {
		video.Status = cmd.Status
	}
	video.UpdatedAt = now
	if err := uc.Videos.UpdateVideo(ctx, video); err != nil {
		return entities.Video{}, err
	}
	if _, err := uc.Recomputer.Recompute(ctx, video.CampaignID, now); err != nil {
		return entities.Video{}, err
	}

	logger.Info("campaign video metrics updated",
		"event", "campaign_video_metrics_updated",
		"module", "campaign-promotion/campaign-service",
		"layer", "application",
		"campaign_id", video.CampaignID,
		"video_id", video.VideoID,
		"views", video.Metrics.Views,
	)
	return video, nil
}

type DeleteVideoCommand struct {
	CampaignID string
	VideoID    string
	ActorID    string
}

type DeleteVideoUseCase struct {
	Videos     ports.VideoRepository
	Recomputer MetricsRecomputer
	Clock      ports.Clock
	Logger     *slog.Logger
}

func (uc DeleteVideoUseCase) Execute(ctx context.Context, cmd DeleteVideoCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.ActorID) == "" {
		return domainerrors.ErrUnauthorizedActor
	}
	video, err := uc.Videos.GetVideo(ctx, strings.TrimSpace(cmd.VideoID))
	if err != nil {
		return err
	}
	if campaignID := strings.TrimSpace(cmd.CampaignID); campaignID != "" && video.CampaignID != campaignID {
		return domainerrors.ErrVideoNotFound
	}
	if err := uc.Videos.DeleteVideo(ctx, video.VideoID); err != nil {
		return err
	}
	if _, err := uc.Recomputer.Recompute(ctx, video.CampaignID, uc.Clock.Now().UTC()); err != nil {
		return err
	}

	logger.Info("campaign video deleted",
		"event", "campaign_video_deleted",
		"module", "campaign-promotion/campaign-service",
		"layer", "application",
		"campaign_id", video.CampaignID,
		"video_id", video.VideoID,
	)
	return nil
}
