package queries

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"soundtik/contexts/campaign-promotion/campaign-service/domain/entities"
	domainerrors "soundtik/contexts/campaign-promotion/campaign-service/domain/errors"
	"soundtik/contexts/campaign-promotion/campaign-service/ports"
)

type GetCampaignMetricsUseCase struct {
	Campaigns ports.CampaignRepository
	Metrics   ports.MetricsRepository
	Logger    *slog.Logger
}

// Execute returns the stored summary, or a zero summary when nothing was recorded.
func (uc GetCampaignMetricsUseCase) Execute(ctx context.Context, campaignID string) (entities.MetricsSummary, error) {
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return entities.MetricsSummary{}, domainerrors.ErrInvalidCampaignInput
	}
	if _, err := uc.Campaigns.GetCampaign(ctx, campaignID); err != nil {
		return entities.MetricsSummary{}, err
	}
	summary, found, err := uc.Metrics.GetMetrics(ctx, campaignID)
	if err != nil {
		return entities.MetricsSummary{}, err
	}
	if !found {
		return entities.EmptyMetrics(campaignID), nil
	}
	if summary.DailyMetrics == nil {
		summary.DailyMetrics = []entities.DailyMetric{}
	}
	return summary, nil
}

type GetCampaignVideosUseCase struct {
	Campaigns ports.CampaignRepository
	Videos    ports.VideoRepository
	Logger    *slog.Logger
}

func (uc GetCampaignVideosUseCase) Execute(ctx context.Context, campaignID string) ([]entities.Video, error) {
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return nil, domainerrors.ErrInvalidCampaignInput
	}
	if _, err := uc.Campaigns.GetCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	items, err := uc.Videos.ListVideosByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}
