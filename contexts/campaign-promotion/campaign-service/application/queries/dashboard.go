package queries

import (
	"context"
	"log/slog"
	"math"
	"time"

	application "soundtik/contexts/campaign-promotion/campaign-service/application"
	"soundtik/contexts/campaign-promotion/campaign-service/domain/entities"
	"soundtik/contexts/campaign-promotion/campaign-service/ports"
)

type Dashboard struct {
	Campaign      entities.Campaign
	Metrics       entities.MetricsSummary
	Videos        []entities.Video
	Reach         entities.ReachEstimate
	StatusLabel   string
	DaysRemaining int
}

// GetDashboardUseCase aggregates everything the campaign owner sees on the
// dashboard. It only reads.
type GetDashboardUseCase struct {
	Campaign GetCampaignUseCase
	Metrics  GetCampaignMetricsUseCase
	Videos   GetCampaignVideosUseCase
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (uc GetDashboardUseCase) Execute(ctx context.Context, campaignID string, userID string) (Dashboard, error) {
	logger := application.ResolveLogger(uc.Logger)
	campaign, err := uc.Campaign.ExecuteForOwner(ctx, campaignID, userID)
	if err != nil {
		return Dashboard{}, err
	}
	metrics, err := uc.Metrics.Execute(ctx, campaign.CampaignID)
	if err != nil {
		return Dashboard{}, err
	}
	videos, err := uc.Videos.Execute(ctx, campaign.CampaignID)
	if err != nil {
		return Dashboard{}, err
	}

	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	logger.Debug("campaign dashboard loaded",
		"event", "campaign_dashboard_loaded",
		"module", "campaign-promotion/campaign-service",
		"layer", "application",
		"campaign_id", campaign.CampaignID,
		"video_count", len(videos),
	)
	return Dashboard{
		Campaign:      campaign,
		Metrics:       metrics,
		Videos:        videos,
		Reach:         entities.EstimateReach(campaign.Budget, campaign.DurationDays),
		StatusLabel:   entities.StatusLabel(campaign.Status),
		DaysRemaining: daysRemaining(campaign, now),
	}, nil
}

func daysRemaining(campaign entities.Campaign, now time.Time) int {
	if campaign.Status != entities.CampaignStatusActive || campaign.EndDate == nil {
		return 0
	}
	left := campaign.EndDate.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Hours() / 24))
}
