package queries

import (
	"context"
	"log/slog"
	"strings"

	application "soundtik/contexts/campaign-promotion/campaign-service/application"
	"soundtik/contexts/campaign-promotion/campaign-service/domain/entities"
	domainerrors "soundtik/contexts/campaign-promotion/campaign-service/domain/errors"
	"soundtik/contexts/campaign-promotion/campaign-service/ports"
)

type GetCampaignUseCase struct {
	Campaigns ports.CampaignRepository
	Logger    *slog.Logger
}

func (uc GetCampaignUseCase) Execute(ctx context.Context, campaignID string) (entities.Campaign, error) {
	logger := application.ResolveLogger(uc.Logger)
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return entities.Campaign{}, domainerrors.ErrInvalidCampaignInput
	}
	item, err := uc.Campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return entities.Campaign{}, err
	}
	logger.Debug("campaign fetched",
		"event", "campaign_fetched",
		"module", "campaign-promotion/campaign-service",
		"layer", "application",
		"campaign_id", campaignID,
	)
	return item, nil
}

// ExecuteForOwner returns the campaign only when userID owns it.
func (uc GetCampaignUseCase) ExecuteForOwner(ctx context.Context, campaignID string, userID string) (entities.Campaign, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entities.Campaign{}, domainerrors.ErrUnauthorizedActor
	}
	item, err := uc.Execute(ctx, campaignID)
	if err != nil {
		return entities.Campaign{}, err
	}
	if item.UserID != userID {
		return entities.Campaign{}, domainerrors.ErrForbidden
	}
	return item, nil
}

type ListCampaignsQuery struct {
	UserID string
	Status string
	Limit  int
}

type ListCampaignsUseCase struct {
	Campaigns ports.CampaignRepository
	Logger    *slog.Logger
}

// Execute lists one user's campaigns, newest first.
func (uc ListCampaignsUseCase) Execute(ctx context.Context, query ListCampaignsQuery) ([]entities.Campaign, error) {
	logger := application.ResolveLogger(uc.Logger)
	userID := strings.TrimSpace(query.UserID)
	if userID == "" {
		return nil, domainerrors.ErrUnauthorizedActor
	}
	status := entities.CampaignStatus(strings.ToLower(strings.TrimSpace(query.Status)))
	if status != "" && !entities.IsSupportedStatus(status) {
		return nil, domainerrors.ErrInvalidCampaignInput
	}
	items, err := uc.Campaigns.ListCampaigns(ctx, ports.CampaignFilter{
		UserID: userID,
		Status: status,
		Limit:  query.Limit,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("campaigns listed",
		"event", "campaign_list_loaded",
		"module", "campaign-promotion/campaign-service",
		"layer", "application",
		"user_id", userID,
		"count", len(items),
	)
	return items, nil
}

type ListPendingCampaignsUseCase struct {
	Campaigns ports.CampaignRepository
	Logger    *slog.Logger
}

// Execute returns the admin review queue, newest first.
func (uc ListPendingCampaignsUseCase) Execute(ctx context.Context, adminID string, limit int) ([]entities.Campaign, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(adminID) == "" {
		return nil, domainerrors.ErrUnauthorizedActor
	}
	items, err := uc.Campaigns.ListCampaigns(ctx, ports.CampaignFilter{
		Status: entities.CampaignStatusPending,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("pending campaigns listed",
		"event", "campaign_pending_list_loaded",
		"module", "campaign-promotion/campaign-service",
		"layer", "application",
		"admin_id", strings.TrimSpace(adminID),
		"count", len(items),
	)
	return items, nil
}
