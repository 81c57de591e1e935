package commands

import (
	"context"
	"log/slog"
	"strings"

	application "soundtik/contexts/campaign-promotion/campaign-service/application"
	"soundtik/contexts/campaign-promotion/campaign-service/domain/entities"
	domainerrors "soundtik/contexts/campaign-promotion/campaign-service/domain/errors"
	"soundtik/contexts/campaign-promotion/campaign-service/ports"
)

type CompleteCampaignCommand struct {
	CampaignID      string
	ActorID         string
	Reason          string
	ExpectedVersion *int64
}

type CompleteCampaignUseCase struct {
	Campaigns ports.CampaignRepository
	History   ports.HistoryRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc CompleteCampaignUseCase) Execute(ctx context.Context, cmd CompleteCampaignCommand) (entities.Campaign, error) {
	logger := application.ResolveLogger(uc.Logger)
	actorID := strings.TrimSpace(cmd.ActorID)
	if actorID == "" {
		return entities.Campaign{}, domainerrors.ErrUnauthorizedActor
	}
	campaign, err := uc.Campaigns.GetCampaign(ctx, strings.TrimSpace(cmd.CampaignID))
	if err != nil {
		return entities.Campaign{}, err
	}
	if cmd.ExpectedVersion != nil && *cmd.ExpectedVersion != campaign.Version {
		return entities.Campaign{}, domainerrors.ErrCampaignVersionConflict
	}
	if !entities.CanTransition(campaign.Status, entities.CampaignStatusCompleted) {
		return entities.Campaign{}, domainerrors.ErrInvalidStateTransition
	}

	now := uc.Clock.Now().UTC()
	expectedVersion := campaign.Version
	campaign.Status = entities.CampaignStatusCompleted
	campaign.CompletedAt = &now
	campaign.UpdatedAt = now
	campaign.Version = expectedVersion + 1
	if err := uc.Campaigns.UpdateCampaign(ctx, campaign, expectedVersion); err != nil {
		return entities.Campaign{}, err
	}

	reason := strings.TrimSpace(cmd.Reason)
	if reason == "" {
		reason = "completed_by_admin"
	}
	if err := recordTransition(ctx, uc.History, uc.Outbox, uc.IDGen, transition{
		CampaignID: campaign.CampaignID,
		From:       entities.CampaignStatusActive,
		To:         entities.CampaignStatusCompleted,
		ActorID:    actorID,
		Reason:     reason,
		EventType:  EventCampaignCompleted,
		Data: map[string]any{
			"user_id": campaign.UserID,
			"reason":  reason,
		},
		At: now,
	}); err != nil {
		return entities.Campaign{}, err
	}

	logger.Info("campaign completed",
		"event", "campaign_completed",
		"module", "campaign-promotion/campaign-service",
		"layer", "application",
		"campaign_id", campaign.CampaignID,
		"actor_id", actorID,
		"reason", reason,
	)
	return campaign, nil
}
