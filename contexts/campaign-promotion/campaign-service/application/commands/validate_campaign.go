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

// ValidateCampaignCommand is an admin decision on a pending campaign.
// ExpectedVersion, when set, must match the stored version.
type ValidateCampaignCommand struct {
	CampaignID      string
	AdminID         string
	Approved        bool
	Notes           string
	ExpectedVersion *int64
}

type ValidateCampaignUseCase struct {
	Campaigns ports.CampaignRepository
	History   ports.HistoryRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc ValidateCampaignUseCase) Approve(ctx context.Context, campaignID string, adminID string, notes string, expectedVersion *int64) (entities.Campaign, error) {
	return uc.Execute(ctx, ValidateCampaignCommand{
		CampaignID:      campaignID,
		AdminID:         adminID,
		Approved:        true,
		Notes:           notes,
		ExpectedVersion: expectedVersion,
	})
}

func (uc ValidateCampaignUseCase) Reject(ctx context.Context, campaignID string, adminID string, notes string, expectedVersion *int64) (entities.Campaign, error) {
	return uc.Execute(ctx, ValidateCampaignCommand{
		CampaignID:      campaignID,
		AdminID:         adminID,
		Approved:        false,
		Notes:           notes,
		ExpectedVersion: expectedVersion,
	})
}

func (uc ValidateCampaignUseCase) Execute(ctx context.Context, cmd ValidateCampaignCommand) (entities.Campaign, error) {
	logger := application.ResolveLogger(uc.Logger)
	adminID := strings.TrimSpace(cmd.AdminID)
	if adminID == "" {
		return entities.Campaign{}, domainerrors.ErrUnauthorizedActor
	}
	campaign, err := uc.Campaigns.GetCampaign(ctx, strings.TrimSpace(cmd.CampaignID))
	if err != nil {
		return entities.Campaign{}, err
	}
	if cmd.ExpectedVersion != nil && *cmd.ExpectedVersion != campaign.Version {
		return entities.Campaign{}, domainerrors.ErrCampaignVersionConflict
	}

	to := entities.CampaignStatusRejected
	if cmd.Approved {
		to = entities.CampaignStatusActive
	}
	if !entities.CanTransition(campaign.Status, to) {
		return entities.Campaign{}, domainerrors.ErrInvalidStateTransition
	}
	notes := strings.TrimSpace(cmd.Notes)
	if !cmd.Approved && notes == "" {
		return entities.Campaign{}, domainerrors.ErrRejectionNotesRequired
	}

	now := uc.Clock.Now().UTC()
	from := campaign.Status
	expectedVersion := campaign.Version
	campaign.Status = to
	campaign.IsValidated = cmd.Approved
	campaign.ValidatedBy = adminID
	campaign.ValidatedAt = &now
	campaign.AdminNotes = notes
	campaign.UpdatedAt = now
	if cmd.Approved {
		startDate := now
		endDate := startDate.AddDate(0, 0, campaign.DurationDays)
		campaign.StartDate = &startDate
		campaign.EndDate = &endDate
	}
	campaign.Version = expectedVersion + 1
	if err := uc.Campaigns.UpdateCampaign(ctx, campaign, expectedVersion); err != nil {
		return entities.Campaign{}, err
	}

	eventType := EventCampaignRejected
	data := map[string]any{
		"user_id":      campaign.UserID,
		"validated_by": adminID,
		"admin_notes":  notes,
	}
	if cmd.Approved {
		eventType = EventCampaignApproved
		data["start_date"] = campaign.StartDate
		data["end_date"] = campaign.EndDate
	}
	if err := recordTransition(ctx, uc.History, uc.Outbox, uc.IDGen, transition{
		CampaignID: campaign.CampaignID,
		From:       from,
		To:         to,
		ActorID:    adminID,
		Reason:     notes,
		EventType:  eventType,
		Data:       data,
		At:         now,
	}); err != nil {
		return entities.Campaign{}, err
	}

	logger.Info("campaign reviewed",
		"event", "campaign_reviewed",
		"module", "campaign-promotion/campaign-service",
		"layer", "application",
		"campaign_id", campaign.CampaignID,
		"admin_id", adminID,
		"approved", cmd.Approved,
		"to_status", string(to),
	)
	return campaign, nil
}
