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

type SubmitCampaignCommand struct {
	CampaignID string
	ActorID    string
	Payment    entities.Payment
}

type SubmitCampaignResult struct {
	Campaign entities.Campaign
	Replayed bool
}

// SubmitCampaignUseCase moves a paid draft into the admin review queue. It
// is only reachable through the wizard payment bridge, which confirms the
// transaction with the processor first. The repository refuses a
// transaction id that already paid for another campaign.
type SubmitCampaignUseCase struct {
	Campaigns ports.CampaignRepository
	History   ports.HistoryRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc SubmitCampaignUseCase) Execute(ctx context.Context, cmd SubmitCampaignCommand) (SubmitCampaignResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	actorID := strings.TrimSpace(cmd.ActorID)
	if actorID == "" {
		return SubmitCampaignResult{}, domainerrors.ErrUnauthorizedActor
	}
	campaign, err := uc.Campaigns.GetCampaign(ctx, strings.TrimSpace(cmd.CampaignID))
	if err != nil {
		return SubmitCampaignResult{}, err
	}
	if campaign.UserID != actorID {
		return SubmitCampaignResult{}, domainerrors.ErrForbidden
	}

	transactionID := strings.TrimSpace(cmd.Payment.TransactionID)
	if campaign.Status != entities.CampaignStatusDraft {
		if transactionID != "" && campaign.Payment.TransactionID == transactionID {
			return SubmitCampaignResult{Campaign: campaign, Replayed: true}, nil
		}
		return SubmitCampaignResult{}, domainerrors.ErrInvalidStateTransition
	}
	processor := entities.PaymentProcessor(strings.ToLower(strings.TrimSpace(string(cmd.Payment.Processor))))
	if cmd.Payment.Status != entities.PaymentStatusSucceeded ||
		transactionID == "" ||
		!entities.IsSupportedProcessor(processor) {
		return SubmitCampaignResult{}, domainerrors.ErrPaymentRequired
	}
	if !campaign.PaymentCovers(cmd.Payment.Amount) {
		logger.Warn("campaign payment amount mismatch",
			"event", "campaign_payment_amount_mismatch",
			"module", "campaign-promotion/campaign-service",
			"layer", "application",
			"campaign_id", campaign.CampaignID,
			"budget", campaign.Budget,
			"amount", cmd.Payment.Amount,
		)
		return SubmitCampaignResult{}, domainerrors.ErrPaymentAmountMismatch
	}

	now := uc.Clock.Now().UTC()
	paidAt := now
	if cmd.Payment.PaidAt != nil && !cmd.Payment.PaidAt.IsZero() {
		paidAt = cmd.Payment.PaidAt.UTC()
	}
	expectedVersion := campaign.Version
	campaign.Status = entities.CampaignStatusPending
	campaign.SubmittedAt = &now
	campaign.UpdatedAt = now
	campaign.Payment = entities.Payment{
		Processor:     processor,
		TransactionID: transactionID,
		Amount:        cmd.Payment.Amount,
		Status:        entities.PaymentStatusSucceeded,
		PayerEmail:    strings.TrimSpace(cmd.Payment.PayerEmail),
		PaidAt:        &paidAt,
	}
	campaign.Version = expectedVersion + 1
	if err := uc.Campaigns.UpdateCampaign(ctx, campaign, expectedVersion); err != nil {
		return SubmitCampaignResult{}, err
	}

	if err := recordTransition(ctx, uc.History, uc.Outbox, uc.IDGen, transition{
		CampaignID: campaign.CampaignID,
		From:       entities.CampaignStatusDraft,
		To:         entities.CampaignStatusPending,
		ActorID:    actorID,
		Reason:     "payment_succeeded",
		EventType:  EventCampaignSubmitted,
		Data: map[string]any{
			"user_id":        campaign.UserID,
			"processor":      string(campaign.Payment.Processor),
			"transaction_id": campaign.Payment.TransactionID,
			"amount":         campaign.Payment.Amount,
		},
		At: now,
	}); err != nil {
		return SubmitCampaignResult{}, err
	}

	logger.Info("campaign submitted for review",
		"event", "campaign_submitted",
		"module", "campaign-promotion/campaign-service",
		"layer", "application",
		"campaign_id", campaign.CampaignID,
		"processor", string(campaign.Payment.Processor),
		"amount", campaign.Payment.Amount,
	)
	return SubmitCampaignResult{Campaign: campaign}, nil
}
