package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"soundtik/contexts/campaign-promotion/campaign-service/application/commands"
	campaignentities "soundtik/contexts/campaign-promotion/campaign-service/domain/entities"
	campaignerrors "soundtik/contexts/campaign-promotion/campaign-service/domain/errors"
	wizardentities "soundtik/contexts/campaign-promotion/wizard-service/domain/entities"
	wizarderrors "soundtik/contexts/campaign-promotion/wizard-service/domain/errors"
	wizardports "soundtik/contexts/campaign-promotion/wizard-service/ports"
)

var _ wizardports.CampaignGateway = campaignGateway{}

// campaignGateway lets the wizard create and submit campaigns through the
// campaign-service use cases in the same process.
type campaignGateway struct {
	create commands.CreateCampaignUseCase
	submit commands.SubmitCampaignUseCase
}

func (g campaignGateway) CreateDraftCampaign(
	ctx context.Context,
	userID string,
	idempotencyKey string,
	draft wizardentities.Draft,
) (string, error) {
	result, err := g.create.Execute(ctx, commands.CreateCampaignCommand{
		UserID:         userID,
		IdempotencyKey: idempotencyKey,
		Song:           campaignentities.SongDetails(draft.SongDetails),
		Artist: campaignentities.ArtistDetails{
			Name:        draft.ArtistDetails.Name,
			Bio:         draft.ArtistDetails.Bio,
			SocialLinks: campaignentities.SocialLinks(draft.ArtistDetails.SocialLinks),
			PressKit:    draft.ArtistDetails.PressKit,
		},
		Budget:       draft.CampaignDetails.Budget,
		DurationDays: draft.CampaignDetails.Duration,
		Targeting:    campaignentities.CreatorTargeting(draft.CampaignDetails.CreatorTargeting),
		Processor:    campaignentities.PaymentProcessor(strings.ToLower(strings.TrimSpace(draft.PaymentDetails.Processor))),
	})
	if err != nil {
		return "", mapCampaignError("create draft campaign", err)
	}
	return result.Campaign.CampaignID, nil
}

func (g campaignGateway) SubmitCampaign(
	ctx context.Context,
	userID string,
	campaignID string,
	receipt wizardentities.PaymentReceipt,
) error {
	paidAt := receipt.ConfirmedAt.UTC()
	_, err := g.submit.Execute(ctx, commands.SubmitCampaignCommand{
		CampaignID: campaignID,
		ActorID:    userID,
		Payment: campaignentities.Payment{
			Processor:     campaignentities.PaymentProcessor(receipt.Processor),
			TransactionID: receipt.TransactionID,
			Amount:        receipt.Amount,
			Status:        campaignentities.PaymentStatusSucceeded,
			PayerEmail:    receipt.PayerEmail,
			PaidAt:        &paidAt,
		},
	})
	if err != nil {
		return mapCampaignError("submit campaign", err)
	}
	return nil
}

func mapCampaignError(op string, err error) error {
	switch {
	case errors.Is(err, campaignerrors.ErrForbidden):
		return fmt.Errorf("%s: %w", op, wizarderrors.ErrForbidden)
	case errors.Is(err, campaignerrors.ErrUnauthorizedActor):
		return fmt.Errorf("%s: %w", op, wizarderrors.ErrUnauthorizedActor)
	case errors.Is(err, campaignerrors.ErrIdempotencyKeyConflict):
		return fmt.Errorf("%s: %w", op, wizarderrors.ErrCheckoutConflict)
	case errors.Is(err, campaignerrors.ErrInvalidStateTransition):
		return fmt.Errorf("%s: %w", op, wizarderrors.ErrCampaignNotDraft)
	case errors.Is(err, campaignerrors.ErrPaymentAmountMismatch):
		return fmt.Errorf("%s: %w", op, &wizarderrors.PaymentError{Message: "Payment amount does not match the campaign budget"})
	case errors.Is(err, campaignerrors.ErrPaymentAlreadyApplied):
		return fmt.Errorf("%s: %w", op, &wizarderrors.PaymentError{Message: "Payment was already used for another campaign"})
	case errors.Is(err, campaignerrors.ErrPaymentRequired):
		return fmt.Errorf("%s: %w", op, &wizarderrors.PaymentError{Message: "Payment was not completed"})
	default:
		return fmt.Errorf("%s: %w: %v", op, wizarderrors.ErrCampaignGatewayFailure, err)
	}
}
