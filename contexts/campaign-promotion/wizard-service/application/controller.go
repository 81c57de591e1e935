package application

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"soundtik/contexts/campaign-promotion/wizard-service/domain/entities"
	domainerrors "soundtik/contexts/campaign-promotion/wizard-service/domain/errors"
	"soundtik/contexts/campaign-promotion/wizard-service/ports"
)

// Controller sequences the wizard steps over one FormStore and runs the
// checkout against the campaign gateway and the payment verifier.
type Controller struct {
	Store    *FormStore
	Gateway  ports.CampaignGateway
	Payments ports.PaymentVerifier
	Logger   *slog.Logger
}

func (c Controller) Advance() error {
	step := c.Store.Snapshot().Step
	if !c.Store.ValidateStep(step) {
		return &domainerrors.StepError{Step: int(step), Fields: c.Store.Snapshot().Errors}
	}
	return c.Store.NextStep()
}

func (c Controller) Back() error {
	return c.Store.PrevStep()
}

// BeginCheckout creates the draft campaign on the first call and reuses it
// on every later one.
func (c Controller) BeginCheckout(ctx context.Context, userID string, sessionID string) (entities.CheckoutResult, error) {
	logger := ResolveLogger(c.Logger)
	state := c.Store.Snapshot()
	if state.Step != entities.StepPayment {
		return entities.CheckoutResult{}, domainerrors.ErrNotAtPaymentStep
	}
	for step := entities.StepSongDetails; step <= entities.StepPayment; step++ {
		if !c.Store.ValidateStep(step) {
			return entities.CheckoutResult{}, &domainerrors.StepError{Step: int(step), Fields: c.Store.Snapshot().Errors}
		}
	}

	campaignID := state.CampaignID
	if campaignID == "" {
		created, err := c.Gateway.CreateDraftCampaign(ctx, userID, checkoutIdempotencyKey(sessionID, state.Generation), state.Draft)
		if err != nil {
			logger.Error("draft campaign creation failed",
				"event", "wizard_checkout_failed",
				"module", "campaign-promotion/wizard-service",
				"layer", "application",
				"session_id", sessionID,
				"error", err.Error(),
			)
			return entities.CheckoutResult{}, err
		}
		campaignID = created
	}
	c.Store.beginCheckout(campaignID)

	state = c.Store.Snapshot()
	logger.Info("wizard checkout started",
		"event", "wizard_checkout_started",
		"module", "campaign-promotion/wizard-service",
		"layer", "application",
		"session_id", sessionID,
		"campaign_id", campaignID,
		"amount", state.Draft.PaymentDetails.Amount,
	)
	return entities.CheckoutResult{
		CampaignID: campaignID,
		Amount:     state.Draft.PaymentDetails.Amount,
		Currency:   entities.CurrencyUSD,
		Processor:  state.Draft.PaymentDetails.Processor,
	}, nil
}

// CompletePayment confirms the payment and submits the campaign. A failed
// payment leaves the draft campaign bound to the session for a retry.
func (c Controller) CompletePayment(
	ctx context.Context,
	userID string,
	input entities.PaymentConfirmation,
) (entities.PaymentOutcome, error) {
	logger := ResolveLogger(c.Logger)
	state := c.Store.Snapshot()
	if !state.CheckoutStarted() {
		return entities.PaymentOutcome{}, domainerrors.ErrCheckoutRequired
	}
	transactionID := strings.TrimSpace(input.TransactionID)
	if transactionID == "" {
		return entities.PaymentOutcome{}, domainerrors.ErrInvalidPaymentReference
	}
	processor := strings.ToLower(strings.TrimSpace(input.Processor))
	if processor == "" {
		processor = state.Draft.PaymentDetails.Processor
	}
	if !entities.IsSupportedProcessor(processor) {
		return entities.PaymentOutcome{}, domainerrors.ErrUnsupportedProcessor
	}

	confirmation := entities.PaymentConfirmation{
		CampaignID:    state.CampaignID,
		Amount:        state.Draft.CampaignDetails.Budget,
		Currency:      entities.CurrencyUSD,
		Processor:     processor,
		TransactionID: transactionID,
		Succeeded:     input.Succeeded,
		ErrorMessage:  strings.TrimSpace(input.ErrorMessage),
		PayerEmail:    strings.TrimSpace(input.PayerEmail),
	}
	receipt, err := c.Payments.Verify(ctx, confirmation)
	if err == nil && !receipt.Succeeded {
		err = &domainerrors.PaymentError{Message: declineMessage(confirmation.ErrorMessage)}
	}
	if err != nil {
		c.Store.paymentFailed(processor, paymentErrorMessage(err))
		logger.Warn("wizard payment failed",
			"event", "wizard_payment_failed",
			"module", "campaign-promotion/wizard-service",
			"layer", "application",
			"campaign_id", state.CampaignID,
			"processor", processor,
			"error", err.Error(),
		)
		return entities.PaymentOutcome{}, err
	}

	if err := c.Gateway.SubmitCampaign(ctx, userID, state.CampaignID, receipt); err != nil {
		message := "Payment received but the campaign could not be submitted. Please retry."
		var paymentErr *domainerrors.PaymentError
		if errors.As(err, &paymentErr) {
			message = declineMessage(paymentErr.Message)
		}
		c.Store.paymentFailed(processor, message)
		logger.Error("wizard campaign submission failed",
			"event", "wizard_submit_failed",
			"module", "campaign-promotion/wizard-service",
			"layer", "application",
			"campaign_id", state.CampaignID,
			"error", err.Error(),
		)
		return entities.PaymentOutcome{}, err
	}

	redirect := "/campaigns/" + state.CampaignID
	c.Store.paymentSucceeded(redirect)
	logger.Info("wizard payment completed",
		"event", "wizard_payment_completed",
		"module", "campaign-promotion/wizard-service",
		"layer", "application",
		"campaign_id", state.CampaignID,
		"processor", processor,
		"transaction_id", transactionID,
	)
	return entities.PaymentOutcome{
		CampaignID:   state.CampaignID,
		Receipt:      receipt,
		RedirectPath: redirect,
	}, nil
}

// checkoutIdempotencyKey is stable for one draft of a session, so a retried
// checkout replays the same campaign while the next draft gets a new one.
func checkoutIdempotencyKey(sessionID string, generation int) string {
	return "wizard-checkout:" + sessionID + ":" + strconv.Itoa(generation)
}

func declineMessage(message string) string {
	if message == "" {
		return "Payment was not completed"
	}
	return message
}

func paymentErrorMessage(err error) string {
	var paymentErr *domainerrors.PaymentError
	if errors.As(err, &paymentErr) {
		return declineMessage(paymentErr.Message)
	}
	if errors.Is(err, domainerrors.ErrPaymentProviderFailure) {
		return "Payment provider is unavailable. Please retry."
	}
	return "Payment could not be verified"
}
