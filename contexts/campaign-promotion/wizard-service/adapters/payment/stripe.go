package paymentadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"soundtik/contexts/campaign-promotion/wizard-service/domain/entities"
	domainerrors "soundtik/contexts/campaign-promotion/wizard-service/domain/errors"

	"github.com/shopspring/decimal"
)

const defaultStripeBaseURL = "https://api.stripe.com"

type StripeConfig struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// StripeVerifier confirms a PaymentIntent server side before the campaign
// is submitted.
type StripeVerifier struct {
	baseURL   string
	secretKey string
	client    *http.Client
	now       func() time.Time
}

func NewStripeVerifier(cfg StripeConfig) *StripeVerifier {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultStripeBaseURL
	}
	return &StripeVerifier{
		baseURL:   baseURL,
		secretKey: cfg.SecretKey,
		client:    &http.Client{Timeout: timeoutOrDefault(cfg.Timeout)},
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type stripePaymentIntent struct {
	ID               string            `json:"id"`
	Status           string            `json:"status"`
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	ReceiptEmail     string            `json:"receipt_email"`
	Metadata         map[string]string `json:"metadata"`
	LastPaymentError *struct {
		Message string `json:"message"`
	} `json:"last_payment_error"`
}

func (v *StripeVerifier) Verify(ctx context.Context, confirmation entities.PaymentConfirmation) (entities.PaymentReceipt, error) {
	if !confirmation.Succeeded {
		return entities.PaymentReceipt{}, &domainerrors.PaymentError{Message: confirmation.ErrorMessage}
	}
	endpoint := v.baseURL + "/v1/payment_intents/" + url.PathEscape(confirmation.TransactionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return entities.PaymentReceipt{}, err
	}
	req.Header.Set("Authorization", "Bearer "+v.secretKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return entities.PaymentReceipt{}, fmt.Errorf("%w: stripe: %v", domainerrors.ErrPaymentProviderFailure, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return entities.PaymentReceipt{}, &domainerrors.PaymentError{Message: "Payment was not found"}
	case resp.StatusCode != http.StatusOK:
		return entities.PaymentReceipt{}, fmt.Errorf("%w: stripe returned status %d", domainerrors.ErrPaymentProviderFailure, resp.StatusCode)
	}

	var intent stripePaymentIntent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return entities.PaymentReceipt{}, fmt.Errorf("%w: stripe: decode payment intent: %v", domainerrors.ErrPaymentProviderFailure, err)
	}
	if intent.Status != "succeeded" {
		message := "Payment status is " + intent.Status
		if intent.LastPaymentError != nil && intent.LastPaymentError.Message != "" {
			message = intent.LastPaymentError.Message
		}
		return entities.PaymentReceipt{}, &domainerrors.PaymentError{Message: message}
	}
	// The client creates the intent with metadata.campaign_id set.
	if intent.Metadata["campaign_id"] != confirmation.CampaignID {
		return entities.PaymentReceipt{}, &domainerrors.PaymentError{Message: campaignMismatchMessage}
	}
	if !strings.EqualFold(intent.Currency, entities.CurrencyUSD) {
		return entities.PaymentReceipt{}, &domainerrors.PaymentError{Message: "Payment currency must be USD"}
	}
	// Stripe reports the smallest currency unit.
	if !amountMatches(confirmation.Amount, decimal.New(intent.Amount, -2)) {
		return entities.PaymentReceipt{}, &domainerrors.PaymentError{Message: amountMismatchMessage}
	}

	payerEmail := confirmation.PayerEmail
	if payerEmail == "" {
		payerEmail = intent.ReceiptEmail
	}
	return entities.PaymentReceipt{
		Processor:     entities.ProcessorStripe,
		TransactionID: intent.ID,
		Amount:        confirmation.Amount,
		PayerEmail:    payerEmail,
		Succeeded:     true,
		ConfirmedAt:   v.now(),
	}, nil
}
