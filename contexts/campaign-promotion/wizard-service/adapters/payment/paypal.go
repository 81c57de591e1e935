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
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const defaultPayPalBaseURL = "https://api-m.paypal.com"

type PayPalConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// PayPalVerifier reads the captured order with an app token obtained
// through the client-credentials grant.
type PayPalVerifier struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

func NewPayPalVerifier(cfg PayPalConfig) *PayPalVerifier {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultPayPalBaseURL
	}
	credentials := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     baseURL + "/v1/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	base := &http.Client{Timeout: timeoutOrDefault(cfg.Timeout)}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	return &PayPalVerifier{
		baseURL: baseURL,
		client:  oauth2.NewClient(ctx, credentials.TokenSource(ctx)),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type paypalOrder struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Payer  struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
	PurchaseUnits []struct {
		ReferenceID string `json:"reference_id"`
		Amount      struct {
			CurrencyCode string `json:"currency_code"`
			Value        string `json:"value"`
		} `json:"amount"`
	} `json:"purchase_units"`
}

func (v *PayPalVerifier) Verify(ctx context.Context, confirmation entities.PaymentConfirmation) (entities.PaymentReceipt, error) {
	if !confirmation.Succeeded {
		return entities.PaymentReceipt{}, &domainerrors.PaymentError{Message: confirmation.ErrorMessage}
	}
	endpoint := v.baseURL + "/v2/checkout/orders/" + url.PathEscape(confirmation.TransactionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return entities.PaymentReceipt{}, err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return entities.PaymentReceipt{}, fmt.Errorf("%w: paypal: %v", domainerrors.ErrPaymentProviderFailure, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return entities.PaymentReceipt{}, &domainerrors.PaymentError{Message: "Payment was not found"}
	case resp.StatusCode != http.StatusOK:
		return entities.PaymentReceipt{}, fmt.Errorf("%w: paypal returned status %d", domainerrors.ErrPaymentProviderFailure, resp.StatusCode)
	}

	var order paypalOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return entities.PaymentReceipt{}, fmt.Errorf("%w: paypal: decode order: %v", domainerrors.ErrPaymentProviderFailure, err)
	}
	if order.Status != "COMPLETED" {
		return entities.PaymentReceipt{}, &domainerrors.PaymentError{Message: "Payment status is " + order.Status}
	}
	if len(order.PurchaseUnits) == 0 {
		return entities.PaymentReceipt{}, &domainerrors.PaymentError{Message: amountMismatchMessage}
	}
	// The order is created with the campaign id as purchase unit reference.
	if order.PurchaseUnits[0].ReferenceID != confirmation.CampaignID {
		return entities.PaymentReceipt{}, &domainerrors.PaymentError{Message: campaignMismatchMessage}
	}
	amount := order.PurchaseUnits[0].Amount
	if !strings.EqualFold(amount.CurrencyCode, entities.CurrencyUSD) {
		return entities.PaymentReceipt{}, &domainerrors.PaymentError{Message: "Payment currency must be USD"}
	}
	paid, err := decimal.NewFromString(amount.Value)
	if err != nil || !amountMatches(confirmation.Amount, paid) {
		return entities.PaymentReceipt{}, &domainerrors.PaymentError{Message: amountMismatchMessage}
	}

	payerEmail := order.Payer.EmailAddress
	if payerEmail == "" {
		payerEmail = confirmation.PayerEmail
	}
	return entities.PaymentReceipt{
		Processor:     entities.ProcessorPayPal,
		TransactionID: order.ID,
		Amount:        confirmation.Amount,
		PayerEmail:    payerEmail,
		Succeeded:     true,
		ConfirmedAt:   v.now(),
	}, nil
}
