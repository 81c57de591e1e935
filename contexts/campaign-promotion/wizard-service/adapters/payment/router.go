package paymentadapter

import (
	"context"
	"strings"
	"time"

	"soundtik/contexts/campaign-promotion/wizard-service/domain/entities"
	domainerrors "soundtik/contexts/campaign-promotion/wizard-service/domain/errors"
	"soundtik/contexts/campaign-promotion/wizard-service/ports"

	"github.com/shopspring/decimal"
)

const (
	amountMismatchMessage   = "Payment amount does not match the campaign budget"
	campaignMismatchMessage = "Payment was made for a different campaign"
)

var (
	_ ports.PaymentVerifier = (*StripeVerifier)(nil)
	_ ports.PaymentVerifier = (*PayPalVerifier)(nil)
	_ ports.PaymentVerifier = Router{}
)

// Router dispatches a confirmation to the verifier of its processor.
type Router struct {
	Verifiers map[string]ports.PaymentVerifier
}

func NewRouter(stripe ports.PaymentVerifier, paypal ports.PaymentVerifier) Router {
	verifiers := map[string]ports.PaymentVerifier{}
	if stripe != nil {
		verifiers[entities.ProcessorStripe] = stripe
	}
	if paypal != nil {
		verifiers[entities.ProcessorPayPal] = paypal
	}
	return Router{Verifiers: verifiers}
}

func (r Router) Verify(ctx context.Context, confirmation entities.PaymentConfirmation) (entities.PaymentReceipt, error) {
	verifier, ok := r.Verifiers[strings.ToLower(strings.TrimSpace(confirmation.Processor))]
	if !ok {
		return entities.PaymentReceipt{}, domainerrors.ErrUnsupportedProcessor
	}
	return verifier.Verify(ctx, confirmation)
}

// amountMatches compares in exact decimal arithmetic. The budget is held as
// a float so it is rounded to cents first.
func amountMatches(expected float64, paid decimal.Decimal) bool {
	return decimal.NewFromFloat(expected).Round(2).Equal(paid.Round(2))
}

func timeoutOrDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return 10 * time.Second
	}
	return timeout
}
