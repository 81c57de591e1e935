package entities

import "time"

// PaymentConfirmation is what the client reports after the processor UI
// finishes. Succeeded and ErrorMessage come from the processor callback.
type PaymentConfirmation struct {
	CampaignID    string
	Amount        float64
	Currency      string
	Processor     string
	TransactionID string
	Succeeded     bool
	ErrorMessage  string
	PayerEmail    string
}

type PaymentReceipt struct {
	Processor     string
	TransactionID string
	Amount        float64
	PayerEmail    string
	Succeeded     bool
	ConfirmedAt   time.Time
}

type CheckoutResult struct {
	CampaignID string
	Amount     float64
	Currency   string
	Processor  string
}

type PaymentOutcome struct {
	CampaignID   string
	Receipt      PaymentReceipt
	RedirectPath string
}
