package errors

import "errors"

var (
	ErrSessionNotFound         = errors.New("wizard session not found")
	ErrSessionConflict         = errors.New("wizard session was modified concurrently")
	ErrForbidden               = errors.New("wizard session belongs to another user")
	ErrUnauthorizedActor       = errors.New("actor is not authorized")
	ErrUnknownSection          = errors.New("unknown draft section")
	ErrInvalidPatch            = errors.New("invalid draft patch")
	ErrInvalidStep             = errors.New("wizard step out of range")
	ErrStepInvalid             = errors.New("wizard step has invalid fields")
	ErrDraftLocked             = errors.New("draft is locked while checkout is in progress")
	ErrNotAtPaymentStep        = errors.New("checkout is only available on the payment step")
	ErrCheckoutRequired        = errors.New("checkout has not been started")
	ErrCheckoutConflict        = errors.New("checkout key already belongs to a different draft")
	ErrCampaignNotDraft        = errors.New("campaign is no longer a draft")
	ErrUnsupportedProcessor    = errors.New("unsupported payment processor")
	ErrPaymentFailed           = errors.New("payment failed")
	ErrPaymentProviderFailure  = errors.New("payment provider unavailable")
	ErrCampaignGatewayFailure  = errors.New("campaign service unavailable")
	ErrInvalidPaymentReference = errors.New("payment transaction id is required")
	ErrInvalidRequest          = errors.New("invalid wizard request")
)

// StepError carries the field messages of a step that failed validation.
// It unwraps to ErrStepInvalid.
type StepError struct {
	Step   int
	Fields map[string]string
}

func (e *StepError) Error() string {
	return ErrStepInvalid.Error()
}

func (e *StepError) Unwrap() error {
	return ErrStepInvalid
}

// PaymentError is returned when a processor declines or cannot confirm a
// transaction. Message is safe to show to the payer.
type PaymentError struct {
	Message string
}

func (e *PaymentError) Error() string {
	if e.Message == "" {
		return ErrPaymentFailed.Error()
	}
	return ErrPaymentFailed.Error() + ": " + e.Message
}

func (e *PaymentError) Unwrap() error {
	return ErrPaymentFailed
}

// ValidationError reports field-keyed messages for a malformed request body.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return ErrInvalidRequest.Error()
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}
