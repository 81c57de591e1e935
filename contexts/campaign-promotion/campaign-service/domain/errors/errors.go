package errors

import "errors"

var (
	ErrCampaignNotFound        = errors.New("campaign not found")
	ErrCampaignAlreadyExists   = errors.New("campaign already exists")
	ErrInvalidCampaignInput    = errors.New("invalid campaign input")
	ErrInvalidStateTransition  = errors.New("invalid campaign state transition")
	ErrCampaignVersionConflict = errors.New("campaign was modified concurrently")
	ErrCampaignNotLive         = errors.New("campaign does not accept videos in current state")
	ErrPaymentRequired         = errors.New("a succeeded payment is required to submit the campaign")
	ErrPaymentAmountMismatch   = errors.New("payment amount does not match the campaign budget")
	ErrPaymentAlreadyApplied   = errors.New("payment transaction is already applied to another campaign")
	ErrRejectionNotesRequired  = errors.New("rejection notes are required")
	ErrUnauthorizedActor       = errors.New("actor is not authorized")
	ErrForbidden               = errors.New("campaign belongs to another user")
	ErrVideoNotFound           = errors.New("video not found")
	ErrInvalidVideoInput       = errors.New("invalid video input")
	ErrInvalidVideoURL         = errors.New("invalid tiktok video url")
	ErrIdempotencyKeyRequired  = errors.New("idempotency key is required")
	ErrIdempotencyKeyConflict  = errors.New("idempotency key conflict")
	ErrEventPayloadInvalid     = errors.New("event payload is invalid")
	ErrStoreBackendUnavailable = errors.New("campaign store backend unavailable")
)

// ValidationError reports field-keyed messages for a rejected request.
// It unwraps to the sentinel describing what was rejected.
type ValidationError struct {
	Err    error
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return "validation failed"
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
