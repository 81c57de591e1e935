package ports

import (
	"context"
	"time"

	"soundtik/contexts/campaign-promotion/wizard-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// SessionStore keeps wizard sessions. SaveSession is conditional on the
// version that was read and fails with ErrSessionConflict otherwise.
type SessionStore interface {
	CreateSession(ctx context.Context, session entities.Session) error
	GetSession(ctx context.Context, sessionID string, now time.Time) (entities.Session, error)
	SaveSession(ctx context.Context, session entities.Session, expectedVersion int64) error
	DeleteExpired(ctx context.Context, now time.Time, limit int) (int, error)
}

// StepValidator returns field-keyed messages for the given step. An empty
// map means the step is valid.
type StepValidator interface {
	ValidateStep(step entities.Step, draft entities.Draft) map[string]string
}

type PaymentVerifier interface {
	Verify(ctx context.Context, confirmation entities.PaymentConfirmation) (entities.PaymentReceipt, error)
}

// CampaignGateway is the wizard's view of the campaign repository.
type CampaignGateway interface {
	CreateDraftCampaign(ctx context.Context, userID string, idempotencyKey string, draft entities.Draft) (string, error)
	SubmitCampaign(ctx context.Context, userID string, campaignID string, receipt entities.PaymentReceipt) error
}
