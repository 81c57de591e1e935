package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"soundtik/contexts/campaign-promotion/wizard-service/domain/entities"
	domainerrors "soundtik/contexts/campaign-promotion/wizard-service/domain/errors"
	"soundtik/contexts/campaign-promotion/wizard-service/ports"

	"github.com/google/uuid"
)

var (
	_ ports.PaymentVerifier = ReportedPaymentVerifier{}
	_ ports.CampaignGateway = (*RecordingGateway)(nil)
)

// ReportedPaymentVerifier trusts the processor result the client reported.
// It backs local runs where no processor credentials are configured.
type ReportedPaymentVerifier struct {
	Now func() time.Time
}

func (v ReportedPaymentVerifier) Verify(_ context.Context, confirmation entities.PaymentConfirmation) (entities.PaymentReceipt, error) {
	if !confirmation.Succeeded {
		return entities.PaymentReceipt{}, &domainerrors.PaymentError{Message: confirmation.ErrorMessage}
	}
	now := time.Now().UTC()
	if v.Now != nil {
		now = v.Now().UTC()
	}
	return entities.PaymentReceipt{
		Processor:     strings.ToLower(confirmation.Processor),
		TransactionID: confirmation.TransactionID,
		Amount:        confirmation.Amount,
		PayerEmail:    confirmation.PayerEmail,
		Succeeded:     true,
		ConfirmedAt:   now,
	}, nil
}

type SubmittedCampaign struct {
	UserID     string
	CampaignID string
	Receipt    entities.PaymentReceipt
}

// RecordingGateway stands in for the campaign service. It replays the same
// campaign id for a repeated idempotency key.
type RecordingGateway struct {
	mu        sync.Mutex
	created   map[string]string
	drafts    map[string]entities.Draft
	submitted []SubmittedCampaign

	CreateErr error
	SubmitErr error
}

func NewRecordingGateway() *RecordingGateway {
	return &RecordingGateway{
		created: map[string]string{},
		drafts:  map[string]entities.Draft{},
	}
}

func (g *RecordingGateway) CreateDraftCampaign(_ context.Context, userID string, idempotencyKey string, draft entities.Draft) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.CreateErr != nil {
		return "", g.CreateErr
	}
	key := userID + "|" + idempotencyKey
	if id, ok := g.created[key]; ok {
		return id, nil
	}
	id := uuid.NewString()
	g.created[key] = id
	g.drafts[id] = draft.Clone()
	return id, nil
}

func (g *RecordingGateway) SubmitCampaign(_ context.Context, userID string, campaignID string, receipt entities.PaymentReceipt) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.SubmitErr != nil {
		return g.SubmitErr
	}
	g.submitted = append(g.submitted, SubmittedCampaign{
		UserID:     userID,
		CampaignID: campaignID,
		Receipt:    receipt,
	})
	return nil
}

// CreatedCount reports how many distinct draft campaigns were created.
func (g *RecordingGateway) CreatedCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.drafts)
}

func (g *RecordingGateway) Draft(campaignID string) (entities.Draft, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	draft, ok := g.drafts[campaignID]
	return draft, ok
}

func (g *RecordingGateway) Submitted() []SubmittedCampaign {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]SubmittedCampaign, len(g.submitted))
	copy(out, g.submitted)
	return out
}
