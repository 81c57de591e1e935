package application_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	wizardservice "soundtik/contexts/campaign-promotion/wizard-service"
	"soundtik/contexts/campaign-promotion/wizard-service/adapters/memory"
	"soundtik/contexts/campaign-promotion/wizard-service/domain/entities"
	domainerrors "soundtik/contexts/campaign-promotion/wizard-service/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	module  wizardservice.Module
	gateway *memory.RecordingGateway
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gateway := memory.NewRecordingGateway()
	f := &fixture{
		module:  wizardservice.NewInMemoryModule(gateway, nil, nil),
		gateway: gateway,
		now:     time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.module.Store.SetNow(func() time.Time { return f.now })
	return f
}

func body(t *testing.T, raw string) map[string]json.RawMessage {
	t.Helper()
	out := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

// fillToPayment completes every step and leaves the session on the
// payment step.
func fillToPayment(t *testing.T, f *fixture, userID string) entities.Session {
	t.Helper()
	ctx := context.Background()
	svc := f.module.Service

	session, err := svc.StartSession(ctx, userID)
	require.NoError(t, err)
	return fillSession(t, f, userID, session.SessionID)
}

// fillSession walks an existing session from the first step to payment.
func fillSession(t *testing.T, f *fixture, userID string, id string) entities.Session {
	t.Helper()
	ctx := context.Background()
	svc := f.module.Service

	_, err := svc.UpdateSection(ctx, userID, id, entities.SectionSongDetails, body(t, `{"title":"Neon","genre":"pop","audio_url":"https://cdn.example/neon.mp3"}`))
	require.NoError(t, err)
	_, err = svc.Next(ctx, userID, id)
	require.NoError(t, err)
	_, err = svc.UpdateSection(ctx, userID, id, entities.SectionArtistDetails, body(t, `{"name":"Mira"}`))
	require.NoError(t, err)
	_, err = svc.Next(ctx, userID, id)
	require.NoError(t, err)
	_, err = svc.UpdateSection(ctx, userID, id, entities.SectionCampaignDetails, body(t, `{"budget":500,"duration":30}`))
	require.NoError(t, err)
	_, err = svc.Next(ctx, userID, id)
	require.NoError(t, err)
	_, err = svc.UpdateSubsection(ctx, userID, id, entities.SectionCampaignDetails, entities.SubsectionCreatorTargeting, body(t, `{"creator_types":["dancers"]}`))
	require.NoError(t, err)
	_, err = svc.Next(ctx, userID, id)
	require.NoError(t, err)
	session, err := svc.UpdateSection(ctx, userID, id, entities.SectionPaymentDetails, body(t, `{"processor":"stripe"}`))
	require.NoError(t, err)
	require.Equal(t, entities.StepPayment, session.State.Step)
	return session
}

func TestWizardHappyPathSubmitsCampaign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := fillToPayment(t, f, "artist-1")

	session, checkout, err := f.module.Service.Checkout(ctx, "artist-1", session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, checkout.Amount)
	assert.Equal(t, entities.CurrencyUSD, checkout.Currency)
	assert.Equal(t, entities.PaymentStatusPending, session.State.Draft.PaymentDetails.Status)

	session, outcome, err := f.module.Service.CompletePayment(ctx, "artist-1", session.SessionID, entities.PaymentConfirmation{
		TransactionID: "pi_123",
		Succeeded:     true,
		PayerEmail:    "mira@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "/campaigns/"+checkout.CampaignID, outcome.RedirectPath)
	assert.Equal(t, entities.PhasePaymentSuccess, session.State.Phase)
	assert.Equal(t, entities.StepSongDetails, session.State.Step)
	assert.Empty(t, session.State.CampaignID)
	assert.Equal(t, entities.DefaultDraft(), session.State.Draft)

	submitted := f.gateway.Submitted()
	require.Len(t, submitted, 1)
	assert.Equal(t, checkout.CampaignID, submitted[0].CampaignID)
	assert.Equal(t, "stripe", submitted[0].Receipt.Processor)
	assert.Equal(t, 500.0, submitted[0].Receipt.Amount)

	draft, ok := f.gateway.Draft(checkout.CampaignID)
	require.True(t, ok)
	assert.Equal(t, "Neon", draft.SongDetails.Title)
}

func TestFailedPaymentRetryReusesDraftCampaign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := fillToPayment(t, f, "artist-1")

	_, first, err := f.module.Service.Checkout(ctx, "artist-1", session.SessionID)
	require.NoError(t, err)

	_, _, err = f.module.Service.CompletePayment(ctx, "artist-1", session.SessionID, entities.PaymentConfirmation{
		TransactionID: "pi_declined",
		Succeeded:     false,
		ErrorMessage:  "Your card was declined.",
	})
	require.ErrorIs(t, err, domainerrors.ErrPaymentFailed)

	stored, err := f.module.Service.GetSession(ctx, "artist-1", session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, entities.PaymentStatusFailed, stored.State.Draft.PaymentDetails.Status)
	assert.Equal(t, "Your card was declined.", stored.State.LastError)
	assert.Equal(t, first.CampaignID, stored.State.CampaignID)

	_, second, err := f.module.Service.Checkout(ctx, "artist-1", session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, first.CampaignID, second.CampaignID)
	assert.Equal(t, 1, f.gateway.CreatedCount())
	assert.Empty(t, f.gateway.Submitted())
}

func TestNextDraftInSameSessionGetsNewCampaign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := fillToPayment(t, f, "artist-1")
	id := session.SessionID

	_, first, err := f.module.Service.Checkout(ctx, "artist-1", id)
	require.NoError(t, err)
	_, _, err = f.module.Service.CompletePayment(ctx, "artist-1", id, entities.PaymentConfirmation{
		TransactionID: "pi_first",
		Succeeded:     true,
	})
	require.NoError(t, err)

	fillSession(t, f, "artist-1", id)
	_, second, err := f.module.Service.Checkout(ctx, "artist-1", id)
	require.NoError(t, err)
	assert.NotEqual(t, first.CampaignID, second.CampaignID)

	reset, err := f.module.Service.Reset(ctx, "artist-1", id)
	require.NoError(t, err)
	assert.Empty(t, reset.State.CampaignID)

	fillSession(t, f, "artist-1", id)
	_, third, err := f.module.Service.Checkout(ctx, "artist-1", id)
	require.NoError(t, err)
	assert.NotEqual(t, second.CampaignID, third.CampaignID)
	assert.Equal(t, 3, f.gateway.CreatedCount())
}

func TestSubmissionRefusalKeepsDraftForRetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := fillToPayment(t, f, "artist-1")

	_, checkout, err := f.module.Service.Checkout(ctx, "artist-1", session.SessionID)
	require.NoError(t, err)

	f.gateway.SubmitErr = &domainerrors.PaymentError{Message: "Payment was already used for another campaign"}
	stored, _, err := f.module.Service.CompletePayment(ctx, "artist-1", session.SessionID, entities.PaymentConfirmation{
		TransactionID: "pi_reused",
		Succeeded:     true,
	})
	require.ErrorIs(t, err, domainerrors.ErrPaymentFailed)
	assert.Equal(t, entities.PaymentStatusFailed, stored.State.Draft.PaymentDetails.Status)
	assert.Equal(t, "Payment was already used for another campaign", stored.State.LastError)
	assert.Equal(t, checkout.CampaignID, stored.State.CampaignID)
}

func TestAdvanceWithInvalidStepStoresFieldErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session, err := f.module.Service.StartSession(ctx, "artist-1")
	require.NoError(t, err)

	_, err = f.module.Service.Next(ctx, "artist-1", session.SessionID)
	var stepErr *domainerrors.StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, int(entities.StepSongDetails), stepErr.Step)
	assert.Contains(t, stepErr.Fields, "title")

	stored, err := f.module.Service.GetSession(ctx, "artist-1", session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, entities.StepSongDetails, stored.State.Step)
	assert.Contains(t, stored.State.Errors, "audio_url")
}

func TestCheckoutGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session, err := f.module.Service.StartSession(ctx, "artist-1")
	require.NoError(t, err)

	_, _, err = f.module.Service.Checkout(ctx, "artist-1", session.SessionID)
	require.ErrorIs(t, err, domainerrors.ErrNotAtPaymentStep)

	_, err = f.module.Service.GoTo(ctx, "artist-1", session.SessionID, entities.StepPayment)
	require.NoError(t, err)
	_, _, err = f.module.Service.Checkout(ctx, "artist-1", session.SessionID)
	require.ErrorIs(t, err, domainerrors.ErrStepInvalid)
	assert.Zero(t, f.gateway.CreatedCount())

	_, _, err = f.module.Service.CompletePayment(ctx, "artist-1", session.SessionID, entities.PaymentConfirmation{TransactionID: "pi_1", Succeeded: true})
	require.ErrorIs(t, err, domainerrors.ErrCheckoutRequired)
}

func TestDraftIsLockedOnceCheckoutStarts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := fillToPayment(t, f, "artist-1")
	_, _, err := f.module.Service.Checkout(ctx, "artist-1", session.SessionID)
	require.NoError(t, err)

	_, err = f.module.Service.UpdateSection(ctx, "artist-1", session.SessionID, entities.SectionCampaignDetails, body(t, `{"budget":50000}`))
	require.ErrorIs(t, err, domainerrors.ErrDraftLocked)

	_, err = f.module.Service.Reset(ctx, "artist-1", session.SessionID)
	require.NoError(t, err)
	_, err = f.module.Service.UpdateSection(ctx, "artist-1", session.SessionID, entities.SectionCampaignDetails, body(t, `{"budget":900}`))
	require.NoError(t, err)
}

func TestSessionOwnershipAndExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session, err := f.module.Service.StartSession(ctx, "artist-1")
	require.NoError(t, err)

	_, err = f.module.Service.GetSession(ctx, "artist-2", session.SessionID)
	require.ErrorIs(t, err, domainerrors.ErrForbidden)
	_, err = f.module.Service.StartSession(ctx, " ")
	require.ErrorIs(t, err, domainerrors.ErrUnauthorizedActor)

	f.now = f.now.Add(25 * time.Hour)
	_, err = f.module.Service.GetSession(ctx, "artist-1", session.SessionID)
	require.ErrorIs(t, err, domainerrors.ErrSessionNotFound)

	require.NoError(t, f.module.Workers.SessionSweeper.RunOnce(ctx))
	assert.Zero(t, f.module.Store.Count())
}

func TestStaleSessionWriteIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session, err := f.module.Service.StartSession(ctx, "artist-1")
	require.NoError(t, err)

	_, err = f.module.Service.Next(ctx, "artist-1", session.SessionID)
	require.Error(t, err)

	stale := session
	stale.State.Step = entities.StepPayment
	err = f.module.Store.SaveSession(ctx, stale, session.Version)
	require.ErrorIs(t, err, domainerrors.ErrSessionConflict)
}
