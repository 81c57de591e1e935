package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	campaignentities "soundtik/contexts/campaign-promotion/campaign-service/domain/entities"
	wizardmemory "soundtik/contexts/campaign-promotion/wizard-service/adapters/memory"
	paymentadapter "soundtik/contexts/campaign-promotion/wizard-service/adapters/payment"
	wizardentities "soundtik/contexts/campaign-promotion/wizard-service/domain/entities"
	wizarderrors "soundtik/contexts/campaign-promotion/wizard-service/domain/errors"
	"soundtik/internal/platform/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func memoryConfig() config.Config {
	return config.Config{
		ServiceName:            "soundtik-test",
		CampaignStore:          config.StoreMemory,
		PaymentVerifier:        config.VerifierReported,
		LogLevel:               "error",
		LogFormat:              "json",
		WizardSessionTTL:       time.Hour,
		IdempotencyTTL:         24 * time.Hour,
		WorkerPoll:             10 * time.Millisecond,
		WorkerBatchSize:        50,
		EnableEndDateCompleter: true,
		EnableMetricsConsumer:  true,
		EnableSessionSweeper:   true,
	}
}

func newTestRuntime(t *testing.T) *runtime {
	t.Helper()
	rt, err := buildRuntime(context.Background(), memoryConfig(), "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func patch(t *testing.T, raw string) map[string]json.RawMessage {
	t.Helper()
	out := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func wizardAtPayment(t *testing.T, rt *runtime, userID string) string {
	t.Helper()
	ctx := context.Background()
	svc := rt.wizard.Service

	session, err := svc.StartSession(ctx, userID)
	require.NoError(t, err)
	id := session.SessionID
	steps := []struct {
		section string
		sub     string
		body    string
	}{
		{section: wizardentities.SectionSongDetails, body: `{"title":"Night Drive","genre":"synthwave","audio_url":"https://cdn.example.com/night.mp3"}`},
		{section: wizardentities.SectionArtistDetails, body: `{"name":"Neon Coast","bio":"Duo from Lisbon"}`},
		{section: wizardentities.SectionArtistDetails, sub: wizardentities.SubsectionSocialLinks, body: `{"tiktok":"@neoncoast"}`},
		{section: wizardentities.SectionCampaignDetails, body: `{"budget":500,"duration":30}`},
		{section: wizardentities.SectionCampaignDetails, sub: wizardentities.SubsectionCreatorTargeting, body: `{"creator_types":["dance","lip-sync"]}`},
		{section: wizardentities.SectionPaymentDetails, body: `{"processor":"paypal"}`},
	}
	for _, step := range steps {
		if step.sub == "" {
			_, err = svc.UpdateSection(ctx, userID, id, step.section, patch(t, step.body))
		} else {
			_, err = svc.UpdateSubsection(ctx, userID, id, step.section, step.sub, patch(t, step.body))
		}
		require.NoError(t, err)
	}
	_, err = svc.GoTo(ctx, userID, id, wizardentities.StepPayment)
	require.NoError(t, err)
	return id
}

// refillToPayment fills every section of an existing session again, with
// the given song, and moves it to the payment step.
func refillToPayment(t *testing.T, rt *runtime, userID string, sessionID string, song string) {
	t.Helper()
	ctx := context.Background()
	svc := rt.wizard.Service
	_, err := svc.UpdateSection(ctx, userID, sessionID, wizardentities.SectionSongDetails, patch(t, song))
	require.NoError(t, err)
	_, err = svc.UpdateSection(ctx, userID, sessionID, wizardentities.SectionArtistDetails, patch(t, `{"name":"Neon Coast"}`))
	require.NoError(t, err)
	_, err = svc.UpdateSection(ctx, userID, sessionID, wizardentities.SectionCampaignDetails, patch(t, `{"budget":500,"duration":30}`))
	require.NoError(t, err)
	_, err = svc.UpdateSubsection(ctx, userID, sessionID, wizardentities.SectionCampaignDetails, wizardentities.SubsectionCreatorTargeting, patch(t, `{"creator_types":["dance"]}`))
	require.NoError(t, err)
	_, err = svc.UpdateSection(ctx, userID, sessionID, wizardentities.SectionPaymentDetails, patch(t, `{"processor":"paypal"}`))
	require.NoError(t, err)
	_, err = svc.GoTo(ctx, userID, sessionID, wizardentities.StepPayment)
	require.NoError(t, err)
}

func TestWizardCheckoutCreatesAndSubmitsCampaign(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()
	sessionID := wizardAtPayment(t, rt, "artist-1")

	_, checkout, err := rt.wizard.Service.Checkout(ctx, "artist-1", sessionID)
	require.NoError(t, err)
	require.NotEmpty(t, checkout.CampaignID)
	assert.Equal(t, 500.0, checkout.Amount)
	assert.Equal(t, "paypal", checkout.Processor)

	draft, err := rt.campaigns.Handler.GetCampaign.Execute(ctx, checkout.CampaignID)
	require.NoError(t, err)
	assert.Equal(t, campaignentities.CampaignStatusDraft, draft.Status)
	assert.Equal(t, "Night Drive", draft.Song.Title)
	assert.Equal(t, "@neoncoast", draft.Artist.SocialLinks.TikTok)
	assert.Equal(t, []string{"dance", "lip-sync"}, draft.Targeting.CreatorTypes)

	_, _, err = rt.wizard.Service.CompletePayment(ctx, "artist-1", sessionID, wizardentities.PaymentConfirmation{
		TransactionID: "ORDER-DECLINED",
		Succeeded:     false,
		ErrorMessage:  "Instrument declined",
	})
	var paymentErr *wizarderrors.PaymentError
	require.ErrorAs(t, err, &paymentErr)

	stillDraft, err := rt.campaigns.Handler.GetCampaign.Execute(ctx, checkout.CampaignID)
	require.NoError(t, err)
	assert.Equal(t, campaignentities.CampaignStatusDraft, stillDraft.Status)

	_, retry, err := rt.wizard.Service.Checkout(ctx, "artist-1", sessionID)
	require.NoError(t, err)
	assert.Equal(t, checkout.CampaignID, retry.CampaignID)

	session, outcome, err := rt.wizard.Service.CompletePayment(ctx, "artist-1", sessionID, wizardentities.PaymentConfirmation{
		TransactionID: "ORDER-OK",
		Succeeded:     true,
		PayerEmail:    "artist@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "/campaigns/"+checkout.CampaignID, outcome.RedirectPath)
	assert.Equal(t, wizardentities.PhasePaymentSuccess, session.State.Phase)

	submitted, err := rt.campaigns.Handler.GetCampaign.Execute(ctx, checkout.CampaignID)
	require.NoError(t, err)
	assert.Equal(t, campaignentities.CampaignStatusPending, submitted.Status)
	assert.Equal(t, "ORDER-OK", submitted.Payment.TransactionID)
	assert.Equal(t, 500.0, submitted.Payment.Amount)
	require.NotNil(t, submitted.SubmittedAt)

	list, err := rt.campaigns.Handler.ListCampaignsHandler(ctx, "artist-1", "", 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

func TestGatewayMapsCampaignErrors(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()
	gateway := campaignGateway{
		create: rt.campaigns.Handler.CreateCampaign,
		submit: rt.campaigns.Handler.SubmitCampaign,
	}

	_, err := gateway.CreateDraftCampaign(ctx, "artist-1", "wizard-checkout:s0:0", wizardentities.DefaultDraft())
	require.ErrorIs(t, err, wizarderrors.ErrCampaignGatewayFailure)

	draft := wizardentities.DefaultDraft()
	draft.SongDetails.Title = "Night Drive"
	draft.SongDetails.Genre = "synthwave"
	draft.SongDetails.AudioURL = "https://cdn.example.com/night.mp3"
	draft.ArtistDetails.Name = "Neon Coast"
	draft.CampaignDetails.CreatorTargeting.CreatorTypes = []string{"dance"}
	id, err := gateway.CreateDraftCampaign(ctx, "artist-1", "wizard-checkout:s1:0", draft)
	require.NoError(t, err)

	replayed, err := gateway.CreateDraftCampaign(ctx, "artist-1", "wizard-checkout:s1:0", draft)
	require.NoError(t, err)
	assert.Equal(t, id, replayed)

	changed := draft.Clone()
	changed.SongDetails.Title = "Day Drive"
	_, err = gateway.CreateDraftCampaign(ctx, "artist-1", "wizard-checkout:s1:0", changed)
	require.ErrorIs(t, err, wizarderrors.ErrCheckoutConflict)
	assert.NotErrorIs(t, err, wizarderrors.ErrCampaignGatewayFailure)

	receipt := wizardentities.PaymentReceipt{
		Processor:     "stripe",
		TransactionID: "pi_1",
		Amount:        200,
		Succeeded:     true,
		ConfirmedAt:   time.Now(),
	}
	err = gateway.SubmitCampaign(ctx, "artist-2", id, receipt)
	require.ErrorIs(t, err, wizarderrors.ErrForbidden)

	underpaid := receipt
	underpaid.Amount = 1
	err = gateway.SubmitCampaign(ctx, "artist-1", id, underpaid)
	var paymentErr *wizarderrors.PaymentError
	require.ErrorAs(t, err, &paymentErr)
	assert.Equal(t, "Payment amount does not match the campaign budget", paymentErr.Message)

	require.NoError(t, gateway.SubmitCampaign(ctx, "artist-1", id, receipt))

	other, err := gateway.CreateDraftCampaign(ctx, "artist-1", "wizard-checkout:s2:0", draft)
	require.NoError(t, err)
	err = gateway.SubmitCampaign(ctx, "artist-1", other, receipt)
	require.ErrorAs(t, err, &paymentErr)
	assert.Equal(t, "Payment was already used for another campaign", paymentErr.Message)
}

func TestWizardResetStartsFreshCheckout(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()
	svc := rt.wizard.Service
	sessionID := wizardAtPayment(t, rt, "artist-1")

	_, first, err := svc.Checkout(ctx, "artist-1", sessionID)
	require.NoError(t, err)
	_, _, err = svc.CompletePayment(ctx, "artist-1", sessionID, wizardentities.PaymentConfirmation{
		TransactionID: "ORDER-DECLINED",
		Succeeded:     false,
	})
	require.ErrorIs(t, err, wizarderrors.ErrPaymentFailed)

	_, err = svc.Reset(ctx, "artist-1", sessionID)
	require.NoError(t, err)
	refillToPayment(t, rt, "artist-1", sessionID, `{"title":"Morning Run","genre":"house","audio_url":"https://cdn.example.com/run.mp3"}`)

	_, second, err := svc.Checkout(ctx, "artist-1", sessionID)
	require.NoError(t, err)
	assert.NotEqual(t, first.CampaignID, second.CampaignID)

	fresh, err := rt.campaigns.Handler.GetCampaign.Execute(ctx, second.CampaignID)
	require.NoError(t, err)
	assert.Equal(t, "Morning Run", fresh.Song.Title)
	assert.Equal(t, campaignentities.CampaignStatusDraft, fresh.Status)
}

func TestWizardSecondIdenticalDraftCreatesNewCampaign(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()
	svc := rt.wizard.Service
	sessionID := wizardAtPayment(t, rt, "artist-1")

	_, first, err := svc.Checkout(ctx, "artist-1", sessionID)
	require.NoError(t, err)
	_, _, err = svc.CompletePayment(ctx, "artist-1", sessionID, wizardentities.PaymentConfirmation{
		TransactionID: "ORDER-1",
		Succeeded:     true,
	})
	require.NoError(t, err)

	refillToPayment(t, rt, "artist-1", sessionID, `{"title":"Night Drive","genre":"synthwave","audio_url":"https://cdn.example.com/night.mp3"}`)
	_, second, err := svc.Checkout(ctx, "artist-1", sessionID)
	require.NoError(t, err)
	assert.NotEqual(t, first.CampaignID, second.CampaignID)

	_, outcome, err := svc.CompletePayment(ctx, "artist-1", sessionID, wizardentities.PaymentConfirmation{
		TransactionID: "ORDER-2",
		Succeeded:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, second.CampaignID, outcome.CampaignID)

	list, err := rt.campaigns.Handler.ListCampaignsHandler(ctx, "artist-1", "", 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)
}

func TestCLIReviewFlow(t *testing.T) {
	rt := newTestRuntime(t)
	ctx := context.Background()
	cli := newCLIApp(rt)
	sessionID := wizardAtPayment(t, rt, "artist-1")
	_, checkout, err := rt.wizard.Service.Checkout(ctx, "artist-1", sessionID)
	require.NoError(t, err)
	_, _, err = rt.wizard.Service.CompletePayment(ctx, "artist-1", sessionID, wizardentities.PaymentConfirmation{
		TransactionID: "ORDER-OK",
		Succeeded:     true,
	})
	require.NoError(t, err)

	pending, err := cli.PendingCampaigns(ctx, "ops-1", 10)
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)

	approved, err := cli.ApproveCampaign(ctx, "ops-1", checkout.CampaignID, "looks good")
	require.NoError(t, err)
	assert.Equal(t, "active", approved.Campaign.Status)

	metrics, err := cli.CampaignMetrics(ctx, checkout.CampaignID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), metrics.Metrics.Views)

	_, err = cli.RejectCampaign(ctx, "ops-1", checkout.CampaignID, "too late")
	require.Error(t, err)

	estimate, err := cli.EstimateReach(500, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(90000), estimate.Mid)
}

func TestPaymentVerifierSelection(t *testing.T) {
	cfg := memoryConfig()
	_, reported := paymentVerifier(cfg, time.Now).(wizardmemory.ReportedPaymentVerifier)
	assert.True(t, reported)

	cfg.PaymentVerifier = config.VerifierProcessor
	cfg.StripeSecretKey = "sk_test"
	router, ok := paymentVerifier(cfg, time.Now).(paymentadapter.Router)
	require.True(t, ok)
	assert.Len(t, router.Verifiers, 1)
	assert.Contains(t, router.Verifiers, wizardentities.ProcessorStripe)
}

func TestPollJobsStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	logger := slog.Default()
	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- pollJobs(ctx, 5*time.Millisecond, []periodicJob{{
			name: "count",
			run: func(context.Context) error {
				if runs.Add(1) == 3 {
					cancel()
				}
				return nil
			},
		}}, logger)
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("poll loop did not stop after cancel")
	}
	assert.GreaterOrEqual(t, runs.Load(), int32(3))
}

func TestPollJobsReturnsJobError(t *testing.T) {
	boom := errors.New("store down")
	err := pollJobs(context.Background(), time.Millisecond, []periodicJob{{
		name: "fails",
		run:  func(context.Context) error { return boom },
	}}, slog.Default())
	require.ErrorIs(t, err, boom)
}
