package commands

import (
	"context"
	"testing"
	"time"

	"soundtik/contexts/campaign-promotion/campaign-service/adapters/memory"
	"soundtik/contexts/campaign-promotion/campaign-service/domain/entities"
	domainerrors "soundtik/contexts/campaign-promotion/campaign-service/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *memory.Store
	now      time.Time
	create   CreateCampaignUseCase
	submit   SubmitCampaignUseCase
	validate ValidateCampaignUseCase
	complete CompleteCampaignUseCase
	addVideo AddVideoUseCase
	update   UpdateVideoMetricsUseCase
	remove   DeleteVideoUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore(nil)
	f := &fixture{
		store: store,
		now:   time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	store.SetNow(func() time.Time { return f.now })

	recomputer := MetricsRecomputer{Videos: store, Metrics: store, Outbox: store, IDGen: store}
	f.create = CreateCampaignUseCase{
		Campaigns:   store,
		History:     store,
		Idempotency: store,
		Outbox:      store,
		Clock:       store,
		IDGenerator: store,
	}
	f.submit = SubmitCampaignUseCase{Campaigns: store, History: store, Outbox: store, Clock: store, IDGen: store}
	f.validate = ValidateCampaignUseCase{Campaigns: store, History: store, Outbox: store, Clock: store, IDGen: store}
	f.complete = CompleteCampaignUseCase{Campaigns: store, History: store, Outbox: store, Clock: store, IDGen: store}
	f.addVideo = AddVideoUseCase{Campaigns: store, Videos: store, Recomputer: recomputer, Clock: store, IDGen: store}
	f.update = UpdateVideoMetricsUseCase{Videos: store, Recomputer: recomputer, Clock: store}
	f.remove = DeleteVideoUseCase{Videos: store, Recomputer: recomputer, Clock: store}
	return f
}

func validCreateCommand(key string) CreateCampaignCommand {
	return CreateCampaignCommand{
		UserID:         "artist-1",
		IdempotencyKey: key,
		Song: entities.SongDetails{
			Title:    "  Midnight Drive ",
			Genre:    "synthwave",
			AudioURL: "https://cdn.example.com/song.mp3",
		},
		Artist:       entities.ArtistDetails{Name: "Neon Tide"},
		Budget:       500,
		DurationDays: 30,
		Targeting:    entities.CreatorTargeting{CreatorTypes: []string{"dancers"}},
		Processor:    entities.PaymentProcessorStripe,
	}
}

func succeededPayment(txn string) entities.Payment {
	return entities.Payment{
		Processor:     entities.PaymentProcessorStripe,
		TransactionID: txn,
		Amount:        500,
		Status:        entities.PaymentStatusSucceeded,
	}
}

func (f *fixture) createDraft(t *testing.T, key string) entities.Campaign {
	t.Helper()
	result, err := f.create.Execute(context.Background(), validCreateCommand(key))
	require.NoError(t, err)
	return result.Campaign
}

func (f *fixture) createPending(t *testing.T, key string) entities.Campaign {
	t.Helper()
	draft := f.createDraft(t, key)
	result, err := f.submit.Execute(context.Background(), SubmitCampaignCommand{
		CampaignID: draft.CampaignID,
		ActorID:    draft.UserID,
		Payment:    succeededPayment("pi_" + key),
	})
	require.NoError(t, err)
	return result.Campaign
}

func TestCreateCampaignStartsAsDraft(t *testing.T) {
	f := newFixture(t)
	campaign := f.createDraft(t, "create-1")

	assert.Equal(t, entities.CampaignStatusDraft, campaign.Status)
	assert.Equal(t, "Midnight Drive", campaign.Song.Title)
	assert.Equal(t, int64(1), campaign.Version)
	assert.Equal(t, entities.PaymentStatusPending, campaign.Payment.Status)
	assert.Equal(t, 500.0, campaign.Payment.Amount)
	assert.Equal(t, []string{EventCampaignCreated}, f.store.OutboxEventTypes())
}

func TestCreateCampaignRejectsBudgetBelowMinimum(t *testing.T) {
	f := newFixture(t)
	cmd := validCreateCommand("create-low")
	cmd.Budget = 199.99

	_, err := f.create.Execute(context.Background(), cmd)
	require.ErrorIs(t, err, domainerrors.ErrInvalidCampaignInput)
}

func TestCreateCampaignIdempotencyReplayAndConflict(t *testing.T) {
	f := newFixture(t)
	first, err := f.create.Execute(context.Background(), validCreateCommand("create-idem"))
	require.NoError(t, err)

	second, err := f.create.Execute(context.Background(), validCreateCommand("create-idem"))
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Campaign.CampaignID, second.Campaign.CampaignID)

	changed := validCreateCommand("create-idem")
	changed.Budget = 900
	_, err = f.create.Execute(context.Background(), changed)
	require.ErrorIs(t, err, domainerrors.ErrIdempotencyKeyConflict)

	_, err = f.create.Execute(context.Background(), validCreateCommand(""))
	require.ErrorIs(t, err, domainerrors.ErrIdempotencyKeyRequired)
}

func TestSubmitMovesDraftToPending(t *testing.T) {
	f := newFixture(t)
	pending := f.createPending(t, "submit-1")

	assert.Equal(t, entities.CampaignStatusPending, pending.Status)
	require.NotNil(t, pending.SubmittedAt)
	assert.True(t, pending.SubmittedAt.Equal(f.now))
	assert.Equal(t, "pi_submit-1", pending.Payment.TransactionID)
	assert.Equal(t, int64(2), pending.Version)

	history := f.store.StateHistory(pending.CampaignID)
	require.Len(t, history, 2)
	assert.Equal(t, entities.CampaignStatusDraft, history[1].FromState)
	assert.Equal(t, entities.CampaignStatusPending, history[1].ToState)
}

func TestSubmitRequiresSucceededPayment(t *testing.T) {
	f := newFixture(t)
	draft := f.createDraft(t, "submit-failed")
	payment := succeededPayment("pi_failed")
	payment.Status = entities.PaymentStatusFailed

	_, err := f.submit.Execute(context.Background(), SubmitCampaignCommand{
		CampaignID: draft.CampaignID,
		ActorID:    draft.UserID,
		Payment:    payment,
	})
	require.ErrorIs(t, err, domainerrors.ErrPaymentRequired)

	stored, err := f.store.GetCampaign(context.Background(), draft.CampaignID)
	require.NoError(t, err)
	assert.Equal(t, entities.CampaignStatusDraft, stored.Status)
}

func TestSubmitRejectsPaymentThatDoesNotCoverBudget(t *testing.T) {
	f := newFixture(t)
	draft := f.createDraft(t, "submit-underpaid")
	payment := succeededPayment("pi_underpaid")
	payment.Amount = 1

	_, err := f.submit.Execute(context.Background(), SubmitCampaignCommand{
		CampaignID: draft.CampaignID,
		ActorID:    draft.UserID,
		Payment:    payment,
	})
	require.ErrorIs(t, err, domainerrors.ErrPaymentAmountMismatch)

	stored, err := f.store.GetCampaign(context.Background(), draft.CampaignID)
	require.NoError(t, err)
	assert.Equal(t, entities.CampaignStatusDraft, stored.Status)
	assert.Empty(t, stored.Payment.TransactionID)

	payment.Amount = 500.001
	_, err = f.submit.Execute(context.Background(), SubmitCampaignCommand{
		CampaignID: draft.CampaignID,
		ActorID:    draft.UserID,
		Payment:    payment,
	})
	require.NoError(t, err)
}

func TestSubmitRejectsTransactionOfAnotherCampaign(t *testing.T) {
	f := newFixture(t)
	paid := f.createPending(t, "submit-paid")
	other := f.createDraft(t, "submit-reuse")

	_, err := f.submit.Execute(context.Background(), SubmitCampaignCommand{
		CampaignID: other.CampaignID,
		ActorID:    other.UserID,
		Payment:    succeededPayment(paid.Payment.TransactionID),
	})
	require.ErrorIs(t, err, domainerrors.ErrPaymentAlreadyApplied)

	stored, err := f.store.GetCampaign(context.Background(), other.CampaignID)
	require.NoError(t, err)
	assert.Equal(t, entities.CampaignStatusDraft, stored.Status)
}

func TestSubmitRejectsOtherUsers(t *testing.T) {
	f := newFixture(t)
	draft := f.createDraft(t, "submit-owner")

	_, err := f.submit.Execute(context.Background(), SubmitCampaignCommand{
		CampaignID: draft.CampaignID,
		ActorID:    "someone-else",
		Payment:    succeededPayment("pi_owner"),
	})
	require.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestSubmitReplayWithSameTransactionIsNoop(t *testing.T) {
	f := newFixture(t)
	pending := f.createPending(t, "submit-replay")

	result, err := f.submit.Execute(context.Background(), SubmitCampaignCommand{
		CampaignID: pending.CampaignID,
		ActorID:    pending.UserID,
		Payment:    succeededPayment("pi_submit-replay"),
	})
	require.NoError(t, err)
	assert.True(t, result.Replayed)
	assert.Equal(t, pending.Version, result.Campaign.Version)

	_, err = f.submit.Execute(context.Background(), SubmitCampaignCommand{
		CampaignID: pending.CampaignID,
		ActorID:    pending.UserID,
		Payment:    succeededPayment("pi_other"),
	})
	require.ErrorIs(t, err, domainerrors.ErrInvalidStateTransition)
}

func TestApproveSetsSchedule(t *testing.T) {
	f := newFixture(t)
	pending := f.createPending(t, "approve-1")

	active, err := f.validate.Approve(context.Background(), pending.CampaignID, "admin-1", "looks good", nil)
	require.NoError(t, err)

	assert.Equal(t, entities.CampaignStatusActive, active.Status)
	assert.True(t, active.IsValidated)
	assert.Equal(t, "admin-1", active.ValidatedBy)
	require.NotNil(t, active.StartDate)
	require.NotNil(t, active.EndDate)
	assert.True(t, active.StartDate.Equal(f.now))
	assert.True(t, active.EndDate.Equal(f.now.AddDate(0, 0, 30)))
}

func TestRejectRequiresNotes(t *testing.T) {
	f := newFixture(t)
	pending := f.createPending(t, "reject-1")

	_, err := f.validate.Reject(context.Background(), pending.CampaignID, "admin-1", "   ", nil)
	require.ErrorIs(t, err, domainerrors.ErrRejectionNotesRequired)

	rejected, err := f.validate.Reject(context.Background(), pending.CampaignID, "admin-1", "audio link broken", nil)
	require.NoError(t, err)
	assert.Equal(t, entities.CampaignStatusRejected, rejected.Status)
	assert.False(t, rejected.IsValidated)
	assert.Equal(t, "audio link broken", rejected.AdminNotes)
	assert.Nil(t, rejected.StartDate)
}

func TestReviewRequiresAdminAndPendingStatus(t *testing.T) {
	f := newFixture(t)
	draft := f.createDraft(t, "review-draft")

	_, err := f.validate.Approve(context.Background(), draft.CampaignID, "", "", nil)
	require.ErrorIs(t, err, domainerrors.ErrUnauthorizedActor)

	_, err = f.validate.Approve(context.Background(), draft.CampaignID, "admin-1", "", nil)
	require.ErrorIs(t, err, domainerrors.ErrInvalidStateTransition)
}

func TestSecondReviewerLosesOnStaleVersion(t *testing.T) {
	f := newFixture(t)
	pending := f.createPending(t, "review-race")
	seenVersion := pending.Version

	_, err := f.validate.Approve(context.Background(), pending.CampaignID, "admin-1", "", &seenVersion)
	require.NoError(t, err)

	_, err = f.validate.Reject(context.Background(), pending.CampaignID, "admin-2", "duplicate", &seenVersion)
	require.ErrorIs(t, err, domainerrors.ErrCampaignVersionConflict)

	stored, err := f.store.GetCampaign(context.Background(), pending.CampaignID)
	require.NoError(t, err)
	assert.Equal(t, entities.CampaignStatusActive, stored.Status)
}

func TestStoreRejectsStaleVersionWrite(t *testing.T) {
	f := newFixture(t)
	draft := f.createDraft(t, "stale-write")

	stale := draft
	stale.AdminNotes = "stale"
	stale.Version = draft.Version + 1
	require.NoError(t, f.store.UpdateCampaign(context.Background(), stale, draft.Version))

	stale.AdminNotes = "second"
	err := f.store.UpdateCampaign(context.Background(), stale, draft.Version)
	require.ErrorIs(t, err, domainerrors.ErrCampaignVersionConflict)
}

func TestCompleteOnlyFromActive(t *testing.T) {
	f := newFixture(t)
	pending := f.createPending(t, "complete-1")

	_, err := f.complete.Execute(context.Background(), CompleteCampaignCommand{CampaignID: pending.CampaignID, ActorID: "admin-1"})
	require.ErrorIs(t, err, domainerrors.ErrInvalidStateTransition)

	_, err = f.validate.Approve(context.Background(), pending.CampaignID, "admin-1", "", nil)
	require.NoError(t, err)
	completed, err := f.complete.Execute(context.Background(), CompleteCampaignCommand{CampaignID: pending.CampaignID, ActorID: "admin-1"})
	require.NoError(t, err)
	assert.Equal(t, entities.CampaignStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)

	assert.Equal(t, []string{
		EventCampaignCreated,
		EventCampaignSubmitted,
		EventCampaignApproved,
		EventCampaignCompleted,
	}, f.store.OutboxEventTypes())
}

func TestAddVideoRequiresLiveCampaign(t *testing.T) {
	f := newFixture(t)
	pending := f.createPending(t, "video-pending")

	_, err := f.addVideo.Execute(context.Background(), AddVideoCommand{
		CampaignID: pending.CampaignID,
		ActorID:    "ops-1",
		URL:        "https://www.tiktok.com/@dancer/video/7301",
	})
	require.ErrorIs(t, err, domainerrors.ErrCampaignNotLive)
}

func TestVideoLifecycleRecomputesMetrics(t *testing.T) {
	f := newFixture(t)
	pending := f.createPending(t, "video-live")
	_, err := f.validate.Approve(context.Background(), pending.CampaignID, "admin-1", "", nil)
	require.NoError(t, err)
	f.store.SetFollows(pending.CampaignID, 12)

	video, err := f.addVideo.Execute(context.Background(), AddVideoCommand{
		CampaignID: pending.CampaignID,
		ActorID:    "ops-1",
		URL:        "https://www.tiktok.com/@dancer/video/7301",
		Metrics:    entities.VideoMetrics{Views: 1000, Likes: 100, Comments: 10, Shares: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, "7301", video.TikTokID)
	assert.Equal(t, "dancer", video.CreatorUsername)
	assert.Equal(t, entities.VideoStatusLive, video.Status)

	summary, found, err := f.store.GetMetrics(context.Background(), pending.CampaignID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(1000), summary.Views)
	assert.Equal(t, 11.5, summary.Engagement)
	assert.Equal(t, int64(12), summary.Follows)
	require.Len(t, summary.DailyMetrics, 1)

	_, err = f.update.Execute(context.Background(), UpdateVideoMetricsCommand{
		CampaignID: pending.CampaignID,
		VideoID:    video.VideoID,
		ActorID:    "ops-1",
		Metrics:    entities.VideoMetrics{Views: 2000, Likes: 100},
	})
	require.NoError(t, err)
	summary, _, err = f.store.GetMetrics(context.Background(), pending.CampaignID)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), summary.Views)
	assert.Equal(t, 5.0, summary.Engagement)

	require.NoError(t, f.remove.Execute(context.Background(), DeleteVideoCommand{
		CampaignID: pending.CampaignID,
		VideoID:    video.VideoID,
		ActorID:    "ops-1",
	}))
	summary, _, err = f.store.GetMetrics(context.Background(), pending.CampaignID)
	require.NoError(t, err)
	assert.Zero(t, summary.Views)
	assert.Empty(t, summary.DailyMetrics)
	assert.Equal(t, int64(12), summary.Follows)
}

func TestUpdateVideoMetricsRejectsNegativeCounts(t *testing.T) {
	f := newFixture(t)
	_, err := f.update.Execute(context.Background(), UpdateVideoMetricsCommand{
		VideoID: "missing",
		ActorID: "ops-1",
		Metrics: entities.VideoMetrics{Views: -1},
	})
	require.ErrorIs(t, err, domainerrors.ErrInvalidVideoInput)
}

func TestParseTikTokURL(t *testing.T) {
	id, user, err := parseTikTokURL("https://www.tiktok.com/@neon.tide/video/7301234?is_from_webapp=1")
	require.NoError(t, err)
	assert.Equal(t, "7301234", id)
	assert.Equal(t, "neon.tide", user)

	id, user, err = parseTikTokURL("https://vm.tiktok.com/ZMabc123/")
	require.NoError(t, err)
	assert.Equal(t, "ZMabc123", id)
	assert.Empty(t, user)

	_, _, err = parseTikTokURL("https://youtube.com/watch?v=1")
	require.ErrorIs(t, err, domainerrors.ErrInvalidVideoURL)
}
