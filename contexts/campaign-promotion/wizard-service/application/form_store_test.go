package application

import (
	"encoding/json"
	"errors"
	"testing"

	"soundtik/contexts/campaign-promotion/wizard-service/adapters/validation"
	"soundtik/contexts/campaign-promotion/wizard-service/domain/entities"
	domainerrors "soundtik/contexts/campaign-promotion/wizard-service/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFormStore() *FormStore {
	return NewFormStore(validation.NewStepValidator(), entities.DefaultWizardState())
}

func patch(t *testing.T, body string) map[string]json.RawMessage {
	t.Helper()
	out := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

func TestFormStoreValidateStepPopulatesErrors(t *testing.T) {
	store := newTestFormStore()

	assert.False(t, store.ValidateStep(entities.StepSongDetails))
	assert.Len(t, store.Snapshot().Errors, 3)

	require.NoError(t, store.UpdateFormData(entities.SectionSongDetails, patch(t, `{"title":"Neon","genre":"pop","audio_url":"https://cdn.example/neon.mp3"}`)))
	assert.True(t, store.ValidateStep(entities.StepSongDetails))
	assert.Empty(t, store.Snapshot().Errors)
}

func TestFormStoreBudgetStepRule(t *testing.T) {
	store := newTestFormStore()
	assert.True(t, store.ValidateStep(entities.StepBudget), "defaults pass the budget step")

	require.NoError(t, store.UpdateFormData(entities.SectionCampaignDetails, patch(t, `{"budget":150}`)))
	assert.False(t, store.ValidateStep(entities.StepBudget))
	assert.Contains(t, store.Snapshot().Errors, "budget")
	assert.NotContains(t, store.Snapshot().Errors, "duration")
}

func TestFormStoreStepNavigationBounds(t *testing.T) {
	store := newTestFormStore()

	require.ErrorIs(t, store.PrevStep(), domainerrors.ErrInvalidStep)
	require.NoError(t, store.NextStep())
	require.NoError(t, store.GoToStep(entities.StepPayment))
	require.ErrorIs(t, store.NextStep(), domainerrors.ErrInvalidStep)
	require.ErrorIs(t, store.GoToStep(entities.Step(7)), domainerrors.ErrInvalidStep)
	assert.Equal(t, entities.StepPayment, store.Snapshot().Step)
}

func TestFormStoreResetRestoresDefaults(t *testing.T) {
	store := newTestFormStore()
	require.NoError(t, store.UpdateFormData(entities.SectionCampaignDetails, patch(t, `{"budget":900,"duration":60}`)))
	require.NoError(t, store.UpdateNestedFormData(entities.SectionCampaignDetails, entities.SubsectionCreatorTargeting, patch(t, `{"creator_types":["dancers"]}`)))
	require.NoError(t, store.GoToStep(entities.StepTargeting))
	store.ValidateStep(entities.StepSongDetails)

	store.ResetForm()

	state := store.Snapshot()
	assert.Equal(t, entities.StepSongDetails, state.Step)
	assert.Equal(t, 200.0, state.Draft.CampaignDetails.Budget)
	assert.Equal(t, 30, state.Draft.CampaignDetails.Duration)
	assert.Equal(t, []string{}, state.Draft.CampaignDetails.CreatorTargeting.CreatorTypes)
	assert.Empty(t, state.Errors)
}

func TestFormStoreResetStartsNextDraftGeneration(t *testing.T) {
	store := newTestFormStore()
	first := store.Snapshot().Generation

	store.ResetForm()
	assert.Equal(t, first+1, store.Snapshot().Generation)

	store.ResetForm()
	assert.Equal(t, first+2, store.Snapshot().Generation)
}

func TestFormStoreSubscribersSeeEveryMutation(t *testing.T) {
	store := newTestFormStore()
	var seen []entities.Step
	unsubscribe := store.Subscribe(func(state entities.WizardState) {
		seen = append(seen, state.Step)
	})

	require.NoError(t, store.NextStep())
	require.ErrorIs(t, store.UpdateFormData("unknown", nil), domainerrors.ErrUnknownSection)
	require.NoError(t, store.NextStep())
	unsubscribe()
	require.NoError(t, store.NextStep())

	assert.Equal(t, []entities.Step{entities.StepArtistDetails, entities.StepBudget}, seen)
}

func TestFormStoreSnapshotsAreDetached(t *testing.T) {
	store := newTestFormStore()
	require.NoError(t, store.UpdateNestedFormData(entities.SectionCampaignDetails, entities.SubsectionCreatorTargeting, patch(t, `{"creator_types":["dancers"]}`)))

	snapshot := store.Snapshot()
	snapshot.Draft.CampaignDetails.CreatorTargeting.CreatorTypes[0] = "mutated"
	snapshot.Errors["x"] = "y"

	fresh := store.Snapshot()
	assert.Equal(t, "dancers", fresh.Draft.CampaignDetails.CreatorTargeting.CreatorTypes[0])
	assert.NotContains(t, fresh.Errors, "x")
}

func TestFormStoreLocksContentAfterCheckout(t *testing.T) {
	store := newTestFormStore()
	store.beginCheckout("camp-1")

	err := store.UpdateFormData(entities.SectionCampaignDetails, patch(t, `{"budget":5000}`))
	require.True(t, errors.Is(err, domainerrors.ErrDraftLocked))
	require.NoError(t, store.UpdateFormData(entities.SectionPaymentDetails, patch(t, `{"processor":"paypal"}`)))

	state := store.Snapshot()
	assert.Equal(t, 200.0, state.Draft.PaymentDetails.Amount)
	assert.Equal(t, entities.PaymentStatusPending, state.Draft.PaymentDetails.Status)
	assert.Equal(t, "paypal", state.Draft.PaymentDetails.Processor)
}
