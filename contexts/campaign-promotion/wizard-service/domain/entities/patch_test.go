package entities

import (
	"encoding/json"
	"errors"
	"testing"

	domainerrors "soundtik/contexts/campaign-promotion/wizard-service/domain/errors"
)

func raw(t *testing.T, fields map[string]any) map[string]json.RawMessage {
	t.Helper()
	out := make(map[string]json.RawMessage, len(fields))
	for key, value := range fields {
		encoded, err := json.Marshal(value)
		if err != nil {
			t.Fatalf("marshal %s: %v", key, err)
		}
		out[key] = encoded
	}
	return out
}

func TestApplySectionPatchMergesShallowly(t *testing.T) {
	draft := DefaultDraft()
	draft.SongDetails.Genre = "pop"

	next, err := ApplySectionPatch(draft, SectionSongDetails, raw(t, map[string]any{"title": "Neon"}))
	if err != nil {
		t.Fatalf("apply patch: %v", err)
	}
	if next.SongDetails.Title != "Neon" || next.SongDetails.Genre != "pop" {
		t.Fatalf("expected title set and genre kept, got %+v", next.SongDetails)
	}
	if draft.SongDetails.Title != "" {
		t.Fatalf("expected input draft to stay untouched")
	}
}

func TestApplySectionPatchReplacesNestedObjects(t *testing.T) {
	draft := DefaultDraft()
	draft.ArtistDetails.SocialLinks = SocialLinks{Instagram: "@old", Spotify: "spotify:old"}

	next, err := ApplySectionPatch(draft, SectionArtistDetails, raw(t, map[string]any{
		"social_links": map[string]string{"tiktok": "@new"},
	}))
	if err != nil {
		t.Fatalf("apply patch: %v", err)
	}
	want := SocialLinks{TikTok: "@new"}
	if next.ArtistDetails.SocialLinks != want {
		t.Fatalf("expected nested object replaced wholesale, got %+v", next.ArtistDetails.SocialLinks)
	}
}

func TestApplySubsectionPatchMergesOneLevelDeeper(t *testing.T) {
	draft := DefaultDraft()
	draft.CampaignDetails.CreatorTargeting.Notes = "keep"

	next, err := ApplySubsectionPatch(draft, SectionCampaignDetails, SubsectionCreatorTargeting, raw(t, map[string]any{
		"creator_types": []string{"dancers"},
		"audience_age":  nil,
	}))
	if err != nil {
		t.Fatalf("apply nested patch: %v", err)
	}
	targeting := next.CampaignDetails.CreatorTargeting
	if len(targeting.CreatorTypes) != 1 || targeting.Notes != "keep" {
		t.Fatalf("unexpected targeting: %+v", targeting)
	}
	if targeting.AudienceAge == nil {
		t.Fatalf("expected null list to come back empty, not nil")
	}
	if next.CampaignDetails.Budget != DefaultBudget {
		t.Fatalf("expected budget untouched, got %v", next.CampaignDetails.Budget)
	}
}

func TestApplySectionPatchRejectsUnknownInput(t *testing.T) {
	draft := DefaultDraft()

	if _, err := ApplySectionPatch(draft, "shipping", nil); !errors.Is(err, domainerrors.ErrUnknownSection) {
		t.Fatalf("expected ErrUnknownSection, got %v", err)
	}
	if _, err := ApplySubsectionPatch(draft, SectionSongDetails, "social_links", nil); !errors.Is(err, domainerrors.ErrUnknownSection) {
		t.Fatalf("expected ErrUnknownSection for bad subsection, got %v", err)
	}
	if _, err := ApplySectionPatch(draft, SectionSongDetails, raw(t, map[string]any{"tempo": 120})); !errors.Is(err, domainerrors.ErrInvalidPatch) {
		t.Fatalf("expected ErrInvalidPatch for unknown field, got %v", err)
	}
	next, err := ApplySectionPatch(draft, SectionCampaignDetails, raw(t, map[string]any{"budget": "lots"}))
	if !errors.Is(err, domainerrors.ErrInvalidPatch) {
		t.Fatalf("expected ErrInvalidPatch for wrong type, got %v", err)
	}
	if next.CampaignDetails.Budget != DefaultBudget {
		t.Fatalf("expected draft unchanged after a rejected patch")
	}
}

func TestDefaultDraft(t *testing.T) {
	draft := DefaultDraft()
	if draft.CampaignDetails.Budget != 200 || draft.CampaignDetails.Duration != 30 {
		t.Fatalf("unexpected defaults: %+v", draft.CampaignDetails)
	}
	targeting := draft.CampaignDetails.CreatorTargeting
	if targeting.CreatorTypes == nil || targeting.AudienceAge == nil || targeting.PreferredStyles == nil {
		t.Fatalf("expected empty non-nil lists")
	}
	if draft.PaymentDetails != (PaymentDetails{}) {
		t.Fatalf("expected empty payment details, got %+v", draft.PaymentDetails)
	}
}

func TestStepBounds(t *testing.T) {
	if !StepPayment.Valid() || Step(StepCount).Valid() || Step(-1).Valid() {
		t.Fatalf("unexpected step bounds")
	}
	if StepBudget.String() != "budget" {
		t.Fatalf("unexpected step name %q", StepBudget.String())
	}
}
