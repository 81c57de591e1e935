package entities

import (
	"bytes"
	"encoding/json"
	"fmt"

	domainerrors "soundtik/contexts/campaign-promotion/wizard-service/domain/errors"
)

const (
	SectionSongDetails     = "song_details"
	SectionArtistDetails   = "artist_details"
	SectionCampaignDetails = "campaign_details"
	SectionPaymentDetails  = "payment_details"

	SubsectionSocialLinks      = "social_links"
	SubsectionCreatorTargeting = "creator_targeting"
)

// ApplySectionPatch shallow-merges partial into the named section. Keys in
// partial replace the section's keys; nested objects are replaced whole.
// On error the draft is returned unchanged.
func ApplySectionPatch(draft Draft, section string, partial map[string]json.RawMessage) (Draft, error) {
	out := draft.Clone()
	var err error
	switch section {
	case SectionSongDetails:
		err = mergeInto(&out.SongDetails, partial)
	case SectionArtistDetails:
		err = mergeInto(&out.ArtistDetails, partial)
	case SectionCampaignDetails:
		err = mergeInto(&out.CampaignDetails, partial)
	case SectionPaymentDetails:
		err = mergeInto(&out.PaymentDetails, partial)
	default:
		err = fmt.Errorf("%w: %s", domainerrors.ErrUnknownSection, section)
	}
	if err != nil {
		return draft, err
	}
	return out.Clone(), nil
}

// ApplySubsectionPatch is ApplySectionPatch one level deeper.
func ApplySubsectionPatch(draft Draft, section string, subsection string, partial map[string]json.RawMessage) (Draft, error) {
	out := draft.Clone()
	var err error
	switch {
	case section == SectionArtistDetails && subsection == SubsectionSocialLinks:
		err = mergeInto(&out.ArtistDetails.SocialLinks, partial)
	case section == SectionCampaignDetails && subsection == SubsectionCreatorTargeting:
		err = mergeInto(&out.CampaignDetails.CreatorTargeting, partial)
	default:
		err = fmt.Errorf("%w: %s.%s", domainerrors.ErrUnknownSection, section, subsection)
	}
	if err != nil {
		return draft, err
	}
	return out.Clone(), nil
}

// mergeInto rebuilds target from its current fields overlaid with partial.
// Unknown keys and values of the wrong shape reject the whole patch.
func mergeInto[T any](target *T, partial map[string]json.RawMessage) error {
	current, err := json.Marshal(target)
	if err != nil {
		return err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(current, &fields); err != nil {
		return err
	}
	for key, value := range partial {
		if _, ok := fields[key]; !ok {
			return fmt.Errorf("%w: unknown field %q", domainerrors.ErrInvalidPatch, key)
		}
		fields[key] = value
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrInvalidPatch, err)
	}

	var next T
	decoder := json.NewDecoder(bytes.NewReader(merged))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&next); err != nil {
		return fmt.Errorf("%w: %v", domainerrors.ErrInvalidPatch, err)
	}
	*target = next
	return nil
}
