package entities

import "strings"

const (
	DefaultBudget       = 200.0
	DefaultDurationDays = 30
	MinBudget           = 200.0
	MinDurationDays     = 7
)

const (
	ProcessorStripe = "stripe"
	ProcessorPayPal = "paypal"

	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"

	CurrencyUSD = "USD"
)

type SongDetails struct {
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	Mood        string `json:"mood"`
	ReleaseDate string `json:"release_date"`
	AudioURL    string `json:"audio_url"`
	CoverArtURL string `json:"cover_art_url"`
	Lyrics      string `json:"lyrics"`
}

type SocialLinks struct {
	Instagram string `json:"instagram"`
	TikTok    string `json:"tiktok"`
	Spotify   string `json:"spotify"`
	YouTube   string `json:"youtube"`
}

type ArtistDetails struct {
	Name        string      `json:"name"`
	Bio         string      `json:"bio"`
	SocialLinks SocialLinks `json:"social_links"`
	PressKit    string      `json:"press_kit"`
}

type CreatorTargeting struct {
	CreatorTypes    []string `json:"creator_types"`
	AudienceAge     []string `json:"audience_age"`
	PreferredStyles []string `json:"preferred_styles"`
	Notes           string   `json:"notes"`
}

type CampaignDetails struct {
	Budget           float64          `json:"budget"`
	Duration         int              `json:"duration"`
	CreatorTargeting CreatorTargeting `json:"creator_targeting"`
}

type PaymentDetails struct {
	Processor string  `json:"processor"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
}

// Draft is the in-progress campaign a wizard session edits. The json
// tags double as the section and field names patches address.
type Draft struct {
	SongDetails     SongDetails     `json:"song_details"`
	ArtistDetails   ArtistDetails   `json:"artist_details"`
	CampaignDetails CampaignDetails `json:"campaign_details"`
	PaymentDetails  PaymentDetails  `json:"payment_details"`
}

func DefaultDraft() Draft {
	return Draft{
		CampaignDetails: CampaignDetails{
			Budget:   DefaultBudget,
			Duration: DefaultDurationDays,
			CreatorTargeting: CreatorTargeting{
				CreatorTypes:    []string{},
				AudienceAge:     []string{},
				PreferredStyles: []string{},
			},
		},
	}
}

// Clone returns a copy that shares no slices with d. Nil lists come back
// empty.
func (d Draft) Clone() Draft {
	out := d
	targeting := d.CampaignDetails.CreatorTargeting
	out.CampaignDetails.CreatorTargeting.CreatorTypes = copyOrEmpty(targeting.CreatorTypes)
	out.CampaignDetails.CreatorTargeting.AudienceAge = copyOrEmpty(targeting.AudienceAge)
	out.CampaignDetails.CreatorTargeting.PreferredStyles = copyOrEmpty(targeting.PreferredStyles)
	return out
}

func IsSupportedProcessor(processor string) bool {
	switch strings.ToLower(strings.TrimSpace(processor)) {
	case ProcessorStripe, ProcessorPayPal:
		return true
	default:
		return false
	}
}

func copyOrEmpty(items []string) []string {
	if len(items) == 0 {
		return []string{}
	}
	out := make([]string, len(items))
	copy(out, items)
	return out
}
