package http

import "encoding/json"

type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type SongDetailsDTO struct {
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	Mood        string `json:"mood"`
	ReleaseDate string `json:"release_date"`
	AudioURL    string `json:"audio_url"`
	CoverArtURL string `json:"cover_art_url"`
	Lyrics      string `json:"lyrics"`
}

type SocialLinksDTO struct {
	Instagram string `json:"instagram"`
	TikTok    string `json:"tiktok"`
	Spotify   string `json:"spotify"`
	YouTube   string `json:"youtube"`
}

type ArtistDetailsDTO struct {
	Name        string         `json:"name"`
	Bio         string         `json:"bio"`
	SocialLinks SocialLinksDTO `json:"social_links"`
	PressKit    string         `json:"press_kit"`
}

type CreatorTargetingDTO struct {
	CreatorTypes    []string `json:"creator_types"`
	AudienceAge     []string `json:"audience_age"`
	PreferredStyles []string `json:"preferred_styles"`
	Notes           string   `json:"notes"`
}

type CampaignDetailsDTO struct {
	Budget           float64             `json:"budget"`
	Duration         int                 `json:"duration"`
	CreatorTargeting CreatorTargetingDTO `json:"creator_targeting"`
}

type PaymentDetailsDTO struct {
	Processor string  `json:"processor"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
}

type DraftDTO struct {
	SongDetails     SongDetailsDTO     `json:"song_details"`
	ArtistDetails   ArtistDetailsDTO   `json:"artist_details"`
	CampaignDetails CampaignDetailsDTO `json:"campaign_details"`
	PaymentDetails  PaymentDetailsDTO  `json:"payment_details"`
}

type SessionDTO struct {
	SessionID    string            `json:"session_id"`
	Step         int               `json:"step"`
	StepName     string            `json:"step_name"`
	Phase        string            `json:"phase"`
	Draft        DraftDTO          `json:"draft"`
	Errors       map[string]string `json:"errors"`
	CampaignID   string            `json:"campaign_id,omitempty"`
	LastError    string            `json:"last_error,omitempty"`
	RedirectPath string            `json:"redirect_path,omitempty"`
	Version      int64             `json:"version"`
	ExpiresAt    string            `json:"expires_at"`
}

type SessionResponse struct {
	Session SessionDTO `json:"session"`
}

// SectionPatchRequest is a partial JSON object merged into one draft
// section.
type SectionPatchRequest map[string]json.RawMessage

type StepRequest struct {
	Step *int `json:"step" validate:"required"`
}

type ValidateStepResponse struct {
	Valid   bool       `json:"valid"`
	Session SessionDTO `json:"session"`
}

type CheckoutResponse struct {
	CampaignID string     `json:"campaign_id"`
	Amount     float64    `json:"amount"`
	Currency   string     `json:"currency"`
	Processor  string     `json:"processor"`
	Session    SessionDTO `json:"session"`
}

type CompletePaymentRequest struct {
	Processor     string `json:"processor" validate:"omitempty,oneof=stripe paypal"`
	TransactionID string `json:"transaction_id" validate:"required"`
	Succeeded     bool   `json:"succeeded"`
	ErrorMessage  string `json:"error_message"`
	PayerEmail    string `json:"payer_email" validate:"omitempty,email"`
}

type PaymentReceiptDTO struct {
	Processor     string  `json:"processor"`
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	PayerEmail    string  `json:"payer_email,omitempty"`
	ConfirmedAt   string  `json:"confirmed_at"`
}

type CompletePaymentResponse struct {
	CampaignID   string            `json:"campaign_id"`
	RedirectPath string            `json:"redirect_path"`
	Receipt      PaymentReceiptDTO `json:"receipt"`
	Session      SessionDTO        `json:"session"`
}
