package http

type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type SocialLinksDTO struct {
	Instagram string `json:"instagram"`
	TikTok    string `json:"tiktok"`
	Spotify   string `json:"spotify"`
	YouTube   string `json:"youtube"`
}

type SongDetailsDTO struct {
	Title       string `json:"title" validate:"required"`
	Genre       string `json:"genre" validate:"required"`
	Mood        string `json:"mood"`
	ReleaseDate string `json:"release_date"`
	AudioURL    string `json:"audio_url" validate:"required,url"`
	CoverArtURL string `json:"cover_art_url" validate:"omitempty,url"`
	Lyrics      string `json:"lyrics"`
}

type ArtistDetailsDTO struct {
	Name        string         `json:"name" validate:"required"`
	Bio         string         `json:"bio"`
	SocialLinks SocialLinksDTO `json:"social_links"`
	PressKit    string         `json:"press_kit"`
}

type CreatorTargetingDTO struct {
	CreatorTypes    []string `json:"creator_types" validate:"min=1"`
	AudienceAge     []string `json:"audience_age"`
	PreferredStyles []string `json:"preferred_styles"`
	Notes           string   `json:"notes"`
}

type PaymentDTO struct {
	Processor     string  `json:"processor"`
	TransactionID string  `json:"transaction_id"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
	PayerEmail    string  `json:"payer_email,omitempty"`
	PaidAt        string  `json:"paid_at,omitempty"`
}

type CreateCampaignRequest struct {
	SongDetails      SongDetailsDTO      `json:"song_details"`
	ArtistDetails    ArtistDetailsDTO    `json:"artist_details"`
	Budget           float64             `json:"budget" validate:"gte=200"`
	Duration         int                 `json:"duration" validate:"gte=7"`
	CreatorTargeting CreatorTargetingDTO `json:"creator_targeting"`
	Processor        string              `json:"processor" validate:"omitempty,oneof=stripe paypal"`
}

type ReviewCampaignRequest struct {
	Notes           string `json:"notes"`
	ExpectedVersion *int64 `json:"expected_version"`
}

type CompleteCampaignRequest struct {
	Reason          string `json:"reason"`
	ExpectedVersion *int64 `json:"expected_version"`
}

type CampaignDTO struct {
	CampaignID       string              `json:"campaign_id"`
	UserID           string              `json:"user_id"`
	SongDetails      SongDetailsDTO      `json:"song_details"`
	ArtistDetails    ArtistDetailsDTO    `json:"artist_details"`
	Budget           float64             `json:"budget"`
	Duration         int                 `json:"duration"`
	CreatorTargeting CreatorTargetingDTO `json:"creator_targeting"`
	Payment          PaymentDTO          `json:"payment"`
	Status           string              `json:"status"`
	StatusLabel      string              `json:"status_label"`
	AdminNotes       string              `json:"admin_notes,omitempty"`
	IsValidated      bool                `json:"is_validated"`
	ValidatedBy      string              `json:"validated_by,omitempty"`
	CreatedAt        string              `json:"created_at"`
	UpdatedAt        string              `json:"updated_at"`
	SubmittedAt      string              `json:"submitted_at,omitempty"`
	ValidatedAt      string              `json:"validated_at,omitempty"`
	StartDate        string              `json:"start_date,omitempty"`
	EndDate          string              `json:"end_date,omitempty"`
	CompletedAt      string              `json:"completed_at,omitempty"`
	Version          int64               `json:"version"`
}

type CreateCampaignResponse struct {
	Campaign CampaignDTO `json:"campaign"`
	Replayed bool        `json:"replayed"`
}

type ListCampaignsResponse struct {
	Items []CampaignDTO `json:"items"`
}

type GetCampaignResponse struct {
	Campaign CampaignDTO `json:"campaign"`
}

type DailyMetricDTO struct {
	Date       string  `json:"date"`
	Views      int64   `json:"views"`
	Likes      int64   `json:"likes"`
	Comments   int64   `json:"comments"`
	Shares     int64   `json:"shares"`
	Engagement float64 `json:"engagement"`
}

type MetricsDTO struct {
	CampaignID   string           `json:"campaign_id"`
	Views        int64            `json:"views"`
	Likes        int64            `json:"likes"`
	Comments     int64            `json:"comments"`
	Shares       int64            `json:"shares"`
	Follows      int64            `json:"follows"`
	Engagement   float64          `json:"engagement"`
	DailyMetrics []DailyMetricDTO `json:"daily_metrics"`
	UpdatedAt    string           `json:"updated_at,omitempty"`
}

type GetMetricsResponse struct {
	Metrics MetricsDTO `json:"metrics"`
}

type VideoMetricsDTO struct {
	Views    int64 `json:"views" validate:"gte=0"`
	Likes    int64 `json:"likes" validate:"gte=0"`
	Comments int64 `json:"comments" validate:"gte=0"`
	Shares   int64 `json:"shares" validate:"gte=0"`
}

type VideoDTO struct {
	VideoID         string          `json:"video_id"`
	CampaignID      string          `json:"campaign_id"`
	TikTokID        string          `json:"tiktok_id"`
	URL             string          `json:"url"`
	Thumbnail       string          `json:"thumbnail,omitempty"`
	Caption         string          `json:"caption,omitempty"`
	CreatorUsername string          `json:"creator_username"`
	Metrics         VideoMetricsDTO `json:"metrics"`
	Status          string          `json:"status"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

type AddVideoRequest struct {
	URL             string          `json:"url" validate:"required,url"`
	TikTokID        string          `json:"tiktok_id"`
	Thumbnail       string          `json:"thumbnail" validate:"omitempty,url"`
	Caption         string          `json:"caption"`
	CreatorUsername string          `json:"creator_username"`
	Metrics         VideoMetricsDTO `json:"metrics"`
}

type UpdateVideoMetricsRequest struct {
	Metrics VideoMetricsDTO `json:"metrics"`
	Status  string          `json:"status" validate:"omitempty,oneof=live removed"`
}

type VideoResponse struct {
	Video VideoDTO `json:"video"`
}

type ListVideosResponse struct {
	Items []VideoDTO `json:"items"`
}

type ReachEstimateDTO struct {
	Low  int64 `json:"low"`
	Mid  int64 `json:"mid"`
	High int64 `json:"high"`
}

type DashboardResponse struct {
	Campaign      CampaignDTO      `json:"campaign"`
	Metrics       MetricsDTO       `json:"metrics"`
	Videos        []VideoDTO       `json:"videos"`
	Reach         ReachEstimateDTO `json:"reach"`
	StatusLabel   string           `json:"status_label"`
	DaysRemaining int              `json:"days_remaining"`
}
