package postgresadapter

import (
	"strings"
	"time"

	"soundtik/contexts/campaign-promotion/campaign-service/domain/entities"
)

type campaignModel struct {
	CampaignID       string     `gorm:"column:campaign_id;primaryKey"`
	UserID           string     `gorm:"column:user_id;index"`
	SongTitle        string     `gorm:"column:song_title"`
	SongGenre        string     `gorm:"column:song_genre"`
	SongMood         string     `gorm:"column:song_mood"`
	SongReleaseDate  string     `gorm:"column:song_release_date"`
	SongAudioURL     string     `gorm:"column:song_audio_url"`
	SongCoverArtURL  string     `gorm:"column:song_cover_art_url"`
	SongLyrics       string     `gorm:"column:song_lyrics"`
	ArtistName       string     `gorm:"column:artist_name"`
	ArtistBio        string     `gorm:"column:artist_bio"`
	ArtistInstagram  string     `gorm:"column:artist_instagram"`
	ArtistTikTok     string     `gorm:"column:artist_tiktok"`
	ArtistSpotify    string     `gorm:"column:artist_spotify"`
	ArtistYouTube    string     `gorm:"column:artist_youtube"`
	ArtistPressKit   string     `gorm:"column:artist_press_kit"`
	Budget           float64    `gorm:"column:budget"`
	DurationDays     int        `gorm:"column:duration_days"`
	CreatorTypes     []string   `gorm:"column:creator_types;type:jsonb;serializer:json"`
	AudienceAge      []string   `gorm:"column:audience_age;type:jsonb;serializer:json"`
	PreferredStyles  []string   `gorm:"column:preferred_styles;type:jsonb;serializer:json"`
	TargetingNotes   string     `gorm:"column:targeting_notes"`
	PaymentProcessor string     `gorm:"column:payment_processor;uniqueIndex:idx_campaigns_payment_txn,priority:1,where:payment_transaction_id <> ''"`
	TransactionID    string     `gorm:"column:payment_transaction_id;uniqueIndex:idx_campaigns_payment_txn,priority:2,where:payment_transaction_id <> ''"`
	PaymentAmount    float64    `gorm:"column:payment_amount"`
	PaymentStatus    string     `gorm:"column:payment_status"`
	PayerEmail       string     `gorm:"column:payment_payer_email"`
	PaidAt           *time.Time `gorm:"column:paid_at"`
	Status           string     `gorm:"column:status;index"`
	AdminNotes       string     `gorm:"column:admin_notes"`
	IsValidated      bool       `gorm:"column:is_validated"`
	ValidatedBy      string     `gorm:"column:validated_by"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
	SubmittedAt      *time.Time `gorm:"column:submitted_at"`
	ValidatedAt      *time.Time `gorm:"column:validated_at"`
	StartDate        *time.Time `gorm:"column:start_date"`
	EndDate          *time.Time `gorm:"column:end_date;index"`
	CompletedAt      *time.Time `gorm:"column:completed_at"`
	Version          int64      `gorm:"column:version"`
}

func (campaignModel) TableName() string {
	return "campaigns"
}

func campaignModelFromEntity(item entities.Campaign) campaignModel {
	return campaignModel{
		CampaignID:       strings.TrimSpace(item.CampaignID),
		UserID:           strings.TrimSpace(item.UserID),
		SongTitle:        item.Song.Title,
		SongGenre:        item.Song.Genre,
		SongMood:         item.Song.Mood,
		SongReleaseDate:  item.Song.ReleaseDate,
		SongAudioURL:     item.Song.AudioURL,
		SongCoverArtURL:  item.Song.CoverArtURL,
		SongLyrics:       item.Song.Lyrics,
		ArtistName:       item.Artist.Name,
		ArtistBio:        item.Artist.Bio,
		ArtistInstagram:  item.Artist.SocialLinks.Instagram,
		ArtistTikTok:     item.Artist.SocialLinks.TikTok,
		ArtistSpotify:    item.Artist.SocialLinks.Spotify,
		ArtistYouTube:    item.Artist.SocialLinks.YouTube,
		ArtistPressKit:   item.Artist.PressKit,
		Budget:           item.Budget,
		DurationDays:     item.DurationDays,
		CreatorTypes:     entities.CopyOrEmpty(item.Targeting.CreatorTypes),
		AudienceAge:      entities.CopyOrEmpty(item.Targeting.AudienceAge),
		PreferredStyles:  entities.CopyOrEmpty(item.Targeting.PreferredStyles),
		TargetingNotes:   item.Targeting.Notes,
		PaymentProcessor: string(item.Payment.Processor),
		TransactionID:    item.Payment.TransactionID,
		PaymentAmount:    item.Payment.Amount,
		PaymentStatus:    string(item.Payment.Status),
		PayerEmail:       item.Payment.PayerEmail,
		PaidAt:           entities.NormalizeOptionalTime(item.Payment.PaidAt),
		Status:           string(item.Status),
		AdminNotes:       item.AdminNotes,
		IsValidated:      item.IsValidated,
		ValidatedBy:      item.ValidatedBy,
		CreatedAt:        item.CreatedAt.UTC(),
		UpdatedAt:        item.UpdatedAt.UTC(),
		SubmittedAt:      entities.NormalizeOptionalTime(item.SubmittedAt),
		ValidatedAt:      entities.NormalizeOptionalTime(item.ValidatedAt),
		StartDate:        entities.NormalizeOptionalTime(item.StartDate),
		EndDate:          entities.NormalizeOptionalTime(item.EndDate),
		CompletedAt:      entities.NormalizeOptionalTime(item.CompletedAt),
		Version:          item.Version,
	}
}

// campaignUpdatesFromEntity lists the mutable columns. Identity, owner and
// creation time never change after insert.
func campaignUpdatesFromEntity(item entities.Campaign) map[string]any {
	row := campaignModelFromEntity(item)
	return map[string]any{
		"budget":                 row.Budget,
		"duration_days":          row.DurationDays,
		"payment_processor":      row.PaymentProcessor,
		"payment_transaction_id": row.TransactionID,
		"payment_amount":         row.PaymentAmount,
		"payment_status":         row.PaymentStatus,
		"payment_payer_email":    row.PayerEmail,
		"paid_at":                row.PaidAt,
		"status":                 row.Status,
		"admin_notes":            row.AdminNotes,
		"is_validated":           row.IsValidated,
		"validated_by":           row.ValidatedBy,
		"updated_at":             row.UpdatedAt,
		"submitted_at":           row.SubmittedAt,
		"validated_at":           row.ValidatedAt,
		"start_date":             row.StartDate,
		"end_date":               row.EndDate,
		"completed_at":           row.CompletedAt,
		"version":                row.Version,
	}
}

func (m campaignModel) toEntity() entities.Campaign {
	return entities.Campaign{
		CampaignID: m.CampaignID,
		UserID:     m.UserID,
		Song: entities.SongDetails{
			Title:       m.SongTitle,
			Genre:       m.SongGenre,
			Mood:        m.SongMood,
			ReleaseDate: m.SongReleaseDate,
			AudioURL:    m.SongAudioURL,
			CoverArtURL: m.SongCoverArtURL,
			Lyrics:      m.SongLyrics,
		},
		Artist: entities.ArtistDetails{
			Name: m.ArtistName,
			Bio:  m.ArtistBio,
			SocialLinks: entities.SocialLinks{
				Instagram: m.ArtistInstagram,
				TikTok:    m.ArtistTikTok,
				Spotify:   m.ArtistSpotify,
				YouTube:   m.ArtistYouTube,
			},
			PressKit: m.ArtistPressKit,
		},
		Budget:       m.Budget,
		DurationDays: m.DurationDays,
		Targeting: entities.CreatorTargeting{
			CreatorTypes:    m.CreatorTypes,
			AudienceAge:     m.AudienceAge,
			PreferredStyles: m.PreferredStyles,
			Notes:           m.TargetingNotes,
		},
		Payment: entities.Payment{
			Processor:     entities.PaymentProcessor(m.PaymentProcessor),
			TransactionID: m.TransactionID,
			Amount:        m.PaymentAmount,
			Status:        entities.PaymentStatus(m.PaymentStatus),
			PayerEmail:    m.PayerEmail,
			PaidAt:        m.PaidAt,
		},
		Status:      entities.CampaignStatus(m.Status),
		AdminNotes:  m.AdminNotes,
		IsValidated: m.IsValidated,
		ValidatedBy: m.ValidatedBy,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		SubmittedAt: m.SubmittedAt,
		ValidatedAt: m.ValidatedAt,
		StartDate:   m.StartDate,
		EndDate:     m.EndDate,
		CompletedAt: m.CompletedAt,
		Version:     m.Version,
	}.Normalize()
}

type videoModel struct {
	VideoID         string    `gorm:"column:video_id;primaryKey"`
	CampaignID      string    `gorm:"column:campaign_id;index"`
	TikTokID        string    `gorm:"column:tiktok_id"`
	URL             string    `gorm:"column:url"`
	Thumbnail       string    `gorm:"column:thumbnail"`
	Caption         string    `gorm:"column:caption"`
	CreatorUsername string    `gorm:"column:creator_username"`
	Views           int64     `gorm:"column:views"`
	Likes           int64     `gorm:"column:likes"`
	Comments        int64     `gorm:"column:comments"`
	Shares          int64     `gorm:"column:shares"`
	Status          string    `gorm:"column:status"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (videoModel) TableName() string {
	return "campaign_videos"
}

func videoModelFromEntity(item entities.Video) videoModel {
	return videoModel{
		VideoID:         strings.TrimSpace(item.VideoID),
		CampaignID:      strings.TrimSpace(item.CampaignID),
		TikTokID:        item.TikTokID,
		URL:             item.URL,
		Thumbnail:       item.Thumbnail,
		Caption:         item.Caption,
		CreatorUsername: item.CreatorUsername,
		Views:           item.Metrics.Views,
		Likes:           item.Metrics.Likes,
		Comments:        item.Metrics.Comments,
		Shares:          item.Metrics.Shares,
		Status:          string(item.Status),
		CreatedAt:       item.CreatedAt.UTC(),
		UpdatedAt:       item.UpdatedAt.UTC(),
	}
}

func (m videoModel) toEntity() entities.Video {
	return entities.Video{
		VideoID:         m.VideoID,
		CampaignID:      m.CampaignID,
		TikTokID:        m.TikTokID,
		URL:             m.URL,
		Thumbnail:       m.Thumbnail,
		Caption:         m.Caption,
		CreatorUsername: m.CreatorUsername,
		Metrics: entities.VideoMetrics{
			Views:    m.Views,
			Likes:    m.Likes,
			Comments: m.Comments,
			Shares:   m.Shares,
		},
		Status:    entities.VideoStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}.Normalize()
}

type metricsModel struct {
	CampaignID string    `gorm:"column:campaign_id;primaryKey"`
	Views      int64     `gorm:"column:views"`
	Likes      int64     `gorm:"column:likes"`
	Comments   int64     `gorm:"column:comments"`
	Shares     int64     `gorm:"column:shares"`
	Follows    int64     `gorm:"column:follows"`
	Engagement float64   `gorm:"column:engagement"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (metricsModel) TableName() string {
	return "campaign_metrics"
}

type dailyMetricModel struct {
	CampaignID string  `gorm:"column:campaign_id;primaryKey"`
	Date       string  `gorm:"column:metric_date;primaryKey"`
	Views      int64   `gorm:"column:views"`
	Likes      int64   `gorm:"column:likes"`
	Comments   int64   `gorm:"column:comments"`
	Shares     int64   `gorm:"column:shares"`
	Engagement float64 `gorm:"column:engagement"`
}

func (dailyMetricModel) TableName() string {
	return "campaign_daily_metrics"
}

type stateHistoryModel struct {
	HistoryID    string    `gorm:"column:history_id;primaryKey"`
	CampaignID   string    `gorm:"column:campaign_id;index"`
	FromState    string    `gorm:"column:from_state"`
	ToState      string    `gorm:"column:to_state"`
	ChangedBy    string    `gorm:"column:changed_by"`
	ChangeReason string    `gorm:"column:change_reason"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (stateHistoryModel) TableName() string {
	return "campaign_state_history"
}

type idempotencyModel struct {
	Key             string    `gorm:"column:key;primaryKey"`
	RequestHash     string    `gorm:"column:request_hash"`
	ResponsePayload []byte    `gorm:"column:response_payload"`
	ExpiresAt       time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string {
	return "campaign_idempotency"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "campaign_outbox"
}

type eventDedupModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	PayloadHash string    `gorm:"column:payload_hash"`
	ExpiresAt   time.Time `gorm:"column:expires_at"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (eventDedupModel) TableName() string {
	return "campaign_event_dedup"
}

func allModels() []any {
	return []any{
		&campaignModel{},
		&videoModel{},
		&metricsModel{},
		&dailyMetricModel{},
		&stateHistoryModel{},
		&idempotencyModel{},
		&outboxModel{},
		&eventDedupModel{},
	}
}
