package firestoreadapter

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"soundtik/contexts/campaign-promotion/campaign-service/domain/entities"
)

const (
	campaignsCollection   = "campaigns"
	metricsCollection     = "campaignMetrics"
	dailyMetricsSubpath   = "dailyMetrics"
	videosCollection      = "videos"
	historyCollection     = "campaignStateHistory"
	idempotencyCollection = "campaignIdempotency"
	outboxCollection      = "campaignOutbox"
	dedupCollection       = "campaignEventDedup"
	paymentsCollection    = "campaignPayments"
)

// paymentClaimDoc pins one processor transaction to the campaign it paid for.
type paymentClaimDoc struct {
	CampaignID    string    `firestore:"campaignId"`
	Processor     string    `firestore:"processor"`
	TransactionID string    `firestore:"transactionId"`
	ClaimedAt     time.Time `firestore:"claimedAt"`
}

// paymentClaimID hashes the pair because transaction ids may contain '/'.
func paymentClaimID(processor string, transactionID string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(processor) + "\x00" + transactionID))
	return hex.EncodeToString(sum[:])
}

type socialLinksDoc struct {
	Instagram string `firestore:"instagram"`
	TikTok    string `firestore:"tiktok"`
	Spotify   string `firestore:"spotify"`
	YouTube   string `firestore:"youtube"`
}

type songDoc struct {
	Title       string `firestore:"title"`
	Genre       string `firestore:"genre"`
	Mood        string `firestore:"mood"`
	ReleaseDate string `firestore:"releaseDate"`
	AudioURL    string `firestore:"audioUrl"`
	CoverArtURL string `firestore:"coverArtUrl"`
	Lyrics      string `firestore:"lyrics"`
}

type artistDoc struct {
	Name        string         `firestore:"name"`
	Bio         string         `firestore:"bio"`
	SocialLinks socialLinksDoc `firestore:"socialLinks"`
	PressKit    string         `firestore:"pressKit"`
}

type targetingDoc struct {
	CreatorTypes    []string `firestore:"creatorTypes"`
	AudienceAge     []string `firestore:"audienceAge"`
	PreferredStyles []string `firestore:"preferredStyles"`
	Notes           string   `firestore:"notes"`
}

type paymentDoc struct {
	Processor     string     `firestore:"processor"`
	TransactionID string     `firestore:"transactionId"`
	Amount        float64    `firestore:"amount"`
	Status        string     `firestore:"status"`
	PayerEmail    string     `firestore:"payerEmail"`
	PaidAt        *time.Time `firestore:"paidAt"`
}

type campaignDoc struct {
	UserID       string       `firestore:"userId"`
	Song         songDoc      `firestore:"songDetails"`
	Artist       artistDoc    `firestore:"artistDetails"`
	Budget       float64      `firestore:"budget"`
	DurationDays int          `firestore:"duration"`
	Targeting    targetingDoc `firestore:"creatorTargeting"`
	Payment      paymentDoc   `firestore:"paymentDetails"`
	Status       string       `firestore:"status"`
	AdminNotes   string       `firestore:"adminNotes"`
	IsValidated  bool         `firestore:"isValidated"`
	ValidatedBy  string       `firestore:"validatedBy"`
	CreatedAt    time.Time    `firestore:"createdAt"`
	UpdatedAt    time.Time    `firestore:"updatedAt"`
	SubmittedAt  *time.Time   `firestore:"submittedAt"`
	ValidatedAt  *time.Time   `firestore:"validatedAt"`
	StartDate    *time.Time   `firestore:"startDate"`
	EndDate      *time.Time   `firestore:"endDate"`
	CompletedAt  *time.Time   `firestore:"completedAt"`
	Version      int64        `firestore:"version"`
}

func campaignDocFromEntity(item entities.Campaign) campaignDoc {
	return campaignDoc{
		UserID: item.UserID,
		Song: songDoc{
			Title:       item.Song.Title,
			Genre:       item.Song.Genre,
			Mood:        item.Song.Mood,
			ReleaseDate: item.Song.ReleaseDate,
			AudioURL:    item.Song.AudioURL,
			CoverArtURL: item.Song.CoverArtURL,
			Lyrics:      item.Song.Lyrics,
		},
		Artist: artistDoc{
			Name: item.Artist.Name,
			Bio:  item.Artist.Bio,
			SocialLinks: socialLinksDoc{
				Instagram: item.Artist.SocialLinks.Instagram,
				TikTok:    item.Artist.SocialLinks.TikTok,
				Spotify:   item.Artist.SocialLinks.Spotify,
				YouTube:   item.Artist.SocialLinks.YouTube,
			},
			PressKit: item.Artist.PressKit,
		},
		Budget:       item.Budget,
		DurationDays: item.DurationDays,
		Targeting: targetingDoc{
			CreatorTypes:    entities.CopyOrEmpty(item.Targeting.CreatorTypes),
			AudienceAge:     entities.CopyOrEmpty(item.Targeting.AudienceAge),
			PreferredStyles: entities.CopyOrEmpty(item.Targeting.PreferredStyles),
			Notes:           item.Targeting.Notes,
		},
		Payment: paymentDoc{
			Processor:     string(item.Payment.Processor),
			TransactionID: item.Payment.TransactionID,
			Amount:        item.Payment.Amount,
			Status:        string(item.Payment.Status),
			PayerEmail:    item.Payment.PayerEmail,
			PaidAt:        entities.NormalizeOptionalTime(item.Payment.PaidAt),
		},
		Status:      string(item.Status),
		AdminNotes:  item.AdminNotes,
		IsValidated: item.IsValidated,
		ValidatedBy: item.ValidatedBy,
		CreatedAt:   item.CreatedAt.UTC(),
		UpdatedAt:   item.UpdatedAt.UTC(),
		SubmittedAt: entities.NormalizeOptionalTime(item.SubmittedAt),
		ValidatedAt: entities.NormalizeOptionalTime(item.ValidatedAt),
		StartDate:   entities.NormalizeOptionalTime(item.StartDate),
		EndDate:     entities.NormalizeOptionalTime(item.EndDate),
		CompletedAt: entities.NormalizeOptionalTime(item.CompletedAt),
		Version:     item.Version,
	}
}

func (d campaignDoc) toEntity(campaignID string) entities.Campaign {
	return entities.Campaign{
		CampaignID: campaignID,
		UserID:     d.UserID,
		Song: entities.SongDetails{
			Title:       d.Song.Title,
			Genre:       d.Song.Genre,
			Mood:        d.Song.Mood,
			ReleaseDate: d.Song.ReleaseDate,
			AudioURL:    d.Song.AudioURL,
			CoverArtURL: d.Song.CoverArtURL,
			Lyrics:      d.Song.Lyrics,
		},
		Artist: entities.ArtistDetails{
			Name: d.Artist.Name,
			Bio:  d.Artist.Bio,
			SocialLinks: entities.SocialLinks{
				Instagram: d.Artist.SocialLinks.Instagram,
				TikTok:    d.Artist.SocialLinks.TikTok,
				Spotify:   d.Artist.SocialLinks.Spotify,
				YouTube:   d.Artist.SocialLinks.YouTube,
			},
			PressKit: d.Artist.PressKit,
		},
		Budget:       d.Budget,
		DurationDays: d.DurationDays,
		Targeting: entities.CreatorTargeting{
			CreatorTypes:    d.Targeting.CreatorTypes,
			AudienceAge:     d.Targeting.AudienceAge,
			PreferredStyles: d.Targeting.PreferredStyles,
			Notes:           d.Targeting.Notes,
		},
		Payment: entities.Payment{
			Processor:     entities.PaymentProcessor(d.Payment.Processor),
			TransactionID: d.Payment.TransactionID,
			Amount:        d.Payment.Amount,
			Status:        entities.PaymentStatus(d.Payment.Status),
			PayerEmail:    d.Payment.PayerEmail,
			PaidAt:        d.Payment.PaidAt,
		},
		Status:      entities.CampaignStatus(d.Status),
		AdminNotes:  d.AdminNotes,
		IsValidated: d.IsValidated,
		ValidatedBy: d.ValidatedBy,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
		SubmittedAt: d.SubmittedAt,
		ValidatedAt: d.ValidatedAt,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		CompletedAt: d.CompletedAt,
		Version:     d.Version,
	}.Normalize()
}

type videoMetricsDoc struct {
	Views    int64 `firestore:"views"`
	Likes    int64 `firestore:"likes"`
	Comments int64 `firestore:"comments"`
	Shares   int64 `firestore:"shares"`
}

type videoDoc struct {
	CampaignID      string          `firestore:"campaignId"`
	TikTokID        string          `firestore:"tiktokId"`
	URL             string          `firestore:"url"`
	Thumbnail       string          `firestore:"thumbnail"`
	Caption         string          `firestore:"caption"`
	CreatorUsername string          `firestore:"creatorUsername"`
	Metrics         videoMetricsDoc `firestore:"metrics"`
	Status          string          `firestore:"status"`
	CreatedAt       time.Time       `firestore:"createdAt"`
	UpdatedAt       time.Time       `firestore:"updatedAt"`
}

func videoDocFromEntity(item entities.Video) videoDoc {
	return videoDoc{
		CampaignID:      item.CampaignID,
		TikTokID:        item.TikTokID,
		URL:             item.URL,
		Thumbnail:       item.Thumbnail,
		Caption:         item.Caption,
		CreatorUsername: item.CreatorUsername,
		Metrics: videoMetricsDoc{
			Views:    item.Metrics.Views,
			Likes:    item.Metrics.Likes,
			Comments: item.Metrics.Comments,
			Shares:   item.Metrics.Shares,
		},
		Status:    string(item.Status),
		CreatedAt: item.CreatedAt.UTC(),
		UpdatedAt: item.UpdatedAt.UTC(),
	}
}

func (d videoDoc) toEntity(videoID string) entities.Video {
	return entities.Video{
		VideoID:         videoID,
		CampaignID:      d.CampaignID,
		TikTokID:        d.TikTokID,
		URL:             d.URL,
		Thumbnail:       d.Thumbnail,
		Caption:         d.Caption,
		CreatorUsername: d.CreatorUsername,
		Metrics: entities.VideoMetrics{
			Views:    d.Metrics.Views,
			Likes:    d.Metrics.Likes,
			Comments: d.Metrics.Comments,
			Shares:   d.Metrics.Shares,
		},
		Status:    entities.VideoStatus(d.Status),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}.Normalize()
}

type metricsDoc struct {
	Views      int64     `firestore:"views"`
	Likes      int64     `firestore:"likes"`
	Comments   int64     `firestore:"comments"`
	Shares     int64     `firestore:"shares"`
	Follows    int64     `firestore:"follows"`
	Engagement float64   `firestore:"engagement"`
	UpdatedAt  time.Time `firestore:"updatedAt"`
}

type dailyMetricDoc struct {
	Date       string  `firestore:"date"`
	Views      int64   `firestore:"views"`
	Likes      int64   `firestore:"likes"`
	Comments   int64   `firestore:"comments"`
	Shares     int64   `firestore:"shares"`
	Engagement float64 `firestore:"engagement"`
}

type historyDoc struct {
	CampaignID   string    `firestore:"campaignId"`
	FromState    string    `firestore:"fromState"`
	ToState      string    `firestore:"toState"`
	ChangedBy    string    `firestore:"changedBy"`
	ChangeReason string    `firestore:"changeReason"`
	CreatedAt    time.Time `firestore:"createdAt"`
}

type idempotencyDoc struct {
	RequestHash     string    `firestore:"requestHash"`
	ResponsePayload []byte    `firestore:"responsePayload"`
	ExpiresAt       time.Time `firestore:"expiresAt"`
}

type outboxDoc struct {
	EventType    string     `firestore:"eventType"`
	PartitionKey string     `firestore:"partitionKey"`
	Payload      []byte     `firestore:"payload"`
	Status       string     `firestore:"status"`
	CreatedAt    time.Time  `firestore:"createdAt"`
	PublishedAt  *time.Time `firestore:"publishedAt"`
}

type dedupDoc struct {
	PayloadHash string    `firestore:"payloadHash"`
	ExpiresAt   time.Time `firestore:"expiresAt"`
	ProcessedAt time.Time `firestore:"processedAt"`
}
