package entities

import (
	"math"
	"strings"
	"time"
)

type CampaignStatus string
type PaymentProcessor string
type PaymentStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusPending   CampaignStatus = "pending"
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusRejected  CampaignStatus = "rejected"

	PaymentProcessorStripe PaymentProcessor = "stripe"
	PaymentProcessorPayPal PaymentProcessor = "paypal"

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

const (
	MinBudget           = 200.0
	MinDurationDays     = 7
	DefaultBudget       = 200.0
	DefaultDurationDays = 30
)

type SocialLinks struct {
	Instagram string
	TikTok    string
	Spotify   string
	YouTube   string
}

type SongDetails struct {
	Title       string
	Genre       string
	Mood        string
	ReleaseDate string
	AudioURL    string
	CoverArtURL string
	Lyrics      string
}

type ArtistDetails struct {
	Name        string
	Bio         string
	SocialLinks SocialLinks
	PressKit    string
}

type CreatorTargeting struct {
	CreatorTypes    []string
	AudienceAge     []string
	PreferredStyles []string
	Notes           string
}

type Payment struct {
	Processor     PaymentProcessor
	TransactionID string
	Amount        float64
	Status        PaymentStatus
	PayerEmail    string
	PaidAt        *time.Time
}

type Campaign struct {
	CampaignID   string
	UserID       string
	Song         SongDetails
	Artist       ArtistDetails
	Budget       float64
	DurationDays int
	Targeting    CreatorTargeting
	Payment      Payment
	Status       CampaignStatus
	AdminNotes   string
	IsValidated  bool
	ValidatedBy  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	SubmittedAt  *time.Time
	ValidatedAt  *time.Time
	StartDate    *time.Time
	EndDate      *time.Time
	CompletedAt  *time.Time
	Version      int64
}

type StateHistory struct {
	HistoryID    string
	CampaignID   string
	FromState    CampaignStatus
	ToState      CampaignStatus
	ChangedBy    string
	ChangeReason string
	CreatedAt    time.Time
}

// ValidateBasics applies the same required fields as the wizard steps, so a
// campaign created directly cannot skip what the wizard would have asked for.
func (c Campaign) ValidateBasics() bool {
	return strings.TrimSpace(c.UserID) != "" &&
		strings.TrimSpace(c.Song.Title) != "" &&
		strings.TrimSpace(c.Song.Genre) != "" &&
		strings.TrimSpace(c.Song.AudioURL) != "" &&
		strings.TrimSpace(c.Artist.Name) != "" &&
		hasNonBlank(c.Targeting.CreatorTypes) &&
		c.Budget >= MinBudget &&
		c.DurationDays >= MinDurationDays
}

// PaymentCovers reports whether amount equals the budget to the cent.
func (c Campaign) PaymentCovers(amount float64) bool {
	return toCents(amount) == toCents(c.Budget)
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func hasNonBlank(items []string) bool {
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			return true
		}
	}
	return false
}

// Normalize fills the zero values older rows and documents may carry.
func (c Campaign) Normalize() Campaign {
	if c.Status == "" {
		c.Status = CampaignStatusDraft
	}
	c.Targeting.CreatorTypes = CopyOrEmpty(c.Targeting.CreatorTypes)
	c.Targeting.AudienceAge = CopyOrEmpty(c.Targeting.AudienceAge)
	c.Targeting.PreferredStyles = CopyOrEmpty(c.Targeting.PreferredStyles)
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	c.SubmittedAt = NormalizeOptionalTime(c.SubmittedAt)
	c.ValidatedAt = NormalizeOptionalTime(c.ValidatedAt)
	c.StartDate = NormalizeOptionalTime(c.StartDate)
	c.EndDate = NormalizeOptionalTime(c.EndDate)
	c.CompletedAt = NormalizeOptionalTime(c.CompletedAt)
	c.Payment.PaidAt = NormalizeOptionalTime(c.Payment.PaidAt)
	return c
}

func IsSupportedStatus(value CampaignStatus) bool {
	switch value {
	case CampaignStatusDraft, CampaignStatusPending, CampaignStatusActive, CampaignStatusCompleted, CampaignStatusRejected:
		return true
	default:
		return false
	}
}

func IsSupportedProcessor(value PaymentProcessor) bool {
	return value == PaymentProcessorStripe || value == PaymentProcessorPayPal
}

// CanTransition reports whether the lifecycle allows moving from one status to another.
func CanTransition(from CampaignStatus, to CampaignStatus) bool {
	switch from {
	case CampaignStatusDraft:
		return to == CampaignStatusPending
	case CampaignStatusPending:
		return to == CampaignStatusActive || to == CampaignStatusRejected
	case CampaignStatusActive:
		return to == CampaignStatusCompleted
	default:
		return false
	}
}

func CopyOrEmpty(items []string) []string {
	if len(items) == 0 {
		return []string{}
	}
	return append([]string(nil), items...)
}

func NormalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil || value.IsZero() {
		return nil
	}
	normalized := value.UTC()
	return &normalized
}

// StatusLabel is the human readable status shown on the dashboard.
func StatusLabel(status CampaignStatus) string {
	switch status {
	case CampaignStatusDraft:
		return "Draft"
	case CampaignStatusPending:
		return "Pending Review"
	case CampaignStatusActive:
		return "Active"
	case CampaignStatusCompleted:
		return "Completed"
	case CampaignStatusRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}
