package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "soundtik/contexts/campaign-promotion/campaign-service/application"
	"soundtik/contexts/campaign-promotion/campaign-service/domain/entities"
	domainerrors "soundtik/contexts/campaign-promotion/campaign-service/domain/errors"
	"soundtik/contexts/campaign-promotion/campaign-service/ports"
)

type CreateCampaignCommand struct {
	UserID         string
	IdempotencyKey string
	Song           entities.SongDetails
	Artist         entities.ArtistDetails
	Budget         float64
	DurationDays   int
	Targeting      entities.CreatorTargeting
	Processor      entities.PaymentProcessor
}

type CreateCampaignUseCase struct {
	Campaigns      ports.CampaignRepository
	History        ports.HistoryRepository
	Idempotency    ports.IdempotencyStore
	Outbox         ports.OutboxWriter
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
}

type CreateCampaignResult struct {
	Campaign entities.Campaign
	Replayed bool
}

func (uc CreateCampaignUseCase) Execute(ctx context.Context, cmd CreateCampaignCommand) (CreateCampaignResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.IdempotencyKey) == "" {
		return CreateCampaignResult{}, domainerrors.ErrIdempotencyKeyRequired
	}

	now := uc.Clock.Now().UTC()
	requestHash := hashCreateCampaignCommand(cmd)
	if record, found, err := uc.Idempotency.GetRecord(ctx, cmd.IdempotencyKey, now); err != nil {
		return CreateCampaignResult{}, err
	} else if found {
		if record.RequestHash != requestHash {
			return CreateCampaignResult{}, domainerrors.ErrIdempotencyKeyConflict
		}
		var replayed entities.Campaign
		if err := json.Unmarshal(record.ResponsePayload, &replayed); err != nil {
			return CreateCampaignResult{}, err
		}
		return CreateCampaignResult{Campaign: replayed.Normalize(), Replayed: true}, nil
	}

	campaignID, err := uc.IDGenerator.NewID(ctx)
	if err != nil {
		return CreateCampaignResult{}, err
	}
	campaign := entities.Campaign{
		CampaignID:   campaignID,
		UserID:       strings.TrimSpace(cmd.UserID),
		Song:         trimSong(cmd.Song),
		Artist:       trimArtist(cmd.Artist),
		Budget:       cmd.Budget,
		DurationDays: cmd.DurationDays,
		Targeting: entities.CreatorTargeting{
			CreatorTypes:    entities.CopyOrEmpty(cmd.Targeting.CreatorTypes),
			AudienceAge:     entities.CopyOrEmpty(cmd.Targeting.AudienceAge),
			PreferredStyles: entities.CopyOrEmpty(cmd.Targeting.PreferredStyles),
			Notes:           strings.TrimSpace(cmd.Targeting.Notes),
		},
		Payment: entities.Payment{
			Processor: entities.PaymentProcessor(strings.ToLower(strings.TrimSpace(string(cmd.Processor)))),
			Amount:    cmd.Budget,
			Status:    entities.PaymentStatusPending,
		},
		Status:    entities.CampaignStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
	if !campaign.ValidateBasics() {
		return CreateCampaignResult{}, domainerrors.ErrInvalidCampaignInput
	}
	if campaign.Payment.Processor != "" && !entities.IsSupportedProcessor(campaign.Payment.Processor) {
		return CreateCampaignResult{}, domainerrors.ErrInvalidCampaignInput
	}

	if err := uc.Campaigns.CreateCampaign(ctx, campaign); err != nil {
		return CreateCampaignResult{}, err
	}
	if err := recordTransition(ctx, uc.History, uc.Outbox, uc.IDGenerator, transition{
		CampaignID: campaign.CampaignID,
		To:         entities.CampaignStatusDraft,
		ActorID:    campaign.UserID,
		Reason:     "campaign_created",
		EventType:  EventCampaignCreated,
		Data: map[string]any{
			"user_id":       campaign.UserID,
			"song_title":    campaign.Song.Title,
			"budget":        campaign.Budget,
			"duration_days": campaign.DurationDays,
		},
		At: now,
	}); err != nil {
		return CreateCampaignResult{}, err
	}

	payload, err := json.Marshal(campaign)
	if err != nil {
		return CreateCampaignResult{}, err
	}
	if err := uc.Idempotency.PutRecord(ctx, ports.IdempotencyRecord{
		Key:             cmd.IdempotencyKey,
		RequestHash:     requestHash,
		ResponsePayload: payload,
		ExpiresAt:       now.Add(uc.idempotencyTTL()),
	}); err != nil {
		return CreateCampaignResult{}, err
	}

	logger.Info("campaign created",
		"event", "campaign_created",
		"module", "campaign-promotion/campaign-service",
		"layer", "application",
		"campaign_id", campaign.CampaignID,
		"user_id", campaign.UserID,
		"budget", campaign.Budget,
		"duration_days", campaign.DurationDays,
	)
	return CreateCampaignResult{Campaign: campaign}, nil
}

func (uc CreateCampaignUseCase) idempotencyTTL() time.Duration {
	if uc.IdempotencyTTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return uc.IdempotencyTTL
}

func trimSong(song entities.SongDetails) entities.SongDetails {
	return entities.SongDetails{
		Title:       strings.TrimSpace(song.Title),
		Genre:       strings.TrimSpace(song.Genre),
		Mood:        strings.TrimSpace(song.Mood),
		ReleaseDate: strings.TrimSpace(song.ReleaseDate),
		AudioURL:    strings.TrimSpace(song.AudioURL),
		CoverArtURL: strings.TrimSpace(song.CoverArtURL),
		Lyrics:      song.Lyrics,
	}
}

func trimArtist(artist entities.ArtistDetails) entities.ArtistDetails {
	return entities.ArtistDetails{
		Name: strings.TrimSpace(artist.Name),
		Bio:  strings.TrimSpace(artist.Bio),
		SocialLinks: entities.SocialLinks{
			Instagram: strings.TrimSpace(artist.SocialLinks.Instagram),
			TikTok:    strings.TrimSpace(artist.SocialLinks.TikTok),
			Spotify:   strings.TrimSpace(artist.SocialLinks.Spotify),
			YouTube:   strings.TrimSpace(artist.SocialLinks.YouTube),
		},
		PressKit: strings.TrimSpace(artist.PressKit),
	}
}

func hashCreateCampaignCommand(cmd CreateCampaignCommand) string {
	payload := map[string]any{
		"user_id":          strings.TrimSpace(cmd.UserID),
		"song":             trimSong(cmd.Song),
		"artist":           trimArtist(cmd.Artist),
		"budget":           cmd.Budget,
		"duration_days":    cmd.DurationDays,
		"creator_types":    entities.CopyOrEmpty(cmd.Targeting.CreatorTypes),
		"audience_age":     entities.CopyOrEmpty(cmd.Targeting.AudienceAge),
		"preferred_styles": entities.CopyOrEmpty(cmd.Targeting.PreferredStyles),
		"notes":            strings.TrimSpace(cmd.Targeting.Notes),
		"processor":        strings.ToLower(strings.TrimSpace(string(cmd.Processor))),
	}
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
