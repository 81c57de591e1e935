package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"soundtik/contexts/campaign-promotion/campaign-service/application/commands"
	"soundtik/contexts/campaign-promotion/campaign-service/application/queries"
	"soundtik/contexts/campaign-promotion/campaign-service/domain/entities"
	domainerrors "soundtik/contexts/campaign-promotion/campaign-service/domain/errors"
	httptransport "soundtik/contexts/campaign-promotion/campaign-service/transport/http"
)

type Handler struct {
	CreateCampaign       commands.CreateCampaignUseCase
	SubmitCampaign       commands.SubmitCampaignUseCase
	ValidateCampaign     commands.ValidateCampaignUseCase
	CompleteCampaign     commands.CompleteCampaignUseCase
	AddVideo             commands.AddVideoUseCase
	UpdateVideoMetrics   commands.UpdateVideoMetricsUseCase
	DeleteVideo          commands.DeleteVideoUseCase
	GetCampaign          queries.GetCampaignUseCase
	ListCampaigns        queries.ListCampaignsUseCase
	ListPendingCampaigns queries.ListPendingCampaignsUseCase
	GetMetrics           queries.GetCampaignMetricsUseCase
	GetVideos            queries.GetCampaignVideosUseCase
	GetDashboard         queries.GetDashboardUseCase
	Logger               *slog.Logger
}

func (h Handler) CreateCampaignHandler(
	ctx context.Context,
	userID string,
	idempotencyKey string,
	req httptransport.CreateCampaignRequest,
) (httptransport.CreateCampaignResponse, error) {
	if err := validateRequest(req, domainerrors.ErrInvalidCampaignInput); err != nil {
		return httptransport.CreateCampaignResponse{}, err
	}
	result, err := h.CreateCampaign.Execute(ctx, commands.CreateCampaignCommand{
		UserID:         userID,
		IdempotencyKey: idempotencyKey,
		Song:           songFromDTO(req.SongDetails),
		Artist:         artistFromDTO(req.ArtistDetails),
		Budget:         req.Budget,
		DurationDays:   req.Duration,
		Targeting:      targetingFromDTO(req.CreatorTargeting),
		Processor:      entities.PaymentProcessor(strings.ToLower(strings.TrimSpace(req.Processor))),
	})
	if err != nil {
		return httptransport.CreateCampaignResponse{}, err
	}
	return httptransport.CreateCampaignResponse{
		Campaign: MapCampaign(result.Campaign),
		Replayed: result.Replayed,
	}, nil
}

func (h Handler) ListCampaignsHandler(
	ctx context.Context,
	userID string,
	status string,
	limit int,
) (httptransport.ListCampaignsResponse, error) {
	items, err := h.ListCampaigns.Execute(ctx, queries.ListCampaignsQuery{
		UserID: userID,
		Status: status,
		Limit:  limit,
	})
	if err != nil {
		return httptransport.ListCampaignsResponse{}, err
	}
	return httptransport.ListCampaignsResponse{Items: mapCampaigns(items)}, nil
}

func (h Handler) GetCampaignHandler(ctx context.Context, userID string, campaignID string) (httptransport.GetCampaignResponse, error) {
	item, err := h.GetCampaign.ExecuteForOwner(ctx, campaignID, userID)
	if err != nil {
		return httptransport.GetCampaignResponse{}, err
	}
	return httptransport.GetCampaignResponse{Campaign: MapCampaign(item)}, nil
}

func (h Handler) GetMetricsHandler(ctx context.Context, userID string, campaignID string) (httptransport.GetMetricsResponse, error) {
	campaign, err := h.GetCampaign.ExecuteForOwner(ctx, campaignID, userID)
	if err != nil {
		return httptransport.GetMetricsResponse{}, err
	}
	summary, err := h.GetMetrics.Execute(ctx, campaign.CampaignID)
	if err != nil {
		return httptransport.GetMetricsResponse{}, err
	}
	return httptransport.GetMetricsResponse{Metrics: MapMetrics(summary)}, nil
}

func (h Handler) ListVideosHandler(ctx context.Context, userID string, campaignID string) (httptransport.ListVideosResponse, error) {
	campaign, err := h.GetCampaign.ExecuteForOwner(ctx, campaignID, userID)
	if err != nil {
		return httptransport.ListVideosResponse{}, err
	}
	videos, err := h.GetVideos.Execute(ctx, campaign.CampaignID)
	if err != nil {
		return httptransport.ListVideosResponse{}, err
	}
	return httptransport.ListVideosResponse{Items: mapVideos(videos)}, nil
}

func (h Handler) DashboardHandler(ctx context.Context, userID string, campaignID string) (httptransport.DashboardResponse, error) {
	dashboard, err := h.GetDashboard.Execute(ctx, campaignID, userID)
	if err != nil {
		return httptransport.DashboardResponse{}, err
	}
	return httptransport.DashboardResponse{
		Campaign:      MapCampaign(dashboard.Campaign),
		Metrics:       MapMetrics(dashboard.Metrics),
		Videos:        mapVideos(dashboard.Videos),
		Reach:         MapReach(dashboard.Reach),
		StatusLabel:   dashboard.StatusLabel,
		DaysRemaining: dashboard.DaysRemaining,
	}, nil
}

func (h Handler) AddVideoHandler(
	ctx context.Context,
	actorID string,
	campaignID string,
	req httptransport.AddVideoRequest,
) (httptransport.VideoResponse, error) {
	if err := validateRequest(req, domainerrors.ErrInvalidVideoInput); err != nil {
		return httptransport.VideoResponse{}, err
	}
	video, err := h.AddVideo.Execute(ctx, commands.AddVideoCommand{
		CampaignID:      campaignID,
		ActorID:         actorID,
		URL:             req.URL,
		TikTokID:        req.TikTokID,
		Thumbnail:       req.Thumbnail,
		Caption:         req.Caption,
		CreatorUsername: req.CreatorUsername,
		Metrics:         metricsFromDTO(req.Metrics),
	})
	if err != nil {
		return httptransport.VideoResponse{}, err
	}
	return httptransport.VideoResponse{Video: mapVideo(video)}, nil
}

func (h Handler) UpdateVideoMetricsHandler(
	ctx context.Context,
	actorID string,
	campaignID string,
	videoID string,
	req httptransport.UpdateVideoMetricsRequest,
) (httptransport.VideoResponse, error) {
	if err := validateRequest(req, domainerrors.ErrInvalidVideoInput); err != nil {
		return httptransport.VideoResponse{}, err
	}
	video, err := h.UpdateVideoMetrics.Execute(ctx, commands.UpdateVideoMetricsCommand{
		CampaignID: campaignID,
		VideoID:    videoID,
		ActorID:    actorID,
		Metrics:    metricsFromDTO(req.Metrics),
		Status:     entities.VideoStatus(strings.ToLower(strings.TrimSpace(req.Status))),
	})
	if err != nil {
		return httptransport.VideoResponse{}, err
	}
	return httptransport.VideoResponse{Video: mapVideo(video)}, nil
}

func (h Handler) DeleteVideoHandler(ctx context.Context, actorID string, campaignID string, videoID string) error {
	return h.DeleteVideo.Execute(ctx, commands.DeleteVideoCommand{
		CampaignID: campaignID,
		VideoID:    videoID,
		ActorID:    actorID,
	})
}

func (h Handler) ListPendingCampaignsHandler(ctx context.Context, adminID string, limit int) (httptransport.ListCampaignsResponse, error) {
	items, err := h.ListPendingCampaigns.Execute(ctx, adminID, limit)
	if err != nil {
		return httptransport.ListCampaignsResponse{}, err
	}
	return httptransport.ListCampaignsResponse{Items: mapCampaigns(items)}, nil
}

func (h Handler) ApproveCampaignHandler(
	ctx context.Context,
	adminID string,
	campaignID string,
	req httptransport.ReviewCampaignRequest,
) (httptransport.GetCampaignResponse, error) {
	item, err := h.ValidateCampaign.Approve(ctx, campaignID, adminID, req.Notes, req.ExpectedVersion)
	if err != nil {
		return httptransport.GetCampaignResponse{}, err
	}
	return httptransport.GetCampaignResponse{Campaign: MapCampaign(item)}, nil
}

func (h Handler) RejectCampaignHandler(
	ctx context.Context,
	adminID string,
	campaignID string,
	req httptransport.ReviewCampaignRequest,
) (httptransport.GetCampaignResponse, error) {
	item, err := h.ValidateCampaign.Reject(ctx, campaignID, adminID, req.Notes, req.ExpectedVersion)
	if err != nil {
		return httptransport.GetCampaignResponse{}, err
	}
	return httptransport.GetCampaignResponse{Campaign: MapCampaign(item)}, nil
}

func (h Handler) CompleteCampaignHandler(
	ctx context.Context,
	adminID string,
	campaignID string,
	req httptransport.CompleteCampaignRequest,
) (httptransport.GetCampaignResponse, error) {
	if strings.TrimSpace(adminID) == "" {
		return httptransport.GetCampaignResponse{}, domainerrors.ErrUnauthorizedActor
	}
	item, err := h.CompleteCampaign.Execute(ctx, commands.CompleteCampaignCommand{
		CampaignID:      campaignID,
		ActorID:         adminID,
		Reason:          req.Reason,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		return httptransport.GetCampaignResponse{}, err
	}
	return httptransport.GetCampaignResponse{Campaign: MapCampaign(item)}, nil
}

func songFromDTO(dto httptransport.SongDetailsDTO) entities.SongDetails {
	return entities.SongDetails{
		Title:       dto.Title,
		Genre:       dto.Genre,
		Mood:        dto.Mood,
		ReleaseDate: dto.ReleaseDate,
		AudioURL:    dto.AudioURL,
		CoverArtURL: dto.CoverArtURL,
		Lyrics:      dto.Lyrics,
	}
}

func artistFromDTO(dto httptransport.ArtistDetailsDTO) entities.ArtistDetails {
	return entities.ArtistDetails{
		Name: dto.Name,
		Bio:  dto.Bio,
		SocialLinks: entities.SocialLinks{
			Instagram: dto.SocialLinks.Instagram,
			TikTok:    dto.SocialLinks.TikTok,
			Spotify:   dto.SocialLinks.Spotify,
			YouTube:   dto.SocialLinks.YouTube,
		},
		PressKit: dto.PressKit,
	}
}

func targetingFromDTO(dto httptransport.CreatorTargetingDTO) entities.CreatorTargeting {
	return entities.CreatorTargeting{
		CreatorTypes:    append([]string(nil), dto.CreatorTypes...),
		AudienceAge:     append([]string(nil), dto.AudienceAge...),
		PreferredStyles: append([]string(nil), dto.PreferredStyles...),
		Notes:           dto.Notes,
	}
}

func metricsFromDTO(dto httptransport.VideoMetricsDTO) entities.VideoMetrics {
	return entities.VideoMetrics{
		Views:    dto.Views,
		Likes:    dto.Likes,
		Comments: dto.Comments,
		Shares:   dto.Shares,
	}
}

// MapCampaign renders a campaign in its wire form. Exported for the CLI.
func MapCampaign(item entities.Campaign) httptransport.CampaignDTO {
	item = item.Normalize()
	return httptransport.CampaignDTO{
		CampaignID: item.CampaignID,
		UserID:     item.UserID,
		SongDetails: httptransport.SongDetailsDTO{
			Title:       item.Song.Title,
			Genre:       item.Song.Genre,
			Mood:        item.Song.Mood,
			ReleaseDate: item.Song.ReleaseDate,
			AudioURL:    item.Song.AudioURL,
			CoverArtURL: item.Song.CoverArtURL,
			Lyrics:      item.Song.Lyrics,
		},
		ArtistDetails: httptransport.ArtistDetailsDTO{
			Name: item.Artist.Name,
			Bio:  item.Artist.Bio,
			SocialLinks: httptransport.SocialLinksDTO{
				Instagram: item.Artist.SocialLinks.Instagram,
				TikTok:    item.Artist.SocialLinks.TikTok,
				Spotify:   item.Artist.SocialLinks.Spotify,
				YouTube:   item.Artist.SocialLinks.YouTube,
			},
			PressKit: item.Artist.PressKit,
		},
		Budget:   item.Budget,
		Duration: item.DurationDays,
		CreatorTargeting: httptransport.CreatorTargetingDTO{
			CreatorTypes:    item.Targeting.CreatorTypes,
			AudienceAge:     item.Targeting.AudienceAge,
			PreferredStyles: item.Targeting.PreferredStyles,
			Notes:           item.Targeting.Notes,
		},
		Payment: httptransport.PaymentDTO{
			Processor:     string(item.Payment.Processor),
			TransactionID: item.Payment.TransactionID,
			Amount:        item.Payment.Amount,
			Status:        string(item.Payment.Status),
			PayerEmail:    item.Payment.PayerEmail,
			PaidAt:        formatOptionalTime(item.Payment.PaidAt),
		},
		Status:      string(item.Status),
		StatusLabel: entities.StatusLabel(item.Status),
		AdminNotes:  item.AdminNotes,
		IsValidated: item.IsValidated,
		ValidatedBy: item.ValidatedBy,
		CreatedAt:   item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   item.UpdatedAt.UTC().Format(time.RFC3339),
		SubmittedAt: formatOptionalTime(item.SubmittedAt),
		ValidatedAt: formatOptionalTime(item.ValidatedAt),
		StartDate:   formatOptionalTime(item.StartDate),
		EndDate:     formatOptionalTime(item.EndDate),
		CompletedAt: formatOptionalTime(item.CompletedAt),
		Version:     item.Version,
	}
}

func mapCampaigns(items []entities.Campaign) []httptransport.CampaignDTO {
	result := make([]httptransport.CampaignDTO, 0, len(items))
	for _, item := range items {
		result = append(result, MapCampaign(item))
	}
	return result
}

// MapMetrics renders a metrics summary in its wire form.
func MapMetrics(summary entities.MetricsSummary) httptransport.MetricsDTO {
	summary = summary.Normalize()
	days := make([]httptransport.DailyMetricDTO, 0, len(summary.DailyMetrics))
	for _, day := range summary.DailyMetrics {
		days = append(days, httptransport.DailyMetricDTO{
			Date:       day.Date,
			Views:      day.Views,
			Likes:      day.Likes,
			Comments:   day.Comments,
			Shares:     day.Shares,
			Engagement: day.Engagement,
		})
	}
	dto := httptransport.MetricsDTO{
		CampaignID:   summary.CampaignID,
		Views:        summary.Views,
		Likes:        summary.Likes,
		Comments:     summary.Comments,
		Shares:       summary.Shares,
		Follows:      summary.Follows,
		Engagement:   summary.Engagement,
		DailyMetrics: days,
	}
	if !summary.UpdatedAt.IsZero() {
		dto.UpdatedAt = summary.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

// EstimateReachHandler rejects inputs below the campaign minimums so the
// wizard slider and the CLI agree on what a valid estimate is.
func (h Handler) EstimateReachHandler(budget float64, durationDays int) (httptransport.ReachEstimateDTO, error) {
	if budget < entities.MinBudget || durationDays < entities.MinDurationDays {
		return httptransport.ReachEstimateDTO{}, &domainerrors.ValidationError{
			Err:    domainerrors.ErrInvalidCampaignInput,
			Fields: estimateFieldErrors(budget, durationDays),
		}
	}
	return MapReach(entities.EstimateReach(budget, durationDays)), nil
}

func estimateFieldErrors(budget float64, durationDays int) map[string]string {
	fields := map[string]string{}
	if budget < entities.MinBudget {
		fields["budget"] = "Minimum budget is $200"
	}
	if durationDays < entities.MinDurationDays {
		fields["duration"] = "Minimum duration is 7 days"
	}
	return fields
}

func MapReach(estimate entities.ReachEstimate) httptransport.ReachEstimateDTO {
	return httptransport.ReachEstimateDTO{
		Low:  estimate.Low,
		Mid:  estimate.Mid,
		High: estimate.High,
	}
}

func mapVideo(item entities.Video) httptransport.VideoDTO {
	return httptransport.VideoDTO{
		VideoID:         item.VideoID,
		CampaignID:      item.CampaignID,
		TikTokID:        item.TikTokID,
		URL:             item.URL,
		Thumbnail:       item.Thumbnail,
		Caption:         item.Caption,
		CreatorUsername: item.CreatorUsername,
		Metrics: httptransport.VideoMetricsDTO{
			Views:    item.Metrics.Views,
			Likes:    item.Metrics.Likes,
			Comments: item.Metrics.Comments,
			Shares:   item.Metrics.Shares,
		},
		Status:    string(item.Status),
		CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func mapVideos(items []entities.Video) []httptransport.VideoDTO {
	result := make([]httptransport.VideoDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapVideo(item))
	}
	return result
}

func formatOptionalTime(value *time.Time) string {
	if value == nil || value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
