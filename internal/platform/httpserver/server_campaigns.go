package httpserver

import (
	"errors"
	"net/http"
	"strings"

	campaignerrors "soundtik/contexts/campaign-promotion/campaign-service/domain/errors"
	campaignhttp "soundtik/contexts/campaign-promotion/campaign-service/transport/http"
)

func writeCampaignError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, campaignhttp.ErrorResponse{Code: code, Message: message})
}

func writeCampaignDomainError(w http.ResponseWriter, err error) {
	var validationErr *campaignerrors.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusBadRequest, campaignhttp.ErrorResponse{
			Code:    "invalid_request",
			Message: err.Error(),
			Details: validationErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, campaignerrors.ErrCampaignNotFound):
		writeCampaignError(w, http.StatusNotFound, "campaign_not_found", err.Error())
	case errors.Is(err, campaignerrors.ErrVideoNotFound):
		writeCampaignError(w, http.StatusNotFound, "video_not_found", err.Error())
	case errors.Is(err, campaignerrors.ErrForbidden):
		writeCampaignError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, campaignerrors.ErrUnauthorizedActor):
		writeCampaignError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, campaignerrors.ErrInvalidCampaignInput),
		errors.Is(err, campaignerrors.ErrInvalidVideoInput),
		errors.Is(err, campaignerrors.ErrInvalidVideoURL),
		errors.Is(err, campaignerrors.ErrRejectionNotesRequired),
		errors.Is(err, campaignerrors.ErrIdempotencyKeyRequired):
		writeCampaignError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, campaignerrors.ErrPaymentRequired),
		errors.Is(err, campaignerrors.ErrPaymentAmountMismatch):
		writeCampaignError(w, http.StatusPaymentRequired, "payment_failed", err.Error())
	case errors.Is(err, campaignerrors.ErrPaymentAlreadyApplied):
		writeCampaignError(w, http.StatusConflict, "payment_already_applied", err.Error())
	case errors.Is(err, campaignerrors.ErrCampaignAlreadyExists):
		writeCampaignError(w, http.StatusConflict, "campaign_exists", err.Error())
	case errors.Is(err, campaignerrors.ErrInvalidStateTransition),
		errors.Is(err, campaignerrors.ErrCampaignNotLive):
		writeCampaignError(w, http.StatusConflict, "invalid_state_transition", err.Error())
	case errors.Is(err, campaignerrors.ErrCampaignVersionConflict):
		writeCampaignError(w, http.StatusConflict, "version_conflict", err.Error())
	case errors.Is(err, campaignerrors.ErrIdempotencyKeyConflict):
		writeCampaignError(w, http.StatusConflict, "idempotency_conflict", err.Error())
	case errors.Is(err, campaignerrors.ErrStoreBackendUnavailable):
		writeCampaignError(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
	default:
		writeCampaignError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeCampaignError)
	if !ok {
		return
	}
	var req campaignhttp.CreateCampaignRequest
	if !decodeJSON(w, r, &req, writeCampaignError) {
		return
	}
	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	resp, err := s.campaigns.Handler.CreateCampaignHandler(r.Context(), userID, idempotencyKey, req)
	if err != nil {
		writeCampaignDomainError(w, err)
		return
	}
	status := http.StatusCreated
	if resp.Replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeCampaignError)
	if !ok {
		return
	}
	limit, ok := parseLimit(w, r, writeCampaignError)
	if !ok {
		return
	}
	resp, err := s.campaigns.Handler.ListCampaignsHandler(r.Context(), userID, r.URL.Query().Get("status"), limit)
	if err != nil {
		writeCampaignDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeCampaignError)
	if !ok {
		return
	}
	resp, err := s.campaigns.Handler.GetCampaignHandler(r.Context(), userID, r.PathValue("campaign_id"))
	if err != nil {
		writeCampaignDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetCampaignMetrics(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeCampaignError)
	if !ok {
		return
	}
	resp, err := s.campaigns.Handler.GetMetricsHandler(r.Context(), userID, r.PathValue("campaign_id"))
	if err != nil {
		writeCampaignDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListCampaignVideos(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeCampaignError)
	if !ok {
		return
	}
	resp, err := s.campaigns.Handler.ListVideosHandler(r.Context(), userID, r.PathValue("campaign_id"))
	if err != nil {
		writeCampaignDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCampaignDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeCampaignError)
	if !ok {
		return
	}
	resp, err := s.campaigns.Handler.DashboardHandler(r.Context(), userID, r.PathValue("campaign_id"))
	if err != nil {
		writeCampaignDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Video mutations are operator actions and use the admin header.
func (s *Server) handleAddVideo(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requireAdmin(w, r, writeCampaignError)
	if !ok {
		return
	}
	var req campaignhttp.AddVideoRequest
	if !decodeJSON(w, r, &req, writeCampaignError) {
		return
	}
	resp, err := s.campaigns.Handler.AddVideoHandler(r.Context(), adminID, r.PathValue("campaign_id"), req)
	if err != nil {
		writeCampaignDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUpdateVideoMetrics(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requireAdmin(w, r, writeCampaignError)
	if !ok {
		return
	}
	var req campaignhttp.UpdateVideoMetricsRequest
	if !decodeJSON(w, r, &req, writeCampaignError) {
		return
	}
	resp, err := s.campaigns.Handler.UpdateVideoMetricsHandler(
		r.Context(),
		adminID,
		r.PathValue("campaign_id"),
		r.PathValue("video_id"),
		req,
	)
	if err != nil {
		writeCampaignDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteVideo(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requireAdmin(w, r, writeCampaignError)
	if !ok {
		return
	}
	if err := s.campaigns.Handler.DeleteVideoHandler(r.Context(), adminID, r.PathValue("campaign_id"), r.PathValue("video_id")); err != nil {
		writeCampaignDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
