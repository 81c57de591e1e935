package httpserver

import (
	"net/http"

	campaignhttp "soundtik/contexts/campaign-promotion/campaign-service/transport/http"
)

func (s *Server) handleAdminListPending(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requireAdmin(w, r, writeCampaignError)
	if !ok {
		return
	}
	limit, ok := parseLimit(w, r, writeCampaignError)
	if !ok {
		return
	}
	resp, err := s.campaigns.Handler.ListPendingCampaignsHandler(r.Context(), adminID, limit)
	if err != nil {
		writeCampaignDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdminApprove(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requireAdmin(w, r, writeCampaignError)
	if !ok {
		return
	}
	var req campaignhttp.ReviewCampaignRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req, writeCampaignError) {
		return
	}
	resp, err := s.campaigns.Handler.ApproveCampaignHandler(r.Context(), adminID, r.PathValue("campaign_id"), req)
	if err != nil {
		writeCampaignDomainError(w, err)
		return
	}
	s.logAdminDecision(r, adminID, "approved")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdminReject(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requireAdmin(w, r, writeCampaignError)
	if !ok {
		return
	}
	var req campaignhttp.ReviewCampaignRequest
	if !decodeJSON(w, r, &req, writeCampaignError) {
		return
	}
	resp, err := s.campaigns.Handler.RejectCampaignHandler(r.Context(), adminID, r.PathValue("campaign_id"), req)
	if err != nil {
		writeCampaignDomainError(w, err)
		return
	}
	s.logAdminDecision(r, adminID, "rejected")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdminComplete(w http.ResponseWriter, r *http.Request) {
	adminID, ok := requireAdmin(w, r, writeCampaignError)
	if !ok {
		return
	}
	var req campaignhttp.CompleteCampaignRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req, writeCampaignError) {
		return
	}
	resp, err := s.campaigns.Handler.CompleteCampaignHandler(r.Context(), adminID, r.PathValue("campaign_id"), req)
	if err != nil {
		writeCampaignDomainError(w, err)
		return
	}
	s.logAdminDecision(r, adminID, "completed")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) logAdminDecision(r *http.Request, adminID string, decision string) {
	s.logger.Info("admin campaign decision",
		"event", "admin_campaign_decision",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"campaign_id", r.PathValue("campaign_id"),
		"admin_id", adminID,
		"decision", decision,
	)
}
