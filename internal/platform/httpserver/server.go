package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	campaignservice "soundtik/contexts/campaign-promotion/campaign-service"
	wizardservice "soundtik/contexts/campaign-promotion/wizard-service"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "soundtik/internal/platform/httpserver/docs"
)

type Server struct {
	mux       *http.ServeMux
	httpSrv   *http.Server
	logger    *slog.Logger
	addr      string
	campaigns campaignservice.Module
	wizard    wizardservice.Module
}

func New(
	campaigns campaignservice.Module,
	wizard wizardservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		campaigns: campaigns,
		wizard:    wizard,
	}
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)

	s.mux.HandleFunc("POST /v1/wizard/sessions", s.handleWizardStart)
	s.mux.HandleFunc("GET /v1/wizard/sessions/{session_id}", s.handleWizardGet)
	s.mux.HandleFunc("PATCH /v1/wizard/sessions/{session_id}/sections/{section}", s.handleWizardUpdateSection)
	s.mux.HandleFunc("PATCH /v1/wizard/sessions/{session_id}/sections/{section}/{subsection}", s.handleWizardUpdateSubsection)
	s.mux.HandleFunc("POST /v1/wizard/sessions/{session_id}/validate", s.handleWizardValidate)
	s.mux.HandleFunc("POST /v1/wizard/sessions/{session_id}/next", s.handleWizardNext)
	s.mux.HandleFunc("POST /v1/wizard/sessions/{session_id}/back", s.handleWizardBack)
	s.mux.HandleFunc("POST /v1/wizard/sessions/{session_id}/goto", s.handleWizardGoTo)
	s.mux.HandleFunc("POST /v1/wizard/sessions/{session_id}/reset", s.handleWizardReset)
	s.mux.HandleFunc("POST /v1/wizard/sessions/{session_id}/checkout", s.handleWizardCheckout)
	s.mux.HandleFunc("POST /v1/wizard/sessions/{session_id}/payment", s.handleWizardPayment)
	s.mux.HandleFunc("GET /v1/wizard/estimate", s.handleWizardEstimate)

	s.mux.HandleFunc("POST /v1/campaigns", s.handleCreateCampaign)
	s.mux.HandleFunc("GET /v1/campaigns", s.handleListCampaigns)
	s.mux.HandleFunc("GET /v1/campaigns/{campaign_id}", s.handleGetCampaign)
	s.mux.HandleFunc("GET /v1/campaigns/{campaign_id}/metrics", s.handleGetCampaignMetrics)
	s.mux.HandleFunc("GET /v1/campaigns/{campaign_id}/videos", s.handleListCampaignVideos)
	s.mux.HandleFunc("GET /v1/campaigns/{campaign_id}/dashboard", s.handleCampaignDashboard)
	s.mux.HandleFunc("POST /v1/campaigns/{campaign_id}/videos", s.handleAddVideo)
	s.mux.HandleFunc("PATCH /v1/campaigns/{campaign_id}/videos/{video_id}/metrics", s.handleUpdateVideoMetrics)
	s.mux.HandleFunc("DELETE /v1/campaigns/{campaign_id}/videos/{video_id}", s.handleDeleteVideo)

	s.mux.HandleFunc("GET /v1/admin/campaigns/pending", s.handleAdminListPending)
	s.mux.HandleFunc("POST /v1/admin/campaigns/{campaign_id}/approve", s.handleAdminApprove)
	s.mux.HandleFunc("POST /v1/admin/campaigns/{campaign_id}/reject", s.handleAdminReject)
	s.mux.HandleFunc("POST /v1/admin/campaigns/{campaign_id}/complete", s.handleAdminComplete)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorWriter func(w http.ResponseWriter, status int, code string, message string)

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, writeError errorWriter) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

func requireUser(w http.ResponseWriter, r *http.Request, writeError errorWriter) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return userID, true
}

func requireAdmin(w http.ResponseWriter, r *http.Request, writeError errorWriter) (string, bool) {
	adminID := strings.TrimSpace(r.Header.Get("X-Admin-Id"))
	if adminID == "" {
		writeError(w, http.StatusUnauthorized, "admin_required", "X-Admin-Id header is required")
		return "", false
	}
	return adminID, true
}

// parseLimit returns 0 when the query omits limit; use cases apply their
// own default.
func parseLimit(w http.ResponseWriter, r *http.Request, writeError errorWriter) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
		return 0, false
	}
	return limit, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
