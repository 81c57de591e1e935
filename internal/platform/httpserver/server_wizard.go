package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	wizarderrors "soundtik/contexts/campaign-promotion/wizard-service/domain/errors"
	wizardhttp "soundtik/contexts/campaign-promotion/wizard-service/transport/http"
)

func writeWizardError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, wizardhttp.ErrorResponse{Code: code, Message: message})
}

func writeWizardDomainError(w http.ResponseWriter, err error) {
	var stepErr *wizarderrors.StepError
	var validationErr *wizarderrors.ValidationError
	var paymentErr *wizarderrors.PaymentError
	switch {
	case errors.As(err, &stepErr):
		writeJSON(w, http.StatusBadRequest, wizardhttp.ErrorResponse{
			Code:    "step_invalid",
			Message: err.Error(),
			Details: stepErr.Fields,
		})
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, wizardhttp.ErrorResponse{
			Code:    "invalid_request",
			Message: err.Error(),
			Details: validationErr.Fields,
		})
	case errors.As(err, &paymentErr):
		writeWizardError(w, http.StatusPaymentRequired, "payment_failed", paymentErr.Message)
	case errors.Is(err, wizarderrors.ErrSessionNotFound):
		writeWizardError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, wizarderrors.ErrForbidden):
		writeWizardError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, wizarderrors.ErrUnauthorizedActor):
		writeWizardError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, wizarderrors.ErrUnknownSection),
		errors.Is(err, wizarderrors.ErrInvalidPatch),
		errors.Is(err, wizarderrors.ErrInvalidStep),
		errors.Is(err, wizarderrors.ErrUnsupportedProcessor),
		errors.Is(err, wizarderrors.ErrInvalidPaymentReference),
		errors.Is(err, wizarderrors.ErrInvalidRequest):
		writeWizardError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, wizarderrors.ErrSessionConflict):
		writeWizardError(w, http.StatusConflict, "session_conflict", err.Error())
	case errors.Is(err, wizarderrors.ErrCheckoutConflict):
		writeWizardError(w, http.StatusConflict, "checkout_conflict", err.Error())
	case errors.Is(err, wizarderrors.ErrCampaignNotDraft):
		writeWizardError(w, http.StatusConflict, "campaign_not_draft", err.Error())
	case errors.Is(err, wizarderrors.ErrDraftLocked),
		errors.Is(err, wizarderrors.ErrNotAtPaymentStep),
		errors.Is(err, wizarderrors.ErrCheckoutRequired):
		writeWizardError(w, http.StatusConflict, "invalid_wizard_state", err.Error())
	case errors.Is(err, wizarderrors.ErrPaymentProviderFailure),
		errors.Is(err, wizarderrors.ErrCampaignGatewayFailure):
		writeWizardError(w, http.StatusBadGateway, "dependency_failure", err.Error())
	default:
		writeWizardError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func (s *Server) handleWizardStart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeWizardError)
	if !ok {
		return
	}
	resp, err := s.wizard.Handler.StartSessionHandler(r.Context(), userID)
	if err != nil {
		writeWizardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleWizardGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeWizardError)
	if !ok {
		return
	}
	resp, err := s.wizard.Handler.GetSessionHandler(r.Context(), userID, r.PathValue("session_id"))
	if err != nil {
		writeWizardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWizardUpdateSection(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeWizardError)
	if !ok {
		return
	}
	var req wizardhttp.SectionPatchRequest
	if !decodeJSON(w, r, &req, writeWizardError) {
		return
	}
	resp, err := s.wizard.Handler.UpdateSectionHandler(r.Context(), userID, r.PathValue("session_id"), r.PathValue("section"), req)
	if err != nil {
		writeWizardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWizardUpdateSubsection(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeWizardError)
	if !ok {
		return
	}
	var req wizardhttp.SectionPatchRequest
	if !decodeJSON(w, r, &req, writeWizardError) {
		return
	}
	resp, err := s.wizard.Handler.UpdateSubsectionHandler(
		r.Context(),
		userID,
		r.PathValue("session_id"),
		r.PathValue("section"),
		r.PathValue("subsection"),
		req,
	)
	if err != nil {
		writeWizardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWizardValidate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeWizardError)
	if !ok {
		return
	}
	var req wizardhttp.StepRequest
	if !decodeJSON(w, r, &req, writeWizardError) {
		return
	}
	resp, err := s.wizard.Handler.ValidateStepHandler(r.Context(), userID, r.PathValue("session_id"), req)
	if err != nil {
		writeWizardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWizardNext(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeWizardError)
	if !ok {
		return
	}
	resp, err := s.wizard.Handler.NextStepHandler(r.Context(), userID, r.PathValue("session_id"))
	if err != nil {
		writeWizardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWizardBack(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeWizardError)
	if !ok {
		return
	}
	resp, err := s.wizard.Handler.PrevStepHandler(r.Context(), userID, r.PathValue("session_id"))
	if err != nil {
		writeWizardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWizardGoTo(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeWizardError)
	if !ok {
		return
	}
	var req wizardhttp.StepRequest
	if !decodeJSON(w, r, &req, writeWizardError) {
		return
	}
	resp, err := s.wizard.Handler.GoToStepHandler(r.Context(), userID, r.PathValue("session_id"), req)
	if err != nil {
		writeWizardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWizardReset(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeWizardError)
	if !ok {
		return
	}
	resp, err := s.wizard.Handler.ResetHandler(r.Context(), userID, r.PathValue("session_id"))
	if err != nil {
		writeWizardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWizardCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeWizardError)
	if !ok {
		return
	}
	resp, err := s.wizard.Handler.CheckoutHandler(r.Context(), userID, r.PathValue("session_id"))
	if err != nil {
		writeWizardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWizardPayment(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, writeWizardError)
	if !ok {
		return
	}
	var req wizardhttp.CompletePaymentRequest
	if !decodeJSON(w, r, &req, writeWizardError) {
		return
	}
	resp, err := s.wizard.Handler.CompletePaymentHandler(r.Context(), userID, r.PathValue("session_id"), req)
	if err != nil {
		s.logger.Warn("wizard payment rejected",
			"event", "wizard_payment_rejected",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"session_id", r.PathValue("session_id"),
			"error", err.Error(),
		)
		writeWizardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleWizardEstimate backs the budget and duration sliders; it needs no
// session.
func (s *Server) handleWizardEstimate(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	budget, err := strconv.ParseFloat(strings.TrimSpace(query.Get("budget")), 64)
	if err != nil {
		writeWizardError(w, http.StatusBadRequest, "invalid_budget", "budget must be a number")
		return
	}
	duration, err := strconv.Atoi(strings.TrimSpace(query.Get("duration")))
	if err != nil {
		writeWizardError(w, http.StatusBadRequest, "invalid_duration", "duration must be an integer")
		return
	}
	resp, err := s.campaigns.Handler.EstimateReachHandler(budget, duration)
	if err != nil {
		writeCampaignDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
