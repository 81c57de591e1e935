package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"soundtik/contexts/campaign-promotion/wizard-service/application"
	"soundtik/contexts/campaign-promotion/wizard-service/domain/entities"
	domainerrors "soundtik/contexts/campaign-promotion/wizard-service/domain/errors"
	httptransport "soundtik/contexts/campaign-promotion/wizard-service/transport/http"

	"github.com/go-playground/validator/v10"
)

var requestValidator = newRequestValidator()

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) StartSessionHandler(ctx context.Context, userID string) (httptransport.SessionResponse, error) {
	session, err := h.Service.StartSession(ctx, userID)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return httptransport.SessionResponse{Session: MapSession(session)}, nil
}

func (h Handler) GetSessionHandler(ctx context.Context, userID string, sessionID string) (httptransport.SessionResponse, error) {
	session, err := h.Service.GetSession(ctx, userID, sessionID)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return httptransport.SessionResponse{Session: MapSession(session)}, nil
}

func (h Handler) UpdateSectionHandler(
	ctx context.Context,
	userID string,
	sessionID string,
	section string,
	req httptransport.SectionPatchRequest,
) (httptransport.SessionResponse, error) {
	session, err := h.Service.UpdateSection(ctx, userID, sessionID, section, map[string]json.RawMessage(req))
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return httptransport.SessionResponse{Session: MapSession(session)}, nil
}

func (h Handler) UpdateSubsectionHandler(
	ctx context.Context,
	userID string,
	sessionID string,
	section string,
	subsection string,
	req httptransport.SectionPatchRequest,
) (httptransport.SessionResponse, error) {
	session, err := h.Service.UpdateSubsection(ctx, userID, sessionID, section, subsection, map[string]json.RawMessage(req))
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return httptransport.SessionResponse{Session: MapSession(session)}, nil
}

func (h Handler) ValidateStepHandler(
	ctx context.Context,
	userID string,
	sessionID string,
	req httptransport.StepRequest,
) (httptransport.ValidateStepResponse, error) {
	if err := validateRequest(req); err != nil {
		return httptransport.ValidateStepResponse{}, err
	}
	session, valid, err := h.Service.ValidateStep(ctx, userID, sessionID, entities.Step(*req.Step))
	if err != nil {
		return httptransport.ValidateStepResponse{}, err
	}
	return httptransport.ValidateStepResponse{Valid: valid, Session: MapSession(session)}, nil
}

// NextStepHandler fails with a StepError when the current step is invalid;
// its fields are the ones stored on the session.
func (h Handler) NextStepHandler(ctx context.Context, userID string, sessionID string) (httptransport.SessionResponse, error) {
	session, err := h.Service.Next(ctx, userID, sessionID)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return httptransport.SessionResponse{Session: MapSession(session)}, nil
}

func (h Handler) PrevStepHandler(ctx context.Context, userID string, sessionID string) (httptransport.SessionResponse, error) {
	session, err := h.Service.Back(ctx, userID, sessionID)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return httptransport.SessionResponse{Session: MapSession(session)}, nil
}

func (h Handler) GoToStepHandler(
	ctx context.Context,
	userID string,
	sessionID string,
	req httptransport.StepRequest,
) (httptransport.SessionResponse, error) {
	if err := validateRequest(req); err != nil {
		return httptransport.SessionResponse{}, err
	}
	session, err := h.Service.GoTo(ctx, userID, sessionID, entities.Step(*req.Step))
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return httptransport.SessionResponse{Session: MapSession(session)}, nil
}

func (h Handler) ResetHandler(ctx context.Context, userID string, sessionID string) (httptransport.SessionResponse, error) {
	session, err := h.Service.Reset(ctx, userID, sessionID)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return httptransport.SessionResponse{Session: MapSession(session)}, nil
}

func (h Handler) CheckoutHandler(ctx context.Context, userID string, sessionID string) (httptransport.CheckoutResponse, error) {
	session, result, err := h.Service.Checkout(ctx, userID, sessionID)
	if err != nil {
		return httptransport.CheckoutResponse{}, err
	}
	return httptransport.CheckoutResponse{
		CampaignID: result.CampaignID,
		Amount:     result.Amount,
		Currency:   result.Currency,
		Processor:  result.Processor,
		Session:    MapSession(session),
	}, nil
}

func (h Handler) CompletePaymentHandler(
	ctx context.Context,
	userID string,
	sessionID string,
	req httptransport.CompletePaymentRequest,
) (httptransport.CompletePaymentResponse, error) {
	if err := validateRequest(req); err != nil {
		return httptransport.CompletePaymentResponse{}, err
	}
	session, outcome, err := h.Service.CompletePayment(ctx, userID, sessionID, entities.PaymentConfirmation{
		Processor:     req.Processor,
		TransactionID: req.TransactionID,
		Succeeded:     req.Succeeded,
		ErrorMessage:  req.ErrorMessage,
		PayerEmail:    req.PayerEmail,
	})
	if err != nil {
		return httptransport.CompletePaymentResponse{}, err
	}
	return httptransport.CompletePaymentResponse{
		CampaignID:   outcome.CampaignID,
		RedirectPath: outcome.RedirectPath,
		Receipt: httptransport.PaymentReceiptDTO{
			Processor:     outcome.Receipt.Processor,
			TransactionID: outcome.Receipt.TransactionID,
			Amount:        outcome.Receipt.Amount,
			PayerEmail:    outcome.Receipt.PayerEmail,
			ConfirmedAt:   outcome.Receipt.ConfirmedAt.UTC().Format(time.RFC3339),
		},
		Session: MapSession(session),
	}, nil
}

func MapSession(session entities.Session) httptransport.SessionDTO {
	state := session.State.Clone()
	dto := httptransport.SessionDTO{
		SessionID:    session.SessionID,
		Step:         int(state.Step),
		StepName:     state.Step.String(),
		Phase:        string(state.Phase),
		Draft:        mapDraft(state.Draft),
		Errors:       state.Errors,
		CampaignID:   state.CampaignID,
		LastError:    state.LastError,
		RedirectPath: state.RedirectPath,
		Version:      session.Version,
	}
	if !session.ExpiresAt.IsZero() {
		dto.ExpiresAt = session.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func mapDraft(draft entities.Draft) httptransport.DraftDTO {
	song := draft.SongDetails
	artist := draft.ArtistDetails
	details := draft.CampaignDetails
	return httptransport.DraftDTO{
		SongDetails: httptransport.SongDetailsDTO{
			Title:       song.Title,
			Genre:       song.Genre,
			Mood:        song.Mood,
			ReleaseDate: song.ReleaseDate,
			AudioURL:    song.AudioURL,
			CoverArtURL: song.CoverArtURL,
			Lyrics:      song.Lyrics,
		},
		ArtistDetails: httptransport.ArtistDetailsDTO{
			Name: artist.Name,
			Bio:  artist.Bio,
			SocialLinks: httptransport.SocialLinksDTO{
				Instagram: artist.SocialLinks.Instagram,
				TikTok:    artist.SocialLinks.TikTok,
				Spotify:   artist.SocialLinks.Spotify,
				YouTube:   artist.SocialLinks.YouTube,
			},
			PressKit: artist.PressKit,
		},
		CampaignDetails: httptransport.CampaignDetailsDTO{
			Budget:   details.Budget,
			Duration: details.Duration,
			CreatorTargeting: httptransport.CreatorTargetingDTO{
				CreatorTypes:    details.CreatorTargeting.CreatorTypes,
				AudienceAge:     details.CreatorTargeting.AudienceAge,
				PreferredStyles: details.CreatorTargeting.PreferredStyles,
				Notes:           details.CreatorTargeting.Notes,
			},
		},
		PaymentDetails: httptransport.PaymentDetailsDTO{
			Processor: draft.PaymentDetails.Processor,
			Amount:    draft.PaymentDetails.Amount,
			Status:    draft.PaymentDetails.Status,
		},
	}
}

func newRequestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	})
	return v
}

func validateRequest(req any) error {
	err := requestValidator.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &domainerrors.ValidationError{Fields: map[string]string{"body": err.Error()}}
	}
	fields := make(map[string]string, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		switch fieldErr.Tag() {
		case "required":
			fields[fieldErr.Field()] = "is required"
		case "oneof":
			fields[fieldErr.Field()] = "must be one of: " + strings.ReplaceAll(fieldErr.Param(), " ", ", ")
		case "email":
			fields[fieldErr.Field()] = "must be a valid email address"
		default:
			fields[fieldErr.Field()] = "is invalid"
		}
	}
	return &domainerrors.ValidationError{Fields: fields}
}
