package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"soundtik/contexts/campaign-promotion/wizard-service/domain/entities"
	domainerrors "soundtik/contexts/campaign-promotion/wizard-service/domain/errors"
	"soundtik/contexts/campaign-promotion/wizard-service/ports"
)

const defaultSessionTTL = 24 * time.Hour

// Service runs wizard operations against stored sessions. Each call loads
// the session, applies one controller action and saves the result
// conditionally on the version it read.
type Service struct {
	Sessions   ports.SessionStore
	Validator  ports.StepValidator
	Gateway    ports.CampaignGateway
	Payments   ports.PaymentVerifier
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	SessionTTL time.Duration
	Logger     *slog.Logger
}

func (s Service) StartSession(ctx context.Context, userID string) (entities.Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entities.Session{}, domainerrors.ErrUnauthorizedActor
	}
	sessionID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Session{}, err
	}
	now := s.now()
	session := entities.Session{
		SessionID: sessionID,
		UserID:    userID,
		State:     entities.DefaultWizardState(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttl()),
	}
	if err := s.Sessions.CreateSession(ctx, session); err != nil {
		return entities.Session{}, err
	}
	ResolveLogger(s.Logger).Info("wizard session started",
		"event", "wizard_session_started",
		"module", "campaign-promotion/wizard-service",
		"layer", "application",
		"session_id", sessionID,
		"user_id", userID,
	)
	return session, nil
}

func (s Service) GetSession(ctx context.Context, userID string, sessionID string) (entities.Session, error) {
	return s.load(ctx, userID, sessionID)
}

func (s Service) UpdateSection(
	ctx context.Context,
	userID string,
	sessionID string,
	section string,
	partial map[string]json.RawMessage,
) (entities.Session, error) {
	return s.run(ctx, userID, sessionID, func(c Controller) error {
		return c.Store.UpdateFormData(section, partial)
	})
}

func (s Service) UpdateSubsection(
	ctx context.Context,
	userID string,
	sessionID string,
	section string,
	subsection string,
	partial map[string]json.RawMessage,
) (entities.Session, error) {
	return s.run(ctx, userID, sessionID, func(c Controller) error {
		return c.Store.UpdateNestedFormData(section, subsection, partial)
	})
}

func (s Service) ValidateStep(ctx context.Context, userID string, sessionID string, step entities.Step) (entities.Session, bool, error) {
	valid := false
	session, err := s.run(ctx, userID, sessionID, func(c Controller) error {
		valid = c.Store.ValidateStep(step)
		return nil
	})
	return session, valid, err
}

func (s Service) Next(ctx context.Context, userID string, sessionID string) (entities.Session, error) {
	return s.run(ctx, userID, sessionID, func(c Controller) error {
		return c.Advance()
	})
}

func (s Service) Back(ctx context.Context, userID string, sessionID string) (entities.Session, error) {
	return s.run(ctx, userID, sessionID, func(c Controller) error {
		return c.Back()
	})
}

func (s Service) GoTo(ctx context.Context, userID string, sessionID string, step entities.Step) (entities.Session, error) {
	return s.run(ctx, userID, sessionID, func(c Controller) error {
		return c.Store.GoToStep(step)
	})
}

func (s Service) Reset(ctx context.Context, userID string, sessionID string) (entities.Session, error) {
	return s.run(ctx, userID, sessionID, func(c Controller) error {
		c.Store.ResetForm()
		return nil
	})
}

func (s Service) Checkout(ctx context.Context, userID string, sessionID string) (entities.Session, entities.CheckoutResult, error) {
	var result entities.CheckoutResult
	session, err := s.run(ctx, userID, sessionID, func(c Controller) error {
		out, err := c.BeginCheckout(ctx, strings.TrimSpace(userID), sessionID)
		result = out
		return err
	})
	return session, result, err
}

func (s Service) CompletePayment(
	ctx context.Context,
	userID string,
	sessionID string,
	confirmation entities.PaymentConfirmation,
) (entities.Session, entities.PaymentOutcome, error) {
	var outcome entities.PaymentOutcome
	session, err := s.run(ctx, userID, sessionID, func(c Controller) error {
		out, err := c.CompletePayment(ctx, strings.TrimSpace(userID), confirmation)
		outcome = out
		return err
	})
	return session, outcome, err
}

// SweepExpired drops sessions whose idle TTL has passed.
func (s Service) SweepExpired(ctx context.Context, limit int) (int, error) {
	return s.Sessions.DeleteExpired(ctx, s.now(), limit)
}

func (s Service) load(ctx context.Context, userID string, sessionID string) (entities.Session, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entities.Session{}, domainerrors.ErrUnauthorizedActor
	}
	session, err := s.Sessions.GetSession(ctx, strings.TrimSpace(sessionID), s.now())
	if err != nil {
		return entities.Session{}, err
	}
	if session.UserID != userID {
		return entities.Session{}, domainerrors.ErrForbidden
	}
	return session, nil
}

// run saves the session whenever the action changed the form state, even
// when the action itself failed: validation messages and payment failures
// are part of what the client reads back.
func (s Service) run(
	ctx context.Context,
	userID string,
	sessionID string,
	action func(Controller) error,
) (entities.Session, error) {
	session, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return entities.Session{}, err
	}

	store := NewFormStore(s.Validator, session.State)
	changed := false
	unsubscribe := store.Subscribe(func(entities.WizardState) { changed = true })
	actionErr := action(Controller{
		Store:    store,
		Gateway:  s.Gateway,
		Payments: s.Payments,
		Logger:   s.Logger,
	})
	unsubscribe()
	if !changed {
		return session, actionErr
	}

	now := s.now()
	expectedVersion := session.Version
	session.State = store.Snapshot()
	session.Version = expectedVersion + 1
	session.UpdatedAt = now
	session.ExpiresAt = now.Add(s.ttl())
	if err := s.Sessions.SaveSession(ctx, session, expectedVersion); err != nil {
		return entities.Session{}, err
	}
	return session, actionErr
}

func (s Service) ttl() time.Duration {
	if s.SessionTTL <= 0 {
		return defaultSessionTTL
	}
	return s.SessionTTL
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
