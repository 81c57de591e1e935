package application

import (
	"encoding/json"
	"sync"

	"soundtik/contexts/campaign-promotion/wizard-service/domain/entities"
	domainerrors "soundtik/contexts/campaign-promotion/wizard-service/domain/errors"
	"soundtik/contexts/campaign-promotion/wizard-service/ports"
)

// FormStore owns one wizard draft. Mutations are serialized; subscribers
// are called after the lock is released with a copy of the new state.
type FormStore struct {
	mu          sync.Mutex
	state       entities.WizardState
	validator   ports.StepValidator
	subscribers map[int]func(entities.WizardState)
	nextSubID   int
}

func NewFormStore(validator ports.StepValidator, state entities.WizardState) *FormStore {
	return &FormStore{
		state:       state.Clone(),
		validator:   validator,
		subscribers: map[int]func(entities.WizardState){},
	}
}

func (s *FormStore) Snapshot() entities.WizardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn for every later mutation. The returned func
// removes it.
func (s *FormStore) Subscribe(fn func(entities.WizardState)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *FormStore) UpdateFormData(section string, partial map[string]json.RawMessage) error {
	return s.mutate(func(state *entities.WizardState) error {
		if err := checkEditable(*state, section); err != nil {
			return err
		}
		draft, err := entities.ApplySectionPatch(state.Draft, section, partial)
		if err != nil {
			return err
		}
		state.Draft = draft
		resumeEditing(state)
		return nil
	})
}

func (s *FormStore) UpdateNestedFormData(section string, subsection string, partial map[string]json.RawMessage) error {
	return s.mutate(func(state *entities.WizardState) error {
		if err := checkEditable(*state, section); err != nil {
			return err
		}
		draft, err := entities.ApplySubsectionPatch(state.Draft, section, subsection, partial)
		if err != nil {
			return err
		}
		state.Draft = draft
		resumeEditing(state)
		return nil
	})
}

// ValidateStep replaces the error map with the step's field messages and
// reports whether there were none.
func (s *FormStore) ValidateStep(step entities.Step) bool {
	valid := false
	_ = s.mutate(func(state *entities.WizardState) error {
		if !step.Valid() {
			state.Errors = map[string]string{"step": "Unknown wizard step"}
			return nil
		}
		fields := map[string]string{}
		if s.validator != nil {
			for key, message := range s.validator.ValidateStep(step, state.Draft) {
				fields[key] = message
			}
		}
		state.Errors = fields
		valid = len(fields) == 0
		return nil
	})
	return valid
}

func (s *FormStore) NextStep() error {
	return s.mutate(func(state *entities.WizardState) error {
		return moveTo(state, state.Step+1)
	})
}

func (s *FormStore) PrevStep() error {
	return s.mutate(func(state *entities.WizardState) error {
		return moveTo(state, state.Step-1)
	})
}

func (s *FormStore) GoToStep(step entities.Step) error {
	return s.mutate(func(state *entities.WizardState) error {
		return moveTo(state, step)
	})
}

func (s *FormStore) ResetForm() {
	_ = s.mutate(func(state *entities.WizardState) error {
		*state = state.NextDraft()
		return nil
	})
}

func (s *FormStore) beginCheckout(campaignID string) {
	_ = s.mutate(func(state *entities.WizardState) error {
		state.CampaignID = campaignID
		state.Draft.PaymentDetails.Amount = state.Draft.CampaignDetails.Budget
		state.Draft.PaymentDetails.Status = entities.PaymentStatusPending
		state.LastError = ""
		return nil
	})
}

func (s *FormStore) paymentFailed(processor string, message string) {
	_ = s.mutate(func(state *entities.WizardState) error {
		if processor != "" {
			state.Draft.PaymentDetails.Processor = processor
		}
		state.Draft.PaymentDetails.Status = entities.PaymentStatusFailed
		state.LastError = message
		return nil
	})
}

func (s *FormStore) paymentSucceeded(redirectPath string) {
	_ = s.mutate(func(state *entities.WizardState) error {
		*state = state.NextDraft()
		state.Phase = entities.PhasePaymentSuccess
		state.RedirectPath = redirectPath
		return nil
	})
}

// mutate applies fn to a private copy and publishes it only when fn
// succeeds, so a failed mutation leaves the state untouched.
func (s *FormStore) mutate(fn func(state *entities.WizardState) error) error {
	s.mu.Lock()
	next := s.state.Clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	subscribers := make([]func(entities.WizardState), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	s.mu.Unlock()

	for _, notify := range subscribers {
		notify(next.Clone())
	}
	return nil
}

func moveTo(state *entities.WizardState, step entities.Step) error {
	if !step.Valid() {
		return domainerrors.ErrInvalidStep
	}
	state.Step = step
	resumeEditing(state)
	return nil
}

// checkEditable freezes the campaign content once a draft campaign exists
// for it. Only the payment section stays open so a failed payment can be
// retried with another processor.
func checkEditable(state entities.WizardState, section string) error {
	if state.CheckoutStarted() && section != entities.SectionPaymentDetails {
		return domainerrors.ErrDraftLocked
	}
	return nil
}

func resumeEditing(state *entities.WizardState) {
	state.Phase = entities.PhaseEditing
	state.RedirectPath = ""
}
