package entities

import "time"

type Step int

const (
	StepSongDetails Step = iota
	StepArtistDetails
	StepBudget
	StepTargeting
	StepPayment
)

const StepCount = 5

var stepNames = [StepCount]string{
	"song_details",
	"artist_details",
	"budget",
	"targeting",
	"payment",
}

func (s Step) Valid() bool {
	return s >= StepSongDetails && s <= StepPayment
}

func (s Step) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return stepNames[s]
}

type Phase string

const (
	PhaseEditing        Phase = "editing"
	PhasePaymentSuccess Phase = "payment_success"
)

// WizardState is everything a session remembers between requests.
// Generation counts the drafts a session has started; it moves forward
// whenever the draft is discarded so a new draft never reuses the campaign
// of an earlier one.
type WizardState struct {
	Step         Step
	Phase        Phase
	Draft        Draft
	Errors       map[string]string
	CampaignID   string
	LastError    string
	RedirectPath string
	Generation   int
}

func DefaultWizardState() WizardState {
	return WizardState{
		Step:   StepSongDetails,
		Phase:  PhaseEditing,
		Draft:  DefaultDraft(),
		Errors: map[string]string{},
	}
}

// Clone returns a copy that shares no maps or slices with s.
func (s WizardState) Clone() WizardState {
	out := s
	out.Draft = s.Draft.Clone()
	out.Errors = make(map[string]string, len(s.Errors))
	for key, value := range s.Errors {
		out.Errors[key] = value
	}
	if out.Phase == "" {
		out.Phase = PhaseEditing
	}
	return out
}

// NextDraft discards the draft and starts the next generation.
func (s WizardState) NextDraft() WizardState {
	next := DefaultWizardState()
	next.Generation = s.Generation + 1
	return next
}

// CheckoutStarted reports whether a draft campaign already backs the session.
func (s WizardState) CheckoutStarted() bool {
	return s.CampaignID != ""
}

type Session struct {
	SessionID string
	UserID    string
	State     WizardState
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
