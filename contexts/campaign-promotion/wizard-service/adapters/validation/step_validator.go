package validation

import (
	"errors"
	"reflect"
	"strings"

	"soundtik/contexts/campaign-promotion/wizard-service/domain/entities"
	"soundtik/contexts/campaign-promotion/wizard-service/ports"

	"github.com/go-playground/validator/v10"
)

var _ ports.StepValidator = (*StepValidator)(nil)

type songStepRules struct {
	Title    string `json:"title" validate:"required"`
	Genre    string `json:"genre" validate:"required"`
	AudioURL string `json:"audio_url" validate:"required"`
}

type artistStepRules struct {
	Name string `json:"name" validate:"required"`
}

type budgetStepRules struct {
	Budget   float64 `json:"budget" validate:"gte=200"`
	Duration int     `json:"duration" validate:"gte=7"`
}

type targetingStepRules struct {
	CreatorTypes []string `json:"creator_types" validate:"min=1"`
}

type paymentStepRules struct {
	Processor string `json:"processor" validate:"required,oneof=stripe paypal"`
}

// messages holds the wizard copy per field; the tag only matters where a
// field has more than one rule.
var messages = map[string]string{
	"title":           "Song title is required",
	"genre":           "Genre is required",
	"audio_url":       "Audio file is required",
	"name":            "Artist name is required",
	"budget":          "Minimum budget is $200",
	"duration":        "Minimum duration is 7 days",
	"creator_types":   "Select at least one creator type",
	"processor":       "Select a payment processor",
	"processor/oneof": "Payment processor must be Stripe or PayPal",
}

// StepValidator evaluates the per-step rules with go-playground/validator.
type StepValidator struct {
	validate *validator.Validate
}

func NewStepValidator() *StepValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	})
	return &StepValidator{validate: v}
}

func (v *StepValidator) ValidateStep(step entities.Step, draft entities.Draft) map[string]string {
	rules := rulesFor(step, draft)
	if rules == nil {
		return map[string]string{"step": "Unknown wizard step"}
	}
	fields := map[string]string{}
	err := v.validate.Struct(rules)
	if err == nil {
		return fields
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		fields["step"] = err.Error()
		return fields
	}
	for _, fieldErr := range fieldErrs {
		name := fieldErr.Field()
		if message, ok := messages[name+"/"+fieldErr.Tag()]; ok {
			fields[name] = message
			continue
		}
		fields[name] = messages[name]
	}
	return fields
}

// rulesFor trims the draft values first so whitespace-only input counts as
// empty.
func rulesFor(step entities.Step, draft entities.Draft) any {
	switch step {
	case entities.StepSongDetails:
		return songStepRules{
			Title:    strings.TrimSpace(draft.SongDetails.Title),
			Genre:    strings.TrimSpace(draft.SongDetails.Genre),
			AudioURL: strings.TrimSpace(draft.SongDetails.AudioURL),
		}
	case entities.StepArtistDetails:
		return artistStepRules{Name: strings.TrimSpace(draft.ArtistDetails.Name)}
	case entities.StepBudget:
		return budgetStepRules{
			Budget:   draft.CampaignDetails.Budget,
			Duration: draft.CampaignDetails.Duration,
		}
	case entities.StepTargeting:
		return targetingStepRules{CreatorTypes: nonBlank(draft.CampaignDetails.CreatorTargeting.CreatorTypes)}
	case entities.StepPayment:
		return paymentStepRules{Processor: strings.ToLower(strings.TrimSpace(draft.PaymentDetails.Processor))}
	default:
		return nil
	}
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	return out
}
