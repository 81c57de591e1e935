package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "soundtik/contexts/campaign-promotion/campaign-service/application"
	"soundtik/contexts/campaign-promotion/campaign-service/application/commands"
	domainerrors "soundtik/contexts/campaign-promotion/campaign-service/domain/errors"
	"soundtik/contexts/campaign-promotion/campaign-service/ports"
)

const systemActor = "system"

// EndDateCompleter sweeps active campaigns whose end date has passed.
type EndDateCompleter struct {
	Campaigns ports.CampaignRepository
	Complete  commands.CompleteCampaignUseCase
	Clock     ports.Clock
	BatchSize int
	Disabled  bool
	Logger    *slog.Logger
}

func (j EndDateCompleter) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(j.Logger)
	if j.Disabled {
		return nil
	}
	now := time.Now().UTC()
	if j.Clock != nil {
		now = j.Clock.Now().UTC()
	}
	limit := j.BatchSize
	if limit <= 0 {
		limit = 100
	}

	due, err := j.Campaigns.ListCampaignsEndedBefore(ctx, now, limit)
	if err != nil {
		logger.Error("end date sweep failed",
			"event", "campaign_end_date_sweep_failed",
			"module", "campaign-promotion/campaign-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	completed := 0
	for _, campaign := range due {
		version := campaign.Version
		_, err := j.Complete.Execute(ctx, commands.CompleteCampaignCommand{
			CampaignID:      campaign.CampaignID,
			ActorID:         systemActor,
			Reason:          "end_date_reached",
			ExpectedVersion: &version,
		})
		switch {
		case err == nil:
			completed++
		case errors.Is(err, domainerrors.ErrCampaignVersionConflict),
			errors.Is(err, domainerrors.ErrInvalidStateTransition):
			// Changed since listing; the next sweep sees the fresh state.
			continue
		default:
			return err
		}
	}

	if completed > 0 {
		logger.Info("end date sweep completed",
			"event", "campaign_end_date_sweep_completed",
			"module", "campaign-promotion/campaign-service",
			"layer", "worker",
			"completed_count", completed,
		)
	}
	return nil
}
