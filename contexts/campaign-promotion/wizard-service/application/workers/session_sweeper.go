package workers

import (
	"context"
	"log/slog"

	application "soundtik/contexts/campaign-promotion/wizard-service/application"
)

// SessionSweeper removes wizard sessions that have been idle past their TTL.
type SessionSweeper struct {
	Service   application.Service
	BatchSize int
	Disabled  bool
	Logger    *slog.Logger
}

func (j SessionSweeper) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(j.Logger)
	if j.Disabled {
		return nil
	}
	limit := j.BatchSize
	if limit <= 0 {
		limit = 500
	}
	removed, err := j.Service.SweepExpired(ctx, limit)
	if err != nil {
		logger.Error("wizard session sweep failed",
			"event", "wizard_session_sweep_failed",
			"module", "campaign-promotion/wizard-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if removed > 0 {
		logger.Info("expired wizard sessions removed",
			"event", "wizard_session_sweep_completed",
			"module", "campaign-promotion/wizard-service",
			"layer", "worker",
			"removed_count", removed,
		)
	}
	return nil
}
