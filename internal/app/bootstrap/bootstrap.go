package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"soundtik/internal/platform/config"
	"soundtik/internal/platform/httpserver"

	"golang.org/x/sync/errgroup"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const shutdownTimeout = 10 * time.Second

type APIApp struct {
	runtime *runtime
	server  *httpserver.Server
	logger  *slog.Logger
}

type WorkerApp struct {
	runtime      *runtime
	pollInterval time.Duration
	logger       *slog.Logger
}

// periodicJob is one RunOnce-style worker driven by a poll loop.
type periodicJob struct {
	name string
	run  func(context.Context) error
}

func BuildAPI(ctx context.Context) (*APIApp, error) {
	rt, err := loadRuntime(ctx, "api")
	if err != nil {
		return nil, err
	}
	return &APIApp{
		runtime: rt,
		server:  httpserver.New(rt.campaigns, rt.wizard, rt.logger, rt.cfg.HTTPAddr()),
		logger:  rt.logger,
	}, nil
}

func BuildWorker(ctx context.Context) (*WorkerApp, error) {
	rt, err := loadRuntime(ctx, "worker")
	if err != nil {
		return nil, err
	}
	if rt.cfg.CampaignStore == config.StoreMemory {
		rt.logger.Warn("worker runs against a private memory store",
			"event", "bootstrap_worker_memory_store",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return &WorkerApp{
		runtime:      rt,
		pollInterval: rt.cfg.WorkerPoll,
		logger:       rt.logger,
	}, nil
}

// Run serves HTTP until ctx is cancelled. Wizard sessions live in this
// process, so their sweeper runs here too. With the memory campaign store
// the campaign workers also run here, since no other process can see it.
func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)

	jobs := []periodicJob{a.runtime.sessionSweeperJob()}
	inProcessCampaignWorkers := a.runtime.cfg.CampaignStore == config.StoreMemory
	if inProcessCampaignWorkers {
		jobs = append(jobs, a.runtime.campaignJobs()...)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.server.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})
	if inProcessCampaignWorkers {
		if err := a.runtime.campaigns.Workers.VideoMetricsConsumer.Start(gctx); err != nil {
			return err
		}
	}
	g.Go(func() error {
		return pollJobs(gctx, a.runtime.cfg.WorkerPoll, jobs, a.logger)
	})
	err := g.Wait()
	a.runtime.bus.Wait()
	return err
}

func (a *APIApp) Close() error {
	return a.runtime.Close()
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	g, gctx := errgroup.WithContext(ctx)
	if err := w.runtime.campaigns.Workers.VideoMetricsConsumer.Start(gctx); err != nil {
		return err
	}
	g.Go(func() error {
		return pollJobs(gctx, w.pollInterval, w.runtime.campaignJobs(), w.logger)
	})
	err := g.Wait()
	w.runtime.bus.Wait()
	return err
}

func (w *WorkerApp) Close() error {
	return w.runtime.Close()
}

func (rt *runtime) campaignJobs() []periodicJob {
	return []periodicJob{
		{name: "end_date_completer", run: rt.campaigns.Workers.EndDateCompleter.RunOnce},
		{name: "outbox_relay", run: rt.campaigns.Workers.OutboxRelay.RunOnce},
	}
}

func (rt *runtime) sessionSweeperJob() periodicJob {
	return periodicJob{name: "session_sweeper", run: rt.wizard.Workers.SessionSweeper.RunOnce}
}

// pollJobs runs every job once per tick, in order, until ctx is done. A job
// error stops the loop and is returned to the caller.
func pollJobs(ctx context.Context, interval time.Duration, jobs []periodicJob, logger *slog.Logger) error {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		for _, job := range jobs {
			if err := job.run(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Error("periodic job failed",
					"event", "bootstrap_job_failed",
					"module", "internal/app/bootstrap",
					"layer", "platform",
					"job", job.name,
					"error", err.Error(),
				)
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
