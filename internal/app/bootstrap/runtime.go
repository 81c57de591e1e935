package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	campaignservice "soundtik/contexts/campaign-promotion/campaign-service"
	firestoreadapter "soundtik/contexts/campaign-promotion/campaign-service/adapters/firestore"
	campaignmemory "soundtik/contexts/campaign-promotion/campaign-service/adapters/memory"
	postgresadapter "soundtik/contexts/campaign-promotion/campaign-service/adapters/postgres"
	campaignports "soundtik/contexts/campaign-promotion/campaign-service/ports"
	wizardservice "soundtik/contexts/campaign-promotion/wizard-service"
	wizardmemory "soundtik/contexts/campaign-promotion/wizard-service/adapters/memory"
	paymentadapter "soundtik/contexts/campaign-promotion/wizard-service/adapters/payment"
	wizardports "soundtik/contexts/campaign-promotion/wizard-service/ports"
	"soundtik/internal/platform/config"
	"soundtik/internal/platform/db"
	"soundtik/internal/platform/firebase"
	"soundtik/internal/platform/logging"
	"soundtik/internal/platform/messaging"
)

// runtime is what every process shares: config, logger, the campaign
// store selected by CAMPAIGN_STORE and the modules wired on top of it.
type runtime struct {
	cfg       config.Config
	logger    *slog.Logger
	campaigns campaignservice.Module
	wizard    wizardservice.Module
	bus       *messaging.Bus
	closers   []io.Closer
}

func loadRuntime(ctx context.Context, process string) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return buildRuntime(ctx, cfg, process)
}

func buildRuntime(ctx context.Context, cfg config.Config, process string) (*runtime, error) {
	baseLogger, logCloser := logging.New(logging.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	logger := baseLogger.With("service", cfg.ServiceName, "process", process)
	rt := &runtime{
		cfg:     cfg,
		logger:  logger,
		bus:     messaging.NewBus(0, logger),
		closers: []io.Closer{logCloser},
	}

	store, clock, ids, err := rt.openCampaignStore(ctx)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	rt.campaigns = campaignservice.NewModule(campaignservice.Dependencies{
		Store:                   store,
		Clock:                   clock,
		IDGenerator:             ids,
		Publisher:               rt.bus,
		Subscriber:              rt.bus,
		IdempotencyTTL:          cfg.IdempotencyTTL,
		DedupTTL:                cfg.IdempotencyTTL,
		BatchSize:               cfg.WorkerBatchSize,
		DisableEndDateCompleter: !cfg.EnableEndDateCompleter,
		DisableMetricsConsumer:  !cfg.EnableMetricsConsumer,
		Logger:                  logger,
	})
	if memStore, ok := store.(*campaignmemory.Store); ok {
		rt.campaigns.Store = memStore
	}

	sessions := wizardmemory.NewStore()
	rt.wizard = wizardservice.NewModule(wizardservice.Dependencies{
		Sessions: sessions,
		Gateway: campaignGateway{
			create: rt.campaigns.Handler.CreateCampaign,
			submit: rt.campaigns.Handler.SubmitCampaign,
		},
		Payments:              paymentVerifier(cfg, sessions.Now),
		Clock:                 sessions,
		IDGen:                 sessions,
		SessionTTL:            cfg.WizardSessionTTL,
		BatchSize:             cfg.WorkerBatchSize,
		DisableSessionSweeper: !cfg.EnableSessionSweeper,
		Logger:                logger,
	})
	rt.wizard.Store = sessions

	logger.Info("runtime wired",
		"event", "bootstrap_runtime_wired",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"campaign_store", cfg.CampaignStore,
		"payment_verifier", cfg.PaymentVerifier,
	)
	return rt, nil
}

func (rt *runtime) openCampaignStore(ctx context.Context) (campaignports.Store, campaignports.Clock, campaignports.IDGenerator, error) {
	switch rt.cfg.CampaignStore {
	case config.StoreMemory:
		store := campaignmemory.NewStore(nil)
		return store, store, store, nil
	case config.StorePostgres:
		pg, err := db.Connect(ctx, rt.cfg.PostgresDSN, db.Options{
			MaxOpenConns: rt.cfg.PostgresMaxOpen,
			MaxIdleConns: rt.cfg.PostgresMaxIdle,
			Logger:       rt.logger,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		rt.closers = append(rt.closers, pg)
		repo := postgresadapter.NewRepository(pg.DB, rt.logger)
		if rt.cfg.PostgresAutoMigrate {
			if err := repo.Migrate(ctx); err != nil {
				return nil, nil, nil, fmt.Errorf("migrate campaign schema: %w", err)
			}
		}
		return repo, postgresadapter.SystemClock{}, postgresadapter.UUIDGenerator{}, nil
	case config.StoreFirestore:
		fs, err := firebase.Connect(ctx, rt.cfg.FirebaseProjectID, rt.cfg.FirebaseCredentialsPath, rt.logger)
		if err != nil {
			return nil, nil, nil, err
		}
		rt.closers = append(rt.closers, fs)
		return firestoreadapter.NewRepository(fs.Client, rt.logger), postgresadapter.SystemClock{}, postgresadapter.UUIDGenerator{}, nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported CAMPAIGN_STORE %q", rt.cfg.CampaignStore)
	}
}

func paymentVerifier(cfg config.Config, now func() time.Time) wizardports.PaymentVerifier {
	if cfg.PaymentVerifier != config.VerifierProcessor {
		return wizardmemory.ReportedPaymentVerifier{Now: now}
	}
	var stripe, paypal wizardports.PaymentVerifier
	if cfg.StripeSecretKey != "" {
		stripe = paymentadapter.NewStripeVerifier(paymentadapter.StripeConfig{
			BaseURL:   cfg.StripeBaseURL,
			SecretKey: cfg.StripeSecretKey,
			Timeout:   cfg.PaymentTimeout,
		})
	}
	if cfg.PayPalClientID != "" {
		paypal = paymentadapter.NewPayPalVerifier(paymentadapter.PayPalConfig{
			BaseURL:      cfg.PayPalBaseURL,
			ClientID:     cfg.PayPalClientID,
			ClientSecret: cfg.PayPalClientSecret,
			Timeout:      cfg.PaymentTimeout,
		})
	}
	return paymentadapter.NewRouter(stripe, paypal)
}

// Close releases store connections first and the log file last.
func (rt *runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
