package wizardservice

import (
	"log/slog"
	"time"

	httpadapter "soundtik/contexts/campaign-promotion/wizard-service/adapters/http"
	"soundtik/contexts/campaign-promotion/wizard-service/adapters/memory"
	"soundtik/contexts/campaign-promotion/wizard-service/adapters/validation"
	"soundtik/contexts/campaign-promotion/wizard-service/application"
	"soundtik/contexts/campaign-promotion/wizard-service/application/workers"
	"soundtik/contexts/campaign-promotion/wizard-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Workers Workers
	Store   *memory.Store
}

type Workers struct {
	SessionSweeper workers.SessionSweeper
}

type Dependencies struct {
	Sessions   ports.SessionStore
	Gateway    ports.CampaignGateway
	Payments   ports.PaymentVerifier
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	SessionTTL time.Duration
	BatchSize  int

	DisableSessionSweeper bool

	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Sessions:   deps.Sessions,
		Validator:  validation.NewStepValidator(),
		Gateway:    deps.Gateway,
		Payments:   deps.Payments,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		SessionTTL: deps.SessionTTL,
		Logger:     deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
		Workers: Workers{
			SessionSweeper: workers.SessionSweeper{
				Service:   service,
				BatchSize: deps.BatchSize,
				Disabled:  deps.DisableSessionSweeper,
				Logger:    deps.Logger,
			},
		},
	}
}

// NewInMemoryModule keeps sessions in memory and trusts the payment result
// the client reports. Payments and gateway are taken as given so callers
// can plug the campaign service or a recording fake.
func NewInMemoryModule(gateway ports.CampaignGateway, payments ports.PaymentVerifier, logger *slog.Logger) Module {
	store := memory.NewStore()
	if payments == nil {
		payments = memory.ReportedPaymentVerifier{Now: store.Now}
	}
	module := NewModule(Dependencies{
		Sessions: store,
		Gateway:  gateway,
		Payments: payments,
		Clock:    store,
		IDGen:    store,
		Logger:   logger,
	})
	module.Store = store
	return module
}
