package campaignservice

import (
	"log/slog"
	"time"

	httpadapter "soundtik/contexts/campaign-promotion/campaign-service/adapters/http"
	"soundtik/contexts/campaign-promotion/campaign-service/adapters/memory"
	"soundtik/contexts/campaign-promotion/campaign-service/application/commands"
	"soundtik/contexts/campaign-promotion/campaign-service/application/queries"
	"soundtik/contexts/campaign-promotion/campaign-service/application/workers"
	"soundtik/contexts/campaign-promotion/campaign-service/domain/entities"
	"soundtik/contexts/campaign-promotion/campaign-service/ports"
)

// Module is the composition surface for the campaign repository, admin
// review and dashboard. Store is set only by NewInMemoryModule.
type Module struct {
	Handler httpadapter.Handler
	Workers Workers
	Store   *memory.Store
}

type Workers struct {
	OutboxRelay          workers.OutboxRelay
	EndDateCompleter     workers.EndDateCompleter
	VideoMetricsConsumer workers.VideoMetricsConsumer
}

type Dependencies struct {
	Store          ports.Store
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	Publisher      ports.EventPublisher
	Subscriber     ports.EventSubscriber
	IdempotencyTTL time.Duration
	DedupTTL       time.Duration
	BatchSize      int

	DisableEndDateCompleter bool
	DisableMetricsConsumer  bool

	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	store := deps.Store

	recomputer := commands.MetricsRecomputer{
		Videos:  store,
		Metrics: store,
		Outbox:  store,
		IDGen:   deps.IDGenerator,
		Logger:  deps.Logger,
	}
	createCampaign := commands.CreateCampaignUseCase{
		Campaigns:      store,
		History:        store,
		Idempotency:    store,
		Outbox:         store,
		Clock:          deps.Clock,
		IDGenerator:    deps.IDGenerator,
		IdempotencyTTL: deps.IdempotencyTTL,
		Logger:         deps.Logger,
	}
	submitCampaign := commands.SubmitCampaignUseCase{
		Campaigns: store,
		History:   store,
		Outbox:    store,
		Clock:     deps.Clock,
		IDGen:     deps.IDGenerator,
		Logger:    deps.Logger,
	}
	validateCampaign := commands.ValidateCampaignUseCase{
		Campaigns: store,
		History:   store,
		Outbox:    store,
		Clock:     deps.Clock,
		IDGen:     deps.IDGenerator,
		Logger:    deps.Logger,
	}
	completeCampaign := commands.CompleteCampaignUseCase{
		Campaigns: store,
		History:   store,
		Outbox:    store,
		Clock:     deps.Clock,
		IDGen:     deps.IDGenerator,
		Logger:    deps.Logger,
	}
	addVideo := commands.AddVideoUseCase{
		Campaigns:  store,
		Videos:     store,
		Recomputer: recomputer,
		Clock:      deps.Clock,
		IDGen:      deps.IDGenerator,
		Logger:     deps.Logger,
	}
	updateVideoMetrics := commands.UpdateVideoMetricsUseCase{
		Videos:     store,
		Recomputer: recomputer,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}
	deleteVideo := commands.DeleteVideoUseCase{
		Videos:     store,
		Recomputer: recomputer,
		Clock:      deps.Clock,
		Logger:     deps.Logger,
	}

	getCampaign := queries.GetCampaignUseCase{
		Campaigns: store,
		Logger:    deps.Logger,
	}
	getMetrics := queries.GetCampaignMetricsUseCase{
		Campaigns: store,
		Metrics:   store,
		Logger:    deps.Logger,
	}
	getVideos := queries.GetCampaignVideosUseCase{
		Campaigns: store,
		Videos:    store,
		Logger:    deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{
			CreateCampaign:     createCampaign,
			SubmitCampaign:     submitCampaign,
			ValidateCampaign:   validateCampaign,
			CompleteCampaign:   completeCampaign,
			AddVideo:           addVideo,
			UpdateVideoMetrics: updateVideoMetrics,
			DeleteVideo:        deleteVideo,
			GetCampaign:        getCampaign,
			ListCampaigns: queries.ListCampaignsUseCase{
				Campaigns: store,
				Logger:    deps.Logger,
			},
			ListPendingCampaigns: queries.ListPendingCampaignsUseCase{
				Campaigns: store,
				Logger:    deps.Logger,
			},
			GetMetrics: getMetrics,
			GetVideos:  getVideos,
			GetDashboard: queries.GetDashboardUseCase{
				Campaign: getCampaign,
				Metrics:  getMetrics,
				Videos:   getVideos,
				Clock:    deps.Clock,
				Logger:   deps.Logger,
			},
			Logger: deps.Logger,
		},
		Workers: Workers{
			OutboxRelay: workers.OutboxRelay{
				Outbox:    store,
				Publisher: deps.Publisher,
				Clock:     deps.Clock,
				BatchSize: deps.BatchSize,
				Logger:    deps.Logger,
			},
			EndDateCompleter: workers.EndDateCompleter{
				Campaigns: store,
				Complete:  completeCampaign,
				Clock:     deps.Clock,
				BatchSize: deps.BatchSize,
				Disabled:  deps.DisableEndDateCompleter,
				Logger:    deps.Logger,
			},
			VideoMetricsConsumer: workers.VideoMetricsConsumer{
				Subscriber: deps.Subscriber,
				Update:     updateVideoMetrics,
				Dedup:      store,
				Clock:      deps.Clock,
				DedupTTL:   deps.DedupTTL,
				Disabled:   deps.DisableMetricsConsumer,
				Logger:     deps.Logger,
			},
		},
	}
}

// NewInMemoryModule wires every use case against one memory store.
func NewInMemoryModule(seed []entities.Campaign, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Store:          store,
		Clock:          store,
		IDGenerator:    store,
		IdempotencyTTL: 7 * 24 * time.Hour,
		DedupTTL:       7 * 24 * time.Hour,
		Logger:         logger,
	})
	module.Store = store
	return module
}
