package bootstrap

import (
	"context"

	httpadapter "soundtik/contexts/campaign-promotion/campaign-service/adapters/http"
	campaignhttp "soundtik/contexts/campaign-promotion/campaign-service/transport/http"
)

// CLIApp is the operator surface behind soundtikctl. Reads here are not
// owner-scoped.
type CLIApp struct {
	runtime *runtime
	handler httpadapter.Handler
}

func BuildCLI(ctx context.Context) (*CLIApp, error) {
	rt, err := loadRuntime(ctx, "cli")
	if err != nil {
		return nil, err
	}
	return newCLIApp(rt), nil
}

func newCLIApp(rt *runtime) *CLIApp {
	return &CLIApp{
		runtime: rt,
		handler: rt.campaigns.Handler,
	}
}

func (a *CLIApp) PendingCampaigns(ctx context.Context, adminID string, limit int) (campaignhttp.ListCampaignsResponse, error) {
	return a.handler.ListPendingCampaignsHandler(ctx, adminID, limit)
}

func (a *CLIApp) ApproveCampaign(ctx context.Context, adminID string, campaignID string, notes string) (campaignhttp.GetCampaignResponse, error) {
	return a.handler.ApproveCampaignHandler(ctx, adminID, campaignID, campaignhttp.ReviewCampaignRequest{Notes: notes})
}

func (a *CLIApp) RejectCampaign(ctx context.Context, adminID string, campaignID string, notes string) (campaignhttp.GetCampaignResponse, error) {
	return a.handler.RejectCampaignHandler(ctx, adminID, campaignID, campaignhttp.ReviewCampaignRequest{Notes: notes})
}

func (a *CLIApp) ShowCampaign(ctx context.Context, campaignID string) (campaignhttp.GetCampaignResponse, error) {
	item, err := a.handler.GetCampaign.Execute(ctx, campaignID)
	if err != nil {
		return campaignhttp.GetCampaignResponse{}, err
	}
	return campaignhttp.GetCampaignResponse{Campaign: httpadapter.MapCampaign(item)}, nil
}

func (a *CLIApp) CampaignMetrics(ctx context.Context, campaignID string) (campaignhttp.GetMetricsResponse, error) {
	if _, err := a.handler.GetCampaign.Execute(ctx, campaignID); err != nil {
		return campaignhttp.GetMetricsResponse{}, err
	}
	summary, err := a.handler.GetMetrics.Execute(ctx, campaignID)
	if err != nil {
		return campaignhttp.GetMetricsResponse{}, err
	}
	return campaignhttp.GetMetricsResponse{Metrics: httpadapter.MapMetrics(summary)}, nil
}

func (a *CLIApp) EstimateReach(budget float64, durationDays int) (campaignhttp.ReachEstimateDTO, error) {
	return a.handler.EstimateReachHandler(budget, durationDays)
}

func (a *CLIApp) Close() error {
	return a.runtime.Close()
}
