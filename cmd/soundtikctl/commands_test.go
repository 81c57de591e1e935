package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	campaignerrors "soundtik/contexts/campaign-promotion/campaign-service/domain/errors"
	campaignhttp "soundtik/contexts/campaign-promotion/campaign-service/transport/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	closed   bool
	calls    []string
	adminIDs []string
	notes    []string
}

func (f *fakeBackend) PendingCampaigns(_ context.Context, adminID string, limit int) (campaignhttp.ListCampaignsResponse, error) {
	f.calls = append(f.calls, "pending")
	f.adminIDs = append(f.adminIDs, adminID)
	return campaignhttp.ListCampaignsResponse{Items: []campaignhttp.CampaignDTO{{CampaignID: "c-1", Status: "pending"}}}, nil
}

func (f *fakeBackend) ApproveCampaign(_ context.Context, adminID string, campaignID string, notes string) (campaignhttp.GetCampaignResponse, error) {
	f.calls = append(f.calls, "approve:"+campaignID)
	f.adminIDs = append(f.adminIDs, adminID)
	f.notes = append(f.notes, notes)
	return campaignhttp.GetCampaignResponse{Campaign: campaignhttp.CampaignDTO{CampaignID: campaignID, Status: "active"}}, nil
}

func (f *fakeBackend) RejectCampaign(_ context.Context, adminID string, campaignID string, notes string) (campaignhttp.GetCampaignResponse, error) {
	f.calls = append(f.calls, "reject:"+campaignID)
	f.notes = append(f.notes, notes)
	return campaignhttp.GetCampaignResponse{}, campaignerrors.ErrInvalidStateTransition
}

func (f *fakeBackend) ShowCampaign(_ context.Context, campaignID string) (campaignhttp.GetCampaignResponse, error) {
	f.calls = append(f.calls, "show:"+campaignID)
	return campaignhttp.GetCampaignResponse{Campaign: campaignhttp.CampaignDTO{CampaignID: campaignID}}, nil
}

func (f *fakeBackend) CampaignMetrics(_ context.Context, campaignID string) (campaignhttp.GetMetricsResponse, error) {
	f.calls = append(f.calls, "metrics:"+campaignID)
	return campaignhttp.GetMetricsResponse{Metrics: campaignhttp.MetricsDTO{CampaignID: campaignID, Views: 42}}, nil
}

func (f *fakeBackend) Close() error {
	f.closed = true
	return nil
}

func run(t *testing.T, fake *fakeBackend, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(func(context.Context) (backend, error) { return fake, nil })
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestReviewPendingPrintsJSON(t *testing.T) {
	fake := &fakeBackend{}
	out, err := run(t, fake, "review", "pending", "--admin-id", "ops-1")
	require.NoError(t, err)

	var resp campaignhttp.ListCampaignsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, []string{"ops-1"}, fake.adminIDs)
	assert.True(t, fake.closed)
}

func TestReviewRequiresAdminID(t *testing.T) {
	t.Setenv("SOUNDTIK_ADMIN_ID", "")
	fake := &fakeBackend{}
	_, err := run(t, fake, "review", "approve", "c-1")
	require.Error(t, err)
	assert.Empty(t, fake.calls)
}

func TestReviewAdminIDFromEnvironment(t *testing.T) {
	t.Setenv("SOUNDTIK_ADMIN_ID", "ops-env")
	fake := &fakeBackend{}
	_, err := run(t, fake, "review", "approve", "c-1", "--notes", "ship it")
	require.NoError(t, err)
	assert.Equal(t, []string{"approve:c-1"}, fake.calls)
	assert.Equal(t, []string{"ops-env"}, fake.adminIDs)
	assert.Equal(t, []string{"ship it"}, fake.notes)
}

func TestReviewRejectNeedsNotesAndSurfacesErrors(t *testing.T) {
	fake := &fakeBackend{}
	_, err := run(t, fake, "review", "reject", "c-1", "--admin-id", "ops-1")
	require.Error(t, err)
	assert.Empty(t, fake.calls)

	_, err = run(t, fake, "review", "reject", "c-1", "--admin-id", "ops-1", "--notes", "audio missing")
	require.ErrorIs(t, err, campaignerrors.ErrInvalidStateTransition)
	assert.Equal(t, []string{"reject:c-1"}, fake.calls)
}

func TestCampaignShowAndMetrics(t *testing.T) {
	fake := &fakeBackend{}
	_, err := run(t, fake, "campaign", "show", "c-9")
	require.NoError(t, err)
	out, err := run(t, fake, "campaign", "metrics", "c-9")
	require.NoError(t, err)

	var resp campaignhttp.GetMetricsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, int64(42), resp.Metrics.Views)
	assert.Equal(t, []string{"show:c-9", "metrics:c-9"}, fake.calls)
}

func TestEstimateCommand(t *testing.T) {
	out, err := run(t, &fakeBackend{}, "estimate", "--budget", "500", "--duration", "30")
	require.NoError(t, err)
	var estimate campaignhttp.ReachEstimateDTO
	require.NoError(t, json.Unmarshal([]byte(out), &estimate))
	assert.Equal(t, campaignhttp.ReachEstimateDTO{Low: 72000, Mid: 90000, High: 108000}, estimate)

	_, err = run(t, &fakeBackend{}, "estimate", "--budget", "100")
	require.ErrorIs(t, err, campaignerrors.ErrInvalidCampaignInput)
}
