package entities

import (
	"testing"
	"time"
)

func TestEstimateReachBaseline(t *testing.T) {
	got := EstimateReach(500, 30)
	want := ReachEstimate{Low: 72000, Mid: 90000, High: 108000}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestEstimateReachScalesWithSquareRootOfDuration(t *testing.T) {
	got := EstimateReach(200, 120)
	if got.Mid != 72000 {
		t.Fatalf("expected mid 72000 for four times the baseline duration, got %d", got.Mid)
	}
	if got.Low >= got.Mid || got.High <= got.Mid {
		t.Fatalf("expected low < mid < high, got %+v", got)
	}
}

func TestEstimateReachZeroForMissingInputs(t *testing.T) {
	if got := EstimateReach(0, 30); got != (ReachEstimate{}) {
		t.Fatalf("expected zero estimate for zero budget, got %+v", got)
	}
	if got := EstimateReach(500, 0); got != (ReachEstimate{}) {
		t.Fatalf("expected zero estimate for zero duration, got %+v", got)
	}
}

func TestEngagementRate(t *testing.T) {
	if got := EngagementRate(100, 10, 5, 1000); got != 11.5 {
		t.Fatalf("expected 11.5, got %v", got)
	}
	if got := EngagementRate(3, 2, 1, 0); got != 0 {
		t.Fatalf("expected 0 when there are no views, got %v", got)
	}
	if got := EngagementRate(1, 0, 0, 3); got != 33.33 {
		t.Fatalf("expected rounding to two decimals, got %v", got)
	}
}

func TestRecomputeMetricsSkipsRemovedVideosAndGroupsByDay(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)
	videos := []Video{
		{VideoID: "v2", CreatedAt: day2, Status: VideoStatusLive, Metrics: VideoMetrics{Views: 500, Likes: 50}},
		{VideoID: "v1", CreatedAt: day1, Status: VideoStatusLive, Metrics: VideoMetrics{Views: 1000, Likes: 100, Comments: 10, Shares: 5}},
		{VideoID: "v3", CreatedAt: day1, Status: VideoStatusRemoved, Metrics: VideoMetrics{Views: 9000}},
	}

	summary := RecomputeMetrics("camp-1", videos, 42, day2)
	if summary.Views != 1500 || summary.Likes != 150 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	if summary.Follows != 42 {
		t.Fatalf("expected follows to be carried over, got %d", summary.Follows)
	}
	if len(summary.DailyMetrics) != 2 {
		t.Fatalf("expected two daily rows, got %d", len(summary.DailyMetrics))
	}
	if summary.DailyMetrics[0].Date != "2026-03-01" || summary.DailyMetrics[1].Date != "2026-03-02" {
		t.Fatalf("expected ascending dates, got %+v", summary.DailyMetrics)
	}
	if summary.DailyMetrics[0].Engagement != 11.5 {
		t.Fatalf("expected day one engagement 11.5, got %v", summary.DailyMetrics[0].Engagement)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from CampaignStatus
		to   CampaignStatus
		ok   bool
	}{
		{CampaignStatusDraft, CampaignStatusPending, true},
		{CampaignStatusPending, CampaignStatusActive, true},
		{CampaignStatusPending, CampaignStatusRejected, true},
		{CampaignStatusActive, CampaignStatusCompleted, true},
		{CampaignStatusPending, CampaignStatusDraft, false},
		{CampaignStatusDraft, CampaignStatusActive, false},
		{CampaignStatusRejected, CampaignStatusActive, false},
		{CampaignStatusCompleted, CampaignStatusActive, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.ok {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.ok)
		}
	}
}

func TestNormalizeFillsLegacyZeroValues(t *testing.T) {
	local := time.FixedZone("UTC+2", 2*60*60)
	zero := time.Time{}
	item := Campaign{
		CampaignID: "legacy",
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, local),
		EndDate:    &zero,
	}.Normalize()

	if item.Status != CampaignStatusDraft {
		t.Fatalf("expected default status draft, got %q", item.Status)
	}
	if item.Targeting.CreatorTypes == nil || item.Targeting.AudienceAge == nil || item.Targeting.PreferredStyles == nil {
		t.Fatalf("expected non-nil targeting slices")
	}
	if item.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected UTC created_at, got %v", item.CreatedAt.Location())
	}
	if item.EndDate != nil {
		t.Fatalf("expected zero end date to normalize to nil")
	}
}

func TestValidateBasicsRequiresWizardFields(t *testing.T) {
	valid := Campaign{
		UserID:       "artist-1",
		Song:         SongDetails{Title: "Night Drive", Genre: "synthwave", AudioURL: "https://cdn.example.com/night.mp3"},
		Artist:       ArtistDetails{Name: "Neon Coast"},
		Budget:       MinBudget,
		DurationDays: MinDurationDays,
		Targeting:    CreatorTargeting{CreatorTypes: []string{"dance"}},
	}
	if !valid.ValidateBasics() {
		t.Fatalf("expected complete campaign to pass")
	}

	cases := map[string]func(c *Campaign){
		"genre":         func(c *Campaign) { c.Song.Genre = " " },
		"audio url":     func(c *Campaign) { c.Song.AudioURL = "" },
		"artist name":   func(c *Campaign) { c.Artist.Name = "" },
		"creator types": func(c *Campaign) { c.Targeting.CreatorTypes = []string{" "} },
	}
	for name, mutate := range cases {
		c := valid
		c.Targeting.CreatorTypes = append([]string(nil), valid.Targeting.CreatorTypes...)
		mutate(&c)
		if c.ValidateBasics() {
			t.Fatalf("expected missing %s to fail", name)
		}
	}
}

func TestPaymentCoversComparesCents(t *testing.T) {
	campaign := Campaign{Budget: 250.10}
	if !campaign.PaymentCovers(250.1) || !campaign.PaymentCovers(250.100001) {
		t.Fatalf("expected equal cent amounts to cover the budget")
	}
	if campaign.PaymentCovers(250.09) || campaign.PaymentCovers(1) {
		t.Fatalf("expected other amounts to be refused")
	}
}
