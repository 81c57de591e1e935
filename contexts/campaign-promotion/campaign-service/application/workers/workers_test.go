package workers_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	campaignservice "soundtik/contexts/campaign-promotion/campaign-service"
	"soundtik/contexts/campaign-promotion/campaign-service/application/commands"
	"soundtik/contexts/campaign-promotion/campaign-service/application/workers"
	"soundtik/contexts/campaign-promotion/campaign-service/domain/entities"
	domainerrors "soundtik/contexts/campaign-promotion/campaign-service/domain/errors"
	"soundtik/contexts/campaign-promotion/campaign-service/ports"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	fail   error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ ports.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.topics = append(p.topics, topic)
	return nil
}

type stubSubscriber struct {
	topics []string
}

func (s *stubSubscriber) Subscribe(
	_ context.Context,
	topic string,
	_ string,
	_ func(context.Context, ports.EventEnvelope) error,
) error {
	s.topics = append(s.topics, topic)
	return nil
}

func activeCampaign(id string, endDate time.Time) entities.Campaign {
	start := endDate.AddDate(0, 0, -30)
	return entities.Campaign{
		CampaignID:   id,
		UserID:       "artist-1",
		Song:         entities.SongDetails{Title: "Seeded"},
		Budget:       300,
		DurationDays: 30,
		Status:       entities.CampaignStatusActive,
		CreatedAt:    start,
		UpdatedAt:    start,
		StartDate:    &start,
		EndDate:      &endDate,
		Version:      3,
	}
}

func addVideoCommand(campaignID string) commands.AddVideoCommand {
	return commands.AddVideoCommand{
		CampaignID: campaignID,
		ActorID:    "ops-1",
		URL:        "https://www.tiktok.com/@creator/video/990011",
	}
}

func TestEndDateCompleterCompletesExpiredCampaigns(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	module := campaignservice.NewInMemoryModule([]entities.Campaign{
		activeCampaign("expired", now.Add(-time.Hour)),
		activeCampaign("running", now.Add(48*time.Hour)),
	}, nil)
	module.Store.SetNow(func() time.Time { return now })

	if err := module.Workers.EndDateCompleter.RunOnce(context.Background()); err != nil {
		t.Fatalf("run end date completer: %v", err)
	}

	expired, err := module.Store.GetCampaign(context.Background(), "expired")
	if err != nil {
		t.Fatalf("get expired campaign: %v", err)
	}
	if expired.Status != entities.CampaignStatusCompleted {
		t.Fatalf("expected expired campaign to be completed, got %s", expired.Status)
	}
	if expired.Version != 4 {
		t.Fatalf("expected version to advance to 4, got %d", expired.Version)
	}
	running, err := module.Store.GetCampaign(context.Background(), "running")
	if err != nil {
		t.Fatalf("get running campaign: %v", err)
	}
	if running.Status != entities.CampaignStatusActive {
		t.Fatalf("expected running campaign to stay active, got %s", running.Status)
	}

	history := module.Store.StateHistory("expired")
	if len(history) != 1 || history[0].ChangedBy != "system" || history[0].ChangeReason != "end_date_reached" {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestEndDateCompleterCanBeDisabledByFeatureFlag(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	module := campaignservice.NewInMemoryModule([]entities.Campaign{
		activeCampaign("expired", now.Add(-time.Hour)),
	}, nil)
	module.Store.SetNow(func() time.Time { return now })

	job := module.Workers.EndDateCompleter
	job.Disabled = true
	if err := job.RunOnce(context.Background()); err != nil {
		t.Fatalf("run disabled completer: %v", err)
	}
	item, _ := module.Store.GetCampaign(context.Background(), "expired")
	if item.Status != entities.CampaignStatusActive {
		t.Fatalf("expected no change when disabled, got %s", item.Status)
	}
}

func TestOutboxRelayPublishesOnce(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	module := campaignservice.NewInMemoryModule([]entities.Campaign{
		activeCampaign("expired", now.Add(-time.Hour)),
	}, nil)
	module.Store.SetNow(func() time.Time { return now })
	if err := module.Workers.EndDateCompleter.RunOnce(context.Background()); err != nil {
		t.Fatalf("seed completion event: %v", err)
	}

	publisher := &recordingPublisher{}
	relay := module.Workers.OutboxRelay
	relay.Publisher = publisher

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("first relay cycle: %v", err)
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("second relay cycle: %v", err)
	}
	if len(publisher.topics) != 1 || publisher.topics[0] != "campaign.completed" {
		t.Fatalf("expected one campaign.completed publish, got %v", publisher.topics)
	}
}

func TestOutboxRelayKeepsRowsWhenPublishFails(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	module := campaignservice.NewInMemoryModule([]entities.Campaign{
		activeCampaign("expired", now.Add(-time.Hour)),
	}, nil)
	module.Store.SetNow(func() time.Time { return now })
	if err := module.Workers.EndDateCompleter.RunOnce(context.Background()); err != nil {
		t.Fatalf("seed completion event: %v", err)
	}

	relay := module.Workers.OutboxRelay
	relay.Publisher = &recordingPublisher{fail: errors.New("bus down")}
	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected publish failure to surface")
	}
	pending, err := module.Store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending outbox: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected the failed row to stay pending, got %d rows", len(pending))
	}
}

type scriptedOutbox struct {
	rows      []ports.OutboxMessage
	published map[string]time.Time
	markErr   error
}

func (o *scriptedOutbox) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	out := make([]ports.OutboxMessage, 0, len(o.rows))
	for _, row := range o.rows {
		if _, done := o.published[row.OutboxID]; done {
			continue
		}
		out = append(out, row)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (o *scriptedOutbox) MarkOutboxPublished(_ context.Context, outboxID string, at time.Time) error {
	if o.markErr != nil {
		return o.markErr
	}
	o.published[outboxID] = at
	return nil
}

func TestOutboxRelayParksUndecodableRows(t *testing.T) {
	good, _ := json.Marshal(ports.EventEnvelope{EventID: "evt-2", EventType: "campaign.completed"})
	outbox := &scriptedOutbox{
		rows: []ports.OutboxMessage{
			{OutboxID: "evt-1", EventType: "campaign.created", Payload: []byte(`{"event_id":`)},
			{OutboxID: "evt-untyped", Payload: []byte(`{"event_id":"evt-untyped"}`)},
			{OutboxID: "evt-2", EventType: "campaign.completed", Payload: good},
		},
		published: map[string]time.Time{},
	}
	publisher := &recordingPublisher{}
	relay := workers.OutboxRelay{Outbox: outbox, Publisher: publisher}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay cycle: %v", err)
	}
	if len(publisher.topics) != 1 || publisher.topics[0] != "campaign.completed" {
		t.Fatalf("expected only the decodable row to publish, got %v", publisher.topics)
	}
	if len(outbox.published) != 3 {
		t.Fatalf("expected parked and published rows to leave the queue, got %v", outbox.published)
	}

	pending, _ := outbox.ListPendingOutbox(context.Background(), 10)
	if len(pending) != 0 {
		t.Fatalf("expected an empty queue, got %d rows", len(pending))
	}
}

func TestOutboxRelaySurfacesMarkFailure(t *testing.T) {
	good, _ := json.Marshal(ports.EventEnvelope{EventID: "evt-1", EventType: "campaign.created"})
	outbox := &scriptedOutbox{
		rows:      []ports.OutboxMessage{{OutboxID: "evt-1", Payload: good}},
		published: map[string]time.Time{},
		markErr:   errors.New("store down"),
	}
	relay := workers.OutboxRelay{Outbox: outbox, Publisher: &recordingPublisher{}}

	if err := relay.RunOnce(context.Background()); !errors.Is(err, outbox.markErr) {
		t.Fatalf("expected mark failure to surface, got %v", err)
	}
	pending, _ := outbox.ListPendingOutbox(context.Background(), 10)
	if len(pending) != 1 {
		t.Fatalf("expected the row to stay pending, got %d rows", len(pending))
	}
}

func TestVideoMetricsConsumerAppliesAndDeduplicates(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	module := campaignservice.NewInMemoryModule([]entities.Campaign{
		activeCampaign("live", now.Add(72*time.Hour)),
	}, nil)
	module.Store.SetNow(func() time.Time { return now })

	video, err := module.Handler.AddVideo.Execute(context.Background(), addVideoCommand("live"))
	if err != nil {
		t.Fatalf("add video: %v", err)
	}

	data, _ := json.Marshal(map[string]any{
		"campaign_id": "live",
		"video_id":    video.VideoID,
		"views":       4000,
		"likes":       400,
		"comments":    40,
		"shares":      0,
	})
	event := ports.EventEnvelope{
		EventID:   "evt-1",
		EventType: workers.VideoMetricsReportedTopic,
		Data:      data,
	}
	consumer := module.Workers.VideoMetricsConsumer
	if err := consumer.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if err := consumer.Handle(context.Background(), event); err != nil {
		t.Fatalf("replay event: %v", err)
	}

	summary, found, err := module.Store.GetMetrics(context.Background(), "live")
	if err != nil || !found {
		t.Fatalf("expected metrics, found=%v err=%v", found, err)
	}
	if summary.Views != 4000 || summary.Engagement != 11 {
		t.Fatalf("unexpected summary after event: %+v", summary)
	}

	conflicting := event
	conflicting.Data = []byte(`{"video_id":"` + video.VideoID + `","views":1}`)
	if err := consumer.Handle(context.Background(), conflicting); !errors.Is(err, domainerrors.ErrIdempotencyKeyConflict) {
		t.Fatalf("expected idempotency conflict for reused event id, got %v", err)
	}
}

type flakyVideos struct {
	ports.VideoRepository
	failures int
}

func (v *flakyVideos) UpdateVideo(ctx context.Context, video entities.Video) error {
	if v.failures > 0 {
		v.failures--
		return errors.New("store timeout")
	}
	return v.VideoRepository.UpdateVideo(ctx, video)
}

func TestVideoMetricsConsumerRetriesAfterFailedUpdate(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	module := campaignservice.NewInMemoryModule([]entities.Campaign{
		activeCampaign("live", now.Add(72*time.Hour)),
	}, nil)
	module.Store.SetNow(func() time.Time { return now })

	video, err := module.Handler.AddVideo.Execute(context.Background(), addVideoCommand("live"))
	if err != nil {
		t.Fatalf("add video: %v", err)
	}

	consumer := module.Workers.VideoMetricsConsumer
	consumer.Update.Videos = &flakyVideos{VideoRepository: module.Store, failures: 1}
	data, _ := json.Marshal(map[string]any{"campaign_id": "live", "video_id": video.VideoID, "views": 2500})
	event := ports.EventEnvelope{EventID: "evt-retry", EventType: workers.VideoMetricsReportedTopic, Data: data}

	if err := consumer.Handle(context.Background(), event); err == nil {
		t.Fatalf("expected the first delivery to fail")
	}
	if err := consumer.Handle(context.Background(), event); err != nil {
		t.Fatalf("redelivery: %v", err)
	}

	stored, err := module.Store.GetVideo(context.Background(), video.VideoID)
	if err != nil {
		t.Fatalf("get video: %v", err)
	}
	if stored.Metrics.Views != 2500 {
		t.Fatalf("expected redelivered metrics to apply, got %+v", stored.Metrics)
	}
}

func TestVideoMetricsConsumerRejectsMalformedPayload(t *testing.T) {
	module := campaignservice.NewInMemoryModule(nil, nil)
	err := module.Workers.VideoMetricsConsumer.Handle(context.Background(), ports.EventEnvelope{
		EventID: "evt-bad",
		Data:    []byte(`{"views":10}`),
	})
	if !errors.Is(err, domainerrors.ErrEventPayloadInvalid) {
		t.Fatalf("expected ErrEventPayloadInvalid, got %v", err)
	}
}

func TestVideoMetricsConsumerCanBeDisabledByFeatureFlag(t *testing.T) {
	subscriber := &stubSubscriber{}
	consumer := workers.VideoMetricsConsumer{
		Subscriber: subscriber,
		Disabled:   true,
	}
	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start disabled consumer: %v", err)
	}
	if len(subscriber.topics) != 0 {
		t.Fatalf("expected no subscriptions when disabled, got %v", subscriber.topics)
	}
}
