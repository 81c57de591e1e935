package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"soundtik/contexts/campaign-promotion/campaign-service/domain/entities"
	domainerrors "soundtik/contexts/campaign-promotion/campaign-service/domain/errors"
	"soundtik/contexts/campaign-promotion/campaign-service/ports"

	"github.com/google/uuid"
)

var _ ports.Store = (*Store)(nil)

type outboxRow struct {
	message     ports.OutboxMessage
	publishedAt *time.Time
}

// Store keeps every campaign-service table in process memory.
type Store struct {
	mu sync.RWMutex

	campaigns map[string]entities.Campaign
	videos    map[string]entities.Video
	metrics   map[string]entities.MetricsSummary
	stateLog  []entities.StateHistory
	outbox    []outboxRow
	dedup     map[string]string

	idempotency map[string]ports.IdempotencyRecord

	now func() time.Time
}

func NewStore(seed []entities.Campaign) *Store {
	campaigns := make(map[string]entities.Campaign, len(seed))
	for _, item := range seed {
		campaigns[item.CampaignID] = item.Normalize()
	}
	return &Store{
		campaigns:   campaigns,
		videos:      make(map[string]entities.Video),
		metrics:     make(map[string]entities.MetricsSummary),
		stateLog:    make([]entities.StateHistory, 0),
		outbox:      make([]outboxRow, 0),
		dedup:       make(map[string]string),
		idempotency: make(map[string]ports.IdempotencyRecord),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// SetNow pins the store clock. Tests use it to move time forward.
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) CreateCampaign(_ context.Context, campaign entities.Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.campaigns[campaign.CampaignID]; exists {
		return domainerrors.ErrCampaignAlreadyExists
	}
	s.campaigns[campaign.CampaignID] = campaign.Normalize()
	return nil
}

func (s *Store) UpdateCampaign(_ context.Context, campaign entities.Campaign, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.campaigns[campaign.CampaignID]
	if !exists {
		return domainerrors.ErrCampaignNotFound
	}
	if current.Version != expectedVersion {
		return domainerrors.ErrCampaignVersionConflict
	}
	if s.paymentHeldElsewhere(campaign) {
		return domainerrors.ErrPaymentAlreadyApplied
	}
	s.campaigns[campaign.CampaignID] = campaign.Normalize()
	return nil
}

func (s *Store) paymentHeldElsewhere(campaign entities.Campaign) bool {
	transactionID := strings.TrimSpace(campaign.Payment.TransactionID)
	if transactionID == "" {
		return false
	}
	for id, other := range s.campaigns {
		if id != campaign.CampaignID &&
			other.Payment.Processor == campaign.Payment.Processor &&
			other.Payment.TransactionID == transactionID {
			return true
		}
	}
	return false
}

func (s *Store) GetCampaign(_ context.Context, campaignID string) (entities.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.campaigns[strings.TrimSpace(campaignID)]
	if !exists {
		return entities.Campaign{}, domainerrors.ErrCampaignNotFound
	}
	return cloneCampaign(item), nil
}

func (s *Store) ListCampaigns(_ context.Context, filter ports.CampaignFilter) ([]entities.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Campaign, 0, len(s.campaigns))
	for _, campaign := range s.campaigns {
		if userID := strings.TrimSpace(filter.UserID); userID != "" && campaign.UserID != userID {
			continue
		}
		if filter.Status != "" && campaign.Status != filter.Status {
			continue
		}
		items = append(items, cloneCampaign(campaign))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if filter.Limit > 0 && len(items) > filter.Limit {
		items = items[:filter.Limit]
	}
	return items, nil
}

func (s *Store) ListCampaignsEndedBefore(_ context.Context, now time.Time, limit int) ([]entities.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Campaign, 0)
	for _, campaign := range s.campaigns {
		if campaign.Status != entities.CampaignStatusActive || campaign.EndDate == nil {
			continue
		}
		if campaign.EndDate.Before(now.UTC()) {
			items = append(items, cloneCampaign(campaign))
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].EndDate.Before(*items[j].EndDate)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) AddVideo(_ context.Context, video entities.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.videos[video.VideoID]; exists {
		return domainerrors.ErrInvalidVideoInput
	}
	if _, exists := s.campaigns[video.CampaignID]; !exists {
		return domainerrors.ErrCampaignNotFound
	}
	s.videos[video.VideoID] = video.Normalize()
	return nil
}

func (s *Store) GetVideo(_ context.Context, videoID string) (entities.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.videos[strings.TrimSpace(videoID)]
	if !exists {
		return entities.Video{}, domainerrors.ErrVideoNotFound
	}
	return item, nil
}

func (s *Store) UpdateVideo(_ context.Context, video entities.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.videos[video.VideoID]; !exists {
		return domainerrors.ErrVideoNotFound
	}
	s.videos[video.VideoID] = video.Normalize()
	return nil
}

func (s *Store) DeleteVideo(_ context.Context, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	videoID = strings.TrimSpace(videoID)
	if _, exists := s.videos[videoID]; !exists {
		return domainerrors.ErrVideoNotFound
	}
	delete(s.videos, videoID)
	return nil
}

func (s *Store) ListVideosByCampaign(_ context.Context, campaignID string) ([]entities.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Video, 0)
	for _, item := range s.videos {
		if item.CampaignID == strings.TrimSpace(campaignID) {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) GetMetrics(_ context.Context, campaignID string) (entities.MetricsSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.metrics[strings.TrimSpace(campaignID)]
	if !exists {
		return entities.MetricsSummary{}, false, nil
	}
	item.DailyMetrics = append([]entities.DailyMetric{}, item.DailyMetrics...)
	return item, true, nil
}

func (s *Store) SaveMetrics(_ context.Context, summary entities.MetricsSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary = summary.Normalize()
	summary.DailyMetrics = append([]entities.DailyMetric{}, summary.DailyMetrics...)
	s.metrics[summary.CampaignID] = summary
	return nil
}

// SetFollows records a follower count. Follows come from outside the video feed.
func (s *Store) SetFollows(campaignID string, follows int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, exists := s.metrics[campaignID]
	if !exists {
		item = entities.EmptyMetrics(campaignID)
	}
	item.Follows = follows
	s.metrics[campaignID] = item
}

func (s *Store) AppendState(_ context.Context, item entities.StateHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stateLog = append(s.stateLog, item)
	return nil
}

func (s *Store) StateHistory(campaignID string) []entities.StateHistory {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.StateHistory, 0)
	for _, item := range s.stateLog {
		if item.CampaignID == campaignID {
			items = append(items, item)
		}
	}
	return items
}

func (s *Store) GetRecord(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.idempotency[key]
	if !exists {
		return ports.IdempotencyRecord{}, false, nil
	}
	if !record.ExpiresAt.After(now) {
		delete(s.idempotency, key)
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) PutRecord(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.idempotency[record.Key]
	if exists {
		if existing.RequestHash != record.RequestHash {
			return domainerrors.ErrIdempotencyKeyConflict
		}
		if !bytes.Equal(existing.ResponsePayload, record.ResponsePayload) {
			return domainerrors.ErrIdempotencyKeyConflict
		}
	}
	s.idempotency[record.Key] = record
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	for _, row := range s.outbox {
		if row.message.OutboxID == outboxID {
			if !bytes.Equal(row.message.Payload, payload) {
				return domainerrors.ErrIdempotencyKeyConflict
			}
			return nil
		}
	}
	s.outbox = append(s.outbox, outboxRow{message: ports.OutboxMessage{
		OutboxID:     outboxID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}})
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0)
	for _, row := range s.outbox {
		if row.publishedAt != nil {
			continue
		}
		items = append(items, row.message)
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.outbox {
		if s.outbox[i].message.OutboxID == strings.TrimSpace(outboxID) {
			at := publishedAt.UTC()
			s.outbox[i].publishedAt = &at
			return nil
		}
	}
	return domainerrors.ErrInvalidCampaignInput
}

// OutboxEventTypes lists every event type appended so far, in order.
func (s *Store) OutboxEventTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]string, 0, len(s.outbox))
	for _, row := range s.outbox {
		items = append(items, row.message.EventType)
	}
	return items
}

func (s *Store) ReserveEvent(_ context.Context, eventID string, payloadHash string, _ time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.dedup[eventID]
	if !exists {
		s.dedup[eventID] = payloadHash
		return false, nil
	}
	if existing != payloadHash {
		return false, domainerrors.ErrIdempotencyKeyConflict
	}
	return true, nil
}

func (s *Store) ReleaseEvent(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dedup, eventID)
	return nil
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func cloneCampaign(item entities.Campaign) entities.Campaign {
	item.Targeting.CreatorTypes = entities.CopyOrEmpty(item.Targeting.CreatorTypes)
	item.Targeting.AudienceAge = entities.CopyOrEmpty(item.Targeting.AudienceAge)
	item.Targeting.PreferredStyles = entities.CopyOrEmpty(item.Targeting.PreferredStyles)
	return item
}
