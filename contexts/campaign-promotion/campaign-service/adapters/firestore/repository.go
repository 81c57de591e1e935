package firestoreadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"soundtik/contexts/campaign-promotion/campaign-service/domain/entities"
	domainerrors "soundtik/contexts/campaign-promotion/campaign-service/domain/errors"
	"soundtik/contexts/campaign-promotion/campaign-service/ports"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

var _ ports.Store = (*Repository)(nil)

// Repository stores campaign-service documents in Cloud Firestore using the
// collection layout of the hosted product.
type Repository struct {
	client *firestore.Client
	logger *slog.Logger
}

func NewRepository(client *firestore.Client, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		client: client,
		logger: logger,
	}
}

func (r *Repository) CreateCampaign(ctx context.Context, campaign entities.Campaign) error {
	ref := r.client.Collection(campaignsCollection).Doc(strings.TrimSpace(campaign.CampaignID))
	if _, err := ref.Create(ctx, campaignDocFromEntity(campaign)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return domainerrors.ErrCampaignAlreadyExists
		}
		return err
	}
	return nil
}

// UpdateCampaign compares versions inside a transaction so two writers
// racing on the same campaign cannot both succeed. A payment transaction is
// claimed in campaignPayments within the same transaction.
func (r *Repository) UpdateCampaign(ctx context.Context, campaign entities.Campaign, expectedVersion int64) error {
	campaignID := strings.TrimSpace(campaign.CampaignID)
	ref := r.client.Collection(campaignsCollection).Doc(campaignID)
	transactionID := strings.TrimSpace(campaign.Payment.TransactionID)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return domainerrors.ErrCampaignNotFound
			}
			return err
		}
		var current campaignDoc
		if err := snap.DataTo(&current); err != nil {
			return err
		}
		if current.Version != expectedVersion {
			return domainerrors.ErrCampaignVersionConflict
		}

		var claimRef *firestore.DocumentRef
		if transactionID != "" {
			claimRef = r.client.Collection(paymentsCollection).
				Doc(paymentClaimID(string(campaign.Payment.Processor), transactionID))
			claimSnap, err := tx.Get(claimRef)
			switch {
			case status.Code(err) == codes.NotFound:
			case err != nil:
				return err
			default:
				var claim paymentClaimDoc
				if err := claimSnap.DataTo(&claim); err != nil {
					return err
				}
				if claim.CampaignID != campaignID {
					return domainerrors.ErrPaymentAlreadyApplied
				}
				claimRef = nil
			}
		}

		if claimRef != nil {
			if err := tx.Set(claimRef, paymentClaimDoc{
				CampaignID:    campaignID,
				Processor:     string(campaign.Payment.Processor),
				TransactionID: transactionID,
				ClaimedAt:     campaign.UpdatedAt.UTC(),
			}); err != nil {
				return err
			}
		}
		return tx.Set(ref, campaignDocFromEntity(campaign))
	})
}

func (r *Repository) GetCampaign(ctx context.Context, campaignID string) (entities.Campaign, error) {
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return entities.Campaign{}, domainerrors.ErrCampaignNotFound
	}
	snap, err := r.client.Collection(campaignsCollection).Doc(campaignID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return entities.Campaign{}, domainerrors.ErrCampaignNotFound
		}
		return entities.Campaign{}, err
	}
	var doc campaignDoc
	if err := snap.DataTo(&doc); err != nil {
		return entities.Campaign{}, err
	}
	return doc.toEntity(snap.Ref.ID), nil
}

func (r *Repository) ListCampaigns(ctx context.Context, filter ports.CampaignFilter) ([]entities.Campaign, error) {
	query := r.client.Collection(campaignsCollection).Query
	if userID := strings.TrimSpace(filter.UserID); userID != "" {
		query = query.Where("userId", "==", userID)
	}
	if filter.Status != "" {
		query = query.Where("status", "==", string(filter.Status))
	}
	query = query.OrderBy("createdAt", firestore.Desc)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	return r.collectCampaigns(ctx, query)
}

func (r *Repository) ListCampaignsEndedBefore(ctx context.Context, now time.Time, limit int) ([]entities.Campaign, error) {
	if limit <= 0 {
		limit = 100
	}
	query := r.client.Collection(campaignsCollection).
		Where("status", "==", string(entities.CampaignStatusActive)).
		Where("endDate", "<", now.UTC()).
		OrderBy("endDate", firestore.Asc).
		Limit(limit)
	return r.collectCampaigns(ctx, query)
}

func (r *Repository) collectCampaigns(ctx context.Context, query firestore.Query) ([]entities.Campaign, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	items := make([]entities.Campaign, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		var doc campaignDoc
		if err := snap.DataTo(&doc); err != nil {
			r.logger.Warn("skipping unreadable campaign document",
				"event", "campaign_document_decode_failed",
				"module", "campaign-promotion/campaign-service",
				"layer", "adapter",
				"campaign_id", snap.Ref.ID,
				"error", err.Error(),
			)
			continue
		}
		items = append(items, doc.toEntity(snap.Ref.ID))
	}
	return items, nil
}

func (r *Repository) AddVideo(ctx context.Context, video entities.Video) error {
	ref := r.client.Collection(videosCollection).Doc(strings.TrimSpace(video.VideoID))
	if _, err := ref.Create(ctx, videoDocFromEntity(video)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return domainerrors.ErrInvalidVideoInput
		}
		return err
	}
	return nil
}

func (r *Repository) GetVideo(ctx context.Context, videoID string) (entities.Video, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return entities.Video{}, domainerrors.ErrVideoNotFound
	}
	snap, err := r.client.Collection(videosCollection).Doc(videoID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return entities.Video{}, domainerrors.ErrVideoNotFound
		}
		return entities.Video{}, err
	}
	var doc videoDoc
	if err := snap.DataTo(&doc); err != nil {
		return entities.Video{}, err
	}
	return doc.toEntity(snap.Ref.ID), nil
}

func (r *Repository) UpdateVideo(ctx context.Context, video entities.Video) error {
	doc := videoDocFromEntity(video)
	_, err := r.client.Collection(videosCollection).Doc(strings.TrimSpace(video.VideoID)).Update(ctx, []firestore.Update{
		{Path: "metrics", Value: doc.Metrics},
		{Path: "status", Value: doc.Status},
		{Path: "thumbnail", Value: doc.Thumbnail},
		{Path: "caption", Value: doc.Caption},
		{Path: "updatedAt", Value: doc.UpdatedAt},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domainerrors.ErrVideoNotFound
		}
		return err
	}
	return nil
}

func (r *Repository) DeleteVideo(ctx context.Context, videoID string) error {
	_, err := r.client.Collection(videosCollection).Doc(strings.TrimSpace(videoID)).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domainerrors.ErrVideoNotFound
		}
		return err
	}
	return nil
}

func (r *Repository) ListVideosByCampaign(ctx context.Context, campaignID string) ([]entities.Video, error) {
	iter := r.client.Collection(videosCollection).
		Where("campaignId", "==", strings.TrimSpace(campaignID)).
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	items := make([]entities.Video, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		var doc videoDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, err
		}
		items = append(items, doc.toEntity(snap.Ref.ID))
	}
	return items, nil
}

func (r *Repository) GetMetrics(ctx context.Context, campaignID string) (entities.MetricsSummary, bool, error) {
	campaignID = strings.TrimSpace(campaignID)
	ref := r.client.Collection(metricsCollection).Doc(campaignID)
	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return entities.MetricsSummary{}, false, nil
		}
		return entities.MetricsSummary{}, false, err
	}
	var doc metricsDoc
	if err := snap.DataTo(&doc); err != nil {
		return entities.MetricsSummary{}, false, err
	}

	summary := entities.MetricsSummary{
		CampaignID: campaignID,
		Views:      doc.Views,
		Likes:      doc.Likes,
		Comments:   doc.Comments,
		Shares:     doc.Shares,
		Follows:    doc.Follows,
		Engagement: doc.Engagement,
		UpdatedAt:  doc.UpdatedAt,
	}

	iter := ref.Collection(dailyMetricsSubpath).OrderBy("date", firestore.Asc).Documents(ctx)
	defer iter.Stop()
	for {
		daySnap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return entities.MetricsSummary{}, false, err
		}
		var day dailyMetricDoc
		if err := daySnap.DataTo(&day); err != nil {
			return entities.MetricsSummary{}, false, err
		}
		summary.DailyMetrics = append(summary.DailyMetrics, entities.DailyMetric{
			Date:       day.Date,
			Views:      day.Views,
			Likes:      day.Likes,
			Comments:   day.Comments,
			Shares:     day.Shares,
			Engagement: day.Engagement,
		})
	}
	return summary.Normalize(), true, nil
}

// SaveMetrics replaces the summary document and its dailyMetrics subcollection
// in one transaction. Reads happen before writes as Firestore requires.
func (r *Repository) SaveMetrics(ctx context.Context, summary entities.MetricsSummary) error {
	campaignID := strings.TrimSpace(summary.CampaignID)
	ref := r.client.Collection(metricsCollection).Doc(campaignID)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(ref.Collection(dailyMetricsSubpath)).GetAll()
		if err != nil {
			return err
		}

		keep := make(map[string]struct{}, len(summary.DailyMetrics))
		for _, day := range summary.DailyMetrics {
			keep[day.Date] = struct{}{}
		}
		for _, snap := range existing {
			if _, ok := keep[snap.Ref.ID]; ok {
				continue
			}
			if err := tx.Delete(snap.Ref); err != nil {
				return err
			}
		}

		if err := tx.Set(ref, metricsDoc{
			Views:      summary.Views,
			Likes:      summary.Likes,
			Comments:   summary.Comments,
			Shares:     summary.Shares,
			Follows:    summary.Follows,
			Engagement: summary.Engagement,
			UpdatedAt:  summary.UpdatedAt.UTC(),
		}); err != nil {
			return err
		}
		for _, day := range summary.DailyMetrics {
			if err := tx.Set(ref.Collection(dailyMetricsSubpath).Doc(day.Date), dailyMetricDoc{
				Date:       day.Date,
				Views:      day.Views,
				Likes:      day.Likes,
				Comments:   day.Comments,
				Shares:     day.Shares,
				Engagement: day.Engagement,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) AppendState(ctx context.Context, item entities.StateHistory) error {
	historyID := strings.TrimSpace(item.HistoryID)
	if historyID == "" {
		historyID = uuid.NewString()
	}
	_, err := r.client.Collection(historyCollection).Doc(historyID).Create(ctx, historyDoc{
		CampaignID:   strings.TrimSpace(item.CampaignID),
		FromState:    string(item.FromState),
		ToState:      string(item.ToState),
		ChangedBy:    strings.TrimSpace(item.ChangedBy),
		ChangeReason: strings.TrimSpace(item.ChangeReason),
		CreatedAt:    item.CreatedAt.UTC(),
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return domainerrors.ErrInvalidCampaignInput
		}
		return err
	}
	return nil
}

func (r *Repository) GetRecord(ctx context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	key = strings.TrimSpace(key)
	ref := r.client.Collection(idempotencyCollection).Doc(key)
	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ports.IdempotencyRecord{}, false, nil
		}
		return ports.IdempotencyRecord{}, false, err
	}
	var doc idempotencyDoc
	if err := snap.DataTo(&doc); err != nil {
		return ports.IdempotencyRecord{}, false, err
	}
	if !doc.ExpiresAt.IsZero() && now.UTC().After(doc.ExpiresAt.UTC()) {
		if _, err := ref.Delete(ctx); err != nil {
			return ports.IdempotencyRecord{}, false, err
		}
		return ports.IdempotencyRecord{}, false, nil
	}
	return ports.IdempotencyRecord{
		Key:             key,
		RequestHash:     doc.RequestHash,
		ResponsePayload: append([]byte(nil), doc.ResponsePayload...),
		ExpiresAt:       doc.ExpiresAt.UTC(),
	}, true, nil
}

func (r *Repository) PutRecord(ctx context.Context, record ports.IdempotencyRecord) error {
	ref := r.client.Collection(idempotencyCollection).Doc(strings.TrimSpace(record.Key))
	doc := idempotencyDoc{
		RequestHash:     record.RequestHash,
		ResponsePayload: append([]byte(nil), record.ResponsePayload...),
		ExpiresAt:       record.ExpiresAt.UTC(),
	}
	_, err := ref.Create(ctx, doc)
	if err == nil {
		return nil
	}
	if status.Code(err) != codes.AlreadyExists {
		return err
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		return err
	}
	var existing idempotencyDoc
	if err := snap.DataTo(&existing); err != nil {
		return err
	}
	if existing.RequestHash != doc.RequestHash || !bytes.Equal(existing.ResponsePayload, doc.ResponsePayload) {
		return domainerrors.ErrIdempotencyKeyConflict
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	ref := r.client.Collection(outboxCollection).Doc(outboxID)
	_, err = ref.Create(ctx, outboxDoc{
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    createdAt,
	})
	if err == nil {
		return nil
	}
	if status.Code(err) != codes.AlreadyExists {
		return err
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		return err
	}
	var existing outboxDoc
	if err := snap.DataTo(&existing); err != nil {
		return err
	}
	if !bytes.Equal(existing.Payload, payload) {
		return domainerrors.ErrIdempotencyKeyConflict
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	snaps, err := r.client.Collection(outboxCollection).
		Where("status", "==", outboxStatusPending).
		OrderBy("createdAt", firestore.Asc).
		Limit(limit).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(snaps))
	for _, snap := range snaps {
		var doc outboxDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, err
		}
		items = append(items, ports.OutboxMessage{
			OutboxID:     snap.Ref.ID,
			EventType:    doc.EventType,
			PartitionKey: doc.PartitionKey,
			Payload:      append([]byte(nil), doc.Payload...),
			CreatedAt:    doc.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	_, err := r.client.Collection(outboxCollection).Doc(strings.TrimSpace(outboxID)).Update(ctx, []firestore.Update{
		{Path: "status", Value: outboxStatusPublished},
		{Path: "publishedAt", Value: publishedAt.UTC()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domainerrors.ErrInvalidCampaignInput
		}
		return err
	}
	return nil
}

func (r *Repository) ReserveEvent(
	ctx context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	ref := r.client.Collection(dedupCollection).Doc(strings.TrimSpace(eventID))
	doc := dedupDoc{
		PayloadHash: strings.TrimSpace(payloadHash),
		ExpiresAt:   expiresAt.UTC(),
		ProcessedAt: time.Now().UTC(),
	}
	_, err := ref.Create(ctx, doc)
	if err == nil {
		return false, nil
	}
	if status.Code(err) != codes.AlreadyExists {
		return false, err
	}

	snap, err := ref.Get(ctx)
	if err != nil {
		return false, err
	}
	var existing dedupDoc
	if err := snap.DataTo(&existing); err != nil {
		return false, err
	}
	if existing.PayloadHash != doc.PayloadHash {
		return false, domainerrors.ErrIdempotencyKeyConflict
	}
	return true, nil
}

func (r *Repository) ReleaseEvent(ctx context.Context, eventID string) error {
	_, err := r.client.Collection(dedupCollection).Doc(strings.TrimSpace(eventID)).Delete(ctx)
	return err
}
