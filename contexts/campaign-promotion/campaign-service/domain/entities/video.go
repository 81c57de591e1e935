package entities

import (
	"math"
	"sort"
	"time"
)

type VideoStatus string

const (
	VideoStatusLive    VideoStatus = "live"
	VideoStatusRemoved VideoStatus = "removed"
)

type VideoMetrics struct {
	Views    int64
	Likes    int64
	Comments int64
	Shares   int64
}

type Video struct {
	VideoID         string
	CampaignID      string
	TikTokID        string
	URL             string
	Thumbnail       string
	Caption         string
	CreatorUsername string
	Metrics         VideoMetrics
	Status          VideoStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type DailyMetric struct {
	Date       string
	Views      int64
	Likes      int64
	Comments   int64
	Shares     int64
	Engagement float64
}

type MetricsSummary struct {
	CampaignID   string
	Views        int64
	Likes        int64
	Comments     int64
	Shares       int64
	Follows      int64
	Engagement   float64
	DailyMetrics []DailyMetric
	UpdatedAt    time.Time
}

func (m VideoMetrics) Valid() bool {
	return m.Views >= 0 && m.Likes >= 0 && m.Comments >= 0 && m.Shares >= 0
}

func IsSupportedVideoStatus(value VideoStatus) bool {
	return value == VideoStatusLive || value == VideoStatusRemoved
}

// EngagementRate is interactions per view as a percentage rounded to two decimals.
func EngagementRate(likes int64, comments int64, shares int64, views int64) float64 {
	if views <= 0 {
		return 0
	}
	rate := float64(likes+comments+shares) / float64(views) * 100
	return math.Round(rate*100) / 100
}

// EmptyMetrics is the summary reported for campaigns without recorded metrics.
func EmptyMetrics(campaignID string) MetricsSummary {
	return MetricsSummary{
		CampaignID:   campaignID,
		DailyMetrics: []DailyMetric{},
	}
}

// RecomputeMetrics rebuilds the totals and the daily series from the campaign's
// live videos. Follows cannot be derived from videos and are carried over.
func RecomputeMetrics(campaignID string, videos []Video, follows int64, now time.Time) MetricsSummary {
	summary := EmptyMetrics(campaignID)
	summary.Follows = follows
	summary.UpdatedAt = now.UTC()

	byDay := make(map[string]*DailyMetric)
	for _, video := range videos {
		if video.Status == VideoStatusRemoved {
			continue
		}
		summary.Views += video.Metrics.Views
		summary.Likes += video.Metrics.Likes
		summary.Comments += video.Metrics.Comments
		summary.Shares += video.Metrics.Shares

		date := video.CreatedAt.UTC().Format(time.DateOnly)
		day, ok := byDay[date]
		if !ok {
			day = &DailyMetric{Date: date}
			byDay[date] = day
		}
		day.Views += video.Metrics.Views
		day.Likes += video.Metrics.Likes
		day.Comments += video.Metrics.Comments
		day.Shares += video.Metrics.Shares
	}
	summary.Engagement = EngagementRate(summary.Likes, summary.Comments, summary.Shares, summary.Views)

	for _, day := range byDay {
		day.Engagement = EngagementRate(day.Likes, day.Comments, day.Shares, day.Views)
		summary.DailyMetrics = append(summary.DailyMetrics, *day)
	}
	sort.Slice(summary.DailyMetrics, func(i, j int) bool {
		return summary.DailyMetrics[i].Date < summary.DailyMetrics[j].Date
	})
	return summary
}

func (v Video) Normalize() Video {
	if v.Status == "" {
		v.Status = VideoStatusLive
	}
	v.CreatedAt = v.CreatedAt.UTC()
	v.UpdatedAt = v.UpdatedAt.UTC()
	return v
}

func (m MetricsSummary) Normalize() MetricsSummary {
	if m.DailyMetrics == nil {
		m.DailyMetrics = []DailyMetric{}
	}
	m.UpdatedAt = m.UpdatedAt.UTC()
	return m
}
