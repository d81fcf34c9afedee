package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"ms-gifting/internal/logger"
	"ms-gifting/internal/models"
)

// Service computes gifting statistics straight from the gifts table. Reads
// only; the gift service owns writes.
type Service struct {
	DB     *bun.DB
	Logger *logger.Logger
}

func NewService(db *bun.DB, log *logger.Logger) *Service {
	return &Service{DB: db, Logger: log}
}

// PerformerDashboard is the performer's home view: lifetime totals plus
// per-event gifting figures split into upcoming and past events.
type PerformerDashboard struct {
	PerformerID  string                `json:"performer_id"`
	TotalGifting int                   `json:"total_gifting"`
	GiftCount    int                   `json:"gift_count"`
	MessageCount int                   `json:"message_count"`
	Upcoming     []models.EventSummary `json:"upcoming"`
	Past         []models.EventSummary `json:"past"`
}

// GetStats aggregates all gifts matching the filter. Gifts are read in
// creation order so the hourly buckets come out in chronological
// first-seen order.
func (s *Service) GetStats(ctx context.Context, filter models.GiftFilter) (*AggregateStats, error) {
	gifts := []models.Gift{}
	query := s.DB.NewSelect().Model(&gifts)

	if filter.PerformerID != "" {
		query = query.Where("performer_id = ?", filter.PerformerID)
	}
	if filter.EventID != "" {
		query = query.Where("event_id = ?", filter.EventID)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}

	if err := query.Order("created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to load gifts for aggregation: %w", err)
	}

	aggregated := Aggregate(gifts)
	return &aggregated, nil
}

// ListEvents returns the full event calendar, soonest first.
func (s *Service) ListEvents(ctx context.Context) ([]models.Event, error) {
	events := []models.Event{}
	err := s.DB.NewSelect().Model(&events).Order("date ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	return events, nil
}

type eventTotals struct {
	EventID  string `bun:"event_id"`
	Total    int    `bun:"total"`
	Count    int    `bun:"gift_count"`
	Messages int    `bun:"messages"`
}

// GetDashboard builds the performer's dashboard: lifetime totals and every
// event annotated with what it brought in, upcoming first by date, past in
// reverse chronological order.
func (s *Service) GetDashboard(ctx context.Context, performerID string) (*PerformerDashboard, error) {
	totals := []eventTotals{}
	err := s.DB.NewSelect().
		Model((*models.Gift)(nil)).
		Column("event_id").
		ColumnExpr("COALESCE(SUM(amount), 0) AS total").
		ColumnExpr("COUNT(*) AS gift_count").
		ColumnExpr("COUNT(CASE WHEN comment IS NOT NULL AND comment <> '' THEN 1 END) AS messages").
		Where("performer_id = ?", performerID).
		Group("event_id").
		Scan(ctx, &totals)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate gifts by event: %w", err)
	}

	byEvent := map[string]eventTotals{}
	dashboard := &PerformerDashboard{
		PerformerID: performerID,
		Upcoming:    []models.EventSummary{},
		Past:        []models.EventSummary{},
	}
	for _, t := range totals {
		byEvent[t.EventID] = t
		dashboard.TotalGifting += t.Total
		dashboard.GiftCount += t.Count
		dashboard.MessageCount += t.Messages
	}

	now := time.Now()

	upcoming := []models.Event{}
	err = s.DB.NewSelect().
		Model(&upcoming).
		Where("date >= ?", now).
		Order("date ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming events: %w", err)
	}

	past := []models.Event{}
	err = s.DB.NewSelect().
		Model(&past).
		Where("date < ?", now).
		Order("date DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load past events: %w", err)
	}

	for _, ev := range upcoming {
		t := byEvent[ev.ID]
		dashboard.Upcoming = append(dashboard.Upcoming, models.EventSummary{
			Event:        ev,
			TotalGifting: t.Total,
			MessageCount: t.Messages,
		})
	}
	for _, ev := range past {
		t := byEvent[ev.ID]
		dashboard.Past = append(dashboard.Past, models.EventSummary{
			Event:        ev,
			TotalGifting: t.Total,
			MessageCount: t.Messages,
		})
	}

	if s.Logger != nil {
		s.Logger.LogDatabase("AGGREGATE", "gifts", fmt.Sprintf("dashboard for performer %s: %d gifts, %d total", performerID, dashboard.GiftCount, dashboard.TotalGifting))
	}

	return dashboard, nil
}
