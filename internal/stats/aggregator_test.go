package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ms-gifting/internal/models"
	"ms-gifting/internal/stats"
)

func giftAt(amount int, hour, minute int) models.Gift {
	return models.Gift{
		GiftID:    "g",
		Amount:    amount,
		CreatedAt: time.Date(2026, 3, 21, hour, minute, 0, 0, time.UTC),
	}
}

func TestAggregate(t *testing.T) {
	gifts := []models.Gift{
		giftAt(1000, 12, 30),
		giftAt(3000, 12, 45),
		giftAt(500, 14, 10),
	}

	result := stats.Aggregate(gifts)

	assert.Equal(t, 4500, result.TotalAmount)
	assert.Equal(t, 3, result.GiftCount)
	assert.Equal(t, 1500, result.AverageAmount)
	assert.Equal(t, 3000, result.TopAmount)

	// Hour buckets keep first-seen order, unsorted.
	assert.Equal(t, []stats.HourBucket{
		{Hour: "12:00", Total: 4000},
		{Hour: "14:00", Total: 500},
	}, result.HourlyTotals)

	// All five tiers present, zeros included.
	assert.Equal(t, []stats.TierCount{
		{Label: "〜500円", Count: 1},
		{Label: "〜1,000円", Count: 1},
		{Label: "〜3,000円", Count: 1},
		{Label: "〜5,000円", Count: 0},
		{Label: "5,001円〜", Count: 0},
	}, result.TierCounts)
}

func TestAggregate_Empty(t *testing.T) {
	result := stats.Aggregate(nil)

	assert.Equal(t, 0, result.TotalAmount)
	assert.Equal(t, 0, result.GiftCount)
	assert.Equal(t, 0, result.AverageAmount)
	assert.Equal(t, 0, result.TopAmount)
	assert.Empty(t, result.HourlyTotals)

	assert.Len(t, result.TierCounts, 5)
	for _, tier := range result.TierCounts {
		assert.Equal(t, 0, tier.Count)
	}
}

func TestAggregate_AverageRounds(t *testing.T) {
	gifts := []models.Gift{
		giftAt(100, 10, 0),
		giftAt(101, 10, 5),
	}

	result := stats.Aggregate(gifts)
	// 100.5 rounds up, not truncates.
	assert.Equal(t, 101, result.AverageAmount)
}

func TestAggregate_TierBoundaries(t *testing.T) {
	gifts := []models.Gift{
		giftAt(500, 10, 0),
		giftAt(501, 10, 1),
		giftAt(1000, 10, 2),
		giftAt(3000, 10, 3),
		giftAt(5000, 10, 4),
		giftAt(5001, 10, 5),
	}

	result := stats.Aggregate(gifts)
	assert.Equal(t, []stats.TierCount{
		{Label: "〜500円", Count: 1},
		{Label: "〜1,000円", Count: 2},
		{Label: "〜3,000円", Count: 1},
		{Label: "〜5,000円", Count: 1},
		{Label: "5,001円〜", Count: 1},
	}, result.TierCounts)
}

func TestAggregate_HourOrderFollowsInput(t *testing.T) {
	gifts := []models.Gift{
		giftAt(100, 20, 0),
		giftAt(200, 9, 0),
		giftAt(300, 20, 30),
	}

	result := stats.Aggregate(gifts)
	assert.Equal(t, []stats.HourBucket{
		{Hour: "20:00", Total: 400},
		{Hour: "09:00", Total: 200},
	}, result.HourlyTotals)
}
