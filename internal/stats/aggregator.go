package stats

import (
	"fmt"
	"math"

	"ms-gifting/internal/models"
)

// Tier labels for the amount distribution. Every aggregate carries all five
// buckets, zero counts included, so charts keep a stable shape.
var tierLabels = []string{
	"〜500円",
	"〜1,000円",
	"〜3,000円",
	"〜5,000円",
	"5,001円〜",
}

// HourBucket sums gifts whose creation time falls in one clock hour. Buckets
// appear in the order their hour was first seen in the input, not sorted.
type HourBucket struct {
	Hour  string `json:"hour"`
	Total int    `json:"total"`
}

// TierCount counts gifts falling into one amount tier.
type TierCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// AggregateStats summarizes a set of gifts.
type AggregateStats struct {
	TotalAmount   int          `json:"total_amount"`
	GiftCount     int          `json:"gift_count"`
	AverageAmount int          `json:"average_amount"`
	TopAmount     int          `json:"top_amount"`
	HourlyTotals  []HourBucket `json:"hourly_totals"`
	TierCounts    []TierCount  `json:"tier_counts"`
}

// Aggregate folds gifts into summary statistics in one pass. The average is
// rounded to the nearest integer; an empty input yields zero totals with all
// five tier buckets present and no hour buckets.
func Aggregate(gifts []models.Gift) AggregateStats {
	stats := AggregateStats{
		HourlyTotals: []HourBucket{},
	}

	hourIndex := map[string]int{}
	tierCounts := make([]int, len(tierLabels))

	for _, g := range gifts {
		stats.TotalAmount += g.Amount
		stats.GiftCount++
		if g.Amount > stats.TopAmount {
			stats.TopAmount = g.Amount
		}

		hour := fmt.Sprintf("%02d:00", g.CreatedAt.Hour())
		idx, seen := hourIndex[hour]
		if !seen {
			idx = len(stats.HourlyTotals)
			hourIndex[hour] = idx
			stats.HourlyTotals = append(stats.HourlyTotals, HourBucket{Hour: hour})
		}
		stats.HourlyTotals[idx].Total += g.Amount

		tierCounts[tierIndex(g.Amount)]++
	}

	if stats.GiftCount > 0 {
		stats.AverageAmount = int(math.Round(float64(stats.TotalAmount) / float64(stats.GiftCount)))
	}

	stats.TierCounts = make([]TierCount, len(tierLabels))
	for i, label := range tierLabels {
		stats.TierCounts[i] = TierCount{Label: label, Count: tierCounts[i]}
	}

	return stats
}

func tierIndex(amount int) int {
	switch {
	case amount <= 500:
		return 0
	case amount <= 1000:
		return 1
	case amount <= 3000:
		return 2
	case amount <= 5000:
		return 3
	default:
		return 4
	}
}
