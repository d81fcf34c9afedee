package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          string    `bun:"id,pk" json:"id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Date        time.Time `bun:"date,notnull" json:"date"`
	Location    string    `bun:"location,nullzero" json:"location,omitempty"`
	Description string    `bun:"description,nullzero" json:"description,omitempty"`
	ImageURL    string    `bun:"image_url,nullzero" json:"image_url,omitempty"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// EventSummary is an event annotated with its gifting rollup for the
// performer dashboard.
type EventSummary struct {
	Event        Event `json:"event"`
	TotalGifting int   `json:"total_gifting"`
	MessageCount int   `json:"message_count"`
}
