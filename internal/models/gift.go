package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Gift is one completed gifting from a fan to a performer. Rows are
// insert-only: a gift is never updated or deleted once created.
type Gift struct {
	bun.BaseModel `bun:"table:gifts"`

	GiftID        string    `bun:"gift_id,pk" json:"gift_id"`
	UserID        string    `bun:"user_id,notnull" json:"user_id"`
	UserName      string    `bun:"user_name,notnull" json:"user_name"`
	PerformerID   string    `bun:"performer_id,notnull" json:"performer_id"`
	PerformerName string    `bun:"performer_name,notnull" json:"performer_name"`
	EventID       string    `bun:"event_id,notnull" json:"event_id"`
	EventName     string    `bun:"event_name,notnull" json:"event_name"`
	Amount        int       `bun:"amount,notnull" json:"amount"`
	Comment       string    `bun:"comment,nullzero" json:"comment,omitempty"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// GiftRequest is the payload accepted by the confirm endpoint.
type GiftRequest struct {
	UserID      string `json:"user_id"`
	PerformerID string `json:"performer_id"`
	EventID     string `json:"event_id"`
	Amount      int    `json:"amount"`
	Comment     string `json:"comment"`
}

// GiftFilter narrows history and stats queries. Fields combine as a
// conjunction; an empty field places no constraint.
type GiftFilter struct {
	PerformerID string `json:"performer_id,omitempty"`
	EventID     string `json:"event_id,omitempty"`
	UserID      string `json:"user_id,omitempty"`
}
