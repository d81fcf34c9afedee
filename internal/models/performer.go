package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Performer struct {
	bun.BaseModel `bun:"table:performers"`

	ID         string    `bun:"id,pk" json:"id"`
	Name       string    `bun:"name,notnull" json:"name"`
	Email      string    `bun:"email,nullzero" json:"email,omitempty"`
	Occupation string    `bun:"occupation,nullzero" json:"occupation,omitempty"`
	Agency     string    `bun:"agency,nullzero" json:"agency,omitempty"`
	ImageURL   string    `bun:"image_url,nullzero" json:"image_url,omitempty"`
	// PaymentHandle is the performer's ID with the external payment provider.
	PaymentHandle string    `bun:"payment_handle,nullzero" json:"payment_handle,omitempty"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}
