package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"ms-gifting/internal/models"
)

// DefaultHistoryLimit caps gift history listings.
const DefaultHistoryLimit = 20

// NotFoundError reports that a referenced entity does not exist at
// persistence time.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

type DB struct {
	Bun *bun.DB
}

// ---------------- GIFTS ----------------

// CreateGift → insert a new gift after verifying every referenced entity
// resolves. Gifts are insert-only.
func (d *DB) CreateGift(ctx context.Context, gift models.Gift) error {
	checks := []struct {
		entity string
		id     string
		model  interface{}
	}{
		{"user", gift.UserID, (*models.User)(nil)},
		{"performer", gift.PerformerID, (*models.Performer)(nil)},
		{"event", gift.EventID, (*models.Event)(nil)},
	}

	for _, c := range checks {
		exists, err := d.Bun.NewSelect().
			Model(c.model).
			Where("id = ?", c.id).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("failed to check %s %s: %w", c.entity, c.id, err)
		}
		if !exists {
			return &NotFoundError{Entity: c.entity, ID: c.id}
		}
	}

	_, err := d.Bun.NewInsert().Model(&gift).Exec(ctx)
	return err
}

// GetGiftByID → fetch one gift by its ID
func (d *DB) GetGiftByID(ctx context.Context, id string) (*models.Gift, error) {
	var gift models.Gift
	err := d.Bun.NewSelect().
		Model(&gift).
		Where("gift_id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &gift, nil
}

// ListGifts → fetch gifts matching the filter, newest first. A zero limit
// applies DefaultHistoryLimit.
func (d *DB) ListGifts(ctx context.Context, filter models.GiftFilter, limit int) ([]models.Gift, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	gifts := []models.Gift{}
	query := d.Bun.NewSelect().Model(&gifts)

	if filter.PerformerID != "" {
		query = query.Where("performer_id = ?", filter.PerformerID)
	}
	if filter.EventID != "" {
		query = query.Where("event_id = ?", filter.EventID)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return gifts, nil
}

// ---------------- ENTITIES ----------------

func (d *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().Model(&user).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "user", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().Model(&user).Where("email = ?", email).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "user", ID: email}
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) GetPerformerByID(ctx context.Context, id string) (*models.Performer, error) {
	var performer models.Performer
	err := d.Bun.NewSelect().Model(&performer).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "performer", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &performer, nil
}

func (d *DB) GetPerformerByEmail(ctx context.Context, email string) (*models.Performer, error) {
	var performer models.Performer
	err := d.Bun.NewSelect().Model(&performer).Where("email = ?", email).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "performer", ID: email}
	}
	if err != nil {
		return nil, err
	}
	return &performer, nil
}

func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().Model(&event).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "event", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListPerformers → all performers, sorted by name
func (d *DB) ListPerformers(ctx context.Context) ([]models.Performer, error) {
	performers := []models.Performer{}
	err := d.Bun.NewSelect().Model(&performers).Order("name").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return performers, nil
}
