package draft

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"ms-gifting/internal/models"
)

// ErrNoDraft means a later step was reached without a draft; the caller
// should send the sender back to the compose step.
var ErrNoDraft = errors.New("no pending gift draft")

// ErrSessionRequired means the sender's session disappeared between compose
// and confirm. The draft is preserved so confirmation can be retried after
// login.
var ErrSessionRequired = errors.New("active session required")

// GiftCreator commits a confirmed draft to the store. Implemented by
// gift.Service.
type GiftCreator interface {
	CreateFromDraft(ctx context.Context, sess models.Session, d models.GiftDraft) (*models.Gift, error)
}

// Sequencer drives the compose -> confirm -> thanks hand-off. The draft
// lives in a single per-session slot; the flow never deletes it on failure,
// only the thanks step clears it.
type Sequencer struct {
	drafts Store
	gifts  GiftCreator
}

func NewSequencer(drafts Store, gifts GiftCreator) *Sequencer {
	return &Sequencer{drafts: drafts, gifts: gifts}
}

// Compose stores the draft, overwriting whatever the slot held before.
func (s *Sequencer) Compose(ctx context.Context, sessionID string, d models.GiftDraft) error {
	if d.PerformerID == "" || d.EventID == "" {
		return fmt.Errorf("draft must name a performer and an event")
	}
	if amount, err := strconv.Atoi(d.Amount); err != nil || amount < 0 {
		return fmt.Errorf("draft amount %q is not a non-negative integer", d.Amount)
	}
	return s.drafts.Put(ctx, sessionID, d)
}

// Review returns the draft for the confirm step. A missing draft yields
// ErrNoDraft, which callers translate into a redirect to Compose.
func (s *Sequencer) Review(ctx context.Context, sessionID string) (*models.GiftDraft, error) {
	d, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read draft: %w", err)
	}
	if d == nil {
		return nil, ErrNoDraft
	}
	return d, nil
}

// Confirm commits the draft as a Gift. The draft survives every failure so
// the sender can retry without re-entering data; it is cleared by Thanks,
// not here.
func (s *Sequencer) Confirm(ctx context.Context, sess models.Session) (*models.Gift, error) {
	if sess.ID == "" {
		return nil, ErrSessionRequired
	}

	d, err := s.Review(ctx, sess.ID)
	if err != nil {
		return nil, err
	}

	gift, err := s.gifts.CreateFromDraft(ctx, sess, *d)
	if err != nil {
		return nil, err
	}
	return gift, nil
}

// Thanks returns the draft for display and unconditionally clears the slot.
// Calling it again after the slot is empty returns ErrNoDraft without
// touching anything.
func (s *Sequencer) Thanks(ctx context.Context, sessionID string) (*models.GiftDraft, error) {
	d, err := s.drafts.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to read draft: %w", err)
	}
	if err := s.drafts.Clear(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to clear draft: %w", err)
	}
	if d == nil {
		return nil, ErrNoDraft
	}
	return d, nil
}

// Abandon clears the slot without creating anything.
func (s *Sequencer) Abandon(ctx context.Context, sessionID string) error {
	return s.drafts.Clear(ctx, sessionID)
}
